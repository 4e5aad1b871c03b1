package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/export"
)

// enumFlag is a string flag restricted to a fixed set of lower-case values.
type enumFlag struct {
	allowed []string
	value   string
}

var _ pflag.Value = (*enumFlag)(nil)

func newEnumFlag(def string, allowed ...string) *enumFlag {
	return &enumFlag{allowed: allowed, value: def}
}

func (e *enumFlag) String() string { return e.value }

func (e *enumFlag) Set(v string) error {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range e.allowed {
		if v == a {
			e.value = v
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(e.allowed, ", "))
}

func (e *enumFlag) Type() string { return "string" }

func periodFlag() *enumFlag {
	names := make([]string, len(domain.LearningPeriods))
	for i, p := range domain.LearningPeriods {
		names[i] = string(p)
	}
	return newEnumFlag("", names...)
}

func planTypeFlag() *enumFlag {
	return newEnumFlag("", string(domain.PlanBalanced), string(domain.PlanFocused))
}

func activityStatusFlag() *enumFlag {
	return newEnumFlag("", string(domain.StatusNotStarted), string(domain.StatusInProgress), string(domain.StatusCompleted))
}

func exportFormatFlag() *enumFlag {
	return newEnumFlag(string(export.FormatJSON), string(export.FormatJSON), string(export.FormatHTML), string(export.FormatPDF))
}
