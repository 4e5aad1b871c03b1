// Package export renders learning plans into downloadable artifacts and
// stores them in a Sink.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// PDFNotice is attached to PDF requests, which are served as HTML.
const PDFNotice = "PDF format is not currently supported. HTML content provided instead."

// ParseFormat defaults to JSON when s is empty.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatHTML, FormatPDF:
		return f, nil
	}
	return "", domain.NewValidationError("export plan", fmt.Sprintf("Unsupported export format %q", s))
}

// Artifact is a rendered plan. Format is the format actually produced,
// which differs from the requested one for PDF.
type Artifact struct {
	Format      Format `json:"format"`
	ContentType string `json:"content_type"`
	Filename    string `json:"filename"`
	Data        []byte `json:"-"`
	Notice      string `json:"message,omitempty"`
	Location    string `json:"location,omitempty"`
}

// Render produces the artifact for plan in the requested format.
func Render(plan *domain.LearningPlan, format Format) (*Artifact, error) {
	if plan == nil {
		return nil, domain.NewValidationError("export plan", "plan is required")
	}
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding plan %s: %w", plan.ID, err)
		}
		return &Artifact{
			Format:      FormatJSON,
			ContentType: "application/json",
			Filename:    filename(plan, FormatJSON),
			Data:        data,
		}, nil
	case FormatHTML, FormatPDF:
		data, err := renderHTML(plan)
		if err != nil {
			return nil, err
		}
		a := &Artifact{
			Format:      FormatHTML,
			ContentType: "text/html; charset=utf-8",
			Filename:    filename(plan, FormatHTML),
			Data:        data,
		}
		if format == FormatPDF {
			a.Notice = PDFNotice
		}
		return a, nil
	}
	return nil, domain.NewValidationError("export plan", fmt.Sprintf("Unsupported export format %q", format))
}

func filename(plan *domain.LearningPlan, f Format) string {
	return fmt.Sprintf("learning-plan-%s.%s", plan.ID, f)
}

type htmlDay struct {
	Day        int
	Activities []domain.Activity
}

type htmlView struct {
	Plan   *domain.LearningPlan
	Period string
	Days   []htmlDay
}

var funcs = template.FuncMap{
	"percent": func(v float64) string { return fmt.Sprintf("%.0f", v) },
	"status": func(s domain.ActivityStatus) string {
		return strings.ReplaceAll(string(s), "_", " ")
	},
	"join": strings.Join,
}

var planTemplate = template.Must(template.New("plan").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Plan.Title}} - Learning Plan</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 800px; margin: 0 auto; padding: 20px; }
h1, h2, h3 { color: #2563eb; }
.plan-header { border-bottom: 2px solid #e5e7eb; padding-bottom: 15px; margin-bottom: 25px; }
.plan-meta div { display: inline-block; padding: 5px 10px; margin-right: 10px; background-color: #f3f4f6; border-radius: 4px; font-size: 0.9rem; }
.progress-bar { height: 8px; background-color: #e5e7eb; border-radius: 4px; overflow: hidden; }
.progress-fill { height: 100%; background-color: #2563eb; }
.activity { border: 1px solid #e5e7eb; border-radius: 8px; padding: 15px; margin-bottom: 15px; }
.activity.completed { background-color: #f0fdf4; }
.badge { padding: 3px 8px; border-radius: 9999px; background-color: #e0e7ff; font-size: 0.8rem; }
</style>
</head>
<body>
<div class="plan-header">
<h1>{{.Plan.Title}}</h1>
<p>{{.Plan.Description}}</p>
<div class="plan-meta">
<div>Subject: {{.Plan.Subject}}</div>
<div>Period: {{.Period}}</div>
<div>Status: {{status .Plan.Status}}</div>
<div>Start: {{.Plan.StartDate.Format "2006-01-02"}}</div>
<div>End: {{.Plan.EndDate.Format "2006-01-02"}}</div>
</div>
{{- if .Plan.Topics}}
<p>Topics: {{join .Plan.Topics ", "}}</p>
{{- end}}
<div class="progress-container">
<div>Progress: {{percent .Plan.ProgressPercentage}}%</div>
<div class="progress-bar"><div class="progress-fill" style="width: {{percent .Plan.ProgressPercentage}}%"></div></div>
</div>
</div>
{{- range .Days}}
<h2>Day {{.Day}}</h2>
{{- range .Activities}}
<div class="activity{{if eq .Status "completed"}} completed{{end}}">
<h3>{{.Title}}</h3>
<p>{{.Description}}</p>
{{- if .LearningBenefit}}
<p><em>{{.LearningBenefit}}</em></p>
{{- end}}
<span class="badge">{{.Metadata.Subject}}</span>
<span class="badge">{{.DurationMinutes}} min</span>
<span class="badge">{{status .Status}}</span>
{{- if .ContentURL}}
<p><a href="{{.ContentURL}}">Open resource</a></p>
{{- end}}
</div>
{{- end}}
{{- end}}
</body>
</html>
`))

func renderHTML(plan *domain.LearningPlan) ([]byte, error) {
	view := htmlView{Plan: plan, Period: plan.Metadata.LearningPeriod.Label()}

	sorted := *plan
	sorted.Activities = append([]domain.Activity(nil), plan.Activities...)
	sorted.SortActivities()
	for _, a := range sorted.Activities {
		n := len(view.Days)
		if n == 0 || view.Days[n-1].Day != a.Day {
			view.Days = append(view.Days, htmlDay{Day: a.Day})
			n++
		}
		view.Days[n-1].Activities = append(view.Days[n-1].Activities, a)
	}

	var buf bytes.Buffer
	if err := planTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("rendering plan %s: %w", plan.ID, err)
	}
	return buf.Bytes(), nil
}
