package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// ActivityStatusPill renders an activity or plan status with its marker.
func ActivityStatusPill(s domain.ActivityStatus) string {
	switch s {
	case domain.StatusCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.StatusInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.StatusNotStarted:
		return StyleBlue.Render("○ Not Started")
	default:
		return StyleDim.Render(string(s))
	}
}

func TaskStatusPill(s domain.TaskStatus) string {
	switch s {
	case domain.TaskPending:
		return StyleBlue.Render("○ PENDING")
	case domain.TaskInProgress:
		return StyleYellow.Render("◐ IN PROGRESS")
	case domain.TaskCompleted:
		return StyleGreen.Render("✔ COMPLETED")
	case domain.TaskFailed:
		return StyleRed.Render("✖ FAILED")
	default:
		return StyleDim.Render(strings.ToUpper(string(s)))
	}
}

// TierBadge colors a content tier: primary green, fallback yellow,
// emergency red.
func TierBadge(t domain.ContentTier) string {
	switch t {
	case domain.TierPrimary:
		return StyleGreen.Render(string(t))
	case domain.TierFallback:
		return StyleYellow.Render(string(t))
	case domain.TierEmergency:
		return StyleRed.Render(string(t))
	}
	return StyleDim.Render(string(t))
}

// Header renders an upper-cased section header over an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
