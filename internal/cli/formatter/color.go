package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/ganttboard/internal/domain"
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

// Predefined lipgloss styles. SetPlain swaps them for unstyled ones.
var (
	StyleGreen  lipgloss.Style
	StyleYellow lipgloss.Style
	StyleRed    lipgloss.Style
	StyleBlue   lipgloss.Style
	StylePurple lipgloss.Style
	StyleDim    lipgloss.Style
	StyleFg     lipgloss.Style
	StyleHeader lipgloss.Style
	StyleBold   lipgloss.Style
)

var plain bool

func init() { SetPlain(false) }

// SetPlain turns styling off (for pipes and tests) or back on.
func SetPlain(on bool) {
	plain = on
	if on {
		s := lipgloss.NewStyle()
		StyleGreen, StyleYellow, StyleRed, StyleBlue, StylePurple = s, s, s, s, s
		StyleDim, StyleFg, StyleHeader, StyleBold = s, s, s, s
		return
	}
	StyleGreen = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
}

// Plain reports whether styling is off.
func Plain() bool { return plain }

// MilestoneColor returns the style for a milestone health status.
func MilestoneColor(status domain.MilestoneStatus) lipgloss.Style {
	switch status {
	case domain.MilestoneDelayed:
		return StyleRed
	case domain.MilestoneAtRisk:
		return StyleYellow
	case domain.MilestoneOnTrack, domain.MilestoneComplete:
		return StyleGreen
	default:
		return StyleDim
	}
}

// MilestoneIndicator returns a colored status indicator such as "● AT RISK".
func MilestoneIndicator(status domain.MilestoneStatus) string {
	var label string
	switch status {
	case domain.MilestoneComplete:
		label = "✔ COMPLETE"
	case domain.MilestoneOnTrack:
		label = "● ON TRACK"
	case domain.MilestoneAtRisk:
		label = "● AT RISK"
	case domain.MilestoneDelayed:
		label = "● DELAYED"
	default:
		label = "○ NOT STARTED"
	}
	return MilestoneColor(status).Render(label)
}

// SprintPill renders a sprint status.
func SprintPill(status domain.SprintStatus) string {
	switch status {
	case domain.SprintActive:
		return StyleGreen.Render("● Active")
	case domain.SprintCompleted:
		return StyleDim.Render("✔ Completed")
	default:
		return StyleBlue.Render("○ Planning")
	}
}

// ColumnLabel renders a workflow column name in the column's own color.
func ColumnLabel(c *domain.WorkflowColumn) string {
	if c == nil {
		return StyleDim.Render("?")
	}
	if plain || c.Color == "" {
		return c.Name
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color)).Render(c.Name)
}

// PriorityLabel renders a task priority, loud for high and urgent.
func PriorityLabel(p domain.Priority) string {
	switch p {
	case domain.PriorityUrgent:
		return StyleRed.Render(string(p))
	case domain.PriorityHigh:
		return StyleYellow.Render(string(p))
	case domain.PriorityLow:
		return StyleDim.Render(string(p))
	default:
		return string(p)
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// ShortID abbreviates generated UUIDs; short legacy IDs pass through.
func ShortID(id string) string {
	if len(id) == 36 && strings.Count(id, "-") == 4 {
		return id[:8]
	}
	return id
}
