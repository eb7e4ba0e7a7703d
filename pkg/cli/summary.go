package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the summary colors.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
	Warn    lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Warn:    lipgloss.Color("#ffb86c"),
}

// Styles holds the styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Key    lipgloss.Style
	Value  lipgloss.Style
	Warn   lipgloss.Style
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Key:    lipgloss.NewStyle().Foreground(t.Dim),
		Value:  lipgloss.NewStyle().Bold(true),
		Warn:   lipgloss.NewStyle().Foreground(t.Warn),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
	}
}

// Field is one line of a summary.
type Field struct {
	Key   string
	Value string
	Warn  bool
}

// Summary is a titled box of aligned key/value lines.
type Summary struct {
	Styles Styles
	Title  string
	Fields []Field
}

// Render renders the summary.
func (s Summary) Render() string {
	width := 0
	for _, f := range s.Fields {
		width = max(width, lipgloss.Width(f.Key))
	}
	lines := []string{s.Styles.Title.Render(s.Title)}
	for _, f := range s.Fields {
		key := s.Styles.Key.Render(f.Key + strings.Repeat(" ", width-lipgloss.Width(f.Key)))
		val := s.Styles.Value
		if f.Warn {
			val = s.Styles.Warn
		}
		lines = append(lines, key+"  "+val.Render(f.Value))
	}
	return s.Styles.Border.Render(strings.Join(lines, "\n"))
}
