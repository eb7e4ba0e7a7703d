package cli

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestSummary_Render(t *testing.T) {
	s := Summary{
		Styles: NewStyles(DefaultTheme),
		Title:  "import employees",
		Fields: []Field{
			{Key: "rows", Value: "5"},
			{Key: "skipped", Value: "6", Warn: true},
		},
	}
	out := s.Render()
	for _, want := range []string{"import employees", "rows", "skipped", "5", "6", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), out)
	}
	if lipgloss.Width(lines[0]) != lipgloss.Width(lines[len(lines)-1]) {
		t.Error("border is ragged")
	}
}
