package tui

import (
	"strings"

	"github.com/aretw0/arbor/pkg/runner"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
// Bot answers may carry markdown (lists, bold); plain text passes through unchanged.
func NewRenderer() runner.ContentRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return func(s string) (string, error) { return s, nil }
	}

	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown, err
		}
		return strings.Trim(out, "\n"), nil
	}
}

// NewStyle colors the transcript for the given terminal profile.
// termenv.Ascii yields undecorated text.
func NewStyle(p termenv.Profile) runner.Style {
	paint := func(hex string, bold bool) func(string) string {
		return func(s string) string {
			st := termenv.String(s).Foreground(p.Color(hex))
			if bold {
				st = st.Bold()
			}
			return st.String()
		}
	}
	return runner.Style{
		Bot:     paint("#e5e7eb", false),
		User:    paint("#60a5fa", true),
		Control: paint("#34d399", false),
		System:  paint("#f87171", false),
	}
}

// DefaultStyle detects the color profile of stdout.
func DefaultStyle() runner.Style {
	return NewStyle(termenv.ColorProfile())
}
