package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Colour palette shared by every report.
var (
	colourPrimary = lipgloss.Color("#7C3AED")
	colourMuted   = lipgloss.Color("#6C7086")
	colourHigh    = lipgloss.Color("#F38BA8")
	colourMedium  = lipgloss.Color("#F9E2AF")
	colourOK      = lipgloss.Color("#A6E3A1")
)

// styles renders report elements. Colours are dropped automatically when
// the writer is not a terminal.
type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	code   lipgloss.Style
	muted  lipgloss.Style
	high   lipgloss.Style
	medium lipgloss.Style
	ok     lipgloss.Style

	// wrap is nil when the output is not a terminal.
	wrap *lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	st := styles{
		title:  r.NewStyle().Bold(true).Foreground(colourPrimary),
		header: r.NewStyle().Bold(true).Underline(true),
		code:   r.NewStyle().Bold(true),
		muted:  r.NewStyle().Foreground(colourMuted),
		high:   r.NewStyle().Bold(true).Foreground(colourHigh),
		medium: r.NewStyle().Foreground(colourMedium),
		ok:     r.NewStyle().Foreground(colourOK),
	}
	if width, ok := terminalWidth(w); ok {
		wrap := r.NewStyle().Width(width - 2).PaddingLeft(6)
		st.wrap = &wrap
	}
	return st
}

// indent renders a detail line under a report row, wrapped to the
// terminal width when there is one.
func (s styles) indent(text string) string {
	if s.wrap == nil {
		return "      " + text
	}
	return s.wrap.Render(text)
}

// score renders a percentage, highlighting scores at or above high.
func (s styles) score(percent, high float64) string {
	text := fmt.Sprintf("%6.2f%%", percent)
	if percent >= high {
		return s.high.Render(text)
	}
	return s.medium.Render(text)
}

// terminalWidth reports the width of w when it is a terminal.
func terminalWidth(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < 40 {
		return 0, false
	}
	return width, true
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
