package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Color palette of the console output, tuned for dark terminal backgrounds.
const (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorMuted     = lipgloss.Color("#6B7280")
	colorSuccess   = lipgloss.Color("#10B981")
	colorError     = lipgloss.Color("#EF4444")
	colorWarning   = lipgloss.Color("#F59E0B")
	colorHighlight = lipgloss.Color("#3B82F6")
)

// styles are bound to the renderer of the console writer, so that colors are only emitted on terminals.
type styles struct {
	title     lipgloss.Style
	subtitle  lipgloss.Style
	success   lipgloss.Style
	failure   lipgloss.Style
	warning   lipgloss.Style
	highlight lipgloss.Style
	label     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(colorPrimary),
		subtitle: r.NewStyle().
			Foreground(colorMuted),
		success: r.NewStyle().
			Foreground(colorSuccess),
		failure: r.NewStyle().
			Bold(true).
			Foreground(colorError),
		warning: r.NewStyle().
			Foreground(colorWarning),
		highlight: r.NewStyle().
			Foreground(colorHighlight),
		label: r.NewStyle().
			Bold(true),
	}
}
