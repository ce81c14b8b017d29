// Package output renders planner results for the terminal.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/yanqian/runplanner/internal/domain/schedule"
)

var (
	ColorPrimary = lipgloss.Color("#64b5f6")
	ColorSuccess = lipgloss.Color("#66bb6a")
	ColorWarning = lipgloss.Color("#fff59d")
	ColorError   = lipgloss.Color("#ef5350")
	ColorMuted   = lipgloss.Color("#888888")
)

// Styles shared by the renderers. Reset to plain styles by SetNoColor.
var (
	StyleHeader  = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleBold    = lipgloss.NewStyle().Bold(true)
)

var noColor bool

// SetNoColor disables or enables color output globally.
func SetNoColor(disabled bool) {
	noColor = disabled
	if disabled {
		plain := lipgloss.NewStyle()
		StyleHeader = plain
		StyleSuccess = plain
		StyleWarning = plain
		StyleError = plain
		StyleMuted = plain
		StyleBold = plain
	}
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// ColorEnabled reports whether w is an interactive terminal that should get
// colors. NO_COLOR and the --no-color flag both win.
func ColorEnabled(w io.Writer, flagNoColor bool) bool {
	if flagNoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// QualityStyle picks the style for a weather tier.
func QualityStyle(q schedule.Quality) lipgloss.Style {
	switch q {
	case schedule.QualityExcellent:
		return StyleSuccess
	case schedule.QualityGood:
		return StyleBold
	case schedule.QualityFair:
		return StyleWarning
	default:
		return StyleError
	}
}
