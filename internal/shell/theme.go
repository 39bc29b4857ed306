package shell

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	Cyan    = lipgloss.Color("#00D4AA")
	Yellow  = lipgloss.Color("#FFD700")
	Magenta = lipgloss.Color("#D670D6")
	Blue    = lipgloss.Color("#3B8EEA")
	Red     = lipgloss.Color("#F14C4C")
	Green   = lipgloss.Color("#23D18B")
)

const banner = `
 ____       _   _                  _
|  _ \ __ _| |_| |_ ___ _ __ _ __ | |    ___   __ _
| |_) / _` + "`" + ` | __| __/ _ \ '__| '_ \| |   / _ \ / _` + "`" + ` |
|  __/ (_| | |_| ||  __/ |  | | | | |__| (_) | (_| |
|_|   \__,_|\__|\__\___|_|  |_| |_|_____\___/ \__, |
                                              |___/
`

// theme holds styles bound to one output so colour detection follows the
// writer rather than the process stdout.
type theme struct {
	prompt    lipgloss.Style
	banner    lipgloss.Style
	heading   lipgloss.Style
	answer    lipgloss.Style
	label     lipgloss.Style
	separator lipgloss.Style
	errorMsg  lipgloss.Style
	success   lipgloss.Style
	notice    lipgloss.Style
}

func newTheme(out io.Writer) theme {
	r := lipgloss.NewRenderer(out)
	return theme{
		prompt:    r.NewStyle().Foreground(Cyan),
		banner:    r.NewStyle().Foreground(Cyan).Bold(true),
		heading:   r.NewStyle().Foreground(Magenta).Bold(true),
		answer:    r.NewStyle().Foreground(Magenta),
		label:     r.NewStyle().Foreground(Yellow),
		separator: r.NewStyle().Foreground(Blue),
		errorMsg:  r.NewStyle().Foreground(Red),
		success:   r.NewStyle().Foreground(Green),
		notice:    r.NewStyle().Foreground(Yellow),
	}
}
