package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorDanger  = lipgloss.Color("#EF4444")
	colorPrimary = lipgloss.Color("#7C3AED")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
	warnStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWarning)
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorDanger)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	cellStyle  = lipgloss.NewStyle().PaddingRight(2)
)

func title(format string, a ...any) { fmt.Println(titleStyle.Render(fmt.Sprintf(format, a...))) }
func ok(format string, a ...any)    { fmt.Println(okStyle.Render("✔ ") + fmt.Sprintf(format, a...)) }
func warn(format string, a ...any)  { fmt.Println(warnStyle.Render("! ") + fmt.Sprintf(format, a...)) }
func muted(format string, a ...any) { fmt.Println(mutedStyle.Render(fmt.Sprintf(format, a...))) }

// table prints rows in padded columns; the first row is the header.
func table(rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, c := range r {
			if w := lipgloss.Width(c); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}
	for n, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			s := cellStyle.Width(widths[i] + 2)
			if n == 0 {
				s = s.Bold(true)
			}
			cells[i] = s.Render(c)
		}
		fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
}
