package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View composes the header, the run feed, and the status bar.
func (m Model) View() string {
	header := titleStyle.Render("protosync watch") + " " + rootStyle.Render(m.root)

	var activity string
	if m.finished {
		activity = dimStyle.Render("watcher stopped")
	} else {
		activity = m.spinner.View() + " watching for changes"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		activity,
		"",
		m.renderFeed(),
		m.renderStatusBar(),
	)
}

func (m Model) renderFeed() string {
	if len(m.feed) == 0 {
		return dimStyle.Render("no changes yet") + "\n"
	}
	lines := make([]string, 0, len(m.feed))
	for _, ev := range m.feed {
		lines = append(lines, renderEvent(ev))
	}
	return strings.Join(lines, "\n") + "\n"
}

func renderEvent(ev Event) string {
	stamp := dimStyle.Render(ev.Time.Format("15:04:05"))
	if ev.Err != nil {
		return fmt.Sprintf("%s %s %s: %v", stamp, failedStyle.Render("✗"), ev.Source, ev.Err)
	}
	detail := "up to date"
	if len(ev.Touched) > 0 {
		detail = "updated " + strings.Join(ev.Touched, ", ")
		if ev.Created {
			detail += " (header created)"
		}
	}
	return fmt.Sprintf("%s %s %s: %s", stamp, syncedStyle.Render("✓"), ev.Source, detail)
}

func (m Model) renderStatusBar() string {
	counts := fmt.Sprintf("%d synced | %d failed", m.synced, m.failed)
	hint := "q to quit"
	pad := m.width - lipgloss.Width(counts) - lipgloss.Width(hint)
	if pad < 1 {
		pad = 1
	}
	return statusBarStyle.Width(m.width).Render(counts + strings.Repeat(" ", pad) + hint)
}
