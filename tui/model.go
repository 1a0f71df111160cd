// Package tui renders the watch-mode dashboard: a spinner while watching, a
// feed of recent synchronization runs, and a status line with totals.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Event is one finished synchronization run, successful or not.
type Event struct {
	Time    time.Time
	Source  string
	Touched []string
	Created bool
	Err     error
}

// maxFeed bounds the number of runs kept on screen.
const maxFeed = 20

// Run displays the dashboard until the context is cancelled, the events
// channel closes, or the user quits.
func Run(ctx context.Context, root string, events <-chan Event) error {
	program := tea.NewProgram(
		NewModel(root, events),
		tea.WithContext(ctx),
	)
	_, err := program.Run()
	if err == tea.ErrProgramKilled && ctx.Err() != nil {
		return nil
	}
	return err
}

// Model implements the Bubble Tea model for watch mode.
type Model struct {
	root   string
	events <-chan Event

	spinner spinner.Model
	feed    []Event
	synced  int
	failed  int

	width    int
	finished bool
}

func NewModel(root string, events <-chan Event) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return Model{
		root:    root,
		events:  events,
		spinner: sp,
		width:   80,
	}
}

type eventMsg Event

type streamClosedMsg struct{}

func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case eventMsg:
		m.feed = append(m.feed, Event(msg))
		if len(m.feed) > maxFeed {
			m.feed = m.feed[len(m.feed)-maxFeed:]
		}
		if msg.Err != nil {
			m.failed++
		} else {
			m.synced++
		}
		return m, waitForEvent(m.events)

	case streamClosedMsg:
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}
