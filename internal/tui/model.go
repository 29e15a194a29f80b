// Package tui is the bubbletea dashboard (SPEC_FULL.md §4.J): a pure
// client of the Control API that polls list_downloads on a ticker and
// renders one row per transfer with a progress bar, status, and speed.
// Grounded on RootModel/DownloadModel in the teacher repository's
// internal/tui/model.go, generalized from an in-process worker-pool
// poller into an HTTP Control-plane client.
package tui

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/freedlm/fdm/internal/transfer"
)

// Client is the subset of the Control API the dashboard needs. Satisfied
// structurally by the CLI's daemon HTTP client; the TUI never imports
// the manager or registry packages directly, matching SPEC_FULL.md §5's
// "never touch the Registry lock directly" rule for this component.
type Client interface {
	List() ([]*transfer.Record, error)
	Pause(id string) (*transfer.Record, error)
	Resume(id string) (*transfer.Record, error)
	Cancel(id string) (*transfer.Record, error)
	Restart(id string) (*transfer.Record, error)
	Remove(id string) error
}

const pollInterval = 500 * time.Millisecond

type tickMsg time.Time

type listMsg struct {
	records []*transfer.Record
	err     error
}

type actionDoneMsg struct {
	err error
}

// Model is the root bubbletea model.
type Model struct {
	client   Client
	records  []*transfer.Record
	bars     map[string]progress.Model
	cursor   int
	status   string
	quitting bool
}

// New returns a dashboard model ready to run under tea.NewProgram.
func New(client Client) Model {
	return Model{
		client: client,
		bars:   make(map[string]progress.Model),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(pollTick(), m.refresh())
}

func pollTick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) refresh() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		recs, err := client.List()
		return listMsg{records: recs, err: err}
	}
}

func (m Model) selected() *transfer.Record {
	if m.cursor < 0 || m.cursor >= len(m.records) {
		return nil
	}
	return m.records[m.cursor]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		return m, tea.Batch(pollTick(), m.refresh())

	case listMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.records = msg.records
		for _, rec := range m.records {
			if _, ok := m.bars[rec.ID]; !ok {
				m.bars[rec.ID] = progress.New(progress.WithDefaultGradient())
			}
		}
		if m.cursor >= len(m.records) {
			m.cursor = len(m.records) - 1
		}
		if m.cursor < 0 {
			m.cursor = 0
		}
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.records)-1 {
			m.cursor++
		}
	case "p":
		return m, m.act(m.client.Pause)
	case "r":
		return m, m.act(m.client.Resume)
	case "c":
		return m, m.act(m.client.Cancel)
	case "R":
		return m, m.act(m.client.Restart)
	case "x":
		rec := m.selected()
		if rec == nil {
			return m, nil
		}
		id := rec.ID
		return m, func() tea.Msg {
			return actionDoneMsg{err: m.client.Remove(id)}
		}
	case "y":
		if rec := m.selected(); rec != nil {
			if err := clipboard.WriteAll(rec.SavePath); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "copied " + rec.SavePath
			}
		}
	}
	return m, nil
}

func (m Model) act(fn func(string) (*transfer.Record, error)) tea.Cmd {
	rec := m.selected()
	if rec == nil {
		return nil
	}
	id := rec.ID
	return func() tea.Msg {
		_, err := fn(id)
		return actionDoneMsg{err: err}
	}
}
