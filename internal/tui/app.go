// Package tui renders the navigation state and dispatches key input to it.
// Fetches run synchronously inside Update, so one input event is fully
// processed before the next is accepted.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"sqdu/internal/inspect"
	"sqdu/internal/nav"
)

// Model is the bubbletea model wrapping the navigation state machine.
type Model struct {
	state  *nav.State
	keys   KeyMap
	dbPath string
	total  int64

	width  int
	height int
}

// New builds the model from an initial full-database scan. engine backs the
// fetches triggered by view transitions.
func New(engine *inspect.Engine, dbPath string, tables []inspect.TableSummary) Model {
	return Model{
		state:  nav.New(engine, tables),
		keys:   DefaultKeyMap(),
		dbPath: dbPath,
		total:  inspect.TotalSize(tables),
	}
}

// State exposes the navigation state, read-only, for rendering and tests.
func (m Model) State() *nav.State { return m.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		ctx := context.Background()
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Down):
			if m.state.View().Kind == nav.ViewDetail {
				m.state.ScrollDown()
			} else {
				m.state.Next()
			}

		case key.Matches(msg, m.keys.Up):
			if m.state.View().Kind == nav.ViewDetail {
				m.state.ScrollUp()
			} else {
				m.state.Previous()
			}

		case key.Matches(msg, m.keys.Drill):
			m.state.DrillIndexes(ctx)

		case key.Matches(msg, m.keys.Detail):
			m.state.ShowDetail(ctx)

		case key.Matches(msg, m.keys.Back):
			m.state.Back()
		}
	}
	return m, nil
}
