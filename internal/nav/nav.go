// Package nav models the three drillable views over introspection results:
// the table list, one table's index list, and one table's schema detail.
// It owns the last-fetched result sets and all selection and scroll state;
// presentation reads it and never mutates it directly.
package nav

import (
	"context"

	"sqdu/internal/inspect"
)

// ViewKind identifies the current view.
type ViewKind int

const (
	ViewTables ViewKind = iota
	ViewIndexes
	ViewDetail
)

// View is the current view plus its per-variant payload: Indexes and Detail
// carry the table they were opened for, Tables carries nothing.
type View struct {
	Kind  ViewKind
	Table string
}

// HeaderRows is the number of reserved presentation rows at the top of every
// rendered list. Selection is kept as a zero-based data index; ListIndex
// applies this constant exactly once for the renderer.
const HeaderRows = 2

// Fetcher supplies the data a view transition needs. Fetch failures leave
// the state unchanged.
type Fetcher interface {
	ListIndexes(ctx context.Context, table string) ([]inspect.IndexSummary, error)
	TableDetail(ctx context.Context, table string) (inspect.TableDetail, error)
}

// State is the navigation state machine. Not safe for concurrent use; one
// input event is fully processed before the next is accepted.
type State struct {
	fetch Fetcher

	view      View
	tables    []inspect.TableSummary
	indexes   []inspect.IndexSummary
	detail    inspect.TableDetail
	hasDetail bool

	selected int // data index into the visible list, -1 when none
	scroll   int
}

// New starts in the Tables view with the first entry selected, or no
// selection when the table list is empty.
func New(fetch Fetcher, tables []inspect.TableSummary) *State {
	s := &State{fetch: fetch, tables: tables, selected: -1}
	if len(tables) > 0 {
		s.selected = 0
	}
	return s
}

// View returns the current view variant.
func (s *State) View() View { return s.view }

// Tables returns the loaded table summaries.
func (s *State) Tables() []inspect.TableSummary { return s.tables }

// Indexes returns the index summaries loaded for the Indexes view.
func (s *State) Indexes() []inspect.IndexSummary { return s.indexes }

// Detail returns the loaded table detail and whether one is loaded.
func (s *State) Detail() (inspect.TableDetail, bool) { return s.detail, s.hasDetail }

// Selection returns the selected data index, or false when nothing is
// selectable in the current view.
func (s *State) Selection() (int, bool) {
	if s.selected < 0 {
		return 0, false
	}
	return s.selected, true
}

// ListIndex returns the rendered list position of the selection, offset past
// the header rows.
func (s *State) ListIndex() (int, bool) {
	sel, ok := s.Selection()
	if !ok {
		return 0, false
	}
	return sel + HeaderRows, true
}

// Scroll returns the detail view scroll offset.
func (s *State) Scroll() int { return s.scroll }

// SelectedTable returns the table summary under the cursor in the Tables view.
func (s *State) SelectedTable() (inspect.TableSummary, bool) {
	if s.view.Kind != ViewTables || s.selected < 0 || s.selected >= len(s.tables) {
		return inspect.TableSummary{}, false
	}
	return s.tables[s.selected], true
}

// SelectedIndex returns the index summary under the cursor in the Indexes view.
func (s *State) SelectedIndex() (inspect.IndexSummary, bool) {
	if s.view.Kind != ViewIndexes || s.selected < 0 || s.selected >= len(s.indexes) {
		return inspect.IndexSummary{}, false
	}
	return s.indexes[s.selected], true
}

// listLen is the length of the list the cursor moves over in the current view.
func (s *State) listLen() int {
	switch s.view.Kind {
	case ViewTables:
		return len(s.tables)
	case ViewIndexes:
		return len(s.indexes)
	case ViewDetail:
		return 0
	}
	panic("nav: unhandled view kind")
}

// Next moves the selection down one entry, wrapping past the last entry to
// the first. No-op in the Detail view and on empty lists.
func (s *State) Next() {
	n := s.listLen()
	if n == 0 {
		return
	}
	if s.selected < 0 || s.selected >= n-1 {
		s.selected = 0
	} else {
		s.selected++
	}
}

// Previous moves the selection up one entry, wrapping before the first entry
// to the last. No-op in the Detail view and on empty lists.
func (s *State) Previous() {
	n := s.listLen()
	if n == 0 {
		return
	}
	if s.selected <= 0 {
		s.selected = n - 1
	} else {
		s.selected--
	}
}

// DrillIndexes opens the Indexes view for the selected table. Only available
// from the Tables view. A fetch failure leaves the state unchanged.
func (s *State) DrillIndexes(ctx context.Context) {
	switch s.view.Kind {
	case ViewTables:
		table, ok := s.SelectedTable()
		if !ok {
			return
		}
		indexes, err := s.fetch.ListIndexes(ctx, table.Name)
		if err != nil {
			return
		}
		s.indexes = indexes
		s.view = View{Kind: ViewIndexes, Table: table.Name}
		if len(indexes) > 0 {
			s.selected = 0
		} else {
			s.selected = -1
		}
	case ViewIndexes:
		return
	case ViewDetail:
		return
	}
}

// ShowDetail opens the Detail view for the relevant table: the selection in
// Tables, the owning table in Indexes. Idempotent in Detail. A fetch failure
// leaves the state unchanged.
func (s *State) ShowDetail(ctx context.Context) {
	var table string
	switch s.view.Kind {
	case ViewTables:
		t, ok := s.SelectedTable()
		if !ok {
			return
		}
		table = t.Name
	case ViewIndexes:
		table = s.view.Table
	case ViewDetail:
		return
	}

	detail, err := s.fetch.TableDetail(ctx, table)
	if err != nil {
		return
	}
	s.detail = detail
	s.hasDetail = true
	s.view = View{Kind: ViewDetail, Table: table}
	s.selected = -1
	s.scroll = 0
}

// Back returns to the Tables view with the first entry selected. No-op when
// already there.
func (s *State) Back() {
	switch s.view.Kind {
	case ViewTables:
		return
	case ViewIndexes, ViewDetail:
		s.view = View{Kind: ViewTables}
		if len(s.tables) > 0 {
			s.selected = 0
		} else {
			s.selected = -1
		}
	}
}

// ScrollDown increments the detail scroll offset. Clamping to the content
// height is the renderer's concern. No-op outside the Detail view.
func (s *State) ScrollDown() {
	if s.view.Kind != ViewDetail {
		return
	}
	s.scroll++
}

// ScrollUp decrements the detail scroll offset, saturating at zero. No-op
// outside the Detail view.
func (s *State) ScrollUp() {
	if s.view.Kind != ViewDetail {
		return
	}
	if s.scroll > 0 {
		s.scroll--
	}
}
