package nav

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqdu/internal/inspect"
)

// stubFetcher serves canned results and can be switched to fail.
type stubFetcher struct {
	indexes map[string][]inspect.IndexSummary
	details map[string]inspect.TableDetail
	fail    bool
}

var errStub = errors.New("stub failure")

func (f *stubFetcher) ListIndexes(_ context.Context, table string) ([]inspect.IndexSummary, error) {
	if f.fail {
		return nil, errStub
	}
	return f.indexes[table], nil
}

func (f *stubFetcher) TableDetail(_ context.Context, table string) (inspect.TableDetail, error) {
	if f.fail {
		return inspect.TableDetail{}, errStub
	}
	return f.details[table], nil
}

func fixtureState(fail bool) (*State, *stubFetcher) {
	fetch := &stubFetcher{
		indexes: map[string][]inspect.IndexSummary{
			"orders": {
				{Name: "ix_orders_customer", Columns: "CustomerId"},
				{Name: "ix_orders_date", Columns: "OrderDate"},
			},
			"empty": nil,
		},
		details: map[string]inspect.TableDetail{
			"orders": {DDL: "CREATE TABLE orders (id INTEGER)"},
		},
		fail: fail,
	}
	tables := []inspect.TableSummary{
		{Name: "orders", SizeBytes: 4096},
		{Name: "empty", SizeBytes: 1024},
		{Name: "products", SizeBytes: 512},
	}
	return New(fetch, tables), fetch
}

func TestNewSelectsFirstEntry(t *testing.T) {
	s, _ := fixtureState(false)

	assert.Equal(t, ViewTables, s.View().Kind)
	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, 0, sel)

	li, ok := s.ListIndex()
	require.True(t, ok)
	assert.Equal(t, HeaderRows, li)
}

func TestNewEmptyListHasNoSelection(t *testing.T) {
	s := New(&stubFetcher{}, nil)
	_, ok := s.Selection()
	assert.False(t, ok)

	// movement on an empty list is a no-op
	s.Next()
	s.Previous()
	_, ok = s.Selection()
	assert.False(t, ok)
}

func TestNextFullCycleWrapsToFirst(t *testing.T) {
	s, _ := fixtureState(false)
	n := len(s.Tables())

	for i := 0; i < n; i++ {
		s.Next()
	}
	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, 0, sel, "n presses of next from the first row return to it")
}

func TestPreviousFromFirstWrapsToLast(t *testing.T) {
	s, _ := fixtureState(false)

	s.Previous()
	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, len(s.Tables())-1, sel)
}

func TestDrillIndexes(t *testing.T) {
	s, _ := fixtureState(false)

	s.DrillIndexes(context.Background())
	assert.Equal(t, View{Kind: ViewIndexes, Table: "orders"}, s.View())
	assert.Len(t, s.Indexes(), 2)

	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, 0, sel, "selection resets to the first index entry")
}

func TestDrillIntoTableWithoutIndexes(t *testing.T) {
	s, _ := fixtureState(false)

	s.Next() // "empty"
	s.DrillIndexes(context.Background())
	assert.Equal(t, ViewIndexes, s.View().Kind)
	_, ok := s.Selection()
	assert.False(t, ok, "empty index list leaves no selection")

	// movement stays a no-op
	s.Next()
	_, ok = s.Selection()
	assert.False(t, ok)
}

func TestDrillIndexesOnlyFromTables(t *testing.T) {
	s, _ := fixtureState(false)

	s.DrillIndexes(context.Background())
	require.Equal(t, ViewIndexes, s.View().Kind)
	before := *s
	s.DrillIndexes(context.Background())
	assert.Equal(t, before.view, s.view)
	assert.Equal(t, before.selected, s.selected)
}

func TestShowDetailFromTablesAndIndexes(t *testing.T) {
	s, _ := fixtureState(false)

	s.ShowDetail(context.Background())
	assert.Equal(t, View{Kind: ViewDetail, Table: "orders"}, s.View())
	_, ok := s.Selection()
	assert.False(t, ok, "detail view has no selectable list")
	assert.Equal(t, 0, s.Scroll())

	detail, ok := s.Detail()
	require.True(t, ok)
	assert.Equal(t, "CREATE TABLE orders (id INTEGER)", detail.DDL)

	// idempotent in Detail
	s.ScrollDown()
	s.ShowDetail(context.Background())
	assert.Equal(t, View{Kind: ViewDetail, Table: "orders"}, s.View())
	assert.Equal(t, 1, s.Scroll(), "repeated show-detail does not reset state")

	// from Indexes the owning table is used
	s.Back()
	s.DrillIndexes(context.Background())
	s.ShowDetail(context.Background())
	assert.Equal(t, View{Kind: ViewDetail, Table: "orders"}, s.View())
	assert.Equal(t, 0, s.Scroll(), "fresh detail entry resets scroll")
}

func TestBack(t *testing.T) {
	s, _ := fixtureState(false)

	s.Back() // no-op at top level
	assert.Equal(t, ViewTables, s.View().Kind)

	s.Next()
	s.DrillIndexes(context.Background())
	s.Back()
	assert.Equal(t, ViewTables, s.View().Kind)
	sel, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, 0, sel, "back resets selection to the first entry")
}

func TestFetchFailureLeavesStateUnchanged(t *testing.T) {
	s, fetch := fixtureState(true)

	before := *s
	s.DrillIndexes(context.Background())
	assert.Equal(t, before.view, s.view)
	assert.Equal(t, before.selected, s.selected)
	assert.Equal(t, before.indexes, s.indexes)

	s.ShowDetail(context.Background())
	assert.Equal(t, before.view, s.view)
	assert.Equal(t, before.selected, s.selected)
	assert.False(t, s.hasDetail)

	// and the same transition succeeds once the fetcher recovers
	fetch.fail = false
	s.DrillIndexes(context.Background())
	assert.Equal(t, ViewIndexes, s.View().Kind)
}

func TestScrollOnlyInDetail(t *testing.T) {
	s, _ := fixtureState(false)

	s.ScrollDown()
	assert.Equal(t, 0, s.Scroll(), "scroll is a no-op outside the detail view")

	s.ShowDetail(context.Background())
	s.ScrollDown()
	s.ScrollDown()
	s.ScrollDown()
	assert.Equal(t, 3, s.Scroll())

	s.ScrollUp()
	s.ScrollUp()
	s.ScrollUp()
	s.ScrollUp()
	assert.Equal(t, 0, s.Scroll(), "scroll saturates at zero")
}

func TestSelectedEntriesFollowCursor(t *testing.T) {
	s, _ := fixtureState(false)

	tab, ok := s.SelectedTable()
	require.True(t, ok)
	assert.Equal(t, "orders", tab.Name)

	s.Next()
	s.Next()
	tab, ok = s.SelectedTable()
	require.True(t, ok)
	assert.Equal(t, "products", tab.Name)

	s.Previous()
	s.Previous()
	s.DrillIndexes(context.Background())
	s.Next()
	ix, ok := s.SelectedIndex()
	require.True(t, ok)
	assert.Equal(t, "ix_orders_date", ix.Name)
}
