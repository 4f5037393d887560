// Package inspect derives storage metrics and schema metadata from a
// relational database's catalog and statistics facilities. All operations
// are read-only; the engine never mutates the target database.
package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Dialect answers catalog and statistics queries for one database engine.
// Enumeration order is the dialect's concern; sorting happens in the Engine.
type Dialect interface {

	// Tables enumerates user tables with their storage metrics.
	Tables(ctx context.Context, db *sql.DB) ([]TableSummary, error)

	// Indexes enumerates the indexes attached to the named table.
	// An unknown table yields an empty slice, not an error.
	Indexes(ctx context.Context, db *sql.DB, table string) ([]IndexSummary, error)

	// Detail fetches DDL, columns, foreign keys and triggers for one table.
	// An unknown table yields empty sequences and placeholder DDL.
	Detail(ctx context.Context, db *sql.DB, table string) (TableDetail, error)
}

var dialects = map[string]Dialect{}

// Register makes a Dialect available under name.
func Register(name string, d Dialect) {
	dialects[strings.ToLower(name)] = d
}

// listRegistered returns the registered dialect keys (for diagnostics).
func listRegistered() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RegisteredDialects is a helper that allows main to print registered dialects.
func RegisteredDialects() []string {
	return listRegistered()
}

// Engine runs introspection operations against one database. Every operation
// opens its own short-lived connection and closes it before returning, so
// independent invocations are safe to run concurrently.
type Engine struct {
	driver  string
	dsn     string
	timeout time.Duration
	dialect Dialect
}

// NewEngine resolves the dialect registered for driver. The connection is not
// opened here; each operation opens and closes its own.
func NewEngine(driver, dsn string, timeout time.Duration) (*Engine, error) {
	driver = strings.ToLower(driver)
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("dialect not registered: %q (available: %v)", driver, listRegistered())
	}
	return &Engine{driver: driver, dsn: dsn, timeout: timeout, dialect: d}, nil
}

func (e *Engine) open(ctx context.Context) (*sql.DB, context.Context, context.CancelFunc, error) {
	db, err := sql.Open(e.driver, e.dsn)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		db.Close()
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, ctx, cancel, nil
}

// ListTables scans the whole database and returns one summary per user
// table, sorted by size descending with catalog-order ties kept stable.
// Per-table metric lookups that fail are reported as zero; only a failure
// to open the connection or to enumerate the catalog is an error.
func (e *Engine) ListTables(ctx context.Context) ([]TableSummary, error) {
	db, ctx, cancel, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer db.Close()

	tables, err := e.dialect.Tables(ctx, db)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].SizeBytes > tables[j].SizeBytes
	})
	return tables, nil
}

// ListIndexes returns the indexes of one table, sorted by size descending,
// stable on ties. table is a probe, not an existence check: a name with no
// matching indexes yields an empty slice.
func (e *Engine) ListIndexes(ctx context.Context, table string) ([]IndexSummary, error) {
	db, ctx, cancel, err := e.open(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer db.Close()

	indexes, err := e.dialect.Indexes(ctx, db, table)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(indexes, func(i, j int) bool {
		return indexes[i].SizeBytes > indexes[j].SizeBytes
	})
	return indexes, nil
}

// TableDetail returns the full schema view of one table. Unknown tables get
// placeholder DDL and empty sequences.
func (e *Engine) TableDetail(ctx context.Context, table string) (TableDetail, error) {
	db, ctx, cancel, err := e.open(ctx)
	if err != nil {
		return TableDetail{}, err
	}
	defer cancel()
	defer db.Close()

	return e.dialect.Detail(ctx, db, table)
}
