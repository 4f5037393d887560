package dialects

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"sqdu/internal/inspect"
)

// sqliteDialect reads sqlite_master, the dbstat virtual table and the
// table_info/foreign_key_list pragmas.
type sqliteDialect struct{}

// quoteIdent makes a table name safe to use in identifier position.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqliteDialect) Tables(ctx context.Context, db *sql.DB) ([]inspect.TableSummary, error) {
	rows, err := db.QueryContext(ctx, `
	    SELECT name FROM sqlite_master
	    WHERE type='table' AND name NOT LIKE 'sqlite_%'
	    ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}

	tables := make([]inspect.TableSummary, 0, len(names))
	for _, name := range names {
		t := inspect.TableSummary{Name: name}

		// Failures below degrade to zero so one bad table cannot
		// abort the whole scan.
		_ = db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(name)),
		).Scan(&t.RowCount)

		var size sql.NullInt64
		if err := db.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?`, name,
		).Scan(&size); err == nil && size.Valid {
			t.SizeBytes = size.Int64
		}

		_ = db.QueryRowContext(ctx, `
		    SELECT COUNT(*) FROM sqlite_master
		    WHERE type='index' AND tbl_name=? AND name NOT LIKE 'sqlite_%'`, name,
		).Scan(&t.IndexCount)

		var idxSize sql.NullInt64
		if err := db.QueryRowContext(ctx, `
		    SELECT COALESCE(SUM(pgsize), 0) FROM dbstat
		    WHERE name IN (SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?)`, name,
		).Scan(&idxSize); err == nil && idxSize.Valid {
			t.IndexSizeBytes = idxSize.Int64
		}

		tables = append(tables, t)
	}
	return tables, nil
}

func (sqliteDialect) Indexes(ctx context.Context, db *sql.DB, table string) ([]inspect.IndexSummary, error) {
	rows, err := db.QueryContext(ctx, `
	    SELECT name, sql FROM sqlite_master
	    WHERE type='index' AND tbl_name=? AND name NOT LIKE 'sqlite_%'`, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	type entry struct {
		name    string
		sqlText sql.NullString
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.name, &e.sqlText); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}

	indexes := make([]inspect.IndexSummary, 0, len(entries))
	for _, e := range entries {
		ix := inspect.IndexSummary{Name: e.name}

		var size sql.NullInt64
		if err := db.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?`, e.name,
		).Scan(&size); err == nil && size.Valid {
			ix.SizeBytes = size.Int64
		}

		def := inspect.ParseIndexDef(e.sqlText.String, e.sqlText.Valid)
		ix.Unique = def.Unique
		ix.Columns = def.Columns
		ix.PartialClause = def.PartialClause
		ix.Partial = def.Partial

		indexes = append(indexes, ix)
	}
	return indexes, nil
}

func (sqliteDialect) Detail(ctx context.Context, db *sql.DB, table string) (inspect.TableDetail, error) {
	detail := inspect.TableDetail{DDL: inspect.PlaceholderDDL}

	var ddl sql.NullString
	if err := db.QueryRowContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type='table' AND name=?`, table,
	).Scan(&ddl); err == nil && ddl.Valid {
		detail.DDL = ddl.String
	}

	if rows, err := db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)),
	); err == nil {
		for rows.Next() {
			var cid, notNull, pk int
			var name, colType string
			var dflt sql.NullString
			if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
				continue
			}
			detail.Columns = append(detail.Columns, inspect.ColumnInfo{
				Name:         name,
				Type:         colType,
				NotNull:      notNull != 0,
				DefaultValue: dflt.String,
				HasDefault:   dflt.Valid,
				PK:           pk != 0,
			})
		}
		rows.Close()
	}

	if rows, err := db.QueryContext(ctx,
		fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table)),
	); err == nil {
		for rows.Next() {
			var id, seq int
			var toTable, from, onUpdate, onDelete, match string
			var to sql.NullString
			if err := rows.Scan(&id, &seq, &toTable, &from, &to, &onUpdate, &onDelete, &match); err != nil || !to.Valid {
				continue
			}
			detail.ForeignKeys = append(detail.ForeignKeys, inspect.ForeignKeyInfo{
				FromColumn: from,
				ToTable:    toTable,
				ToColumn:   to.String,
				OnUpdate:   onUpdate,
				OnDelete:   onDelete,
			})
		}
		rows.Close()
	}

	if rows, err := db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='trigger' AND tbl_name=?`, table,
	); err == nil {
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err == nil {
				detail.Triggers = append(detail.Triggers, name)
			}
		}
		rows.Close()
	}

	return detail, nil
}

func init() {
	inspect.Register("sqlite", sqliteDialect{})
}
