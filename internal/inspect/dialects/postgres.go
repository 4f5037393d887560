package dialects

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"sqdu/internal/inspect"
	"sqdu/internal/logger"
)

// pgDialect uses information_schema plus the pg_catalog size functions.
// Scope is the current schema so table names stay unqualified, matching the
// single-namespace model of the embedded engines.
type pgDialect struct{}

func (pgDialect) Tables(ctx context.Context, db *sql.DB) ([]inspect.TableSummary, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE' AND table_schema = current_schema()
        ORDER BY table_name`)
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

		_ = db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(name)),
		).Scan(&t.RowCount)

		_ = db.QueryRowContext(ctx, `
            SELECT pg_table_size((quote_ident(current_schema())||'.'||quote_ident($1))::regclass)`, name,
		).Scan(&t.SizeBytes)

		_ = db.QueryRowContext(ctx, `
            SELECT COUNT(*) FROM pg_indexes
            WHERE schemaname = current_schema() AND tablename = $1`, name,
		).Scan(&t.IndexCount)

		_ = db.QueryRowContext(ctx, `
            SELECT pg_indexes_size((quote_ident(current_schema())||'.'||quote_ident($1))::regclass)`, name,
		).Scan(&t.IndexSizeBytes)

		tables = append(tables, t)
	}
	return tables, nil
}

func (pgDialect) Indexes(ctx context.Context, db *sql.DB, table string) ([]inspect.IndexSummary, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT indexname, indexdef FROM pg_indexes
        WHERE schemaname = current_schema() AND tablename = $1`, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	type entry struct {
		name string
		def  sql.NullString
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.name, &e.def); err != nil {
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

		_ = db.QueryRowContext(ctx, `
            SELECT pg_relation_size((quote_ident(current_schema())||'.'||quote_ident($1))::regclass)`, e.name,
		).Scan(&ix.SizeBytes)

		def := inspect.ParseIndexDef(e.def.String, e.def.Valid)
		ix.Unique = def.Unique
		ix.Columns = def.Columns
		ix.PartialClause = def.PartialClause
		ix.Partial = def.Partial

		indexes = append(indexes, ix)
	}
	return indexes, nil
}

func (pgDialect) Detail(ctx context.Context, db *sql.DB, table string) (inspect.TableDetail, error) {
	// PostgreSQL keeps no original CREATE TABLE text in its catalog.
	detail := inspect.TableDetail{DDL: inspect.PlaceholderDDL}

	if rows, err := db.QueryContext(ctx, `
        SELECT column_name, data_type, is_nullable = 'NO', column_default
        FROM information_schema.columns
        WHERE table_schema = current_schema() AND table_name = $1
        ORDER BY ordinal_position`, table); err == nil {
		for rows.Next() {
			var col inspect.ColumnInfo
			var dflt sql.NullString
			if err := rows.Scan(&col.Name, &col.Type, &col.NotNull, &dflt); err != nil {
				continue
			}
			col.DefaultValue = dflt.String
			col.HasDefault = dflt.Valid
			detail.Columns = append(detail.Columns, col)
		}
		rows.Close()
	} else {
		logger.Debug("query columns: %v", err)
	}

	if rows, err := db.QueryContext(ctx, `
        SELECT a.attname
        FROM pg_index i
        JOIN pg_class c ON i.indrelid = c.oid
        JOIN pg_namespace ns ON c.relnamespace = ns.oid
        JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
        WHERE ns.nspname = current_schema() AND c.relname = $1 AND i.indisprimary`, table); err == nil {
		for rows.Next() {
			var pkCol string
			if err := rows.Scan(&pkCol); err != nil {
				continue
			}
			for j := range detail.Columns {
				if detail.Columns[j].Name == pkCol {
					detail.Columns[j].PK = true
				}
			}
		}
		rows.Close()
	} else {
		logger.Debug("query primary key: %v", err)
	}

	if rows, err := db.QueryContext(ctx, `
        SELECT kcu.column_name, rkcu.table_name, rkcu.column_name,
               rc.update_rule, rc.delete_rule
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.constraint_schema = kcu.constraint_schema
        JOIN information_schema.referential_constraints rc
          ON tc.constraint_name = rc.constraint_name
         AND tc.constraint_schema = rc.constraint_schema
        JOIN information_schema.key_column_usage rkcu
          ON rc.unique_constraint_name = rkcu.constraint_name
         AND rc.unique_constraint_schema = rkcu.constraint_schema
         AND kcu.ordinal_position = rkcu.ordinal_position
        WHERE tc.constraint_type = 'FOREIGN KEY'
          AND tc.table_schema = current_schema() AND tc.table_name = $1
        ORDER BY tc.constraint_name, kcu.ordinal_position`, table); err == nil {
		for rows.Next() {
			var fk inspect.ForeignKeyInfo
			if err := rows.Scan(&fk.FromColumn, &fk.ToTable, &fk.ToColumn, &fk.OnUpdate, &fk.OnDelete); err != nil {
				continue
			}
			detail.ForeignKeys = append(detail.ForeignKeys, fk)
		}
		rows.Close()
	} else {
		logger.Debug("query foreign keys: %v", err)
	}

	if rows, err := db.QueryContext(ctx, `
        SELECT DISTINCT trigger_name
        FROM information_schema.triggers
        WHERE event_object_schema = current_schema() AND event_object_table = $1
        ORDER BY trigger_name`, table); err == nil {
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err == nil {
				detail.Triggers = append(detail.Triggers, name)
			}
		}
		rows.Close()
	} else {
		logger.Debug("query triggers: %v", err)
	}

	return detail, nil
}

func init() {
	inspect.Register("postgres", pgDialect{})
}
