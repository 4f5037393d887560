package dialects

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"sqdu/internal/inspect"
	"sqdu/internal/logger"
)

// myDialect uses information_schema, scoped to the connected database.
// MySQL keeps no per-index page statistics, so index sizes come from the
// table-wide index_length and per-index sizes report zero.
type myDialect struct{}

// myQuoteIdent makes a table name safe to use in identifier position.
func myQuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (myDialect) Tables(ctx context.Context, db *sql.DB) ([]inspect.TableSummary, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT table_name, COALESCE(data_length, 0), COALESCE(index_length, 0)
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE' AND table_schema = DATABASE()
        ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []inspect.TableSummary
	for rows.Next() {
		var t inspect.TableSummary
		if err := rows.Scan(&t.Name, &t.SizeBytes, &t.IndexSizeBytes); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}

	for i := range tables {
		t := &tables[i]

		_ = db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COUNT(*) FROM %s", myQuoteIdent(t.Name)),
		).Scan(&t.RowCount)

		_ = db.QueryRowContext(ctx, `
            SELECT COUNT(DISTINCT index_name)
            FROM information_schema.statistics
            WHERE table_schema = DATABASE() AND table_name = ? AND index_name <> 'PRIMARY'`, t.Name,
		).Scan(&t.IndexCount)
	}
	return tables, nil
}

func (myDialect) Indexes(ctx context.Context, db *sql.DB, table string) ([]inspect.IndexSummary, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT index_name, MAX(non_unique),
               GROUP_CONCAT(column_name ORDER BY seq_in_index SEPARATOR ', ')
        FROM information_schema.statistics
        WHERE table_schema = DATABASE() AND table_name = ? AND index_name <> 'PRIMARY'
        GROUP BY index_name`, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var indexes []inspect.IndexSummary
	for rows.Next() {
		var ix inspect.IndexSummary
		var nonUnique int
		var cols sql.NullString
		if err := rows.Scan(&ix.Name, &nonUnique, &cols); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		ix.Unique = nonUnique == 0
		if cols.Valid && cols.String != "" {
			ix.Columns = cols.String
		} else {
			ix.Columns = inspect.SentinelColumns
		}
		indexes = append(indexes, ix)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	return indexes, nil
}

func (myDialect) Detail(ctx context.Context, db *sql.DB, table string) (inspect.TableDetail, error) {
	detail := inspect.TableDetail{DDL: inspect.PlaceholderDDL}

	var tableName, ddl string
	if err := db.QueryRowContext(ctx,
		fmt.Sprintf("SHOW CREATE TABLE %s", myQuoteIdent(table)),
	).Scan(&tableName, &ddl); err == nil {
		detail.DDL = ddl
	}

	if rows, err := db.QueryContext(ctx, `
        SELECT column_name, column_type, is_nullable = 'NO', column_default, column_key = 'PRI'
        FROM information_schema.columns
        WHERE table_schema = DATABASE() AND table_name = ?
        ORDER BY ordinal_position`, table); err == nil {
		for rows.Next() {
			var col inspect.ColumnInfo
			var dflt sql.NullString
			if err := rows.Scan(&col.Name, &col.Type, &col.NotNull, &dflt, &col.PK); err != nil {
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
        SELECT kcu.column_name, kcu.referenced_table_name, kcu.referenced_column_name,
               rc.update_rule, rc.delete_rule
        FROM information_schema.key_column_usage kcu
        JOIN information_schema.referential_constraints rc
          ON kcu.constraint_name = rc.constraint_name
         AND kcu.constraint_schema = rc.constraint_schema
        WHERE kcu.table_schema = DATABASE() AND kcu.table_name = ?
          AND kcu.referenced_table_name IS NOT NULL
        ORDER BY kcu.constraint_name, kcu.ordinal_position`, table); err == nil {
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
        SELECT trigger_name FROM information_schema.triggers
        WHERE trigger_schema = DATABASE() AND event_object_table = ?
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
	inspect.Register("mysql", myDialect{})
}
