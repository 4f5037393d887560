package dialects

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb"

	"sqdu/internal/inspect"
	"sqdu/internal/logger"
)

// mssqlDialect uses sys.* catalog views; page counts come from
// sys.dm_db_partition_stats at 8 KiB per page.
type mssqlDialect struct{}

// msQuoteIdent makes a table name safe to use in identifier position.
func msQuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (mssqlDialect) Tables(ctx context.Context, db *sql.DB) ([]inspect.TableSummary, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT t.name,
               COALESCE(SUM(CASE WHEN ps.index_id IN (0, 1) THEN ps.used_page_count ELSE 0 END), 0) * 8192,
               COALESCE(SUM(CASE WHEN ps.index_id > 1 THEN ps.used_page_count ELSE 0 END), 0) * 8192
        FROM sys.tables t
        LEFT JOIN sys.dm_db_partition_stats ps ON ps.object_id = t.object_id
        WHERE t.is_ms_shipped = 0
        GROUP BY t.name
        ORDER BY t.name`)
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
			fmt.Sprintf("SELECT COUNT_BIG(*) FROM %s", msQuoteIdent(t.Name)),
		).Scan(&t.RowCount)

		_ = db.QueryRowContext(ctx, `
            SELECT COUNT(*) FROM sys.indexes i
            JOIN sys.tables tb ON tb.object_id = i.object_id
            WHERE tb.name = @table AND i.index_id > 1 AND i.is_primary_key = 0`,
			sql.Named("table", t.Name),
		).Scan(&t.IndexCount)
	}
	return tables, nil
}

func (mssqlDialect) Indexes(ctx context.Context, db *sql.DB, table string) ([]inspect.IndexSummary, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT i.name, i.is_unique, i.has_filter, i.filter_definition,
               COALESCE((SELECT SUM(ps.used_page_count) FROM sys.dm_db_partition_stats ps
                         WHERE ps.object_id = i.object_id AND ps.index_id = i.index_id), 0) * 8192,
               COALESCE((SELECT STRING_AGG(c.name, ', ') WITHIN GROUP (ORDER BY ic.key_ordinal)
                         FROM sys.index_columns ic
                         JOIN sys.columns c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
                         WHERE ic.object_id = i.object_id AND ic.index_id = i.index_id
                           AND ic.is_included_column = 0), '')
        FROM sys.indexes i
        JOIN sys.tables tb ON tb.object_id = i.object_id
        WHERE tb.name = @table AND i.index_id > 1 AND i.is_primary_key = 0`,
		sql.Named("table", table))
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var indexes []inspect.IndexSummary
	for rows.Next() {
		var ix inspect.IndexSummary
		var filter sql.NullString
		var hasFilter bool
		var cols string
		if err := rows.Scan(&ix.Name, &ix.Unique, &hasFilter, &filter, &ix.SizeBytes, &cols); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		if cols == "" {
			cols = inspect.SentinelColumns
		}
		ix.Columns = cols
		if hasFilter && filter.Valid {
			ix.PartialClause = filter.String
			ix.Partial = true
		}
		indexes = append(indexes, ix)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	return indexes, nil
}

func (mssqlDialect) Detail(ctx context.Context, db *sql.DB, table string) (inspect.TableDetail, error) {
	// SQL Server keeps no original CREATE TABLE text in its catalog.
	detail := inspect.TableDetail{DDL: inspect.PlaceholderDDL}

	if rows, err := db.QueryContext(ctx, `
        SELECT c.COLUMN_NAME, c.DATA_TYPE,
               CASE WHEN c.IS_NULLABLE = 'NO' THEN 1 ELSE 0 END,
               c.COLUMN_DEFAULT,
               CASE WHEN k.COLUMN_NAME IS NULL THEN 0 ELSE 1 END
        FROM INFORMATION_SCHEMA.COLUMNS c
        LEFT JOIN (
            SELECT k.COLUMN_NAME
            FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
            JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k
              ON tc.CONSTRAINT_NAME = k.CONSTRAINT_NAME
            WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_NAME = @table
        ) k ON k.COLUMN_NAME = c.COLUMN_NAME
        WHERE c.TABLE_NAME = @table
        ORDER BY c.ORDINAL_POSITION`, sql.Named("table", table)); err == nil {
		for rows.Next() {
			var col inspect.ColumnInfo
			var notNull, pk int
			var dflt sql.NullString
			if err := rows.Scan(&col.Name, &col.Type, &notNull, &dflt, &pk); err != nil {
				continue
			}
			col.NotNull = notNull == 1
			col.PK = pk == 1
			col.DefaultValue = dflt.String
			col.HasDefault = dflt.Valid
			detail.Columns = append(detail.Columns, col)
		}
		rows.Close()
	} else {
		logger.Debug("query columns: %v", err)
	}

	if rows, err := db.QueryContext(ctx, `
        SELECT cf.name, tr.name, cr.name,
               fk.update_referential_action_desc, fk.delete_referential_action_desc
        FROM sys.foreign_keys fk
        JOIN sys.tables tf ON tf.object_id = fk.parent_object_id
        JOIN sys.tables tr ON tr.object_id = fk.referenced_object_id
        JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
        JOIN sys.columns cf ON cf.object_id = fkc.parent_object_id AND cf.column_id = fkc.parent_column_id
        JOIN sys.columns cr ON cr.object_id = fkc.referenced_object_id AND cr.column_id = fkc.referenced_column_id
        WHERE tf.name = @table
        ORDER BY fk.name, fkc.constraint_column_id`, sql.Named("table", table)); err == nil {
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
        SELECT tr.name
        FROM sys.triggers tr
        JOIN sys.tables t ON t.object_id = tr.parent_id
        WHERE t.name = @table
        ORDER BY tr.name`, sql.Named("table", table)); err == nil {
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
	inspect.Register("sqlserver", mssqlDialect{})
}
