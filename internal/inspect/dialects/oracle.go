//go:build oracle
// +build oracle

package dialects

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/godror/godror"

	"sqdu/internal/inspect"
	"sqdu/internal/logger"
)

// oracleDialect reads the user_* catalog views of the connected schema.
// Segment bytes come from user_segments.
type oracleDialect struct{}

// oraQuoteIdent makes a table name safe to use in identifier position.
func oraQuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (oracleDialect) Tables(ctx context.Context, db *sql.DB) ([]inspect.TableSummary, error) {
	rows, err := db.QueryContext(ctx, `
	    SELECT t.table_name,
	           NVL(s.bytes, 0),
	           NVL((SELECT SUM(si.bytes)
	                FROM user_indexes i
	                JOIN user_segments si ON si.segment_name = i.index_name
	                WHERE i.table_name = t.table_name), 0),
	           (SELECT COUNT(*) FROM user_indexes i
	            WHERE i.table_name = t.table_name AND i.generated = 'N')
	    FROM user_tables t
	    LEFT JOIN user_segments s ON s.segment_name = t.table_name AND s.segment_type = 'TABLE'
	    ORDER BY t.table_name`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var tables []inspect.TableSummary
	for rows.Next() {
		var t inspect.TableSummary
		if err := rows.Scan(&t.Name, &t.SizeBytes, &t.IndexSizeBytes, &t.IndexCount); err != nil {
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
			fmt.Sprintf("SELECT COUNT(*) FROM %s", oraQuoteIdent(t.Name)),
		).Scan(&t.RowCount)
	}
	return tables, nil
}

func (oracleDialect) Indexes(ctx context.Context, db *sql.DB, table string) ([]inspect.IndexSummary, error) {
	rows, err := db.QueryContext(ctx, `
	    SELECT i.index_name, i.uniqueness,
	           NVL((SELECT s.bytes FROM user_segments s WHERE s.segment_name = i.index_name), 0),
	           NVL((SELECT LISTAGG(ic.column_name, ', ') WITHIN GROUP (ORDER BY ic.column_position)
	                FROM user_ind_columns ic
	                WHERE ic.index_name = i.index_name), ' ')
	    FROM user_indexes i
	    WHERE i.table_name = :1 AND i.generated = 'N'`, table)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var indexes []inspect.IndexSummary
	for rows.Next() {
		var ix inspect.IndexSummary
		var uniqueness, cols string
		if err := rows.Scan(&ix.Name, &uniqueness, &ix.SizeBytes, &cols); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		ix.Unique = uniqueness == "UNIQUE"
		cols = strings.TrimSpace(cols)
		if cols == "" {
			cols = inspect.SentinelColumns
		}
		ix.Columns = cols
		indexes = append(indexes, ix)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	return indexes, nil
}

func (oracleDialect) Detail(ctx context.Context, db *sql.DB, table string) (inspect.TableDetail, error) {
	// DBMS_METADATA could reconstruct the DDL but needs extra privileges;
	// report the placeholder instead.
	detail := inspect.TableDetail{DDL: inspect.PlaceholderDDL}

	if rows, err := db.QueryContext(ctx, `
	    SELECT c.column_name, c.data_type, c.nullable, c.data_default,
	           (SELECT COUNT(*) FROM user_constraints pc
	            JOIN user_cons_columns pcc ON pcc.constraint_name = pc.constraint_name
	            WHERE pc.table_name = c.table_name AND pc.constraint_type = 'P'
	              AND pcc.column_name = c.column_name)
	    FROM user_tab_columns c
	    WHERE c.table_name = :1
	    ORDER BY c.column_id`, table); err == nil {
		for rows.Next() {
			var col inspect.ColumnInfo
			var nullable string
			var dflt sql.NullString
			var pk int
			if err := rows.Scan(&col.Name, &col.Type, &nullable, &dflt, &pk); err != nil {
				continue
			}
			col.NotNull = nullable == "N"
			col.DefaultValue = strings.TrimSpace(dflt.String)
			col.HasDefault = dflt.Valid && col.DefaultValue != ""
			col.PK = pk > 0
			detail.Columns = append(detail.Columns, col)
		}
		rows.Close()
	} else {
		logger.Debug("query columns: %v", err)
	}

	// Oracle has no ON UPDATE action for foreign keys.
	if rows, err := db.QueryContext(ctx, `
	    SELECT fcc.column_name, rc.table_name, rcc.column_name, fc.delete_rule
	    FROM user_constraints fc
	    JOIN user_cons_columns fcc ON fcc.constraint_name = fc.constraint_name
	    JOIN user_constraints rc ON rc.constraint_name = fc.r_constraint_name
	    JOIN user_cons_columns rcc ON rcc.constraint_name = rc.constraint_name
	     AND rcc.position = fcc.position
	    WHERE fc.table_name = :1 AND fc.constraint_type = 'R'
	    ORDER BY fc.constraint_name, fcc.position`, table); err == nil {
		for rows.Next() {
			var fk inspect.ForeignKeyInfo
			if err := rows.Scan(&fk.FromColumn, &fk.ToTable, &fk.ToColumn, &fk.OnDelete); err != nil {
				continue
			}
			fk.OnUpdate = "NO ACTION"
			detail.ForeignKeys = append(detail.ForeignKeys, fk)
		}
		rows.Close()
	} else {
		logger.Debug("query foreign keys: %v", err)
	}

	if rows, err := db.QueryContext(ctx, `
	    SELECT trigger_name FROM user_triggers
	    WHERE table_name = :1
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
	inspect.Register("godror", oracleDialect{})
}
