package inspect

// TableSummary describes one user table's storage footprint.
type TableSummary struct {
	Name           string `json:"name"`
	SizeBytes      int64  `json:"size_bytes"`
	RowCount       int64  `json:"row_count"`
	IndexCount     int64  `json:"index_count"`
	IndexSizeBytes int64  `json:"index_size_bytes"`
}

// IndexSummary describes one index attached to a table.
type IndexSummary struct {
	Name          string `json:"name"`
	SizeBytes     int64  `json:"size_bytes"`
	Unique        bool   `json:"unique"`
	Columns       string `json:"columns"`
	PartialClause string `json:"partial_clause,omitempty"`
	Partial       bool   `json:"partial"`
}

// ColumnInfo describes a table column in declaration order.
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	NotNull      bool   `json:"not_null"`
	DefaultValue string `json:"default_value,omitempty"`
	HasDefault   bool   `json:"has_default"`
	PK           bool   `json:"pk"`
}

// ForeignKeyInfo describes a foreign key relationship.
type ForeignKeyInfo struct {
	FromColumn string `json:"from_column"`
	ToTable    string `json:"to_table"`
	ToColumn   string `json:"to_column"`
	OnUpdate   string `json:"on_update"`
	OnDelete   string `json:"on_delete"`
}

// TableDetail is the full schema view of one table.
type TableDetail struct {
	DDL         string           `json:"ddl"`
	Columns     []ColumnInfo     `json:"columns"`
	ForeignKeys []ForeignKeyInfo `json:"foreign_keys"`
	Triggers    []string         `json:"triggers"`
}

// PlaceholderDDL is reported when a table has no recorded definition.
const PlaceholderDDL = "-- definition not available"

// TotalSize sums table sizes for the whole-database figure shown by the UI.
func TotalSize(tables []TableSummary) int64 {
	var total int64
	for _, t := range tables {
		total += t.SizeBytes
	}
	return total
}
