package inspect_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqdu/internal/inspect"
	_ "sqdu/internal/inspect/dialects"
)

const unicodeTable = "Ünïcode Täble"

// createFixture builds a small database with tables, indexes, a trigger and
// a foreign key, and returns its file path.
func createFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	stmts := []string{
		`CREATE TABLE Customers (
		    Id INTEGER PRIMARY KEY,
		    Name TEXT NOT NULL,
		    Email TEXT DEFAULT 'unknown'
		)`,
		`CREATE TABLE Orders (
		    Id INTEGER PRIMARY KEY,
		    CustomerId INTEGER NOT NULL,
		    OrderDate TEXT,
		    Total REAL,
		    FOREIGN KEY (CustomerId) REFERENCES Customers(Id)
		        ON UPDATE CASCADE ON DELETE SET NULL
		)`,
		`CREATE TABLE EmptyTable (a INTEGER)`,
		fmt.Sprintf(`CREATE TABLE %q (x TEXT)`, unicodeTable),
		`CREATE INDEX ix_orders_customer ON Orders (CustomerId)`,
		`CREATE INDEX ix_orders_date ON Orders (OrderDate)`,
		`CREATE UNIQUE INDEX ix_customers_email ON Customers (Email) WHERE Email IS NOT NULL`,
		`CREATE TRIGGER trg_orders_touch AFTER INSERT ON Orders
		 BEGIN
		     UPDATE Customers SET Name = Name WHERE Id = NEW.CustomerId;
		 END`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, "fixture statement: %s", stmt)
	}

	for i := 0; i < 50; i++ {
		_, err := db.Exec(`INSERT INTO Customers (Name, Email) VALUES (?, ?)`,
			fmt.Sprintf("customer-%d", i), fmt.Sprintf("c%d@example.com", i))
		require.NoError(t, err)
	}
	for i := 0; i < 500; i++ {
		_, err := db.Exec(`INSERT INTO Orders (CustomerId, OrderDate, Total) VALUES (?, ?, ?)`,
			i%50+1, "2024-01-02", float64(i)*1.5)
		require.NoError(t, err)
	}
	_, err = db.Exec(fmt.Sprintf(`INSERT INTO %q (x) VALUES ('å'), ('ß'), ('ç')`, unicodeTable))
	require.NoError(t, err)

	return path
}

func fixtureEngine(t *testing.T, path string) *inspect.Engine {
	t.Helper()
	engine, err := inspect.NewEngine("sqlite", "file:"+path+"?mode=ro", 10*time.Second)
	require.NoError(t, err)
	return engine
}

// dbstatAvailable reports whether this build of the sqlite library exposes
// the dbstat virtual table. Size assertions are skipped without it; sizes
// then legitimately report zero.
func dbstatAvailable(t *testing.T, path string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int64
	return db.QueryRow(`SELECT COUNT(*) FROM dbstat`).Scan(&n) == nil
}

func TestRegisteredDialects(t *testing.T) {
	assert.Contains(t, inspect.RegisteredDialects(), "sqlite")
}

func TestNewEngineUnknownDialect(t *testing.T) {
	_, err := inspect.NewEngine("nosuchdb", "dsn", time.Second)
	assert.Error(t, err)
}

func TestListTables(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	tables, err := engine.ListTables(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 4)

	byName := map[string]inspect.TableSummary{}
	for _, tab := range tables {
		byName[tab.Name] = tab
	}
	require.Contains(t, byName, "Orders")
	require.Contains(t, byName, "Customers")
	require.Contains(t, byName, "EmptyTable")
	require.Contains(t, byName, unicodeTable)

	assert.Equal(t, int64(500), byName["Orders"].RowCount)
	assert.Equal(t, int64(50), byName["Customers"].RowCount)
	assert.Equal(t, int64(0), byName["EmptyTable"].RowCount)
	assert.Equal(t, int64(3), byName[unicodeTable].RowCount)

	assert.Equal(t, int64(2), byName["Orders"].IndexCount)
	assert.Equal(t, int64(1), byName["Customers"].IndexCount)
	assert.Equal(t, int64(0), byName["EmptyTable"].IndexCount)

	for i := 0; i+1 < len(tables); i++ {
		assert.GreaterOrEqual(t, tables[i].SizeBytes, tables[i+1].SizeBytes,
			"tables must be sorted by size descending")
	}
}

func TestListTablesSizes(t *testing.T) {
	path := createFixture(t)
	if !dbstatAvailable(t, path) {
		t.Skip("dbstat virtual table not available")
	}
	engine := fixtureEngine(t, path)

	tables, err := engine.ListTables(context.Background())
	require.NoError(t, err)

	for _, tab := range tables {
		if tab.RowCount > 0 {
			assert.Positive(t, tab.SizeBytes, "table %s has rows, expected pages", tab.Name)
		}
		if tab.IndexCount > 0 {
			assert.Positive(t, tab.IndexSizeBytes, "table %s has indexes, expected index pages", tab.Name)
		}
	}
}

func TestIndexCountMatchesListIndexes(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	tables, err := engine.ListTables(context.Background())
	require.NoError(t, err)

	for _, tab := range tables {
		indexes, err := engine.ListIndexes(context.Background(), tab.Name)
		require.NoError(t, err)
		assert.Equal(t, int(tab.IndexCount), len(indexes), "table %s", tab.Name)

		for i := 0; i+1 < len(indexes); i++ {
			assert.GreaterOrEqual(t, indexes[i].SizeBytes, indexes[i+1].SizeBytes,
				"indexes must be sorted by size descending")
		}
	}
}

func TestListIndexesParsesDefinitions(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	indexes, err := engine.ListIndexes(context.Background(), "Customers")
	require.NoError(t, err)
	require.Len(t, indexes, 1)

	ix := indexes[0]
	assert.Equal(t, "ix_customers_email", ix.Name)
	assert.True(t, ix.Unique)
	assert.Equal(t, "Email", ix.Columns)
	assert.True(t, ix.Partial)
	assert.Equal(t, "Email IS NOT NULL", ix.PartialClause)
}

func TestListIndexesUnknownTable(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	indexes, err := engine.ListIndexes(context.Background(), "NoSuchTable12345")
	require.NoError(t, err, "index lookups are probes, not existence checks")
	assert.Empty(t, indexes)
}

func TestTableDetail(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	detail, err := engine.TableDetail(context.Background(), "Orders")
	require.NoError(t, err)

	assert.Contains(t, detail.DDL, "CREATE TABLE Orders")

	require.Len(t, detail.Columns, 4)
	assert.Equal(t, "Id", detail.Columns[0].Name)
	assert.True(t, detail.Columns[0].PK)
	assert.Equal(t, "CustomerId", detail.Columns[1].Name)
	assert.True(t, detail.Columns[1].NotNull)
	assert.Equal(t, "OrderDate", detail.Columns[2].Name)
	assert.False(t, detail.Columns[2].NotNull)

	require.Len(t, detail.ForeignKeys, 1)
	fk := detail.ForeignKeys[0]
	assert.Equal(t, "CustomerId", fk.FromColumn)
	assert.Equal(t, "Customers", fk.ToTable)
	assert.Equal(t, "Id", fk.ToColumn)
	assert.Equal(t, "CASCADE", fk.OnUpdate)
	assert.Equal(t, "SET NULL", fk.OnDelete)

	assert.Equal(t, []string{"trg_orders_touch"}, detail.Triggers)
}

func TestTableDetailColumnDefault(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	detail, err := engine.TableDetail(context.Background(), "Customers")
	require.NoError(t, err)

	require.Len(t, detail.Columns, 3)
	email := detail.Columns[2]
	assert.Equal(t, "Email", email.Name)
	assert.True(t, email.HasDefault)
	assert.Contains(t, email.DefaultValue, "unknown")
}

func TestTableDetailUnknownTable(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	detail, err := engine.TableDetail(context.Background(), "NoSuchTable12345")
	require.NoError(t, err)
	assert.Equal(t, inspect.PlaceholderDDL, detail.DDL)
	assert.Empty(t, detail.Columns)
	assert.Empty(t, detail.ForeignKeys)
	assert.Empty(t, detail.Triggers)
}

func TestTableDetailUnicodeName(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	detail, err := engine.TableDetail(context.Background(), unicodeTable)
	require.NoError(t, err)
	require.Len(t, detail.Columns, 1)
	assert.Equal(t, "x", detail.Columns[0].Name)
}

func TestListTablesStructuralFailure(t *testing.T) {
	engine, err := inspect.NewEngine("sqlite",
		"file:"+filepath.Join(t.TempDir(), "missing.db")+"?mode=ro", time.Second)
	require.NoError(t, err)

	_, err = engine.ListTables(context.Background())
	assert.Error(t, err, "a connection that cannot be opened is a structural failure")
}

func TestConcurrentScans(t *testing.T) {
	path := createFixture(t)
	engine := fixtureEngine(t, path)

	want, err := engine.ListTables(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]inspect.TableSummary, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := engine.ListTables(context.Background())
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got, "concurrent scans must not interfere")
	}
}
