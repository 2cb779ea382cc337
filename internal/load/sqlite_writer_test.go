package load

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thisisdope/dlt/internal/relational"
)

func TestSQLiteWriterCreatesAndEvolvesTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "out.db")

	w, err := NewSQLiteWriter(dbPath)
	require.NoError(t, err)

	entries := []relational.Entry{
		{Table: "orders", Row: relational.Row{"_dlt_id": "r1", "id": "o-1", "total": 12.5}},
		{Table: "orders__items", ParentTable: "orders", Row: relational.Row{
			"_dlt_id": "c1", "_dlt_parent_id": "r1", "_dlt_list_idx": 0, "sku": "a",
		}},
		// new column shows up mid-stream
		{Table: "orders", Row: relational.Row{"_dlt_id": "r2", "id": "o-2", "total": 9.0, "note": "rush"}},
		// complex value is stored as JSON text
		{Table: "orders", Row: relational.Row{"_dlt_id": "r3", "payload": map[string]any{"a": int64(1)}}},
	}
	for _, e := range entries {
		require.NoError(t, w.Write(e))
	}
	assert.Equal(t, int64(4), w.RowCount())
	require.NoError(t, w.Close())

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&n))
	assert.Equal(t, 3, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM orders__items`).Scan(&n))
	assert.Equal(t, 1, n)

	var note string
	require.NoError(t, db.QueryRow(`SELECT note FROM orders WHERE _dlt_id = 'r2'`).Scan(&note))
	assert.Equal(t, "rush", note)

	var payload string
	require.NoError(t, db.QueryRow(`SELECT payload FROM orders WHERE _dlt_id = 'r3'`).Scan(&payload))
	assert.JSONEq(t, `{"a":1}`, payload)

	var idx int
	require.NoError(t, db.QueryRow(`SELECT _dlt_list_idx FROM orders__items WHERE _dlt_id = 'c1'`).Scan(&idx))
	assert.Equal(t, 0, idx)
}
