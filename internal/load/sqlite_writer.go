// Package load persists normalized entries into a destination store. The
// SQLite writer creates one physical table per table identity and evolves
// each table's column set as new columns show up in the stream.
package load

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ohler55/ojg/oj"
	_ "modernc.org/sqlite"

	"github.com/thisisdope/dlt/internal/relational"
)

// SQLiteWriter writes entries in batched transactions. Safe for concurrent
// Write calls; one writer owns the destination file for its lifetime.
type SQLiteWriter struct {
	db        *sql.DB
	tx        *sql.Tx
	columns   map[string]map[string]bool // table -> known columns
	batchSize int
	count     int
	total     int64
	mu        sync.Mutex
}

// NewSQLiteWriter opens (or creates) the destination database and starts
// the first batch transaction.
func NewSQLiteWriter(dbPath string) (*SQLiteWriter, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// Performance tuning for bulk insert
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = MEMORY"); err != nil {
		_ = db.Close()
		return nil, err
	}

	w := &SQLiteWriter{
		db:        db,
		columns:   map[string]map[string]bool{},
		batchSize: 10000,
	}
	if err := w.beginTx(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *SQLiteWriter) beginTx() error {
	var err error
	w.tx, err = w.db.Begin()
	return err
}

func (w *SQLiteWriter) commitTx() error {
	return w.tx.Commit()
}

// Write inserts one entry, creating its table on first sight and adding
// columns the table has not carried before.
func (w *SQLiteWriter) Write(e relational.Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	cols := make([]string, 0, len(e.Row))
	for c := range e.Row {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	if err := w.ensureColumns(e.Table, cols, e.Row); err != nil {
		return err
	}

	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
		args[i] = bindValue(e.Row[c])
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(e.Table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	if _, err := w.tx.Exec(stmt, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", e.Table, err)
	}

	w.total++
	w.count++
	if w.count >= w.batchSize {
		if err := w.commitTx(); err != nil {
			return fmt.Errorf("commit batch: %w", err)
		}
		if err := w.beginTx(); err != nil {
			return err
		}
		w.count = 0
	}
	return nil
}

// RowCount reports the number of rows written so far.
func (w *SQLiteWriter) RowCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.total
}

// Close commits the open batch and closes the database.
func (w *SQLiteWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.commitTx(); err != nil {
		_ = w.db.Close()
		return err
	}
	return w.db.Close()
}

func (w *SQLiteWriter) ensureColumns(table string, cols []string, row relational.Row) error {
	known, ok := w.columns[table]
	if !ok {
		known = map[string]bool{"_dlt_id": true}
		ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT)",
			quoteIdent(table), quoteIdent("_dlt_id"))
		if _, err := w.tx.Exec(ddl); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		w.columns[table] = known
	}
	for _, c := range cols {
		if known[c] {
			continue
		}
		ddl := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s",
			quoteIdent(table), quoteIdent(c), columnAffinity(row[c]))
		if _, err := w.tx.Exec(ddl); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, c, err)
		}
		known[c] = true
	}
	return nil
}

func columnAffinity(v any) string {
	switch v.(type) {
	case int, int64, bool:
		return "INTEGER"
	case float64:
		return "REAL"
	default:
		return "TEXT"
	}
}

// bindValue maps a row value onto a driver-friendly type. Complex-preserved
// objects and arrays are stored as their JSON text.
func bindValue(v any) any {
	switch x := v.(type) {
	case map[string]any, []any:
		return oj.JSON(x)
	case int:
		return int64(x)
	default:
		return v
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
