// Package relational decomposes nested JSON-like documents into flat,
// relationally-linked rows spread over a hierarchy of generated tables,
// one table identity per nesting path that holds list data.
//
// The walk is a synchronous depth-first traversal that streams rows to a
// caller-supplied callback: a table's own row is emitted before any of its
// descendants, and array elements are exhausted in order, each with all of
// its descendants, before the next element. There is no I/O and no shared
// state inside the core; separate documents normalize safely in parallel
// against the same read-only schema snapshot.
package relational

import (
	"errors"
	"strings"

	"github.com/thisisdope/dlt/internal/naming"
	"github.com/thisisdope/dlt/internal/schema"
)

// Row is one flat record: normalized column name to scalar or preserved
// complex value, plus the reserved linkage columns.
type Row map[string]any

// Entry is one streamed normalization result. ParentTable is empty for the
// root row; for child rows it names the table of the nearest emitted
// ancestor, which can skip virtual intermediate paths that never emit rows
// of their own.
type Entry struct {
	Table       string
	ParentTable string
	Row         Row
}

// EmitFunc consumes one entry. Returning a non-nil error aborts the walk;
// return ErrStop to abort without surfacing an error.
type EmitFunc func(Entry) error

// ErrStop aborts a normalization walk early. Normalize and NormalizeRow
// swallow it and return nil.
var ErrStop = errors.New("stop normalization")

// Normalize decomposes one document. The root table name comes from the
// document's meta tag when present (see WithTableName), otherwise from the
// schema name; the meta tag never reaches the output. loadID is stamped on
// the root row under _dlt_load_id and reaches descendant rows only through
// propagation configuration.
func Normalize(s *schema.Schema, doc map[string]any, loadID string, emit EmitFunc) error {
	table := s.Name()
	if forced, ok := tableNameMeta(doc); ok {
		table = forced
		doc = withoutField(doc, schema.MetaField)
	}
	if loadID != "" {
		doc = withField(doc, schema.LoadIDCol, loadID)
	}
	return NormalizeRow(s, doc, nil, table, emit)
}

// NormalizeRow decomposes one document into rows of rootTable and its
// descendants. hardcoded context is merged into every non-root row.
func NormalizeRow(s *schema.Schema, doc map[string]any, hardcoded map[string]any, rootTable string, emit EmitFunc) error {
	extend := make(map[string]any, len(hardcoded))
	for k, v := range hardcoded {
		extend[k] = v
	}
	err := normalizeRow(s, doc, extend, naming.NormalizeTableName(rootTable), "", "", 0, emit)
	if errors.Is(err, ErrStop) {
		return nil
	}
	return err
}

func normalizeRow(s *schema.Schema, doc map[string]any, extend map[string]any, table, parentTable, parentID string, pos int, emit EmitFunc) error {
	topLevel := parentTable == ""
	flat, lists := flatten(s, table, doc)

	// identity, in priority order: caller-supplied, primary key,
	// random root id, structural hash
	rowID, _ := flat[schema.IDColumn].(string)
	pkDerived := false
	if rowID == "" {
		if keyValues, ok := primaryKeyValues(s, table, flat); ok {
			rowID = digest128(strings.Join(keyValues, "_"))
			pkDerived = true
		} else if topLevel {
			rowID = uniqID()
		} else {
			rowID = childRowHash(parentID, table, pos)
			flat[schema.ParentIDCol] = parentID
			flat[schema.ListIdxCol] = pos
		}
	}
	flat[schema.IDColumn] = rowID

	if !topLevel {
		// propagated context overrides the row's own fields
		for k, v := range extend {
			flat[k] = v
		}
	}
	if pkDerived {
		// a primary-key identity is self-sufficient: no structural linkage,
		// no root id. Children still link against the key hash.
		delete(flat, schema.ParentIDCol)
		delete(flat, schema.ListIdxCol)
		delete(flat, schema.RootIDCol)
	}

	childExtend := propagatedValues(s, table, flat, topLevel, extend)

	if err := emit(Entry{Table: table, ParentTable: parentTable, Row: flat}); err != nil {
		return err
	}

	for _, exp := range lists {
		childTable := naming.MakePath(table, exp.path)
		for idx, v := range exp.values {
			child, ok := v.(map[string]any)
			if !ok {
				// scalar (or nested list) element: wrap under the reserved
				// value column
				child = map[string]any{schema.ValueColumn: v}
			}
			if err := normalizeRow(s, child, childExtend, childTable, table, rowID, idx, emit); err != nil {
				return err
			}
		}
	}
	return nil
}

// primaryKeyValues returns the string forms of the declared key fields
// present in the flat row, in declared order. Declared fields missing from
// the row are skipped; a present-but-null key value disables key identity
// entirely and the row falls back to a structural id.
func primaryKeyValues(s *schema.Schema, table string, flat Row) ([]string, bool) {
	fields := s.PrimaryKey(table)
	values := make([]string, 0, len(fields))
	for _, f := range fields {
		v, ok := flat[f]
		if !ok {
			continue
		}
		if v == nil {
			return nil, false
		}
		values = append(values, stringForm(v))
	}
	return values, len(values) > 0
}

// WithTableName tags a document with a forced root table name. Normalize
// strips the tag and normalizes the name before emitting rows.
func WithTableName(doc map[string]any, table string) map[string]any {
	return withField(doc, schema.MetaField, map[string]any{schema.TableNameMeta: table})
}

func tableNameMeta(doc map[string]any) (string, bool) {
	meta, ok := doc[schema.MetaField].(map[string]any)
	if !ok {
		return "", false
	}
	name, ok := meta[schema.TableNameMeta].(string)
	if !ok || name == "" {
		return "", false
	}
	return naming.NormalizeTableName(name), true
}

func withField(doc map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[key] = value
	return out
}

func withoutField(doc map[string]any, key string) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if k != key {
			out[k] = v
		}
	}
	return out
}
