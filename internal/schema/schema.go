// Package schema holds the read-only configuration snapshot the normalizer
// consults while walking a document: which columns are complex-preserved,
// which fields form a table's primary key, and which ancestor fields
// propagate into descendant rows.
//
// A Schema is mutable while a batch is being configured and must be treated
// as read-only once normalization starts; Clone produces an independent
// snapshot for concurrent batches.
package schema

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thisisdope/dlt/api"
	"github.com/thisisdope/dlt/internal/naming"
)

// Reserved linkage columns stamped by the normalizer. Propagation targets
// must not collide with them; _dlt_root_id is the one legal target since
// forwarding the root id is exactly what root propagation is for.
const (
	IDColumn      = "_dlt_id"
	ParentIDCol   = "_dlt_parent_id"
	ListIdxCol    = "_dlt_list_idx"
	RootIDCol     = "_dlt_root_id"
	LoadIDCol     = "_dlt_load_id"
	MetaField     = "_dlt_meta"
	ValueColumn   = "value"
	TableNameMeta = "table_name"
)

// Table holds the hints declared for one table identity.
type Table struct {
	Name       string
	PrimaryKey []string
	Columns    map[string]api.Column
}

// Propagation is the compiled context-forwarding configuration.
type Propagation struct {
	Root   map[string]string
	Tables map[string]map[string]string
}

// Schema answers the normalizer's type, key and propagation questions for
// normalized table and column names.
type Schema struct {
	name            string
	tables          map[string]*Table
	primaryKeyHints []string
	complexHints    []*regexp.Regexp
	propagation     Propagation
}

// New creates an empty schema named name (normalized). The name is also the
// default root table for documents without a forced table name.
func New(name string) *Schema {
	return &Schema{
		name:   naming.NormalizeIdentifier(name),
		tables: map[string]*Table{},
		propagation: Propagation{
			Root:   map[string]string{},
			Tables: map[string]map[string]string{},
		},
	}
}

// Name returns the schema name.
func (s *Schema) Name() string {
	return s.name
}

// UpdateTable registers or replaces the hints for one table. Names are
// normalized on the way in.
func (s *Schema) UpdateTable(t api.Table) error {
	name := naming.NormalizeTableName(t.Name)
	if name == "" {
		return fmt.Errorf("table with empty name")
	}
	compiled := &Table{
		Name:    name,
		Columns: make(map[string]api.Column, len(t.Columns)),
	}
	for _, pk := range t.PrimaryKey {
		k := naming.NormalizeIdentifier(pk)
		if k == "" {
			return fmt.Errorf("table %s: empty primary key field", name)
		}
		compiled.PrimaryKey = append(compiled.PrimaryKey, k)
	}
	for _, c := range t.Columns {
		col := naming.NormalizeTableName(c.Name)
		if col == "" {
			return fmt.Errorf("table %s: column with empty name", name)
		}
		c.Name = col
		compiled.Columns[col] = c
	}
	s.tables[name] = compiled
	return nil
}

// MergePrimaryKeyHints sets document-level primary key hints applying to
// every table without its own declaration.
func (s *Schema) MergePrimaryKeyHints(fields []string) error {
	for _, f := range fields {
		k := naming.NormalizeIdentifier(f)
		if k == "" {
			return fmt.Errorf("empty primary key hint")
		}
		s.primaryKeyHints = append(s.primaryKeyHints, k)
	}
	return nil
}

// AddComplexHint registers a regular expression matched against normalized
// column paths; matching paths are preserved as opaque complex values.
func (s *Schema) AddComplexHint(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("complex hint %q: %w", pattern, err)
	}
	s.complexHints = append(s.complexHints, re)
	return nil
}

// SetPropagation installs the context-forwarding configuration. Targets
// colliding with reserved linkage columns are rejected up front so the walk
// never has to deal with malformed configuration.
func (s *Schema) SetPropagation(p api.Propagation) error {
	root := make(map[string]string, len(p.Root))
	for from, to := range p.Root {
		if err := checkPropagationTarget(to); err != nil {
			return fmt.Errorf("root propagation %q: %w", from, err)
		}
		root[from] = to
	}
	tables := make(map[string]map[string]string, len(p.Tables))
	for _, tp := range p.Tables {
		table := naming.NormalizeTableName(tp.Table)
		if table == "" {
			return fmt.Errorf("table propagation with empty table name")
		}
		m := make(map[string]string, len(tp.Mapping))
		for from, to := range tp.Mapping {
			if err := checkPropagationTarget(to); err != nil {
				return fmt.Errorf("table propagation %s.%q: %w", table, from, err)
			}
			m[from] = to
		}
		tables[table] = m
	}
	s.propagation = Propagation{Root: root, Tables: tables}
	return nil
}

func checkPropagationTarget(to string) error {
	if to == "" {
		return fmt.Errorf("empty target column")
	}
	switch to {
	case IDColumn, ParentIDCol, ListIdxCol, LoadIDCol:
		return fmt.Errorf("target column %s is reserved", to)
	}
	return nil
}

// IsComplex reports whether the value at fieldPath in table is preserved as
// one opaque value instead of being flattened or exploded. The decision is
// a function of (table, path) only, never of the value, so it is stable row
// to row.
func (s *Schema) IsComplex(table, fieldPath string) bool {
	if t, ok := s.tables[table]; ok {
		if c, ok := t.Columns[fieldPath]; ok && c.DataType == api.DataTypeComplex {
			return true
		}
	}
	for _, re := range s.complexHints {
		if re.MatchString(fieldPath) {
			return true
		}
	}
	return false
}

// PrimaryKey returns the declared primary key fields for table, in declared
// order, or the document-level hints when the table has no declaration.
func (s *Schema) PrimaryKey(table string) []string {
	if t, ok := s.tables[table]; ok && len(t.PrimaryKey) > 0 {
		return t.PrimaryKey
	}
	return s.primaryKeyHints
}

// RootPropagation returns the root-row forwarding map (source field of the
// root row -> target column on every non-root row).
func (s *Schema) RootPropagation() map[string]string {
	return s.propagation.Root
}

// TablePropagation returns the forwarding map defined for table, or nil.
func (s *Schema) TablePropagation(table string) map[string]string {
	return s.propagation.Tables[table]
}

// Clone returns an independent snapshot. The clone can be mutated (e.g. by
// schema evolution) without affecting normalizations running against the
// original.
func (s *Schema) Clone() *Schema {
	c := New(s.name)
	c.primaryKeyHints = append([]string(nil), s.primaryKeyHints...)
	c.complexHints = append([]*regexp.Regexp(nil), s.complexHints...)
	for name, t := range s.tables {
		ct := &Table{
			Name:       t.Name,
			PrimaryKey: append([]string(nil), t.PrimaryKey...),
			Columns:    make(map[string]api.Column, len(t.Columns)),
		}
		for k, v := range t.Columns {
			ct.Columns[k] = v
		}
		c.tables[name] = ct
	}
	for from, to := range s.propagation.Root {
		c.propagation.Root[from] = to
	}
	for table, m := range s.propagation.Tables {
		cm := make(map[string]string, len(m))
		for from, to := range m {
			cm[from] = to
		}
		c.propagation.Tables[table] = cm
	}
	return c
}

// String renders a short summary, handy in CLI output.
func (s *Schema) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema %s (%d tables", s.name, len(s.tables))
	if len(s.primaryKeyHints) > 0 {
		fmt.Fprintf(&b, ", pk hints %v", s.primaryKeyHints)
	}
	b.WriteString(")")
	return b.String()
}
