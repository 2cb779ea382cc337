// Package api defines the serializable schema document consumed by the
// normalizer. A document declares tables with typed columns, primary-key
// settings and the propagation configuration. Documents are loaded from
// JSON or HCL files and compiled into an internal schema snapshot.
package api

// Document is the root of a schema configuration file.
type Document struct {
	// Name of the schema; doubles as the default root table name.
	Name string `json:"name" hcl:"name"`
	// PrimaryKey lists field names treated as primary-key hints on every
	// table that has no per-table declaration.
	PrimaryKey []string `json:"primary_key,omitempty" hcl:"primary_key,optional"`
	// ComplexHints are regular expressions matched against normalized
	// column paths; a match marks the value as complex-preserved.
	ComplexHints []string `json:"complex_hints,omitempty" hcl:"complex_hints,optional"`
	// Tables declared up front. Tables not listed here still normalize;
	// they simply carry no hints.
	Tables []Table `json:"tables,omitempty" hcl:"table,block"`
	// Propagation configures context forwarding into descendant rows.
	Propagation *Propagation `json:"propagation,omitempty" hcl:"propagation,block"`
}

// Table declares hints for one table identity.
type Table struct {
	// Name is the table identity ("__"-joined path for child tables).
	Name string `json:"name" hcl:"name,label"`
	// PrimaryKey overrides the document-level hints for this table.
	PrimaryKey []string `json:"primary_key,omitempty" hcl:"primary_key,optional"`
	// Columns with explicit data types.
	Columns []Column `json:"columns,omitempty" hcl:"column,block"`
}

// Column declares one column of a table.
type Column struct {
	Name string `json:"name" hcl:"name,label"`
	// DataType of the column. "complex" keeps the raw value intact
	// instead of flattening or exploding it.
	DataType string `json:"data_type,omitempty" hcl:"data_type,optional"`
	Nullable bool   `json:"nullable,omitempty" hcl:"nullable,optional"`
}

// Propagation configures which ancestor fields are forwarded into
// descendant rows as extra columns.
type Propagation struct {
	// Root maps a field of the root row to a target column stamped on
	// every non-root row (e.g. "_dlt_id" -> "_dlt_root_id").
	Root map[string]string `json:"root,omitempty" hcl:"root,optional"`
	// Tables holds per-table forwarding rules applied to the descendants
	// of the named table.
	Tables []TablePropagation `json:"tables,omitempty" hcl:"table,block"`
}

// TablePropagation forwards fields of rows of one table into all rows
// below them.
type TablePropagation struct {
	Table   string            `json:"table" hcl:"table,label"`
	Mapping map[string]string `json:"mapping" hcl:"mapping"`
}

// DataTypeComplex marks a column whose value is preserved as-is.
const DataTypeComplex = "complex"
