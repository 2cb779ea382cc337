package relational

import (
	"sort"

	"github.com/thisisdope/dlt/internal/naming"
	"github.com/thisisdope/dlt/internal/schema"
)

// expansion records one array field that must be exploded into a child
// table, keyed by its normalized joined path relative to the current table.
type expansion struct {
	path   string
	values []any
}

// flatten converts one object into a flat column->value mapping plus the
// ordered list of array fields requiring expansion.
//
// Nested objects without a complex hint are merged into the same mapping
// under their "__"-joined paths; they never get a row of their own.
// Complex-preserved values are kept intact no matter their shape. Arrays
// without a complex hint disappear from the mapping entirely and come back
// as expansions.
//
// Go maps carry no insertion order, so fields are visited in sorted key
// order at every nesting level. That fixes the traversal order of the walk.
func flatten(s *schema.Schema, table string, doc map[string]any) (Row, []expansion) {
	flat := make(Row, len(doc))
	var lists []expansion

	var walk func(obj map[string]any, prefix string)
	walk = func(obj map[string]any, prefix string) {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v := obj[k]
			path := naming.NormalizeIdentifier(k)
			if prefix != "" {
				path = naming.MakePath(prefix, path)
			}
			if !s.IsComplex(table, path) {
				switch tv := v.(type) {
				case map[string]any:
					walk(tv, path)
					continue
				case []any:
					lists = append(lists, expansion{path: path, values: tv})
					continue
				}
			}
			flat[path] = v
		}
	}
	walk(doc, "")

	return flat, lists
}
