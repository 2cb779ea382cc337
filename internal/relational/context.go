package relational

import (
	"github.com/thisisdope/dlt/internal/naming"
	"github.com/thisisdope/dlt/internal/schema"
)

// propagatedValues collects the context a row passes down to its
// descendants: the inherited context plus whatever the propagation
// configuration forwards from this row. Root forwarding applies first and
// table-level forwarding second, so a table mapping wins over a root
// mapping aimed at the same target column. Values are read from the
// stamped flat row, which is what makes "_dlt_id" -> "_dlt_root_id"
// forwarding work for generated ids. Missing source fields are silently
// skipped.
//
// Returns the inherited map unchanged (not copied) when this row forwards
// nothing.
func propagatedValues(s *schema.Schema, table string, flat Row, topLevel bool, inherited map[string]any) map[string]any {
	var rootMap map[string]string
	if topLevel {
		rootMap = s.RootPropagation()
	}
	tableMap := s.TablePropagation(table)
	if len(rootMap) == 0 && len(tableMap) == 0 {
		return inherited
	}

	extend := make(map[string]any, len(inherited)+len(rootMap)+len(tableMap))
	for k, v := range inherited {
		extend[k] = v
	}
	for _, mapping := range []map[string]string{rootMap, tableMap} {
		for from, to := range mapping {
			if v, ok := flat[naming.NormalizeIdentifier(from)]; ok {
				extend[to] = v
			}
		}
	}
	return extend
}
