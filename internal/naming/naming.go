// Package naming maps arbitrary field keys and table path segments onto
// valid snake_case identifiers. Normalization is idempotent: feeding an
// already-normalized name back in returns it unchanged, so schema lookups
// and re-normalization round-trip safely.
package naming

import (
	"strings"
	"unicode"
)

// PathSeparator joins nested field names into column names and table
// identities (e.g. "orders__items__tags").
const PathSeparator = "__"

// NormalizeIdentifier converts a raw key into a normalized identifier:
// camelCase boundaries become underscores, any rune that is not a letter,
// digit or underscore becomes an underscore, runs of punctuation collapse
// into one underscore, and the result is lowercased. Literal underscores
// are kept verbatim so reserved names like "_dlt_id" survive unchanged.
func NormalizeIdentifier(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 4)

	prevLowerOrDigit := false
	prevSynthetic := false // last written byte is a synthesized "_"
	for _, r := range raw {
		switch {
		case r == '_':
			b.WriteByte('_')
			prevLowerOrDigit = false
			prevSynthetic = false
		case unicode.IsUpper(r):
			if prevLowerOrDigit && !prevSynthetic {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLowerOrDigit = false
			prevSynthetic = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			prevLowerOrDigit = true
			prevSynthetic = false
		default:
			if !prevSynthetic && b.Len() > 0 {
				b.WriteByte('_')
				prevSynthetic = true
			}
			prevLowerOrDigit = false
		}
	}

	s := b.String()
	if prevSynthetic {
		s = strings.TrimSuffix(s, "_")
	}
	return s
}

// MakePath joins already-normalized path elements with the path separator.
// Empty elements are skipped.
func MakePath(elems ...string) string {
	parts := make([]string, 0, len(elems))
	for _, e := range elems {
		if e != "" {
			parts = append(parts, e)
		}
	}
	return strings.Join(parts, PathSeparator)
}

// BreakPath splits a normalized path back into its elements.
func BreakPath(path string) []string {
	return strings.Split(path, PathSeparator)
}

// NormalizeTableName normalizes every segment of a table identity while
// preserving the segment structure.
func NormalizeTableName(raw string) string {
	segments := strings.Split(raw, PathSeparator)
	for i, s := range segments {
		segments[i] = NormalizeIdentifier(s)
	}
	return MakePath(segments...)
}
