package anonymize

import (
	"strings"

	"colhash/internal/sqlast"
)

// mentionSeparator splits the qualification parts of a raw mention such as
// "select::users::id".
const mentionSeparator = "::"

// ColumnName strips the qualification from a raw mention, keeping the part
// after the final "::". Plain names are returned unchanged.
func ColumnName(mention string) string {
	if i := strings.LastIndex(mention, mentionSeparator); i >= 0 {
		return mention[i+len(mentionSeparator):]
	}
	return mention
}

// DistinctColumnNames normalizes raw mentions into the set of column names to
// hash or resolve. Qualification is stripped, wildcard mentions and empty
// names are dropped, and duplicates collapse to their first occurrence.
// Matching is case-sensitive.
func DistinctColumnNames(mentions []string) []string {
	seen := make(map[string]struct{}, len(mentions))
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if strings.Contains(m, "*") {
			continue
		}
		name := ColumnName(m)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// ColumnNames returns the distinct column names held by the slots of tree,
// in walk order. Names are read from the tree itself, so a quoted name that
// contains "::" stays whole. Wildcards and empty names are skipped.
func ColumnNames(tree sqlast.Tree) []string {
	seen := make(map[string]struct{})
	out := []string{}
	sqlast.Walk(tree, func(s sqlast.Slot) {
		if s.Wildcard {
			return
		}
		name := s.Name()
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	})
	return out
}
