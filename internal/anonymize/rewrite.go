package anonymize

import (
	"colhash/internal/domain"
	"colhash/internal/sqlast"
)

// NotFound replaces any column name that has no mapping in the requested
// direction. The statement stays valid SQL; it just names a column that does
// not exist.
const NotFound = "NOT_FOUND"

// Direction selects which side of a mapping a rewrite looks up.
type Direction int

const (
	// ToToken replaces column names with their tokens.
	ToToken Direction = iota
	// ToName replaces tokens with the column names they stand for.
	ToName
)

func (d Direction) String() string {
	if d == ToName {
		return "to_name"
	}
	return "to_token"
}

// Mapping is a two-way index over a set of hash records. Lookups are exact
// and case-sensitive.
type Mapping struct {
	byName  map[string]string
	byToken map[string]string
}

// NewMapping indexes records. When a name appears in several records the
// first one wins for ToToken lookups.
func NewMapping(records []domain.HashRecord) *Mapping {
	m := &Mapping{
		byName:  make(map[string]string, len(records)),
		byToken: make(map[string]string, len(records)),
	}
	for _, r := range records {
		if _, ok := m.byName[r.ColumnName]; !ok {
			m.byName[r.ColumnName] = r.Token
		}
		m.byToken[r.Token] = r.ColumnName
	}
	return m
}

// Len returns the number of distinct tokens in the mapping.
func (m *Mapping) Len() int { return len(m.byToken) }

// Resolve looks up s in the given direction, returning NotFound when there is
// no record for it.
func (m *Mapping) Resolve(s string, dir Direction) string {
	var (
		v  string
		ok bool
	)
	if dir == ToName {
		v, ok = m.byToken[s]
	} else {
		v, ok = m.byName[s]
	}
	if !ok {
		return NotFound
	}
	return v
}

// Rewrite replaces every column name in tree according to mapping and dir,
// mutating tree in place and returning it. Wildcards are left alone. A name
// without a mapping becomes NotFound; rewriting never fails.
func Rewrite(tree sqlast.Tree, mapping *Mapping, dir Direction) sqlast.Tree {
	sqlast.Walk(tree, func(s sqlast.Slot) {
		if s.Wildcard {
			return
		}
		s.SetName(mapping.Resolve(s.Name(), dir))
	})
	return tree
}
