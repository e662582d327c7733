// Package sqlast parses SQL statements into a generic tree, prints trees back
// to SQL, and locates the column-bearing nodes inside a tree.
//
// Statements are parsed with the PostgreSQL grammar (pg_query_go). Dialects
// differ only in their quoting rules: identifiers quoted with backticks or
// brackets are translated to ANSI double quotes before parsing, and printed
// SQL is re-quoted in the dialect's own style.
package sqlast

import (
	"sort"
	"strings"
)

// Dialect describes the quoting conventions of a supported SQL dialect.
type Dialect struct {
	Name    string // lower-case allow-list key, e.g. "mysql"
	Display string // label shown to users, e.g. "MySQL"

	// IdentQuote is the opening quote used when printing identifiers:
	// '"', '`' or '['.
	IdentQuote byte

	// AltIdentQuotes are additional opening identifier quotes accepted on
	// input besides IdentQuote.
	AltIdentQuotes []byte

	// DoubleQuotedStrings reports whether "..." is a string literal rather
	// than a quoted identifier.
	DoubleQuotedStrings bool

	// FoldsLower reports whether unquoted identifiers fold to lower case.
	// Elsewhere they keep the case they were written in.
	FoldsLower bool
}

var dialects = []Dialect{
	{Name: "bigquery", Display: "BigQuery", IdentQuote: '`', DoubleQuotedStrings: true},
	{Name: "db2", Display: "DB2", IdentQuote: '"'},
	{Name: "hive", Display: "Hive", IdentQuote: '`', DoubleQuotedStrings: true},
	{Name: "mariadb", Display: "MariaDB", IdentQuote: '`', DoubleQuotedStrings: true},
	{Name: "mysql", Display: "MySQL", IdentQuote: '`', DoubleQuotedStrings: true},
	{Name: "postgresql", Display: "PostgresQL", IdentQuote: '"', FoldsLower: true},
	{Name: "sqlite", Display: "Sqlite", IdentQuote: '"', AltIdentQuotes: []byte{'`', '['}},
	{Name: "transactsql", Display: "TransactSQL", IdentQuote: '[', AltIdentQuotes: []byte{'"'}},
	{Name: "flinksql", Display: "FlinkSQL", IdentQuote: '`'},
	{Name: "snowflake", Display: "Snowflake", IdentQuote: '"'},
}

var dialectsByName = func() map[string]Dialect {
	m := make(map[string]Dialect, len(dialects))
	for _, d := range dialects {
		m[d.Name] = d
	}
	return m
}()

// LookupDialect resolves a dialect name case-insensitively, ignoring
// surrounding whitespace.
func LookupDialect(name string) (Dialect, bool) {
	d, ok := dialectsByName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Dialects returns the supported dialects in allow-list order.
func Dialects() []Dialect {
	out := make([]Dialect, len(dialects))
	copy(out, dialects)
	return out
}

// DialectNames returns the sorted allow-list keys.
func DialectNames() []string {
	names := make([]string, 0, len(dialects))
	for _, d := range dialects {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// acceptsIdentQuote reports whether c opens a quoted identifier on input.
func (d Dialect) acceptsIdentQuote(c byte) bool {
	if c == d.IdentQuote {
		return true
	}
	for _, q := range d.AltIdentQuotes {
		if c == q {
			return true
		}
	}
	return false
}

// closingQuote returns the byte that closes a quoted identifier opened by c.
func closingQuote(c byte) byte {
	if c == '[' {
		return ']'
	}
	return c
}
