package sqlast

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// keepCase quotes the unquoted mixed-case identifiers of ANSI SQL so the
// grammar does not fold them to lower case. Keywords are left alone. Input
// the scanner rejects is returned as is and left for the parser to report.
func keepCase(sql string) string {
	res, err := pg_query.Scan(sql)
	if err != nil {
		return sql
	}

	var b strings.Builder
	last := 0
	for _, t := range res.GetTokens() {
		if t.Token != pg_query.Token_IDENT || t.KeywordKind != pg_query.KeywordKind_NO_KEYWORD {
			continue
		}
		start, end := int(t.Start), int(t.End)
		if start < last || end > len(sql) {
			continue
		}
		word := sql[start:end]
		if word == "" || word[0] == '"' || !hasUpper(word) {
			continue
		}
		b.WriteString(sql[last:start])
		b.WriteString(quoteIdent(word, '"'))
		last = end
	}
	if last == 0 {
		return sql
	}
	b.WriteString(sql[last:])
	return b.String()
}

// plainIdent reports whether a quoted name can be printed bare in a dialect
// that keeps the case of unquoted identifiers: it has upper-case letters, is
// a simple ASCII word and is not a keyword.
func plainIdent(name string) bool {
	if name == "" || !hasUpper(name) || !isIdentStart(name[0]) {
		return false
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c >= 0x80 || c == '$' || !isIdentPart(c) {
			return false
		}
	}
	res, err := pg_query.Scan(name)
	if err != nil {
		return false
	}
	toks := res.GetTokens()
	return len(toks) == 1 && toks[0].Token == pg_query.Token_IDENT &&
		toks[0].KeywordKind == pg_query.KeywordKind_NO_KEYWORD
}

func hasUpper(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return true
		}
	}
	return false
}
