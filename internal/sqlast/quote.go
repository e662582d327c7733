package sqlast

import (
	"fmt"
	"strings"
)

// maxIdentLen is the longest identifier the grammar keeps intact; longer
// ones are truncated by its scanner.
const maxIdentLen = 63

// longIdents maps the placeholders substituted for over-long identifiers
// back to the identifiers they replaced.
type longIdents struct {
	src    string
	byName map[string]string
	byPH   map[string]string
}

func (l *longIdents) placeholder(name string) string {
	if l.byName == nil {
		l.byName = make(map[string]string)
		l.byPH = make(map[string]string)
	}
	if ph, ok := l.byName[name]; ok {
		return ph
	}
	n := len(l.byName)
	ph := fmt.Sprintf("colhash_ident_%d", n)
	for strings.Contains(l.src, ph) {
		n += 1000
		ph = fmt.Sprintf("colhash_ident_%d", n)
	}
	l.byName[name] = ph
	l.byPH[ph] = name
	return ph
}

// restore puts the original identifiers back into tree.
func (l *longIdents) restore(node any) {
	if len(l.byPH) == 0 {
		return
	}
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			if s, ok := v.(string); ok {
				if name, found := l.byPH[s]; found {
					n[k] = name
				}
				continue
			}
			l.restore(v)
		}
	case Tree:
		l.restore(map[string]any(n))
	case []any:
		for i, v := range n {
			if s, ok := v.(string); ok {
				if name, found := l.byPH[s]; found {
					n[i] = name
				}
				continue
			}
			l.restore(v)
		}
	}
}

// toANSI rewrites the dialect's quoting into the ANSI form understood by the
// PostgreSQL grammar: quoted identifiers become "ident" and, for dialects
// where double quotes delimit strings, "text" becomes 'text'. Identifiers
// longer than maxIdentLen are replaced by quoted placeholders recorded in the
// returned longIdents. In dialects that keep the case of unquoted
// identifiers, mixed-case ones are quoted too.
//
// Unterminated quotes are copied through unchanged so the grammar reports
// them.
func toANSI(sql string, d Dialect) (string, *longIdents) {
	ansi, long := translateQuotes(sql, d)
	if !d.FoldsLower {
		ansi = keepCase(ansi)
	}
	return ansi, long
}

func translateQuotes(sql string, d Dialect) (string, *longIdents) {
	long := &longIdents{src: sql}

	var b strings.Builder
	b.Grow(len(sql) + 8)

	writeIdent := func(name string) {
		if len(name) > maxIdentLen {
			name = long.placeholder(name)
		}
		b.WriteString(quoteIdent(name, '"'))
	}

	for i := 0; i < len(sql); {
		c := sql[i]
		switch {
		case c == '\'':
			if !d.DoubleQuotedStrings {
				j := skipQuoted(sql, i, '\'')
				b.WriteString(sql[i:j])
				i = j
				continue
			}
			body, j, ok := readQuoted(sql, i, '\'', true)
			if !ok {
				b.WriteString(sql[i:])
				return b.String(), long
			}
			b.WriteString(quoteLiteral(body))
			i = j

		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			j := strings.IndexByte(sql[i:], '\n')
			if j < 0 {
				j = len(sql)
			} else {
				j += i
			}
			b.WriteString(sql[i:j])
			i = j

		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			j := strings.Index(sql[i+2:], "*/")
			if j < 0 {
				j = len(sql)
			} else {
				j += i + 4
			}
			b.WriteString(sql[i:j])
			i = j

		case c == '$':
			j := skipDollarQuoted(sql, i)
			b.WriteString(sql[i:j])
			i = j

		case c == '"' && d.DoubleQuotedStrings:
			body, j, ok := readQuoted(sql, i, '"', true)
			if !ok {
				b.WriteString(sql[i:])
				return b.String(), long
			}
			b.WriteString(quoteLiteral(body))
			i = j

		case c == '"' || d.acceptsIdentQuote(c):
			body, j, ok := readQuoted(sql, i, closingQuote(c), false)
			if !ok {
				b.WriteString(sql[i:])
				return b.String(), long
			}
			writeIdent(body)
			i = j

		case isIdentStart(c):
			j := i + 1
			for j < len(sql) && isIdentPart(sql[j]) {
				j++
			}
			word := sql[i:j]
			if len(word) > maxIdentLen {
				if d.FoldsLower {
					word = strings.ToLower(word)
				}
				writeIdent(word)
			} else {
				b.WriteString(word)
			}
			i = j

		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(sql) && isIdentPart(sql[j]) {
				j++
			}
			b.WriteString(sql[i:j])
			i = j

		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), long
}

// requote rewrites the double-quoted identifiers of deparsed ANSI SQL into
// the dialect's identifier quote. String literals are left untouched. In
// dialects that keep the case of unquoted identifiers, names quoted only for
// their upper-case letters are printed bare.
func requote(sql string, d Dialect) string {
	if d.IdentQuote == '"' && d.FoldsLower {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql) + 8)

	for i := 0; i < len(sql); {
		switch sql[i] {
		case '\'':
			j := skipQuoted(sql, i, '\'')
			b.WriteString(sql[i:j])
			i = j
		case '"':
			body, j, ok := readQuoted(sql, i, '"', false)
			if !ok {
				b.WriteString(sql[i:])
				return b.String()
			}
			if !d.FoldsLower && plainIdent(body) {
				b.WriteString(body)
			} else {
				b.WriteString(quoteIdent(body, d.IdentQuote))
			}
			i = j
		default:
			b.WriteByte(sql[i])
			i++
		}
	}
	return b.String()
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '$'
}

// skipDollarQuoted returns the index past a $tag$...$tag$ string opening at
// start. A '$' that does not open such a string is skipped on its own.
func skipDollarQuoted(s string, start int) int {
	j := start + 1
	for j < len(s) && s[j] != '$' && isIdentPart(s[j]) {
		j++
	}
	if j >= len(s) || s[j] != '$' || (j > start+1 && !isIdentStart(s[start+1])) {
		return start + 1
	}
	tag := s[start : j+1]
	end := strings.Index(s[j+1:], tag)
	if end < 0 {
		return len(s)
	}
	return j + 1 + end + len(tag)
}

// skipQuoted returns the index just past the quoted section that opens at
// start. A doubled quote inside the section is an escaped quote. If the
// section is unterminated it returns len(s).
func skipQuoted(s string, start int, q byte) int {
	for i := start + 1; i < len(s); i++ {
		if s[i] != q {
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}

// readQuoted reads the quoted section opening at start and closed by q,
// returning its unescaped body and the index past the closing quote. Doubled
// closing quotes are always escapes; with backslashes set, \q and \\ are too.
func readQuoted(s string, start int, q byte, backslashes bool) (string, int, bool) {
	var body strings.Builder
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		if backslashes && c == '\\' && i+1 < len(s) && (s[i+1] == q || s[i+1] == '\\') {
			body.WriteByte(s[i+1])
			i++
			continue
		}
		if c != q {
			body.WriteByte(c)
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			body.WriteByte(q)
			i++
			continue
		}
		return body.String(), i + 1, true
	}
	return "", len(s), false
}

func quoteLiteral(body string) string {
	return "'" + strings.ReplaceAll(body, "'", "''") + "'"
}

// quoteIdent quotes an identifier with the given opening quote, doubling any
// closing quote characters inside it.
func quoteIdent(name string, open byte) string {
	end := closingQuote(open)
	return string(open) + strings.ReplaceAll(name, string(end), string([]byte{end, end})) + string(end)
}
