package sqlast

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"

	"colhash/internal/domain"
)

// Parsed is the result of parsing a statement.
type Parsed struct {
	Tree Tree

	// Mentions lists every column mention in the tree, in walk order and
	// with duplicates, formatted as "<statement>::<qualifier>::<name>".
	// The qualifier is "null" for unqualified mentions.
	Mentions []string
}

// Codec parses SQL text into trees and prints trees back to SQL.
// It holds no state and is safe for concurrent use.
type Codec struct{}

// NewCodec creates a Codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Parse parses sql under the dialect's quoting rules. Input the grammar
// rejects, and input without any statement, is reported as a
// *domain.ParseError.
func (c *Codec) Parse(sql string, d Dialect) (*Parsed, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, domain.ErrParse(d.Name, "parse SQL: empty statement")
	}

	ansi, long := toANSI(sql, d)
	res, err := pg_query.Parse(ansi)
	if err != nil {
		return nil, domain.ErrParse(d.Name, "parse SQL: %v", err)
	}
	if len(res.Stmts) == 0 {
		return nil, domain.ErrParse(d.Name, "parse SQL: no statement found")
	}

	tree, err := treeFromResult(res)
	if err != nil {
		return nil, err
	}
	long.restore(tree)
	return &Parsed{Tree: tree, Mentions: Mentions(tree)}, nil
}

// Print renders tree as SQL with the dialect's identifier quoting. A tree that
// is not a valid parse tree is reported as a *domain.ValidationError.
func (c *Codec) Print(tree Tree, d Dialect) (string, error) {
	res, err := resultFromTree(tree)
	if err != nil {
		return "", err
	}
	out, err := pg_query.Deparse(res)
	if err != nil {
		return "", domain.ErrValidation("deparse AST: %v", err)
	}
	return requote(out, d), nil
}
