package sqlast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"google.golang.org/protobuf/encoding/protojson"

	"colhash/internal/domain"
)

// Tree is a parsed statement list in its generic form: nested
// map[string]any and []any values whose keys are the protobuf field names of
// the PostgreSQL parse tree. Numbers are kept as json.Number so a tree can be
// printed back without loss.
//
// A Tree is owned by the caller that parsed it; rewriting mutates it in place.
type Tree map[string]any

var treeMarshal = protojson.MarshalOptions{UseProtoNames: true}

// treeFromResult converts a parse result into its generic form.
func treeFromResult(res *pg_query.ParseResult) (Tree, error) {
	data, err := treeMarshal.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal parse tree: %w", err)
	}
	return decodeTree(bytes.NewReader(data))
}

// resultFromTree converts a generic tree back into a parse result.
func resultFromTree(tree Tree) (*pg_query.ParseResult, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, domain.ErrValidation("encode AST: %v", err)
	}
	var res pg_query.ParseResult
	if err := protojson.Unmarshal(data, &res); err != nil {
		return nil, domain.ErrValidation("invalid AST: %v", err)
	}
	return &res, nil
}

// DecodeTree reads a JSON-encoded tree, as returned by Parse, from r.
func DecodeTree(r io.Reader) (Tree, error) {
	tree, err := decodeTree(r)
	if err != nil {
		return nil, domain.ErrValidation("invalid AST: %v", err)
	}
	if _, ok := tree["stmts"].([]any); !ok {
		return nil, domain.ErrValidation("invalid AST: missing stmts")
	}
	return tree, nil
}

func decodeTree(r io.Reader) (Tree, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var tree Tree
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}
	if tree == nil {
		return nil, fmt.Errorf("empty tree")
	}
	return tree, nil
}
