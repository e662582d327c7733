package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"colhash/internal/sqlast"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

func validateOutputFormat(output string) error {
	switch output {
	case outputText, outputJSON, outputYAML:
		return nil
	default:
		return fmt.Errorf("unsupported output format %q: use 'text', 'json' or 'yaml'", output)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// queryOutput is the printed form of a hash or unhash result.
type queryOutput struct {
	Query       string   `json:"query" yaml:"query"`
	ColumnList  []string `json:"columnList,omitempty" yaml:"columnList,omitempty"`
	ModifiedAST any      `json:"modifiedAst,omitempty" yaml:"modifiedAst,omitempty"`
}

// printQuery prints the query alone in text mode.
func printQuery(w io.Writer, format string, out queryOutput) error {
	switch format {
	case outputJSON:
		return printJSON(w, out)
	case outputYAML:
		out.ModifiedAST = plainValues(out.ModifiedAST)
		return printYAML(w, out)
	default:
		_, err := fmt.Fprintln(w, out.Query)
		return err
	}
}

// printTree prints a tree as indented JSON in text and json modes.
func printTree(w io.Writer, format string, tree sqlast.Tree) error {
	if format == outputYAML {
		return printYAML(w, plainValues(tree))
	}
	return printJSON(w, tree)
}

// plainValues converts json.Number leaves to int64 or float64 so YAML
// prints them as numbers.
func plainValues(v any) any {
	switch t := v.(type) {
	case sqlast.Tree:
		return plainValues(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = plainValues(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = plainValues(child)
		}
		return out
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
