package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// isolateEnv points the mapping store at a temp file and clears the
// variables that would change defaults.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("STORE_PATH", filepath.Join(t.TempDir(), "records.sqlite"))
	t.Setenv("MAINTENANCE_SCHEDULE", "off")
	for _, k := range []string{
		"ENV", "AUTH_ISSUER_URL", "AUTH_AUDIENCE", "JWT_SECRET",
		"DEFAULT_DIALECT", "LOG_LEVEL", "COLHASH_OUTPUT", "TOKEN_ALGORITHM",
	} {
		t.Setenv(k, "")
	}
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestHashUnhash_RoundTrip(t *testing.T) {
	isolateEnv(t)

	hashed, stderr, code := runCLI(t, "", "hash", "SELECT id, email FROM users")
	require.Equal(t, 0, code, stderr)
	hashed = strings.TrimSpace(hashed)
	assert.NotContains(t, hashed, "email")

	restored, stderr, code := runCLI(t, hashed, "unhash")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "SELECT id, email FROM users", strings.TrimSpace(restored))
}

func TestHash_JSONOutput(t *testing.T) {
	isolateEnv(t)

	out, stderr, code := runCLI(t, "", "hash", "-o", "json", "--ast", "SELECT a, b FROM t")
	require.Equal(t, 0, code, stderr)

	var got struct {
		Query       string         `json:"query"`
		ColumnList  []string       `json:"columnList"`
		ModifiedAST map[string]any `json:"modifiedAst"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.ElementsMatch(t, []string{"a", "b"}, got.ColumnList)
	assert.NotEmpty(t, got.Query)
	assert.Contains(t, got.ModifiedAST, "stmts")
}

func TestUnhash_YAMLOutput(t *testing.T) {
	isolateEnv(t)

	hashed, _, code := runCLI(t, "", "hash", "SELECT name FROM people")
	require.Equal(t, 0, code)

	out, stderr, code := runCLI(t, "", "unhash", "--output", "yaml", strings.TrimSpace(hashed))
	require.Equal(t, 0, code, stderr)

	var got queryOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "SELECT name FROM people", got.Query)
	assert.Equal(t, []string{"name"}, got.ColumnList)
}

func TestHash_FromFile(t *testing.T) {
	isolateEnv(t)

	path := filepath.Join(t.TempDir(), "query.sql")
	require.NoError(t, os.WriteFile(path, []byte("SELECT total FROM orders\n"), 0o600))

	out, stderr, code := runCLI(t, "", "hash", "-o", "json", "--file", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, `"total"`)
}

func TestHash_DialectFlag(t *testing.T) {
	isolateEnv(t)

	hashed, stderr, code := runCLI(t, "", "hash", "-d", "postgresql", `SELECT "id" FROM users`)
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, hashed, "`")

	restored, stderr, code := runCLI(t, "", "unhash", "--dialect", "postgresql", strings.TrimSpace(hashed))
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "SELECT id FROM users", strings.TrimSpace(restored))

	_, stderr, code = runCLI(t, "", "hash", "-d", "oracle", "SELECT id FROM users")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `dialect "oracle" is not supported`)
}

func TestModifyRebuild(t *testing.T) {
	isolateEnv(t)

	tree, stderr, code := runCLI(t, "", "modify", "SELECT price FROM items")
	require.Equal(t, 0, code, stderr)
	assert.NotContains(t, tree, `"price"`)

	out, stderr, code := runCLI(t, tree, "rebuild")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "SELECT price FROM items", strings.TrimSpace(out))
}

func TestParse(t *testing.T) {
	isolateEnv(t)

	out, stderr, code := runCLI(t, "", "parse", "--mentions", "SELECT u.id FROM users u")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "select::u::id", strings.TrimSpace(out))

	out, stderr, code = runCLI(t, "", "parse", "-o", "yaml", "SELECT 1")
	require.Equal(t, 0, code, stderr)
	var tree map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &tree))
	assert.Contains(t, tree, "stmts")
}

func TestDialects(t *testing.T) {
	isolateEnv(t)

	out, stderr, code := runCLI(t, "", "dialects")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "transactsql")

	out, _, code = runCLI(t, "", "dialects", "-o", "json")
	require.Equal(t, 0, code)
	var rows []dialectOutput
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 10)
	for _, r := range rows {
		assert.Equal(t, r.Name == "mysql", r.Default, r.Name)
	}
}

func TestErrors(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantErr string
	}{
		{"bad output format", "", []string{"dialects", "-o", "xml"}, `unsupported output format "xml"`},
		{"parse error", "", []string{"hash", "SELEKT id FROM"}, "syntax error"},
		{"empty stdin", "", []string{"hash"}, "sql query is required"},
		{"invalid tree", "{}", []string{"rebuild"}, "invalid AST"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, stderr, code := runCLI(t, tc.stdin, tc.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, out)
			assert.Contains(t, stderr, tc.wantErr)
		})
	}
}

func TestErrors_JSONMode(t *testing.T) {
	isolateEnv(t)

	out, _, code := runCLI(t, "", "hash", "-o", "json", "SELEKT")
	assert.Equal(t, 1, code)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "ParseError", got["kind"])
	assert.NotEmpty(t, got["error"])
}

func TestOutputEnvDefault(t *testing.T) {
	isolateEnv(t)
	t.Setenv("COLHASH_OUTPUT", "json")

	out, _, code := runCLI(t, "", "dialects")
	require.Equal(t, 0, code)
	assert.True(t, json.Valid([]byte(out)))
}
