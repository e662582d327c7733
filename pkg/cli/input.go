package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// readInput returns the statement from, in order: the --file flag (with "-"
// meaning stdin), positional arguments, or piped stdin.
func (o *rootOptions) readInput(cmd *cobra.Command, args []string) (string, error) {
	file, _ := cmd.Flags().GetString("file")
	switch {
	case file == "-":
		return readAll(o.stdin)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read input file: %w", err)
		}
		return string(b), nil
	case len(args) > 0:
		return joinArgs(args), nil
	case !isTerminal(o.stdin):
		return readAll(o.stdin)
	}
	return "", errors.New("no input: pass SQL as an argument, with --file, or on stdin")
}

func readAll(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(b), "\n"), nil
}

// isTerminal reports whether r is an interactive terminal. Readers that are
// not files, such as test buffers, count as piped input.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r == nil
	}
	return term.IsTerminal(int(f.Fd()))
}

func addFileFlag(fs *pflag.FlagSet) {
	fs.StringP("file", "f", "", "Read input from a file (- for stdin)")
}
