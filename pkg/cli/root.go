// Package cli implements the colhash command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"colhash/internal/config"
	"colhash/internal/domain"
	"colhash/internal/sqlast"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd, opts := newRootCmd(stdin, stdout, stderr)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		if opts.output == outputJSON {
			_ = printJSON(stdout, map[string]string{
				"error": err.Error(),
				"kind":  domain.ErrorKind(err),
			})
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// rootOptions holds the resolved persistent flags.
type rootOptions struct {
	dialect     string
	output      string
	logLevel    string
	storeDriver string
	storePath   string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	level  slog.Level
	logger *slog.Logger
	cfg    *config.Config
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "colhash",
		Short:         "Hash and restore column names in SQL",
		Long:          "Replace the column names of SQL statements with opaque tokens, and restore them later from the mapping store.",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.dialect, "dialect", "d", "", "SQL dialect (default from DEFAULT_DIALECT, then mysql)")
	pf.StringVarP(&opts.output, "output", "o", outputText, "Output format (text, json, yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from LOG_LEVEL, then warn)")
	pf.StringVar(&opts.storeDriver, "store-driver", "", "Mapping store driver: sqlite or duckdb (default from STORE_DRIVER)")
	pf.StringVar(&opts.storePath, "store-path", "", "Mapping store file (default from STORE_PATH)")

	rootCmd.AddCommand(
		newHashCmd(opts),
		newUnhashCmd(opts),
		newParseCmd(opts),
		newModifyCmd(opts),
		newRebuildCmd(opts),
		newDialectsCmd(opts),
		newServeCmd(opts),
	)
	return rootCmd, opts
}

// resolve applies flag > env > default precedence and loads the config.
func (o *rootOptions) resolve(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("output") {
		if v := os.Getenv("COLHASH_OUTPUT"); v != "" {
			o.output = v
		}
	}
	if err := validateOutputFormat(o.output); err != nil {
		return err
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	if o.storeDriver != "" {
		if err := os.Setenv("STORE_DRIVER", o.storeDriver); err != nil {
			return err
		}
	}
	if o.storePath != "" {
		if err := os.Setenv("STORE_PATH", o.storePath); err != nil {
			return err
		}
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if o.dialect != "" {
		d, ok := sqlast.LookupDialect(o.dialect)
		if !ok {
			return domain.ErrValidation("dialect %q is not supported (supported: %s)",
				o.dialect, strings.Join(sqlast.DialectNames(), ", "))
		}
		cfg.DefaultDialect = d.Name
	}
	o.cfg = cfg

	level := config.ParseLevel("warn")
	switch {
	case o.logLevel != "":
		level = config.ParseLevel(o.logLevel)
	case os.Getenv("LOG_LEVEL") != "":
		level = cfg.SlogLevel()
	}
	o.level = level
	o.logger = slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}
