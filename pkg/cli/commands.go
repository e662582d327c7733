package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"colhash/internal/anonymize"
	"colhash/internal/app"
	"colhash/internal/config"
	"colhash/internal/sqlast"
)

// withApp opens the mapping store for the duration of fn. Auth only guards
// the HTTP surface, so it is left unconfigured here.
func (o *rootOptions) withApp(ctx context.Context, fn func(*app.App) error) (err error) {
	cfg := *o.cfg
	cfg.Auth = config.AuthConfig{}
	a, err := app.New(ctx, app.Deps{Cfg: &cfg, Logger: o.logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(a)
}

func newHashCmd(o *rootOptions) *cobra.Command {
	var showAST bool
	cmd := &cobra.Command{
		Use:   "hash [SQL]",
		Short: "Replace column names with tokens",
		Example: `  colhash hash "SELECT id, name FROM users"
  colhash hash -d postgresql -f query.sql -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := o.readInput(cmd, args)
			if err != nil {
				return err
			}
			return o.withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Service.Hash(cmd.Context(), anonymize.Request{SQL: sql, Database: o.cfg.DefaultDialect})
				if err != nil {
					return err
				}
				out := queryOutput{Query: res.Query, ColumnList: res.ColumnList}
				if showAST {
					out.ModifiedAST = res.ModifiedAST
				}
				return printQuery(o.stdout, o.output, out)
			})
		},
	}
	addFileFlag(cmd.Flags())
	cmd.Flags().BoolVar(&showAST, "ast", false, "Include the rewritten tree in json and yaml output")
	return cmd
}

func newUnhashCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "unhash [SQL]",
		Short:   "Restore column names from tokens",
		Example: `  colhash hash "SELECT id FROM users" | colhash unhash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := o.readInput(cmd, args)
			if err != nil {
				return err
			}
			return o.withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Service.Unhash(cmd.Context(), anonymize.Request{SQL: sql, Database: o.cfg.DefaultDialect})
				if err != nil {
					return err
				}
				return printQuery(o.stdout, o.output, queryOutput{Query: res.Query, ColumnList: res.ColumnList})
			})
		},
	}
	addFileFlag(cmd.Flags())
	return cmd
}

func newParseCmd(o *rootOptions) *cobra.Command {
	var mentions bool
	cmd := &cobra.Command{
		Use:   "parse [SQL]",
		Short: "Print the parse tree of a statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := o.readInput(cmd, args)
			if err != nil {
				return err
			}
			parsed, err := sqlast.NewCodec().Parse(sql, o.cfg.Dialect())
			if err != nil {
				return err
			}
			if mentions {
				if o.output == outputText {
					for _, m := range parsed.Mentions {
						fmt.Fprintln(o.stdout, m)
					}
					return nil
				}
				if o.output == outputYAML {
					return printYAML(o.stdout, parsed.Mentions)
				}
				return printJSON(o.stdout, parsed.Mentions)
			}
			return printTree(o.stdout, o.output, parsed.Tree)
		},
	}
	addFileFlag(cmd.Flags())
	cmd.Flags().BoolVar(&mentions, "mentions", false, "Print the column mentions instead of the tree")
	return cmd
}

func newModifyCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modify [SQL]",
		Short: "Hash a statement and print the rewritten tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := o.readInput(cmd, args)
			if err != nil {
				return err
			}
			return o.withApp(cmd.Context(), func(a *app.App) error {
				tree, err := a.Service.ModifiedAST(cmd.Context(), sql)
				if err != nil {
					return err
				}
				return printTree(o.stdout, o.output, tree)
			})
		},
	}
	addFileFlag(cmd.Flags())
	return cmd
}

func newRebuildCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rebuild [AST-JSON]",
		Short:   "Restore column names in a tree and print it as SQL",
		Example: `  colhash modify "SELECT id FROM users" | colhash rebuild`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := o.readInput(cmd, args)
			if err != nil {
				return err
			}
			tree, err := sqlast.DecodeTree(strings.NewReader(input))
			if err != nil {
				return err
			}
			return o.withApp(cmd.Context(), func(a *app.App) error {
				query, err := a.Service.RebuildQuery(cmd.Context(), tree)
				if err != nil {
					return err
				}
				return printQuery(o.stdout, o.output, queryOutput{Query: query})
			})
		},
	}
	addFileFlag(cmd.Flags())
	return cmd
}

type dialectOutput struct {
	Name    string `json:"name" yaml:"name"`
	Display string `json:"display" yaml:"display"`
	Default bool   `json:"default" yaml:"default"`
}

func newDialectsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the supported SQL dialects",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			var rows []dialectOutput
			for _, d := range sqlast.Dialects() {
				rows = append(rows, dialectOutput{Name: d.Name, Display: d.Display, Default: d.Name == o.cfg.DefaultDialect})
			}
			switch o.output {
			case outputJSON:
				return printJSON(o.stdout, rows)
			case outputYAML:
				return printYAML(o.stdout, rows)
			}
			tw := tabwriter.NewWriter(o.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDISPLAY\tDEFAULT")
			for _, r := range rows {
				def := ""
				if r.Default {
					def = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Display, def)
			}
			return tw.Flush()
		},
	}
}

func newServeCmd(o *rootOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if listen != "" {
				o.cfg.ListenAddr = listen
			}
			level := o.cfg.SlogLevel()
			if o.logLevel != "" {
				level = o.level
			}
			logger := slog.New(slog.NewJSONHandler(o.stderr, &slog.HandlerOptions{Level: level}))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.Serve(ctx, o.cfg, logger, nil)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (default from LISTEN_ADDR, then :8080)")
	return cmd
}
