package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/amba-hq/amba/internal/app"
	"github.com/amba-hq/amba/internal/config"
	"github.com/amba-hq/amba/internal/logger"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	baseURL    string
	apiVersion string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "amba",
		Short: "Query genes from the Allen Brain Atlas",
	}
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "API base URL (overrides AMBA_BASE_URL)")
	root.PersistentFlags().StringVar(&g.apiVersion, "api-version", "", "API version (overrides AMBA_API_VERSION)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (overrides AMBA_LOG_LEVEL)")

	root.AddCommand(geneCmd(&g), batchCmd(&g), pingCmd(&g), savedCmd(&g))
	return root
}

func geneCmd(g *globalFlags) *cobra.Command {
	var save bool

	c := &cobra.Command{
		Use:   "gene",
		Short: "Look up a single gene",
	}
	c.PersistentFlags().BoolVar(&save, "save", false, "Record the gene in the local catalog")

	c.AddCommand(&cobra.Command{
		Use:   "id <id>",
		Short: "Look up a gene by numeric id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("gene id must be an integer: %q", args[0])
			}
			return withApp(cmd, g, func(ctx context.Context, a *app.App) error {
				gene, err := a.LookupByID(ctx, id, save)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), gene)
			})
		},
	})

	c.AddCommand(&cobra.Command{
		Use:   "acronym <acronym>",
		Short: "Look up a gene by acronym",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, a *app.App) error {
				gene, err := a.LookupByAcronym(ctx, args[0], save)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), gene)
			})
		},
	})
	return c
}

func batchCmd(g *globalFlags) *cobra.Command {
	var save bool

	c := &cobra.Command{
		Use:   "batch <file>",
		Short: "Resolve every id or acronym listed in a file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(ctx context.Context, a *app.App) error {
				results, runErr := a.RunBatch(ctx, args[0], save)

				type row struct {
					Line  int    `json:"line"`
					Query string `json:"query"`
					Gene  any    `json:"gene,omitempty"`
					Error string `json:"error,omitempty"`
				}
				out := make([]row, 0, len(results))
				for _, r := range results {
					rw := row{Line: r.Query.Line, Query: r.Query.String()}
					if r.Err != nil {
						rw.Error = r.Err.Error()
					} else {
						rw.Gene = r.Gene
					}
					out = append(out, rw)
				}
				if err := printJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
				return runErr
			})
		},
	}
	c.Flags().BoolVar(&save, "save", false, "Record resolved genes in the local catalog")
	return c
}

func pingCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the atlas service answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(ctx context.Context, a *app.App) error {
				if err := a.Ping(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil
			})
		},
	}
}

func savedCmd(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "saved",
		Short: "Inspect the local gene catalog",
	}
	c.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved genes ordered by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, g, func(_ context.Context, a *app.App) error {
				genes, err := a.Saved()
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), genes)
			})
		},
	})
	return c
}

// withApp loads config and logging, builds the App for one command and
// releases it afterwards.
func withApp(cmd *cobra.Command, g *globalFlags, fn func(context.Context, *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if g.baseURL != "" {
		cfg.BaseURL = g.baseURL
	}
	if g.apiVersion != "" {
		cfg.APIVersion = g.apiVersion
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize app", "error", err.Error())
		return err
	}

	runErr := fn(ctx, a)
	if err := a.Close(); err != nil {
		log.WarnObj("app close failed", "error", err.Error())
	}
	return runErr
}

func printJSON(w io.Writer, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(raw))
	return err
}
