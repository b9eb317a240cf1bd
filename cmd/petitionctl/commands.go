package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grievease/petition-triage/internal/bootstrap"
	"github.com/grievease/petition-triage/internal/config"
	"github.com/grievease/petition-triage/internal/core/classification"
	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/grievease/petition-triage/internal/infrastructure/seed"
	"github.com/grievease/petition-triage/internal/infrastructure/spreadsheet"
	"github.com/grievease/petition-triage/internal/observability/logging"
)

type globalFlags struct {
	logLevel     string
	taxonomyFile string
}

func rootCmd(out io.Writer) *cobra.Command {
	flags := &globalFlags{}
	cmd := &cobra.Command{
		Use:           "petitionctl",
		Short:         "Operate the petition triage service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.taxonomyFile, "taxonomy", "", "Taxonomy YAML overriding the built-in keyword table")

	cmd.AddCommand(classifyCmd(flags), suggestCmd(flags), catalogCmd(flags), analyticsCmd(flags))
	return cmd
}

func classifyCmd(flags *globalFlags) *cobra.Command {
	var title, location string
	cmd := &cobra.Command{
		Use:   "classify [description]",
		Short: "Classify petition text against the bundled catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, err := textArg(cmd, args)
			if err != nil {
				return err
			}
			engine, err := offlineEngine(flags)
			if err != nil {
				return err
			}
			result, err := engine.Classify(domain.PetitionText{Title: title, Description: description, Location: location})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Petition title")
	cmd.Flags().StringVar(&location, "location", "", "Petition location")
	return cmd
}

func suggestCmd(flags *globalFlags) *cobra.Command {
	var topN int
	cmd := &cobra.Command{
		Use:   "suggest [text]",
		Short: "Rank departments for petition text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(cmd, args)
			if err != nil {
				return err
			}
			engine, err := offlineEngine(flags)
			if err != nil {
				return err
			}
			set, err := engine.Suggest(text, topN)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), set)
		},
	}
	cmd.Flags().IntVar(&topN, "top", classification.DefaultSuggestionCount, "Number of suggestions")
	return cmd
}

func catalogCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect, export and import the department and category catalog",
	}

	var format, output string
	var fromDB bool
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog as YAML or XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := seed.Load()
			if err != nil {
				return err
			}
			if fromDB {
				app, err := connect(cmd.Context(), flags)
				if err != nil {
					return err
				}
				defer app.Close()
				if snapshot, err = app.AdminUC.Snapshot(cmd.Context()); err != nil {
					return err
				}
			}
			return withOutput(cmd, output, func(w io.Writer) error {
				if catalogFormat(format, output) == "xlsx" {
					return spreadsheet.ExportCatalog(snapshot, w)
				}
				return seed.Encode(w, snapshot)
			})
		},
	}
	export.Flags().StringVar(&format, "format", "", "Output format: yaml or xlsx (default from --output extension, else yaml)")
	export.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	export.Flags().BoolVar(&fromDB, "from-db", false, "Export the live catalog instead of the bundled seed")

	validate := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a YAML or XLSX catalog file without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := readCatalogFile(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d departments, %d categories\n", len(snapshot.Departments), len(snapshot.Categories))
			return nil
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upsert a YAML or XLSX catalog into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := readCatalogFile(args[0])
			if err != nil {
				return err
			}
			app, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()
			status, err := app.AdminUC.Import(cmd.Context(), snapshot)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the bundled catalog into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapshot, err := seed.Load()
			if err != nil {
				return err
			}
			app, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()
			seeded, err := app.AdminUC.Seed(cmd.Context(), snapshot)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog already populated, nothing seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d departments, %d categories\n", len(snapshot.Departments), len(snapshot.Categories))
			return nil
		},
	}

	cmd.AddCommand(export, validate, importCmd, seedCmd)
	return cmd
}

func analyticsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Petition analytics",
	}

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Render urgency and department statistics to XLSX",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()
			return withOutput(cmd, output, func(w io.Writer) error {
				return app.AnalyticsUC.Export(cmd.Context(), w)
			})
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "petition-analytics.xlsx", "Output file")

	archive := &cobra.Command{
		Use:   "archive",
		Short: "Render the report into report storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := connect(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer app.Close()
			key, err := app.AnalyticsUC.Archive(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.AddCommand(export, archive)
	return cmd
}

// offlineEngine classifies against the bundled seed catalog without any backing services.
// Jitter is disabled so repeated runs print the same confidence.
func offlineEngine(flags *globalFlags) (*classification.Engine, error) {
	snapshot, err := seed.Load()
	if err != nil {
		return nil, err
	}
	catalog, err := classification.NewCatalog(snapshot.Departments, snapshot.Categories)
	if err != nil {
		return nil, err
	}
	opts := []classification.Option{classification.WithJitter(classification.NoJitter{})}
	if flags.taxonomyFile != "" {
		taxonomy, err := classification.LoadTaxonomyFile(flags.taxonomyFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, classification.WithTaxonomy(taxonomy))
	}
	return classification.NewEngine(catalog, opts...), nil
}

func connect(ctx context.Context, flags *globalFlags) (*bootstrap.App, error) {
	cfg := config.Load()
	cfg.SeedCatalogOnStart = false
	if flags.taxonomyFile != "" {
		cfg.TaxonomyFile = flags.taxonomyFile
	}
	logger := logging.New(os.Stderr, "petitionctl", flags.logLevel, "text")
	slog.SetDefault(logger)
	return bootstrap.New(ctx, cfg, bootstrap.Options{Logger: logger, WithoutQueue: true})
}

func readCatalogFile(path string) (domain.CatalogSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.CatalogSnapshot{}, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return spreadsheet.ImportCatalog(f)
	}
	return seed.Decode(f)
}

func catalogFormat(format, output string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	if strings.EqualFold(filepath.Ext(output), ".xlsx") {
		return "xlsx"
	}
	return "yaml"
}

// textArg takes the positional argument or, without one, all of stdin.
func textArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", fmt.Errorf("petition text is required as an argument or on stdin")
	}
	return text, nil
}

func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	return f.Close()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
