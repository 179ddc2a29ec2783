// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/decktools/internal/catalog"
	"github.com/pdiddy/decktools/internal/fees"
	"github.com/pdiddy/decktools/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the program catalog (ingest, query, export)",
	Long: `Catalog keeps the programs extracted from slide decks in a local SQLite
database with FTS5 indexing. Use subcommands to ingest decks, query them,
or export the catalog.`,
}

// --- ingest subcommand ---

var catalogIngestCmd = &cobra.Command{
	Use:   "ingest PATHS...",
	Short: "Extract decks and store their programs in the catalog",
	Long: `Ingest extracts every deck named on the command line (directories
contribute their .pptx and .ppt files) and stores the programs. Decks whose
modification time is unchanged since the last run are skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogIngest,
}

func runCatalogIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	paths, err := fees.FindDecks(args...)
	if err != nil {
		return err
	}

	conv, err := legacyConverter(cmd.Context(), paths...)
	if err != nil {
		logger.Warn("legacy decks will fail to index", zap.Error(err))
		conv = nil
	}
	store, err := catalog.NewStore(cfg.Catalog, newFeesRunner(cfg.Fees, conv), logger)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), paths, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d deck(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var catalogQueryCmd = &cobra.Command{
	Use:   "query [TEXT]",
	Short: "Search the catalog with full-text search and filters",
	Long: `Query searches program names and descriptions using FTS5 full-text
search, structured filters (country, deck), or both. Use --id to show a
single program with its raw slide text.`,
	RunE: runCatalogQuery,
}

func runCatalogQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(cfg.Catalog, nil, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	w := cmd.OutOrStdout()

	if id, _ := cmd.Flags().GetString("id"); id != "" {
		e, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(w, e)
		}
		printEntry(w, e)
		return nil
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --country, or --deck")
	}
	results, err := store.Query(cmd.Context(), opts)
	if err != nil {
		return err
	}
	if jsonOutput {
		if results == nil {
			results = []catalog.Entry{}
		}
		return writeJSON(w, results)
	}
	printResults(w, results)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResults(w io.Writer, results []catalog.Entry) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-8s  %-40s  %-20s  %s\n", "Rank", "Country", "Program", "Fee", "ID")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for i, e := range results {
		fmt.Fprintf(w, "%-4d  %-8s  %-40s  %-20s  %s\n",
			i+1, e.Country, truncate(e.Name, 40), truncate(e.Fee, 20), e.ID)
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
}

func printEntry(w io.Writer, e catalog.Entry) {
	fmt.Fprintf(w, "%s\n", e.Name)
	fmt.Fprintf(w, "  deck:     %s (slide %d, #%d)\n", e.DeckPath, e.SlideIndex, e.Position)
	fmt.Fprintf(w, "  country:  %s\n", e.Country)
	if e.Duration != "" {
		fmt.Fprintf(w, "  duration: %s\n", e.Duration)
	}
	if e.Fee != "" {
		fmt.Fprintf(w, "  fee:      %s\n", e.Fee)
	}
	if e.Intro != "" {
		fmt.Fprintf(w, "  intro:    %s\n", strings.ReplaceAll(e.Intro, "\n", "\n            "))
	}
	if len(e.Raw) > 0 {
		fmt.Fprintln(w, "  raw:")
		for _, l := range e.Raw {
			fmt.Fprintf(w, "    %s\n", l)
		}
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the catalog (or a filtered subset) to export.yaml or
export.json in the catalog directory. Supports the same filters as query.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(cfg.Catalog, nil, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		format = "yaml"
	case "json":
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", store.ExportPath(format))
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText := strings.Join(args, " ")
	country, _ := cmd.Flags().GetString("country")
	deck, _ := cmd.Flags().GetString("deck")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:      queryText,
		Country:    types.Country(country),
		DeckID:     deck,
		MaxResults: limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", ".decktools/catalog", "catalog directory (holds catalog.db and exports)")
	catalogCmd.PersistentFlags().Int("max-results", 20, "default maximum number of query results")
	_ = viper.BindPFlag("catalog.dir", catalogCmd.PersistentFlags().Lookup("catalog-dir"))
	_ = viper.BindPFlag("catalog.max_results", catalogCmd.PersistentFlags().Lookup("max-results"))

	for _, c := range []*cobra.Command{catalogQueryCmd, catalogExportCmd} {
		c.Flags().String("country", "", "filter by country: 美国, 英国, or 其他国家")
		c.Flags().String("deck", "", "filter by deck ID")
		c.Flags().Int("limit", 0, "maximum results (0 = use default)")
	}

	catalogQueryCmd.Flags().String("id", "", "show a single program by ID")
	catalogQueryCmd.Flags().Bool("json", false, "output results as JSON")

	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	catalogCmd.AddCommand(catalogIngestCmd)
	catalogCmd.AddCommand(catalogQueryCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
