// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/catalog"
	"github.com/pdiddy/paper-sorter/internal/scrape"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query classified papers in a SQLite catalog",
	Long: `Catalog loads pdf_links_<year>_updated.json files into a SQLite database
and answers per-category queries across years.`,
}

var catalogIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load classified years into the catalog",
	RunE:  runCatalogIngest,
}

var catalogListCmd = &cobra.Command{
	Use:   "list <category>",
	Short: "List papers tagged with a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogList,
}

var catalogCountsCmd = &cobra.Command{
	Use:   "counts",
	Short: "Show paper totals per category",
	RunE:  runCatalogCounts,
}

func init() {
	catalogCmd.PersistentFlags().String("db", "", "catalog database (default <work-dir>/catalog.db)")
	bindFlags(catalogCmd.PersistentFlags(), map[string]string{"catalog_path": "db"})

	catalogListCmd.Flags().Int("year", 0, "restrict to one year (0 = all)")
	catalogCountsCmd.Flags().Int("year", 0, "restrict to one year (0 = all)")

	catalogCmd.AddCommand(catalogIngestCmd, catalogListCmd, catalogCountsCmd)
	rootCmd.AddCommand(catalogCmd)
}

func openCatalog(cfg types.CatalogConfig) (*catalog.Store, error) {
	return catalog.Open(cfg.Path)
}

func runCatalogIngest(cmd *cobra.Command, args []string) error {
	pc := loadConfig()
	store, err := openCatalog(pc.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	var total, skipped int
	for _, year := range pc.Classify.Years {
		n, err := store.IngestCheckpoint(cmd.Context(), pc.Classify.WorkDir, year)
		if scrape.IsCheckpointMissing(err) {
			skipped++
			logger.Warn("no classified checkpoint", zap.Int("year", year), zap.Error(err))
			continue
		}
		if err != nil {
			return fmt.Errorf("ingesting %d: %w", year, err)
		}
		total += n
		fmt.Printf("year %d: %d papers\n", year, n)
	}

	fmt.Printf("Batch summary: %d papers ingested, %d years skipped\n", total, skipped)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")

	store, err := openCatalog(loadConfig().Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.ByCategory(cmd.Context(), args[0], year)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "YEAR\tTITLE\tPDF")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\n", e.Year, e.Title, e.PDFLink)
	}
	return w.Flush()
}

func runCatalogCounts(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")

	store, err := openCatalog(loadConfig().Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.Counts(cmd.Context(), year)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tPAPERS")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\n", c.Category, c.Papers)
	}
	return w.Flush()
}
