// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/handoff"
	"github.com/pdiddy/paper-sorter/internal/httputil"
	"github.com/pdiddy/paper-sorter/internal/scrape"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

const (
	defaultPageTimeout = 30 * time.Second
	defaultPDFTimeout  = 60 * time.Second
	defaultUserAgent   = "paper-sorter/0.1"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "List, resolve and download the papers of each year",
	Long: `Scrape fetches the proceedings listing for each configured year, resolves
every paper's PDF link from its detail page and downloads the PDFs into
pdf_<year>/. Each stage writes a checkpoint (papers_<year>.json,
pdf_links_<year>.json) that the next stage reads back.

When every year has been processed, classify is started as a separate
process over the same work directory. Pass --handoff=false to stop after
the downloads.`,
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.String("base-url", scrape.DefaultBaseURL, "proceedings site root")
	f.String("listing-path", scrape.DefaultListingPath, "year listing path format, %d is replaced by the year")
	f.Int("concurrency", httputil.DefaultConcurrency, "maximum in-flight HTTP requests")
	f.Duration("page-timeout", defaultPageTimeout, "timeout for listing and detail pages")
	f.Duration("pdf-timeout", defaultPDFTimeout, "timeout for PDF downloads")
	f.Duration("error-pause", httputil.DefaultErrorPause, "pause after a failed request")
	f.Int("max-retries", httputil.DefaultMaxRetries, "retries after the first attempt for transient HTTP failures")
	f.String("user-agent", defaultUserAgent, "User-Agent header")
	f.Bool("handoff", true, "start classify when scraping finishes")

	bindFlags(f, map[string]string{
		"base_url":     "base-url",
		"listing_path": "listing-path",
		"concurrency":  "concurrency",
		"page_timeout": "page-timeout",
		"pdf_timeout":  "pdf-timeout",
		"error_pause":  "error-pause",
		"max_retries":  "max-retries",
		"user_agent":   "user-agent",
		"handoff":      "handoff",
	})

	rootCmd.AddCommand(scrapeCmd)
}

// spawnClassify starts the classify child process.
var spawnClassify = handoff.Spawn

func runScrape(cmd *cobra.Command, args []string) error {
	pc := loadConfig()
	cfg := pc.Scrape
	if len(cfg.Years) == 0 {
		return fmt.Errorf("no years configured")
	}
	if err := os.MkdirAll(cfg.WorkDir, 0o755); err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}

	fetcher := &httputil.Fetcher{
		Client:     &http.Client{},
		Pool:       httputil.NewPool(cfg.Concurrency),
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
		ErrorPause: cfg.ErrorPause,
		Log:        logger,
	}
	p := &scrape.Pipeline{Fetcher: fetcher, Config: cfg, Log: logger}

	logger.Info("scrape starting",
		zap.Ints("years", cfg.Years), zap.String("work_dir", cfg.WorkDir),
		zap.Int("concurrency", fetcher.Pool.Size()))

	result := p.Run(cmd.Context(), cfg.Years, os.Stdout)

	var listed, downloaded, failed int
	for _, y := range result.Years {
		listed += y.Listed
		downloaded += y.Downloaded
		failed += y.Failed
	}
	fmt.Printf("Batch summary: %d years, %d listed, %d downloaded, %d failed\n",
		len(result.Years), listed, downloaded, failed)

	if viper.GetBool("handoff") {
		handOffToClassify(cmd.Context(), pc)
	}
	return nil
}

// handOffToClassify runs classify over the scraped years. The downloads
// are already on disk, so a failing child is logged and does not fail
// the scrape.
func handOffToClassify(ctx context.Context, pc types.PipelineConfig) {
	childArgs := handoff.ClassifyArgs(pc.Scrape.Years, pc.Scrape.WorkDir,
		"--log-level", pc.Log.Level,
		"--log-format", pc.Log.Format)
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		childArgs = append(childArgs, "--config", cfgFile)
	}

	logger.Info("handing off to classify", zap.Strings("args", childArgs))
	if err := spawnClassify(ctx, childArgs, os.Stdout, os.Stderr); err != nil {
		logger.Warn("classify handoff failed", zap.Error(err))
	}
}
