// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/classify"
)

const defaultAITimeout = 120 * time.Second

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Discover categories and label each downloaded paper",
	Long: `Classify reads the first page of every PDF in pdf_<year>/, asks the model
for five research categories, then asks it to label each paper with one or
more of them. The labels are merged onto pdf_links_<year>.json and written
to pdf_links_<year>_updated.json. The category list is kept in
categories_<year>.yaml.

The API key is taken from --api-key, PAPER_SORTER_API_KEY, GEMINI_API_KEY
or .secrets/gemini-api-key, in that order.`,
	RunE: runClassify,
}

func init() {
	f := classifyCmd.Flags()
	f.String("model", classify.DefaultModel, "Gemini model identifier")
	f.String("api-key", "", "Gemini API key")
	f.Int("ai-max-retries", 3, "retries for failed model calls")
	f.Duration("ai-timeout", defaultAITimeout, "timeout for one model call")
	f.Bool("canonicalize", false, "map near-miss labels onto the discovered categories")
	f.Bool("reuse-categories", false, "reuse categories_<year>.yaml instead of rediscovering")

	bindFlags(f, map[string]string{
		"api_key":          "api-key",
		"model":            "model",
		"ai_max_retries":   "ai-max-retries",
		"ai_timeout":       "ai-timeout",
		"canonicalize":     "canonicalize",
		"reuse_categories": "reuse-categories",
	})

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig().Classify
	if cfg.APIKey == "" {
		return errors.New("no Gemini API key: set --api-key, PAPER_SORTER_API_KEY, GEMINI_API_KEY or .secrets/gemini-api-key")
	}

	backend := &classify.GeminiBackend{
		APIKey: cfg.APIKey,
		Model:  cfg.Model,
		Client: &http.Client{Timeout: cfg.Timeout},
	}
	runner := &classify.Runner{
		Classifier: &classify.Classifier{
			Backend:      backend,
			MaxRetries:   cfg.MaxRetries,
			Canonicalize: cfg.Canonicalize,
			Log:          logger,
		},
		Config: cfg,
		Log:    logger,
	}

	years := cfg.Years
	var merged, failed int
	for _, year := range years {
		sum, err := runner.Run(cmd.Context(), year)
		switch {
		case err != nil:
			failed++
			logger.Error("classification aborted", zap.Int("year", year), zap.Error(err))
			fmt.Fprintf(os.Stdout, "year %d: aborted (%v)\n", year, err)
		case sum.Merged:
			merged++
			fmt.Fprintf(os.Stdout, "year %d: %d papers labelled with %v\n", year, sum.Texts, []string(sum.Categories))
		default:
			fmt.Fprintf(os.Stdout, "year %d: %d texts for %d records, categories not merged\n", year, sum.Texts, sum.Records)
		}
	}

	fmt.Printf("Batch summary: %d years, %d merged, %d not merged, %d aborted\n",
		len(years), merged, len(years)-merged-failed, failed)
	return nil
}
