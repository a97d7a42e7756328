// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/pdiddy/paper-sorter/internal/catalog"
	"github.com/pdiddy/paper-sorter/internal/secrets"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

// loadConfig assembles the configuration of every stage from the merged
// flag, environment and config file values.
func loadConfig() types.PipelineConfig {
	workDir := viper.GetString("work_dir")
	years := viper.GetIntSlice("years")

	dbPath := viper.GetString("catalog_path")
	if dbPath == "" {
		dbPath = filepath.Join(workDir, catalog.DefaultFile)
	}

	return types.PipelineConfig{
		Scrape: types.ScrapeConfig{
			HTTPConfig: types.HTTPConfig{
				PageTimeout: viper.GetDuration("page_timeout"),
				PDFTimeout:  viper.GetDuration("pdf_timeout"),
				ErrorPause:  viper.GetDuration("error_pause"),
				MaxRetries:  viper.GetInt("max_retries"),
				Concurrency: viper.GetInt("concurrency"),
				UserAgent:   viper.GetString("user_agent"),
			},
			BaseURL:     viper.GetString("base_url"),
			ListingPath: viper.GetString("listing_path"),
			WorkDir:     workDir,
			Years:       years,
		},
		Classify: types.ClassifyConfig{
			AIConfig: types.AIConfig{
				Model:      viper.GetString("model"),
				APIKey:     secrets.Resolve(viper.GetString("api_key"), loadedSecrets, secrets.GeminiAPIKey, "GEMINI_API_KEY"),
				MaxRetries: viper.GetInt("ai_max_retries"),
				Timeout:    viper.GetDuration("ai_timeout"),
			},
			WorkDir:         workDir,
			Years:           years,
			Canonicalize:    viper.GetBool("canonicalize"),
			ReuseCategories: viper.GetBool("reuse_categories"),
		},
		Catalog: types.CatalogConfig{Path: dbPath},
		Log: types.LogConfig{
			Level:  viper.GetString("log_level"),
			Format: viper.GetString("log_format"),
		},
	}
}
