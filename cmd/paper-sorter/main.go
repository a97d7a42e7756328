// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-sorter CLI.
// Phase 1 (scrape) lists, resolves and downloads proceedings papers; phase 2
// (classify) labels them with a generative model. The catalog subcommand
// loads classified years into SQLite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-sorter/internal/logging"
	"github.com/pdiddy/paper-sorter/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// logger is the run-scoped logger built in PersistentPreRunE.
var logger = zap.NewNop()

// rootCmd is the base command for the paper-sorter CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-sorter",
	Short: "Scrape conference papers and sort them into research categories",
	Long: `paper-sorter downloads the papers of a proceedings year and groups them
into research categories discovered by a generative model.

scrape   fetches the year listing, resolves every PDF link and downloads the
         PDFs, then starts classify as a separate process.
classify reads the downloaded PDFs, discovers five categories and labels
         every paper.
catalog  loads classified years into a SQLite database for querying.

Every stage reads and writes checkpoint files in the work directory, so any
stage can be rerun on its own.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		logCfg := loadConfig().Log
		l, err := logging.New(logCfg.Level, logCfg.Format)
		if err != nil {
			return err
		}
		logger = l.With(zap.String("run_id", uuid.NewString()), zap.String("command", cmd.Name()))
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./paper-sorter.yaml or ~/.config/paper-sorter/paper-sorter.yaml)")
	pf.String("work-dir", ".", "directory for checkpoint files and downloaded PDFs")
	pf.IntSlice("years", []int{2021}, "proceedings years to process")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console or json)")

	bindFlags(pf, map[string]string{
		"work_dir":   "work-dir",
		"years":      "years",
		"log_level":  "log-level",
		"log_format": "log-format",
	})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-sorter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paper-sorter"))
		}
	}

	viper.SetEnvPrefix("PAPER_SORTER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
