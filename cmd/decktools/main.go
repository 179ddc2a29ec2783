// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the decktools CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/decktools/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd is the base command for the decktools CLI.
var rootCmd = &cobra.Command{
	Use:   "decktools",
	Short: "Batch tools for slide decks and the reports built from them",
	Long: `decktools turns slide decks into documents and documents into slide decks.

fees extracts master's program records (name, duration, fee, description)
from .pptx decks and writes a Word report grouped by country. intro writes
the fixed introductory deck. catalog keeps extracted programs in a local
SQLite database for full-text search and export.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./decktools.yaml or ~/.config/decktools/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("decktools")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "decktools"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("DECKTOOLS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// setDefaults registers every config key so that environment variables
// are picked up by Unmarshal.
func setDefaults() {
	viper.SetDefault("fees.font_name", "")
	viper.SetDefault("fees.font_size", 0)
	viper.SetDefault("fees.title", "")
	viper.SetDefault("fees.note", "")
	viper.SetDefault("fees.extra_us_keywords", []string{})
	viper.SetDefault("fees.extra_uk_keywords", []string{})
	viper.SetDefault("fees.work_dir", ".decktools/work")
	viper.SetDefault("fees.jobs", 4)

	viper.SetDefault("intro.output", "")
	viper.SetDefault("intro.content_file", "")

	viper.SetDefault("catalog.dir", ".decktools/catalog")
	viper.SetDefault("catalog.max_results", 20)
}

// loadConfig decodes the merged flag, environment, file, and default
// settings.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
