// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/decktools/internal/catalog"
	"github.com/pdiddy/decktools/internal/container"
	"github.com/pdiddy/decktools/internal/convert"
	"github.com/pdiddy/decktools/internal/fees"
	"github.com/pdiddy/decktools/pkg/types"
)

var feesCmd = &cobra.Command{
	Use:   "fees",
	Short: "Extract program fees from slide decks into a Word report",
	Long: `Fees reads a slide deck, extracts master's program records (name,
duration, fee, description) from the slide text, groups them by country
(美国 / 英国 / 其他国家), and writes a formatted .docx report.

Single deck:   decktools fees -i programs.pptx -o fees.docx
Whole folder:  decktools fees --input-dir decks --output-dir docs

Legacy .ppt decks are upgraded through the office-convert container image
when docker or podman is available.`,
	Args: cobra.NoArgs,
	RunE: runFees,
}

func runFees(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	inputDir, _ := cmd.Flags().GetString("input-dir")

	ctx := cmd.Context()
	switch {
	case inputDir != "":
		return runFeesBatch(ctx, cmd, cfg, inputDir)
	case input != "":
		if output == "" {
			return errors.New("--output is required with --input")
		}
		return runFeesSingle(ctx, cmd, cfg, input, output)
	default:
		return errors.New("either --input or --input-dir is required")
	}
}

func runFeesSingle(ctx context.Context, cmd *cobra.Command, cfg types.Config, input, output string) error {
	conv, err := legacyConverter(ctx, input)
	if err != nil {
		return err
	}
	runner := newFeesRunner(cfg.Fees, conv)

	report, err := runner.Run(ctx, input, output)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s (%d programs)\n", output, report.ProgramCount())

	if dump, _ := cmd.Flags().GetString("dump"); dump != "" {
		if err := fees.WriteDump(report, dump); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dumped: %s\n", dump)
	}

	if useCatalog, _ := cmd.Flags().GetBool("catalog"); useCatalog {
		info, err := os.Stat(input)
		if err != nil {
			return err
		}
		store, err := catalog.NewStore(cfg.Catalog, runner, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Put(ctx, report, info.ModTime()); err != nil {
			return fmt.Errorf("indexing %s: %w", input, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d programs in %s\n", report.ProgramCount(), cfg.Catalog.Dir)
	}
	return nil
}

func runFeesBatch(ctx context.Context, cmd *cobra.Command, cfg types.Config, inputDir string) error {
	outDir, _ := cmd.Flags().GetString("output-dir")
	if outDir == "" {
		return errors.New("--output-dir is required with --input-dir")
	}
	force, _ := cmd.Flags().GetBool("force")

	inputs, err := fees.FindDecks(inputDir)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .pptx or .ppt decks in %s", inputDir)
	}

	conv, err := legacyConverter(ctx, inputs...)
	if err != nil {
		// Modern decks still convert; legacy ones fail individually.
		logger.Warn("legacy decks will be skipped", zap.Error(err))
		conv = nil
	}

	result, err := newFeesRunner(cfg.Fees, conv).RunBatch(ctx, inputs, outDir, force, cfg.Fees.Jobs, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d deck(s) failed", result.Failed)
	}
	return nil
}

func newFeesRunner(cfg types.FeesConfig, conv convert.Converter) *fees.Runner {
	return fees.NewRunner(fees.Options{
		Document:  fees.DocumentOptionsFrom(cfg),
		Detector:  fees.NewDetector(cfg.ExtraUSKeywords, cfg.ExtraUKKeywords),
		Converter: conv,
		WorkDir:   cfg.WorkDir,
		Logger:    logger,
	})
}

// legacyConverter returns an office converter when any input needs an
// upgrade, and nil otherwise.
func legacyConverter(ctx context.Context, inputs ...string) (convert.Converter, error) {
	legacy := false
	for _, in := range inputs {
		if convert.NeedsUpgrade(in) {
			legacy = true
			break
		}
	}
	if !legacy {
		return nil, nil
	}

	detectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	rt, err := container.DetectRuntime(detectCtx)
	if err != nil {
		return nil, fmt.Errorf("legacy .ppt input: %w", err)
	}
	conv, err := convert.NewOfficeConverter(detectCtx, rt)
	if err != nil {
		return nil, fmt.Errorf("legacy .ppt input: %w", err)
	}
	logger.Debug("using office converter", zap.String("runtime", rt.Name()))
	return conv, nil
}

func init() {
	feesCmd.Flags().StringP("input", "i", "", "input .pptx (or .ppt) deck")
	feesCmd.Flags().StringP("output", "o", "", "output .docx report")
	feesCmd.Flags().String("dump", "", "also write the extracted programs to a .yaml or .json file")
	feesCmd.Flags().Bool("catalog", false, "also index the extracted programs in the catalog")

	feesCmd.Flags().String("input-dir", "", "process every deck in this directory")
	feesCmd.Flags().String("output-dir", "", "directory for batch reports")
	feesCmd.Flags().Bool("force", false, "overwrite existing batch reports")
	feesCmd.Flags().Int("jobs", 4, "decks processed concurrently in batch mode")
	feesCmd.Flags().String("work-dir", ".decktools/work", "directory for upgraded legacy decks")

	feesCmd.MarkFlagsMutuallyExclusive("input", "input-dir")

	_ = viper.BindPFlag("fees.jobs", feesCmd.Flags().Lookup("jobs"))
	_ = viper.BindPFlag("fees.work_dir", feesCmd.Flags().Lookup("work-dir"))

	rootCmd.AddCommand(feesCmd)
}
