// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fees extracts master's program records from slide decks, groups
// them by country, and writes them out as a Word report.
package fees

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/decktools/internal/convert"
	"github.com/pdiddy/decktools/internal/pptx"
	"github.com/pdiddy/decktools/pkg/types"
)

const (
	// defaultWorkDir receives decks upgraded from legacy formats.
	defaultWorkDir = ".decktools/work"

	defaultJobs = 4

	extDocx = ".docx"
)

// BatchResult holds the outcome of a batch extraction run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of decks processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any deck failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Runner extracts fee reports from decks and writes them as documents.
type Runner struct {
	doc       DocumentOptions
	detector  *Detector
	converter convert.Converter
	workDir   string
	logger    *zap.Logger
}

// Options configures a Runner. Zero values select the defaults.
type Options struct {
	Document DocumentOptions
	Detector *Detector

	// Converter upgrades legacy .ppt inputs. Without one, .ppt inputs fail
	// with convert.ErrUnsupportedFormat.
	Converter convert.Converter

	WorkDir string
	Logger  *zap.Logger
}

// NewRunner returns a Runner for opts.
func NewRunner(opts Options) *Runner {
	r := &Runner{
		doc:       opts.Document,
		detector:  opts.Detector,
		converter: opts.Converter,
		workDir:   opts.WorkDir,
		logger:    opts.Logger,
	}
	if r.doc == (DocumentOptions{}) {
		r.doc = DocumentOptionsFrom(types.FeesConfig{})
	}
	if r.detector == nil {
		r.detector = defaultDetector
	}
	if r.workDir == "" {
		r.workDir = defaultWorkDir
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// ExtractFile reads the deck at input, upgrading it first when it is in a
// legacy format, and returns its fee report.
func (r *Runner) ExtractFile(ctx context.Context, input string) (types.FeeReport, error) {
	path, err := convert.Normalize(ctx, r.converter, input, r.workDir)
	if err != nil {
		return types.FeeReport{}, err
	}
	if path != input {
		r.logger.Debug("upgraded legacy deck", zap.String("input", input), zap.String("path", path))
	}

	deck, err := pptx.Open(path)
	if err != nil {
		return types.FeeReport{}, fmt.Errorf("reading %s: %w", input, err)
	}

	report := Extract(deck.Slides, r.detector)
	report.Source = input
	r.logger.Debug("extracted programs",
		zap.String("input", input),
		zap.Int("slides", len(deck.Slides)),
		zap.Int("programs", report.ProgramCount()),
	)
	return report, nil
}

// Run extracts the deck at input and saves the report document to output.
// It returns the extracted report so callers can dump or index it.
func (r *Runner) Run(ctx context.Context, input, output string) (types.FeeReport, error) {
	report, err := r.ExtractFile(ctx, input)
	if err != nil {
		return types.FeeReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.FeeReport{}, err
	}
	if err := BuildDocument(report, r.doc).Save(output); err != nil {
		return types.FeeReport{}, fmt.Errorf("writing %s: %w", output, err)
	}
	r.logger.Info("wrote fee report", zap.String("input", input), zap.String("output", output))
	return report, nil
}

// RunBatch processes inputs concurrently, writing outDir/<base>.docx for
// each. Inputs sharing a base name (deck.ppt and deck.pptx) keep their
// extension in the output name instead. Existing outputs are skipped
// unless force is set. Per-file status and a summary are printed to w.
// Individual failures are counted, not returned; the error is non-nil only
// when ctx is cancelled.
func (r *Runner) RunBatch(ctx context.Context, inputs []string, outDir string, force bool, jobs int, w io.Writer) (BatchResult, error) {
	if jobs <= 0 {
		jobs = defaultJobs
	}

	var (
		mu     sync.Mutex
		result BatchResult
	)
	status := func(format string, args ...any) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, args...)
	}

	names := outputNames(inputs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			base := names[i]
			output := filepath.Join(outDir, base+extDocx)

			if !force {
				if _, err := os.Stat(output); err == nil {
					status("skipped: %s (already exists)\n", base)
					mu.Lock()
					result.Skipped++
					mu.Unlock()
					return nil
				}
			}

			if err := ctx.Err(); err != nil {
				return err
			}

			report, err := r.Run(gctx, input, output)
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			if err != nil {
				r.logger.Warn("fee extraction failed", zap.String("input", input), zap.Error(err))
				status("failed:  %s (%v)\n", base, err)
				mu.Lock()
				result.Failed++
				mu.Unlock()
				return nil
			}
			status("converted: %s (%d programs)\n", base, report.ProgramCount())
			mu.Lock()
			result.Converted++
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result, err
}

// outputNames returns the report base name for each input. Inputs whose
// base names collide, ignoring case, keep their extension.
func outputNames(inputs []string) []string {
	stem := func(p string) string {
		return strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
	}
	count := make(map[string]int, len(inputs))
	for _, in := range inputs {
		count[strings.ToLower(stem(in))]++
	}
	names := make([]string, len(inputs))
	for i, in := range inputs {
		if count[strings.ToLower(stem(in))] > 1 {
			names[i] = filepath.Base(in)
		} else {
			names[i] = stem(in)
		}
	}
	return names
}

// FindDecks expands paths into deck files. Directories contribute their
// .pptx and .ppt files (not recursively, skipping Office lock files);
// other paths are kept as given. The result is sorted and deduplicated.
func FindDecks(paths ...string) ([]string, error) {
	seen := make(map[string]bool)
	var decks []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			decks = append(decks, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("reading directory %s: %w", p, err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || strings.HasPrefix(name, "~$") {
				continue
			}
			switch strings.ToLower(filepath.Ext(name)) {
			case ".pptx", ".ppt":
				add(filepath.Join(p, name))
			}
		}
	}
	sort.Strings(decks)
	return decks, nil
}

// WriteDump writes the report to path as JSON when the extension is
// .json, and as YAML otherwise.
func WriteDump(report types.FeeReport, path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(report, "", "  ")
	} else {
		data, err = yaml.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("encoding dump: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating dump directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing dump %s: %w", path, err)
	}
	return nil
}
