// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fees

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/decktools/internal/convert"
	"github.com/pdiddy/decktools/internal/pptx"
	"github.com/pdiddy/decktools/pkg/types"
)

type fixtureSlide struct {
	title string
	lines []string
}

// writeDeck saves a title-and-content deck with one slide per fixture.
func writeDeck(t *testing.T, path string, slides ...fixtureSlide) {
	t.Helper()
	p := pptx.New()
	for _, fs := range slides {
		s := p.AddSlide(pptx.LayoutTitleContent)
		s.Placeholder(pptx.KindTitle).Text = pptx.TextFrameOf(fs.title, pptx.Font{}, pptx.AlignLeft)
		s.Placeholder(pptx.KindBody).Text = pptx.TextFrameOf(strings.Join(fs.lines, "\n"), pptx.Font{}, pptx.AlignLeft)
	}
	require.NoError(t, p.Save(path))
}

var sampleSlides = []fixtureSlide{
	{
		title: "美国 心理学项目",
		lines: []string{"• 哥伦比亚大学 临床心理学", "学费：$60,000", "• 纽约大学 心理学", "学费：$55,000"},
	},
	{
		title: "英国 心理学项目",
		lines: []string{"项目名称：UCL 心理学硕士", "学制：1年", "学费：£30,000"},
	},
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "programs.pptx")
	writeDeck(t, input, sampleSlides...)
	output := filepath.Join(dir, "out", "programs.docx")

	report, err := NewRunner(Options{}).Run(context.Background(), input, output)
	require.NoError(t, err)

	assert.Equal(t, input, report.Source)
	require.Len(t, report.Groups[types.CountryUS], 1)
	require.Len(t, report.Groups[types.CountryUK], 1)

	us := report.Groups[types.CountryUS][0].Programs
	require.Len(t, us, 3)
	assert.Equal(t, "• 纽约大学 心理学", us[2].Name)
	assert.Equal(t, "$55,000", us[2].Fee)

	uk := report.Groups[types.CountryUK][0].Programs
	require.Len(t, uk, 2)
	assert.Equal(t, types.Program{
		Name:     "UCL 心理学硕士",
		Duration: "1年",
		Fee:      "£30,000",
		Raw:      []string{"项目名称：UCL 心理学硕士", "学制：1年", "学费：£30,000"},
	}, uk[1])

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(Options{WorkDir: filepath.Join(dir, "work")})

	t.Run("missing input", func(t *testing.T) {
		_, err := runner.Run(context.Background(), filepath.Join(dir, "missing.pptx"), filepath.Join(dir, "a.docx"))
		assert.Error(t, err)
	})

	t.Run("not a presentation", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.pptx")
		require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o644))
		_, err := runner.Run(context.Background(), bad, filepath.Join(dir, "b.docx"))
		assert.ErrorIs(t, err, pptx.ErrNotPresentation)
	})

	t.Run("legacy deck without converter", func(t *testing.T) {
		legacy := filepath.Join(dir, "old.ppt")
		require.NoError(t, os.WriteFile(legacy, []byte("legacy"), 0o644))
		_, err := runner.Run(context.Background(), legacy, filepath.Join(dir, "c.docx"))
		assert.ErrorIs(t, err, convert.ErrUnsupportedFormat)
	})
}

// deckConverter "upgrades" any input by copying a prepared .pptx.
type deckConverter struct {
	deck string
}

func (d deckConverter) Convert(context.Context, string) ([]byte, error) {
	return os.ReadFile(d.deck)
}

func TestRun_UpgradesLegacyDeck(t *testing.T) {
	dir := t.TempDir()
	modern := filepath.Join(dir, "modern.pptx")
	writeDeck(t, modern, sampleSlides...)
	legacy := filepath.Join(dir, "old.ppt")
	require.NoError(t, os.WriteFile(legacy, []byte("legacy"), 0o644))

	work := filepath.Join(dir, "work")
	runner := NewRunner(Options{Converter: deckConverter{deck: modern}, WorkDir: work})
	report, err := runner.Run(context.Background(), legacy, filepath.Join(dir, "old.docx"))
	require.NoError(t, err)

	assert.Equal(t, legacy, report.Source)
	assert.Equal(t, 5, report.ProgramCount())
	upgraded, err := convert.UpgradePath(legacy, work)
	require.NoError(t, err)
	assert.FileExists(t, upgraded)
}

func TestRunBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var inputs []string
	for _, name := range []string{"a", "b", "c"} {
		p := filepath.Join(dir, name+".pptx")
		writeDeck(t, p, sampleSlides...)
		inputs = append(inputs, p)
	}
	bad := filepath.Join(dir, "bad.pptx")
	require.NoError(t, os.WriteFile(bad, []byte("junk"), 0o644))
	inputs = append(inputs, bad)

	outDir := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "c.docx"), []byte("existing"), 0o644))

	var buf bytes.Buffer
	result, err := NewRunner(Options{}).RunBatch(context.Background(), inputs, outDir, false, 2, &buf)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Converted: 2, Skipped: 1, Failed: 1}, result)
	assert.Equal(t, 4, result.Total())
	assert.True(t, result.HasFailures())

	out := buf.String()
	assert.Contains(t, out, "converted: a (5 programs)")
	assert.Contains(t, out, "skipped: c (already exists)")
	assert.Contains(t, out, "failed:  bad")
	assert.Contains(t, out, "Batch summary: 2 converted, 1 skipped, 1 failed (total: 4)")
	assert.FileExists(t, filepath.Join(outDir, "a.docx"))

	existing, err := os.ReadFile(filepath.Join(outDir, "c.docx"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(existing))
}

func TestRunBatch_Force(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "a.pptx")
	writeDeck(t, input, sampleSlides...)
	outDir := filepath.Join(dir, "docs")
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "a.docx"), []byte("existing"), 0o644))

	result, err := NewRunner(Options{}).RunBatch(context.Background(), []string{input}, outDir, true, 0, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Converted: 1}, result)
}

func TestRunBatch_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	input := filepath.Join(dir, "a.pptx")
	writeDeck(t, input, sampleSlides...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	result, err := NewRunner(Options{}).RunBatch(ctx, []string{input}, filepath.Join(dir, "docs"), false, 1, &buf)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, result.Converted)
	assert.Contains(t, buf.String(), "Batch summary:")
}

func TestRunBatch_SameBaseName(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	modern := filepath.Join(dir, "deck.pptx")
	writeDeck(t, modern, sampleSlides...)
	legacy := filepath.Join(dir, "deck.ppt")
	require.NoError(t, os.WriteFile(legacy, []byte("legacy"), 0o644))
	other := filepath.Join(dir, "other.pptx")
	writeDeck(t, other, sampleSlides...)

	runner := NewRunner(Options{
		Converter: deckConverter{deck: modern},
		WorkDir:   filepath.Join(dir, "work"),
	})
	outDir := filepath.Join(dir, "docs")

	var buf bytes.Buffer
	result, err := runner.RunBatch(context.Background(), []string{legacy, modern, other}, outDir, false, 2, &buf)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Converted: 3}, result)
	assert.FileExists(t, filepath.Join(outDir, "deck.ppt.docx"))
	assert.FileExists(t, filepath.Join(outDir, "deck.pptx.docx"))
	assert.FileExists(t, filepath.Join(outDir, "other.docx"))
	assert.NotContains(t, buf.String(), "skipped")
}

func TestOutputNames(t *testing.T) {
	got := outputNames([]string{"a/deck.ppt", "b/Deck.pptx", "a/solo.pptx"})
	assert.Equal(t, []string{"deck.ppt", "Deck.pptx", "solo"}, got)
}

// cancellingConverter cancels the batch while a deck is being upgraded.
type cancellingConverter struct {
	cancel context.CancelFunc
}

func (c cancellingConverter) Convert(ctx context.Context, _ string) ([]byte, error) {
	c.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRunBatch_CancelledMidRun(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	legacy := filepath.Join(dir, "a.ppt")
	require.NoError(t, os.WriteFile(legacy, []byte("legacy"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := NewRunner(Options{
		Converter: cancellingConverter{cancel: cancel},
		WorkDir:   filepath.Join(dir, "work"),
	})

	var buf bytes.Buffer
	result, err := runner.RunBatch(ctx, []string{legacy}, filepath.Join(dir, "docs"), false, 1, &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, BatchResult{}, result)
	assert.NotContains(t, buf.String(), "failed:")
	assert.Contains(t, buf.String(), "Batch summary: 0 converted, 0 skipped, 0 failed (total: 0)")
}

func TestWriteDump(t *testing.T) {
	var report types.FeeReport
	report.Source = "deck.pptx"
	report.Add(types.SlideGroup{
		SlideIndex: 1,
		Country:    types.CountryUK,
		Programs:   []types.Program{{Name: "UCL", Fee: "£1", Raw: []string{"UCL"}}},
	})
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "dump", "report.yaml")
		require.NoError(t, WriteDump(report, path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var got types.FeeReport
		require.NoError(t, yaml.Unmarshal(data, &got))
		assert.Equal(t, report, got)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "report.JSON")
		require.NoError(t, WriteDump(report, path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var got types.FeeReport
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, report, got)
	})
}

func TestFindDecks(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pptx", "a.PPT", "~$a.pptx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pptx"), 0o755))
	extra := filepath.Join(dir, "notes.txt")

	got, err := FindDecks(dir, extra, filepath.Join(dir, "b.pptx"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PPT"),
		filepath.Join(dir, "b.pptx"),
		extra,
	}, got)

	_, err = FindDecks(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
