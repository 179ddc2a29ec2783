// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fees

import (
	"strings"

	"github.com/pdiddy/decktools/internal/docx"
	"github.com/pdiddy/decktools/pkg/types"
)

const (
	defaultTitle = "国内外著名大学心理学系硕士项目费用分析"
	defaultNote  = "说明：以下内容来自提供的 PPT 文档自动抽取与整理，仅展示学费等原币种费用，未包含生活费/杂费。" +
		"按国家分组为'美国 / 英国 / 其他国家'，并尽量保持原始顺序。"
	defaultFont     = "微软雅黑"
	defaultFontSize = 11

	unnamedProgram = "未命名项目"

	labelDuration = "学制："
	labelFee      = "费用："
	labelIntro    = "项目介绍："
	labelRaw      = "项目信息（自动抽取，原始文本）："
)

// DocumentOptions controls the report's title block and base font.
type DocumentOptions struct {
	Title    string
	Note     string
	FontName string
	FontSize float64
}

// DocumentOptionsFrom fills unset config fields with the built-in defaults.
func DocumentOptionsFrom(cfg types.FeesConfig) DocumentOptions {
	opts := DocumentOptions{
		Title:    cfg.Title,
		Note:     cfg.Note,
		FontName: cfg.FontName,
		FontSize: cfg.FontSize,
	}
	if opts.Title == "" {
		opts.Title = defaultTitle
	}
	if opts.Note == "" {
		opts.Note = defaultNote
	}
	if opts.FontName == "" {
		opts.FontName = defaultFont
	}
	if opts.FontSize <= 0 {
		opts.FontSize = defaultFontSize
	}
	return opts
}

// Extract classifies each slide by country and parses its programs. The
// title decides the country; the body text is consulted only when the
// title names no known country.
func Extract(slides []types.SlideText, d *Detector) types.FeeReport {
	if d == nil {
		d = defaultDetector
	}
	report := types.FeeReport{Groups: make(map[types.Country][]types.SlideGroup)}
	for _, s := range slides {
		country := d.Detect(s.Title)
		if country == types.CountryOther {
			country = d.Detect(strings.Join(s.Lines, " "))
		}

		blocks := SplitEntries(s.Lines)
		programs := make([]types.Program, 0, len(blocks))
		for _, b := range blocks {
			programs = append(programs, ParseEntry(b))
		}

		report.Add(types.SlideGroup{
			SlideIndex: s.Index,
			SlideTitle: s.Title,
			Country:    country,
			Programs:   programs,
		})
	}
	return report
}

// BuildDocument lays out the report: a title and note, then one section
// per non-empty country in CountryOrder, and one subsection per program.
func BuildDocument(r types.FeeReport, opts DocumentOptions) *docx.Document {
	doc := docx.New()
	doc.Title = opts.Title
	doc.DefaultFont = opts.FontName
	if opts.FontSize > 0 {
		doc.DefaultSize = opts.FontSize
	}

	doc.AddHeading(opts.Title, 0)
	doc.AddParagraph(opts.Note)

	for _, country := range types.CountryOrder {
		groups := r.Groups[country]
		if len(groups) == 0 {
			continue
		}
		doc.AddHeading(string(country), 1)
		for _, g := range groups {
			for _, p := range g.Programs {
				writeProgram(doc, p, g.SlideTitle)
			}
		}
	}
	return doc
}

func writeProgram(doc *docx.Document, p types.Program, slideTitle string) {
	name := p.Name
	if name == "" {
		name = slideTitle
	}
	if name == "" {
		name = unnamedProgram
	}
	doc.AddHeading(name, 2)

	if p.Duration != "" {
		doc.AddRuns(docx.Run{Text: labelDuration, Bold: true}, docx.Run{Text: p.Duration})
	}
	if p.Fee != "" {
		doc.AddRuns(docx.Run{Text: labelFee, Bold: true}, docx.Run{Text: p.Fee})
	}
	if p.Intro != "" {
		doc.AddRuns(docx.Run{Text: labelIntro, Bold: true}, docx.Run{Text: "\n" + p.Intro})
	}
	if !p.HasDetails() {
		doc.AddRuns(docx.Run{Text: labelRaw, Bold: true}, docx.Run{Text: "\n" + strings.Join(p.Raw, "\n")})
	}
}
