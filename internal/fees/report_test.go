// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fees

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/decktools/internal/docx"
	"github.com/pdiddy/decktools/pkg/types"
)

func TestExtract(t *testing.T) {
	slides := []types.SlideText{
		{Index: 1, Title: "美国 心理学项目", Lines: []string{"美国 心理学项目", "• 哥伦比亚大学", "学费：$60,000"}},
		{Index: 2, Title: "Programs", Lines: []string{"Programs", "University of Oxford, England"}},
		{Index: 3, Title: "加拿大", Lines: []string{"加拿大", "多伦多大学"}},
		{Index: 4, Title: "美国 教育学项目", Lines: []string{"美国 教育学项目"}},
	}

	report := Extract(slides, nil)

	indexes := func(c types.Country) []int {
		var out []int
		for _, g := range report.Groups[c] {
			out = append(out, g.SlideIndex)
		}
		return out
	}
	assert.Equal(t, []int{1, 4}, indexes(types.CountryUS))
	assert.Equal(t, []int{2}, indexes(types.CountryUK))
	assert.Equal(t, []int{3}, indexes(types.CountryOther))

	us := report.Groups[types.CountryUS][0]
	require.Len(t, us.Programs, 2)
	assert.Equal(t, "美国 心理学项目", us.SlideTitle)
	assert.Equal(t, "• 哥伦比亚大学", us.Programs[1].Name)
	assert.Equal(t, "$60,000", us.Programs[1].Fee)
	assert.Equal(t, 5, report.ProgramCount())
}

func TestExtract_CustomDetector(t *testing.T) {
	slides := []types.SlideText{{Index: 1, Title: "Harvard", Lines: []string{"Harvard"}}}

	report := Extract(slides, NewDetector([]string{"Harvard"}, nil))
	assert.Len(t, report.Groups[types.CountryUS], 1)
}

// outline flattens document blocks into one string per block.
func outline(doc *docx.Document) []string {
	out := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		switch v := b.(type) {
		case *docx.Heading:
			out = append(out, fmt.Sprintf("H%d %s", v.Level, v.Text))
		case *docx.Paragraph:
			out = append(out, "P "+v.Text())
		}
	}
	return out
}

func TestBuildDocument(t *testing.T) {
	var report types.FeeReport
	report.Add(types.SlideGroup{
		SlideIndex: 1,
		SlideTitle: "美国 项目",
		Country:    types.CountryUS,
		Programs: []types.Program{
			{Name: "心理学硕士", Duration: "1年", Fee: "$1", Intro: "研究"},
			{Raw: []string{"a", "b"}},
		},
	})
	report.Add(types.SlideGroup{
		SlideIndex: 2,
		Country:    types.CountryOther,
		Programs:   []types.Program{{Fee: "€5", Raw: []string{"Fee: €5"}}},
	})

	doc := BuildDocument(report, DocumentOptionsFrom(types.FeesConfig{}))

	want := []string{
		"H0 " + defaultTitle,
		"P " + defaultNote,
		"H1 美国",
		"H2 心理学硕士",
		"P 学制：1年",
		"P 费用：$1",
		"P 项目介绍：\n研究",
		"H2 美国 项目",
		"P 项目信息（自动抽取，原始文本）：\na\nb",
		"H1 其他国家",
		"H2 未命名项目",
		"P 费用：€5",
	}
	if diff := cmp.Diff(want, outline(doc)); diff != "" {
		t.Errorf("document outline mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, defaultFont, doc.DefaultFont)
	assert.InDelta(t, 11, doc.DefaultSize, 1e-9)

	fee, ok := doc.Blocks[5].(*docx.Paragraph)
	require.True(t, ok)
	require.Len(t, fee.Runs, 2)
	assert.True(t, fee.Runs[0].Bold)
	assert.False(t, fee.Runs[1].Bold)
}

func TestDocumentOptionsFrom(t *testing.T) {
	opts := DocumentOptionsFrom(types.FeesConfig{Title: "Fees", FontName: "Arial", FontSize: 12})
	assert.Equal(t, DocumentOptions{Title: "Fees", Note: defaultNote, FontName: "Arial", FontSize: 12}, opts)
}
