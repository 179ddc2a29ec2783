// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pptx

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/decktools/pkg/types"
)

func TestConnector(t *testing.T) {
	tests := []struct {
		name   string
		x1, y1 EMU
		x2, y2 EMU
		want   Shape
	}{
		{
			name: "left to right",
			x1:   100, y1: 50, x2: 400, y2: 50,
			want: Shape{Kind: KindConnector, X: 100, Y: 50, W: 300, H: 0},
		},
		{
			name: "right to left flips horizontally",
			x1:   400, y1: 50, x2: 100, y2: 50,
			want: Shape{Kind: KindConnector, X: 100, Y: 50, W: 300, FlipH: true},
		},
		{
			name: "bottom to top flips vertically",
			x1:   10, y1: 500, x2: 20, y2: 200,
			want: Shape{Kind: KindConnector, X: 10, Y: 200, W: 10, H: 300, FlipV: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Connector(tt.x1, tt.y1, tt.x2, tt.y2)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Connector() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnits(t *testing.T) {
	assert.Equal(t, EMU(914400), Inches(1))
	assert.Equal(t, EMU(12191695), Inches(13.333))
	assert.Equal(t, EMU(12700), Points(1))
	assert.InDelta(t, 7.5, WidescreenHeight.InchesOf(), 1e-9)
	assert.Equal(t, "2563EB", RGB(37, 99, 235).Hex())
}

func TestTextFrameOf(t *testing.T) {
	font := Font{Name: "Microsoft YaHei", Size: 20, Bold: true}
	tf := TextFrameOf("学生\n（被动使用者）", font, AlignCenter)

	require.Len(t, tf.Paragraphs, 2)
	assert.Equal(t, "学生", tf.Paragraphs[0].Text)
	assert.Equal(t, AlignCenter, tf.Paragraphs[1].Align)
	assert.True(t, tf.WordWrap)
	assert.False(t, tf.AutoFit)
	assert.Equal(t, AnchorTop, tf.Anchor)
	assert.Equal(t, "学生\n（被动使用者）", tf.Text())
}

func buildSample() *Presentation {
	p := New()
	p.Title = "sample"

	s1 := p.AddSlide(LayoutTitle)
	s1.Placeholder(KindCenterTitle).Text = TextFrameOf("标题\n第二行", Font{Size: 40, Bold: true}, AlignLeft)
	s1.Placeholder(KindSubtitle).Text = TextFrameOf("副标题", Font{Size: 28}, AlignLeft)

	s2 := p.AddSlide(LayoutTitleContent)
	s2.Placeholder(KindTitle).Text = TextFrameOf("背景 & <范围>", Font{}, "")
	s2.Placeholder(KindBody).Text = &TextFrame{Paragraphs: []Paragraph{
		{Text: "第一点"}, {Text: "第一点"}, {Text: "第二点"}, {Text: ""},
	}}
	s2.Notes = "演讲备注\n第二行"

	s3 := p.AddSlide(LayoutBlank)
	green := RGB(22, 163, 74)
	oval := s3.Add(Shape{Kind: KindOval, X: Inches(1), Y: Inches(1), W: Inches(1.2), H: Inches(1.2)})
	oval.Fill = &green
	oval.Line = &green
	oval.Text = TextFrameOf("学生", Font{Size: 20}, AlignCenter)
	arrow := s3.Add(Connector(Inches(5), Inches(3), Inches(2), Inches(3)))
	arrow.Line = &green
	arrow.LineWidth = Inches(0.04)
	return p
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	_, err := buildSample().WriteTo(&buf)
	require.NoError(t, err)

	deck, err := Read(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	assert.Equal(t, WidescreenWidth, deck.Width)
	assert.Equal(t, WidescreenHeight, deck.Height)

	want := []types.SlideText{
		{Index: 1, Title: "标题\n第二行", Lines: []string{"标题", "第二行", "副标题"}},
		{Index: 2, Title: "背景 & <范围>", Lines: []string{"背景 & <范围>", "第一点", "第二点"}},
		{Index: 3, Lines: []string{"学生"}},
	}
	if diff := cmp.Diff(want, deck.Slides); diff != "" {
		t.Errorf("slides mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, map[int]string{2: "演讲备注\n第二行"}, deck.Notes)
}

func TestWriteTo_PackageParts(t *testing.T) {
	var buf bytes.Buffer
	n, err := buildSample().WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout3.xml",
		"ppt/notesMasters/notesMaster1.xml",
		"ppt/theme/theme2.xml",
		"ppt/slides/slide3.xml",
		"ppt/notesSlides/notesSlide2.xml",
		"docProps/core.xml",
	} {
		assert.True(t, names[want], "missing part %s", want)
	}
	assert.False(t, names["ppt/notesSlides/notesSlide1.xml"], "slide without notes must not get a notes part")

	slide3 := readPart(t, zr, "ppt/slides/slide3.xml")
	assert.Contains(t, slide3, `<a:prstGeom prst="ellipse">`)
	assert.Contains(t, slide3, `<a:srgbClr val="16A34A"/>`)
	assert.Contains(t, slide3, `<a:xfrm flipH="1">`)
	assert.Contains(t, slide3, `<a:ln w="36576">`)

	slide1 := readPart(t, zr, "ppt/slides/slide1.xml")
	assert.Contains(t, slide1, `sz="4000" b="1"`)
	assert.Contains(t, slide1, `<p:ph type="ctrTitle"/>`)

	ct := readPart(t, zr, "[Content_Types].xml")
	assert.Contains(t, ct, `PartName="/ppt/notesSlides/notesSlide2.xml"`)

	app := readPart(t, zr, "docProps/app.xml")
	assert.Contains(t, app, `<Slides>3</Slides><Notes>1</Notes>`)
}

func TestSave_CreatesDirectories(t *testing.T) {
	out := filepath.Join(t.TempDir(), "slides", "deck.pptx")
	require.NoError(t, buildSample().Save(out))

	deck, err := Open(out)
	require.NoError(t, err)
	assert.Len(t, deck.Slides, 3)
}

func TestRead_Errors(t *testing.T) {
	t.Run("not a zip", func(t *testing.T) {
		data := []byte("plain text")
		_, err := Read(bytes.NewReader(data), int64(len(data)))
		assert.ErrorIs(t, err, ErrNotPresentation)
	})
	t.Run("zip without presentation", func(t *testing.T) {
		data := zipOf(t, map[string]string{"word/document.xml": "<w:document/>"})
		_, err := Read(bytes.NewReader(data), int64(len(data)))
		assert.ErrorIs(t, err, ErrNotPresentation)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope.pptx"))
		assert.Error(t, err)
	})
}

func TestRead_ParagraphText(t *testing.T) {
	slide := `<p:sld ` + nsAttrs + `><p:cSld><p:spTree>` +
		// Body before title: the title is still found by placeholder type.
		`<p:sp><p:nvSpPr><p:cNvPr id="3" name="b"/><p:cNvSpPr/><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr>` +
		`<p:txBody><a:p><a:r><a:t> Tuition: </a:t></a:r><a:r><a:t>$30,000 </a:t></a:r></a:p>` +
		`<a:p><a:fld id="x" type="slidenum"><a:t>7</a:t></a:fld></a:p>` +
		`<a:p><a:r><a:t>  </a:t></a:r></a:p>` +
		`</p:txBody></p:sp>` +
		`<p:sp><p:nvSpPr><p:cNvPr id="2" name="t"/><p:cNvSpPr/><p:nvPr><p:ph type="title"/></p:nvPr></p:nvSpPr>` +
		`<p:txBody><a:p><a:r><a:t> US Programs </a:t></a:r></a:p></p:txBody></p:sp>` +
		`<p:grpSp><p:sp><p:txBody><a:p><a:r><a:t>grouped</a:t></a:r></a:p></p:txBody></p:sp></p:grpSp>` +
		`</p:spTree></p:cSld></p:sld>`

	data := zipOf(t, map[string]string{
		"ppt/presentation.xml": `<p:presentation ` + nsAttrs + `><p:sldIdLst><p:sldId id="256" r:id="rId7"/></p:sldIdLst>` +
			`<p:sldSz cx="9144000" cy="6858000"/></p:presentation>`,
		"ppt/_rels/presentation.xml.rels": `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId7" Type="` + relSlide + `" Target="slides/slide1.xml"/></Relationships>`,
		"ppt/slides/slide1.xml": slide,
	})

	deck, err := Read(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, deck.Slides, 1)

	got := deck.Slides[0]
	assert.Equal(t, "US Programs", got.Title)
	assert.Equal(t, []string{"Tuition: $30,000", "7", "US Programs"}, got.Lines)
	assert.Empty(t, deck.Notes)
	assert.Equal(t, EMU(9144000), deck.Width)
}

func readPart(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	f, err := zr.Open(name)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(data)
}

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.Copy(w, strings.NewReader(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
