// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pptx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Save writes the presentation to path, creating parent directories.
func (p *Presentation) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := p.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// part is one file of the package.
type part struct {
	name string
	body string
}

// WriteTo writes the presentation as a zip package to w.
func (p *Presentation) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, pt := range p.parts() {
		fw, err := zw.Create(pt.name)
		if err != nil {
			return cw.n, fmt.Errorf("adding %s: %w", pt.name, err)
		}
		if _, err := io.WriteString(fw, pt.body); err != nil {
			return cw.n, fmt.Errorf("writing %s: %w", pt.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("closing package: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

func (p *Presentation) parts() []part {
	w, h := p.Width, p.Height
	if w == 0 || h == 0 {
		w, h = WidescreenWidth, WidescreenHeight
	}

	ct := &contentTypes{}
	var parts []part
	add := func(name, contentType, body string) {
		parts = append(parts, part{name: name, body: body})
		if contentType != "" {
			ct.override("/"+name, contentType)
		}
	}

	add("_rels/.rels", "", relsXML([]rel{
		{"rId1", relOfficeDocument, "ppt/presentation.xml"},
		{"rId2", relCoreProps, "docProps/core.xml"},
		{"rId3", relExtendedProps, "docProps/app.xml"},
	}))
	add("docProps/core.xml", ctCoreProps, corePropsXML(p.Title, time.Now().UTC()))
	add("docProps/app.xml", ctAppProps, appPropsXML(len(p.Slides), p.notesCount()))

	presRels := []rel{
		{"rId1", relSlideMaster, "slideMasters/slideMaster1.xml"},
		{"rId2", relNotesMaster, "notesMasters/notesMaster1.xml"},
		{"rId3", relPresProps, "presProps.xml"},
		{"rId4", relViewProps, "viewProps.xml"},
		{"rId5", relTheme, "theme/theme1.xml"},
		{"rId6", relTableStyles, "tableStyles.xml"},
	}
	const firstSlideRel = 7
	for i := range p.Slides {
		presRels = append(presRels, rel{fmt.Sprintf("rId%d", firstSlideRel+i), relSlide, fmt.Sprintf("slides/slide%d.xml", i+1)})
	}
	add("ppt/presentation.xml", ctPresentation, presentationXML(len(p.Slides), firstSlideRel, w, h))
	add("ppt/_rels/presentation.xml.rels", "", relsXML(presRels))
	add("ppt/presProps.xml", ctPresProps, presPropsXML)
	add("ppt/viewProps.xml", ctViewProps, viewPropsXML)
	add("ppt/tableStyles.xml", ctTableStyles, tableStylesXML)
	add("ppt/theme/theme1.xml", ctTheme, themeXML)
	add("ppt/theme/theme2.xml", ctTheme, themeXML)

	masterRels := make([]rel, 0, len(layoutSpecs)+1)
	for i, spec := range layoutSpecs {
		name := fmt.Sprintf("slideLayout%d.xml", i+1)
		add("ppt/slideLayouts/"+name, ctSlideLayout, slideLayoutXML(spec, w, h))
		add("ppt/slideLayouts/_rels/"+name+".rels", "", relsXML([]rel{
			{"rId1", relSlideMaster, "../slideMasters/slideMaster1.xml"},
		}))
		masterRels = append(masterRels, rel{fmt.Sprintf("rId%d", i+1), relSlideLayout, "../slideLayouts/" + name})
	}
	masterRels = append(masterRels, rel{fmt.Sprintf("rId%d", len(layoutSpecs)+1), relTheme, "../theme/theme1.xml"})
	add("ppt/slideMasters/slideMaster1.xml", ctSlideMaster, slideMasterXML(w, h))
	add("ppt/slideMasters/_rels/slideMaster1.xml.rels", "", relsXML(masterRels))

	add("ppt/notesMasters/notesMaster1.xml", ctNotesMaster, notesMasterXML())
	add("ppt/notesMasters/_rels/notesMaster1.xml.rels", "", relsXML([]rel{
		{"rId1", relTheme, "../theme/theme2.xml"},
	}))

	for i, s := range p.Slides {
		n := i + 1
		slideName := fmt.Sprintf("slide%d.xml", n)
		rels := []rel{{"rId1", relSlideLayout, fmt.Sprintf("../slideLayouts/slideLayout%d.xml", layoutIndex(s.Layout)+1)}}
		if s.Notes != "" {
			notesName := fmt.Sprintf("notesSlide%d.xml", n)
			rels = append(rels, rel{"rId2", relNotesSlide, "../notesSlides/" + notesName})
			add("ppt/notesSlides/"+notesName, ctNotesSlide, notesSlideXML(s.Notes))
			add("ppt/notesSlides/_rels/"+notesName+".rels", "", relsXML([]rel{
				{"rId1", relNotesMaster, "../notesMasters/notesMaster1.xml"},
				{"rId2", relSlide, "../slides/" + slideName},
			}))
		}
		add("ppt/slides/"+slideName, ctSlide, slideXML(s, w, h))
		add("ppt/slides/_rels/"+slideName+".rels", "", relsXML(rels))
	}

	return append([]part{{name: "[Content_Types].xml", body: ct.xml()}}, parts...)
}

func layoutIndex(l Layout) int {
	for i, spec := range layoutSpecs {
		if spec.layout == l {
			return i
		}
	}
	return len(layoutSpecs) - 1
}

// --- package plumbing ---

type rel struct {
	id, typ, target string
}

func relsXML(rels []rel) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range rels {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="%s"/>`, r.id, r.typ, escape(r.target))
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

type contentTypes struct {
	overrides [][2]string
}

func (c *contentTypes) override(partName, contentType string) {
	c.overrides = append(c.overrides, [2]string{partName, contentType})
}

func (c *contentTypes) xml() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	fmt.Fprintf(&b, `<Default Extension="rels" ContentType="%s"/>`, ctRels)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	for _, o := range c.overrides {
		fmt.Fprintf(&b, `<Override PartName="%s" ContentType="%s"/>`, o[0], o[1])
	}
	b.WriteString(`</Types>`)
	return b.String()
}

func corePropsXML(title string, now time.Time) string {
	ts := now.Format(time.RFC3339)
	return xmlHeader + `<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + escape(title) + `</dc:title><dc:creator>decktools</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + ts + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

// notesCount returns the number of slides that carry speaker notes.
func (p *Presentation) notesCount() int {
	n := 0
	for _, s := range p.Slides {
		if s.Notes != "" {
			n++
		}
	}
	return n
}

func appPropsXML(slides, notes int) string {
	return xmlHeader + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
		`<Application>decktools</Application>` +
		fmt.Sprintf(`<Slides>%d</Slides><Notes>%d</Notes>`, slides, notes) +
		`</Properties>`
}

func presentationXML(slides, firstRel int, w, h EMU) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:presentation ` + nsAttrs + ` saveSubsetFonts="1">`)
	fmt.Fprintf(&b, `<p:sldMasterIdLst><p:sldMasterId id="%d" r:id="rId1"/></p:sldMasterIdLst>`, masterIDBase)
	b.WriteString(`<p:notesMasterIdLst><p:notesMasterId r:id="rId2"/></p:notesMasterIdLst>`)
	if slides > 0 {
		b.WriteString(`<p:sldIdLst>`)
		for i := 0; i < slides; i++ {
			fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, slideIDBase+i, firstRel+i)
		}
		b.WriteString(`</p:sldIdLst>`)
	}
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d"/><p:notesSz cx="%d" cy="%d"/>`, w, h, notesWidth, notesHeight)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

// --- slides ---

func slideXML(s *Slide, w, h EMU) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:sld ` + nsAttrs + `><p:cSld><p:spTree>`)
	b.WriteString(groupHeader)
	for i, shape := range s.Shapes {
		writeShape(&b, i+2, shape, w, h)
	}
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(clrMapOvr)
	b.WriteString(`</p:sld>`)
	return b.String()
}

func writeShape(b *strings.Builder, id int, s Shape, w, h EMU) {
	if s.Kind == KindConnector {
		writeConnector(b, id, s)
		return
	}

	r := rect{s.X, s.Y, s.W, s.H}
	if s.Kind.isPlaceholder() && (s.W == 0 || s.H == 0) {
		r = placeholderRect(s.Kind, w, h)
	}

	name := s.Name
	if name == "" {
		name = defaultShapeName(s.Kind, id)
	}

	b.WriteString(`<p:sp><p:nvSpPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="%s"/>`, id, escape(name))
	switch {
	case s.Kind.isPlaceholder():
		fmt.Fprintf(b, `<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr>%s</p:nvPr>`, phElement(s.Kind))
	case s.Kind == KindTextbox:
		b.WriteString(`<p:cNvSpPr txBox="1"/><p:nvPr/>`)
	default:
		b.WriteString(`<p:cNvSpPr/><p:nvPr/>`)
	}
	b.WriteString(`</p:nvSpPr><p:spPr>`)
	writeXfrm(b, r, false, false)
	if geom := presetGeometry(s.Kind); geom != "" {
		fmt.Fprintf(b, `<a:prstGeom prst="%s"><a:avLst/></a:prstGeom>`, geom)
	}
	switch {
	case s.Fill != nil:
		writeSolidFill(b, *s.Fill)
	case s.Kind == KindTextbox:
		b.WriteString(`<a:noFill/>`)
	}
	writeLine(b, s.Line, s.LineWidth)
	b.WriteString(`</p:spPr>`)

	tf := s.Text
	if tf == nil {
		tf = &TextFrame{}
	}
	writeTextBody(b, tf)
	b.WriteString(`</p:sp>`)
}

func writeConnector(b *strings.Builder, id int, s Shape) {
	name := s.Name
	if name == "" {
		name = defaultShapeName(s.Kind, id)
	}
	b.WriteString(`<p:cxnSp><p:nvCxnSpPr>`)
	fmt.Fprintf(b, `<p:cNvPr id="%d" name="%s"/>`, id, escape(name))
	b.WriteString(`<p:cNvCxnSpPr/><p:nvPr/></p:nvCxnSpPr><p:spPr>`)
	writeXfrm(b, rect{s.X, s.Y, s.W, s.H}, s.FlipH, s.FlipV)
	b.WriteString(`<a:prstGeom prst="line"><a:avLst/></a:prstGeom>`)
	writeLine(b, s.Line, s.LineWidth)
	b.WriteString(`</p:spPr></p:cxnSp>`)
}

func writeXfrm(b *strings.Builder, r rect, flipH, flipV bool) {
	b.WriteString(`<a:xfrm`)
	if flipH {
		b.WriteString(` flipH="1"`)
	}
	if flipV {
		b.WriteString(` flipV="1"`)
	}
	fmt.Fprintf(b, `><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, r.x, r.y, r.w, r.h)
}

func writeSolidFill(b *strings.Builder, c Color) {
	fmt.Fprintf(b, `<a:solidFill><a:srgbClr val="%s"/></a:solidFill>`, c.Hex())
}

func writeLine(b *strings.Builder, c *Color, width EMU) {
	if c == nil && width == 0 {
		return
	}
	b.WriteString(`<a:ln`)
	if width > 0 {
		fmt.Fprintf(b, ` w="%d"`, width)
	}
	b.WriteString(`>`)
	if c != nil {
		writeSolidFill(b, *c)
	}
	b.WriteString(`</a:ln>`)
}

func presetGeometry(k ShapeKind) string {
	switch k {
	case KindTextbox:
		return "rect"
	case KindOval:
		return "ellipse"
	case KindRoundRect:
		return "roundRect"
	}
	return ""
}

func defaultShapeName(k ShapeKind, id int) string {
	switch k {
	case KindTextbox:
		return fmt.Sprintf("TextBox %d", id-1)
	case KindOval:
		return fmt.Sprintf("Oval %d", id-1)
	case KindRoundRect:
		return fmt.Sprintf("Rounded Rectangle %d", id-1)
	case KindConnector:
		return fmt.Sprintf("Straight Connector %d", id-1)
	}
	return fmt.Sprintf("%s %d", placeholderName(k), id-1)
}

func writeTextBody(b *strings.Builder, tf *TextFrame) {
	b.WriteString(`<p:txBody><a:bodyPr`)
	if tf.WordWrap {
		b.WriteString(` wrap="square"`)
	}
	if tf.Anchor != "" {
		fmt.Fprintf(b, ` anchor="%s"`, tf.Anchor)
	}
	if tf.AutoFit {
		b.WriteString(`><a:spAutoFit/></a:bodyPr>`)
	} else {
		b.WriteString(`><a:noAutofit/></a:bodyPr>`)
	}
	b.WriteString(`<a:lstStyle/>`)
	if len(tf.Paragraphs) == 0 {
		b.WriteString(`<a:p><a:endParaRPr lang="zh-CN"/></a:p>`)
	}
	for _, p := range tf.Paragraphs {
		writeParagraph(b, p)
	}
	b.WriteString(`</p:txBody>`)
}

func writeParagraph(b *strings.Builder, p Paragraph) {
	b.WriteString(`<a:p>`)
	if p.Align != "" || p.Level > 0 {
		b.WriteString(`<a:pPr`)
		if p.Level > 0 {
			fmt.Fprintf(b, ` lvl="%d"`, p.Level)
		}
		if p.Align != "" {
			fmt.Fprintf(b, ` algn="%s"`, p.Align)
		}
		b.WriteString(`/>`)
	}
	for i, line := range strings.Split(p.Text, "\n") {
		if i > 0 {
			b.WriteString(`<a:br>`)
			writeRunProps(b, p.Font, "a:rPr")
			b.WriteString(`</a:br>`)
		}
		if line == "" {
			continue
		}
		b.WriteString(`<a:r>`)
		writeRunProps(b, p.Font, "a:rPr")
		b.WriteString(`<a:t>` + escape(line) + `</a:t></a:r>`)
	}
	writeRunProps(b, p.Font, "a:endParaRPr")
	b.WriteString(`</a:p>`)
}

func writeRunProps(b *strings.Builder, f Font, elem string) {
	fmt.Fprintf(b, `<%s lang="zh-CN" altLang="en-US"`, elem)
	if f.Size > 0 {
		fmt.Fprintf(b, ` sz="%d"`, int(f.Size*100))
	}
	if f.Bold {
		b.WriteString(` b="1"`)
	}
	b.WriteString(` dirty="0">`)
	if f.Color != nil {
		writeSolidFill(b, *f.Color)
	}
	if f.Name != "" {
		n := escape(f.Name)
		fmt.Fprintf(b, `<a:latin typeface="%s"/><a:ea typeface="%s"/>`, n, n)
	}
	fmt.Fprintf(b, `</%s>`, elem)
}

func notesSlideXML(text string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<p:notes ` + nsAttrs + `><p:cSld><p:spTree>`)
	b.WriteString(groupHeader)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Slide Image Placeholder 1"/>` +
		`<p:cNvSpPr><a:spLocks noGrp="1" noRot="1" noChangeAspect="1"/></p:cNvSpPr>` +
		`<p:nvPr><p:ph type="sldImg"/></p:nvPr></p:nvSpPr><p:spPr/></p:sp>`)
	b.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Notes Placeholder 2"/>` +
		`<p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/>`)
	writeTextBody(&b, &TextFrame{Paragraphs: paragraphsOf(text)})
	b.WriteString(`</p:sp></p:spTree></p:cSld>`)
	b.WriteString(clrMapOvr)
	b.WriteString(`</p:notes>`)
	return b.String()
}

func paragraphsOf(text string) []Paragraph {
	lines := strings.Split(text, "\n")
	ps := make([]Paragraph, len(lines))
	for i, l := range lines {
		ps[i] = Paragraph{Text: l}
	}
	return ps
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
