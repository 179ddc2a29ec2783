// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx writes WordprocessingML documents made of headings and
// paragraphs of plain or bold runs.
package docx

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

// Block is a top-level element of the document body.
type Block interface {
	writeXML(b *strings.Builder)
}

// Heading is a heading paragraph. Level 0 is the document title; levels 1
// and 2 are section headings.
type Heading struct {
	Level int
	Text  string
}

// Run is a span of text with uniform formatting. Newlines become line
// breaks.
type Run struct {
	Text string
	Bold bool
}

// Paragraph is a body paragraph.
type Paragraph struct {
	Runs []Run
}

// Text returns the concatenated run text.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// AddRun appends a run and returns the paragraph for chaining.
func (p *Paragraph) AddRun(text string, bold bool) *Paragraph {
	p.Runs = append(p.Runs, Run{Text: text, Bold: bold})
	return p
}

// Document is an in-memory word processing document.
type Document struct {
	Title string

	// DefaultFont and DefaultSize (points) set the Normal style.
	DefaultFont string
	DefaultSize float64

	Blocks []Block
}

// New returns an empty document with an 11pt Normal style.
func New() *Document {
	return &Document{DefaultSize: 11}
}

// AddHeading appends a heading. Levels outside 0..2 are clamped.
func (d *Document) AddHeading(text string, level int) *Heading {
	level = max(0, min(level, 2))
	h := &Heading{Level: level, Text: text}
	d.Blocks = append(d.Blocks, h)
	return h
}

// AddParagraph appends a paragraph holding text as a single plain run, or
// no runs when text is empty.
func (d *Document) AddParagraph(text string) *Paragraph {
	p := &Paragraph{}
	if text != "" {
		p.Runs = []Run{{Text: text}}
	}
	d.Blocks = append(d.Blocks, p)
	return p
}

// AddRuns appends a paragraph made of runs.
func (d *Document) AddRuns(runs ...Run) *Paragraph {
	p := &Paragraph{Runs: runs}
	d.Blocks = append(d.Blocks, p)
	return p
}

// Save writes the document to path, creating parent directories.
func (d *Document) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Write writes the document as a zip package to w.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"docProps/core.xml", corePropsXML(d.Title, time.Now().UTC())},
		{"docProps/app.xml", appPropsXML},
		{"word/document.xml", d.documentXML()},
		{"word/styles.xml", stylesXML(d.DefaultFont, d.DefaultSize)},
		{"word/settings.xml", settingsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
	}
	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("adding %s: %w", p.name, err)
		}
		if _, err := io.WriteString(fw, p.body); err != nil {
			return fmt.Errorf("writing %s: %w", p.name, err)
		}
	}
	return zw.Close()
}

func (d *Document) documentXML() string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `"><w:body>`)
	for _, blk := range d.Blocks {
		blk.writeXML(&b)
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1440" w:right="1800" w:bottom="1440" w:left="1800" w:header="851" w:footer="992" w:gutter="0"/>` +
		`</w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func (h *Heading) writeXML(b *strings.Builder) {
	fmt.Fprintf(b, `<w:p><w:pPr><w:pStyle w:val="%s"/></w:pPr>`, headingStyle(h.Level))
	writeRun(b, Run{Text: h.Text})
	b.WriteString(`</w:p>`)
}

func (p *Paragraph) writeXML(b *strings.Builder) {
	b.WriteString(`<w:p>`)
	for _, r := range p.Runs {
		writeRun(b, r)
	}
	b.WriteString(`</w:p>`)
}

func writeRun(b *strings.Builder, r Run) {
	b.WriteString(`<w:r>`)
	if r.Bold {
		b.WriteString(`<w:rPr><w:b/><w:bCs/></w:rPr>`)
	}
	for i, line := range strings.Split(r.Text, "\n") {
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		if line == "" {
			continue
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(b, []byte(line))
		b.WriteString(`</w:t>`)
	}
	b.WriteString(`</w:r>`)
}

func headingStyle(level int) string {
	if level == 0 {
		return "Title"
	}
	return fmt.Sprintf("Heading%d", level)
}
