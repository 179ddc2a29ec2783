// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pptx

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/pdiddy/decktools/pkg/types"
)

const presentationPart = "ppt/presentation.xml"

// Deck is the text content of a presentation package.
type Deck struct {
	Width  EMU
	Height EMU

	// Slides holds one entry per slide in presentation order.
	Slides []types.SlideText

	// Notes maps 1-based slide indexes to speaker notes text. Slides
	// without notes have no entry.
	Notes map[int]string
}

// Open reads the presentation at path.
func Open(path string) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	deck, err := Read(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return deck, nil
}

// Read parses a presentation package from r.
func Read(r io.ReaderAt, size int64) (*Deck, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrNotPresentation, err)
		}
		return nil, err
	}
	pkg := &pkgReader{zr: zr}

	var pres xmlPresentation
	if err := pkg.decode(presentationPart, &pres); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotPresentation
		}
		return nil, err
	}
	presRels, err := pkg.rels(presentationPart)
	if err != nil {
		return nil, err
	}

	deck := &Deck{
		Width:  EMU(pres.Size.CX),
		Height: EMU(pres.Size.CY),
		Notes:  make(map[int]string),
	}
	for i, id := range pres.SlideIDs {
		target, ok := presRels[id.RID]
		if !ok {
			return nil, fmt.Errorf("slide %d: relationship %s not found", i+1, id.RID)
		}
		slidePart := resolve(presentationPart, target.Target)

		var sld xmlSlide
		if err := pkg.decode(slidePart, &sld); err != nil {
			return nil, fmt.Errorf("slide %d: %w", i+1, err)
		}
		deck.Slides = append(deck.Slides, sld.text(i+1))

		notes, err := pkg.notes(slidePart)
		if err != nil {
			return nil, fmt.Errorf("slide %d notes: %w", i+1, err)
		}
		if notes != "" {
			deck.Notes[i+1] = notes
		}
	}
	return deck, nil
}

type pkgReader struct {
	zr *zip.Reader
}

func (p *pkgReader) decode(name string, v any) error {
	f, err := p.zr.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := xml.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// rels returns the relationships of a part keyed by id. A part without a
// relationships file has none.
func (p *pkgReader) rels(partName string) (map[string]xmlRelationship, error) {
	relsName := path.Join(path.Dir(partName), "_rels", path.Base(partName)+".rels")
	var doc xmlRelationships
	if err := p.decode(relsName, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]xmlRelationship{}, nil
		}
		return nil, err
	}
	out := make(map[string]xmlRelationship, len(doc.Rels))
	for _, r := range doc.Rels {
		out[r.ID] = r
	}
	return out, nil
}

func (p *pkgReader) notes(slidePart string) (string, error) {
	rels, err := p.rels(slidePart)
	if err != nil {
		return "", err
	}
	for _, r := range rels {
		if r.Type != relNotesSlide {
			continue
		}
		var n xmlSlide
		if err := p.decode(resolve(slidePart, r.Target), &n); err != nil {
			return "", err
		}
		for _, sp := range n.Tree.Shapes {
			if sp.Placeholder != nil && sp.Placeholder.Type == "body" && sp.TxBody != nil {
				return strings.TrimSpace(sp.TxBody.text()), nil
			}
		}
	}
	return "", nil
}

// resolve interprets a relationship target relative to the source part.
func resolve(source, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Join(path.Dir(source), target)
}

// --- XML shapes ---

type xmlPresentation struct {
	SlideIDs []struct {
		RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
	} `xml:"sldIdLst>sldId"`
	Size struct {
		CX int64 `xml:"cx,attr"`
		CY int64 `xml:"cy,attr"`
	} `xml:"sldSz"`
}

type xmlRelationships struct {
	Rels []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

// xmlSlide covers both slides and notes slides. Only shapes that are
// direct children of the shape tree are collected; group contents,
// pictures, and graphic frames are skipped.
type xmlSlide struct {
	Tree struct {
		Shapes []xmlShape `xml:"sp"`
	} `xml:"cSld>spTree"`
}

type xmlShape struct {
	Placeholder *struct {
		Type string `xml:"type,attr"`
	} `xml:"nvSpPr>nvPr>ph"`
	TxBody *xmlTxBody `xml:"txBody"`
}

func (s xmlShape) isTitle() bool {
	return s.Placeholder != nil && (s.Placeholder.Type == "title" || s.Placeholder.Type == "ctrTitle")
}

type xmlTxBody struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

func (t *xmlTxBody) text() string {
	parts := make([]string, len(t.Paragraphs))
	for i, p := range t.Paragraphs {
		parts[i] = p.full
	}
	return strings.Join(parts, "\n")
}

// xmlParagraph records the concatenated run text and the full paragraph
// text, which also includes fields and line breaks.
type xmlParagraph struct {
	runs string
	full string
}

func (p *xmlParagraph) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var (
		runs, full strings.Builder
		stack      []string
	)
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
			if len(stack) == 1 && t.Name.Local == "br" {
				full.WriteString("\n")
			}
		case xml.EndElement:
			if len(stack) == 0 {
				p.runs, p.full = runs.String(), full.String()
				return nil
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 2 && stack[1] == "t" {
				full.Write(t)
				if stack[0] == "r" {
					runs.Write(t)
				}
			}
		}
	}
}

// line returns the text a paragraph contributes to slide lines: the run
// text, or the full text when the runs are blank.
func (p xmlParagraph) line() string {
	if s := strings.TrimSpace(p.runs); s != "" {
		return s
	}
	return strings.TrimSpace(p.full)
}

func (s *xmlSlide) text(index int) types.SlideText {
	st := types.SlideText{Index: index}
	titleSeen := false
	var lines []string
	for _, sp := range s.Tree.Shapes {
		if !titleSeen && sp.isTitle() {
			titleSeen = true
			if sp.TxBody != nil {
				st.Title = strings.TrimSpace(sp.TxBody.text())
			}
		}
		if sp.TxBody == nil {
			continue
		}
		for _, para := range sp.TxBody.Paragraphs {
			if l := para.line(); l != "" {
				lines = append(lines, l)
			}
		}
	}
	st.Lines = dedupe(lines)
	return st
}

// dedupe collapses runs of identical consecutive lines.
func dedupe(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if len(out) == 0 || out[len(out)-1] != l {
			out = append(out, l)
		}
	}
	return out
}
