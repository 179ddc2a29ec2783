// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package intro

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/decktools/internal/pptx"
)

// DefaultOutput is where Generate writes the deck when no path is given.
const DefaultOutput = "slides/AIEd_Student_Social_Cognition_Intro_CN.pptx"

const (
	fontName = "Microsoft YaHei"

	sizeTitle     = 40
	sizeSubtitle  = 28
	sizeBody      = 26
	sizeCaption   = 18
	sizeNode      = 20
	sizePathLabel = 18
	sizeTools     = 16
	sizeReference = 22
)

var (
	colorBlue  = pptx.RGB(37, 99, 235)   // teacher
	colorGreen = pptx.RGB(22, 163, 74)   // student
	colorGray  = pptx.RGB(107, 114, 128) // observer
	colorBlack = pptx.RGB(17, 24, 39)    // text
	colorLight = pptx.RGB(229, 231, 235) // tools box
)

func font(size float64, bold bool) pptx.Font {
	c := colorBlack
	return pptx.Font{Name: fontName, Size: size, Bold: bold, Color: &c}
}

func ptr(c pptx.Color) *pptx.Color { return &c }

// Build lays out the deck: a title slide, the bullet slides with the
// diagram slide among them, and a closing references slide.
func Build(c Content) *pptx.Presentation {
	p := pptx.New()
	p.Title, _, _ = strings.Cut(c.Title, "\n")

	addTitleSlide(p, c.Title, c.Subtitle)

	at := max(0, min(c.DiagramAfter, len(c.Bullets)))
	for _, s := range c.Bullets[:at] {
		addBulletSlide(p, s, sizeBody)
	}
	addDiagramSlide(p, c.Diagram)
	for _, s := range c.Bullets[at:] {
		addBulletSlide(p, s, sizeBody)
	}

	addBulletSlide(p, c.References, sizeReference)
	return p
}

// Generate builds the deck and saves it to output, printing the saved
// path to w.
func Generate(ctx context.Context, c Content, output string, w io.Writer) error {
	if output == "" {
		output = DefaultOutput
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := Build(c).Save(output); err != nil {
		return fmt.Errorf("saving intro deck: %w", err)
	}
	fmt.Fprintf(w, "Saved: %s\n", output)
	return nil
}

func addTitleSlide(p *pptx.Presentation, title, subtitle string) {
	s := p.AddSlide(pptx.LayoutTitle)
	s.Placeholder(pptx.KindCenterTitle).Text = pptx.TextFrameOf(title, font(sizeTitle, true), pptx.AlignLeft)
	s.Placeholder(pptx.KindSubtitle).Text = pptx.TextFrameOf(subtitle, font(sizeSubtitle, false), pptx.AlignLeft)
}

func addBulletSlide(p *pptx.Presentation, b BulletSlide, size float64) {
	s := p.AddSlide(pptx.LayoutTitleContent)
	s.Placeholder(pptx.KindTitle).Text = pptx.TextFrameOf(b.Title, font(sizeTitle, true), pptx.AlignLeft)

	body := &pptx.TextFrame{WordWrap: true, Anchor: pptx.AnchorTop}
	for _, line := range b.Bullets {
		body.Paragraphs = append(body.Paragraphs, pptx.Paragraph{Text: line, Level: 0, Font: font(size, false)})
	}
	s.Placeholder(pptx.KindBody).Text = body
	s.Notes = b.Notes
}

// addDiagramSlide draws the role ecology on a blank slide. Node positions
// are centres; ovals are placed around them.
func addDiagramSlide(p *pptx.Presentation, d DiagramSlide) {
	s := p.AddSlide(pptx.LayoutBlank)

	s.Add(pptx.Shape{
		Kind: pptx.KindTextbox, Name: "Title",
		X: pptx.Inches(0.7), Y: pptx.Inches(0.4), W: pptx.Inches(12), H: pptx.Inches(1.0),
		Text: pptx.TextFrameOf(d.Title, font(sizeTitle, true), pptx.AlignLeft),
	})

	var (
		cx, cy = pptx.Inches(2.6), pptx.Inches(3.8) // student
		tx, ty = pptx.Inches(9.2), pptx.Inches(3.8) // teacher
		ox, oy = pptx.Inches(5.9), pptx.Inches(1.6) // observer
		radius = pptx.Inches(1.2)
	)
	addNode(s, "Student", cx, cy, radius, colorGreen, d.Student)
	addNode(s, "Teacher", tx, ty, radius, colorBlue, d.Teacher)
	addNode(s, "Observer", ox, oy, radius, colorGray, d.Observer)

	path := s.Add(pptx.Connector(cx+radius/2, cy, tx-radius/2, ty))
	path.Name = "Perception"
	path.Line = ptr(colorBlue)
	path.LineWidth = pptx.Inches(0.08)

	s.Add(pptx.Shape{
		Kind: pptx.KindTextbox, Name: "Perception Label",
		X: pptx.Inches((2.6+9.2)/2 - 1.2), Y: cy - pptx.Inches(0.9), W: pptx.Inches(2.4), H: pptx.Inches(0.6),
		Text: pptx.TextFrameOf(d.PathLabel, font(sizePathLabel, true), pptx.AlignCenter),
	})

	prior := s.Add(pptx.Connector(ox, oy+radius/2, tx, ty-radius/2))
	prior.Name = "Observer Path"
	prior.Line = ptr(colorGray)
	prior.LineWidth = pptx.Inches(0.04)

	s.Add(pptx.Shape{
		Kind: pptx.KindRoundRect, Name: "AI Tools",
		X: tx + pptx.Inches(0.9), Y: ty - pptx.Inches(0.5), W: pptx.Inches(2.0), H: pptx.Inches(1.0),
		Fill: ptr(colorLight), Line: ptr(colorGray),
		Text: pptx.TextFrameOf(d.Tools, font(sizeTools, false), pptx.AlignCenter),
	})

	tools := s.Add(pptx.Connector(tx+pptx.Inches(0.9), ty, tx+radius/2, ty))
	tools.Name = "Tools Path"
	tools.Line = ptr(colorBlue)
	tools.LineWidth = pptx.Inches(0.04)

	s.Add(pptx.Shape{
		Kind: pptx.KindTextbox, Name: "Caption",
		X: pptx.Inches(0.7), Y: pptx.Inches(6.6), W: pptx.Inches(12), H: pptx.Inches(0.8),
		Text: pptx.TextFrameOf(d.Caption, font(sizeCaption, false), pptx.AlignLeft),
	})

	s.Notes = d.Notes
}

func addNode(s *pptx.Slide, name string, x, y, size pptx.EMU, c pptx.Color, label string) {
	s.Add(pptx.Shape{
		Kind: pptx.KindOval, Name: name,
		X: x - size/2, Y: y - size/2, W: size, H: size,
		Fill: ptr(c), Line: ptr(c),
		Text: pptx.TextFrameOf(label, font(sizeNode, true), pptx.AlignCenter),
	})
}
