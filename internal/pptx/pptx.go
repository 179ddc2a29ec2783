// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pptx reads slide text from PresentationML packages and writes
// simple decks built from an in-memory object model.
//
// The object model covers what the decktools commands need: placeholders,
// text boxes, preset autoshapes, straight connectors, and speaker notes.
// Placeholders without an explicit size take their geometry from the
// layout, so callers only position free-standing shapes.
package pptx

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotPresentation is returned when a package has no presentation part.
var ErrNotPresentation = errors.New("not a PresentationML package")

// EMU is the OOXML length unit.
type EMU int64

const (
	emuPerInch  = 914400
	emuPerPoint = 12700
)

// Inches converts a length in inches to EMU, truncating toward zero.
func Inches(in float64) EMU { return EMU(in * emuPerInch) }

// Points converts a length in points to EMU.
func Points(pt float64) EMU { return EMU(pt * emuPerPoint) }

// InchesOf returns e in inches.
func (e EMU) InchesOf() float64 { return float64(e) / emuPerInch }

// Widescreen slide size, 13.333 x 7.5 inches.
var (
	WidescreenWidth  = Inches(13.333)
	WidescreenHeight = Inches(7.5)
)

// Color is a 24-bit RGB colour.
type Color struct {
	R, G, B uint8
}

// RGB returns the colour with the given components.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b} }

// Hex returns the colour as six upper-case hex digits.
func (c Color) Hex() string { return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B) }

// Align is a paragraph alignment.
type Align string

const (
	AlignLeft   Align = "l"
	AlignCenter Align = "ctr"
	AlignRight  Align = "r"
)

// Anchor is the vertical anchor of a text frame.
type Anchor string

const (
	AnchorTop    Anchor = "t"
	AnchorMiddle Anchor = "ctr"
	AnchorBottom Anchor = "b"
)

// Font describes run formatting. Size is in points; zero inherits.
type Font struct {
	Name  string
	Size  float64
	Bold  bool
	Color *Color
}

// Paragraph is a single paragraph of a text frame. Newlines inside Text
// become line breaks.
type Paragraph struct {
	Text  string
	Level int
	Align Align
	Font  Font
}

// TextFrame is the text body of a shape.
type TextFrame struct {
	Paragraphs []Paragraph
	WordWrap   bool
	AutoFit    bool
	Anchor     Anchor
}

// TextFrameOf splits text on newlines into paragraphs sharing font and
// alignment. The frame wraps words, does not auto-fit, and is top-anchored.
func TextFrameOf(text string, font Font, align Align) *TextFrame {
	tf := &TextFrame{WordWrap: true, Anchor: AnchorTop}
	for _, line := range strings.Split(text, "\n") {
		tf.Paragraphs = append(tf.Paragraphs, Paragraph{Text: line, Align: align, Font: font})
	}
	return tf
}

// Text returns the paragraph texts joined by newlines.
func (tf *TextFrame) Text() string {
	if tf == nil {
		return ""
	}
	parts := make([]string, len(tf.Paragraphs))
	for i, p := range tf.Paragraphs {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// ShapeKind selects the XML element and geometry written for a shape.
type ShapeKind int

const (
	KindTextbox ShapeKind = iota
	KindTitle
	KindCenterTitle
	KindSubtitle
	KindBody
	KindOval
	KindRoundRect
	KindConnector
)

func (k ShapeKind) isPlaceholder() bool {
	switch k {
	case KindTitle, KindCenterTitle, KindSubtitle, KindBody:
		return true
	}
	return false
}

// Shape is one element of a slide's shape tree. For connectors, the
// position and size describe the bounding box and the flips give direction.
type Shape struct {
	Kind ShapeKind
	Name string

	X, Y, W, H EMU
	FlipH      bool
	FlipV      bool

	Fill      *Color
	Line      *Color
	LineWidth EMU

	Text *TextFrame
}

// Connector returns a straight connector from (x1, y1) to (x2, y2).
func Connector(x1, y1, x2, y2 EMU) Shape {
	s := Shape{Kind: KindConnector}
	s.X, s.W, s.FlipH = span(x1, x2)
	s.Y, s.H, s.FlipV = span(y1, y2)
	return s
}

func span(from, to EMU) (origin, extent EMU, flip bool) {
	if to < from {
		return to, from - to, true
	}
	return from, to - from, false
}

// Layout selects the slide layout a slide is bound to.
type Layout int

const (
	LayoutTitle Layout = iota
	LayoutTitleContent
	LayoutBlank
)

// Slide is one slide of a presentation.
type Slide struct {
	Layout Layout
	Shapes []Shape
	Notes  string
}

// Add appends a shape and returns a pointer to it for further styling. The
// pointer is valid until the next Add.
func (s *Slide) Add(shape Shape) *Shape {
	s.Shapes = append(s.Shapes, shape)
	return &s.Shapes[len(s.Shapes)-1]
}

// Placeholder returns the first placeholder of the given kind, or nil.
func (s *Slide) Placeholder(kind ShapeKind) *Shape {
	for i := range s.Shapes {
		if s.Shapes[i].Kind == kind {
			return &s.Shapes[i]
		}
	}
	return nil
}

// Presentation is an in-memory deck ready to be written.
type Presentation struct {
	Width  EMU
	Height EMU
	Title  string
	Slides []*Slide
}

// New returns an empty widescreen presentation.
func New() *Presentation {
	return &Presentation{Width: WidescreenWidth, Height: WidescreenHeight}
}

// AddSlide appends a slide bound to layout. Title and content layouts come
// with their placeholders already present and empty.
func (p *Presentation) AddSlide(layout Layout) *Slide {
	s := &Slide{Layout: layout}
	switch layout {
	case LayoutTitle:
		s.Add(Shape{Kind: KindCenterTitle, Text: &TextFrame{}})
		s.Add(Shape{Kind: KindSubtitle, Text: &TextFrame{}})
	case LayoutTitleContent:
		s.Add(Shape{Kind: KindTitle, Text: &TextFrame{}})
		s.Add(Shape{Kind: KindBody, Text: &TextFrame{}})
	}
	p.Slides = append(p.Slides, s)
	return s
}
