// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the decktools commands:
// slide text read from a deck, the program records extracted from it, and
// the per-command configuration blocks.
package types

// Country is the grouping key of the fee report. Values are the display
// labels used as document headings.
type Country string

const (
	CountryUS    Country = "美国"
	CountryUK    Country = "英国"
	CountryOther Country = "其他国家"
)

// CountryOrder is the order in which country sections appear in the report.
var CountryOrder = []Country{CountryUS, CountryUK, CountryOther}

// SlideText is the plain text of one slide, in reading order.
type SlideText struct {
	// Index is the 1-based position of the slide in the deck.
	Index int `json:"index" yaml:"index"`

	// Title is the trimmed text of the title placeholder, or empty.
	Title string `json:"title" yaml:"title"`

	// Lines holds non-empty paragraph texts with consecutive duplicates removed.
	Lines []string `json:"lines" yaml:"lines"`
}

// Program is one master's program record extracted from slide text.
type Program struct {
	Name     string `json:"name" yaml:"name"`
	Duration string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Fee      string `json:"fee,omitempty" yaml:"fee,omitempty"`
	Intro    string `json:"intro,omitempty" yaml:"intro,omitempty"`

	// Raw keeps the source lines the record was parsed from.
	Raw []string `json:"raw" yaml:"raw"`
}

// HasDetails reports whether any of duration, fee, or intro was found.
func (p Program) HasDetails() bool {
	return p.Duration != "" || p.Fee != "" || p.Intro != ""
}

// SlideGroup holds the programs extracted from a single slide.
type SlideGroup struct {
	SlideIndex int       `json:"slide_index" yaml:"slide_index"`
	SlideTitle string    `json:"slide_title" yaml:"slide_title"`
	Country    Country   `json:"country" yaml:"country"`
	Programs   []Program `json:"programs" yaml:"programs"`
}

// FeeReport groups slide groups by country. Within a country, groups keep
// the slide order of the source deck.
type FeeReport struct {
	// Source is the path of the deck the report was extracted from.
	Source string `json:"source" yaml:"source"`

	Groups map[Country][]SlideGroup `json:"groups" yaml:"groups"`
}

// Add appends g to its country's groups.
func (r *FeeReport) Add(g SlideGroup) {
	if r.Groups == nil {
		r.Groups = make(map[Country][]SlideGroup)
	}
	r.Groups[g.Country] = append(r.Groups[g.Country], g)
}

// ProgramCount returns the number of programs across all countries.
func (r FeeReport) ProgramCount() int {
	n := 0
	for _, groups := range r.Groups {
		for _, g := range groups {
			n += len(g.Programs)
		}
	}
	return n
}
