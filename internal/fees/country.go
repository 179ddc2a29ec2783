// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fees

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/decktools/pkg/types"
)

var (
	usKeywords = []string{"美国", "U.S.", "US", "USA", "U.S.A", "United States", "America"}
	ukKeywords = []string{
		"英国", "UK", "U.K.", "United Kingdom", "Great Britain", "Britain",
		"England", "Scotland", "Wales", "Northern Ireland", "GB",
	}
)

// keyword is a compiled country keyword. ASCII keywords match only where
// they are not flanked by ASCII letters or digits, so "US大学" matches and
// "Focus" does not. Other keywords match as substrings of the folded text.
type keyword struct {
	folded string
	re     *regexp.Regexp
}

func compileKeyword(k string) keyword {
	k = strings.TrimSpace(norm.NFKC.String(k))
	if isASCII(k) {
		return keyword{re: regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9])` + regexp.QuoteMeta(k) + `(?:$|[^A-Za-z0-9])`)}
	}
	return keyword{folded: strings.ToLower(k)}
}

func (k keyword) matches(text, folded string) bool {
	if k.re != nil {
		return k.re.MatchString(text)
	}
	return k.folded != "" && strings.Contains(folded, k.folded)
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// Detector maps free text to a country using keyword lists. US keywords
// take precedence over UK keywords.
type Detector struct {
	us []keyword
	uk []keyword
}

// NewDetector returns a detector with the built-in keywords plus extras.
// Blank extras are ignored.
func NewDetector(extraUS, extraUK []string) *Detector {
	return &Detector{
		us: compileKeywords(usKeywords, extraUS),
		uk: compileKeywords(ukKeywords, extraUK),
	}
}

func compileKeywords(builtin, extra []string) []keyword {
	out := make([]keyword, 0, len(builtin)+len(extra))
	for _, k := range builtin {
		out = append(out, compileKeyword(k))
	}
	for _, k := range extra {
		if strings.TrimSpace(k) != "" {
			out = append(out, compileKeyword(k))
		}
	}
	return out
}

// Detect returns the country named in text, or CountryOther.
func (d *Detector) Detect(text string) types.Country {
	text = norm.NFKC.String(text)
	folded := strings.ToLower(text)
	for _, k := range d.us {
		if k.matches(text, folded) {
			return types.CountryUS
		}
	}
	for _, k := range d.uk {
		if k.matches(text, folded) {
			return types.CountryUK
		}
	}
	return types.CountryOther
}

var defaultDetector = NewDetector(nil, nil)

// DetectCountry classifies text with the built-in keywords.
func DetectCountry(text string) types.Country {
	return defaultDetector.Detect(text)
}
