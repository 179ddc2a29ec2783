// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fees

import (
	"regexp"
	"strings"

	"github.com/pdiddy/decktools/pkg/types"
)

// ws matches ASCII and Unicode space separators, including the ideographic
// space used in CJK slides.
const ws = `[\s\p{Zs}]`

// Alternatives are ordered longest first so that "Tuition Fee: X" yields
// "X" rather than "Fee: X".
var fieldPatterns = []struct {
	re    *regexp.Regexp
	field func(*types.Program) *string
}{
	{
		re:    regexp.MustCompile(`(?i)^` + ws + `*(?:项目名称|Program Name|Programme|Project|项目)[:：]` + ws + `*(.*)$`),
		field: func(p *types.Program) *string { return &p.Name },
	},
	{
		re:    regexp.MustCompile(`(?i)^` + ws + `*(?:学制|Duration|Length of Study|Program Length|Length)[:：]?` + ws + `*(.*)$`),
		field: func(p *types.Program) *string { return &p.Duration },
	},
	{
		re:    regexp.MustCompile(`(?i)^` + ws + `*(?:学费|费用|Tuition Fees|Tuition Fee|Tuition|Fee)[:：]?` + ws + `*(.*)$`),
		field: func(p *types.Program) *string { return &p.Fee },
	},
	{
		re:    regexp.MustCompile(`(?i)^` + ws + `*(?:项目介绍|简介|Program Overview|Overview|Description|About)[:：]?` + ws + `*(.*)$`),
		field: func(p *types.Program) *string { return &p.Intro },
	},
}

var (
	// entryStart marks the first line of a new program: a bullet, or a
	// program-name label.
	entryStart = regexp.MustCompile(`^` + ws + `*[•·\-—–]` + ws + `+|^` + ws + `*(?:项目名称|Program Name|Programme|项目)[:：]` + ws + `*\S`)

	feeMention      = regexp.MustCompile(`(?i)学费|费用|Tuition|Fee`)
	durationMention = regexp.MustCompile(`(?i)学制|Duration|Length`)
)

const (
	// Splits yielding at least fragmentEntries entries averaging fewer
	// than fragmentLines lines are treated as one entry.
	fragmentEntries = 6
	fragmentLines   = 3

	maxIntroLines = 6
)

// SplitEntries splits slide lines into per-program blocks. A block starts
// at a bullet or program-name line. When the split fragments the slide
// into many tiny blocks, the whole slide is returned as one block.
func SplitEntries(lines []string) [][]string {
	var (
		entries [][]string
		cur     []string
	)
	for _, line := range lines {
		if entryStart.MatchString(line) && len(cur) > 0 {
			entries = append(entries, cur)
			cur = []string{line}
			continue
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		entries = append(entries, cur)
	}

	if len(entries) >= fragmentEntries {
		total := 0
		for _, e := range entries {
			total += len(e)
		}
		if float64(total)/float64(len(entries)) < fragmentLines {
			return [][]string{lines}
		}
	}
	return entries
}

// ParseEntry extracts a program record from one block of lines.
//
// Each line fills the first labelled field it matches that is still empty.
// Lines that fill nothing are kept as remaining text: the first non-blank
// one names the program when no name label was found, and up to six that
// do not mention fees or duration form the intro when no intro label was
// found.
func ParseEntry(lines []string) types.Program {
	p := types.Program{Raw: append([]string{}, lines...)}

	var remaining []string
	for _, line := range lines {
		if !assignField(&p, line) {
			remaining = append(remaining, line)
		}
	}

	if p.Name == "" {
		for _, l := range remaining {
			if strings.TrimSpace(l) != "" {
				p.Name = l
				break
			}
		}
	}

	if p.Intro == "" {
		var candidates []string
		for _, l := range remaining {
			if feeMention.MatchString(l) || durationMention.MatchString(l) {
				continue
			}
			candidates = append(candidates, l)
		}
		if len(candidates) > 0 && p.Name != "" && strings.TrimSpace(candidates[0]) == strings.TrimSpace(p.Name) {
			candidates = candidates[1:]
		}
		if len(candidates) > maxIntroLines {
			candidates = candidates[:maxIntroLines]
		}
		p.Intro = strings.TrimSpace(strings.Join(candidates, "\n"))
	}

	return p
}

// assignField stores the labelled value of line in the first matching
// empty field. It reports whether a field took the line.
func assignField(p *types.Program, line string) bool {
	for _, fp := range fieldPatterns {
		m := fp.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		dst := fp.field(p)
		if *dst == "" {
			*dst = strings.TrimSpace(m[1])
			return true
		}
	}
	return false
}
