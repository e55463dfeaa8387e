// Package scan finds every match of a single pattern in a text.
package scan

import (
	"unicode/utf8"

	"github.com/Veraticus/regexrender/pkg/pattern"
	"github.com/Veraticus/regexrender/pkg/types"
)

// Scan returns all non-overlapping, leftmost-first matches of m in text, in
// the order they appear. Each match carries its capture groups and its
// sequential index among this pattern's matches.
//
// Zero-length matches advance the search by one character; an empty match
// at the start or end of the previous match is not reported. Matches that
// begin or end inside a multi-byte rune are dropped. Both rules hold whatever
// the engine reports.
func Scan(m pattern.Matcher, id pattern.ID, text string) []types.Match {
	locs := m.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	groups := m.NumSubexp()
	results := make([]types.Match, 0, len(locs))
	prevStart, prevEnd := -1, -1
	for _, loc := range locs {
		if len(loc) < 2 || loc[0] < 0 || loc[1] < loc[0] || loc[1] > len(text) {
			continue
		}
		if !runeBoundary(text, loc[0]) || !runeBoundary(text, loc[1]) {
			continue
		}
		if loc[0] == loc[1] && (loc[0] == prevStart || loc[0] == prevEnd) {
			continue
		}
		prevStart, prevEnd = loc[0], loc[1]
		results = append(results, newMatch(text, loc, groups, id, len(results)))
	}
	return results
}

// runeBoundary reports whether offset i does not fall inside a UTF-8 sequence
func runeBoundary(text string, i int) bool {
	return i >= len(text) || utf8.RuneStart(text[i])
}

// ScanSpec scans like Scan and applies the spec's mode letters that the
// engine does not handle itself.
func ScanSpec(spec pattern.Spec, m pattern.Matcher, id pattern.ID, text string) []types.Match {
	matches := Scan(m, id, text)
	if spec.Flags.Sticky {
		matches = Sticky(matches)
	}
	return matches
}

// Sticky keeps the leading run of matches that chain without gaps from
// offset 0.
func Sticky(matches []types.Match) []types.Match {
	next := 0
	for i, m := range matches {
		if m.Start != next {
			return matches[:i]
		}
		next = m.End
	}
	return matches
}

// newMatch builds a match from a submatch index slice
func newMatch(text string, loc []int, groups int, id pattern.ID, index int) types.Match {
	m := types.Match{
		Text:          text[loc[0]:loc[1]],
		Groups:        make([]string, groups),
		Participating: make([]bool, groups),
		Start:         loc[0],
		End:           loc[1],
		Pattern:       id,
		Index:         index,
	}
	for g := 0; g < groups; g++ {
		lo, hi := 2*(g+1), 2*(g+1)+1
		if hi >= len(loc) || loc[lo] < 0 {
			continue
		}
		m.Groups[g] = text[loc[lo]:loc[hi]]
		m.Participating[g] = true
	}
	return m
}
