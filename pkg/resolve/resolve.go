// Package resolve merges the matches of independent patterns into a single
// ordered list of non-overlapping segments covering the whole text.
package resolve

import (
	"fmt"
	"sort"

	"github.com/Veraticus/regexrender/pkg/types"
)

// Resolve orders matches and removes overlaps, then fills the gaps with
// literal text segments.
//
// Matches are sorted by start position; among matches sharing a start, the
// one ending last comes first. A match whose start falls inside the last
// kept match is dropped entirely, even if it extends past that match's end.
func Resolve(text string, matches []types.Match) []types.Segment {
	kept := fixMatches(matches)

	var segments []types.Segment
	lastTo := 0
	for _, m := range kept {
		if m.Start > lastTo {
			// Text between matches or before the first match.
			segments = append(segments, textSegment(text, lastTo, m.Start))
		}
		segments = append(segments, types.Segment{
			Kind:    types.KindMatch,
			Text:    m.Text,
			Start:   m.Start,
			End:     m.End,
			Pattern: m.Pattern,
			Index:   m.Index,
		})
		lastTo = m.End
	}
	if len(text) > lastTo {
		// Text after the last match.
		segments = append(segments, textSegment(text, lastTo, len(text)))
	}
	return segments
}

func fixMatches(matches []types.Match) []types.Match {
	matches = append([]types.Match(nil), matches...)
	// Sort by start position, longer first on ties. Pattern and index only
	// keep the order deterministic for identical spans.
	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End > b.End
		}
		if a.Pattern != b.Pattern {
			return a.Pattern < b.Pattern
		}
		return a.Index < b.Index
	})

	var kept []types.Match
	lastTo := 0
	for _, m := range matches {
		if m.Start < lastTo {
			// Starts inside the last kept match
			continue
		}
		kept = append(kept, m)
		lastTo = m.End
	}
	return kept
}

func textSegment(text string, from, to int) types.Segment {
	return types.Segment{
		Kind:  types.KindText,
		Text:  text[from:to],
		Start: from,
		End:   to,
	}
}

// Kept returns the match segments of a resolved list, in order
func Kept(segments []types.Segment) []types.Segment {
	var out []types.Segment
	for _, s := range segments {
		if s.IsMatch() {
			out = append(out, s)
		}
	}
	return out
}

// CheckCoverage verifies that segments are contiguous, non-overlapping and
// exactly cover text.
func CheckCoverage(text string, segments []types.Segment) error {
	pos := 0
	for i, s := range segments {
		if s.Start != pos {
			return fmt.Errorf("segment %d starts at %d, expected %d", i, s.Start, pos)
		}
		if s.End < s.Start || s.End > len(text) {
			return fmt.Errorf("segment %d has invalid span [%d,%d)", i, s.Start, s.End)
		}
		if s.Text != text[s.Start:s.End] {
			return fmt.Errorf("segment %d text %q does not match span [%d,%d)", i, s.Text, s.Start, s.End)
		}
		pos = s.End
	}
	if pos != len(text) {
		return fmt.Errorf("segments end at %d, text length is %d", pos, len(text))
	}
	return nil
}
