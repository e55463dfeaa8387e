// Package types contains shared data structures used across the application.
package types

import (
	"github.com/Veraticus/regexrender/pkg/pattern"
)

// Kind classifies a resolved segment
type Kind int

const (
	// KindText is a literal span of the input
	KindText Kind = iota
	// KindMatch is a span replaced by a rendered node
	KindMatch
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMatch:
		return "match"
	default:
		return "unknown"
	}
}

// Match represents a single match of one pattern during one scan.
//
// Groups holds one value per capture group. A group that did not take part
// in the match is recorded as "" with Participating[i] set to false, so the
// arity of Captures is stable for a given pattern.
type Match struct {
	Text          string
	Groups        []string
	Participating []bool
	Start         int
	End           int
	Pattern       pattern.ID
	Index         int
}

// Captures returns the full capture tuple: the matched text followed by
// every group value.
func (m Match) Captures() []string {
	out := make([]string, 0, len(m.Groups)+1)
	out = append(out, m.Text)
	return append(out, m.Groups...)
}

// Group returns capture n, where 0 is the whole match. Out of range groups
// return "".
func (m Match) Group(n int) string {
	if n == 0 {
		return m.Text
	}
	if n < 0 || n > len(m.Groups) {
		return ""
	}
	return m.Groups[n-1]
}

// Len returns the byte length of the match
func (m Match) Len() int {
	return m.End - m.Start
}

// Segment is a resolved span of the input text: either literal text or a
// match that will be replaced by a rendered node. Pattern and Index are only
// meaningful for KindMatch.
type Segment struct {
	Kind    Kind
	Text    string
	Start   int
	End     int
	Pattern pattern.ID
	Index   int
}

// IsMatch reports whether the segment is a rendered match
func (s Segment) IsMatch() bool {
	return s.Kind == KindMatch
}
