// Package pattern parses slash-delimited pattern specifications and compiles
// them into matchers.
//
// A specification looks like `/body/flags`, where body is a regular
// expression and flags is a run of mode letters. Matching is always global
// and multi-line; the remaining letters map onto inline flags of the
// underlying engine.
package pattern

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidPattern is returned when the expression body does not compile
	ErrInvalidPattern = errors.New("invalid pattern")
	// ErrInvalidFlag is returned for unknown or repeated mode letters
	ErrInvalidFlag = errors.New("invalid flag")
	// ErrUnknownEngine is returned when no matcher engine has the given name
	ErrUnknownEngine = errors.New("unknown engine")
)

// SpecError records a specification that could not be parsed or compiled
type SpecError struct {
	Spec string
	Err  error
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Spec, e.Err)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

// Flags holds the mode letters of a specification
type Flags struct {
	Global          bool
	Multiline       bool
	CaseInsensitive bool
	DotAll          bool
	Unicode         bool
	Sticky          bool
	Indices         bool
}

// String returns the flags in canonical letter order
func (f Flags) String() string {
	var b strings.Builder
	if f.Indices {
		b.WriteByte('d')
	}
	if f.Global {
		b.WriteByte('g')
	}
	if f.CaseInsensitive {
		b.WriteByte('i')
	}
	if f.Multiline {
		b.WriteByte('m')
	}
	if f.DotAll {
		b.WriteByte('s')
	}
	if f.Unicode {
		b.WriteByte('u')
	}
	if f.Sticky {
		b.WriteByte('y')
	}
	return b.String()
}

// Spec is a parsed pattern specification. Raw is its identity.
type Spec struct {
	Raw   string
	Body  string
	Flags Flags
}

// ParseSpec splits a raw specification into body and flags.
//
// A string that does not start with '/' or has no closing '/' is taken as a
// bare expression body with no flags.
func ParseSpec(raw string) (Spec, error) {
	spec := Spec{Raw: raw, Body: raw}

	if len(raw) < 2 || raw[0] != '/' {
		return spec, nil
	}
	end := strings.LastIndexByte(raw, '/')
	if end == 0 {
		return spec, nil
	}

	flags, err := parseFlags(raw[end+1:])
	if err != nil {
		return Spec{}, &SpecError{Spec: raw, Err: err}
	}
	spec.Body = raw[1:end]
	spec.Flags = flags
	return spec, nil
}

// parseFlags parses the trailing mode letters
func parseFlags(letters string) (Flags, error) {
	var f Flags
	seen := make(map[rune]bool, len(letters))
	for _, r := range letters {
		if seen[r] {
			return Flags{}, fmt.Errorf("%w: %q repeated", ErrInvalidFlag, r)
		}
		seen[r] = true

		switch r {
		case 'g':
			f.Global = true
		case 'm':
			f.Multiline = true
		case 'i':
			f.CaseInsensitive = true
		case 's':
			f.DotAll = true
		case 'u':
			f.Unicode = true
		case 'y':
			f.Sticky = true
		case 'd':
			f.Indices = true
		default:
			return Flags{}, fmt.Errorf("%w: %q", ErrInvalidFlag, r)
		}
	}
	return f, nil
}

// Expr returns the expression handed to the engine. Multi-line mode is
// always on; i and s become inline flags.
func (s Spec) Expr() string {
	prefix := "(?m"
	if s.Flags.CaseInsensitive {
		prefix += "i"
	}
	if s.Flags.DotAll {
		prefix += "s"
	}
	return prefix + ")" + s.Body
}
