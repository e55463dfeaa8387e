package pattern

import (
	"fmt"
	"regexp"

	"github.com/coregx/coregex"
)

// Engine names a matcher implementation
type Engine string

const (
	// EngineCoregex compiles with github.com/coregx/coregex
	EngineCoregex Engine = "coregex"
	// EngineStdlib compiles with the standard library regexp package
	EngineStdlib Engine = "stdlib"
)

// DefaultEngine is used when no engine is configured. coregex is opt-in:
// it can split a multiline repetition ending in `$` at end of input.
const DefaultEngine = EngineStdlib

// ParseEngine validates an engine name. The empty string selects the default.
func ParseEngine(name string) (Engine, error) {
	switch Engine(name) {
	case "":
		return DefaultEngine, nil
	case EngineCoregex, EngineStdlib:
		return Engine(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}

// Matcher is the subset of a compiled regular expression the scanner needs.
// Both *regexp.Regexp and *coregex.Regex satisfy it.
type Matcher interface {
	FindAllStringSubmatchIndex(s string, n int) [][]int
	NumSubexp() int
	String() string
}

var (
	_ Matcher = (*regexp.Regexp)(nil)
	_ Matcher = (*coregex.Regex)(nil)
)

// Compile builds a matcher for spec with the given engine
func Compile(spec Spec, engine Engine) (Matcher, error) {
	expr := spec.Expr()

	var (
		m   Matcher
		err error
	)
	switch engine {
	case EngineStdlib, "":
		m, err = regexp.Compile(expr)
	case EngineCoregex:
		m, err = coregex.Compile(expr)
	default:
		return nil, &SpecError{Spec: spec.Raw, Err: fmt.Errorf("%w: %q", ErrUnknownEngine, engine)}
	}
	if err != nil {
		return nil, &SpecError{Spec: spec.Raw, Err: fmt.Errorf("%w: %v", ErrInvalidPattern, err)}
	}
	return m, nil
}

// CompileString parses and compiles a raw specification
func CompileString(raw string, engine Engine) (Spec, Matcher, error) {
	spec, err := ParseSpec(raw)
	if err != nil {
		return Spec{}, nil, err
	}
	m, err := Compile(spec, engine)
	if err != nil {
		return Spec{}, nil, err
	}
	return spec, m, nil
}
