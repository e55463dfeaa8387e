// Package style turns configured rules into string renderers that decorate
// matches with ANSI SGR sequences.
package style

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/regexrender/pkg/config"
	"github.com/Veraticus/regexrender/pkg/engine"
	"github.com/Veraticus/regexrender/pkg/types"
)

// ErrUnknownStyle is returned for a style name with no SGR code
var ErrUnknownStyle = errors.New("unknown style")

const reset = "\033[0m"

var codes = map[string]string{
	"bold":          "1",
	"dim":           "2",
	"italic":        "3",
	"underline":     "4",
	"reverse":       "7",
	"strikethrough": "9",
	"black":         "30",
	"red":           "31",
	"green":         "32",
	"yellow":        "33",
	"blue":          "34",
	"magenta":       "35",
	"cyan":          "36",
	"white":         "37",
	"gray":          "90",
}

// Style is a parsed list of SGR attributes
type Style struct {
	open string
}

// Parse builds a style from attribute names such as "bold" or "cyan"
func Parse(names []string) (Style, error) {
	if len(names) == 0 {
		return Style{}, nil
	}
	params := make([]string, 0, len(names))
	for _, name := range names {
		code, ok := codes[strings.ToLower(name)]
		if !ok {
			return Style{}, fmt.Errorf("%w: %q", ErrUnknownStyle, name)
		}
		params = append(params, code)
	}
	return Style{open: "\033[" + strings.Join(params, ";") + "m"}, nil
}

// IsZero reports whether the style has no attributes
func (s Style) IsZero() bool {
	return s.open == ""
}

// Apply wraps text in the style. Resets already inside text re-open the
// style so nested styled output keeps the outer attributes.
func (s Style) Apply(text string) string {
	if s.IsZero() || text == "" {
		return text
	}
	text = strings.ReplaceAll(text, reset, reset+s.open)
	return s.open + text + reset
}

// Rules builds engine rules from configured rules. Disabled rules are
// skipped. With color off, styles are validated but not applied.
func Rules(rules []config.Rule, color bool) ([]engine.Rule[string], error) {
	out := make([]engine.Rule[string], 0, len(rules))
	for _, r := range rules {
		if !r.IsEnabled() {
			continue
		}
		rule, err := build(r, color)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, nil
}

func build(r config.Rule, color bool) (engine.Rule[string], error) {
	st, err := Parse(r.Style)
	if err != nil {
		return engine.Rule[string]{}, fmt.Errorf("rule %q: %w", r.Label(), err)
	}
	if !color {
		st = Style{}
	}

	children, err := Rules(r.Rules, color)
	if err != nil {
		return engine.Rule[string]{}, fmt.Errorf("rule %q: %w", r.Label(), err)
	}

	group, prefix, suffix := r.Group, r.Prefix, r.Suffix
	render := func(m types.Match, nest *engine.Nest[string]) (string, error) {
		text := m.Group(group)
		if len(children) > 0 {
			items, err := nest.EvalWith(children, text)
			if err != nil {
				return "", err
			}
			text = Join(items)
		}
		return st.Apply(prefix + text + suffix), nil
	}

	return engine.Rule[string]{
		Name:   r.Label(),
		Spec:   r.Pattern,
		Render: render,
	}, nil
}

// Join concatenates an evaluation result into a single string
func Join(items []engine.Item[string]) string {
	var b strings.Builder
	for _, it := range items {
		if it.IsNode() {
			b.WriteString(it.Node)
		} else {
			b.WriteString(it.Text())
		}
	}
	return b.String()
}
