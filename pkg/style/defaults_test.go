package style

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Veraticus/regexrender/pkg/config"
	"github.com/Veraticus/regexrender/pkg/engine"
	"github.com/Veraticus/regexrender/pkg/pattern"
	"github.com/Veraticus/regexrender/pkg/scan"
)

const demoText = `Here's a [link](https://www.example.com) and some *bold* text with _italic_ text, ~~strikethrough~~ and __underlined__ formatting. Another [link](https://solidjs.com)

Unordered list:
- First item
- Second item
- Third item

Ordered list:
1. First numbered item
2. Second numbered item
3. Third numbered item`

func TestDefaultRules_DemoText(t *testing.T) {
	built, err := Rules(config.DefaultRules(), false)
	if err != nil {
		t.Fatalf("Rules failed: %v", err)
	}
	e, err := engine.New(built, engine.WithCoverageCheck(true))
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	if _, err := e.Evaluate(demoText); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	got := make(map[string][]string)
	for _, rule := range config.DefaultRules() {
		id, ok := e.PatternID(rule.Pattern)
		if !ok {
			t.Fatalf("pattern %s not registered", rule.Pattern)
		}
		got[rule.Name] = []string{}
		for _, seg := range e.Segments() {
			if seg.IsMatch() && seg.Pattern == id {
				got[rule.Name] = append(got[rule.Name], seg.Text)
			}
		}
	}

	want := map[string][]string{
		"ordered-list":   {"1. First numbered item\n2. Second numbered item\n3. Third numbered item"},
		"unordered-list": {"- First item\n- Second item\n- Third item\n"},
		"link":           {"[link](https://www.example.com)", "[link](https://solidjs.com)"},
		"bold":           {"*bold*"},
		"italic":         {"_italic_"},
		"strikethrough":  {"~~strikethrough~~"},
		"underline":      {"__underlined__"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("kept matches mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultRules_ListWithoutTrailingNewline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "unordered", in: "- a\n- b", want: "  • a\n  • b"},
		{name: "ordered", in: "1. a\n2. b\n3. c", want: "  1. a\n  2. b\n  3. c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, config.DefaultRules(), false, tt.in); got != tt.want {
				t.Errorf("render(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// The inline rules must scan identically on either engine. The list-block
// rules are excluded: coregex splits a block whose last line has no newline,
// which is why it is not the default engine.
func TestDefaultRules_EnginesAgreeInline(t *testing.T) {
	texts := []string{
		demoText,
		"*a* _b_ ~~c~~ __d__ [e](f)",
		"__a_b__ _c__ *d**e*",
		"naïve *café* _über_ ~~日本~~",
		"",
	}

	for _, rule := range config.DefaultRules() {
		if len(rule.Rules) > 0 {
			continue
		}
		for _, text := range texts {
			t.Run(rule.Name, func(t *testing.T) {
				var results [][]spanGroup
				for _, eng := range []pattern.Engine{pattern.EngineStdlib, pattern.EngineCoregex} {
					spec, m, err := pattern.CompileString(rule.Pattern, eng)
					if err != nil {
						t.Fatalf("compile %s with %s: %v", rule.Pattern, eng, err)
					}
					var got []spanGroup
					for _, mt := range scan.ScanSpec(spec, m, 0, text) {
						got = append(got, spanGroup{Start: mt.Start, End: mt.End, Groups: mt.Groups})
					}
					results = append(results, got)
				}
				if diff := cmp.Diff(results[0], results[1]); diff != "" {
					t.Errorf("stdlib and coregex disagree on %q (-stdlib +coregex):\n%s", text, diff)
				}
			})
		}
	}
}

type spanGroup struct {
	Start, End int
	Groups     []string
}
