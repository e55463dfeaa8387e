package live

import (
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/regexrender/pkg/config"
	"github.com/Veraticus/regexrender/pkg/engine"
	"github.com/Veraticus/regexrender/pkg/style"
	"github.com/Veraticus/regexrender/pkg/testutil"
	"github.com/Veraticus/regexrender/pkg/types"
)

func newTestDocument(t *testing.T, w *testutil.MockFrameWriter, window time.Duration, opts ...engine.Option) *Document {
	t.Helper()
	rules, err := style.Rules(config.DefaultRules(), true)
	if err != nil {
		t.Fatalf("failed to build rules: %v", err)
	}
	e, err := engine.New(rules, opts...)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	d, err := NewDocument(e, w, window)
	if err != nil {
		t.Fatalf("failed to create document: %v", err)
	}
	return d
}

func TestDocument_HandleData(t *testing.T) {
	w := testutil.NewMockFrameWriter()
	d := newTestDocument(t, w, 0)

	d.HandleData([]byte("a *b"))
	d.HandleData([]byte("* c"))

	if d.Renders() != 2 {
		t.Errorf("Renders() = %d, want 2", d.Renders())
	}
	frames := w.GetFrames()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0] != "a *b" {
		t.Errorf("first frame = %q, want %q", frames[0], "a *b")
	}
	if want := "a \033[1m*b*\033[0m c"; frames[1] != want {
		t.Errorf("second frame = %q, want %q", frames[1], want)
	}
}

func TestDocument_Batched(t *testing.T) {
	w := testutil.NewMockFrameWriter()
	d := newTestDocument(t, w, time.Hour)

	for _, chunk := range []string{"- a\n", "- b\n", "- c\n"} {
		d.HandleData([]byte(chunk))
	}
	if w.GetFrameCount() != 0 {
		t.Fatalf("rendered before the batch closed")
	}

	d.Flush()
	if w.GetFrameCount() != 1 {
		t.Fatalf("got %d frames, want 1", w.GetFrameCount())
	}
	if want := "  • a\n  • b\n  • c\n"; w.GetLastFrame() != want {
		t.Errorf("frame = %q, want %q", w.GetLastFrame(), want)
	}
}

func TestDocument_Text(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "crlf", in: "- a\r\n- b\r\n", want: "- a\n- b\n"},
		{name: "color codes", in: "\033[32m*ok*\033[0m done", want: "*ok* done"},
		{name: "title sequence", in: "\033]0;title\007text", want: "text"},
		{name: "cursor movement", in: "ab\033[2Kc\033[?25l", want: "abc"},
		{name: "plain", in: "plain text", want: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDocument(t, testutil.NewMockFrameWriter(), 0)
			d.HandleData([]byte(tt.in))
			if got := d.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDocument_SetText(t *testing.T) {
	w := testutil.NewMockFrameWriter()
	d := newTestDocument(t, w, time.Hour)

	d.HandleData([]byte("pending"))
	if err := d.SetText("1. one\n2. two"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}

	// The pending batch is rendered first, then replaced
	frames := w.GetFrames()
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if want := "  1. one\n  2. two"; frames[1] != want {
		t.Errorf("frame = %q, want %q", frames[1], want)
	}
}

func TestDocument_ReusesNodes(t *testing.T) {
	obs := testutil.NewMockObserver()
	d := newTestDocument(t, testutil.NewMockFrameWriter(), 0, engine.WithObserver(obs))

	d.HandleData([]byte("*a* "))
	d.HandleData([]byte("*b* "))
	d.HandleData([]byte("*c*"))

	// Each chunk renders only the bold span it introduced
	if got := obs.GetRendered("bold"); got != 3 {
		t.Errorf("bold rendered %d times, want 3", got)
	}
	if got := obs.GetReused("bold"); got != 3 {
		t.Errorf("bold reused %d times, want 3", got)
	}
}

func TestDocument_Errors(t *testing.T) {
	t.Run("renderer error", func(t *testing.T) {
		renderErr := errors.New("boom")
		e, err := engine.New([]engine.Rule[string]{{
			Spec: "/x/",
			Render: func(types.Match, *engine.Nest[string]) (string, error) {
				return "", renderErr
			},
		}})
		if err != nil {
			t.Fatalf("failed to create engine: %v", err)
		}
		w := testutil.NewMockFrameWriter()
		d, err := NewDocument(e, w, 0)
		if err != nil {
			t.Fatalf("failed to create document: %v", err)
		}

		if err := d.SetText("x"); !errors.Is(err, renderErr) {
			t.Errorf("SetText error = %v, want %v", err, renderErr)
		}
		if !errors.Is(d.Err(), renderErr) {
			t.Errorf("Err() = %v, want %v", d.Err(), renderErr)
		}
		if w.GetFrameCount() != 0 {
			t.Error("frame written after a failed evaluation")
		}
	})

	t.Run("writer error", func(t *testing.T) {
		w := testutil.NewMockFrameWriter()
		writeErr := errors.New("closed")
		w.SetError(writeErr)
		d := newTestDocument(t, w, 0)

		if err := d.SetText("text"); !errors.Is(err, writeErr) {
			t.Errorf("SetText error = %v, want %v", err, writeErr)
		}
		if d.Renders() != 0 {
			t.Errorf("Renders() = %d, want 0", d.Renders())
		}
	})
}
