package testutil

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/Veraticus/regexrender/pkg/types"
)

func TestMockRenderer(t *testing.T) {
	t.Run("records calls", func(t *testing.T) {
		mock := NewMockRenderer()
		m := types.Match{Text: "*b*", Groups: []string{"b"}, Index: 2}

		n, err := mock.Render("bold", m)
		if err != nil {
			t.Fatalf("Render() error = %v, want nil", err)
		}
		if n.Pattern != "bold" || n.Index != 2 || n.Text != "*b*" {
			t.Errorf("Render() = %v, unexpected node", n)
		}

		n2, _ := mock.Render("bold", m)
		if n == n2 {
			t.Error("Render() returned the same pointer twice")
		}
		if mock.GetCallCount() != 2 || mock.GetCallCountFor("bold") != 2 || mock.GetCallCountFor("italic") != 0 {
			t.Errorf("unexpected call counts: %+v", mock.GetCalls())
		}
	})

	t.Run("render with error", func(t *testing.T) {
		mock := NewMockRenderer()
		mockErr := errors.New("test error")
		mock.SetError(mockErr)

		if _, err := mock.Render("bold", types.Match{}); err != mockErr {
			t.Errorf("Render() error = %v, want %v", err, mockErr)
		}

		mock.Clear()
		if mock.GetCallCount() != 0 {
			t.Errorf("GetCallCount() after Clear = %d, want 0", mock.GetCallCount())
		}
		if _, err := mock.Render("bold", types.Match{}); err != nil {
			t.Errorf("Render() after Clear error = %v, want nil", err)
		}
	})

	t.Run("concurrent access", func(t *testing.T) {
		mock := NewMockRenderer()
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = mock.Render("p", types.Match{})
			}()
		}
		wg.Wait()
		if mock.GetCallCount() != 10 {
			t.Errorf("GetCallCount() = %d, want 10", mock.GetCallCount())
		}
	})
}

func TestMockObserver(t *testing.T) {
	obs := NewMockObserver()
	obs.Evaluated(0, 3)
	obs.Evaluated(2, 1)
	obs.Rendered("bold")
	obs.Reused("bold")
	obs.Reused("bold")
	obs.Evicted("bold", 3)

	if obs.GetEvaluations() != 2 {
		t.Errorf("GetEvaluations() = %d, want 2", obs.GetEvaluations())
	}
	if obs.GetMaxDepth() != 2 {
		t.Errorf("GetMaxDepth() = %d, want 2", obs.GetMaxDepth())
	}
	if obs.GetRendered("bold") != 1 || obs.GetReused("bold") != 2 || obs.GetEvicted("bold") != 3 {
		t.Error("unexpected observer counts")
	}
}

func TestMockPTYManager(t *testing.T) {
	mock := NewMockPTYManager()
	mock.SetOutput("a", "b")

	if err := mock.Start("echo", []string{"hi"}, nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if mock.GetCommand() != "echo hi" {
		t.Errorf("GetCommand() = %q", mock.GetCommand())
	}

	var got []string
	if err := mock.CopyIO(strings.NewReader("input"), func(b []byte) { got = append(got, string(b)) }); err != nil {
		t.Fatalf("CopyIO() error = %v", err)
	}
	if strings.Join(got, ",") != "a,b" {
		t.Errorf("handler got %v, want [a b]", got)
	}
	if mock.GetStdin() != "input" {
		t.Errorf("GetStdin() = %q, want input", mock.GetStdin())
	}

	_ = mock.Wait()
	_ = mock.Close()
	if !mock.IsStarted() || !mock.IsWaited() || !mock.IsClosed() {
		t.Error("expected started, waited and closed")
	}

	startErr := errors.New("start failed")
	mock = NewMockPTYManager()
	mock.SetStartError(startErr)
	if err := mock.Start("x", nil, nil); err != startErr {
		t.Errorf("Start() error = %v, want %v", err, startErr)
	}
}

func TestMockFrameWriter(t *testing.T) {
	w := NewMockFrameWriter()
	if w.GetLastFrame() != "" {
		t.Error("expected empty last frame")
	}

	_ = w.WriteFrame("one")
	_ = w.WriteFrame("two")
	if w.GetFrameCount() != 2 || w.GetLastFrame() != "two" {
		t.Errorf("unexpected frames: %v", w.GetFrames())
	}

	writeErr := errors.New("write failed")
	w.SetError(writeErr)
	if err := w.WriteFrame("three"); err != writeErr {
		t.Errorf("WriteFrame() error = %v, want %v", err, writeErr)
	}
	if w.GetFrameCount() != 2 {
		t.Errorf("failed write was recorded")
	}
}

func TestMockDataHandler(t *testing.T) {
	h := NewMockDataHandler()
	h.HandleData([]byte("ab"))
	h.HandleData([]byte("c"))
	if h.GetData() != "abc" || h.GetCallCount() != 2 {
		t.Errorf("GetData() = %q, calls = %d", h.GetData(), h.GetCallCount())
	}
}
