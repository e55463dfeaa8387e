// Package display draws rendered frames to a terminal or a plain writer.
package display

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Veraticus/regexrender/pkg/interfaces"
)

const (
	// clear the screen and home the cursor
	clearHome = "\033[H\033[2J"
)

// Screen writes frames to w. In redraw mode every new frame replaces the
// screen contents; otherwise frames are held and only the last one is
// written on Close.
type Screen struct {
	mu     sync.Mutex
	writer io.Writer
	redraw bool
	last   string
	drawn  bool
	frames int
	closed bool
}

// Ensure Screen implements FrameWriter
var _ interfaces.FrameWriter = (*Screen)(nil)

// NewScreen creates a new screen
func NewScreen(writer io.Writer, redraw bool) *Screen {
	return &Screen{
		writer: writer,
		redraw: redraw,
	}
}

// WriteFrame implements interfaces.FrameWriter. Identical consecutive frames
// are not redrawn.
func (s *Screen) WriteFrame(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("screen closed")
	}
	if s.drawn && frame == s.last {
		return nil
	}
	s.last = frame
	s.frames++

	if !s.redraw {
		return nil
	}
	s.drawn = true
	_, err := fmt.Fprint(s.writer, clearHome+frame)
	return err
}

// Frames returns how many distinct frames were submitted
func (s *Screen) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Close writes the final frame when not redrawing and terminates the output
// with a newline.
func (s *Screen) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	out := s.last
	if s.redraw {
		out = ""
		if s.drawn && s.last != "" && !strings.HasSuffix(s.last, "\n") {
			out = "\n"
		}
	} else if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if out == "" {
		return nil
	}
	_, err := fmt.Fprint(s.writer, out)
	return err
}
