// Package live keeps a growing text document rendered as new output
// arrives.
package live

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/regexrender/pkg/engine"
	"github.com/Veraticus/regexrender/pkg/interfaces"
	"github.com/Veraticus/regexrender/pkg/logger"
	"github.com/Veraticus/regexrender/pkg/pattern"
	"github.com/Veraticus/regexrender/pkg/style"
)

// terminal control sequences emitted by programs running in a pty
const escapeSpec = `/\x1b(?:\[[0-9;?]*[ -\/]*[@-~]|\][^\x07\x1b]*(?:\x07|\x1b\\)|[@-_])/g`

// Document accumulates output and re-renders the full text through an
// engine whenever a batch of data has arrived.
type Document struct {
	engine  *engine.Engine[string]
	writer  interfaces.FrameWriter
	batcher *Batcher[[]byte]
	escapes pattern.Matcher
	log     *slog.Logger

	mu      sync.Mutex
	buf     bytes.Buffer
	renders int
	err     error
}

// Ensure Document implements DataHandler
var _ interfaces.DataHandler = (*Document)(nil)

// NewDocument creates a document that renders with e and draws to w.
// Updates arriving within window are coalesced into one render.
func NewDocument(e *engine.Engine[string], w interfaces.FrameWriter, window time.Duration) (*Document, error) {
	_, escapes, err := pattern.CompileString(escapeSpec, pattern.DefaultEngine)
	if err != nil {
		return nil, fmt.Errorf("failed to compile escape filter: %w", err)
	}

	d := &Document{
		engine:  e,
		writer:  w,
		escapes: escapes,
		log:     logger.WithComponent("document"),
	}
	d.batcher = NewBatcher(window, d.apply)
	return d, nil
}

// HandleData implements interfaces.DataHandler
func (d *Document) HandleData(data []byte) {
	if len(data) == 0 {
		return
	}
	d.batcher.Add(append([]byte(nil), data...))
}

// Flush renders any output still waiting in the current batch
func (d *Document) Flush() {
	d.batcher.Flush()
}

// SetText replaces the document text and renders it immediately
func (d *Document) SetText(text string) error {
	d.batcher.Flush()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf.Reset()
	d.buf.WriteString(text)
	return d.render()
}

// Text returns the normalized text the engine sees
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text()
}

// Renders returns the number of successful renders
func (d *Document) Renders() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renders
}

// Err returns the error of the most recent render, if it failed
func (d *Document) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// apply appends a batch of output and re-renders
func (d *Document) apply(chunks [][]byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, chunk := range chunks {
		d.buf.Write(chunk)
	}
	if err := d.render(); err != nil {
		d.log.Error("render failed", "error", err)
	}
}

// render evaluates the whole text and draws the frame. Callers hold d.mu.
func (d *Document) render() error {
	text := d.text()
	items, err := d.engine.Evaluate(text)
	if err != nil {
		d.err = err
		return err
	}

	if err := d.writer.WriteFrame(style.Join(items)); err != nil {
		d.err = fmt.Errorf("failed to write frame: %w", err)
		return d.err
	}

	d.err = nil
	d.renders++
	d.log.Debug("rendered", "bytes", len(text), "items", len(items))
	return nil
}

// text normalizes line endings and strips terminal control sequences
func (d *Document) text() string {
	raw := d.buf.Bytes()
	out := make([]byte, 0, len(raw))

	last := 0
	for _, loc := range d.escapes.FindAllStringSubmatchIndex(string(raw), -1) {
		out = appendPlain(out, raw[last:loc[0]])
		last = loc[1]
	}
	out = appendPlain(out, raw[last:])
	return string(out)
}

// appendPlain appends b, turning CRLF into LF and dropping other carriage
// returns
func appendPlain(out, b []byte) []byte {
	for _, c := range b {
		if c == '\r' {
			continue
		}
		out = append(out, c)
	}
	return out
}
