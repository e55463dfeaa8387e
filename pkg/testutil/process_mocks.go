package testutil

import (
	"io"
	"os"
	"strings"
	"sync"
)

// MockPTYManager is a mock implementation of process.PTY for testing
type MockPTYManager struct {
	mu       sync.Mutex
	started  bool
	waited   bool
	closed   bool
	command  string
	args     []string
	output   []string
	stdin    string
	startErr error
	waitErr  error
	copyErr  error
	process  *os.Process
}

// NewMockPTYManager creates a new mock PTY manager
func NewMockPTYManager() *MockPTYManager {
	return &MockPTYManager{}
}

// Start implements the PTY interface
func (m *MockPTYManager) Start(command string, args []string, env []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.startErr != nil {
		return m.startErr
	}

	m.started = true
	m.command = command
	m.args = append([]string(nil), args...)
	return nil
}

// Wait implements the PTY interface
func (m *MockPTYManager) Wait() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.waited = true
	return m.waitErr
}

// Close implements the PTY interface
func (m *MockPTYManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}

// ProcessState implements the PTY interface
func (m *MockPTYManager) ProcessState() *os.ProcessState {
	return nil
}

// Process implements the PTY interface
func (m *MockPTYManager) Process() *os.Process {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.process
}

// GetPTY implements the PTY interface
func (m *MockPTYManager) GetPTY() *os.File {
	return nil
}

// CopyIO implements the PTY interface. It reads all of stdin, then passes
// each configured output chunk to handler.
func (m *MockPTYManager) CopyIO(stdin io.Reader, handler func([]byte)) error {
	if stdin != nil {
		data, _ := io.ReadAll(stdin)
		m.mu.Lock()
		m.stdin = string(data)
		m.mu.Unlock()
	}

	m.mu.Lock()
	output := append([]string(nil), m.output...)
	err := m.copyErr
	m.mu.Unlock()

	if handler != nil {
		for _, chunk := range output {
			handler([]byte(chunk))
		}
	}
	return err
}

// SetOutput sets the chunks CopyIO hands to its handler
func (m *MockPTYManager) SetOutput(chunks ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.output = chunks
}

// SetStartError sets the error to return from Start
func (m *MockPTYManager) SetStartError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startErr = err
}

// SetWaitError sets the error to return from Wait
func (m *MockPTYManager) SetWaitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitErr = err
}

// SetCopyError sets the error to return from CopyIO
func (m *MockPTYManager) SetCopyError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.copyErr = err
}

// SetProcess sets the process returned by Process
func (m *MockPTYManager) SetProcess(p *os.Process) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.process = p
}

// IsStarted returns whether Start was called
func (m *MockPTYManager) IsStarted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// IsWaited returns whether Wait was called
func (m *MockPTYManager) IsWaited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.waited
}

// IsClosed returns whether Close was called
func (m *MockPTYManager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetCommand returns the command line passed to Start
func (m *MockPTYManager) GetCommand() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.TrimSpace(m.command + " " + strings.Join(m.args, " "))
}

// GetStdin returns what CopyIO read from stdin
func (m *MockPTYManager) GetStdin() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stdin
}

// MockDataHandler is a mock implementation of interfaces.DataHandler for testing
type MockDataHandler struct {
	mu   sync.Mutex
	data []byte
	hits int
}

// NewMockDataHandler creates a new mock data handler
func NewMockDataHandler() *MockDataHandler {
	return &MockDataHandler{}
}

// HandleData implements the DataHandler interface
func (m *MockDataHandler) HandleData(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data, data...)
	m.hits++
}

// GetData returns everything handled so far
func (m *MockDataHandler) GetData() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data)
}

// GetCallCount returns how many times HandleData was called
func (m *MockDataHandler) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits
}

// MockFrameWriter is a mock implementation of interfaces.FrameWriter for testing
type MockFrameWriter struct {
	mu     sync.Mutex
	frames []string
	err    error
}

// NewMockFrameWriter creates a new mock frame writer
func NewMockFrameWriter() *MockFrameWriter {
	return &MockFrameWriter{}
}

// WriteFrame implements the FrameWriter interface
func (m *MockFrameWriter) WriteFrame(frame string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.frames = append(m.frames, frame)
	return nil
}

// SetError sets the error to return from WriteFrame
func (m *MockFrameWriter) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetFrames returns every frame written
func (m *MockFrameWriter) GetFrames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]string, len(m.frames))
	copy(result, m.frames)
	return result
}

// GetLastFrame returns the most recent frame, or "" if none was written
func (m *MockFrameWriter) GetLastFrame() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return ""
	}
	return m.frames[len(m.frames)-1]
}

// GetFrameCount returns how many frames were written
func (m *MockFrameWriter) GetFrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}
