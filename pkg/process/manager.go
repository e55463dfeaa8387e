package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Veraticus/regexrender/pkg/interfaces"
	"github.com/Veraticus/regexrender/pkg/logger"
)

// DefaultDrainTimeout bounds how long Wait keeps reading output after the
// process exited
const DefaultDrainTimeout = 2 * time.Second

// Manager runs a command whose output feeds a DataHandler
type Manager struct {
	ptyManager    PTY
	outputHandler interfaces.DataHandler
	stdin         io.Reader
	drainTimeout  time.Duration
	log           *slog.Logger

	exitCode int
	mu       sync.Mutex
	sigChan  chan os.Signal
	done     chan struct{}
	copied   chan struct{}
}

// Ensure Manager implements ProcessWrapper
var _ interfaces.ProcessWrapper = (*Manager)(nil)

// NewManager creates a new process manager. stdin, when not nil, is
// forwarded to the process.
func NewManager(outputHandler interfaces.DataHandler, stdin io.Reader) *Manager {
	return &Manager{
		ptyManager:    NewPTYManager(),
		outputHandler: outputHandler,
		stdin:         stdin,
		drainTimeout:  DefaultDrainTimeout,
		log:           logger.WithComponent("process"),
		done:          make(chan struct{}),
	}
}

// Start starts the process
func (m *Manager) Start(command string, args []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ptyManager.Start(command, args, os.Environ()); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}
	m.log.Debug("process started", "command", command, "args", args)

	m.copied = make(chan struct{})
	go func() {
		defer close(m.copied)
		var handler func([]byte)
		if m.outputHandler != nil {
			handler = m.outputHandler.HandleData
		}
		if err := m.ptyManager.CopyIO(m.stdin, handler); err != nil {
			m.log.Error("I/O error", "error", err)
		}
	}()

	m.setupSignalForwarding()

	return nil
}

// Wait waits for the process to exit and its output to drain. A non-zero
// exit status is reported through ExitCode, not as an error.
func (m *Manager) Wait() error {
	if m.ptyManager == nil {
		return fmt.Errorf("process not started")
	}

	err := m.ptyManager.Wait()

	m.mu.Lock()
	copied := m.copied
	m.mu.Unlock()
	if copied != nil {
		select {
		case <-copied:
		case <-time.After(m.drainTimeout):
			m.log.Warn("output still open after process exit", "timeout", m.drainTimeout)
		}
	}
	_ = m.ptyManager.Close()

	m.mu.Lock()
	if state := m.ptyManager.ProcessState(); state != nil {
		m.exitCode = state.ExitCode()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		m.exitCode = exitErr.ExitCode()
		err = nil
	}
	m.mu.Unlock()

	close(m.done)
	m.cleanupSignals()

	return err
}

// ExitCode returns the exit code of the process
func (m *Manager) ExitCode() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exitCode
}

// setupSignalForwarding sets up signal forwarding to the child process
func (m *Manager) setupSignalForwarding() {
	m.sigChan = make(chan os.Signal, 1)
	signal.Notify(m.sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGQUIT,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
	)

	go m.forwardSignals(m.sigChan)
}

// forwardSignals forwards signals to the child process
func (m *Manager) forwardSignals(sigChan <-chan os.Signal) {
	for {
		select {
		case sig, ok := <-sigChan:
			if !ok {
				return
			}
			if proc := m.ptyManager.Process(); proc != nil {
				if err := proc.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
					m.log.Warn("signal forward error", "signal", sig, "error", err)
				}
			}
		case <-m.done:
			return
		}
	}
}

// cleanupSignals stops signal forwarding
func (m *Manager) cleanupSignals() {
	if m.sigChan != nil {
		signal.Stop(m.sigChan)
	}
}

// Stop terminates the process
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ptyManager == nil {
		return nil
	}
	proc := m.ptyManager.Process()
	if proc == nil {
		return nil
	}

	// SIGTERM first, then force kill
	if err := proc.Signal(syscall.SIGTERM); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return proc.Kill()
	}
	return nil
}
