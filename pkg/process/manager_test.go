package process

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/Veraticus/regexrender/pkg/logger"
	"github.com/Veraticus/regexrender/pkg/testutil"
)

var _ PTY = (*testutil.MockPTYManager)(nil)

func newTestManager(pty PTY, handler *testutil.MockDataHandler) *Manager {
	m := &Manager{
		ptyManager:   pty,
		drainTimeout: time.Second,
		log:          logger.Discard(),
		done:         make(chan struct{}),
	}
	if handler != nil {
		m.outputHandler = handler
	}
	return m
}

func TestManager_Start(t *testing.T) {
	tests := []struct {
		name       string
		startError error
		wantError  bool
		errorMsg   string
	}{
		{
			name: "successful start",
		},
		{
			name:       "start error",
			startError: errors.New("start failed"),
			wantError:  true,
			errorMsg:   "failed to start process",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPTY := testutil.NewMockPTYManager()
			mockPTY.SetStartError(tt.startError)
			manager := newTestManager(mockPTY, nil)

			err := manager.Start("test", []string{"arg1"})

			if tt.wantError {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q but got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !mockPTY.IsStarted() {
				t.Error("PTY manager was not started")
			}
			if mockPTY.GetCommand() != "test arg1" {
				t.Errorf("started %q, want %q", mockPTY.GetCommand(), "test arg1")
			}
			_ = manager.Wait()
		})
	}
}

func TestManager_OutputReachesHandler(t *testing.T) {
	mockPTY := testutil.NewMockPTYManager()
	mockPTY.SetOutput("- a\r\n", "- b\r\n")
	handler := testutil.NewMockDataHandler()
	manager := newTestManager(mockPTY, handler)
	manager.stdin = strings.NewReader("typed")

	if err := manager.Start("list", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := manager.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Wait drains the output before returning
	if got := handler.GetData(); got != "- a\r\n- b\r\n" {
		t.Errorf("handler got %q", got)
	}
	if handler.GetCallCount() != 2 {
		t.Errorf("handler called %d times, want 2", handler.GetCallCount())
	}
	if mockPTY.GetStdin() != "typed" {
		t.Errorf("stdin forwarded %q, want %q", mockPTY.GetStdin(), "typed")
	}
	if !mockPTY.IsClosed() {
		t.Error("PTY was not closed after Wait")
	}
}

func TestManager_Wait(t *testing.T) {
	tests := []struct {
		name       string
		ptyManager *testutil.MockPTYManager
		waitError  error
		wantError  bool
	}{
		{
			name:       "successful wait",
			ptyManager: testutil.NewMockPTYManager(),
		},
		{
			name:       "wait with error",
			ptyManager: testutil.NewMockPTYManager(),
			waitError:  errors.New("wait failed"),
			wantError:  true,
		},
		{
			name:      "process not started",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager := newTestManager(nil, nil)

			// Only set ptyManager if not nil to avoid typed nil interface issue
			if tt.ptyManager != nil {
				tt.ptyManager.SetWaitError(tt.waitError)
				manager.ptyManager = tt.ptyManager
			}

			err := manager.Wait()

			if tt.wantError {
				if err == nil {
					t.Errorf("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ptyManager.IsWaited() {
				t.Error("PTY manager Wait was not called")
			}
			if manager.ExitCode() != 0 {
				t.Errorf("expected exit code 0 but got %d", manager.ExitCode())
			}
		})
	}
}

func TestManager_SignalForwarding(t *testing.T) {
	mockPTY := testutil.NewMockPTYManager()
	// Signal 0 only checks that the process exists
	mockPTY.SetProcess(&os.Process{Pid: os.Getpid()})

	manager := newTestManager(mockPTY, nil)
	sigChan := make(chan os.Signal, 1)

	exited := make(chan struct{})
	go func() {
		manager.forwardSignals(sigChan)
		close(exited)
	}()

	sigChan <- syscall.Signal(0)
	time.Sleep(10 * time.Millisecond)
	close(manager.done)

	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("forwardSignals did not stop")
	}
}

func TestManager_Stop(t *testing.T) {
	tests := []struct {
		name    string
		process *os.Process
	}{
		{
			name: "stop with nil process",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPTY := testutil.NewMockPTYManager()
			mockPTY.SetProcess(tt.process)
			manager := newTestManager(mockPTY, nil)

			if err := manager.Stop(); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
