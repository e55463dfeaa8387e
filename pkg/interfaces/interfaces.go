// Package interfaces defines the core interfaces used throughout the application.
package interfaces

// ProcessWrapper wraps and monitors a process.
type ProcessWrapper interface {
	Start(command string, args []string) error
	Wait() error
	ExitCode() int
}

// DataHandler processes raw output data.
type DataHandler interface {
	HandleData(data []byte)
}

// FrameWriter draws a complete rendered frame, replacing the previous one.
type FrameWriter interface {
	WriteFrame(frame string) error
}
