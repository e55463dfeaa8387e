package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Veraticus/regexrender/pkg/config"
	"github.com/Veraticus/regexrender/pkg/display"
	"github.com/Veraticus/regexrender/pkg/engine"
	"github.com/Veraticus/regexrender/pkg/live"
	"github.com/Veraticus/regexrender/pkg/logger"
	"github.com/Veraticus/regexrender/pkg/metrics"
	"github.com/Veraticus/regexrender/pkg/process"
	"github.com/Veraticus/regexrender/pkg/style"
)

// Options describes the terminal the application runs in
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	// Color enables SGR styling
	Color bool
	// Redraw replaces the screen on every frame instead of printing the
	// final frame once
	Redraw bool
}

// Dependencies holds all the dependencies for the application
type Dependencies struct {
	Config         *config.Config
	Metrics        *metrics.Metrics
	Engine         *engine.Engine[string]
	Screen         *display.Screen
	Document       *live.Document
	ProcessManager *process.Manager
	stdin          io.Reader
	stopMetrics    func(context.Context) error
	log            *slog.Logger
}

// NewDependencies creates all dependencies with the given configuration
func NewDependencies(cfg *config.Config, opts Options) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		stdin:  opts.Stdin,
		log:    logger.WithComponent("app"),
	}

	matcher, err := cfg.MatcherEngine()
	if err != nil {
		return nil, err
	}

	rules, err := style.Rules(cfg.Rules, opts.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to build rules: %w", err)
	}

	deps.Metrics = metrics.New()
	deps.Engine, err = engine.New(rules,
		engine.WithMatcherEngine(matcher),
		engine.WithObserver(deps.Metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	deps.Screen = display.NewScreen(opts.Stdout, opts.Redraw)
	deps.Document, err = live.NewDocument(deps.Engine, deps.Screen, cfg.BatchWindow)
	if err != nil {
		return nil, err
	}

	deps.ProcessManager = process.NewManager(deps.Document, opts.Stdin)

	if cfg.MetricsAddr != "" {
		deps.stopMetrics = metrics.StartServer(cfg.MetricsAddr, deps.Metrics)
	}

	return deps, nil
}

// Close cleans up all dependencies
func (d *Dependencies) Close() {
	if d.stopMetrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := d.stopMetrics(ctx); err != nil {
			d.log.Warn("metrics server shutdown failed", "error", err)
		}
		d.stopMetrics = nil
	}
}

// Application represents the main application
type Application struct {
	deps    *Dependencies
	command bool
}

// NewApplication creates a new application with the given dependencies
func NewApplication(deps *Dependencies) *Application {
	return &Application{
		deps: deps,
	}
}

// Run renders the output of command while it runs. Without a command, stdin
// is rendered as it arrives.
func (a *Application) Run(command string, args []string) error {
	if command == "" {
		return a.finish(a.stream())
	}

	a.command = true
	if err := a.deps.ProcessManager.Start(command, args); err != nil {
		return err
	}
	err := a.deps.ProcessManager.Wait()
	return a.finish(err)
}

// RunOnce reads all of stdin and renders it in a single evaluation
func (a *Application) RunOnce() error {
	data, err := io.ReadAll(a.deps.stdin)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return a.finish(a.deps.Document.SetText(string(data)))
}

// stream feeds stdin to the document until EOF
func (a *Application) stream() error {
	buf := make([]byte, 4096)
	for {
		n, err := a.deps.stdin.Read(buf)
		if n > 0 {
			a.deps.Document.HandleData(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
}

// finish renders what is still batched and writes the final frame
func (a *Application) finish(runErr error) error {
	a.deps.Document.Flush()
	closeErr := a.deps.Screen.Close()

	if runErr != nil {
		return runErr
	}
	if err := a.deps.Document.Err(); err != nil {
		return err
	}
	return closeErr
}

// Stop gracefully stops the application
func (a *Application) Stop() error {
	return a.deps.ProcessManager.Stop()
}

// ExitCode returns the exit code of the wrapped process
func (a *Application) ExitCode() int {
	if !a.command {
		return 0
	}
	return a.deps.ProcessManager.ExitCode()
}

// useColor resolves a color mode against whether output is a terminal
func useColor(mode string, terminal bool) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return terminal
	}
}
