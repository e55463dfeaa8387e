package engine

import (
	"log/slog"

	"github.com/Veraticus/regexrender/pkg/logger"
	"github.com/Veraticus/regexrender/pkg/pattern"
)

// Observer receives engine events. Implementations must be cheap; they are
// called synchronously from Evaluate.
type Observer interface {
	// Evaluated is called after each successful evaluation
	Evaluated(depth, segments int)
	// Rendered is called when a renderer was invoked for a cache miss
	Rendered(pattern string)
	// Reused is called when a cached node was returned
	Reused(pattern string)
	// Evicted is called when stale trailing cache entries were dropped
	Evicted(pattern string, n int)
}

type nopObserver struct{}

func (nopObserver) Evaluated(int, int) {}
func (nopObserver) Rendered(string) {}
func (nopObserver) Reused(string) {}
func (nopObserver) Evicted(string, int) {}

// options are shared by an engine and every nested engine it creates
type options struct {
	engine        pattern.Engine
	logger        *slog.Logger
	observer      Observer
	checkCoverage bool
}

// Option configures an Engine
type Option func(*options)

// WithMatcherEngine selects the regular expression implementation
func WithMatcherEngine(e pattern.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithLogger sets the logger used for debug tracing
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers an observer for cache and render events
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithCoverageCheck verifies after every resolution that the segments cover
// the text exactly. Meant for tests and debugging.
func WithCoverageCheck(enabled bool) Option {
	return func(o *options) {
		o.checkCoverage = enabled
	}
}

func defaultOptions() options {
	return options{
		engine:   pattern.DefaultEngine,
		logger:   logger.WithComponent("engine"),
		observer: nopObserver{},
	}
}
