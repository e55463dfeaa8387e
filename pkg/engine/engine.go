// Package engine turns text into an ordered sequence of literal text and
// rendered nodes by applying a set of pattern renderers, and keeps rendered
// nodes for unchanged matches across evaluations.
//
// An Engine is configured with rules, each pairing a pattern specification
// with a renderer. Every call to Evaluate scans the complete text with every
// active pattern, resolves overlaps between patterns, and then asks the
// element cache for each kept match: a match whose capture tuple is
// identical to the one cached at the same (pattern, position) reuses the
// cached node, anything else invokes the renderer.
//
// Renderers receive a Nest, which evaluates sub-strings in child engines
// owned by the match position. Child engines keep their own caches, so
// nested nodes survive re-renders of the enclosing match.
//
// An Engine is not safe for concurrent use.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/regexrender/pkg/cache"
	"github.com/Veraticus/regexrender/pkg/pattern"
	"github.com/Veraticus/regexrender/pkg/resolve"
	"github.com/Veraticus/regexrender/pkg/scan"
	"github.com/Veraticus/regexrender/pkg/types"
)

// ErrNoRenderer is returned for a rule without a renderer
var ErrNoRenderer = errors.New("rule has no renderer")

// Renderer builds the node for one match. It is only invoked when the match
// differs from what is cached at its position.
type Renderer[N any] func(m types.Match, nest *Nest[N]) (N, error)

// Rule pairs a pattern specification with its renderer. Name is an optional
// label used in logs and metrics; it defaults to Spec.
type Rule[N any] struct {
	Name   string
	Spec   string
	Render Renderer[N]
}

func (r Rule[N]) label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Spec
}

// Item is one element of an evaluation result: literal text, or a match
// together with its rendered node.
type Item[N any] struct {
	Segment types.Segment
	Node    N
}

// IsNode reports whether the item carries a rendered node
func (it Item[N]) IsNode() bool {
	return it.Segment.IsMatch()
}

// Text returns the source text covered by the item
func (it Item[N]) Text() string {
	return it.Segment.Text
}

// patternState is the per-pattern state of one engine instance
type patternState[N any] struct {
	name   string
	render Renderer[N]
	count  int
	cache  *cache.Cache[N, *Engine[N]]
}

// Engine evaluates text against a set of rules
type Engine[N any] struct {
	opts     options
	log      *slog.Logger
	depth    int
	registry *pattern.Registry
	states   []*patternState[N]
	active   []pattern.ID
	rules    []Rule[N]
	segments []types.Segment
}

// New creates an engine for rules. Every specification is compiled up front;
// an invalid one fails the call.
func New[N any](rules []Rule[N], opts ...Option) (*Engine[N], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newEngine(rules, o, 0)
}

func newEngine[N any](rules []Rule[N], o options, depth int) (*Engine[N], error) {
	e := &Engine[N]{
		opts:     o,
		log:      o.logger.With("depth", depth),
		depth:    depth,
		registry: pattern.NewRegistry(o.engine),
	}
	if err := e.Configure(rules); err != nil {
		return nil, err
	}
	return e, nil
}

// Register adds a rule to the active set and returns its pattern ID. If the
// specification is already known, its state and cache are kept and only the
// renderer is replaced.
func (e *Engine[N]) Register(spec string, render Renderer[N]) (pattern.ID, error) {
	return e.add(Rule[N]{Spec: spec, Render: render})
}

func (e *Engine[N]) add(rule Rule[N]) (pattern.ID, error) {
	id, err := e.register(rule)
	if err != nil {
		return 0, err
	}
	for _, a := range e.active {
		if a == id {
			return id, nil
		}
	}
	e.active = append(e.active, id)
	e.rules = append(e.rules, rule)
	return id, nil
}

// register compiles a rule, creating its state on first sight
func (e *Engine[N]) register(rule Rule[N]) (pattern.ID, error) {
	if rule.Render == nil {
		return 0, fmt.Errorf("%w: %q", ErrNoRenderer, rule.Spec)
	}

	id, err := e.registry.Register(rule.Spec)
	if err != nil {
		return 0, err
	}

	if int(id) < len(e.states) {
		st := e.states[id]
		st.render = rule.Render
		st.name = rule.label()
		return id, nil
	}

	e.states = append(e.states, &patternState[N]{
		name:   rule.label(),
		render: rule.Render,
		cache:  cache.New[N, *Engine[N]](),
	})
	return id, nil
}

// Configure replaces the active rule set. Patterns that were seen before keep
// their cached nodes; patterns left out stop being scanned but keep their
// state in case they come back. On error the engine is left unchanged.
func (e *Engine[N]) Configure(rules []Rule[N]) error {
	if err := e.check(rules); err != nil {
		return err
	}

	active := make([]pattern.ID, 0, len(rules))
	seen := make(map[pattern.ID]bool, len(rules))
	for _, rule := range rules {
		id, err := e.register(rule)
		if err != nil {
			return err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		active = append(active, id)
	}

	e.active = active
	e.rules = append([]Rule[N](nil), rules...)
	return nil
}

// check validates rules without touching the engine
func (e *Engine[N]) check(rules []Rule[N]) error {
	for _, rule := range rules {
		if rule.Render == nil {
			return fmt.Errorf("%w: %q", ErrNoRenderer, rule.Spec)
		}
		if _, ok := e.registry.Lookup(rule.Spec); ok {
			continue
		}
		if _, _, err := pattern.CompileString(rule.Spec, e.registry.Engine()); err != nil {
			return err
		}
	}
	return nil
}

// Rules returns the active rule set
func (e *Engine[N]) Rules() []Rule[N] {
	return append([]Rule[N](nil), e.rules...)
}

// Evaluate runs every active pattern over text and returns literal text
// interleaved with rendered nodes.
//
// A renderer error stops the evaluation and is returned unchanged. Nodes
// cached before the failure remain valid.
func (e *Engine[N]) Evaluate(text string) ([]Item[N], error) {
	scanned := make(map[pattern.ID][]types.Match, len(e.active))
	var all []types.Match
	for _, id := range e.active {
		matches := scan.ScanSpec(e.registry.Spec(id), e.registry.Matcher(id), id, text)
		e.states[id].count = len(matches)
		scanned[id] = matches
		all = append(all, matches...)
	}

	segments := resolve.Resolve(text, all)
	if e.opts.checkCoverage {
		if err := resolve.CheckCoverage(text, segments); err != nil {
			return nil, fmt.Errorf("segment coverage: %w", err)
		}
	}

	items := make([]Item[N], 0, len(segments))
	for _, seg := range segments {
		if !seg.IsMatch() {
			items = append(items, Item[N]{Segment: seg})
			continue
		}
		node, err := e.node(e.states[seg.Pattern], scanned[seg.Pattern][seg.Index])
		if err != nil {
			return nil, err
		}
		items = append(items, Item[N]{Segment: seg, Node: node})
	}

	for _, id := range e.active {
		st := e.states[id]
		if n := st.cache.Truncate(st.count); n > 0 {
			e.log.Debug("cleaning up excess elements", "pattern", st.name, "dropped", n, "matches", st.count)
			e.opts.observer.Evicted(st.name, n)
		}
	}

	e.segments = segments
	e.log.Debug("evaluated", "segments", len(segments), "matches", len(all))
	e.opts.observer.Evaluated(e.depth, len(segments))
	return items, nil
}

// node returns the cached node for m or renders a new one
func (e *Engine[N]) node(st *patternState[N], m types.Match) (N, error) {
	captures := m.Captures()
	if entry, ok := st.cache.Get(m.Index, captures); ok {
		e.opts.observer.Reused(st.name)
		return entry.Node, nil
	}

	e.log.Debug("creating/updating element", "pattern", st.name, "index", m.Index)
	nest := newNest(e, st.cache.Reserve(m.Index))
	node, err := st.render(m, nest)
	if err != nil {
		nest.abort()
		var zero N
		return zero, err
	}
	nest.release()

	st.cache.Put(m.Index, captures, node)
	e.opts.observer.Rendered(st.name)
	return node, nil
}

// Segments returns the segments resolved by the last successful evaluation
func (e *Engine[N]) Segments() []types.Segment {
	return append([]types.Segment(nil), e.segments...)
}

// Depth returns the nesting depth; 0 for an engine created by New
func (e *Engine[N]) Depth() int {
	return e.depth
}

// PatternID returns the ID of a registered specification
func (e *Engine[N]) PatternID(spec string) (pattern.ID, bool) {
	return e.registry.Lookup(spec)
}

// Cached returns the node cached for pattern id at position index
func (e *Engine[N]) Cached(id pattern.ID, index int) (N, bool) {
	var zero N
	if id < 0 || int(id) >= len(e.states) {
		return zero, false
	}
	entry := e.states[id].cache.At(index)
	if entry == nil || entry.Captures == nil {
		return zero, false
	}
	return entry.Node, true
}

// CacheLen returns the number of cached positions for pattern id
func (e *Engine[N]) CacheLen(id pattern.ID) int {
	if id < 0 || int(id) >= len(e.states) {
		return 0
	}
	return e.states[id].cache.Len()
}
