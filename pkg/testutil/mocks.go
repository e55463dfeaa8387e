package testutil

import (
	"fmt"
	"sync"

	"github.com/Veraticus/regexrender/pkg/types"
)

// Node is a rendered node used in tests. Each render returns a fresh
// pointer, so identity comparisons tell a cached node from a rebuilt one.
type Node struct {
	Pattern  string
	Index    int
	Text     string
	Groups   []string
	Children []any
}

// String returns a compact description of the node
func (n *Node) String() string {
	return fmt.Sprintf("%s#%d(%q)", n.Pattern, n.Index, n.Text)
}

// RenderCall records a single renderer invocation
type RenderCall struct {
	Pattern string
	Index   int
	Text    string
}

// MockRenderer is a thread-safe recorder of renderer invocations
type MockRenderer struct {
	mu        sync.Mutex
	calls     []RenderCall
	renderErr error
}

// NewMockRenderer creates a new mock renderer
func NewMockRenderer() *MockRenderer {
	return &MockRenderer{
		calls: []RenderCall{},
	}
}

// Render records the call and returns a new node for m, or the configured
// error
func (r *MockRenderer) Render(pattern string, m types.Match) (*Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, RenderCall{Pattern: pattern, Index: m.Index, Text: m.Text})
	if r.renderErr != nil {
		return nil, r.renderErr
	}
	return &Node{
		Pattern: pattern,
		Index:   m.Index,
		Text:    m.Text,
		Groups:  append([]string(nil), m.Groups...),
	}, nil
}

// SetError sets the error to return on Render calls
func (r *MockRenderer) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderErr = err
}

// GetCalls returns a copy of all recorded calls
func (r *MockRenderer) GetCalls() []RenderCall {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]RenderCall, len(r.calls))
	copy(result, r.calls)
	return result
}

// GetCallCount returns how many times Render was called
func (r *MockRenderer) GetCallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// GetCallCountFor returns how many times Render was called for pattern
func (r *MockRenderer) GetCallCountFor(pattern string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, c := range r.calls {
		if c.Pattern == pattern {
			count++
		}
	}
	return count
}

// Clear resets the recorded calls and error
func (r *MockRenderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = []RenderCall{}
	r.renderErr = nil
}

// MockObserver is a thread-safe mock of engine.Observer
type MockObserver struct {
	mu          sync.Mutex
	evaluations int
	rendered    map[string]int
	reused      map[string]int
	evicted     map[string]int
	maxDepth    int
}

// NewMockObserver creates a new mock observer
func NewMockObserver() *MockObserver {
	return &MockObserver{
		rendered: make(map[string]int),
		reused:   make(map[string]int),
		evicted:  make(map[string]int),
	}
}

// Evaluated implements engine.Observer
func (o *MockObserver) Evaluated(depth, segments int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evaluations++
	if depth > o.maxDepth {
		o.maxDepth = depth
	}
}

// Rendered implements engine.Observer
func (o *MockObserver) Rendered(pattern string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rendered[pattern]++
}

// Reused implements engine.Observer
func (o *MockObserver) Reused(pattern string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reused[pattern]++
}

// Evicted implements engine.Observer
func (o *MockObserver) Evicted(pattern string, n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.evicted[pattern] += n
}

// GetEvaluations returns how many evaluations completed
func (o *MockObserver) GetEvaluations() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.evaluations
}

// GetRendered returns the render count for pattern
func (o *MockObserver) GetRendered(pattern string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.rendered[pattern]
}

// GetReused returns the cache hit count for pattern
func (o *MockObserver) GetReused(pattern string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.reused[pattern]
}

// GetEvicted returns the number of evicted entries for pattern
func (o *MockObserver) GetEvicted(pattern string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.evicted[pattern]
}

// GetMaxDepth returns the deepest evaluation seen
func (o *MockObserver) GetMaxDepth() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.maxDepth
}
