package engine

import "github.com/Veraticus/regexrender/pkg/cache"

// Nest is the recursion handle passed to a renderer. It evaluates
// sub-strings in child engines that belong to the match position being
// rendered, so two matches recursing into the same text never share state.
//
// Children are identified by call order within one render: the first call
// reuses the first child from the previous render of this position, and so
// on. Children not used by the latest render are released. A failed render
// drops the children it created and keeps those of the last good one.
//
// A Nest is only meant to be used during the renderer call it was passed to.
type Nest[N any] struct {
	parent *Engine[N]
	entry  *cache.Entry[N, *Engine[N]]
	used   int
	prior  int
}

func newNest[N any](parent *Engine[N], entry *cache.Entry[N, *Engine[N]]) *Nest[N] {
	return &Nest[N]{parent: parent, entry: entry, prior: len(entry.Children)}
}

// Eval evaluates text with the same rules as the enclosing engine
func (n *Nest[N]) Eval(text string) ([]Item[N], error) {
	return n.EvalWith(n.parent.rules, text)
}

// EvalWith evaluates text with a different rule set, like mounting a nested
// renderer with its own patterns
func (n *Nest[N]) EvalWith(rules []Rule[N], text string) ([]Item[N], error) {
	child, err := n.child(rules)
	if err != nil {
		return nil, err
	}
	return child.Evaluate(text)
}

// Depth returns the depth a child engine created by this handle will have
func (n *Nest[N]) Depth() int {
	return n.parent.depth + 1
}

// child returns the next child engine, configured for rules
func (n *Nest[N]) child(rules []Rule[N]) (*Engine[N], error) {
	if n.used < len(n.entry.Children) {
		child := n.entry.Children[n.used]
		if err := child.Configure(rules); err != nil {
			return nil, err
		}
		n.used++
		return child, nil
	}

	child, err := newEngine(rules, n.parent.opts, n.parent.depth+1)
	if err != nil {
		return nil, err
	}
	n.entry.Children = append(n.entry.Children, child)
	n.used++
	return child, nil
}

// release drops children the render did not ask for
func (n *Nest[N]) release() {
	n.truncate(n.used)
}

// abort drops children created by a render that failed
func (n *Nest[N]) abort() {
	n.truncate(n.prior)
}

func (n *Nest[N]) truncate(keep int) {
	if keep >= len(n.entry.Children) {
		return
	}
	for i := keep; i < len(n.entry.Children); i++ {
		n.entry.Children[i] = nil
	}
	n.entry.Children = n.entry.Children[:keep]
}
