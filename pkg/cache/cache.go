// Package cache remembers rendered nodes per match position so that unchanged
// matches are not rendered again.
package cache

// Entry is a cached node together with the capture tuple that produced it
// and the nested state created while rendering it.
type Entry[N, C any] struct {
	Captures []string
	Node     N
	Children []C
}

// Cache holds the entries of one pattern, indexed by sequential match
// position.
type Cache[N, C any] struct {
	entries []*Entry[N, C]
}

// New creates an empty cache
func New[N, C any]() *Cache[N, C] {
	return &Cache[N, C]{}
}

// Get returns the entry at position i if its capture tuple equals captures
func (c *Cache[N, C]) Get(i int, captures []string) (*Entry[N, C], bool) {
	e := c.At(i)
	if e == nil || !Equal(e.Captures, captures) {
		return nil, false
	}
	return e, true
}

// At returns the entry at position i regardless of its captures, or nil
func (c *Cache[N, C]) At(i int) *Entry[N, C] {
	if i < 0 || i >= len(c.entries) {
		return nil
	}
	return c.entries[i]
}

// Reserve returns the entry at position i, creating an empty one if there is
// none. Children of an existing entry are kept so nested state survives a
// re-render of the same position.
func (c *Cache[N, C]) Reserve(i int) *Entry[N, C] {
	for len(c.entries) <= i {
		c.entries = append(c.entries, nil)
	}
	if c.entries[i] == nil {
		c.entries[i] = &Entry[N, C]{}
	}
	return c.entries[i]
}

// Put stores node and captures at position i, replacing the entry in place
func (c *Cache[N, C]) Put(i int, captures []string, node N) *Entry[N, C] {
	e := c.Reserve(i)
	e.Captures = append([]string(nil), captures...)
	e.Node = node
	return e
}

// Truncate drops every entry at position n or later and returns how many
// were present
func (c *Cache[N, C]) Truncate(n int) int {
	if n < 0 {
		n = 0
	}
	if n >= len(c.entries) {
		return 0
	}

	dropped := 0
	for i := n; i < len(c.entries); i++ {
		if c.entries[i] != nil {
			dropped++
		}
		c.entries[i] = nil
	}
	c.entries = c.entries[:n]
	return dropped
}

// Len returns the number of positions held, including empty ones
func (c *Cache[N, C]) Len() int {
	return len(c.entries)
}

// Equal reports whether two capture tuples have the same arity and equal
// elements
func Equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
