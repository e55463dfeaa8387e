package pattern

import "fmt"

// ID is a stable handle for a registered pattern. IDs are dense and assigned
// in registration order, starting at 0.
type ID int

// entry is a compiled pattern held by the registry
type entry struct {
	spec    Spec
	matcher Matcher
}

// Registry compiles specifications and hands out stable IDs. Registering the
// same raw string twice returns the same ID.
type Registry struct {
	engine  Engine
	byRaw   map[string]ID
	entries []entry
}

// NewRegistry creates a registry compiling with engine
func NewRegistry(engine Engine) *Registry {
	if engine == "" {
		engine = DefaultEngine
	}
	return &Registry{
		engine: engine,
		byRaw:  make(map[string]ID),
	}
}

// Engine returns the engine patterns are compiled with
func (r *Registry) Engine() Engine {
	return r.engine
}

// Register parses and compiles raw, or returns the ID it already has
func (r *Registry) Register(raw string) (ID, error) {
	if id, ok := r.byRaw[raw]; ok {
		return id, nil
	}

	spec, m, err := CompileString(raw, r.engine)
	if err != nil {
		return 0, err
	}

	id := ID(len(r.entries))
	r.entries = append(r.entries, entry{spec: spec, matcher: m})
	r.byRaw[raw] = id
	return id, nil
}

// MustRegister is like Register but panics on error. It is meant for
// patterns fixed at build time.
func (r *Registry) MustRegister(raw string) ID {
	id, err := r.Register(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// Lookup returns the ID of an already registered specification
func (r *Registry) Lookup(raw string) (ID, bool) {
	id, ok := r.byRaw[raw]
	return id, ok
}

// Spec returns the parsed specification for id
func (r *Registry) Spec(id ID) Spec {
	return r.get(id).spec
}

// Matcher returns the compiled matcher for id
func (r *Registry) Matcher(id ID) Matcher {
	return r.get(id).matcher
}

// Len returns the number of registered patterns
func (r *Registry) Len() int {
	return len(r.entries)
}

func (r *Registry) get(id ID) entry {
	if id < 0 || int(id) >= len(r.entries) {
		panic(fmt.Sprintf("pattern: unknown id %d", id))
	}
	return r.entries[id]
}
