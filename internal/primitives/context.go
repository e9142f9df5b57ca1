// Context is the statechart's extended state: a thread-safe key-value store
// standing in for the arbitrary user-defined context mapping described in
// §3. Backed by sync.Map for lock-free reads under concurrent Get/Set from
// action execution and interpreter subscribers.
//
//go:generate go test ./... -race
package primitives

import "sync"

// Context is a thread-safe key-value store using sync.Map for concurrent access.
// Lock-free reads/writes with good performance characteristics for contended access.
// Snapshot/Restore iterate the map for serialization.
type Context struct {
	data sync.Map
}

// NewContext creates a new Context with an empty map.
func NewContext() *Context {
	return &Context{}
}

// Get retrieves a value by key. Safe for concurrent reads.
func (c *Context) Get(key string) (any, bool) {
	return c.data.Load(key)
}

// Set stores a value by key. Safe for concurrent writes.
func (c *Context) Set(key string, val any) {
	c.data.Store(key, val)
}

// Delete removes a key-value pair. Safe for concurrent writes.
func (c *Context) Delete(key string) {
	c.data.Delete(key)
}

// Snapshot returns a serializable copy of the context data for persistence.
func (c *Context) Snapshot() map[string]any {
	snap := map[string]any{}
	c.data.Range(func(k, v any) bool {
		snap[k.(string)] = v
		return true
	})
	return snap
}

// Restore replaces the context data from a snapshot map.
func (c *Context) Restore(snap map[string]any) {
	c.data.Range(func(k, v any) bool {
		c.data.Delete(k)
		return true
	})
	for k, v := range snap {
		c.data.Store(k, v)
	}
}

// Clone returns an independent copy of this Context. The microstep engine
// resolves assign actions against a clone so the previous State's Context is
// never mutated in place (§5: "the next state is always a freshly
// constructed value").
func (c *Context) Clone() *Context {
	clone := NewContext()
	c.data.Range(func(k, v any) bool {
		clone.data.Store(k, v)
		return true
	})
	return clone
}

// Update applies a partial-update mapping produced by an assign updater,
// merging each entry into the context. Keys absent from partial keep their
// values; a nil value is stored like any other, so Update never deletes a key.
func (c *Context) Update(partial map[string]any) {
	for k, v := range partial {
		c.data.Store(k, v)
	}
}
