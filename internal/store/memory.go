package store

import "sync"

var _ Sink = (*Memory)(nil)

// Memory is an in-memory Sink.
type Memory struct {
	mu     sync.Mutex
	errors []BuildError
	meta   map[string]any
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{meta: map[string]any{}}
}

// WriteError implements ErrorSink.
func (m *Memory) WriteError(e BuildError) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, e)
	return nil
}

// WriteMeta implements MetaSink.
func (m *Memory) WriteMeta(buildID, plugin, key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[buildID+"/"+MetaKey(plugin, key)] = value
	return nil
}

// Errors returns a copy of the recorded build errors.
func (m *Memory) Errors() []BuildError {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BuildError(nil), m.errors...)
}

// Meta returns the value stored for a build under plugin and key.
func (m *Memory) Meta(buildID, plugin, key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.meta[buildID+"/"+MetaKey(plugin, key)]
	return v, ok
}
