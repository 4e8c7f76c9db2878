package store

import (
	"maps"
	"sync"

	"github.com/pthm/talui/lib/model"
)

// Memory is an in-process session store. Every model gets its own copy of a
// layer's values; Flush writes the copy back, replacing what was stored, so
// values written by one request are seen by the next one to fetch the layer.
//
// Memory is safe for concurrent use. Two models flushing the same layer keep
// the values of the last flush.
type Memory struct {
	mu     sync.Mutex
	layers map[string]map[string]any
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{layers: make(map[string]map[string]any)}
}

// ModelAttributes returns a copy of the values stored for cfg's layer.
func (s *Memory) ModelAttributes(cfg *model.Configuration) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := maps.Clone(s.layers[cfg.Name()])
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

// SaveModelAttributes replaces the values stored for cfg's layer.
func (s *Memory) SaveModelAttributes(cfg *model.Configuration, values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers[cfg.Name()] = maps.Clone(values)
	return nil
}

// Values returns a copy of the values stored for the named layer.
func (s *Memory) Values(layer string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.layers[layer])
}

// Reset forgets every layer.
func (s *Memory) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layers = make(map[string]map[string]any)
}
