// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Backend registry with factory pattern

package backend

import (
	"fmt"
	"sort"
	"sync"
)

// Factory creates a backend from config
type Factory func(config *Config) (Backend, error)

// Registry maps backend kinds to factories. Unlike a provider chain there is
// no fallback: a backend that cannot be built is an error.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// DefaultRegistry is the global backend registry
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]Factory),
	}
}

// Register adds or replaces the factory for kind
func (r *Registry) Register(kind Kind, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = factory
}

// Kinds returns the registered kinds, sorted
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// New builds the backend selected by config
func (r *Registry) New(config *Config) (Backend, error) {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	factory, ok := r.factories[config.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, config.Kind)
	}

	b, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s backend: %w", config.Kind, err)
	}
	return b, nil
}

// New builds a backend from the default registry
func New(config *Config) (Backend, error) {
	return DefaultRegistry.New(config)
}
