package llm

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds provider configurations and builds each provider on first
// use. It is created by the caller and passed where needed.
type Registry struct {
	mu        sync.RWMutex
	configs   map[string]ProviderConfig
	providers map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs:   make(map[string]ProviderConfig),
		providers: make(map[string]Provider),
	}
}

// Configure sets the configuration for a built-in provider. A provider
// already built for name is dropped.
func (r *Registry) Configure(name string, cfg ProviderConfig) error {
	if !builtin(name) {
		return &UnknownProviderError{Name: name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[name] = cfg
	delete(r.providers, name)
	return nil
}

// Register adds a ready provider, replacing any configuration of the same
// name.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("cannot register nil provider")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; ok {
		return fmt.Errorf("provider already registered: %s", name)
	}
	delete(r.configs, name)
	r.providers[name] = p
	return nil
}

// Get returns the provider called name, building it from its configuration
// if needed.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", name)
	}
	p, err := New(name, cfg)
	if err != nil {
		return nil, err
	}
	r.providers[name] = p
	return p, nil
}

// Names returns the configured and registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool, len(r.configs)+len(r.providers))
	for name := range r.configs {
		seen[name] = true
	}
	for name := range r.providers {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the provider after validating its configuration.
func (r *Registry) Resolve(name string) (Provider, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("provider %s is not usable: %w", name, err)
	}
	return p, nil
}

func builtin(name string) bool {
	switch name {
	case "anthropic", "openai", "gemini", "ollama":
		return true
	}
	return false
}
