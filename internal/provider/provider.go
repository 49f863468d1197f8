// Package provider defines the data-source abstraction the search service
// fans out to, and the reference implementations.
package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloo-solutions/justicesearch/internal/domain"
)

// availabilityTimeout bounds a single liveness probe.
const availabilityTimeout = 2 * time.Second

// Provider is one searchable data source.
//
// Search must not fail loudly on I/O problems: network errors, timeouts,
// non-2xx answers and malformed bodies are logged by the provider and
// returned as a *domain.ProviderError next to whatever results it still
// has (usually none). Callers treat the error as data.
type Provider interface {
	Name() string
	IsAvailable(ctx context.Context) bool
	Search(ctx context.Context, query string, sc domain.SearchContext) ([]domain.SearchResult, error)
}

// Categorized is implemented by providers that can name their content in
// user-facing terms, e.g. "Media & stories".
type Categorized interface {
	Category() string
}

// CategoryOf returns the user-facing category of p, or "" when it has none.
func CategoryOf(p Provider) string {
	if c, ok := p.(Categorized); ok {
		return c.Category()
	}
	return ""
}

// Registry is the ordered set of providers. Order matters: it is the merge
// order, so earlier providers win ties and duplicates. Build it once at
// startup; it is safe for concurrent reads after that.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider
	byName    map[string]Provider
}

// NewRegistry creates a registry holding providers in the given order.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{byName: make(map[string]Provider)}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends p. Names must be unique.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if name == "" {
		return fmt.Errorf("provider name is required")
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("provider %q already registered", name)
	}
	r.providers = append(r.providers, p)
	r.byName[name] = p
	return nil
}

// All returns every provider in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Provider(nil), r.providers...)
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return p, nil
}

// Enabled returns the providers not switched off in sources. A provider is
// enabled unless sources maps its name to false.
func (r *Registry) Enabled(sources map[string]bool) []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if enabled, ok := sources[p.Name()]; ok && !enabled {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Availability probes every provider concurrently.
func (r *Registry) Availability(ctx context.Context) map[string]bool {
	providers := r.All()
	out := make(map[string]bool, len(providers))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, availabilityTimeout)
			defer cancel()
			ok := p.IsAvailable(probeCtx)
			mu.Lock()
			out[p.Name()] = ok
			mu.Unlock()
		}(p)
	}
	wg.Wait()
	return out
}
