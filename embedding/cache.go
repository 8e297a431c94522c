package embedding

import (
	"fmt"

	"github.com/quantmesh/finvec/cache"
)

// Factory builds a Provider for a Config.
type Factory func(cfg Config) (Provider, error)

// ProviderCache memoizes provider construction per Config. Providers
// backed by remote models can be expensive to set up, and batch tooling
// tends to request the same few configurations repeatedly.
type ProviderCache struct {
	factory Factory
	lru     *cache.LRU[Config, Provider]
}

// NewProviderCache creates a cache holding at most capacity providers.
func NewProviderCache(factory Factory, capacity int) *ProviderCache {
	return &ProviderCache{
		factory: factory,
		lru:     cache.NewLRU[Config, Provider](capacity, nil),
	}
}

// Get returns the provider for cfg, building it on first use.
func (c *ProviderCache) Get(cfg Config) (Provider, error) {
	if p, ok := c.lru.Get(cfg); ok {
		return p, nil
	}

	p, err := c.factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("build provider %q: %w", cfg.Name, err)
	}
	c.lru.Put(cfg, p)

	return p, nil
}

// DefaultFactory resolves the providers shipped with this package.
func DefaultFactory(cfg Config) (Provider, error) {
	switch cfg.Name {
	case "", "hashing":
		return NewHashing(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
}
