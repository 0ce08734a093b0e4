package methodmap

import (
	"fmt"
	"maps"
	"sync/atomic"

	ristretto "github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/on-the-ground/mopaccel/mop/config"
	"github.com/on-the-ground/mopaccel/mop/host"
	"github.com/on-the-ground/mopaccel/mop/log"
	"github.com/on-the-ground/mopaccel/mop/nsutil"
	"github.com/on-the-ground/mopaccel/mop/symbols"
)

type snapshot struct {
	gen     uint64
	methods map[string]host.Callable
}

// Cache holds each namespace's method map together with the generation it
// was built at.
type Cache struct {
	cache    *ristretto.Cache[string, *snapshot]
	logger   *zap.Logger
	rebuilds atomic.Uint64
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger logs rebuilds at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = log.OrNop(logger)
	}
}

// New creates a cache sized by cfg.
func New(cfg config.MethodMapConfig, opts ...Option) (*Cache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, *snapshot]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("methodmap: create cache: %w", err)
	}
	c := &Cache{cache: cache, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Methods returns the subs declared in ns, keyed by name. Subs imported from
// other packages are left out; anonymous subs bound under a name are kept.
//
// The result is reused while ns reports the same generation marker and
// rebuilt when it changes. Namespaces without a marker are rebuilt on every
// call. The returned map belongs to the caller.
func (c *Cache) Methods(ns host.Namespace) map[string]host.Callable {
	if ns == nil {
		return make(map[string]host.Callable)
	}
	gen, tracked := nsutil.CacheGenerationOf(ns)
	if tracked {
		if snap, ok := c.cache.Get(ns.Name()); ok && snap.gen == gen {
			return maps.Clone(snap.methods)
		}
	}

	methods := Build(ns)
	c.rebuilds.Add(1)
	c.logger.Debug("method map rebuilt",
		zap.String("namespace", ns.Name()),
		zap.Uint64("generation", gen),
		zap.Bool("tracked", tracked),
		zap.Int("methods", len(methods)),
	)
	if tracked {
		c.cache.Set(ns.Name(), &snapshot{gen: gen, methods: methods}, int64(len(methods))+1)
		c.cache.Wait()
	}
	return maps.Clone(methods)
}

// Invalidate drops the cached map of the named namespace.
func (c *Cache) Invalidate(name string) {
	c.cache.Del(name)
}

// Rebuilds counts how many times a map was built instead of reused.
func (c *Cache) Rebuilds() uint64 {
	return c.rebuilds.Load()
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.cache.Close()
}

// Build computes the method map of ns without caching.
func Build(ns host.Namespace) map[string]host.Callable {
	methods := make(map[string]host.Callable)
	if ns == nil {
		return methods
	}
	symbols.ForEach(ns, symbols.FilterCallable, func(name string, v host.Value) bool {
		c, ok := v.(host.Callable)
		if !ok {
			return true
		}
		if loc, known := nsutil.DeclaringLocationOf(v); known && loc.Namespace != ns.Name() {
			return true
		}
		methods[name] = c
		return true
	})
	return methods
}
