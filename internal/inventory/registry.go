package inventory

import (
	"fmt"
	"log/slog"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/kubeadapt/kubeadapt-dashboard/internal/observability"
	"github.com/kubeadapt/kubeadapt-dashboard/pkg/model"
)

// Registry event labels for the client_registry_events_total metric.
const (
	eventHit   = "hit"
	eventMiss  = "miss"
	eventEvict = "evict"
	eventPurge = "purge"
)

// Registry caches one Provider per cluster context. At most size providers
// are kept; the least recently used one is dropped first. Concurrent first
// requests for a context share a single provider construction.
type Registry struct {
	source  Source
	metrics *observability.Metrics
	cache   *lru.Cache[string, Provider]
	group   singleflight.Group
}

// NewRegistry creates a registry over source. metrics may be nil.
func NewRegistry(source Source, size int, metrics *observability.Metrics) (*Registry, error) {
	r := &Registry{source: source, metrics: metrics}
	cache, err := lru.NewWithEvict[string, Provider](size, func(name string, _ Provider) {
		slog.Debug("cluster client evicted", "cluster", name)
		r.event(eventEvict)
	})
	if err != nil {
		return nil, fmt.Errorf("client registry: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Clusters lists the contexts known to the underlying source.
func (r *Registry) Clusters() ([]model.ClusterInfo, error) {
	return r.source.Clusters()
}

// Get resolves name and returns the provider for it, creating it on first
// use. The resolved context name is returned alongside.
func (r *Registry) Get(name string) (string, Provider, error) {
	resolved, err := r.source.Resolve(name)
	if err != nil {
		return "", nil, err
	}

	if p, ok := r.cache.Get(resolved); ok {
		r.event(eventHit)
		return resolved, p, nil
	}

	v, err, _ := r.group.Do(resolved, func() (any, error) {
		if p, ok := r.cache.Peek(resolved); ok {
			return p, nil
		}
		r.event(eventMiss)
		p, err := r.source.NewProvider(resolved)
		if err != nil {
			return nil, err
		}
		r.cache.Add(resolved, p)
		r.updateSize()
		slog.Info("cluster client created", "cluster", resolved)
		return p, nil
	})
	if err != nil {
		return "", nil, err
	}
	return resolved, v.(Provider), nil
}

// Contexts returns the names of the cached providers, sorted.
func (r *Registry) Contexts() []string {
	keys := r.cache.Keys()
	sort.Strings(keys)
	return keys
}

// Len returns the number of cached providers.
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge drops every cached provider. They are rebuilt on next use.
func (r *Registry) Purge() {
	r.event(eventPurge)
	r.cache.Purge()
	r.updateSize()
}

func (r *Registry) event(name string) {
	if r.metrics != nil {
		r.metrics.ClientRegistryEvent.WithLabelValues(name).Inc()
	}
}

func (r *Registry) updateSize() {
	if r.metrics != nil {
		r.metrics.ClientRegistrySize.Set(float64(r.cache.Len()))
	}
}
