package ml

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/prop-projector/internal/artifact"
	"github.com/yourusername/prop-projector/internal/metrics"
)

const (
	pipelineCacheTTL     = 10 * time.Minute
	pipelineCacheCleanup = 15 * time.Minute
)

// PipelineCache keeps recently loaded pipelines in memory so the serving path
// does not re-read and re-parse the artifact on every projection. Entries are
// keyed by artifact path, so promoting a new model under a different path
// takes effect immediately.
type PipelineCache struct {
	store artifact.Store
	cache *gocache.Cache
}

// NewPipelineCache creates a cache backed by the given artifact store.
func NewPipelineCache(store artifact.Store) *PipelineCache {
	return &PipelineCache{
		store: store,
		cache: gocache.New(pipelineCacheTTL, pipelineCacheCleanup),
	}
}

// Load returns the fitted pipeline stored under name, from cache when warm.
// The returned bool reports a cache hit.
func (c *PipelineCache) Load(name string) (*Pipeline, bool, error) {
	if cached, found := c.cache.Get(name); found {
		metrics.PipelineCacheHitsTotal.Inc()
		return cached.(*Pipeline), true, nil
	}
	metrics.PipelineCacheMissesTotal.Inc()

	payload, err := c.store.Read(name)
	if err != nil {
		return nil, false, err
	}
	pipe, err := LoadPipeline(payload)
	if err != nil {
		return nil, false, err
	}

	c.cache.Set(name, pipe, gocache.DefaultExpiration)
	return pipe, false, nil
}

// Invalidate drops the cached pipeline for name, if any.
func (c *PipelineCache) Invalidate(name string) {
	c.cache.Delete(name)
}
