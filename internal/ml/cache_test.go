package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineCacheHitAndMiss(t *testing.T) {
	store := newMemoryStore()
	x, y := syntheticRows(50)
	pipe, err := FitPipeline(DefaultFeatureCols, x, y, 1.0)
	require.NoError(t, err)
	payload, err := pipe.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Write("model.json", payload))

	cache := NewPipelineCache(store)

	loaded, hit, err := cache.Load("model.json")
	require.NoError(t, err)
	assert.False(t, hit, "first load is a miss")
	assert.Equal(t, pipe.FeatureCols, loaded.FeatureCols)

	again, hit, err := cache.Load("model.json")
	require.NoError(t, err)
	assert.True(t, hit, "second load is a hit")
	assert.Same(t, loaded, again)
}

func TestPipelineCacheMissingArtifact(t *testing.T) {
	cache := NewPipelineCache(newMemoryStore())

	_, _, err := cache.Load("absent.json")
	assert.Error(t, err)
}

func TestPipelineCacheInvalidate(t *testing.T) {
	store := newMemoryStore()
	x, y := syntheticRows(50)
	pipe, err := FitPipeline(DefaultFeatureCols, x, y, 1.0)
	require.NoError(t, err)
	payload, err := pipe.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Write("model.json", payload))

	cache := NewPipelineCache(store)
	_, _, err = cache.Load("model.json")
	require.NoError(t, err)

	cache.Invalidate("model.json")

	_, hit, err := cache.Load("model.json")
	require.NoError(t, err)
	assert.False(t, hit, "invalidated entry reloads from the store")
}
