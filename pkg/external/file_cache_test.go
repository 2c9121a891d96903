package external

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreport-assistant-server/internal/domain"
)

func TestFileCache_SetGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")
	cache, err := NewFileCache(path)
	require.NoError(t, err)

	ctx := context.Background()
	info := &domain.MedicalInfo{Query: "diabetes", Description: "A metabolic disorder."}

	require.NoError(t, cache.Set(ctx, "diabetes", info))

	got, found := cache.Get(ctx, "diabetes")
	require.True(t, found)
	assert.Equal(t, "A metabolic disorder.", got.Description)

	_, found = cache.Get(ctx, "unknown")
	assert.False(t, found)
}

func TestFileCache_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")

	cache, err := NewFileCache(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "flu", &domain.MedicalInfo{Query: "flu", Description: "Viral infection."}))

	reopened, err := NewFileCache(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())

	got, found := reopened.Get(ctx, "flu")
	require.True(t, found)
	assert.Equal(t, "Viral infection.", got.Description)
}

func TestFileCache_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	cache, err := NewFileCache(path)
	require.NoError(t, err)
	assert.Zero(t, cache.Len())
}

func TestFileCache_GetReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_cache.json")
	cache, err := NewFileCache(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "flu", &domain.MedicalInfo{Query: "flu", Description: "original"}))

	got, found := cache.Get(ctx, "flu")
	require.True(t, found)
	got.Description = "mutated"

	fresh, found := cache.Get(ctx, "flu")
	require.True(t, found)
	assert.Equal(t, "original", fresh.Description)
}

func TestMemoryCache_Eviction(t *testing.T) {
	cache, err := NewMemoryCache(2)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "a", &domain.MedicalInfo{Query: "a"}))
	require.NoError(t, cache.Set(ctx, "b", &domain.MedicalInfo{Query: "b"}))
	require.NoError(t, cache.Set(ctx, "c", &domain.MedicalInfo{Query: "c"}))

	// Oldest entry is evicted once the bound is exceeded.
	_, found := cache.Get(ctx, "a")
	assert.False(t, found)

	_, found = cache.Get(ctx, "c")
	assert.True(t, found)
}
