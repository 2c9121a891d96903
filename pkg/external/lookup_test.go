package external

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreport-assistant-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testLookupConfig(baseURL string) *domain.LookupConfig {
	return &domain.LookupConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		APIHost:        "test-host",
		Specialization: "general",
		Language:       "en",
		Timeout:        2 * time.Second,
		RetryCount:     3,
		RetryDelay:     time.Millisecond,
	}
}

const chatResponseBody = `{
	"result": {
		"response": {
			"message": "A metabolic disorder.",
			"recommendations": ["Monitor blood sugar"],
			"warnings": ["Seek care if symptoms worsen"],
			"references": ["WHO fact sheet"],
			"followUp": ["HbA1c every 3 months"]
		}
	}
}`

// newPipeline builds a lookup client over a single in-memory cache tier.
func newPipeline(t *testing.T, remote RemoteClient) (*CachedLookupClient, *MemoryCache) {
	mem, err := NewMemoryCache(16)
	require.NoError(t, err)

	cfg := testLookupConfig("")
	return NewCachedLookupClient(remote, []Cache{mem}, cfg, testLogger()), mem
}

func TestLookup_FetchesAndCaches(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "test-key", r.Header.Get("X-RapidAPI-Key"))
		w.Write([]byte(chatResponseBody))
	}))
	defer srv.Close()

	client, _ := newPipeline(t, NewMediChatClient(testLookupConfig(srv.URL)))

	info, err := client.Lookup(context.Background(), "Diabetes")
	require.NoError(t, err)
	assert.Equal(t, "Diabetes", info.Query)
	assert.Equal(t, "A metabolic disorder.", info.Description)
	assert.Equal(t, []string{"Monitor blood sugar"}, info.Recommendations)

	// Second call is answered from cache, case-insensitively.
	_, err = client.Lookup(context.Background(), "  DIABETES ")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLookup_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(chatResponseBody))
	}))
	defer srv.Close()

	client, _ := newPipeline(t, NewMediChatClient(testLookupConfig(srv.URL)))

	info, err := client.Lookup(context.Background(), "diabetes")
	require.NoError(t, err)
	assert.Equal(t, "A metabolic disorder.", info.Description)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestLookup_DegradesAfterRetryBudget(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, mem := newPipeline(t, NewMediChatClient(testLookupConfig(srv.URL)))

	info, err := client.Lookup(context.Background(), "diabetes")

	// Degradation is not an error: the caller gets the fixed result.
	require.NoError(t, err)
	assert.Equal(t, "Medical service unavailable", info.Description)
	assert.Equal(t, []string{"Unavailable"}, info.Recommendations)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// The degraded result must not be cached.
	_, found := mem.Get(context.Background(), "diabetes")
	assert.False(t, found)
}

func TestLookup_BackfillsEarlierTiers(t *testing.T) {
	mem, err := NewMemoryCache(16)
	require.NoError(t, err)

	tmpFile := t.TempDir() + "/api_cache.json"
	fc, err := NewFileCache(tmpFile)
	require.NoError(t, err)

	// Seed only the lower (file) tier.
	seeded := &domain.MedicalInfo{Query: "flu", Description: "Viral infection."}
	require.NoError(t, fc.Set(context.Background(), "flu", seeded))

	cfg := testLookupConfig("")
	client := NewCachedLookupClient(nil, []Cache{mem, fc}, cfg, testLogger())

	info, err := client.Lookup(context.Background(), "Flu")
	require.NoError(t, err)
	assert.Equal(t, "Viral infection.", info.Description)

	// The hit is copied forward into the memory tier.
	cached, found := mem.Get(context.Background(), "flu")
	require.True(t, found)
	assert.Equal(t, "Viral infection.", cached.Description)
}

func TestLookup_ContextCancelledBetweenRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testLookupConfig(srv.URL)
	cfg.RetryDelay = time.Minute

	mem, err := NewMemoryCache(16)
	require.NoError(t, err)
	client := NewCachedLookupClient(NewMediChatClient(cfg), []Cache{mem}, cfg, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	info, err := client.Lookup(ctx, "diabetes")

	// Still degrades instead of failing.
	require.NoError(t, err)
	assert.Equal(t, "Medical service unavailable", info.Description)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "diabetes", NormalizeQuery("  Diabetes  "))
	assert.Equal(t, "high blood pressure", NormalizeQuery("High Blood Pressure"))
	assert.Equal(t, "", NormalizeQuery("   "))
}
