package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"hirefeed/internal/api"
	"hirefeed/internal/cache/memory"
	"hirefeed/internal/config"
	"hirefeed/internal/ingest"
	"hirefeed/internal/models"
	"hirefeed/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:            "development",
		LogLevel:          "error",
		BearerToken:       "token",
		TwitterAPIBaseURL: baseURL,
		TwitterAPITimeout: 2 * time.Second,
		SearchKeywords:    config.DefaultKeywords,
		SearchMaxResults:  10,
		StoreDriver:       config.StoreDriverSQLite,
		DatabasePath:      filepath.Join(t.TempDir(), "jobs.db"),
		CacheTTL:          time.Minute,
	}
}

func TestNewCache_FallsBackToMemory(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	c := newCache(lc, &config.Config{CacheTTL: time.Minute})

	assert.IsType(t, &memory.Cache{}, c)
	lc.RequireStart().RequireStop()
}

func TestNewStore_SQLiteRunsMigrations(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := testConfig(t, "http://unused")

	s, err := newStore(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	lc.RequireStart()

	result, err := s.SaveJobPostings(context.Background(), []*models.JobPosting{{TweetID: "1", URL: models.StatusURL("1")}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted())

	lc.RequireStop()
}

func TestApp_RunsOnceAndStops(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"id":"1","text":"we're hiring"},{"id":"1","text":"we're hiring"}]}`))
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	var st store.Store

	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newCache,
			newStore,
			newPublisher,
			api.NewSearchClient,
			ingest.NewRunner,
		),
		fx.Invoke(runOnce),
		fx.Populate(&st),
	)
	app.RequireStart()

	select {
	case <-app.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}

	count, err := st.CountJobPostings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	app.RequireStop()
}
