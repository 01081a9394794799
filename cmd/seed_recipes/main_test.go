package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-store/backend/config"
	"github.com/pageza/recipe-store/backend/internal/model"
	"github.com/pageza/recipe-store/backend/internal/observability"
	"github.com/pageza/recipe-store/backend/internal/server"
	"github.com/pageza/recipe-store/backend/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.SeedDefaults = false
	srv, err := server.Build(context.Background(), cfg, observability.Discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return ts
}

func listRecipes(t *testing.T, baseURL string) []model.Recipe {
	t.Helper()
	resp, err := http.Get(baseURL + "/recipes")
	require.NoError(t, err)
	defer resp.Body.Close()
	var recipes []model.Recipe
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&recipes))
	return recipes
}

func TestSeederCreatesInOrder(t *testing.T) {
	ts := newTestServer(t)
	s := &seeder{client: ts.Client(), baseURL: ts.URL, logger: observability.Discard()}

	created, err := s.seed(context.Background(), store.DefaultSeed())
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEmpty(t, created[0].ID)
	assert.Equal(t, "boiled white rice", created[0].Name)

	recipes := listRecipes(t, ts.URL)
	require.Len(t, recipes, 2)
	assert.Equal(t, created[0].ID, recipes[0].ID)
	assert.Equal(t, created[1].ID, recipes[1].ID)
}

func TestSeederContinuesPastFailures(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal server error"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"r-2","name":"milkshake","ingredients":[]}`))
	}))
	defer ts.Close()

	s := &seeder{client: ts.Client(), baseURL: ts.URL, logger: observability.Discard()}
	created, err := s.seed(context.Background(), store.DefaultSeed())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
	require.Len(t, created, 1)
	assert.Equal(t, "r-2", created[0].ID)
	assert.Equal(t, 2, calls)
}

func TestSeederStopsOnCancelledContext(t *testing.T) {
	ts := newTestServer(t)
	s := &seeder{client: ts.Client(), baseURL: ts.URL, logger: observability.Discard()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	created, err := s.seed(ctx, store.DefaultSeed())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, created)
	assert.Empty(t, listRecipes(t, ts.URL))
}

func TestCommandSeedsFile(t *testing.T) {
	ts := newTestServer(t)
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`recipes:
  - name: toast
    ingredients: ["bread", "butter"]
  - name: water
    ingredients: []
`), 0o600))

	err := newCommand().Run(context.Background(), []string{
		"seed_recipes", "--url", ts.URL + "/", "--file", path, "--timeout", (2 * time.Second).String(), "--log-level", "error",
	})
	require.NoError(t, err)

	recipes := listRecipes(t, ts.URL)
	require.Len(t, recipes, 2)
	assert.Equal(t, "toast", recipes[0].Name)
	assert.Equal(t, []string{}, recipes[1].Ingredients)
}

func TestCommandRequiresInput(t *testing.T) {
	err := newCommand().Run(context.Background(), []string{"seed_recipes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to seed")
}

func TestCommandRejectsInvalidSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recipes:\n  - name: nameless-ingredients\n"), 0o600))

	err := newCommand().Run(context.Background(), []string{"seed_recipes", "--file", path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed recipe 0")
}
