package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-store/backend/internal/database"
	"github.com/pageza/recipe-store/backend/internal/model"
)

func newSQLStore(t *testing.T) Store {
	t.Helper()
	db, err := database.OpenSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseSQLite(db) })

	s, err := NewSQLStore(db)
	require.NoError(t, err)
	return s
}

func forEachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewMemoryStore()) })
	t.Run("sql", func(t *testing.T) { fn(t, newSQLStore(t)) })
}

func TestStoreInsertAndList(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		list, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		for i := 1; i <= 3; i++ {
			_, err := s.Insert(ctx, model.Recipe{
				ID:          fmt.Sprintf("r-%d", i),
				Name:        fmt.Sprintf("recipe %d", i),
				Ingredients: []string{"water"},
			})
			require.NoError(t, err)
		}

		list, err = s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "r-1", list[0].ID)
		assert.Equal(t, "r-2", list[1].ID)
		assert.Equal(t, "r-3", list[2].ID)

		n, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})
}

func TestStoreInsertDuplicateID(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		r := model.Recipe{ID: "dup", Name: "soup", Ingredients: []string{}}

		_, err := s.Insert(ctx, r)
		require.NoError(t, err)
		_, err = s.Insert(ctx, r)
		assert.ErrorIs(t, err, ErrDuplicateID)
	})
}

func TestStoreEmptyIngredientsStayArrays(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		_, err := s.Insert(ctx, model.Recipe{ID: "a", Name: "air", Ingredients: []string{}})
		require.NoError(t, err)

		got, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.NotNil(t, got.Ingredients)
		assert.Empty(t, got.Ingredients)
	})
}

func TestStoreReplaceKeepsPosition(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, id := range []string{"a", "b", "c"} {
			_, err := s.Insert(ctx, model.Recipe{ID: id, Name: id, Ingredients: []string{id}})
			require.NoError(t, err)
		}

		updated, err := s.Replace(ctx, model.Recipe{ID: "b", Name: "fish stew", Ingredients: []string{"fish", "stew"}})
		require.NoError(t, err)
		assert.Equal(t, model.Recipe{ID: "b", Name: "fish stew", Ingredients: []string{"fish", "stew"}}, updated)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, updated, list[1])
	})
}

func TestStoreReplaceUnknown(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		_, err := s.Replace(context.Background(), model.Recipe{ID: "missing", Name: "x", Ingredients: []string{}})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreGetUnknown(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		_, err := s.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStoreDelete(t *testing.T) {
	forEachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		for _, id := range []string{"a", "b", "c"} {
			_, err := s.Insert(ctx, model.Recipe{ID: id, Name: id, Ingredients: []string{}})
			require.NoError(t, err)
		}

		removed, err := s.Delete(ctx, "a")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = s.Delete(ctx, "a")
		require.NoError(t, err)
		assert.False(t, removed)

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "b", list[0].ID)
		assert.Equal(t, "c", list[1].ID)

		// Index must still resolve the shifted entries.
		got, err := s.Get(ctx, "c")
		require.NoError(t, err)
		assert.Equal(t, "c", got.Name)
	})
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	in := model.Recipe{ID: "a", Name: "soup", Ingredients: []string{"water"}}
	_, err := s.Insert(ctx, in)
	require.NoError(t, err)

	in.Ingredients[0] = "changed"
	list, err := s.List(ctx)
	require.NoError(t, err)
	list[0].Ingredients[0] = "changed again"

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"water"}, got.Ingredients)
}

func TestMemoryStoreConcurrentInserts(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Insert(ctx, model.Recipe{ID: fmt.Sprintf("r-%d", i), Name: "x", Ingredients: []string{}})
			assert.NoError(t, err)
			_, err = s.List(ctx)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}
