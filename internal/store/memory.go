package store

import (
	"context"
	"sync"

	"github.com/pageza/recipe-store/backend/internal/model"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps recipes in process memory. Reads share an RWMutex read
// lock; mutations take the write lock.
type MemoryStore struct {
	mu      sync.RWMutex
	recipes []model.Recipe
	index   map[string]int
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (s *MemoryStore) List(ctx context.Context) ([]model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Recipe, len(s.recipes))
	for i, r := range s.recipes {
		out[i] = r.Clone()
	}
	return out, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (model.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Recipe{}, ErrNotFound
	}
	return s.recipes[i].Clone(), nil
}

func (s *MemoryStore) Insert(ctx context.Context, recipe model.Recipe) (model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[recipe.ID]; exists {
		return model.Recipe{}, ErrDuplicateID
	}
	stored := recipe.Clone()
	s.index[stored.ID] = len(s.recipes)
	s.recipes = append(s.recipes, stored)
	return stored.Clone(), nil
}

func (s *MemoryStore) Replace(ctx context.Context, recipe model.Recipe) (model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[recipe.ID]
	if !ok {
		return model.Recipe{}, ErrNotFound
	}
	s.recipes[i] = recipe.Clone()
	return s.recipes[i].Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false, nil
	}
	s.recipes = append(s.recipes[:i], s.recipes[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.recipes); j++ {
		s.index[s.recipes[j].ID] = j
	}
	return true, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes), nil
}
