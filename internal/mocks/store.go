package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/recipe-store/backend/internal/model"
)

// MockStore is a mock implementation of store.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) List(ctx context.Context) ([]model.Recipe, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Recipe), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, id string) (model.Recipe, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Recipe), args.Error(1)
}

func (m *MockStore) Insert(ctx context.Context, recipe model.Recipe) (model.Recipe, error) {
	args := m.Called(ctx, recipe)
	return args.Get(0).(model.Recipe), args.Error(1)
}

func (m *MockStore) Replace(ctx context.Context, recipe model.Recipe) (model.Recipe, error) {
	args := m.Called(ctx, recipe)
	return args.Get(0).(model.Recipe), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
