// Package store holds the recipe collection: an insertion-ordered mapping
// from id to recipe.
package store

import (
	"context"
	"errors"

	"github.com/pageza/recipe-store/backend/internal/model"
)

var (
	// ErrNotFound is returned when no recipe has the requested id.
	ErrNotFound = errors.New("recipe not found")
	// ErrDuplicateID is returned when an insert reuses an existing id.
	ErrDuplicateID = errors.New("recipe id already exists")
)

// Store is the recipe collection. Implementations keep recipes in insertion
// order and must be safe for concurrent use.
type Store interface {
	List(ctx context.Context) ([]model.Recipe, error)
	Get(ctx context.Context, id string) (model.Recipe, error)
	Insert(ctx context.Context, recipe model.Recipe) (model.Recipe, error)
	Replace(ctx context.Context, recipe model.Recipe) (model.Recipe, error)
	// Delete reports whether a recipe was removed.
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}
