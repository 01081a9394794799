package service

import (
	"context"

	"github.com/pageza/recipe-store/backend/internal/model"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context) ([]model.Recipe, error)
	GetRecipe(ctx context.Context, id string) (*model.Recipe, error)
	CreateRecipe(ctx context.Context, input model.RecipeInput) (*model.Recipe, error)
	ReplaceRecipe(ctx context.Context, id string, input model.RecipeInput) (*model.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error
}

var _ IRecipeService = (*RecipeService)(nil)
