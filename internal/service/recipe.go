package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pageza/recipe-store/backend/internal/model"
	"github.com/pageza/recipe-store/backend/internal/observability"
	"github.com/pageza/recipe-store/backend/internal/store"
)

// maxIDAttempts bounds retries when a generated id collides.
const maxIDAttempts = 3

// RecipeService handles recipe operations
type RecipeService struct {
	store        store.Store
	ids          IDGenerator
	metrics      *observability.Metrics
	logger       *slog.Logger
	strictDelete bool
}

// Option configures a RecipeService.
type Option func(*RecipeService)

// WithMetrics records operation counters on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *RecipeService) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *RecipeService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStrictDelete makes DeleteRecipe report unknown ids as ErrRecipeNotFound
// instead of succeeding silently.
func WithStrictDelete(strict bool) Option {
	return func(s *RecipeService) { s.strictDelete = strict }
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(st store.Store, ids IDGenerator, opts ...Option) *RecipeService {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	s := &RecipeService{
		store:  st,
		ids:    ids,
		logger: observability.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListRecipes returns every recipe in insertion order
func (s *RecipeService) ListRecipes(ctx context.Context) ([]model.Recipe, error) {
	recipes, err := s.store.List(ctx)
	if err != nil {
		s.metrics.IncOperation("list", observability.OutcomeError)
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if recipes == nil {
		recipes = []model.Recipe{}
	}
	s.metrics.IncOperation("list", observability.OutcomeOK)
	return recipes, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	recipe, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.fail("get", id, err)
	}
	s.metrics.IncOperation("get", observability.OutcomeOK)
	return &recipe, nil
}

// CreateRecipe validates input, assigns a fresh id and appends the recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, input model.RecipeInput) (*model.Recipe, error) {
	if err := input.Validate(); err != nil {
		return nil, s.fail("create", "", err)
	}

	var (
		stored model.Recipe
		err    error
	)
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		stored, err = s.store.Insert(ctx, input.Recipe(s.ids.NewID()))
		if !errors.Is(err, store.ErrDuplicateID) {
			break
		}
	}
	if err != nil {
		return nil, s.fail("create", "", err)
	}

	s.metrics.IncOperation("create", observability.OutcomeOK)
	s.refreshStored(ctx)
	observability.WithRecipe(s.logger, stored.ID).Info("recipe created", "name", stored.Name)
	return &stored, nil
}

// ReplaceRecipe overwrites name and ingredients of an existing recipe. The id
// never changes; a body id that differs from the path id is rejected.
func (s *RecipeService) ReplaceRecipe(ctx context.Context, id string, input model.RecipeInput) (*model.Recipe, error) {
	if err := input.Validate(); err != nil {
		return nil, s.fail("replace", id, err)
	}
	if input.ID != "" && input.ID != id {
		err := model.NewFieldError("id", fmt.Sprintf("request id %q does not match path id %q", input.ID, id))
		return nil, s.fail("replace", id, err)
	}

	stored, err := s.store.Replace(ctx, input.Recipe(id))
	if err != nil {
		return nil, s.fail("replace", id, err)
	}

	s.metrics.IncOperation("replace", observability.OutcomeOK)
	observability.WithRecipe(s.logger, id).Info("recipe replaced")
	return &stored, nil
}

// DeleteRecipe removes a recipe. Unknown ids succeed unless strict delete is on.
func (s *RecipeService) DeleteRecipe(ctx context.Context, id string) error {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return s.fail("delete", id, err)
	}
	if !removed && s.strictDelete {
		return s.fail("delete", id, store.ErrNotFound)
	}

	s.metrics.IncOperation("delete", observability.OutcomeOK)
	if removed {
		s.refreshStored(ctx)
		observability.WithRecipe(s.logger, id).Info("recipe deleted")
	}
	return nil
}

// Seed creates each input in order.
func (s *RecipeService) Seed(ctx context.Context, inputs []model.RecipeInput) error {
	for i, in := range inputs {
		if _, err := s.CreateRecipe(ctx, in); err != nil {
			return fmt.Errorf("seed recipe %d: %w", i, err)
		}
	}
	if len(inputs) > 0 {
		s.logger.Info("collection seeded", "count", len(inputs))
	}
	return nil
}

// fail records the outcome and translates store errors into service errors.
func (s *RecipeService) fail(operation, id string, err error) error {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		s.metrics.IncOperation(operation, observability.OutcomeInvalid)
		return err
	case errors.Is(err, store.ErrNotFound):
		s.metrics.IncOperation(operation, observability.OutcomeNotFound)
		return fmt.Errorf("%w: %s", ErrRecipeNotFound, id)
	default:
		s.metrics.IncOperation(operation, observability.OutcomeError)
		observability.WithRecipe(s.logger, id).Error("recipe operation failed", "operation", operation, "error", err)
		return fmt.Errorf("%s recipe: %w", operation, err)
	}
}

func (s *RecipeService) refreshStored(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if n, err := s.store.Count(ctx); err == nil {
		s.metrics.SetStored(n)
	}
}
