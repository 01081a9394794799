package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipe-store/backend/internal/model"
)

var _ Store = (*SQLStore)(nil)

// recipeRow is the table layout. Seq preserves insertion order.
type recipeRow struct {
	Seq         uint64           `gorm:"primaryKey;autoIncrement"`
	RecipeID    string           `gorm:"column:recipe_id;size:64;not null;uniqueIndex"`
	Name        string           `gorm:"size:255;not null"`
	Ingredients model.StringList `gorm:"type:text;not null;default:'[]'"`
}

func (recipeRow) TableName() string { return "recipes" }

func (r recipeRow) recipe() model.Recipe {
	ingredients := []string(r.Ingredients)
	if ingredients == nil {
		ingredients = []string{}
	}
	return model.Recipe{ID: r.RecipeID, Name: r.Name, Ingredients: ingredients}
}

// SQLStore keeps recipes in a gorm database. It is meant to be backed by an
// in-memory SQLite database, see database.OpenSQLite.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore migrates the recipes table and returns a store over db.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&recipeRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate recipes table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) List(ctx context.Context) ([]model.Recipe, error) {
	var rows []recipeRow
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]model.Recipe, len(rows))
	for i := range rows {
		out[i] = rows[i].recipe()
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (model.Recipe, error) {
	var row recipeRow
	err := s.db.WithContext(ctx).Where("recipe_id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Recipe{}, ErrNotFound
	}
	if err != nil {
		return model.Recipe{}, err
	}
	return row.recipe(), nil
}

func (s *SQLStore) Insert(ctx context.Context, recipe model.Recipe) (model.Recipe, error) {
	row := recipeRow{
		RecipeID:    recipe.ID,
		Name:        recipe.Name,
		Ingredients: model.StringList(recipe.Ingredients),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Recipe{}, ErrDuplicateID
		}
		return model.Recipe{}, err
	}
	return row.recipe(), nil
}

func (s *SQLStore) Replace(ctx context.Context, recipe model.Recipe) (model.Recipe, error) {
	result := s.db.WithContext(ctx).
		Model(&recipeRow{}).
		Where("recipe_id = ?", recipe.ID).
		Updates(map[string]interface{}{
			"name":        recipe.Name,
			"ingredients": model.StringList(recipe.Ingredients),
		})
	if result.Error != nil {
		return model.Recipe{}, result.Error
	}
	if result.RowsAffected == 0 {
		return model.Recipe{}, ErrNotFound
	}
	return s.Get(ctx, recipe.ID)
}

func (s *SQLStore) Delete(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("recipe_id = ?", id).Delete(&recipeRow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&recipeRow{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
