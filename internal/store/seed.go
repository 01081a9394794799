package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pageza/recipe-store/backend/internal/model"
)

// SeedFile is the layout of a YAML seed file:
//
//	recipes:
//	  - name: boiled white rice
//	    ingredients: ["1 cup white rice", "2 cups water"]
type SeedFile struct {
	Recipes []model.RecipeInput `yaml:"recipes"`
}

// DefaultSeed returns the recipes a fresh collection starts with.
func DefaultSeed() []model.RecipeInput {
	return []model.RecipeInput{
		{
			Name:        "boiled white rice",
			Ingredients: []string{"1 cup white rice", "2 cups water", "pinch of salt"},
		},
		{
			Name:        "milkshake",
			Ingredients: []string{"2 tbsp cocoa", "2 cups vanilla ice cream", "1 cup milk"},
		},
	}
}

// LoadSeed reads and validates a YAML seed file.
func LoadSeed(path string) ([]model.RecipeInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes seed YAML. Every entry must pass RecipeInput.Validate.
func ParseSeed(data []byte) ([]model.RecipeInput, error) {
	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	for i, in := range file.Recipes {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("seed recipe %d: %w", i, err)
		}
	}
	return file.Recipes, nil
}
