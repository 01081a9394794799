package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// RecipeInput is the request body accepted by create and replace. ID is only
// meaningful on replace, where it must match the path id when present.
type RecipeInput struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Ingredients []string `json:"ingredients" yaml:"ingredients"`
}

// Validate checks that name is present and non-blank and that ingredients
// is present. An empty ingredient list is allowed, a missing one is not.
func (in RecipeInput) Validate() error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name,
			validation.Required.Error("name is required"),
			validation.By(notBlank),
		),
		validation.Field(&in.Ingredients,
			validation.NotNil.Error("ingredients is required"),
		),
	)
	if err == nil {
		return nil
	}
	return newValidationError(err)
}

// Recipe builds the stored form of the input under the given id.
func (in RecipeInput) Recipe(id string) Recipe {
	ingredients := make([]string, len(in.Ingredients))
	copy(ingredients, in.Ingredients)
	return Recipe{ID: id, Name: in.Name, Ingredients: ingredients}
}

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("name must not be blank")
	}
	return nil
}

// ValidationError reports which fields of a request were rejected.
type ValidationError struct {
	Fields map[string]string
}

// NewFieldError returns a ValidationError for a single field.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func newValidationError(err error) *ValidationError {
	fields := make(map[string]string)
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			fields[field] = fieldErr.Error()
		}
	} else {
		fields["body"] = err.Error()
	}
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
