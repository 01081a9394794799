package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-store/backend/internal/middleware"
	"github.com/pageza/recipe-store/backend/internal/model"
	"github.com/pageza/recipe-store/backend/internal/service"
)

type RecipeHandler struct {
	recipeService service.IRecipeService
}

func NewRecipeHandler(recipeService service.IRecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

// RegisterRoutes mounts the recipe routes. Mutating routes run behind guard,
// which may be nil.
func (h *RecipeHandler) RegisterRoutes(router gin.IRouter, guard gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if guard == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{guard, handler}
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", guarded(h.CreateRecipe)...)
		recipes.PUT("/:id", guarded(h.ReplaceRecipe)...)
		recipes.DELETE("/:id", guarded(h.DeleteRecipe)...)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.recipeService.ListRecipes(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var input model.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(&middleware.BadRequestError{Err: err})
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, recipe)
}

func (h *RecipeHandler) ReplaceRecipe(c *gin.Context) {
	var input model.RecipeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		_ = c.Error(&middleware.BadRequestError{Err: err})
		return
	}

	recipe, err := h.recipeService.ReplaceRecipe(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipeService.DeleteRecipe(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
