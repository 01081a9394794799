package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-store/backend/internal/model"
	"github.com/pageza/recipe-store/backend/internal/observability"
	"github.com/pageza/recipe-store/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWithError(t *testing.T, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Use(ErrorHandler(observability.Discard()))
	router.GET("/", handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation",
			err:        model.NewFieldError("name", "name is required"),
			wantStatus: http.StatusBadRequest,
			wantError:  "validation failed",
		},
		{
			name:       "bad request",
			err:        &BadRequestError{Err: errors.New("unexpected EOF")},
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body: unexpected EOF",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("%w: abc", service.ErrRecipeNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "Recipe not found",
		},
		{
			name:       "internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithError(t, func(c *gin.Context) {
				_ = c.Error(tt.err)
			})

			assert.Equal(t, tt.wantStatus, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestErrorHandlerValidationDetails(t *testing.T) {
	w := serveWithError(t, func(c *gin.Context) {
		_ = c.Error(model.NewFieldError("ingredients", "ingredients is required"))
	})

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"ingredients": "ingredients is required"}, body.Details)
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	w := serveWithError(t, func(c *gin.Context) {
		panic("kaboom")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
}

func TestErrorHandlerLeavesWrittenResponses(t *testing.T) {
	w := serveWithError(t, func(c *gin.Context) {
		c.JSON(http.StatusTeapot, gin.H{"tea": true})
		_ = c.Error(errors.New("late"))
	})

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.JSONEq(t, `{"tea":true}`, w.Body.String())
}
