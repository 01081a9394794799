package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-store/backend/internal/model"
	"github.com/pageza/recipe-store/backend/internal/service"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// BadRequestError marks a request that could not be decoded.
type BadRequestError struct {
	Err error
}

func (e *BadRequestError) Error() string { return "invalid request body: " + e.Err.Error() }
func (e *BadRequestError) Unwrap() error { return e.Err }

// ErrorHandler turns panics and errors attached with c.Error into JSON error
// responses. Handlers attach the error and return without writing.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic serving request", "panic", rec, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		status, body := errorResponse(c.Errors.Last().Err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", "path", c.Request.URL.Path, "error", c.Errors.Last().Err)
		}
		c.JSON(status, body)
	}
}

func errorResponse(err error) (int, ErrorResponse) {
	var verr *model.ValidationError
	var berr *BadRequestError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: verr.Fields}
	case errors.As(err, &berr):
		return http.StatusBadRequest, ErrorResponse{Error: berr.Error()}
	case errors.Is(err, service.ErrRecipeNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Recipe not found"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"}
	}
}
