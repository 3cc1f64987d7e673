package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/taskflow/internal/services"
)

var errInvalidRequestBody = errors.New("invalid request body")

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

// abortInternal surfaces only a generic message plus a timestamp;
// the detail stays in the server log.
func abortInternal(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":     "an unexpected error occurred",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

func newValidationError(message string) apiError {
	return newAPIError(http.StatusUnprocessableEntity, message)
}

// abortResourceError maps the service error taxonomy to its HTTP
// shape. Existence is checked before ownership in the services, so
// an absent resource is 404 and a foreign one is 403.
func abortResourceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrCategoryNotFound):
		abort(c, newNotFoundError(err.Error()))
	case errors.Is(err, services.ErrForbidden):
		abort(c, newForbiddenError(err.Error()))
	case errors.Is(err, services.ErrCategoryNameTaken):
		abort(c, newConflictError(err.Error()))
	default:
		abortInternal(c)
	}
}
