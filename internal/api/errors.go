package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cosmic-nutrition/backend/internal/domain"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
)

// errorStatus maps a service error to its HTTP status.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"message": ...} with the status for err. Validation
// errors report their own message; everything else uses message.
func respondError(c *gin.Context, err error, message string) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		message = verr.Message
	}
	_ = c.Error(err)
	c.JSON(errorStatus(err), types.MessageResponse{Message: message})
}
