package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cosmic-nutrition/backend/internal/domain"
	"github.com/pageza/cosmic-nutrition/backend/internal/middleware"
	"github.com/pageza/cosmic-nutrition/backend/internal/service"
	"github.com/pageza/cosmic-nutrition/backend/internal/types"
)

// UserHandler mirrors identity provider accounts into the local users table.
type UserHandler struct {
	users  service.IUserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.IUserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// RegisterRoutes registers the user routes
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.POST("/sync", h.SyncUser)
	}
}

// SyncUser creates the caller's user row on first login.
func (h *UserHandler) SyncUser(c *gin.Context) {
	var req types.SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.MessageResponse{Message: "Auth0 ID and email are required."})
		return
	}

	result, err := h.users.Sync(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			respondError(c, err, "Forbidden: Token does not match user ID.")
		case errors.Is(err, domain.ErrValidation):
			respondError(c, err, "Auth0 ID and email are required.")
		default:
			h.logger.ErrorContext(c.Request.Context(), "user sync failed", slog.String("error", err.Error()))
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, types.MessageResponse{Message: "Server error during user synchronization."})
		}
		return
	}

	if result.Raced {
		c.JSON(http.StatusOK, types.SyncUserResponse{Message: "User already exists, sync successful."})
		return
	}
	c.JSON(http.StatusOK, types.SyncUserResponse{Message: "User synced successfully.", User: result.User})
}
