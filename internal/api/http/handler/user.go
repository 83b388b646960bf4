package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/authkeeper-server/internal/logger"
	"github.com/dtroode/authkeeper-server/internal/model"
)

// UserService defines account lookups for authenticated callers.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (model.PublicUser, error)
	ListUsers(ctx context.Context, requester model.AccessClaims) ([]model.PublicUser, error)
}

// User handles account endpoints behind the authenticate middleware.
type User struct {
	userService    UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewUser(userService UserService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Me returns the caller's own profile.
func (h *User) Me(c *gin.Context) {
	claims, ok := h.contextManager.GetClaimsFromContext(c.Request.Context())
	if !ok {
		handleError(c, h.logger, model.ErrUnauthorized)
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// List returns every active account. Admins only.
func (h *User) List(c *gin.Context) {
	claims, ok := h.contextManager.GetClaimsFromContext(c.Request.Context())
	if !ok {
		handleError(c, h.logger, model.ErrUnauthorized)
		return
	}

	users, err := h.userService.ListUsers(c.Request.Context(), claims)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}
