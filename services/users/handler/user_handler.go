//go:generate mockgen -source=user_handler.go -destination=mock_user_service.go -package=handler

package handler

import (
	"context"
	"net/http"

	"auction-marketplace/internal/models"
	"auction-marketplace/services/helpers"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
)

type UserServiceInterface interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
}

type UserHandler struct {
	service UserServiceInterface
}

func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUserHandler handles POST /api/users
func (h *UserHandler) CreateUserHandler(c *gin.Context) {
	var req helpers.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateUserHandler", err)
		return
	}

	user, err := h.service.CreateUser(c.Request.Context(), req.ToUser())
	if err != nil {
		helpers.RespondError(c, "CreateUserHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user, "user created successfully")
	helpers.LogSuccess("CreateUserHandler", "user created successfully", map[string]any{
		"user_id":  user.ID.Hex(),
		"username": user.Username,
	})
}

// GetUserHandler handles GET /api/users/:id
func (h *UserHandler) GetUserHandler(c *gin.Context) {
	userID := c.Param("id")
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "GetUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "")
}
