// server/internal/api/handlers/user_handler.go
package handlers

import (
	"context"
	"net/http"

	"fsic-records-api-server/internal/models"
	"fsic-records-api-server/internal/service"

	"github.com/gin-gonic/gin"
)

// Users is implemented by service.UserService.
type Users interface {
	Create(ctx context.Context, in service.CreateUserInput) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, id string, in service.UpdateUserInput) error
	ChangePassword(ctx context.Context, id, password string) error
	Delete(ctx context.Context, id string) error
}

type UserHandler struct {
	Service Users
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

// CreateUser registers an account. The role follows the first-user policy
// and cannot be chosen by the caller.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var in service.CreateUserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		respondActionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User created successfully",
		"data":    u,
	})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Service.List(c.Request.Context())
	if err != nil {
		respondReadError(c, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondData(c, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	u, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondReadError(c, err)
		return
	}
	respondData(c, u)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	var in service.UpdateUserInput
	if !bindJSON(c, &in) {
		return
	}
	if err := h.Service.Update(c.Request.Context(), c.Param("id"), in); err != nil {
		respondActionError(c, err)
		return
	}
	respondAction(c, http.StatusOK, "User updated")
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Service.ChangePassword(c.Request.Context(), c.Param("id"), req.Password); err != nil {
		respondActionError(c, err)
		return
	}
	respondAction(c, http.StatusOK, "Password changed")
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondActionError(c, err)
		return
	}
	respondAction(c, http.StatusOK, "User deleted")
}
