package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/services"
	"github.com/casualfootball/cffa-backend/utils"
)

// UserHandler manages team access
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me handles GET /me
func (h *UserHandler) Me(c *gin.Context) {
	utils.HandleSuccess(c, middleware.CurrentUser(c))
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, users)
}

// AddUser handles POST /users
func (h *UserHandler) AddUser(c *gin.Context) {
	var req models.UserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.AddUser(c.Request.Context(), middleware.TeamID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, user)
}

// EditUser handles PUT /users/:id
func (h *UserHandler) EditUser(c *gin.Context) {
	var req models.UserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.EditUser(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, user)
}
