package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/services"
	"github.com/casualfootball/cffa-backend/utils"
)

// TeamHandler handles team onboarding and settings
type TeamHandler struct {
	teamService *services.TeamService
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// CreateTeam handles POST /teams. The caller becomes the team's manager.
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	var req models.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, manager, err := h.teamService.CreateTeam(c.Request.Context(), &req, middleware.AuthID(c), middleware.AuthName(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.HandleCreated(c, gin.H{"team": team, "user": manager})
}

// GetTeam handles GET /team
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, err := h.teamService.GetTeam(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, team)
}

// UpdateTeam handles PUT /team
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	var req models.UpdateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.UpdateTeam(c.Request.Context(), middleware.TeamID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, team)
}

// DeleteTeam handles DELETE /team
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	if err := h.teamService.DeleteTeam(c.Request.Context(), middleware.TeamID(c)); err != nil {
		utils.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
