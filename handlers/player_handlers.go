package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/services"
	"github.com/casualfootball/cffa-backend/utils"
)

// PlayerHandler handles player-related HTTP requests
type PlayerHandler struct {
	playerService *services.PlayerService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerService *services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// ListPlayers handles GET /players?filter=all|active|retired
func (h *PlayerHandler) ListPlayers(c *gin.Context) {
	players, err := h.playerService.ListPlayers(c.Request.Context(), middleware.TeamID(c), c.Query("filter"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, players)
}

// AddPlayer handles POST /players
func (h *PlayerHandler) AddPlayer(c *gin.Context) {
	var req models.AddPlayerRequest
	if !bindJSON(c, &req) {
		return
	}

	player, err := h.playerService.AddPlayer(c.Request.Context(), middleware.TeamID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, player)
}

// EditPlayer handles PUT /players/:name
func (h *PlayerHandler) EditPlayer(c *gin.Context) {
	var req models.EditPlayerRequest
	if !bindJSON(c, &req) {
		return
	}

	player, err := h.playerService.EditPlayer(c.Request.Context(), middleware.TeamID(c), c.Param("name"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, player)
}

// RetirePlayer handles POST /players/:name/retire
func (h *PlayerHandler) RetirePlayer(c *gin.Context) {
	h.setRetired(c, true)
}

// ReactivatePlayer handles POST /players/:name/reactivate
func (h *PlayerHandler) ReactivatePlayer(c *gin.Context) {
	h.setRetired(c, false)
}

func (h *PlayerHandler) setRetired(c *gin.Context, retired bool) {
	player, err := h.playerService.SetRetired(c.Request.Context(), middleware.TeamID(c), c.Param("name"), retired)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, player)
}
