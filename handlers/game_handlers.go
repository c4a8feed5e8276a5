package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/services"
	"github.com/casualfootball/cffa-backend/utils"
)

// GameHandler handles game-related HTTP requests
type GameHandler struct {
	gameService   *services.GameService
	ledgerService *services.LedgerService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameService *services.GameService, ledgerService *services.LedgerService) *GameHandler {
	return &GameHandler{gameService: gameService, ledgerService: ledgerService}
}

// ListGames handles GET /games
func (h *GameHandler) ListGames(c *gin.Context) {
	games, err := h.gameService.ListGames(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, games)
}

// RecentGames handles GET /games/recent
func (h *GameHandler) RecentGames(c *gin.Context) {
	games, err := h.ledgerService.RecentGames(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, games)
}

// GetGame handles GET /games/:id
func (h *GameHandler) GetGame(c *gin.Context) {
	game, err := h.gameService.GetGame(c.Request.Context(), middleware.TeamID(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, game)
}

// NewGameDefaults handles GET /games/defaults
func (h *GameHandler) NewGameDefaults(c *gin.Context) {
	defaults, err := h.gameService.NewGameDefaults(c.Request.Context(), middleware.TeamID(c), middleware.CurrentUser(c).Name)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, defaults)
}

// AddGame handles POST /games
func (h *GameHandler) AddGame(c *gin.Context) {
	var req models.GameRequest
	if !bindJSON(c, &req) {
		return
	}

	game, err := h.gameService.AddGame(c.Request.Context(), middleware.TeamID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleCreated(c, game)
}

// EditGame handles PUT /games/:id
func (h *GameHandler) EditGame(c *gin.Context) {
	var req models.GameRequest
	if !bindJSON(c, &req) {
		return
	}

	game, err := h.gameService.EditGame(c.Request.Context(), middleware.TeamID(c), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, game)
}

// DeleteGame handles DELETE /games/:id
func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.gameService.DeleteGame(c.Request.Context(), middleware.TeamID(c), c.Param("id")); err != nil {
		utils.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
