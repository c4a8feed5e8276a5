package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/casualfootball/cffa-backend/middleware"
	"github.com/casualfootball/cffa-backend/services"
	"github.com/casualfootball/cffa-backend/utils"
)

// SummaryHandler serves balances and statements
type SummaryHandler struct {
	ledgerService *services.LedgerService
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(ledgerService *services.LedgerService) *SummaryHandler {
	return &SummaryHandler{ledgerService: ledgerService}
}

// TeamSummary handles GET /summary
func (h *SummaryHandler) TeamSummary(c *gin.Context) {
	summary, err := h.ledgerService.TeamSummary(c.Request.Context(), middleware.TeamID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, summary)
}

// PlayerStatement handles GET /players/:name/statement
func (h *SummaryHandler) PlayerStatement(c *gin.Context) {
	statement, err := h.ledgerService.PlayerStatement(c.Request.Context(), middleware.TeamID(c), c.Param("name"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, statement)
}

// MySummary handles GET /me/summary for any member, players included
func (h *SummaryHandler) MySummary(c *gin.Context) {
	summary, err := h.ledgerService.PlayerSelfSummary(c.Request.Context(), middleware.CurrentUser(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, summary)
}
