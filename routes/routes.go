package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casualfootball/cffa-backend/handlers"
	"github.com/casualfootball/cffa-backend/middleware"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Team    *handlers.TeamHandler
	Player  *handlers.PlayerHandler
	Game    *handlers.GameHandler
	Payment *handlers.PaymentHandler
	Summary *handlers.SummaryHandler
	User    *handlers.UserHandler
	Export  *handlers.ExportHandler
}

// SetupRoutes configures all API routes for the application. Creating a
// team only needs a valid token; everything else needs a team user, and
// changing or reading team-wide data needs a manager.
func SetupRoutes(router *gin.Engine, h *Handlers, tokens *middleware.JWTManager, users middleware.UserResolver) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	authed := v1.Group("", middleware.RequireToken(tokens))
	authed.POST("/teams", h.Team.CreateTeam)

	member := authed.Group("", middleware.RequireMember(users))
	{
		member.GET("/me", h.User.Me)
		member.GET("/me/summary", h.Summary.MySummary)
	}

	manager := member.Group("", middleware.RequireManager())
	{
		// Team settings
		manager.GET("/team", h.Team.GetTeam)
		manager.PUT("/team", h.Team.UpdateTeam)
		manager.DELETE("/team", h.Team.DeleteTeam)

		// Player endpoints
		manager.GET("/players", h.Player.ListPlayers)
		manager.POST("/players", h.Player.AddPlayer)
		manager.PUT("/players/:name", h.Player.EditPlayer)
		manager.POST("/players/:name/retire", h.Player.RetirePlayer)
		manager.POST("/players/:name/reactivate", h.Player.ReactivatePlayer)
		manager.GET("/players/:name/statement", h.Summary.PlayerStatement)

		// Game endpoints
		manager.GET("/games", h.Game.ListGames)
		manager.GET("/games/recent", h.Game.RecentGames)
		manager.GET("/games/defaults", h.Game.NewGameDefaults)
		manager.GET("/games/:id", h.Game.GetGame)
		manager.POST("/games", h.Game.AddGame)
		manager.PUT("/games/:id", h.Game.EditGame)
		manager.DELETE("/games/:id", h.Game.DeleteGame)

		// Payment endpoints
		manager.GET("/payments", h.Payment.ListPayments)
		manager.GET("/payments/recent", h.Payment.RecentPayments)
		manager.POST("/payments", h.Payment.CreatePayment)
		manager.GET("/payments/autopay", h.Payment.PreviewAutopay)
		manager.POST("/payments/autopay", h.Payment.ConfirmAutopay)

		manager.GET("/summary", h.Summary.TeamSummary)

		// Access management
		manager.GET("/users", h.User.ListUsers)
		manager.POST("/users", h.User.AddUser)
		manager.PUT("/users/:id", h.User.EditUser)

		// Export and import
		manager.GET("/export/excel", h.Export.ExportExcel)
		manager.GET("/export/archive", h.Export.ExportArchive)
		manager.POST("/import/excel", h.Export.ImportExcel)
	}
}
