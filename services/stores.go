package services

import (
	"context"
	"time"

	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/repository"
)

// TeamStore persists teams
type TeamStore interface {
	CreateTeam(ctx context.Context, team *models.Team, manager *models.User) error
	GetTeam(ctx context.Context, teamID string) (*models.Team, error)
	UpdateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, teamID string) error
}

// PlayerStore persists players
type PlayerStore interface {
	ListPlayers(ctx context.Context, teamID string) ([]models.Player, error)
	GetPlayer(ctx context.Context, teamID, name string) (*models.Player, error)
	CreatePlayer(ctx context.Context, player *models.Player) error
	UpdatePlayer(ctx context.Context, oldName string, player *models.Player) error
}

// GameStore persists games
type GameStore interface {
	ListGames(ctx context.Context, teamID string) ([]models.Game, error)
	GetGame(ctx context.Context, teamID, gameID string) (*models.Game, error)
	CreateGame(ctx context.Context, game *models.Game) error
	UpdateGame(ctx context.Context, game *models.Game) error
	DeleteGame(ctx context.Context, teamID, gameID string) error
}

// PaymentStore persists payments
type PaymentStore interface {
	ListPayments(ctx context.Context, teamID string) ([]models.Payment, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	HasPaymentForGame(ctx context.Context, teamID, gameID string) (bool, error)
}

// UserStore persists access records
type UserStore interface {
	ListUsers(ctx context.Context, teamID string) ([]models.User, error)
	GetUserByAuthID(ctx context.Context, authID string) (*models.User, error)
	GetUser(ctx context.Context, teamID, userID string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
}

// ImportStore replaces a team's ledger wholesale
type ImportStore interface {
	ReplaceTeamData(ctx context.Context, teamID string, data *repository.TeamData) error
}

// Clock returns the current time; tests pin it
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
