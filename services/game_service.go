package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/ledger"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/utils"
)

// GameService handles game business logic
type GameService struct {
	games   GameStore
	players PlayerStore
	now     Clock
}

// NewGameService creates a new game service
func NewGameService(games GameStore, players PlayerStore) *GameService {
	return &GameService{games: games, players: players, now: systemClock}
}

// WithClock replaces the clock used for new-game defaults
func (s *GameService) WithClock(now Clock) *GameService {
	s.now = now
	return s
}

// GameDefaults pre-fills the add-game form
type GameDefaults struct {
	Date         string                   `json:"date"`
	Booker       string                   `json:"booker"`
	Participants []models.GameParticipant `json:"participants"`
}

// ListGames returns every game with its label, newest first
func (s *GameService) ListGames(ctx context.Context, teamID string) ([]GameListItem, error) {
	games, err := s.games.ListGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	return recentGames(games, time.Time{}), nil
}

// GetGame retrieves one game
func (s *GameService) GetGame(ctx context.Context, teamID, gameID string) (*models.Game, error) {
	return s.games.GetGame(ctx, teamID, gameID)
}

// NewGameDefaults lists every active player, ticks those who played the
// most recent game and makes the caller the booker
func (s *GameService) NewGameDefaults(ctx context.Context, teamID, caller string) (*GameDefaults, error) {
	players, err := s.players.ListPlayers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	games, err := s.games.ListGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	playedLast := make(map[string]bool)
	if len(games) > 0 {
		last := slices.MaxFunc(games, func(a, b models.Game) int { return a.Date.Compare(b.Date) })
		for _, name := range last.PlayedNames() {
			playedLast[name] = true
		}
	}

	caller = utils.NormalizeName(caller)
	defaults := &GameDefaults{
		Date:         s.now().Format(utils.DateLayout),
		Booker:       caller,
		Participants: []models.GameParticipant{},
	}
	callerListed := false
	for _, p := range players {
		if p.Retired {
			continue
		}
		defaults.Participants = append(defaults.Participants, models.GameParticipant{
			Name:   p.Name,
			Played: playedLast[p.Name],
			Booker: p.Name == caller,
		})
		callerListed = callerListed || p.Name == caller
	}
	if caller != "" && !callerListed {
		defaults.Participants = append(defaults.Participants, models.GameParticipant{Name: caller, Booker: true})
	}
	return defaults, nil
}

// AddGame validates and stores a new game. Participants who are not yet
// players of the team are created.
func (s *GameService) AddGame(ctx context.Context, teamID string, req *models.GameRequest) (*models.Game, error) {
	game, err := BuildGame(req)
	if err != nil {
		return nil, err
	}
	game.TeamID = teamID

	if err := s.games.CreateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to store game: %w", err)
	}

	log.Info().Str("team", teamID).Str("game", game.ID).
		Str("cost", utils.FormatMoney(game.TotalCost)).Int("heads", game.HeadCount()).
		Msg("game added")
	return game, nil
}

// EditGame replaces an existing game's date, cost and participants
func (s *GameService) EditGame(ctx context.Context, teamID, gameID string, req *models.GameRequest) (*models.Game, error) {
	if _, err := s.games.GetGame(ctx, teamID, gameID); err != nil {
		return nil, err
	}

	game, err := BuildGame(req)
	if err != nil {
		return nil, err
	}
	game.ID = gameID
	game.TeamID = teamID

	if err := s.games.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	log.Info().Str("team", teamID).Str("game", gameID).Msg("game edited")
	return game, nil
}

// DeleteGame removes a game; balances follow on the next read
func (s *GameService) DeleteGame(ctx context.Context, teamID, gameID string) error {
	if err := s.games.DeleteGame(ctx, teamID, gameID); err != nil {
		return err
	}
	log.Info().Str("team", teamID).Str("game", gameID).Msg("game deleted")
	return nil
}

// BuildGame turns an add or edit request into a game, collecting every
// violated constraint. Entries that neither played, brought guests nor
// booked are dropped. Names are title-cased.
func BuildGame(req *models.GameRequest) (*models.Game, error) {
	var v utils.Violations

	date, err := time.Parse(utils.DateLayout, req.Date)
	if err != nil {
		v.Add("date", "must be in YYYY-MM-DD format")
	}
	v.RequirePositive(req.TotalCost, "totalCost")
	v.RequirePennies(req.TotalCost, "totalCost")

	game := &models.Game{
		Date:         date,
		TotalCost:    req.TotalCost,
		Participants: []models.GameParticipant{},
	}

	seen := make(map[string]bool)
	bookers := 0
	for i, p := range req.Participants {
		p.Name = utils.NormalizeName(p.Name)
		field := fmt.Sprintf("participants[%d]", i)

		if p.Guests < 0 {
			v.Add(field, "guests cannot be negative")
		}
		if !p.Played && !p.Booker && p.Guests <= 0 {
			continue
		}
		if p.Name == "" {
			v.Add(field, "name is required")
			continue
		}
		if seen[p.Name] {
			v.Add(field, "%s is listed more than once", p.Name)
			continue
		}
		seen[p.Name] = true

		if p.Booker {
			bookers++
			game.Booker = p.Name
		}
		game.Participants = append(game.Participants, p)
	}

	if bookers != 1 {
		v.Add("participants", "exactly one booker is required, got %d", bookers)
	}
	heads := game.HeadCount()
	if heads <= 0 {
		v.Add("participants", "at least one player or guest is required")
	}
	if req.ExpectedPlayers > 0 && heads != req.ExpectedPlayers {
		v.Add("expectedPlayers", "expected %d players but %d were entered", req.ExpectedPlayers, heads)
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	if _, err := ledger.SplitGame(*game); err != nil {
		return nil, err
	}
	return game, nil
}
