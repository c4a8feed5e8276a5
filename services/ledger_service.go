package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/casualfootball/cffa-backend/config"
	"github.com/casualfootball/cffa-backend/ledger"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/utils"
)

// LedgerService loads a team's records and runs them through the ledger
type LedgerService struct {
	players  PlayerStore
	games    GameStore
	payments PaymentStore
	policy   ledger.RetirementPolicy
	recent   ledger.RetirementPolicy
	now      Clock
}

// NewLedgerService creates a new ledger service
func NewLedgerService(players PlayerStore, games GameStore, payments PaymentStore, cfg config.LedgerConfig) *LedgerService {
	return &LedgerService{
		players:  players,
		games:    games,
		payments: payments,
		policy:   ledger.RetirementPolicy{InactivityMonths: cfg.RetirementMonths},
		recent:   ledger.RetirementPolicy{InactivityMonths: cfg.RecentMonths},
		now:      systemClock,
	}
}

// WithClock replaces the clock used for retirement and recent windows
func (s *LedgerService) WithClock(now Clock) *LedgerService {
	s.now = now
	return s
}

// Snapshot is everything the ledger needs for one team
type Snapshot struct {
	Players  []models.Player
	Games    []models.Game
	Payments []models.Payment
}

// TeamSummaryResponse is the manager's dashboard
type TeamSummaryResponse struct {
	*ledger.TeamSummary
	ActivePlayers              []ledger.PlayerSummary `json:"activePlayers"`
	RecentGames                []GameListItem         `json:"recentGames"`
	RecentPayments             []models.Payment       `json:"recentPayments"`
	RetirementRecommendations  []string               `json:"retirementRecommendations"`
	RetirementInactivityMonths int                    `json:"retirementInactivityMonths"`
}

// PlayerSelfSummary is what a player-role user sees
type PlayerSelfSummary struct {
	Player    ledger.PlayerSummary `json:"player"`
	Statement *ledger.Statement    `json:"statement"`
}

// GameListItem pairs a game with its picker label
type GameListItem struct {
	models.Game
	Label string `json:"label"`
}

// Snapshot loads a fresh copy of the team's players, games and payments
func (s *LedgerService) Snapshot(ctx context.Context, teamID string) (*Snapshot, error) {
	defer newrelic.FromContext(ctx).StartSegment("LedgerService/Snapshot").End()

	players, err := s.players.ListPlayers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	games, err := s.games.ListGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	payments, err := s.payments.ListPayments(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	return &Snapshot{Players: players, Games: games, Payments: payments}, nil
}

// TeamSummary builds the manager's dashboard for a team
func (s *LedgerService) TeamSummary(ctx context.Context, teamID string) (*TeamSummaryResponse, error) {
	snap, err := s.Snapshot(ctx, teamID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary, err := ledger.SummarizeTeam(snap.Players, snap.Games, snap.Payments, s.policy, now)
	if err != nil {
		return nil, err
	}

	resp := &TeamSummaryResponse{
		TeamSummary:                summary,
		ActivePlayers:              summary.Active(),
		RecentGames:                recentGames(snap.Games, s.recent.Cutoff(now)),
		RecentPayments:             recentPayments(snap.Payments, s.recent.Cutoff(now)),
		RetirementRecommendations:  []string{},
		RetirementInactivityMonths: s.policy.InactivityMonths,
	}
	if resp.ActivePlayers == nil {
		resp.ActivePlayers = []ledger.PlayerSummary{}
	}
	for _, row := range resp.ActivePlayers {
		if row.RetirementEligible {
			resp.RetirementRecommendations = append(resp.RetirementRecommendations, row.Name)
		}
	}
	return resp, nil
}

// PlayerStatement returns one player's chronological ledger
func (s *LedgerService) PlayerStatement(ctx context.Context, teamID, name string) (*ledger.Statement, error) {
	name = utils.NormalizeName(name)
	if _, err := s.players.GetPlayer(ctx, teamID, name); err != nil {
		return nil, err
	}

	snap, err := s.Snapshot(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return ledger.BuildPlayerStatement(name, snap.Games, snap.Payments)
}

// PlayerSelfSummary returns the summary row and statement of the player a
// user is linked to by name
func (s *LedgerService) PlayerSelfSummary(ctx context.Context, user *models.User) (*PlayerSelfSummary, error) {
	name := utils.NormalizeName(user.Name)
	snap, err := s.Snapshot(ctx, user.TeamID)
	if err != nil {
		return nil, err
	}

	summary, err := ledger.SummarizeTeam(snap.Players, snap.Games, snap.Payments, s.policy, s.now())
	if err != nil {
		return nil, err
	}
	row, ok := summary.Find(name)
	if !ok {
		return nil, utils.NewNotFoundError("Player " + name)
	}
	statement, err := ledger.BuildPlayerStatement(name, snap.Games, snap.Payments)
	if err != nil {
		return nil, err
	}
	return &PlayerSelfSummary{Player: row, Statement: statement}, nil
}

// RecentGames returns games inside the recent window, newest first
func (s *LedgerService) RecentGames(ctx context.Context, teamID string) ([]GameListItem, error) {
	games, err := s.games.ListGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}
	return recentGames(games, s.recent.Cutoff(s.now())), nil
}

// RecentPayments returns payments inside the recent window, newest first
func (s *LedgerService) RecentPayments(ctx context.Context, teamID string) ([]models.Payment, error) {
	payments, err := s.payments.ListPayments(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	return recentPayments(payments, s.recent.Cutoff(s.now())), nil
}

func recentGames(games []models.Game, since time.Time) []GameListItem {
	items := []GameListItem{}
	for _, g := range games {
		if !g.Date.Before(since) {
			items = append(items, GameListItem{Game: g, Label: g.Label()})
		}
	}
	slices.SortStableFunc(items, func(a, b GameListItem) int {
		return b.Date.Compare(a.Date)
	})
	return items
}

func recentPayments(payments []models.Payment, since time.Time) []models.Payment {
	recent := []models.Payment{}
	for _, p := range payments {
		if !p.Date.Before(since) {
			recent = append(recent, p)
		}
	}
	slices.SortStableFunc(recent, func(a, b models.Payment) int {
		return b.Date.Compare(a.Date)
	})
	return recent
}
