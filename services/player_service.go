package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/utils"
)

// Player list filters
const (
	PlayerFilterAll     = "all"
	PlayerFilterActive  = "active"
	PlayerFilterRetired = "retired"
)

// PlayerService handles player business logic
type PlayerService struct {
	players PlayerStore
}

// NewPlayerService creates a new player service
func NewPlayerService(players PlayerStore) *PlayerService {
	return &PlayerService{players: players}
}

// ListPlayers returns the team's players matching the filter
func (s *PlayerService) ListPlayers(ctx context.Context, teamID, filter string) ([]models.Player, error) {
	players, err := s.players.ListPlayers(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}

	switch filter {
	case "", PlayerFilterAll:
		return players, nil
	case PlayerFilterActive, PlayerFilterRetired:
		wantRetired := filter == PlayerFilterRetired
		filtered := []models.Player{}
		for _, p := range players {
			if p.Retired == wantRetired {
				filtered = append(filtered, p)
			}
		}
		return filtered, nil
	default:
		return nil, utils.NewBadRequestError("filter must be one of all, active, retired")
	}
}

// AddPlayer creates a player under a title-cased, team-unique name
func (s *PlayerService) AddPlayer(ctx context.Context, teamID string, req *models.AddPlayerRequest) (*models.Player, error) {
	player := &models.Player{
		TeamID:  teamID,
		Name:    utils.NormalizeName(req.Name),
		Comment: req.Comment,
	}

	var v utils.Violations
	v.RequireText(player.Name, "name")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.players.CreatePlayer(ctx, player); err != nil {
		return nil, err
	}
	log.Info().Str("team", teamID).Str("player", player.Name).Msg("player added")
	return player, nil
}

// EditPlayer renames a player, changes their comment or retired flag. A
// rename is applied to every game and payment.
func (s *PlayerService) EditPlayer(ctx context.Context, teamID, name string, req *models.EditPlayerRequest) (*models.Player, error) {
	name = utils.NormalizeName(name)
	if _, err := s.players.GetPlayer(ctx, teamID, name); err != nil {
		return nil, err
	}

	player := &models.Player{
		TeamID:  teamID,
		Name:    utils.NormalizeName(req.Name),
		Retired: req.Retired,
		Comment: req.Comment,
	}
	var v utils.Violations
	v.RequireText(player.Name, "name")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := s.players.UpdatePlayer(ctx, name, player); err != nil {
		return nil, err
	}
	if name != player.Name {
		log.Info().Str("team", teamID).Str("from", name).Str("to", player.Name).Msg("player renamed")
	}
	return player, nil
}

// SetRetired retires or reactivates a player
func (s *PlayerService) SetRetired(ctx context.Context, teamID, name string, retired bool) (*models.Player, error) {
	name = utils.NormalizeName(name)
	player, err := s.players.GetPlayer(ctx, teamID, name)
	if err != nil {
		return nil, err
	}
	if player.Retired == retired {
		return player, nil
	}

	player.Retired = retired
	if err := s.players.UpdatePlayer(ctx, name, player); err != nil {
		return nil, err
	}
	log.Info().Str("team", teamID).Str("player", name).Bool("retired", retired).Msg("player retirement changed")
	return player, nil
}
