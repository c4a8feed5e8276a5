package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/utils"
)

// TeamService handles team onboarding and settings
type TeamService struct {
	teams TeamStore
}

// NewTeamService creates a new team service
func NewTeamService(teams TeamStore) *TeamService {
	return &TeamService{teams: teams}
}

// CreateTeam creates a team and makes the caller its manager
func (s *TeamService) CreateTeam(ctx context.Context, req *models.CreateTeamRequest, authID, callerName string) (*models.Team, *models.User, error) {
	var v utils.Violations
	v.RequireText(req.Name, "name")
	v.RequireText(authID, "authId")
	if err := v.Err(); err != nil {
		return nil, nil, err
	}

	team := &models.Team{Name: collapseSpaces(req.Name)}
	manager := &models.User{
		Name:   utils.NormalizeName(callerName),
		AuthID: authID,
		Role:   models.RoleManager,
	}
	if manager.Name == "" {
		manager.Name = "Manager"
	}

	if err := s.teams.CreateTeam(ctx, team, manager); err != nil {
		return nil, nil, fmt.Errorf("failed to create team: %w", err)
	}

	log.Info().Str("team", team.ID).Str("name", team.Name).Msg("team created")
	return team, manager, nil
}

// GetTeam retrieves a team's settings
func (s *TeamService) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	return s.teams.GetTeam(ctx, teamID)
}

// UpdateTeam renames a team
func (s *TeamService) UpdateTeam(ctx context.Context, teamID string, req *models.UpdateTeamRequest) (*models.Team, error) {
	var v utils.Violations
	v.RequireText(req.Name, "name")
	if err := v.Err(); err != nil {
		return nil, err
	}

	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	team.Name = collapseSpaces(req.Name)
	if err := s.teams.UpdateTeam(ctx, team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	return team, nil
}

// DeleteTeam removes a team with all of its players, games, payments and users
func (s *TeamService) DeleteTeam(ctx context.Context, teamID string) error {
	if err := s.teams.DeleteTeam(ctx, teamID); err != nil {
		return err
	}
	log.Warn().Str("team", teamID).Msg("team deleted")
	return nil
}
