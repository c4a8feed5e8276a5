package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/utils"
)

// UserService manages who can access a team
type UserService struct {
	users UserStore
}

// NewUserService creates a new user service
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// Resolve finds the active user behind a token subject
func (s *UserService) Resolve(ctx context.Context, authID string) (*models.User, error) {
	user, err := s.users.GetUserByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	if user.Revoked {
		return nil, fmt.Errorf("user %s: %w", authID, utils.ErrForbidden)
	}
	return user, nil
}

// ListUsers returns everyone with access to the team
func (s *UserService) ListUsers(ctx context.Context, teamID string) ([]models.User, error) {
	return s.users.ListUsers(ctx, teamID)
}

// AddUser grants a person access to the team
func (s *UserService) AddUser(ctx context.Context, teamID string, req *models.UserRequest) (*models.User, error) {
	user := &models.User{
		TeamID:  teamID,
		Name:    utils.NormalizeName(req.Name),
		AuthID:  strings.TrimSpace(req.AuthID),
		Role:    req.Role,
		Revoked: req.Revoked,
	}
	if err := validateUser(user); err != nil {
		return nil, err
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("team", teamID).Str("user", user.ID).Str("role", user.Role).Msg("user added")
	return user, nil
}

// EditUser changes a user's details. Managers cannot demote or revoke
// themselves.
func (s *UserService) EditUser(ctx context.Context, caller *models.User, userID string, req *models.UserRequest) (*models.User, error) {
	user, err := s.users.GetUser(ctx, caller.TeamID, userID)
	if err != nil {
		return nil, err
	}

	user.Name = utils.NormalizeName(req.Name)
	user.AuthID = strings.TrimSpace(req.AuthID)
	user.Role = req.Role
	user.Revoked = req.Revoked
	if err := validateUser(user); err != nil {
		return nil, err
	}
	if user.ID == caller.ID && (user.Revoked || user.Role != models.RoleManager) {
		return nil, utils.NewBadRequestError("managers cannot revoke or demote themselves")
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("team", caller.TeamID).Str("user", user.ID).
		Str("role", user.Role).Bool("revoked", user.Revoked).Msg("user updated")
	return user, nil
}

func validateUser(user *models.User) error {
	var v utils.Violations
	v.RequireText(user.Name, "name")
	v.RequireText(user.AuthID, "authId")
	if user.Role != models.RoleManager && user.Role != models.RolePlayer {
		v.Add("role", "must be manager or player")
	}
	return v.Err()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
