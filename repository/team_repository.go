package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/casualfootball/cffa-backend/models"
)

// TeamRepository handles team data operations
type TeamRepository struct {
	db *sql.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// CreateTeam stores a new team together with its first manager
func (r *TeamRepository) CreateTeam(ctx context.Context, team *models.Team, manager *models.User) error {
	defer segment(ctx, "teams", "INSERT").End()

	team.ID = uuid.NewString()
	team.CreatedAt = time.Now().UTC()
	manager.ID = uuid.NewString()
	manager.TeamID = team.ID
	manager.Role = models.RoleManager

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO teams (id, name, created_at) VALUES ($1, $2, $3)`,
			team.ID, team.Name, team.CreatedAt)
		if err != nil {
			return mapError(err, "team "+team.Name)
		}
		return insertUser(ctx, tx, manager)
	})
}

// GetTeam retrieves a team by its ID
func (r *TeamRepository) GetTeam(ctx context.Context, teamID string) (*models.Team, error) {
	defer segment(ctx, "teams", "SELECT").End()

	var team models.Team
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM teams WHERE id = $1`, teamID,
	).Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err != nil {
		return nil, mapError(err, "team "+teamID)
	}
	return &team, nil
}

// UpdateTeam renames a team
func (r *TeamRepository) UpdateTeam(ctx context.Context, team *models.Team) error {
	defer segment(ctx, "teams", "UPDATE").End()

	res, err := r.db.ExecContext(ctx, `UPDATE teams SET name = $2 WHERE id = $1`, team.ID, team.Name)
	if err != nil {
		return mapError(err, "team "+team.Name)
	}
	return expectRow(res, "team "+team.ID)
}

// DeleteTeam removes a team and, through cascading keys, all of its data
func (r *TeamRepository) DeleteTeam(ctx context.Context, teamID string) error {
	defer segment(ctx, "teams", "DELETE").End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return mapError(err, "team "+teamID)
	}
	return expectRow(res, "team "+teamID)
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if n == 0 {
		return mapError(sql.ErrNoRows, what)
	}
	return nil
}
