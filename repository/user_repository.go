package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/casualfootball/cffa-backend/models"
)

// UserRepository handles access records
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, team_id, name, auth_id, role, revoked`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.TeamID, &u.Name, &u.AuthID, &u.Role, &u.Revoked); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns every user of a team
func (r *UserRepository) ListUsers(ctx context.Context, teamID string) ([]models.User, error) {
	defer segment(ctx, "users", "SELECT").End()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE team_id = $1 ORDER BY name`, teamID)
	if err != nil {
		return nil, mapError(err, "users")
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "users")
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetUserByAuthID finds the user a token subject belongs to
func (r *UserRepository) GetUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	defer segment(ctx, "users", "SELECT").End()

	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE auth_id = $1`, authID))
	if err != nil {
		return nil, mapError(err, "user "+authID)
	}
	return u, nil
}

// GetUser retrieves a user of a team by ID
func (r *UserRepository) GetUser(ctx context.Context, teamID, userID string) (*models.User, error) {
	defer segment(ctx, "users", "SELECT").End()

	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE team_id = $1 AND id = $2`, teamID, userID))
	if err != nil {
		return nil, mapError(err, "user "+userID)
	}
	return u, nil
}

// CreateUser grants a new person access to a team
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	defer segment(ctx, "users", "INSERT").End()

	user.ID = uuid.NewString()
	return insertUser(ctx, r.db, user)
}

// UpdateUser changes a user's name, role or revoked flag
func (r *UserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	defer segment(ctx, "users", "UPDATE").End()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = $3, auth_id = $4, role = $5, revoked = $6
		 WHERE team_id = $1 AND id = $2`,
		user.TeamID, user.ID, user.Name, user.AuthID, user.Role, user.Revoked)
	if err != nil {
		return mapError(err, "user "+user.AuthID)
	}
	return expectRow(res, "user "+user.ID)
}

func insertUser(ctx context.Context, q queryer, user *models.User) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.TeamID, user.Name, user.AuthID, user.Role, user.Revoked)
	if err != nil {
		return mapError(err, "user "+user.AuthID)
	}
	return nil
}
