package repository

import (
	"context"
	"database/sql"

	"github.com/casualfootball/cffa-backend/models"
)

// PlayerRepository handles player data operations
type PlayerRepository struct {
	db *sql.DB
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *sql.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// ListPlayers returns every player of a team, retired ones included
func (r *PlayerRepository) ListPlayers(ctx context.Context, teamID string) ([]models.Player, error) {
	defer segment(ctx, "players", "SELECT").End()

	rows, err := r.db.QueryContext(ctx,
		`SELECT team_id, name, retired, comment FROM players WHERE team_id = $1 ORDER BY name`, teamID)
	if err != nil {
		return nil, mapError(err, "players")
	}
	defer rows.Close()

	players := []models.Player{}
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.TeamID, &p.Name, &p.Retired, &p.Comment); err != nil {
			return nil, mapError(err, "players")
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetPlayer retrieves a player by name
func (r *PlayerRepository) GetPlayer(ctx context.Context, teamID, name string) (*models.Player, error) {
	defer segment(ctx, "players", "SELECT").End()

	var p models.Player
	err := r.db.QueryRowContext(ctx,
		`SELECT team_id, name, retired, comment FROM players WHERE team_id = $1 AND name = $2`,
		teamID, name,
	).Scan(&p.TeamID, &p.Name, &p.Retired, &p.Comment)
	if err != nil {
		return nil, mapError(err, "player "+name)
	}
	return &p, nil
}

// CreatePlayer stores a new player. A duplicate name yields ErrConflict.
func (r *PlayerRepository) CreatePlayer(ctx context.Context, player *models.Player) error {
	defer segment(ctx, "players", "INSERT").End()

	return insertPlayer(ctx, r.db, player)
}

// UpdatePlayer saves a player under a possibly new name. A rename is
// carried into every game and payment of the team in the same transaction.
func (r *PlayerRepository) UpdatePlayer(ctx context.Context, oldName string, player *models.Player) error {
	defer segment(ctx, "players", "UPDATE").End()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE players SET name = $3, retired = $4, comment = $5 WHERE team_id = $1 AND name = $2`,
			player.TeamID, oldName, player.Name, player.Retired, player.Comment)
		if err != nil {
			return mapError(err, "player "+player.Name)
		}
		if err := expectRow(res, "player "+oldName); err != nil {
			return err
		}
		if oldName == player.Name {
			return nil
		}

		renames := []string{
			`UPDATE game_participants SET name = $3
			 WHERE name = $2 AND game_id IN (SELECT id FROM games WHERE team_id = $1)`,
			`UPDATE games SET booker = $3 WHERE team_id = $1 AND booker = $2`,
			`UPDATE payments SET player = $3 WHERE team_id = $1 AND player = $2`,
		}
		for _, stmt := range renames {
			if _, err := tx.ExecContext(ctx, stmt, player.TeamID, oldName, player.Name); err != nil {
				return mapError(err, "rename "+oldName)
			}
		}
		return nil
	})
}

func insertPlayer(ctx context.Context, q queryer, player *models.Player) error {
	_, err := q.ExecContext(ctx,
		`INSERT INTO players (team_id, name, retired, comment) VALUES ($1, $2, $3, $4)`,
		player.TeamID, player.Name, player.Retired, player.Comment)
	if err != nil {
		return mapError(err, "player "+player.Name)
	}
	return nil
}

// ensurePlayers creates any of the named players the team does not have yet
func ensurePlayers(ctx context.Context, tx *sql.Tx, teamID string, names []string) error {
	for _, name := range names {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO players (team_id, name) VALUES ($1, $2) ON CONFLICT (team_id, name) DO NOTHING`,
			teamID, name)
		if err != nil {
			return mapError(err, "player "+name)
		}
	}
	return nil
}
