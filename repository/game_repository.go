package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/casualfootball/cffa-backend/models"
)

// GameRepository handles game data operations
type GameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *sql.DB) *GameRepository {
	return &GameRepository{db: db}
}

const gameQuery = `
	SELECT g.id, g.team_id, g.game_date, g.total_cost, g.booker,
	       p.name, p.played, p.booker, p.guests
	FROM games g
	LEFT JOIN game_participants p ON p.game_id = g.id
	WHERE g.team_id = $1`

// ListGames returns every game of a team with its participants, oldest
// first. Games on the same date keep the order they were entered in.
func (r *GameRepository) ListGames(ctx context.Context, teamID string) ([]models.Game, error) {
	defer segment(ctx, "games", "SELECT").End()

	rows, err := r.db.QueryContext(ctx, gameQuery+` ORDER BY g.game_date, g.seq, p.position`, teamID)
	if err != nil {
		return nil, mapError(err, "games")
	}
	return scanGames(rows)
}

// GetGame retrieves one game with its participants
func (r *GameRepository) GetGame(ctx context.Context, teamID, gameID string) (*models.Game, error) {
	defer segment(ctx, "games", "SELECT").End()

	rows, err := r.db.QueryContext(ctx, gameQuery+` AND g.id = $2 ORDER BY p.position`, teamID, gameID)
	if err != nil {
		return nil, mapError(err, "game "+gameID)
	}
	games, err := scanGames(rows)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, mapError(sql.ErrNoRows, "game "+gameID)
	}
	return &games[0], nil
}

// scanGames folds the joined rows back into games. Rows of one game are
// adjacent because every query orders by game first.
func scanGames(rows *sql.Rows) ([]models.Game, error) {
	defer rows.Close()

	games := []models.Game{}
	for rows.Next() {
		var (
			g      models.Game
			name   sql.NullString
			played sql.NullBool
			booker sql.NullBool
			guests sql.NullInt64
		)
		if err := rows.Scan(&g.ID, &g.TeamID, &g.Date, &g.TotalCost, &g.Booker,
			&name, &played, &booker, &guests); err != nil {
			return nil, mapError(err, "games")
		}

		if n := len(games); n == 0 || games[n-1].ID != g.ID {
			g.Date = g.Date.UTC()
			g.Participants = []models.GameParticipant{}
			games = append(games, g)
		}
		if name.Valid {
			last := &games[len(games)-1]
			last.Participants = append(last.Participants, models.GameParticipant{
				Name:   name.String,
				Played: played.Bool,
				Booker: booker.Bool,
				Guests: int(guests.Int64),
			})
		}
	}
	return games, rows.Err()
}

// CreateGame stores a game, creating any participant who is not yet a player
func (r *GameRepository) CreateGame(ctx context.Context, game *models.Game) error {
	defer segment(ctx, "games", "INSERT").End()

	game.ID = uuid.NewString()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return insertGame(ctx, tx, game)
	})
}

// UpdateGame replaces a game's date, cost, booker and participants
func (r *GameRepository) UpdateGame(ctx context.Context, game *models.Game) error {
	defer segment(ctx, "games", "UPDATE").End()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE games SET game_date = $3, total_cost = $4, booker = $5 WHERE team_id = $1 AND id = $2`,
			game.TeamID, game.ID, game.Date, game.TotalCost, game.Booker)
		if err != nil {
			return mapError(err, "game "+game.ID)
		}
		if err := expectRow(res, "game "+game.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM game_participants WHERE game_id = $1`, game.ID); err != nil {
			return mapError(err, "game "+game.ID)
		}
		return insertParticipants(ctx, tx, game)
	})
}

// DeleteGame removes a game. Payments made by autopay for it are kept.
func (r *GameRepository) DeleteGame(ctx context.Context, teamID, gameID string) error {
	defer segment(ctx, "games", "DELETE").End()

	res, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE team_id = $1 AND id = $2`, teamID, gameID)
	if err != nil {
		return mapError(err, "game "+gameID)
	}
	return expectRow(res, "game "+gameID)
}

func insertGame(ctx context.Context, tx *sql.Tx, game *models.Game) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO games (id, team_id, game_date, total_cost, booker) VALUES ($1, $2, $3, $4, $5)`,
		game.ID, game.TeamID, game.Date, game.TotalCost, game.Booker)
	if err != nil {
		return mapError(err, "game "+game.ID)
	}
	return insertParticipants(ctx, tx, game)
}

func insertParticipants(ctx context.Context, tx *sql.Tx, game *models.Game) error {
	names := make([]string, 0, len(game.Participants))
	for _, p := range game.Participants {
		names = append(names, p.Name)
	}
	if err := ensurePlayers(ctx, tx, game.TeamID, names); err != nil {
		return err
	}

	for i, p := range game.Participants {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO game_participants (game_id, position, name, played, booker, guests)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			game.ID, i, p.Name, p.Played, p.Booker, p.Guests)
		if err != nil {
			return mapError(err, "participant "+p.Name)
		}
	}
	return nil
}
