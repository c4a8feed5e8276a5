package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/casualfootball/cffa-backend/models"
)

// TeamData is a full snapshot of one team's ledger
type TeamData struct {
	Players  []models.Player
	Games    []models.Game
	Payments []models.Payment
}

// ImportRepository swaps a team's ledger for an imported one
type ImportRepository struct {
	db *sql.DB
}

// NewImportRepository creates a new import repository
func NewImportRepository(db *sql.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// ReplaceTeamData deletes the team's players, games and payments and stores
// the given ones instead, all in one transaction. Every record gets a fresh
// ID; payments that referenced an imported game follow it to its new ID.
func (r *ImportRepository) ReplaceTeamData(ctx context.Context, teamID string, data *TeamData) error {
	defer segment(ctx, "teams", "IMPORT").End()

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM payments WHERE team_id = $1`,
			`DELETE FROM games WHERE team_id = $1`,
			`DELETE FROM players WHERE team_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, stmt, teamID); err != nil {
				return mapError(err, "clear team "+teamID)
			}
		}

		for i := range data.Players {
			p := &data.Players[i]
			p.TeamID = teamID
			if err := insertPlayer(ctx, tx, p); err != nil {
				return err
			}
		}
		gameIDs := make(map[string]string, len(data.Games))
		for i := range data.Games {
			g := &data.Games[i]
			g.TeamID = teamID
			newID := uuid.NewString()
			if g.ID != "" {
				gameIDs[g.ID] = newID
			}
			g.ID = newID
			if err := insertGame(ctx, tx, g); err != nil {
				return err
			}
		}
		now := time.Now().UTC()
		for i := range data.Payments {
			p := &data.Payments[i]
			p.TeamID = teamID
			p.ID = uuid.NewString()
			p.GameID = gameIDs[p.GameID]
			if p.CreatedAt.IsZero() {
				p.CreatedAt = now
			}
			if err := insertPayment(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}
