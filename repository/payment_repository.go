package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/casualfootball/cffa-backend/models"
)

// PaymentRepository handles payment data operations. Payments are only ever
// appended; corrections are new offsetting payments.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// CreatePayment creates a new payment record. A second payment for the same
// game yields ErrConflict.
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	defer segment(ctx, "payments", "INSERT").End()

	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now().UTC()
	return insertPayment(ctx, r.db, payment)
}

// ListPayments retrieves all payments of a team, oldest first
func (r *PaymentRepository) ListPayments(ctx context.Context, teamID string) ([]models.Payment, error) {
	defer segment(ctx, "payments", "SELECT").End()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, team_id, player, description, amount, payment_date, game_id, created_at
		FROM payments
		WHERE team_id = $1
		ORDER BY payment_date, seq`, teamID)
	if err != nil {
		return nil, mapError(err, "payments")
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var (
			p      models.Payment
			gameID sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.TeamID, &p.Player, &p.Description, &p.Amount,
			&p.Date, &gameID, &p.CreatedAt); err != nil {
			return nil, mapError(err, "payments")
		}
		p.Date = p.Date.UTC()
		p.GameID = gameID.String
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// HasPaymentForGame reports whether an autopay was already recorded for a game
func (r *PaymentRepository) HasPaymentForGame(ctx context.Context, teamID, gameID string) (bool, error) {
	defer segment(ctx, "payments", "SELECT").End()

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE team_id = $1 AND game_id = $2)`,
		teamID, gameID).Scan(&exists)
	if err != nil {
		return false, mapError(err, "payments")
	}
	return exists, nil
}

func insertPayment(ctx context.Context, q queryer, payment *models.Payment) error {
	var gameID sql.NullString
	if payment.GameID != "" {
		gameID = sql.NullString{String: payment.GameID, Valid: true}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO payments (id, team_id, player, description, amount, payment_date, game_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		payment.ID, payment.TeamID, payment.Player, payment.Description, payment.Amount,
		payment.Date, gameID, payment.CreatedAt)
	if err != nil {
		return mapError(err, "payment for "+payment.Player)
	}
	return nil
}
