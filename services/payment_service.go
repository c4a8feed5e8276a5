package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/casualfootball/cffa-backend/ledger"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/utils"
)

// PaymentService handles payment business logic
type PaymentService struct {
	payments PaymentStore
	players  PlayerStore
	games    GameStore
}

// NewPaymentService creates a new payment service
func NewPaymentService(payments PaymentStore, players PlayerStore, games GameStore) *PaymentService {
	return &PaymentService{payments: payments, players: players, games: games}
}

// AutopayPreview is a proposed autopay and whether it was already made
type AutopayPreview struct {
	Payment     *models.Payment `json:"payment"`
	AlreadyPaid bool            `json:"alreadyPaid"`
}

// ListPayments returns every payment of the team, newest first
func (s *PaymentService) ListPayments(ctx context.Context, teamID string) ([]models.Payment, error) {
	payments, err := s.payments.ListPayments(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	return recentPayments(payments, time.Time{}), nil
}

// AddPayment records a payment or adjustment for an existing player
func (s *PaymentService) AddPayment(ctx context.Context, teamID string, req *models.PaymentRequest) (*models.Payment, error) {
	var v utils.Violations
	date, err := time.Parse(utils.DateLayout, req.Date)
	if err != nil {
		v.Add("date", "must be in YYYY-MM-DD format")
	}
	name := utils.NormalizeName(req.Player)
	v.RequireText(name, "player")
	v.RequireNonZero(req.Amount, "amount")
	v.RequirePennies(req.Amount, "amount")
	if err := v.Err(); err != nil {
		return nil, err
	}

	if _, err := s.players.GetPlayer(ctx, teamID, name); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		TeamID:      teamID,
		Player:      name,
		Description: req.Description,
		Amount:      req.Amount,
		Date:        date,
	}
	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	log.Info().Str("team", teamID).Str("player", name).Str("amount", utils.FormatMoney(payment.Amount)).Msg("payment added")
	return payment, nil
}

// PreviewAutopay proposes crediting the booker for their latest game
func (s *PaymentService) PreviewAutopay(ctx context.Context, teamID, booker string) (*AutopayPreview, error) {
	games, err := s.games.ListGames(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	payment, err := ledger.AutopayDetails(utils.NormalizeName(booker), games)
	if err != nil {
		return nil, err
	}
	payment.TeamID = teamID

	paid, err := s.payments.HasPaymentForGame(ctx, teamID, payment.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to check autopay: %w", err)
	}
	return &AutopayPreview{Payment: payment, AlreadyPaid: paid}, nil
}

// ConfirmAutopay records the proposed autopay. A game can only be
// autopaid once.
func (s *PaymentService) ConfirmAutopay(ctx context.Context, teamID, booker string) (*models.Payment, error) {
	preview, err := s.PreviewAutopay(ctx, teamID, booker)
	if err != nil {
		return nil, err
	}
	if preview.AlreadyPaid {
		return nil, utils.NewConflictError(fmt.Sprintf("game on %s was already autopaid",
			preview.Payment.Date.Format(utils.DateLayout)))
	}

	if err := s.payments.CreatePayment(ctx, preview.Payment); err != nil {
		return nil, fmt.Errorf("failed to store autopay: %w", err)
	}

	log.Info().Str("team", teamID).Str("player", preview.Payment.Player).
		Str("game", preview.Payment.GameID).Msg("autopay recorded")
	return preview.Payment, nil
}
