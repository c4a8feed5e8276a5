package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a direct transfer or adjustment between a player and the manager
type Payment struct {
	ID          string          `json:"id"`
	TeamID      string          `json:"-"`
	Player      string          `json:"player"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	GameID      string          `json:"gameId,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// PaymentRequest represents the request body for creating a payment
type PaymentRequest struct {
	Player      string          `json:"player" binding:"required"`
	Date        string          `json:"date" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}
