package ledger

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/casualfootball/cffa-backend/models"
)

// EntryKind tells game lines and payment lines apart.
type EntryKind string

const (
	KindGame    EntryKind = "game"
	KindPayment EntryKind = "payment"
)

// LineItem is one row of a player statement.
type LineItem struct {
	Date        time.Time       `json:"date"`
	Kind        EntryKind       `json:"kind"`
	Reference   string          `json:"reference"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
}

// Statement is a player's chronological ledger.
type Statement struct {
	Player  string          `json:"player"`
	Lines   []LineItem      `json:"lines"`
	Balance decimal.Decimal `json:"balance"`
}

// All iterates the statement lines in order. It can be ranged over any
// number of times.
func (s *Statement) All() iter.Seq[LineItem] {
	return func(yield func(LineItem) bool) {
		for _, line := range s.Lines {
			if !yield(line) {
				return
			}
		}
	}
}

type statementEntry struct {
	day   time.Time
	order int
	line  LineItem
}

// BuildPlayerStatement merges a player's game shares and payments into date
// order. Entries on the same day keep games ahead of payments, and otherwise
// keep their input order.
func BuildPlayerStatement(player string, games []models.Game, payments []models.Payment) (*Statement, error) {
	var entries []statementEntry

	for _, game := range games {
		shares, err := ComputePlayerShare(game)
		if err != nil {
			return nil, err
		}
		amount, ok := shares[player]
		if !ok {
			continue
		}
		entries = append(entries, statementEntry{
			day:   calendarDay(game.Date),
			order: 0,
			line: LineItem{
				Date:        game.Date,
				Kind:        KindGame,
				Reference:   game.ID,
				Description: describeGame(game, player),
				Amount:      amount,
			},
		})
	}

	for _, payment := range payments {
		if payment.Player != player {
			continue
		}
		description := payment.Description
		if description == "" {
			description = "Payment"
		}
		entries = append(entries, statementEntry{
			day:   calendarDay(payment.Date),
			order: 1,
			line: LineItem{
				Date:        payment.Date,
				Kind:        KindPayment,
				Reference:   payment.ID,
				Description: description,
				Amount:      payment.Amount,
			},
		})
	}

	slices.SortStableFunc(entries, func(a, b statementEntry) int {
		if c := a.day.Compare(b.day); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})

	statement := &Statement{Player: player, Lines: make([]LineItem, 0, len(entries))}
	running := decimal.Zero
	for _, e := range entries {
		running = running.Add(e.line.Amount)
		e.line.Balance = running
		statement.Lines = append(statement.Lines, e.line)
	}
	statement.Balance = running

	return statement, nil
}

func describeGame(game models.Game, player string) string {
	played := false
	guests := 0
	for _, p := range game.Participants {
		if p.Name == player {
			played = played || p.Played
			guests += p.Guests
		}
	}

	var parts []string
	if played {
		parts = append(parts, "played")
	}
	switch {
	case guests == 1:
		parts = append(parts, "1 guest")
	case guests > 1:
		parts = append(parts, fmt.Sprintf("%d guests", guests))
	}
	if game.BookerName() == player {
		parts = append(parts, "booked pitch "+game.TotalCost.StringFixed(2))
	}

	return fmt.Sprintf("Game on %s: %s", game.Date.Format(DateLayout), strings.Join(parts, ", "))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
