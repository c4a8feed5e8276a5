// Package ledger turns a team's games and payments into balances,
// per-player statements and team summaries.
//
// Every function is a pure fold over the records it is given. Callers load
// a fresh snapshot from storage for each call; nothing is cached here.
//
// Amounts are signed from the player's point of view: positive means the
// manager owes the player, negative means the player owes money.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/casualfootball/cffa-backend/models"
)

// DateLayout is the calendar-day format used in descriptions.
const DateLayout = "2006-01-02"

const pennyPlaces = 2

// GameSplit is the breakdown of one game's cost.
type GameSplit struct {
	GameID    string
	Booker    string
	HeadCount int
	UnitCost  decimal.Decimal
	// Charges holds what each participant is debited. The values always sum
	// to the game's total cost.
	Charges map[string]decimal.Decimal
}

// SplitGame divides a game's cost by its head count. Each non-booker is
// charged the rounded unit cost per head (themselves if they played, plus
// every guest). The booker is charged whatever is left, so any rounding
// remainder is absorbed by the booker.
//
// At most one participant may be flagged as booker, and when the game also
// names its booker the two must agree.
func SplitGame(game models.Game) (*GameSplit, error) {
	flagged := ""
	for _, p := range game.Participants {
		if p.Guests < 0 {
			return nil, malformed(game, "negative guest count for "+p.Name)
		}
		if !p.Booker {
			continue
		}
		if flagged != "" {
			return nil, malformed(game, "more than one booker")
		}
		flagged = p.Name
	}
	heads := game.HeadCount()
	if heads <= 0 {
		return nil, malformed(game, "no players or guests")
	}
	booker := game.BookerName()
	if booker == "" {
		return nil, malformed(game, "no booker")
	}
	if flagged != "" && flagged != booker {
		return nil, malformed(game, "booker "+booker+" is not the flagged participant "+flagged)
	}

	unit := game.TotalCost.Div(decimal.NewFromInt(int64(heads))).Round(pennyPlaces)
	split := &GameSplit{
		GameID:    game.ID,
		Booker:    booker,
		HeadCount: heads,
		UnitCost:  unit,
		Charges:   make(map[string]decimal.Decimal),
	}

	charged := decimal.Zero
	for _, p := range game.Participants {
		if p.Name == booker {
			continue
		}
		n := participantHeads(p)
		if n == 0 {
			continue
		}
		charge := unit.Mul(decimal.NewFromInt(int64(n)))
		split.Charges[p.Name] = split.Charges[p.Name].Add(charge)
		charged = charged.Add(charge)
	}
	split.Charges[booker] = game.TotalCost.Sub(charged)

	return split, nil
}

// ComputePlayerShare returns each participant's signed net for one game.
// The booker is credited the full cost and debited their own charge; the
// nets of a valid game always sum to zero.
func ComputePlayerShare(game models.Game) (map[string]decimal.Decimal, error) {
	split, err := SplitGame(game)
	if err != nil {
		return nil, err
	}

	shares := make(map[string]decimal.Decimal, len(split.Charges))
	for name, charge := range split.Charges {
		shares[name] = charge.Neg()
	}
	shares[split.Booker] = shares[split.Booker].Add(game.TotalCost)

	return shares, nil
}

func participantHeads(p models.GameParticipant) int {
	n := p.Guests
	if p.Played {
		n++
	}
	return n
}

func malformed(game models.Game, reason string) *MalformedGameError {
	return &MalformedGameError{GameID: game.ID, Date: game.Date, Reason: reason}
}
