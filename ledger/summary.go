package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/casualfootball/cffa-backend/models"
)

// RetirementPolicy decides when an inactive player is worth retiring.
type RetirementPolicy struct {
	InactivityMonths int
}

// DefaultRetirementPolicy flags players who have not played for six months.
func DefaultRetirementPolicy() RetirementPolicy {
	return RetirementPolicy{InactivityMonths: 6}
}

// Cutoff is the last-played date before which a player counts as inactive.
// Month arithmetic clamps to the end of shorter months (31 Aug minus six
// months is 28 or 29 Feb), which keeps the cutoff non-decreasing in asOf.
func (p RetirementPolicy) Cutoff(asOf time.Time) time.Time {
	y, m, d := asOf.Date()
	hh, mm, ss := asOf.Clock()
	first := time.Date(y, m-time.Month(p.InactivityMonths), 1, 0, 0, 0, 0, asOf.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, hh, mm, ss, asOf.Nanosecond(), asOf.Location())
}

// PlayerSummary is one row of the team summary.
type PlayerSummary struct {
	Name               string          `json:"name"`
	Retired            bool            `json:"retired"`
	Balance            decimal.Decimal `json:"balance"`
	GamesPlayed        int             `json:"gamesPlayed"`
	LastPlayed         *time.Time      `json:"lastPlayed,omitempty"`
	RetirementEligible bool            `json:"retirementEligible"`
}

// TeamSummary aggregates every known player.
type TeamSummary struct {
	Players       []PlayerSummary `json:"players"`
	GamesCount    int             `json:"gamesCount"`
	TotalGameCost decimal.Decimal `json:"totalGameCost"`
	// NetBalance is the sum of all player balances. Games net to zero, so
	// this equals the sum of all payments.
	NetBalance decimal.Decimal `json:"netBalance"`
}

// Active returns the rows of players who are not retired.
func (s *TeamSummary) Active() []PlayerSummary {
	var active []PlayerSummary
	for _, row := range s.Players {
		if !row.Retired {
			active = append(active, row)
		}
	}
	return active
}

// Find returns the row for a player.
func (s *TeamSummary) Find(name string) (PlayerSummary, bool) {
	for _, row := range s.Players {
		if row.Name == name {
			return row, true
		}
	}
	return PlayerSummary{}, false
}

// SummarizeTeam computes a row for every known player, including retired
// players and names that only appear in games or payments.
func SummarizeTeam(players []models.Player, games []models.Game, payments []models.Payment, policy RetirementPolicy, asOf time.Time) (*TeamSummary, error) {
	rows := make(map[string]*PlayerSummary)
	row := func(name string) *PlayerSummary {
		r, ok := rows[name]
		if !ok {
			r = &PlayerSummary{Name: name, Balance: decimal.Zero}
			rows[name] = r
		}
		return r
	}

	for _, p := range players {
		row(p.Name).Retired = p.Retired
	}

	balances, err := ComputeBalances(games, payments)
	if err != nil {
		return nil, err
	}
	for name, balance := range balances {
		row(name).Balance = balance
	}

	summary := &TeamSummary{TotalGameCost: decimal.Zero, NetBalance: decimal.Zero}
	for _, game := range games {
		seen := make(map[string]bool)
		for _, p := range game.Participants {
			if !p.Played || seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			r := row(p.Name)
			r.GamesPlayed++
			if r.LastPlayed == nil || game.Date.After(*r.LastPlayed) {
				date := game.Date
				r.LastPlayed = &date
			}
		}

		summary.GamesCount++
		summary.TotalGameCost = summary.TotalGameCost.Add(game.TotalCost)
	}

	summary.Players = make([]PlayerSummary, 0, len(rows))
	for _, r := range rows {
		r.RetirementEligible = ShouldPlayerBeRetired(*r, policy, asOf)
		summary.NetBalance = summary.NetBalance.Add(r.Balance)
		summary.Players = append(summary.Players, *r)
	}
	slices.SortFunc(summary.Players, func(a, b PlayerSummary) int {
		return strings.Compare(a.Name, b.Name)
	})

	return summary, nil
}

// ShouldPlayerBeRetired reports whether a player is inactive and settled.
// A player who has never played counts as inactive. Any outstanding
// balance, debt or credit, keeps the player active.
func ShouldPlayerBeRetired(row PlayerSummary, policy RetirementPolicy, asOf time.Time) bool {
	if !row.Balance.IsZero() {
		return false
	}
	if row.LastPlayed == nil {
		return true
	}
	return row.LastPlayed.Before(policy.Cutoff(asOf))
}
