package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/casualfootball/cffa-backend/models"
)

var rosterNames = []string{"Alex", "Ben", "Cara", "Dev", "Eli", "Fin"}

func gameGen(id int) *rapid.Generator[models.Game] {
	return rapid.Custom(func(t *rapid.T) models.Game {
		n := rapid.IntRange(1, len(rosterNames)).Draw(t, "participants")
		names := rapid.Permutation(rosterNames).Draw(t, "roster")[:n]
		bookerIdx := rapid.IntRange(0, n-1).Draw(t, "booker")

		var participants []models.GameParticipant
		heads := 0
		for i, name := range names {
			p := models.GameParticipant{
				Name:   name,
				Played: rapid.Bool().Draw(t, "played"),
				Booker: i == bookerIdx,
				Guests: rapid.IntRange(0, 3).Draw(t, "guests"),
			}
			if p.Played {
				heads++
			}
			heads += p.Guests
			participants = append(participants, p)
		}
		if heads == 0 {
			participants[0].Played = true
		}

		pence := rapid.Int64Range(1, 50000).Draw(t, "pence")
		return models.Game{
			ID:           fmt.Sprintf("g%d", id),
			Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rapid.IntRange(0, 365).Draw(t, "day")),
			TotalCost:    decimal.New(pence, -2),
			Booker:       names[bookerIdx],
			Participants: participants,
		}
	})
}

func gamesGen() *rapid.Generator[[]models.Game] {
	return rapid.Custom(func(t *rapid.T) []models.Game {
		n := rapid.IntRange(0, 8).Draw(t, "games")
		games := make([]models.Game, 0, n)
		for i := 0; i < n; i++ {
			games = append(games, gameGen(i).Draw(t, "game"))
		}
		return games
	})
}

func paymentsGen() *rapid.Generator[[]models.Payment] {
	return rapid.Custom(func(t *rapid.T) []models.Payment {
		n := rapid.IntRange(0, 8).Draw(t, "payments")
		payments := make([]models.Payment, 0, n)
		for i := 0; i < n; i++ {
			payments = append(payments, models.Payment{
				ID:     fmt.Sprintf("p%d", i),
				Player: rapid.SampledFrom(rosterNames).Draw(t, "player"),
				Amount: decimal.New(rapid.Int64Range(-20000, 20000).Draw(t, "amount"), -2),
				Date:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, rapid.IntRange(0, 365).Draw(t, "day")),
			})
		}
		return payments
	})
}

func TestProperty_GameConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		game := gameGen(0).Draw(t, "game")

		split, err := SplitGame(game)
		if err != nil {
			t.Fatalf("split: %v", err)
		}
		charged := decimal.Zero
		for _, c := range split.Charges {
			charged = charged.Add(c)
		}
		if !charged.Equal(game.TotalCost) {
			t.Fatalf("charges %s != total %s", charged, game.TotalCost)
		}

		shares, err := ComputePlayerShare(game)
		if err != nil {
			t.Fatalf("share: %v", err)
		}
		net := decimal.Zero
		for _, v := range shares {
			net = net.Add(v)
		}
		if !net.IsZero() {
			t.Fatalf("nets sum to %s", net)
		}
	})
}

func TestProperty_BalanceOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		games := gamesGen().Draw(t, "games")
		payments := paymentsGen().Draw(t, "payments")
		player := rapid.SampledFrom(rosterNames).Draw(t, "player")

		want, err := ComputeBalance(player, games, payments)
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		got, err := ComputeBalance(player,
			rapid.Permutation(games).Draw(t, "shuffledGames"),
			rapid.Permutation(payments).Draw(t, "shuffledPayments"))
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if !want.Equal(got) {
			t.Fatalf("balance depends on order: %s vs %s", want, got)
		}

		statement, err := BuildPlayerStatement(player, games, payments)
		if err != nil {
			t.Fatalf("statement: %v", err)
		}
		if !statement.Balance.Equal(want) {
			t.Fatalf("statement balance %s != %s", statement.Balance, want)
		}
	})
}

func TestProperty_TeamNetEqualsPayments(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		games := gamesGen().Draw(t, "games")
		payments := paymentsGen().Draw(t, "payments")

		summary, err := SummarizeTeam(nil, games, payments, DefaultRetirementPolicy(), time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		paid := decimal.Zero
		for _, p := range payments {
			paid = paid.Add(p.Amount)
		}
		if !summary.NetBalance.Equal(paid) {
			t.Fatalf("net %s != payments %s", summary.NetBalance, paid)
		}
	})
}

func TestProperty_StatementIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		games := gamesGen().Draw(t, "games")
		payments := paymentsGen().Draw(t, "payments")
		player := rapid.SampledFrom(rosterNames).Draw(t, "player")

		first, err := BuildPlayerStatement(player, games, payments)
		if err != nil {
			t.Fatalf("statement: %v", err)
		}
		second, err := BuildPlayerStatement(player, games, payments)
		if err != nil {
			t.Fatalf("statement: %v", err)
		}
		if len(first.Lines) != len(second.Lines) {
			t.Fatalf("line counts differ")
		}
		for i := range first.Lines {
			if first.Lines[i].Reference != second.Lines[i].Reference || !first.Lines[i].Balance.Equal(second.Lines[i].Balance) {
				t.Fatalf("line %d differs", i)
			}
		}
	})
}

func TestProperty_RetirementMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		lastPlayed := base.AddDate(0, 0, rapid.IntRange(0, 400).Draw(t, "lastPlayed"))
		asOf := base.AddDate(0, 0, rapid.IntRange(0, 800).Draw(t, "asOf"))
		later := asOf.AddDate(0, 0, rapid.IntRange(0, 400).Draw(t, "later"))
		row := PlayerSummary{Balance: decimal.Zero, LastPlayed: &lastPlayed}
		policy := RetirementPolicy{InactivityMonths: rapid.IntRange(1, 12).Draw(t, "months")}

		if ShouldPlayerBeRetired(row, policy, asOf) && !ShouldPlayerBeRetired(row, policy, later) {
			t.Fatalf("eligible at %s but not at %s", asOf, later)
		}
	})
}
