package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/casualfootball/cffa-backend/models"
)

// ComputeBalance folds every game share and payment for one player.
func ComputeBalance(player string, games []models.Game, payments []models.Payment) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, game := range games {
		shares, err := ComputePlayerShare(game)
		if err != nil {
			return decimal.Zero, err
		}
		balance = balance.Add(shares[player])
	}
	for _, payment := range payments {
		if payment.Player == player {
			balance = balance.Add(payment.Amount)
		}
	}
	return balance, nil
}

// ComputeBalances is ComputeBalance for every name that appears in the
// games or payments, in a single pass.
func ComputeBalances(games []models.Game, payments []models.Payment) (map[string]decimal.Decimal, error) {
	balances := make(map[string]decimal.Decimal)
	for _, game := range games {
		shares, err := ComputePlayerShare(game)
		if err != nil {
			return nil, err
		}
		for name, amount := range shares {
			balances[name] = balances[name].Add(amount)
		}
	}
	for _, payment := range payments {
		balances[payment.Player] = balances[payment.Player].Add(payment.Amount)
	}
	return balances, nil
}
