package ledger

import (
	"fmt"

	"github.com/casualfootball/cffa-backend/models"
)

// AutopayDetails proposes a payment crediting the booker with the cost of
// the most recent game they booked. Games on the same date resolve to the
// later one in the input.
func AutopayDetails(booker string, games []models.Game) (*models.Payment, error) {
	var latest *models.Game
	for i := range games {
		game := &games[i]
		if game.BookerName() != booker {
			continue
		}
		if latest == nil || !game.Date.Before(latest.Date) {
			latest = game
		}
	}
	if latest == nil {
		return nil, &NoEligibleGameError{Booker: booker}
	}

	return &models.Payment{
		TeamID:      latest.TeamID,
		Player:      booker,
		Description: fmt.Sprintf("Autopay for game on %s", latest.Date.Format(DateLayout)),
		Amount:      latest.TotalCost,
		Date:        latest.Date,
		GameID:      latest.ID,
	}, nil
}
