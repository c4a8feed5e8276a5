package ledger

import (
	"fmt"
	"time"
)

// MalformedGameError reports a game whose cost cannot be split.
type MalformedGameError struct {
	GameID string
	Date   time.Time
	Reason string
}

func (e *MalformedGameError) Error() string {
	return fmt.Sprintf("malformed game %q on %s: %s", e.GameID, e.Date.Format(DateLayout), e.Reason)
}

// NoEligibleGameError is returned when an autopay is requested for someone
// who has not booked any game.
type NoEligibleGameError struct {
	Booker string
}

func (e *NoEligibleGameError) Error() string {
	return fmt.Sprintf("no game booked by %s", e.Booker)
}
