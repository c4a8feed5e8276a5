package utils

const (
	// Date format used by requests, exports and imports
	DateLayout = "2006-01-02"

	// HTTP status messages
	ErrInvalidRequest   = "Invalid request"
	ErrTeamNotFound     = "Team not found"
	ErrPlayerNotFound   = "Player not found"
	ErrGameNotFound     = "Game not found"
	ErrFailedToStore    = "Failed to store data"
	ErrFailedToRetrieve = "Failed to retrieve data"
	ErrInvalidDate      = "Date must be in YYYY-MM-DD format"

	// Decimal places kept for monetary amounts
	MoneyPlaces = 2
)
