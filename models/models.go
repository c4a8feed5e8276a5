// models/models.go
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// User roles
const (
	RoleManager = "manager"
	RolePlayer  = "player"
)

// Team is the tenant that owns players, games and payments
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Player is a person tracked for balance purposes
type Player struct {
	TeamID  string `json:"-"`
	Name    string `json:"name"`
	Retired bool   `json:"retired"`
	Comment string `json:"comment"`
}

// GameParticipant is one row of a game's participant list
type GameParticipant struct {
	Name   string `json:"name"`
	Played bool   `json:"played"`
	Booker bool   `json:"booker"`
	Guests int    `json:"guests"`
}

// Game is one football session and how its cost is shared
type Game struct {
	ID           string            `json:"id"`
	TeamID       string            `json:"-"`
	Date         time.Time         `json:"date"`
	TotalCost    decimal.Decimal   `json:"totalCost"`
	Booker       string            `json:"booker"`
	Participants []GameParticipant `json:"participants"`
}

// HeadCount is the number of players who played plus every guest
func (g *Game) HeadCount() int {
	heads := 0
	for _, p := range g.Participants {
		if p.Played {
			heads++
		}
		heads += p.Guests
	}
	return heads
}

// PlayedNames returns the names of the participants who played, in entry order
func (g *Game) PlayedNames() []string {
	var names []string
	for _, p := range g.Participants {
		if p.Played {
			names = append(names, p.Name)
		}
	}
	return names
}

// BookerName returns the booker, falling back to the participant flagged as booker
func (g *Game) BookerName() string {
	if g.Booker != "" {
		return g.Booker
	}
	for _, p := range g.Participants {
		if p.Booker {
			return p.Name
		}
	}
	return ""
}

// Label is the one-line description used in game pickers
func (g *Game) Label() string {
	return fmt.Sprintf("%d/%d/%d,%d players, %s : %s",
		g.Date.Year(), int(g.Date.Month()), g.Date.Day(),
		g.HeadCount(), g.TotalCost.StringFixed(2), strings.Join(g.PlayedNames(), ", "))
}

// User is a login-capable member of a team
type User struct {
	ID      string `json:"id"`
	TeamID  string `json:"teamId"`
	Name    string `json:"name"`
	AuthID  string `json:"authId"`
	Role    string `json:"role"`
	Revoked bool   `json:"revoked"`
}

// IsManager reports whether the user can change team data
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}

// CreateTeamRequest request model
type CreateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// UpdateTeamRequest request model
type UpdateTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddPlayerRequest request model
type AddPlayerRequest struct {
	Name    string `json:"name" binding:"required"`
	Comment string `json:"comment"`
}

// EditPlayerRequest request model
type EditPlayerRequest struct {
	Name    string `json:"name" binding:"required"`
	Retired bool   `json:"retired"`
	Comment string `json:"comment"`
}

// GameRequest is used by both add and edit game
type GameRequest struct {
	Date            string            `json:"date" binding:"required"`
	TotalCost       decimal.Decimal   `json:"totalCost"`
	ExpectedPlayers int               `json:"expectedPlayers"`
	Participants    []GameParticipant `json:"participants" binding:"required,min=1"`
}

// UserRequest is used by both add and edit user access
type UserRequest struct {
	Name    string `json:"name" binding:"required"`
	AuthID  string `json:"authId" binding:"required"`
	Role    string `json:"role" binding:"required,oneof=manager player"`
	Revoked bool   `json:"revoked"`
}
