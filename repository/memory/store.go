// Package memory is an in-process store with the same behaviour as the
// PostgreSQL repositories. It backs the memory database driver and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/repository"
	"github.com/casualfootball/cffa-backend/utils"
)

// Store keeps every team collection in memory
type Store struct {
	mu       sync.Mutex
	teams    map[string]models.Team
	players  []models.Player
	games    []models.Game
	payments []models.Payment
	users    []models.User
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{teams: make(map[string]models.Team)}
}

func cloneGame(g models.Game) models.Game {
	g.Participants = slices.Clone(g.Participants)
	return g
}

func (m *Store) CreateTeam(_ context.Context, team *models.Team, manager *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.teams {
		if t.Name == team.Name {
			return fmt.Errorf("team %s: %w", team.Name, utils.ErrConflict)
		}
	}
	team.ID = uuid.NewString()
	team.CreatedAt = time.Now().UTC()
	m.teams[team.ID] = *team
	manager.ID = uuid.NewString()
	manager.Role = models.RoleManager
	manager.TeamID = team.ID
	m.users = append(m.users, *manager)
	return nil
}

func (m *Store) GetTeam(_ context.Context, teamID string) (*models.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("team %s: %w", teamID, utils.ErrNotFound)
	}
	return &t, nil
}

func (m *Store) UpdateTeam(_ context.Context, team *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[team.ID]; !ok {
		return fmt.Errorf("team %s: %w", team.ID, utils.ErrNotFound)
	}
	for id, t := range m.teams {
		if id != team.ID && t.Name == team.Name {
			return fmt.Errorf("team %s: %w", team.Name, utils.ErrConflict)
		}
	}
	m.teams[team.ID] = *team
	return nil
}

func (m *Store) DeleteTeam(_ context.Context, teamID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[teamID]; !ok {
		return fmt.Errorf("team %s: %w", teamID, utils.ErrNotFound)
	}
	delete(m.teams, teamID)
	m.players = slices.DeleteFunc(m.players, func(p models.Player) bool { return p.TeamID == teamID })
	m.games = slices.DeleteFunc(m.games, func(g models.Game) bool { return g.TeamID == teamID })
	m.payments = slices.DeleteFunc(m.payments, func(p models.Payment) bool { return p.TeamID == teamID })
	m.users = slices.DeleteFunc(m.users, func(u models.User) bool { return u.TeamID == teamID })
	return nil
}

func (m *Store) ListPlayers(_ context.Context, teamID string) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Player{}
	for _, p := range m.players {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b models.Player) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *Store) GetPlayer(_ context.Context, teamID, name string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.players {
		if p.TeamID == teamID && p.Name == name {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("player %s: %w", name, utils.ErrNotFound)
}

func (m *Store) CreatePlayer(_ context.Context, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertPlayer(*player)
}

func (m *Store) insertPlayer(player models.Player) error {
	for _, p := range m.players {
		if p.TeamID == player.TeamID && p.Name == player.Name {
			return fmt.Errorf("player %s: %w", player.Name, utils.ErrConflict)
		}
	}
	m.players = append(m.players, player)
	return nil
}

func (m *Store) UpdatePlayer(_ context.Context, oldName string, player *models.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := -1
	for i, p := range m.players {
		if p.TeamID == player.TeamID && p.Name == player.Name && p.Name != oldName {
			return fmt.Errorf("player %s: %w", player.Name, utils.ErrConflict)
		}
		if p.TeamID == player.TeamID && p.Name == oldName {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("player %s: %w", oldName, utils.ErrNotFound)
	}
	m.players[idx] = *player
	for gi := range m.games {
		g := &m.games[gi]
		if g.TeamID != player.TeamID {
			continue
		}
		if g.Booker == oldName {
			g.Booker = player.Name
		}
		for pi := range g.Participants {
			if g.Participants[pi].Name == oldName {
				g.Participants[pi].Name = player.Name
			}
		}
	}
	for pi := range m.payments {
		if m.payments[pi].TeamID == player.TeamID && m.payments[pi].Player == oldName {
			m.payments[pi].Player = player.Name
		}
	}
	return nil
}

func (m *Store) ListGames(_ context.Context, teamID string) ([]models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Game{}
	for _, g := range m.games {
		if g.TeamID == teamID {
			out = append(out, cloneGame(g))
		}
	}
	slices.SortStableFunc(out, func(a, b models.Game) int { return a.Date.Compare(b.Date) })
	return out, nil
}

func (m *Store) GetGame(_ context.Context, teamID, gameID string) (*models.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, g := range m.games {
		if g.TeamID == teamID && g.ID == gameID {
			g = cloneGame(g)
			return &g, nil
		}
	}
	return nil, fmt.Errorf("game %s: %w", gameID, utils.ErrNotFound)
}

func (m *Store) CreateGame(_ context.Context, game *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	game.ID = uuid.NewString()
	m.ensurePlayers(game)
	m.games = append(m.games, cloneGame(*game))
	return nil
}

func (m *Store) ensurePlayers(game *models.Game) {
	for _, p := range game.Participants {
		_ = m.insertPlayer(models.Player{TeamID: game.TeamID, Name: p.Name})
	}
}

func (m *Store) UpdateGame(_ context.Context, game *models.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, g := range m.games {
		if g.TeamID == game.TeamID && g.ID == game.ID {
			m.ensurePlayers(game)
			m.games[i] = cloneGame(*game)
			return nil
		}
	}
	return fmt.Errorf("game %s: %w", game.ID, utils.ErrNotFound)
}

func (m *Store) DeleteGame(_ context.Context, teamID, gameID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.games)
	m.games = slices.DeleteFunc(m.games, func(g models.Game) bool { return g.TeamID == teamID && g.ID == gameID })
	if len(m.games) == n {
		return fmt.Errorf("game %s: %w", gameID, utils.ErrNotFound)
	}
	return nil
}

func (m *Store) ListPayments(_ context.Context, teamID string) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Payment{}
	for _, p := range m.payments {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Payment) int { return a.Date.Compare(b.Date) })
	return out, nil
}

func (m *Store) CreatePayment(_ context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment.GameID != "" {
		for _, p := range m.payments {
			if p.GameID == payment.GameID {
				return fmt.Errorf("payment for game %s: %w", payment.GameID, utils.ErrConflict)
			}
		}
	}
	payment.ID = uuid.NewString()
	payment.CreatedAt = time.Now().UTC()
	m.payments = append(m.payments, *payment)
	return nil
}

func (m *Store) HasPaymentForGame(_ context.Context, teamID, gameID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TeamID == teamID && p.GameID == gameID {
			return true, nil
		}
	}
	return false, nil
}

func (m *Store) ListUsers(_ context.Context, teamID string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if u.TeamID == teamID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *Store) GetUserByAuthID(_ context.Context, authID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.AuthID == authID {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", authID, utils.ErrNotFound)
}

func (m *Store) GetUser(_ context.Context, teamID, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.TeamID == teamID && u.ID == userID {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", userID, utils.ErrNotFound)
}

func (m *Store) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.AuthID == user.AuthID {
			return fmt.Errorf("user %s: %w", user.AuthID, utils.ErrConflict)
		}
	}
	user.ID = uuid.NewString()
	m.users = append(m.users, *user)
	return nil
}

func (m *Store) UpdateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, u := range m.users {
		if u.TeamID == user.TeamID && u.ID == user.ID {
			m.users[i] = *user
			return nil
		}
	}
	return fmt.Errorf("user %s: %w", user.ID, utils.ErrNotFound)
}

func (m *Store) ReplaceTeamData(_ context.Context, teamID string, data *repository.TeamData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players = slices.DeleteFunc(m.players, func(p models.Player) bool { return p.TeamID == teamID })
	m.games = slices.DeleteFunc(m.games, func(g models.Game) bool { return g.TeamID == teamID })
	m.payments = slices.DeleteFunc(m.payments, func(p models.Payment) bool { return p.TeamID == teamID })
	for i := range data.Players {
		data.Players[i].TeamID = teamID
		if err := m.insertPlayer(data.Players[i]); err != nil {
			return err
		}
	}
	gameIDs := make(map[string]string, len(data.Games))
	for i := range data.Games {
		g := &data.Games[i]
		g.TeamID = teamID
		newID := uuid.NewString()
		if g.ID != "" {
			gameIDs[g.ID] = newID
		}
		g.ID = newID
		m.ensurePlayers(g)
		m.games = append(m.games, cloneGame(*g))
	}
	now := time.Now().UTC()
	for i := range data.Payments {
		p := &data.Payments[i]
		p.TeamID = teamID
		p.ID = uuid.NewString()
		p.GameID = gameIDs[p.GameID]
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		m.payments = append(m.payments, *p)
	}
	return nil
}
