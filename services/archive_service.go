package services

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/casualfootball/cffa-backend/utils"
)

// ArchiveService exports every collection of a team as JSON files in a zip
type ArchiveService struct {
	teams  TeamStore
	users  UserStore
	ledger *LedgerService
}

// NewArchiveService creates a new archive service
func NewArchiveService(teams TeamStore, users UserStore, ledgerService *LedgerService) *ArchiveService {
	return &ArchiveService{teams: teams, users: users, ledger: ledgerService}
}

// ArchiveFilename is the download name for a team's archive
func (s *ArchiveService) ArchiveFilename(ctx context.Context, teamID string) (string, error) {
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_Archive_%s.zip", utils.CleanFileName(team.Name), s.ledger.now().Format(utils.DateLayout)), nil
}

// WriteArchive writes team.json, players.json, games.json, payments.json and
// users.json into a zip stream
func (s *ArchiveService) WriteArchive(ctx context.Context, teamID string, w io.Writer) error {
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	snap, err := s.ledger.Snapshot(ctx, teamID)
	if err != nil {
		return err
	}
	users, err := s.users.ListUsers(ctx, teamID)
	if err != nil {
		return fmt.Errorf("failed to get users: %w", err)
	}

	zw := zip.NewWriter(w)
	files := []struct {
		name string
		data any
	}{
		{"team.json", team},
		{"players.json", snap.Players},
		{"games.json", snap.Games},
		{"payments.json", snap.Payments},
		{"users.json", users},
	}
	for _, file := range files {
		fw, err := zw.Create(file.name)
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", file.name, err)
		}
		enc := json.NewEncoder(fw)
		enc.SetIndent("", "  ")
		if err := enc.Encode(file.data); err != nil {
			return fmt.Errorf("failed to encode %s: %w", file.name, err)
		}
	}
	return zw.Close()
}
