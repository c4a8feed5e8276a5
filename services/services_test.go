package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/casualfootball/cffa-backend/config"
	"github.com/casualfootball/cffa-backend/ledger"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/repository/memory"
	"github.com/casualfootball/cffa-backend/utils"
)

var testNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *memory.Store
	teamID   string
	manager  *models.User
	teams    *TeamService
	players  *PlayerService
	games    *GameService
	payments *PaymentService
	ledger   *LedgerService
	users    *UserService
	excel    *ExcelService
	archive  *ArchiveService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	clock := func() time.Time { return testNow }

	env := &testEnv{
		store:    store,
		teams:    NewTeamService(store),
		players:  NewPlayerService(store),
		games:    NewGameService(store, store).WithClock(clock),
		payments: NewPaymentService(store, store, store),
		ledger:   NewLedgerService(store, store, store, config.LedgerConfig{RetirementMonths: 6, RecentMonths: 1}).WithClock(clock),
		users:    NewUserService(store),
	}
	env.excel = NewExcelService(store, env.ledger, store)
	env.archive = NewArchiveService(store, store, env.ledger)

	team, manager, err := env.teams.CreateTeam(context.Background(), &models.CreateTeamRequest{Name: "Sunday  League"}, "auth-manager", "carl")
	require.NoError(t, err)
	env.teamID = team.ID
	env.manager = manager
	return env
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func gameRequest(date, cost string, participants ...models.GameParticipant) *models.GameRequest {
	return &models.GameRequest{Date: date, TotalCost: money(cost), Participants: participants}
}

func TestBuildGame_Valid(t *testing.T) {
	game, err := BuildGame(gameRequest("2024-03-01", "60.00",
		models.GameParticipant{Name: " alice ", Played: true},
		models.GameParticipant{Name: "bob", Played: true},
		models.GameParticipant{Name: "carl", Played: true, Booker: true},
		models.GameParticipant{Name: "dave"},
	))
	require.NoError(t, err)

	assert.Equal(t, "Carl", game.Booker)
	assert.Equal(t, []string{"Alice", "Bob", "Carl"}, game.PlayedNames())
	assert.Len(t, game.Participants, 3, "entries with nothing to record are dropped")
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), game.Date)
}

func TestBuildGame_Violations(t *testing.T) {
	tests := []struct {
		name  string
		req   *models.GameRequest
		field string
	}{
		{"bad date", gameRequest("01/03/2024", "10", models.GameParticipant{Name: "A", Played: true, Booker: true}), "date"},
		{"zero cost", gameRequest("2024-03-01", "0", models.GameParticipant{Name: "A", Played: true, Booker: true}), "totalCost"},
		{"fractional pennies", gameRequest("2024-03-01", "10.001", models.GameParticipant{Name: "A", Played: true, Booker: true}), "totalCost"},
		{"no booker", gameRequest("2024-03-01", "10", models.GameParticipant{Name: "A", Played: true}), "participants"},
		{"two bookers", gameRequest("2024-03-01", "10",
			models.GameParticipant{Name: "A", Played: true, Booker: true},
			models.GameParticipant{Name: "B", Played: true, Booker: true}), "participants"},
		{"duplicate names", gameRequest("2024-03-01", "10",
			models.GameParticipant{Name: "A", Played: true, Booker: true},
			models.GameParticipant{Name: "a", Played: true}), "participants[1]"},
		{"blank name", gameRequest("2024-03-01", "10",
			models.GameParticipant{Name: "A", Played: true, Booker: true},
			models.GameParticipant{Name: "  ", Played: true}), "participants[1]"},
		{"negative guests", gameRequest("2024-03-01", "10",
			models.GameParticipant{Name: "A", Played: true, Booker: true, Guests: -2}), "participants[0]"},
		{"booker only, no heads", gameRequest("2024-03-01", "10",
			models.GameParticipant{Name: "A", Booker: true}), "participants"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildGame(tt.req)
			var v utils.Violations
			require.True(t, errors.As(err, &v), "want violations, got %v", err)
			assert.True(t, v.Has(tt.field), "violations %v should include %s", v, tt.field)
		})
	}
}

func TestBuildGame_ExpectedPlayers(t *testing.T) {
	req := gameRequest("2024-03-01", "50.00",
		models.GameParticipant{Name: "A", Played: true, Guests: 1},
		models.GameParticipant{Name: "B", Played: true, Booker: true},
	)
	req.ExpectedPlayers = 3
	_, err := BuildGame(req)
	assert.NoError(t, err)

	req.ExpectedPlayers = 4
	_, err = BuildGame(req)
	var v utils.Violations
	require.True(t, errors.As(err, &v))
	assert.True(t, v.Has("expectedPlayers"))
}

func TestGameService_AddCreatesPlayersAndBalances(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.games.AddGame(ctx, env.teamID, gameRequest("2024-06-01", "60.00",
		models.GameParticipant{Name: "alice", Played: true},
		models.GameParticipant{Name: "bob", Played: true},
		models.GameParticipant{Name: "carl", Played: true, Booker: true},
	))
	require.NoError(t, err)

	players, err := env.players.ListPlayers(ctx, env.teamID, PlayerFilterAll)
	require.NoError(t, err)
	assert.Len(t, players, 3)

	summary, err := env.ledger.TeamSummary(ctx, env.teamID)
	require.NoError(t, err)
	alice, _ := summary.Find("Alice")
	carl, _ := summary.Find("Carl")
	assert.Equal(t, "-20.00", alice.Balance.StringFixed(2))
	assert.Equal(t, "40.00", carl.Balance.StringFixed(2))
	assert.Len(t, summary.RecentGames, 1)
	assert.Equal(t, "2024/6/1,3 players, 60.00 : Alice, Bob, Carl", summary.RecentGames[0].Label)
}

func TestGameService_EditAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	game, err := env.games.AddGame(ctx, env.teamID, gameRequest("2024-06-01", "60.00",
		models.GameParticipant{Name: "Alice", Played: true},
		models.GameParticipant{Name: "Carl", Played: true, Booker: true},
	))
	require.NoError(t, err)

	_, err = env.games.EditGame(ctx, env.teamID, game.ID, gameRequest("2024-06-02", "50.00",
		models.GameParticipant{Name: "Alice", Played: true, Guests: 1},
		models.GameParticipant{Name: "Carl", Played: true, Booker: true},
	))
	require.NoError(t, err)

	statement, err := env.ledger.PlayerStatement(ctx, env.teamID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "-33.34", statement.Balance.StringFixed(2))

	require.NoError(t, env.games.DeleteGame(ctx, env.teamID, game.ID))
	statement, err = env.ledger.PlayerStatement(ctx, env.teamID, "Alice")
	require.NoError(t, err)
	assert.True(t, statement.Balance.IsZero())
	assert.Empty(t, statement.Lines)

	_, err = env.games.EditGame(ctx, env.teamID, game.ID, gameRequest("2024-06-02", "50.00",
		models.GameParticipant{Name: "Carl", Played: true, Booker: true}))
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestGameService_NewGameDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.games.AddGame(ctx, env.teamID, gameRequest("2024-05-01", "30.00",
		models.GameParticipant{Name: "Alice", Played: true},
		models.GameParticipant{Name: "Bob", Played: true, Booker: true},
	))
	require.NoError(t, err)
	_, err = env.games.AddGame(ctx, env.teamID, gameRequest("2024-06-01", "30.00",
		models.GameParticipant{Name: "Alice", Played: true, Booker: true},
		models.GameParticipant{Name: "Dan", Played: true},
	))
	require.NoError(t, err)
	_, err = env.players.SetRetired(ctx, env.teamID, "Dan", true)
	require.NoError(t, err)

	defaults, err := env.games.NewGameDefaults(ctx, env.teamID, "bob")
	require.NoError(t, err)

	assert.Equal(t, "2024-06-15", defaults.Date)
	assert.Equal(t, "Bob", defaults.Booker)
	assert.Equal(t, []models.GameParticipant{
		{Name: "Alice", Played: true},
		{Name: "Bob", Booker: true},
	}, defaults.Participants)
}

func TestPaymentService_AddPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.players.AddPlayer(ctx, env.teamID, &models.AddPlayerRequest{Name: "alice"})
	require.NoError(t, err)

	payment, err := env.payments.AddPayment(ctx, env.teamID, &models.PaymentRequest{
		Player: "ALICE", Date: "2024-06-10", Amount: money("-20.00"), Description: "Bank transfer",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", payment.Player)

	_, err = env.payments.AddPayment(ctx, env.teamID, &models.PaymentRequest{
		Player: "Nobody", Date: "2024-06-10", Amount: money("5"),
	})
	assert.True(t, errors.Is(err, utils.ErrNotFound))

	_, err = env.payments.AddPayment(ctx, env.teamID, &models.PaymentRequest{
		Player: "Alice", Date: "2024-06-10", Amount: decimal.Zero,
	})
	var v utils.Violations
	require.True(t, errors.As(err, &v))
	assert.True(t, v.Has("amount"))
}

func TestPaymentService_Autopay(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.payments.PreviewAutopay(ctx, env.teamID, "Carl")
	var noGame *ledger.NoEligibleGameError
	require.True(t, errors.As(err, &noGame))

	game, err := env.games.AddGame(ctx, env.teamID, gameRequest("2024-06-01", "60.00",
		models.GameParticipant{Name: "Alice", Played: true},
		models.GameParticipant{Name: "Carl", Played: true, Booker: true},
	))
	require.NoError(t, err)

	preview, err := env.payments.PreviewAutopay(ctx, env.teamID, "carl")
	require.NoError(t, err)
	assert.False(t, preview.AlreadyPaid)
	assert.Equal(t, game.ID, preview.Payment.GameID)
	assert.Equal(t, "60.00", preview.Payment.Amount.StringFixed(2))

	payment, err := env.payments.ConfirmAutopay(ctx, env.teamID, "Carl")
	require.NoError(t, err)
	assert.NotEmpty(t, payment.ID)

	_, err = env.payments.ConfirmAutopay(ctx, env.teamID, "Carl")
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 409, appErr.Code)

	preview, err = env.payments.PreviewAutopay(ctx, env.teamID, "Carl")
	require.NoError(t, err)
	assert.True(t, preview.AlreadyPaid)
}

func TestPlayerService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.players.AddPlayer(ctx, env.teamID, &models.AddPlayerRequest{Name: "alice smith"})
	require.NoError(t, err)
	_, err = env.players.AddPlayer(ctx, env.teamID, &models.AddPlayerRequest{Name: "Alice  Smith"})
	assert.True(t, errors.Is(err, utils.ErrConflict))

	_, err = env.games.AddGame(ctx, env.teamID, gameRequest("2024-06-01", "10.00",
		models.GameParticipant{Name: "Alice Smith", Played: true, Booker: true}))
	require.NoError(t, err)

	renamed, err := env.players.EditPlayer(ctx, env.teamID, "alice smith", &models.EditPlayerRequest{Name: "alice jones", Comment: "married"})
	require.NoError(t, err)
	assert.Equal(t, "Alice Jones", renamed.Name)

	games, err := env.games.ListGames(ctx, env.teamID)
	require.NoError(t, err)
	assert.Equal(t, "Alice Jones", games[0].Booker)

	_, err = env.players.SetRetired(ctx, env.teamID, "Alice Jones", true)
	require.NoError(t, err)
	active, err := env.players.ListPlayers(ctx, env.teamID, PlayerFilterActive)
	require.NoError(t, err)
	assert.Empty(t, active)
	retired, err := env.players.ListPlayers(ctx, env.teamID, PlayerFilterRetired)
	require.NoError(t, err)
	assert.Len(t, retired, 1)

	_, err = env.players.ListPlayers(ctx, env.teamID, "bogus")
	assert.Error(t, err)
}

func TestLedgerService_RetirementRecommendations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.games.AddGame(ctx, env.teamID, gameRequest("2023-10-01", "20.00",
		models.GameParticipant{Name: "Old", Played: true},
		models.GameParticipant{Name: "Carl", Played: true, Booker: true},
	))
	require.NoError(t, err)
	_, err = env.payments.AddPayment(ctx, env.teamID, &models.PaymentRequest{Player: "Old", Date: "2023-10-02", Amount: money("10.00")})
	require.NoError(t, err)
	_, err = env.payments.AddPayment(ctx, env.teamID, &models.PaymentRequest{Player: "Carl", Date: "2023-10-02", Amount: money("-10.00")})
	require.NoError(t, err)
	_, err = env.players.AddPlayer(ctx, env.teamID, &models.AddPlayerRequest{Name: "Newbie"})
	require.NoError(t, err)

	summary, err := env.ledger.TeamSummary(ctx, env.teamID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Carl", "Newbie", "Old"}, summary.RetirementRecommendations)
	assert.Empty(t, summary.RecentGames, "recent window is one month")
	assert.True(t, summary.NetBalance.IsZero())
}

func TestLedgerService_PlayerSelfSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.games.AddGame(ctx, env.teamID, gameRequest("2024-06-01", "60.00",
		models.GameParticipant{Name: "Alice", Played: true},
		models.GameParticipant{Name: "Carl", Played: true, Booker: true},
	))
	require.NoError(t, err)

	self, err := env.ledger.PlayerSelfSummary(ctx, &models.User{TeamID: env.teamID, Name: "alice", Role: models.RolePlayer})
	require.NoError(t, err)
	assert.Equal(t, "-30.00", self.Player.Balance.StringFixed(2))
	assert.Len(t, self.Statement.Lines, 1)

	_, err = env.ledger.PlayerSelfSummary(ctx, &models.User{TeamID: env.teamID, Name: "Stranger"})
	assert.Error(t, err)
}

func TestTeamService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	team, err := env.teams.GetTeam(ctx, env.teamID)
	require.NoError(t, err)
	assert.Equal(t, "Sunday League", team.Name)
	assert.Equal(t, "Carl", env.manager.Name)
	assert.True(t, env.manager.IsManager())

	_, _, err = env.teams.CreateTeam(ctx, &models.CreateTeamRequest{Name: "Sunday League"}, "someone", "x")
	assert.True(t, errors.Is(err, utils.ErrConflict))

	team, err = env.teams.UpdateTeam(ctx, env.teamID, &models.UpdateTeamRequest{Name: "Monday League"})
	require.NoError(t, err)
	assert.Equal(t, "Monday League", team.Name)

	require.NoError(t, env.teams.DeleteTeam(ctx, env.teamID))
	_, err = env.teams.GetTeam(ctx, env.teamID)
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestUserService(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.users.AddUser(ctx, env.teamID, &models.UserRequest{Name: "alice", AuthID: "auth-alice", Role: models.RolePlayer})
	require.NoError(t, err)

	resolved, err := env.users.Resolve(ctx, "auth-alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	_, err = env.users.EditUser(ctx, env.manager, user.ID, &models.UserRequest{Name: "Alice", AuthID: "auth-alice", Role: models.RolePlayer, Revoked: true})
	require.NoError(t, err)
	_, err = env.users.Resolve(ctx, "auth-alice")
	assert.True(t, errors.Is(err, utils.ErrForbidden))

	_, err = env.users.EditUser(ctx, env.manager, env.manager.ID, &models.UserRequest{Name: "Carl", AuthID: "auth-manager", Role: models.RolePlayer})
	assert.Error(t, err)

	_, err = env.users.AddUser(ctx, env.teamID, &models.UserRequest{Name: "Bob", AuthID: "auth-bob", Role: "admin"})
	var v utils.Violations
	require.True(t, errors.As(err, &v))
	assert.True(t, v.Has("role"))

	users, err := env.users.ListUsers(ctx, env.teamID)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestExcelService_ExportImportRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.games.AddGame(ctx, env.teamID, gameRequest("2024-06-01", "50.00",
		models.GameParticipant{Name: "Alice", Played: true, Guests: 1},
		models.GameParticipant{Name: "Carl", Played: true, Booker: true},
	))
	require.NoError(t, err)
	_, err = env.payments.ConfirmAutopay(ctx, env.teamID, "Carl")
	require.NoError(t, err)
	_, err = env.payments.AddPayment(ctx, env.teamID, &models.PaymentRequest{Player: "Alice", Date: "2024-06-02", Amount: money("33.34"), Description: "cash"})
	require.NoError(t, err)

	before, err := env.ledger.TeamSummary(ctx, env.teamID)
	require.NoError(t, err)

	f, filename, err := env.excel.ExportTeamToExcel(ctx, env.teamID)
	require.NoError(t, err)
	assert.Equal(t, "Sunday_League_Export_2024-06-15.xlsx", filename)
	assert.Equal(t, []string{SheetSummary, SheetGames, SheetPayments, SheetPlayers}, f.GetSheetList())

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := env.excel.ImportTeamFromExcel(ctx, env.teamID, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Games)
	assert.Equal(t, 2, result.Payments)
	assert.Equal(t, 2, result.Players)

	after, err := env.ledger.TeamSummary(ctx, env.teamID)
	require.NoError(t, err)
	require.Len(t, after.Players, len(before.Players))
	for i := range before.Players {
		assert.Equal(t, before.Players[i].Name, after.Players[i].Name)
		assert.True(t, before.Players[i].Balance.Equal(after.Players[i].Balance), "balance of %s", before.Players[i].Name)
	}
}

func TestExcelService_ImportInfersRetirement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	f := excelize.NewFile()
	write := func(sheet string, rows [][]interface{}) {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}
	write(SheetPlayers, [][]interface{}{{"Name", "Retired", "Comment"}, {"carl", "No", ""}})
	write(SheetGames, [][]interface{}{
		{"Game ID", "Date", "Total Cost", "Player", "Played", "Guests", "Booker"},
		{"g1", "2023-01-07", 20, "Old Timer", "Yes", 0, "No"},
		{"g1", "2023-01-07", 20, "Carl", "Yes", 0, "Yes"},
		{"g2", "2024-06-01", 30, "Debtor", "Yes", 0, "No"},
		{"g2", "2024-06-01", 30, "Carl", "Yes", 1, "Yes"},
	})
	write(SheetPayments, [][]interface{}{
		{"Payment ID", "Date", "Player", "Description", "Amount", "Game ID"},
		{"", "2023-01-08", "old timer", "settled", 10, ""},
	})

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	result, err := env.excel.ImportTeamFromExcel(ctx, env.teamID, &buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"Old Timer"}, result.RetiredInferred)
	assert.Equal(t, 3, result.Players)

	debtor, err := env.store.GetPlayer(ctx, env.teamID, "Debtor")
	require.NoError(t, err)
	assert.False(t, debtor.Retired)
}

func TestExcelService_ImportRejectsBadRows(t *testing.T) {
	env := newTestEnv(t)

	f := excelize.NewFile()
	_, err := f.NewSheet(SheetGames)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(SheetGames, "A1", &[]interface{}{"Game ID", "Date", "Total Cost", "Player", "Played", "Guests", "Booker"}))
	require.NoError(t, f.SetSheetRow(SheetGames, "A2", &[]interface{}{"g1", "not a date", 20, "Carl", "Yes", 0, "Yes"}))

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err = env.excel.ImportTeamFromExcel(context.Background(), env.teamID, &buf)
	var v utils.Violations
	require.True(t, errors.As(err, &v))
	assert.True(t, v.Has("Games row 2"))
	assert.True(t, v.Has(SheetPlayers), "missing sheets are reported")
}

func TestArchiveService_WriteArchive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, env.archive.WriteArchive(ctx, env.teamID, &buf))
	assert.NotZero(t, buf.Len())

	name, err := env.archive.ArchiveFilename(ctx, env.teamID)
	require.NoError(t, err)
	assert.Equal(t, "Sunday_League_Archive_2024-06-15.zip", name)
}
