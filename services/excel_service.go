package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/casualfootball/cffa-backend/ledger"
	"github.com/casualfootball/cffa-backend/models"
	"github.com/casualfootball/cffa-backend/repository"
	"github.com/casualfootball/cffa-backend/utils"
)

// Sheet names shared by export and import
const (
	SheetSummary  = "Summary"
	SheetGames    = "Games"
	SheetPayments = "Payments"
	SheetPlayers  = "Players"
)

var (
	gameHeaders    = []string{"Game ID", "Date", "Total Cost", "Player", "Played", "Guests", "Booker"}
	paymentHeaders = []string{"Payment ID", "Date", "Player", "Description", "Amount", "Game ID"}
	playerHeaders  = []string{"Name", "Retired", "Comment"}
	summaryHeaders = []string{"Player", "Retired", "Games Played", "Last Played", "Balance"}
)

// ExcelService handles Excel export and import of a team's ledger
type ExcelService struct {
	teams    TeamStore
	ledger   *LedgerService
	importer ImportStore
}

// NewExcelService creates a new Excel service
func NewExcelService(teams TeamStore, ledgerService *LedgerService, importer ImportStore) *ExcelService {
	return &ExcelService{teams: teams, ledger: ledgerService, importer: importer}
}

// ImportResult reports what an import stored
type ImportResult struct {
	Players         int      `json:"players"`
	Games           int      `json:"games"`
	Payments        int      `json:"payments"`
	RetiredInferred []string `json:"retiredInferred"`
}

// ExportTeamToExcel builds a workbook with Summary, Games, Payments and
// Players sheets
func (s *ExcelService) ExportTeamToExcel(ctx context.Context, teamID string) (*excelize.File, string, error) {
	team, err := s.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, "", err
	}
	snap, err := s.ledger.Snapshot(ctx, teamID)
	if err != nil {
		return nil, "", err
	}
	now := s.ledger.now()
	summary, err := ledger.SummarizeTeam(snap.Players, snap.Games, snap.Payments, s.ledger.policy, now)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create money style: %w", err)
	}
	w := &sheetWriter{f: f, header: headerStyle, money: moneyStyle}

	w.summary(summary)
	w.games(snap.Games)
	w.payments(snap.Payments)
	w.players(snap.Players)
	if w.err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", w.err)
	}

	if idx, err := f.GetSheetIndex(SheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("failed to remove default sheet: %w", err)
	}

	filename := fmt.Sprintf("%s_Export_%s.xlsx", utils.CleanFileName(team.Name), now.Format(utils.DateLayout))
	return f, filename, nil
}

// sheetWriter keeps the first error so the sheet builders stay linear
type sheetWriter struct {
	f      *excelize.File
	header int
	money  int
	err    error
}

func (w *sheetWriter) set(sheet string, col, row int, value interface{}) {
	if w.err != nil {
		return
	}
	var name string
	name, w.err = excelize.CoordinatesToCellName(col, row)
	if w.err == nil {
		w.err = w.f.SetCellValue(sheet, name, value)
	}
}

func (w *sheetWriter) setMoney(sheet string, col, row int, amount decimal.Decimal) {
	w.set(sheet, col, row, amount.Round(utils.MoneyPlaces).InexactFloat64())
	if w.err != nil {
		return
	}
	name, _ := excelize.CoordinatesToCellName(col, row)
	w.err = w.f.SetCellStyle(sheet, name, name, w.money)
}

func (w *sheetWriter) sheet(name string, headers []string, width float64) {
	if w.err != nil {
		return
	}
	if _, w.err = w.f.NewSheet(name); w.err != nil {
		return
	}
	for i, h := range headers {
		w.set(name, i+1, 1, h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if w.err == nil {
		w.err = w.f.SetCellStyle(name, "A1", last, w.header)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if w.err == nil {
		w.err = w.f.SetColWidth(name, "A", lastCol, width)
	}
}

func (w *sheetWriter) summary(summary *ledger.TeamSummary) {
	w.sheet(SheetSummary, summaryHeaders, 15)
	row := 2
	for _, p := range summary.Players {
		w.set(SheetSummary, 1, row, p.Name)
		w.set(SheetSummary, 2, row, yesNo(p.Retired))
		w.set(SheetSummary, 3, row, p.GamesPlayed)
		if p.LastPlayed != nil {
			w.set(SheetSummary, 4, row, p.LastPlayed.Format(utils.DateLayout))
		}
		w.setMoney(SheetSummary, 5, row, p.Balance)
		row++
	}

	row++
	w.set(SheetSummary, 1, row, "Games")
	w.set(SheetSummary, 3, row, summary.GamesCount)
	row++
	w.set(SheetSummary, 1, row, "Total Game Cost")
	w.setMoney(SheetSummary, 5, row, summary.TotalGameCost)
	row++
	w.set(SheetSummary, 1, row, "Net Balance")
	w.setMoney(SheetSummary, 5, row, summary.NetBalance)
}

func (w *sheetWriter) games(games []models.Game) {
	w.sheet(SheetGames, gameHeaders, 14)
	row := 2
	for _, g := range games {
		for _, p := range g.Participants {
			w.set(SheetGames, 1, row, g.ID)
			w.set(SheetGames, 2, row, g.Date.Format(utils.DateLayout))
			w.setMoney(SheetGames, 3, row, g.TotalCost)
			w.set(SheetGames, 4, row, p.Name)
			w.set(SheetGames, 5, row, yesNo(p.Played))
			w.set(SheetGames, 6, row, p.Guests)
			w.set(SheetGames, 7, row, yesNo(p.Name == g.BookerName()))
			row++
		}
	}
}

func (w *sheetWriter) payments(payments []models.Payment) {
	w.sheet(SheetPayments, paymentHeaders, 15)
	if w.err == nil {
		w.err = w.f.SetColWidth(SheetPayments, "D", "D", 30)
	}
	for i, p := range payments {
		row := i + 2
		w.set(SheetPayments, 1, row, p.ID)
		w.set(SheetPayments, 2, row, p.Date.Format(utils.DateLayout))
		w.set(SheetPayments, 3, row, p.Player)
		w.set(SheetPayments, 4, row, p.Description)
		w.setMoney(SheetPayments, 5, row, p.Amount)
		w.set(SheetPayments, 6, row, p.GameID)
	}
}

func (w *sheetWriter) players(players []models.Player) {
	w.sheet(SheetPlayers, playerHeaders, 15)
	for i, p := range players {
		row := i + 2
		w.set(SheetPlayers, 1, row, p.Name)
		w.set(SheetPlayers, 2, row, yesNo(p.Retired))
		w.set(SheetPlayers, 3, row, p.Comment)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// ImportTeamFromExcel replaces the team's players, games and payments with
// the contents of a workbook in the export layout. Names seen in games or
// payments but missing from the Players sheet are created, retired when
// they are inactive and settled.
func (s *ExcelService) ImportTeamFromExcel(ctx context.Context, teamID string, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, utils.NewBadRequestError("file is not a valid Excel workbook")
	}
	defer f.Close()

	data, err := ParseWorkbook(f)
	if err != nil {
		return nil, err
	}

	inferred, err := s.inferMissingPlayers(data)
	if err != nil {
		return nil, err
	}

	if err := s.importer.ReplaceTeamData(ctx, teamID, data); err != nil {
		return nil, fmt.Errorf("failed to import team data: %w", err)
	}

	log.Info().Str("team", teamID).Int("players", len(data.Players)).
		Int("games", len(data.Games)).Int("payments", len(data.Payments)).
		Msg("team data imported")
	return &ImportResult{
		Players:         len(data.Players),
		Games:           len(data.Games),
		Payments:        len(data.Payments),
		RetiredInferred: inferred,
	}, nil
}

func (s *ExcelService) inferMissingPlayers(data *repository.TeamData) ([]string, error) {
	summary, err := ledger.SummarizeTeam(data.Players, data.Games, data.Payments, s.ledger.policy, s.ledger.now())
	if err != nil {
		return nil, err
	}

	listed := make(map[string]bool, len(data.Players))
	for _, p := range data.Players {
		listed[p.Name] = true
	}
	retired := []string{}
	for _, row := range summary.Players {
		if listed[row.Name] {
			continue
		}
		player := models.Player{Name: row.Name, Retired: ledger.ShouldPlayerBeRetired(row, s.ledger.policy, s.ledger.now())}
		if player.Retired {
			retired = append(retired, player.Name)
		}
		data.Players = append(data.Players, player)
	}
	return retired, nil
}

// ParseWorkbook reads the Games, Payments and Players sheets. Every
// problem found is reported together, with sheet and row.
func ParseWorkbook(f *excelize.File) (*repository.TeamData, error) {
	var v utils.Violations
	data := &repository.TeamData{
		Players:  []models.Player{},
		Games:    []models.Game{},
		Payments: []models.Payment{},
	}

	if rows, ok := readSheet(f, SheetPlayers, playerHeaders, &v); ok {
		seen := make(map[string]bool)
		for _, r := range rows {
			name := utils.NormalizeName(r.get("Name"))
			if name == "" {
				continue
			}
			if seen[name] {
				v.Add(r.where(), "player %s is listed more than once", name)
				continue
			}
			seen[name] = true
			data.Players = append(data.Players, models.Player{
				Name:    name,
				Retired: r.flag("Retired"),
				Comment: r.get("Comment"),
			})
		}
	}

	if rows, ok := readSheet(f, SheetGames, gameHeaders, &v); ok {
		index := make(map[string]int)
		for _, r := range rows {
			name := utils.NormalizeName(r.get("Player"))
			if name == "" {
				continue
			}
			id := r.get("Game ID")
			date, dateOK := r.date("Date", &v)
			cost, costOK := r.money("Total Cost", &v)
			guests, guestsOK := r.count("Guests", &v)
			if !dateOK || !costOK || !guestsOK {
				continue
			}
			if id == "" {
				// rows without an ID group by date and cost
				id = date.Format(utils.DateLayout) + "/" + cost.String()
			}

			i, ok := index[id]
			if !ok {
				i = len(data.Games)
				index[id] = i
				data.Games = append(data.Games, models.Game{ID: id, Date: date, TotalCost: cost})
			}
			game := &data.Games[i]
			if !game.Date.Equal(date) || !game.TotalCost.Equal(cost) {
				v.Add(r.where(), "game %s has rows with different dates or costs", id)
				continue
			}

			p := models.GameParticipant{Name: name, Played: r.flag("Played"), Booker: r.flag("Booker"), Guests: guests}
			if p.Booker {
				if game.Booker != "" && game.Booker != name {
					v.Add(r.where(), "game %s has more than one booker", id)
					continue
				}
				game.Booker = name
			}
			game.Participants = append(game.Participants, p)
		}
		for _, g := range data.Games {
			if _, err := ledger.SplitGame(g); err != nil {
				v.Add(SheetGames, "%s", err.Error())
			}
		}
	}

	if rows, ok := readSheet(f, SheetPayments, paymentHeaders, &v); ok {
		for _, r := range rows {
			name := utils.NormalizeName(r.get("Player"))
			if name == "" {
				continue
			}
			date, dateOK := r.date("Date", &v)
			amount, amountOK := r.money("Amount", &v)
			if !dateOK || !amountOK {
				continue
			}
			data.Payments = append(data.Payments, models.Payment{
				Player:      name,
				Description: r.get("Description"),
				Amount:      amount,
				Date:        date,
				GameID:      r.get("Game ID"),
			})
		}
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

type sheetRow struct {
	sheet  string
	number int
	cols   map[string]int
	cells  []string
}

func (r sheetRow) where() string {
	return fmt.Sprintf("%s row %d", r.sheet, r.number)
}

func (r sheetRow) get(header string) string {
	i, ok := r.cols[header]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

func (r sheetRow) flag(header string) bool {
	switch strings.ToLower(r.get(header)) {
	case "yes", "y", "true", "1", "x":
		return true
	}
	return false
}

func (r sheetRow) count(header string, v *utils.Violations) (int, bool) {
	s := r.get(header)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 || n != float64(int(n)) {
		v.Add(r.where(), "%s must be a whole number, got %q", header, s)
		return 0, false
	}
	return int(n), true
}

func (r sheetRow) money(header string, v *utils.Violations) (decimal.Decimal, bool) {
	s := strings.TrimPrefix(r.get(header), "£")
	amount, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		v.Add(r.where(), "%s must be an amount, got %q", header, s)
		return decimal.Zero, false
	}
	return utils.RoundMoney(amount), true
}

func (r sheetRow) date(header string, v *utils.Violations) (time.Time, bool) {
	s := r.get(header)
	if t, err := time.Parse(utils.DateLayout, s); err == nil {
		return t, true
	}
	// dates typed into Excel arrive as serial numbers
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	v.Add(r.where(), "%s must be a YYYY-MM-DD date, got %q", header, s)
	return time.Time{}, false
}

// readSheet returns the data rows of a sheet keyed by its header row. A
// missing sheet or column is recorded as a violation.
func readSheet(f *excelize.File, sheet string, headers []string, v *utils.Violations) ([]sheetRow, bool) {
	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		v.Add(sheet, "sheet is missing")
		return nil, false
	}

	cols := make(map[string]int)
	for i, h := range rows[0] {
		cols[strings.TrimSpace(h)] = i
	}
	ok := true
	for _, h := range headers {
		if _, found := cols[h]; !found && !strings.HasSuffix(h, " ID") && h != "Comment" && h != "Description" {
			v.Add(sheet, "column %q is missing", h)
			ok = false
		}
	}
	if !ok {
		return nil, false
	}

	out := make([]sheetRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		out = append(out, sheetRow{sheet: sheet, number: i + 2, cols: cols, cells: cells})
	}
	return out, true
}
