package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casualfootball/cffa-backend/models"
)

func TestSummarizeTeam(t *testing.T) {
	players := []models.Player{
		{Name: "A"},
		{Name: "B"},
		{Name: "C"},
		{Name: "Old", Retired: true},
	}
	games := []models.Game{threePlayerGame()}
	payments := []models.Payment{
		{Player: "A", Amount: d("20.00"), Date: day(2024, time.March, 2)},
		{Player: "Old", Amount: d("-3.00"), Date: day(2023, time.January, 2)},
	}
	asOf := day(2024, time.April, 1)

	summary, err := SummarizeTeam(players, games, payments, DefaultRetirementPolicy(), asOf)
	require.NoError(t, err)
	require.Len(t, summary.Players, 4)

	assert.Equal(t, []string{"A", "B", "C", "Old"}, names(summary.Players))
	assert.Equal(t, 1, summary.GamesCount)
	assertAmount(t, "60.00", summary.TotalGameCost)
	assertAmount(t, "17.00", summary.NetBalance)

	a, ok := summary.Find("A")
	require.True(t, ok)
	assertAmount(t, "0.00", a.Balance)
	assert.Equal(t, 1, a.GamesPlayed)
	require.NotNil(t, a.LastPlayed)
	assert.Equal(t, day(2024, time.March, 1), *a.LastPlayed)
	assert.False(t, a.RetirementEligible, "played within the window")

	old, ok := summary.Find("Old")
	require.True(t, ok)
	assert.True(t, old.Retired)
	assert.Nil(t, old.LastPlayed)
	assert.False(t, old.RetirementEligible, "still owes money")

	assert.Equal(t, []string{"A", "B", "C"}, names(summary.Active()))
}

func TestSummarizeTeam_IncludesUnlistedNames(t *testing.T) {
	payments := []models.Payment{{Player: "Stranger", Amount: d("1.00"), Date: day(2024, time.March, 2)}}

	summary, err := SummarizeTeam(nil, []models.Game{threePlayerGame()}, payments, DefaultRetirementPolicy(), day(2024, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "Stranger"}, names(summary.Players))
}

func TestShouldPlayerBeRetired(t *testing.T) {
	asOf := day(2024, time.December, 1)
	longAgo := day(2024, time.January, 1)
	recent := day(2024, time.November, 1)
	policy := DefaultRetirementPolicy()

	tests := []struct {
		name string
		row  PlayerSummary
		want bool
	}{
		{"inactive and settled", PlayerSummary{Balance: d("0"), LastPlayed: &longAgo}, true},
		{"never played and settled", PlayerSummary{Balance: d("0")}, true},
		{"recent and settled", PlayerSummary{Balance: d("0"), LastPlayed: &recent}, false},
		{"inactive with debt", PlayerSummary{Balance: d("-0.01"), LastPlayed: &longAgo}, false},
		{"inactive with credit", PlayerSummary{Balance: d("12.50"), LastPlayed: &longAgo}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldPlayerBeRetired(tt.row, policy, asOf))
		})
	}
}

func TestRetirementPolicy_Configurable(t *testing.T) {
	asOf := day(2024, time.December, 1)
	lastPlayed := day(2024, time.October, 1)
	row := PlayerSummary{Balance: d("0"), LastPlayed: &lastPlayed}

	assert.False(t, ShouldPlayerBeRetired(row, DefaultRetirementPolicy(), asOf))
	assert.True(t, ShouldPlayerBeRetired(row, RetirementPolicy{InactivityMonths: 1}, asOf))
}

func names(rows []PlayerSummary) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestRetirementPolicy_CutoffClampsMonthEnd(t *testing.T) {
	policy := RetirementPolicy{InactivityMonths: 1}

	assert.Equal(t, day(2024, time.February, 29), policy.Cutoff(day(2024, time.March, 31)))
	assert.Equal(t, day(2024, time.March, 1), policy.Cutoff(day(2024, time.April, 1)))
	assert.Equal(t, day(2024, time.June, 1), DefaultRetirementPolicy().Cutoff(day(2024, time.December, 1)))
}
