package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func sampleEvent() EventOdds {
	return EventOdds{
		ID:       "evt1",
		HomeTeam: "New York Knicks",
		AwayTeam: "Boston Celtics",
		Bookmakers: []Bookmaker{
			{
				Key: "fanduel",
				Markets: []Market{
					{Key: "h2h", Outcomes: []Outcome{
						{Name: "New York Knicks", Price: 1.87},
						{Name: "Boston Celtics", Price: 1.95},
					}},
					{Key: "spreads", Outcomes: []Outcome{
						{Name: "New York Knicks", Price: 1.91, Point: ptr(-2.5)},
						{Name: "Boston Celtics", Price: 1.91, Point: ptr(2.5)},
					}},
					{Key: "team_totals", Outcomes: []Outcome{
						{Name: "Over", Description: "New York Knicks", Price: 1.9, Point: ptr(112.5)},
					}},
					{Key: "player_points", Outcomes: []Outcome{
						{Name: "Over", Description: "Jalen Brunson", Price: 1.85, Point: ptr(27.5)},
						{Name: "Under", Description: "Jalen Brunson", Price: 1.95, Point: ptr(27.5)},
						{Name: "Over", Description: "Jayson Tatum", Price: 1.87, Point: ptr(28.5)},
					}},
					{Key: "player_assists", Outcomes: []Outcome{
						{Name: "Over", Description: "Jalen Brunson", Price: 1.8, Point: ptr(6.5)},
					}},
				},
			},
			// A second book must be ignored: only the preferred one counts.
			{Key: "draftkings", Markets: []Market{{Key: "h2h"}}},
		},
	}
}

func TestNewBetEvent_GroupsMarketsByKind(t *testing.T) {
	be := NewBetEvent(sampleEvent())

	assert.Equal(t, "evt1", be.ID)
	assert.Equal(t, "fanduel", be.Bookmaker)
	assert.Equal(t, []string{"h2h"}, be.MatchMarkets.MarketKeys())
	assert.Equal(t, []string{"spreads", "team_totals"}, be.TeamMarkets.MarketKeys())
	assert.Equal(t, []string{"player_assists", "player_points"}, be.PlayerMarkets.MarketKeys())
}

func TestNewBetEvent_DescriptionIndex(t *testing.T) {
	be := NewBetEvent(sampleEvent())

	// Prop outcomes index by description (the player), falling back to the
	// outcome name for line markets.
	brunsonPoints := be.PlayerMarkets.OutcomesFor("player_points", "Jalen Brunson")
	assert.Len(t, brunsonPoints, 2)
	assert.ElementsMatch(t, []string{"Jalen Brunson", "Jayson Tatum"}, be.PlayerMarkets.Entities())

	spreads := be.TeamMarkets.OutcomesFor("spreads", "New York Knicks")
	assert.Len(t, spreads, 1)
	assert.Equal(t, -2.5, *spreads[0].Point)
}

func TestNewBetEvent_NoBookmakers(t *testing.T) {
	be := NewBetEvent(EventOdds{ID: "empty"})
	assert.Empty(t, be.Bookmaker)
	assert.Empty(t, be.PlayerMarkets.Entities())
	assert.Empty(t, be.MatchMarkets.MarketKeys())
}

func TestClassifyMarket(t *testing.T) {
	assert.Equal(t, marketClassPlayer, classifyMarket("player_points_rebounds_assists"))
	assert.Equal(t, marketClassTeam, classifyMarket("alternate_spreads"))
	assert.Equal(t, marketClassTeam, classifyMarket("team_totals"))
	assert.Equal(t, marketClassMatch, classifyMarket("h2h"))
	assert.Equal(t, marketClassMatch, classifyMarket("totals"))
}

func TestDecimalToAmerican(t *testing.T) {
	cases := []struct {
		decimal  float64
		american int
	}{
		{2.0, 100},
		{3.5, 250},
		{1.5, -200},
		{1.91, -109},
	}
	for _, c := range cases {
		got, err := DecimalToAmerican(c.decimal)
		assert.NoError(t, err)
		assert.Equal(t, c.american, got, "decimal %.2f", c.decimal)
	}
}

func TestDecimalToAmerican_BelowMinimum(t *testing.T) {
	_, err := DecimalToAmerican(1.005)
	assert.Error(t, err)
}

func TestFormatOutcome(t *testing.T) {
	s := FormatOutcome(Outcome{Name: "Over", Description: "Jalen Brunson", Price: 1.85, Point: ptr(27.5)})
	assert.Contains(t, s, "Over (Jalen Brunson)")
	assert.Contains(t, s, "27.5")
	assert.Contains(t, s, "@ 1.85")
	assert.Contains(t, s, "(-117)") // -100/0.85 truncated
}

func TestAllMarkets_CoversEveryGroup(t *testing.T) {
	assert.Contains(t, AllMarkets, "h2h")
	assert.Contains(t, AllMarkets, "alternate_team_totals")
	assert.Contains(t, AllMarkets, "player_triple_double")
	assert.Len(t, AllMarkets, len(MainMarkets)+len(AlternateMarkets)+len(PlayerMarkets))
}
