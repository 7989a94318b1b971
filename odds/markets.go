package odds

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// teamMarketKeys are the non-prop markets keyed to a team rather than the
// match line itself.
var teamMarketKeys = map[string]struct{}{
	"spreads":               {},
	"alternate_spreads":     {},
	"team_totals":           {},
	"alternate_team_totals": {},
}

// MarketGroup buckets one bookmaker's markets and indexes outcomes by the
// entity (player or team) they describe.
type MarketGroup struct {
	Markets map[string]Market
	// byDescription: market key → entity name → outcomes for that entity.
	byDescription map[string]map[string][]Outcome
}

// NewMarketGroup indexes the given markets. Outcomes without a description
// fall back to their Name as the entity key.
func NewMarketGroup(markets []Market) MarketGroup {
	g := MarketGroup{
		Markets:       make(map[string]Market, len(markets)),
		byDescription: make(map[string]map[string][]Outcome, len(markets)),
	}
	for _, m := range markets {
		g.Markets[m.Key] = m
		index := make(map[string][]Outcome)
		for _, o := range m.Outcomes {
			entity := o.Description
			if entity == "" {
				entity = o.Name
			}
			index[entity] = append(index[entity], o)
		}
		g.byDescription[m.Key] = index
	}
	return g
}

// MarketKeys lists the group's market keys in sorted order.
func (g MarketGroup) MarketKeys() []string {
	keys := make([]string, 0, len(g.Markets))
	for k := range g.Markets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// OutcomesFor returns the outcomes of one market that describe the given
// entity.
func (g MarketGroup) OutcomesFor(marketKey, entity string) []Outcome {
	return g.byDescription[marketKey][entity]
}

// Entities lists every entity named across the group's markets, sorted and
// de-duplicated.
func (g MarketGroup) Entities() []string {
	seen := make(map[string]struct{})
	for _, index := range g.byDescription {
		for entity := range index {
			seen[entity] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BetEvent is one event's odds reorganised for analysis: markets split into
// match-level, team-level and player-prop groups. Only the first bookmaker
// of the payload is used; the client queries a single preferred book.
type BetEvent struct {
	ID            string
	HomeTeam      string
	AwayTeam      string
	Bookmaker     string
	MatchMarkets  MarketGroup
	TeamMarkets   MarketGroup
	PlayerMarkets MarketGroup
}

// NewBetEvent groups an odds payload. An event with no bookmakers yields an
// event with empty groups.
func NewBetEvent(e EventOdds) BetEvent {
	be := BetEvent{ID: e.ID, HomeTeam: e.HomeTeam, AwayTeam: e.AwayTeam}

	var match, team, player []Market
	if len(e.Bookmakers) > 0 {
		bm := e.Bookmakers[0]
		be.Bookmaker = bm.Key
		for _, m := range bm.Markets {
			switch classifyMarket(m.Key) {
			case marketClassPlayer:
				player = append(player, m)
			case marketClassTeam:
				team = append(team, m)
			default:
				match = append(match, m)
			}
		}
	}
	be.MatchMarkets = NewMarketGroup(match)
	be.TeamMarkets = NewMarketGroup(team)
	be.PlayerMarkets = NewMarketGroup(player)
	return be
}

type marketClass int

const (
	marketClassMatch marketClass = iota
	marketClassTeam
	marketClassPlayer
)

func classifyMarket(key string) marketClass {
	if strings.HasPrefix(key, "player_") {
		return marketClassPlayer
	}
	if _, ok := teamMarketKeys[key]; ok {
		return marketClassTeam
	}
	return marketClassMatch
}

// MinimumDecimalOdds is the lowest decimal price that converts to American
// odds; anything lower has no meaningful American representation.
const MinimumDecimalOdds = 1.01

// DecimalToAmerican converts decimal odds to American odds. Prices at or
// above 2.0 map to positive lines, below to negative ones. The fractional
// part is truncated, matching how sportsbooks display these lines.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal < MinimumDecimalOdds {
		return 0, fmt.Errorf("odds: decimal price %.4f below minimum %.2f", decimal, MinimumDecimalOdds)
	}
	if decimal >= 2.0 {
		return int(math.Trunc((decimal - 1) * 100)), nil
	}
	return int(math.Trunc(-100 / (decimal - 1))), nil
}

// FormatOutcome renders one outcome for a prompt: entity, line and price in
// both decimal and American form. Outcomes priced below MinimumDecimalOdds
// render without an American line.
func FormatOutcome(o Outcome) string {
	var b strings.Builder
	b.WriteString(o.Name)
	if o.Description != "" && o.Description != o.Name {
		b.WriteString(" (")
		b.WriteString(o.Description)
		b.WriteString(")")
	}
	if o.Point != nil {
		fmt.Fprintf(&b, " %g", *o.Point)
	}
	fmt.Fprintf(&b, " @ %.2f", o.Price)
	if american, err := DecimalToAmerican(o.Price); err == nil {
		if american > 0 {
			fmt.Fprintf(&b, " (+%d)", american)
		} else {
			fmt.Fprintf(&b, " (%d)", american)
		}
	}
	return b.String()
}
