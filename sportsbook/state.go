// Package sportsbook implements the NBA betting-insight workflow: a data
// agent loads upcoming games, rosters, player stats and betting markets into
// shared state through tools, a metadata agent reconciles identifiers across
// the NBA and odds data sources, and an analysis agent reasons over the
// merged picture to answer the user's betting query.
package sportsbook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/playbook-agents/playbook/nbastats"
	"github.com/playbook-agents/playbook/odds"
)

// NBATeam identifies a team as the NBA stats API knows it.
type NBATeam struct {
	ID   string
	Name string
}

// NBAPlayer identifies a player as the NBA stats API knows it.
type NBAPlayer struct {
	ID   string
	Name string
}

// Roster is one team's side of an upcoming game.
type Roster struct {
	Team    NBATeam
	Players []NBAPlayer
}

// Game is one upcoming NBA game: home roster first, away roster second.
type Game struct {
	ID      string
	Rosters []Roster
}

// TeamMapping links an NBA team id to the name the odds source uses for it.
type TeamMapping struct {
	NBATeamID    string
	OddsTeamName string
}

// PlayerMapping links an NBA player id to the name the odds source uses.
type PlayerMapping struct {
	NBAPlayerID    string
	OddsPlayerName string
}

// GameDetails is the reconciled cross-source view of the one game the user's
// query is about, produced by the metadata agent.
type GameDetails struct {
	NBAGameID  string
	OddsGameID string
	HomeTeam   TeamMapping
	AwayTeam   TeamMapping
	Players    []PlayerMapping
}

// State is the shared mutable state the workflow's agents read and write.
// One State value lives for one run.
type State struct {
	UserQuery   string
	FinalAnswer string

	// GameDetails is set by the metadata agent; nil when reconciliation
	// failed, in which case analysis proceeds on whatever it has.
	GameDetails *GameDetails

	// UpcomingGames maps NBA game id to its rosters.
	UpcomingGames map[string]Game
	// PlayerStats maps NBA player id to that player's game log.
	PlayerStats map[string]nbastats.Table
	// UpcomingBets maps odds event id to its grouped betting markets.
	UpcomingBets map[string]odds.BetEvent

	// RequiredDataLoaded is flipped by the data agent once it judges the
	// state sufficient for the query; it gates the transition to metadata.
	RequiredDataLoaded bool
}

// NewState returns a State for one query.
func NewState(userQuery string) *State {
	return &State{
		UserQuery:     userQuery,
		UpcomingGames: map[string]Game{},
		PlayerStats:   map[string]nbastats.Table{},
		UpcomingBets:  map[string]odds.BetEvent{},
	}
}

// Summarize renders the state for the data agent's prompt: what is loaded,
// by id, without dumping raw stats or odds.
func (s *State) Summarize() string {
	if len(s.UpcomingGames) == 0 {
		return "Don't have any information about upcoming games, teams, and players from NBA site."
	}
	if len(s.UpcomingBets) == 0 {
		return "Don't have any information about upcoming bets for the NBA games."
	}

	var b strings.Builder
	b.WriteString("Upcoming Games in NBA from the website:\n")
	for _, gameID := range sortedKeys(s.UpcomingGames) {
		game := s.UpcomingGames[gameID]
		fmt.Fprintf(&b, "nba_game_id: %s\n", gameID)
		for _, roster := range game.Rosters {
			fmt.Fprintf(&b, "  Team in NBA: %s (nba_team_id: %s)\n", roster.Team.Name, roster.Team.ID)
			for _, p := range roster.Players {
				fmt.Fprintf(&b, "    - %s (nba_player_id: %s)\n", p.Name, p.ID)
			}
		}
	}
	b.WriteString("\n")

	if len(s.PlayerStats) > 0 {
		b.WriteString("Player Stats available for player ids:\n")
		for _, playerID := range sortedKeys(s.PlayerStats) {
			fmt.Fprintf(&b, "  - %s\n", playerID)
		}
		b.WriteString("\n")
	}

	b.WriteString("Bets for the upcoming NBA games from Odds API (betting odds, markets are also available for each player but just not displayed here):\n")
	for _, eventID := range sortedKeys(s.UpcomingBets) {
		event := s.UpcomingBets[eventID]
		fmt.Fprintf(&b, "bet_event_id: %s; %s vs %s\n", eventID, event.HomeTeam, event.AwayTeam)
		b.WriteString("  Available player names in player market bets:\n")
		for _, name := range event.PlayerMarkets.Entities() {
			fmt.Fprintf(&b, "    - %s\n", name)
		}
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
