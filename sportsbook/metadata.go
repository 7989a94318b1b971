package sportsbook

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/playbook-agents/playbook/llm"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/structured"
	"github.com/playbook-agents/playbook/trace"
)

const metadataPrompt = `
You are a Metadata Resolver Agent in an NBA sportsbook system. Your task is to reconcile and link data between two sources:

1. The **NBA API**, which contains information about NBA games, teams, and players.
2. The **Odds (Betting) API**, which provides betting events and markets, including team and player names.

Your goal is to:
- Use the **user query** to identify the game the user is most interested in.
- Select the matching NBA game and betting event.
- Construct a mapping of identifiers across both systems.

---

### User Query:
%s

### NBA Games:
Each entry includes a game_id, teams, and players.

%s

### Betting Events:
Each entry includes an event_id, teams, and player names.

%s

---

### Instructions:
1. From the user query, infer which game is most relevant (based on team names, player names, or date).
2. Match the NBA game with the betting event based on teams playing the event. Confirm the mapping.
3. Map NBA team IDs to their corresponding betting team names. Use string similarity or team names to infer this.
4. Match NBA player IDs to betting player names only for the ones the user requested for if any. The names may differ slightly (e.g., abbreviations, accents). Use fuzzy matching or educated reasoning. Some NBA players may not appear in the betting event - that's okay. Identify all the mappings you can.
5. Create a JSON object containing:
   - game_info: mapping between nba_game_id and odds_game_id.
   - home_team_info: mapping between home_team_id and odds_home_team.
   - away_team_info: mapping between away_team_id and odds_away_team.
   - players_info: list of mappings between nba_player_id and odds_player_name for matched players.

### Format your response as JSON if you found a match. Respond only in this json format (don't add any comments in your response):
` + "```json" + `
{
  "thought": "Your complete thought process in coming up with this conclusion.",
  "answer": {
    "game_info": {
      "nba_game_id": "...",
      "odds_game_id": "..."
    },
    "home_team_info": {
      "nba_team_id": "...",
      "odds_team_name": "..."
    },
    "away_team_info": {
      "nba_team_id": "...",
      "odds_team_name": "..."
    },
    "players_info": [
      {"nba_player_id": "...", "odds_player_name": "..."}
    ]
  }
}
`

// MetadataAgent reconciles NBA and odds identifiers for the one game the
// user's query targets. It is a single-shot agent: one prompt, one parse.
type MetadataAgent struct {
	Model  llm.Client
	Logger logging.Logger
	Tracer trace.Tracer
}

// Run asks the model for the cross-source mapping and stores it on the
// state. A model failure or a response that fails to decode leaves
// GameDetails unset; analysis then proceeds without the reconciled view
// rather than failing the run.
func (a *MetadataAgent) Run(ctx context.Context, state *State) error {
	logger := a.logger()
	tracer := a.tracer()

	prompt, err := a.buildPrompt(state)
	if err != nil {
		return err
	}
	tracer.Record("user", prompt)

	response, err := a.Model.Complete(ctx, llm.UserMessage(prompt))
	if err != nil {
		logger.Warn("sportsbook.metadata.model_failed", "error", err.Error())
		tracer.Record("system", fmt.Sprintf("MetadataAgent got no response from the model: %v", err))
		return nil
	}
	tracer.Record("assistant", response)

	details, err := parseGameDetails(response)
	if err != nil {
		logger.Error("sportsbook.metadata.parse_failed", "error", err)
		tracer.Record("system", fmt.Sprintf("MetadataAgent failed to parse: %v", err))
		return nil
	}
	state.GameDetails = details
	logger.Info("sportsbook.metadata.resolved",
		"nba_game_id", details.NBAGameID, "odds_game_id", details.OddsGameID, "players", len(details.Players))
	return nil
}

func (a *MetadataAgent) buildPrompt(state *State) (string, error) {
	type playerJSON struct {
		ID   string `json:"nba_player_id"`
		Name string `json:"nba_player_name"`
	}
	type teamJSON struct {
		ID      string       `json:"nba_team_id"`
		Name    string       `json:"nba_team_name"`
		Players []playerJSON `json:"players"`
	}
	type gameJSON struct {
		ID    string     `json:"nba_game_id"`
		Teams []teamJSON `json:"teams"`
	}
	type eventJSON struct {
		ID          string   `json:"odds_game_id"`
		HomeTeam    string   `json:"home_team"`
		AwayTeam    string   `json:"away_team"`
		PlayerNames []string `json:"player_names"`
	}

	games := make([]gameJSON, 0, len(state.UpcomingGames))
	for _, gameID := range sortedKeys(state.UpcomingGames) {
		game := state.UpcomingGames[gameID]
		entry := gameJSON{ID: gameID}
		for _, roster := range game.Rosters {
			team := teamJSON{ID: roster.Team.ID, Name: roster.Team.Name}
			for _, p := range roster.Players {
				team.Players = append(team.Players, playerJSON{ID: p.ID, Name: p.Name})
			}
			entry.Teams = append(entry.Teams, team)
		}
		games = append(games, entry)
	}

	events := make([]eventJSON, 0, len(state.UpcomingBets))
	for _, eventID := range sortedKeys(state.UpcomingBets) {
		event := state.UpcomingBets[eventID]
		events = append(events, eventJSON{
			ID:          eventID,
			HomeTeam:    event.HomeTeam,
			AwayTeam:    event.AwayTeam,
			PlayerNames: event.PlayerMarkets.Entities(),
		})
	}

	gamesBlob, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return "", fmt.Errorf("sportsbook: encode games for prompt: %w", err)
	}
	eventsBlob, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return "", fmt.Errorf("sportsbook: encode events for prompt: %w", err)
	}
	return fmt.Sprintf(metadataPrompt, state.UserQuery, gamesBlob, eventsBlob), nil
}

func parseGameDetails(response string) (*GameDetails, error) {
	doc, err := structured.Parse(response)
	if err != nil {
		return nil, err
	}
	answer := doc.Get("answer")
	if !answer.IsObject() {
		return nil, fmt.Errorf("response has no answer object")
	}

	details := &GameDetails{
		NBAGameID:  answer.Get("game_info.nba_game_id").String(),
		OddsGameID: answer.Get("game_info.odds_game_id").String(),
		HomeTeam: TeamMapping{
			NBATeamID:    answer.Get("home_team_info.nba_team_id").String(),
			OddsTeamName: answer.Get("home_team_info.odds_team_name").String(),
		},
		AwayTeam: TeamMapping{
			NBATeamID:    answer.Get("away_team_info.nba_team_id").String(),
			OddsTeamName: answer.Get("away_team_info.odds_team_name").String(),
		},
	}
	if details.NBAGameID == "" || details.OddsGameID == "" {
		return nil, fmt.Errorf("answer is missing game id mappings")
	}
	for _, p := range answer.Get("players_info").Array() {
		details.Players = append(details.Players, PlayerMapping{
			NBAPlayerID:    p.Get("nba_player_id").String(),
			OddsPlayerName: p.Get("odds_player_name").String(),
		})
	}
	return details, nil
}

func (a *MetadataAgent) logger() logging.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logging.NoOpLogger{}
}

func (a *MetadataAgent) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}
	return trace.Nop{}
}
