package sportsbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/playbook-agents/playbook/llm"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/nbastats"
	"github.com/playbook-agents/playbook/odds"
	"github.com/playbook-agents/playbook/react"
	"github.com/playbook-agents/playbook/trace"
)

const analysisPrompt = `
You are an NBA Sportsbook agent designed to provide betting-relevant insights.

Query: %s

Your goal is to answer the query, determine the most effective course of action to address it using the presented data, reasoning, previous observations.

You must reason carefully over this data to produce high-confidence, insight-driven answers that could support betting decisions (e.g., identifying player markets with high value, team trends, or same-game parlays). You do not have access to tools. You must rely entirely on the information provided.

%s

%s

Instructions:
1. Analyze the query, previous reasoning steps, observations, and the data.
2. Decide on the next course of action.
3. Respond in the following JSON format:

If not ready to answer:
{
    "thought": "Detailed reasoning about what the query requires, what you are analyzing, and what you're thinking through."
}

If you have enough information to answer the query:
{
    "thought": "Your final reasoning process",
    "answer": "Your comprehensive answer to the query"
}

Guidelines:
- Be thorough in your reasoning.
- Always base your reasoning on the actual observations.
- Prioritize insights that assist betting decisions (e.g., team trends, player hot streaks, stats).
- Make sure to account for the number of minutes played by players with respect to the stats.
- Give high importance to player performance of players in recent 10 games over past games.
- Be transparent when data is insufficient or inconclusive.
- Do not guess; rely only on verifiable data or acknowledge uncertainty.
- Provide a final answer only when you're confident you have sufficient information.
- If presented data is not sufficient to answer the user query, answer with the data you have and what additional data you require.
`

// DefaultAnalysisIterations bounds the analysis agent's think cycles. The
// agent has no tools, so extra cycles only buy it more reasoning room.
const DefaultAnalysisIterations = 2

// statColumns are the game-log columns averaged and rendered per player.
var statColumns = []string{
	"MIN", "PTS", "REB", "AST", "STL", "BLK",
	"FGM", "FGA", "FG_PCT",
	"FG3M", "FG3A", "FG3_PCT",
	"FTM", "FTA", "FT_PCT",
	"TOV", "PF", "PLUS_MINUS",
}

// AnalysisAgent produces the final betting insight: a tool-less bounded
// reasoning loop over the reconciled game, player stats and market prices.
type AnalysisAgent struct {
	Model    llm.Client
	MaxIters int
	Logger   logging.Logger
	Tracer   trace.Tracer
}

// Run executes the reasoning loop and stores the model's answer on the
// state. Exhausting the budget without an answer fails the run.
func (a *AnalysisAgent) Run(ctx context.Context, state *State) error {
	maxIters := a.MaxIters
	if maxIters <= 0 {
		maxIters = DefaultAnalysisIterations
	}

	// The data snapshot is fixed for the whole loop; only the reasoning
	// transcript grows between iterations.
	gameDetails := buildGameDetails(state)

	transcript := &react.Transcript{}
	transcript.Add("user", state.UserQuery)

	loop := &react.Loop{
		Name:     "analysis_agent",
		Model:    a.Model,
		MaxIters: maxIters,
		BuildPrompt: func(history string) string {
			if history != "" {
				history = "Previous reasoning steps and observations: " + history
			}
			return fmt.Sprintf(analysisPrompt, state.UserQuery, gameDetails, history)
		},
		Logger: a.Logger,
		Tracer: a.Tracer,
	}

	outcome, err := loop.Run(ctx, transcript)
	if err != nil {
		return err
	}
	state.FinalAnswer = outcome.Answer
	return nil
}

// buildGameDetails renders the data block the analysis prompt reasons over:
// the reconciled game, season stats for each mapped player, and that
// player's market prices from the matched betting event.
func buildGameDetails(state *State) string {
	var b strings.Builder
	b.WriteString("\n---\n## Game Info:")
	if state.GameDetails == nil {
		return b.String()
	}
	details := state.GameDetails

	fmt.Fprintf(&b, "\n    - Home Team: %s\n    - Away Team: %s\n",
		details.HomeTeam.OddsTeamName, details.AwayTeam.OddsTeamName)

	playersWithStats := map[string]bool{}
	if len(details.Players) > 0 {
		b.WriteString("\n## Recent Player Stats:\n")
		for _, mapping := range details.Players {
			stats, ok := state.PlayerStats[mapping.NBAPlayerID]
			if !ok {
				continue
			}
			playersWithStats[mapping.OddsPlayerName] = true
			fmt.Fprintf(&b, "    - Player Name: %s\n", mapping.OddsPlayerName)
			b.WriteString(playerStatsSummary(stats))
			b.WriteString("\n")
		}
	}

	event, ok := state.UpcomingBets[details.OddsGameID]
	if !ok {
		return b.String()
	}
	b.WriteString("\n---\n## Betting Odds:\n")
	for _, playerName := range event.PlayerMarkets.Entities() {
		if !playersWithStats[playerName] {
			continue
		}
		fmt.Fprintf(&b, "    - Player Name: %s\n", playerName)
		for _, marketKey := range event.PlayerMarkets.MarketKeys() {
			outcomes := event.PlayerMarkets.OutcomesFor(marketKey, playerName)
			if len(outcomes) == 0 {
				continue
			}
			fmt.Fprintf(&b, "        - %s\n", strings.ToUpper(marketKey))
			for _, o := range outcomes {
				american, err := odds.DecimalToAmerican(o.Price)
				if err != nil {
					continue
				}
				line := ""
				if o.Point != nil {
					line = fmt.Sprintf(" %g", *o.Point)
				}
				if american > 0 {
					fmt.Fprintf(&b, "            - %s%s +%d\n", o.Name, line, american)
				} else {
					fmt.Fprintf(&b, "            - %s%s %d\n", o.Name, line, american)
				}
			}
		}
	}
	return b.String()
}

// playerStatsSummary renders season averages followed by game-by-game lines.
func playerStatsSummary(stats nbastats.Table) string {
	games := stats.Len()
	if games == 0 {
		return "        No game log rows available.\n"
	}

	avg := map[string]float64{}
	for _, col := range statColumns {
		var sum float64
		for row := 0; row < games; row++ {
			sum += stats.Float(row, col)
		}
		avg[col] = sum / float64(games)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "        *Averages over last %d games this season:*\n", games)
	fmt.Fprintf(&b, "        - MIN: %.1f, PTS: %.1f, REB: %.1f, AST: %.1f, STL: %.1f, BLK: %.1f\n",
		avg["MIN"], avg["PTS"], avg["REB"], avg["AST"], avg["STL"], avg["BLK"])
	fmt.Fprintf(&b, "        - FG: %.1f/%.1f (%.1f%%), 3P: %.1f/%.1f (%.1f%%), FT: %.1f/%.1f (%.1f%%)\n",
		avg["FGM"], avg["FGA"], avg["FG_PCT"]*100,
		avg["FG3M"], avg["FG3A"], avg["FG3_PCT"]*100,
		avg["FTM"], avg["FTA"], avg["FT_PCT"]*100)
	fmt.Fprintf(&b, "        - TOV: %.1f, PF: %.1f, +/-: %.1f\n\n", avg["TOV"], avg["PF"], avg["PLUS_MINUS"])

	b.WriteString("        *Game-by-game stats this season:*\n")
	for row := 0; row < games; row++ {
		fmt.Fprintf(&b,
			"        - %s vs %s: %s pts, %s reb, %s ast, %s stl, %s blk, FG %s/%s (%.1f%%), 3P %s/%s (%.1f%%), FT %s/%s (%.1f%%), %s TO, %s PF, %s +/- in %s mins\n",
			stats.String(row, "GAME_DATE"), stats.String(row, "MATCHUP"),
			stats.String(row, "PTS"), stats.String(row, "REB"), stats.String(row, "AST"),
			stats.String(row, "STL"), stats.String(row, "BLK"),
			stats.String(row, "FGM"), stats.String(row, "FGA"), stats.Float(row, "FG_PCT")*100,
			stats.String(row, "FG3M"), stats.String(row, "FG3A"), stats.Float(row, "FG3_PCT")*100,
			stats.String(row, "FTM"), stats.String(row, "FTA"), stats.Float(row, "FT_PCT")*100,
			stats.String(row, "TOV"), stats.String(row, "PF"), stats.String(row, "PLUS_MINUS"),
			stats.String(row, "MIN"))
	}
	return b.String()
}
