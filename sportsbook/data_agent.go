package sportsbook

import (
	"context"
	"fmt"
	"strings"

	"github.com/playbook-agents/playbook/llm"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/react"
	"github.com/playbook-agents/playbook/tool"
	"github.com/playbook-agents/playbook/trace"
)

const dataPrompt = `
You are a Data Agent in a multi-agent NBA sportsbook system.

Your role is to examine the user's query and determine what data is required to fulfill it.
You have access to a shared state that may already contain some data.
Your task is to identify any missing data and use the appropriate tools to load only the missing parts.

Query: %s

Current known data in memory (state): %s

Previous reasoning steps and observations (if any, this is your scratchpad):
%s

Available tools:
%s

Instructions:
1. Determine data required to fulfill the query based on the query and current state.
2. Compare that with the current state to identify missing data.
3. If data is missing, select a tool to load it.
4. Tools always take keyword arguments or no arguments. The structure of the inputs
   is already provided in the available tools description. Respect the input format
   strictly; do not add comments in the arguments.
5. If all required data is already available in the current state, you must respond
   with an "answer" indicating data is ready.
6. Your primary goal is to ensure all necessary data is loaded into the state. Do not attempt to answer the user's query directly or perform analysis.
7. If user asks for specific players, only load stats for those players.

Respond only in this JSON format:

If you need to use a tool:
{
    "thought": "Describe your reasoning: what data is missing, why this specific tool is needed, and what parameters you'll use.",
    "action": {
        "name": "Tool name (e.g., load_upcoming_nba_games_and_bets)",
        "reason": "Briefly explain why this tool is necessary now.",
        "input": { "param_name": "value" }
    }
}

If no more data is needed:
{
    "thought": "Explain why you believe all necessary data is now available in the state.",
    "answer": "Data is ready. Pass to the next agent."
}

Guidelines:
- Never provide final analysis or betting insights. Your role is data acquisition.
- Only focus on determining and acquiring required data.
- Avoid redundant tool calls for data already present in the current state.
- Make decisions solely based on the current query and what's missing in the current state.
- If a tool call fails or the LLM response is malformed, you will be prompted to try again.
  Use the history to understand previous attempts and avoid repeating mistakes.
`

// DefaultDataIterations bounds the data agent's think/act cycles.
const DefaultDataIterations = 5

// DataAgent drives the data-acquisition phase: a bounded think/decide/act
// loop whose tools load games, bets and player stats into the shared state.
// Data-source failures are fatal here since analysis without data is useless.
type DataAgent struct {
	Model    llm.Client
	Loader   *Loader
	MaxIters int
	Logger   logging.Logger
	Tracer   trace.Tracer
}

// Run executes the acquisition loop against state. When the model declares
// the data ready, RequiredDataLoaded is set; exhausting the budget without a
// declaration is a permanent failure for the run.
func (a *DataAgent) Run(ctx context.Context, state *State) error {
	tools, err := a.buildTools(state)
	if err != nil {
		return err
	}

	maxIters := a.MaxIters
	if maxIters <= 0 {
		maxIters = DefaultDataIterations
	}

	transcript := &react.Transcript{}
	transcript.Add("user", state.UserQuery)

	loop := &react.Loop{
		Name:     "data_agent",
		Model:    a.Model,
		MaxIters: maxIters,
		Tools:    tools,
		BuildPrompt: func(history string) string {
			return fmt.Sprintf(dataPrompt, state.UserQuery, state.Summarize(), history, tools.Describe())
		},
		Observe:         func(name string, result any) string { return a.merge(state, name, result) },
		FailOnToolError: true,
		Logger:          a.Logger,
		Tracer:          a.Tracer,
	}

	outcome, err := loop.Run(ctx, transcript)
	if err != nil {
		return err
	}
	state.RequiredDataLoaded = true
	if a.Logger != nil {
		a.Logger.Info("sportsbook.data.ready", "answer", outcome.Answer, "thinks", outcome.Thinks, "tool_calls", outcome.ToolCalls)
	}
	return nil
}

func (a *DataAgent) buildTools(state *State) (*tool.Registry, error) {
	registry := tool.NewRegistry()

	err := registry.Register(tool.Tool{
		Name:        "load_upcoming_nba_games_and_bets",
		Description: "Loads all upcoming NBA games with their team IDs, names, and player IDs, names; and sportsbook bets with bet event id, team names, player names and bet markets. Use this tool to get an overview of available games and betting markets.",
		Outputs:     "(Dict[nba_game_id, Dict[NBATeamInfo, List[NBAPlayerInfo]]], Dict[bet_event_id, BetEvent])",
		Func: func(ctx context.Context, _ map[string]any) (any, error) {
			games, bets, err := a.Loader.LoadGamesAndBets(ctx, 1)
			if err != nil {
				return nil, err
			}
			state.UpcomingGames = games
			state.UpcomingBets = bets
			return "Successfully loaded upcoming NBA games along with the bets into state.", nil
		},
	})
	if err != nil {
		return nil, err
	}

	err = registry.Register(tool.Tool{
		Name:        "load_players_stats",
		Description: "Loads NBA players stats for a given list of player IDs. Note: the player_ids are the unique identifiers from the NBA website/API, not player names from the Odds API. You typically use this tool after identifying relevant players from game and bet information.",
		Inputs:      map[string]any{"player_ids": []string{"player_id_1", "player_id_2", "player_id_n"}},
		Outputs:     "Dict[str, PlayerStats]",
		Func: func(ctx context.Context, args map[string]any) (any, error) {
			ids, err := stringSlice(args["player_ids"])
			if err != nil {
				return nil, fmt.Errorf("player_ids: %w", err)
			}
			stats, err := a.Loader.LoadPlayerStats(ctx, ids)
			if err != nil {
				return nil, err
			}
			for id, table := range stats {
				state.PlayerStats[id] = table
			}
			return "Successfully loaded player stats for " + strings.Join(sortedKeys(stats), ","), nil
		},
	})
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// merge turns tool results into transcript observations. The tools already
// wrote into the state; the string result is the observation itself.
func (a *DataAgent) merge(_ *State, name string, result any) string {
	if msg, ok := result.(string); ok {
		return fmt.Sprintf("Observation from %s: %s", name, msg)
	}
	return ""
}

// stringSlice coerces a decoded JSON value into a string slice. Models send
// arrays of strings or numbers; both are accepted.
func stringSlice(v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %T", v)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case float64:
			out = append(out, fmt.Sprintf("%.0f", s))
		default:
			return nil, fmt.Errorf("expected string elements, got %T", item)
		}
	}
	return out, nil
}
