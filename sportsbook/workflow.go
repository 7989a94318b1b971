package sportsbook

import (
	"context"

	"github.com/playbook-agents/playbook/graph"
	"github.com/playbook-agents/playbook/logging"
)

// Workflow wires the sportsbook agents into an executable graph:
//
//	data_agent -+-> metadata_agent -> analysis_agent -+-> END (answered)
//	            `-> data_agent (data not ready)       `-> analysis_agent
//
// The retry branches are driven purely by state flags; in practice the
// agents' internal budgets fail the run before either branch cycles, but the
// topology keeps every transition explicit and testable.
type Workflow struct {
	Data     *DataAgent
	Metadata *MetadataAgent
	Analysis *AnalysisAgent
	Logger   logging.Logger
}

// Compile builds and validates the workflow graph.
func (w *Workflow) Compile() (*graph.Graph[*State], error) {
	g, err := graph.NewBuilder[*State]().
		AddNode("data_agent", w.Data.Run).
		AddNode("metadata_agent", w.Metadata.Run).
		AddNode("analysis_agent", w.Analysis.Run).
		SetEntryPoint("data_agent").
		AddConditionalEdges("data_agent", dataCheck, map[string]string{
			"ready":   "metadata_agent",
			"not_yet": "data_agent",
		}).
		AddEdge("metadata_agent", "analysis_agent").
		AddConditionalEdges("analysis_agent", answerCheck, map[string]string{
			"answered":  graph.END,
			"more_work": "analysis_agent",
		}).
		Compile()
	if err != nil {
		return nil, err
	}
	return g.WithLogger(w.logger()), nil
}

// Run executes the workflow for one user query and returns the final state.
func (w *Workflow) Run(ctx context.Context, userQuery string) (*State, error) {
	g, err := w.Compile()
	if err != nil {
		return nil, err
	}
	state := NewState(userQuery)
	if err := g.Run(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

func dataCheck(state *State) string {
	if state.RequiredDataLoaded {
		return "ready"
	}
	return "not_yet"
}

func answerCheck(state *State) string {
	if state.FinalAnswer != "" {
		return "answered"
	}
	return "more_work"
}

func (w *Workflow) logger() logging.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return logging.NoOpLogger{}
}
