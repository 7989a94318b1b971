package macro

import (
	"context"
	"fmt"
	"time"

	"github.com/playbook-agents/playbook/calendar"
	"github.com/playbook-agents/playbook/graph"
	"github.com/playbook-agents/playbook/logging"
)

// noSummaryNote is the calendar description used when an event reaches the
// persist step without a usable summary.
const noSummaryNote = "Meeting prep not available for this event."

// Workflow wires the calendar-prep agents into an executable graph:
//
//	select_events -> pick_next -+-> search -> summarize -> persist -> pick_next
//	                            `-> END (no events left)
//
// Each selected event makes one full pass through search, summarize and
// persist before the cursor advances.
type Workflow struct {
	Events     *EventsAgent
	Search     *SearchAgent
	Summarizer *SummarizerAgent
	Calendar   calendar.Service
	Logger     logging.Logger
	// Location is the zone event wall-clock dates are interpreted in;
	// defaults to the economic calendar's publishing zone.
	Location *time.Location
}

// Compile builds and validates the workflow graph.
func (w *Workflow) Compile() (*graph.Graph[*State], error) {
	g, err := graph.NewBuilder[*State]().
		AddNode("select_events", w.Events.Run).
		AddNode("pick_next", w.pickNext).
		AddNode("search", w.Search.Run).
		AddNode("summarize", w.Summarizer.Run).
		AddNode("persist", w.persist).
		SetEntryPoint("select_events").
		AddEdge("select_events", "pick_next").
		AddConditionalEdges("pick_next", hasCurrentEvent, map[string]string{
			"event": "search",
			"done":  graph.END,
		}).
		AddEdge("search", "summarize").
		AddEdge("summarize", "persist").
		AddEdge("persist", "pick_next").
		Compile()
	if err != nil {
		return nil, err
	}
	return g.WithLogger(w.logger()), nil
}

// Run loads the existing calendar window, executes the graph over it and
// returns the final state.
func (w *Workflow) Run(ctx context.Context) (*State, error) {
	g, err := w.Compile()
	if err != nil {
		return nil, err
	}

	// The prompt needs recent history too, so the window reaches back a week.
	now := time.Now()
	existing, err := w.Calendar.ListEvents(ctx, now.AddDate(0, 0, -7), now.AddDate(0, 0, 7))
	if err != nil {
		return nil, fmt.Errorf("macro: list calendar events: %w", err)
	}
	seed := make([]Event, 0, len(existing))
	for _, e := range existing {
		seed = append(seed, Event{Name: e.Title, Date: e.Start.Format(EventDateLayout)})
	}

	state := NewState(seed)
	if err := g.Run(ctx, state); err != nil {
		return state, err
	}
	return state, nil
}

func hasCurrentEvent(state *State) string {
	if state.Current != nil {
		return "event"
	}
	return "done"
}

func (w *Workflow) pickNext(_ context.Context, state *State) error {
	if state.Advance() {
		w.logger().Info("macro.workflow.next_event", "index", state.Cursor, "event", state.Current.Name)
	} else {
		w.logger().Info("macro.workflow.all_events_processed", "count", len(state.UpcomingEvents))
	}
	return nil
}

// persist writes the current event to the calendar with 7am reminders the
// day before and the morning of. Runs without a summary still create the
// entry so the reminder fires either way.
func (w *Workflow) persist(ctx context.Context, state *State) error {
	event := state.Current

	start, err := event.StartTime(w.location())
	if err != nil {
		return err
	}
	description := event.Summary
	if description == "" {
		description = noSummaryNote
	}

	created, err := w.Calendar.CreateEvent(ctx, calendar.CreateRequest{
		Title:       event.Name,
		Description: description,
		Start:       start,
		Reminders:   calendar.PrepReminders(start),
	})
	if err != nil {
		return fmt.Errorf("macro: create calendar event %q: %w", event.Name, err)
	}
	w.logger().Info("macro.workflow.event_created", "event", event.Name, "id", created.ID, "link", created.HTMLLink)
	return nil
}

func (w *Workflow) location() *time.Location {
	if w.Location != nil {
		return w.Location
	}
	loc, err := time.LoadLocation(calendar.DefaultTimeZone)
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

func (w *Workflow) logger() logging.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return logging.NoOpLogger{}
}
