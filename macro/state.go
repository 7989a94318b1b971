// Package macro implements the economic-calendar preparation workflow: scrape
// an economic calendar, have a model pick the market-moving events not already
// on the user's calendar, research each one through web search and scraping,
// and persist a prep summary as a calendar entry with morning reminders.
package macro

import (
	"fmt"
	"strings"
	"time"
)

// EventDateLayout is the wall-clock format event dates move through the
// workflow in. Times are implicitly Eastern; offsets are stripped at parse.
const EventDateLayout = "2006-01-02T15:04:05"

// SearchResult is one web search hit for an event, annotated as the workflow
// progresses: the filtering step marks the most relevant hits and attaches
// their scraped content.
type SearchResult struct {
	Title          string
	Link           string
	Snippet        string
	ScrapedContent string
	IsTopResult    bool
}

// Event is one macroeconomic event moving through the workflow.
type Event struct {
	Name    string
	Date    string // EventDateLayout wall-clock time
	Summary string
	Results []SearchResult
}

// StartTime parses the event's date in the given location.
func (e Event) StartTime(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(EventDateLayout, e.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("macro: event %q has unparseable date %q: %w", e.Name, e.Date, err)
	}
	return t, nil
}

// State is the shared mutable state the workflow's nodes read and write. One
// State value lives for one run; nodes communicate only through it.
type State struct {
	// CalendarEvents are entries already on the user's calendar, used to
	// avoid creating duplicates.
	CalendarEvents []Event
	// UpcomingEvents are the events the selection step picked for prep.
	UpcomingEvents []Event
	// Cursor indexes the event being processed; -1 before the first pick.
	Cursor int
	// Current aliases UpcomingEvents[Cursor] while an event is in flight and
	// is nil once every event has been processed.
	Current *Event
}

// NewState returns a State seeded with existing calendar entries.
func NewState(calendarEvents []Event) *State {
	return &State{CalendarEvents: calendarEvents, Cursor: -1}
}

// Advance moves the cursor to the next unprocessed event and points Current
// at it, returning false once every event has been visited.
func (s *State) Advance() bool {
	next := s.Cursor + 1
	if next >= len(s.UpcomingEvents) {
		s.Current = nil
		return false
	}
	s.Cursor = next
	s.Current = &s.UpcomingEvents[next]
	return true
}

// describeEvents renders events for a prompt, one block per event.
func describeEvents(events []Event) string {
	if len(events) == 0 {
		return "No events in the calendar."
	}
	var b strings.Builder
	for _, e := range events {
		fmt.Fprintf(&b, "\n- **Event Name**: %s\n- **Event Date**: %s\n", e.Name, e.Date)
	}
	return b.String()
}
