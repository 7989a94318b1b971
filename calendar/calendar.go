// Package calendar defines the calendar collaborator the workflows persist
// into: list events in a window, create an event with reminder overrides,
// delete an event. Reminders are expressed as integer minute offsets from the
// event start, computed here so every implementation agrees on them.
package calendar

import (
	"context"
	"time"
)

// DefaultTimeZone is the zone the economic calendar publishes in.
const DefaultTimeZone = "America/New_York"

// Event is a calendar entry as the orchestrator sees it.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	HTMLLink    string
}

// Reminder is a single notification override.
type Reminder struct {
	Method  string // "popup" or "email"
	Minutes int    // offset before event start
}

// CreateRequest describes a new event. A zero End defaults to thirty minutes
// after Start.
type CreateRequest struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Reminders   []Reminder
}

// Service is the narrow calendar interface the orchestrator needs.
type Service interface {
	ListEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	CreateEvent(ctx context.Context, req CreateRequest) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// FixedOffsetReminder is a popup a fixed number of minutes before the start.
func FixedOffsetReminder(minutes int) Reminder {
	return Reminder{Method: "popup", Minutes: minutes}
}

// SevenAMReminder is a popup at 07:00 local time daysBefore days before the
// event (0 = the morning of the event), expressed as a minute offset from the
// event start.
func SevenAMReminder(start time.Time, daysBefore int) Reminder {
	notifyAt := time.Date(start.Year(), start.Month(), start.Day(), 7, 0, 0, 0, start.Location())
	notifyAt = notifyAt.AddDate(0, 0, -daysBefore)
	return Reminder{Method: "popup", Minutes: int(start.Sub(notifyAt).Minutes())}
}

// PrepReminders is the standard reminder set for event-prep entries: 07:00
// the day before and 07:00 the morning of the event.
func PrepReminders(start time.Time) []Reminder {
	return []Reminder{
		SevenAMReminder(start, 1),
		SevenAMReminder(start, 0),
	}
}
