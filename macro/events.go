package macro

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playbook-agents/playbook/llm"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/scrape"
	"github.com/playbook-agents/playbook/structured"
	"github.com/playbook-agents/playbook/trace"
	"github.com/tidwall/gjson"
)

// DefaultCalendarURL is the economic calendar page the selection step scrapes.
const DefaultCalendarURL = "https://www.marketwatch.com/economy-politics/calendar"

const selectPrompt = `
You are a specialized macro economic AI agent within a broader ecosystem of intelligent agents that help prepare the user for the upcoming macro economic event.
Your goal is to select the most important macroeconomic events in the United States from the above upcoming events that were scraped from a webpage of an economic calendar, and not already in my google calendar.

# Instructions:
- DO NOT PICK EVENTS BEFORE TODAY.
- Today's date is %s.
- ONLY PICK UPCOMING EVENTS IN THE NEXT 7 DAYS AFTER TODAY.
- DO NOT PICK EVENTS BEFORE TODAY.
- DO NOT PICK EVENTS ALREADY IN MY CALENDAR.
- You can assume all the event times in the scraped webpage are NYC timezone times. THERE IS NO NEED TO SPECIFY THE TIMEZONE IN THE RESPONSE.
- Select events that have the most impact on markets. Do not limit yourself in the number of events to select, but make sure they are the most important.
- If there are multiple indicators listed that are part of the same report, create only one event for them.

# Events in my calendar:
%s

# Upcoming Events:
%s

Return only the **most important upcoming events** as a JSON array. Make sure it is a valid JSON format. Your output should only contain the json response without any further text:
` + "```json" + `
[
  {
    "event_name": "Name of the event/report",
    "event_date": "Date and time of the event in the YYYY-MM-DDTHH:mm:ss format",
    "reason": "Why is this event important?"
  }
]
`

// EventsAgent selects the market-moving events to prepare for. It scrapes
// the economic calendar page, asks the model to pick events not already on
// the user's calendar, and seeds State.UpcomingEvents.
type EventsAgent struct {
	Model       llm.Client
	Scraper     scrape.Scraper
	Logger      logging.Logger
	Tracer      trace.Tracer
	CalendarURL string
	// Now is the clock the prompt's "today" comes from; nil means time.Now.
	Now func() time.Time
}

// Run executes the selection step. A model failure or a response that fails
// to parse leaves UpcomingEvents empty rather than failing the run; an
// unreachable calendar page is fatal since nothing downstream can proceed.
func (a *EventsAgent) Run(ctx context.Context, state *State) error {
	logger := a.logger()
	tracer := a.tracer()

	page, err := a.Scraper.Scrape(ctx, a.calendarURL())
	if err != nil {
		return fmt.Errorf("macro: scrape economic calendar: %w", err)
	}

	prompt := fmt.Sprintf(selectPrompt,
		a.now().Format("2006-01-02"),
		describeEvents(state.CalendarEvents),
		page.Markdown,
	)
	tracer.Record("user", prompt)

	response, err := a.Model.Complete(ctx, llm.UserMessage(prompt))
	if err != nil {
		logger.Warn("macro.events.model_failed", "error", err.Error())
		state.UpcomingEvents = nil
		return nil
	}
	tracer.Record("assistant", response)

	events, err := parseSelectedEvents(response)
	if err != nil {
		logger.Error("macro.events.parse_failed", "error", err)
		state.UpcomingEvents = nil
		return nil
	}

	state.UpcomingEvents = events
	logger.Info("macro.events.selected", "count", len(events))
	return nil
}

// parseSelectedEvents decodes the selection response: a JSON array of
// {event_name, event_date, reason} objects. Timezone offsets the model adds
// despite instructions are stripped so dates stay wall-clock Eastern.
func parseSelectedEvents(response string) ([]Event, error) {
	doc, err := structured.Parse(response)
	if err != nil {
		return nil, err
	}
	items := doc
	if !doc.IsArray() {
		if inner := doc.Get("events"); inner.IsArray() {
			items = inner
		} else {
			return nil, fmt.Errorf("expected a JSON array of events")
		}
	}

	var events []Event
	items.ForEach(func(_, item gjson.Result) bool {
		name := item.Get("event_name").String()
		date := item.Get("event_date").String()
		if name == "" || date == "" {
			return true
		}
		date = strings.ReplaceAll(date, "-04:00", "")
		date = strings.ReplaceAll(date, "-05:00", "")
		events = append(events, Event{Name: name, Date: date})
		return true
	})
	return events, nil
}

func (a *EventsAgent) calendarURL() string {
	if a.CalendarURL != "" {
		return a.CalendarURL
	}
	return DefaultCalendarURL
}

func (a *EventsAgent) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *EventsAgent) logger() logging.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logging.NoOpLogger{}
}

func (a *EventsAgent) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}
	return trace.Nop{}
}
