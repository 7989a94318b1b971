package macro

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/playbook-agents/playbook/calendar"
	"github.com/playbook-agents/playbook/llm"
	"github.com/playbook-agents/playbook/scrape"
	"github.com/playbook-agents/playbook/search"
)

// -------------------- Fakes --------------------

type fakeScraper struct {
	pages map[string]string
	fail  map[string]bool
}

func (f *fakeScraper) Scrape(_ context.Context, url string) (scrape.Page, error) {
	if f.fail[url] {
		return scrape.Page{}, fmt.Errorf("scrape failed for %s", url)
	}
	return scrape.Page{Markdown: f.pages[url]}, nil
}

type fakeSearcher struct {
	results []search.Result
	err     error
}

func (f *fakeSearcher) Search(context.Context, string) ([]search.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

type fakeCalendar struct {
	existing []calendar.Event
	created  []calendar.CreateRequest
}

func (f *fakeCalendar) ListEvents(context.Context, time.Time, time.Time) ([]calendar.Event, error) {
	return f.existing, nil
}

func (f *fakeCalendar) CreateEvent(_ context.Context, req calendar.CreateRequest) (calendar.Event, error) {
	f.created = append(f.created, req)
	return calendar.Event{ID: fmt.Sprintf("created-%d", len(f.created)), Title: req.Title}, nil
}

func (f *fakeCalendar) DeleteEvent(context.Context, string) error { return nil }

// -------------------- State --------------------

func TestState_AdvanceVisitsEachEventExactlyOnce(t *testing.T) {
	state := NewState(nil)
	state.UpcomingEvents = []Event{{Name: "CPI"}, {Name: "NFP"}, {Name: "FOMC"}}

	var seen []string
	for state.Advance() {
		seen = append(seen, state.Current.Name)
	}
	assert.Equal(t, []string{"CPI", "NFP", "FOMC"}, seen)
	assert.Nil(t, state.Current)
	// Further calls stay terminal.
	assert.False(t, state.Advance())
}

func TestState_AdvanceEmptyList(t *testing.T) {
	state := NewState(nil)
	assert.False(t, state.Advance())
	assert.Nil(t, state.Current)
}

func TestEvent_StartTime(t *testing.T) {
	loc, err := time.LoadLocation(calendar.DefaultTimeZone)
	assert.NoError(t, err)

	e := Event{Name: "CPI", Date: "2025-03-12T08:30:00"}
	start, err := e.StartTime(loc)
	assert.NoError(t, err)
	assert.Equal(t, 8, start.Hour())
	assert.Equal(t, loc, start.Location())

	_, err = Event{Name: "bad", Date: "tomorrow-ish"}.StartTime(loc)
	assert.Error(t, err)
}

// -------------------- Parsing --------------------

func TestParseSelectedEvents(t *testing.T) {
	response := "```json\n" + `[
		{"event_name": "CPI Report", "event_date": "2025-03-12T08:30:00-04:00", "reason": "inflation print"},
		{"event_name": "FOMC Decision", "event_date": "2025-03-19T14:00:00", "reason": "rates"}
	]` + "\n```"

	events, err := parseSelectedEvents(response)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, "CPI Report", events[0].Name)
	// The stray UTC offset the model added is stripped.
	assert.Equal(t, "2025-03-12T08:30:00", events[0].Date)
}

func TestParseSelectedEvents_Failures(t *testing.T) {
	_, err := parseSelectedEvents("I could not find any events, sorry!")
	assert.Error(t, err)

	_, err = parseSelectedEvents(`{"not_events": true}`)
	assert.Error(t, err)
}

func TestParseTopURLs(t *testing.T) {
	urls, err := parseTopURLs(`{"top_urls": ["https://a.example", "https://b.example"], "reason": "official"}`)
	assert.NoError(t, err)
	assert.True(t, urls["https://a.example"])
	assert.False(t, urls["https://c.example"])
}

func TestFormatSummary(t *testing.T) {
	summary, err := formatSummary(`{
		"event_details": "CPI, March 12 8:30 ET",
		"forecast": "Consensus +0.3% m/m",
		"references": ["https://bls.gov", "https://example.com"]
	}`)
	assert.NoError(t, err)
	assert.Contains(t, summary, "**Event Details:**\nCPI, March 12 8:30 ET")
	assert.Contains(t, summary, "**Forecast:**")
	assert.Contains(t, summary, "- https://bls.gov")
	// Absent sections are skipped entirely.
	assert.NotContains(t, summary, "ETFs to Watch")
}

// -------------------- Agents --------------------

func TestEventsAgent_ParseFailureLeavesNoEvents(t *testing.T) {
	agent := &EventsAgent{
		Model:   &llm.Mock{Responses: []string{"no json here"}},
		Scraper: &fakeScraper{pages: map[string]string{DefaultCalendarURL: "| CPI | Wednesday |"}},
	}
	state := NewState(nil)
	assert.NoError(t, agent.Run(context.Background(), state))
	assert.Empty(t, state.UpcomingEvents)
}

func TestEventsAgent_PromptCarriesCalendarAndPage(t *testing.T) {
	model := &llm.Mock{Responses: []string{`[]`}}
	agent := &EventsAgent{
		Model:   model,
		Scraper: &fakeScraper{pages: map[string]string{DefaultCalendarURL: "| CPI | Wednesday |"}},
		Now:     func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
	state := NewState([]Event{{Name: "Existing FOMC", Date: "2025-03-19T14:00:00"}})
	assert.NoError(t, agent.Run(context.Background(), state))

	prompt := model.Calls[0]
	assert.Contains(t, prompt, "Existing FOMC")
	assert.Contains(t, prompt, "| CPI | Wednesday |")
	assert.Contains(t, prompt, "2025-03-10")
}

func TestEventsAgent_ModelFailureLeavesNoEvents(t *testing.T) {
	agent := &EventsAgent{
		Model:   &llm.Mock{Err: errors.New("upstream 503")},
		Scraper: &fakeScraper{pages: map[string]string{DefaultCalendarURL: "| CPI | Wednesday |"}},
	}
	state := NewState(nil)
	assert.NoError(t, agent.Run(context.Background(), state))
	assert.Empty(t, state.UpcomingEvents)
}

func TestSearchAgent_SearchFailureLeavesNoResults(t *testing.T) {
	model := &llm.Mock{}
	agent := &SearchAgent{
		Model:    model,
		Searcher: &fakeSearcher{err: errors.New("search unavailable")},
		Scraper:  &fakeScraper{},
	}

	state := NewState(nil)
	state.UpcomingEvents = []Event{{Name: "CPI", Date: "2025-03-12T08:30:00"}}
	assert.True(t, state.Advance())

	assert.NoError(t, agent.Run(context.Background(), state))
	assert.Empty(t, state.Current.Results)
	// Nothing to filter, so the model is never consulted.
	assert.Empty(t, model.Calls)
}

func TestSearchAgent_ModelFailureFlagsNothing(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "BLS schedule", Link: "https://bls.gov/cpi", Snippet: "official"},
	}}
	agent := &SearchAgent{
		Model:    &llm.Mock{Err: errors.New("upstream 503")},
		Searcher: searcher,
		Scraper:  &fakeScraper{},
	}

	state := NewState(nil)
	state.UpcomingEvents = []Event{{Name: "CPI", Date: "2025-03-12T08:30:00"}}
	assert.True(t, state.Advance())

	assert.NoError(t, agent.Run(context.Background(), state))
	assert.Len(t, state.Current.Results, 1)
	assert.False(t, state.Current.Results[0].IsTopResult)
	assert.Empty(t, state.Current.Results[0].ScrapedContent)
}

func TestSearchAgent_FlagsAndScrapesTopResults(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "BLS schedule", Link: "https://bls.gov/cpi", Snippet: "official"},
		{Title: "Some blog", Link: "https://blog.example", Snippet: "hot take"},
	}}
	scraper := &fakeScraper{
		pages: map[string]string{"https://bls.gov/cpi": "# CPI release schedule"},
		fail:  map[string]bool{"https://blog.example": true},
	}
	agent := &SearchAgent{
		Model:    &llm.Mock{Responses: []string{`{"top_urls": ["https://bls.gov/cpi", "https://blog.example"]}`}},
		Searcher: searcher,
		Scraper:  scraper,
	}

	state := NewState(nil)
	state.UpcomingEvents = []Event{{Name: "CPI", Date: "2025-03-12T08:30:00"}}
	assert.True(t, state.Advance())

	assert.NoError(t, agent.Run(context.Background(), state))

	results := state.Current.Results
	assert.Len(t, results, 2)
	assert.True(t, results[0].IsTopResult)
	assert.Equal(t, "# CPI release schedule", results[0].ScrapedContent)
	assert.True(t, results[1].IsTopResult)
	assert.Equal(t, scrapeFailedNote, results[1].ScrapedContent)
}

func TestSummarizerAgent_StoresErrorNoteOnBadResponse(t *testing.T) {
	agent := &SummarizerAgent{Model: &llm.Mock{Responses: []string{"not json"}}}
	state := NewState(nil)
	state.UpcomingEvents = []Event{{Name: "CPI", Date: "2025-03-12T08:30:00"}}
	assert.True(t, state.Advance())

	assert.NoError(t, agent.Run(context.Background(), state))
	assert.Equal(t, summaryErrorNote, state.Current.Summary)
}

func TestSummarizerAgent_StoresErrorNoteOnModelFailure(t *testing.T) {
	agent := &SummarizerAgent{Model: &llm.Mock{Err: errors.New("upstream 503")}}
	state := NewState(nil)
	state.UpcomingEvents = []Event{{Name: "CPI", Date: "2025-03-12T08:30:00"}}
	assert.True(t, state.Advance())

	assert.NoError(t, agent.Run(context.Background(), state))
	assert.Equal(t, summaryErrorNote, state.Current.Summary)
}

func TestSummarizerAgent_OnlyTopResultsReachPrompt(t *testing.T) {
	model := &llm.Mock{Responses: []string{`{"event_details": "CPI"}`}}
	agent := &SummarizerAgent{Model: model}

	state := NewState(nil)
	state.UpcomingEvents = []Event{{
		Name: "CPI",
		Date: "2025-03-12T08:30:00",
		Results: []SearchResult{
			{Title: "official", Link: "https://bls.gov", IsTopResult: true, ScrapedContent: "release at 8:30"},
			{Title: "ignored", Link: "https://noise.example"},
		},
	}}
	assert.True(t, state.Advance())

	assert.NoError(t, agent.Run(context.Background(), state))
	prompt := model.Calls[0]
	assert.Contains(t, prompt, "https://bls.gov")
	assert.Contains(t, prompt, "release at 8:30")
	assert.NotContains(t, prompt, "noise.example")
}

// -------------------- Workflow --------------------

func newTestWorkflow(model llm.Client, cal *fakeCalendar, scraper *fakeScraper, searcher *fakeSearcher) *Workflow {
	return &Workflow{
		Events:     &EventsAgent{Model: model, Scraper: scraper},
		Search:     &SearchAgent{Model: model, Searcher: searcher, Scraper: scraper},
		Summarizer: &SummarizerAgent{Model: model},
		Calendar:   cal,
	}
}

func TestWorkflow_ProcessesEveryEventOnce(t *testing.T) {
	// Two selected events: the graph loops search -> summarize -> persist
	// once per event, then ends.
	model := &llm.Mock{Responses: []string{
		`[{"event_name": "CPI", "event_date": "2025-03-12T08:30:00"},
		  {"event_name": "NFP", "event_date": "2025-03-14T08:30:00"}]`,
		`{"top_urls": []}`,
		`{"event_details": "CPI details"}`,
		`{"top_urls": []}`,
		`{"event_details": "NFP details"}`,
	}}
	cal := &fakeCalendar{}
	scraper := &fakeScraper{pages: map[string]string{DefaultCalendarURL: "calendar page"}}
	searcher := &fakeSearcher{}

	workflow := newTestWorkflow(model, cal, scraper, searcher)
	state, err := workflow.Run(context.Background())
	assert.NoError(t, err)

	assert.Len(t, cal.created, 2)
	assert.Equal(t, "CPI", cal.created[0].Title)
	assert.Equal(t, "NFP", cal.created[1].Title)
	assert.Len(t, cal.created[0].Reminders, 2)
	assert.Contains(t, cal.created[0].Description, "CPI details")
	assert.Nil(t, state.Current)
	assert.Equal(t, 1, state.Cursor, "cursor rests on the last visited index")
}

func TestWorkflow_NoEventsSelectedEndsImmediately(t *testing.T) {
	model := &llm.Mock{Responses: []string{`[]`}}
	cal := &fakeCalendar{}
	scraper := &fakeScraper{pages: map[string]string{DefaultCalendarURL: "calendar page"}}

	workflow := newTestWorkflow(model, cal, scraper, &fakeSearcher{})
	state, err := workflow.Run(context.Background())
	assert.NoError(t, err)

	assert.Empty(t, cal.created)
	assert.Empty(t, state.UpcomingEvents)
	// Only the selection call reached the model.
	assert.Len(t, model.Calls, 1)
}

func TestWorkflow_PersistFallsBackWhenSummaryMissing(t *testing.T) {
	model := &llm.Mock{Responses: []string{
		`[{"event_name": "CPI", "event_date": "2025-03-12T08:30:00"}]`,
		`{"top_urls": []}`,
		"summary response that is not json",
	}}
	cal := &fakeCalendar{}
	scraper := &fakeScraper{pages: map[string]string{DefaultCalendarURL: "calendar page"}}

	workflow := newTestWorkflow(model, cal, scraper, &fakeSearcher{})
	_, err := workflow.Run(context.Background())
	assert.NoError(t, err)

	assert.Len(t, cal.created, 1)
	assert.Equal(t, summaryErrorNote, cal.created[0].Description)
}

func TestWorkflow_CompileTopology(t *testing.T) {
	workflow := newTestWorkflow(&llm.Mock{}, &fakeCalendar{}, &fakeScraper{}, &fakeSearcher{})
	g, err := workflow.Compile()
	assert.NoError(t, err)
	assert.NotNil(t, g)
}
