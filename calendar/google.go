package calendar

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/playbook-agents/playbook/config"
)

// DefaultBaseURL is the Google Calendar v3 API endpoint.
const DefaultBaseURL = "https://www.googleapis.com/calendar/v3"

// Google implements Service against the Google Calendar REST API using a
// pre-obtained OAuth bearer token.
type Google struct {
	httpClient *http.Client
	baseURL    string
	token      string
	calendarID string
	timeZone   string
}

var _ Service = (*Google)(nil)

// GoogleOptions configure the client.
type GoogleOptions struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	CalendarID string
	TimeZone   string
}

// NewGoogle constructs a Google Calendar client. Token and calendar id are
// resolved once, from options or the CALENDAR_API_TOKEN /
// MACRO_AGENT_CALENDAR_ID environment keys; either missing fails
// construction.
func NewGoogle(optFns ...func(o *GoogleOptions)) (*Google, error) {
	opts := GoogleOptions{
		HTTPClient: http.DefaultClient,
		BaseURL:    DefaultBaseURL,
		TimeZone:   DefaultTimeZone,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Token == "" {
		token, err := config.Require("CALENDAR_API_TOKEN")
		if err != nil {
			return nil, err
		}
		opts.Token = token
	}
	if opts.CalendarID == "" {
		id, err := config.Require("MACRO_AGENT_CALENDAR_ID")
		if err != nil {
			return nil, err
		}
		opts.CalendarID = id
	}
	return &Google{
		httpClient: opts.HTTPClient,
		baseURL:    opts.BaseURL,
		token:      opts.Token,
		calendarID: opts.CalendarID,
		timeZone:   opts.TimeZone,
	}, nil
}

type apiDateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type apiReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type apiEvent struct {
	ID          string      `json:"id,omitempty"`
	Summary     string      `json:"summary"`
	Description string      `json:"description,omitempty"`
	Start       apiDateTime `json:"start"`
	End         apiDateTime `json:"end"`
	HTMLLink    string      `json:"htmlLink,omitempty"`
	Reminders   *struct {
		UseDefault bool                  `json:"useDefault"`
		Overrides  []apiReminderOverride `json:"overrides,omitempty"`
	} `json:"reminders,omitempty"`
}

type apiEventList struct {
	Items []apiEvent `json:"items"`
}

// ListEvents implements Service.
func (g *Google) ListEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	q := url.Values{}
	q.Set("timeMin", from.UTC().Format(time.RFC3339))
	q.Set("timeMax", to.UTC().Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	q.Set("maxResults", strconv.Itoa(2500))

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", g.baseURL, url.PathEscape(g.calendarID), q.Encode())
	var list apiEventList
	if err := g.do(ctx, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(list.Items))
	for _, item := range list.Items {
		events = append(events, g.fromAPI(item))
	}
	return events, nil
}

// CreateEvent implements Service.
func (g *Google) CreateEvent(ctx context.Context, req CreateRequest) (Event, error) {
	end := req.End
	if end.IsZero() {
		end = req.Start.Add(30 * time.Minute)
	}
	body := apiEvent{
		Summary:     req.Title,
		Description: req.Description,
		Start:       apiDateTime{DateTime: req.Start.Format(time.RFC3339), TimeZone: g.timeZone},
		End:         apiDateTime{DateTime: end.Format(time.RFC3339), TimeZone: g.timeZone},
	}
	if len(req.Reminders) > 0 {
		body.Reminders = &struct {
			UseDefault bool                  `json:"useDefault"`
			Overrides  []apiReminderOverride `json:"overrides,omitempty"`
		}{}
		for _, r := range req.Reminders {
			body.Reminders.Overrides = append(body.Reminders.Overrides, apiReminderOverride(r))
		}
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", g.baseURL, url.PathEscape(g.calendarID))
	var created apiEvent
	if err := g.do(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return Event{}, err
	}
	return g.fromAPI(created), nil
}

// DeleteEvent implements Service.
func (g *Google) DeleteEvent(ctx context.Context, id string) error {
	endpoint := fmt.Sprintf("%s/calendars/%s/events/%s", g.baseURL, url.PathEscape(g.calendarID), url.PathEscape(id))
	return g.do(ctx, http.MethodDelete, endpoint, nil, nil)
}

func (g *Google) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("calendar: encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("calendar: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("calendar: unexpected status %s: %s", resp.Status, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("calendar: decode response: %w", err)
	}
	return nil
}

func (g *Google) fromAPI(item apiEvent) Event {
	return Event{
		ID:          item.ID,
		Title:       item.Summary,
		Description: item.Description,
		Start:       parseAPITime(item.Start),
		End:         parseAPITime(item.End),
		HTMLLink:    item.HTMLLink,
	}
}

func parseAPITime(dt apiDateTime) time.Time {
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return t
		}
	}
	if dt.Date != "" {
		if t, err := time.Parse("2006-01-02", dt.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}
