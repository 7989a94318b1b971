// Package odds integrates The Odds API v4: listing sport events inside a
// commence-time window and fetching per-event market odds, plus the market
// grouping model the sportsbook workflow reasons over.
package odds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/playbook-agents/playbook/config"
)

// DefaultBaseURL is The Odds API endpoint.
const DefaultBaseURL = "https://api.the-odds-api.com/v4"

// DefaultSport is the sport key for NBA basketball.
const DefaultSport = "basketball_nba"

const timeFormat = "2006-01-02T15:04:05Z"

// MainMarkets are the head-to-head, spread and total market keys.
var MainMarkets = []string{"h2h", "spreads", "totals"}

// AlternateMarkets are the alternate-line team market keys.
var AlternateMarkets = []string{"alternate_spreads", "alternate_totals", "team_totals", "alternate_team_totals"}

// PlayerMarkets are the player prop market keys requested by default.
var PlayerMarkets = []string{
	"player_points", "player_points_q1", "player_rebounds", "player_rebounds_q1",
	"player_assists", "player_assists_q1", "player_threes", "player_blocks",
	"player_steals", "player_blocks_steals", "player_turnovers",
	"player_points_rebounds_assists", "player_points_rebounds", "player_points_assists",
	"player_rebounds_assists", "player_field_goals", "player_frees_made",
	"player_frees_attempts", "player_first_basket", "player_first_team_basket",
	"player_double_double", "player_triple_double", "player_method_of_first_basket",
	"player_points_alternate", "player_rebounds_alternate", "player_assists_alternate",
	"player_blocks_alternate", "player_steals_alternate", "player_turnovers_alternate",
	"player_threes_alternate", "player_points_assists_alternate",
	"player_points_rebounds_alternate", "player_rebounds_assists_alternate",
	"player_points_rebounds_assists_alternate",
}

// AllMarkets is every market key requested when none are specified.
var AllMarkets = func() []string {
	all := make([]string, 0, len(MainMarkets)+len(AlternateMarkets)+len(PlayerMarkets))
	all = append(all, MainMarkets...)
	all = append(all, AlternateMarkets...)
	all = append(all, PlayerMarkets...)
	return all
}()

// DefaultBookmakers is the bookmaker set queried when none are specified.
var DefaultBookmakers = []string{"fanduel"}

// EventStub is one entry of the event listing (no odds attached).
type EventStub struct {
	ID           string    `json:"id"`
	SportKey     string    `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// EventOdds is the full odds payload for one event: nested
// event → bookmaker → market → outcome, exactly as the API returns it.
type EventOdds struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker carries one book's markets.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is one market's outcomes.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is a single priced selection. Price is decimal odds. Point is the
// line (nil for moneyline-style outcomes); Description names the player or
// team for prop markets.
type Outcome struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Point       *float64 `json:"point,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Client calls The Odds API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	bookmakers []string
}

// ClientOptions configure the client.
type ClientOptions struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Bookmakers []string
}

// NewClient constructs a Client. The API key is resolved once, from the
// option or the ODDS_API_KEY environment key; a missing key fails
// construction.
func NewClient(optFns ...func(o *ClientOptions)) (*Client, error) {
	opts := ClientOptions{
		HTTPClient: http.DefaultClient,
		BaseURL:    DefaultBaseURL,
		Bookmakers: DefaultBookmakers,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		key, err := config.Require("ODDS_API_KEY")
		if err != nil {
			return nil, err
		}
		opts.APIKey = key
	}
	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		bookmakers: opts.Bookmakers,
	}, nil
}

// ListEvents returns events for the sport commencing between now and
// daysAhead days from now.
func (c *Client) ListEvents(ctx context.Context, sport string, daysAhead int) ([]EventStub, error) {
	now := time.Now().UTC()
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("commenceTimeFrom", now.Format(timeFormat))
	q.Set("commenceTimeTo", now.AddDate(0, 0, daysAhead).Format(timeFormat))

	endpoint := fmt.Sprintf("%s/sports/%s/events?%s", c.baseURL, url.PathEscape(sport), q.Encode())
	var events []EventStub
	if err := c.get(ctx, endpoint, &events); err != nil {
		return nil, fmt.Errorf("odds: list events for %s: %w", sport, err)
	}
	return events, nil
}

// GetEventOdds fetches market odds for a single event, filtered by market
// keys (AllMarkets when nil) and the configured bookmaker set.
func (c *Client) GetEventOdds(ctx context.Context, sport, eventID string, markets []string) (EventOdds, error) {
	if markets == nil {
		markets = AllMarkets
	}
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", "us")
	q.Set("markets", strings.Join(markets, ","))
	q.Set("bookmakers", strings.Join(c.bookmakers, ","))

	endpoint := fmt.Sprintf("%s/sports/%s/events/%s/odds?%s",
		c.baseURL, url.PathEscape(sport), url.PathEscape(eventID), q.Encode())
	var event EventOdds
	if err := c.get(ctx, endpoint, &event); err != nil {
		return EventOdds{}, fmt.Errorf("odds: event %s: %w", eventID, err)
	}
	return event, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, raw)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
