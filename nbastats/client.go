package nbastats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the stats.nba.com endpoint root.
const DefaultBaseURL = "https://stats.nba.com/stats"

// DefaultSeason is the season queried when none is configured.
const DefaultSeason = "2024-25"

// DefaultSeasonTypes are the season segments game logs are aggregated over.
var DefaultSeasonTypes = []string{"Pre Season", "Regular Season", "Playoffs", "PlayIn"}

// leagueNBA is the league id parameter for the NBA.
const leagueNBA = "00"

// SeasonTypeColumn is the extra column game log tables are tagged with so
// merged rows keep their segment of origin.
const SeasonTypeColumn = "SEASON_TYPE"

// Client calls the stats.nba.com API. Requests are paced through a shared
// limiter: the API silently throttles callers that burst.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	season      string
	seasonTypes []string
	limiter     *rate.Limiter
}

// ClientOptions configure the client.
type ClientOptions struct {
	HTTPClient  *http.Client
	BaseURL     string
	Season      string
	SeasonTypes []string
	// MinInterval is the minimum spacing between requests.
	MinInterval time.Duration
}

// NewClient constructs a stats.nba.com client.
func NewClient(optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		BaseURL:     DefaultBaseURL,
		Season:      DefaultSeason,
		SeasonTypes: DefaultSeasonTypes,
		MinInterval: 1100 * time.Millisecond,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		httpClient:  opts.HTTPClient,
		baseURL:     opts.BaseURL,
		season:      opts.Season,
		seasonTypes: opts.SeasonTypes,
		limiter:     rate.NewLimiter(rate.Every(opts.MinInterval), 1),
	}
}

// Season returns the configured season string.
func (c *Client) Season() string { return c.season }

// UpcomingGames returns the scoreboard GameHeader rows for today through
// daysAhead days out, concatenated into one table.
func (c *Client) UpcomingGames(ctx context.Context, daysAhead int) (Table, error) {
	var all Table
	for i := 0; i <= daysAhead; i++ {
		day := time.Now().AddDate(0, 0, i).Format("01/02/2006")
		q := url.Values{}
		q.Set("GameDate", day)
		q.Set("LeagueID", leagueNBA)
		q.Set("DayOffset", "0")

		resp, err := c.get(ctx, "scoreboardv2", q)
		if err != nil {
			return Table{}, fmt.Errorf("nbastats: scoreboard for %s: %w", day, err)
		}
		games, err := resp.resultSet("GameHeader", 0)
		if err != nil {
			return Table{}, err
		}
		all, err = all.Append(games)
		if err != nil {
			return Table{}, err
		}
	}
	return all, nil
}

// TeamRoster returns the current-season roster for a team.
func (c *Client) TeamRoster(ctx context.Context, teamID int) (Table, error) {
	q := url.Values{}
	q.Set("TeamID", strconv.Itoa(teamID))
	q.Set("Season", c.season)
	q.Set("LeagueID", leagueNBA)

	resp, err := c.get(ctx, "commonteamroster", q)
	if err != nil {
		return Table{}, fmt.Errorf("nbastats: roster for team %d: %w", teamID, err)
	}
	return resp.resultSet("CommonTeamRoster", 0)
}

// PlayerGameLog returns a player's game log rows across every configured
// season type, tagged with SeasonTypeColumn and merged newest segments last.
// Segments with no rows are skipped.
func (c *Client) PlayerGameLog(ctx context.Context, playerID int) (Table, error) {
	var all Table
	for _, seasonType := range c.seasonTypes {
		q := url.Values{}
		q.Set("PlayerID", strconv.Itoa(playerID))
		q.Set("Season", c.season)
		q.Set("SeasonType", seasonType)
		q.Set("LeagueID", leagueNBA)

		resp, err := c.get(ctx, "playergamelog", q)
		if err != nil {
			return Table{}, fmt.Errorf("nbastats: game log for player %d (%s): %w", playerID, seasonType, err)
		}
		t, err := resp.resultSet("PlayerGameLog", 0)
		if err != nil {
			return Table{}, err
		}
		if t.IsEmpty() {
			continue
		}
		all, err = all.Append(t.WithColumn(SeasonTypeColumn, seasonType))
		if err != nil {
			return Table{}, err
		}
	}
	return all, nil
}

// TeamGameLog returns a team's game log rows across every configured season
// type, tagged like PlayerGameLog.
func (c *Client) TeamGameLog(ctx context.Context, teamID int) (Table, error) {
	var all Table
	for _, seasonType := range c.seasonTypes {
		q := url.Values{}
		q.Set("TeamID", strconv.Itoa(teamID))
		q.Set("Season", c.season)
		q.Set("SeasonType", seasonType)
		q.Set("LeagueID", leagueNBA)

		resp, err := c.get(ctx, "teamgamelog", q)
		if err != nil {
			return Table{}, fmt.Errorf("nbastats: game log for team %d (%s): %w", teamID, seasonType, err)
		}
		t, err := resp.resultSet("TeamGameLog", 0)
		if err != nil {
			return Table{}, err
		}
		if t.IsEmpty() {
			continue
		}
		all, err = all.Append(t.WithColumn(SeasonTypeColumn, seasonType))
		if err != nil {
			return Table{}, err
		}
	}
	return all, nil
}

// BoxScore returns the traditional box score's player and team stat tables
// for a finished game.
func (c *Client) BoxScore(ctx context.Context, gameID string) (players, teams Table, err error) {
	q := url.Values{}
	q.Set("GameID", gameID)
	q.Set("StartPeriod", "1")
	q.Set("EndPeriod", "10")
	q.Set("StartRange", "0")
	q.Set("EndRange", "0")
	q.Set("RangeType", "0")

	resp, err := c.get(ctx, "boxscoretraditionalv2", q)
	if err != nil {
		return Table{}, Table{}, fmt.Errorf("nbastats: box score for game %s: %w", gameID, err)
	}
	players, err = resp.resultSet("PlayerStats", 0)
	if err != nil {
		return Table{}, Table{}, err
	}
	teams, err = resp.resultSet("TeamStats", 2)
	if err != nil {
		return Table{}, Table{}, err
	}
	return players, teams, nil
}

// GameLineScore returns the per-team line score of a game's summary.
func (c *Client) GameLineScore(ctx context.Context, gameID string) (Table, error) {
	q := url.Values{}
	q.Set("GameID", gameID)

	resp, err := c.get(ctx, "boxscoresummaryv2", q)
	if err != nil {
		return Table{}, fmt.Errorf("nbastats: summary for game %s: %w", gameID, err)
	}
	return resp.resultSet("LineScore", 5)
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return apiResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return apiResponse{}, fmt.Errorf("build request: %w", err)
	}
	// stats.nba.com rejects requests without browser-looking headers.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apiResponse{}, fmt.Errorf("unexpected status %s: %s", resp.Status, raw)
	}
	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return apiResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return decoded, nil
}
