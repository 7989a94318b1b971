package sportsbook

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/playbook-agents/playbook/cache"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/nbastats"
	"github.com/playbook-agents/playbook/odds"
)

// eventsListKey is the cache key for a day's betting event listing; each
// event's detailed odds are cached under the event id.
const eventsListKey = "events_list"

// StatsAPI is the slice of the NBA stats client the loader needs.
type StatsAPI interface {
	UpcomingGames(ctx context.Context, daysAhead int) (nbastats.Table, error)
	TeamRoster(ctx context.Context, teamID int) (nbastats.Table, error)
	PlayerGameLog(ctx context.Context, playerID int) (nbastats.Table, error)
}

// OddsAPI is the slice of the odds client the loader needs.
type OddsAPI interface {
	ListEvents(ctx context.Context, sport string, daysAhead int) ([]odds.EventStub, error)
	GetEventOdds(ctx context.Context, sport, eventID string, markets []string) (odds.EventOdds, error)
}

// Loader fetches the workflow's external data: upcoming games and rosters
// from the NBA stats API, betting markets from the odds API. Odds payloads
// are cached per day so repeated runs within one day never refetch them.
type Loader struct {
	Stats StatsAPI
	Odds  OddsAPI
	// Cache is optional; nil disables odds caching.
	Cache  *cache.Store
	Sport  string
	Logger logging.Logger
	// Now is the clock cache days are derived from; nil means time.Now.
	Now func() time.Time
}

// LoadGamesAndBets loads upcoming games with full rosters plus the betting
// markets for events commencing within daysAhead days.
func (l *Loader) LoadGamesAndBets(ctx context.Context, daysAhead int) (map[string]Game, map[string]odds.BetEvent, error) {
	games, err := l.loadGames(ctx, daysAhead)
	if err != nil {
		return nil, nil, err
	}
	bets, err := l.LoadBets(ctx, daysAhead)
	if err != nil {
		return nil, nil, err
	}
	return games, bets, nil
}

func (l *Loader) loadGames(ctx context.Context, daysAhead int) (map[string]Game, error) {
	logger := l.logger()

	schedule, err := l.Stats.UpcomingGames(ctx, daysAhead)
	if err != nil {
		return nil, err
	}
	logger.Info("sportsbook.loader.games_fetched", "count", schedule.Len())

	games := make(map[string]Game, schedule.Len())
	for row := 0; row < schedule.Len(); row++ {
		gameID := schedule.String(row, "GAME_ID")
		game := Game{ID: gameID}

		for _, header := range []string{"HOME_TEAM_ID", "VISITOR_TEAM_ID"} {
			teamID := schedule.Int(row, header)
			team, err := nbastats.TeamByID(teamID)
			if err != nil {
				return nil, fmt.Errorf("sportsbook: game %s: %w", gameID, err)
			}

			roster, err := l.Stats.TeamRoster(ctx, teamID)
			if err != nil {
				return nil, fmt.Errorf("sportsbook: roster for %s: %w", team.FullName, err)
			}
			side := Roster{Team: NBATeam{ID: strconv.Itoa(teamID), Name: team.FullName}}
			for p := 0; p < roster.Len(); p++ {
				side.Players = append(side.Players, NBAPlayer{
					ID:   roster.String(p, "PLAYER_ID"),
					Name: roster.String(p, "PLAYER"),
				})
			}
			game.Rosters = append(game.Rosters, side)
		}
		games[gameID] = game
	}
	return games, nil
}

// LoadBets loads grouped betting markets for upcoming events, reading each
// payload from the day's cache when present and writing it back when not.
func (l *Loader) LoadBets(ctx context.Context, daysAhead int) (map[string]odds.BetEvent, error) {
	logger := l.logger()
	day := cache.DayKey(l.now())

	var stubs []odds.EventStub
	cached, err := l.cacheLoad(day, eventsListKey, &stubs)
	if err != nil {
		return nil, err
	}
	if !cached || len(stubs) == 0 {
		stubs, err = l.Odds.ListEvents(ctx, l.sport(), daysAhead)
		if err != nil {
			return nil, err
		}
		if len(stubs) == 0 {
			logger.Info("sportsbook.loader.no_bet_events")
			return map[string]odds.BetEvent{}, nil
		}
		if err := l.cacheSave(day, eventsListKey, stubs); err != nil {
			return nil, err
		}
	} else {
		logger.Info("sportsbook.loader.events_from_cache", "day", day, "count", len(stubs))
	}

	events := make(map[string]odds.BetEvent, len(stubs))
	for _, stub := range stubs {
		if stub.ID == "" {
			return nil, fmt.Errorf("sportsbook: betting event listing contains an entry without an id")
		}

		var payload odds.EventOdds
		cached, err := l.cacheLoad(day, stub.ID, &payload)
		if err != nil {
			return nil, err
		}
		if !cached {
			payload, err = l.Odds.GetEventOdds(ctx, l.sport(), stub.ID, nil)
			if err != nil {
				return nil, err
			}
			if err := l.cacheSave(day, stub.ID, payload); err != nil {
				return nil, err
			}
		}
		events[stub.ID] = odds.NewBetEvent(payload)
	}

	logger.Info("sportsbook.loader.bets_loaded", "count", len(events))
	return events, nil
}

// LoadPlayerStats fetches season game logs for the given NBA player ids. A
// player with no rows is an error: the caller asked for a player the season
// has no data for, which usually means a bad id.
func (l *Loader) LoadPlayerStats(ctx context.Context, playerIDs []string) (map[string]nbastats.Table, error) {
	stats := make(map[string]nbastats.Table, len(playerIDs))
	for _, raw := range playerIDs {
		playerID, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("sportsbook: invalid player id %q: %w", raw, err)
		}
		log, err := l.Stats.PlayerGameLog(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if log.IsEmpty() {
			return nil, fmt.Errorf("sportsbook: no stats returned for player id %s", raw)
		}
		stats[raw] = log
	}
	return stats, nil
}

func (l *Loader) cacheLoad(day, key string, v any) (bool, error) {
	if l.Cache == nil {
		return false, nil
	}
	return l.Cache.Load(day, key, v)
}

func (l *Loader) cacheSave(day, key string, v any) error {
	if l.Cache == nil {
		return nil
	}
	return l.Cache.Save(day, key, v)
}

func (l *Loader) sport() string {
	if l.Sport != "" {
		return l.Sport
	}
	return odds.DefaultSport
}

func (l *Loader) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loader) logger() logging.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return logging.NoOpLogger{}
}
