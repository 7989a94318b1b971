// Command nba-sportsbook answers a betting query about an upcoming NBA game:
// a data agent loads games, rosters, player stats and betting markets, a
// metadata agent reconciles identifiers between the NBA and odds sources,
// and an analysis agent reasons over the merged data to produce the answer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/playbook-agents/playbook/cache"
	"github.com/playbook-agents/playbook/config"
	"github.com/playbook-agents/playbook/llm/openai"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/nbastats"
	"github.com/playbook-agents/playbook/odds"
	"github.com/playbook-agents/playbook/sportsbook"
	"github.com/playbook-agents/playbook/trace"
)

const defaultQuery = "Based on Jalen Brunson's performance in the recent games, give me 3 player market bets each that are at max -200 bet odds (i.e., -250, -300) and are very probably to hit in the next game."

func main() {
	query := flag.String("query", defaultQuery, "betting question to answer")
	tracePath := flag.String("trace", "output/output.txt", "path of the transcript trace file")
	cacheDir := flag.String("cache", "cache/bets", "directory for day-scoped odds payload caching")
	flag.Parse()

	if err := run(*query, *tracePath, *cacheDir); err != nil {
		fmt.Fprintln(os.Stderr, "nba-sportsbook:", err)
		os.Exit(1)
	}
}

func run(query, tracePath, cacheDir string) error {
	config.Load()
	logger := logging.New(logging.DefaultConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	logger.Info("sportsbook.run.start", "run_id", runID, "query", query)

	tracer, err := trace.NewFileTracer(tracePath)
	if err != nil {
		return err
	}

	model, err := openai.New()
	if err != nil {
		return err
	}
	oddsClient, err := odds.NewClient()
	if err != nil {
		return err
	}
	store, err := cache.NewStore(cacheDir)
	if err != nil {
		return err
	}

	loader := &sportsbook.Loader{
		Stats:  nbastats.NewClient(),
		Odds:   oddsClient,
		Cache:  store,
		Logger: logger,
	}

	workflow := &sportsbook.Workflow{
		Data: &sportsbook.DataAgent{
			Model:  model,
			Loader: loader,
			Logger: logger,
			Tracer: tracer,
		},
		Metadata: &sportsbook.MetadataAgent{
			Model:  model,
			Logger: logger,
			Tracer: tracer,
		},
		Analysis: &sportsbook.AnalysisAgent{
			Model:  model,
			Logger: logger,
			Tracer: tracer,
		},
		Logger: logger,
	}

	state, err := workflow.Run(ctx, query)
	if err != nil {
		return err
	}

	logger.Info("sportsbook.run.complete", "run_id", runID)
	fmt.Println(state.FinalAnswer)
	return nil
}
