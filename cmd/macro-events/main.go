// Command macro-events runs the economic-calendar preparation workflow: it
// scrapes an economic calendar, selects the market-moving events not already
// on the user's Google calendar, researches each one, and creates calendar
// entries carrying a prep summary and 7am reminders.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/playbook-agents/playbook/calendar"
	"github.com/playbook-agents/playbook/config"
	"github.com/playbook-agents/playbook/llm/openai"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/macro"
	"github.com/playbook-agents/playbook/scrape"
	"github.com/playbook-agents/playbook/search"
	"github.com/playbook-agents/playbook/trace"
)

func main() {
	tracePath := flag.String("trace", "output/output.txt", "path of the transcript trace file")
	flag.Parse()

	if err := run(*tracePath); err != nil {
		fmt.Fprintln(os.Stderr, "macro-events:", err)
		os.Exit(1)
	}
}

func run(tracePath string) error {
	config.Load()
	logger := logging.New(logging.DefaultConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	logger.Info("macro.run.start", "run_id", runID)

	tracer, err := trace.NewFileTracer(tracePath)
	if err != nil {
		return err
	}

	model, err := openai.New()
	if err != nil {
		return err
	}
	scraper, err := scrape.NewFirecrawl()
	if err != nil {
		return err
	}
	cal, err := calendar.NewGoogle()
	if err != nil {
		return err
	}

	workflow := &macro.Workflow{
		Events: &macro.EventsAgent{
			Model:   model,
			Scraper: scraper,
			Logger:  logger,
			Tracer:  tracer,
		},
		Search: &macro.SearchAgent{
			Model:    model,
			Searcher: search.NewDuckDuckGo(),
			Scraper:  scraper,
			Logger:   logger,
			Tracer:   tracer,
		},
		Summarizer: &macro.SummarizerAgent{
			Model:  model,
			Logger: logger,
			Tracer: tracer,
		},
		Calendar: cal,
		Logger:   logger,
	}

	state, err := workflow.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("macro.run.complete", "run_id", runID, "events_processed", len(state.UpcomingEvents))
	for _, event := range state.UpcomingEvents {
		fmt.Printf("%s (%s)\n", event.Name, event.Date)
	}
	return nil
}
