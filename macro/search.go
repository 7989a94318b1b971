package macro

import (
	"context"
	"fmt"
	"strings"

	"github.com/playbook-agents/playbook/llm"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/scrape"
	"github.com/playbook-agents/playbook/search"
	"github.com/playbook-agents/playbook/structured"
	"github.com/playbook-agents/playbook/trace"
)

const filterPrompt = `
You are a specialized macro economic filtering AI agent within a broader ecosystem of intelligent agents that help prepare the user for the upcoming macro economic event.

# Event Information
- **Event Name**: %s
- **Event Date**: %s

# Search Results
%s

Your goal is to select the **top 5 most relevant URLs** that likely contain valuable information related to the macroeconomic event above, and providing the reason for our choice.

# Instructions:
- Is the article about this specific event?
- Does it include forecasts, analysis, or past insights?
- Is it from a credible source? Give higher preference to official sites.

Return only the **top 5 URLs** in JSON format. Make sure it is a valid JSON format. Your output should only contain the json response without any further text:
` + "```json" + `
{
  "top_urls": ["url1", "url2", "url3", "url4", "url5"],
  "reason": "Explanation of why you chose these urls"
}
`

// scrapeFailedNote replaces page content when a top result cannot be fetched.
const scrapeFailedNote = "Could not scrape any content from this page."

// SearchAgent researches the current event: it runs a web search for the
// event's forecast, asks the model to pick the most relevant hits, and
// scrapes those pages into the event's results.
type SearchAgent struct {
	Model    llm.Client
	Searcher search.Searcher
	Scraper  scrape.Scraper
	Logger   logging.Logger
	Tracer   trace.Tracer
}

// Run executes the research step for state.Current. A search failure means no
// results for this event; a model failure or a filter response that fails to
// parse leaves no results flagged; individual scrape failures are recorded in
// the result. None of them fail the run.
func (a *SearchAgent) Run(ctx context.Context, state *State) error {
	logger := a.logger()
	tracer := a.tracer()
	event := state.Current

	query := event.Name + " forecast"
	hits, err := a.Searcher.Search(ctx, query)
	if err != nil {
		logger.Warn("macro.search.failed", "query", query, "error", err.Error())
		return nil
	}
	event.Results = make([]SearchResult, len(hits))
	for i, h := range hits {
		event.Results[i] = SearchResult{Title: h.Title, Link: h.Link, Snippet: h.Snippet}
	}
	logger.Info("macro.search.completed", "query", query, "hits", len(hits))

	prompt := fmt.Sprintf(filterPrompt, event.Name, event.Date, describeResults(event.Results))
	tracer.Record("user", prompt)

	response, err := a.Model.Complete(ctx, llm.UserMessage(prompt))
	if err != nil {
		logger.Warn("macro.search.model_failed", "error", err.Error())
		return nil
	}
	tracer.Record("assistant", response)

	topURLs, err := parseTopURLs(response)
	if err != nil {
		logger.Error("macro.search.parse_failed", "error", err)
		return nil
	}

	for i := range event.Results {
		result := &event.Results[i]
		if !topURLs[result.Link] {
			continue
		}
		result.IsTopResult = true
		page, err := a.Scraper.Scrape(ctx, result.Link)
		if err != nil {
			logger.Error("macro.search.scrape_failed", "url", result.Link, "error", err)
			result.ScrapedContent = scrapeFailedNote
			continue
		}
		result.ScrapedContent = page.Markdown
	}
	return nil
}

func parseTopURLs(response string) (map[string]bool, error) {
	doc, err := structured.Parse(response)
	if err != nil {
		return nil, err
	}
	urls := make(map[string]bool)
	for _, u := range doc.Get("top_urls").Array() {
		if s := u.String(); s != "" {
			urls[s] = true
		}
	}
	return urls, nil
}

func describeResults(results []SearchResult) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "  - Title: %s\n    - Link: %s\n    - Snippet: %s\n", r.Title, r.Link, r.Snippet)
	}
	return b.String()
}

func (a *SearchAgent) logger() logging.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logging.NoOpLogger{}
}

func (a *SearchAgent) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}
	return trace.Nop{}
}
