package macro

import (
	"context"
	"fmt"
	"strings"

	"github.com/playbook-agents/playbook/llm"
	"github.com/playbook-agents/playbook/logging"
	"github.com/playbook-agents/playbook/structured"
	"github.com/playbook-agents/playbook/trace"
)

const summarizePrompt = `
You are a specialized research assistant AI agent within a broader ecosystem of intelligent agents that help prepare the user for the upcoming macro economic event.

# Event Details
- **Event Name**: %s
- **Event Date**: %s

Your goal is to generate a concise but comprehensive preview/summary for the upcoming macro economic event, and relevant ETFs that would see price changes because of this event.
You are given results from web search for this event along with snippets and scraped content from these links.

%s

# Instructions
- For numbers, use only data scraped from the web search content.
- If you don't have enough data about the forecast or historical data, don't make up numbers.
- Since the content is scraped, you might find irrelevant and unstructured content. Pick only relevant information from that.
- You can use your own knowledge when explaining details about importance of the event.
- For references, list down all the urls that you referred the content from.
- Provide citations for the content generated.

Your output must be a JSON object with the following structure. Make sure it is a valid JSON format. Your output should only contain the json response without any further text:
` + "```json" + `
{
  "event_details": "A broad title for the event along with date and time.",
  "forecast": "Summarize current market expectations (monthly and annual changes if relevant), including consensus figures and expert/analyst projections. Mention key trends or market sentiment leading into the event.",
  "history": "Briefly outline what happened in the previous month's report, and how markets or analysts interpreted that. Mention any notable surprises or shifts in underlying data. Include relevant YoY and MoM comparisons. Quote reliable sources (with attribution and embedded URLs).",
  "significance": "Explain why this event matters for markets. What does the data typically indicate? What could a surprise in either direction (stronger or weaker data) imply for equities, yields, Fed policy, or inflation expectations? Include any sectoral or macroeconomic implications.",
  "latest_news": "Summarize what the most recent articles (provided) are reporting or predicting. Are there any new factors at play (e.g., policy changes, geopolitical tensions, weather events, etc.) that may affect this release or its interpretation?",
  "etfs": "Explain the ETFs I can trade that have high impact for this event, along with how to do execute the trade based on the direction of the results",
  "references": ["url1", "url2", ...]
}
`

// summaryErrorNote is stored as the event summary when the model response
// cannot be decoded; the calendar entry still gets created downstream.
const summaryErrorNote = "Error generating summary."

// summarySections maps response fields to calendar-description headings, in
// render order.
var summarySections = []struct {
	key   string
	title string
}{
	{"event_details", "Event Details"},
	{"forecast", "Forecast"},
	{"history", "Previous Report Recap"},
	{"significance", "Why This Matters"},
	{"latest_news", "Latest Developments"},
	{"etfs", "ETFs to Watch"},
	{"references", "References"},
}

// SummarizerAgent turns the current event's researched articles into a
// formatted prep summary for the calendar entry.
type SummarizerAgent struct {
	Model  llm.Client
	Logger logging.Logger
	Tracer trace.Tracer
}

// Run executes the summary step for state.Current. A model failure or a
// response that fails to decode stores an error note as the summary rather
// than failing the run.
func (a *SummarizerAgent) Run(ctx context.Context, state *State) error {
	logger := a.logger()
	tracer := a.tracer()
	event := state.Current

	prompt := fmt.Sprintf(summarizePrompt, event.Name, event.Date, describeArticles(event.Results))
	tracer.Record("user", prompt)

	response, err := a.Model.Complete(ctx, llm.UserMessage(prompt))
	if err != nil {
		logger.Warn("macro.summarize.model_failed", "event", event.Name, "error", err.Error())
		event.Summary = summaryErrorNote
		return nil
	}
	tracer.Record("assistant", response)

	summary, err := formatSummary(response)
	if err != nil {
		logger.Error("macro.summarize.parse_failed", "event", event.Name, "error", err)
		event.Summary = summaryErrorNote
		return nil
	}
	event.Summary = summary
	return nil
}

// formatSummary decodes the structured summary response and renders it as
// the markdown description stored on the calendar entry.
func formatSummary(response string) (string, error) {
	doc, err := structured.Parse(response)
	if err != nil {
		return "", err
	}

	var parts []string
	for _, section := range summarySections {
		field := doc.Get(section.key)
		if !field.Exists() {
			continue
		}
		if field.IsArray() {
			items := field.Array()
			if len(items) == 0 {
				continue
			}
			lines := make([]string, 0, len(items))
			for _, item := range items {
				lines = append(lines, "- "+item.String())
			}
			parts = append(parts, fmt.Sprintf("**%s:**\n%s", section.title, strings.Join(lines, "\n")))
			continue
		}
		if field.String() == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("**%s:**\n%s", section.title, field.String()))
	}
	return strings.Join(parts, "\n\n"), nil
}

func describeArticles(results []SearchResult) string {
	var b strings.Builder
	b.WriteString("# Articles\n")
	counter := 0
	for _, r := range results {
		if !r.IsTopResult {
			continue
		}
		counter++
		fmt.Fprintf(&b, "## Article %d:\n", counter)
		fmt.Fprintf(&b, "- *Title*: %s\n", r.Title)
		fmt.Fprintf(&b, "- *Link*: %s\n", r.Link)
		fmt.Fprintf(&b, "- *Snippet*: %s\n", r.Snippet)
		content := r.ScrapedContent
		if content == "" {
			content = scrapeFailedNote
		}
		fmt.Fprintf(&b, "- *Scraped Content*: %s\n\n\n", content)
	}
	return b.String()
}

func (a *SummarizerAgent) logger() logging.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return logging.NoOpLogger{}
}

func (a *SummarizerAgent) tracer() trace.Tracer {
	if a.Tracer != nil {
		return a.Tracer
	}
	return trace.Nop{}
}
