// Package scrape provides the web content fetcher collaborator: a URL in,
// markdown text plus metadata out.
package scrape

import "context"

// Page is the fetched content of one URL.
type Page struct {
	Markdown string            `json:"markdown"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Scraper is the narrow interface agents consume.
type Scraper interface {
	Scrape(ctx context.Context, url string) (Page, error)
}
