// Package search provides the web search collaborator: a query in, an
// ordered, finite list of result records out.
package search

import "context"

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher is the narrow interface agents consume.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Result, error)
}
