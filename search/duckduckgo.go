package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// DefaultBaseURL is DuckDuckGo's HTML results endpoint.
const DefaultBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo queries the DuckDuckGo HTML endpoint and parses the result page.
// No credential is required.
type DuckDuckGo struct {
	httpClient *http.Client
	baseURL    string
	maxResults int
}

var _ Searcher = (*DuckDuckGo)(nil)

// DuckDuckGoOptions configure the client.
type DuckDuckGoOptions struct {
	HTTPClient *http.Client
	BaseURL    string
	MaxResults int
}

// NewDuckDuckGo creates a client returning at most 20 results by default.
func NewDuckDuckGo(optFns ...func(o *DuckDuckGoOptions)) *DuckDuckGo {
	opts := DuckDuckGoOptions{
		HTTPClient: http.DefaultClient,
		BaseURL:    DefaultBaseURL,
		MaxResults: 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &DuckDuckGo{httpClient: opts.HTTPClient, baseURL: opts.BaseURL, maxResults: opts.MaxResults}
}

// Search implements Searcher.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("search: build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; playbook/1.0)")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: unexpected status %s", resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search: parse result page: %w", err)
	}

	results := ParseResults(doc)
	if len(results) > d.maxResults {
		results = results[:d.maxResults]
	}
	return results, nil
}

// ParseResults extracts result records from a parsed DuckDuckGo HTML page,
// preserving page order.
func ParseResults(doc *html.Node) []Result {
	var results []Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") {
			if r, ok := parseResult(n); ok {
				results = append(results, r)
			}
			return // results do not nest
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return results
}

func parseResult(n *html.Node) (Result, bool) {
	var r Result
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			switch {
			case hasClass(n, "result__a") && r.Link == "":
				r.Title = textContent(n)
				r.Link = resolveLink(attr(n, "href"))
			case hasClass(n, "result__snippet"):
				r.Snippet = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return r, r.Link != ""
}

// resolveLink unwraps DuckDuckGo's redirect URLs (…/l/?uddg=<escaped>) to the
// destination address.
func resolveLink(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if dest := u.Query().Get("uddg"); dest != "" {
		return dest
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
