package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/playbook-agents/playbook/config"
)

// DefaultBaseURL is the Firecrawl API endpoint.
const DefaultBaseURL = "https://api.firecrawl.dev"

// Firecrawl fetches pages as main-content markdown through the Firecrawl
// scrape API.
type Firecrawl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

var _ Scraper = (*Firecrawl)(nil)

// FirecrawlOptions configure the client.
type FirecrawlOptions struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
}

// NewFirecrawl constructs a client. The API key is resolved once, from the
// option or the FIRE_CRAWL_API environment key; a missing key fails
// construction.
func NewFirecrawl(optFns ...func(o *FirecrawlOptions)) (*Firecrawl, error) {
	opts := FirecrawlOptions{
		HTTPClient: http.DefaultClient,
		BaseURL:    DefaultBaseURL,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.APIKey == "" {
		key, err := config.Require("FIRE_CRAWL_API")
		if err != nil {
			return nil, err
		}
		opts.APIKey = key
	}
	return &Firecrawl{httpClient: opts.HTTPClient, baseURL: opts.BaseURL, apiKey: opts.APIKey}, nil
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type scrapeResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string            `json:"markdown"`
		Metadata map[string]string `json:"metadata"`
	} `json:"data"`
	Error string `json:"error"`
}

// Scrape implements Scraper.
func (f *Firecrawl) Scrape(ctx context.Context, url string) (Page, error) {
	body, err := json.Marshal(scrapeRequest{URL: url, Formats: []string{"markdown"}, OnlyMainContent: true})
	if err != nil {
		return Page{}, fmt.Errorf("scrape: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("scrape: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("scrape: %s: %w", url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("scrape: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("scrape: %s: unexpected status %s", url, resp.Status)
	}

	var decoded scrapeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Page{}, fmt.Errorf("scrape: decode response: %w", err)
	}
	if !decoded.Success {
		return Page{}, fmt.Errorf("scrape: %s: %s", url, decoded.Error)
	}
	return Page{Markdown: decoded.Data.Markdown, Metadata: decoded.Data.Metadata}, nil
}
