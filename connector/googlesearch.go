package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GoogleSearchOptions configure the custom search client.
type GoogleSearchOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	// PageFetcher extracts the text of a result page. Defaults to a
	// goquery-backed PageExtractor sharing the HTTP client.
	PageFetcher PageFetcher
}

// PageFetcher turns a result link into readable page text.
type PageFetcher interface {
	Fetch(ctx context.Context, link string) (string, error)
}

// GoogleSearch implements SearchProvider using the Google Custom Search API,
// fetching and extracting the text of each result page.
type GoogleSearch struct {
	apiKey string
	cx     string
	opts   GoogleSearchOptions
}

// NewGoogleSearch constructs a search client for the given API key and
// search engine id (cx).
func NewGoogleSearch(apiKey, cx string, optFns ...func(o *GoogleSearchOptions)) *GoogleSearch {
	opts := GoogleSearchOptions{
		BaseURL:    "https://www.googleapis.com/customsearch/v1",
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.PageFetcher == nil {
		opts.PageFetcher = NewPageExtractor(func(o *PageExtractorOptions) {
			o.HTTPClient = opts.HTTPClient
		})
	}
	return &GoogleSearch{apiKey: apiKey, cx: cx, opts: opts}
}

// Search implements SearchProvider. Pages that cannot be fetched degrade to
// a placeholder text instead of failing the whole search.
func (g *GoogleSearch) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	if numResults < 1 {
		numResults = 1
	}

	q := url.Values{}
	q.Set("key", g.apiKey)
	q.Set("cx", g.cx)
	q.Set("q", query)
	q.Set("num", fmt.Sprintf("%d", numResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.opts.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status %d", resp.StatusCode)
	}

	var payload struct {
		Items []struct {
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(payload.Items) == 0 {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		text, err := g.opts.PageFetcher.Fetch(ctx, item.Link)
		if err != nil || text == "" {
			// Fall back to the search snippet rather than dropping the hit.
			text = item.Snippet
		}
		results = append(results, SearchResult{Link: item.Link, Text: text})
	}
	return results, nil
}
