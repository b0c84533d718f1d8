package connector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageExtractorOptions configure the page text extractor.
type PageExtractorOptions struct {
	HTTPClient *http.Client
	// MaxTextLength bounds the extracted text; 0 means unbounded. The tool
	// layer applies its own output cap as well, this just avoids hauling
	// multi-megabyte pages through memory.
	MaxTextLength int
	UserAgent     string
}

// PageExtractor fetches a web page and extracts its visible text using
// goquery, stripping script/style/nav noise.
type PageExtractor struct {
	opts PageExtractorOptions
}

// NewPageExtractor constructs a PageExtractor with a bounded HTTP timeout.
func NewPageExtractor(optFns ...func(o *PageExtractorOptions)) *PageExtractor {
	opts := PageExtractorOptions{
		HTTPClient:    &http.Client{Timeout: 20 * time.Second},
		MaxTextLength: 1 << 19, // 512K
		UserAgent:     "agentrelay/1.0",
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &PageExtractor{opts: opts}
}

// Fetch implements PageFetcher.
func (p *PageExtractor) Fetch(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", p.opts.UserAgent)

	resp, err := p.opts.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("page request failed with status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}
	return p.ExtractText(doc), nil
}

// ExtractText pulls readable text out of a parsed document.
func (p *PageExtractor) ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, sel *goquery.Selection) {
		b.WriteString(sel.Text())
	})
	text := condenseWhitespace(b.String())
	if p.opts.MaxTextLength > 0 && len(text) > p.opts.MaxTextLength {
		text = text[:p.opts.MaxTextLength]
	}
	return text
}

// condenseWhitespace collapses runs of blank lines and trims each line,
// mirroring a text-only rendering of the page.
func condenseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
