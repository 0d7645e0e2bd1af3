package extractor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/dshills/articlekb-mcp/pkg/types"
)

var (
	// ErrSourceUnreachable means the source could not be fetched at all.
	ErrSourceUnreachable = errors.New("source unreachable")

	// ErrNoContent means the source was fetched but yielded no usable text.
	ErrNoContent = errors.New("no content extracted")
)

// Some sites serve bot-looking clients an empty shell, so requests carry a
// browser user agent.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// strippedSelectors are removed before text extraction.
var strippedSelectors = []string{"script", "style", "nav", "footer", "header", "aside", "noscript"}

var blankLines = regexp.MustCompile(`\n{3,}`)

// URLExtractor fetches web pages and extracts readable article text.
type URLExtractor struct {
	client *http.Client
}

// NewURLExtractor returns an extractor with a 30 second request timeout.
func NewURLExtractor() *URLExtractor {
	return &URLExtractor{
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FromURL fetches the page and extracts its main content. Network and HTTP
// failures wrap ErrSourceUnreachable; pages with no extractable text return
// ErrNoContent.
func (e *URLExtractor) FromURL(ctx context.Context, url string) (*types.ExtractedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrSourceUnreachable, url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	extracted := &types.ExtractedContent{
		URL:           url,
		Title:         extractTitle(doc),
		Author:        extractMeta(doc, `meta[name="author"]`, `meta[property="article:author"]`),
		PublishedDate: extractPublished(doc),
		Content:       extractBody(doc),
	}

	if extracted.Content == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoContent, url)
	}
	if extracted.Title == "" {
		extracted.Title = "Untitled"
	}
	return extracted, nil
}

// extractBody returns readable text, preferring semantic content containers
// over the whole body.
func extractBody(doc *goquery.Document) string {
	doc.Find(strings.Join(strippedSelectors, ", ")).Remove()

	root := doc.Find("article").First()
	if root.Length() == 0 {
		root = doc.Find("main").First()
	}
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}

	var lines []string
	root.Find("h1, h2, h3, h4, h5, h6, p, li, td, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		// Bare pages without block elements still count if any text exists.
		if text := strings.TrimSpace(root.Text()); text != "" {
			lines = append(lines, text)
		}
	}

	return strings.TrimSpace(blankLines.ReplaceAllString(strings.Join(lines, "\n\n"), "\n\n"))
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		if og = strings.TrimSpace(og); og != "" {
			return og
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func extractMeta(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).Attr("content"); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func extractPublished(doc *goquery.Document) *time.Time {
	raw := extractMeta(doc,
		`meta[property="article:published_time"]`,
		`meta[name="date"]`,
		`meta[name="publish-date"]`)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
