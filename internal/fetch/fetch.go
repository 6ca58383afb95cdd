// Package fetch enriches crawled articles that carry no source-provided
// summary by fetching the article page and extracting readable text.
package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/request"
)

// minExtractedLen guards against boilerplate-only extractions.
const minExtractedLen = 100

// Result holds the counts of one enrichment pass.
type Result struct {
	Enriched int
	Skipped  int
	Failed   int
}

// SummaryFetcher fills in missing summaries via HTTP + readability
// extraction. It is a best-effort pass: failures leave the article as-is.
type SummaryFetcher struct {
	client *http.Client
	limit  int
}

// NewSummaryFetcher creates an enrichment fetcher. limit caps how many
// articles a single pass may fetch; zero or negative means no cap.
func NewSummaryFetcher(timeout time.Duration, limit int) *SummaryFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &SummaryFetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		limit: limit,
	}
}

// Enrich fetches page text for articles with an empty summary, in place.
// A domain that fails once is skipped for the rest of the pass.
func (f *SummaryFetcher) Enrich(articles []article.Article) *Result {
	result := &Result{}
	failedDomains := make(map[string]struct{})
	fetched := 0

	for i := range articles {
		if articles[i].Summary != "" {
			result.Skipped++
			continue
		}
		if f.limit > 0 && fetched >= f.limit {
			result.Skipped++
			continue
		}

		domain := hostOf(articles[i].URL)
		if _, failed := failedDomains[domain]; failed {
			result.Failed++
			continue
		}

		fetched++
		text, httpErr := f.extract(articles[i].URL)
		if httpErr != nil {
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s — skipping remaining from %s", articles[i].URL, domain)
			continue
		}
		if text == "" {
			result.Failed++
			log.Printf("No extractable content from: %s", articles[i].URL)
			continue
		}

		articles[i].Summary = article.Truncate(text, 500)
		result.Enriched++
		log.Printf("Enriched summary for: %s", articles[i].Title)
	}

	log.Printf("Summary enrichment complete: %d enriched, %d failed", result.Enriched, result.Failed)
	return result
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

func (f *SummaryFetcher) extract(pageURL string) (string, error) {
	req, err := http.NewRequest("GET", pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", request.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(pageURL)
	page, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(page.TextContent)
	if len(text) > minExtractedLen {
		return text, nil
	}
	return "", nil
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
