package article

import (
	"time"
)

// maxSummaryLen bounds the stored summary length at construction time.
const maxSummaryLen = 500

// Priority is the coarse urgency classification driving final ranking.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Weight returns the ranking weight for a priority. Unknown values rank
// lowest.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 1
}

// Article is the standardized output schema for all crawled content.
// Instances are value records: constructed once by a fetcher, never mutated.
type Article struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Date      string   `json:"date"`
	URL       string   `json:"url"`
	Tags      []string `json:"tags"`
	Source    string   `json:"source"`
	Summary   string   `json:"summary,omitempty"`
	Priority  Priority `json:"priority"`
	CrawledAt string   `json:"crawled_at"`
}

// New applies construction-time defaults to a: the summary is truncated,
// the priority defaults to medium, and crawled_at is stamped with the
// current UTC instant if unset.
func New(a Article) Article {
	if a.Priority == "" {
		a.Priority = PriorityMedium
	}
	a.Summary = Truncate(a.Summary, maxSummaryLen)
	if a.CrawledAt == "" {
		a.CrawledAt = time.Now().UTC().Format(time.RFC3339)
	}
	return a
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
