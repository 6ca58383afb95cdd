package crawler

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
)

// DefaultKeywords is the built-in relevance keyword set, matched against
// lowercased title+summary text. Overridable per run via configuration.
var DefaultKeywords = []string{
	"artificial intelligence", "machine learning", "deep learning",
	"neural network", "llm", "large language model", "gpt", "claude",
	"openai", "anthropic", "google ai", "deepmind", "chatbot",
	"generative ai", "foundation model", "transformer", "ai safety",
	"ai ethics", "ai regulation", "computer vision", "nlp",
	"natural language processing", "ai chip", "nvidia", "ai startup",
	"ai funding", "ai research", "robotics ai", "autonomous",
	"ai agent", "multimodal ai", "ai model", "ai training",
	"bert", "pytorch", "tensorflow", "huggingface", "stable diffusion",
}

// priorityKeywords escalate an article to high priority on a text match.
var priorityKeywords = []string{
	"breakthrough", "new model", "release", "announcement",
	"funding", "acquisition", "partnership", "open source",
	"research paper", "sota", "state-of-the-art", "benchmark",
	"regulation", "policy", "safety", "ethics",
}

// aiIndicatorTags short-circuit the relevance check: a source declaring one
// of these tags is in scope regardless of the article text.
var aiIndicatorTags = map[string]struct{}{
	"ai":                      {},
	"ml":                      {},
	"artificial-intelligence": {},
	"machine-learning":        {},
	"neural":                  {},
	"deep-learning":           {},
}

// ParseDate parses a textual timestamp of any common format, in UTC when no
// zone is given. ok is false when the text is empty or unparsable.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// WithinWindow reports whether a dated article falls inside the lookback
// window. The lower edge is inclusive. Empty or unparsable dates pass —
// fail-open, by contrast with the fail-closed relevance check.
func WithinWindow(dateStr string, cutoff time.Time) bool {
	t, ok := ParseDate(dateStr)
	if !ok {
		return true
	}
	return !t.Before(cutoff)
}

// Relevant reports whether content is topically in scope. An AI-indicator
// tag passes immediately; otherwise at least one keyword must appear in the
// lowercased title+summary text. No match means the article is dropped.
func Relevant(keywords []string, title, summary string, tags []string) bool {
	for _, tag := range tags {
		if _, ok := aiIndicatorTags[strings.ToLower(tag)]; ok {
			return true
		}
	}

	text := strings.ToLower(title + " " + summary)
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IsYesterday reports whether dateStr falls on the UTC calendar day
// immediately preceding now. Unparsable dates are not yesterday.
func IsYesterday(dateStr string, now time.Time) bool {
	t, ok := ParseDate(dateStr)
	if !ok {
		return false
	}
	y := now.UTC().AddDate(0, 0, -1)
	t = t.UTC()
	return t.Year() == y.Year() && t.Month() == y.Month() && t.Day() == y.Day()
}

// PriorityFor applies the shared priority heuristic: yesterday's articles
// are high, high-value keyword matches are high, everything else is medium.
// Fetchers never assign low; that level is reserved for synthesized
// placeholders.
func PriorityFor(title, summary, dateStr string, now time.Time) article.Priority {
	if IsYesterday(dateStr, now) {
		return article.PriorityHigh
	}

	text := strings.ToLower(title + " " + summary)
	for _, kw := range priorityKeywords {
		if strings.Contains(text, kw) {
			return article.PriorityHigh
		}
	}

	return article.PriorityMedium
}
