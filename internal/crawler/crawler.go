// Package crawler implements the polymorphic fetcher set: one fetcher per
// source kind, each turning a source's raw payload into normalized Article
// records with timeframe and relevance filtering applied at the boundary.
package crawler

import (
	"fmt"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/config"
)

// Fetcher is the single capability every source kind implements. Crawl
// never propagates errors: source-specific failures are logged and yield an
// empty result, so one broken source cannot abort a run.
type Fetcher interface {
	Name() string
	Crawl() []article.Article
}

// New maps a source descriptor's kind to the matching fetcher variant.
// keywords is the relevance keyword set (nil selects DefaultKeywords);
// daysBack is the lookback window in days. An unknown kind is an
// initialization error — the only error this package raises.
func New(src config.Source, keywords []string, daysBack int) (Fetcher, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}

	switch src.Kind {
	case config.KindRSS:
		return NewFeedFetcher(src, keywords, daysBack), nil
	case config.KindScrape:
		return NewScrapeFetcher(src, keywords, daysBack), nil
	case config.KindArxiv:
		return NewArxivFetcher(src, daysBack), nil
	case config.KindGithubTrending:
		return NewGithubTrendingFetcher(src), nil
	case config.KindHuggingFace:
		return NewHuggingFaceFetcher(src, daysBack), nil
	case config.KindPapersWithCode:
		return NewPapersWithCodeFetcher(src, daysBack), nil
	}
	return nil, fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
}
