// Package collect runs the configured fetcher set sequentially and reduces
// the combined haul: deduplicate by normalized title, rank by priority and
// recency, summarize into run statistics.
package collect

import (
	"log"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/config"
	"github.com/ai-knowledge-crawler/aikc/internal/crawler"
)

// Collector drives one crawl across every configured source.
type Collector struct {
	fetchers []crawler.Fetcher
	pause    time.Duration

	sleep func(time.Duration)
}

// New builds a Collector from the full source registry. A malformed source
// descriptor fails construction; individual crawl failures later do not.
func New(cfg *config.Config) (*Collector, error) {
	var fetchers []crawler.Fetcher
	for _, src := range cfg.Sources.All() {
		f, err := crawler.New(src, cfg.Crawl.Keywords, cfg.Crawl.DaysBack)
		if err != nil {
			return nil, err
		}
		fetchers = append(fetchers, f)
	}
	return &Collector{
		fetchers: fetchers,
		pause:    cfg.Crawl.Pause(),
		sleep:    time.Sleep,
	}, nil
}

// CrawlAll crawls every source in registry order with a courtesy pause
// between sources, then deduplicates and ranks the combined result. A source
// that yields nothing contributes nothing; all sources failing yields an
// empty slice, not an error.
func (c *Collector) CrawlAll() []article.Article {
	log.Printf("Starting crawl across %d sources", len(c.fetchers))

	var all []article.Article
	for i, f := range c.fetchers {
		if i > 0 && c.pause > 0 {
			c.sleep(c.pause)
		}
		all = append(all, f.Crawl()...)
	}

	before := len(all)
	all = Dedup(all)
	Rank(all)

	log.Printf("Crawl finished: %d articles (%d duplicates removed)", len(all), before-len(all))
	return all
}

// Keeps letters and digits in any script; Go's \w is ASCII-only and would
// strip non-ASCII titles down to an empty key.
var titlePunct = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

// titleKey normalizes a title for duplicate detection: punctuation stripped,
// lowercased, first 8 whitespace tokens.
func titleKey(title string) string {
	cleaned := strings.ToLower(titlePunct.ReplaceAllString(title, ""))
	tokens := strings.Fields(cleaned)
	if len(tokens) > 8 {
		tokens = tokens[:8]
	}
	return strings.Join(tokens, " ")
}

// Dedup removes articles whose normalized title key was already seen,
// keeping the first occurrence. Order is otherwise preserved, so applying
// Dedup twice changes nothing.
func Dedup(articles []article.Article) []article.Article {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0]
	for _, a := range articles {
		key := titleKey(a.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Rank orders articles in place, descending by priority weight and then by
// parsed publication date. Unparsable dates rank as the zero time, so dated
// articles of equal priority always precede undated ones. The sort is
// stable: equal articles keep their crawl order.
func Rank(articles []article.Article) {
	type keyed struct {
		art  article.Article
		date time.Time
	}
	ks := make([]keyed, len(articles))
	for i, a := range articles {
		t, _ := crawler.ParseDate(a.Date)
		ks[i] = keyed{art: a, date: t}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		wi, wj := ks[i].art.Priority.Weight(), ks[j].art.Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return ks[i].date.After(ks[j].date)
	})
	for i, k := range ks {
		articles[i] = k.art
	}
}

// Stats summarizes one crawl result.
type Stats struct {
	Total      int
	BySource   map[string]int
	ByTag      map[string]int
	ByPriority article.PriorityBreakdown
	OldestDate string
	NewestDate string
}

// ComputeStats tallies a crawl result. Min/max dates consider only parsable
// dates.
func ComputeStats(articles []article.Article) Stats {
	s := Stats{
		Total:    len(articles),
		BySource: make(map[string]int),
		ByTag:    make(map[string]int),
	}

	var oldest, newest time.Time
	for _, a := range articles {
		s.BySource[a.Source]++
		for _, tag := range a.Tags {
			s.ByTag[tag]++
		}
		switch a.Priority {
		case article.PriorityHigh:
			s.ByPriority.High++
		case article.PriorityLow:
			s.ByPriority.Low++
		default:
			s.ByPriority.Medium++
		}
		if t, ok := crawler.ParseDate(a.Date); ok {
			if oldest.IsZero() || t.Before(oldest) {
				oldest = t
				s.OldestDate = a.Date
			}
			if newest.IsZero() || t.After(newest) {
				newest = t
				s.NewestDate = a.Date
			}
		}
	}
	return s
}
