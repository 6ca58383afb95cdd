package collect

import (
	"testing"
	"time"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/crawler"
)

type fakeFetcher struct {
	name     string
	articles []article.Article
}

func (f *fakeFetcher) Name() string             { return f.name }
func (f *fakeFetcher) Crawl() []article.Article { return f.articles }

func makeArticle(title, date, source string, priority article.Priority) article.Article {
	return article.New(article.Article{
		Title:    title,
		Date:     date,
		URL:      "https://example.com/" + source,
		Source:   source,
		Priority: priority,
	})
}

func TestCrawlAllAggregatesAndPauses(t *testing.T) {
	healthy := &fakeFetcher{name: "healthy", articles: []article.Article{
		makeArticle("LLM evaluation suite released", "2025-06-14T10:00:00Z", "healthy", article.PriorityHigh),
		makeArticle("Training run postmortem", "2025-06-13T10:00:00Z", "healthy", article.PriorityMedium),
	}}
	failing := &fakeFetcher{name: "failing"}
	another := &fakeFetcher{name: "another", articles: []article.Article{
		makeArticle("Inference cost report", "2025-06-12T10:00:00Z", "another", article.PriorityMedium),
	}}

	var pauses []time.Duration
	c := &Collector{
		fetchers: []crawler.Fetcher{healthy, failing, another},
		pause:    500 * time.Millisecond,
		sleep:    func(d time.Duration) { pauses = append(pauses, d) },
	}

	articles := c.CrawlAll()

	if len(articles) != 3 {
		t.Fatalf("got %d articles, want 3", len(articles))
	}
	// One pause before each fetcher after the first.
	if len(pauses) != 2 {
		t.Fatalf("got %d pauses, want 2", len(pauses))
	}
	for _, d := range pauses {
		if d != 500*time.Millisecond {
			t.Errorf("pause %v, want 500ms", d)
		}
	}
}

func TestCrawlAllAllSourcesFailing(t *testing.T) {
	c := &Collector{
		fetchers: []crawler.Fetcher{&fakeFetcher{name: "a"}, &fakeFetcher{name: "b"}},
		sleep:    func(time.Duration) {},
	}
	if articles := c.CrawlAll(); len(articles) != 0 {
		t.Errorf("all-failing crawl should yield empty result, got %v", articles)
	}
}

func TestDedupFirstSeenWins(t *testing.T) {
	articles := []article.Article{
		makeArticle("GPT-5 Launch Details Today", "2025-06-14", "first", article.PriorityMedium),
		makeArticle("gpt-5, launch details -- today!", "2025-06-13", "second", article.PriorityHigh),
		makeArticle("Something entirely different", "2025-06-14", "third", article.PriorityMedium),
	}

	deduped := Dedup(articles)
	if len(deduped) != 2 {
		t.Fatalf("got %d articles, want 2", len(deduped))
	}
	if deduped[0].Source != "first" {
		t.Errorf("first occurrence should win, kept source %q", deduped[0].Source)
	}
}

func TestDedupKeepsDistinctUnicodeTitles(t *testing.T) {
	// Normalization must not reduce non-Latin titles to an empty key.
	articles := []article.Article{
		makeArticle("人工智能发布新模型", "2025-06-14", "a", article.PriorityMedium),
		makeArticle("机器学习基准测试结果", "2025-06-14", "b", article.PriorityMedium),
		makeArticle("Исследование нейронных сетей", "2025-06-14", "c", article.PriorityMedium),
	}
	if got := Dedup(articles); len(got) != 3 {
		t.Errorf("distinct non-ASCII titles merged: got %d articles, want 3", len(got))
	}

	if key := titleKey("人工智能发布新模型"); key == "" {
		t.Error("non-ASCII title normalized to empty key")
	}
}

func TestDedupIdempotent(t *testing.T) {
	articles := []article.Article{
		makeArticle("Alpha release notes", "2025-06-14", "a", article.PriorityMedium),
		makeArticle("Beta release notes", "2025-06-14", "b", article.PriorityMedium),
	}
	once := Dedup(articles)
	twice := Dedup(append([]article.Article(nil), once...))
	if len(once) != len(twice) {
		t.Errorf("dedup not idempotent: %d then %d", len(once), len(twice))
	}
}

func TestDedupTokenLimit(t *testing.T) {
	// Titles identical in their first eight tokens are duplicates even when
	// the tails differ.
	articles := []article.Article{
		makeArticle("one two three four five six seven eight nine", "", "a", article.PriorityMedium),
		makeArticle("one two three four five six seven eight TEN", "", "b", article.PriorityMedium),
	}
	if got := Dedup(articles); len(got) != 1 {
		t.Errorf("got %d articles, want 1", len(got))
	}
}

func TestRankOrdering(t *testing.T) {
	articles := []article.Article{
		makeArticle("undated medium", "", "s", article.PriorityMedium),
		makeArticle("old high", "2025-06-01T00:00:00Z", "s", article.PriorityHigh),
		makeArticle("new medium", "2025-06-14T00:00:00Z", "s", article.PriorityMedium),
		makeArticle("new high", "2025-06-14T00:00:00Z", "s", article.PriorityHigh),
		makeArticle("garbage date high", "not-a-date", "s", article.PriorityHigh),
	}

	Rank(articles)

	wantTitles := []string{"new high", "old high", "garbage date high", "new medium", "undated medium"}
	for i, want := range wantTitles {
		if articles[i].Title != want {
			t.Errorf("rank[%d] = %q, want %q", i, articles[i].Title, want)
		}
	}

	// Every adjacent pair is non-increasing by (weight, date).
	for i := 0; i+1 < len(articles); i++ {
		wi := articles[i].Priority.Weight()
		wj := articles[i+1].Priority.Weight()
		if wi < wj {
			t.Errorf("weight order violated at %d: %d < %d", i, wi, wj)
		}
	}
}

func TestComputeStats(t *testing.T) {
	a := makeArticle("High one", "2025-06-14T00:00:00Z", "src-a", article.PriorityHigh)
	a.Tags = []string{"ai", "news"}
	b := makeArticle("Medium one", "2025-06-10T00:00:00Z", "src-a", article.PriorityMedium)
	b.Tags = []string{"ai"}
	c := makeArticle("Undated", "", "src-b", article.PriorityMedium)

	s := ComputeStats([]article.Article{a, b, c})

	if s.Total != 3 {
		t.Errorf("total = %d, want 3", s.Total)
	}
	if s.BySource["src-a"] != 2 || s.BySource["src-b"] != 1 {
		t.Errorf("unexpected per-source counts %v", s.BySource)
	}
	if s.ByTag["ai"] != 2 || s.ByTag["news"] != 1 {
		t.Errorf("unexpected per-tag counts %v", s.ByTag)
	}
	if s.ByPriority.High != 1 || s.ByPriority.Medium != 2 || s.ByPriority.Low != 0 {
		t.Errorf("unexpected priority breakdown %+v", s.ByPriority)
	}
	if s.OldestDate != "2025-06-10T00:00:00Z" || s.NewestDate != "2025-06-14T00:00:00Z" {
		t.Errorf("unexpected date range %q .. %q", s.OldestDate, s.NewestDate)
	}
}
