package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ai-knowledge-crawler/aikc/internal/config"
)

func rssSource(name, url string) config.Source {
	return config.Source{
		Name: name,
		Kind: config.KindRSS,
		URL:  url,
		Tags: []string{"news"},
	}
}

func TestFeedFetcherFiltersAndNormalizes(t *testing.T) {
	recent := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC1123Z)
	stale := time.Now().UTC().AddDate(0, 0, -30).Format(time.RFC1123Z)

	feedXML := fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <item>
    <title>New LLM released by lab</title>
    <link>https://example.com/llm</link>
    <pubDate>%s</pubDate>
    <description>A large language model announcement.</description>
    <author>researcher@example.com (Jane Doe)</author>
  </item>
  <item>
    <title>Old machine learning story</title>
    <link>https://example.com/old</link>
    <pubDate>%s</pubDate>
    <description>machine learning from last month</description>
  </item>
  <item>
    <title>Quarterly earnings call</title>
    <link>https://example.com/earnings</link>
    <pubDate>%s</pubDate>
    <description>Revenue and guidance.</description>
  </item>
  <item>
    <title></title>
    <link>https://example.com/untitled</link>
    <pubDate>%s</pubDate>
    <description>llm item with no title</description>
  </item>
</channel>
</rss>`, recent, stale, recent, recent)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, feedXML)
	}))
	defer srv.Close()

	f := NewFeedFetcher(rssSource("test-feed", srv.URL), DefaultKeywords, 3)
	articles := f.Crawl()

	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1: %+v", len(articles), articles)
	}
	a := articles[0]
	if a.Title != "New LLM released by lab" {
		t.Errorf("unexpected title %q", a.Title)
	}
	if a.Source != "test-feed" {
		t.Errorf("unexpected source %q", a.Source)
	}
	if a.URL != "https://example.com/llm" {
		t.Errorf("unexpected url %q", a.URL)
	}
	if len(a.Authors) != 1 || a.Authors[0] != "Jane Doe" {
		t.Errorf("unexpected authors %v", a.Authors)
	}
	if a.CrawledAt == "" {
		t.Error("crawled_at not stamped")
	}
}

func TestFeedFetcherServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFeedFetcher(rssSource("broken-feed", srv.URL), DefaultKeywords, 3)
	if articles := f.Crawl(); articles != nil {
		t.Errorf("failing feed should yield nil, got %v", articles)
	}
}

func TestFeedFetcherFallsBackToUpdated(t *testing.T) {
	recent := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC3339)

	feedXML := fmt.Sprintf(`<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Atom Feed</title>
  <entry>
    <title>AI safety research update</title>
    <link href="https://example.com/safety"/>
    <updated>%s</updated>
  </entry>
</feed>`, recent)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedXML)
	}))
	defer srv.Close()

	f := NewFeedFetcher(rssSource("atom-feed", srv.URL), DefaultKeywords, 3)
	articles := f.Crawl()
	if len(articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(articles))
	}
	if articles[0].Date == "" {
		t.Error("entry date should fall back to the updated timestamp")
	}
}
