package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ai-knowledge-crawler/aikc/internal/config"
)

func TestArxivFetcher(t *testing.T) {
	recent := time.Now().UTC().Add(-12 * time.Hour).Format(time.RFC3339)

	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("search_query"))
		fmt.Fprintf(w, `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Attention Mechanisms
    for Long Contexts</title>
    <link href="https://arxiv.org/abs/2506.00001"/>
    <published>%s</published>
    <summary>We study
    attention over long contexts.</summary>
    <author><name>Alice Example</name></author>
    <author><name>Bob Example</name></author>
  </entry>
</feed>`, recent)
	}))
	defer srv.Close()

	src := config.Source{
		Name:       "arxiv",
		Kind:       config.KindArxiv,
		Tags:       []string{"research", "paper"},
		Categories: []string{"cs.AI", "cs.LG"},
	}
	f := NewArxivFetcher(src, 3)
	f.apiURL = srv.URL

	articles := f.Crawl()

	if len(queries) != 2 || queries[0] != "cat:cs.AI" || queries[1] != "cat:cs.LG" {
		t.Errorf("unexpected category queries %v", queries)
	}
	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(articles))
	}

	a := articles[0]
	if a.Title != "Attention Mechanisms for Long Contexts" {
		t.Errorf("title whitespace not normalized: %q", a.Title)
	}
	if a.Summary != "We study attention over long contexts." {
		t.Errorf("summary whitespace not normalized: %q", a.Summary)
	}
	if len(a.Authors) != 2 {
		t.Errorf("unexpected authors %v", a.Authors)
	}
	if len(a.Tags) != 3 || a.Tags[2] != "cs.AI" {
		t.Errorf("category not appended to tags: %v", a.Tags)
	}
	if articles[1].Tags[2] != "cs.LG" {
		t.Errorf("second category tag wrong: %v", articles[1].Tags)
	}
}

func TestArxivFetcherDefaultCategories(t *testing.T) {
	f := NewArxivFetcher(config.Source{Name: "arxiv", Kind: config.KindArxiv}, 3)
	if len(f.categories) != 5 || f.categories[0] != "cs.AI" {
		t.Errorf("unexpected default categories %v", f.categories)
	}
}

func TestArxivFetcherDropsOldPapers(t *testing.T) {
	old := time.Now().UTC().AddDate(0, 0, -20).Format(time.RFC3339)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <title>Old Paper</title>
    <link href="https://arxiv.org/abs/2401.00001"/>
    <published>%s</published>
    <summary>Stale.</summary>
  </entry>
</feed>`, old)
	}))
	defer srv.Close()

	src := config.Source{Name: "arxiv", Kind: config.KindArxiv, Categories: []string{"cs.AI"}}
	f := NewArxivFetcher(src, 3)
	f.apiURL = srv.URL

	if articles := f.Crawl(); len(articles) != 0 {
		t.Errorf("stale paper should be dropped, got %+v", articles)
	}
}
