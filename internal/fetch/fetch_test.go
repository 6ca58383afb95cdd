package fetch

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
)

func articlePage(body string) string {
	return fmt.Sprintf(`<html><head><title>Post</title></head>
<body><article><h1>Post</h1><p>%s</p></article></body></html>`, body)
}

func TestEnrichFillsMissingSummaries(t *testing.T) {
	longText := strings.Repeat("Model evaluation methodology matters a great deal. ", 10)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage(longText))
	}))
	defer srv.Close()

	articles := []article.Article{
		article.New(article.Article{Title: "No summary", URL: srv.URL + "/a", Source: "s"}),
		article.New(article.Article{Title: "Has summary", URL: srv.URL + "/b", Source: "s", Summary: "already set"}),
	}

	f := NewSummaryFetcher(5*time.Second, 0)
	result := f.Enrich(articles)

	if result.Enriched != 1 || result.Skipped != 1 || result.Failed != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if articles[0].Summary == "" {
		t.Error("missing summary was not filled")
	}
	if got := len([]rune(articles[0].Summary)); got > 500 {
		t.Errorf("summary not truncated: %d runes", got)
	}
	if articles[1].Summary != "already set" {
		t.Errorf("existing summary was overwritten: %q", articles[1].Summary)
	}
}

func TestEnrichSkipsFailedDomains(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	articles := []article.Article{
		article.New(article.Article{Title: "one", URL: srv.URL + "/1", Source: "s"}),
		article.New(article.Article{Title: "two", URL: srv.URL + "/2", Source: "s"}),
		article.New(article.Article{Title: "three", URL: srv.URL + "/3", Source: "s"}),
	}

	f := NewSummaryFetcher(5*time.Second, 0)
	result := f.Enrich(articles)

	if hits != 1 {
		t.Errorf("failed domain was fetched %d times, want 1", hits)
	}
	if result.Failed != 3 {
		t.Errorf("failed = %d, want 3", result.Failed)
	}
}

func TestEnrichHonorsLimit(t *testing.T) {
	longText := strings.Repeat("Sufficiently long readable content for extraction. ", 10)

	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, articlePage(longText))
	}))
	defer srv.Close()

	articles := []article.Article{
		article.New(article.Article{Title: "one", URL: srv.URL + "/1", Source: "s"}),
		article.New(article.Article{Title: "two", URL: srv.URL + "/2", Source: "s"}),
		article.New(article.Article{Title: "three", URL: srv.URL + "/3", Source: "s"}),
	}

	f := NewSummaryFetcher(5*time.Second, 2)
	result := f.Enrich(articles)

	if hits != 2 {
		t.Errorf("fetched %d pages, want 2", hits)
	}
	if result.Enriched != 2 || result.Skipped != 1 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestEnrichRejectsShortExtractions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articlePage("Too short."))
	}))
	defer srv.Close()

	articles := []article.Article{
		article.New(article.Article{Title: "one", URL: srv.URL, Source: "s"}),
	}

	f := NewSummaryFetcher(5*time.Second, 0)
	result := f.Enrich(articles)

	if result.Enriched != 0 || result.Failed != 1 {
		t.Errorf("unexpected result %+v", result)
	}
	if articles[0].Summary != "" {
		t.Errorf("short extraction should not be kept: %q", articles[0].Summary)
	}
}
