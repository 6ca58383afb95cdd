package crawler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ai-knowledge-crawler/aikc/internal/config"
)

func scrapeSource(url string) config.Source {
	return config.Source{
		Name:            "test-site",
		Kind:            config.KindScrape,
		URL:             url,
		Tags:            []string{"research"},
		ArticleSelector: "div.post",
		TitleSelector:   "h2",
		LinkSelector:    "a.more",
	}
}

func TestScrapeFetcher(t *testing.T) {
	page := `<html><body>
<div class="post">
  <h2>Neural network compression advances</h2>
  <a class="more" href="/posts/compression">Read</a>
</div>
<div class="post">
  <h2>Office relocation announcement</h2>
  <a class="more" href="/posts/office">Read</a>
</div>
<div class="post">
  <h2>Transformer architectures revisited</h2>
  <a class="more" href="https://external.example.com/transformers">Read</a>
</div>
<div class="post">
  <h2></h2>
  <a class="more" href="/posts/untitled">Read</a>
</div>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	f := NewScrapeFetcher(scrapeSource(srv.URL), DefaultKeywords, 3)
	articles := f.Crawl()

	if len(articles) != 2 {
		t.Fatalf("got %d articles, want 2: %+v", len(articles), articles)
	}
	if want := srv.URL + "/posts/compression"; articles[0].URL != want {
		t.Errorf("relative link not resolved: got %q, want %q", articles[0].URL, want)
	}
	if want := "https://external.example.com/transformers"; articles[1].URL != want {
		t.Errorf("absolute link changed: got %q, want %q", articles[1].URL, want)
	}
	for _, a := range articles {
		if a.Source != "test-site" {
			t.Errorf("unexpected source %q", a.Source)
		}
	}
}

func TestScrapeFetcherDateSelector(t *testing.T) {
	page := `<html><body>
<div class="post">
  <h2>Deep learning results</h2>
  <span class="when">2020-01-01</span>
  <a class="more" href="/old">Read</a>
</div>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	src := scrapeSource(srv.URL)
	src.DateSelector = "span.when"

	f := NewScrapeFetcher(src, DefaultKeywords, 3)
	if articles := f.Crawl(); len(articles) != 0 {
		t.Errorf("dated stale article should be dropped, got %+v", articles)
	}
}

func TestResolveLink(t *testing.T) {
	tests := []struct {
		base, href, want string
	}{
		{"https://example.com/blog/", "/posts/a", "https://example.com/posts/a"},
		{"https://example.com/blog/", "posts/a", "https://example.com/blog/posts/a"},
		{"https://example.com", "https://other.com/x", "https://other.com/x"},
	}
	for _, tt := range tests {
		if got := resolveLink(tt.base, tt.href); got != tt.want {
			t.Errorf("resolveLink(%q, %q) = %q, want %q", tt.base, tt.href, got, tt.want)
		}
	}
}
