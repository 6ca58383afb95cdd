package crawler

import (
	"bytes"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/config"
	"github.com/ai-knowledge-crawler/aikc/internal/request"
)

const defaultGithubTrendingURL = "https://github.com/trending"

// trendingKeywords is the narrow hand list for trending repositories. It is
// deliberately not the general relevance keyword set: repo names and
// one-line descriptions carry far less text to match against.
var trendingKeywords = []string{
	"ai", "ml", "machine learning", "neural", "deep learning",
	"transformer", "llm", "gpt", "bert", "pytorch", "tensorflow",
}

// githubPeriods are the trending time windows crawled each run.
var githubPeriods = []string{"daily", "weekly"}

// GithubTrendingFetcher crawls the GitHub trending listing and keeps only
// AI/ML-relevant repositories. Every entry gets uniform medium priority —
// trending rank is popularity, not news urgency.
type GithubTrendingFetcher struct {
	name    string
	baseURL string
	tags    []string
	client  *request.Client
}

// NewGithubTrendingFetcher creates a trending-list fetcher.
func NewGithubTrendingFetcher(src config.Source) *GithubTrendingFetcher {
	return &GithubTrendingFetcher{
		name:    src.Name,
		baseURL: defaultGithubTrendingURL,
		tags:    src.Tags,
		client:  request.NewClient(src.Throttle()),
	}
}

func (f *GithubTrendingFetcher) Name() string { return f.name }

// Crawl fetches the daily and weekly trending pages.
func (f *GithubTrendingFetcher) Crawl() []article.Article {
	log.Printf("Crawling GitHub trending repositories")

	var articles []article.Article
	for _, period := range githubPeriods {
		articles = append(articles, f.crawlPeriod(period)...)
	}

	log.Printf("Collected %d trending repositories", len(articles))
	return articles
}

func (f *GithubTrendingFetcher) crawlPeriod(period string) []article.Article {
	pageURL := f.baseURL + "?since=" + period + "&l=python"
	body, err := f.client.Get(pageURL)
	if err != nil {
		log.Printf("Error crawling GitHub trending (%s): %v", period, err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Printf("Error parsing GitHub trending (%s): %v", period, err)
		return nil
	}

	var articles []article.Article
	doc.Find("article.Box-row").Each(func(_ int, sel *goquery.Selection) {
		titleSel := sel.Find("h2 a").First()
		href, ok := titleSel.Attr("href")
		if !ok {
			return
		}
		// Repo names render as "owner /\n name"; collapse the whitespace.
		repoName := strings.Join(strings.Fields(titleSel.Text()), " ")
		if repoName == "" {
			return
		}

		description := strings.TrimSpace(sel.Find("p").First().Text())
		if !matchesTrendingKeywords(repoName + " " + description) {
			return
		}

		tags := append([]string(nil), f.tags...)
		tags = append(tags, period)

		articles = append(articles, article.New(article.Article{
			Title:    "Trending: " + repoName,
			Date:     time.Now().UTC().Format(time.RFC3339),
			URL:      "https://github.com" + strings.TrimSpace(href),
			Tags:     tags,
			Source:   f.name,
			Summary:  description,
			Priority: article.PriorityMedium,
		}))
	})
	return articles
}

func matchesTrendingKeywords(text string) bool {
	text = strings.ToLower(text)
	for _, kw := range trendingKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
