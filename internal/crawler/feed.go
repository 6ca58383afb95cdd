package crawler

import (
	"bytes"
	"log"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/config"
	"github.com/ai-knowledge-crawler/aikc/internal/request"
)

// FeedFetcher crawls a single RSS/Atom feed with relevance filtering.
type FeedFetcher struct {
	name     string
	url      string
	tags     []string
	keywords []string
	daysBack int
	client   *request.Client
}

// NewFeedFetcher creates a fetcher for an rss source descriptor.
func NewFeedFetcher(src config.Source, keywords []string, daysBack int) *FeedFetcher {
	return &FeedFetcher{
		name:     src.Name,
		url:      src.URL,
		tags:     src.Tags,
		keywords: keywords,
		daysBack: daysBack,
		client:   request.NewClient(src.Throttle()),
	}
}

func (f *FeedFetcher) Name() string { return f.name }

// Crawl fetches and parses the feed, returning the entries that pass the
// timeframe and relevance filters.
func (f *FeedFetcher) Crawl() []article.Article {
	log.Printf("Crawling RSS feed: %s", f.name)

	body, err := f.client.Get(f.url)
	if err != nil {
		log.Printf("Error crawling %s: %v", f.name, err)
		return nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		log.Printf("Feed parsing warning for %s: %v", f.name, err)
		return nil
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -f.daysBack)

	var articles []article.Article
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		link := item.Link
		if title == "" || link == "" {
			continue
		}

		published := item.Published
		if published == "" {
			published = item.Updated
		}
		if !WithinWindow(published, cutoff) {
			continue
		}

		summary := item.Description
		if !Relevant(f.keywords, title, summary, f.tags) {
			continue
		}

		articles = append(articles, article.New(article.Article{
			Title:    title,
			Authors:  itemAuthors(item),
			Date:     published,
			URL:      link,
			Tags:     append([]string(nil), f.tags...),
			Source:   f.name,
			Summary:  summary,
			Priority: PriorityFor(title, summary, published, now),
		}))
	}

	log.Printf("Collected %d articles from %s", len(articles), f.name)
	return articles
}

func itemAuthors(item *gofeed.Item) []string {
	var authors []string
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	return authors
}
