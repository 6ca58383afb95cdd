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

const defaultPapersWithCodeURL = "https://paperswithcode.com"

// PapersWithCodeFetcher scrapes the Papers with Code latest-papers listing
// for papers within the crawl window.
type PapersWithCodeFetcher struct {
	name     string
	baseURL  string
	tags     []string
	daysBack int
	client   *request.Client
}

// NewPapersWithCodeFetcher creates a trending-papers fetcher.
func NewPapersWithCodeFetcher(src config.Source, daysBack int) *PapersWithCodeFetcher {
	return &PapersWithCodeFetcher{
		name:     src.Name,
		baseURL:  defaultPapersWithCodeURL,
		tags:     src.Tags,
		daysBack: daysBack,
		client:   request.NewClient(src.Throttle()),
	}
}

func (f *PapersWithCodeFetcher) Name() string { return f.name }

// Crawl fetches the latest-papers listing.
func (f *PapersWithCodeFetcher) Crawl() []article.Article {
	log.Printf("Crawling Papers with Code")

	body, err := f.client.Get(f.baseURL + "/latest")
	if err != nil {
		log.Printf("Error crawling Papers with Code: %v", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		log.Printf("Error parsing Papers with Code: %v", err)
		return nil
	}

	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -f.daysBack)

	var articles []article.Article
	doc.Find(".infinite-item").Each(func(_ int, sel *goquery.Selection) {
		titleSel := sel.Find(".paper-title a").First()
		title := strings.TrimSpace(titleSel.Text())
		href, ok := titleSel.Attr("href")
		if title == "" || !ok {
			return
		}

		dateText := strings.TrimSpace(sel.Find(".item-date").First().Text())
		if !WithinWindow(dateText, cutoff) {
			return
		}

		articles = append(articles, article.New(article.Article{
			Title:    title,
			Authors:  paperAuthors(sel.Find(".authors").First().Text()),
			Date:     dateText,
			URL:      resolveLink(f.baseURL, strings.TrimSpace(href)),
			Tags:     append([]string(nil), f.tags...),
			Source:   f.name,
			Priority: PriorityFor(title, "", dateText, now),
		}))
	})

	log.Printf("Collected %d papers from Papers with Code", len(articles))
	return articles
}

// paperAuthors splits the rendered author line, keeping at most three names.
func paperAuthors(text string) []string {
	var authors []string
	for _, part := range strings.Split(text, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		authors = append(authors, name)
		if len(authors) == 3 {
			break
		}
	}
	return authors
}
