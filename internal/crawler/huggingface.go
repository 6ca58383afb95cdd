package crawler

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/config"
	"github.com/ai-knowledge-crawler/aikc/internal/request"
)

const defaultHuggingFaceAPIURL = "https://huggingface.co/api/models"

// minimum traction before a new model is worth surfacing.
const (
	hfMinDownloads = 100
	hfMinLikes     = 10
)

type huggingFaceModel struct {
	ModelID   string `json:"modelId"`
	Author    string `json:"author"`
	CreatedAt string `json:"createdAt"`
	Downloads int    `json:"downloads"`
	Likes     int    `json:"likes"`
}

// HuggingFaceFetcher lists recently created text-generation models from the
// Hugging Face hub API, keeping only models with some traction.
type HuggingFaceFetcher struct {
	name     string
	apiURL   string
	daysBack int
	client   *request.Client
}

// NewHuggingFaceFetcher creates a hub model-release fetcher.
func NewHuggingFaceFetcher(src config.Source, daysBack int) *HuggingFaceFetcher {
	return &HuggingFaceFetcher{
		name:     src.Name,
		apiURL:   defaultHuggingFaceAPIURL,
		daysBack: daysBack,
		client:   request.NewClient(src.Throttle()),
	}
}

func (f *HuggingFaceFetcher) Name() string { return f.name }

// Crawl fetches the newest text-generation models within the crawl window.
func (f *HuggingFaceFetcher) Crawl() []article.Article {
	log.Printf("Crawling Hugging Face model releases")

	params := url.Values{}
	params.Set("sort", "createdAt")
	params.Set("direction", "-1")
	params.Set("limit", "100")
	params.Set("filter", "text-generation")

	var models []huggingFaceModel
	if err := f.client.GetJSON(f.apiURL, params, &models); err != nil {
		log.Printf("Error crawling Hugging Face: %v", err)
		return nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -f.daysBack)

	var articles []article.Article
	for _, m := range models {
		if m.ModelID == "" {
			continue
		}
		if !WithinWindow(m.CreatedAt, cutoff) {
			continue
		}
		if m.Downloads < hfMinDownloads && m.Likes < hfMinLikes {
			continue
		}

		priority := article.PriorityMedium
		if m.Likes > 100 || m.Downloads > 10000 {
			priority = article.PriorityHigh
		}

		var authors []string
		if m.Author != "" {
			authors = []string{m.Author}
		}

		articles = append(articles, article.New(article.Article{
			Title:    "New Model: " + m.ModelID,
			Authors:  authors,
			Date:     m.CreatedAt,
			URL:      "https://huggingface.co/" + m.ModelID,
			Tags:     []string{"huggingface", "model", "release", "ml", "nlp"},
			Source:   f.name,
			Summary:  fmt.Sprintf("Downloads: %d, Likes: %d", m.Downloads, m.Likes),
			Priority: priority,
		}))
	}

	log.Printf("Collected %d model releases from Hugging Face", len(articles))
	return articles
}
