package article

import (
	"strings"
	"time"
)

// DigestEntry is one normalized record handed to the summarization step.
type DigestEntry struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Source    string `json:"source"`
	Priority  string `json:"priority"`
	Authors   string `json:"authors"`
	Tags      string `json:"tags"`
}

// Digest is the hand-off payload for the summarization collaborator.
type Digest struct {
	Articles       []DigestEntry `json:"articles"`
	CollectionTime string        `json:"collection_time"`
	TotalSources   int           `json:"total_sources"`
}

// BuildDigest converts up to limit ranked articles into the summarizer
// hand-off format. A limit <= 0 means all articles.
func BuildDigest(articles []Article, limit int) Digest {
	if limit <= 0 || limit > len(articles) {
		limit = len(articles)
	}

	d := Digest{
		CollectionTime: time.Now().UTC().Format(time.RFC3339),
	}

	sources := make(map[string]struct{})
	for _, a := range articles {
		sources[a.Source] = struct{}{}
	}
	d.TotalSources = len(sources)

	for _, a := range articles[:limit] {
		d.Articles = append(d.Articles, DigestEntry{
			Title:     a.Title,
			Summary:   a.Summary,
			Link:      a.URL,
			Published: a.Date,
			Source:    a.Source,
			Priority:  string(a.Priority),
			Authors:   strings.Join(a.Authors, ", "),
			Tags:      strings.Join(a.Tags, ", "),
		})
	}
	return d
}
