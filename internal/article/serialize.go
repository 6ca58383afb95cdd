package article

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"
)

// PriorityBreakdown counts articles per priority level.
type PriorityBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Collection is the aggregate output document: all articles plus summary
// metadata about the run that produced them.
type Collection struct {
	Articles          []Article         `json:"articles"`
	TotalCount        int               `json:"total_count"`
	GeneratedAt       string            `json:"generated_at"`
	Sources           []string          `json:"sources"`
	PriorityBreakdown PriorityBreakdown `json:"priority_breakdown"`
}

// WriteJSONL writes one JSON object per article, one per line.
func WriteJSONL(w io.Writer, articles []Article) error {
	enc := json.NewEncoder(w)
	for i := range articles {
		if err := enc.Encode(&articles[i]); err != nil {
			return fmt.Errorf("encoding article %d: %w", i, err)
		}
	}
	return nil
}

// ReadJSONL reads articles written by WriteJSONL, reproducing every field.
func ReadJSONL(r io.Reader) ([]Article, error) {
	var articles []Article
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var a Article
		if err := json.Unmarshal(scanner.Bytes(), &a); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		articles = append(articles, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}

// NewCollection builds the aggregate document for a set of articles.
func NewCollection(articles []Article) Collection {
	c := Collection{
		Articles:    articles,
		TotalCount:  len(articles),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	seen := make(map[string]struct{})
	for _, a := range articles {
		if _, ok := seen[a.Source]; !ok {
			seen[a.Source] = struct{}{}
			c.Sources = append(c.Sources, a.Source)
		}
		switch a.Priority {
		case PriorityHigh:
			c.PriorityBreakdown.High++
		case PriorityLow:
			c.PriorityBreakdown.Low++
		default:
			c.PriorityBreakdown.Medium++
		}
	}
	sort.Strings(c.Sources)
	return c
}

// WriteCollection writes the aggregate document as indented JSON.
func WriteCollection(w io.Writer, articles []Article) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(NewCollection(articles))
}
