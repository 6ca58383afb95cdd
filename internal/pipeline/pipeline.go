// Package pipeline wires one full run: crawl, summary enrichment, archive,
// brief generation, Notion publish.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/collect"
	"github.com/ai-knowledge-crawler/aikc/internal/config"
	"github.com/ai-knowledge-crawler/aikc/internal/database"
	"github.com/ai-knowledge-crawler/aikc/internal/fetch"
	"github.com/ai-knowledge-crawler/aikc/internal/llm"
	"github.com/ai-knowledge-crawler/aikc/internal/notion"
	"github.com/ai-knowledge-crawler/aikc/internal/summarize"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Articles []article.Article
	Brief    string
	RunID    int64
	Steps    []StepResult
}

// Options control optional pipeline behavior.
type Options struct {
	SkipPublish bool
}

// publisher is what the publish step needs from a Notion client.
type publisher interface {
	TestConnection() error
	UpdatePage(markdown string) error
}

// Pipeline orchestrates the 5-step crawl-to-publish run.
type Pipeline struct {
	cfg      *config.Config
	db       *database.DB
	provider llm.Provider

	newPublisher func(token, pageID string) publisher
	now          func() time.Time
}

// New creates a pipeline. db may be nil, which skips the archive step. A
// missing LLM configuration is tolerated: the brief falls back to the
// deterministic rendering.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	provider, err := llm.NewProvider(cfg.Summarization.Provider)
	if err != nil {
		log.Printf("%v; the fallback brief will be used", err)
	}
	return &Pipeline{
		cfg:      cfg,
		db:       db,
		provider: provider,
		newPublisher: func(token, pageID string) publisher {
			return notion.NewClient(token, pageID)
		},
		now: time.Now,
	}
}

// Run executes the full pipeline.
func (p *Pipeline) Run(ctx context.Context, opts Options) *Result {
	r := &Result{}
	started := p.now().UTC()

	// Step 1: Crawl
	step := p.runCrawl(r)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 2: Enrich
	r.Steps = append(r.Steps, p.runEnrich(r))

	// Step 3: Archive
	r.Steps = append(r.Steps, p.runArchive(r, started))

	// Step 4: Summarize
	r.Steps = append(r.Steps, p.runSummarize(ctx, r))

	// Step 5: Publish
	if opts.SkipPublish {
		r.Steps = append(r.Steps, StepResult{Name: "Publish", Summary: "Skipped"})
	} else {
		r.Steps = append(r.Steps, p.runPublish(r))
	}

	return r
}

func (p *Pipeline) runCrawl(r *Result) StepResult {
	log.Println("Step 1/5: Crawling sources...")
	collector, err := collect.New(p.cfg)
	if err != nil {
		return StepResult{Name: "Crawl", Err: err}
	}
	r.Articles = collector.CrawlAll()
	stats := collect.ComputeStats(r.Articles)
	return StepResult{
		Name: "Crawl",
		Summary: fmt.Sprintf("Collected %d articles from %d sources (%d high, %d medium, %d low)",
			stats.Total, len(stats.BySource),
			stats.ByPriority.High, stats.ByPriority.Medium, stats.ByPriority.Low),
	}
}

func (p *Pipeline) runEnrich(r *Result) StepResult {
	log.Println("Step 2/5: Enriching missing summaries...")
	enricher := fetch.NewSummaryFetcher(15*time.Second, p.cfg.Summarization.DigestLimit)
	result := enricher.Enrich(r.Articles)
	return StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("Enriched %d articles, %d failed", result.Enriched, result.Failed),
	}
}

func (p *Pipeline) runArchive(r *Result, started time.Time) StepResult {
	log.Println("Step 3/5: Archiving run...")

	stamp := started.Format("20060102_150405")
	dataDir := p.cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return StepResult{Name: "Archive", Err: fmt.Errorf("creating data dir: %w", err)}
	}

	jsonlPath := filepath.Join(dataDir, fmt.Sprintf("ai_knowledge_%s.jsonl", stamp))
	if err := writeJSONL(jsonlPath, r.Articles); err != nil {
		return StepResult{Name: "Archive", Err: err}
	}
	jsonPath := filepath.Join(dataDir, fmt.Sprintf("ai_knowledge_%s.json", stamp))
	if err := writeCollection(jsonPath, r.Articles); err != nil {
		return StepResult{Name: "Archive", Err: err}
	}

	summary := fmt.Sprintf("Wrote %s and %s", filepath.Base(jsonlPath), filepath.Base(jsonPath))
	if p.db != nil {
		runID, err := p.db.CreateRun(
			started.Format(time.RFC3339),
			p.now().UTC().Format(time.RFC3339),
			r.Articles)
		if err != nil {
			return StepResult{Name: "Archive", Err: err}
		}
		r.RunID = runID
		summary += fmt.Sprintf(", archived as run %d", runID)
	}

	return StepResult{Name: "Archive", Summary: summary}
}

func (p *Pipeline) runSummarize(ctx context.Context, r *Result) StepResult {
	log.Println("Step 4/5: Generating daily brief...")

	digest := article.BuildDigest(r.Articles, p.cfg.Summarization.DigestLimit)
	if p.provider != nil {
		s := summarize.New(p.provider, p.cfg.Summarization.MaxTokens)
		r.Brief = s.Brief(ctx, digest)
	} else {
		r.Brief = summarize.FallbackBrief(digest, p.now()) + summarize.MetadataFooter(digest, "fallback")
	}

	if p.db != nil && r.RunID != 0 {
		if _, err := p.db.SaveBrief(r.RunID, r.Brief); err != nil {
			return StepResult{Name: "Summarize", Err: err}
		}
	}

	return StepResult{
		Name:    "Summarize",
		Summary: fmt.Sprintf("Brief generated from %d articles", len(digest.Articles)),
	}
}

func (p *Pipeline) runPublish(r *Result) StepResult {
	log.Println("Step 5/5: Publishing to Notion...")

	token := os.Getenv(p.cfg.Notion.TokenEnv)
	pageID := os.Getenv(p.cfg.Notion.PageIDEnv)
	if token == "" || pageID == "" {
		return StepResult{
			Name: "Publish",
			Summary: fmt.Sprintf("Skipped: %s or %s not set",
				p.cfg.Notion.TokenEnv, p.cfg.Notion.PageIDEnv),
		}
	}

	client := p.newPublisher(token, pageID)
	if err := client.TestConnection(); err != nil {
		return StepResult{Name: "Publish", Err: err}
	}
	if err := client.UpdatePage(r.Brief); err != nil {
		return StepResult{Name: "Publish", Err: err}
	}
	return StepResult{Name: "Publish", Summary: "Notion page updated"}
}

func writeJSONL(path string, articles []article.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := article.WriteJSONL(f, articles); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func writeCollection(path string, articles []article.Article) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := article.WriteCollection(f, articles); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
