package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
)

// Run is one archived crawl run.
type Run struct {
	ID            int64
	StartedAt     string
	FinishedAt    string
	TotalArticles int
	SourceCount   int
	High          int
	Medium        int
	Low           int
}

// CreateRun archives a finished crawl run and its articles, returning the
// new run id.
func (db *DB) CreateRun(startedAt, finishedAt string, articles []article.Article) (int64, error) {
	run := Run{StartedAt: startedAt, FinishedAt: finishedAt, TotalArticles: len(articles)}
	sources := make(map[string]struct{})
	for _, a := range articles {
		sources[a.Source] = struct{}{}
		switch a.Priority {
		case article.PriorityHigh:
			run.High++
		case article.PriorityLow:
			run.Low++
		default:
			run.Medium++
		}
	}
	run.SourceCount = len(sources)

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, finished_at, total_articles, source_count,
			high_count, medium_count, low_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt, run.FinishedAt, run.TotalArticles, run.SourceCount,
		run.High, run.Medium, run.Low)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO articles (run_id, title, authors, published_date, url,
			tags, source, summary, priority, crawled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing article insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range articles {
		_, err := stmt.Exec(runID, a.Title, strings.Join(a.Authors, ", "),
			a.Date, a.URL, strings.Join(a.Tags, ", "), a.Source,
			a.Summary, string(a.Priority), a.CrawledAt)
		if err != nil {
			return 0, fmt.Errorf("inserting article %q: %w", a.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run insert: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, started_at, finished_at, total_articles, source_count,
			high_count, medium_count, low_count
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.TotalArticles,
			&r.SourceCount, &r.High, &r.Medium, &r.Low)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns one run by id, or nil when it does not exist.
func (db *DB) GetRun(id int64) (*Run, error) {
	var r Run
	err := db.conn.QueryRow(`
		SELECT id, started_at, finished_at, total_articles, source_count,
			high_count, medium_count, low_count
		FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.TotalArticles,
			&r.SourceCount, &r.High, &r.Medium, &r.Low)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %d: %w", id, err)
	}
	return &r, nil
}

// RunArticles returns the archived articles of one run in insertion order.
func (db *DB) RunArticles(runID int64) ([]article.Article, error) {
	rows, err := db.conn.Query(`
		SELECT title, authors, published_date, url, tags, source, summary,
			priority, crawled_at
		FROM articles WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing run articles: %w", err)
	}
	defer rows.Close()

	var articles []article.Article
	for rows.Next() {
		var a article.Article
		var authors, tags, priority string
		err := rows.Scan(&a.Title, &authors, &a.Date, &a.URL, &tags,
			&a.Source, &a.Summary, &priority, &a.CrawledAt)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		a.Authors = splitList(authors)
		a.Tags = splitList(tags)
		a.Priority = article.Priority(priority)
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ", ")
}
