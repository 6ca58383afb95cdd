package database

import (
	"database/sql"
	"fmt"
)

// Brief is one archived daily brief.
type Brief struct {
	ID          int64
	RunID       int64
	Content     string
	GeneratedAt string
}

// SaveBrief stores the generated brief for a run.
func (db *DB) SaveBrief(runID int64, content string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO briefs (run_id, content) VALUES (?, ?)", runID, content)
	if err != nil {
		return 0, fmt.Errorf("inserting brief: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("brief id: %w", err)
	}
	return id, nil
}

// GetBrief returns one brief by id, or nil when it does not exist.
func (db *DB) GetBrief(id int64) (*Brief, error) {
	var b Brief
	err := db.conn.QueryRow(
		"SELECT id, run_id, content, generated_at FROM briefs WHERE id = ?", id).
		Scan(&b.ID, &b.RunID, &b.Content, &b.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting brief %d: %w", id, err)
	}
	return &b, nil
}

// LatestBrief returns the newest brief, or nil when none exists.
func (db *DB) LatestBrief() (*Brief, error) {
	var b Brief
	err := db.conn.QueryRow(
		"SELECT id, run_id, content, generated_at FROM briefs ORDER BY id DESC LIMIT 1").
		Scan(&b.ID, &b.RunID, &b.Content, &b.GeneratedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting latest brief: %w", err)
	}
	return &b, nil
}

// ListBriefs returns the most recent briefs, newest first.
func (db *DB) ListBriefs(limit int) ([]Brief, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(
		"SELECT id, run_id, content, generated_at FROM briefs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing briefs: %w", err)
	}
	defer rows.Close()

	var briefs []Brief
	for rows.Next() {
		var b Brief
		if err := rows.Scan(&b.ID, &b.RunID, &b.Content, &b.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scanning brief: %w", err)
		}
		briefs = append(briefs, b)
	}
	return briefs, rows.Err()
}
