package engine

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// HistoryEntry is a single recorded summary.
type HistoryEntry struct {
	ID        int64  `json:"id"`
	VideoID   string `json:"video_id"`
	Summary   string `json:"summary"`
	Model     string `json:"model"`
	CreatedAt string `json:"created_at"`
}

var (
	historyMu   sync.Mutex
	historyDB   *sql.DB
	historyPath string
)

// openHistoryDB opens (or creates) the SQLite summary history database.
// The handle is reused until the configured path changes.
func openHistoryDB() (*sql.DB, error) {
	historyMu.Lock()
	defer historyMu.Unlock()

	path := cfg.HistoryDBPath
	if path == "" {
		dir := filepath.Join(os.Getenv("HOME"), ".go_tldw")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
		}
		path = filepath.Join(dir, "history.db")
	}
	if historyDB != nil && path == historyPath {
		return historyDB, nil
	}
	if historyDB != nil {
		historyDB.Close()
		historyDB = nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initHistorySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: init schema: %w", err)
	}
	historyDB = db
	historyPath = path
	return historyDB, nil
}

// initHistorySchema creates the summaries table if it doesn't exist.
func initHistorySchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS summaries (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id   TEXT NOT NULL,
		summary    TEXT NOT NULL,
		model      TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`)
	return err
}

// recordSummary persists a finished summary. Failures are logged and
// swallowed: history is best-effort and never fails the request.
func recordSummary(videoID, summary, model string) {
	db, err := openHistoryDB()
	if err != nil {
		slog.Warn("history unavailable", slog.Any("error", err))
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.Exec(
		`INSERT INTO summaries (video_id, summary, model, created_at) VALUES (?, ?, ?, ?)`,
		videoID, summary, model, now,
	); err != nil {
		slog.Warn("history insert failed", slog.String("video_id", videoID), slog.Any("error", err))
		return
	}
	IncrHistoryWrites()
}

// ListHistory returns the most recent summaries, newest first.
func ListHistory(limit int) ([]HistoryEntry, error) {
	db, err := openHistoryDB()
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := db.Query(
		`SELECT id, video_id, summary, model, created_at
		 FROM summaries ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.ID, &e.VideoID, &e.Summary, &e.Model, &e.CreatedAt); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
