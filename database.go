package main

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// timestamps are stored fixed-width so text order matches time order
const sqlTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// modernc sqlite serialises writers; one connection avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS leaderboard (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		score INTEGER NOT NULL,
		wave INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		solo INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		session_id TEXT,
		data TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(score DESC, created_at ASC);
	CREATE INDEX IF NOT EXISTS idx_events_type ON analytics_events(event_type, created_at);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// GetSetting returns a stored setting, or "" if unset
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

// SetSetting stores a setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}

// TopScores returns up to limit entries by score descending (older first on ties)
func (db *DB) TopScores(limit int) ([]LeaderboardEntry, error) {
	rows, err := db.conn.Query(`
		SELECT name, score, wave, kills, solo, created_at FROM leaderboard
		ORDER BY score DESC, created_at ASC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]LeaderboardEntry, 0, limit)
	for rows.Next() {
		var e LeaderboardEntry
		var solo int
		var created string
		if err := rows.Scan(&e.Name, &e.Score, &e.Wave, &e.Kills, &solo, &created); err != nil {
			return nil, err
		}
		e.Solo = solo != 0
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, created)
		e.Rank = len(result) + 1
		result = append(result, e)
	}
	return result, rows.Err()
}

// InsertScore adds an entry, trims the table to capacity and returns the
// entry's 1-based rank, or 0 if it did not make the cut
func (db *DB) InsertScore(e LeaderboardEntry, capacity int) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO leaderboard (name, score, wave, kills, solo, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		e.Name, e.Score, e.Wave, e.Kills, boolInt(e.Solo), e.Timestamp.UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec(`
		DELETE FROM leaderboard WHERE id NOT IN (
			SELECT id FROM leaderboard ORDER BY score DESC, created_at ASC, id ASC LIMIT ?
		)`, capacity); err != nil {
		return 0, err
	}

	var rank int
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM leaderboard l, leaderboard me
		WHERE me.id = ? AND (l.score > me.score
			OR (l.score = me.score AND (l.created_at < me.created_at
				OR (l.created_at = me.created_at AND l.id <= me.id))))`, id).Scan(&rank)
	if errors.Is(err, sql.ErrNoRows) {
		rank = 0
	} else if err != nil {
		return 0, err
	}
	return rank, tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
