package main

import (
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types for analytics tracking
const (
	EvtMatchStart   = "match_start"
	EvtMatchEnd     = "match_end"
	EvtPlayerKill   = "player_kill"
	EvtPlayerDeath  = "player_death"
	EvtPurchase     = "purchase"
	EvtSessionStart = "session_start"
	EvtSessionEnd   = "session_end"
	EvtScoreSubmit  = "score_submit"
	EvtAchievement  = "achievement"
)

const (
	analyticsQueueSize = 1024
	analyticsBatchSize = 50
	analyticsFlush     = 5 * time.Second
)

// AnalyticsEvent represents a single trackable event
type AnalyticsEvent struct {
	Type      string
	SessionID string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Analytics handles event tracking with batched background writes
type Analytics struct {
	db     *DB
	log    *zap.Logger
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup

	mu      sync.Mutex
	dropped int64
	written int64
}

// NewAnalytics creates and starts the analytics background writer
func NewAnalytics(db *DB, log *zap.Logger) *Analytics {
	a := &Analytics{
		db:     db,
		log:    log,
		events: make(chan AnalyticsEvent, analyticsQueueSize),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event for async persistence. It never blocks the tick.
func (a *Analytics) Track(evtType, sessionID string, data map[string]interface{}) {
	evt := AnalyticsEvent{Type: evtType, SessionID: sessionID, Timestamp: time.Now().UTC()}
	if len(data) > 0 {
		b, err := json.Marshal(data)
		if err != nil {
			a.log.Debug("analytics marshal", zap.String("type", evtType), zap.Error(err))
		} else {
			evt.Data = string(b)
		}
	}
	select {
	case a.events <- evt:
	default:
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
	}
}

// Counters returns how many events were written and dropped so far
func (a *Analytics) Counters() (written, dropped int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.written, a.dropped
}

// Stop flushes queued events and shuts down the writer
func (a *Analytics) Stop() {
	close(a.stop)
	a.wg.Wait()
}

// writer is the background goroutine that batches and writes events to DB
func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, 64)
	ticker := time.NewTicker(analyticsFlush)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= analyticsBatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes a batch of events to the database
func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		a.log.Error("analytics begin", zap.Error(err))
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, session_id, data, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		a.log.Error("analytics prepare", zap.Error(err))
		return
	}
	defer stmt.Close()

	n := 0
	for _, evt := range events {
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, sid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			a.log.Warn("analytics insert", zap.String("type", evt.Type), zap.Error(err))
			continue
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		a.log.Error("analytics commit", zap.Error(err))
		return
	}
	a.mu.Lock()
	a.written += int64(n)
	a.mu.Unlock()
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			continue
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// PopularPurchases returns the most bought shop items
func (a *Analytics) PopularPurchases(limit int) ([]ItemAnalytics, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT COALESCE(json_extract(data, '$.item_id'), 'unknown') as item, COUNT(*) as cnt
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data)
		GROUP BY item ORDER BY cnt DESC LIMIT ?
	`, EvtPurchase, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemAnalytics
	for rows.Next() {
		var ia ItemAnalytics
		if err := rows.Scan(&ia.ItemID, &ia.Count); err != nil {
			continue
		}
		result = append(result, ia)
	}
	return result, rows.Err()
}

// MatchStats returns the number of finished matches and the average wave
// reached over the last N days
func (a *Analytics) MatchStats(days int) (MatchAnalytics, error) {
	var m MatchAnalytics
	if a.db == nil {
		return m, nil
	}
	var avgWave sql.NullFloat64
	err := a.db.conn.QueryRow(`
		SELECT COUNT(*), AVG(CAST(
			CASE WHEN json_valid(data) THEN json_extract(data, '$.wave') ELSE NULL END
		AS REAL))
		FROM analytics_events
		WHERE event_type = ? AND created_at >= date('now', '-' || ? || ' days')
	`, EvtMatchEnd, days).Scan(&m.Count, &avgWave)
	m.AvgWave = avgWave.Float64
	return m, err
}

// MatchAnalytics holds aggregated match statistics
type MatchAnalytics struct {
	Count   int     `json:"count"`
	AvgWave float64 `json:"avg_wave"`
}

// ItemAnalytics holds purchase count per item
type ItemAnalytics struct {
	ItemID string `json:"item_id"`
	Count  int    `json:"count"`
}
