package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/adlad/internal/ad"
)

// AdRecord is one finished ad display request.
type AdRecord struct {
	ID         string         `json:"id"`
	Plugin     string         `json:"plugin"`
	Kind       ad.Kind        `json:"kind"`
	ClientID   string         `json:"clientId,omitempty"`
	Shown      bool           `json:"shown"`
	Reason     ad.ErrorReason `json:"reason,omitempty"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Duration is the time between the request and its result.
func (r AdRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Stats aggregates ad records.
type Stats struct {
	Total    int            `json:"total"`
	Shown    int            `json:"shown"`
	ByReason map[string]int `json:"byReason"`
	ByKind   map[string]int `json:"byKind"`
}

func newStats() Stats {
	return Stats{ByReason: map[string]int{}, ByKind: map[string]int{}}
}

func (s *Stats) add(r AdRecord) {
	s.Total++
	s.ByKind[string(r.Kind)]++
	if r.Shown {
		s.Shown++
		return
	}
	s.ByReason[string(r.Reason)]++
}

// History records ad requests and answers queries about them.
type History interface {
	RecordAd(ctx context.Context, rec AdRecord) error
	Recent(ctx context.Context, limit int) ([]AdRecord, error)
	Stats(ctx context.Context) (Stats, error)
}

// timeLayout is fixed width so that stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteHistory implements History backed by SQLite.
type SQLiteHistory struct {
	db *DB
}

// NewSQLiteHistory creates a history store using the given database.
func NewSQLiteHistory(db *DB) *SQLiteHistory {
	return &SQLiteHistory{db: db}
}

// RecordAd inserts a record, assigning an ID when missing.
func (h *SQLiteHistory) RecordAd(ctx context.Context, rec AdRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	_, err := h.db.sql.ExecContext(ctx,
		`INSERT INTO ad_requests (id, plugin, kind, client_id, shown, reason, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Plugin, string(rec.Kind), rec.ClientID, rec.Shown, string(rec.Reason),
		rec.StartedAt.UTC().Format(timeLayout), rec.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording ad request %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *SQLiteHistory) Recent(ctx context.Context, limit int) ([]AdRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.sql.QueryContext(ctx,
		`SELECT id, plugin, kind, client_id, shown, reason, started_at, finished_at
		 FROM ad_requests ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying ad requests: %w", err)
	}
	defer rows.Close()

	var out []AdRecord
	for rows.Next() {
		var (
			rec               AdRecord
			kind, reason      string
			started, finished string
		)
		if err := rows.Scan(&rec.ID, &rec.Plugin, &kind, &rec.ClientID, &rec.Shown, &reason, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning ad request: %w", err)
		}
		rec.Kind = ad.Kind(kind)
		rec.Reason = ad.ErrorReason(reason)
		var err error
		if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing started_at of ad request %s: %w", rec.ID, err)
		}
		if rec.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at of ad request %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats aggregates all stored records.
func (h *SQLiteHistory) Stats(ctx context.Context) (Stats, error) {
	stats := newStats()
	rows, err := h.db.sql.QueryContext(ctx,
		`SELECT kind, shown, reason, COUNT(*) FROM ad_requests GROUP BY kind, shown, reason`,
	)
	if err != nil {
		return stats, fmt.Errorf("aggregating ad requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind, reason string
			shown        bool
			count        int
		)
		if err := rows.Scan(&kind, &shown, &reason, &count); err != nil {
			return stats, fmt.Errorf("scanning ad stats: %w", err)
		}
		stats.Total += count
		stats.ByKind[kind] += count
		if shown {
			stats.Shown += count
		} else {
			stats.ByReason[reason] += count
		}
	}
	return stats, rows.Err()
}
