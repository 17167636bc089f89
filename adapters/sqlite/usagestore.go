package sqlite

import (
	"context"

	"github.com/robinsondorm/robinai/domain/budget"
	"github.com/robinsondorm/robinai/ports"
)

// UsageStore implements ports.UsageStore using SQLite.
type UsageStore struct {
	db *DB
}

// NewUsageStore creates a new SQLite usage store.
func NewUsageStore(db *DB) *UsageStore {
	return &UsageStore{db: db}
}

// Record stores a reply event. Timestamps are stored in UTC and the day
// key is derived from the event timestamp for consistent aggregation.
func (s *UsageStore) Record(ctx context.Context, ev ports.ReplyEvent) error {
	delivered := 0
	if ev.Delivered {
		delivered = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reply_events (
			id, group_id, sender_id, prompt_tokens, completion_tokens,
			total_tokens, latency_ms, delivered, day, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		ev.ID, ev.GroupID, ev.SenderID, ev.PromptTokens, ev.CompletionTokens,
		ev.TotalTokens, ev.LatencyMs, delivered, budget.Day(ev.Timestamp),
		ev.Timestamp.UTC(),
	)
	return err
}

// DailySummaries returns per-day aggregates for the most recent days,
// newest first.
func (s *UsageStore) DailySummaries(ctx context.Context, days int) ([]ports.DailySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			day,
			COUNT(*) as reply_count,
			COALESCE(SUM(total_tokens), 0) as tokens
		FROM reply_events
		GROUP BY day
		ORDER BY day DESC
		LIMIT ?
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ports.DailySummary
	for rows.Next() {
		var summary ports.DailySummary
		if err := rows.Scan(&summary.Day, &summary.ReplyCount, &summary.Tokens); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// TokensOnDay returns the total tokens recorded for a day key.
func (s *UsageStore) TokensOnDay(ctx context.Context, day string) (int64, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_tokens), 0) FROM reply_events WHERE day = ?
	`, day)

	var tokens int64
	if err := row.Scan(&tokens); err != nil {
		return 0, err
	}
	return tokens, nil
}

// Ensure interface compliance.
var _ ports.UsageStore = (*UsageStore)(nil)
