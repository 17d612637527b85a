package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
	"github.com/custodia-labs/deskref/internal/logger"
)

// queryLog implements driven.QueryLog.
type queryLog struct {
	store *Store
}

var _ driven.QueryLog = (*queryLog)(nil)

// Record appends an entry. Failures are logged, never returned.
func (q *queryLog) Record(entry domain.QueryLogEntry) {
	_, err := q.store.db.Exec(`
		INSERT INTO query_log (timestamp, query, top_k, threshold, num_results, best_score, index_id, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, formatTime(entry.Timestamp), entry.Query, entry.TopK, entry.Threshold,
		entry.NumResults, entry.BestScore, entry.IndexID, entry.LatencyMs)
	if err != nil {
		logger.Warn("Failed to record query: %v", err)
	}
}

// Recent returns up to n of the latest entries, oldest first.
func (q *queryLog) Recent(ctx context.Context, n int) ([]domain.QueryLogEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := q.store.db.QueryContext(ctx, `
		SELECT timestamp, query, top_k, threshold, num_results, best_score, index_id, latency_ms
		FROM (SELECT * FROM query_log ORDER BY seq DESC LIMIT ?)
		ORDER BY seq ASC
	`, n)
	if err != nil {
		return nil, fmt.Errorf("querying query log: %w", err)
	}
	defer rows.Close()

	var entries []domain.QueryLogEntry
	for rows.Next() {
		var e domain.QueryLogEntry
		var ts string
		if err := rows.Scan(&ts, &e.Query, &e.TopK, &e.Threshold, &e.NumResults,
			&e.BestScore, &e.IndexID, &e.LatencyMs); err != nil {
			return nil, fmt.Errorf("scanning query log: %w", err)
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		e.Duration = time.Duration(e.LatencyMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
