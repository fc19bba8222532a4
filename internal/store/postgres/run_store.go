package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/wantlistbot/internal/domain"
)

// RunStore implements domain.RunStore using PostgreSQL. Each pass is stored
// as a summary row plus the full report as JSONB.
type RunStore struct {
	pool *pgxpool.Pool
}

// NewRunStore creates a new RunStore backed by the given connection pool.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Insert stores a finished run. Re-inserting the same run id overwrites it.
func (s *RunStore) Insert(ctx context.Context, report domain.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("postgres: marshal run %s: %w", report.ID, err)
	}
	sum := report.Summary()

	const query = `
		INSERT INTO runs (id, started_at, finished_at, items, offers, missing, failures, dropped, incomparable, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			items = EXCLUDED.items,
			offers = EXCLUDED.offers,
			missing = EXCLUDED.missing,
			failures = EXCLUDED.failures,
			dropped = EXCLUDED.dropped,
			incomparable = EXCLUDED.incomparable,
			report = EXCLUDED.report`

	_, err = s.pool.Exec(ctx, query,
		sum.ID, sum.StartedAt, sum.FinishedAt,
		sum.Items, sum.Offers, sum.Missing, sum.Failures, sum.Dropped, sum.Incomparable,
		data,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert run %s: %w", report.ID, err)
	}
	return nil
}

// ListRecent returns the newest run summaries first.
func (s *RunStore) ListRecent(ctx context.Context, limit int) ([]domain.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	const query = `
		SELECT id, started_at, finished_at, items, offers, missing, failures, dropped, incomparable
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list runs: %w", err)
	}
	defer rows.Close()

	var out []domain.RunSummary
	for rows.Next() {
		var r domain.RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt,
			&r.Items, &r.Offers, &r.Missing, &r.Failures, &r.Dropped, &r.Incomparable); err != nil {
			return nil, fmt.Errorf("postgres: scan run: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list runs rows: %w", err)
	}
	return out, nil
}

var _ domain.RunStore = (*RunStore)(nil)
