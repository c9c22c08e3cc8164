package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository handles admin dashboard data access.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard.
func (r *StatsRepository) GetSummaryCounts(ctx context.Context) (totalUsers, totalPacks, totalTests, totalAttempts int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM test_packs),
			(SELECT COUNT(*) FROM mock_tests),
			(SELECT COUNT(*) FROM test_results)`,
	).Scan(&totalUsers, &totalPacks, &totalTests, &totalAttempts)
	return
}

// GetRevenuePaise sums paid purchases since the given time.
func (r *StatsRepository) GetRevenuePaise(ctx context.Context, since time.Time) (int64, error) {
	var revenue int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_paise), 0) FROM purchases
		 WHERE status = 'PAID' AND paid_at >= $1`, since,
	).Scan(&revenue)
	return revenue, err
}

// TestAttemptStat aggregates attempts per test for the dashboard table.
type TestAttemptStat struct {
	TestID       int64    `json:"test_id"`
	Title        string   `json:"title"`
	AttemptCount int      `json:"attempt_count"`
	AverageScore *float64 `json:"average_score"`
}

// GetTopTests retrieves the most attempted tests with their average score.
func (r *StatsRepository) GetTopTests(ctx context.Context, limit int) ([]TestAttemptStat, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.title, COUNT(r.id) AS attempts, AVG(r.score) AS avg_score
		 FROM mock_tests t
		 LEFT JOIN test_results r ON r.test_id = t.id
		 GROUP BY t.id, t.title
		 ORDER BY attempts DESC, t.id
		 LIMIT $1`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []TestAttemptStat
	for rows.Next() {
		var s TestAttemptStat
		if err := rows.Scan(&s.TestID, &s.Title, &s.AttemptCount, &s.AverageScore); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if stats == nil {
		stats = []TestAttemptStat{}
	}
	return stats, rows.Err()
}
