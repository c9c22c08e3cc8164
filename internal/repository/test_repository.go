package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// TestRepository handles mock test data access.
type TestRepository struct {
	pool *pgxpool.Pool
}

// NewTestRepository creates a new TestRepository.
func NewTestRepository(pool *pgxpool.Pool) *TestRepository {
	return &TestRepository{pool: pool}
}

const testColumns = `t.id, t.pack_id, t.title, t.exam_type, t.duration_seconds,
	(SELECT COUNT(*) FROM questions q WHERE q.test_id = t.id) AS question_count,
	t.status, t.created_at, t.updated_at`

// GetByID retrieves a test by ID.
func (r *TestRepository) GetByID(ctx context.Context, id int64) (*model.MockTest, error) {
	t := &model.MockTest{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+testColumns+` FROM mock_tests t WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.PackID, &t.Title, &t.ExamType, &t.DurationSeconds, &t.QuestionCount, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListByPack retrieves a pack's tests ordered by creation time. When
// publishedOnly is set, drafts and archived tests are hidden; candidate
// surfaces always pass true.
func (r *TestRepository) ListByPack(ctx context.Context, packID int64, publishedOnly bool) ([]model.MockTest, error) {
	query := `SELECT ` + testColumns + ` FROM mock_tests t WHERE t.pack_id = $1`
	if publishedOnly {
		query += ` AND t.status = 'PUBLISHED'`
	}
	query += ` ORDER BY t.created_at ASC`

	rows, err := r.pool.Query(ctx, query, packID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tests []model.MockTest
	for rows.Next() {
		var t model.MockTest
		if err := rows.Scan(&t.ID, &t.PackID, &t.Title, &t.ExamType, &t.DurationSeconds, &t.QuestionCount, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tests = append(tests, t)
	}
	if tests == nil {
		tests = []model.MockTest{}
	}
	return tests, rows.Err()
}

// Create inserts a new test in DRAFT status.
func (r *TestRepository) Create(ctx context.Context, t *model.MockTest) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO mock_tests (pack_id, title, exam_type, duration_seconds, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		t.PackID, t.Title, t.ExamType, t.DurationSeconds, model.TestStatusDraft,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update modifies a test's title and duration.
func (r *TestRepository) Update(ctx context.Context, t *model.MockTest) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE mock_tests SET title = $1, duration_seconds = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3`,
		t.Title, t.DurationSeconds, t.ID,
	)
	return err
}

// UpdateStatus transitions a test between lifecycle states.
func (r *TestRepository) UpdateStatus(ctx context.Context, id int64, status model.TestStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE mock_tests SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		status, id,
	)
	return err
}

// Delete removes a test by ID.
func (r *TestRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM mock_tests WHERE id = $1`, id)
	return err
}
