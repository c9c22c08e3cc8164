package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// IssueRepository handles question issue-report data access.
type IssueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository creates a new IssueRepository.
func NewIssueRepository(pool *pgxpool.Pool) *IssueRepository {
	return &IssueRepository{pool: pool}
}

// Create inserts a new report in OPEN status.
func (r *IssueRepository) Create(ctx context.Context, report *model.IssueReport) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO issue_reports (user_id, test_id, question_num, description)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, status, created_at`,
		report.UserID, report.TestID, report.QuestionNum, report.Description,
	).Scan(&report.ID, &report.Status, &report.CreatedAt)
}

// List returns reports newest first, with the reporter's name, plus the
// total row count for pagination. An empty status matches all reports.
func (r *IssueRepository) List(ctx context.Context, status model.IssueStatus, limit, offset int) ([]model.IssueReportEntry, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM issue_reports
		 WHERE ($1 = '' OR status = $1)`,
		string(status),
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT i.id, i.user_id, u.name, i.test_id, i.question_num, i.description, i.status, i.created_at
		 FROM issue_reports i
		 JOIN users u ON u.id = i.user_id
		 WHERE ($1 = '' OR i.status = $1)
		 ORDER BY i.created_at DESC
		 LIMIT $2 OFFSET $3`,
		string(status), limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]model.IssueReportEntry, 0)
	for rows.Next() {
		var e model.IssueReportEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.TestID, &e.QuestionNum, &e.Description, &e.Status, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// UpdateStatus sets a report's status, reporting whether the row exists.
func (r *IssueRepository) UpdateStatus(ctx context.Context, id int64, status model.IssueStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE issue_reports SET status = $1 WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
