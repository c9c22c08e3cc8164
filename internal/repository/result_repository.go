package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// ResultRepository handles graded result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Insert stores a graded result. The conflict clause makes requeued queue
// items safe: a result id is written at most once.
func (r *ResultRepository) Insert(ctx context.Context, res *model.GradedResult) error {
	wrong, err := json.Marshal(res.WrongQuestions)
	if err != nil {
		return err
	}
	statuses, err := json.Marshal(res.QuestionStatuses)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO test_results
		   (id, user_id, test_id, marks_obtained, total_marks, score, scoring_policy,
		    wrong_questions, question_statuses, duration_used, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO NOTHING`,
		res.ID, res.UserID, res.TestID, res.MarksObtained, res.TotalMarks, res.Score,
		res.ScoringPolicy, wrong, statuses, res.DurationUsed, res.SubmittedAt,
	)
	return err
}

// BulkInsert stores a batch of graded results in one round trip using
// UNNEST. Callers fall back to Insert per row when the batch fails.
func (r *ResultRepository) BulkInsert(ctx context.Context, batch []*model.GradedResult) error {
	n := len(batch)
	if n == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, n)
	userIDs := make([]int, 0, n)
	testIDs := make([]int64, 0, n)
	marks := make([]int, 0, n)
	totals := make([]int, 0, n)
	scores := make([]float64, 0, n)
	policies := make([]string, 0, n)
	wrongs := make([]string, 0, n)
	statuses := make([]string, 0, n)
	durations := make([]int, 0, n)
	submittedAts := make([]time.Time, 0, n)

	for _, res := range batch {
		wrong, err := json.Marshal(res.WrongQuestions)
		if err != nil {
			return err
		}
		outcome, err := json.Marshal(res.QuestionStatuses)
		if err != nil {
			return err
		}

		ids = append(ids, res.ID)
		userIDs = append(userIDs, res.UserID)
		testIDs = append(testIDs, res.TestID)
		marks = append(marks, res.MarksObtained)
		totals = append(totals, res.TotalMarks)
		scores = append(scores, res.Score)
		policies = append(policies, res.ScoringPolicy)
		wrongs = append(wrongs, string(wrong))
		statuses = append(statuses, string(outcome))
		durations = append(durations, res.DurationUsed)
		submittedAts = append(submittedAts, res.SubmittedAt)
	}

	query := `
		INSERT INTO test_results
		  (id, user_id, test_id, marks_obtained, total_marks, score, scoring_policy,
		   wrong_questions, question_statuses, duration_used, submitted_at)
		SELECT * FROM UNNEST(
			$1::uuid[],
			$2::int[],
			$3::bigint[],
			$4::int[],
			$5::int[],
			$6::float8[],
			$7::text[],
			$8::jsonb[],
			$9::jsonb[],
			$10::int[],
			$11::timestamptz[]
		)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		ids, userIDs, testIDs, marks, totals, scores, policies, wrongs, statuses, durations, submittedAts)
	return err
}

// GetByID retrieves one result, scoped to its owner.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID, userID int) (*model.GradedResult, error) {
	res := &model.GradedResult{}
	var wrong, statuses []byte

	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, test_id, marks_obtained, total_marks, score, scoring_policy,
		        wrong_questions, question_statuses, duration_used, submitted_at
		 FROM test_results WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&res.ID, &res.UserID, &res.TestID, &res.MarksObtained, &res.TotalMarks, &res.Score,
		&res.ScoringPolicy, &wrong, &statuses, &res.DurationUsed, &res.SubmittedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(wrong, &res.WrongQuestions); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(statuses, &res.QuestionStatuses); err != nil {
		return nil, err
	}
	return res, nil
}

// GetLatestByUserAndTest retrieves the user's most recent result for a test.
func (r *ResultRepository) GetLatestByUserAndTest(ctx context.Context, userID int, testID int64) (*model.GradedResult, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM test_results
		 WHERE user_id = $1 AND test_id = $2
		 ORDER BY submitted_at DESC LIMIT 1`, userID, testID,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, userID)
}

// ListByUser retrieves result summaries for a user, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID int) ([]model.ResultSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.test_id, t.title, r.marks_obtained, r.total_marks, r.score, r.duration_used, r.submitted_at
		 FROM test_results r
		 JOIN mock_tests t ON t.id = r.test_id
		 WHERE r.user_id = $1
		 ORDER BY r.submitted_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []model.ResultSummary
	for rows.Next() {
		var s model.ResultSummary
		if err := rows.Scan(&s.ID, &s.TestID, &s.TestTitle, &s.MarksObtained, &s.TotalMarks, &s.Score, &s.DurationUsed, &s.SubmittedAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if summaries == nil {
		summaries = []model.ResultSummary{}
	}
	return summaries, rows.Err()
}

// ListByTest retrieves a page of candidate results for a test, best score
// first, and the total row count for the admin listing.
func (r *ResultRepository) ListByTest(ctx context.Context, testID int64, limit, offset int) ([]model.TestResultEntry, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM test_results WHERE test_id = $1`, testID,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.user_id, u.name, r.marks_obtained, r.total_marks, r.score, r.duration_used, r.submitted_at
		 FROM test_results r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.test_id = $1
		 ORDER BY r.score DESC, r.submitted_at ASC
		 LIMIT $2 OFFSET $3`, testID, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []model.TestResultEntry
	for rows.Next() {
		var e model.TestResultEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.MarksObtained, &e.TotalMarks, &e.Score, &e.DurationUsed, &e.SubmittedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	if entries == nil {
		entries = []model.TestResultEntry{}
	}
	return entries, total, rows.Err()
}

// NotebookEntry is one wrong question with the test it came from, for the
// cross-test revision notebook.
type NotebookEntry struct {
	TestID      int64               `json:"test_id"`
	TestTitle   string              `json:"test_title"`
	SubmittedAt time.Time           `json:"submitted_at"`
	Question    model.WrongQuestion `json:"question"`
}

// ListWrongByUser flattens every wrong question across a user's results,
// newest attempt first.
func (r *ResultRepository) ListWrongByUser(ctx context.Context, userID int) ([]NotebookEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.test_id, t.title, r.submitted_at, r.wrong_questions
		 FROM test_results r
		 JOIN mock_tests t ON t.id = r.test_id
		 WHERE r.user_id = $1 AND jsonb_array_length(r.wrong_questions) > 0
		 ORDER BY r.submitted_at DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []NotebookEntry
	for rows.Next() {
		var testID int64
		var title string
		var submittedAt time.Time
		var raw []byte
		if err := rows.Scan(&testID, &title, &submittedAt, &raw); err != nil {
			return nil, err
		}

		var wrong []model.WrongQuestion
		if err := json.Unmarshal(raw, &wrong); err != nil {
			return nil, err
		}
		for _, q := range wrong {
			entries = append(entries, NotebookEntry{
				TestID:      testID,
				TestTitle:   title,
				SubmittedAt: submittedAt,
				Question:    q,
			})
		}
	}
	if entries == nil {
		entries = []NotebookEntry{}
	}
	return entries, rows.Err()
}
