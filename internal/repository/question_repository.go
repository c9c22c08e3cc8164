package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// QuestionRepository handles question data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// ListByTest retrieves all questions for a test, ordered by order_num.
func (r *QuestionRepository) ListByTest(ctx context.Context, testID int64) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, test_id, subject, prompt, options, answer_type, correct_answer, image, order_num
		 FROM questions WHERE test_id = $1
		 ORDER BY order_num`, testID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.TestID, &q.Subject, &q.Prompt, &q.Options, &q.AnswerType, &q.CorrectAnswer, &q.Image, &q.OrderNum); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// CountByTest returns the number of questions on a test.
func (r *QuestionRepository) CountByTest(ctx context.Context, testID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM questions WHERE test_id = $1`, testID).Scan(&n)
	return n, err
}

// Create inserts a single question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (test_id, subject, prompt, options, answer_type, correct_answer, image, order_num)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		q.TestID, q.Subject, q.Prompt, q.Options, q.AnswerType, q.CorrectAnswer, q.Image, q.OrderNum,
	).Scan(&q.ID)
}

// ReplaceAll atomically swaps a test's full question set. The delete and the
// bulk insert run in one transaction so a concurrent paper load never sees a
// half-replaced test.
func (r *QuestionRepository) ReplaceAll(ctx context.Context, testID int64, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE test_id = $1`, testID); err != nil {
		return err
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"questions"},
		[]string{"test_id", "subject", "prompt", "options", "answer_type", "correct_answer", "image", "order_num"},
		pgx.CopyFromSlice(len(questions), func(i int) ([]any, error) {
			q := questions[i]
			return []any{testID, q.Subject, q.Prompt, q.Options, q.AnswerType, q.CorrectAnswer, q.Image, q.OrderNum}, nil
		}),
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteByTest removes all questions for a test.
func (r *QuestionRepository) DeleteByTest(ctx context.Context, testID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE test_id = $1`, testID)
	return err
}
