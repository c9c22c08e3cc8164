package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
)

// ResultService serves post-test review screens: result listings, per-test
// review with the full answer key, and the cross-test wrong-question
// notebook.
type ResultService struct {
	results   *repository.ResultRepository
	questions *repository.QuestionRepository
	tests     *repository.TestRepository
}

// NewResultService creates a new ResultService.
func NewResultService(results *repository.ResultRepository, questions *repository.QuestionRepository, tests *repository.TestRepository) *ResultService {
	return &ResultService{results: results, questions: questions, tests: tests}
}

// ListMyResults returns the user's result summaries, newest first.
func (s *ResultService) ListMyResults(ctx context.Context, userID int) ([]model.ResultSummary, error) {
	return s.results.ListByUser(ctx, userID)
}

// GetResult returns one graded result, scoped to its owner.
func (s *ResultService) GetResult(ctx context.Context, id uuid.UUID, userID int) (*model.GradedResult, error) {
	return s.results.GetByID(ctx, id, userID)
}

// Review is a graded result joined with the full question set including
// correct answers, rendered after submission only.
type Review struct {
	Result    *model.GradedResult `json:"result"`
	Test      *model.MockTest     `json:"test"`
	Questions []model.Question    `json:"questions"`
}

// GetReview assembles the post-test review for a result. Correct answers
// are exposed here because the attempt is already graded.
func (s *ResultService) GetReview(ctx context.Context, id uuid.UUID, userID int) (*Review, error) {
	result, err := s.results.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	test, err := s.tests.GetByID(ctx, result.TestID)
	if err != nil {
		return nil, err
	}

	questions, err := s.questions.ListByTest(ctx, result.TestID)
	if err != nil {
		return nil, err
	}

	return &Review{Result: result, Test: test, Questions: questions}, nil
}

// GetLatestForTest returns the user's most recent result for a test. Covers
// clients that reload after the attempt already finalized and the live
// session is gone.
func (s *ResultService) GetLatestForTest(ctx context.Context, userID int, testID int64) (*model.GradedResult, error) {
	return s.results.GetLatestByUserAndTest(ctx, userID, testID)
}

// ListTestResults returns one page of candidate outcomes for a test plus
// the total count, for the admin side.
func (s *ResultService) ListTestResults(ctx context.Context, testID int64, limit, offset int) ([]model.TestResultEntry, int, error) {
	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		return nil, 0, err
	}
	return s.results.ListByTest(ctx, testID, limit, offset)
}

// GetNotebook returns every wrong question across the user's attempts.
func (s *ResultService) GetNotebook(ctx context.Context, userID int) ([]repository.NotebookEntry, error) {
	return s.results.ListWrongByUser(ctx, userID)
}
