package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/exam"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
)

// Catalog errors.
var (
	ErrTestNotPublished = errors.New("test is not published")
	ErrNoQuestions      = errors.New("test has no questions")
	ErrExamTypeMismatch = errors.New("test exam type does not match its pack")
)

// CatalogService manages packs, tests, and questions, plus the Redis-cached
// candidate paper for each published test.
type CatalogService struct {
	packs     *repository.PackRepository
	tests     *repository.TestRepository
	questions *repository.QuestionRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	packs *repository.PackRepository,
	tests *repository.TestRepository,
	questions *repository.QuestionRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		packs:     packs,
		tests:     tests,
		questions: questions,
		rdb:       rdb,
		log:       log.With().Str("component", "catalog_service").Logger(),
	}
}

// ─── Packs ──────────────────────────────────────────────────────────

// ListPacks returns packs; candidate surfaces pass activeOnly.
func (s *CatalogService) ListPacks(ctx context.Context, activeOnly bool) ([]model.TestPack, error) {
	return s.packs.List(ctx, activeOnly)
}

// GetPack retrieves one pack.
func (s *CatalogService) GetPack(ctx context.Context, id int64) (*model.TestPack, error) {
	return s.packs.GetByID(ctx, id)
}

// CreatePack creates a pack.
func (s *CatalogService) CreatePack(ctx context.Context, req *model.CreatePackRequest) (*model.TestPack, error) {
	if _, err := exam.ProfileFor(req.ExamType); err != nil {
		return nil, err
	}

	pack := &model.TestPack{
		Title:       req.Title,
		Description: req.Description,
		ExamType:    req.ExamType,
		PricePaise:  req.PricePaise,
		Active:      true,
	}
	if err := s.packs.Create(ctx, pack); err != nil {
		return nil, err
	}
	return pack, nil
}

// UpdatePack applies a partial update to a pack.
func (s *CatalogService) UpdatePack(ctx context.Context, id int64, req *model.UpdatePackRequest) (*model.TestPack, error) {
	pack, err := s.packs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		pack.Title = req.Title
	}
	if req.Description != "" {
		pack.Description = req.Description
	}
	if req.PricePaise != nil {
		pack.PricePaise = *req.PricePaise
	}
	if req.Active != nil {
		pack.Active = *req.Active
	}

	if err := s.packs.Update(ctx, pack); err != nil {
		return nil, err
	}
	return pack, nil
}

// DeletePack removes a pack.
func (s *CatalogService) DeletePack(ctx context.Context, id int64) error {
	return s.packs.Delete(ctx, id)
}

// ─── Tests ──────────────────────────────────────────────────────────

// ListTests returns a pack's tests; candidate surfaces pass publishedOnly.
func (s *CatalogService) ListTests(ctx context.Context, packID int64, publishedOnly bool) ([]model.MockTest, error) {
	return s.tests.ListByPack(ctx, packID, publishedOnly)
}

// GetTest retrieves one test.
func (s *CatalogService) GetTest(ctx context.Context, id int64) (*model.MockTest, error) {
	return s.tests.GetByID(ctx, id)
}

// CreateTest creates a draft test. Duration defaults to the exam profile's
// published duration when the request leaves it unset.
func (s *CatalogService) CreateTest(ctx context.Context, req *model.CreateTestRequest) (*model.MockTest, error) {
	profile, err := exam.ProfileFor(req.ExamType)
	if err != nil {
		return nil, err
	}

	pack, err := s.packs.GetByID(ctx, req.PackID)
	if err != nil {
		return nil, err
	}
	if pack.ExamType != req.ExamType {
		return nil, ErrExamTypeMismatch
	}

	duration := req.DurationSeconds
	if duration == 0 {
		duration = profile.DurationSeconds
	}

	test := &model.MockTest{
		PackID:          req.PackID,
		Title:           req.Title,
		ExamType:        req.ExamType,
		DurationSeconds: duration,
		Status:          model.TestStatusDraft,
	}
	if err := s.tests.Create(ctx, test); err != nil {
		return nil, err
	}
	return test, nil
}

// UpdateTest modifies a test's title and duration and drops its cached paper.
func (s *CatalogService) UpdateTest(ctx context.Context, id int64, req *model.UpdateTestRequest) (*model.MockTest, error) {
	test, err := s.tests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		test.Title = req.Title
	}
	if req.DurationSeconds != 0 {
		test.DurationSeconds = req.DurationSeconds
	}

	if err := s.tests.Update(ctx, test); err != nil {
		return nil, err
	}
	s.invalidatePaper(ctx, id)
	return test, nil
}

// PublishTest makes a test visible to candidates and warms its paper cache.
// A test with no questions cannot be published.
func (s *CatalogService) PublishTest(ctx context.Context, id int64) error {
	count, err := s.questions.CountByTest(ctx, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNoQuestions
	}

	if err := s.tests.UpdateStatus(ctx, id, model.TestStatusPublished); err != nil {
		return err
	}

	if _, err := s.GetPaper(ctx, id); err != nil {
		s.log.Warn().Err(err).Int64("test_id", id).Msg("Paper cache warm failed")
	}
	return nil
}

// ArchiveTest hides a test from candidates and drops its cached paper.
func (s *CatalogService) ArchiveTest(ctx context.Context, id int64) error {
	if err := s.tests.UpdateStatus(ctx, id, model.TestStatusArchived); err != nil {
		return err
	}
	s.invalidatePaper(ctx, id)
	return nil
}

// DeleteTest removes a test, its questions, and its cached paper.
func (s *CatalogService) DeleteTest(ctx context.Context, id int64) error {
	if err := s.questions.DeleteByTest(ctx, id); err != nil {
		return err
	}
	if err := s.tests.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidatePaper(ctx, id)
	return nil
}

// ─── Questions ──────────────────────────────────────────────────────

// GetQuestions returns a test's full questions including answers. Admin only.
func (s *CatalogService) GetQuestions(ctx context.Context, testID int64) ([]model.Question, error) {
	return s.questions.ListByTest(ctx, testID)
}

// ReplaceQuestions swaps a test's question set and drops the cached paper.
func (s *CatalogService) ReplaceQuestions(ctx context.Context, testID int64, reqs []model.AddQuestionRequest) error {
	if _, err := s.tests.GetByID(ctx, testID); err != nil {
		return err
	}

	questions := make([]model.Question, 0, len(reqs))
	for i, req := range reqs {
		orderNum := req.OrderNum
		if orderNum == 0 {
			orderNum = i + 1
		}
		questions = append(questions, model.Question{
			TestID:        testID,
			Subject:       req.Subject,
			Prompt:        req.Prompt,
			Options:       req.Options,
			AnswerType:    model.AnswerType(req.AnswerType),
			CorrectAnswer: req.CorrectAnswer,
			Image:         req.Image,
			OrderNum:      orderNum,
		})
	}

	if err := s.questions.ReplaceAll(ctx, testID, questions); err != nil {
		return err
	}
	s.invalidatePaper(ctx, testID)
	return nil
}

// ─── Candidate paper cache ──────────────────────────────────────────

// GetPaper returns the answer-stripped paper for a published test. Redis is
// read first; a miss falls through to PostgreSQL and self-heals the cache.
func (s *CatalogService) GetPaper(ctx context.Context, testID int64) (*model.TestPaper, error) {
	key := config.CacheKey.TestPaperKey(testID)

	val, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		paper := &model.TestPaper{}
		if jsonErr := json.Unmarshal([]byte(val), paper); jsonErr == nil {
			return paper, nil
		}
		// Corrupt cache entry: rebuild below.
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Paper cache read failed, using database")
	}

	paper, err := s.buildPaper(ctx, testID)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(paper); jsonErr == nil {
		if setErr := s.rdb.Set(ctx, key, data, 0).Err(); setErr != nil {
			s.log.Warn().Err(setErr).Msg("Paper cache write failed")
		}
	}
	return paper, nil
}

func (s *CatalogService) buildPaper(ctx context.Context, testID int64) (*model.TestPaper, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.Status != model.TestStatusPublished {
		return nil, ErrTestNotPublished
	}

	questions, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	forCandidate := make([]model.QuestionForCandidate, 0, len(questions))
	for _, q := range questions {
		forCandidate = append(forCandidate, q.ForCandidate())
	}

	return &model.TestPaper{
		TestID:          test.ID,
		Title:           test.Title,
		ExamType:        test.ExamType,
		DurationSeconds: test.DurationSeconds,
		Questions:       forCandidate,
	}, nil
}

func (s *CatalogService) invalidatePaper(ctx context.Context, testID int64) {
	if err := s.rdb.Del(ctx, config.CacheKey.TestPaperKey(testID)).Err(); err != nil {
		s.log.Warn().Err(err).Int64("test_id", testID).Msg("Paper cache invalidation failed")
	}
}
