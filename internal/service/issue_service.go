package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
)

// IssueCooldown is the minimum wait between two reports from the same user.
const IssueCooldown = 2 * time.Minute

// ErrIssueCooldown rejects a report filed before the cooldown expires.
var ErrIssueCooldown = errors.New("wait before filing another issue")

// IssueService records question issue reports filed by candidates and
// serves them to admins. A per-user cooldown keeps a stuck retry loop from
// flooding the table.
type IssueService struct {
	issues *repository.IssueRepository
	tests  *repository.TestRepository
	rdb    *redis.Client
	log    zerolog.Logger
}

// NewIssueService creates a new IssueService.
func NewIssueService(
	issues *repository.IssueRepository,
	tests *repository.TestRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *IssueService {
	return &IssueService{
		issues: issues,
		tests:  tests,
		rdb:    rdb,
		log:    log.With().Str("component", "issue_service").Logger(),
	}
}

// Report files an issue against a question of a test.
func (s *IssueService) Report(ctx context.Context, userID int, req *model.CreateIssueRequest) (*model.IssueReport, error) {
	if _, err := s.tests.GetByID(ctx, req.TestID); err != nil {
		return nil, err
	}

	key := config.CacheKey.IssueCooldownKey(userID)
	ok, err := s.rdb.SetNX(ctx, key, "1", IssueCooldown).Result()
	if err != nil {
		return nil, fmt.Errorf("check issue cooldown: %w", err)
	}
	if !ok {
		return nil, ErrIssueCooldown
	}

	report := &model.IssueReport{
		UserID:      userID,
		TestID:      req.TestID,
		QuestionNum: req.QuestionNum,
		Description: req.Description,
	}
	if err := s.issues.Create(ctx, report); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("user_id", userID).
		Int64("test_id", req.TestID).
		Int("question_num", req.QuestionNum).
		Msg("Issue reported")
	return report, nil
}

// List returns reports for the admin queue, newest first.
func (s *IssueService) List(ctx context.Context, status model.IssueStatus, limit, offset int) ([]model.IssueReportEntry, int, error) {
	return s.issues.List(ctx, status, limit, offset)
}

// Resolve updates a report's status, reporting whether the report exists.
func (s *IssueService) Resolve(ctx context.Context, id int64, status model.IssueStatus) (bool, error) {
	return s.issues.UpdateStatus(ctx, id, status)
}
