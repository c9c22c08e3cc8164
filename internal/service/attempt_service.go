package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/exam"
	"github.com/rtagency/mocktest-backend/internal/grading"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/repository"
	"github.com/rtagency/mocktest-backend/internal/session"
)

// Attempt errors.
var (
	ErrNotPurchased    = errors.New("pack not purchased")
	ErrGateNotPassed   = errors.New("complete the countdown and instructions first")
	ErrNoActiveAttempt = errors.New("no active attempt for this test")
)

// gateTTL bounds how long a passed gate stays valid without starting.
const gateTTL = 24 * time.Hour

// AttemptService owns the live attempt sessions on this node. It enforces
// the entitlement and gate checks before a session starts, drives each
// session's countdown with a per-attempt ticker, and evicts finalized
// sessions from the registry.
type AttemptService struct {
	catalog     *CatalogService
	tests       *repository.TestRepository
	packs       *repository.PackRepository
	questions   *repository.QuestionRepository
	purchases   *repository.PurchaseRepository
	checkpoints session.CheckpointStore
	results     session.ResultSink
	rdb         *redis.Client
	log         zerolog.Logger

	mu   sync.Mutex
	live map[string]*liveAttempt
}

type liveAttempt struct {
	sess   *session.Session
	cancel context.CancelFunc
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	catalog *CatalogService,
	tests *repository.TestRepository,
	packs *repository.PackRepository,
	questions *repository.QuestionRepository,
	purchases *repository.PurchaseRepository,
	checkpoints session.CheckpointStore,
	results session.ResultSink,
	rdb *redis.Client,
	log zerolog.Logger,
) *AttemptService {
	return &AttemptService{
		catalog:     catalog,
		tests:       tests,
		packs:       packs,
		questions:   questions,
		purchases:   purchases,
		checkpoints: checkpoints,
		results:     results,
		rdb:         rdb,
		log:         log.With().Str("component", "attempt_service").Logger(),
		live:        make(map[string]*liveAttempt),
	}
}

func attemptKey(userID int, testID int64) string {
	return fmt.Sprintf("%d:%d", userID, testID)
}

// ─── Pre-test gates ─────────────────────────────────────────────────

// CompleteCountdown records that the user sat through the pre-test
// countdown for this test.
func (s *AttemptService) CompleteCountdown(ctx context.Context, userID int, testID int64) error {
	key := config.CacheKey.CountdownGateKey(userID, testID)
	return s.rdb.Set(ctx, key, "1", gateTTL).Err()
}

// VisitInstructions records that the user opened the instructions page for
// this test.
func (s *AttemptService) VisitInstructions(ctx context.Context, userID int, testID int64) error {
	key := config.CacheKey.InstructionsGateKey(userID, testID)
	return s.rdb.Set(ctx, key, "1", gateTTL).Err()
}

// gatesPassed checks both pre-test flags. A resumable attempt bypasses the
// gates: the user already passed them before the reload.
func (s *AttemptService) gatesPassed(ctx context.Context, userID int, testID int64) (bool, error) {
	keys := []string{
		config.CacheKey.CountdownGateKey(userID, testID),
		config.CacheKey.InstructionsGateKey(userID, testID),
	}
	n, err := s.rdb.Exists(ctx, keys...).Result()
	if err != nil {
		return false, fmt.Errorf("check gates: %w", err)
	}
	return n == int64(len(keys)), nil
}

// ─── Entitlement ────────────────────────────────────────────────────

// CheckEntitlement verifies the user may attempt the test: the test is
// published and its pack is either free or paid for.
func (s *AttemptService) CheckEntitlement(ctx context.Context, userID int, testID int64) (*model.MockTest, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		return nil, err
	}
	if test.Status != model.TestStatusPublished {
		return nil, ErrTestNotPublished
	}

	pack, err := s.packs.GetByID(ctx, test.PackID)
	if err != nil {
		return nil, err
	}
	if pack.PricePaise == 0 {
		return test, nil
	}

	paid, err := s.purchases.HasPaidPack(ctx, userID, test.PackID)
	if err != nil {
		return nil, err
	}
	if !paid {
		return nil, ErrNotPurchased
	}
	return test, nil
}

// ─── Attempt lifecycle ──────────────────────────────────────────────

// StartAttempt builds and starts a session for (user, test), returning it
// together with the candidate paper. When a live session already exists it
// is returned as-is, so a second tab attaches instead of resetting state.
func (s *AttemptService) StartAttempt(ctx context.Context, userID int, testID int64) (*session.Session, *model.TestPaper, error) {
	test, err := s.CheckEntitlement(ctx, userID, testID)
	if err != nil {
		return nil, nil, err
	}

	paper, err := s.catalog.GetPaper(ctx, testID)
	if err != nil {
		return nil, nil, err
	}

	key := attemptKey(userID, testID)
	s.mu.Lock()
	if la, ok := s.live[key]; ok {
		s.mu.Unlock()
		return la.sess, paper, nil
	}
	s.mu.Unlock()

	// A stored checkpoint means the gates were passed before the reload.
	resuming, err := s.hasCheckpoint(ctx, userID, testID)
	if err != nil {
		return nil, nil, err
	}
	if !resuming {
		passed, err := s.gatesPassed(ctx, userID, testID)
		if err != nil {
			return nil, nil, err
		}
		if !passed {
			return nil, nil, ErrGateNotPassed
		}
	}

	questions, err := s.questions.ListByTest(ctx, testID)
	if err != nil {
		return nil, nil, err
	}

	profile, err := exam.ProfileFor(test.ExamType)
	if err != nil {
		return nil, nil, err
	}
	policy, err := grading.PolicyFor(profile.ScoringPolicy)
	if err != nil {
		return nil, nil, err
	}

	sess, err := session.New(session.Config{
		UserID:          userID,
		TestID:          testID,
		Questions:       questions,
		Profile:         profile,
		DurationSeconds: test.DurationSeconds,
		Policy:          policy,
		Checkpoints:     s.checkpoints,
		Results:         s.results,
		Log:             s.log,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := sess.Start(ctx); err != nil {
		return nil, nil, err
	}

	tickCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if la, ok := s.live[key]; ok {
		// Lost the race to another request; keep the winner.
		s.mu.Unlock()
		cancel()
		return la.sess, paper, nil
	}
	s.live[key] = &liveAttempt{sess: sess, cancel: cancel}
	s.mu.Unlock()

	go s.runTicker(tickCtx, key, sess)

	s.log.Info().Int("user_id", userID).Int64("test_id", testID).Msg("Attempt started")
	return sess, paper, nil
}

// GetAttempt returns the live session for (user, test).
func (s *AttemptService) GetAttempt(userID int, testID int64) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	la, ok := s.live[attemptKey(userID, testID)]
	if !ok {
		return nil, ErrNoActiveAttempt
	}
	return la.sess, nil
}

// Submit finalizes the live attempt and evicts it on success.
func (s *AttemptService) Submit(ctx context.Context, userID int, testID int64, confirmed bool) (*model.GradedResult, error) {
	sess, err := s.GetAttempt(userID, testID)
	if err != nil {
		return nil, err
	}

	result, err := sess.Submit(ctx, confirmed)
	if err == nil && result != nil {
		s.evict(userID, testID)
	}
	return result, err
}

// runTicker drives the session countdown at one tick per second until the
// attempt finalizes or the service shuts down.
func (s *AttemptService) runTicker(ctx context.Context, key string, sess *session.Session) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			result, err := sess.Tick(ctx)
			if err != nil {
				// Auto-submit hit a persistence failure. The graded result
				// is cached on the session; retried below on later ticks.
				s.log.Warn().Err(err).Str("attempt", key).Msg("Auto-submit failed, will retry")
				continue
			}
			if result != nil {
				s.removeLive(key, sess)
				return
			}

			switch sess.Phase() {
			case session.PhaseFinalized:
				s.removeLive(key, sess)
				return
			case session.PhaseSubmitting:
				// A prior submit graded but could not persist; the timer
				// path keeps retrying until the write lands.
				retried, err := sess.Submit(ctx, true)
				if err != nil {
					if !errors.Is(err, session.ErrSubmitPending) {
						s.log.Warn().Err(err).Str("attempt", key).Msg("Submit retry failed")
					}
					continue
				}
				if retried != nil {
					s.removeLive(key, sess)
					return
				}
			}
		}
	}
}

// removeLive evicts the session from the registry if it is still the
// registered one for the key.
func (s *AttemptService) removeLive(key string, sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if la, ok := s.live[key]; ok && la.sess == sess {
		la.cancel()
		delete(s.live, key)
	}
}

func (s *AttemptService) evict(userID int, testID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attemptKey(userID, testID)
	if la, ok := s.live[key]; ok {
		la.cancel()
		delete(s.live, key)
	}
}

func (s *AttemptService) hasCheckpoint(ctx context.Context, userID int, testID int64) (bool, error) {
	snap, err := s.checkpoints.Load(ctx, userID, testID)
	if err != nil {
		return false, err
	}
	return snap != nil, nil
}

// Shutdown stops every ticker. In-flight checkpoints and queued results are
// drained by the workers.
func (s *AttemptService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, la := range s.live {
		la.cancel()
		delete(s.live, key)
	}
}
