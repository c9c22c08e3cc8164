package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/exam"
	"github.com/rtagency/mocktest-backend/internal/grading"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// Phase is the lifecycle state of an attempt.
type Phase string

const (
	PhaseInitializing Phase = "INITIALIZING"
	PhaseRunning      Phase = "RUNNING"
	PhaseSubmitting   Phase = "SUBMITTING"
	PhaseFinalized    Phase = "FINALIZED"
)

// Config wires a session with its paper, marking scheme, and collaborators.
// UserID is threaded in explicitly; the session never consults ambient
// identity.
type Config struct {
	UserID    int
	TestID    int64
	Questions []model.Question
	Profile   exam.Profile
	// DurationSeconds overrides the profile duration when > 0. The catalog
	// carries this per test so the exam office can shorten a paper without
	// touching code.
	DurationSeconds int
	Policy          grading.Policy
	Checkpoints     CheckpointStore
	Results         ResultSink
	Log             zerolog.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Session owns all mutable state for one attempt at one test: position,
// per-question answers, flags, remaining time, and checkpointing. All
// mutating operations serialize on one mutex, mirroring the single event
// loop the browser client had.
type Session struct {
	mu sync.Mutex

	userID    int
	testID    int64
	questions []model.Question
	profile   exam.Profile
	policy    grading.Policy

	answers          map[int64]grading.AnswerState
	currentIndex     int
	durationSeconds  int
	remainingSeconds int
	startedAt        time.Time

	phase          Phase
	submitInFlight bool
	pendingResult  *model.GradedResult

	checkpoints CheckpointStore
	results     ResultSink
	log         zerolog.Logger
	now         func() time.Time

	done chan *model.GradedResult
}

// New builds a session in the INITIALIZING phase. Call Start to either
// restore a checkpoint or begin fresh.
func New(cfg Config) (*Session, error) {
	if len(cfg.Questions) == 0 {
		return nil, fmt.Errorf("test %d has no questions", cfg.TestID)
	}
	if cfg.Policy == nil {
		return nil, fmt.Errorf("scoring policy is required")
	}

	duration := cfg.DurationSeconds
	if duration <= 0 {
		duration = cfg.Profile.DurationSeconds
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Session{
		userID:           cfg.UserID,
		testID:           cfg.TestID,
		questions:        cfg.Questions,
		profile:          cfg.Profile,
		policy:           cfg.Policy,
		answers:          make(map[int64]grading.AnswerState),
		durationSeconds:  duration,
		remainingSeconds: duration,
		phase:            PhaseInitializing,
		checkpoints:      cfg.Checkpoints,
		results:          cfg.Results,
		log: cfg.Log.With().
			Int("user_id", cfg.UserID).
			Int64("test_id", cfg.TestID).
			Logger(),
		now:  now,
		done: make(chan *model.GradedResult, 1),
	}, nil
}

// Start transitions to RUNNING, restoring a prior checkpoint for this
// (user, test) if one exists. A fresh start opens on question 0, which
// counts as visited.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseInitializing {
		return fmt.Errorf("start: attempt already %s", s.phase)
	}

	snap, err := s.checkpoints.Load(ctx, s.userID, s.testID)
	if err != nil {
		return fmt.Errorf("load checkpoint: %w", err)
	}

	if snap != nil {
		s.answers = snap.Answers
		s.currentIndex = clamp(snap.CurrentIndex, 0, len(s.questions)-1)
		s.remainingSeconds = clamp(snap.RemainingSeconds, 0, s.durationSeconds)
		s.log.Info().
			Int("remaining", s.remainingSeconds).
			Int("answered", len(s.answers)).
			Msg("Attempt resumed from checkpoint")
	} else {
		s.visitLocked(0)
	}

	s.startedAt = s.now()
	s.phase = PhaseRunning
	s.checkpointLocked()
	return nil
}

// ─── Navigation and answering ───────────────────────────────────────

// SelectAnswer records the answer for a question. The value is stored as-is;
// it is not validated against the option set. Visited and marked flags are
// untouched.
func (s *Session) SelectAnswer(questionID int64, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRunning(); err != nil {
		return err
	}

	ans := s.answers[questionID]
	ans.Value = value
	s.answers[questionID] = ans
	s.checkpointLocked()
	return nil
}

// View moves to the question at index and marks it visited. Repeated views
// of the same index change nothing else.
func (s *Session) View(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRunning(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	s.visitLocked(index)
	s.checkpointLocked()
	return nil
}

// SaveAndNext requires an answer on the current question, then advances.
// Standing on the last question is not an error; the position just stays.
func (s *Session) SaveAndNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRunning(); err != nil {
		return err
	}

	current := s.questions[s.currentIndex]
	if !s.answers[current.ID].Answered() {
		return ErrNoAnswer
	}

	if s.currentIndex < len(s.questions)-1 {
		s.visitLocked(s.currentIndex + 1)
	}
	s.checkpointLocked()
	return nil
}

// MarkForReview flags the current question and advances when possible.
func (s *Session) MarkForReview() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRunning(); err != nil {
		return err
	}

	current := s.questions[s.currentIndex]
	ans := s.answers[current.ID]
	ans.Marked = true
	s.answers[current.ID] = ans

	if s.currentIndex < len(s.questions)-1 {
		s.visitLocked(s.currentIndex + 1)
	}
	s.checkpointLocked()
	return nil
}

// ClearResponse wipes the current question's answer. Visited and marked
// flags survive the clear.
func (s *Session) ClearResponse() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRunning(); err != nil {
		return err
	}

	current := s.questions[s.currentIndex]
	ans := s.answers[current.ID]
	ans.Value = ""
	s.answers[current.ID] = ans
	s.checkpointLocked()
	return nil
}

// JumpToSubject moves to the first question of the named subject using the
// exam profile's section table.
func (s *Session) JumpToSubject(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireRunning(); err != nil {
		return err
	}

	start, ok := s.profile.SectionStart(subject)
	if !ok {
		return ErrUnknownSubject
	}
	if start >= len(s.questions) {
		return ErrIndexOutOfRange
	}

	s.visitLocked(start)
	s.checkpointLocked()
	return nil
}

// ─── Timer ──────────────────────────────────────────────────────────

// Tick advances the countdown by one second. When it first reaches zero it
// triggers exactly one automatic submission and returns the graded result.
// Further ticks are no-ops; remaining time never goes negative.
func (s *Session) Tick(ctx context.Context) (*model.GradedResult, error) {
	s.mu.Lock()

	if s.phase != PhaseRunning || s.submitInFlight {
		s.mu.Unlock()
		return nil, nil
	}

	if s.remainingSeconds > 0 {
		s.remainingSeconds--
	}
	if s.remainingSeconds > 0 {
		s.checkpointLocked()
		s.mu.Unlock()
		return nil, nil
	}

	// Time is up: the timer path submits without a confirmation step.
	s.log.Info().Msg("Time expired, auto-submitting")
	return s.submitLocked(ctx)
}

// ─── Submission ─────────────────────────────────────────────────────

// Submit finalizes the attempt. A declined manual confirmation is a no-op.
// Grading always happens locally; if persisting the result fails the
// attempt stays in SUBMITTING and the same result is re-persisted on retry.
// A second trigger while a submit is in flight is rejected, which closes
// the race between a manual double-click and the timer expiring.
func (s *Session) Submit(ctx context.Context, confirmed bool) (*model.GradedResult, error) {
	if !confirmed {
		return nil, nil
	}

	s.mu.Lock()

	switch {
	case s.phase == PhaseFinalized:
		s.mu.Unlock()
		return nil, ErrFinalized
	case s.submitInFlight:
		s.mu.Unlock()
		return nil, ErrSubmitPending
	case s.phase != PhaseRunning && s.phase != PhaseSubmitting:
		phase := s.phase
		s.mu.Unlock()
		return nil, fmt.Errorf("submit: attempt is %s", phase)
	}

	return s.submitLocked(ctx)
}

// submitLocked grades and persists. The in-flight flag is set before the
// sink call (the only suspension point) and the mutex is released around it
// so the ticker is never blocked on I/O. Callers must hold the mutex; it is
// unlocked on return.
func (s *Session) submitLocked(ctx context.Context) (*model.GradedResult, error) {
	s.submitInFlight = true
	s.phase = PhaseSubmitting

	result := s.pendingResult
	if result == nil {
		if orphans := grading.OrphanAnswers(s.questions, s.answers); len(orphans) > 0 {
			s.log.Warn().Err(ErrDataIntegrity).Ints64("question_ids", orphans).Msg("Grading with placeholder rows")
		}

		durationUsed := s.durationSeconds - s.remainingSeconds
		result = grading.Grade(s.questions, s.answers, durationUsed, s.policy)
		result.ID = uuid.New()
		result.UserID = s.userID
		result.TestID = s.testID
		result.SubmittedAt = s.now()
		s.pendingResult = result
	}
	s.mu.Unlock()

	err := s.results.Persist(ctx, result)

	s.mu.Lock()
	s.submitInFlight = false
	if err != nil {
		// Stay in SUBMITTING: the user retries; the computed result is
		// still returned so local summary screens can render.
		s.mu.Unlock()
		return result, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.phase = PhaseFinalized
	s.mu.Unlock()

	s.clearCheckpointAsync()

	select {
	case s.done <- result:
	default:
	}

	s.log.Info().
		Int("marks", result.MarksObtained).
		Float64("score", result.Score).
		Int("wrong", len(result.WrongQuestions)).
		Msg("Attempt graded and persisted")

	return result, nil
}

// Done delivers the graded result once the attempt finalizes. Used by the
// stream handler to push the outcome when the timer expires server-side.
func (s *Session) Done() <-chan *model.GradedResult {
	return s.done
}

// ─── Read-side ──────────────────────────────────────────────────────

// State is a point-in-time read-only view of the attempt for rendering.
type State struct {
	Phase            Phase                         `json:"phase"`
	CurrentIndex     int                           `json:"current_index"`
	RemainingSeconds int                           `json:"remaining_seconds"`
	Answers          map[int64]grading.AnswerState `json:"answers"`
	// Palette holds the live status per question in paper order.
	Palette []model.QuestionStatus `json:"palette"`
}

// State snapshots the session for handlers. The answers map is copied.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := make(map[int64]grading.AnswerState, len(s.answers))
	for id, a := range s.answers {
		answers[id] = a
	}

	palette := make([]model.QuestionStatus, len(s.questions))
	for i, q := range s.questions {
		palette[i] = grading.DeriveStatus(s.answers[q.ID], false, false)
	}

	return State{
		Phase:            s.phase,
		CurrentIndex:     s.currentIndex,
		RemainingSeconds: s.remainingSeconds,
		Answers:          answers,
		Palette:          palette,
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// ─── Internals ──────────────────────────────────────────────────────

func (s *Session) requireRunning() error {
	switch s.phase {
	case PhaseRunning:
		return nil
	case PhaseFinalized, PhaseSubmitting:
		return ErrFinalized
	default:
		return fmt.Errorf("attempt not started")
	}
}

// visitLocked moves the cursor and marks the target visited. Visited is
// monotonic; revisiting changes nothing else.
func (s *Session) visitLocked(index int) {
	s.currentIndex = index
	q := s.questions[index]
	ans := s.answers[q.ID]
	if !ans.Visited {
		ans.Visited = true
		s.answers[q.ID] = ans
	}
}

// checkpointLocked snapshots the mutable state and writes it out
// asynchronously. Last write wins; a lost write only costs the delta since
// the previous one.
func (s *Session) checkpointLocked() {
	snap := &Snapshot{
		UserID:           s.userID,
		TestID:           s.testID,
		CurrentIndex:     s.currentIndex,
		RemainingSeconds: s.remainingSeconds,
		Answers:          make(map[int64]grading.AnswerState, len(s.answers)),
		SavedAt:          time.Now(),
	}
	for id, a := range s.answers {
		snap.Answers[id] = a
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.checkpoints.Save(ctx, snap); err != nil {
			s.log.Debug().Err(err).Msg("Checkpoint write failed")
		}
	}()
}

func (s *Session) clearCheckpointAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.checkpoints.Clear(ctx, s.userID, s.testID); err != nil {
			s.log.Warn().Err(err).Msg("Checkpoint clear failed")
		}
	}()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
