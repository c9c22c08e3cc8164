package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rtagency/mocktest-backend/internal/exam"
	"github.com/rtagency/mocktest-backend/internal/grading"
	"github.com/rtagency/mocktest-backend/internal/model"
)

// memorySink records persisted results. It can be told to fail the first N
// calls, or to block until released so in-flight submits can be observed.
type memorySink struct {
	mu       sync.Mutex
	results  []*model.GradedResult
	failures int

	entered chan struct{}
	release chan struct{}
}

func (m *memorySink) Persist(ctx context.Context, result *model.GradedResult) error {
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.release != nil {
		<-m.release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("result store unavailable")
	}
	m.results = append(m.results, result)
	return nil
}

func (m *memorySink) persisted() []*model.GradedResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.GradedResult, len(m.results))
	copy(out, m.results)
	return out
}

func testProfile() exam.Profile {
	return exam.Profile{
		ExamType:        "jee_main",
		DurationSeconds: 60,
		ScoringPolicy:   "jee_negative",
		Sections: []exam.Section{
			{Subject: "Physics", Start: 0, Count: 2},
			{Subject: "Chemistry", Start: 2, Count: 2},
		},
	}
}

func testQuestions(n int) []model.Question {
	questions := make([]model.Question, 0, n)
	subjects := []string{"Physics", "Physics", "Chemistry", "Chemistry"}
	for i := 0; i < n; i++ {
		questions = append(questions, model.Question{
			ID:            int64(100 + i),
			TestID:        7,
			Subject:       subjects[i%len(subjects)],
			Prompt:        fmt.Sprintf("question %d", i),
			Options:       []string{"a", "b", "c", "d"},
			AnswerType:    model.AnswerTypeChoice,
			CorrectAnswer: "a",
			OrderNum:      i + 1,
		})
	}
	return questions
}

func newTestSession(t *testing.T, store CheckpointStore, sink ResultSink) *Session {
	t.Helper()
	s, err := New(Config{
		UserID:      42,
		TestID:      7,
		Questions:   testQuestions(4),
		Profile:     testProfile(),
		Policy:      grading.FlatMarking{},
		Checkpoints: store,
		Results:     sink,
		Log:         zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func startedSession(t *testing.T, store CheckpointStore, sink ResultSink) *Session {
	t.Helper()
	s := newTestSession(t, store, sink)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

// waitForCheckpoint polls until the async checkpoint write satisfying cond
// lands, failing the test after a deadline.
func waitForCheckpoint(t *testing.T, store *MemoryCheckpointStore, cond func(*Snapshot) bool) *Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, _ := store.Load(context.Background(), 42, 7)
		if snap != nil && cond(snap) {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("checkpoint not written in time")
	return nil
}

func TestStartFresh(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	st := s.State()
	if st.Phase != PhaseRunning {
		t.Errorf("phase = %s, want %s", st.Phase, PhaseRunning)
	}
	if st.CurrentIndex != 0 {
		t.Errorf("current index = %d, want 0", st.CurrentIndex)
	}
	if st.RemainingSeconds != 60 {
		t.Errorf("remaining = %d, want 60", st.RemainingSeconds)
	}
	// The opening question counts as visited.
	if st.Palette[0] != model.StatusNotAnswered {
		t.Errorf("palette[0] = %s, want %s", st.Palette[0], model.StatusNotAnswered)
	}
	if st.Palette[1] != model.StatusNotVisited {
		t.Errorf("palette[1] = %s, want %s", st.Palette[1], model.StatusNotVisited)
	}
}

func TestDurationOverride(t *testing.T) {
	s, err := New(Config{
		UserID:          42,
		TestID:          7,
		Questions:       testQuestions(4),
		Profile:         testProfile(),
		DurationSeconds: 25,
		Policy:          grading.FlatMarking{},
		Checkpoints:     NewMemoryCheckpointStore(),
		Results:         &memorySink{},
		Log:             zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := s.State().RemainingSeconds; got != 25 {
		t.Errorf("remaining = %d, want the per-test override 25", got)
	}
}

func TestSaveAndNext(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	// No answer selected: rejected, position unchanged.
	if err := s.SaveAndNext(); !errors.Is(err, ErrNoAnswer) {
		t.Fatalf("SaveAndNext without answer: err = %v, want ErrNoAnswer", err)
	}
	if got := s.State().CurrentIndex; got != 0 {
		t.Errorf("index moved to %d after rejected save", got)
	}

	if err := s.SelectAnswer(100, "a"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := s.SaveAndNext(); err != nil {
		t.Fatalf("SaveAndNext: %v", err)
	}

	st := s.State()
	if st.CurrentIndex != 1 {
		t.Errorf("index = %d, want 1", st.CurrentIndex)
	}
	if st.Palette[0] != model.StatusAnswered {
		t.Errorf("palette[0] = %s, want %s", st.Palette[0], model.StatusAnswered)
	}
}

func TestSaveAndNextOnLastQuestion(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	if err := s.View(3); err != nil {
		t.Fatalf("View: %v", err)
	}
	if err := s.SelectAnswer(103, "b"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	// Saving on the last question keeps the position; it is not an error.
	if err := s.SaveAndNext(); err != nil {
		t.Fatalf("SaveAndNext on last question: %v", err)
	}
	if got := s.State().CurrentIndex; got != 3 {
		t.Errorf("index = %d, want 3", got)
	}
}

func TestMarkForReview(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	// Marking does not require an answer and still advances.
	if err := s.MarkForReview(); err != nil {
		t.Fatalf("MarkForReview: %v", err)
	}
	st := s.State()
	if st.CurrentIndex != 1 {
		t.Errorf("index = %d, want 1", st.CurrentIndex)
	}
	if st.Palette[0] != model.StatusMarked {
		t.Errorf("palette[0] = %s, want %s", st.Palette[0], model.StatusMarked)
	}

	// Answered and marked outranks both individual states.
	if err := s.View(0); err != nil {
		t.Fatalf("View: %v", err)
	}
	if err := s.SelectAnswer(100, "c"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if got := s.State().Palette[0]; got != model.StatusAnsweredMarked {
		t.Errorf("palette[0] = %s, want %s", got, model.StatusAnsweredMarked)
	}
}

func TestClearResponse(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	if err := s.SelectAnswer(100, "a"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	if err := s.ClearResponse(); err != nil {
		t.Fatalf("ClearResponse: %v", err)
	}

	st := s.State()
	// Visited survives the clear, so the question shows as seen-but-empty
	// rather than untouched.
	if st.Palette[0] != model.StatusNotAnswered {
		t.Errorf("palette[0] = %s, want %s", st.Palette[0], model.StatusNotAnswered)
	}
	if ans := st.Answers[100]; ans.Value != "" || !ans.Visited {
		t.Errorf("answer state = %+v, want cleared value with visited kept", ans)
	}
}

func TestViewBounds(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	for _, index := range []int{-1, 4, 100} {
		if err := s.View(index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("View(%d): err = %v, want ErrIndexOutOfRange", index, err)
		}
	}
}

func TestJumpToSubject(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	if err := s.JumpToSubject("chemistry"); err != nil {
		t.Fatalf("JumpToSubject: %v", err)
	}
	if got := s.State().CurrentIndex; got != 2 {
		t.Errorf("index = %d, want 2", got)
	}

	if err := s.JumpToSubject("Biology"); !errors.Is(err, ErrUnknownSubject) {
		t.Errorf("unknown subject: err = %v, want ErrUnknownSubject", err)
	}
}

func TestTickCountdownAndAutoSubmit(t *testing.T) {
	sink := &memorySink{}
	s, err := New(Config{
		UserID:          42,
		TestID:          7,
		Questions:       testQuestions(4),
		Profile:         testProfile(),
		DurationSeconds: 3,
		Policy:          grading.FlatMarking{},
		Checkpoints:     NewMemoryCheckpointStore(),
		Results:         sink,
		Log:             zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.SelectAnswer(100, "a"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	ctx := context.Background()

	for want := 2; want >= 1; want-- {
		result, err := s.Tick(ctx)
		if err != nil || result != nil {
			t.Fatalf("Tick: result=%v err=%v, want countdown only", result, err)
		}
		if got := s.State().RemainingSeconds; got != want {
			t.Errorf("remaining = %d, want %d", got, want)
		}
	}

	// The tick that hits zero submits, once, without confirmation.
	result, err := s.Tick(ctx)
	if err != nil {
		t.Fatalf("expiring Tick: %v", err)
	}
	if result == nil {
		t.Fatal("expiring Tick returned no result")
	}
	if result.MarksObtained != 1 {
		t.Errorf("MarksObtained = %d, want 1", result.MarksObtained)
	}
	if result.DurationUsed != 3 {
		t.Errorf("DurationUsed = %d, want 3", result.DurationUsed)
	}
	if got := s.Phase(); got != PhaseFinalized {
		t.Errorf("phase = %s, want %s", got, PhaseFinalized)
	}

	// Further ticks are no-ops and time never goes negative.
	for i := 0; i < 3; i++ {
		if r, err := s.Tick(ctx); r != nil || err != nil {
			t.Fatalf("post-expiry Tick: result=%v err=%v", r, err)
		}
	}
	if got := s.State().RemainingSeconds; got != 0 {
		t.Errorf("remaining = %d after expiry, want 0", got)
	}
	if n := len(sink.persisted()); n != 1 {
		t.Errorf("persisted %d results, want exactly 1", n)
	}
}

func TestSubmitDeclined(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	result, err := s.Submit(context.Background(), false)
	if result != nil || err != nil {
		t.Fatalf("declined submit: result=%v err=%v, want no-op", result, err)
	}
	if got := s.Phase(); got != PhaseRunning {
		t.Errorf("phase = %s, want %s", got, PhaseRunning)
	}
}

func TestSubmitFinalizesAndRejectsRepeat(t *testing.T) {
	sink := &memorySink{}
	s := startedSession(t, NewMemoryCheckpointStore(), sink)

	result, err := s.Submit(context.Background(), true)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result == nil {
		t.Fatal("Submit returned no result")
	}

	if _, err := s.Submit(context.Background(), true); !errors.Is(err, ErrFinalized) {
		t.Errorf("repeat submit: err = %v, want ErrFinalized", err)
	}
	if err := s.SelectAnswer(100, "a"); !errors.Is(err, ErrFinalized) {
		t.Errorf("mutation after finalize: err = %v, want ErrFinalized", err)
	}
	if n := len(sink.persisted()); n != 1 {
		t.Errorf("persisted %d results, want 1", n)
	}
}

func TestSubmitPersistFailureThenRetry(t *testing.T) {
	sink := &memorySink{failures: 1}
	s := startedSession(t, NewMemoryCheckpointStore(), sink)

	if err := s.SelectAnswer(100, "a"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}

	first, err := s.Submit(context.Background(), true)
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	// Grading already happened locally; the result is returned so the
	// client can render a summary while retrying.
	if first == nil {
		t.Fatal("failed submit returned no result")
	}
	if got := s.Phase(); got != PhaseSubmitting {
		t.Errorf("phase = %s, want %s", got, PhaseSubmitting)
	}

	second, err := s.Submit(context.Background(), true)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if second != first {
		t.Error("retry recomputed the result instead of reusing it")
	}
	if got := s.Phase(); got != PhaseFinalized {
		t.Errorf("phase = %s, want %s", got, PhaseFinalized)
	}
	if n := len(sink.persisted()); n != 1 {
		t.Errorf("persisted %d results, want 1", n)
	}
}

func TestSubmitExclusivity(t *testing.T) {
	sink := &memorySink{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	s := startedSession(t, NewMemoryCheckpointStore(), sink)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background(), true)
		errc <- err
	}()
	<-sink.entered

	// While the first submit is persisting, a second trigger and the
	// expiring timer are both rejected instead of grading twice.
	if _, err := s.Submit(context.Background(), true); !errors.Is(err, ErrSubmitPending) {
		t.Errorf("concurrent submit: err = %v, want ErrSubmitPending", err)
	}
	if r, err := s.Tick(context.Background()); r != nil || err != nil {
		t.Errorf("concurrent tick: result=%v err=%v, want no-op", r, err)
	}

	close(sink.release)
	if err := <-errc; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if n := len(sink.persisted()); n != 1 {
		t.Errorf("persisted %d results, want 1", n)
	}
}

func TestDoneDeliversResult(t *testing.T) {
	s := startedSession(t, NewMemoryCheckpointStore(), &memorySink{})

	submitted, err := s.Submit(context.Background(), true)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	select {
	case delivered := <-s.Done():
		if delivered != submitted {
			t.Error("Done delivered a different result than Submit returned")
		}
	case <-time.After(time.Second):
		t.Fatal("Done never delivered the result")
	}
}

func TestResumeFromCheckpoint(t *testing.T) {
	store := NewMemoryCheckpointStore()
	first := startedSession(t, store, &memorySink{})

	if err := walkFirstAttempt(first); err != nil {
		t.Fatal(err)
	}
	waitForCheckpoint(t, store, func(snap *Snapshot) bool {
		return snap.CurrentIndex == 1 && snap.Answers[100].Value == "a" && snap.Answers[102].Marked
	})

	// A reload builds a fresh session over the same store and picks up
	// where the first left off.
	second := startedSession(t, store, &memorySink{})
	st := second.State()
	if st.CurrentIndex != 1 {
		t.Errorf("resumed index = %d, want 1", st.CurrentIndex)
	}
	if st.Palette[0] != model.StatusAnswered {
		t.Errorf("palette[0] = %s, want %s", st.Palette[0], model.StatusAnswered)
	}
	if st.Palette[2] != model.StatusMarked {
		t.Errorf("palette[2] = %s, want %s", st.Palette[2], model.StatusMarked)
	}
}

// walkFirstAttempt answers question 0, marks question 2, and returns to
// question 1.
func walkFirstAttempt(s *Session) error {
	if err := s.SelectAnswer(100, "a"); err != nil {
		return err
	}
	if err := s.View(2); err != nil {
		return err
	}
	if err := s.MarkForReview(); err != nil {
		return err
	}
	return s.View(1)
}

func TestResumeClampsRemaining(t *testing.T) {
	store := NewMemoryCheckpointStore()
	if err := store.Save(context.Background(), &Snapshot{
		UserID:           42,
		TestID:           7,
		CurrentIndex:     99,
		RemainingSeconds: 9999,
		Answers:          map[int64]grading.AnswerState{},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := startedSession(t, store, &memorySink{})
	st := s.State()
	if st.CurrentIndex != 3 {
		t.Errorf("index = %d, want clamped to 3", st.CurrentIndex)
	}
	if st.RemainingSeconds != 60 {
		t.Errorf("remaining = %d, want clamped to 60", st.RemainingSeconds)
	}
}

func TestCheckpointClearedAfterFinalize(t *testing.T) {
	store := NewMemoryCheckpointStore()
	s := startedSession(t, store, &memorySink{})

	if _, err := s.Submit(context.Background(), true); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, _ := store.Load(context.Background(), 42, 7)
		if snap == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("checkpoint survived finalization")
}

func TestStaleSnapshotCannotResurrectCheckpoint(t *testing.T) {
	store := NewMemoryCheckpointStore()
	s := startedSession(t, store, &memorySink{})

	if err := s.SelectAnswer(100, "a"); err != nil {
		t.Fatalf("SelectAnswer: %v", err)
	}
	stale := waitForCheckpoint(t, store, func(snap *Snapshot) bool {
		return snap.Answers[100].Value == "a"
	})

	if _, err := s.Submit(context.Background(), true); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	waitForCleared(t, store)

	// A snapshot written before submission can still be in the durable
	// queue when the clear lands. Replaying it must not bring the
	// finalized attempt back.
	if err := store.Save(context.Background(), stale); err != nil {
		t.Fatalf("Save: %v", err)
	}
	snap, err := store.Load(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap != nil {
		t.Fatalf("stale snapshot resurrected cleared checkpoint: %+v", snap)
	}

	// A fresh reload therefore starts clean rather than resuming the
	// finalized attempt.
	second := startedSession(t, store, &memorySink{})
	st := second.State()
	if st.CurrentIndex != 0 || st.Answers[100].Value != "" {
		t.Errorf("reload resumed finalized attempt: index=%d answers=%+v", st.CurrentIndex, st.Answers)
	}
}

func TestNewSnapshotReplacesTombstone(t *testing.T) {
	store := NewMemoryCheckpointStore()
	if err := store.Clear(context.Background(), 42, 7); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	fresh := &Snapshot{
		UserID:           42,
		TestID:           7,
		CurrentIndex:     1,
		RemainingSeconds: 50,
		Answers:          map[int64]grading.AnswerState{},
		SavedAt:          time.Now().Add(time.Second),
	}
	if err := store.Save(context.Background(), fresh); err != nil {
		t.Fatalf("Save: %v", err)
	}

	snap, err := store.Load(context.Background(), 42, 7)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap == nil || snap.CurrentIndex != 1 {
		t.Fatalf("retake snapshot not stored, got %+v", snap)
	}
}

// waitForCleared polls until the checkpoint reads as absent.
func waitForCleared(t *testing.T, store *MemoryCheckpointStore) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, _ := store.Load(context.Background(), 42, 7)
		if snap == nil {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("checkpoint not cleared in time")
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := &Snapshot{
		UserID:           42,
		TestID:           7,
		CurrentIndex:     2,
		RemainingSeconds: 31,
		Answers: map[int64]grading.AnswerState{
			100: {Value: "a", Visited: true},
			102: {Visited: true, Marked: true},
		},
	}

	data, err := snap.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}

	if decoded.CurrentIndex != snap.CurrentIndex || decoded.RemainingSeconds != snap.RemainingSeconds {
		t.Errorf("decoded = %+v, want %+v", decoded, snap)
	}
	if got := decoded.Answers[100]; got != snap.Answers[100] {
		t.Errorf("answer 100 = %+v, want %+v", got, snap.Answers[100])
	}
	if got := decoded.Answers[102]; got != snap.Answers[102] {
		t.Errorf("answer 102 = %+v, want %+v", got, snap.Answers[102])
	}
}
