package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rtagency/mocktest-backend/internal/grading"
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/session"
)

// The result queue carries graded results as JSON between the sink and the
// worker. Everything the insert needs has to survive that hop.
func TestResultQueuePayload(t *testing.T) {
	submitted := time.Date(2026, 8, 14, 10, 30, 0, 0, time.UTC)
	res := &model.GradedResult{
		ID:            uuid.New(),
		UserID:        42,
		TestID:        7,
		MarksObtained: 3,
		TotalMarks:    4,
		Score:         11,
		ScoringPolicy: "jee_negative",
		WrongQuestions: []model.WrongQuestion{
			{QuestionID: 102, QuestionText: "q", UserAnswer: "b", CorrectAnswer: "a"},
		},
		QuestionStatuses: []model.QuestionOutcome{
			{QuestionID: 101, Status: model.StatusCorrectSolved},
			{QuestionID: 102, Status: model.StatusWrongSolved},
			{QuestionID: 103, Status: model.StatusDataMissing},
		},
		DurationUsed: 540,
		SubmittedAt:  submitted,
	}

	raw, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded model.GradedResult
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if decoded.ID != res.ID || decoded.UserID != res.UserID || decoded.TestID != res.TestID {
		t.Errorf("identity fields changed: %+v", decoded)
	}
	if decoded.MarksObtained != 3 || decoded.TotalMarks != 4 || decoded.Score != 11 {
		t.Errorf("marks changed: %+v", decoded)
	}
	if decoded.ScoringPolicy != "jee_negative" || decoded.DurationUsed != 540 {
		t.Errorf("attempt metadata changed: %+v", decoded)
	}
	if !decoded.SubmittedAt.Equal(submitted) {
		t.Errorf("SubmittedAt = %v, want %v", decoded.SubmittedAt, submitted)
	}
	if len(decoded.WrongQuestions) != 1 || decoded.WrongQuestions[0] != res.WrongQuestions[0] {
		t.Errorf("wrong questions changed: %+v", decoded.WrongQuestions)
	}
	if len(decoded.QuestionStatuses) != 3 || decoded.QuestionStatuses[2].Status != model.StatusDataMissing {
		t.Errorf("statuses changed: %+v", decoded.QuestionStatuses)
	}
}

// Checkpoint queue items decode back into the snapshot the repository
// upserts, keeping the save time the newest-wins guard depends on.
func TestCheckpointQueuePayload(t *testing.T) {
	saved := time.Date(2026, 8, 14, 10, 31, 2, 0, time.UTC)
	snap := &session.Snapshot{
		UserID:           42,
		TestID:           7,
		CurrentIndex:     2,
		RemainingSeconds: 118,
		Answers: map[int64]grading.AnswerState{
			101: {Value: "a", Visited: true},
		},
		SavedAt: saved,
	}

	raw, err := snap.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := session.DecodeSnapshot(raw)
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}

	if decoded.UserID != 42 || decoded.TestID != 7 {
		t.Errorf("attempt key changed: %+v", decoded)
	}
	if decoded.CurrentIndex != 2 || decoded.RemainingSeconds != 118 {
		t.Errorf("position changed: %+v", decoded)
	}
	if !decoded.SavedAt.Equal(saved) {
		t.Errorf("SavedAt = %v, want %v", decoded.SavedAt, saved)
	}
	if got := decoded.Answers[101]; got != snap.Answers[101] {
		t.Errorf("answer 101 = %+v, want %+v", got, snap.Answers[101])
	}

	if _, err := session.DecodeSnapshot([]byte("not json")); err == nil {
		t.Error("expected error for undecodable payload")
	}

	// A payload without answers decodes to an empty map, not nil.
	bare, err := session.DecodeSnapshot([]byte(`{"user_id":1,"test_id":2}`))
	if err != nil {
		t.Fatalf("DecodeSnapshot bare: %v", err)
	}
	if bare.Answers == nil {
		t.Error("Answers = nil, want empty map")
	}
}
