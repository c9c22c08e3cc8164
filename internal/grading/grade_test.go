package grading

import (
	"reflect"
	"testing"

	"github.com/rtagency/mocktest-backend/internal/model"
)

func sampleQuestions() []model.Question {
	return []model.Question{
		{ID: 101, TestID: 1, Subject: "Physics", Prompt: "Q1", Options: []string{"a", "b"}, AnswerType: model.AnswerTypeChoice, CorrectAnswer: "a", OrderNum: 1},
		{ID: 102, TestID: 1, Subject: "Physics", Prompt: "Q2", Options: []string{"c", "d"}, AnswerType: model.AnswerTypeChoice, CorrectAnswer: "d", OrderNum: 2},
		{ID: 103, TestID: 1, Subject: "Chemistry", Prompt: "Q3", AnswerType: model.AnswerTypeInteger, CorrectAnswer: "42", OrderNum: 3},
	}
}

func TestDeriveStatus_LivePrecedence(t *testing.T) {
	// Exhaustive truth table over (answered, marked, visited).
	tests := []struct {
		answered bool
		marked   bool
		visited  bool
		want     model.QuestionStatus
	}{
		{true, true, true, model.StatusAnsweredMarked},
		{true, true, false, model.StatusAnsweredMarked},
		{false, true, true, model.StatusMarked},
		{false, true, false, model.StatusMarked},
		{true, false, true, model.StatusAnswered},
		{true, false, false, model.StatusAnswered},
		{false, false, true, model.StatusNotAnswered},
		{false, false, false, model.StatusNotVisited},
	}

	for _, tc := range tests {
		st := AnswerState{Visited: tc.visited, Marked: tc.marked}
		if tc.answered {
			st.Value = "x"
		}
		if got := DeriveStatus(st, false, false); got != tc.want {
			t.Errorf("DeriveStatus(answered=%v marked=%v visited=%v) = %s, want %s",
				tc.answered, tc.marked, tc.visited, got, tc.want)
		}
	}
}

func TestDeriveStatus_Final(t *testing.T) {
	tests := []struct {
		name      string
		st        AnswerState
		isCorrect bool
		want      model.QuestionStatus
	}{
		{"answered correct", AnswerState{Value: "a", Visited: true}, true, model.StatusCorrectSolved},
		{"answered wrong", AnswerState{Value: "b", Visited: true}, false, model.StatusWrongSolved},
		{"answered and marked resolves by correctness", AnswerState{Value: "a", Visited: true, Marked: true}, true, model.StatusCorrectSolved},
		{"marked unanswered", AnswerState{Visited: true, Marked: true}, false, model.StatusMarked},
		{"visited unanswered", AnswerState{Visited: true}, false, model.StatusNotVisited},
		{"untouched", AnswerState{}, false, model.StatusNotVisited},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveStatus(tc.st, true, tc.isCorrect); got != tc.want {
				t.Errorf("got %s, want %s", got, tc.want)
			}
		})
	}
}

func TestGrade_BasicFlow(t *testing.T) {
	// Answer Q1 correctly, mark Q2 without answering, leave Q3 unvisited.
	questions := sampleQuestions()
	answers := map[int64]AnswerState{
		101: {Value: "a", Visited: true},
		102: {Visited: true, Marked: true},
	}

	result := Grade(questions, answers, 120, FlatMarking{})

	if result.MarksObtained != 1 {
		t.Errorf("MarksObtained = %d, want 1", result.MarksObtained)
	}
	if result.TotalMarks != 3 {
		t.Errorf("TotalMarks = %d, want 3", result.TotalMarks)
	}
	if result.DurationUsed != 120 {
		t.Errorf("DurationUsed = %d, want 120", result.DurationUsed)
	}
	if len(result.WrongQuestions) != 0 {
		t.Errorf("WrongQuestions = %v, want none", result.WrongQuestions)
	}

	wantStatuses := []model.QuestionStatus{
		model.StatusCorrectSolved,
		model.StatusMarked,
		model.StatusNotVisited,
	}
	for i, want := range wantStatuses {
		if got := result.QuestionStatuses[i].Status; got != want {
			t.Errorf("status[%d] = %s, want %s", i, got, want)
		}
	}
}

func TestGrade_Idempotent(t *testing.T) {
	questions := sampleQuestions()
	answers := map[int64]AnswerState{
		101: {Value: "b", Visited: true},
		102: {Value: "d", Visited: true, Marked: true},
		103: {Value: "41", Visited: true},
	}

	first := Grade(questions, answers, 300, NegativeMarking{CorrectMarks: 4, WrongPenalty: 1})
	second := Grade(questions, answers, 300, NegativeMarking{CorrectMarks: 4, WrongPenalty: 1})

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated grading differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestGrade_WrongQuestions(t *testing.T) {
	questions := sampleQuestions()
	answers := map[int64]AnswerState{
		101: {Value: "b", Visited: true},  // wrong
		102: {Value: "d", Visited: true},  // correct
		103: {Value: "41", Visited: true}, // wrong
	}

	result := Grade(questions, answers, 0, FlatMarking{})

	if len(result.WrongQuestions) != 2 {
		t.Fatalf("WrongQuestions = %d entries, want 2", len(result.WrongQuestions))
	}
	wq := result.WrongQuestions[0]
	if wq.QuestionID != 101 || wq.UserAnswer != "b" || wq.CorrectAnswer != "a" {
		t.Errorf("unexpected wrong question entry: %+v", wq)
	}
}

func TestGrade_ClearedAnswerIsUnanswered(t *testing.T) {
	// A cleared answer keeps visited=true but must grade as unanswered,
	// not wrong.
	questions := sampleQuestions()
	answers := map[int64]AnswerState{
		101: {Value: "", Visited: true},
	}

	result := Grade(questions, answers, 0, NegativeMarking{CorrectMarks: 4, WrongPenalty: 1})

	if result.Score != 0 {
		t.Errorf("Score = %v, want 0 (no negative marking for cleared answer)", result.Score)
	}
	if len(result.WrongQuestions) != 0 {
		t.Errorf("cleared answer counted as wrong: %+v", result.WrongQuestions)
	}
	if got := result.QuestionStatuses[0].Status; got != model.StatusNotVisited {
		t.Errorf("final status = %s, want %s", got, model.StatusNotVisited)
	}
}

func TestScoringPolicies(t *testing.T) {
	tests := []struct {
		name       string
		policy     Policy
		correct    int
		wrong      int
		unanswered int
		want       float64
	}{
		{"jee negative marking", NegativeMarking{CorrectMarks: 4, WrongPenalty: 1}, 10, 4, 6, 36},
		{"jee all correct", NegativeMarking{CorrectMarks: 4, WrongPenalty: 1}, 25, 0, 0, 100},
		{"jee net negative", NegativeMarking{CorrectMarks: 4, WrongPenalty: 1}, 1, 5, 0, -1},
		{"flat ignores wrong", FlatMarking{}, 10, 4, 6, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.Score(tc.correct, tc.wrong, tc.unanswered); got != tc.want {
				t.Errorf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPolicyFor(t *testing.T) {
	if _, err := PolicyFor("jee_negative"); err != nil {
		t.Errorf("jee_negative: %v", err)
	}
	if _, err := PolicyFor("flat"); err != nil {
		t.Errorf("flat: %v", err)
	}
	if _, err := PolicyFor("bogus"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestOrphanAnswers(t *testing.T) {
	questions := sampleQuestions()
	answers := map[int64]AnswerState{
		101: {Value: "a"},
		999: {Value: "ghost"},
	}

	orphans := OrphanAnswers(questions, answers)
	if len(orphans) != 1 || orphans[0] != 999 {
		t.Errorf("OrphanAnswers = %v, want [999]", orphans)
	}
}

func TestGrade_OrphanPlaceholders(t *testing.T) {
	questions := sampleQuestions()
	answers := map[int64]AnswerState{
		102: {Value: "d", Visited: true}, // correct
		999: {Value: "ghost", Visited: true},
		555: {Value: "ghost", Visited: true},
	}

	result := Grade(questions, answers, 0, FlatMarking{})

	// Orphans never touch the marks, only the breakdown.
	if result.MarksObtained != 1 || result.TotalMarks != len(questions) {
		t.Errorf("marks = %d/%d, want 1/%d", result.MarksObtained, result.TotalMarks, len(questions))
	}
	if len(result.WrongQuestions) != 0 {
		t.Errorf("orphan counted as wrong: %+v", result.WrongQuestions)
	}

	want := len(questions) + 2
	if len(result.QuestionStatuses) != want {
		t.Fatalf("QuestionStatuses = %d rows, want %d", len(result.QuestionStatuses), want)
	}
	// Placeholder rows follow the paper in ascending id order.
	for i, wantRow := range []model.QuestionOutcome{
		{QuestionID: 555, Status: model.StatusDataMissing},
		{QuestionID: 999, Status: model.StatusDataMissing},
	} {
		if got := result.QuestionStatuses[len(questions)+i]; got != wantRow {
			t.Errorf("placeholder[%d] = %+v, want %+v", i, got, wantRow)
		}
	}

	second := Grade(questions, answers, 0, FlatMarking{})
	if !reflect.DeepEqual(result, second) {
		t.Errorf("grading with orphans is not deterministic")
	}
}
