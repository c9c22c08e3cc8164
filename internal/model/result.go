package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionStatus classifies a question at a point in time. The same set is
// used for the live palette and the final graded breakdown; correctness
// statuses only appear after submission.
type QuestionStatus string

const (
	StatusNotVisited     QuestionStatus = "NOT_VISITED"
	StatusNotAnswered    QuestionStatus = "NOT_ANSWERED"
	StatusAnswered       QuestionStatus = "ANSWERED"
	StatusMarked         QuestionStatus = "MARKED"
	StatusAnsweredMarked QuestionStatus = "ANSWERED_MARKED"
	StatusCorrectSolved  QuestionStatus = "CORRECT_SOLVED"
	StatusWrongSolved    QuestionStatus = "WRONG_SOLVED"
	// StatusDataMissing marks an answer whose question is absent from the
	// loaded paper. It renders as a placeholder row instead of failing the
	// whole grade.
	StatusDataMissing QuestionStatus = "DATA_MISSING"
)

// WrongQuestion is one incorrectly answered question in a graded result,
// kept for the post-test review ("notebook") screens.
type WrongQuestion struct {
	QuestionID    int64  `json:"question_id"`
	QuestionText  string `json:"question_text"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
}

// QuestionOutcome pairs a question with its final status, in paper order.
type QuestionOutcome struct {
	QuestionID int64          `json:"question_id"`
	Status     QuestionStatus `json:"status"`
}

// GradedResult is the immutable outcome of one attempt, produced exactly once
// at submission. Grading never depends on whether persistence succeeded.
type GradedResult struct {
	ID               uuid.UUID         `json:"id"`
	UserID           int               `json:"user_id"`
	TestID           int64             `json:"test_id"`
	MarksObtained    int               `json:"marks_obtained"`
	TotalMarks       int               `json:"total_marks"`
	Score            float64           `json:"score"`
	ScoringPolicy    string            `json:"scoring_policy"`
	WrongQuestions   []WrongQuestion   `json:"wrong_questions"`
	QuestionStatuses []QuestionOutcome `json:"question_statuses"`
	DurationUsed     int               `json:"duration_used"`
	SubmittedAt      time.Time         `json:"submitted_at"`
}

// TestResultEntry is one candidate's outcome in the admin per-test listing.
type TestResultEntry struct {
	ID            uuid.UUID `json:"id"`
	UserID        int       `json:"user_id"`
	UserName      string    `json:"user_name"`
	MarksObtained int       `json:"marks_obtained"`
	TotalMarks    int       `json:"total_marks"`
	Score         float64   `json:"score"`
	DurationUsed  int       `json:"duration_used"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ResultSummary is the lightweight row used by result listings.
type ResultSummary struct {
	ID            uuid.UUID `json:"id"`
	TestID        int64     `json:"test_id"`
	TestTitle     string    `json:"test_title"`
	MarksObtained int       `json:"marks_obtained"`
	TotalMarks    int       `json:"total_marks"`
	Score         float64   `json:"score"`
	DurationUsed  int       `json:"duration_used"`
	SubmittedAt   time.Time `json:"submitted_at"`
}
