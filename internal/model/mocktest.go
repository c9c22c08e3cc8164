package model

import "time"

// TestStatus enumerates the lifecycle states of a mock test.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "DRAFT"
	TestStatusPublished TestStatus = "PUBLISHED"
	TestStatusArchived  TestStatus = "ARCHIVED"
)

// MockTest represents one purchasable, attemptable paper within a pack.
type MockTest struct {
	ID              int64      `json:"id"`
	PackID          int64      `json:"pack_id"`
	Title           string     `json:"title"`
	ExamType        string     `json:"exam_type"`
	DurationSeconds int        `json:"duration_seconds"`
	QuestionCount   int        `json:"question_count"`
	Status          TestStatus `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TestPaper is the Redis-cached payload served to candidates (no answers).
type TestPaper struct {
	TestID          int64                  `json:"test_id"`
	Title           string                 `json:"title"`
	ExamType        string                 `json:"exam_type"`
	DurationSeconds int                    `json:"duration_seconds"`
	Questions       []QuestionForCandidate `json:"questions"`
}

// CreateTestRequest is the payload for creating a new mock test.
type CreateTestRequest struct {
	PackID          int64  `json:"pack_id" binding:"required"`
	Title           string `json:"title" binding:"required,min=3,max=255"`
	ExamType        string `json:"exam_type" binding:"required,oneof=jee_main mht_cet"`
	DurationSeconds int    `json:"duration_seconds" binding:"omitempty,min=60,max=21600"`
}

// UpdateTestRequest is the payload for updating an existing mock test.
type UpdateTestRequest struct {
	Title           string `json:"title" binding:"omitempty,min=3,max=255"`
	DurationSeconds int    `json:"duration_seconds" binding:"omitempty,min=60,max=21600"`
}
