package model

import "time"

// IssueStatus tracks whether an issue report has been handled.
type IssueStatus string

const (
	IssueStatusOpen     IssueStatus = "OPEN"
	IssueStatusResolved IssueStatus = "RESOLVED"
)

// IssueReport is a candidate's complaint about one question, usually filed
// from the mistake-review screen.
type IssueReport struct {
	ID          int64       `json:"id"`
	UserID      int         `json:"user_id"`
	TestID      int64       `json:"test_id"`
	QuestionNum int         `json:"question_num"`
	Description string      `json:"description"`
	Status      IssueStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
}

// IssueReportEntry is one report in the admin listing, with the reporter's
// name joined in.
type IssueReportEntry struct {
	IssueReport
	UserName string `json:"user_name"`
}

// CreateIssueRequest is the payload for filing an issue report.
type CreateIssueRequest struct {
	TestID      int64  `json:"test_id" binding:"required"`
	QuestionNum int    `json:"question_num" binding:"required,min=1"`
	Description string `json:"description" binding:"required,min=10,max=2000"`
}

// ResolveIssueRequest updates an issue report's status.
type ResolveIssueRequest struct {
	Status IssueStatus `json:"status" binding:"required,oneof=OPEN RESOLVED"`
}
