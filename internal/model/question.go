package model

// AnswerType distinguishes option-pick questions from integer-entry questions.
// It is an explicit field on every question; nothing at runtime derives it
// from the question's ordinal position.
type AnswerType string

const (
	AnswerTypeChoice  AnswerType = "choice"
	AnswerTypeInteger AnswerType = "integer"
)

// Question represents a single test question. Prompt may contain an HTML
// fragment with embedded LaTeX; Options is empty for integer questions.
type Question struct {
	ID            int64      `json:"id"`
	TestID        int64      `json:"test_id"`
	Subject       string     `json:"subject"`
	Prompt        string     `json:"prompt"`
	Options       []string   `json:"options,omitempty"`
	AnswerType    AnswerType `json:"answer_type"`
	CorrectAnswer string     `json:"correct_answer,omitempty"`
	Image         *string    `json:"image,omitempty"`
	OrderNum      int        `json:"order_num"`
}

// QuestionForCandidate is a question with the correct answer stripped,
// safe to send to a candidate during an attempt.
type QuestionForCandidate struct {
	ID         int64      `json:"id"`
	Subject    string     `json:"subject"`
	Prompt     string     `json:"prompt"`
	Options    []string   `json:"options,omitempty"`
	AnswerType AnswerType `json:"answer_type"`
	Image      *string    `json:"image,omitempty"`
	OrderNum   int        `json:"order_num"`
}

// ForCandidate strips grading fields from a question.
func (q Question) ForCandidate() QuestionForCandidate {
	return QuestionForCandidate{
		ID:         q.ID,
		Subject:    q.Subject,
		Prompt:     q.Prompt,
		Options:    q.Options,
		AnswerType: q.AnswerType,
		Image:      q.Image,
		OrderNum:   q.OrderNum,
	}
}

// ReplaceQuestionsRequest is the payload for bulk replacing a test's questions.
type ReplaceQuestionsRequest struct {
	Questions []AddQuestionRequest `json:"questions" binding:"dive"`
}

// AddQuestionRequest is the payload for adding a question to a test.
type AddQuestionRequest struct {
	Subject       string   `json:"subject" binding:"required,min=2,max=50"`
	Prompt        string   `json:"prompt" binding:"required,min=1"`
	Options       []string `json:"options" binding:"omitempty,max=6"`
	AnswerType    string   `json:"answer_type" binding:"required,oneof=choice integer"`
	CorrectAnswer string   `json:"correct_answer" binding:"required,max=500"`
	Image         *string  `json:"image" binding:"omitempty,url"`
	OrderNum      int      `json:"order_num" binding:"min=0"`
}
