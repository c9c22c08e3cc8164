package websocket

import (
	"github.com/rtagency/mocktest-backend/internal/model"
	"github.com/rtagency/mocktest-backend/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	// ActionAnswer records a selected option or integer entry.
	ActionAnswer Action = "answer"
	// ActionView navigates directly to a question index.
	ActionView Action = "view"
	// ActionSaveNext validates the current answer and advances.
	ActionSaveNext Action = "save_next"
	// ActionMark flags the current question for review and advances.
	ActionMark Action = "mark"
	// ActionClear wipes the current question's answer.
	ActionClear Action = "clear"
	// ActionJump moves to the first question of a subject.
	ActionJump Action = "jump"
	// ActionSubmit finalizes the attempt.
	ActionSubmit Action = "submit"
	// ActionState requests a fresh state snapshot.
	ActionState Action = "state"
	ActionPing  Action = "ping"
)

// RequestPayload is the single client message shape. Fields beyond Action
// are read per action: answer uses QuestionID and Value, view uses Index,
// jump uses Subject, submit uses Confirmed.
type RequestPayload struct {
	Action     Action `json:"action"`
	QuestionID int64  `json:"question_id,omitempty"`
	Value      string `json:"value,omitempty"`
	Index      int    `json:"index,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Confirmed  bool   `json:"confirmed,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError  Event = "error"
	EventState  Event = "state"
	EventGraded Event = "graded"
	EventPong   Event = "pong"
)

// StateResponse pushes the attempt state after every accepted mutation and
// on request.
type StateResponse struct {
	Event Event         `json:"event"`
	State session.State `json:"state"`
}

// GradedResponse delivers the final result, whether submission was manual
// or triggered by the server-side timer.
type GradedResponse struct {
	Event  Event               `json:"event"`
	Result *model.GradedResult `json:"result"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
