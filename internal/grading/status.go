package grading

import "github.com/rtagency/mocktest-backend/internal/model"

// AnswerState is the mutable per-question state of an attempt, keyed by
// question id. Visited and Marked are monotonic: once true they stay true;
// clearing the value does not reset them.
type AnswerState struct {
	Value   string `json:"value"`
	Visited bool   `json:"visited"`
	Marked  bool   `json:"marked"`
}

// Answered reports whether a non-empty answer is currently selected.
func (a AnswerState) Answered() bool { return a.Value != "" }

// DeriveStatus is the single classification function shared by the live
// palette and the final graded breakdown.
//
// Live precedence, highest first:
//
//	answered && marked -> ANSWERED_MARKED (green with marker dot)
//	marked             -> MARKED
//	answered           -> ANSWERED
//	visited            -> NOT_ANSWERED
//	otherwise          -> NOT_VISITED
//
// In the final breakdown correctness is no longer hidden, so any answered
// question collapses to CORRECT_SOLVED or WRONG_SOLVED; an unanswered marked
// question stays MARKED and everything else is NOT_VISITED.
func DeriveStatus(st AnswerState, final bool, isCorrect bool) model.QuestionStatus {
	if final {
		switch {
		case st.Answered() && isCorrect:
			return model.StatusCorrectSolved
		case st.Answered():
			return model.StatusWrongSolved
		case st.Marked:
			return model.StatusMarked
		default:
			return model.StatusNotVisited
		}
	}

	switch {
	case st.Answered() && st.Marked:
		return model.StatusAnsweredMarked
	case st.Marked:
		return model.StatusMarked
	case st.Answered():
		return model.StatusAnswered
	case st.Visited:
		return model.StatusNotAnswered
	default:
		return model.StatusNotVisited
	}
}
