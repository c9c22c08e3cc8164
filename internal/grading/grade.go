package grading

import (
	"slices"

	"github.com/rtagency/mocktest-backend/internal/model"
)

// Grade computes the graded outcome of an attempt. It is a pure function:
// no side effects, and identical inputs always produce an identical result.
// Identity fields (id, user, test, timestamp) are stamped by the caller so
// the grading itself stays idempotent.
//
// Answers are keyed by question id; a missing key is an unvisited question.
// Correctness is exact string equality with the question's correct answer.
func Grade(questions []model.Question, answers map[int64]AnswerState, durationUsed int, pol Policy) *model.GradedResult {
	var correct, wrong int

	wrongQuestions := make([]model.WrongQuestion, 0)
	statuses := make([]model.QuestionOutcome, 0, len(questions))

	for _, q := range questions {
		ans := answers[q.ID]

		isCorrect := ans.Answered() && ans.Value == q.CorrectAnswer
		switch {
		case isCorrect:
			correct++
		case ans.Answered():
			wrong++
			wrongQuestions = append(wrongQuestions, model.WrongQuestion{
				QuestionID:    q.ID,
				QuestionText:  q.Prompt,
				UserAnswer:    ans.Value,
				CorrectAnswer: q.CorrectAnswer,
			})
		}

		statuses = append(statuses, model.QuestionOutcome{
			QuestionID: q.ID,
			Status:     DeriveStatus(ans, true, isCorrect),
		})
	}

	unanswered := len(questions) - correct - wrong

	// Answers that reference no question in the paper get a placeholder
	// row. They never count toward marks; sorted so identical inputs keep
	// producing identical results.
	for _, id := range OrphanAnswers(questions, answers) {
		statuses = append(statuses, model.QuestionOutcome{
			QuestionID: id,
			Status:     model.StatusDataMissing,
		})
	}

	return &model.GradedResult{
		MarksObtained:    correct,
		TotalMarks:       len(questions),
		Score:            pol.Score(correct, wrong, unanswered),
		ScoringPolicy:    pol.Name(),
		WrongQuestions:   wrongQuestions,
		QuestionStatuses: statuses,
		DurationUsed:     durationUsed,
	}
}

// OrphanAnswers returns answer keys, sorted ascending, that reference no
// question in the loaded paper. Such entries indicate a corrupt checkpoint
// or catalog; Grade reports them as placeholder rows and the caller should
// log them rather than aborting the whole submission.
func OrphanAnswers(questions []model.Question, answers map[int64]AnswerState) []int64 {
	known := make(map[int64]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}

	var orphans []int64
	for id := range answers {
		if _, ok := known[id]; !ok {
			orphans = append(orphans, id)
		}
	}
	slices.Sort(orphans)
	return orphans
}
