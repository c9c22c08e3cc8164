package grading

import "fmt"

// Policy converts answer counts into a final score. The marking scheme is
// injected per exam type instead of being hard-coded: JEE Main papers carry
// negative marking, MHT-CET papers do not.
type Policy interface {
	Name() string
	Score(correct, wrong, unanswered int) float64
}

// NegativeMarking awards CorrectMarks per correct answer and deducts
// WrongPenalty per wrong answer. Unanswered questions score zero.
type NegativeMarking struct {
	CorrectMarks float64
	WrongPenalty float64
}

func (p NegativeMarking) Name() string {
	return fmt.Sprintf("negative_%+g_%+g", p.CorrectMarks, -p.WrongPenalty)
}

func (p NegativeMarking) Score(correct, wrong, _ int) float64 {
	return float64(correct)*p.CorrectMarks - float64(wrong)*p.WrongPenalty
}

// FlatMarking awards one mark per correct answer with no penalty.
type FlatMarking struct{}

func (FlatMarking) Name() string { return "flat" }

func (FlatMarking) Score(correct, _, _ int) float64 { return float64(correct) }

// PolicyFor resolves a policy by registry name.
func PolicyFor(name string) (Policy, error) {
	switch name {
	case "jee_negative":
		return NegativeMarking{CorrectMarks: 4, WrongPenalty: 1}, nil
	case "flat":
		return FlatMarking{}, nil
	default:
		return nil, fmt.Errorf("unknown scoring policy %q", name)
	}
}
