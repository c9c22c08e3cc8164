package exam

import (
	"fmt"
	"strings"
)

// Section maps a subject name to its question range within a paper.
// Start is a zero-based ordinal into the paper's question order.
type Section struct {
	Subject string
	Start   int
	Count   int
}

// OrdinalRange is an inclusive 1-based range of question ordinals.
type OrdinalRange struct {
	From int
	To   int
}

// Profile carries everything that varies between exam types: paper layout,
// duration, and marking scheme. Handing this to the session as data replaces
// the hard-coded index arithmetic the per-exam test pages used to duplicate.
type Profile struct {
	ExamType        string
	DurationSeconds int
	Sections        []Section
	ScoringPolicy   string
	// IntegerOrdinals marks which question positions take an integer answer.
	// Consumed only by the catalog importer, which converts the layout rule
	// into an explicit answer_type on each question record.
	IntegerOrdinals []OrdinalRange
}

// profiles is the built-in registry. Durations follow the published exam
// formats; a test record may override DurationSeconds per paper.
var profiles = map[string]Profile{
	"jee_main": {
		ExamType:        "jee_main",
		DurationSeconds: 10800,
		Sections: []Section{
			{Subject: "Physics", Start: 0, Count: 25},
			{Subject: "Chemistry", Start: 25, Count: 25},
			{Subject: "Mathematics", Start: 50, Count: 25},
		},
		ScoringPolicy: "jee_negative",
		IntegerOrdinals: []OrdinalRange{
			{From: 21, To: 25},
			{From: 46, To: 50},
			{From: 71, To: 75},
		},
	},
	"mht_cet": {
		ExamType:        "mht_cet",
		DurationSeconds: 3600,
		Sections: []Section{
			{Subject: "Physics", Start: 0, Count: 25},
			{Subject: "Chemistry", Start: 25, Count: 25},
			{Subject: "Mathematics", Start: 50, Count: 25},
		},
		ScoringPolicy: "flat",
	},
}

// ProfileFor resolves an exam type to its profile.
func ProfileFor(examType string) (Profile, error) {
	p, ok := profiles[examType]
	if !ok {
		return Profile{}, fmt.Errorf("unknown exam type %q", examType)
	}
	return p, nil
}

// SectionStart returns the zero-based index of the first question of the
// named subject. The lookup is case-insensitive.
func (p Profile) SectionStart(subject string) (int, bool) {
	for _, s := range p.Sections {
		if strings.EqualFold(s.Subject, subject) {
			return s.Start, true
		}
	}
	return 0, false
}

// SubjectAt returns the subject owning the given zero-based question index.
func (p Profile) SubjectAt(index int) string {
	for _, s := range p.Sections {
		if index >= s.Start && index < s.Start+s.Count {
			return s.Subject
		}
	}
	return ""
}

// IsIntegerOrdinal reports whether the 1-based question ordinal takes an
// integer answer under this profile's layout.
func (p Profile) IsIntegerOrdinal(ordinal int) bool {
	for _, r := range p.IntegerOrdinals {
		if ordinal >= r.From && ordinal <= r.To {
			return true
		}
	}
	return false
}
