package exam

import "testing"

func TestProfileFor(t *testing.T) {
	jee, err := ProfileFor("jee_main")
	if err != nil {
		t.Fatalf("jee_main: %v", err)
	}
	if jee.DurationSeconds != 10800 {
		t.Errorf("jee_main duration = %d, want 10800", jee.DurationSeconds)
	}
	if jee.ScoringPolicy != "jee_negative" {
		t.Errorf("jee_main policy = %q, want jee_negative", jee.ScoringPolicy)
	}

	cet, err := ProfileFor("mht_cet")
	if err != nil {
		t.Fatalf("mht_cet: %v", err)
	}
	if cet.DurationSeconds != 3600 {
		t.Errorf("mht_cet duration = %d, want 3600", cet.DurationSeconds)
	}
	if len(cet.IntegerOrdinals) != 0 {
		t.Errorf("mht_cet has integer ordinals: %v", cet.IntegerOrdinals)
	}

	if _, err := ProfileFor("neet"); err == nil {
		t.Error("expected error for unknown exam type")
	}
}

func TestSectionStart(t *testing.T) {
	p, _ := ProfileFor("jee_main")

	tests := []struct {
		subject string
		want    int
		ok      bool
	}{
		{"Physics", 0, true},
		{"physics", 0, true},
		{"Chemistry", 25, true},
		{"MATHEMATICS", 50, true},
		{"Biology", 0, false},
	}

	for _, tc := range tests {
		got, ok := p.SectionStart(tc.subject)
		if got != tc.want || ok != tc.ok {
			t.Errorf("SectionStart(%q) = (%d, %v), want (%d, %v)", tc.subject, got, ok, tc.want, tc.ok)
		}
	}
}

func TestSubjectAt(t *testing.T) {
	p, _ := ProfileFor("jee_main")

	tests := []struct {
		index int
		want  string
	}{
		{0, "Physics"},
		{24, "Physics"},
		{25, "Chemistry"},
		{50, "Mathematics"},
		{74, "Mathematics"},
		{75, ""},
	}

	for _, tc := range tests {
		if got := p.SubjectAt(tc.index); got != tc.want {
			t.Errorf("SubjectAt(%d) = %q, want %q", tc.index, got, tc.want)
		}
	}
}

func TestIsIntegerOrdinal(t *testing.T) {
	jee, _ := ProfileFor("jee_main")

	// The last five ordinals of each JEE section are integer questions.
	tests := []struct {
		ordinal int
		want    bool
	}{
		{1, false},
		{20, false},
		{21, true},
		{25, true},
		{26, false},
		{46, true},
		{50, true},
		{51, false},
		{70, false},
		{71, true},
		{75, true},
	}

	for _, tc := range tests {
		if got := jee.IsIntegerOrdinal(tc.ordinal); got != tc.want {
			t.Errorf("IsIntegerOrdinal(%d) = %v, want %v", tc.ordinal, got, tc.want)
		}
	}

	cet, _ := ProfileFor("mht_cet")
	if cet.IsIntegerOrdinal(25) {
		t.Error("mht_cet should have no integer ordinals")
	}
}
