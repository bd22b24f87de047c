package orchestrator

import "testing"

func TestSanitizeRoleNames(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"leading student label", "Student: what does osmosis mean?", "what does osmosis mean?"},
		{"leading examiner label", "Examiner> Define entropy.", "Define entropy."},
		{"the-prefixed label", "The Evaluator: found two issues", "found two issues"},
		{"inline self reference", "As the Student, I wonder about that.", "I wonder about that."},
		{"multiline labels", "Student: first line\nStudent: second line", "first line\nsecond line"},
		{"plain text untouched", "Why does the cell need ATP?", "Why does the cell need ATP?"},
		{"role word mid-sentence kept", "A student of physics would know this.", "A student of physics would know this."},
		{"whitespace trimmed", "  \n Controller: done \n", "done"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeRoleNames(tt.in); got != tt.want {
				t.Errorf("SanitizeRoleNames(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
