package enums

import "testing"

func TestParseSwipeDecision(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  SwipeDecision
		ok    bool
	}{
		{name: "like", input: "like", want: SwipeDecisionLike, ok: true},
		{name: "pass upper with spaces", input: "  PASS ", want: SwipeDecisionPass, ok: true},
		{name: "dislike is not a decision", input: "dislike", ok: false},
		{name: "empty", input: "", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseSwipeDecision(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("unexpected parse result: got (%q, %v) want (%q, %v)", got, ok, tc.want, tc.ok)
			}
		})
	}
}
