package enums

import "strings"

type SwipeDecision string

const (
	SwipeDecisionLike SwipeDecision = "like"
	SwipeDecisionPass SwipeDecision = "pass"
)

func ParseSwipeDecision(input string) (SwipeDecision, bool) {
	switch SwipeDecision(strings.ToLower(strings.TrimSpace(input))) {
	case SwipeDecisionLike:
		return SwipeDecisionLike, true
	case SwipeDecisionPass:
		return SwipeDecisionPass, true
	default:
		return "", false
	}
}

func (d SwipeDecision) Valid() bool {
	return d == SwipeDecisionLike || d == SwipeDecisionPass
}
