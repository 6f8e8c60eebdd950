package model

import (
	"bytes"
	"time"

	"github.com/google/uuid"
)

// Match stores its pair canonically: User1ID sorts before User2ID.
type Match struct {
	ID            uuid.UUID  `json:"id"`
	User1ID       uuid.UUID  `json:"user1_id"`
	User2ID       uuid.UUID  `json:"user2_id"`
	MatchedAt     time.Time  `json:"matched_at"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

func (m Match) Has(userID uuid.UUID) bool {
	return m.User1ID == userID || m.User2ID == userID
}

func (m Match) Counterpart(userID uuid.UUID) uuid.UUID {
	if m.User1ID == userID {
		return m.User2ID
	}
	return m.User1ID
}

// OrderedPair returns the two ids in the order matches are stored in. It
// agrees with postgres uuid ordering, which compares raw bytes.
func OrderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) > 0 {
		return b, a
	}
	return a, b
}

// MatchParticipant carries the display fields of one side of a match.
type MatchParticipant struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
}

// MatchView is a match as seen by one of its users.
type MatchView struct {
	Match
	User1       MatchParticipant `json:"user1"`
	User2       MatchParticipant `json:"user2"`
	Counterpart MatchParticipant `json:"counterpart"`
}
