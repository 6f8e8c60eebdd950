package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/yjw768/groupup/internal/domain/enums"
)

// SwipeDecision is the single row kept per ordered (actor, target) pair.
type SwipeDecision struct {
	ID        uuid.UUID           `json:"id"`
	ActorID   uuid.UUID           `json:"user_id"`
	TargetID  uuid.UUID           `json:"target_user_id"`
	Decision  enums.SwipeDecision `json:"action"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Matched   bool                `json:"matched"`
}
