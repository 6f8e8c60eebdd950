package dto

import "time"

type SwipeRequest struct {
	UserID       string `json:"user_id"`
	TargetUserID string `json:"target_user_id"`
	Action       string `json:"action"`
}

// SwipeResponse is the stored decision row plus the match outcome.
type SwipeResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	TargetUserID string    `json:"target_user_id"`
	Action       string    `json:"action"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Matched      bool      `json:"matched"`
	MatchID      *string   `json:"match_id,omitempty"`
}
