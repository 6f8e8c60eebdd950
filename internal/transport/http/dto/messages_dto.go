package dto

type SendMessageRequest struct {
	MatchID  string  `json:"match_id"`
	SenderID string  `json:"sender_id"`
	Content  string  `json:"content"`
	ImageURL *string `json:"image_url,omitempty"`
}
