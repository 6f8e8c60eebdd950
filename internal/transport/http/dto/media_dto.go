package dto

type PresignRequest struct {
	OwnerID     string `json:"owner_id"`
	Kind        string `json:"kind"`
	ContentType string `json:"content_type"`
}
