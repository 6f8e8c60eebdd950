package dto

type CreateUserRequest struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Age         int       `json:"age"`
	Bio         string    `json:"bio"`
	Interests   []string  `json:"interests"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Location    *Location `json:"location,omitempty"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
