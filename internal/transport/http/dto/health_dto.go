package dto

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

type ReadinessResponse struct {
	OK       bool   `json:"ok"`
	Postgres string `json:"postgres,omitempty"`
}
