package models

// AnalysisRequest is the body the relay accepts and forwards upstream.
type AnalysisRequest struct {
	Text string `json:"text"`
}

// AnalysisResult is the canonical view of whatever the upstream returned.
// Score is nominally in [0,1] but is not clamped.
type AnalysisResult struct {
	Sentiment string  `json:"sentiment"`
	Score     float64 `json:"score"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

const (
	ERROR_BACKEND         = "Backend error"
	ERROR_BACKEND_CONNECT = "Failed to connect to backend"
	STATUS_HEALTHY        = "healthy"
	STATUS_READY          = "ready"
	STATUS_NOT_READY      = "not_ready"
)
