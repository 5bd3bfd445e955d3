package http

// APIResponse represents the envelope used by the service endpoints (/api/*).
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// LegacyResponse is the {"status": "...", "message": "..."} body the
// browser frontend and existing clients expect.
type LegacyResponse struct {
	Status  string `json:"status" example:"error"`
	Message string `json:"message,omitempty" example:"Jumlah ternak tidak boleh negatif"`
}

// ValidationError represents validation error detail.
type ValidationError struct {
	Code    string `json:"code,omitempty" example:"ERR_GTE"`
	Field   string `json:"field,omitempty" example:"ternak_besar"`
	Message string `json:"message,omitempty" example:"ternak_besar must be greater than or equal to 0"`
}

const (
	StatusSuccess = "success"
	StatusFailed  = "error"
)
