package types

// DescribeRequest is the payload for POST /describe.
type DescribeRequest struct {
	// Raw pixel bytes, base64-encoded in JSON.
	Pixels []byte `json:"pixels"`
	// Image width in pixels.
	// example: 64
	Width int `json:"width" example:"64"`
	// Image height in pixels.
	// example: 64
	Height int `json:"height" example:"64"`
	// Bytes per row, including any padding. Must be >= width*4.
	// example: 256
	StrideBytes int `json:"stride_bytes" example:"256"`
	// Pixel format tag: 0=RGBA32, 1=BGRA32.
	// example: 0
	Format int `json:"format" example:"0"`
	// If true, the buffer is bottom-up and rows are flipped during conversion.
	FlipVertical bool `json:"flip_vertical,omitempty"`
	// Prompt guiding the description.
	// example: describe
	Prompt string `json:"prompt" example:"describe"`
}

// DescribeResponse is returned by POST /describe on success.
type DescribeResponse struct {
	// Request id correlating this submission.
	// example: 7
	RequestID int64 `json:"request_id" example:"7"`
	// Generated description text.
	Result string `json:"result"`
}

// ConfigRequest mutates runtime configuration via POST /config.
// Absent fields are left unchanged.
type ConfigRequest struct {
	// Model directory; empty string resets to the default location.
	ModelDir *string `json:"model_dir,omitempty"`
	// Sampling temperature.
	Temperature *float64 `json:"temperature,omitempty"`
	// Token budget per generation; must be > 0.
	MaxTokens *int `json:"max_tokens,omitempty"`
	// Whether a new request preempts the one in flight.
	CancelOnNewRequest *bool `json:"cancel_on_new_request,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid dimensions
	Error string `json:"error" example:"invalid dimensions"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Load controller state: idle, loading or loaded.
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Resolved model directory ("" until configured or defaulted).
	ModelDir string `json:"model_dir,omitempty"`
	// Last load error observed (if any).
	LastError string `json:"last_error,omitempty"`
	// Whether a generation is currently tracked.
	GenerationActive bool `json:"generation_active"`
	// Number of requests awaiting delivery.
	// example: 1
	PendingRequests int `json:"pending_requests" example:"1"`
	// Total successful model loads.
	// example: 2
	LoadsTotal uint64 `json:"loads_total" example:"2"`
	// Total generations started.
	// example: 40
	GenerationsTotal uint64 `json:"generations_total" example:"40"`
	// Total tokens produced across all generations.
	// example: 5120
	TokensTotal uint64 `json:"tokens_total" example:"5120"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
