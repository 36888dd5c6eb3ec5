package models

// LoginRequest represents the login credentials
type LoginRequest struct {
	// User's email address
	Email string `json:"email" example:"user@example.com"`
	// User's password
	Password string `json:"password" example:"password123"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	// JWT token for authentication
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// HumanizeRequest is the body of POST /api/humanize and POST /api/jobs.
type HumanizeRequest struct {
	Text string `json:"text"`
}

// HumanizeResponse mirrors the orchestrator result for the synchronous path.
type HumanizeResponse struct {
	Success    bool   `json:"success"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	WordCount  int    `json:"word_count,omitempty"`
	Reconciled bool   `json:"reconciled,omitempty"`
}

// APIResponse represents a generic API response
type APIResponse struct {
	// Status of the response (success/error)
	Status string `json:"status" example:"success"`
	// Response message
	Message string `json:"message" example:"Operation completed successfully"`
	// Optional data payload
	Data interface{} `json:"data,omitempty"`
}
