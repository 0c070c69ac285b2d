// File: internal/dtos/dtos.go
package dtos

// ChatRequestDTO is the body of POST /api/chat.
type ChatRequestDTO struct {
	Message string `json:"message"`
}

// CredentialsDTO is the JSON form of /login and /signup. Email is only read
// on signup and may be empty.
type CredentialsDTO struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

// StressLogRequestDTO is the body of POST /api/log_stress. Level is a
// pointer so a missing value can be told apart from zero.
type StressLogRequestDTO struct {
	Level  *int   `json:"level"`
	Source string `json:"source"`
}

// HelpRequestDTO is the body of POST /api/request_help.
type HelpRequestDTO struct {
	Severity string `json:"severity,omitempty"`
	Message  string `json:"message"`
}

// StatusResponse is the acknowledgement shape the front end checks for.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type HelpRequestResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	AfterHours bool   `json:"after_hours"`
}

// ErrorResponse is every JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func Success(message string) StatusResponse {
	return StatusResponse{Status: "success", Message: message}
}
