// File: internal/services/chat/errors.go
package chat

import "fmt"

type ErrorType string

const (
	ErrTypeConfig  ErrorType = "CONFIG"
	ErrTypeHistory ErrorType = "HISTORY"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	UserID    uint
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewHistoryError(operation string, userID uint, cause error) *ChatError {
	return &ChatError{Type: ErrTypeHistory, Operation: operation, Message: "could not load conversation", UserID: userID, Cause: cause}
}
