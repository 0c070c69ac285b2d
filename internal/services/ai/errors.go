// File: internal/services/ai/errors.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type ErrorType string

const (
	ErrTypeConfig    ErrorType = "CONFIG"
	ErrTypeAuth      ErrorType = "AUTH"
	ErrTypeQuota     ErrorType = "QUOTA"
	ErrTypeRateLimit ErrorType = "RATE_LIMIT"
	ErrTypeNetwork   ErrorType = "NETWORK"
	ErrTypeTimeout   ErrorType = "TIMEOUT"
	ErrTypeProvider  ErrorType = "PROVIDER"
)

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

// TypeOf returns the classification of err, or PROVIDER for errors that did
// not come from this package.
func TypeOf(err error) ErrorType {
	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr.Type
	}
	return ErrTypeProvider
}

// classify maps a go-openai or transport error onto an AIError.
func classify(operation, model string, err error) *AIError {
	out := &AIError{Type: ErrTypeProvider, Operation: operation, Model: model, Message: "completion request failed", Cause: err}

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		out.Type, out.Message = ErrTypeTimeout, "completion timed out"
	case errors.As(err, &apiErr):
		out.Code = apiErr.HTTPStatusCode
		out.Type = typeForStatus(apiErr.HTTPStatusCode, apiErr.Type, fmt.Sprint(apiErr.Code))
		out.Message = apiErr.Message
	case errors.As(err, &reqErr):
		out.Code = reqErr.HTTPStatusCode
		out.Type = typeForStatus(reqErr.HTTPStatusCode, "", fmt.Sprint(reqErr.Err))
	case errors.As(err, &netErr):
		out.Type, out.Message = ErrTypeNetwork, "completion service unreachable"
		if netErr.Timeout() {
			out.Type, out.Message = ErrTypeTimeout, "completion timed out"
		}
	}
	return out
}

func typeForStatus(status int, errType, detail string) ErrorType {
	if errType == "insufficient_quota" || strings.Contains(detail, "insufficient_quota") {
		return ErrTypeQuota
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrTypeAuth
	case http.StatusPaymentRequired:
		return ErrTypeQuota
	case http.StatusTooManyRequests:
		return ErrTypeRateLimit
	default:
		return ErrTypeProvider
	}
}
