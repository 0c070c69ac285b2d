// File: internal/services/chat/types.go
package chat

import (
	"time"

	"github.com/iyunix/go-wellness/internal/domain"
)

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Recorder receives pipeline measurements. *metrics.Metrics satisfies it.
type Recorder interface {
	ObserveReply(outcome string)
	ObserveCompletion(d time.Duration, errType string)
}

// Reply is the body of a chat response.
type Reply struct {
	Response  string           `json:"response"`
	Sentiment domain.Sentiment `json:"sentiment"`
	Action    domain.Action    `json:"action"`
}

const (
	OutcomeCrisisInput  = "crisis_input"
	OutcomeCrisisOutput = "crisis_output"
	OutcomeCompletion   = "completion"
	OutcomeFallback     = "fallback"
	OutcomeEmptyInput   = "empty_input"
)

type noopRecorder struct{}

func (noopRecorder) ObserveReply(string)                     {}
func (noopRecorder) ObserveCompletion(time.Duration, string) {}

type noopLogger struct{}

func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Warn(string, ...interface{})  {}
