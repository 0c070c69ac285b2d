// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-wellness/internal/domain"
)

// Service is what the HTTP layer needs from the chat pipeline.
type Service interface {
	// Reply always produces an answer. Empty input gets a gentle prompt and
	// completion problems degrade to a fallback reply.
	Reply(ctx context.Context, caller domain.Caller, message string) (Reply, error)
	History(ctx context.Context, caller domain.Caller) ([]domain.ChatTurn, error)
	EndSession(ctx context.Context, caller domain.Caller) error
}
