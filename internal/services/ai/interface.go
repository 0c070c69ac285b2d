// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/iyunix/go-wellness/internal/domain"
)

// CompletionProvider turns an assembled conversation into one reply.
// Failures are returned as *AIError.
type CompletionProvider interface {
	Complete(ctx context.Context, messages []domain.PromptMessage) (string, error)
}
