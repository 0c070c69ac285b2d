// File: internal/services/ai/unconfigured.go
package ai

import (
	"context"

	"github.com/iyunix/go-wellness/internal/domain"
)

// UnconfiguredProvider stands in when no API key is set outside production.
// Every call fails as an AUTH error so chat degrades to the credential notice
// instead of the server refusing to start.
type UnconfiguredProvider struct {
	Reason error
}

func (p UnconfiguredProvider) Complete(context.Context, []domain.PromptMessage) (string, error) {
	return "", &AIError{
		Type:      ErrTypeAuth,
		Message:   "completion provider is not configured",
		Operation: "complete",
		Cause:     p.Reason,
	}
}
