// File: internal/services/history/durable.go
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

const DefaultUserLimit = 12

type DurableStore struct {
	turns repository.TurnRepository
	limit int
	now   func() time.Time
}

func NewDurableStore(turns repository.TurnRepository, limit int) *DurableStore {
	if limit <= 0 {
		limit = DefaultUserLimit
	}
	return &DurableStore{turns: turns, limit: limit, now: time.Now}
}

func (s *DurableStore) Recent(ctx context.Context, caller domain.Caller) ([]domain.ChatTurn, error) {
	if !caller.Authenticated() {
		return nil, nil
	}
	turns, err := s.turns.Recent(ctx, caller.UserID, s.limit)
	if err != nil {
		return nil, fmt.Errorf("load history for user %d: %w", caller.UserID, err)
	}
	reverse(turns)
	return turns, nil
}

// AppendExchange writes the user turn and the reply as one unit. Timestamps
// are kept at microsecond precision and the reply always sorts after the
// user turn.
func (s *DurableStore) AppendExchange(ctx context.Context, caller domain.Caller, userText, assistantText string) error {
	if !caller.Authenticated() {
		return nil
	}
	userAt := s.now().UTC().Truncate(time.Microsecond)
	replyAt := s.now().UTC().Truncate(time.Microsecond)
	if !replyAt.After(userAt) {
		replyAt = userAt.Add(time.Microsecond)
	}
	err := s.turns.Append(ctx,
		&domain.ChatTurn{UserID: caller.UserID, Role: domain.RoleUser, Content: userText, CreatedAt: userAt},
		&domain.ChatTurn{UserID: caller.UserID, Role: domain.RoleAssistant, Content: assistantText, CreatedAt: replyAt},
	)
	if err != nil {
		return fmt.Errorf("append exchange for user %d: %w", caller.UserID, err)
	}
	return nil
}

// Discard is a no-op: a user's history outlives their session.
func (s *DurableStore) Discard(context.Context, domain.Caller) error {
	return nil
}
