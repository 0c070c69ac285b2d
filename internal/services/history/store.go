// File: internal/services/history/store.go
package history

import (
	"context"

	"github.com/iyunix/go-wellness/internal/domain"
)

// TurnStore hides where a caller's conversation lives. Recent always returns
// turns oldest first.
type TurnStore interface {
	Recent(ctx context.Context, caller domain.Caller) ([]domain.ChatTurn, error)
	AppendExchange(ctx context.Context, caller domain.Caller, userText, assistantText string) error
	Discard(ctx context.Context, caller domain.Caller) error
}

// Router sends signed-in callers to durable storage and everyone else to the
// guest buffers.
type Router struct {
	durable TurnStore
	guest   TurnStore
}

func NewRouter(durable, guest TurnStore) *Router {
	return &Router{durable: durable, guest: guest}
}

func (r *Router) pick(caller domain.Caller) TurnStore {
	if caller.Authenticated() {
		return r.durable
	}
	return r.guest
}

func (r *Router) Recent(ctx context.Context, caller domain.Caller) ([]domain.ChatTurn, error) {
	return r.pick(caller).Recent(ctx, caller)
}

func (r *Router) AppendExchange(ctx context.Context, caller domain.Caller, userText, assistantText string) error {
	return r.pick(caller).AppendExchange(ctx, caller, userText, assistantText)
}

func (r *Router) Discard(ctx context.Context, caller domain.Caller) error {
	return r.pick(caller).Discard(ctx, caller)
}

func reverse(turns []domain.ChatTurn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
