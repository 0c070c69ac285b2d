// File: internal/services/history/guest.go
package history

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/iyunix/go-wellness/internal/domain"
)

const (
	DefaultGuestLimit = 10
	DefaultGuestTTL   = 2 * time.Hour
)

// GuestStore keeps anonymous conversations in memory, keyed by guest session
// id. Idle sessions expire after the TTL and the least recently used session
// is evicted once maxSessions is reached.
type GuestStore struct {
	mu      sync.Mutex
	buffers *expirable.LRU[string, []domain.ChatTurn]
	limit   int
	now     func() time.Time
}

func NewGuestStore(limit, maxSessions int, ttl time.Duration) *GuestStore {
	if limit <= 0 {
		limit = DefaultGuestLimit
	}
	if ttl <= 0 {
		ttl = DefaultGuestTTL
	}
	return &GuestStore{
		buffers: expirable.NewLRU[string, []domain.ChatTurn](maxSessions, nil, ttl),
		limit:   limit,
		now:     time.Now,
	}
}

func (s *GuestStore) Recent(_ context.Context, caller domain.Caller) ([]domain.ChatTurn, error) {
	if caller.GuestSessionID == "" {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf, ok := s.buffers.Get(caller.GuestSessionID)
	if !ok {
		return nil, nil
	}
	out := make([]domain.ChatTurn, len(buf))
	copy(out, buf)
	return out, nil
}

func (s *GuestStore) AppendExchange(_ context.Context, caller domain.Caller, userText, assistantText string) error {
	if caller.GuestSessionID == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	buf, _ := s.buffers.Get(caller.GuestSessionID)
	at := s.now().UTC()
	next := make([]domain.ChatTurn, 0, len(buf)+2)
	next = append(next, buf...)
	next = append(next,
		domain.ChatTurn{Role: domain.RoleUser, Content: userText, CreatedAt: at},
		domain.ChatTurn{Role: domain.RoleAssistant, Content: assistantText, CreatedAt: at.Add(time.Microsecond)},
	)
	if len(next) > s.limit {
		next = next[len(next)-s.limit:]
	}
	s.buffers.Add(caller.GuestSessionID, next)
	return nil
}

func (s *GuestStore) Discard(_ context.Context, caller domain.Caller) error {
	if caller.GuestSessionID == "" {
		return nil
	}
	s.mu.Lock()
	s.buffers.Remove(caller.GuestSessionID)
	s.mu.Unlock()
	return nil
}

// Sessions reports how many guest buffers are live.
func (s *GuestStore) Sessions() int {
	return s.buffers.Len()
}
