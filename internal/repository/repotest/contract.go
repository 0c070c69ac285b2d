// Package repotest holds the behavioural contract every storage backend must meet.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

// RunContract exercises store. newStore must return a freshly migrated,
// empty store for every call.
func RunContract(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("turns", func(t *testing.T) { testTurns(t, newStore(t)) })
	t.Run("stress logs", func(t *testing.T) { testStressLogs(t, newStore(t)) })
	t.Run("help requests", func(t *testing.T) { testHelpRequests(t, newStore(t)) })
}

func newUser(t *testing.T, store repository.Store, name string) *domain.User {
	t.Helper()
	u := &domain.User{Username: name, Email: name + "@campus.test"}
	require.NoError(t, u.HashPassword("correct-horse"))
	created, err := store.Users().Create(context.Background(), u)
	require.NoError(t, err)
	return created
}

func testUsers(t *testing.T, store repository.Store) {
	ctx := context.Background()
	u := newUser(t, store, "maya")
	assert.NotZero(t, u.ID)

	byID, err := store.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "maya", byID.Username)
	assert.NoError(t, byID.ValidatePassword("correct-horse"))

	byName, err := store.Users().FindByUsername(ctx, "maya")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.Equal(t, "maya@campus.test", byName.Email)

	_, err = store.Users().FindByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = store.Users().FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	dup := &domain.User{Username: "maya"}
	require.NoError(t, dup.HashPassword("another-pass"))
	_, err = store.Users().Create(ctx, dup)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func testTurns(t *testing.T, store repository.Store) {
	ctx := context.Background()
	alice := newUser(t, store, "alice")
	bob := newUser(t, store, "bob")

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Turns().Append(ctx,
			&domain.ChatTurn{UserID: alice.ID, Role: domain.RoleUser, Content: fmt.Sprintf("q%d", i), CreatedAt: at},
			&domain.ChatTurn{UserID: alice.ID, Role: domain.RoleAssistant, Content: fmt.Sprintf("a%d", i), CreatedAt: at.Add(time.Second)},
		))
	}
	require.NoError(t, store.Turns().Append(ctx,
		&domain.ChatTurn{UserID: bob.ID, Role: domain.RoleUser, Content: "bob only", CreatedAt: base.Add(time.Hour)},
	))

	recent, err := store.Turns().Recent(ctx, alice.ID, 4)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	assert.Equal(t, []string{"a7", "q7", "a6", "q6"}, contents(recent))
	for _, turn := range recent {
		assert.Equal(t, alice.ID, turn.UserID)
	}

	bobs, err := store.Turns().Recent(ctx, bob.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob only"}, contents(bobs))

	none, err := store.Turns().Recent(ctx, 4242, 12)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testStressLogs(t *testing.T, store repository.Store) {
	ctx := context.Background()
	u := newUser(t, store, "sam")
	other := newUser(t, store, "kai")

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 1; i <= 9; i++ {
		require.NoError(t, store.StressLogs().Create(ctx, &domain.StressLog{
			UserID: u.ID, Level: i, Source: "exam", Timestamp: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.StressLogs().Create(ctx, &domain.StressLog{
		UserID: other.ID, Level: 2, Timestamp: base.Add(48 * time.Hour),
	}))

	logs, err := store.StressLogs().Recent(ctx, u.ID, 7)
	require.NoError(t, err)
	require.Len(t, logs, 7)
	assert.Equal(t, 9, logs[0].Level)
	assert.Equal(t, 3, logs[6].Level)
	for i := 1; i < len(logs); i++ {
		assert.True(t, logs[i-1].Timestamp.After(logs[i].Timestamp))
	}
}

func testHelpRequests(t *testing.T, store repository.Store) {
	ctx := context.Background()
	u := newUser(t, store, "lee")

	req := &domain.HelpRequest{
		UserID:    u.ID,
		Severity:  domain.SeverityHigh,
		Message:   "I need to talk to someone",
		Status:    domain.HelpRequestPending,
		Timestamp: time.Now(),
	}
	require.NoError(t, store.HelpRequests().Create(ctx, req))
	require.NotZero(t, req.ID)

	got, err := store.HelpRequests().FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityHigh, got.Severity)
	assert.Equal(t, domain.HelpRequestPending, got.Status)

	require.NoError(t, store.HelpRequests().UpdateStatus(ctx, req.ID, domain.HelpRequestResolved))
	got, err = store.HelpRequests().FindByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HelpRequestResolved, got.Status)

	assert.ErrorIs(t, store.HelpRequests().UpdateStatus(ctx, 9999, domain.HelpRequestResolved), repository.ErrNotFound)
}

func contents(turns []domain.ChatTurn) []string {
	out := make([]string, len(turns))
	for i, turn := range turns {
		out[i] = turn.Content
	}
	return out
}
