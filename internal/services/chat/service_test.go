package chat

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/keywords"
	"github.com/iyunix/go-wellness/internal/repository"
	"github.com/iyunix/go-wellness/internal/repository/sqlstore"
	"github.com/iyunix/go-wellness/internal/services/ai"
	"github.com/iyunix/go-wellness/internal/services/history"
	"github.com/iyunix/go-wellness/internal/services/persona"
	"github.com/iyunix/go-wellness/internal/services/safety"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	prompts [][]domain.PromptMessage
	reply   func(n int) (string, error)
}

func (f *fakeProvider) Complete(_ context.Context, msgs []domain.PromptMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, msgs)
	return f.reply(f.calls)
}

func (f *fakeProvider) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func replyWith(text string) func(int) (string, error) {
	return func(int) (string, error) { return text, nil }
}

func failWith(err error) func(int) (string, error) {
	return func(int) (string, error) { return "", err }
}

type recorded struct {
	mu       sync.Mutex
	outcomes []string
	errTypes []string
}

func (r *recorded) ObserveReply(outcome string) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, outcome)
	r.mu.Unlock()
}

func (r *recorded) ObserveCompletion(_ time.Duration, errType string) {
	r.mu.Lock()
	r.errTypes = append(r.errTypes, errType)
	r.mu.Unlock()
}

type fixture struct {
	pipeline *Pipeline
	provider *fakeProvider
	store    repository.Store
	guests   *history.GuestStore
	recorder *recorded
}

func newFixture(t *testing.T, reply func(int) (string, error)) *fixture {
	t.Helper()
	store, err := sqlstore.Open("sqlite", filepath.Join(t.TempDir(), "chat.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	rules := keywords.LoadDefault()
	guests := history.NewGuestStore(10, 100, time.Hour)
	provider := &fakeProvider{reply: reply}
	rec := &recorded{}

	p, err := NewPipeline(DefaultConfig(), Deps{
		Filter:   safety.NewFilter(rules),
		Turns:    history.NewRouter(history.NewDurableStore(store.Turns(), 12), guests),
		Prompts:  persona.NewBuilder(rules),
		Provider: provider,
		Fallback: NewFallbackResponder(rules),
		Recorder: rec,
	})
	require.NoError(t, err)
	return &fixture{pipeline: p, provider: provider, store: store, guests: guests, recorder: rec}
}

func newUser(t *testing.T, store repository.Store, name string) domain.Caller {
	t.Helper()
	u, err := store.Users().Create(context.Background(), &domain.User{Username: name, Password: "hashed"})
	require.NoError(t, err)
	return domain.Caller{UserID: u.ID, Username: u.Username}
}

func TestReply_CrisisInputShortCircuits(t *testing.T) {
	f := newFixture(t, replyWith("should never be used"))
	alice := newUser(t, f.store, "alice")

	messages := []string{"I want to end it all", "i might HURT MYSELF", "Suicide has crossed my mind"}
	for _, msg := range messages {
		t.Run(msg, func(t *testing.T) {
			reply, err := f.pipeline.Reply(context.Background(), alice, msg)
			require.NoError(t, err)
			assert.Equal(t, domain.SentimentCrisis, reply.Sentiment)
			assert.Equal(t, domain.ActionTriggerHelpline, reply.Action)
			assert.Equal(t, safety.CrisisMessage, reply.Response)
		})
	}

	assert.Zero(t, f.provider.Calls())
	turns, err := f.store.Turns().Recent(context.Background(), alice.UserID, 50)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestReply_PersistsTwoTurnsPerExchange(t *testing.T) {
	f := newFixture(t, func(n int) (string, error) { return fmt.Sprintf("answer %d", n), nil })
	alice := newUser(t, f.store, "alice")
	ctx := context.Background()

	for n := 1; n <= 8; n++ {
		reply, err := f.pipeline.Reply(ctx, alice, fmt.Sprintf("question %d", n))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("answer %d", n), reply.Response)
		assert.Equal(t, domain.SentimentNeutral, reply.Sentiment)

		stored, err := f.store.Turns().Recent(ctx, alice.UserID, 100)
		require.NoError(t, err)
		assert.Len(t, stored, 2*n)

		turns, err := f.pipeline.History(ctx, alice)
		require.NoError(t, err)
		exchanges := min(n, 6)
		require.Len(t, turns, 2*exchanges)
		first := n - exchanges + 1
		for i := 0; i < exchanges; i++ {
			assert.Equal(t, domain.RoleUser, turns[2*i].Role)
			assert.Equal(t, fmt.Sprintf("question %d", first+i), turns[2*i].Content)
			assert.Equal(t, domain.RoleAssistant, turns[2*i+1].Role)
			assert.Equal(t, fmt.Sprintf("answer %d", first+i), turns[2*i+1].Content)
		}
	}

	// The eighth prompt carries the system message, twelve history turns and the new message.
	last := f.provider.prompts[7]
	require.Len(t, last, 14)
	assert.Equal(t, domain.RoleSystem, last[0].Role)
	assert.Contains(t, last[0].Content, "'alice'")
	assert.Equal(t, "question 2", last[1].Content)
	assert.Equal(t, "question 8", last[13].Content)
}

func TestReply_SentinelInOutput(t *testing.T) {
	f := newFixture(t, replyWith("CRISIS_DETECTED Please reach out to someone right now. 💙"))
	bob := newUser(t, f.store, "bob")

	reply, err := f.pipeline.Reply(context.Background(), bob, "everything feels pointless")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentCrisis, reply.Sentiment)
	assert.Equal(t, domain.ActionTriggerHelpline, reply.Action)
	assert.Equal(t, "Please reach out to someone right now. 💙", reply.Response)

	stored, err := f.store.Turns().Recent(context.Background(), bob.UserID, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.NotContains(t, stored[0].Content, safety.Sentinel)
	assert.Equal(t, []string{OutcomeCrisisOutput}, f.recorder.outcomes)
}

func TestReply_PanicPhraseAction(t *testing.T) {
	f := newFixture(t, replyWith("Let's slow down and breathe together for a moment."))

	reply, err := f.pipeline.Reply(context.Background(), domain.Caller{GuestSessionID: "g"}, "my heart is racing")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionTriggerPanic, reply.Action)
	assert.Equal(t, domain.SentimentNeutral, reply.Sentiment)
}

func TestReply_AuthFailureReturnsNotice(t *testing.T) {
	f := newFixture(t, failWith(&ai.AIError{Type: ai.ErrTypeAuth, Operation: "completion", Message: "bad key"}))
	alice := newUser(t, f.store, "alice")

	reply, err := f.pipeline.Reply(context.Background(), alice, "I'm so stressed about everything")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentNeutral, reply.Sentiment)
	assert.Equal(t, domain.ActionNone, reply.Action)
	assert.Contains(t, reply.Response, "authentication error")

	stored, err := f.store.Turns().Recent(context.Background(), alice.UserID, 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Equal(t, []string{"AUTH"}, f.recorder.errTypes)
	assert.Equal(t, []string{OutcomeFallback}, f.recorder.outcomes)
}

func TestReply_FallbackByKeyword(t *testing.T) {
	tests := []struct {
		message string
		contain string
		action  domain.Action
	}{
		{"I'm so overwhelmed", "Take 3 deep breaths", domain.ActionTriggerPanic},
		{"my exam is tomorrow", "Pomodoro", domain.ActionNone},
		{"I can't sleep", "phone outside your bedroom", domain.ActionNone},
		{"I feel so alone here", "Text one friend", domain.ActionNone},
		{"I'm really nervous", "5-4-3-2-1", domain.ActionTriggerPanic},
		{"I'm an imposter", "Imposter syndrome", domain.ActionNone},
		{"I feel hopeless", "counselor", domain.ActionNone},
		{"hello", GenericFallback, domain.ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			f := newFixture(t, failWith(&ai.AIError{Type: ai.ErrTypeNetwork, Operation: "completion"}))

			reply, err := f.pipeline.Reply(context.Background(), domain.Caller{GuestSessionID: "g"}, tt.message)
			require.NoError(t, err)
			assert.Contains(t, reply.Response, tt.contain)
			assert.Equal(t, tt.action, reply.Action)
			assert.Equal(t, domain.SentimentNeutral, reply.Sentiment)
			assert.Zero(t, f.guests.Sessions())
		})
	}
}

func TestReply_QuotaAndUnknownErrors(t *testing.T) {
	f := newFixture(t, failWith(&ai.AIError{Type: ai.ErrTypeQuota, Operation: "completion"}))
	reply, err := f.pipeline.Reply(context.Background(), domain.Caller{}, "stress")
	require.NoError(t, err)
	assert.Equal(t, QuotaNotice, reply.Response)
	assert.Equal(t, domain.ActionNone, reply.Action)

	f = newFixture(t, failWith(errors.New("connection reset")))
	reply, err = f.pipeline.Reply(context.Background(), domain.Caller{}, "stress")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionTriggerPanic, reply.Action)
}

func TestReply_GuestHistoryCappedAndDiscarded(t *testing.T) {
	f := newFixture(t, replyWith("tell me more"))
	guest := domain.Caller{GuestSessionID: "guest-1"}
	ctx := context.Background()

	for n := 0; n < 9; n++ {
		_, err := f.pipeline.Reply(ctx, guest, fmt.Sprintf("note %d", n))
		require.NoError(t, err)
		turns, err := f.pipeline.History(ctx, guest)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(turns), 10)
	}

	last := f.provider.prompts[len(f.provider.prompts)-1]
	assert.Contains(t, last[0].Content, "'friend'")

	require.NoError(t, f.pipeline.EndSession(ctx, guest))
	turns, err := f.pipeline.History(ctx, guest)
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestReply_EmptyMessage(t *testing.T) {
	f := newFixture(t, replyWith("x"))

	for _, msg := range []string{"", "   ", "\n\t"} {
		reply, err := f.pipeline.Reply(context.Background(), domain.Caller{GuestSessionID: "g-1"}, msg)
		require.NoError(t, err)
		assert.Equal(t, EmptyMessagePrompt, reply.Response)
		assert.Equal(t, domain.SentimentNeutral, reply.Sentiment)
		assert.Equal(t, domain.ActionNone, reply.Action)
	}
	assert.Zero(t, f.provider.Calls())
}

func TestReply_TruncatesLongMessages(t *testing.T) {
	f := newFixture(t, replyWith("ok"))
	f.pipeline.config.MaxMessageRunes = 5

	_, err := f.pipeline.Reply(context.Background(), domain.Caller{}, "héllo wörld")
	require.NoError(t, err)
	prompt := f.provider.prompts[0]
	assert.Equal(t, "héllo", prompt[len(prompt)-1].Content)
}

func TestNewPipeline_RequiresDeps(t *testing.T) {
	_, err := NewPipeline(nil, Deps{})
	assert.Error(t, err)

	_, err = NewPipeline(&Config{}, Deps{})
	assert.Error(t, err)
}
