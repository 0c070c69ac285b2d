// File: internal/services/chat/service.go
package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/services/ai"
	"github.com/iyunix/go-wellness/internal/services/history"
	"github.com/iyunix/go-wellness/internal/services/persona"
	"github.com/iyunix/go-wellness/internal/services/safety"
)

// Pipeline runs one chat turn: crisis filter, history, prompt, completion
// (or fallback), output check, persistence.
type Pipeline struct {
	config   *Config
	filter   *safety.Filter
	turns    history.TurnStore
	prompts  *persona.Builder
	provider ai.CompletionProvider
	fallback *FallbackResponder
	recorder Recorder
	logger   Logger
}

type Deps struct {
	Filter   *safety.Filter
	Turns    history.TurnStore
	Prompts  *persona.Builder
	Provider ai.CompletionProvider
	Fallback *FallbackResponder
	Recorder Recorder
	Logger   Logger
}

func NewPipeline(config *Config, deps Deps) (*Pipeline, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, &ChatError{Type: ErrTypeConfig, Operation: "new_pipeline", Message: err.Error()}
	}
	if deps.Filter == nil || deps.Turns == nil || deps.Prompts == nil || deps.Provider == nil || deps.Fallback == nil {
		return nil, &ChatError{Type: ErrTypeConfig, Operation: "new_pipeline", Message: "filter, turn store, prompt builder, provider and fallback are required"}
	}
	recorder := deps.Recorder
	if recorder == nil {
		recorder = noopRecorder{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Pipeline{
		config:   config,
		filter:   deps.Filter,
		turns:    deps.Turns,
		prompts:  deps.Prompts,
		provider: deps.Provider,
		fallback: deps.Fallback,
		recorder: recorder,
		logger:   logger,
	}, nil
}

func (p *Pipeline) Reply(ctx context.Context, caller domain.Caller, message string) (Reply, error) {
	message = truncateRunes(strings.TrimSpace(message), p.config.MaxMessageRunes)
	if message == "" {
		p.recorder.ObserveReply(OutcomeEmptyInput)
		return Reply{Response: EmptyMessagePrompt, Sentiment: domain.SentimentNeutral, Action: domain.ActionNone}, nil
	}

	if p.filter.CheckInput(message) == domain.SentimentCrisis {
		p.logger.Warn("crisis keywords in chat input", "user_id", caller.UserID, "guest", !caller.Authenticated())
		p.recorder.ObserveReply(OutcomeCrisisInput)
		return Reply{
			Response:  safety.CrisisMessage,
			Sentiment: domain.SentimentCrisis,
			Action:    domain.ActionTriggerHelpline,
		}, nil
	}

	turns, err := p.turns.Recent(ctx, caller)
	if err != nil {
		// A missing history only costs context; the reply still goes out.
		p.logger.Error("history load failed", "user_id", caller.UserID, "error", NewHistoryError("reply", caller.UserID, err))
		turns = nil
	}

	prompt := p.prompts.Build(persona.PromptInput{
		DisplayName: caller.DisplayName(),
		History:     turns,
		Message:     message,
	})

	start := time.Now()
	text, err := p.provider.Complete(ctx, prompt)
	if err != nil {
		errType := ai.TypeOf(err)
		p.recorder.ObserveCompletion(time.Since(start), string(errType))
		p.recorder.ObserveReply(OutcomeFallback)
		p.logger.Error("completion failed, using fallback",
			"error_type", errType,
			"error", err,
			"user_id", caller.UserID,
			"message_length", len(message),
		)
		return p.fallback.Respond(message, err), nil
	}
	p.recorder.ObserveCompletion(time.Since(start), "")

	reply := Reply{Sentiment: domain.SentimentNeutral}
	cleaned, crisis := p.filter.CheckOutput(text)
	reply.Response = cleaned
	if crisis {
		if reply.Response == "" {
			reply.Response = safety.CrisisMessage
		}
		reply.Sentiment = domain.SentimentCrisis
		reply.Action = domain.ActionTriggerHelpline
		p.recorder.ObserveReply(OutcomeCrisisOutput)
		p.logger.Warn("model flagged crisis", "user_id", caller.UserID, "guest", !caller.Authenticated())
	} else {
		reply.Action = p.filter.ActionFor(cleaned)
		p.recorder.ObserveReply(OutcomeCompletion)
	}

	if err := p.turns.AppendExchange(ctx, caller, message, reply.Response); err != nil {
		p.logger.Error("failed to persist chat exchange", "user_id", caller.UserID, "error", err)
	}

	p.logger.Debug("chat reply sent",
		"user_id", caller.UserID,
		"sentiment", reply.Sentiment,
		"action", reply.Action,
		"history_turns", len(turns),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return reply, nil
}

func (p *Pipeline) History(ctx context.Context, caller domain.Caller) ([]domain.ChatTurn, error) {
	turns, err := p.turns.Recent(ctx, caller)
	if err != nil {
		return nil, NewHistoryError("history", caller.UserID, err)
	}
	return turns, nil
}

// EndSession drops a guest conversation. Signed-in history is kept.
func (p *Pipeline) EndSession(ctx context.Context, caller domain.Caller) error {
	return p.turns.Discard(ctx, caller)
}

// truncateRunes cuts input to at most maxLen runes without splitting a
// character.
func truncateRunes(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
