// File: cmd/server/app.go
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/iyunix/go-wellness/internal/config"
	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/handlers"
	"github.com/iyunix/go-wellness/internal/keywords"
	"github.com/iyunix/go-wellness/internal/metrics"
	"github.com/iyunix/go-wellness/internal/ratelimit"
	"github.com/iyunix/go-wellness/internal/repository"
	"github.com/iyunix/go-wellness/internal/repository/factory"
	"github.com/iyunix/go-wellness/internal/services"
	"github.com/iyunix/go-wellness/internal/services/ai"
	"github.com/iyunix/go-wellness/internal/services/chat"
	"github.com/iyunix/go-wellness/internal/services/history"
	"github.com/iyunix/go-wellness/internal/services/persona"
	"github.com/iyunix/go-wellness/internal/services/safety"
	"github.com/iyunix/go-wellness/internal/services/user_services"
	"github.com/iyunix/go-wellness/internal/services/wellness"
)

// Application aggregates all services and handlers.
type Application struct {
	Config *config.Config
	Logger services.Logger
	Store  repository.Store

	ChatService     chat.Service
	WellnessService *wellness.Service
	AuthService     *user_services.AuthService
	GuestTurns      *history.GuestStore

	AuthHandler     *handlers.AuthHandler
	ChatHandler     *handlers.ChatHandler
	WellnessHandler *handlers.WellnessHandler
	PageHandler     *handlers.PageHandler
	LogHandler      *handlers.LogHandler

	LoginLimiter *ratelimit.AttemptLimiter
	ChatLimiter  *ratelimit.KeyedLimiter

	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

// openStore opens and migrates the configured backend.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	return factory.Open(ctx, factory.Options{
		Backend:      cfg.StorageBackend,
		DBDriver:     cfg.DatabaseDriver,
		DBDSN:        cfg.DatabaseDSN,
		DocumentPath: cfg.DocumentStorePath,
	})
}

func aiConfig(cfg *config.Config) *ai.Config {
	aiCfg := ai.DefaultConfig()
	aiCfg.APIKey = cfg.OpenAIAPIKey
	aiCfg.BaseURL = cfg.OpenAIBaseURL
	aiCfg.Model = cfg.ChatModel
	aiCfg.Timeout = cfg.CompletionTimeout
	return aiCfg
}

// newProvider builds the OpenAI client. Outside production a missing key is
// tolerated so the UI can be worked on offline.
func newProvider(cfg *config.Config, logger services.Logger) (ai.CompletionProvider, error) {
	provider, err := ai.NewOpenAIProvider(aiConfig(cfg))
	if err == nil {
		return provider, nil
	}
	if cfg.IsProduction() || ai.TypeOf(err) != ai.ErrTypeConfig {
		return nil, err
	}
	logger.Warn("completion provider unavailable, chat will answer with fallbacks", "error", err)
	return ai.UnconfiguredProvider{Reason: err}, nil
}

// NewApplication wires every dependency by hand.
func NewApplication(ctx context.Context, cfg *config.Config, logger services.Logger) (*Application, error) {
	rules, err := keywords.Load(cfg.KeywordRulesFile)
	if err != nil {
		return nil, fmt.Errorf("load keyword rules: %w", err)
	}

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init completion provider: %w", err)
	}

	app := &Application{Config: cfg, Logger: logger}
	if cfg.MetricsEnabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		app.Metrics = metrics.MustNew(app.Registry)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StorageBackend, err)
	}
	app.Store = store

	app.GuestTurns = history.NewGuestStore(cfg.GuestHistoryLimit, cfg.MaxGuestSessions, cfg.GuestSessionTTL)
	if app.Registry != nil {
		metrics.RegisterGuestSessions(app.Registry, app.GuestTurns.Sessions)
	}
	turns := history.NewRouter(
		history.NewDurableStore(store.Turns(), cfg.UserHistoryLimit),
		app.GuestTurns,
	)

	pipeline, err := chat.NewPipeline(chat.DefaultConfig(), chat.Deps{
		Filter:   safety.NewFilter(rules),
		Turns:    turns,
		Prompts:  persona.NewBuilder(rules),
		Provider: provider,
		Fallback: chat.NewFallbackResponder(rules),
		Recorder: app.Metrics,
		Logger:   logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	app.ChatService = pipeline
	app.WellnessService = wellness.NewService(store.StressLogs(), store.HelpRequests(), logger)
	app.AuthService = user_services.NewAuthService(store.Users(), cfg.JWTSecretKey, cfg.TokenTTL, logger)

	pages, err := handlers.NewPageHandler(logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	app.PageHandler = pages
	app.AuthHandler = handlers.NewAuthHandler(app.AuthService, app.ChatService, pages, cfg.TokenTTL, cfg.IsProduction(), logger)
	app.ChatHandler = handlers.NewChatHandler(app.ChatService, logger)
	app.WellnessHandler = handlers.NewWellnessHandler(app.WellnessService, logger)
	app.LogHandler = handlers.NewLogHandler(logger)

	app.LoginLimiter = ratelimit.NewAttemptLimiter(ratelimit.DefaultLoginConfig())
	app.ChatLimiter = ratelimit.NewKeyedLimiter(cfg.ChatRatePerSecond, cfg.ChatRateBurst)

	return app, nil
}

// Close releases background workers and the store.
func (a *Application) Close() error {
	if a.LoginLimiter != nil {
		a.LoginLimiter.Close()
	}
	if a.ChatLimiter != nil {
		a.ChatLimiter.Close()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// diagnose sends a single prompt through the configured provider.
func diagnose(ctx context.Context, cfg *config.Config, prompt string) (string, time.Duration, error) {
	provider, err := ai.NewOpenAIProvider(aiConfig(cfg))
	if err != nil {
		return "", 0, err
	}
	start := time.Now()
	reply, err := provider.Complete(ctx, []domain.PromptMessage{{Role: domain.RoleUser, Content: prompt}})
	return reply, time.Since(start), err
}
