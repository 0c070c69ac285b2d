// File: cmd/server/router.go
package main

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iyunix/go-wellness/internal/handlers"
	"github.com/iyunix/go-wellness/internal/middleware"
)

// NewRouter builds the route table. CORS and panic recovery wrap the router
// itself so they also cover preflights and unmatched paths.
func NewRouter(app *Application) http.Handler {
	cfg := app.Config
	secure := cfg.IsProduction()

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware(app.Logger, app.Metrics))
	r.Use(middleware.GuestSession(secure))
	r.Use(middleware.Identity(app.AuthService, app.Logger, secure))

	loginLimit := middleware.LoginRateLimit(app.LoginLimiter, app.Logger, app.Metrics)
	chatLimit := middleware.ChatRateLimit(app.ChatLimiter, app.Logger, app.Metrics)
	requireUser := func(h http.HandlerFunc) http.Handler { return middleware.RequireUser(h) }

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	if app.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	r.HandleFunc("/", app.PageHandler.ShowIndexPage).Methods(http.MethodGet)
	r.HandleFunc("/login", app.AuthHandler.ShowLoginPage).Methods(http.MethodGet)
	r.Handle("/login", loginLimit(http.HandlerFunc(app.AuthHandler.Login))).Methods(http.MethodPost)
	r.HandleFunc("/signup", app.AuthHandler.ShowSignupPage).Methods(http.MethodGet)
	r.HandleFunc("/signup", app.AuthHandler.Signup).Methods(http.MethodPost)
	r.HandleFunc("/logout", app.AuthHandler.Logout).Methods(http.MethodGet)

	// --- API Routes (guests allowed) ---
	r.Handle("/api/chat", chatLimit(http.HandlerFunc(app.ChatHandler.HandleChatMessage))).Methods(http.MethodPost)
	r.HandleFunc("/api/chat/history", app.ChatHandler.GetHistory).Methods(http.MethodGet)
	r.HandleFunc("/api/resources", handlers.GetResources).Methods(http.MethodGet)
	r.HandleFunc("/api/log", app.LogHandler.LogFrontendEvent).Methods(http.MethodPost)

	// --- Protected Routes ---
	r.Handle("/api/log_stress", requireUser(app.WellnessHandler.LogStress)).Methods(http.MethodPost)
	r.Handle("/api/stress_history", requireUser(app.WellnessHandler.StressHistory)).Methods(http.MethodGet)
	r.Handle("/api/request_help", requireUser(app.WellnessHandler.RequestHelp)).Methods(http.MethodPost)

	// --- Custom Error Handlers ---
	r.NotFoundHandler = app.PageHandler.NotFound()
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		app.PageHandler.ShowErrorPage(w, req, http.StatusMethodNotAllowed)
	})

	return middleware.CORS(cfg.CORSAllowOrigin)(middleware.RecoverPanic(app.Logger)(r))
}
