// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iyunix/go-wellness/internal/config"
	"github.com/iyunix/go-wellness/internal/services"
	"github.com/iyunix/go-wellness/internal/services/wellness"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads and validates configuration and builds the logger.
func loadConfig() (*config.Config, services.Logger, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, services.NewLogger("wellness", cfg.Environment, cfg.LogLevel), nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wellness",
		Short: "Student wellness companion",
		Long: `Serves the Willow chat companion, stress tracking and help requests
for students. Running without a sub-command starts the web server.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newResolveHelpCmd(), newDiagnoseCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the storage schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			logger.Info("storage migrated", "backend", cfg.StorageBackend)
			return store.Close()
		},
	}
}

func newResolveHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-help <request-id>",
		Short: "Mark a pending help request as resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid request id %q", args[0])
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			svc := wellness.NewService(store.StressLogs(), store.HelpRequests(), logger)
			if err := svc.ResolveHelpRequest(cmd.Context(), uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "help request %d resolved\n", id)
			return nil
		},
	}
}

func newDiagnoseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose [prompt]",
		Short: "Send one prompt to the completion provider and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			prompt := "Say hello in one short sentence."
			if len(args) > 0 {
				prompt = strings.Join(args, " ")
			}
			reply, took, err := diagnose(cmd.Context(), cfg, prompt)
			if err != nil {
				return fmt.Errorf("completion failed after %s: %w", took.Round(time.Millisecond), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model %s answered in %s:\n%s\n", cfg.ChatModel, took.Round(time.Millisecond), reply)
			return nil
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	app, err := NewApplication(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close application", "error", err)
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
		// Completions can take a while; leave room above the provider timeout.
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
	}

	logger.Info("server starting",
		"port", cfg.ServerPort,
		"env", cfg.Environment,
		"storage", cfg.StorageBackend,
		"model", cfg.ChatModel,
		"metrics", cfg.MetricsEnabled,
	)

	// --- Start Server in Goroutine ---
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server startup failed: %w", err)
		}
		return nil
	case sig := <-stop:
		logger.Info("shutting down server gracefully", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
