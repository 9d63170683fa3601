package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jiractx/internal/config"
	"github.com/danielolaszy/jiractx/internal/logging"
	"github.com/danielolaszy/jiractx/internal/metrics"
	"github.com/danielolaszy/jiractx/internal/server"
)

const shutdownTimeout = 10 * time.Second

// serveCmd runs the HTTP context service.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve editor context requests over HTTP",
	Long: `Start the HTTP service.

Endpoints:
  POST /context   returns JIRA context for the branch in the request body
  GET  /healthz   liveness probe
  GET  /metrics   Prometheus metrics

Example:
  JIRA_URL=https://example.atlassian.net JIRA_EMAIL=me@example.com \
  JIRA_API_TOKEN=... jiractx serve --port 8080 --cache-ttl 5m`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := applyServeFlags(cmd, cfg); err != nil {
			return err
		}

		a, err := newAssembler(cfg)
		if err != nil {
			logging.Error("refusing to start", "error", err)
			return err
		}

		metrics.Register()

		srv := &http.Server{
			Addr:              ":" + cfg.Server.Port,
			Handler:           server.NewRouter(server.NewContextHandler(a)),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runServer(ctx, srv)
	},
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("port", "", "Port to listen on (overrides PORT)")
	cmd.Flags().Duration("cache-ttl", 0, "Cache window length (overrides CACHE_TTL)")
	cmd.Flags().Int("cache-size", 0, "Maximum cached issues (overrides CACHE_SIZE)")
}

// applyServeFlags overrides environment configuration with explicitly set flags.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("port") {
		port, err := flags.GetString("port")
		if err != nil {
			return err
		}
		cfg.Server.Port = port
	}
	if flags.Changed("cache-ttl") {
		ttl, err := flags.GetDuration("cache-ttl")
		if err != nil {
			return err
		}
		if ttl < config.MinCacheTTL {
			return fmt.Errorf("--cache-ttl must be at least %s", config.MinCacheTTL)
		}
		cfg.Cache.TTL = ttl
	}
	if flags.Changed("cache-size") {
		size, err := flags.GetInt("cache-size")
		if err != nil {
			return err
		}
		if size <= 0 {
			return fmt.Errorf("--cache-size must be positive")
		}
		cfg.Cache.Size = size
	}

	return nil
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logging.Info("server shutdown complete")
	return nil
}
