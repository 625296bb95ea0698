package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/driverelay/internal/history"
	"github.com/desertthunder/driverelay/internal/rclone"
	"github.com/desertthunder/driverelay/internal/server"
	"github.com/desertthunder/driverelay/internal/session"
	"github.com/desertthunder/driverelay/internal/shared"
	"github.com/desertthunder/driverelay/internal/supervisor"
	"github.com/urfave/cli/v3"
)

const (
	// sessionTTL bounds how long a consumerless session stays registered.
	sessionTTL = time.Hour
	// reapInterval is how often the registry reaper runs.
	reapInterval = 10 * time.Minute

	shutdownTimeout = 5 * time.Second
)

// Serve runs the upload relay HTTP service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	logger := r.logger

	if err := os.MkdirAll(config.Uploads.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create uploads dir: %w", err)
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	store := history.NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	client := rclone.NewClient(config.Rclone, shared.WithLogger(logger, "component", "rclone"))
	registry := session.NewRegistry()
	sup := supervisor.New(config, client, store, shared.WithLogger(logger, "component", "supervisor"))

	service := server.NewService(server.ServiceOpts{
		Config:   config,
		Registry: registry,
		Remote:   client,
		Runner:   sup,
		History:  store,
		Logger:   shared.WithLogger(logger, "component", "server"),
	})

	router := server.NewBasicRouter()
	router.Use(
		server.Logging(shared.WithLogger(logger, "component", "http")),
		server.CORS(config.Frontend.BaseURL),
	)
	service.Register(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go r.reapSessions(ctx, registry)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving", "addr", srv.Addr, "remote", config.Rclone.RemoteName)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// reapSessions periodically evicts sessions no consumer ever drained.
func (r *Runner) reapSessions(ctx context.Context, registry *session.Registry) {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := registry.Reap(time.Now().Add(-sessionTTL)); removed > 0 {
				r.logger.Info("reaped stale sessions", "count", removed)
			}
		}
	}
}
