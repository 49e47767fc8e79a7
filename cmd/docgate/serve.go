// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"

	"github.com/docgate/docgate/internal/access/policy"
	"github.com/docgate/docgate/internal/access/policy/store"
	"github.com/docgate/docgate/internal/config"
	entitypg "github.com/docgate/docgate/internal/entity/postgres"
	"github.com/docgate/docgate/internal/logging"
	"github.com/docgate/docgate/internal/observability"
	"github.com/docgate/docgate/internal/server"
)

const (
	shutdownTimeout   = 5 * time.Second
	connectMaxRetries = 5
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the policy decision service",
		Long: `Start the HTTP service that answers permission checks and accepts
policy documents. Also serves metrics and health probes on a separate
listener.`,
		RunE: runServe,
	}

	cmd.Flags().String("server.addr", "", "API listen address (overrides config)")
	cmd.Flags().String("observability.addr", "", "metrics/health listen address (overrides config)")
	cmd.Flags().String("log.format", "", "log format, json or text (overrides config)")
	cmd.Flags().String("log.level", "", "log level (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url (or DATABASE_URL) is required")
	}

	logging.SetDefault("docgate", version, cfg.Log.Format, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := connectDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()
	slog.Info("connected to database")

	entities := entitypg.NewStore(pool)
	policies := store.NewPostgresStore(pool)
	decisions := policy.NewService(entities, policies)

	obsServer := observability.NewServer(cfg.Observability.Addr, func() bool {
		return pool.Ping(ctx) == nil
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return oops.Code("SERVER_START_FAILED").With("component", "observability").Wrap(err)
	}

	apiServer := server.NewServer(cfg.Server.Addr, decisions, policies, obsServer.Metrics())
	apiErrCh, err := apiServer.Start()
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := obsServer.Stop(shutdownCtx); stopErr != nil {
			slog.Warn("failed to stop observability server during cleanup", "error", stopErr)
		}
		return oops.Code("SERVER_START_FAILED").With("component", "api").Wrap(err)
	}

	cmd.Println("DocGate started")
	slog.Info("docgate ready",
		"api_addr", apiServer.Addr(),
		"observability_addr", obsServer.Addr(),
	)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-apiErrCh:
		if err != nil {
			slog.Error("api server failed", "error", err)
		}
	case err := <-obsErrCh:
		if err != nil {
			slog.Error("observability server failed", "error", err)
		}
	}

	slog.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping api server", "error", err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping observability server", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// connectDatabase opens a pgx pool, retrying the initial ping with fibonacci
// backoff so the service survives a database that is still coming up.
func connectDatabase(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxRetries, retry.NewFibonacci(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			slog.Debug("database not ready, retrying", "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").Wrap(err)
	}
	return pool, nil
}
