// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/docgate/docgate/internal/access"
	"github.com/docgate/docgate/internal/access/policy"
	"github.com/docgate/docgate/internal/access/policy/store"
	"github.com/docgate/docgate/internal/config"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedConfig holds configuration for the seed command.
type seedConfig struct {
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	cfg := &seedConfig{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo entities and baseline policies",
		Long: `Creates a demo team, project, users, and document, plus the baseline
policy document for the demo resource. This command is idempotent - it
will not create duplicates or overwrite existing policies when run
multiple times.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, cfg *seedConfig) error {
	conf, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}
	if conf.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url (or DATABASE_URL) is required")
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.timeout)
	defer cancel()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(conf.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "create migrator").Wrap(err)
	}
	if err := migrator.Up(); err != nil {
		closeMigrator(cmd, migrator)
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	closeMigrator(cmd, migrator)

	cmd.Println("Connecting to database...")
	pool, err := pgxpool.New(ctx, conf.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	if err := seedEntities(ctx, pool); err != nil {
		return err
	}
	cmd.Println("Seeded demo entities")

	resourceID := access.ResourceURN{TeamID: "acme", ProjectID: "handbook", DocumentID: "welcome1"}.String()
	policies := store.NewPostgresStore(pool)
	created, err := policy.SeedResourcePolicy(ctx, policies, resourceID, "alice")
	if err != nil {
		return oops.Code("SEED_FAILED").With("operation", "seed resource policy").Wrap(err)
	}
	if created {
		cmd.Println("Created baseline policy for", resourceID)
		slog.Info("seeded baseline policy", "resource_id", resourceID)
	} else {
		cmd.Println("Baseline policy already exists, skipping")
	}

	cmd.Println("Seeding complete!")
	return nil
}

// seedEntities inserts the demo rows. ON CONFLICT DO NOTHING keeps the
// command idempotent and preserves local edits.
func seedEntities(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []struct {
		sql  string
		args []any
	}{
		{`INSERT INTO users (id, email, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			[]any{"alice", "alice@example.com", "Alice"}},
		{`INSERT INTO users (id, email, name) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			[]any{"bob", "bob@example.com", "Bob"}},
		{`INSERT INTO teams (id, name, plan) VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`,
			[]any{"acme", "Acme Inc", "pro"}},
		{`INSERT INTO projects (id, name, team_id, visibility) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
			[]any{"handbook", "Employee Handbook", "acme", "private"}},
		{`INSERT INTO documents (id, title, project_id, creator_id, public_link_enabled)
		  VALUES ($1, $2, $3, $4, $5) ON CONFLICT (id) DO NOTHING`,
			[]any{"welcome1", "Welcome", "handbook", "alice", false}},
		{`INSERT INTO team_memberships (user_id, team_id, role) VALUES ($1, $2, $3)
		  ON CONFLICT (user_id, team_id) DO NOTHING`,
			[]any{"alice", "acme", "admin"}},
		{`INSERT INTO team_memberships (user_id, team_id, role) VALUES ($1, $2, $3)
		  ON CONFLICT (user_id, team_id) DO NOTHING`,
			[]any{"bob", "acme", "viewer"}},
		{`INSERT INTO project_memberships (user_id, project_id, role) VALUES ($1, $2, $3)
		  ON CONFLICT (user_id, project_id) DO NOTHING`,
			[]any{"alice", "handbook", "admin"}},
		{`INSERT INTO project_memberships (user_id, project_id, role) VALUES ($1, $2, $3)
		  ON CONFLICT (user_id, project_id) DO NOTHING`,
			[]any{"bob", "handbook", "viewer"}},
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt.sql, stmt.args...); err != nil {
			return oops.Code("SEED_FAILED").With("operation", "insert seed row").Wrap(err)
		}
	}
	return nil
}

func closeMigrator(cmd *cobra.Command, migrator *store.Migrator) {
	if err := migrator.Close(); err != nil {
		cmd.PrintErrln("warning: failed to close migrator:", err)
	}
}
