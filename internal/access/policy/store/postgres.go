// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// Querier is the subset of pgxpool.Pool the store uses. Narrowing the
// dependency lets tests substitute pgxmock.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements PolicyStore using PostgreSQL.
type PostgresStore struct {
	db Querier
}

// NewPostgresStore creates a PostgresStore backed by the given querier
// (typically a *pgxpool.Pool).
func NewPostgresStore(db Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetResourcePolicy retrieves the policy document for a resource.
func (s *PostgresStore) GetResourcePolicy(ctx context.Context, resourceID string) (*StoredResourcePolicy, error) {
	var p StoredResourcePolicy
	var doc []byte
	err := s.db.QueryRow(ctx, `
		SELECT resource_id, document, created_at, updated_at
		FROM resource_policies WHERE resource_id = $1
	`, resourceID).Scan(&p.ResourceID, &doc, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POLICY_NOT_FOUND").With("resource_id", resourceID).Errorf("resource policy not found")
	}
	if err != nil {
		return nil, oops.Code("POLICY_GET_FAILED").With("resource_id", resourceID).Wrap(err)
	}
	p.Document = json.RawMessage(doc)
	return &p, nil
}

// SaveResourcePolicy upserts the policy document for a resource. The upsert
// is a single atomic statement so concurrent readers never observe a torn
// document.
func (s *PostgresStore) SaveResourcePolicy(ctx context.Context, resourceID string, doc json.RawMessage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO resource_policies (resource_id, document)
		VALUES ($1, $2)
		ON CONFLICT (resource_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = now()
	`, resourceID, []byte(doc))
	if err != nil {
		return oops.Code("POLICY_SAVE_FAILED").With("resource_id", resourceID).Wrap(err)
	}
	return nil
}

// GetUserPolicy retrieves the policy document for a user.
func (s *PostgresStore) GetUserPolicy(ctx context.Context, userID string) (*StoredUserPolicy, error) {
	var p StoredUserPolicy
	var doc []byte
	err := s.db.QueryRow(ctx, `
		SELECT user_id, document, created_at, updated_at
		FROM user_policies WHERE user_id = $1
	`, userID).Scan(&p.UserID, &doc, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POLICY_NOT_FOUND").With("user_id", userID).Errorf("user policy not found")
	}
	if err != nil {
		return nil, oops.Code("POLICY_GET_FAILED").With("user_id", userID).Wrap(err)
	}
	p.Document = json.RawMessage(doc)
	return &p, nil
}

// SaveUserPolicy upserts the policy document for a user.
func (s *PostgresStore) SaveUserPolicy(ctx context.Context, userID string, doc json.RawMessage) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_policies (user_id, document)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET document = EXCLUDED.document, updated_at = now()
	`, userID, []byte(doc))
	if err != nil {
		return oops.Code("POLICY_SAVE_FAILED").With("user_id", userID).Wrap(err)
	}
	return nil
}
