// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package store defines the PolicyStore interface and PostgreSQL
// implementation for persisting policy documents.
//
// Documents are stored as opaque JSON keyed by resource id or user id; the
// model package validates them at ingest and decodes them at evaluation
// time. Saves are atomic upserts: a concurrent reader sees either the old
// or the new document, never a torn mix.
package store

import (
	"context"
	"encoding/json"
	"time"
)

// StoredResourcePolicy is the persisted form of a resource policy document.
type StoredResourcePolicy struct {
	ResourceID string
	Document   json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StoredUserPolicy is the persisted form of a user policy document.
type StoredUserPolicy struct {
	UserID    string
	Document  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PolicyStore handles policy document persistence. Gets return a
// POLICY_NOT_FOUND coded error for absent keys; saves replace any prior
// document under the same key and are idempotent for identical payloads.
type PolicyStore interface {
	GetResourcePolicy(ctx context.Context, resourceID string) (*StoredResourcePolicy, error)
	SaveResourcePolicy(ctx context.Context, resourceID string, doc json.RawMessage) error
	GetUserPolicy(ctx context.Context, userID string) (*StoredUserPolicy, error)
	SaveUserPolicy(ctx context.Context, userID string, doc json.RawMessage) error
}
