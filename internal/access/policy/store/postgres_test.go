// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewPostgresStore(mock)
}

func TestPostgresStore_GetResourcePolicy(t *testing.T) {
	const resourceID = "urn:resource:acme:handbook:welcome1"
	doc := []byte(`{"resource":{"resourceId":"urn:resource:acme:handbook:welcome1","creatorId":"alice"},"policies":[]}`)
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"resource_id", "document", "created_at", "updated_at"}).
			AddRow(resourceID, doc, now, now)
		mock.ExpectQuery(`SELECT resource_id, document, created_at, updated_at`).
			WithArgs(resourceID).
			WillReturnRows(rows)

		got, err := store.GetResourcePolicy(context.Background(), resourceID)
		require.NoError(t, err)
		assert.Equal(t, resourceID, got.ResourceID)
		assert.Equal(t, json.RawMessage(doc), got.Document)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectQuery(`SELECT resource_id, document, created_at, updated_at`).
			WithArgs(resourceID).
			WillReturnError(errors.New("no rows in result set"))

		_, err := store.GetResourcePolicy(context.Background(), resourceID)
		require.Error(t, err)
	})

	t.Run("pgx no rows maps to not found", func(t *testing.T) {
		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"resource_id", "document", "created_at", "updated_at"})
		mock.ExpectQuery(`SELECT resource_id, document, created_at, updated_at`).
			WithArgs(resourceID).
			WillReturnRows(rows)

		_, err := store.GetResourcePolicy(context.Background(), resourceID)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestPostgresStore_SaveResourcePolicy(t *testing.T) {
	const resourceID = "urn:resource:acme:handbook:welcome1"
	doc := json.RawMessage(`{"policies":[]}`)

	t.Run("upsert succeeds", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectExec(`INSERT INTO resource_policies`).
			WithArgs(resourceID, []byte(doc)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.SaveResourcePolicy(context.Background(), resourceID, doc))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("saving the same document twice reads back unchanged", func(t *testing.T) {
		mock, store := newMockStore(t)
		now := time.Now()
		mock.ExpectExec(`INSERT INTO resource_policies`).
			WithArgs(resourceID, []byte(doc)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO resource_policies`).
			WithArgs(resourceID, []byte(doc)).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(`SELECT resource_id, document, created_at, updated_at`).
			WithArgs(resourceID).
			WillReturnRows(pgxmock.NewRows([]string{"resource_id", "document", "created_at", "updated_at"}).
				AddRow(resourceID, []byte(doc), now, now))

		require.NoError(t, store.SaveResourcePolicy(context.Background(), resourceID, doc))
		require.NoError(t, store.SaveResourcePolicy(context.Background(), resourceID, doc))

		got, err := store.GetResourcePolicy(context.Background(), resourceID)
		require.NoError(t, err)
		assert.Equal(t, doc, got.Document)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectExec(`INSERT INTO resource_policies`).
			WithArgs(resourceID, []byte(doc)).
			WillReturnError(errors.New("connection refused"))

		err := store.SaveResourcePolicy(context.Background(), resourceID, doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestPostgresStore_UserPolicies(t *testing.T) {
	doc := []byte(`{"policies":[]}`)
	now := time.Now()

	t.Run("get found", func(t *testing.T) {
		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"user_id", "document", "created_at", "updated_at"}).
			AddRow("alice", doc, now, now)
		mock.ExpectQuery(`SELECT user_id, document, created_at, updated_at`).
			WithArgs("alice").
			WillReturnRows(rows)

		got, err := store.GetUserPolicy(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.UserID)
	})

	t.Run("get not found", func(t *testing.T) {
		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"user_id", "document", "created_at", "updated_at"})
		mock.ExpectQuery(`SELECT user_id, document, created_at, updated_at`).
			WithArgs("alice").
			WillReturnRows(rows)

		_, err := store.GetUserPolicy(context.Background(), "alice")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("save", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectExec(`INSERT INTO user_policies`).
			WithArgs("alice", doc).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.SaveUserPolicy(context.Background(), "alice", doc))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
