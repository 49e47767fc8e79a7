// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docgate/docgate/internal/entity"
)

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *Store) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewStore(mock)
}

func TestStore_GetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"id", "email", "name"}).
			AddRow("alice", "alice@example.com", "Alice")
		mock.ExpectQuery(`SELECT id, email, name FROM users`).
			WithArgs("alice").
			WillReturnRows(rows)

		got, err := store.GetUser(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, &entity.User{ID: "alice", Email: "alice@example.com", Name: "Alice"}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectQuery(`SELECT id, email, name FROM users`).
			WithArgs("mallory").
			WillReturnRows(pgxmock.NewRows([]string{"id", "email", "name"}))

		_, err := store.GetUser(context.Background(), "mallory")
		require.Error(t, err)
		assert.True(t, entity.IsNotFound(err))
	})

	t.Run("database error", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectQuery(`SELECT id, email, name FROM users`).
			WithArgs("alice").
			WillReturnError(errors.New("connection refused"))

		_, err := store.GetUser(context.Background(), "alice")
		require.Error(t, err)
		assert.False(t, entity.IsNotFound(err))
	})
}

func TestStore_GetTeam(t *testing.T) {
	mock, store := newMockStore(t)
	rows := pgxmock.NewRows([]string{"id", "name", "plan"}).
		AddRow("acme", "Acme", "pro")
	mock.ExpectQuery(`SELECT id, name, plan FROM teams`).
		WithArgs("acme").
		WillReturnRows(rows)

	got, err := store.GetTeam(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, entity.PlanPro, got.Plan)
}

func TestStore_GetProject(t *testing.T) {
	mock, store := newMockStore(t)
	rows := pgxmock.NewRows([]string{"id", "name", "team_id", "visibility"}).
		AddRow("handbook", "Handbook", "acme", "private")
	mock.ExpectQuery(`SELECT id, name, team_id, visibility FROM projects`).
		WithArgs("handbook").
		WillReturnRows(rows)

	got, err := store.GetProject(context.Background(), "handbook")
	require.NoError(t, err)
	assert.Equal(t, "acme", got.TeamID)
	assert.Equal(t, entity.VisibilityPrivate, got.Visibility)
}

func TestStore_GetDocument(t *testing.T) {
	t.Run("live document", func(t *testing.T) {
		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"id", "title", "project_id", "creator_id", "deleted_at", "public_link_enabled"}).
			AddRow("welcome1", "Welcome", "handbook", "alice", (*time.Time)(nil), false)
		mock.ExpectQuery(`SELECT id, title, project_id, creator_id, deleted_at, public_link_enabled`).
			WithArgs("welcome1").
			WillReturnRows(rows)

		got, err := store.GetDocument(context.Background(), "welcome1")
		require.NoError(t, err)
		assert.False(t, got.IsDeleted())
	})

	t.Run("soft-deleted document is returned", func(t *testing.T) {
		mock, store := newMockStore(t)
		deletedAt := time.Now()
		rows := pgxmock.NewRows([]string{"id", "title", "project_id", "creator_id", "deleted_at", "public_link_enabled"}).
			AddRow("welcome1", "Welcome", "handbook", "alice", &deletedAt, false)
		mock.ExpectQuery(`SELECT id, title, project_id, creator_id, deleted_at, public_link_enabled`).
			WithArgs("welcome1").
			WillReturnRows(rows)

		got, err := store.GetDocument(context.Background(), "welcome1")
		require.NoError(t, err)
		assert.True(t, got.IsDeleted())
	})
}

func TestStore_GetMemberships(t *testing.T) {
	t.Run("team membership", func(t *testing.T) {
		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"user_id", "team_id", "role"}).
			AddRow("alice", "acme", "admin")
		mock.ExpectQuery(`SELECT user_id, team_id, role FROM team_memberships`).
			WithArgs("alice", "acme").
			WillReturnRows(rows)

		got, err := store.GetTeamMembership(context.Background(), "alice", "acme")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleAdmin, got.Role)
	})

	t.Run("team membership absent", func(t *testing.T) {
		mock, store := newMockStore(t)
		mock.ExpectQuery(`SELECT user_id, team_id, role FROM team_memberships`).
			WithArgs("carol", "acme").
			WillReturnRows(pgxmock.NewRows([]string{"user_id", "team_id", "role"}))

		_, err := store.GetTeamMembership(context.Background(), "carol", "acme")
		require.Error(t, err)
		assert.True(t, entity.IsNotFound(err))
	})

	t.Run("project membership", func(t *testing.T) {
		mock, store := newMockStore(t)
		rows := pgxmock.NewRows([]string{"user_id", "project_id", "role"}).
			AddRow("bob", "handbook", "viewer")
		mock.ExpectQuery(`SELECT user_id, project_id, role FROM project_memberships`).
			WithArgs("bob", "handbook").
			WillReturnRows(rows)

		got, err := store.GetProjectMembership(context.Background(), "bob", "handbook")
		require.NoError(t, err)
		assert.Equal(t, entity.RoleViewer, got.Role)
	})
}
