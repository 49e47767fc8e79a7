// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package postgres implements entity.Store over PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/docgate/docgate/internal/entity"
)

// Querier abstracts query execution so the store works with *pgxpool.Pool,
// pgx.Tx, and pgxmock.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements entity.Store using PostgreSQL.
type Store struct {
	db Querier
}

// NewStore creates a Store over the given querier.
func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*entity.User, error) {
	var u entity.User
	err := s.db.QueryRow(ctx, `
		SELECT id, email, name FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Errorf("user not found")
	}
	if err != nil {
		return nil, oops.Code("ENTITY_GET_FAILED").With("operation", "get user").With("id", id).Wrap(err)
	}
	return &u, nil
}

// GetTeam retrieves a team by ID.
func (s *Store) GetTeam(ctx context.Context, id string) (*entity.Team, error) {
	var t entity.Team
	err := s.db.QueryRow(ctx, `
		SELECT id, name, plan FROM teams WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.Plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TEAM_NOT_FOUND").With("id", id).Errorf("team not found")
	}
	if err != nil {
		return nil, oops.Code("ENTITY_GET_FAILED").With("operation", "get team").With("id", id).Wrap(err)
	}
	return &t, nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*entity.Project, error) {
	var p entity.Project
	err := s.db.QueryRow(ctx, `
		SELECT id, name, team_id, visibility FROM projects WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.TeamID, &p.Visibility)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROJECT_NOT_FOUND").With("id", id).Errorf("project not found")
	}
	if err != nil {
		return nil, oops.Code("ENTITY_GET_FAILED").With("operation", "get project").With("id", id).Wrap(err)
	}
	return &p, nil
}

// GetDocument retrieves a document by ID. Soft-deleted documents are
// returned; the evaluator decides what deletion means.
func (s *Store) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	var d entity.Document
	err := s.db.QueryRow(ctx, `
		SELECT id, title, project_id, creator_id, deleted_at, public_link_enabled
		FROM documents WHERE id = $1
	`, id).Scan(&d.ID, &d.Title, &d.ProjectID, &d.CreatorID, &d.DeletedAt, &d.PublicLinkEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("DOCUMENT_NOT_FOUND").With("id", id).Errorf("document not found")
	}
	if err != nil {
		return nil, oops.Code("ENTITY_GET_FAILED").With("operation", "get document").With("id", id).Wrap(err)
	}
	return &d, nil
}

// GetTeamMembership retrieves a user's membership in a team.
func (s *Store) GetTeamMembership(ctx context.Context, userID, teamID string) (*entity.TeamMembership, error) {
	var m entity.TeamMembership
	err := s.db.QueryRow(ctx, `
		SELECT user_id, team_id, role FROM team_memberships
		WHERE user_id = $1 AND team_id = $2
	`, userID, teamID).Scan(&m.UserID, &m.TeamID, &m.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TEAM_MEMBERSHIP_NOT_FOUND").
			With("user_id", userID).With("team_id", teamID).
			Errorf("team membership not found")
	}
	if err != nil {
		return nil, oops.Code("ENTITY_GET_FAILED").
			With("operation", "get team membership").
			With("user_id", userID).With("team_id", teamID).
			Wrap(err)
	}
	return &m, nil
}

// GetProjectMembership retrieves a user's membership in a project.
func (s *Store) GetProjectMembership(ctx context.Context, userID, projectID string) (*entity.ProjectMembership, error) {
	var m entity.ProjectMembership
	err := s.db.QueryRow(ctx, `
		SELECT user_id, project_id, role FROM project_memberships
		WHERE user_id = $1 AND project_id = $2
	`, userID, projectID).Scan(&m.UserID, &m.ProjectID, &m.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PROJECT_MEMBERSHIP_NOT_FOUND").
			With("user_id", userID).With("project_id", projectID).
			Errorf("project membership not found")
	}
	if err != nil {
		return nil, oops.Code("ENTITY_GET_FAILED").
			With("operation", "get project membership").
			With("user_id", userID).With("project_id", projectID).
			Wrap(err)
	}
	return &m, nil
}

// Compile-time interface check.
var _ entity.Store = (*Store)(nil)
