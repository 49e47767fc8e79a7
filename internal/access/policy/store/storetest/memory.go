// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package storetest provides in-memory store doubles for tests.
package storetest

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/docgate/docgate/internal/access/policy/store"
	"github.com/docgate/docgate/internal/entity"
)

// MemoryPolicyStore is an in-memory store.PolicyStore with upsert semantics
// matching the postgres implementation.
type MemoryPolicyStore struct {
	mu       sync.RWMutex
	resource map[string]*store.StoredResourcePolicy
	user     map[string]*store.StoredUserPolicy
}

// NewMemoryPolicyStore creates an empty MemoryPolicyStore.
func NewMemoryPolicyStore() *MemoryPolicyStore {
	return &MemoryPolicyStore{
		resource: make(map[string]*store.StoredResourcePolicy),
		user:     make(map[string]*store.StoredUserPolicy),
	}
}

// GetResourcePolicy implements store.PolicyStore.
func (s *MemoryPolicyStore) GetResourcePolicy(_ context.Context, resourceID string) (*store.StoredResourcePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.resource[resourceID]
	if !ok {
		return nil, oops.Code("POLICY_NOT_FOUND").With("resource_id", resourceID).Errorf("resource policy not found")
	}
	cp := *p
	return &cp, nil
}

// SaveResourcePolicy implements store.PolicyStore.
func (s *MemoryPolicyStore) SaveResourcePolicy(_ context.Context, resourceID string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	created := now
	if existing, ok := s.resource[resourceID]; ok {
		created = existing.CreatedAt
	}
	s.resource[resourceID] = &store.StoredResourcePolicy{
		ResourceID: resourceID,
		Document:   append(json.RawMessage(nil), doc...),
		CreatedAt:  created,
		UpdatedAt:  now,
	}
	return nil
}

// GetUserPolicy implements store.PolicyStore.
func (s *MemoryPolicyStore) GetUserPolicy(_ context.Context, userID string) (*store.StoredUserPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.user[userID]
	if !ok {
		return nil, oops.Code("POLICY_NOT_FOUND").With("user_id", userID).Errorf("user policy not found")
	}
	cp := *p
	return &cp, nil
}

// SaveUserPolicy implements store.PolicyStore.
func (s *MemoryPolicyStore) SaveUserPolicy(_ context.Context, userID string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	created := now
	if existing, ok := s.user[userID]; ok {
		created = existing.CreatedAt
	}
	s.user[userID] = &store.StoredUserPolicy{
		UserID:    userID,
		Document:  append(json.RawMessage(nil), doc...),
		CreatedAt: created,
		UpdatedAt: now,
	}
	return nil
}

// MemoryEntityStore is an in-memory entity.Store populated directly by
// tests.
type MemoryEntityStore struct {
	Users              map[string]*entity.User
	Teams              map[string]*entity.Team
	Projects           map[string]*entity.Project
	Documents          map[string]*entity.Document
	TeamMemberships    map[string]*entity.TeamMembership    // key: userID + "/" + teamID
	ProjectMemberships map[string]*entity.ProjectMembership // key: userID + "/" + projectID
}

// NewMemoryEntityStore creates an empty MemoryEntityStore.
func NewMemoryEntityStore() *MemoryEntityStore {
	return &MemoryEntityStore{
		Users:              make(map[string]*entity.User),
		Teams:              make(map[string]*entity.Team),
		Projects:           make(map[string]*entity.Project),
		Documents:          make(map[string]*entity.Document),
		TeamMemberships:    make(map[string]*entity.TeamMembership),
		ProjectMemberships: make(map[string]*entity.ProjectMembership),
	}
}

// AddTeamMembership registers a membership under its composite key.
func (s *MemoryEntityStore) AddTeamMembership(m *entity.TeamMembership) {
	s.TeamMemberships[m.UserID+"/"+m.TeamID] = m
}

// AddProjectMembership registers a membership under its composite key.
func (s *MemoryEntityStore) AddProjectMembership(m *entity.ProjectMembership) {
	s.ProjectMemberships[m.UserID+"/"+m.ProjectID] = m
}

// GetUser implements entity.Store.
func (s *MemoryEntityStore) GetUser(_ context.Context, id string) (*entity.User, error) {
	u, ok := s.Users[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").With("id", id).Errorf("user not found")
	}
	return u, nil
}

// GetTeam implements entity.Store.
func (s *MemoryEntityStore) GetTeam(_ context.Context, id string) (*entity.Team, error) {
	t, ok := s.Teams[id]
	if !ok {
		return nil, oops.Code("TEAM_NOT_FOUND").With("id", id).Errorf("team not found")
	}
	return t, nil
}

// GetProject implements entity.Store.
func (s *MemoryEntityStore) GetProject(_ context.Context, id string) (*entity.Project, error) {
	p, ok := s.Projects[id]
	if !ok {
		return nil, oops.Code("PROJECT_NOT_FOUND").With("id", id).Errorf("project not found")
	}
	return p, nil
}

// GetDocument implements entity.Store.
func (s *MemoryEntityStore) GetDocument(_ context.Context, id string) (*entity.Document, error) {
	d, ok := s.Documents[id]
	if !ok {
		return nil, oops.Code("DOCUMENT_NOT_FOUND").With("id", id).Errorf("document not found")
	}
	return d, nil
}

// GetTeamMembership implements entity.Store.
func (s *MemoryEntityStore) GetTeamMembership(_ context.Context, userID, teamID string) (*entity.TeamMembership, error) {
	m, ok := s.TeamMemberships[userID+"/"+teamID]
	if !ok {
		return nil, oops.Code("TEAM_MEMBERSHIP_NOT_FOUND").
			With("user_id", userID).With("team_id", teamID).
			Errorf("team membership not found")
	}
	return m, nil
}

// GetProjectMembership implements entity.Store.
func (s *MemoryEntityStore) GetProjectMembership(_ context.Context, userID, projectID string) (*entity.ProjectMembership, error) {
	m, ok := s.ProjectMemberships[userID+"/"+projectID]
	if !ok {
		return nil, oops.Code("PROJECT_MEMBERSHIP_NOT_FOUND").
			With("user_id", userID).With("project_id", projectID).
			Errorf("project membership not found")
	}
	return m, nil
}
