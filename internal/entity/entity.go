// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package entity defines the domain entities consumed by policy evaluation.
// Entities are owned by the backing store; the evaluator treats them as
// read-only facts and never creates or mutates them.
package entity

import (
	"context"
	"time"
)

// Role is a user's role within a team or project.
type Role string

// Role constants define the valid membership roles.
const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether the role is within the enum range.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

// PlanType is a team's subscription plan.
type PlanType string

// PlanType constants define the valid team plans.
const (
	PlanFree       PlanType = "free"
	PlanPro        PlanType = "pro"
	PlanEnterprise PlanType = "enterprise"
)

// Valid reports whether the plan is within the enum range.
func (p PlanType) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Visibility controls who can discover a project.
type Visibility string

// Visibility constants define the valid project visibilities.
const (
	VisibilityPrivate Visibility = "private"
	VisibilityPublic  Visibility = "public"
)

// Valid reports whether the visibility is within the enum range.
func (v Visibility) Valid() bool {
	return v == VisibilityPrivate || v == VisibilityPublic
}

// User is an authenticated principal.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Team owns projects and carries a subscription plan.
type Team struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Plan PlanType `json:"plan"`
}

// Project groups documents under a team.
type Project struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	TeamID     string     `json:"teamId"`
	Visibility Visibility `json:"visibility"`
}

// Document is the resource access decisions are made about.
type Document struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	ProjectID         string     `json:"projectId"`
	CreatorID         string     `json:"creatorId"`
	DeletedAt         *time.Time `json:"deletedAt"`
	PublicLinkEnabled bool       `json:"publicLinkEnabled"`
}

// IsDeleted reports whether the document has been soft-deleted.
func (d *Document) IsDeleted() bool {
	return d.DeletedAt != nil
}

// TeamMembership records a user's role within a team.
type TeamMembership struct {
	UserID string `json:"userId"`
	TeamID string `json:"teamId"`
	Role   Role   `json:"role"`
}

// ProjectMembership records a user's role within a project.
type ProjectMembership struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId"`
	Role      Role   `json:"role"`
}

// Store provides read access to domain entities. Implementations return a
// *_NOT_FOUND coded error (checkable via IsNotFound) when an entity is
// absent; any other error is a transport failure.
type Store interface {
	GetUser(ctx context.Context, id string) (*User, error)
	GetTeam(ctx context.Context, id string) (*Team, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	GetTeamMembership(ctx context.Context, userID, teamID string) (*TeamMembership, error)
	GetProjectMembership(ctx context.Context, userID, projectID string) (*ProjectMembership, error)
}
