// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package access

import (
	"github.com/docgate/docgate/internal/entity"
)

// ContextInput carries the entities a context is assembled from. User and
// Document are required; the rest are optional and their top-level keys are
// omitted from the context when absent so that filter property resolution
// returns nil rather than a present-with-null value.
type ContextInput struct {
	User              *entity.User
	Document          *entity.Document
	Team              *entity.Team
	Project           *entity.Project
	TeamMembership    *entity.TeamMembership
	ProjectMembership *entity.ProjectMembership
}

// BuildContext assembles the evaluation context: a nested map keyed by
// entity kind, each value a flat map of the entity's JSON attribute names.
func BuildContext(in ContextInput) map[string]any {
	ctx := map[string]any{
		"user":     userAttrs(in.User),
		"document": documentAttrs(in.Document),
	}

	if in.Team != nil {
		ctx["team"] = map[string]any{
			"id":   in.Team.ID,
			"name": in.Team.Name,
			"plan": string(in.Team.Plan),
		}
	}
	if in.Project != nil {
		ctx["project"] = map[string]any{
			"id":         in.Project.ID,
			"name":       in.Project.Name,
			"teamId":     in.Project.TeamID,
			"visibility": string(in.Project.Visibility),
		}
	}
	if in.TeamMembership != nil {
		ctx["teamMembership"] = map[string]any{
			"userId": in.TeamMembership.UserID,
			"teamId": in.TeamMembership.TeamID,
			"role":   string(in.TeamMembership.Role),
		}
	}
	if in.ProjectMembership != nil {
		ctx["projectMembership"] = map[string]any{
			"userId":    in.ProjectMembership.UserID,
			"projectId": in.ProjectMembership.ProjectID,
			"role":      string(in.ProjectMembership.Role),
		}
	}

	return ctx
}

func userAttrs(u *entity.User) map[string]any {
	if u == nil {
		return map[string]any{}
	}
	return map[string]any{
		"id":    u.ID,
		"email": u.Email,
		"name":  u.Name,
	}
}

// documentAttrs exposes deletedAt as nil when the document is live, so the
// "<>" operator distinguishes deleted from live documents.
func documentAttrs(d *entity.Document) map[string]any {
	if d == nil {
		return map[string]any{}
	}
	attrs := map[string]any{
		"id":                d.ID,
		"title":             d.Title,
		"projectId":         d.ProjectID,
		"creatorId":         d.CreatorID,
		"deletedAt":         nil,
		"publicLinkEnabled": d.PublicLinkEnabled,
	}
	if d.DeletedAt != nil {
		attrs["deletedAt"] = *d.DeletedAt
	}
	return attrs
}
