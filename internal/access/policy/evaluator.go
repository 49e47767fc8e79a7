// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package policy

import (
	"fmt"

	"github.com/docgate/docgate/internal/access"
	"github.com/docgate/docgate/internal/access/types"
	"github.com/docgate/docgate/internal/entity"
)

// Evaluation messages are part of the wire contract.
const (
	msgAllow       = "Allow"
	msgDeny        = "Deny"
	msgDenyDeleted = "Deny: Document is deleted"
	msgDefaultDeny = "Deny: No matching policy found"
)

// EvaluationInput carries everything a single decision needs. The caller
// fetches all inputs up front; evaluation itself performs no I/O. Optional
// fields may be nil, which denies-via-absence any policy whose filters
// reference the missing entity.
type EvaluationInput struct {
	User              *entity.User
	Document          *entity.Document
	ResourcePolicy    *ResourceDocument
	UserPolicy        *UserDocument
	Team              *entity.Team
	Project           *entity.Project
	TeamMembership    *entity.TeamMembership
	ProjectMembership *entity.ProjectMembership
}

// EvaluatePermission decides whether the user holds the permission on the
// document.
//
// Precedence, highest first:
//  1. soft-delete gate: a deleted document denies everything,
//  2. any matching DENY policy,
//  3. any matching ALLOW policy,
//  4. default deny.
//
// Evaluation is pure and total: it never fails for domain reasons and is
// safe to call from many goroutines concurrently.
func EvaluatePermission(in EvaluationInput, permission types.Permission) types.Decision {
	if in.Document != nil && in.Document.IsDeleted() {
		return types.Decision{Allowed: false, Message: msgDenyDeleted, MatchedPolicies: []string{}}
	}

	ctx := access.BuildContext(access.ContextInput{
		User:              in.User,
		Document:          in.Document,
		Team:              in.Team,
		Project:           in.Project,
		TeamMembership:    in.TeamMembership,
		ProjectMembership: in.ProjectMembership,
	})

	var denied, allowed []string
	if in.ResourcePolicy != nil {
		denied, allowed = collectMatches(in.ResourcePolicy.Policies, "resource", permission, ctx, denied, allowed)
	}
	if in.UserPolicy != nil {
		denied, allowed = collectMatches(in.UserPolicy.Policies, "user", permission, ctx, denied, allowed)
	}

	// Deny-overrides combination: one matching deny outranks any number of
	// allows, and silence is denial.
	switch {
	case len(denied) > 0:
		return types.Decision{Allowed: false, Message: msgDeny, MatchedPolicies: denied}
	case len(allowed) > 0:
		return types.Decision{Allowed: true, Message: msgAllow, MatchedPolicies: allowed}
	default:
		return types.Decision{Allowed: false, Message: msgDefaultDeny, MatchedPolicies: []string{}}
	}
}

// collectMatches appends the display names of matching policies to the deny
// and allow lists, preserving declared order within a document. Unnamed
// policies get a positional name so auditors can still identify them.
func collectMatches(policies []Policy, source string, permission types.Permission, ctx map[string]any, denied, allowed []string) ([]string, []string) {
	for idx, p := range policies {
		if !containsPermission(p.Permissions, permission) {
			continue
		}
		if len(p.Filter) > 0 && !access.EvaluateFilters(p.Filter, ctx) {
			continue
		}

		name := p.Description
		if name == "" {
			name = fmt.Sprintf("%s_policy_%d", source, idx)
		}
		if p.Effect == types.EffectDeny {
			denied = append(denied, name)
		} else {
			allowed = append(allowed, name)
		}
	}
	return denied, allowed
}

func containsPermission(perms []types.Permission, p types.Permission) bool {
	for _, candidate := range perms {
		if candidate == p {
			return true
		}
	}
	return false
}
