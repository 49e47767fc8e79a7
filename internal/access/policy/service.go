// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package policy

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/docgate/docgate/internal/access"
	"github.com/docgate/docgate/internal/access/policy/store"
	"github.com/docgate/docgate/internal/access/types"
	"github.com/docgate/docgate/internal/entity"
)

// CheckResult is the outcome of a permission check, with the timing the
// decision API exposes and a ULID correlating the decision in logs.
type CheckResult struct {
	DecisionID      string
	Allowed         bool
	Message         string
	MatchedPolicies []string
	EvaluationTime  time.Duration
}

// Service orchestrates a decision: URN parsing, store lookups, context
// assembly, and evaluation. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	entities entity.Store
	policies store.PolicyStore
}

// NewService creates a decision service over the given stores.
func NewService(entities entity.Store, policies store.PolicyStore) *Service {
	return &Service{entities: entities, policies: policies}
}

// Check decides whether userID holds action on the resource named by
// resourceID. The user, document, and resource policy are required; team,
// project, memberships, and the user policy are optional and their absence
// only denies policies that reference them. Store errors propagate; the
// evaluation itself cannot fail.
func (s *Service) Check(ctx context.Context, resourceID, userID string, action types.Permission) (*CheckResult, error) {
	start := time.Now()

	urn, err := access.ParseResourceURN(resourceID)
	if err != nil {
		return nil, err
	}
	if !action.Valid() {
		return nil, oops.
			Code("INVALID_ACTION").
			With("action", string(action)).
			Errorf("unknown action %q", string(action))
	}

	user, err := s.entities.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	document, err := s.entities.GetDocument(ctx, urn.DocumentID)
	if err != nil {
		return nil, err
	}

	resourcePolicy, err := s.loadResourcePolicy(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	userPolicy, err := s.loadUserPolicy(ctx, userID)
	if err != nil {
		return nil, err
	}

	in := EvaluationInput{
		User:           user,
		Document:       document,
		ResourcePolicy: resourcePolicy,
		UserPolicy:     userPolicy,
	}
	if err := s.loadOptionalContext(ctx, urn, userID, &in); err != nil {
		return nil, err
	}

	decision := EvaluatePermission(in, action)
	elapsed := time.Since(start)
	recordDecisionMetrics(elapsed, decisionOutcome(decision.Allowed, decision.Message))

	result := &CheckResult{
		DecisionID:      ulid.Make().String(),
		Allowed:         decision.Allowed,
		Message:         decision.Message,
		MatchedPolicies: decision.MatchedPolicies,
		EvaluationTime:  elapsed,
	}

	slog.InfoContext(ctx, "permission decision",
		"decision_id", result.DecisionID,
		"resource_id", resourceID,
		"user_id", userID,
		"action", string(action),
		"allowed", result.Allowed,
		"matched_policies", result.MatchedPolicies,
		"duration_us", elapsed.Microseconds(),
	)

	return result, nil
}

// loadResourcePolicy fetches and decodes the required resource policy
// document.
func (s *Service) loadResourcePolicy(ctx context.Context, resourceID string) (*ResourceDocument, error) {
	stored, err := s.policies.GetResourcePolicy(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	return decodeStored(stored.Document, "resource", resourceID)
}

// loadUserPolicy fetches the optional user policy document. Absence is not
// an error.
func (s *Service) loadUserPolicy(ctx context.Context, userID string) (*UserDocument, error) {
	stored, err := s.policies.GetUserPolicy(ctx, userID)
	if store.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var doc UserDocument
	if err := json.Unmarshal(stored.Document, &doc); err != nil {
		return nil, oops.
			Code("POLICY_CORRUPT").
			With("user_id", userID).
			Wrapf(err, "stored user policy document does not decode")
	}
	return &doc, nil
}

// loadOptionalContext fetches team, project, and memberships, treating
// not-found as absence. Memberships are only consulted when their parent
// entity exists.
func (s *Service) loadOptionalContext(ctx context.Context, urn access.ResourceURN, userID string, in *EvaluationInput) error {
	team, err := s.entities.GetTeam(ctx, urn.TeamID)
	if err != nil && !entity.IsNotFound(err) {
		return err
	}
	in.Team = team

	project, err := s.entities.GetProject(ctx, urn.ProjectID)
	if err != nil && !entity.IsNotFound(err) {
		return err
	}
	in.Project = project

	if in.Team != nil {
		tm, err := s.entities.GetTeamMembership(ctx, userID, urn.TeamID)
		if err != nil && !entity.IsNotFound(err) {
			return err
		}
		in.TeamMembership = tm
	}
	if in.Project != nil {
		pm, err := s.entities.GetProjectMembership(ctx, userID, urn.ProjectID)
		if err != nil && !entity.IsNotFound(err) {
			return err
		}
		in.ProjectMembership = pm
	}
	return nil
}

// decodeStored unmarshals a stored policy document. Stored documents were
// validated at ingest, so a decode failure means the stored blob is corrupt.
func decodeStored(data json.RawMessage, kind, key string) (*ResourceDocument, error) {
	var doc ResourceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, oops.
			Code("POLICY_CORRUPT").
			With("kind", kind).
			With("key", key).
			Wrapf(err, "stored policy document does not decode")
	}
	return &doc, nil
}
