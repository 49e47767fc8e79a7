// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package policy

import (
	"context"
	"encoding/json"

	"github.com/samber/oops"

	"github.com/docgate/docgate/internal/access/policy/store"
)

// DefaultResourceDocument composes the canned baseline for a fresh
// resource: creator access, team admin access, and public link viewing,
// merged into one document.
func DefaultResourceDocument(resourceID, creatorID string) *ResourceDocument {
	doc := CreatorPolicy(resourceID, creatorID)
	doc = Merge(doc, TeamAdminPolicy(resourceID, creatorID))
	doc = Merge(doc, PublicViewPolicy(resourceID, creatorID))
	return doc
}

// SeedResourcePolicy writes the default document for a resource unless one
// already exists, so reseeding never clobbers operator edits.
func SeedResourcePolicy(ctx context.Context, policies store.PolicyStore, resourceID, creatorID string) (created bool, err error) {
	_, err = policies.GetResourcePolicy(ctx, resourceID)
	if err == nil {
		return false, nil
	}
	if !store.IsNotFound(err) {
		return false, err
	}

	doc := DefaultResourceDocument(resourceID, creatorID)
	if err := doc.Validate(); err != nil {
		return false, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return false, oops.Code("POLICY_INVALID").Wrapf(err, "encode seed policy document")
	}
	if err := policies.SaveResourcePolicy(ctx, resourceID, raw); err != nil {
		return false, err
	}
	return true, nil
}
