// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package policy

import (
	"encoding/json"
	"fmt"

	"github.com/samber/oops"

	"github.com/docgate/docgate/internal/access"
	"github.com/docgate/docgate/internal/access/types"
)

// SimpleOptions is the simplified ingest form: grant (or deny) a single
// permission on a resource to a single target user.
type SimpleOptions struct {
	ResourceID string           `json:"resourceId"`
	Action     types.Permission `json:"action"`
	Target     string           `json:"target"`
	Effect     types.Effect     `json:"effect,omitempty"`
}

// Validate checks the simple options for ingest.
func (o *SimpleOptions) Validate() error {
	if _, err := access.ParseResourceURN(o.ResourceID); err != nil {
		return err
	}
	if !o.Action.Valid() {
		return oops.
			Code("INVALID_ACTION").
			With("action", string(o.Action)).
			Errorf("unknown action %q", string(o.Action))
	}
	if o.Target == "" {
		return oops.Code("POLICY_INVALID").Errorf("target user must not be empty")
	}
	if o.Effect != "" && !o.Effect.Valid() {
		return oops.
			Code("POLICY_INVALID").
			With("effect", string(o.Effect)).
			Errorf("unknown effect %q", string(o.Effect))
	}
	return nil
}

// BuildFromOptions upconverts simple options into a full resource policy
// document: one policy scoped to the target user via a user.id filter.
// The effect defaults to allow. creatorID comes from the caller identity;
// when empty the document records "unknown", preserving the lenient wire
// behavior for unauthenticated ingest.
func BuildFromOptions(opts SimpleOptions, creatorID string) (*ResourceDocument, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	effect := opts.Effect
	if effect == "" {
		effect = types.EffectAllow
	}
	if creatorID == "" {
		creatorID = "unknown"
	}

	return &ResourceDocument{
		Resource: ResourceInfo{
			ResourceID: opts.ResourceID,
			CreatorID:  creatorID,
		},
		Policies: []Policy{
			{
				Description: fmt.Sprintf("Grant %s permission to user %s", opts.Action, opts.Target),
				Permissions: []types.Permission{opts.Action},
				Effect:      effect,
				Filter: []types.Filter{
					{Prop: "user.id", Op: types.OpEqual, Value: opts.Target},
				},
			},
		},
	}, nil
}

// DecodeIngest parses a policy ingest body, which is either a full resource
// policy document or simple options, discriminated structurally: a body with
// a "policies" key is a full document, a body with a "target" key is the
// simple form. creatorID is threaded into upconverted documents only; full
// documents carry their own resource info.
func DecodeIngest(data []byte, creatorID string) (*ResourceDocument, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, oops.Code("POLICY_INVALID").Wrapf(err, "policy input is not a JSON object")
	}

	if _, isFull := probe["policies"]; isFull {
		return DecodeResourceDocument(data)
	}

	if _, isSimple := probe["target"]; !isSimple {
		return nil, oops.
			Code("POLICY_INVALID").
			Errorf("policy input is neither a policy document nor simple policy options")
	}

	var opts SimpleOptions
	if err := strictUnmarshal(data, &opts); err != nil {
		return nil, oops.Code("POLICY_INVALID").Wrapf(err, "malformed simple policy options")
	}
	return BuildFromOptions(opts, creatorID)
}

// Merge appends incoming's policies to existing's. The existing resource
// info wins and duplicates are preserved: an auditor may legitimately want
// to see repeated entries. A nil existing returns incoming unchanged.
func Merge(existing, incoming *ResourceDocument) *ResourceDocument {
	if existing == nil {
		return incoming
	}
	merged := make([]Policy, 0, len(existing.Policies)+len(incoming.Policies))
	merged = append(merged, existing.Policies...)
	merged = append(merged, incoming.Policies...)
	return &ResourceDocument{
		Resource: existing.Resource,
		Policies: merged,
	}
}

// CreatorPolicy grants the document creator every permission.
func CreatorPolicy(resourceID, creatorID string) *ResourceDocument {
	return &ResourceDocument{
		Resource: ResourceInfo{ResourceID: resourceID, CreatorID: creatorID},
		Policies: []Policy{
			{
				Description: "Creator has full access",
				Permissions: types.AllPermissions(),
				Effect:      types.EffectAllow,
				Filter: []types.Filter{
					{Prop: "document.creatorId", Op: types.OpEqual, Value: "user.id"},
				},
			},
		},
	}
}

// TeamAdminPolicy grants team admins every permission.
func TeamAdminPolicy(resourceID, creatorID string) *ResourceDocument {
	return &ResourceDocument{
		Resource: ResourceInfo{ResourceID: resourceID, CreatorID: creatorID},
		Policies: []Policy{
			{
				Description: "Team admins have full access",
				Permissions: types.AllPermissions(),
				Effect:      types.EffectAllow,
				Filter: []types.Filter{
					{Prop: "teamMembership.role", Op: types.OpEqual, Value: "admin"},
				},
			},
		},
	}
}

// PublicViewPolicy grants view access while the document's public link is
// enabled.
func PublicViewPolicy(resourceID, creatorID string) *ResourceDocument {
	return &ResourceDocument{
		Resource: ResourceInfo{ResourceID: resourceID, CreatorID: creatorID},
		Policies: []Policy{
			{
				Description: "Public view access when link is enabled",
				Permissions: []types.Permission{types.PermissionView},
				Effect:      types.EffectAllow,
				Filter: []types.Filter{
					{Prop: "document.publicLinkEnabled", Op: types.OpEqual, Value: true},
				},
			},
		},
	}
}
