// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package policy defines the policy document model, the permission
// evaluator, and the decision service that ties them to the stores.
package policy

import (
	"bytes"
	"encoding/json"

	"github.com/samber/oops"

	"github.com/docgate/docgate/internal/access"
	"github.com/docgate/docgate/internal/access/types"
)

// Policy is a single rule inside a policy document. An empty (or absent)
// Filter list matches unconditionally.
type Policy struct {
	Description string             `json:"description,omitempty"`
	Filter      []types.Filter     `json:"filter,omitempty"`
	Permissions []types.Permission `json:"permissions"`
	Effect      types.Effect       `json:"effect"`
}

// ResourceInfo identifies the resource a policy document is attached to.
type ResourceInfo struct {
	ResourceID string `json:"resourceId"`
	CreatorID  string `json:"creatorId"`
}

// ResourceDocument is the full policy unit stored per resource, keyed by
// resource.resourceId.
type ResourceDocument struct {
	Resource ResourceInfo `json:"resource"`
	Policies []Policy     `json:"policies"`
}

// UserDocument is the policy unit stored per user, keyed by userId.
type UserDocument struct {
	Policies []Policy `json:"policies"`
}

// Validate checks a resource policy document against the ingest schema:
// a syntactically valid resource URN and well-formed policies. A failing
// document is rejected whole; no partial write may follow.
func (d *ResourceDocument) Validate() error {
	if _, err := access.ParseResourceURN(d.Resource.ResourceID); err != nil {
		return err
	}
	return validatePolicies(d.Policies)
}

// Validate checks a user policy document's policies.
func (d *UserDocument) Validate() error {
	return validatePolicies(d.Policies)
}

func validatePolicies(policies []Policy) error {
	for i, p := range policies {
		if len(p.Permissions) == 0 {
			return oops.
				Code("POLICY_INVALID").
				With("policy_index", i).
				Errorf("policy must declare at least one permission")
		}
		for _, perm := range p.Permissions {
			if !perm.Valid() {
				return oops.
					Code("POLICY_INVALID").
					With("policy_index", i).
					With("permission", string(perm)).
					Errorf("unknown permission %q", string(perm))
			}
		}
		if !p.Effect.Valid() {
			return oops.
				Code("POLICY_INVALID").
				With("policy_index", i).
				With("effect", string(p.Effect)).
				Errorf("unknown effect %q", string(p.Effect))
		}
		for j, f := range p.Filter {
			if f.Prop == "" {
				return oops.
					Code("POLICY_INVALID").
					With("policy_index", i).
					With("filter_index", j).
					Errorf("filter prop must not be empty")
			}
			if !f.Op.Valid() {
				return oops.
					Code("POLICY_INVALID").
					With("policy_index", i).
					With("filter_index", j).
					With("op", string(f.Op)).
					Errorf("unknown filter operator %q", string(f.Op))
			}
		}
	}
	return nil
}

// DecodeResourceDocument parses and validates a resource policy document.
// Parsing is strict: unknown fields are a validation error so misspelled
// filters are not silently ignored.
func DecodeResourceDocument(data []byte) (*ResourceDocument, error) {
	if err := ValidateResourceDocumentSchema(data); err != nil {
		return nil, err
	}

	var doc ResourceDocument
	if err := strictUnmarshal(data, &doc); err != nil {
		return nil, oops.Code("POLICY_INVALID").Wrapf(err, "malformed resource policy document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DecodeUserDocument parses and validates a user policy document.
func DecodeUserDocument(data []byte) (*UserDocument, error) {
	if err := ValidateUserDocumentSchema(data); err != nil {
		return nil, err
	}

	var doc UserDocument
	if err := strictUnmarshal(data, &doc); err != nil {
		return nil, oops.Code("POLICY_INVALID").Wrapf(err, "malformed user policy document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// strictUnmarshal decodes JSON rejecting unknown fields.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	//nolint:wrapcheck // callers wrap with the policy error code
	return dec.Decode(v)
}

// IsValidation returns true if the error carries a validation code
// (malformed URN, unknown action, or schema violation).
func IsValidation(err error) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	switch oopsErr.Code() {
	case "POLICY_INVALID", "INVALID_RESOURCE_URN", "INVALID_ACTION":
		return true
	}
	return false
}
