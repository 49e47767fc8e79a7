// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package types defines the core types shared by the filter engine and the
// policy evaluator. Wire-level names (enum strings, JSON field names) are
// part of the public API and must not change.
package types

// Permission is an action a policy can grant or deny on a document.
type Permission string

// Permission constants define the valid document permissions.
const (
	PermissionView   Permission = "can_view"
	PermissionEdit   Permission = "can_edit"
	PermissionDelete Permission = "can_delete"
	PermissionShare  Permission = "can_share"
)

// AllPermissions returns every permission in declaration order.
func AllPermissions() []Permission {
	return []Permission{PermissionView, PermissionEdit, PermissionDelete, PermissionShare}
}

// Valid reports whether the permission is within the enum range.
// Comparison is case-sensitive.
func (p Permission) Valid() bool {
	switch p {
	case PermissionView, PermissionEdit, PermissionDelete, PermissionShare:
		return true
	}
	return false
}

// Effect declares whether a matching policy allows or denies its permissions.
type Effect string

// Effect constants define the valid policy effects.
const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Valid reports whether the effect is within the enum range.
func (e Effect) Valid() bool {
	return e == EffectAllow || e == EffectDeny
}

// FilterOperator is a comparison operator in a filter predicate. The strings
// are the literal wire values, punctuation included.
type FilterOperator string

// FilterOperator constants define the valid filter operators.
const (
	OpEqual          FilterOperator = "=="
	OpNotEqual       FilterOperator = "!="
	OpGreater        FilterOperator = ">"
	OpGreaterOrEqual FilterOperator = ">="
	OpLess           FilterOperator = "<"
	OpLessOrEqual    FilterOperator = "<="
	OpNotNull        FilterOperator = "<>"
	OpIn             FilterOperator = "in"
	OpNotIn          FilterOperator = "not in"
	OpHas            FilterOperator = "has"
	OpHasNot         FilterOperator = "has not"
)

// Valid reports whether the operator is within the enum range.
func (op FilterOperator) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual,
		OpNotNull, OpIn, OpNotIn, OpHas, OpHasNot:
		return true
	}
	return false
}

// Filter is a single predicate evaluated against the evaluation context.
// Prop is a dot-separated property path; Value may be a literal or, when it
// is a string whose first segment names a context key, a property reference.
type Filter struct {
	Prop  string         `json:"prop"`
	Op    FilterOperator `json:"op"`
	Value any            `json:"value"`
}

// Decision is the outcome of evaluating a permission request. MatchedPolicies
// carries the display names of the policies that produced the outcome so
// auditors can identify them; it is empty for the soft-delete gate and the
// default deny.
type Decision struct {
	Allowed         bool     `json:"allowed"`
	Message         string   `json:"message"`
	MatchedPolicies []string `json:"matched_policies"`
}
