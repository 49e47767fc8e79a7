// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

// Package access implements the filter engine and evaluation context for
// attribute-based access control over documents.
package access

import (
	"fmt"
	"regexp"

	"github.com/samber/oops"
)

// resourceURNPattern matches urn:resource:<teamId>:<projectId>:<docId>.
// Each id is restricted to alphanumerics; any deviation is a validation
// error, not a not-found.
var resourceURNPattern = regexp.MustCompile(`^urn:resource:([A-Za-z0-9]+):([A-Za-z0-9]+):([A-Za-z0-9]+)$`)

// ResourceURN identifies a document within a project and team.
type ResourceURN struct {
	TeamID     string
	ProjectID  string
	DocumentID string
}

// ParseResourceURN parses a resource URN. A malformed URN returns an
// INVALID_RESOURCE_URN error.
func ParseResourceURN(s string) (ResourceURN, error) {
	m := resourceURNPattern.FindStringSubmatch(s)
	if m == nil {
		return ResourceURN{}, oops.
			Code("INVALID_RESOURCE_URN").
			With("resource_id", s).
			Errorf("invalid resource URN: expected urn:resource:<teamId>:<projectId>:<docId>")
	}
	return ResourceURN{TeamID: m[1], ProjectID: m[2], DocumentID: m[3]}, nil
}

// String renders the URN in wire format.
func (u ResourceURN) String() string {
	return fmt.Sprintf("urn:resource:%s:%s:%s", u.TeamID, u.ProjectID, u.DocumentID)
}

// ValidResourceURN reports whether s parses as a resource URN.
func ValidResourceURN(s string) bool {
	return resourceURNPattern.MatchString(s)
}
