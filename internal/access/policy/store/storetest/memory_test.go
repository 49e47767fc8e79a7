// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPolicyStore_UpsertIdempotent(t *testing.T) {
	const resourceID = "urn:resource:acme:handbook:welcome1"
	doc := json.RawMessage(`{"resource":{"resourceId":"urn:resource:acme:handbook:welcome1","creatorId":"alice"},"policies":[]}`)
	s := NewMemoryPolicyStore()
	ctx := context.Background()

	require.NoError(t, s.SaveResourcePolicy(ctx, resourceID, doc))
	first, err := s.GetResourcePolicy(ctx, resourceID)
	require.NoError(t, err)

	require.NoError(t, s.SaveResourcePolicy(ctx, resourceID, doc))
	second, err := s.GetResourcePolicy(ctx, resourceID)
	require.NoError(t, err)

	assert.Equal(t, first.Document, second.Document)
	assert.Equal(t, first.CreatedAt, second.CreatedAt, "re-saving must not move the creation timestamp")
}

func TestMemoryPolicyStore_UserUpsertIdempotent(t *testing.T) {
	doc := json.RawMessage(`{"policies":[]}`)
	s := NewMemoryPolicyStore()
	ctx := context.Background()

	require.NoError(t, s.SaveUserPolicy(ctx, "alice", doc))
	require.NoError(t, s.SaveUserPolicy(ctx, "alice", doc))

	got, err := s.GetUserPolicy(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, doc, got.Document)
}
