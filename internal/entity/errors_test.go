// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "user not found code",
			err:  oops.Code("USER_NOT_FOUND").Errorf("user not found"),
			want: true,
		},
		{
			name: "membership not found code",
			err:  oops.Code("TEAM_MEMBERSHIP_NOT_FOUND").Errorf("team membership not found"),
			want: true,
		},
		{
			name: "wrapped not found code",
			err:  fmt.Errorf("lookup: %w", oops.Code("DOCUMENT_NOT_FOUND").Errorf("document not found")),
			want: true,
		},
		{
			name: "other oops code",
			err:  oops.Code("ENTITY_GET_FAILED").Errorf("query failed"),
			want: false,
		},
		{
			name: "oops error without code",
			err:  oops.Errorf("no code attached"),
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("not found"),
			want: false,
		},
		{
			name: "nil",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}
