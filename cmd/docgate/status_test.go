// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		name   string
		status MigrationStatus
		want   string
	}{
		{
			name:   "clean with nothing pending",
			status: MigrationStatus{Version: 1},
			want:   "schema version: 1\npending migrations: none",
		},
		{
			name:   "dirty schema",
			status: MigrationStatus{Version: 2, Dirty: true},
			want:   "schema version: 2 (dirty)\npending migrations: none",
		},
		{
			name:   "pending migrations listed",
			status: MigrationStatus{Version: 1, Pending: []uint{2, 3}},
			want:   "schema version: 1\npending migrations:\n  000002\n  000003",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatStatus(tt.status))
		})
	}
}

func TestStatusCommand_NoDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	configFile = ""

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"status"})

	err := cmd.Execute()
	assert.Error(t, err)
}
