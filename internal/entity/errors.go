// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package entity

import (
	"strings"

	"github.com/samber/oops"
)

// IsNotFound returns true if the error carries a *_NOT_FOUND code from an
// entity store.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	code, ok := oopsErr.Code().(string)
	return ok && strings.HasSuffix(code, "_NOT_FOUND")
}
