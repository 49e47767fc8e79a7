// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 DocGate Contributors

package access

import (
	"strings"

	"github.com/docgate/docgate/internal/access/types"
)

// EvaluateFilter evaluates a single filter predicate against the context.
// Evaluation is total: missing properties resolve to nil, type mismatches
// yield false (or the documented vacuous value for negated operators), and
// no input can cause a panic.
func EvaluateFilter(f types.Filter, ctx map[string]any) bool {
	left := ResolveProperty(f.Prop, ctx)
	right := ResolveValue(f.Value, ctx)
	return applyOperator(left, f.Op, right)
}

// EvaluateFilters evaluates a filter list with AND semantics. An empty or
// nil list matches unconditionally.
func EvaluateFilters(filters []types.Filter, ctx map[string]any) bool {
	for _, f := range filters {
		if !EvaluateFilter(f, ctx) {
			return false
		}
	}
	return true
}

// ResolveProperty walks a dot-separated path through the context. Each step
// requires the current node to be a map; a missing segment or a non-map node
// resolves to nil. The empty path resolves to nil.
func ResolveProperty(path string, ctx map[string]any) any {
	if path == "" {
		return nil
	}

	var current any = ctx
	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = node[segment]
		if !ok {
			return nil
		}
	}
	return current
}

// ResolveValue resolves a filter value at operator time. A string containing
// a dot whose first segment names a top-level context key is dereferenced as
// a property path; everything else is returned as a literal. The set of
// recognized keys depends on which optional entities the caller supplied, so
// this must not be applied at policy load time.
func ResolveValue(v any, ctx map[string]any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	root, _, found := strings.Cut(s, ".")
	if !found {
		return v
	}
	if _, present := ctx[root]; !present {
		return v
	}
	return ResolveProperty(s, ctx)
}

// applyOperator dispatches on the operator. "<>" is special-cased before the
// nil short-circuit: it is the only operator that inspects a nil left side.
func applyOperator(left any, op types.FilterOperator, right any) bool {
	if op == types.OpNotNull {
		return left != nil
	}
	if left == nil {
		return false
	}

	switch op {
	case types.OpEqual:
		return valuesEqual(left, right)

	case types.OpNotEqual:
		return !valuesEqual(left, right)

	case types.OpGreater, types.OpGreaterOrEqual, types.OpLess, types.OpLessOrEqual:
		return compareOrdered(left, right, op)

	case types.OpIn:
		seq := toSequence(right)
		if seq == nil {
			return false
		}
		return sequenceContains(seq, left)

	case types.OpNotIn:
		seq := toSequence(right)
		if seq == nil {
			return true
		}
		return !sequenceContains(seq, left)

	case types.OpHas:
		return evalHas(left, right)

	case types.OpHasNot:
		lStr, lIsStr := left.(string)
		rStr, rIsStr := right.(string)
		if lIsStr && rIsStr {
			return !strings.Contains(lStr, rStr)
		}
		if seq := toSequence(left); seq != nil {
			return !sequenceContains(seq, right)
		}
		return true

	default:
		return false
	}
}

// evalHas implements the positive containment check: substring when both
// sides are strings, membership when the left side is a sequence.
func evalHas(left, right any) bool {
	lStr, lIsStr := left.(string)
	rStr, rIsStr := right.(string)
	if lIsStr && rIsStr {
		return strings.Contains(lStr, rStr)
	}
	if seq := toSequence(left); seq != nil {
		return sequenceContains(seq, right)
	}
	return false
}

// compareOrdered performs natural ordered comparison: numeric when both
// sides coerce to numbers, lexicographic when both are strings. Operands
// that are not order-comparable yield false.
func compareOrdered(left, right any, op types.FilterOperator) bool {
	lNum, lIsNum := toFloat64(left)
	rNum, rIsNum := toFloat64(right)
	if lIsNum && rIsNum {
		return orderedResult(compareFloats(lNum, rNum), op)
	}

	lStr, lIsStr := left.(string)
	rStr, rIsStr := right.(string)
	if lIsStr && rIsStr {
		return orderedResult(strings.Compare(lStr, rStr), op)
	}

	return false
}

func compareFloats(l, r float64) int {
	switch {
	case l < r:
		return -1
	case l > r:
		return 1
	default:
		return 0
	}
}

func orderedResult(cmp int, op types.FilterOperator) bool {
	switch op {
	case types.OpGreater:
		return cmp > 0
	case types.OpGreaterOrEqual:
		return cmp >= 0
	case types.OpLess:
		return cmp < 0
	case types.OpLessOrEqual:
		return cmp <= 0
	default:
		return false
	}
}

// valuesEqual compares scalars by value with numeric coercion, so a JSON
// float64 compares equal to an int carried by an entity attribute. Booleans
// compare exactly: true only equals boolean true.
func valuesEqual(a, b any) bool {
	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		return aNum == bNum
	}

	aStr, aIsStr := a.(string)
	bStr, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return aStr == bStr
	}

	aBool, aIsBool := a.(bool)
	bBool, bIsBool := b.(bool)
	if aIsBool && bIsBool {
		return aBool == bBool
	}

	return false
}

// toFloat64 attempts to convert a value to float64, handling all Go numeric
// types that may appear in map[string]any contexts.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// toSequence converts a value to []any if it is a sequence. Supports []any
// (JSON-decoded lists) and []string (entity attributes).
func toSequence(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	case []string:
		result := make([]any, len(s))
		for i, elem := range s {
			result[i] = elem
		}
		return result
	default:
		return nil
	}
}

func sequenceContains(seq []any, v any) bool {
	for _, elem := range seq {
		if valuesEqual(v, elem) {
			return true
		}
	}
	return false
}
