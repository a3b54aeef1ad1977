package storage

import (
	"encoding/json"
	"reflect"
)

// Matches reports whether rec satisfies every equality predicate in query.
// Numeric values are normalized before comparison because records that
// round-trip through JSON carry float64 where callers often pass int.
func Matches(rec Record, query Query) bool {
	for key, want := range query {
		got, ok := rec[key]
		if !ok {
			return false
		}
		if !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		bf, bok := asFloat(b)
		return bok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Clone deep-copies a record so callers can never reach the stored value.
func Clone(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

// CloneAll deep-copies a slice of records.
func CloneAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, rec := range recs {
		out[i] = Clone(rec)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return Clone(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Merge applies a shallow patch onto a record in place, preserving the id.
func Merge(rec Record, patch Patch) {
	id := rec[IDField]
	for k, v := range patch {
		rec[k] = cloneValue(v)
	}
	rec[IDField] = id
}
