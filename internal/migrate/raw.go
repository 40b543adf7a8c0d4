package migrate

import (
	"math"
	"sort"
)

// Raw is a decoded but untyped document. Nested objects are map[string]any
// and arrays are []any, exactly as encoding/json produces them.
type Raw map[string]any

// Version returns the document's schema version. A missing or unusable
// version field means the original, unversioned schema (1).
func (r Raw) Version() int {
	return versionOf(r["version"])
}

// versionOf is the one rule for reading a version value: a positive integral
// number, otherwise 1.
func versionOf(v any) int {
	n, ok := asInt(v)
	if !ok || n < 1 {
		return 1
	}
	return n
}

// Clone returns a deep copy of r.
func (r Raw) Clone() Raw {
	if r == nil {
		return nil
	}
	return Raw(cloneValue(map[string]any(r)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Raw:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Raw:
		return map[string]any(t), true
	}
	return nil, false
}

func asString(v any, def string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return def
}

// asInt accepts any JSON number with an integral value.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	}
	return 0, false
}

func asBool(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// optString returns v when it is a non-empty string and nil otherwise.
func optString(v any) any {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return nil
}

// objects returns the object elements of a JSON array, dropping anything else.
func objects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, el := range list {
		if m, ok := asMap(el); ok {
			out = append(out, m)
		}
	}
	return out
}

func objectList(ms []map[string]any) []any {
	out := make([]any, len(ms))
	for i, m := range ms {
		out[i] = m
	}
	return out
}

// stringSet returns the distinct non-empty strings of a JSON array in order.
func stringSet(v any) []any {
	list, _ := v.([]any)
	seen := make(map[string]bool, len(list))
	out := make([]any, 0, len(list))
	for _, el := range list {
		s, ok := el.(string)
		if !ok || s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// weekList returns the distinct positive integral week numbers of a JSON
// array, sorted.
func weekList(v any) []int {
	list, _ := v.([]any)
	seen := make(map[int]bool, len(list))
	out := make([]int, 0, len(list))
	for _, el := range list {
		w, ok := asInt(el)
		if !ok || w < 1 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	sort.Ints(out)
	return out
}

func intsToAny(vals []int) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}

// densePositions assigns 0..n-1 under key within each group, ordering by the
// existing numeric value of key and then by slice order.
func densePositions(items []map[string]any, key string, group func(map[string]any) string) {
	groups := make(map[string][]int)
	var order []string
	for i, it := range items {
		g := group(it)
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], i)
	}
	for _, g := range order {
		idx := groups[g]
		sort.SliceStable(idx, func(a, b int) bool {
			pa, okA := asInt(items[idx[a]][key])
			pb, okB := asInt(items[idx[b]][key])
			if okA != okB {
				return okA
			}
			return okA && pa < pb
		})
		for pos, i := range idx {
			items[i][key] = pos
		}
	}
}
