// Package jsontree provides safe traversal helpers for JSON trees decoded
// into map[string]any / []any form. All lookups are total: any input yields
// a value, never a panic.
package jsontree

import (
	"sort"
	"strconv"
)

// Get walks a dotted key path through nested maps. It returns def the
// moment a segment is missing or the current value is not a map.
func Get(tree map[string]any, path string, def any) any {
	var cur any = tree
	start := 0
	for i := 0; i <= len(path); i++ {
		if i < len(path) && path[i] != '.' {
			continue
		}
		seg := path[start:i]
		start = i + 1

		m, ok := cur.(map[string]any)
		if !ok {
			return def
		}
		cur, ok = m[seg]
		if !ok {
			return def
		}
	}
	return cur
}

// Int walks a dotted key path and coerces the result to an integer.
// It returns def when the path is missing or the value is not numeric.
func Int(tree map[string]any, path string, def int64) int64 {
	n, ok := IntOK(tree, path)
	if !ok {
		return def
	}
	return n
}

// IntOK is Int with an explicit presence flag, for fields where absent and
// zero must stay distinguishable.
func IntOK(tree map[string]any, path string) (int64, bool) {
	return Coerce(Get(tree, path, nil))
}

// Coerce converts a decoded JSON value to int64. JSON numbers arrive as
// float64; the API also emits numeric strings for some count fields.
func Coerce(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		parsed, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// CollectTyped walks the whole tree depth-first and buckets every map that
// carries the given discriminator key by that key's string value. A parent
// is always visited before its children. Maps without the discriminator are
// still descended into. Map keys are visited in sorted order so that a
// given tree always produces the same bucket order; document order within
// an object is already lost at decode time.
func CollectTyped(tree any, key string) map[string][]map[string]any {
	buckets := make(map[string][]map[string]any)
	collectTyped(tree, key, buckets)
	return buckets
}

func collectTyped(node any, key string, buckets map[string][]map[string]any) {
	switch v := node.(type) {
	case map[string]any:
		if name, ok := v[key].(string); ok {
			buckets[name] = append(buckets[name], v)
		}
		for _, k := range sortedKeys(v) {
			collectTyped(v[k], key, buckets)
		}
	case []any:
		for _, item := range v {
			collectTyped(item, key, buckets)
		}
	}
}

// FindFirst returns the first map anywhere in the tree, in pre-order, for
// which pred returns true, or nil if none matches.
func FindFirst(tree any, pred func(map[string]any) bool) map[string]any {
	switch v := tree.(type) {
	case map[string]any:
		if pred(v) {
			return v
		}
		for _, k := range sortedKeys(v) {
			if found := FindFirst(v[k], pred); found != nil {
				return found
			}
		}
	case []any:
		for _, item := range v {
			if found := FindFirst(item, pred); found != nil {
				return found
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
