package flowdsl

import (
	"sort"
	"strings"
)

// SetPath writes value into a nested map under a dotted path, creating
// intermediate maps as needed. A non-map intermediate value is replaced.
func SetPath(root map[string]any, path string, value any) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return
	}
	current := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			child = map[string]any{}
			current[segment] = child
		}
		current = child
	}
	current[segments[len(segments)-1]] = value
}

// GetPath reads the value stored under a dotted path.
func GetPath(root map[string]any, path string) (any, bool) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, false
	}
	current := root
	for _, segment := range segments[:len(segments)-1] {
		child, ok := current[segment].(map[string]any)
		if !ok {
			return nil, false
		}
		current = child
	}
	value, ok := current[segments[len(segments)-1]]
	return value, ok
}

// FlattenMap converts a nested map to a single-level map with dotted keys.
func FlattenMap(nested map[string]any) map[string]any {
	flat := map[string]any{}
	flattenInto(flat, "", nested)
	return flat
}

func flattenInto(flat map[string]any, prefix string, nested map[string]any) {
	for key, value := range nested {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if child, ok := value.(map[string]any); ok && len(child) > 0 {
			flattenInto(flat, path, child)
			continue
		}
		flat[path] = value
	}
}

// UnflattenMap converts a dotted-key map back to a nested map.
func UnflattenMap(flat map[string]any) map[string]any {
	nested := map[string]any{}
	for path, value := range flat {
		SetPath(nested, path, value)
	}
	return nested
}

// sortedFlatKeys returns the dotted keys of a nested map in sorted order,
// which is the serializer's canonical key ordering.
func sortedFlatKeys(flat map[string]any) []string {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func splitPath(path string) []string {
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
