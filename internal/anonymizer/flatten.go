package anonymizer

import "strings"

// Flatten converts a nested record into a flat mapping from dotted path to
// leaf value. Only nested mappings are descended into; sequences and scalars
// are terminal. An empty nested mapping contributes no paths.
func Flatten(record map[string]interface{}, sep string) map[string]Value {
	flat := make(map[string]Value, len(record))
	flattenInto(flat, record, "", sep)
	return flat
}

func flattenInto(flat map[string]Value, m map[string]interface{}, prefix, sep string) {
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + sep + k
		}
		switch child := v.(type) {
		case map[string]interface{}:
			flattenInto(flat, child, path, sep)
		case []interface{}:
			flat[path] = Sequence(child)
		default:
			flat[path] = Scalar(v)
		}
	}
}

// Unflatten rebuilds the nested record shape from flat dotted paths. Paths
// that were removed simply do not reappear, so fully suppressed subtrees
// leave no empty parent objects behind. Round-trips with Flatten as long as
// no original key contains the separator.
func Unflatten(flat map[string]interface{}, sep string) map[string]interface{} {
	out := make(map[string]interface{})
	for path, v := range flat {
		parts := strings.Split(path, sep)
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]interface{})
			if !ok {
				next = make(map[string]interface{})
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = v
	}
	return out
}
