package docstore

import (
	"encoding/json"
	"sort"
	"strings"
)

// applyWrite computes the document body that results from w over current.
// current is not modified.
func applyWrite(current map[string]interface{}, w Write) (map[string]interface{}, error) {
	var base map[string]interface{}
	if w.Data != nil {
		base = w.Data
	} else {
		base = current
	}
	out, err := normalize(base)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(w.Fields))
	for k := range w.Fields {
		keys = append(keys, k)
	}
	// Shorter paths first so "a" is set before "a/b" refines it.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		v, err := normalizeValue(w.Fields[k])
		if err != nil {
			return nil, err
		}
		setField(out, strings.Split(k, "/"), v)
	}
	return out, nil
}

func setField(doc map[string]interface{}, segs []string, v interface{}) {
	node := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := node[seg].(map[string]interface{})
		if !ok {
			if v == nil {
				return
			}
			next = map[string]interface{}{}
			node[seg] = next
		}
		node = next
	}
	last := segs[len(segs)-1]
	if v == nil {
		delete(node, last)
		return
	}
	node[last] = v
}

// normalize deep-copies a document through JSON so every backend hands back
// the same value shapes: float64 numbers, []interface{} lists, string times.
func normalize(m map[string]interface{}) (map[string]interface{}, error) {
	if m == nil {
		return map[string]interface{}{}, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeValue(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
