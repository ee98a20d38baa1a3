// Package document holds the schemaless JSON-shaped values that flow through
// the engine: node contexts, compute unit inputs and outputs, and edge values.
package document

import (
	"encoding/json"
	"fmt"
)

// Document is a decoded JSON object.
type Document map[string]any

// DeepMerge returns base overlaid with overlay. When both sides are JSON
// objects the result merges them key by key, recursively. Any other
// combination yields overlay unchanged: scalars and arrays replace outright.
//
// Neither argument is modified.
func DeepMerge(base, overlay any) any {
	baseObj, baseOK := asObject(base)
	overObj, overOK := asObject(overlay)
	if !baseOK || !overOK {
		return overlay
	}

	merged := make(map[string]any, len(baseObj)+len(overObj))
	for k, v := range baseObj {
		merged[k] = v
	}
	for k, v := range overObj {
		if existing, ok := merged[k]; ok {
			merged[k] = DeepMerge(existing, v)
			continue
		}
		merged[k] = v
	}
	return merged
}

// MergeField deep-merges value under key into doc and returns the result.
// doc itself is left untouched.
func MergeField(doc Document, key string, value any) Document {
	merged := DeepMerge(map[string]any(doc), map[string]any{key: value})
	return Document(merged.(map[string]any))
}

func asObject(v any) (map[string]any, bool) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, true
	case Document:
		return obj, true
	default:
		return nil, false
	}
}

// DecodeValue decodes a serialized edge value.
func DecodeValue(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON value: %w", err)
	}
	return v, nil
}

// Wrap builds the document handed to a compute unit: {"context": merged}.
func Wrap(merged Document) ([]byte, error) {
	if merged == nil {
		merged = Document{}
	}
	out, err := json.Marshal(map[string]any{"context": merged})
	if err != nil {
		return nil, fmt.Errorf("failed to encode unit input: %w", err)
	}
	return out, nil
}
