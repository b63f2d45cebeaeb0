package state

import (
	"encoding/json"
	"fmt"
)

// DeepMerge returns a new document holding base overlaid with overlay.
//
// Nested objects are merged key by key. Scalars and arrays in overlay replace the
// value at the same path in base. Keys absent from overlay keep their base value.
// Neither input is modified.
func DeepMerge(base, overlay Document) Document {
	merged := make(Document, len(base)+len(overlay))

	for key, value := range base {
		merged[key] = cloneValue(value)
	}

	for key, value := range overlay {
		overlayMap, overlayIsMap := value.(Document)
		baseMap, baseIsMap := merged[key].(Document)

		if overlayIsMap && baseIsMap {
			merged[key] = DeepMerge(baseMap, overlayMap)

			continue
		}

		merged[key] = cloneValue(value)
	}

	return merged
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case Document:
		return DeepMerge(nil, typed)
	case []any:
		cloned := make([]any, len(typed))
		for i, item := range typed {
			cloned[i] = cloneValue(item)
		}

		return cloned
	default:
		return value
	}
}

// normalize converts attrs into plain JSON values (objects, arrays, strings,
// float64 numbers, booleans) so that typed Go values merge like decoded ones.
func normalize(attrs any) (Document, error) {
	data, err := json.Marshal(attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attributes: %w", err)
	}

	var doc Document

	err = json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}

	if doc == nil {
		doc = Document{}
	}

	return doc, nil
}
