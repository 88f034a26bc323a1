package forms

import (
	"fmt"
	"reflect"

	"github.com/segmentio/encoding/json"
)

// Diff computes the minimal update payload: the wire fields of edited whose
// values differ from original. Unchanged fields are omitted, so an edit that
// touches only `name` submits exactly {"name": ...}.
func Diff(original, edited any) (map[string]any, error) {
	origMap, err := toWireMap(original)
	if err != nil {
		return nil, fmt.Errorf("diff original: %w", err)
	}
	editMap, err := toWireMap(edited)
	if err != nil {
		return nil, fmt.Errorf("diff edited: %w", err)
	}

	patch := make(map[string]any)
	for key, editVal := range editMap {
		origVal, existed := origMap[key]
		if !existed || !reflect.DeepEqual(origVal, editVal) {
			patch[key] = editVal
		}
	}
	// A field present before and absent now was cleared: send an explicit
	// null so the backend drops it.
	for key := range origMap {
		if _, still := editMap[key]; !still {
			patch[key] = nil
		}
	}
	return patch, nil
}

// toWireMap round-trips v through JSON so comparisons happen on the exact
// representation the backend would receive.
func toWireMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
