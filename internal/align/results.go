package align

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject rejects import payloads whose top level is not a JSON
// object.
var ErrNotObject = errors.New("synced results must be a JSON object")

// ParseResults validates and decodes an exported synced-results
// payload: a flat JSON object mapping event id to confirmed tracking
// time in integer milliseconds. Any malformed value rejects the whole
// payload; nothing is partially applied.
func ParseResults(data []byte) (map[string]int64, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding synced results: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}

	out := make(map[string]int64, len(obj))
	for id, v := range obj {
		num, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("synced results value for %q is not numeric", id)
		}
		ms, err := num.Int64()
		if err != nil {
			return nil, fmt.Errorf("synced results value for %q is not an integer millisecond count: %w", id, err)
		}
		out[id] = ms
	}
	return out, nil
}

// MarshalResults serializes a synced-results map into the flat JSON
// object exchange format.
func MarshalResults(results map[string]int64) ([]byte, error) {
	return json.Marshal(results)
}
