package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Serializer converts values to and from their byte encoding.
type Serializer interface {
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
}

// JSONSerializer is the default Serializer backed by encoding/json.
type JSONSerializer struct{}

// Serialize implements Serializer.
func (JSONSerializer) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json serialize: %w", err)
	}
	return data, nil
}

// Deserialize implements Serializer.
func (JSONSerializer) Deserialize(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json deserialize: %w", err)
	}
	return nil
}

// CloneObject returns a deep copy of a JSON object. Values that do not
// encode as JSON are rejected. Numbers keep their exact text as json.Number.
func CloneObject(m map[string]any) (map[string]any, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, InvalidArgument("payload is not a JSON object: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, InvalidArgument("payload is not a JSON object: %v", err)
	}
	return out, nil
}

// CopyTree copies the maps and slices of a decoded JSON value.
func CopyTree(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = CopyTree(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CopyTree(e)
		}
		return out
	default:
		return v
	}
}
