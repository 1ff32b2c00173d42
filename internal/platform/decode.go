package platform

import (
	"bytes"
	"encoding/json"
)

// unwrapData strips a {"success": ..., "data": ...} style envelope.
func unwrapData(payload []byte) []byte {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return payload
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return payload
	}

	data, ok := obj["data"]
	if !ok {
		return payload
	}
	if len(obj) == 1 {
		return data
	}
	for _, key := range []string{"success", "status", "message"} {
		if _, ok := obj[key]; ok {
			return data
		}
	}
	return payload
}

// decodeOneOrMany accepts either a JSON array or a single object.
func decodeOneOrMany[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var many []T
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, err
		}
		return many, nil
	}

	var one T
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}
