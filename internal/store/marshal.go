package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/mechanics/internal/ir"
)

// marshalActions stores the dispatched action kinds as a canonical JSON
// array.
func marshalActions(actions []string) (string, error) {
	if actions == nil {
		actions = []string{}
	}
	data, err := ir.MarshalCanonical(actions)
	if err != nil {
		return "", fmt.Errorf("marshal actions: %w", err)
	}
	return string(data), nil
}

func unmarshalActions(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var actions []string
	if err := json.Unmarshal([]byte(data), &actions); err != nil {
		return nil, fmt.Errorf("unmarshal actions: %w", err)
	}
	return actions, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
