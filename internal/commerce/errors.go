package commerce

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-success response from the commerce API. Fields
// carries per-field validation messages when the upstream sent them.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("commerce api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("commerce api: request failed (status %d)", e.StatusCode)
}

// normalizeFieldErrors flattens the upstream errors map, which may
// hold a string or a list of strings per field, into one message
// per field.
func normalizeFieldErrors(raw map[string]json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}

	fields := make(map[string]string, len(raw))
	for name, msg := range raw {
		var single string
		if err := json.Unmarshal(msg, &single); err == nil {
			fields[name] = single
			continue
		}
		var many []string
		if err := json.Unmarshal(msg, &many); err == nil && len(many) > 0 {
			fields[name] = many[0]
		}
	}
	return fields
}
