package client

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList accepts either a bare JSON array or an object wrapping the array
// under key, which is how the backend answers some list endpoints.
func decodeList(resp *response, key string, out interface{}) error {
	body := bytes.TrimSpace(resp.body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil
	}
	if body[0] == '[' {
		return resp.decode(out)
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return fmt.Errorf("response has no %q list", key)
	}
	if err := json.Unmarshal(inner, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
