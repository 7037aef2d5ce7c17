// Package llm holds helpers for reading chat-completion replies.
package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when a reply contains no decodable JSON object.
var ErrNoJSON = errors.New("no JSON object in reply")

// DecodeObject decodes a JSON object from a model reply into v. The reply is
// tried as-is first, then the span from the first '{' to the last '}'.
func DecodeObject(reply string, v any) error {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(reply), v); err == nil {
		return nil
	}

	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start == -1 || end <= start {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %w", ErrNoJSON, err)
	}
	return nil
}

// Strings accepts a JSON string array, a single string, or null.
type Strings []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Strings) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*s = arr
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return fmt.Errorf("expected string or string array: %w", err)
	}
	if one == "" {
		*s = nil
		return nil
	}
	*s = Strings{one}
	return nil
}
