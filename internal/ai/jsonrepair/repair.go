// Package jsonrepair recovers JSON objects from chatty or truncated model output.
package jsonrepair

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// StripFences removes ```json / ``` wrappers around a model reply
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// rootObject keeps the text from the first '{' through the end of its
// balanced root object, or to the end of input when the root never closes
func rootObject(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return s
	}
	return truncateAfterRoot(s[start:])
}

// Repair strips fences and surrounding prose, then lets jsonrepair fix
// trailing commas, missing separators, cut-off strings and unclosed
// containers. Input it cannot repair is returned as is.
func Repair(s string) string {
	candidate := rootObject(StripFences(s))
	repaired, err := jsonrepair.JSONRepair(candidate)
	if err != nil {
		return candidate
	}
	return repaired
}

// truncateAfterRoot drops anything following the first balanced root object
func truncateAfterRoot(s string) string {
	depth := 0
	inString := false
	escaped := false
	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return s
}

var ErrUnparseable = errors.New("model output is not valid JSON")

// Unmarshal decodes a model reply into v, repairing it when the
// plain decode fails. The returned bool reports whether repair was needed.
func Unmarshal(raw string, v any) (bool, error) {
	cleaned := StripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return false, nil
	}
	if err := json.Unmarshal([]byte(Repair(raw)), v); err != nil {
		return true, errors.Join(ErrUnparseable, err)
	}
	return true, nil
}
