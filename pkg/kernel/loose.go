package kernel

import (
	"encoding/json"
	"fmt"
)

// LooseString accepts a JSON string, number or boolean. Model replies
// answer "years" as 5 as often as "5+".
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = LooseString(str)
		return nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = LooseString(fmt.Sprint(raw))
	return nil
}

func (s LooseString) String() string { return string(s) }

// StringList decodes a JSON list of strings, a single string, or an object
// whose values are strings or lists of strings, flattening it to one list.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = flatten(raw)
	return nil
}

func flatten(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case nil:
	case string:
		out = append(out, t)
	case []any:
		for _, item := range t {
			out = append(out, flatten(item)...)
		}
	case map[string]any:
		for _, item := range t {
			out = append(out, flatten(item)...)
		}
	default:
		out = append(out, fmt.Sprint(t))
	}
	return out
}
