package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number: %w", err)
	}
	*s = flexString(n.String())
	return nil
}

// flexUser accepts a bare login or a user object with login or name.
type flexUser string

func (u *flexUser) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if data[0] != '{' {
		var s flexString
		if err := s.UnmarshalJSON(data); err != nil {
			return err
		}
		*u = flexUser(s)
		return nil
	}
	var obj struct {
		Login string `json:"login"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*u = flexUser(strings.TrimSpace(firstNonEmpty(obj.Login, obj.Name)))
	return nil
}

// flexNames accepts a list of strings or objects carrying a name field.
// Objects use the first of name, filename or login that is set.
type flexNames []string

func (n *flexNames) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || bytes.Equal(item, []byte("null")) {
			continue
		}
		var name string
		if item[0] == '{' {
			var obj struct {
				Name     string `json:"name"`
				Filename string `json:"filename"`
				Login    string `json:"login"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				return err
			}
			name = firstNonEmpty(obj.Name, obj.Filename, obj.Login)
		} else {
			var s flexString
			if err := s.UnmarshalJSON(item); err != nil {
				return err
			}
			name = string(s)
		}
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	*n = out
	return nil
}

// flexList is a list of ids that may also be written as one bare id.
// It decodes from both JSON and YAML.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var names flexNames
		if err := names.UnmarshalJSON(data); err != nil {
			return err
		}
		*l = flexList(names)
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*l = nil
	if s != "" {
		*l = flexList{string(s)}
	}
	return nil
}

func (l *flexList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = nil
		if v := strings.TrimSpace(value.Value); v != "" && value.Tag != "!!null" {
			*l = flexList{v}
		}
		return nil
	case yaml.SequenceNode:
		var out []string
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: expected scalar id", item.Line)
			}
			if v := strings.TrimSpace(item.Value); v != "" {
				out = append(out, v)
			}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected id or list of ids", value.Line)
	}
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(s), "#"))
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", string(s), err)
	}
	*i = flexInt(n)
	return nil
}

// firstNonEmpty returns the first non-empty string.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
