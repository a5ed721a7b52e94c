package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a record identifier as stored by the remote authority. The authority
// persists ids as JSON numbers or strings interchangeably, so an ID always
// holds the canonical string form and compares as such.
type ID string

// NewID converts any id-like value to its canonical form.
func NewID(v any) ID {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return ID(t)
	case ID:
		return t
	case float64:
		return ID(strconv.FormatFloat(t, 'f', -1, 64))
	case int:
		return ID(strconv.Itoa(t))
	case int64:
		return ID(strconv.FormatInt(t, 10))
	case json.Number:
		return ID(t.String())
	default:
		return ID(fmt.Sprint(t))
	}
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id == "" }

func (id ID) String() string { return string(id) }

// UnmarshalJSON accepts a number, a string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits a bare number when the id is integer-like, otherwise a
// quoted string, mirroring how the authority stored the value.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte(`""`), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}
