package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a resource identifier. The API emits numeric ids from some routes
// and string ids from others, so both decode into the same type.
type ID string

// String returns the id as a string
func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty
func (id ID) IsZero() bool { return id == "" }

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("id must be a string or number: %w", err)
		}
		*id = ID(n.String())
		return nil
	}
}
