package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexBool is a boolean that also accepts the loose encodings HTML forms and
// JavaScript clients send. Coercion table:
//
//	true, "true", "1", "on", "yes", 1   -> true
//	false, "false", "0", "off", "no", "", 0, null -> false
//
// Anything else is rejected.
type FlexBool bool

// ParseFlexBool coerces a form value into a boolean using the FlexBool table.
func ParseFlexBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on", "yes":
		return true, nil
	case "false", "0", "off", "no", "":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value %q", s)
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = false
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := ParseFlexBool(s)
		if err != nil {
			return err
		}
		*b = FlexBool(v)
		return nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("1")):
		*b = true
		return nil
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("0")):
		*b = false
		return nil
	}
	return fmt.Errorf("invalid boolean value %s", data)
}

// MarshalJSON implements json.Marshaler.
func (b FlexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}
