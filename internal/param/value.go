// Package param holds the domain model for job parameters: definitions,
// recorded values, run records, and sticky default resolution.
package param

import "strings"

// ValueType is the declared type tag of a recorded parameter value.
type ValueType string

const (
	TypeBoolean ValueType = "boolean"
	TypeString  ValueType = "string"
)

// Value is a parameter value as recorded on a run. Type is authoritative:
// a value whose Raw does not match its Type is treated as having no
// usable payload.
type Value struct {
	Name        string    `json:"name"`
	Type        ValueType `json:"type"`
	Raw         any       `json:"value"`
	Description string    `json:"description,omitempty"`
}

func BoolValue(name string, v bool, description string) Value {
	return Value{Name: name, Type: TypeBoolean, Raw: v, Description: description}
}

func StringValue(name, v, description string) Value {
	return Value{Name: name, Type: TypeString, Raw: v, Description: description}
}

// Bool returns the boolean payload and whether the value is a boolean.
func (v Value) Bool() (bool, bool) {
	if v.Type != TypeBoolean {
		return false, false
	}
	b, ok := v.Raw.(bool)
	return b, ok
}

// Text returns the string payload and whether the value is a string.
func (v Value) Text() (string, bool) {
	if v.Type != TypeString {
		return "", false
	}
	s, ok := v.Raw.(string)
	return s, ok
}

// ParseBool reports whether s equals "true", ignoring case. Every other
// input, including the empty string and surrounding whitespace, is false.
func ParseBool(s string) bool {
	return strings.EqualFold(s, "true")
}
