package param

import (
	"encoding/json"
	"fmt"
)

type boundEntry struct {
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}

// BoundName returns the parameter name of a JSON form entry.
func BoundName(data []byte) (string, error) {
	var in boundEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return "", fmt.Errorf("%w: decode parameter entry: %v", ErrInvalidDefinition, err)
	}
	if in.Name == "" {
		return "", fmt.Errorf("%w: parameter entry has no name", ErrInvalidDefinition)
	}
	return in.Name, nil
}

// BindValue decodes a JSON form entry of the shape {"name": ..., "value": ...}
// into a value for d and attaches d's description. Boolean kinds accept a
// JSON boolean or a string coerced with ParseBool.
func (d Definition) BindValue(data []byte) (Value, error) {
	var in boundEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return Value{}, fmt.Errorf("%w: decode parameter %s: %v", ErrInvalidDefinition, d.Name, err)
	}
	if in.Name != "" && in.Name != d.Name {
		return Value{}, fmt.Errorf("%w: value for %q submitted to %q", ErrInvalidDefinition, in.Name, d.Name)
	}
	if len(in.Value) == 0 || string(in.Value) == "null" {
		return d.StaticValue(), nil
	}

	switch d.ValueType() {
	case TypeBoolean:
		var b bool
		if err := json.Unmarshal(in.Value, &b); err == nil {
			return BoolValue(d.Name, b, d.Description), nil
		}
		var s string
		if err := json.Unmarshal(in.Value, &s); err != nil {
			return Value{}, fmt.Errorf("%w: parameter %s: value must be a boolean or string", ErrInvalidDefinition, d.Name)
		}
		return d.CreateValue(s), nil
	default:
		var s string
		if err := json.Unmarshal(in.Value, &s); err != nil {
			return Value{}, fmt.Errorf("%w: parameter %s: value must be a string", ErrInvalidDefinition, d.Name)
		}
		return d.CreateValue(s), nil
	}
}
