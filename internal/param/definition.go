package param

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDefinition is returned for malformed parameter definitions.
var ErrInvalidDefinition = errors.New("invalid parameter definition")

// Kind selects how a parameter's default is produced.
type Kind string

const (
	// KindPersistentBoolean is a boolean whose default sticks to the value
	// used by the most recent qualifying run.
	KindPersistentBoolean Kind = "persistentBoolean"
	KindBoolean           Kind = "boolean"
	KindString            Kind = "string"
)

// kindAliases maps alternate spellings accepted in job configuration.
var kindAliases = map[string]Kind{
	"persistentBooleanParam": KindPersistentBoolean,
}

// KindInfo describes a parameter kind for clients building trigger forms.
type KindInfo struct {
	Kind        Kind      `json:"kind"`
	DisplayName string    `json:"display_name"`
	ValueType   ValueType `json:"value_type"`
	Sticky      bool      `json:"sticky"`
	Aliases     []string  `json:"aliases,omitempty"`
}

// Kinds lists every supported parameter kind.
func Kinds() []KindInfo {
	return []KindInfo{
		{Kind: KindPersistentBoolean, DisplayName: "Persistent Boolean Parameter", ValueType: TypeBoolean, Sticky: true, Aliases: []string{"persistentBooleanParam"}},
		{Kind: KindBoolean, DisplayName: "Boolean Parameter", ValueType: TypeBoolean},
		{Kind: KindString, DisplayName: "String Parameter", ValueType: TypeString},
	}
}

// ParseKind normalizes s to a known Kind.
func ParseKind(s string) (Kind, error) {
	if k, ok := kindAliases[s]; ok {
		return k, nil
	}
	switch k := Kind(s); k {
	case KindPersistentBoolean, KindBoolean, KindString:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidDefinition, s)
}

// ValidateName checks the identity of a parameter.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	return nil
}

// Definition is a parameter as configured on a job. Default holds a bool for
// boolean kinds and a string for KindString; nil means the zero value.
type Definition struct {
	Kind           Kind   `json:"kind" yaml:"kind"`
	Name           string `json:"name" yaml:"name"`
	Default        any    `json:"default,omitempty" yaml:"default,omitempty"`
	SuccessfulOnly bool   `json:"successful_only,omitempty" yaml:"successful_only,omitempty"`
	Description    string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Normalize resolves kind aliases and fills a nil Default with the zero
// value for the kind. It returns an error for anything Validate rejects.
func (d Definition) Normalize() (Definition, error) {
	if err := ValidateName(d.Name); err != nil {
		return d, err
	}
	kind, err := ParseKind(string(d.Kind))
	if err != nil {
		return d, err
	}
	d.Kind = kind

	switch d.ValueType() {
	case TypeBoolean:
		if d.Default == nil {
			d.Default = false
		}
		if _, ok := d.Default.(bool); !ok {
			return d, fmt.Errorf("%w: %s: default must be a boolean", ErrInvalidDefinition, d.Name)
		}
	case TypeString:
		if d.Default == nil {
			d.Default = ""
		}
		if _, ok := d.Default.(string); !ok {
			return d, fmt.Errorf("%w: %s: default must be a string", ErrInvalidDefinition, d.Name)
		}
	}
	if d.SuccessfulOnly && d.Kind != KindPersistentBoolean {
		return d, fmt.Errorf("%w: %s: successful_only applies to %s only", ErrInvalidDefinition, d.Name, KindPersistentBoolean)
	}
	return d, nil
}

func (d Definition) Validate() error {
	_, err := d.Normalize()
	return err
}

// ValueType reports the type of values this definition produces.
func (d Definition) ValueType() ValueType {
	if d.Kind == KindString {
		return TypeString
	}
	return TypeBoolean
}

// Sticky returns the sticky boolean view of a persistent definition.
func (d Definition) Sticky() (BooleanParameter, bool) {
	if d.Kind != KindPersistentBoolean {
		return BooleanParameter{}, false
	}
	def, _ := d.Default.(bool)
	return BooleanParameter{
		Name:           d.Name,
		DefaultValue:   def,
		SuccessfulOnly: d.SuccessfulOnly,
		Description:    d.Description,
	}, true
}

// StaticValue is the configured default, ignoring history.
func (d Definition) StaticValue() Value {
	if d.ValueType() == TypeString {
		s, _ := d.Default.(string)
		return StringValue(d.Name, s, d.Description)
	}
	b, _ := d.Default.(bool)
	return BoolValue(d.Name, b, d.Description)
}

// CreateValue converts a raw form submission into a typed value.
func (d Definition) CreateValue(raw string) Value {
	if d.ValueType() == TypeString {
		return StringValue(d.Name, raw, d.Description)
	}
	return BoolValue(d.Name, ParseBool(raw), d.Description)
}

// CopyWithDefault returns a definition whose static default is v. A value
// of a different type leaves the definition unchanged.
func (d Definition) CopyWithDefault(v Value) Definition {
	switch d.ValueType() {
	case TypeBoolean:
		if b, ok := v.Bool(); ok {
			d.Default = b
		}
	case TypeString:
		if s, ok := v.Text(); ok {
			d.Default = s
		}
	}
	return d
}

// BooleanParameter describes a sticky boolean parameter.
type BooleanParameter struct {
	Name           string
	DefaultValue   bool
	SuccessfulOnly bool
	Description    string
}

// CreateValue coerces a raw string into this parameter's value.
func (p BooleanParameter) CreateValue(raw string) Value {
	return BoolValue(p.Name, ParseBool(raw), p.Description)
}

// DefaultParameterValue resolves the default against history and wraps it
// as a value carrying this parameter's name and description.
func (p BooleanParameter) DefaultParameterValue(history []*RunRecord) Value {
	return BoolValue(p.Name, Resolve(p, history).Value, p.Description)
}
