package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Value holds a loosely typed entry of a tool's config section
type Value struct {
	raw any
}

// NewValue wraps a raw value
func NewValue(raw any) Value {
	return Value{raw: raw}
}

// UnmarshalYAML implements yaml.Unmarshaler
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v.raw = raw
	return nil
}

// Raw returns the underlying value
func (v Value) Raw() any {
	return v.raw
}

func (v Value) String() string {
	switch x := v.raw.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Int converts numbers and numeric strings, anything else is 0
func (v Value) Int() int {
	switch x := v.raw.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (v Value) Bool() bool {
	switch x := v.raw.(type) {
	case bool:
		return x
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	default:
		return false
	}
}

func (v Value) IsMap() bool {
	_, ok := v.raw.(map[string]any)
	return ok
}

// Map returns the nested entries, or nil when the value is not a mapping
func (v Value) Map() map[string]Value {
	m, ok := v.raw.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]Value, len(m))
	for k, raw := range m {
		out[k] = Value{raw: raw}
	}
	return out
}
