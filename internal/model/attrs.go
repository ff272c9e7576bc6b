package model

import (
	"maps"
	"math"
	"reflect"
)

// Attrs maps attribute names to values. Attrs held by a node must not be
// modified.
type Attrs map[string]any

// AttributeSpec describes an attribute of a node or mark type.
// An attribute without a default is required.
type AttributeSpec struct {
	Default    any
	HasDefault bool
}

// DefaultAttr returns an AttributeSpec with the given default.
func DefaultAttr(v any) AttributeSpec {
	return AttributeSpec{Default: v, HasDefault: true}
}

// RequiredAttr returns an AttributeSpec with no default.
func RequiredAttr() AttributeSpec {
	return AttributeSpec{}
}

// attrsEqual compares attribute maps by value. Nil and empty maps are equal.
func attrsEqual(a, b Attrs) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// defaultAttrs returns the attribute values used when none are given, or nil
// if any attribute is required.
func defaultAttrs(specs map[string]AttributeSpec) Attrs {
	out := Attrs{}
	for name, spec := range specs {
		if !spec.HasDefault {
			return nil
		}
		out[name] = normalizeValue(spec.Default)
	}
	return out
}

// computeAttrs fills in defaults for missing attributes and drops unknown ones.
func computeAttrs(owner string, specs map[string]AttributeSpec, given Attrs) (Attrs, error) {
	built := make(Attrs, len(specs))
	for name, spec := range specs {
		v, ok := given[name]
		if !ok {
			if !spec.HasDefault {
				return nil, &SchemaValidationError{Msg: "no value supplied for attribute " + name + " of " + owner}
			}
			v = spec.Default
		}
		built[name] = normalizeValue(v)
	}
	return built, nil
}

func cloneAttrs(a Attrs) Attrs {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// normalizeValue maps numeric values onto int where they are integral, so
// values decoded from JSON compare equal to values built in code.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	case float32:
		return normalizeFloat(float64(x))
	case float64:
		return normalizeFloat(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = normalizeValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = normalizeValue(e)
		}
		return out
	case Attrs:
		return normalizeValue(map[string]any(x))
	}
	return v
}

func normalizeFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return int(f)
	}
	return f
}
