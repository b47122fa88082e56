package condition

import "reflect"

// Operator is a comparison operator in a condition node. The spelling
// matches the authoring format.
type Operator string

const (
	OpEqual          Operator = "==="
	OpNotEqual       Operator = "!=="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLess           Operator = "<"
	OpLessOrEqual    Operator = "<="

	// OpIncludes tests membership in an array-valued flag.
	OpIncludes Operator = "includes"
)

// Compare applies op to two values. Numbers compare numerically across
// int/float representations (JSON decoding yields float64, game counters
// are ints). Strings order lexicographically. Equality on mismatched or
// unordered types is false, inequality true, matching strict equality in
// the authoring format. Ordering operators on non-comparable values are
// false.
func Compare(op Operator, got, want any) bool {
	switch op {
	case OpEqual:
		return looseEqual(got, want)
	case OpNotEqual:
		return !looseEqual(got, want)
	case OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual:
		if gn, ok := AsNumber(got); ok {
			wn, ok := AsNumber(want)
			if !ok {
				return false
			}
			return ordered(op, gn, wn)
		}
		gs, gok := got.(string)
		ws, wok := want.(string)
		if gok && wok {
			switch op {
			case OpGreater:
				return gs > ws
			case OpGreaterOrEqual:
				return gs >= ws
			case OpLess:
				return gs < ws
			case OpLessOrEqual:
				return gs <= ws
			}
		}
		return false
	case OpIncludes:
		return Includes(got, want)
	default:
		return false
	}
}

func ordered(op Operator, got, want float64) bool {
	switch op {
	case OpGreater:
		return got > want
	case OpGreaterOrEqual:
		return got >= want
	case OpLess:
		return got < want
	case OpLessOrEqual:
		return got <= want
	}
	return false
}

func looseEqual(got, want any) bool {
	if gn, ok := AsNumber(got); ok {
		if wn, ok := AsNumber(want); ok {
			return gn == wn
		}
		return false
	}
	return reflect.DeepEqual(got, want)
}

// Includes reports whether v is a slice containing want. Used by the
// includes operator, which is only valid for array-valued flags.
func Includes(v, want any) bool {
	items, ok := v.([]any)
	if !ok {
		rv := reflect.ValueOf(v)
		if !rv.IsValid() || rv.Kind() != reflect.Slice {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if looseEqual(rv.Index(i).Interface(), want) {
				return true
			}
		}
		return false
	}
	for _, item := range items {
		if looseEqual(item, want) {
			return true
		}
	}
	return false
}

// AsNumber converts any numeric representation to float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Truthy reports whether a flag value counts as set. Only nil, false,
// zero and the empty string are falsy; arrays and objects are always
// truthy, mirroring the authoring format's boolean coercion.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if n, ok := AsNumber(v); ok {
		return n != 0
	}
	return true
}
