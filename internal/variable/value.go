package variable

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Class is the declaration tag selecting how a variable's partition is built.
type Class string

const (
	ClassContinuous  Class = "continuous"
	ClassDiscrete    Class = "discrete"
	ClassCategorical Class = "categorical"
)

// ValueType is the semantic scalar type of a variable's values.
type ValueType string

const (
	TypeInt    ValueType = "int"
	TypeFloat  ValueType = "float"
	TypeString ValueType = "str"
)

// Valid reports whether t is one of the known value types.
func (t ValueType) Valid() bool {
	switch t {
	case TypeInt, TypeFloat, TypeString:
		return true
	}
	return false
}

// defaultType returns the value type used when a declaration omits one.
func (c Class) defaultType() ValueType {
	switch c {
	case ClassContinuous:
		return TypeFloat
	case ClassDiscrete:
		return TypeInt
	default:
		return TypeString
	}
}

// LossyCastError reports a value that cannot be represented in the target
// type without changing it.
type LossyCastError struct {
	Value any
	Type  ValueType
}

func (e *LossyCastError) Error() string {
	return fmt.Sprintf("cast of %v to %s modified value", e.Value, e.Type)
}

// CoerceScalar converts v to the canonical Go representation of t:
// int64 for TypeInt, float64 for TypeFloat and NFC-normalised string for
// TypeString. Strings are parsed. A conversion that would change the value
// (12.5 to int) returns *LossyCastError.
func CoerceScalar(t ValueType, v any) (any, error) {
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch t {
	case TypeInt:
		switch val := v.(type) {
		case string:
			if n, err := strconv.ParseInt(val, 10, 64); err == nil {
				return n, nil
			}
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %q as %s: %w", val, t, err)
			}
			v = f
		}
		r, ok := toRat(v)
		if !ok {
			return nil, fmt.Errorf("cannot convert %T to %s", v, t)
		}
		if !r.IsInt() || !r.Num().IsInt64() {
			return nil, &LossyCastError{Value: v, Type: t}
		}
		return r.Num().Int64(), nil

	case TypeFloat:
		if s, ok := v.(string); ok {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %q as %s: %w", s, t, err)
			}
			return f, nil
		}
		r, ok := toRat(v)
		if !ok {
			return nil, fmt.Errorf("cannot convert %T to %s", v, t)
		}
		f, exact := r.Float64()
		if !exact {
			return nil, &LossyCastError{Value: v, Type: t}
		}
		return f, nil

	case TypeString:
		switch val := v.(type) {
		case string:
			return norm.NFC.String(val), nil
		case bool:
			return strconv.FormatBool(val), nil
		case float64:
			return strconv.FormatFloat(val, 'g', -1, 64), nil
		case float32:
			return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
		}
		if r, ok := toRat(v); ok && r.IsInt() {
			return r.Num().String(), nil
		}
		return nil, fmt.Errorf("cannot convert %T to %s", v, t)
	}
	return nil, fmt.Errorf("invalid value type %q", t)
}

// toRat converts a numeric value to an exact rational. Floats convert to
// the exact binary value they hold. NaN and infinities are rejected.
func toRat(v any) (*big.Rat, bool) {
	switch val := v.(type) {
	case int:
		return new(big.Rat).SetInt64(int64(val)), true
	case int8:
		return new(big.Rat).SetInt64(int64(val)), true
	case int16:
		return new(big.Rat).SetInt64(int64(val)), true
	case int32:
		return new(big.Rat).SetInt64(int64(val)), true
	case int64:
		return new(big.Rat).SetInt64(val), true
	case uint:
		return new(big.Rat).SetUint64(uint64(val)), true
	case uint8:
		return new(big.Rat).SetUint64(uint64(val)), true
	case uint16:
		return new(big.Rat).SetUint64(uint64(val)), true
	case uint32:
		return new(big.Rat).SetUint64(uint64(val)), true
	case uint64:
		return new(big.Rat).SetUint64(val), true
	case float32:
		return floatRat(float64(val))
	case float64:
		return floatRat(val)
	case *big.Rat:
		if val == nil {
			return nil, false
		}
		return new(big.Rat).Set(val), true
	case big.Rat:
		return new(big.Rat).Set(&val), true
	}
	return nil, false
}

func floatRat(f float64) (*big.Rat, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return new(big.Rat).SetFloat64(f), true
}

// asInt64 returns v as an int64 if it is numeric and integral.
func asInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	}
	r, ok := toRat(v)
	if !ok || !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

// scalarEqual compares two scalars the way category membership needs:
// numbers by value across kinds, strings after NFC normalisation.
func scalarEqual(a, b any) bool {
	if ra, ok := toRat(a); ok {
		rb, ok := toRat(b)
		return ok && ra.Cmp(rb) == 0
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && norm.NFC.String(av) == norm.NFC.String(bv)
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

// isScalar reports whether v can be the content of a Category.
func isScalar(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	}
	_, ok := toRat(v)
	return ok
}
