package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type describes the declared type of an attribute.
//
// Types form a single-inheritance tree rooted at Any. Assignability follows
// the supertype chain, which is what alias merging uses to decide whether a
// shared attribute can serve a more specific one.
type Type struct {
	name   string
	super  *Type
	simple bool
	coerce func(v any) (any, error)
}

// Built-in types.
var (
	Any    = &Type{name: "any"}
	String = &Type{name: "string", super: Any, simple: true, coerce: coerceString}
	Bool   = &Type{name: "bool", super: Any, simple: true, coerce: coerceBool}
	Number = &Type{name: "number", super: Any, simple: true, coerce: coerceFloat}
	Int    = &Type{name: "int", super: Number, simple: true, coerce: coerceInt}
	Float  = &Type{name: "float", super: Number, simple: true, coerce: coerceFloat}
)

var builtinTypes = map[string]*Type{
	"any":    Any,
	"string": String,
	"bool":   Bool,
	"number": Number,
	"int":    Int,
	"float":  Float,
}

// NewType declares a named subtype of super (Any when nil). The new type is
// simple and coerces values exactly when its supertype does.
func NewType(name string, super *Type) *Type {
	if super == nil {
		super = Any
	}
	return &Type{
		name:   name,
		super:  super,
		simple: super.simple,
		coerce: super.coerce,
	}
}

// TypeByName returns the built-in type with the given name.
func TypeByName(name string) (*Type, bool) {
	t, ok := builtinTypes[strings.ToLower(name)]
	return t, ok
}

// Name returns the type name.
func (t *Type) Name() string {
	return t.name
}

// Super returns the supertype, or nil for Any.
func (t *Type) Super() *Type {
	return t.super
}

// Simple reports whether values of this type are primitives (strings,
// booleans, numbers).
func (t *Type) Simple() bool {
	return t.simple
}

// AssignableFrom reports whether a value of type u can be used where t is
// expected, i.e. whether u is t or one of its subtypes.
func (t *Type) AssignableFrom(u *Type) bool {
	for cur := u; cur != nil; cur = cur.super {
		if cur == t {
			return true
		}
	}
	return false
}

// Coerce converts v to the canonical Go representation of t. Types without a
// coercion pass values through unchanged. nil is always accepted.
func (t *Type) Coerce(v any) (any, error) {
	if v == nil || t.coerce == nil {
		return v, nil
	}
	out, err := t.coerce(v)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot use %v (%T) as %s", ErrInvalidArgument, v, v, t.name)
	}
	return out, nil
}

func (t *Type) String() string {
	return t.name
}

func coerceString(v any) (any, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func coerceBool(v any) (any, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	default:
		return nil, fmt.Errorf("not a bool")
	}
}

func coerceInt(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int64ToInt(n)
	case uint:
		return uint64ToInt(uint64(n))
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return uint64ToInt(uint64(n))
	case uint64:
		return uint64ToInt(n)
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	default:
		return nil, fmt.Errorf("not an int")
	}
}

func int64ToInt(n int64) (any, error) {
	if n < math.MinInt || n > math.MaxInt {
		return nil, fmt.Errorf("out of int range")
	}
	return int(n), nil
}

func uint64ToInt(n uint64) (any, error) {
	if n > math.MaxInt {
		return nil, fmt.Errorf("out of int range")
	}
	return int(n), nil
}

// floatToInt accepts integral values in [MinInt, MaxInt]. float64(MaxInt)
// rounds up to a power of two, hence the strict upper bound.
func floatToInt(f float64) (any, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("not integral")
	}
	if f < math.MinInt || f >= math.MaxInt {
		return nil, fmt.Errorf("out of int range")
	}
	return int(f), nil
}

func coerceFloat(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return nil, fmt.Errorf("not a number")
	}
}
