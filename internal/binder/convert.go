package binder

import (
	"fmt"
	"math"
	"reflect"
)

// Wrapper is implemented by adapters that stand in for a host object.
type Wrapper interface {
	Unwrap() any
}

const maxUnwrapDepth = 32

// Unwrap peels Wrapper layers off v.
func Unwrap(v any) any {
	for range maxUnwrapDepth {
		w, ok := v.(Wrapper)
		if !ok {
			return v
		}
		v = w.Unwrap()
	}
	return v
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isUnsigned(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

// convertNumber converts rv to the numeric type t when t holds the value exactly: no overflow,
// no negative unsigned values, no fractional or non-finite integers.
func convertNumber(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	target := reflect.Zero(t)
	var lossy bool
	switch {
	case rv.CanInt():
		n := rv.Int()
		switch {
		case isUnsigned(t.Kind()):
			lossy = n < 0 || target.OverflowUint(uint64(n))
		case !isFloat(t.Kind()):
			lossy = target.OverflowInt(n)
		}
	case rv.CanUint():
		u := rv.Uint()
		switch {
		case isUnsigned(t.Kind()):
			lossy = target.OverflowUint(u)
		case !isFloat(t.Kind()):
			lossy = u > math.MaxInt64 || target.OverflowInt(int64(u))
		}
	case rv.CanFloat():
		f := rv.Float()
		switch {
		case isFloat(t.Kind()):
			lossy = target.OverflowFloat(f)
		case math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f):
			lossy = true
		case isUnsigned(t.Kind()):
			lossy = f < 0 || f >= 1<<64 || target.OverflowUint(uint64(f))
		default:
			lossy = f < -(1<<63) || f >= 1<<63 || target.OverflowInt(int64(f))
		}
	}
	if lossy {
		return reflect.Value{}, fmt.Errorf("%w: %v does not fit %s", ErrArgumentType, rv.Interface(), t)
	}
	return rv.Convert(t), nil
}

// convertArg adapts a script-supplied value to the parameter type t. Untyped nil becomes the
// zero value, numbers convert between numeric kinds when the value fits, and values convert to named types of the
// same kind.
func convertArg(v any, t reflect.Type) (reflect.Value, error) {
	v = Unwrap(v)
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case isNumeric(rv.Kind()) && isNumeric(t.Kind()):
		return convertNumber(rv, t)
	case rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	case t.Kind() == reflect.Pointer && rv.Type().AssignableTo(t.Elem()):
		p := reflect.New(t.Elem())
		p.Elem().Set(rv)
		return p, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %s as %s", ErrArgumentType, rv.Type(), t)
}

// convertArgs adapts args to the parameter list in, honoring a variadic last parameter.
func convertArgs(args []any, in []reflect.Type, variadic bool) ([]reflect.Value, error) {
	fixed := len(in)
	if variadic {
		fixed--
	}
	if len(args) < fixed || (!variadic && len(args) != fixed) {
		return nil, fmt.Errorf("%w: want %d, got %d", ErrArgumentCount, fixed, len(args))
	}

	out := make([]reflect.Value, len(args))
	for i, arg := range args {
		var t reflect.Type
		if i < fixed {
			t = in[i]
		} else {
			t = in[fixed].Elem()
		}
		v, err := convertArg(arg, t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
