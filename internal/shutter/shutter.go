// Package shutter holds the visibility policies that decide which host members script code
// may see. A policy is consulted by the resolver's explicit tier; annotations form the fallback.
package shutter

import (
	"reflect"
)

// Shutter grants script visibility to individual members of a host type. Implementations
// must be pure and safe for concurrent use.
type Shutter interface {
	FieldVisible(t reflect.Type, f reflect.StructField) bool
	// MethodVisible is consulted for getters, setters, object getters and functions.
	MethodVisible(t reflect.Type, m reflect.Method) bool
	ConstructorVisible(t reflect.Type, name string, fn reflect.Type) bool
}

// Identifier is implemented by shutters that are not comparable, or whose grants change over
// time. Resolutions are cached per identity; an empty identity disables caching.
type Identifier interface {
	Identity() string
}

// Default grants nothing, leaving every decision to annotations.
type Default struct{}

func (Default) FieldVisible(reflect.Type, reflect.StructField) bool        { return false }
func (Default) MethodVisible(reflect.Type, reflect.Method) bool            { return false }
func (Default) ConstructorVisible(reflect.Type, string, reflect.Type) bool { return false }

// All grants every member. Meant for tests and trusted scripts only.
type All struct{}

func (All) FieldVisible(reflect.Type, reflect.StructField) bool        { return true }
func (All) MethodVisible(reflect.Type, reflect.Method) bool            { return true }
func (All) ConstructorVisible(reflect.Type, string, reflect.Type) bool { return true }

// Funcs adapts plain predicates into a Shutter. Nil predicates grant nothing. Funcs is not
// comparable, so resolutions against it are only cached when ID is set.
type Funcs struct {
	ID          string
	Field       func(t reflect.Type, f reflect.StructField) bool
	Method      func(t reflect.Type, m reflect.Method) bool
	Constructor func(t reflect.Type, name string, fn reflect.Type) bool
}

func (s Funcs) FieldVisible(t reflect.Type, f reflect.StructField) bool {
	return s.Field != nil && s.Field(t, f)
}

func (s Funcs) MethodVisible(t reflect.Type, m reflect.Method) bool {
	return s.Method != nil && s.Method(t, m)
}

func (s Funcs) ConstructorVisible(t reflect.Type, name string, fn reflect.Type) bool {
	return s.Constructor != nil && s.Constructor(t, name, fn)
}

// Identity returns the configured ID.
func (s Funcs) Identity() string { return s.ID }

// TypeName returns the qualified name of t used by allow-lists, e.g. "net/url.URL". Pointer
// types are reduced to their element type.
func TypeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
