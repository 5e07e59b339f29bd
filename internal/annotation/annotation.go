// Package annotation holds the member-category markers used as the fallback visibility tier.
//
// Go has no runtime annotations, so host types declare markers either by registering an
// annotation Table with a Catalog, by implementing the Annotated hook, or with `script:"..."`
// struct tags on fields.
package annotation

import (
	"fmt"
	"reflect"
	"slices"
)

// Role is the member category an annotation claims.
type Role int

const (
	RoleGetter Role = iota + 1
	RoleSetter
	RoleFunction
	RoleObjectGetter
	RoleField
)

// String returns a string representation of the Role.
func (r Role) String() string {
	switch r {
	case RoleGetter:
		return "getter"
	case RoleSetter:
		return "setter"
	case RoleFunction:
		return "function"
	case RoleObjectGetter:
		return "object getter"
	case RoleField:
		return "field"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Option strings understood by the resolver.
const (
	// OptNotEnumerable hides the member from script iteration.
	OptNotEnumerable = "noenum"
	// OptGetOverride marks a getter that replaces the structural get.
	OptGetOverride = "get_override"
	// OptSetOverride marks a setter that replaces the structural set.
	OptSetOverride = "set_override"
)

// TagKey is the struct tag consulted for field markers, e.g. `script:"name,noenum"`.
const TagKey = "script"

// HookMethod is the method name of the Annotated hook. It is never a script member.
const HookMethod = "ScriptAnnotations"

// Member annotates one Go method or struct field.
type Member struct {
	Role Role
	// Name overrides the derived script name when non-empty.
	Name    string
	Options []string
	// Engines restricts the annotation to the listed engine names. Empty means every engine.
	Engines []string
}

// HasOption reports whether opt is present.
func (m Member) HasOption(opt string) bool {
	return slices.Contains(m.Options, opt)
}

// AppliesTo reports whether the annotation is active for engine.
func (m Member) AppliesTo(engine string) bool {
	return len(m.Engines) == 0 || slices.Contains(m.Engines, engine)
}

// Constructor declares a function that builds instances of the annotated type.
type Constructor struct {
	// Name is the Go name the constructor is declared under, used by the visibility policy.
	Name string
	// Func returns T or *T, optionally followed by an error.
	Func    any
	Engines []string
}

// AppliesTo reports whether the constructor is active for engine.
func (c Constructor) AppliesTo(engine string) bool {
	return len(c.Engines) == 0 || slices.Contains(c.Engines, engine)
}

// Table is the full set of annotations declared for one host type.
type Table struct {
	// Members is keyed by Go method or field name.
	Members      map[string]Member
	Constructors []Constructor
	// Properties marks every Get/Is/Set shaped method of the type as a getter or setter,
	// unless Members annotates it otherwise.
	Properties bool
}

// Annotated is implemented by host types that declare their own annotation table. The hook
// is called on a zero value and must not depend on instance state.
type Annotated interface {
	ScriptAnnotations() Table
}

// Markers answers the annotation tier of the member resolver.
type Markers interface {
	IsGetter(t reflect.Type, m reflect.Method, engine string) bool
	IsSetter(t reflect.Type, m reflect.Method, engine string) bool
	IsFunction(t reflect.Type, m reflect.Method, engine string) bool
	IsObjectGetter(t reflect.Type, m reflect.Method, engine string) bool
	IsField(t reflect.Type, f reflect.StructField, engine string) bool
	IsConstructor(t reflect.Type, c Constructor, engine string) bool

	// MethodName and FieldName return a script name override, if one is declared.
	MethodName(t reflect.Type, m reflect.Method, engine string) (string, bool)
	FieldName(t reflect.Type, f reflect.StructField, engine string) (string, bool)

	MethodOptions(t reflect.Type, m reflect.Method, engine string) []string
	FieldOptions(t reflect.Type, f reflect.StructField, engine string) []string

	// Constructors returns every constructor declared for t, active or not.
	Constructors(t reflect.Type) []Constructor
}

// None is a Markers that marks nothing.
type None struct{}

func (None) IsGetter(reflect.Type, reflect.Method, string) bool       { return false }
func (None) IsSetter(reflect.Type, reflect.Method, string) bool       { return false }
func (None) IsFunction(reflect.Type, reflect.Method, string) bool     { return false }
func (None) IsObjectGetter(reflect.Type, reflect.Method, string) bool { return false }
func (None) IsField(reflect.Type, reflect.StructField, string) bool   { return false }
func (None) IsConstructor(reflect.Type, Constructor, string) bool     { return false }

func (None) MethodName(reflect.Type, reflect.Method, string) (string, bool) {
	return "", false
}

func (None) FieldName(reflect.Type, reflect.StructField, string) (string, bool) {
	return "", false
}

func (None) MethodOptions(reflect.Type, reflect.Method, string) []string     { return nil }
func (None) FieldOptions(reflect.Type, reflect.StructField, string) []string { return nil }
func (None) Constructors(reflect.Type) []Constructor                         { return nil }
