// Package members describes the script-visible members resolved from a host type: fields
// assembled from getters, setters and struct fields, callable functions, and constructors.
//
// Descriptors are created by the resolver once per host type and are immutable afterwards,
// so they can be shared by every instance handle and every goroutine.
package members

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind identifies the role a descriptor plays for script code.
type Kind int

const (
	KindField Kind = iota + 1
	KindFunction
	KindConstructor
)

// String returns a string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindField:
		return "Field"
	case KindFunction:
		return "Function"
	case KindConstructor:
		return "Constructor"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Options is the capability set carried by a descriptor.
type Options uint8

const (
	// Permanent members cannot be deleted or replaced by script code.
	Permanent Options = 1 << iota
	// Enumerable members appear when script code iterates the object.
	Enumerable
)

// Has reports whether every flag in flag is set.
func (o Options) Has(flag Options) bool {
	return o&flag == flag
}

// String renders the options as a "|" separated list, e.g. "permanent|enumerable".
func (o Options) String() string {
	var parts []string
	if o.Has(Permanent) {
		parts = append(parts, "permanent")
	}
	if o.Has(Enumerable) {
		parts = append(parts, "enumerable")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Descriptor is implemented by *Field, *Function and *Constructor.
type Descriptor interface {
	// Kind returns the descriptor kind.
	Kind() Kind
	// Owner returns the host type the descriptor was resolved from.
	Owner() reflect.Type
	// Name returns the script-facing name. Constructors have no name.
	Name() string
	// Signature returns a stable textual description, used for comparison and display.
	Signature() string
}

// Method is a resolved method with the receiver stripped from its signature.
type Method struct {
	// Name is the Go method name, used to look the method up on an instance.
	Name string
	// In holds the parameter types, without the receiver.
	In []reflect.Type
	// Out holds the result types.
	Out []reflect.Type
	// Variadic reports whether the last parameter is variadic.
	Variadic bool
}

// MethodOf builds a Method from a reflect.Method taken from host's method set. Methods of
// interface types carry no receiver in their signature; all others do.
func MethodOf(host reflect.Type, m reflect.Method) Method {
	ft := m.Type
	skip := 1
	if host.Kind() == reflect.Interface {
		skip = 0
	}

	in := make([]reflect.Type, 0, ft.NumIn())
	for i := skip; i < ft.NumIn(); i++ {
		in = append(in, ft.In(i))
	}
	out := make([]reflect.Type, 0, ft.NumOut())
	for i := 0; i < ft.NumOut(); i++ {
		out = append(out, ft.Out(i))
	}
	return Method{Name: m.Name, In: in, Out: out, Variadic: ft.IsVariadic()}
}

// String renders the method as "Name(int, string) (bool, error)".
func (m Method) String() string {
	return m.Name + formatSignature(m.In, m.Out, m.Variadic)
}

var errorType = reflect.TypeFor[error]()

// IsErrorType reports whether t is the error interface.
func IsErrorType(t reflect.Type) bool {
	return t == errorType
}

func formatSignature(in, out []reflect.Type, variadic bool) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, t := range in {
		if i > 0 {
			b.WriteString(", ")
		}
		if variadic && i == len(in)-1 {
			b.WriteString("..." + t.Elem().String())
			continue
		}
		b.WriteString(t.String())
	}
	b.WriteByte(')')

	switch len(out) {
	case 0:
	case 1:
		b.WriteString(" " + out[0].String())
	default:
		b.WriteString(" (")
		for i, t := range out {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(t.String())
		}
		b.WriteByte(')')
	}
	return b.String()
}
