package members

import (
	"fmt"
	"reflect"
)

var (
	_ Descriptor = (*Function)(nil)
	_ Descriptor = (*Constructor)(nil)
)

// Function is a script-callable host method.
type Function struct {
	owner   reflect.Type
	name    string
	method  Method
	options Options
	depth   int
}

// NewFunction returns an immutable Function.
func NewFunction(owner reflect.Type, name string, m Method, opts Options, depth int) (*Function, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Function{owner: owner, name: name, method: m, options: opts, depth: depth}, nil
}

// Kind returns KindFunction.
func (f *Function) Kind() Kind { return KindFunction }

// Owner returns the host type.
func (f *Function) Owner() reflect.Type { return f.owner }

// Name returns the script-facing function name.
func (f *Function) Name() string { return f.name }

// Method returns the underlying method.
func (f *Function) Method() Method { return f.method }

// Arity returns the number of declared parameters.
func (f *Function) Arity() int { return len(f.method.In) }

// Options returns the capability options.
func (f *Function) Options() Options { return f.options }

// Depth returns the embedding depth of the closest declaring type.
func (f *Function) Depth() int { return f.depth }

// Signature returns a stable description of the function.
func (f *Function) Signature() string {
	return fmt.Sprintf("function %s %s %s", f.name, f.method, f.options)
}

// Constructor is a registered function that builds new instances of the host type.
type Constructor struct {
	owner   reflect.Type
	goName  string
	fn      reflect.Value
	in      []reflect.Type
	errors  bool
	varargs bool
}

// NewConstructor wraps fn, which must be a non-nil func whose first result is owner or a
// pointer to owner, optionally followed by an error.
func NewConstructor(owner reflect.Type, goName string, fn reflect.Value) (*Constructor, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%w: %s is not a function", ErrInvalidConstructor, goName)
	}

	ft := fn.Type()
	base := owner
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	switch {
	case ft.NumOut() == 0 || ft.NumOut() > 2:
		return nil, fmt.Errorf("%w: %s must return the instance and an optional error", ErrInvalidConstructor, goName)
	case ft.Out(0) != base && ft.Out(0) != reflect.PointerTo(base):
		return nil, fmt.Errorf("%w: %s returns %s, not %s", ErrInvalidConstructor, goName, ft.Out(0), base)
	case ft.NumOut() == 2 && !IsErrorType(ft.Out(1)):
		return nil, fmt.Errorf("%w: %s second result must be error", ErrInvalidConstructor, goName)
	}

	in := make([]reflect.Type, ft.NumIn())
	for i := range in {
		in[i] = ft.In(i)
	}
	return &Constructor{
		owner:   owner,
		goName:  goName,
		fn:      fn,
		in:      in,
		errors:  ft.NumOut() == 2,
		varargs: ft.IsVariadic(),
	}, nil
}

// Kind returns KindConstructor.
func (c *Constructor) Kind() Kind { return KindConstructor }

// Owner returns the host type.
func (c *Constructor) Owner() reflect.Type { return c.owner }

// Name returns "": constructors are keyed by signature only.
func (c *Constructor) Name() string { return "" }

// GoName returns the name the constructor was registered under.
func (c *Constructor) GoName() string { return c.goName }

// Func returns the constructor function.
func (c *Constructor) Func() reflect.Value { return c.fn }

// ParameterTypes returns the constructor's parameter types.
func (c *Constructor) ParameterTypes() []reflect.Type {
	return append([]reflect.Type(nil), c.in...)
}

// Arity returns the number of declared parameters.
func (c *Constructor) Arity() int { return len(c.in) }

// Variadic reports whether the last parameter is variadic.
func (c *Constructor) Variadic() bool { return c.varargs }

// ReturnsError reports whether the constructor returns an error as second result.
func (c *Constructor) ReturnsError() bool { return c.errors }

// Signature returns a stable description of the constructor.
func (c *Constructor) Signature() string {
	out := []reflect.Type{c.fn.Type().Out(0)}
	if c.errors {
		out = append(out, errorType)
	}
	return "constructor " + formatSignature(c.in, out, c.varargs)
}
