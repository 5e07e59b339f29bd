// Package binder binds resolved member descriptors to concrete host instances.
//
// Handles are cheap and are not cached. Binding only checks that an instance is present;
// argument and type problems surface when the handle is used, wrapped in an InvocationError
// together with any error or panic raised by host code.
package binder

import (
	"fmt"
	"reflect"

	"github.com/atlanticdynamic/hostbridge/internal/members"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

// Handle is a descriptor bound to one instance.
type Handle struct {
	desc     members.Descriptor
	instance reflect.Value
	// addressable is false when the instance was passed by value, in which case the handle
	// works on a private copy and struct fields cannot be assigned.
	addressable bool
}

// Bind binds d to instance. Constructors need no instance; every other kind returns
// ErrNilInstance for a nil instance or a nil pointer.
func Bind(instance any, d members.Descriptor) (Handle, error) {
	if d == nil {
		return Handle{}, fmt.Errorf("%w: nil descriptor", ErrInvalidOperation)
	}
	h := Handle{desc: d}
	if d.Kind() == members.KindConstructor {
		return h, nil
	}

	instance = Unwrap(instance)
	if instance == nil {
		return Handle{}, ErrNilInstance
	}
	v := reflect.ValueOf(instance)
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return Handle{}, ErrNilInstance
		}
		h.instance = v
		h.addressable = true
	case reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return Handle{}, ErrNilInstance
		}
		h.instance = v
	default:
		p := reflect.New(v.Type())
		p.Elem().Set(v)
		h.instance = p
	}
	return h, nil
}

// BindAll binds every field and function of set to instance, keyed by script name.
func BindAll(instance any, set *members.Set) (map[string]Handle, error) {
	handles := make(map[string]Handle, set.Len())
	for _, name := range set.Names() {
		d, _ := set.Lookup(name)
		h, err := Bind(instance, d)
		if err != nil {
			return nil, err
		}
		handles[name] = h
	}
	return handles, nil
}

// Descriptor returns the bound descriptor.
func (h Handle) Descriptor() members.Descriptor { return h.desc }

// Kind returns the descriptor kind, or 0 for a zero Handle.
func (h Handle) Kind() members.Kind {
	if h.desc == nil {
		return 0
	}
	return h.desc.Kind()
}

// Name returns the script name of the bound member.
func (h Handle) Name() string {
	if h.desc == nil {
		return ""
	}
	return h.desc.Name()
}

// ParameterTypes returns the parameters of a bound function or constructor.
func (h Handle) ParameterTypes() []reflect.Type {
	switch d := h.desc.(type) {
	case *members.Function:
		return append([]reflect.Type(nil), d.Method().In...)
	case *members.Constructor:
		return d.ParameterTypes()
	default:
		return nil
	}
}

func (h Handle) qualified() string {
	if h.desc == nil {
		return "<unbound>"
	}
	if h.desc.Kind() == members.KindConstructor {
		return shutter.TypeName(h.desc.Owner()) + "." + h.desc.(*members.Constructor).GoName()
	}
	return shutter.TypeName(h.desc.Owner()) + "." + h.desc.Name()
}

func (h Handle) invocationError(op string, cause error) error {
	return &InvocationError{Member: h.qualified(), Op: op, Cause: cause}
}

func (h Handle) invalid(op string) error {
	if h.desc == nil {
		return fmt.Errorf("%w: %s on an unbound handle", ErrInvalidOperation, op)
	}
	return fmt.Errorf("%w: %s on %s %s", ErrInvalidOperation, op, h.desc.Kind(), h.qualified())
}

// call runs fn, turning panics into an InvocationError.
func (h Handle) call(op string, fn func() ([]reflect.Value, error)) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			out, err = nil, h.invocationError(op, cause)
		}
	}()
	out, err = fn()
	if err != nil {
		return nil, h.invocationError(op, err)
	}
	return out, nil
}

func (h Handle) method(name string) (reflect.Value, error) {
	m := h.instance.MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: %s on %s", ErrMissingMember, name, h.instance.Type())
	}
	return m, nil
}

func (h Handle) structField(index []int) (reflect.Value, error) {
	v := h.instance
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: %s is not a struct", ErrMissingMember, v.Type())
	}
	return v.FieldByIndexErr(index)
}

// trailingError splits a trailing error result off out.
func trailingError(out []reflect.Value, results []reflect.Type) ([]reflect.Value, error) {
	if len(results) == 0 || !members.IsErrorType(results[len(results)-1]) {
		return out, nil
	}
	last := out[len(out)-1]
	if !last.IsNil() {
		return nil, last.Interface().(error)
	}
	return out[:len(out)-1], nil
}

// Get reads a field.
func (h Handle) Get() (any, error) {
	f, ok := h.desc.(*members.Field)
	if !ok || !f.Readable() {
		return nil, h.invalid("get")
	}

	out, err := h.call("get", func() ([]reflect.Value, error) {
		if getter, ok := f.Getter(); ok {
			m, err := h.method(getter.Name)
			if err != nil {
				return nil, err
			}
			return m.Call(nil), nil
		}
		sf, _ := f.StructField()
		fv, err := h.structField(sf.Index)
		if err != nil {
			return nil, err
		}
		return []reflect.Value{fv}, nil
	})
	if err != nil {
		return nil, err
	}
	return out[0].Interface(), nil
}

// Set assigns a field.
func (h Handle) Set(value any) error {
	f, ok := h.desc.(*members.Field)
	if !ok || !f.Writable() {
		return h.invalid("set")
	}

	if setter, ok := f.Setter(); ok {
		_, err := h.call("set", func() ([]reflect.Value, error) {
			m, err := h.method(setter.Name)
			if err != nil {
				return nil, err
			}
			arg, err := convertArg(value, setter.In[0])
			if err != nil {
				return nil, err
			}
			return trailingError(m.Call([]reflect.Value{arg}), setter.Out)
		})
		return err
	}

	if !h.addressable {
		return fmt.Errorf("%w: set %s on a value copy", ErrInvalidOperation, h.qualified())
	}
	sf, _ := f.StructField()
	_, err := h.call("set", func() ([]reflect.Value, error) {
		fv, err := h.structField(sf.Index)
		if err != nil {
			return nil, err
		}
		if !fv.CanSet() {
			return nil, fmt.Errorf("%w: field %s cannot be set", ErrMissingMember, sf.Name)
		}
		arg, err := convertArg(value, sf.Type)
		if err != nil {
			return nil, err
		}
		fv.Set(arg)
		return nil, nil
	})
	return err
}

// Invoke calls a function. A trailing error result is returned as an InvocationError; no
// remaining result yields nil, one yields the value and several yield a []any.
func (h Handle) Invoke(args ...any) (any, error) {
	fn, ok := h.desc.(*members.Function)
	if !ok {
		return nil, h.invalid("invoke")
	}
	meth := fn.Method()

	out, err := h.call("invoke", func() ([]reflect.Value, error) {
		m, err := h.method(meth.Name)
		if err != nil {
			return nil, err
		}
		in, err := convertArgs(args, meth.In, meth.Variadic)
		if err != nil {
			return nil, err
		}
		return trailingError(m.Call(in), meth.Out)
	})
	if err != nil {
		return nil, err
	}
	return results(out), nil
}

// Construct calls a constructor and returns the new instance.
func (h Handle) Construct(args ...any) (any, error) {
	c, ok := h.desc.(*members.Constructor)
	if !ok {
		return nil, h.invalid("construct")
	}
	fn := c.Func()

	out, err := h.call("construct", func() ([]reflect.Value, error) {
		in, err := convertArgs(args, c.ParameterTypes(), c.Variadic())
		if err != nil {
			return nil, err
		}
		results := make([]reflect.Type, fn.Type().NumOut())
		for i := range results {
			results[i] = fn.Type().Out(i)
		}
		return trailingError(fn.Call(in), results)
	})
	if err != nil {
		return nil, err
	}
	return out[0].Interface(), nil
}

func results(out []reflect.Value) any {
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0].Interface()
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}
		return vals
	}
}
