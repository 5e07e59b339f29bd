package binder

import (
	"fmt"

	"github.com/atlanticdynamic/hostbridge/internal/members"
)

var _ Wrapper = (*Object)(nil)

// Object is a host instance together with the handles of its resolved members. Engines hand
// it to their marshalling layer; it unwraps to the instance.
type Object struct {
	instance any
	set      *members.Set
	handles  map[string]Handle
}

// NewObject binds every member of set to instance.
func NewObject(instance any, set *members.Set) (*Object, error) {
	instance = Unwrap(instance)
	handles, err := BindAll(instance, set)
	if err != nil {
		return nil, err
	}
	return &Object{instance: instance, set: set, handles: handles}, nil
}

// Unwrap returns the host instance.
func (o *Object) Unwrap() any { return o.instance }

// Members returns the resolved member set.
func (o *Object) Members() *members.Set { return o.set }

// Handle returns the handle bound to name.
func (o *Object) Handle(name string) (Handle, bool) {
	h, ok := o.handles[name]
	return h, ok
}

func (o *Object) handle(name string) (Handle, error) {
	h, ok := o.handles[name]
	if !ok {
		return Handle{}, fmt.Errorf("%w: %s", ErrMissingMember, name)
	}
	return h, nil
}

// Get reads the field name.
func (o *Object) Get(name string) (any, error) {
	h, err := o.handle(name)
	if err != nil {
		return nil, err
	}
	return h.Get()
}

// Set assigns the field name.
func (o *Object) Set(name string, value any) error {
	h, err := o.handle(name)
	if err != nil {
		return err
	}
	return h.Set(value)
}

// Call invokes the function name.
func (o *Object) Call(name string, args ...any) (any, error) {
	h, err := o.handle(name)
	if err != nil {
		return nil, err
	}
	return h.Invoke(args...)
}

// Snapshot reads every enumerable, readable field. The first failing getter aborts the
// snapshot.
func (o *Object) Snapshot() (map[string]any, error) {
	out := make(map[string]any)
	for _, name := range o.set.EnumerableNames() {
		f, ok := o.set.Field(name)
		if !ok || !f.Readable() {
			continue
		}
		v, err := o.handles[name].Get()
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}
