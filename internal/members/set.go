package members

import (
	"cmp"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Set is the resolved, immutable member set of one host type.
type Set struct {
	owner        reflect.Type
	fields       map[string]*Field
	functions    map[string]*Function
	constructors []*Constructor
	objectGetter *Function
}

// NewSet builds a Set. Field and function names must be unique across both kinds.
func NewSet(
	owner reflect.Type,
	fields []*Field,
	functions []*Function,
	constructors []*Constructor,
	objectGetter *Function,
) (*Set, error) {
	if owner == nil {
		return nil, ErrNilOwner
	}

	s := &Set{
		owner:        owner,
		fields:       make(map[string]*Field, len(fields)),
		functions:    make(map[string]*Function, len(functions)),
		objectGetter: objectGetter,
	}
	for _, f := range fields {
		if _, ok := s.fields[f.Name()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, f.Name())
		}
		s.fields[f.Name()] = f
	}
	for _, fn := range functions {
		if _, ok := s.fields[fn.Name()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, fn.Name())
		}
		if _, ok := s.functions[fn.Name()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, fn.Name())
		}
		s.functions[fn.Name()] = fn
	}

	s.constructors = slices.Clone(constructors)
	slices.SortStableFunc(s.constructors, func(a, b *Constructor) int {
		return cmp.Or(
			cmp.Compare(a.Arity(), b.Arity()),
			cmp.Compare(a.Signature(), b.Signature()),
		)
	})
	return s, nil
}

// Owner returns the host type.
func (s *Set) Owner() reflect.Type { return s.owner }

// Field looks up a field by script name.
func (s *Set) Field(name string) (*Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Function looks up a function by script name.
func (s *Set) Function(name string) (*Function, bool) {
	f, ok := s.functions[name]
	return f, ok
}

// Lookup returns the field or function named name.
func (s *Set) Lookup(name string) (Descriptor, bool) {
	if f, ok := s.fields[name]; ok {
		return f, true
	}
	if f, ok := s.functions[name]; ok {
		return f, true
	}
	return nil, false
}

// Names returns every field and function name, sorted.
func (s *Set) Names() []string {
	names := slices.Collect(maps.Keys(s.fields))
	names = slices.AppendSeq(names, maps.Keys(s.functions))
	slices.Sort(names)
	return names
}

// EnumerableNames returns the sorted names of members carrying the Enumerable option.
func (s *Set) EnumerableNames() []string {
	var names []string
	for name, f := range s.fields {
		if f.Options().Has(Enumerable) {
			names = append(names, name)
		}
	}
	for name, fn := range s.functions {
		if fn.Options().Has(Enumerable) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Fields returns the fields sorted by name.
func (s *Set) Fields() []*Field {
	out := slices.Collect(maps.Values(s.fields))
	slices.SortFunc(out, func(a, b *Field) int { return cmp.Compare(a.Name(), b.Name()) })
	return out
}

// Functions returns the functions sorted by name.
func (s *Set) Functions() []*Function {
	out := slices.Collect(maps.Values(s.functions))
	slices.SortFunc(out, func(a, b *Function) int { return cmp.Compare(a.Name(), b.Name()) })
	return out
}

// Constructors returns the constructors sorted by arity, then signature.
func (s *Set) Constructors() []*Constructor {
	return slices.Clone(s.constructors)
}

// ObjectGetter returns the dynamic property getter, if the type has one.
func (s *Set) ObjectGetter() (*Function, bool) {
	return s.objectGetter, s.objectGetter != nil
}

// Len returns the number of named members.
func (s *Set) Len() int {
	return len(s.fields) + len(s.functions)
}

// Empty reports whether the set exposes nothing at all.
func (s *Set) Empty() bool {
	return s.Len() == 0 && len(s.constructors) == 0 && s.objectGetter == nil
}

// Equal reports whether two sets describe the same members with the same options.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.owner != other.owner || s.Len() != other.Len() {
		return false
	}
	for name, f := range s.fields {
		o, ok := other.fields[name]
		if !ok || o.Signature() != f.Signature() {
			return false
		}
	}
	for name, fn := range s.functions {
		o, ok := other.functions[name]
		if !ok || o.Signature() != fn.Signature() {
			return false
		}
	}
	if !slices.EqualFunc(s.constructors, other.constructors, func(a, b *Constructor) bool {
		return a.Signature() == b.Signature()
	}) {
		return false
	}
	switch {
	case s.objectGetter == nil && other.objectGetter == nil:
		return true
	case s.objectGetter == nil || other.objectGetter == nil:
		return false
	default:
		return s.objectGetter.Signature() == other.objectGetter.Signature()
	}
}
