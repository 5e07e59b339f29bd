package members

import (
	"fmt"
	"reflect"
	"strings"
)

var _ Descriptor = (*Field)(nil)

// FieldSpec holds everything needed to build a Field.
type FieldSpec struct {
	Owner reflect.Type
	Name  string

	// Getter and Setter are the accessor methods, either may be nil.
	Getter *Method
	Setter *Method

	// Field is a struct field that script code may read or write directly.
	Field *reflect.StructField

	// Backing is the struct field sharing the script name, exported or not. It only
	// contributes metadata and is never accessed.
	Backing *reflect.StructField

	// GetOverride and SetOverride mark accessors whose script semantics differ from
	// the plain structural get/set.
	GetOverride bool
	SetOverride bool

	Options Options

	// Depth is the embedding depth of the closest declaring type, 0 for the host itself.
	Depth int
}

// Field is a script-visible property assembled from a getter, a setter and/or a struct field.
type Field struct {
	owner       reflect.Type
	name        string
	getter      *Method
	setter      *Method
	field       *reflect.StructField
	backing     *reflect.StructField
	valueType   reflect.Type
	getOverride bool
	setOverride bool
	options     Options
	depth       int
}

// NewField validates spec and returns an immutable Field. The getter result type, the setter
// parameter type and the struct field type must all agree.
func NewField(spec FieldSpec) (*Field, error) {
	if spec.Owner == nil {
		return nil, ErrNilOwner
	}
	if spec.Name == "" {
		return nil, ErrEmptyName
	}
	if spec.Getter == nil && spec.Setter == nil && spec.Field == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoAccessor, spec.Name)
	}

	var types []reflect.Type
	if spec.Getter != nil {
		if len(spec.Getter.Out) == 0 {
			return nil, fmt.Errorf("%w: getter %s has no result", ErrTypeMismatch, spec.Getter.Name)
		}
		types = append(types, spec.Getter.Out[0])
	}
	if spec.Setter != nil {
		if len(spec.Setter.In) != 1 {
			return nil, fmt.Errorf("%w: setter %s must take one argument", ErrTypeMismatch, spec.Setter.Name)
		}
		types = append(types, spec.Setter.In[0])
	}
	if spec.Field != nil {
		types = append(types, spec.Field.Type)
	}
	for _, t := range types[1:] {
		if t != types[0] {
			return nil, fmt.Errorf("%w: field %s mixes %s and %s", ErrTypeMismatch, spec.Name, types[0], t)
		}
	}

	return &Field{
		owner:       spec.Owner,
		name:        spec.Name,
		getter:      spec.Getter,
		setter:      spec.Setter,
		field:       spec.Field,
		backing:     spec.Backing,
		valueType:   types[0],
		getOverride: spec.GetOverride,
		setOverride: spec.SetOverride,
		options:     spec.Options,
		depth:       spec.Depth,
	}, nil
}

// Kind returns KindField.
func (f *Field) Kind() Kind { return KindField }

// Owner returns the host type.
func (f *Field) Owner() reflect.Type { return f.owner }

// Name returns the script-facing property name.
func (f *Field) Name() string { return f.name }

// Getter returns the getter method, if any.
func (f *Field) Getter() (Method, bool) {
	if f.getter == nil {
		return Method{}, false
	}
	return *f.getter, true
}

// Setter returns the setter method, if any.
func (f *Field) Setter() (Method, bool) {
	if f.setter == nil {
		return Method{}, false
	}
	return *f.setter, true
}

// StructField returns the directly accessible struct field, if any.
func (f *Field) StructField() (reflect.StructField, bool) {
	if f.field == nil {
		return reflect.StructField{}, false
	}
	return *f.field, true
}

// Backing returns the struct field that shares this property's name, if any.
func (f *Field) Backing() (reflect.StructField, bool) {
	if f.backing == nil {
		return reflect.StructField{}, false
	}
	return *f.backing, true
}

// ValueType returns the property's value type.
func (f *Field) ValueType() reflect.Type { return f.valueType }

// Readable reports whether script code can read the property.
func (f *Field) Readable() bool { return f.getter != nil || f.field != nil }

// Writable reports whether script code can assign the property.
func (f *Field) Writable() bool { return f.setter != nil || f.field != nil }

// GetOverride reports whether the getter overrides the structural get semantics.
func (f *Field) GetOverride() bool { return f.getOverride }

// SetOverride reports whether the setter overrides the structural set semantics.
func (f *Field) SetOverride() bool { return f.setOverride }

// Options returns the capability options.
func (f *Field) Options() Options { return f.options }

// Depth returns the embedding depth of the closest declaring type.
func (f *Field) Depth() int { return f.depth }

// Access returns "rw", "r" or "w".
func (f *Field) Access() string {
	switch {
	case f.Readable() && f.Writable():
		return "rw"
	case f.Readable():
		return "r"
	default:
		return "w"
	}
}

// Signature returns a stable description of the field.
func (f *Field) Signature() string {
	parts := []string{
		"field " + f.name,
		f.valueType.String(),
		f.Access(),
		f.options.String(),
	}
	if f.getter != nil {
		parts = append(parts, "get="+f.getter.Name)
	}
	if f.setter != nil {
		parts = append(parts, "set="+f.setter.Name)
	}
	if f.field != nil {
		parts = append(parts, fmt.Sprintf("struct=%s%v", f.field.Name, f.field.Index))
	}
	if f.backing != nil {
		parts = append(parts, fmt.Sprintf("backing=%s%v", f.backing.Name, f.backing.Index))
	}
	if f.getOverride {
		parts = append(parts, "get_override")
	}
	if f.setOverride {
		parts = append(parts, "set_override")
	}
	return strings.Join(parts, " ")
}
