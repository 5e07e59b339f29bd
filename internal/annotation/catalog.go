package annotation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/atlanticdynamic/hostbridge/internal/members"
)

var _ Markers = (*Catalog)(nil)

var annotatedType = reflect.TypeFor[Annotated]()

// Default is the process-wide catalog used when an engine does not bring its own.
var Default = NewCatalog()

// Register adds tbl for T to the Default catalog.
func Register[T any](tbl Table) error {
	return Default.Register(reflect.TypeFor[T](), tbl)
}

// Catalog is the default Markers implementation. Tables are registered explicitly or pulled
// from the Annotated hook the first time a type is looked up. Struct tags are always honored.
type Catalog struct {
	mu         sync.RWMutex
	tables     map[reflect.Type]*Table
	generation atomic.Uint64
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[reflect.Type]*Table)}
}

// Register stores tbl for t, replacing any table registered earlier. Every constructor must
// return t or *t, optionally followed by an error.
func (c *Catalog) Register(t reflect.Type, tbl Table) error {
	if t == nil {
		return ErrNilType
	}
	base := indirect(t)

	var errs []error
	for goName, m := range tbl.Members {
		if m.Role < RoleGetter || m.Role > RoleField {
			errs = append(errs, fmt.Errorf("%w: %s.%s has role %d", ErrInvalidRole, base, goName, m.Role))
		}
	}
	for _, ctor := range tbl.Constructors {
		if _, err := members.NewConstructor(base, ctor.Name, reflect.ValueOf(ctor.Func)); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables[base] = &tbl
	c.generation.Add(1)
	return nil
}

// Identity changes with every Register call, so resolutions cached under an older set of
// tables are not reused.
func (c *Catalog) Identity() string {
	return fmt.Sprintf("catalog:%p:%d", c, c.generation.Load())
}

// Lookup returns the annotation table of t, if any.
func (c *Catalog) Lookup(t reflect.Type) (Table, bool) {
	if t == nil {
		return Table{}, false
	}
	tbl := c.table(indirect(t))
	if tbl == nil {
		return Table{}, false
	}
	return *tbl, true
}

func (c *Catalog) table(base reflect.Type) *Table {
	c.mu.RLock()
	tbl, ok := c.tables[base]
	c.mu.RUnlock()
	if ok {
		return tbl
	}

	if base.Kind() != reflect.Interface && reflect.PointerTo(base).Implements(annotatedType) {
		hooked := reflect.New(base).Interface().(Annotated).ScriptAnnotations()
		tbl = &hooked
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.tables[base]; ok {
		return existing
	}
	c.tables[base] = tbl
	return tbl
}

// methodMember finds the annotation for a method, searching t first and then its embedded
// types, closest first.
func (c *Catalog) methodMember(t reflect.Type, m reflect.Method) (Member, bool) {
	for _, owner := range embeddedChain(indirect(t)) {
		if tbl := c.table(owner); tbl != nil {
			if mem, ok := tbl.Members[m.Name]; ok {
				return mem, true
			}
		}
	}
	return Member{}, false
}

// fieldMember finds the annotation for a struct field in the table of its declaring struct,
// then in the field's tag.
func (c *Catalog) fieldMember(t reflect.Type, f reflect.StructField) (Member, bool) {
	if owner := declaringStruct(indirect(t), f); owner != nil {
		if tbl := c.table(owner); tbl != nil {
			if mem, ok := tbl.Members[f.Name]; ok {
				return mem, true
			}
		}
	}
	return ParseTag(f.Tag)
}

func (c *Catalog) methodRole(t reflect.Type, m reflect.Method, engine string, role Role) bool {
	mem, ok := c.methodMember(t, m)
	if ok {
		return mem.Role == role && mem.AppliesTo(engine)
	}
	var conventional bool
	switch role {
	case RoleGetter:
		_, conventional = members.GetterProperty(members.MethodOf(t, m))
	case RoleSetter:
		_, conventional = members.SetterProperty(members.MethodOf(t, m))
	}
	return conventional && c.declaresProperties(t, m)
}

// declaresProperties reports whether the closest type in t's embedding chain that has m in its
// method set carries a Properties table.
func (c *Catalog) declaresProperties(t reflect.Type, m reflect.Method) bool {
	for _, owner := range embeddedChain(indirect(t)) {
		if !hasMethod(owner, m.Name) {
			continue
		}
		if tbl := c.table(owner); tbl != nil && tbl.Properties {
			return true
		}
	}
	return false
}

func (c *Catalog) IsGetter(t reflect.Type, m reflect.Method, engine string) bool {
	return c.methodRole(t, m, engine, RoleGetter)
}

func (c *Catalog) IsSetter(t reflect.Type, m reflect.Method, engine string) bool {
	return c.methodRole(t, m, engine, RoleSetter)
}

func (c *Catalog) IsFunction(t reflect.Type, m reflect.Method, engine string) bool {
	return c.methodRole(t, m, engine, RoleFunction)
}

func (c *Catalog) IsObjectGetter(t reflect.Type, m reflect.Method, engine string) bool {
	return c.methodRole(t, m, engine, RoleObjectGetter)
}

func (c *Catalog) IsField(t reflect.Type, f reflect.StructField, engine string) bool {
	mem, ok := c.fieldMember(t, f)
	return ok && mem.Role == RoleField && mem.AppliesTo(engine)
}

func (c *Catalog) IsConstructor(_ reflect.Type, ctor Constructor, engine string) bool {
	return ctor.AppliesTo(engine)
}

func (c *Catalog) MethodName(t reflect.Type, m reflect.Method, engine string) (string, bool) {
	mem, ok := c.methodMember(t, m)
	if !ok || mem.Name == "" || !mem.AppliesTo(engine) {
		return "", false
	}
	return mem.Name, true
}

func (c *Catalog) FieldName(t reflect.Type, f reflect.StructField, engine string) (string, bool) {
	mem, ok := c.fieldMember(t, f)
	if !ok || mem.Name == "" || !mem.AppliesTo(engine) {
		return "", false
	}
	return mem.Name, true
}

func (c *Catalog) MethodOptions(t reflect.Type, m reflect.Method, engine string) []string {
	mem, ok := c.methodMember(t, m)
	if !ok || !mem.AppliesTo(engine) {
		return nil
	}
	return mem.Options
}

func (c *Catalog) FieldOptions(t reflect.Type, f reflect.StructField, engine string) []string {
	mem, ok := c.fieldMember(t, f)
	if !ok || !mem.AppliesTo(engine) {
		return nil
	}
	return mem.Options
}

func (c *Catalog) Constructors(t reflect.Type) []Constructor {
	if t == nil {
		return nil
	}
	tbl := c.table(indirect(t))
	if tbl == nil {
		return nil
	}
	return append([]Constructor(nil), tbl.Constructors...)
}

// ParseTag reads a `script:"name,opt,opt"` tag. A missing tag or "-" yields no annotation.
func ParseTag(tag reflect.StructTag) (Member, bool) {
	value, ok := tag.Lookup(TagKey)
	if !ok || value == "-" {
		return Member{}, false
	}
	parts := strings.Split(value, ",")
	mem := Member{Role: RoleField, Name: strings.TrimSpace(parts[0])}
	for _, opt := range parts[1:] {
		if opt = strings.TrimSpace(opt); opt != "" {
			mem.Options = append(mem.Options, opt)
		}
	}
	return mem, true
}

func hasMethod(t reflect.Type, name string) bool {
	if t.Kind() != reflect.Interface {
		t = reflect.PointerTo(t)
	}
	_, ok := t.MethodByName(name)
	return ok
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// embeddedChain lists t followed by its embedded types in breadth-first order.
func embeddedChain(t reflect.Type) []reflect.Type {
	chain := []reflect.Type{t}
	seen := map[reflect.Type]bool{t: true}
	for i := 0; i < len(chain); i++ {
		cur := chain[i]
		if cur.Kind() != reflect.Struct {
			continue
		}
		for j := 0; j < cur.NumField(); j++ {
			f := cur.Field(j)
			if !f.Anonymous {
				continue
			}
			ft := indirect(f.Type)
			if !seen[ft] {
				seen[ft] = true
				chain = append(chain, ft)
			}
		}
	}
	return chain
}

// declaringStruct walks the index path of f and returns the struct type that declares it.
func declaringStruct(t reflect.Type, f reflect.StructField) reflect.Type {
	if t.Kind() != reflect.Struct || len(f.Index) == 0 {
		return nil
	}
	cur := t
	for _, i := range f.Index[:len(f.Index)-1] {
		if cur.Kind() != reflect.Struct || i >= cur.NumField() {
			return nil
		}
		cur = indirect(cur.Field(i).Type)
	}
	return cur
}
