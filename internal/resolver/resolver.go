// Package resolver decides which members of a host type are visible to script code, under
// which names, and with which options.
//
// Every candidate member goes through a two-tier test per category. The explicit tier asks
// the Shutter whether the member is granted and requires the conventional shape (Get/Is/Set
// prefixes, a method named Get for object getters). The annotation tier asks the engine's
// Markers and only requires the signature shape. Getters, setters and object getters are
// tested before functions, so a method lands in at most one category.
package resolver

import (
	"cmp"
	"log/slog"
	"reflect"
	"runtime"
	"slices"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/members"
	"github.com/atlanticdynamic/hostbridge/internal/metrics"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

// EngineContext is the engine a factory resolves for. Its name scopes engine-restricted
// annotations and the cache.
type EngineContext interface {
	Name() string
	Markers() annotation.Markers
}

// Factory resolves host types for one engine and one Shutter.
type Factory struct {
	engine  string
	markers annotation.Markers
	shutter shutter.Shutter
	cache   *Cache
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewFactory returns a Factory. A nil engine uses the default annotation catalog under an
// empty engine name; a nil shutter grants nothing.
func NewFactory(engine EngineContext, sh shutter.Shutter, opts ...Option) *Factory {
	f := &Factory{
		markers: annotation.Default,
		shutter: sh,
		cache:   defaultCache,
		logger:  slog.Default().WithGroup("resolver.Factory"),
	}
	if engine != nil {
		f.engine = engine.Name()
		f.markers = engine.Markers()
	}
	if f.markers == nil {
		f.markers = annotation.None{}
	}
	if f.shutter == nil {
		f.shutter = shutter.Default{}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Engine returns the engine name the factory resolves for.
func (f *Factory) Engine() string { return f.engine }

// Shutter returns the visibility policy in use.
func (f *Factory) Shutter() shutter.Shutter { return f.shutter }

// Resolve returns the member set of t. Pointer types resolve to the same set as their element
// type. The only error is ErrNilType; members that fail a test are left out silently.
func (f *Factory) Resolve(t reflect.Type) (*members.Set, error) {
	if t == nil {
		return nil, ErrNilType
	}
	host := indirect(t)

	key, cacheable := newCacheKey(host, f.shutter, f.engine, f.markers)
	if !cacheable {
		f.metrics.ResolverLookup(metrics.CacheUncached)
		return f.resolve(host)
	}
	if set, ok := f.cache.load(key); ok {
		f.metrics.ResolverLookup(metrics.CacheHit)
		return set, nil
	}

	f.metrics.ResolverLookup(metrics.CacheMiss)
	set, err := f.resolve(host)
	if err != nil {
		return nil, err
	}
	return f.cache.store(key, set), nil
}

// ResolveValue resolves the dynamic type of v.
func (f *Factory) ResolveValue(v any) (*members.Set, error) {
	return f.Resolve(reflect.TypeOf(v))
}

type role int

const (
	roleGetter role = iota + 1
	roleSetter
	roleObjectGetter
	roleFunction
	roleField
)

// category is one method classification test. conventional reports whether the Go name
// follows the category's convention and returns the property part of it.
type category struct {
	role         role
	shaped       func(m members.Method) bool
	conventional func(m members.Method) (string, bool)
	marked       func(mk annotation.Markers, t reflect.Type, m reflect.Method, engine string) bool
}

// methodCategories is ordered by priority.
var methodCategories = []category{
	{
		role:         roleGetter,
		shaped:       members.IsGetterShape,
		conventional: members.GetterProperty,
		marked:       annotation.Markers.IsGetter,
	},
	{
		role:         roleSetter,
		shaped:       members.IsSetterShape,
		conventional: members.SetterProperty,
		marked:       annotation.Markers.IsSetter,
	},
	{
		role:   roleObjectGetter,
		shaped: isObjectGetterShape,
		conventional: func(m members.Method) (string, bool) {
			return "", m.Name == "Get"
		},
		marked: annotation.Markers.IsObjectGetter,
	},
	{
		role:         roleFunction,
		shaped:       func(members.Method) bool { return true },
		conventional: func(m members.Method) (string, bool) { return m.Name, true },
		marked:       annotation.Markers.IsFunction,
	},
}

// candidate is one Go member that passed a category test.
type candidate struct {
	role   role
	name   string
	goName string
	depth  int
	method *members.Method
	field  *reflect.StructField
	opts   []string
}

func (c candidate) hasOption(opt string) bool {
	return slices.Contains(c.opts, opt)
}

func (f *Factory) classifyMethod(host, mset reflect.Type, m reflect.Method) (candidate, bool) {
	meth := members.MethodOf(mset, m)
	for _, cat := range methodCategories {
		if !cat.shaped(meth) {
			continue
		}
		prop, conventional := cat.conventional(meth)
		explicit := conventional && f.shutter.MethodVisible(host, m)
		if !explicit && !cat.marked(f.markers, host, m, f.engine) {
			continue
		}

		name, ok := f.markers.MethodName(host, m, f.engine)
		switch {
		case ok:
		case conventional && prop != "":
			name = Decapitalize(prop)
		default:
			name = Decapitalize(m.Name)
		}
		return candidate{
			role:   cat.role,
			name:   name,
			goName: m.Name,
			depth:  methodDepth(host, meth, map[reflect.Type]bool{host: true}),
			method: &meth,
			opts:   f.markers.MethodOptions(host, m, f.engine),
		}, true
	}

	if f.shutter.MethodVisible(host, m) {
		f.logger.Debug("Granted method fits no category", "type", host, "method", m.Name)
	}
	return candidate{}, false
}

func (f *Factory) fieldName(host reflect.Type, sf reflect.StructField) string {
	if name, ok := f.markers.FieldName(host, sf, f.engine); ok {
		return name
	}
	return Decapitalize(sf.Name)
}

func (f *Factory) resolve(host reflect.Type) (*members.Set, error) {
	byName := make(map[string][]candidate)
	var objectGetters []candidate

	mset := methodSet(host)
	for i := 0; i < mset.NumMethod(); i++ {
		m := mset.Method(i)
		if !m.IsExported() || m.Name == annotation.HookMethod {
			continue
		}
		c, ok := f.classifyMethod(host, mset, m)
		if !ok {
			continue
		}
		if c.role == roleObjectGetter {
			objectGetters = append(objectGetters, c)
			continue
		}
		byName[c.name] = append(byName[c.name], c)
	}

	backing := make(map[string]candidate)
	if host.Kind() == reflect.Struct {
		for _, sf := range reflect.VisibleFields(host) {
			if sf.Anonymous || sf.Tag.Get(annotation.TagKey) == "-" {
				continue
			}
			c := candidate{
				role:   roleField,
				name:   f.fieldName(host, sf),
				goName: sf.Name,
				depth:  len(sf.Index) - 1,
				field:  &sf,
				opts:   f.markers.FieldOptions(host, sf, f.engine),
			}
			if prev, ok := backing[c.name]; !ok || closer(c, prev) {
				backing[c.name] = c
			}
			if !sf.IsExported() {
				continue
			}
			if f.shutter.FieldVisible(host, sf) || f.markers.IsField(host, sf, f.engine) {
				byName[c.name] = append(byName[c.name], c)
			}
		}
	}

	var fields []*members.Field
	var functions []*members.Function
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		accessors, funcs := closest(byName[name])
		if len(accessors) > 0 {
			fld, err := f.assembleField(host, name, accessors, backing)
			if err != nil {
				f.logger.Debug("Dropped field", "type", host, "name", name, "error", err)
				continue
			}
			fields = append(fields, fld)
			continue
		}
		fn, err := members.NewFunction(host, name, *funcs[0].method, optionsFor(funcs[0]), funcs[0].depth)
		if err != nil {
			f.logger.Debug("Dropped function", "type", host, "name", name, "error", err)
			continue
		}
		functions = append(functions, fn)
	}

	var objectGetter *members.Function
	if len(objectGetters) > 0 {
		slices.SortFunc(objectGetters, compareCandidates)
		og := objectGetters[0]
		fn, err := members.NewFunction(host, og.name, *og.method, optionsFor(og), og.depth)
		if err == nil {
			objectGetter = fn
		}
	}

	set, err := members.NewSet(host, fields, functions, f.constructors(host), objectGetter)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("Resolved host type",
		"type", host,
		"engine", f.engine,
		"fields", len(fields),
		"functions", len(functions),
		"constructors", len(set.Constructors()),
	)
	return set, nil
}

func (f *Factory) constructors(host reflect.Type) []*members.Constructor {
	var out []*members.Constructor
	for _, decl := range f.markers.Constructors(host) {
		fn := reflect.ValueOf(decl.Func)
		ctor, err := members.NewConstructor(host, decl.Name, fn)
		if err != nil {
			f.logger.Debug("Dropped constructor", "type", host, "name", decl.Name, "error", err)
			continue
		}
		if f.shutter.ConstructorVisible(host, decl.Name, fn.Type()) || f.markers.IsConstructor(host, decl, f.engine) {
			out = append(out, ctor)
		}
	}
	return out
}

// assembleField merges the getter, setter and struct field sharing one script name.
func (f *Factory) assembleField(
	host reflect.Type,
	name string,
	accessors []candidate,
	backing map[string]candidate,
) (*members.Field, error) {
	var getter, structField *candidate
	var setters []candidate
	for i := range accessors {
		c := &accessors[i]
		switch c.role {
		case roleGetter:
			if getter == nil {
				getter = c
			}
		case roleSetter:
			setters = append(setters, *c)
		case roleField:
			if structField == nil {
				structField = c
			}
		}
	}

	var valueType reflect.Type
	switch {
	case getter != nil:
		valueType = getter.method.Out[0]
	case structField != nil:
		valueType = structField.field.Type
	default:
		valueType = setters[0].method.In[0]
	}

	spec := members.FieldSpec{Owner: host, Name: name, Depth: accessors[0].depth}
	var enumSource *candidate
	if getter != nil {
		spec.Getter = getter.method
		spec.GetOverride = getter.hasOption(annotation.OptGetOverride)
		enumSource = getter
	}
	for i := range setters {
		if setters[i].method.In[0] == valueType {
			spec.Setter = setters[i].method
			spec.SetOverride = setters[i].hasOption(annotation.OptSetOverride)
			if enumSource == nil {
				enumSource = &setters[i]
			}
			break
		}
	}
	if structField != nil && structField.field.Type == valueType {
		spec.Field = structField.field
		if enumSource == nil {
			enumSource = structField
		}
	}
	if b, ok := backing[name]; ok {
		spec.Backing = b.field
		enumSource = &b
	}
	if enumSource == nil {
		// only a struct field of the wrong type was left
		enumSource = &accessors[0]
	}

	spec.Options = optionsFor(*enumSource)
	return members.NewField(spec)
}

func optionsFor(c candidate) members.Options {
	opts := members.Permanent
	if !c.hasOption(annotation.OptNotEnumerable) {
		opts |= members.Enumerable
	}
	return opts
}

// closest keeps the candidates declared at the smallest embedding depth and splits them into
// field accessors and functions, each ordered by Go name.
func closest(cands []candidate) (accessors, funcs []candidate) {
	depth := cands[0].depth
	for _, c := range cands[1:] {
		depth = min(depth, c.depth)
	}
	for _, c := range cands {
		if c.depth != depth {
			continue
		}
		if c.role == roleFunction {
			funcs = append(funcs, c)
		} else {
			accessors = append(accessors, c)
		}
	}
	slices.SortFunc(accessors, compareCandidates)
	slices.SortFunc(funcs, compareCandidates)
	return accessors, funcs
}

func compareCandidates(a, b candidate) int {
	return cmp.Or(
		cmp.Compare(a.depth, b.depth),
		cmp.Compare(a.goName, b.goName),
	)
}

func closer(a, b candidate) bool {
	return compareCandidates(a, b) < 0
}

func indirect(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// methodSet returns the type whose method set is exposed: *T for concrete types, T itself for
// interfaces.
func methodSet(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Interface {
		return t
	}
	return reflect.PointerTo(t)
}

// methodDepth returns the embedding depth of the type declaring m. A method t declares itself
// is at depth 0 even when it shadows an embedded method with the same signature.
func methodDepth(t reflect.Type, m members.Method, seen map[reflect.Type]bool) int {
	if t.Kind() != reflect.Struct || declaredOn(t, m.Name) {
		return 0
	}
	best := -1
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.Anonymous {
			continue
		}
		et := indirect(sf.Type)
		if seen[et] {
			continue
		}
		emset := methodSet(et)
		em, ok := emset.MethodByName(m.Name)
		if !ok || !sameSignature(members.MethodOf(emset, em), m) {
			continue
		}
		seen[et] = true
		d := 1 + methodDepth(et, m, seen)
		if best < 0 || d < best {
			best = d
		}
	}
	return max(best, 0)
}

// declaredOn reports whether t or *t carries a hand-written method called name. Promoted
// methods and the pointer wrappers of value methods are compiler generated.
func declaredOn(t reflect.Type, name string) bool {
	for _, mt := range []reflect.Type{t, reflect.PointerTo(t)} {
		if m, ok := mt.MethodByName(name); ok && !generated(m.Func) {
			return true
		}
	}
	return false
}

func generated(fn reflect.Value) bool {
	rf := runtime.FuncForPC(fn.Pointer())
	if rf == nil {
		return true
	}
	file, _ := rf.FileLine(rf.Entry())
	return file == "<autogenerated>"
}

func sameSignature(a, b members.Method) bool {
	return a.Variadic == b.Variadic && slices.Equal(a.In, b.In) && slices.Equal(a.Out, b.Out)
}
