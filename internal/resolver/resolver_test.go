package resolver

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/members"
	"github.com/atlanticdynamic/hostbridge/internal/metrics"
	"github.com/atlanticdynamic/hostbridge/internal/shutter"
)

type testEngine struct {
	name    string
	markers annotation.Markers
}

func (e testEngine) Name() string                { return e.name }
func (e testEngine) Markers() annotation.Markers { return e.markers }

func newTestFactory(t *testing.T, catalog *annotation.Catalog, sh shutter.Shutter, opts ...Option) *Factory {
	t.Helper()
	if catalog == nil {
		catalog = annotation.NewCatalog()
	}
	opts = append([]Option{WithCache(NewCache())}, opts...)
	return NewFactory(testEngine{name: "test", markers: catalog}, sh, opts...)
}

type Point struct {
	x, y int
}

func (p *Point) GetX() int  { return p.x }
func (p *Point) SetX(x int) { p.x = x }
func (p *Point) GetY() int  { return p.y }
func (p *Point) SetY(y int) { p.y = y }
func (p *Point) Reset()     { p.x, p.y = 0, 0 }

func pointCatalog(t *testing.T) *annotation.Catalog {
	t.Helper()
	c := annotation.NewCatalog()
	require.NoError(t, c.Register(reflect.TypeFor[Point](), annotation.Table{
		Properties: true,
		Members:    map[string]annotation.Member{"Reset": {Role: annotation.RoleFunction}},
	}))
	return c
}

func TestPointScenario(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t, pointCatalog(t), shutter.Default{})
	set, err := f.Resolve(reflect.TypeFor[*Point]())
	require.NoError(t, err)

	assert.Equal(t, []string{"reset", "x", "y"}, set.Names())
	for _, name := range []string{"x", "y"} {
		fld, ok := set.Field(name)
		require.True(t, ok, name)
		assert.True(t, fld.Readable())
		assert.True(t, fld.Writable())
		assert.Equal(t, reflect.TypeFor[int](), fld.ValueType())
		assert.Equal(t, members.Permanent|members.Enumerable, fld.Options())
		backing, ok := fld.Backing()
		require.True(t, ok)
		assert.Equal(t, name, backing.Name)
		_, ok = fld.StructField()
		assert.False(t, ok, "unexported fields are never accessed")
	}

	reset, ok := set.Function("reset")
	require.True(t, ok)
	assert.Equal(t, "Reset", reset.Method().Name)
	assert.Equal(t, members.Permanent|members.Enumerable, reset.Options())
}

func TestDeterminism(t *testing.T) {
	t.Parallel()

	catalog := pointCatalog(t)
	a, err := newTestFactory(t, catalog, nil).Resolve(reflect.TypeFor[Point]())
	require.NoError(t, err)
	b, err := newTestFactory(t, catalog, nil).Resolve(reflect.TypeFor[Point]())
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.True(t, a.Equal(b))

	f := newTestFactory(t, catalog, nil)
	first, err := f.Resolve(reflect.TypeFor[Point]())
	require.NoError(t, err)
	second, err := f.Resolve(reflect.TypeFor[*Point]())
	require.NoError(t, err)
	assert.Same(t, first, second)
}

type plain struct {
	Name  string
	Count int
	Extra bool
}

func (p *plain) GetName() string         { return p.Name }
func (p *plain) IsEmpty() bool           { return p.Name == "" }
func (p *plain) Norm() int               { return p.Count * p.Count }
func (p *plain) SetPair(a, b int)        {}
func (p *plain) Getaway() string         { return "" }
func (p *plain) Get(key string) any      { return key }
func (p *plain) SetCount(c string) error { return nil }

var plainName = shutter.TypeName(reflect.TypeFor[plain]())

func TestExplicitGrant(t *testing.T) {
	t.Parallel()

	list, err := shutter.NewAllowList(shutter.Grant{
		Type:    plainName,
		Fields:  []string{"Count"},
		Methods: []string{"GetName", "IsEmpty", "Norm", "SetPair", "Getaway", "Get"},
	})
	require.NoError(t, err)

	set, err := newTestFactory(t, nil, list).Resolve(reflect.TypeFor[plain]())
	require.NoError(t, err)

	assert.Equal(t, []string{"count", "empty", "getaway", "name", "norm", "setPair"}, set.Names())

	name, ok := set.Field("name")
	require.True(t, ok)
	assert.Equal(t, "r", name.Access(), "Name field is not granted, only the getter")
	backing, ok := name.Backing()
	require.True(t, ok)
	assert.Equal(t, "Name", backing.Name)

	count, ok := set.Field("count")
	require.True(t, ok)
	assert.Equal(t, "rw", count.Access())
	_, ok = count.Setter()
	assert.False(t, ok, "SetCount is not granted")

	empty, ok := set.Field("empty")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[bool](), empty.ValueType())

	_, ok = set.Function("getaway")
	assert.True(t, ok, "Getaway does not follow the getter convention")

	_, ok = set.Lookup("pair")
	assert.False(t, ok, "a granted setter with the wrong arity is not a setter")
	fn, ok := set.Function("setPair")
	require.True(t, ok)
	assert.Equal(t, 2, fn.Arity())

	og, ok := set.ObjectGetter()
	require.True(t, ok)
	assert.Equal(t, "Get", og.Method().Name)
	_, ok = set.Lookup("get")
	assert.False(t, ok, "the object getter is not a named member")
}

func TestExclusion(t *testing.T) {
	t.Parallel()

	set, err := newTestFactory(t, nil, shutter.Default{}).Resolve(reflect.TypeFor[plain]())
	require.NoError(t, err)
	assert.True(t, set.Empty())
	assert.Empty(t, set.Names())
}

type priority struct{}

func (priority) GetTitle() string { return "" }
func (priority) IsReady() bool    { return true }
func (priority) IsCount() int     { return 0 }
func (priority) Fetch() error     { return nil }

func TestGetterPriority(t *testing.T) {
	t.Parallel()

	set, err := newTestFactory(t, nil, shutter.All{}).Resolve(reflect.TypeFor[priority]())
	require.NoError(t, err)

	for _, name := range []string{"title", "ready"} {
		_, ok := set.Field(name)
		assert.True(t, ok, name)
		_, ok = set.Function(name)
		assert.False(t, ok, name)
	}
	_, ok := set.Function("isCount")
	assert.True(t, ok, "Is<Name> getters must return bool")
	_, ok = set.Function("fetch")
	assert.True(t, ok)
}

type tagged struct {
	Secret  string `script:",noenum"`
	Visible string
	Title   string `script:"heading"`
	Hidden  string `script:"-"`
	level   int
	mode    string `script:",noenum"`
}

func (t *tagged) GetSecret() string      { return t.Secret }
func (t *tagged) GetVisible() string     { return t.Visible }
func (t *tagged) GetLevel() int          { return t.level }
func (t *tagged) SetMode(m string)       { t.mode = m }
func (t *tagged) GetComputed() string    { return "" }
func (t *tagged) SetComputed(string)     {}
func (t *tagged) GetMismatch() int       { return 0 }
func (t *tagged) SetMismatch(string)     {}
func (t *tagged) GetHidden() string      { return t.Hidden }
func (t *tagged) SetVisible(v string)    { t.Visible = v }
func (t *tagged) SetLevel(l int) error   { t.level = l; return nil }
func (t *tagged) SetSecret(s string)     { t.Secret = s }
func (t *tagged) Compute(n float64) bool { return n > 0 }

func TestMergeAndEnumerability(t *testing.T) {
	t.Parallel()

	catalog := annotation.NewCatalog()
	require.NoError(t, catalog.Register(reflect.TypeFor[tagged](), annotation.Table{
		Members: map[string]annotation.Member{
			"GetSecret":   {Role: annotation.RoleGetter},
			"SetSecret":   {Role: annotation.RoleSetter},
			"GetComputed": {Role: annotation.RoleGetter, Options: []string{annotation.OptNotEnumerable, annotation.OptGetOverride}},
			"SetComputed": {Role: annotation.RoleSetter, Options: []string{annotation.OptSetOverride}},
			"SetMode":     {Role: annotation.RoleSetter},
			"Compute":     {Role: annotation.RoleFunction, Name: "evaluate", Options: []string{annotation.OptNotEnumerable}},
		},
	}))

	set, err := newTestFactory(t, catalog, shutter.All{}).Resolve(reflect.TypeFor[tagged]())
	require.NoError(t, err)

	t.Run("backing field decides enumerability", func(t *testing.T) {
		secret, ok := set.Field("secret")
		require.True(t, ok)
		assert.False(t, secret.Options().Has(members.Enumerable))
		assert.True(t, secret.Options().Has(members.Permanent))
		_, hasGetter := secret.Getter()
		_, hasSetter := secret.Setter()
		_, hasField := secret.StructField()
		assert.True(t, hasGetter && hasSetter && hasField)

		mode, ok := set.Field("mode")
		require.True(t, ok)
		assert.Equal(t, "w", mode.Access())
		assert.False(t, mode.Options().Has(members.Enumerable))

		level, ok := set.Field("level")
		require.True(t, ok)
		assert.Equal(t, "rw", level.Access())
		assert.True(t, level.Options().Has(members.Enumerable))
	})

	t.Run("getter decides without a backing field", func(t *testing.T) {
		computed, ok := set.Field("computed")
		require.True(t, ok)
		assert.False(t, computed.Options().Has(members.Enumerable))
		assert.True(t, computed.GetOverride())
		assert.True(t, computed.SetOverride())
	})

	t.Run("disagreeing setter is dropped", func(t *testing.T) {
		mismatch, ok := set.Field("mismatch")
		require.True(t, ok)
		assert.Equal(t, "r", mismatch.Access())
	})

	t.Run("tags rename and exclude", func(t *testing.T) {
		heading, ok := set.Field("heading")
		require.True(t, ok)
		sf, ok := heading.StructField()
		require.True(t, ok)
		assert.Equal(t, "Title", sf.Name)

		hidden, ok := set.Field("hidden")
		require.True(t, ok, "the getter is still granted")
		_, ok = hidden.StructField()
		assert.False(t, ok)
		_, ok = hidden.Backing()
		assert.False(t, ok)
	})

	t.Run("function name override and options", func(t *testing.T) {
		fn, ok := set.Function("evaluate")
		require.True(t, ok)
		assert.Equal(t, members.Permanent, fn.Options())
		_, ok = set.Function("compute")
		assert.False(t, ok)
	})
}

type inner struct {
	Label string
}

func (inner) GetTitle() string { return "inner" }
func (inner) Describe() string { return "inner" }
func (inner) GetName() string  { return "inner" }

type outer struct {
	inner
	Label int
}

func (outer) Title() string    { return "outer" }
func (outer) Describe() string { return "outer" }
func (outer) Name() string     { return "outer" }

type deepest struct {
	outer
}

func TestClosestDeclaringTypeWins(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t, nil, shutter.All{})
	set, err := f.Resolve(reflect.TypeFor[outer]())
	require.NoError(t, err)

	t.Run("shallow function beats deeper getter", func(t *testing.T) {
		fn, ok := set.Function("title")
		require.True(t, ok)
		assert.Equal(t, 0, fn.Depth())
		_, ok = set.Field("title")
		assert.False(t, ok)
	})

	t.Run("shallow field shadows deeper field", func(t *testing.T) {
		label, ok := set.Field("label")
		require.True(t, ok)
		assert.Equal(t, reflect.TypeFor[int](), label.ValueType())
		assert.Equal(t, 0, label.Depth())
	})

	t.Run("outer method shadows promoted method", func(t *testing.T) {
		fn, ok := set.Function("name")
		require.True(t, ok)
		assert.Equal(t, 0, fn.Depth())
		_, ok = set.Field("name")
		assert.False(t, ok)
	})

	t.Run("depth grows with embedding", func(t *testing.T) {
		deep, err := f.Resolve(reflect.TypeFor[deepest]())
		require.NoError(t, err)
		fn, ok := deep.Function("title")
		require.True(t, ok)
		assert.Equal(t, 1, fn.Depth())
		label, ok := deep.Field("label")
		require.True(t, ok)
		assert.Equal(t, 1, label.Depth())
	})
}

type plate struct {
	Tag string
}

func (plate) GetTag() string   { return "plate" }
func (plate) Describe() string { return "plate" }

type stamped struct {
	plate
	Tag string
}

func (s stamped) GetTag() string  { return s.Tag }
func (*stamped) Describe() string { return "stamped" }
func (*stamped) SetTag(string)    {}

type restamped struct {
	stamped
}

func TestOverridingMethodStaysOnHost(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t, nil, shutter.All{})

	t.Run("getter overriding a promoted getter", func(t *testing.T) {
		set, err := f.Resolve(reflect.TypeFor[stamped]())
		require.NoError(t, err)

		tag, ok := set.Field("tag")
		require.True(t, ok)
		assert.Equal(t, 0, tag.Depth())
		getter, ok := tag.Getter()
		require.True(t, ok, "the host's own GetTag must not be dropped")
		assert.Equal(t, "GetTag", getter.Name)
		_, ok = tag.Setter()
		assert.True(t, ok)
		sf, ok := tag.StructField()
		require.True(t, ok)
		assert.Equal(t, []int{1}, sf.Index)
	})

	t.Run("pointer method overriding a value method", func(t *testing.T) {
		set, err := f.Resolve(reflect.TypeFor[stamped]())
		require.NoError(t, err)
		fn, ok := set.Function("describe")
		require.True(t, ok)
		assert.Equal(t, 0, fn.Depth())
	})

	t.Run("one level down", func(t *testing.T) {
		set, err := f.Resolve(reflect.TypeFor[restamped]())
		require.NoError(t, err)
		tag, ok := set.Field("tag")
		require.True(t, ok)
		assert.Equal(t, 1, tag.Depth())
		_, ok = tag.Getter()
		assert.True(t, ok)
		fn, ok := set.Function("describe")
		require.True(t, ok)
		assert.Equal(t, 1, fn.Depth())
	})

	t.Run("promoted method keeps its depth", func(t *testing.T) {
		set, err := f.Resolve(reflect.TypeFor[outer]())
		require.NoError(t, err)
		fn, ok := set.Function("describe")
		require.True(t, ok)
		assert.Equal(t, 0, fn.Depth(), "outer declares Describe itself")

		deep, err := f.Resolve(reflect.TypeFor[deepest]())
		require.NoError(t, err)
		fn, ok = deep.Function("describe")
		require.True(t, ok)
		assert.Equal(t, 1, fn.Depth())
	})
}

type widget struct {
	Size int
}

func (w *widget) Grow()   {}
func (w *widget) Shrink() {}

func (w *widget) ScriptAnnotations() annotation.Table {
	return annotation.Table{
		Members: map[string]annotation.Member{
			"Grow":   {Role: annotation.RoleFunction, Engines: []string{"risor"}},
			"Shrink": {Role: annotation.RoleFunction},
		},
		Constructors: []annotation.Constructor{
			{Name: "newWidget", Func: newWidget},
			{Name: "newSizedWidget", Func: newSizedWidget, Engines: []string{"starlark"}},
		},
	}
}

func newWidget() *widget { return &widget{} }

func newSizedWidget(size int) (widget, error) { return widget{Size: size}, nil }

func TestEngineRestrictedAnnotations(t *testing.T) {
	t.Parallel()

	catalog := annotation.NewCatalog()
	cache := NewCache()
	risor := NewFactory(testEngine{name: "risor", markers: catalog}, nil, WithCache(cache))
	starlark := NewFactory(testEngine{name: "starlark", markers: catalog}, nil, WithCache(cache))

	forRisor, err := risor.Resolve(reflect.TypeFor[widget]())
	require.NoError(t, err)
	forStarlark, err := starlark.Resolve(reflect.TypeFor[widget]())
	require.NoError(t, err)

	assert.Equal(t, []string{"grow", "shrink"}, forRisor.Names())
	assert.Equal(t, []string{"shrink"}, forStarlark.Names())
	assert.Len(t, forRisor.Constructors(), 1)
	assert.Len(t, forStarlark.Constructors(), 2)
	assert.Equal(t, 2, cache.Len())

	_, ok := forRisor.Function("scriptAnnotations")
	assert.False(t, ok)

	all, err := NewFactory(testEngine{name: "risor", markers: catalog}, shutter.All{}, WithCache(cache)).
		Resolve(reflect.TypeFor[widget]())
	require.NoError(t, err)
	_, ok = all.Lookup("scriptAnnotations")
	assert.False(t, ok, "the annotation hook is never a member")
}

func TestConstructorGrant(t *testing.T) {
	t.Parallel()

	catalog := annotation.NewCatalog()
	require.NoError(t, catalog.Register(reflect.TypeFor[widget](), annotation.Table{
		Constructors: []annotation.Constructor{
			{Name: "newWidget", Func: newWidget, Engines: []string{"nobody"}},
			{Name: "newSizedWidget", Func: newSizedWidget, Engines: []string{"nobody"}},
		},
	}))
	sh := shutter.Funcs{
		ID: "sized-only",
		Constructor: func(_ reflect.Type, name string, _ reflect.Type) bool {
			return name == "newSizedWidget"
		},
	}

	set, err := newTestFactory(t, catalog, sh).Resolve(reflect.TypeFor[widget]())
	require.NoError(t, err)
	ctors := set.Constructors()
	require.Len(t, ctors, 1)
	assert.Equal(t, "newSizedWidget", ctors[0].GoName())
	assert.Empty(t, set.Names())
}

type late struct{}

func (late) Ping() string { return "pong" }

func TestCaching(t *testing.T) {
	t.Parallel()

	t.Run("non comparable shutters are not cached", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := metrics.New(reg)
		cache := NewCache()
		sh := shutter.Funcs{Method: func(reflect.Type, reflect.Method) bool { return true }}
		f := newTestFactory(t, nil, sh, WithCache(cache), WithMetrics(m))

		a, err := f.Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		b, err := f.Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		assert.NotSame(t, a, b)
		assert.True(t, a.Equal(b))
		assert.Equal(t, 0, cache.Len())
		expected := `
# HELP hostbridge_resolver_lookups_total Member set cache lookups by result
# TYPE hostbridge_resolver_lookups_total counter
hostbridge_resolver_lookups_total{result="uncached"} 2
`
		require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
			"hostbridge_resolver_lookups_total"))
	})

	t.Run("identified and comparable shutters are cached", func(t *testing.T) {
		cache := NewCache()
		byID := shutter.Funcs{ID: "all-methods", Method: func(reflect.Type, reflect.Method) bool { return true }}
		a, err := newTestFactory(t, nil, byID, WithCache(cache)).Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		b, err := newTestFactory(t, nil, byID, WithCache(cache)).Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		assert.NotSame(t, a, b, "each test factory brings its own catalog")

		catalog := annotation.NewCatalog()
		c, err := NewFactory(testEngine{"e", catalog}, byID, WithCache(cache)).Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		d, err := NewFactory(testEngine{"e", catalog}, byID, WithCache(cache)).Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		assert.Same(t, c, d)

		list, err := shutter.NewAllowList()
		require.NoError(t, err)
		e, err := NewFactory(testEngine{"e", catalog}, list, WithCache(cache)).Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		assert.True(t, e.Empty())
		other, err := shutter.NewAllowList()
		require.NoError(t, err)
		g, err := NewFactory(testEngine{"e", catalog}, other, WithCache(cache)).Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		assert.NotSame(t, e, g, "every allow-list is its own identity")
	})

	t.Run("registering a table retires sets resolved earlier", func(t *testing.T) {
		cache := NewCache()
		catalog := annotation.NewCatalog()
		f := NewFactory(testEngine{"e", catalog}, nil, WithCache(cache))

		before, err := f.Resolve(reflect.TypeFor[late]())
		require.NoError(t, err)
		assert.Empty(t, before.Names())

		id := catalog.Identity()
		require.NoError(t, catalog.Register(reflect.TypeFor[late](), annotation.Table{
			Members: map[string]annotation.Member{"Ping": {Role: annotation.RoleFunction}},
		}))
		assert.NotEqual(t, id, catalog.Identity())

		after, err := f.Resolve(reflect.TypeFor[late]())
		require.NoError(t, err)
		assert.Equal(t, []string{"ping"}, after.Names())

		again, err := f.Resolve(reflect.TypeFor[late]())
		require.NoError(t, err)
		assert.Same(t, after, again)
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		cache := NewCache()
		_, err := newTestFactory(t, nil, nil, WithCache(cache)).Resolve(reflect.TypeFor[priority]())
		require.NoError(t, err)
		assert.Equal(t, 1, cache.Len())
		cache.Clear()
		assert.Equal(t, 0, cache.Len())
	})
}

func TestConcurrentResolve(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t, pointCatalog(t), nil)
	const workers = 16
	results := make([]*members.Set, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			set, err := f.Resolve(reflect.TypeFor[Point]())
			assert.NoError(t, err)
			results[i] = set
		}()
	}
	wg.Wait()

	for _, set := range results[1:] {
		assert.True(t, results[0].Equal(set))
	}
	again, err := f.Resolve(reflect.TypeFor[Point]())
	require.NoError(t, err)
	assert.True(t, results[0].Equal(again))
}

type Celsius float64

func (c Celsius) GetKelvin() float64 { return float64(c) + 273.15 }

type Named interface {
	GetName() string
	Rename(string)
}

func TestNonStructTypes(t *testing.T) {
	t.Parallel()

	f := newTestFactory(t, nil, shutter.All{})

	set, err := f.Resolve(reflect.TypeFor[Celsius]())
	require.NoError(t, err)
	assert.Equal(t, []string{"kelvin"}, set.Names())

	set, err = f.Resolve(reflect.TypeFor[Named]())
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "rename"}, set.Names())

	_, err = f.Resolve(nil)
	require.ErrorIs(t, err, ErrNilType)

	set, err = f.ResolveValue(Celsius(1))
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
}

func TestDecapitalize(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":     "",
		"X":    "x",
		"Name": "name",
		"URL":  "URL",
		"URLs": "URLs",
		"Id":   "id",
		"x":    "x",
	}
	for in, want := range tests {
		assert.Equal(t, want, Decapitalize(in), in)
	}
}

func TestNewFactoryDefaults(t *testing.T) {
	t.Parallel()

	f := NewFactory(nil, nil)
	assert.Empty(t, f.Engine())
	assert.IsType(t, shutter.Default{}, f.Shutter())

	noMarkers := NewFactory(testEngine{name: "bare"}, nil, WithCache(NewCache()))
	set, err := noMarkers.Resolve(reflect.TypeFor[widget]())
	require.NoError(t, err)
	assert.True(t, set.Empty())
}
