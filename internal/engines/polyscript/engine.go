package polyscript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"reflect"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/robbyt/go-polyscript/platform/constants"
	"github.com/robbyt/go-polyscript/platform/data"

	"github.com/atlanticdynamic/hostbridge/internal/annotation"
	"github.com/atlanticdynamic/hostbridge/internal/binder"
	"github.com/atlanticdynamic/hostbridge/internal/engines"
	"github.com/atlanticdynamic/hostbridge/internal/resolver"
)

var _ engines.Engine = (*Engine)(nil)

// Engine evaluates scripts of one go-polyscript family. Every Exec compiles the source and
// evaluates it with the injected globals and a view of every exposed host object.
type Engine struct {
	id           string
	factory      *Factory
	mimeType     string
	timeout      time.Duration
	globalObject string
	resolver     *resolver.Factory
	logger       *slog.Logger

	mu      sync.RWMutex
	globals map[string]any
	objects map[string]*binder.Object
}

func newEngine(f *Factory, settings engines.Settings) (*Engine, error) {
	timeout, err := settings.Timeout()
	if err != nil {
		return nil, err
	}
	globalObject, _ := settings.String(engines.SettingGlobalObject)

	e := &Engine{
		id:           uuid.Must(uuid.NewV6()).String(),
		factory:      f,
		mimeType:     f.mimeTypes[0],
		timeout:      timeout,
		globalObject: globalObject,
		globals:      make(map[string]any),
		objects:      make(map[string]*binder.Object),
	}
	e.logger = f.logger.With("engine_id", e.id)
	e.resolver = resolver.NewFactory(e, f.shutter, f.resolverOps...)
	return e, nil
}

// ID returns the engine instance id.
func (e *Engine) ID() string { return e.id }

// Name returns the engine family name.
func (e *Engine) Name() string { return e.factory.name }

// MIMEType returns the primary MIME type of the engine family.
func (e *Engine) MIMEType() string { return e.mimeType }

// Markers returns the annotation fallback used for exposed host objects.
func (e *Engine) Markers() annotation.Markers { return e.factory.markers }

// Timeout returns the evaluation timeout.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// Resolver returns the resolver bound to this engine.
func (e *Engine) Resolver() *resolver.Factory { return e.resolver }

// Inject defines a plain global. Names are shared with exposed objects and are write-once.
func (e *Engine) Inject(name string, value any) error {
	if name == "" {
		return engines.ErrEmptyGlobalName
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.defined(name) {
		return fmt.Errorf("%w: %s", engines.ErrDuplicateGlobal, name)
	}
	e.globals[name] = value
	return nil
}

// Expose resolves obj and binds its members under name.
func (e *Engine) Expose(name string, obj any) error {
	if name == "" {
		return engines.ErrEmptyGlobalName
	}
	obj = binder.Unwrap(obj)
	if obj == nil {
		return fmt.Errorf("%w: %s", ErrNilHostObject, name)
	}

	hostObj, err := e.bind(obj)
	if err != nil {
		return fmt.Errorf("failed to expose %s: %w", name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.defined(name) {
		return fmt.Errorf("%w: %s", engines.ErrDuplicateGlobal, name)
	}
	e.objects[name] = hostObj
	e.logger.Debug("Exposed host object", "name", name, "members", hostObj.Members().Names())
	return nil
}

func (e *Engine) bind(obj any) (*binder.Object, error) {
	set, err := e.resolver.ResolveValue(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve: %w", err)
	}
	hostObj, err := binder.NewObject(obj, set)
	if err != nil {
		return nil, fmt.Errorf("failed to bind: %w", err)
	}
	return hostObj, nil
}

// Object returns the host object exposed under name.
func (e *Engine) Object(name string) (*binder.Object, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	o, ok := e.objects[name]
	return o, ok
}

func (e *Engine) defined(name string) bool {
	_, g := e.globals[name]
	_, o := e.objects[name]
	return g || o
}

// scriptData assembles the evaluation data. Host objects contribute their enumerable,
// readable fields as read right now.
func (e *Engine) scriptData() (map[string]any, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := maps.Clone(e.globals)
	for name, o := range e.objects {
		v, err := e.view(o)
		if err != nil {
			return nil, fmt.Errorf("failed to read host object %s: %w", name, err)
		}
		out[name] = v
	}
	if e.globalObject != "" {
		return map[string]any{e.globalObject: out}, nil
	}
	return out, nil
}

// view is what scripts see of o. Starlark converts plain data only and gets the snapshot.
// Risor calls Go funcs, so its view adds a closure per function and per constructor; a
// constructor is keyed by its decapitalized Go name unless a member already uses that name.
func (e *Engine) view(o *binder.Object) (map[string]any, error) {
	out, err := o.Snapshot()
	if err != nil {
		return nil, err
	}
	if !e.factory.callables {
		return out, nil
	}

	set := o.Members()
	for _, fn := range set.Functions() {
		name := fn.Name()
		out[name] = func(args ...any) (any, error) {
			v, err := o.Call(name, args...)
			if err != nil {
				return nil, err
			}
			return e.result(v)
		}
	}
	for _, c := range set.Constructors() {
		name := resolver.Decapitalize(c.GoName())
		if _, taken := set.Lookup(name); taken {
			continue
		}
		h, err := binder.Bind(nil, c)
		if err != nil {
			return nil, err
		}
		out[name] = func(args ...any) (any, error) {
			v, err := h.Construct(args...)
			if err != nil {
				return nil, err
			}
			return e.result(v)
		}
	}
	return out, nil
}

// result converts a value returned to Risor. Host structs come back as views of their resolved
// members; Risor would otherwise reach every exported field and method.
func (e *Engine) result(v any) (any, error) {
	if vals, ok := v.([]any); ok {
		out := make([]any, len(vals))
		for i, val := range vals {
			r, err := e.result(val)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}

	v = binder.Unwrap(v)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct || rv.Type() == timeType {
		return v, nil
	}
	o, err := e.bind(v)
	if err != nil {
		return nil, err
	}
	return e.view(o)
}

var timeType = reflect.TypeFor[time.Time]()

// Exec compiles and evaluates source.
func (e *Engine) Exec(ctx context.Context, source string) (any, error) {
	return e.run(ctx, source, "")
}

// ExecFile compiles and evaluates the script at location, a path, file:// or http(s) URL.
func (e *Engine) ExecFile(ctx context.Context, location string) (any, error) {
	return e.run(ctx, "", location)
}

func (e *Engine) run(ctx context.Context, code, location string) (any, error) {
	ldr, err := newLoader(code, location)
	if err != nil {
		return nil, err
	}
	evaluator, err := e.factory.compile(e.logger.Handler(), ldr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompilationFailed, e.Name(), err)
	}

	scriptData, err := e.scriptData()
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	contextProvider := data.NewContextProvider(constants.EvalData)
	enrichedCtx, err := contextProvider.AddDataToContext(timeoutCtx, scriptData)
	if err != nil {
		return nil, fmt.Errorf("failed to add script data: %w", err)
	}

	start := time.Now()
	result, err := evaluator.Eval(enrichedCtx)
	duration := time.Since(start)
	if err != nil {
		e.logger.Warn("Script execution failed", "error", err, "duration", duration)
		if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", ErrEvalTimeout, e.timeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrEvalFailed, err)
	}

	e.logger.Debug("Script executed successfully", "duration", duration)
	return result.Interface(), nil
}
