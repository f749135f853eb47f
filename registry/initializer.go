package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/graph"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Logger is satisfied by *logger.CtxZapLogger and *logger.TestCtxLogger
type Logger interface {
	DebugCtx(ctx context.Context, msg string, fields ...zap.Field)
	InfoCtx(ctx context.Context, msg string, fields ...zap.Field)
	WarnCtx(ctx context.Context, msg string, fields ...zap.Field)
	ErrorCtx(ctx context.Context, msg string, fields ...zap.Field)
}

// Initializer builds registered components in dependency order
//
// Components built by one run stay built: a later InitializeAll returns the cached
// instances and only constructs what is new, and hooks that already ran are not
// re-run.
type Initializer struct {
	registry *Registry
	log      Logger
	tracer   trace.Tracer
	metrics  *initMetrics

	// runMu serializes initialization runs
	runMu sync.Mutex
	// running is closed when the current or last run returns
	running chan struct{}
	// closing stops an in-flight run before its next component or hook
	closing atomic.Bool

	mu            sync.RWMutex
	instances     map[string]any
	initialized   []string
	report        *Report
	initHooks     []namedHook
	initCursor    int
	asyncHooks    []namedAsyncHook
	asyncCursor   int
	shutdownHooks []namedHook

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures an Initializer
type Option func(*Initializer)

// WithRegistry uses an existing registry
func WithRegistry(r *Registry) Option {
	return func(i *Initializer) {
		i.registry = r
	}
}

// WithLogger replaces the default "bootstrap" module logger
func WithLogger(l Logger) Option {
	return func(i *Initializer) {
		i.log = l
	}
}

// WithTracerProvider records spans on tp instead of the global provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(i *Initializer) {
		i.tracer = tp.Tracer(instrumentationName)
	}
}

// WithMeterProvider records metrics on mp instead of the global provider
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(i *Initializer) {
		i.metrics = newInitMetrics(mp)
	}
}

// NewInitializer creates an initializer
func NewInitializer(opts ...Option) *Initializer {
	i := &Initializer{instances: make(map[string]any)}
	for _, opt := range opts {
		opt(i)
	}
	if i.registry == nil {
		i.registry = NewRegistry()
	}
	if i.log == nil {
		i.log = logger.GetLogger("bootstrap")
	}
	if i.tracer == nil {
		i.tracer = defaultTracer()
	}
	if i.metrics == nil {
		i.metrics = defaultMetrics()
	}
	return i
}

var (
	defaultOnce        sync.Once
	defaultInitializer *Initializer
)

// Default process-wide initializer, created on first use
func Default() *Initializer {
	defaultOnce.Do(func() {
		defaultInitializer = NewInitializer()
	})
	return defaultInitializer
}

// Registry underlying registry
func (i *Initializer) Registry() *Registry {
	return i.registry
}

// RegisterComponent registers a factory
//
//	init.RegisterComponent("cache", cache.NewComponent,
//	    component.DependsOn("config", "redis"),
//	    component.WithPriority(component.PriorityCache))
func (i *Initializer) RegisterComponent(name string, factory component.Factory, opts ...component.Option) error {
	return i.registry.Register(name, factory, opts...)
}

// MustRegisterComponent panics when registration fails (core components)
func (i *Initializer) MustRegisterComponent(name string, factory component.Factory, opts ...component.Option) {
	if err := i.RegisterComponent(name, factory, opts...); err != nil {
		panic(fmt.Sprintf("register core component '%s': %v", name, err))
	}
}

// InitializeAll builds every registered component and runs pending
// initialization hooks.
//
// A dependency cycle is always returned as an error. With failFast an unmet
// dependency, a factory error or a hook error aborts the run; otherwise the
// component is skipped or marked failed, logged, and the run continues.
func (i *Initializer) InitializeAll(ctx context.Context, failFast bool) (map[string]any, error) {
	i.runMu.Lock()
	defer i.runMu.Unlock()
	defer i.beginRun()()

	rep := newReport(uuid.NewString(), false, failFast)
	ctx, span := i.startRunSpan(ctx, rep)
	defer span.End()

	err := i.buildAll(ctx, rep)
	if err == nil {
		err = i.runInitHooks(ctx, rep)
	}
	return i.finishRun(ctx, span, rep, err)
}

// InitializeAllAsync runs the synchronous phase of InitializeAll on a background
// goroutine, then awaits pending async hooks one after another.
func (i *Initializer) InitializeAllAsync(ctx context.Context, failFast bool) *Future {
	f := newFuture()
	go func() {
		i.runMu.Lock()
		defer i.runMu.Unlock()
		defer i.beginRun()()

		rep := newReport(uuid.NewString(), true, failFast)
		runCtx, span := i.startRunSpan(ctx, rep)
		defer span.End()

		err := i.buildAll(runCtx, rep)
		if err == nil {
			err = i.runInitHooks(runCtx, rep)
		}
		if err == nil {
			err = i.runAsyncHooks(runCtx, rep)
		}
		f.complete(i.finishRun(runCtx, span, rep, err))
	}()
	return f
}

// beginRun publishes the run to Shutdown; the returned func marks it finished
func (i *Initializer) beginRun() func() {
	done := make(chan struct{})
	i.mu.Lock()
	i.running = done
	i.mu.Unlock()
	return func() { close(done) }
}

func (i *Initializer) startRunSpan(ctx context.Context, rep *Report) (context.Context, trace.Span) {
	return i.tracer.Start(ctx, "bootstrap.initialize", trace.WithAttributes(
		attribute.String("bootstrap.run_id", rep.RunID),
		attribute.Bool("bootstrap.fail_fast", rep.FailFast),
		attribute.Bool("bootstrap.async", rep.Async),
	))
}

func (i *Initializer) finishRun(ctx context.Context, span trace.Span, rep *Report, err error) (map[string]any, error) {
	rep.Elapsed = time.Since(rep.StartedAt)
	rep.Err = err

	i.mu.Lock()
	i.report = rep
	i.mu.Unlock()

	fields := []zap.Field{
		zap.String("run_id", rep.RunID),
		zap.Strings("live", rep.Live()),
		zap.Strings("failed", rep.FailedNames()),
		zap.Strings("skipped", rep.SkippedNames()),
		zap.Duration("elapsed", rep.Elapsed),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		i.log.ErrorCtx(ctx, "bootstrap aborted", append(fields, zap.Error(err))...)
		return nil, err
	}
	if rep.Degraded() {
		i.log.WarnCtx(ctx, "bootstrap completed in degraded state", fields...)
	} else {
		i.log.InfoCtx(ctx, "bootstrap completed", fields...)
	}
	return i.Instances(), nil
}

// buildAll computes the order and walks it
func (i *Initializer) buildAll(ctx context.Context, rep *Report) error {
	if i.closing.Load() {
		return ErrShuttingDown
	}
	g := i.registry.BuildGraph()
	order, err := g.InitializationOrder()
	if err != nil {
		i.log.ErrorCtx(ctx, "dependency cycle detected",
			zap.String("run_id", rep.RunID), zap.Error(err))
		return err
	}
	rep.Order = order

	for _, name := range order {
		reg, ok := i.registry.Get(name)
		if !ok {
			rep.Unregistered = append(rep.Unregistered, name)
			i.log.DebugCtx(ctx, "skipping unregistered dependency",
				zap.String("component", name),
				zap.Strings("required_by", g.Dependents(name)))
			continue
		}
		rep.Tiers[reg.Priority] = append(rep.Tiers[reg.Priority], name)
		node, _ := g.Node(name)

		if i.IsInitialized(name) {
			node.MarkInitialized()
			rep.Reused = append(rep.Reused, name)
			continue
		}

		if missing, causes := i.missingDependencies(g, reg); len(missing) > 0 {
			uerr := &UnresolvedDependencyError{Component: name, Missing: missing, Causes: causes}
			fields := []zap.Field{
				zap.String("component", name),
				zap.Strings("missing", missing),
				zap.Errors("caused_by", causes),
			}
			if rep.FailFast {
				i.log.ErrorCtx(ctx, "component has unresolved dependencies", fields...)
				return uerr
			}
			rep.Skipped[name] = missing
			i.metrics.recordComponent(ctx, name, outcomeSkipped, 0)
			i.log.WarnCtx(ctx, "component skipped: missing dependencies", fields...)
			continue
		}

		if i.closing.Load() {
			i.log.WarnCtx(ctx, "bootstrap interrupted by shutdown", zap.String("next", name))
			return ErrShuttingDown
		}
		instance, elapsed, err := i.build(ctx, reg)
		rep.Durations[name] = elapsed
		if err != nil {
			node.MarkFailed(err)
			rep.Failed[name] = err
			i.metrics.recordComponent(ctx, name, outcomeFailed, elapsed)
			fields := []zap.Field{
				zap.String("component", name),
				zap.Strings("dependents", g.Dependents(name)),
				zap.Error(err),
			}
			if rep.FailFast {
				i.log.ErrorCtx(ctx, "component initialization failed", fields...)
				return &ComponentInitializationError{Component: name, Err: err}
			}
			i.log.ErrorCtx(ctx, "component initialization failed, continuing", fields...)
			continue
		}

		i.mu.Lock()
		i.instances[name] = instance
		i.initialized = append(i.initialized, name)
		i.mu.Unlock()
		node.MarkInitialized()
		rep.Initialized = append(rep.Initialized, name)
		i.metrics.recordComponent(ctx, name, outcomeInitialized, elapsed)
		i.wireLifecycle(name, instance)

		i.log.InfoCtx(ctx, "component initialized",
			zap.String("component", name),
			zap.Stringer("priority", reg.Priority),
			zap.Duration("elapsed", elapsed))
	}
	return nil
}

// missingDependencies returns unavailable dependencies with the reason for each
func (i *Initializer) missingDependencies(g *graph.Graph, reg Registration) ([]string, []error) {
	var missing []string
	var causes []error
	for _, dep := range reg.Dependencies {
		if i.IsInitialized(dep) {
			continue
		}
		missing = append(missing, dep)

		switch node, _ := g.Node(dep); {
		case !i.registry.Has(dep):
			causes = append(causes, ErrNotRegistered)
		case node.Failed():
			causes = append(causes, node.Err())
		default:
			causes = append(causes, ErrDependencySkipped)
		}
	}
	return missing, causes
}

// build runs one factory; panics are recovered as errors
func (i *Initializer) build(ctx context.Context, reg Registration) (instance any, elapsed time.Duration, err error) {
	ctx, span := i.tracer.Start(ctx, "bootstrap.component", trace.WithAttributes(
		attribute.String("component", reg.Name),
		attribute.String("priority", reg.Priority.String()),
	))
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
		elapsed = time.Since(start)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	instance, err = reg.Factory(ctx, i)
	return instance, elapsed, err
}

func (i *Initializer) runInitHooks(ctx context.Context, rep *Report) error {
	for {
		if i.closing.Load() {
			return ErrShuttingDown
		}
		h, ok := i.nextInitHook()
		if !ok {
			return nil
		}
		if err := callHook(ctx, h.fn); err != nil {
			if herr := i.hookFailed(ctx, rep, h.name, PhaseInit, err); herr != nil {
				return herr
			}
		}
	}
}

func (i *Initializer) runAsyncHooks(ctx context.Context, rep *Report) error {
	for {
		if i.closing.Load() {
			return ErrShuttingDown
		}
		h, ok := i.nextAsyncHook()
		if !ok {
			return nil
		}
		if err := awaitHook(ctx, h.fn); err != nil {
			if herr := i.hookFailed(ctx, rep, h.name, PhaseAsync, err); herr != nil {
				return herr
			}
		}
	}
}

// hookFailed records a hook error; it returns the error to abort with under failFast
func (i *Initializer) hookFailed(ctx context.Context, rep *Report, name, phase string, err error) error {
	herr := &HookExecutionError{Hook: name, Phase: phase, Err: err}
	rep.HookErrors = append(rep.HookErrors, herr)
	i.metrics.recordHookFailure(ctx, phase)
	i.log.ErrorCtx(ctx, "initialization hook failed",
		zap.String("hook", name), zap.String("phase", phase), zap.Error(err))
	if rep.FailFast {
		return herr
	}
	return nil
}

// Shutdown runs shutdown hooks in reverse registration order. Every hook runs in
// its own failure boundary; errors and panics are logged and joined. Only the
// first call does anything.
func (i *Initializer) Shutdown(ctx context.Context) error {
	i.shutdownOnce.Do(func() {
		i.shutdownErr = i.shutdown(ctx)
	})
	return i.shutdownErr
}

func (i *Initializer) shutdown(ctx context.Context) error {
	i.closing.Store(true)
	i.mu.RLock()
	running := i.running
	i.mu.RUnlock()
	if running != nil {
		select {
		case <-running:
		case <-ctx.Done():
			i.log.WarnCtx(ctx, "shutdown proceeding while bootstrap is still running", zap.Error(ctx.Err()))
		}
	}

	i.mu.RLock()
	hooks := slices.Clone(i.shutdownHooks)
	i.mu.RUnlock()

	ctx, span := i.tracer.Start(ctx, "bootstrap.shutdown")
	defer span.End()

	var errs []error
	for idx := len(hooks) - 1; idx >= 0; idx-- {
		h := hooks[idx]
		if err := callHook(ctx, h.fn); err != nil {
			herr := &HookExecutionError{Hook: h.name, Phase: PhaseShutdown, Err: err}
			errs = append(errs, herr)
			i.metrics.recordHookFailure(ctx, PhaseShutdown)
			i.log.ErrorCtx(ctx, "shutdown hook failed", zap.String("hook", h.name), zap.Error(err))
			continue
		}
		i.log.DebugCtx(ctx, "shutdown hook completed", zap.String("hook", h.name))
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	i.log.InfoCtx(ctx, "shutdown completed", zap.Int("hooks", len(hooks)))
	return nil
}

// Lookup implements component.Resolver
func (i *Initializer) Lookup(name string) (any, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.instances[name]
	return v, ok
}

// Instance is Lookup under its diagnostic name
func (i *Initializer) Instance(name string) (any, bool) {
	return i.Lookup(name)
}

// IsInitialized reports whether name was built by any run
func (i *Initializer) IsInitialized(name string) bool {
	_, ok := i.Lookup(name)
	return ok
}

// Initialized names of built components in build order
func (i *Initializer) Initialized() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return slices.Clone(i.initialized)
}

// Instances copy of name -> instance
func (i *Initializer) Instances() map[string]any {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make(map[string]any, len(i.instances))
	for k, v := range i.instances {
		out[k] = v
	}
	return out
}

// Order initialization order of the last run
func (i *Initializer) Order() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.report == nil {
		return nil
	}
	return slices.Clone(i.report.Order)
}

// Status of a component in the last finished run (Pending when unknown)
func (i *Initializer) Status(name string) graph.Status {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.report == nil {
		return graph.StatusPending
	}
	return i.report.Status(name)
}

// Report of the last finished run, nil before the first one
func (i *Initializer) Report() *Report {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.report
}
