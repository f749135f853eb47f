// Package application wires the configuration, the logger and the scannable
// modules of a catalog into one process lifecycle:
//
//	app, err := application.New(loader)
//	if err != nil {
//	    return err
//	}
//	return app.Run(ctx)
package application

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/config"
	"github.com/KOMKZ/go-yogan-boot/di"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/registry"
	"go.uber.org/zap"
)

// AppState lifecycle state
type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

// String state name
func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// ErrAlreadyStarted Start called outside StateInit
var ErrAlreadyStarted = errors.New("application already started")

// App one bootstrap run plus its shutdown
type App struct {
	loader  *config.Loader
	cfg     AppConfig
	catalog registry.Catalog
	boot    *registry.Initializer
	bridge  *di.Bridge
	signals []os.Signal
	exit    func(code int)

	mu        sync.RWMutex
	state     AppState
	instances map[string]any

	ready    chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	stopErr  error
}

// Option configures an App
type Option func(*App)

// WithCatalog replaces DefaultCatalog
func WithCatalog(c registry.Catalog) Option {
	return func(a *App) {
		a.catalog = c
	}
}

// WithInitializer uses an existing initializer (tests, extra components)
func WithInitializer(i *registry.Initializer) Option {
	return func(a *App) {
		a.boot = i
	}
}

// WithSignals replaces SIGINT and SIGTERM
func WithSignals(sigs ...os.Signal) Option {
	return func(a *App) {
		a.signals = sigs
	}
}

// WithExit replaces os.Exit for the forced exit on a second signal
func WithExit(exit func(code int)) Option {
	return func(a *App) {
		a.exit = exit
	}
}

// New reads app and bootstrap from loader and registers the config and logger
// components
func New(loader *config.Loader, opts ...Option) (*App, error) {
	if loader == nil {
		return nil, errors.New("application requires a config loader")
	}
	cfg, err := loadAppConfig(loader)
	if err != nil {
		return nil, err
	}

	a := &App{
		loader:  loader,
		cfg:     cfg,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		exit:    os.Exit,
		bridge:  di.NewBridge(nil),
		state:   StateInit,
		ready:   make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.catalog == nil {
		a.catalog = DefaultCatalog()
	}
	if a.boot == nil {
		a.boot = registry.NewInitializer(registry.WithLogger(bootstrapLogger{}))
	}

	if err := a.boot.RegisterComponent(component.NameConfig,
		func(context.Context, component.Resolver) (any, error) { return a.loader, nil },
		component.WithPriority(component.PriorityConfig)); err != nil {
		return nil, err
	}
	if err := a.boot.RegisterComponent(component.NameLogger, newLoggerComponent,
		component.DependsOn(component.NameConfig),
		component.WithPriority(component.PriorityCore)); err != nil {
		return nil, err
	}
	return a, nil
}

// Config effective application config
func (a *App) Config() AppConfig {
	return a.cfg
}

// Initializer underlying initializer
func (a *App) Initializer() *registry.Initializer {
	return a.boot
}

// Injector root scope holding every live component after Start
func (a *App) Injector() *di.Bridge {
	return a.bridge
}

// Ready is closed once Start succeeds
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Done is closed once Stop completes
func (a *App) Done() <-chan struct{} {
	return a.stopped
}

// Instances live components of the last successful Start
func (a *App) Instances() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.instances
}

// State current lifecycle state
func (a *App) State() AppState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// modulePaths configured modules or the whole catalog
func (a *App) modulePaths() []string {
	if len(a.cfg.Bootstrap.Modules) > 0 {
		return a.cfg.Bootstrap.Modules
	}
	return a.catalog.Paths()
}

// Plan registers the configured modules and returns the order without building
func (a *App) Plan(ctx context.Context) ([]registry.PlanEntry, error) {
	if err := a.boot.RegisterModules(ctx, a.catalog, a.modulePaths(), a.cfg.Bootstrap.FailFast); err != nil {
		return nil, err
	}
	return a.boot.Registry().Plan()
}

// Start registers the configured modules and initializes everything within
// bootstrap.startup_timeout. On failure the components built so far are shut
// down before the error is returned.
func (a *App) Start(ctx context.Context) (map[string]any, error) {
	if !a.transition(StateInit, StateSetup) {
		return nil, fmt.Errorf("%w (state %s)", ErrAlreadyStarted, a.State())
	}
	log := logger.GetLogger("application")
	failFast := a.cfg.Bootstrap.FailFast

	if err := a.boot.RegisterModules(ctx, a.catalog, a.modulePaths(), failFast); err != nil {
		a.abort(ctx, err)
		return nil, err
	}

	instances, err := a.initialize(ctx)
	if err != nil {
		a.abort(ctx, err)
		return nil, err
	}

	a.bridge.Publish(instances)
	a.mu.Lock()
	a.instances = instances
	a.mu.Unlock()
	a.setState(StateRunning)
	close(a.ready)

	fields := []zap.Field{
		zap.String("app", a.cfg.App.Name),
		zap.String("version", a.cfg.App.Version),
		zap.Strings("components", a.boot.Initialized()),
	}
	if rep := a.boot.Report(); rep != nil && rep.Degraded() {
		log.WarnCtx(ctx, "application started in degraded state", append(fields,
			zap.Strings("failed", rep.FailedNames()),
			zap.Strings("skipped", rep.SkippedNames()))...)
	} else {
		log.InfoCtx(ctx, "application started", fields...)
	}
	return instances, nil
}

// initialize bounds the run with the startup timeout. A run that times out
// keeps going in the background until abort's Shutdown stops and waits for it.
func (a *App) initialize(ctx context.Context) (map[string]any, error) {
	timeout := a.cfg.Bootstrap.StartupTimeout
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	failFast := a.cfg.Bootstrap.FailFast
	if a.cfg.Bootstrap.Async {
		instances, err := a.boot.InitializeAllAsync(ctx, failFast).Wait(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("startup exceeded %s: %w", timeout, err)
		}
		return instances, err
	}

	type result struct {
		instances map[string]any
		err       error
	}
	done := make(chan result, 1)
	go func() {
		instances, err := a.boot.InitializeAll(ctx, failFast)
		done <- result{instances, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("startup exceeded %s: %w", timeout, r.err)
		}
		return r.instances, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("startup exceeded %s: %w", timeout, ctx.Err())
	}
}

func (a *App) abort(ctx context.Context, cause error) {
	logger.GetLogger("application").ErrorCtx(ctx, "application startup failed", zap.Error(cause))
	if err := a.Stop(context.WithoutCancel(ctx)); err != nil {
		logger.GetLogger("application").ErrorCtx(ctx, "cleanup after failed startup", zap.Error(err))
	}
}

// Stop runs the shutdown hooks within bootstrap.shutdown_timeout and flushes
// the loggers. Only the first call does anything.
func (a *App) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.setState(StateStopping)
		log := logger.GetLogger("application")

		ctx, cancel := context.WithTimeout(ctx, a.cfg.Bootstrap.ShutdownTimeout)
		defer cancel()

		a.stopErr = a.boot.Shutdown(ctx)
		if a.stopErr != nil {
			log.ErrorCtx(ctx, "application stopped with errors", zap.Error(a.stopErr))
		} else {
			log.InfoCtx(ctx, "application stopped", zap.String("app", a.cfg.App.Name))
		}

		a.setState(StateStopped)
		close(a.stopped)
		logger.Global().CloseAll()
	})
	return a.stopErr
}

// Run starts the application and blocks until ctx ends or a signal arrives,
// then stops it. A second signal during shutdown exits the process with code 1.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := a.signalContext(ctx)
	defer cancel()

	if _, err := a.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return a.Stop(context.WithoutCancel(ctx))
}

// signalContext is cancelled by the first signal; a second one before Stop
// completes forces exit
func (a *App) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	quit := make(chan os.Signal, 2)
	signal.Notify(quit, a.signals...)

	go func() {
		defer signal.Stop(quit)
		log := logger.GetLogger("application")

		select {
		case sig := <-quit:
			log.InfoCtx(ctx, "shutdown signal received, press again to force exit",
				zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}

		select {
		case sig := <-quit:
			log.WarnCtx(context.Background(), "second signal received, forcing exit",
				zap.String("signal", sig.String()))
			a.exit(1)
		case <-a.stopped:
		}
	}()
	return ctx, cancel
}

func (a *App) transition(from, to AppState) bool {
	a.mu.Lock()
	if a.state != from {
		a.mu.Unlock()
		return false
	}
	a.state = to
	a.mu.Unlock()

	logger.GetLogger("application").Debug("state changed",
		zap.String("from", from.String()), zap.String("to", to.String()))
	return true
}

func (a *App) setState(to AppState) {
	a.mu.Lock()
	from := a.state
	a.state = to
	a.mu.Unlock()

	logger.GetLogger("application").Debug("state changed",
		zap.String("from", from.String()), zap.String("to", to.String()))
}
