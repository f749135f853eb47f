package server

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-boot/auth"
	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/health"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/registry"
)

// ModulePath catalog key of this package
const ModulePath = "github.com/KOMKZ/go-yogan-boot/server"

// Module scannable module
func Module() *registry.Module {
	return &registry.Module{
		Path: ModulePath,
		Members: []registry.Member{
			registry.InitModule(NewComponent,
				component.DependsOn(component.NameConfig, component.NameLogger, component.NameAuth),
				component.WithPriority(component.PriorityAPI)),
		},
	}
}

// healthSources components probed by /healthz when present; cache only degrades
var healthSources = []struct {
	name     string
	optional bool
}{
	{component.NameDatabase, false},
	{component.NameRedis, false},
	{component.NameCache, true},
}

// NewComponent builds the server from the server key and registers health
// checks for the backends initialized before it
func NewComponent(_ context.Context, deps component.Resolver) (any, error) {
	loader, err := component.Lookup[component.ConfigLoader](deps, component.NameConfig)
	if err != nil {
		return nil, err
	}
	logs, err := component.Lookup[*logger.Manager](deps, component.NameLogger)
	if err != nil {
		return nil, err
	}
	svc, err := component.Lookup[*auth.Service](deps, component.NameAuth)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := loader.UnmarshalKey("server", &cfg); err != nil {
		return nil, fmt.Errorf("read server config: %w", err)
	}

	s, err := New(cfg, logs.GetLogger("server"), svc)
	if err != nil {
		return nil, err
	}
	s.Health().SetMetadata("service", loader.GetString("app.name"))

	for _, src := range healthSources {
		instance, ok := deps.Lookup(src.name)
		if !ok {
			continue
		}
		checker, ok := instance.(health.Checker)
		if !ok {
			continue
		}
		if src.optional {
			s.Health().RegisterOptional(src.name, checker)
		} else {
			s.Health().Register(src.name, checker)
		}
	}
	return s, nil
}
