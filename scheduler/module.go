package scheduler

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/registry"
)

// ModulePath catalog key of this package
const ModulePath = "github.com/KOMKZ/go-yogan-boot/scheduler"

// Module scannable module
func Module() *registry.Module {
	return &registry.Module{
		Path: ModulePath,
		Members: []registry.Member{
			registry.InitModule(NewComponent,
				component.DependsOn(component.NameConfig, component.NameLogger),
				component.WithPriority(component.PriorityService)),
		},
	}
}

// NewComponent builds the scheduler from the scheduler key
func NewComponent(_ context.Context, deps component.Resolver) (any, error) {
	loader, err := component.Lookup[component.ConfigLoader](deps, component.NameConfig)
	if err != nil {
		return nil, err
	}
	logs, err := component.Lookup[*logger.Manager](deps, component.NameLogger)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := loader.UnmarshalKey("scheduler", &cfg); err != nil {
		return nil, fmt.Errorf("read scheduler config: %w", err)
	}
	return New(cfg, logs.GetLogger("scheduler"))
}
