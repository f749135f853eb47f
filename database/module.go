package database

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/registry"
)

// ModulePath catalog key of this package
const ModulePath = "github.com/KOMKZ/go-yogan-boot/database"

// Module scannable module
func Module() *registry.Module {
	return &registry.Module{
		Path: ModulePath,
		Members: []registry.Member{
			registry.InitModule(NewComponent,
				component.DependsOn(component.NameConfig, component.NameLogger),
				component.WithPriority(component.PriorityDB)),
		},
	}
}

// NewComponent opens the connections under database.connections
func NewComponent(ctx context.Context, deps component.Resolver) (any, error) {
	loader, err := component.Lookup[component.ConfigLoader](deps, component.NameConfig)
	if err != nil {
		return nil, err
	}
	logs, err := component.Lookup[*logger.Manager](deps, component.NameLogger)
	if err != nil {
		return nil, err
	}

	var configs map[string]Config
	if err := loader.UnmarshalKey("database.connections", &configs); err != nil {
		return nil, fmt.Errorf("read database config: %w", err)
	}
	return NewManager(ctx, configs, logs.GetLogger("database"))
}
