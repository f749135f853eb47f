package auth

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-boot/cache"
	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/registry"
)

// ModulePath catalog key of this package
const ModulePath = "github.com/KOMKZ/go-yogan-boot/auth"

// Module scannable module
func Module() *registry.Module {
	return &registry.Module{
		Path: ModulePath,
		Members: []registry.Member{
			registry.InitModule(NewComponent,
				component.DependsOn(component.NameConfig, component.NameCache),
				component.WithPriority(component.PriorityAuth)),
		},
	}
}

// NewComponent builds the service from the auth key with revocations kept in
// the cache component
func NewComponent(_ context.Context, deps component.Resolver) (any, error) {
	loader, err := component.Lookup[component.ConfigLoader](deps, component.NameConfig)
	if err != nil {
		return nil, err
	}
	c, err := component.Lookup[*cache.Cache](deps, component.NameCache)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := loader.UnmarshalKey("auth", &cfg); err != nil {
		return nil, fmt.Errorf("read auth config: %w", err)
	}
	return NewService(cfg, NewCacheRevocations(c), logger.GetLogger("auth"))
}
