package cache

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/logger"
	bootRedis "github.com/KOMKZ/go-yogan-boot/redis"
	"github.com/KOMKZ/go-yogan-boot/registry"
)

// ModulePath catalog key of this package
const ModulePath = "github.com/KOMKZ/go-yogan-boot/cache"

// Module scannable module
func Module() *registry.Module {
	return &registry.Module{
		Path: ModulePath,
		Members: []registry.Member{
			registry.InitModule(NewComponent,
				component.DependsOn(component.NameConfig, component.NameLogger, component.NameRedis),
				component.WithPriority(component.PriorityCache)),
		},
	}
}

// NewComponent builds the cache from the cache key, layered over the redis
// instance named by cache.redis_instance
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
	if err := loader.UnmarshalKey("cache", &cfg); err != nil {
		return nil, fmt.Errorf("read cache config: %w", err)
	}

	var opts []Option
	if cfg.RedisInstance != "" {
		redisManager, err := component.Lookup[*bootRedis.Manager](deps, component.NameRedis)
		if err != nil {
			return nil, err
		}
		client, err := redisManager.Universal(cfg.RedisInstance)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithStore(NewRedisStore("redis", client, cfg.KeyPrefix)))
	}
	return New(cfg, logs.GetLogger("cache"), opts...)
}
