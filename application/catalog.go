package application

import (
	"github.com/KOMKZ/go-yogan-boot/auth"
	"github.com/KOMKZ/go-yogan-boot/cache"
	"github.com/KOMKZ/go-yogan-boot/database"
	"github.com/KOMKZ/go-yogan-boot/redis"
	"github.com/KOMKZ/go-yogan-boot/registry"
	"github.com/KOMKZ/go-yogan-boot/scheduler"
	"github.com/KOMKZ/go-yogan-boot/server"
	"github.com/KOMKZ/go-yogan-boot/telemetry"
)

// DefaultCatalog every scannable package shipped with the framework
func DefaultCatalog() registry.Catalog {
	return registry.Catalog{}.
		Add(telemetry.ModulePath, registry.Static(telemetry.Module())).
		Add(database.ModulePath, registry.Static(database.Module())).
		Add(redis.ModulePath, registry.Static(redis.Module())).
		Add(cache.ModulePath, registry.Static(cache.Module())).
		Add(auth.ModulePath, registry.Static(auth.Module())).
		Add(scheduler.ModulePath, registry.Static(scheduler.Module())).
		Add(server.ModulePath, registry.Static(server.Module()))
}
