package telemetry

import (
	"context"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/config"
	"github.com/KOMKZ/go-yogan-boot/logger"
	"github.com/KOMKZ/go-yogan-boot/registry"
)

// ModulePath catalog key of this package
const ModulePath = "github.com/KOMKZ/go-yogan-boot/telemetry"

// Module scannable module: the telemetry component is built right after the
// logger so that every later component is traced
func Module() *registry.Module {
	return &registry.Module{
		Path: ModulePath,
		Members: []registry.Member{
			registry.InitModule(NewComponent,
				component.DependsOn(component.NameConfig, component.NameLogger),
				component.WithPriority(component.PriorityCore)),
		},
	}
}

// NewComponent reads the telemetry key and installs the providers
func NewComponent(ctx context.Context, deps component.Resolver) (any, error) {
	loader, err := component.Lookup[component.ConfigLoader](deps, component.NameConfig)
	if err != nil {
		return nil, err
	}
	logs, err := component.Lookup[*logger.Manager](deps, component.NameLogger)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := config.LoadSection(loader, "telemetry", &cfg); err != nil {
		return nil, err
	}

	m := NewManager(cfg, logs.GetLogger("telemetry"))
	if err := m.Install(ctx); err != nil {
		return nil, err
	}
	return m, nil
}
