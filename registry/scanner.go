package registry

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/errcode"
	"go.uber.org/zap"
)

// InitModuleMember member name registered under the module's own name
const InitModuleMember = "InitModule"

// Member one exported entry of a scannable module
type Member struct {
	Name    string
	Factory component.Factory
	// Tag marks the member as a component; untagged members are ignored
	// unless named InitModule
	Tag *component.Tag
}

// Tagged declares a component member
//
//	registry.Tagged("cache", NewComponent,
//	    component.DependsOn(component.NameConfig, component.NameRedis),
//	    component.WithPriority(component.PriorityCache))
func Tagged(name string, factory component.Factory, opts ...component.Option) Member {
	return Member{Name: name, Factory: factory, Tag: component.NewTag(opts...)}
}

// InitModule declares the module entry point, registered under the module name
func InitModule(factory component.Factory, opts ...component.Option) Member {
	return Tagged(InitModuleMember, factory, opts...)
}

// Module a scannable package
type Module struct {
	// Path import path, e.g. "github.com/KOMKZ/go-yogan-boot/database"
	Path    string
	Members []Member
}

// Name last element of the path
func (m *Module) Name() string {
	return path.Base(m.Path)
}

type scannedComponent struct {
	name    string
	factory component.Factory
	tag     component.Tag
}

// components tagged members and the InitModule entry, in member order
func (m *Module) components() []scannedComponent {
	var out []scannedComponent
	for _, member := range m.Members {
		isEntry := member.Name == InitModuleMember
		if member.Tag == nil && !isEntry {
			continue
		}

		tag := component.Tag{Priority: component.PriorityService}
		if member.Tag != nil {
			tag = *member.Tag
		}

		name := member.Name
		switch {
		case tag.Name != "":
			name = tag.Name
		case isEntry:
			name = m.Name()
		}
		out = append(out, scannedComponent{name: name, factory: member.Factory, tag: tag})
	}
	return out
}

// ModuleLoader returns a module's members
type ModuleLoader func(ctx context.Context) (*Module, error)

// Static loader of a fixed module
func Static(m *Module) ModuleLoader {
	return func(context.Context) (*Module, error) {
		return m, nil
	}
}

// Catalog import path -> loader; the explicit list of scannable packages
type Catalog map[string]ModuleLoader

// Add registers a loader under path
func (c Catalog) Add(path string, loader ModuleLoader) Catalog {
	c[path] = loader
	return c
}

// Paths sorted paths
func (c Catalog) Paths() []string {
	paths := make([]string, 0, len(c))
	for p := range c {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Resolve matches a path exactly or by module name ("database")
func (c Catalog) Resolve(p string) (ModuleLoader, bool) {
	if loader, ok := c[p]; ok {
		return loader, true
	}
	for _, full := range c.Paths() {
		if path.Base(full) == p {
			return c[full], true
		}
	}
	return nil, false
}

// RegisterModules loads each module and registers its components. An unknown
// module, a loader error or a rejected registration is logged and skipped
// unless failFast.
func (i *Initializer) RegisterModules(ctx context.Context, catalog Catalog, paths []string, failFast bool) error {
	for _, p := range paths {
		mod, err := loadModule(ctx, catalog, p)
		if err != nil {
			if failFast {
				i.log.ErrorCtx(ctx, "module load failed", zap.String("module", p), zap.Error(err))
				return err
			}
			i.log.WarnCtx(ctx, "module skipped", zap.String("module", p), zap.Error(err))
			continue
		}

		var names []string
		for _, c := range mod.components() {
			opts := []component.Option{
				component.DependsOn(c.tag.Dependencies...),
				component.WithPriority(c.tag.Priority),
			}
			if err := i.RegisterComponent(c.name, c.factory, opts...); err != nil {
				if failFast {
					i.log.ErrorCtx(ctx, "module component rejected",
						zap.String("module", p), zap.String("component", c.name), zap.Error(err))
					return err
				}
				i.log.WarnCtx(ctx, "module component rejected",
					zap.String("module", p), zap.String("component", c.name), zap.Error(err))
				continue
			}
			names = append(names, c.name)
		}

		i.log.DebugCtx(ctx, "module registered", zap.String("module", p), zap.Strings("components", names))
	}
	return nil
}

// InitializeFromModules registers every module's components, then runs InitializeAll
func (i *Initializer) InitializeFromModules(ctx context.Context, catalog Catalog, paths []string, failFast bool) (map[string]any, error) {
	if err := i.RegisterModules(ctx, catalog, paths, failFast); err != nil {
		return nil, err
	}
	return i.InitializeAll(ctx, failFast)
}

func loadModule(ctx context.Context, catalog Catalog, p string) (mod *Module, err error) {
	loader, ok := catalog.Resolve(p)
	if !ok {
		return nil, errcode.ErrModuleNotFound.
			WithMsgf("module '%s' not found", p).
			WithData("module", p)
	}

	defer func() {
		if r := recover(); r != nil {
			mod = nil
			err = errcode.ErrModuleLoad.
				WithMsgf("module '%s' failed to load", p).
				WithData("module", p).
				Wrap(&PanicError{Value: r})
		}
	}()

	mod, err = loader(ctx)
	if err != nil {
		return nil, errcode.ErrModuleLoad.
			WithMsgf("module '%s' failed to load", p).
			WithData("module", p).
			Wrap(err)
	}
	if mod == nil {
		return nil, errcode.ErrModuleLoad.
			WithMsgf("module '%s' loader returned no module", p).
			WithData("module", p)
	}
	if mod.Path == "" {
		mod = &Module{Path: p, Members: mod.Members}
	}
	return mod, nil
}

// String debug form
func (m *Module) String() string {
	return fmt.Sprintf("Module{%s, %d members}", m.Path, len(m.Members))
}
