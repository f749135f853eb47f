package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() Catalog {
	return Catalog{
		"example.com/app/database": Static(&Module{
			Path: "example.com/app/database",
			Members: []Member{
				InitModule(constFactory("db"), component.WithPriority(component.PriorityDB)),
				{Name: "helper", Factory: constFactory("ignored")},
			},
		}),
		"example.com/app/users": Static(&Module{
			Path: "example.com/app/users",
			Members: []Member{
				Tagged("users", constFactory("users"), component.DependsOn("database")),
				Tagged("audit", constFactory("audit"), component.Named("user-audit"), component.DependsOn("users")),
				{Name: InitModuleMember, Factory: constFactory("users-module")},
			},
		}),
		"example.com/app/broken": func(context.Context) (*Module, error) {
			return nil, errors.New("load failed")
		},
	}
}

func TestModule_Components(t *testing.T) {
	mod := &Module{
		Path: "example.com/app/users",
		Members: []Member{
			Tagged("users", constFactory(1)),
			{Name: "notTagged", Factory: constFactory(2)},
			{Name: InitModuleMember, Factory: constFactory(3)},
		},
	}

	comps := mod.components()
	require.Len(t, comps, 2)
	assert.Equal(t, "users", comps[0].name)
	assert.Equal(t, component.PriorityService, comps[0].tag.Priority)
	assert.Equal(t, "users", comps[1].name, "InitModule registers under the module name")
	assert.Equal(t, component.PriorityService, comps[1].tag.Priority)
	assert.Equal(t, "users", mod.Name())
}

func TestInitializeFromModules(t *testing.T) {
	boot, log := newTestInitializer(t)

	instances, err := boot.InitializeFromModules(context.Background(), testCatalog(),
		[]string{"example.com/app/users", "database"}, false)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"database":   "db",
		"users":      "users",
		"user-audit": "audit",
	}, instances)

	reg, ok := boot.Registry().Get("database")
	require.True(t, ok)
	assert.Equal(t, component.PriorityDB, reg.Priority)

	// the untagged InitModule of users collides with the tagged "users" member
	assert.True(t, log.HasLogWithField("WARN", "module component rejected", "component", "users"))
	assert.Equal(t, []string{"database", "users", "user-audit"}, boot.Order())
}

func TestRegisterModules_UnknownModule(t *testing.T) {
	t.Run("skipped without fail fast", func(t *testing.T) {
		boot, log := newTestInitializer(t)
		err := boot.RegisterModules(context.Background(), testCatalog(),
			[]string{"example.com/app/missing", "example.com/app/broken", "example.com/app/database"}, false)

		require.NoError(t, err)
		assert.True(t, boot.Registry().Has("database"))
		assert.True(t, log.HasLogWithField("WARN", "module skipped", "module", "example.com/app/missing"))
		assert.True(t, log.HasLogWithField("WARN", "module skipped", "module", "example.com/app/broken"))
	})

	t.Run("error with fail fast", func(t *testing.T) {
		boot, _ := newTestInitializer(t)
		_, err := boot.InitializeFromModules(context.Background(), testCatalog(),
			[]string{"example.com/app/database", "example.com/app/missing"}, true)

		assert.ErrorIs(t, err, errcode.ErrModuleNotFound)
		assert.Empty(t, boot.Initialized())
	})

	t.Run("loader error with fail fast", func(t *testing.T) {
		boot, _ := newTestInitializer(t)
		err := boot.RegisterModules(context.Background(), testCatalog(), []string{"example.com/app/broken"}, true)

		assert.ErrorIs(t, err, errcode.ErrModuleLoad)
		assert.Contains(t, err.Error(), "load failed")
	})
}

func TestRegisterModules_LoaderPanicAndNil(t *testing.T) {
	catalog := Catalog{}.
		Add("panics", func(context.Context) (*Module, error) { panic("bad module") }).
		Add("empty", func(context.Context) (*Module, error) { return nil, nil })

	boot, _ := newTestInitializer(t)
	err := boot.RegisterModules(context.Background(), catalog, []string{"panics"}, true)
	assert.ErrorIs(t, err, errcode.ErrModuleLoad)
	var perr *PanicError
	assert.ErrorAs(t, err, &perr)

	err = boot.RegisterModules(context.Background(), catalog, []string{"empty"}, true)
	assert.ErrorIs(t, err, errcode.ErrModuleLoad)
}

func TestRegisterModules_PathDefaultsToCatalogKey(t *testing.T) {
	catalog := Catalog{"example.com/app/jobs": Static(&Module{
		Members: []Member{InitModule(constFactory("jobs"))},
	})}

	boot, _ := newTestInitializer(t)
	require.NoError(t, boot.RegisterModules(context.Background(), catalog, []string{"example.com/app/jobs"}, true))
	assert.True(t, boot.Registry().Has("jobs"))
}

func TestCatalog_Resolve(t *testing.T) {
	catalog := testCatalog()

	assert.Equal(t, []string{"example.com/app/broken", "example.com/app/database", "example.com/app/users"}, catalog.Paths())

	_, ok := catalog.Resolve("example.com/app/users")
	assert.True(t, ok)
	_, ok = catalog.Resolve("users")
	assert.True(t, ok)
	_, ok = catalog.Resolve("nope")
	assert.False(t, ok)
}
