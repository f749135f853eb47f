package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KOMKZ/go-yogan-boot/component"
	"github.com/KOMKZ/go-yogan-boot/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
app:
  name: plan-test
bootstrap:
  modules: [database, redis, cache]
`), 0o644))

	out, err := execute(t, "plan", "--config", dir)
	require.NoError(t, err)

	for _, want := range []string{"[CONFIG]", "[CORE]", "[DB]", "[CACHE]", "database", "redis", "cache"} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "server")
	assert.Less(t, strings.Index(out, "[CORE]"), strings.Index(out, "[CACHE]"))

	out, err = execute(t, "plan", "--config", dir, "--set", "bootstrap.modules=server,auth,cache,redis")
	require.NoError(t, err)
	assert.Contains(t, out, "[API]")
	assert.NotContains(t, out, "database")
}

func TestPlanCommand_Errors(t *testing.T) {
	_, err := execute(t, "plan", "--config", t.TempDir(), "--set", "novalue")
	assert.ErrorContains(t, err, "want key=value")

	_, err = execute(t, "plan", "--config", t.TempDir(), "--set", "bootstrap.modules=nope")
	assert.Error(t, err)
}

func TestPrintPlan(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printPlan(&buf, []registry.PlanEntry{
		{Name: "config", Priority: component.PriorityConfig, Registered: true},
		{Name: "metrics"},
		{Name: "api", Priority: component.PriorityAPI, Dependencies: []string{"config", "metrics"}, Registered: true},
	}))

	out := buf.String()
	assert.Contains(t, out, "[CONFIG]")
	assert.Contains(t, out, "[UNREGISTERED]")
	assert.Contains(t, out, "config, metrics")
	assert.NotContains(t, out, "[DB]")
	assert.Less(t, strings.Index(out, "[API]"), strings.Index(out, "[UNREGISTERED]"))
}
