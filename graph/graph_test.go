package graph

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/KOMKZ/go-yogan-boot/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexOf(order []string) map[string]int {
	idx := make(map[string]int, len(order))
	for i, name := range order {
		idx[name] = i
	}
	return idx
}

func assertTopological(t *testing.T, g *Graph, order []string) {
	t.Helper()
	require.Len(t, order, g.Len())
	idx := indexOf(order)
	for _, n := range g.Nodes() {
		for _, dep := range n.Dependencies() {
			assert.Less(t, idx[dep], idx[n.Name], "%s must come before %s", dep, n.Name)
		}
	}
}

func TestGraph_AddNode(t *testing.T) {
	g := New()
	a := g.AddNode("a")
	assert.Same(t, a, g.AddNode("a"))
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, StatusPending, a.Status())
	assert.False(t, a.Initialized())
	assert.False(t, a.Failed())
}

func TestGraph_AddDependency_LazyNodes(t *testing.T) {
	g := New()
	g.AddDependency("cache", "redis")
	g.AddDependency("cache", "config")
	g.AddDependency("cache", "redis")

	cache, ok := g.Node("cache")
	require.True(t, ok)
	assert.Equal(t, []string{"redis", "config"}, cache.Dependencies())

	_, ok = g.Node("redis")
	assert.True(t, ok, "dependency node is created lazily")
	assert.Equal(t, []string{"cache"}, g.Dependents("redis"))
}

func TestGraph_InitializationOrder(t *testing.T) {
	t.Run("chain with shortcut", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddDependency("b", "a")
		g.AddDependency("c", "b")
		g.AddDependency("c", "a")

		order, err := g.InitializationOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("dependency declared before owner", func(t *testing.T) {
		g := New()
		g.AddDependency("api", "auth")
		g.AddDependency("auth", "config")

		order, err := g.InitializationOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"config", "auth", "api"}, order)
	})

	t.Run("independent roots keep insertion order", func(t *testing.T) {
		g := New()
		g.AddNode("telemetry")
		g.AddNode("config")
		g.AddNode("scheduler")

		order, err := g.InitializationOrder()
		require.NoError(t, err)
		assert.Equal(t, []string{"telemetry", "config", "scheduler"}, order)
	})

	t.Run("empty graph", func(t *testing.T) {
		order, err := New().InitializationOrder()
		require.NoError(t, err)
		assert.Empty(t, order)
	})

	t.Run("repeatable", func(t *testing.T) {
		g := New()
		g.AddDependency("b", "a")
		first, err := g.InitializationOrder()
		require.NoError(t, err)
		second, err := g.InitializationOrder()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestGraph_InitializationOrder_RandomDAG(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		g := New()
		n := 30
		names := make([]string, n)
		for i := range names {
			names[i] = fmt.Sprintf("c%02d", i)
		}
		// edges only point to lower indices, so the graph is acyclic
		for _, i := range rng.Perm(n) {
			g.AddNode(names[i])
			for j := 0; j < i; j++ {
				if rng.Intn(4) == 0 {
					g.AddDependency(names[i], names[j])
				}
			}
		}

		order, err := g.InitializationOrder()
		require.NoError(t, err)
		assertTopological(t, g, order)
	}
}

func TestGraph_Cycle(t *testing.T) {
	g := New()
	g.AddDependency("a", "b")
	g.AddDependency("b", "c")
	g.AddDependency("c", "a")

	order, err := g.InitializationOrder()
	assert.Nil(t, order)

	var cycleErr *CycleError
	require.True(t, errors.As(err, &cycleErr))
	require.Len(t, cycleErr.Path, 4)
	assert.Equal(t, cycleErr.Path[0], cycleErr.Path[3], "path closes on its entry point")
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycleErr.Path[:3])
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.Path)

	assert.ErrorIs(t, err, errcode.ErrCycleDetected)
	assert.Equal(t, errcode.ErrCycleDetected.Code(), cycleErr.Code())
	assert.Contains(t, err.Error(), "a -> b -> c -> a")
}

func TestGraph_Cycle_BehindAcyclicPrefix(t *testing.T) {
	g := New()
	g.AddDependency("api", "auth")
	g.AddDependency("auth", "cache")
	g.AddDependency("cache", "auth")

	_, err := g.InitializationOrder()
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"auth", "cache", "auth"}, cycleErr.Path)
}

func TestGraph_SelfLoop(t *testing.T) {
	g := New()
	g.AddDependency("a", "a")

	_, err := g.InitializationOrder()
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "a"}, cycleErr.Path)
}

func TestGraph_FindCycle(t *testing.T) {
	g := New()
	g.AddDependency("x", "y")
	g.AddDependency("y", "z")
	g.AddDependency("p", "q")
	g.AddDependency("q", "p")

	assert.Nil(t, g.FindCycle("x"), "no cycle reachable from x")
	assert.Nil(t, g.FindCycle("missing"))
	assert.Equal(t, []string{"p", "q", "p"}, g.FindCycle("p"))
}

func TestNode_Status(t *testing.T) {
	n := newNode("db")
	boom := errors.New("boom")

	n.MarkFailed(boom)
	assert.True(t, n.Failed())
	assert.False(t, n.Initialized())
	assert.Equal(t, boom, n.Err())
	assert.Equal(t, "failed", n.Status().String())

	n.MarkInitialized()
	assert.True(t, n.Initialized())
	assert.False(t, n.Failed(), "initialized and failed are exclusive")
	assert.NoError(t, n.Err())
}
