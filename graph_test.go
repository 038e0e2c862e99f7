package fixtures

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diamondRegistry(t *testing.T) *Registry {
	return newTestRegistry(t,
		NewSpec("base", noop),
		NewSpec("left", noop, DependsOn("base")),
		NewSpec("right", noop, DependsOn("base")),
		NewSpec("top", noop, DependsOn("left", "right")),
	)
}

// validTopologicalOrder checks that order is exactly the dependency closure
// of requested, each name once, with every dependency before its dependent.
func validTopologicalOrder(t *testing.T, reg *Registry, requested, order []string) {
	t.Helper()

	position := make(map[string]int, len(order))
	for i, name := range order {
		_, seen := position[name]
		require.False(t, seen, "%s appears twice in %v", name, order)
		position[name] = i
	}

	closure := map[string]bool{}
	var expand func(string)
	expand = func(name string) {
		if closure[name] {
			return
		}
		closure[name] = true
		spec, err := reg.Lookup(name)
		require.NoError(t, err)
		for _, dep := range spec.Dependencies {
			expand(dep)
		}
	}
	for _, name := range requested {
		expand(name)
	}
	require.Len(t, order, len(closure))

	for name := range closure {
		i, ok := position[name]
		require.True(t, ok, "%s missing from %v", name, order)
		spec, _ := reg.Lookup(name)
		for _, dep := range spec.Dependencies {
			assert.Less(t, position[dep], i, "%s must come before %s in %v", dep, name, order)
		}
	}
}

func TestResolveOrder_DependenciesFirst(t *testing.T) {
	t.Parallel()

	reg := diamondRegistry(t)

	order, err := reg.ResolveOrder("top")

	require.NoError(t, err)
	assert.Equal(t, []string{"base", "left", "right", "top"}, order)
	validTopologicalOrder(t, reg, []string{"top"}, order)
}

func TestResolveOrder_FollowsRequestOrder(t *testing.T) {
	t.Parallel()

	reg := diamondRegistry(t)

	order, err := reg.ResolveOrder("right", "left")

	require.NoError(t, err)
	assert.Equal(t, []string{"base", "right", "left"}, order)
}

func TestResolveOrder_RepeatedNames(t *testing.T) {
	t.Parallel()

	reg := diamondRegistry(t)

	order, err := reg.ResolveOrder("left", "base", "left")

	require.NoError(t, err)
	assert.Equal(t, []string{"base", "left"}, order)
}

func TestResolveOrder_Empty(t *testing.T) {
	t.Parallel()

	order, err := diamondRegistry(t).ResolveOrder()

	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestResolveOrder_Deterministic(t *testing.T) {
	t.Parallel()

	reg := diamondRegistry(t)
	first, err := reg.ResolveOrder("top", "base")
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := reg.ResolveOrder("top", "base")
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestResolveOrder_Cycles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		specs    []Definition
		request  string
		wantPath []string
	}{
		{
			name: "two fixtures",
			specs: []Definition{
				NewSpec("a", noop, DependsOn("b")),
				NewSpec("b", noop, DependsOn("a")),
			},
			request:  "a",
			wantPath: []string{"a", "b", "a"},
		},
		{
			name: "three fixtures",
			specs: []Definition{
				NewSpec("a", noop, DependsOn("b")),
				NewSpec("b", noop, DependsOn("c")),
				NewSpec("c", noop, DependsOn("a")),
			},
			request:  "a",
			wantPath: []string{"a", "b", "c", "a"},
		},
		{
			name: "below the requested fixture",
			specs: []Definition{
				NewSpec("root", noop, DependsOn("a")),
				NewSpec("a", noop, DependsOn("b")),
				NewSpec("b", noop, DependsOn("a")),
			},
			request:  "root",
			wantPath: []string{"a", "b", "a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newTestRegistry(t, tt.specs...)

			order, err := reg.ResolveOrder(tt.request)

			assert.Nil(t, order)
			require.ErrorIs(t, err, ErrCyclicDependency)
			var cycle *CyclicDependencyError
			require.ErrorAs(t, err, &cycle)
			assert.Equal(t, tt.wantPath, cycle.Path)
		})
	}
}

func TestResolveOrder_Unknown(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t,
		NewSpec("a", noop),
		NewSpec("b", noop, DependsOn("ghost")),
	)

	t.Run("requested", func(t *testing.T) {
		_, err := reg.ResolveOrder("a", "nonexistent")

		var unknown *UnknownFixtureError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "nonexistent", unknown.Name)
		assert.Empty(t, unknown.RequiredBy)
	})

	t.Run("dependency", func(t *testing.T) {
		_, err := reg.ResolveOrder("b")

		var unknown *UnknownFixtureError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "ghost", unknown.Name)
		assert.Equal(t, "b", unknown.RequiredBy)
		assert.Contains(t, err.Error(), `required by "b"`)
	})
}

func TestResolveOrder_RandomGraphs(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 100; round++ {
		size := 1 + rng.Intn(12)
		reg := NewRegistry()
		for i := 0; i < size; i++ {
			var deps []string
			for j := 0; j < i; j++ {
				if rng.Intn(3) == 0 {
					deps = append(deps, fmt.Sprintf("f%d", j))
				}
			}
			reg.MustRegister(NewSpec(fmt.Sprintf("f%d", i), noop, DependsOn(deps...)))
		}

		var requested []string
		for i := 0; i < size; i++ {
			if rng.Intn(2) == 0 {
				requested = append(requested, fmt.Sprintf("f%d", i))
			}
		}

		order, err := reg.ResolveOrder(requested...)
		require.NoError(t, err, "round %d", round)
		validTopologicalOrder(t, reg, requested, order)
	}
}
