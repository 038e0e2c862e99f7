package fixtures

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(Options, *Fixtures) (Result, error) {
	return Plain(nil), nil
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.Register(
		NewSpec("db", noop),
		NewSpec("cache", noop, DependsOn("db")),
	))

	spec, err := reg.Lookup("cache")
	require.NoError(t, err)
	assert.Equal(t, "cache", spec.Name)
	assert.Equal(t, []string{"db"}, spec.Dependencies)
	assert.Equal(t, []string{"db", "cache"}, reg.Names())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_LookupUnknown(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()

	_, err := reg.Lookup("nonexistent")

	require.ErrorIs(t, err, ErrUnknownFixture)
	var unknown *UnknownFixtureError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nonexistent", unknown.Name)
}

func TestRegistry_DuplicateName(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	first := NewSpec("db", noop)
	require.NoError(t, reg.Register(first))

	err := reg.Register(NewSpec("db", noop))

	require.ErrorIs(t, err, ErrDuplicateName)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "db", dup.Name)

	spec, err := reg.Lookup("db")
	require.NoError(t, err)
	assert.Same(t, first, spec, "the first declaration must stay registered")
}

func TestRegistry_RejectsInvalidSpecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spec *FixtureSpec
	}{
		{name: "empty name", spec: NewSpec("", noop)},
		{name: "nil factory", spec: NewSpec("db", nil)},
		{name: "self dependency", spec: NewSpec("db", noop, DependsOn("db"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry()
			assert.Error(t, reg.Register(tt.spec))
			assert.Zero(t, reg.Len())
		})
	}
}

func TestRegistry_SelfDependencyIsCycle(t *testing.T) {
	t.Parallel()

	err := NewRegistry().Register(NewSpec("db", noop, DependsOn("db")))

	var cycle *CyclicDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"db", "db"}, cycle.Path)
}

func TestRegistry_MustRegisterPanics(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.MustRegister(NewSpec("db", noop))

	assert.Panics(t, func() {
		reg.MustRegister(NewSpec("db", noop))
	})
}

func TestRegistry_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		reg := newTestRegistry(t,
			NewSpec("a", noop),
			NewSpec("b", noop, DependsOn("a")),
		)
		assert.NoError(t, reg.Validate())
	})

	t.Run("dangling dependency", func(t *testing.T) {
		reg := newTestRegistry(t, NewSpec("a", noop, DependsOn("ghost")))

		err := reg.Validate()

		var unknown *UnknownFixtureError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "ghost", unknown.Name)
		assert.Equal(t, "a", unknown.RequiredBy)
	})

	t.Run("cycle", func(t *testing.T) {
		reg := newTestRegistry(t,
			NewSpec("a", noop, DependsOn("b")),
			NewSpec("b", noop, DependsOn("a")),
		)
		assert.ErrorIs(t, reg.Validate(), ErrCyclicDependency)
	})
}

func TestRegistry_IndependentRegistries(t *testing.T) {
	t.Parallel()

	one := newTestRegistry(t, NewSpec("db", noop))
	two := newTestRegistry(t, NewSpec("db", noop))

	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 1, two.Len())

	_, err := two.Lookup("db")
	assert.NoError(t, err)
}

func TestRegistry_DependencyTree(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t,
		NewSpec("config", noop),
		NewSpec("db", noop, DependsOn("config")),
		NewSpec("cache", noop, DependsOn("config")),
		NewSpec("service", noop, DependsOn("db", "cache")),
	)

	drawing, err := reg.DependencyTree("service")
	require.NoError(t, err)

	for _, name := range []string{"service", "db", "cache", "config"} {
		assert.Contains(t, drawing, name)
	}

	_, err = reg.DependencyTree("missing")
	assert.True(t, errors.Is(err, ErrUnknownFixture))
}
