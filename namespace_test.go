package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Typed(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t,
		NewSpec("port", func(Options, *Fixtures) (Result, error) { return Plain(8080), nil }),
		NewSpec("none", func(Options, *Fixtures) (Result, error) { return Plain(nil), nil }),
	)
	scope := NewScope(reg)
	defer scope.Exit()

	fx, err := scope.Enter("port", "none")
	require.NoError(t, err)

	port, err := Value[int](fx, "port")
	require.NoError(t, err)
	assert.Equal(t, 8080, port)

	none, err := Value[*int](fx, "none")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestValue_TypeMismatch(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t,
		NewSpec("port", func(Options, *Fixtures) (Result, error) { return Plain("8080"), nil }),
	)
	scope := NewScope(reg)
	defer scope.Exit()

	fx, err := scope.Enter("port")
	require.NoError(t, err)

	_, err = Value[int](fx, "port")

	require.ErrorIs(t, err, ErrTypeMismatch)
	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "port", mismatch.Fixture)
	assert.Equal(t, "int", mismatch.Want)
	assert.Equal(t, "string", mismatch.Got)
}

func TestFixtures_MustGet(t *testing.T) {
	t.Parallel()

	scope := NewScope(newTestRegistry(t, NewSpec("a", noop)))
	defer scope.Exit()
	fx := scope.Fixtures()

	assert.NotPanics(t, func() { fx.MustGet("a") })
	assert.Panics(t, func() { fx.MustGet("missing") })
}

func TestFixtures_NamesAreCopies(t *testing.T) {
	t.Parallel()

	scope := NewScope(newTestRegistry(t, NewSpec("a", noop), NewSpec("b", noop)))
	defer scope.Exit()

	fx, err := scope.Enter("a", "b")
	require.NoError(t, err)

	names := fx.Names()
	names[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, fx.Names())
	assert.Equal(t, 2, fx.Len())
}

func TestFixtures_HasDoesNotResolve(t *testing.T) {
	t.Parallel()

	calls := 0
	scope := NewScope(newTestRegistry(t, countingSpec("a", &calls)))
	defer scope.Exit()

	assert.False(t, scope.Fixtures().Has("a"))
	assert.Zero(t, calls)
}

func TestFixtures_WriteOnce(t *testing.T) {
	t.Parallel()

	scope := NewScope(NewRegistry())
	fx := scope.Fixtures()

	fx.set("a", 1)
	fx.set("a", 2)

	v, ok := fx.lookup("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"a"}, fx.Names())
}
