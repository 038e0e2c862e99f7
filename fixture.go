package fixtures

import (
	"errors"
	"fmt"
)

// Factory computes a fixture's value from its resolved options and the
// partially built namespace of the current test.
type Factory func(opts Options, fx *Fixtures) (Result, error)

// Result is the tagged outcome of a factory: a plain value, or a value paired
// with the release action that ends its scope.
type Result struct {
	Value   any
	Release func() error
}

// Plain wraps a value that needs no teardown.
func Plain(v any) Result {
	return Result{Value: v}
}

// Scoped wraps a value whose validity ends when release runs.
func Scoped(v any, release func() error) Result {
	return Result{Value: v, Release: release}
}

// IsScoped reports whether the result carries a release action.
func (r Result) IsScoped() bool {
	return r.Release != nil
}

// FixtureSpec is the static declaration of a fixture.
type FixtureSpec struct {
	Name         string
	Dependencies []string
	Factory      Factory
	// OptionsKey selects the test-declared options for this fixture. Empty
	// means Name.
	OptionsKey string
	// Defaults are merged under the test-declared options.
	Defaults Options

	tags map[any]any
}

// Definition is anything that can be registered: a *FixtureSpec or a typed
// *Fixture.
type Definition interface {
	FixtureSpec() *FixtureSpec
}

func (s *FixtureSpec) FixtureSpec() *FixtureSpec {
	return s
}

// Key returns the options key used to look up test-declared options.
func (s *FixtureSpec) Key() string {
	if s.OptionsKey != "" {
		return s.OptionsKey
	}
	return s.Name
}

func (s *FixtureSpec) GetTag(tag any) (any, bool) {
	val, ok := s.tags[tag]
	return val, ok
}

func (s *FixtureSpec) SetTag(tag any, val any) {
	if s.tags == nil {
		s.tags = make(map[any]any)
	}
	s.tags[tag] = val
}

func (s *FixtureSpec) validate() error {
	if s.Name == "" {
		return errors.New("fixture name must not be empty")
	}
	if s.Factory == nil {
		return fmt.Errorf("fixture %q has no factory", s.Name)
	}
	for _, dep := range s.Dependencies {
		if dep == s.Name {
			return &CyclicDependencyError{Path: []string{s.Name, s.Name}}
		}
	}
	return nil
}

// SpecOption is a modifier for fixture specs
type SpecOption func(*FixtureSpec)

// DependsOn appends dependencies in declaration order.
func DependsOn(names ...string) SpecOption {
	return func(s *FixtureSpec) {
		s.Dependencies = append(s.Dependencies, names...)
	}
}

// WithOptionsKey makes the fixture read test-declared options stored under key.
func WithOptionsKey(key string) SpecOption {
	return func(s *FixtureSpec) {
		s.OptionsKey = key
	}
}

// WithDefaults sets the options every test starts from.
func WithDefaults(values map[string]any) SpecOption {
	return func(s *FixtureSpec) {
		s.Defaults = NewOptions(values)
	}
}

// WithTag returns an option that sets a tag on a fixture spec
func WithTag[T any](tag Tag[T], val T) SpecOption {
	return func(s *FixtureSpec) {
		tag.Set(s, val)
	}
}

func WithDescription(description string) SpecOption {
	return WithTag(Description(), description)
}

// NewSpec builds an untyped spec.
func NewSpec(name string, factory Factory, opts ...SpecOption) *FixtureSpec {
	spec := &FixtureSpec{
		Name:    name,
		Factory: factory,
		tags:    make(map[any]any),
	}

	for _, opt := range opts {
		opt(spec)
	}

	return spec
}

// Fixture is a typed handle on a fixture declaration.
type Fixture[T any] struct {
	spec *FixtureSpec
}

// Define declares a fixture computed by a plain function.
func Define[T any](
	name string,
	factory func(Options, *Fixtures) (T, error),
	opts ...SpecOption,
) *Fixture[T] {
	spec := NewSpec(name, func(o Options, fx *Fixtures) (Result, error) {
		v, err := factory(o, fx)
		if err != nil {
			return Result{}, err
		}
		return Plain(v), nil
	}, opts...)

	return &Fixture[T]{spec: spec}
}

// DefineScoped declares a fixture that acquires a resource and returns the
// action releasing it. A nil release is treated as a plain value.
func DefineScoped[T any](
	name string,
	factory func(Options, *Fixtures) (T, func() error, error),
	opts ...SpecOption,
) *Fixture[T] {
	spec := NewSpec(name, func(o Options, fx *Fixtures) (Result, error) {
		v, release, err := factory(o, fx)
		if err != nil {
			if release != nil {
				if rerr := release(); rerr != nil {
					return Result{}, errors.Join(err, rerr)
				}
			}
			return Result{}, err
		}
		return Result{Value: v, Release: release}, nil
	}, opts...)

	return &Fixture[T]{spec: spec}
}

func (f *Fixture[T]) FixtureSpec() *FixtureSpec {
	return f.spec
}

func (f *Fixture[T]) Name() string {
	return f.spec.Name
}

// Get retrieves the value from fx, resolving it on demand.
func (f *Fixture[T]) Get(fx *Fixtures) (T, error) {
	return Value[T](fx, f.spec.Name)
}

// Peek returns the value only if it is already resolved.
func (f *Fixture[T]) Peek(fx *Fixtures) (T, bool) {
	val, ok := fx.lookup(f.spec.Name)
	if !ok {
		var zero T
		return zero, false
	}
	typed, err := SafeTypeAssertion[T](f.spec.Name, val)
	if err != nil {
		return typed, false
	}
	return typed, true
}

// IsResolved checks if the value is already present in fx
func (f *Fixture[T]) IsResolved(fx *Fixtures) bool {
	return fx.Has(f.spec.Name)
}
