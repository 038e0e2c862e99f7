// Package fixtures provides dependency-injected test fixtures for Go.
//
// # Overview
//
// Fixtures organizes test setup around four concepts:
//
//  1. Fixtures: named setup units with explicit dependencies
//  2. Registries: the static table of fixture declarations
//  3. Scopes: the per-test context that resolves, memoizes and tears down
//  4. Options: per-test, per-fixture configuration
//
// # Declaring Fixtures
//
// Declare fixtures once and register them before tests run:
//
//	var tmpdir = fixtures.DefineScoped("tmpdir",
//	    func(_ fixtures.Options, _ *fixtures.Fixtures) (string, func() error, error) {
//	        dir, err := os.MkdirTemp("", "test-*")
//	        if err != nil {
//	            return "", nil, err
//	        }
//	        return dir, func() error { return os.RemoveAll(dir) }, nil
//	    },
//	)
//
//	var store = fixtures.Define("store",
//	    func(opts fixtures.Options, fx *fixtures.Fixtures) (*Store, error) {
//	        dir, err := tmpdir.Get(fx)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return OpenStore(dir, opts.Int("shards", 1))
//	    },
//	    fixtures.DependsOn("tmpdir"),
//	)
//
//	registry := fixtures.NewRegistry()
//	registry.MustRegister(tmpdir, store)
//
// Define wraps a plain computation; DefineScoped also returns the action that
// releases what it acquired. Untyped declarations use NewSpec with a Factory
// returning Plain or Scoped results.
//
// # Scopes
//
// A Scope evaluates fixtures for one test:
//
//	scope := fixtures.NewScope(registry,
//	    fixtures.WithOptions(fixtures.OptionSet{}.With("store", map[string]any{"shards": 4})),
//	)
//	fx, err := scope.Enter("store")
//	if err != nil {
//	    return err
//	}
//	defer scope.Exit()
//
// Enter computes the evaluation order first: dependencies come before their
// dependents, in declaration order. Unknown names and cycles are reported
// before any factory runs. Each factory runs at most once per scope.
//
// Exit releases scoped resources in reverse acquisition order. Every release
// runs even if an earlier one fails; failures come back together as a
// *TeardownAggregateError. If a factory fails during Enter, the resources
// acquired so far are released before the error is returned.
//
// # Namespace
//
// Factories and tests read values from the Fixtures namespace:
//
//	s, err := store.Get(fx)                        // typed handle
//	dir, err := fixtures.Value[string](fx, "tmpdir") // typed by name
//	v, err := fx.Get("tmpdir")                     // untyped
//
// A registered fixture that was not requested is resolved on first lookup.
//
// # Options
//
// Options are an immutable key-value record with typed getters that fall
// back to defaults. A fixture without test-declared options receives its
// declared defaults, or the empty Options:
//
//	shards := opts.Int("shards", 1)
//	timeout := opts.Duration("timeout", time.Second)
//
//	var cfg struct {
//	    Shards int `mapstructure:"shards"`
//	}
//	err := opts.Decode(&cfg)
//
// Option sets can also be loaded from YAML, TOML or JSON with LoadOptionSet.
//
// # Extensions
//
// Extensions observe and wrap every acquire and release:
//
//	type TimingExtension struct {
//	    fixtures.BaseExtension
//	}
//
//	func (e *TimingExtension) Wrap(ctx context.Context, next func() (any, error), op *fixtures.Operation) (any, error) {
//	    start := time.Now()
//	    result, err := next()
//	    log.Printf("%s %s took %v", op.Kind, op.Fixture, time.Since(start))
//	    return result, err
//	}
//
//	scope := fixtures.NewScope(registry,
//	    fixtures.WithExtension(&TimingExtension{
//	        BaseExtension: fixtures.NewBaseExtension("timing"),
//	    }),
//	)
//
// # Thread Safety
//
// A Registry is safe for concurrent reads once populated. A Scope belongs to
// one test and must not be shared between goroutines; parallel tests each
// create their own.
package fixtures
