// Package fixturetest wires fixture scopes into Go tests: a test names the
// fixtures it needs, optionally overrides their options, and gets a namespace
// whose resources are released by t.Cleanup.
//
//	func TestPublish(t *testing.T) {
//	    fx := fixturetest.Use(t, registry,
//	        fixturetest.Given("environ", "clock"),
//	        fixturetest.Where("environ", map[string]any{"APP_MODE": "test"}),
//	    )
//	    now := fixturetest.Get[time.Time](t, fx, "clock")
//	    ...
//	}
//
// Harness settings come from FIXTURES_* environment variables, see
// internal/config.
package fixturetest

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "github.com/pumped-fn/pumped-fixtures"
	"github.com/pumped-fn/pumped-fixtures/extensions"
	"github.com/pumped-fn/pumped-fixtures/internal/config"
)

type setup struct {
	names     []string
	sources   []func() (fixtures.OptionSet, error)
	scopeOpts []fixtures.ScopeOption
}

// Option declares what a test needs.
type Option func(*setup)

// Given requests fixtures by name.
func Given(names ...string) Option {
	return func(s *setup) {
		s.names = append(s.names, names...)
	}
}

// GivenFixtures requests fixtures by definition.
func GivenFixtures(defs ...fixtures.Definition) Option {
	return func(s *setup) {
		for _, def := range defs {
			s.names = append(s.names, def.FixtureSpec().Name)
		}
	}
}

// Where overrides the options stored under key.
func Where(key string, values map[string]any) Option {
	return func(s *setup) {
		s.sources = append(s.sources, func() (fixtures.OptionSet, error) {
			return fixtures.OptionSet{key: fixtures.NewOptions(values)}, nil
		})
	}
}

// WhereOptions merges a whole option set.
func WhereOptions(set fixtures.OptionSet) Option {
	return func(s *setup) {
		s.sources = append(s.sources, func() (fixtures.OptionSet, error) {
			return set, nil
		})
	}
}

// WhereFile merges options read from a YAML, TOML or JSON file.
func WhereFile(path string) Option {
	return func(s *setup) {
		s.sources = append(s.sources, func() (fixtures.OptionSet, error) {
			return fixtures.LoadOptionSet(path)
		})
	}
}

// WithExtension adds an extension to the test's scope.
func WithExtension(ext fixtures.Extension) Option {
	return WithScopeOptions(fixtures.WithExtension(ext))
}

// WithScopeOptions passes options straight to fixtures.NewScope.
func WithScopeOptions(opts ...fixtures.ScopeOption) Option {
	return func(s *setup) {
		s.scopeOpts = append(s.scopeOpts, opts...)
	}
}

// Use creates a scope for t, enters the requested fixtures and registers
// the teardown with t.Cleanup. Setup failures stop the test; teardown
// failures are reported as test errors.
func Use(t testing.TB, reg *fixtures.Registry, opts ...Option) *fixtures.Fixtures {
	t.Helper()

	scope, names := NewScope(t, reg, opts...)
	fx, err := scope.Enter(names...)
	require.NoError(t, err, "setting up fixtures")
	return fx
}

// NewScope builds the scope Use would enter, with its teardown already
// registered, and returns it with the requested names.
func NewScope(t testing.TB, reg *fixtures.Registry, opts ...Option) (*fixtures.Scope, []string) {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err, "loading fixture config")

	s := &setup{}
	if cfg.OptionsFile != "" {
		WhereFile(cfg.OptionsFile)(s)
	}
	for _, opt := range opts {
		opt(s)
	}

	set := fixtures.OptionSet{}
	for _, source := range s.sources {
		next, err := source()
		require.NoError(t, err, "loading fixture options")
		set = set.Merge(next)
	}

	handler, err := newHandler(t, cfg)
	require.NoError(t, err, "configuring fixture logging")

	scopeOpts := []fixtures.ScopeOption{
		fixtures.WithID(fmt.Sprintf("%s#%s", t.Name(), uuid.NewString()[:8])),
		fixtures.WithOptions(set),
		fixtures.WithLogger(slog.New(handler)),
	}
	if cfg.GraphDebug {
		scopeOpts = append(scopeOpts, fixtures.WithExtension(
			extensions.NewGraphDebugExtension(extensions.NewHumanHandler(NewTBWriter(t), slog.LevelError)),
		))
	}
	if level, _ := cfg.Level(); level <= slog.LevelDebug {
		scopeOpts = append(scopeOpts, fixtures.WithExtension(extensions.NewLoggingExtension(handler)))
	}
	scopeOpts = append(scopeOpts, s.scopeOpts...)

	scope := fixtures.NewScope(reg, scopeOpts...)
	t.Cleanup(func() {
		assert.NoError(t, scope.Exit(), "tearing down fixtures")
	})

	return scope, s.names
}

// Get is the typed lookup for tests; a failure stops the test.
func Get[T any](t testing.TB, fx *fixtures.Fixtures, name string) T {
	t.Helper()

	v, err := fixtures.Value[T](fx, name)
	require.NoError(t, err, "getting fixture %q", name)
	return v
}

func newHandler(t testing.TB, cfg config.Config) (slog.Handler, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}

	w := NewTBWriter(t)
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}), nil
	case "text":
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}), nil
	default:
		return extensions.NewHumanHandler(w, level), nil
	}
}

// TBWriter forwards writes to t.Log, one call per line.
type TBWriter struct {
	t testing.TB
}

func NewTBWriter(t testing.TB) *TBWriter {
	return &TBWriter{t: t}
}

func (w *TBWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		w.t.Log(line)
	}
	return len(p), nil
}

var _ io.Writer = (*TBWriter)(nil)
