package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Scope is the fixture context of one test invocation. It evaluates
// factories in dependency order, memoizes their values in a Fixtures
// namespace and releases scoped resources in reverse acquisition order.
//
// A Scope is not safe for concurrent use. Factories may call back into the
// namespace from the goroutine running them.
type Scope struct {
	id         string
	ctx        context.Context
	registry   *Registry
	options    OptionSet
	logger     *slog.Logger
	extensions []Extension

	ns        *Fixtures
	stack     teardownStack
	resolving []string
	closed    bool
}

// ScopeOption is a modifier for scopes
type ScopeOption func(*Scope)

// WithOptions adds test-declared options; later calls win per key.
func WithOptions(set OptionSet) ScopeOption {
	return func(s *Scope) {
		s.options = s.options.Merge(set)
	}
}

// WithLogger sets the logger used for lifecycle events. The default discards.
func WithLogger(logger *slog.Logger) ScopeOption {
	return func(s *Scope) {
		s.logger = logger
	}
}

// WithExtension returns an option that registers an extension to a scope
func WithExtension(ext Extension) ScopeOption {
	return func(s *Scope) {
		s.extensions = append(s.extensions, ext)
	}
}

// WithID overrides the generated scope identifier.
func WithID(id string) ScopeOption {
	return func(s *Scope) {
		s.id = id
	}
}

// WithContext sets the context handed to extensions.
func WithContext(ctx context.Context) ScopeOption {
	return func(s *Scope) {
		s.ctx = ctx
	}
}

// NewScope creates the fixture context for one test. It panics if an
// extension fails to initialise.
func NewScope(registry *Registry, opts ...ScopeOption) *Scope {
	s := &Scope{
		id:       uuid.NewString(),
		ctx:      context.Background(),
		registry: registry,
		options:  OptionSet{},
		logger:   slog.New(slog.DiscardHandler),
	}
	s.ns = newFixtures(s)

	for _, opt := range opts {
		opt(s)
	}

	sort.SliceStable(s.extensions, func(i, j int) bool {
		return s.extensions[i].Order() < s.extensions[j].Order()
	})
	for _, ext := range s.extensions {
		if err := ext.Init(s); err != nil {
			panic(fmt.Errorf("initialising extension %s: %w", ext.Name(), err))
		}
	}

	return s
}

func (s *Scope) ID() string {
	return s.id
}

func (s *Scope) Registry() *Registry {
	return s.registry
}

// Fixtures returns the namespace of this scope.
func (s *Scope) Fixtures() *Fixtures {
	return s.ns
}

// Options returns the test-declared options.
func (s *Scope) Options() OptionSet {
	return s.options
}

// Acquired lists the fixtures holding an unreleased resource, in acquisition
// order.
func (s *Scope) Acquired() []string {
	return s.stack.names()
}

// Closed reports whether Exit has run.
func (s *Scope) Closed() bool {
	return s.closed
}

// Enter resolves names and their dependencies. The evaluation order is
// computed first, so unknown names and cycles fail before any factory runs.
// If a factory fails, every resource acquired so far is released in reverse
// order before the error is returned, and the scope is closed.
func (s *Scope) Enter(names ...string) (*Fixtures, error) {
	if s.closed {
		return nil, ErrScopeClosed
	}

	if err := s.resolve(names...); err != nil {
		if exitErr := s.Exit(); exitErr != nil {
			return nil, errors.Join(err, exitErr)
		}
		return nil, err
	}
	return s.ns, nil
}

// Exit releases every pending resource, most recent first. A failing or
// panicking release does not stop the remaining ones. Release failures are
// returned together as a *TeardownAggregateError, followed by any extension
// Dispose failures. Exit is idempotent.
func (s *Scope) Exit() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for res := s.stack.pop(); res != nil; res = s.stack.pop() {
		if err := s.release(res); err != nil {
			errs = append(errs, err)
		}
	}

	for _, ext := range s.extensions {
		if err := s.dispose(ext); err != nil {
			errs = append(errs, fmt.Errorf("disposing extension %s: %w", ext.Name(), err))
		}
	}

	s.logger.Debug("fixture scope closed", "scope", s.id, "failures", len(errs))

	if len(errs) > 0 {
		return &TeardownAggregateError{Errors: errs}
	}
	return nil
}

// resolve evaluates names and any unresolved dependencies.
func (s *Scope) resolve(names ...string) error {
	if s.closed {
		return ErrScopeClosed
	}

	order, err := s.registry.resolveOrderSkipping(s.ns.Has, s.resolving, names...)
	if err != nil {
		s.notifyError(err, &Operation{Kind: OpResolve, Fixture: lo.FirstOr(names, ""), Scope: s})
		return err
	}

	for _, name := range order {
		// a factory earlier in the order may have pulled this one in already
		if s.ns.Has(name) {
			continue
		}
		if err := s.acquire(name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scope) acquire(name string) error {
	if idx := lo.IndexOf(s.resolving, name); idx >= 0 {
		cycle := append(append([]string{}, s.resolving[idx:]...), name)
		err := &CyclicDependencyError{Path: cycle}
		s.notifyError(err, &Operation{Kind: OpAcquire, Fixture: name, Scope: s})
		return err
	}

	spec, err := s.registry.Lookup(name)
	if err != nil {
		return err
	}

	s.resolving = append(s.resolving, name)
	defer func() {
		s.resolving = s.resolving[:len(s.resolving)-1]
	}()

	opts := resolveOptions(spec, s.options)
	op := &Operation{Kind: OpAcquire, Fixture: name, Scope: s}
	start := time.Now()

	// the factory's own result is recorded; extensions may fail the
	// operation but cannot drop or replace what was acquired
	var result Result
	_, err = s.safeWrap(op, func() (any, error) {
		r, err := s.invoke(spec, opts)
		result = r
		return r, err
	})

	if result.IsScoped() {
		s.stack.push(&ScopedResource{
			Fixture: name,
			Value:   result.Value,
			release: result.Release,
		})
	}

	if err != nil {
		s.notifyError(err, op)
		s.logger.Debug("fixture setup failed", "scope", s.id, "fixture", name, "error", err)
		return err
	}

	s.ns.set(name, result.Value)

	s.logger.Debug("fixture acquired",
		"scope", s.id,
		"fixture", name,
		"scoped", result.IsScoped(),
		"duration", time.Since(start),
	)
	return nil
}

func (s *Scope) invoke(spec *FixtureSpec, opts Options) (result Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result, err = Result{}, newFactoryError(spec.Name, nil, recovered)
		}
	}()

	result, err = spec.Factory(opts, s.ns)
	if err != nil {
		return Result{}, newFactoryError(spec.Name, err, nil)
	}
	return result, nil
}

func (s *Scope) release(res *ScopedResource) *ReleaseError {
	op := &Operation{Kind: OpRelease, Fixture: res.Fixture, Scope: s}
	start := time.Now()

	_, err := s.safeWrap(op, func() (any, error) {
		return nil, res.Release()
	})
	if !res.released {
		// an extension did not reach the release action
		if direct := res.Release(); direct != nil {
			err = errors.Join(err, direct)
		}
	}
	if err == nil {
		s.logger.Debug("fixture released",
			"scope", s.id,
			"fixture", res.Fixture,
			"duration", time.Since(start),
		)
		return nil
	}

	var relErr *ReleaseError
	if !errors.As(err, &relErr) {
		relErr = &ReleaseError{Fixture: res.Fixture, Err: err}
	}

	for _, ext := range s.extensions {
		s.observe(ext, "OnReleaseError", func() {
			ext.OnReleaseError(relErr, s)
		})
	}
	s.logger.Warn("fixture teardown failed", "scope", s.id, "fixture", res.Fixture, "error", relErr)
	return relErr
}

// wrap chains the extensions around fn; the first extension is outermost.
func (s *Scope) wrap(op *Operation, fn func() (any, error)) (any, error) {
	next := fn
	for i := len(s.extensions) - 1; i >= 0; i-- {
		ext := s.extensions[i]
		currentNext := next
		next = func() (any, error) {
			return ext.Wrap(s.ctx, currentNext, op)
		}
	}
	return next()
}

// safeWrap is wrap with a panic anywhere in the chain turned into the
// operation's error type.
func (s *Scope) safeWrap(op *Operation, fn func() (any, error)) (out any, err error) {
	defer func() {
		recovered := recover()
		if recovered == nil {
			return
		}
		out = nil
		if op.Kind == OpRelease {
			err = &ReleaseError{Fixture: op.Fixture, Panic: recovered, StackTrace: debug.Stack()}
			return
		}
		err = newFactoryError(op.Fixture, nil, recovered)
	}()

	return s.wrap(op, fn)
}

func (s *Scope) dispose(ext Extension) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return ext.Dispose(s)
}

func (s *Scope) notifyError(err error, op *Operation) {
	for _, ext := range s.extensions {
		s.observe(ext, "OnError", func() {
			ext.OnError(err, op)
		})
	}
}

// observe runs a notification hook; a panic is logged and does not reach
// the operation being reported.
func (s *Scope) observe(ext Extension, hook string, fn func()) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("extension hook panicked",
				"scope", s.id,
				"extension", ext.Name(),
				"hook", hook,
				"panic", recovered,
			)
		}
	}()
	fn()
}
