package fixtures

import "context"

// Extension provides hooks into the fixture lifecycle
type Extension interface {
	// Name returns the extension's name
	Name() string

	// Order determines extension execution order (lower = earlier)
	Order() int

	// Init is called when the scope is created
	Init(scope *Scope) error

	// Wrap intercepts operations (acquire, release). For an acquire the
	// scope keeps the factory's result whatever Wrap returns; a scoped
	// resource is released even if Wrap fails after next succeeded
	Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error)

	// OnError observes setup failures, including resolution errors raised
	// before any factory runs
	OnError(err error, op *Operation)

	// OnReleaseError observes each failed release action. The failure is
	// still reported by Exit.
	OnReleaseError(err *ReleaseError, scope *Scope)

	// Dispose is called once Exit has released every resource
	Dispose(scope *Scope) error
}

// BaseExtension provides default implementations for Extension methods
type BaseExtension struct {
	name string
}

// NewBaseExtension creates a new base extension with the given name
func NewBaseExtension(name string) BaseExtension {
	return BaseExtension{name: name}
}

func (e *BaseExtension) Name() string {
	return e.name
}

func (e *BaseExtension) Order() int {
	return 100
}

func (e *BaseExtension) Init(scope *Scope) error {
	return nil
}

func (e *BaseExtension) Wrap(ctx context.Context, next func() (any, error), op *Operation) (any, error) {
	return next()
}

func (e *BaseExtension) OnError(err error, op *Operation) {
}

func (e *BaseExtension) OnReleaseError(err *ReleaseError, scope *Scope) {
}

func (e *BaseExtension) Dispose(scope *Scope) error {
	return nil
}

// Operation describes what operation is happening
type Operation struct {
	Kind    OperationKind
	Fixture string
	Scope   *Scope
}

// OperationKind represents the type of operation
type OperationKind string

const (
	// OpResolve indicates dependency order resolution
	OpResolve OperationKind = "resolve"
	// OpAcquire indicates a factory invocation
	OpAcquire OperationKind = "acquire"
	// OpRelease indicates a release action
	OpRelease OperationKind = "release"
)
