package fixtures

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// ErrUnknownFixture matches any *UnknownFixtureError.
	ErrUnknownFixture = errors.New("unknown fixture")
	// ErrDuplicateName matches any *DuplicateNameError.
	ErrDuplicateName = errors.New("duplicate fixture name")
	// ErrCyclicDependency matches any *CyclicDependencyError.
	ErrCyclicDependency = errors.New("cyclic fixture dependency")
	// ErrTeardown matches any *TeardownAggregateError.
	ErrTeardown = errors.New("fixture teardown failed")
	// ErrTypeMismatch matches any *TypeMismatchError.
	ErrTypeMismatch = errors.New("fixture type mismatch")
	// ErrScopeClosed is returned when a scope is used after Exit.
	ErrScopeClosed = errors.New("fixture scope is closed")
)

// UnknownFixtureError reports a reference to a name that is not registered.
// RequiredBy is empty when the name was requested directly.
type UnknownFixtureError struct {
	Name       string
	RequiredBy string
}

func (e *UnknownFixtureError) Error() string {
	if e.RequiredBy != "" {
		return fmt.Sprintf("unknown fixture %q (required by %q)", e.Name, e.RequiredBy)
	}
	return fmt.Sprintf("unknown fixture %q", e.Name)
}

func (e *UnknownFixtureError) Is(target error) bool {
	return target == ErrUnknownFixture
}

type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("fixture %q is already registered", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// CyclicDependencyError carries the offending cycle. Path starts and ends with
// the same name, e.g. [a b a].
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic fixture dependency: %s", strings.Join(e.Path, " -> "))
}

func (e *CyclicDependencyError) Is(target error) bool {
	return target == ErrCyclicDependency
}

// FactoryError wraps a failure raised by a fixture factory during acquisition.
// Panic is set when the factory panicked instead of returning an error.
type FactoryError struct {
	Fixture    string
	Cause      error
	Panic      any
	StackTrace []byte
}

func (e *FactoryError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("fixture %q panicked during setup: %v", e.Fixture, e.Panic)
	}
	return fmt.Sprintf("fixture %q setup failed: %v", e.Fixture, e.Cause)
}

func (e *FactoryError) Unwrap() error {
	return e.Cause
}

// ReleaseError is a single failed release action.
type ReleaseError struct {
	Fixture    string
	Err        error
	Panic      any
	StackTrace []byte
}

func (e *ReleaseError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("fixture %q panicked during teardown: %v", e.Fixture, e.Panic)
	}
	return fmt.Sprintf("fixture %q teardown failed: %v", e.Fixture, e.Err)
}

func (e *ReleaseError) Unwrap() error {
	return e.Err
}

// TeardownAggregateError collects the failures of one Exit: every
// *ReleaseError in the order the releases ran, then any extension Dispose
// failures.
type TeardownAggregateError struct {
	Errors []error
}

func (e *TeardownAggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d fixture teardowns failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

func (e *TeardownAggregateError) Unwrap() []error {
	return e.Errors
}

func (e *TeardownAggregateError) Is(target error) bool {
	return target == ErrTeardown
}

// TypeMismatchError is returned by typed lookups when the resolved value does
// not have the requested type.
type TypeMismatchError struct {
	Fixture string
	Want    string
	Got     string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("fixture %q: expected %s, got %s", e.Fixture, e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// SafeTypeAssertion performs safe type assertion with proper error
func SafeTypeAssertion[T any](name string, value any) (T, error) {
	var zero T
	if value == nil {
		return zero, nil
	}

	typed, ok := value.(T)
	if !ok {
		return zero, &TypeMismatchError{
			Fixture: name,
			Want:    fmt.Sprintf("%T", &zero)[1:],
			Got:     fmt.Sprintf("%T", value),
		}
	}

	return typed, nil
}

func newFactoryError(name string, cause error, recovered any) *FactoryError {
	fe := &FactoryError{
		Fixture: name,
		Cause:   cause,
		Panic:   recovered,
	}
	if recovered != nil {
		fe.StackTrace = debug.Stack()
		if fe.Cause == nil {
			fe.Cause = fmt.Errorf("panic: %v", recovered)
		}
	}
	return fe
}
