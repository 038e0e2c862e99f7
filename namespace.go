package fixtures

import "fmt"

// Fixtures is the namespace a test and its factories read resolved values
// from. Values are set once by the owning Scope and never replaced.
type Fixtures struct {
	scope  *Scope
	values map[string]any
	order  []string
}

func newFixtures(scope *Scope) *Fixtures {
	return &Fixtures{
		scope:  scope,
		values: make(map[string]any),
	}
}

// Get returns the value of name. A registered fixture that is not resolved
// yet is resolved on demand, together with its unresolved dependencies; any
// resources it acquires are released when the scope exits.
func (fx *Fixtures) Get(name string) (any, error) {
	if v, ok := fx.values[name]; ok {
		return v, nil
	}
	if err := fx.scope.resolve(name); err != nil {
		return nil, err
	}
	return fx.values[name], nil
}

// MustGet is Get for callers that treat a lookup failure as a bug.
func (fx *Fixtures) MustGet(name string) any {
	v, err := fx.Get(name)
	if err != nil {
		panic(fmt.Sprintf("fixtures: %v", err))
	}
	return v
}

// Has reports whether name is already resolved. It never triggers
// resolution.
func (fx *Fixtures) Has(name string) bool {
	_, ok := fx.values[name]
	return ok
}

// Names returns the resolved names in resolution order.
func (fx *Fixtures) Names() []string {
	names := make([]string, len(fx.order))
	copy(names, fx.order)
	return names
}

func (fx *Fixtures) Len() int {
	return len(fx.order)
}

// Scope returns the scope owning this namespace.
func (fx *Fixtures) Scope() *Scope {
	return fx.scope
}

func (fx *Fixtures) lookup(name string) (any, bool) {
	v, ok := fx.values[name]
	return v, ok
}

func (fx *Fixtures) set(name string, value any) {
	if _, exists := fx.values[name]; exists {
		return
	}
	fx.values[name] = value
	fx.order = append(fx.order, name)
}

// Value is the typed form of Fixtures.Get.
func Value[T any](fx *Fixtures, name string) (T, error) {
	v, err := fx.Get(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return SafeTypeAssertion[T](name, v)
}
