package fixtures

import (
	"testing"
)

// recorder collects lifecycle events in the order they happen.
type recorder struct {
	events []string
}

func (r *recorder) add(event string) {
	r.events = append(r.events, event)
}

func (r *recorder) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

// scopedSpec acquires name and records its release.
func scopedSpec(name string, rec *recorder, deps ...string) *FixtureSpec {
	return NewSpec(name, func(_ Options, _ *Fixtures) (Result, error) {
		rec.add("acquire:" + name)
		return Scoped(name+"-value", func() error {
			rec.add("release:" + name)
			return nil
		}), nil
	}, DependsOn(deps...))
}

// plainSpec records its acquisition and has no teardown.
func plainSpec(name string, rec *recorder, deps ...string) *FixtureSpec {
	return NewSpec(name, func(_ Options, _ *Fixtures) (Result, error) {
		rec.add("acquire:" + name)
		return Plain(name + "-value"), nil
	}, DependsOn(deps...))
}

// failingSpec records its invocation and returns err.
func failingSpec(name string, rec *recorder, err error, deps ...string) *FixtureSpec {
	return NewSpec(name, func(_ Options, _ *Fixtures) (Result, error) {
		rec.add("acquire:" + name)
		return Result{}, err
	}, DependsOn(deps...))
}

// releaseFailingSpec acquires normally but its release returns err.
func releaseFailingSpec(name string, rec *recorder, err error, deps ...string) *FixtureSpec {
	return NewSpec(name, func(_ Options, _ *Fixtures) (Result, error) {
		rec.add("acquire:" + name)
		return Scoped(name+"-value", func() error {
			rec.add("release:" + name)
			return err
		}), nil
	}, DependsOn(deps...))
}

func newTestRegistry(t *testing.T, defs ...Definition) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register(defs...); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
