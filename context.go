package fixtures

import (
	"runtime/debug"
)

// ScopedResource is an acquired fixture value together with its pending
// release. It is owned by the scope that acquired it.
type ScopedResource struct {
	Fixture string
	Value   any

	release  func() error
	released bool
}

// Release runs the release action once; later calls are no-ops. Panics are
// recovered into a *ReleaseError.
func (r *ScopedResource) Release() (err error) {
	if r.released {
		return nil
	}
	r.released = true

	defer func() {
		if recovered := recover(); recovered != nil {
			err = &ReleaseError{
				Fixture:    r.Fixture,
				Panic:      recovered,
				StackTrace: debug.Stack(),
			}
		}
	}()

	if releaseErr := r.release(); releaseErr != nil {
		return &ReleaseError{Fixture: r.Fixture, Err: releaseErr}
	}
	return nil
}

// teardownStack holds scoped resources in acquisition order.
type teardownStack struct {
	entries []*ScopedResource
}

func (t *teardownStack) push(r *ScopedResource) {
	t.entries = append(t.entries, r)
}

// pop removes the most recently acquired resource, or returns nil.
func (t *teardownStack) pop() *ScopedResource {
	if len(t.entries) == 0 {
		return nil
	}
	last := t.entries[len(t.entries)-1]
	t.entries = t.entries[:len(t.entries)-1]
	return last
}

func (t *teardownStack) names() []string {
	names := make([]string, len(t.entries))
	for i, r := range t.entries {
		names[i] = r.Fixture
	}
	return names
}
