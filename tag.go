package fixtures

// Tag is a type-safe key for fixture metadata
type Tag[T any] struct {
	key string
}

// NewTag creates a new tag with the given key
func NewTag[T any](key string) Tag[T] {
	return Tag[T]{key: key}
}

// Key returns the tag's key (for debugging)
func (t Tag[T]) Key() string {
	return t.key
}

// Get retrieves the tag value from a fixture spec
func (t Tag[T]) Get(spec *FixtureSpec) (T, bool) {
	val, ok := spec.GetTag(t)
	if !ok {
		var zero T
		return zero, false
	}
	return val.(T), true
}

// GetOrDefault retrieves the tag value or returns a default
func (t Tag[T]) GetOrDefault(spec *FixtureSpec, defaultVal T) T {
	if val, ok := t.Get(spec); ok {
		return val
	}
	return defaultVal
}

// Set stores the tag value on a fixture spec
func (t Tag[T]) Set(spec *FixtureSpec, val T) {
	spec.SetTag(t, val)
}

var descriptionTag = NewTag[string]("fixture.description")

// Description is the tag holding a fixture's human readable description.
func Description() Tag[string] {
	return descriptionTag
}
