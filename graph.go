package fixtures

import (
	"github.com/samber/lo"
)

// dependencyWalk is one depth-first expansion over a registry.
type dependencyWalk struct {
	registry *Registry
	visiting map[string]bool
	done     map[string]bool
	path     []string
	order    []string
}

// ResolveOrder expands names with all their transitive dependencies and
// returns them so that every fixture comes after its dependencies. Requested
// names are expanded in the given order and dependencies in declaration
// order, so the result is stable across runs. No factory is invoked.
func (r *Registry) ResolveOrder(names ...string) ([]string, error) {
	return r.resolveOrderSkipping(nil, nil, names...)
}

// resolveOrderSkipping is ResolveOrder treating the names in resolved as
// already done; they are neither expanded nor included in the result.
// Pending names are still being acquired and start out on the walk's path,
// so reaching one of them again is reported as a cycle through it.
func (r *Registry) resolveOrderSkipping(resolved func(string) bool, pending []string, names ...string) ([]string, error) {
	w := &dependencyWalk{
		registry: r,
		visiting: lo.SliceToMap(pending, func(name string) (string, bool) { return name, true }),
		done:     make(map[string]bool),
		path:     append([]string{}, pending...),
	}

	for _, name := range lo.Uniq(names) {
		if err := w.visit(name, "", resolved); err != nil {
			return nil, err
		}
	}
	return w.order, nil
}

func (w *dependencyWalk) visit(name, requiredBy string, resolved func(string) bool) error {
	if w.done[name] {
		return nil
	}
	if w.visiting[name] {
		start := lo.IndexOf(w.path, name)
		cycle := append(append([]string{}, w.path[start:]...), name)
		return &CyclicDependencyError{Path: cycle}
	}

	spec, err := w.registry.Lookup(name)
	if err != nil {
		return &UnknownFixtureError{Name: name, RequiredBy: requiredBy}
	}
	if resolved != nil && resolved(name) {
		w.done[name] = true
		return nil
	}

	w.visiting[name] = true
	w.path = append(w.path, name)

	for _, dep := range spec.Dependencies {
		if err := w.visit(dep, name, resolved); err != nil {
			return err
		}
	}

	w.path = w.path[:len(w.path)-1]
	delete(w.visiting, name)
	w.done[name] = true
	w.order = append(w.order, name)
	return nil
}
