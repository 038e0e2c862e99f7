package fixtures

import (
	"fmt"
	"sync"

	"github.com/m1gwings/treedrawer/tree"
)

// Registry maps fixture names to their declarations. It is populated once,
// before tests start, and only read afterwards; independent registries may
// coexist in one process.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]*FixtureSpec
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		specs: make(map[string]*FixtureSpec),
	}
}

// Register adds definitions in order. It stops at the first invalid or
// duplicate definition; the ones before it stay registered.
func (r *Registry) Register(defs ...Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range defs {
		spec := def.FixtureSpec()
		if err := spec.validate(); err != nil {
			return err
		}
		if _, exists := r.specs[spec.Name]; exists {
			return &DuplicateNameError{Name: spec.Name}
		}
		r.specs[spec.Name] = spec
		r.order = append(r.order, spec.Name)
	}
	return nil
}

// MustRegister is Register for package initialisation; it panics on error.
func (r *Registry) MustRegister(defs ...Definition) {
	if err := r.Register(defs...); err != nil {
		panic(err)
	}
}

// Lookup returns the declaration registered under name.
func (r *Registry) Lookup(name string) (*FixtureSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[name]
	if !ok {
		return nil, &UnknownFixtureError{Name: name}
	}
	return spec, nil
}

// Names returns the registered names in declaration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Validate checks the whole registry for unknown references and cycles so a
// suite can fail before its first test.
func (r *Registry) Validate() error {
	_, err := r.ResolveOrder(r.Names()...)
	return err
}

// DependencyTree draws name and its transitive dependencies. Shared
// dependencies are drawn under every dependent.
func (r *Registry) DependencyTree(name string) (string, error) {
	if _, err := r.ResolveOrder(name); err != nil {
		return "", err
	}

	root := tree.NewTree(tree.NodeString(name))
	if err := r.addDependencyNodes(root, name); err != nil {
		return "", err
	}
	return root.String(), nil
}

func (r *Registry) addDependencyNodes(node *tree.Tree, name string) error {
	spec, err := r.Lookup(name)
	if err != nil {
		return err
	}
	for _, dep := range spec.Dependencies {
		child := node.AddChild(tree.NodeString(dep))
		if err := r.addDependencyNodes(child, dep); err != nil {
			return fmt.Errorf("drawing %s: %w", name, err)
		}
	}
	return nil
}
