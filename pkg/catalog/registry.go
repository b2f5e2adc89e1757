package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/evenl/dtgen/pkg/devicetree"
)

// NoMatchError reports that no registered template supports any of a node's
// compatible identifiers. The node is skippable; generation continues for
// the rest of the tree.
type NoMatchError struct {
	Node       string
	Compatible []string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("catalog: no template for node %s (compatible: %s)",
		e.Node, strings.Join(e.Compatible, ", "))
}

// Registry stores templates by name and indexes them by supported compatible
// identifier. It is safe for concurrent readers once populated; a run builds
// the registry once and shares it across node pipelines without locking
// concerns.
type Registry struct {
	mu           sync.RWMutex
	templates    map[string]*Template
	byCompatible map[string]*Template
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		templates:    make(map[string]*Template),
		byCompatible: make(map[string]*Template),
	}
}

// Register validates and adds a template. Duplicate template names are
// rejected; when two templates claim the same compatible identifier the
// first registration keeps it, so registration order is the catalog-side
// tie-break and must be deterministic in callers.
func (r *Registry) Register(t *Template) error {
	if t == nil {
		return fmt.Errorf("catalog: template is required")
	}
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[t.Name]; exists {
		return fmt.Errorf("catalog: template %q already registered", t.Name)
	}
	r.templates[t.Name] = t
	for _, id := range t.Compatible {
		if _, claimed := r.byCompatible[id]; !claimed {
			r.byCompatible[id] = t
		}
	}
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring
// of built-in templates.
func (r *Registry) MustRegister(t *Template) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get retrieves a template by name.
func (r *Registry) Get(name string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[name]
	if !ok {
		return nil, fmt.Errorf("catalog: template %q not found", name)
	}
	return t, nil
}

// Has reports whether a template is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.templates[name]
	return ok
}

// List returns the sorted names of all registered templates.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve selects the template for a node. The node's compatible identifiers
// are walked in the node's declared order, most specific first, and the
// first identifier any template supports wins. Node order, never catalog
// order, decides precedence: a node listing both a specific and a generic
// identifier always binds the specific template when one exists. Returns the
// template together with the identifier that matched; a node no template
// serves yields a NoMatchError.
func (r *Registry) Resolve(node *devicetree.Node) (*Template, string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range node.Compatible {
		if t, ok := r.byCompatible[id]; ok {
			return t, id, nil
		}
	}
	return nil, "", &NoMatchError{Node: node.Path, Compatible: node.Compatible}
}
