// Package binder projects a device node's properties into a template's
// declared parameters. Binding is fail-closed: a schema violation yields an
// error and no partial parameter set.
package binder

import (
	"fmt"

	"github.com/evenl/dtgen/pkg/catalog"
	"github.com/evenl/dtgen/pkg/devicetree"
)

// MissingParameterError reports a required, default-less schema entry the
// node does not provide. Generation aborts for that node only.
type MissingParameterError struct {
	Node      string
	Template  string
	Parameter string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("binder: node %s: template %q requires parameter %q", e.Node, e.Template, e.Parameter)
}

// ParameterSet maps parameter name to its resolved value, schema defaults
// included. A set is built fresh per node and consumed immediately by the
// renderer. Optional parameters the node omits are simply not present;
// renderers treat an absent flag as false.
type ParameterSet map[string]devicetree.PropertyValue

// Flag reports whether the named boolean parameter is bound true. Absence is
// equivalent to false, never an error.
func (ps ParameterSet) Flag(name string) bool {
	v, ok := ps[name]
	return ok && v.Kind == devicetree.PropertyKindBool && v.Flag
}

// Bind resolves every entry of the template's parameter schema against the
// node's property store. For each entry: a present property must carry the
// schema's kind (TypeMismatch otherwise); an absent property takes the
// schema default when one exists, fails with MissingParameter when the entry
// is required, and is left unbound when optional. Cross-references bind as
// opaque symbols; nothing is dereferenced here.
func Bind(node *devicetree.Node, tmpl *catalog.Template) (ParameterSet, error) {
	store := devicetree.NewStore(node)
	params := make(ParameterSet, len(tmpl.Schema))

	for _, name := range tmpl.Schema.Names() {
		schema := tmpl.Schema[name]
		value := store.Get(name)

		if value.IsAbsent() {
			switch {
			case schema.Default != nil:
				params[name] = *schema.Default
			case schema.Required:
				return nil, &MissingParameterError{Node: node.Path, Template: tmpl.Name, Parameter: name}
			}
			continue
		}

		if want := schema.Kind.PropertyKind(); value.Kind != want {
			return nil, fmt.Errorf("binder: node %s: template %q: %w", node.Path, tmpl.Name,
				&devicetree.TypeMismatchError{Property: name, Want: want, Got: value.Kind})
		}
		params[name] = value
	}
	return params, nil
}
