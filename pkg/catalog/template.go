// Package catalog holds the driver template catalog: the template model, the
// body parser that turns template text into a structural form at load time,
// and the registry that resolves a device node's compatible identifiers to a
// template.
package catalog

import (
	"fmt"
	"sort"

	"github.com/evenl/dtgen/pkg/devicetree"
)

// ParamKind enumerates the value kinds a template parameter can declare.
// They mirror the devicetree property kinds the binder projects from.
type ParamKind string

const (
	ParamKindInt        ParamKind = "int"
	ParamKindIntList    ParamKind = "int-list"
	ParamKindString     ParamKind = "string"
	ParamKindStringList ParamKind = "string-list"
	ParamKindBool       ParamKind = "bool"
	ParamKindRef        ParamKind = "ref"
)

// PropertyKind translates the parameter kind into the property kind the
// binder checks node values against.
func (k ParamKind) PropertyKind() devicetree.PropertyKind {
	switch k {
	case ParamKindInt:
		return devicetree.PropertyKindInt
	case ParamKindIntList:
		return devicetree.PropertyKindIntList
	case ParamKindString:
		return devicetree.PropertyKindString
	case ParamKindStringList:
		return devicetree.PropertyKindStringList
	case ParamKindBool:
		return devicetree.PropertyKindBool
	case ParamKindRef:
		return devicetree.PropertyKindRef
	default:
		return devicetree.PropertyKindAbsent
	}
}

// Format hints how integer parameters render into generated text.
type Format string

const (
	FormatDefault Format = ""
	FormatDec     Format = "dec"
	FormatHex     Format = "hex"
)

// Param is one entry of a template's parameter schema.
type Param struct {
	// Kind fixes the property kind bound values must carry.
	Kind ParamKind

	// Required makes binding fail when the node omits the property and no
	// default exists.
	Required bool

	// Default, when non-nil, substitutes for an absent node property.
	Default *devicetree.PropertyValue

	// Format hints textual rendering of integer values.
	Format Format
}

// Schema maps parameter name to its declaration.
type Schema map[string]Param

// Names returns the schema's parameter names in sorted order so iteration is
// deterministic.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template is one catalog entry: the compatible identifiers it serves, the
// parameter schema the binder fills, and the parsed header/source bodies the
// renderer walks.
type Template struct {
	Name       string
	Compatible []string
	Schema     Schema

	// Header is the parsed body for the generated header file.
	Header *Body

	// Source is the parsed body for the generated source file. Nil for
	// header-only scaffolds.
	Source *Body
}

// Supports reports whether the template serves the given compatible
// identifier.
func (t *Template) Supports(id string) bool {
	for _, c := range t.Compatible {
		if c == id {
			return true
		}
	}
	return false
}

// Validate checks the cross-references between schema and bodies that the
// renderer later relies on: every substitution names a schema parameter,
// every conditional guard is a declared bool parameter, and every variant
// branch names a compatible the template declares.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("catalog: template name is required")
	}
	if len(t.Compatible) == 0 {
		return fmt.Errorf("catalog: template %q declares no compatible identifiers", t.Name)
	}
	if t.Header == nil {
		return fmt.Errorf("catalog: template %q has no header body", t.Name)
	}
	if err := t.validateBody(t.Header); err != nil {
		return err
	}
	if t.Source != nil {
		if err := t.validateBody(t.Source); err != nil {
			return err
		}
	}
	return nil
}

func (t *Template) validateBody(body *Body) error {
	return walkSegments(body.Segments, func(seg Segment) error {
		switch s := seg.(type) {
		case *Substitution:
			if _, ok := t.Schema[s.Param]; !ok {
				return fmt.Errorf("catalog: template %q substitutes undeclared parameter %q", t.Name, s.Param)
			}
		case *Conditional:
			param, ok := t.Schema[s.Flag]
			if !ok {
				return fmt.Errorf("catalog: template %q gates on undeclared flag %q", t.Name, s.Flag)
			}
			if param.Kind != ParamKindBool {
				return fmt.Errorf("catalog: template %q gates on non-bool parameter %q", t.Name, s.Flag)
			}
		case *VariantGroup:
			for _, branch := range s.Branches {
				if !t.Supports(branch.Compatible) {
					return fmt.Errorf("catalog: template %q has a variant branch for unsupported identifier %q", t.Name, branch.Compatible)
				}
			}
		}
		return nil
	})
}

// walkSegments visits every segment depth-first in source order.
func walkSegments(segments []Segment, visit func(Segment) error) error {
	for _, seg := range segments {
		if err := visit(seg); err != nil {
			return err
		}
		switch s := seg.(type) {
		case *Conditional:
			if err := walkSegments(s.Body, visit); err != nil {
				return err
			}
		case *VariantGroup:
			for _, branch := range s.Branches {
				if err := walkSegments(branch.Body, visit); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
