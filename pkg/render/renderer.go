// Package render instantiates a parsed template body against a bound
// parameter set. Rendering is a pure function: identical inputs always yield
// identical bytes, which is what makes regeneration reproducible.
package render

import (
	"fmt"
	"strings"

	"github.com/evenl/dtgen/pkg/binder"
	"github.com/evenl/dtgen/pkg/catalog"
)

// UnhandledVariantError reports a catalog inconsistency: the resolver
// matched an identifier no variant branch handles. The template itself is
// malformed, so this aborts the whole run rather than skipping the node.
type UnhandledVariantError struct {
	Template string
	Matched  string
	Branches []string
}

func (e *UnhandledVariantError) Error() string {
	return fmt.Sprintf("render: template %q has no variant branch for matched identifier %q (branches: %s)",
		e.Template, e.Matched, strings.Join(e.Branches, ", "))
}

// UnboundParameterError reports a substitution of a parameter the binder
// left unbound. It can only occur for an optional, default-less parameter
// substituted outside a guarding conditional.
type UnboundParameterError struct {
	Template  string
	Parameter string
}

func (e *UnboundParameterError) Error() string {
	return fmt.Sprintf("render: template %q substitutes unbound parameter %q", e.Template, e.Parameter)
}

// Header renders the template's header body.
func Header(tmpl *catalog.Template, params binder.ParameterSet, matched string) ([]byte, error) {
	return render(tmpl, tmpl.Header, params, matched)
}

// Source renders the template's source body. Header-only templates yield
// nil without error.
func Source(tmpl *catalog.Template, params binder.ParameterSet, matched string) ([]byte, error) {
	if tmpl.Source == nil {
		return nil, nil
	}
	return render(tmpl, tmpl.Source, params, matched)
}

func render(tmpl *catalog.Template, body *catalog.Body, params binder.ParameterSet, matched string) ([]byte, error) {
	var out strings.Builder
	if err := renderSegments(&out, tmpl, body.Segments, params, matched); err != nil {
		return nil, err
	}
	return []byte(out.String()), nil
}

// renderSegments walks segments in source order. Output order is template
// order; nothing is reordered or re-indented here.
func renderSegments(out *strings.Builder, tmpl *catalog.Template, segments []catalog.Segment, params binder.ParameterSet, matched string) error {
	for _, seg := range segments {
		switch s := seg.(type) {
		case *catalog.Literal:
			out.WriteString(s.Text)
		case *catalog.Substitution:
			value, ok := params[s.Param]
			if !ok {
				return &UnboundParameterError{Template: tmpl.Name, Parameter: s.Param}
			}
			text, err := formatValue(value, tmpl.Schema[s.Param].Format)
			if err != nil {
				return fmt.Errorf("render: template %q: parameter %q: %w", tmpl.Name, s.Param, err)
			}
			out.WriteString(text)
		case *catalog.Conditional:
			// An absent flag renders exactly like an explicit false: the
			// block contributes nothing, not even whitespace.
			if !params.Flag(s.Flag) {
				continue
			}
			if err := renderSegments(out, tmpl, s.Body, params, matched); err != nil {
				return err
			}
		case *catalog.VariantGroup:
			branch, ok := findBranch(s, matched)
			if !ok {
				return &UnhandledVariantError{
					Template: tmpl.Name,
					Matched:  matched,
					Branches: branchIDs(s),
				}
			}
			if err := renderSegments(out, tmpl, branch.Body, params, matched); err != nil {
				return err
			}
		default:
			return fmt.Errorf("render: template %q: unknown segment %T", tmpl.Name, seg)
		}
	}
	return nil
}

func findBranch(group *catalog.VariantGroup, matched string) (catalog.VariantBranch, bool) {
	for _, branch := range group.Branches {
		if branch.Compatible == matched {
			return branch, true
		}
	}
	return catalog.VariantBranch{}, false
}

func branchIDs(group *catalog.VariantGroup) []string {
	ids := make([]string, 0, len(group.Branches))
	for _, branch := range group.Branches {
		ids = append(ids, branch.Compatible)
	}
	return ids
}
