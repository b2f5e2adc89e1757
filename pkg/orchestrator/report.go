package orchestrator

import (
	"errors"
	"fmt"

	"github.com/evenl/dtgen/pkg/binder"
	"github.com/evenl/dtgen/pkg/catalog"
	"github.com/evenl/dtgen/pkg/devicetree"
	"github.com/evenl/dtgen/pkg/emit"
	"github.com/evenl/dtgen/pkg/render"
)

// Code classifies a per-node outcome.
type Code string

const (
	// CodeGenerated marks a node whose scaffolding was rendered and written.
	CodeGenerated Code = "generated"

	// CodeNoMatch marks a node no catalog template serves. Skippable.
	CodeNoMatch Code = "no-match"

	// CodeMissingParameter marks a node lacking a required, default-less
	// schema entry. Skippable.
	CodeMissingParameter Code = "missing-parameter"

	// CodeTypeMismatch marks a node whose property kind disagrees with the
	// template schema. Skippable.
	CodeTypeMismatch Code = "type-mismatch"

	// CodeUnhandledVariant marks a catalog defect: the matched identifier
	// has no variant branch. Fatal for the whole run.
	CodeUnhandledVariant Code = "unhandled-variant"

	// CodeOutputCollision marks two nodes sharing one output identity.
	// Fatal for the whole run.
	CodeOutputCollision Code = "output-collision"
)

// Fatal reports whether the code aborts the run instead of skipping a node.
func (c Code) Fatal() bool {
	return c == CodeUnhandledVariant || c == CodeOutputCollision
}

// Diagnostic is one per-node record surfaced to the invoking build tool.
type Diagnostic struct {
	Node   string
	Code   Code
	Detail string
}

func (d Diagnostic) String() string {
	if d.Detail == "" {
		return fmt.Sprintf("%s: %s", d.Node, d.Code)
	}
	return fmt.Sprintf("%s: %s: %s", d.Node, d.Code, d.Detail)
}

// Report partitions a run's nodes into generated, skipped, and fatal
// outcomes. It is data, not logging; callers decide how to surface it.
type Report struct {
	Diagnostics []Diagnostic
}

// Generated returns the diagnostics of successfully generated nodes.
func (r *Report) Generated() []Diagnostic { return r.byClass(func(c Code) bool { return c == CodeGenerated }) }

// Skipped returns the diagnostics of nodes skipped with a warning.
func (r *Report) Skipped() []Diagnostic {
	return r.byClass(func(c Code) bool { return c != CodeGenerated && !c.Fatal() })
}

// Fatal returns the diagnostics that aborted the run.
func (r *Report) Fatal() []Diagnostic { return r.byClass(Code.Fatal) }

// HasFatal reports whether the run hit an aborting condition.
func (r *Report) HasFatal() bool { return len(r.Fatal()) > 0 }

func (r *Report) byClass(match func(Code) bool) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if match(d.Code) {
			out = append(out, d)
		}
	}
	return out
}

// classify maps a pipeline error onto the diagnostic taxonomy. Unbound
// substitutions surface as missing parameters since that is what the node
// failed to provide. Errors outside the taxonomy (I/O and the like) report
// false and propagate as-is.
func classify(err error) (Code, bool) {
	var (
		noMatch   *catalog.NoMatchError
		missing   *binder.MissingParameterError
		mismatch  *devicetree.TypeMismatchError
		variant   *render.UnhandledVariantError
		unbound   *render.UnboundParameterError
		collision *emit.CollisionError
	)
	switch {
	case errors.As(err, &noMatch):
		return CodeNoMatch, true
	case errors.As(err, &missing), errors.As(err, &unbound):
		return CodeMissingParameter, true
	case errors.As(err, &mismatch):
		return CodeTypeMismatch, true
	case errors.As(err, &variant):
		return CodeUnhandledVariant, true
	case errors.As(err, &collision):
		return CodeOutputCollision, true
	default:
		return "", false
	}
}
