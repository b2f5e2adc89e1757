// Package emit turns rendered text into files on disk. Output naming is a
// pure function of node identity so regeneration over an unchanged tree
// reproduces byte-identical files, which downstream reproducible builds
// depend on. Writing is the only side effect in the whole pipeline.
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/evenl/dtgen/pkg/devicetree"
)

// CollisionError reports two nodes mapping to the same output identity. The
// reproducibility invariant is broken, so the run aborts and neither file is
// written.
type CollisionError struct {
	Identity string
	First    string
	Second   string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("emit: nodes %s and %s both map to output %q", e.First, e.Second, e.Identity)
}

// Unit is one generated output: the node it came from, its deterministic
// output identity, and the rendered header/source texts. Source may be nil
// for header-only scaffolds.
type Unit struct {
	Identity string
	Node     string
	Header   []byte
	Source   []byte
}

// Identity derives the output identity from a node's path: lowercased, every
// run of non-alphanumeric runes collapsed to a single underscore. No
// counters, no timestamps; the same node always names the same files.
func Identity(node *devicetree.Node) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(node.Path) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}

// Emitter writes generated units under a single output directory.
type Emitter struct {
	dir string
}

// New creates an emitter rooted at dir.
func New(dir string) *Emitter {
	return &Emitter{dir: dir}
}

// HeaderPath returns the path the unit's header is written to.
func (e *Emitter) HeaderPath(unit Unit) string {
	return filepath.Join(e.dir, unit.Identity+".h")
}

// SourcePath returns the path the unit's source is written to.
func (e *Emitter) SourcePath(unit Unit) string {
	return filepath.Join(e.dir, unit.Identity+".c")
}

// Check verifies that the planned units occupy distinct output identities.
// It runs over the whole batch before any write so colliding nodes emit
// nothing at all. The scan order is deterministic regardless of how the
// units were collected.
func Check(units []Unit) error {
	ordered := make([]Unit, len(units))
	copy(ordered, units)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Node < ordered[j].Node })

	claimed := make(map[string]string, len(ordered))
	for _, unit := range ordered {
		if first, taken := claimed[unit.Identity]; taken {
			return &CollisionError{Identity: unit.Identity, First: first, Second: unit.Node}
		}
		claimed[unit.Identity] = unit.Node
	}
	return nil
}

// Write persists one unit as a header/source pair. The output directory is
// created on demand.
func (e *Emitter) Write(unit Unit) error {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("emit: create output dir: %w", err)
	}
	if err := os.WriteFile(e.HeaderPath(unit), unit.Header, 0o644); err != nil {
		return fmt.Errorf("emit: write %s: %w", e.HeaderPath(unit), err)
	}
	if unit.Source != nil {
		if err := os.WriteFile(e.SourcePath(unit), unit.Source, 0o644); err != nil {
			return fmt.Errorf("emit: write %s: %w", e.SourcePath(unit), err)
		}
	}
	return nil
}
