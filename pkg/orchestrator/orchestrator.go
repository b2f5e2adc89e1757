// Package orchestrator coordinates the per-node pipeline: resolve a template
// from the catalog, bind the node's properties, render, and emit. Nodes are
// independent, so pipelines fan out across workers over the shared read-only
// catalog; emission happens last, after the whole batch passed the output
// collision check.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	internalloader "github.com/evenl/dtgen/internal/devicetree/loader"
	"github.com/evenl/dtgen/pkg/binder"
	"github.com/evenl/dtgen/pkg/catalog"
	"github.com/evenl/dtgen/pkg/devicetree"
	"github.com/evenl/dtgen/pkg/emit"
	"github.com/evenl/dtgen/pkg/render"
)

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithCatalog injects the template registry the run resolves against.
func WithCatalog(registry *catalog.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithCatalogDir loads the template catalog from a directory at
// construction time.
func WithCatalogDir(dir string) Option {
	return func(o *Orchestrator) {
		registry, err := catalog.LoadDir(dir)
		if err != nil {
			o.initialiseErr = err
			return
		}
		o.registry = registry
	}
}

// WithLoader injects a custom devicetree document loader.
func WithLoader(loader devicetree.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithOutputDir sets the directory generated units are written to.
func WithOutputDir(dir string) Option {
	return func(o *Orchestrator) {
		o.outputDir = dir
	}
}

// WithWorkers bounds the number of node pipelines running concurrently.
// Values below one fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		o.workers = n
	}
}

// Orchestrator runs the generation pipeline over a resolved tree. Missing
// dependencies are initialised with the built-in implementations so callers
// can start with a single constructor call.
type Orchestrator struct {
	registry      *catalog.Registry
	loader        devicetree.Loader
	outputDir     string
	workers       int
	initialiseErr error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{outputDir: "."}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	if o.loader == nil {
		o.loader = internalloader.New(devicetree.LoaderOptions{})
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Request describes the inputs of one generation run.
type Request struct {
	// Source identifies where the resolved tree document lives. Optional
	// when Document is supplied.
	Source devicetree.Source

	// Document allows callers to bypass the loader when they already hold a
	// parsed tree.
	Document *devicetree.Document
}

// result pairs one node's diagnostic with its rendered unit, keyed by the
// node's position in the eligible list so report order is stable.
type result struct {
	diag Diagnostic
	unit *emit.Unit
}

// Run executes the Resolve → Bind → Render → Emit pipeline for every
// eligible node. Per-node failures (no match, missing parameter, type
// mismatch) skip that node only; an unhandled variant or an output collision
// aborts the run before anything is written. The returned report is complete
// for every node processed even when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if o.registry == nil {
		return nil, errors.New("orchestrator: catalog is required")
	}

	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}

	// Disabled nodes and nodes without a compatible list are excluded from
	// generation entirely, not even reported.
	var eligible []*devicetree.Node
	for _, node := range doc.Nodes() {
		if node.Eligible() {
			eligible = append(eligible, node)
		}
	}

	results := make([]result, len(eligible))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.workers)
	for i, node := range eligible {
		i, node := i, node
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			res, err := o.pipeline(node)
			results[i] = res
			return err
		})
	}
	waitErr := group.Wait()

	report := &Report{}
	for _, res := range results {
		if res.diag.Code != "" {
			report.Diagnostics = append(report.Diagnostics, res.diag)
		}
	}
	if waitErr != nil {
		return report, waitErr
	}

	var units []emit.Unit
	for _, res := range results {
		if res.unit != nil {
			units = append(units, *res.unit)
		}
	}
	if err := emit.Check(units); err != nil {
		var collision *emit.CollisionError
		if errors.As(err, &collision) {
			report.Diagnostics = append(report.Diagnostics, Diagnostic{
				Node:   collision.Second,
				Code:   CodeOutputCollision,
				Detail: err.Error(),
			})
		}
		return report, err
	}

	emitter := emit.New(o.outputDir)
	for _, unit := range units {
		if err := emitter.Write(unit); err != nil {
			return report, err
		}
	}
	return report, nil
}

// pipeline processes one node. Skippable failures come back as a diagnostic
// with a nil unit; fatal ones additionally return the error so the group
// aborts the run.
func (o *Orchestrator) pipeline(node *devicetree.Node) (result, error) {
	tmpl, matched, err := o.registry.Resolve(node)
	if err != nil {
		return o.failure(node, err)
	}

	params, err := binder.Bind(node, tmpl)
	if err != nil {
		return o.failure(node, err)
	}

	header, err := render.Header(tmpl, params, matched)
	if err != nil {
		return o.failure(node, err)
	}
	source, err := render.Source(tmpl, params, matched)
	if err != nil {
		return o.failure(node, err)
	}

	unit := &emit.Unit{
		Identity: emit.Identity(node),
		Node:     node.Path,
		Header:   header,
		Source:   source,
	}
	return result{
		diag: Diagnostic{
			Node:   node.Path,
			Code:   CodeGenerated,
			Detail: fmt.Sprintf("template %q via %q", tmpl.Name, matched),
		},
		unit: unit,
	}, nil
}

func (o *Orchestrator) failure(node *devicetree.Node, err error) (result, error) {
	code, ok := classify(err)
	if !ok {
		return result{}, err
	}
	res := result{diag: Diagnostic{Node: node.Path, Code: code, Detail: err.Error()}}
	if code.Fatal() {
		return res, err
	}
	return res, nil
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (*devicetree.Document, error) {
	if req.Document != nil {
		return req.Document, nil
	}
	if req.Source == nil {
		return nil, errors.New("orchestrator: source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: load tree: %w", err)
	}
	return doc, nil
}
