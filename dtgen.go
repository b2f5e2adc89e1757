// Package dtgen generates driver boilerplate from a resolved devicetree: per
// eligible node it selects a template by compatible identifier, binds node
// properties into the template's parameters, renders the scaffold, and
// writes a header/source pair with deterministic names.
package dtgen

import (
	"context"

	"github.com/evenl/dtgen/pkg/devicetree"
	"github.com/evenl/dtgen/pkg/orchestrator"
)

// Report aliases the orchestrator run report for convenience.
type Report = orchestrator.Report

// Diagnostic aliases the per-node diagnostic record.
type Diagnostic = orchestrator.Diagnostic

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Generate loads the resolved tree from src and runs the full pipeline,
// writing generated units under outputDir. It is the simplest entry point
// for callers that just want files on disk; pass WithCatalog or
// WithCatalogDir to select the templates.
func Generate(ctx context.Context, src devicetree.Source, outputDir string, options ...orchestrator.Option) (*orchestrator.Report, error) {
	opts := append([]orchestrator.Option{orchestrator.WithOutputDir(outputDir)}, options...)
	gen := orchestrator.New(opts...)
	return gen.Run(ctx, orchestrator.Request{Source: src})
}

// GenerateFromDocument runs the pipeline over a pre-loaded tree, bypassing
// the loader stage while still delegating to the orchestrator.
func GenerateFromDocument(ctx context.Context, doc *devicetree.Document, outputDir string, options ...orchestrator.Option) (*orchestrator.Report, error) {
	opts := append([]orchestrator.Option{orchestrator.WithOutputDir(outputDir)}, options...)
	gen := orchestrator.New(opts...)
	return gen.Run(ctx, orchestrator.Request{Document: doc})
}

// WithCatalog forwards the catalog option so common wiring needs only this
// package.
var WithCatalog = orchestrator.WithCatalog

// WithCatalogDir forwards the directory-loading catalog option.
var WithCatalogDir = orchestrator.WithCatalogDir
