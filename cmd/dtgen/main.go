package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/evenl/dtgen"
	"github.com/evenl/dtgen/pkg/catalog"
	"github.com/evenl/dtgen/pkg/devicetree"
	"github.com/evenl/dtgen/pkg/orchestrator"
)

func main() {
	tree := flag.String("tree", "", "resolved devicetree document (JSON or YAML)")
	templates := flag.String("templates", "", "template catalog directory (built-in catalog if empty)")
	output := flag.String("output", "gen", "output directory for generated files")
	workers := flag.Int("workers", 0, "concurrent node pipelines (GOMAXPROCS if 0)")
	list := flag.Bool("list", false, "list catalog templates and exit")
	flag.Parse()

	registry, err := loadCatalog(*templates)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	if *list {
		for _, name := range registry.List() {
			fmt.Println(name)
		}
		return
	}

	if *tree == "" {
		log.Fatalf("-tree is required")
	}

	report, err := dtgen.Generate(context.Background(), devicetree.SourceFromFile(*tree), *output,
		orchestrator.WithCatalog(registry),
		orchestrator.WithWorkers(*workers),
	)
	if report != nil {
		for _, diag := range report.Skipped() {
			log.Printf("warning: %s", diag)
		}
		for _, diag := range report.Fatal() {
			log.Printf("error: %s", diag)
		}
	}
	if err != nil {
		log.Fatalf("Generation failed: %v", err)
	}

	fmt.Printf("Generated %d node(s), skipped %d, output in %s\n",
		len(report.Generated()), len(report.Skipped()), *output)
}

func loadCatalog(dir string) (*catalog.Registry, error) {
	if dir == "" {
		return dtgen.BuiltinCatalog()
	}
	return catalog.LoadDir(dir)
}
