package dtgen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/evenl/dtgen/pkg/devicetree"
	"github.com/evenl/dtgen/pkg/orchestrator"
)

const sampleTree = `
devices:
  /soc/i2c@40005400:
    label: i2c1
    compatible: ["vnd,i2c-v2", "vnd,i2c"]
    properties:
      label: i2c1
      reg_base: 0x40005400
      clock_frequency: 400000
      irq_enabled: true
      irq: 31
      pinctrl: "&i2c1_pins_a"
`

func TestBuiltinCatalogLoads(t *testing.T) {
	registry, err := BuiltinCatalog()
	if err != nil {
		t.Fatalf("BuiltinCatalog: %v", err)
	}
	if !registry.Has("vnd-i2c") {
		t.Fatalf("builtin catalog lacks vnd-i2c: %v", registry.List())
	}
}

func TestGenerateWithBuiltinCatalog(t *testing.T) {
	dir := t.TempDir()
	registry, err := BuiltinCatalog()
	if err != nil {
		t.Fatalf("BuiltinCatalog: %v", err)
	}

	report, err := Generate(context.Background(),
		devicetree.SourceFromBytes("board.yaml", []byte(sampleTree)),
		dir,
		WithCatalog(registry),
	)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(report.Generated()) != 1 || len(report.Skipped()) != 0 {
		t.Fatalf("report: %v", report.Diagnostics)
	}

	header, err := os.ReadFile(filepath.Join(dir, "soc_i2c_40005400.h"))
	if err != nil {
		t.Fatalf("header missing: %v", err)
	}
	for _, want := range []string{
		"#define I2C_i2c1_BASE_ADDR 0x40005400",
		"#define I2C_i2c1_HW_REVISION 2",
		"#define I2C_i2c1_IRQ 31",
		"int i2c_i2c1_init(void);",
	} {
		if !bytes.Contains(header, []byte(want)) {
			t.Fatalf("header lacks %q:\n%s", want, header)
		}
	}

	source, err := os.ReadFile(filepath.Join(dir, "soc_i2c_40005400.c"))
	if err != nil {
		t.Fatalf("source missing: %v", err)
	}
	for _, want := range []string{
		".base = (void *)0x40005400",
		".pcfg = &i2c1_pins_a",
		".rev = I2C_VND_REV_2",
		"i2c_vnd_irq_enable(data, 31, 0);",
	} {
		if !bytes.Contains(source, []byte(want)) {
			t.Fatalf("source lacks %q:\n%s", want, source)
		}
	}
}

func TestGenerateFromDocument(t *testing.T) {
	dir := t.TempDir()
	registry, err := BuiltinCatalog()
	if err != nil {
		t.Fatalf("BuiltinCatalog: %v", err)
	}

	doc, err := devicetree.NewDocument([]*devicetree.Node{{
		Path:       "/soc/i2c@40005800",
		Compatible: []string{"vnd,i2c-v1"},
		Properties: map[string]devicetree.PropertyValue{
			"label":    devicetree.StringValue("i2c2"),
			"reg_base": devicetree.IntValue(0x40005800),
		},
	}})
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	report, err := GenerateFromDocument(context.Background(), doc, dir,
		orchestrator.WithCatalog(registry))
	if err != nil {
		t.Fatalf("GenerateFromDocument: %v", err)
	}
	if len(report.Generated()) != 1 {
		t.Fatalf("report: %v", report.Diagnostics)
	}

	header, err := os.ReadFile(filepath.Join(dir, "soc_i2c_40005800.h"))
	if err != nil {
		t.Fatalf("header missing: %v", err)
	}
	if !bytes.Contains(header, []byte("#define I2C_i2c2_HW_REVISION 1")) {
		t.Fatalf("v1 variant branch missing:\n%s", header)
	}
	// The flag was omitted entirely; no interrupt glue may appear.
	if bytes.Contains(header, []byte("IRQ")) {
		t.Fatalf("irq block leaked into output:\n%s", header)
	}
}
