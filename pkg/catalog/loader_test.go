package catalog

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/evenl/dtgen/pkg/devicetree"
)

const i2cDefinition = `
name: vnd-i2c
compatible:
  - "vnd,i2c-v2"
  - "vnd,i2c-v1"
parameters:
  label:
    type: string
    required: true
  reg_base:
    type: int
    required: true
    format: hex
  clock_frequency:
    type: int
    default: 100000
  irq_enabled:
    type: bool
header: |
  #define I2C_${label}_BASE ${reg_base}
  %if irq_enabled
  #define I2C_${label}_IRQ_MODE 1
  %endif
  %variant vnd,i2c-v2
  #define I2C_${label}_REV 2
  %variant vnd,i2c-v1
  #define I2C_${label}_REV 1
  %endvariant
source: |
  static const int ${label}_bitrate = ${clock_frequency};
`

func TestParseDefinition(t *testing.T) {
	tmpl, err := ParseDefinition([]byte(i2cDefinition), "vnd-i2c.yaml")
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	if tmpl.Name != "vnd-i2c" {
		t.Fatalf("name: %q", tmpl.Name)
	}
	if !tmpl.Supports("vnd,i2c-v1") || !tmpl.Supports("vnd,i2c-v2") {
		t.Fatalf("compatible: %v", tmpl.Compatible)
	}

	base, ok := tmpl.Schema["reg_base"]
	if !ok || !base.Required || base.Format != FormatHex || base.Kind != ParamKindInt {
		t.Fatalf("reg_base schema: %+v", base)
	}
	freq := tmpl.Schema["clock_frequency"]
	if freq.Default == nil || freq.Default.Kind != devicetree.PropertyKindInt || freq.Default.Int != 100000 {
		t.Fatalf("clock_frequency default: %+v", freq.Default)
	}
	if tmpl.Source == nil {
		t.Fatalf("source body missing")
	}
}

func TestParseDefinitionValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			"undeclared substitution",
			func(def string) string { return strings.Replace(def, "${reg_base}", "${bogus}", 1) },
			"undeclared parameter",
		},
		{
			"non-bool gate",
			func(def string) string { return strings.Replace(def, "%if irq_enabled", "%if label", 1) },
			"non-bool parameter",
		},
		{
			"variant for unsupported identifier",
			func(def string) string { return strings.Replace(def, "%variant vnd,i2c-v1", "%variant vnd,spi-v1", 1) },
			"unsupported identifier",
		},
		{
			"unknown parameter type",
			func(def string) string { return strings.Replace(def, "type: bool", "type: float", 1) },
			"unknown type",
		},
		{
			"format on non-integer",
			func(def string) string {
				return strings.Replace(def, "type: string\n    required: true", "type: string\n    required: true\n    format: hex", 1)
			},
			"only applies to integer",
		},
		{
			"missing header",
			func(def string) string {
				idx := strings.Index(def, "header:")
				return def[:idx] + "source: |\n  x\n"
			},
			"no header body",
		},
	}
	for _, tc := range tests {
		_, err := ParseDefinition([]byte(tc.mutate(i2cDefinition)), "vnd-i2c.yaml")
		if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
			t.Fatalf("%s: got %v, want %q", tc.name, err, tc.wantErr)
		}
	}
}

func TestParseDefinitionRejectsBadDefault(t *testing.T) {
	def := strings.Replace(i2cDefinition, "default: 100000", "default: fast", 1)
	if _, err := ParseDefinition([]byte(def), "vnd-i2c.yaml"); err == nil {
		t.Fatalf("expected default coercion error")
	}
}

func TestLoadFS(t *testing.T) {
	uartDef := `
name: vnd-uart
compatible: ["vnd,uart"]
parameters:
  label: {type: string, required: true}
  current_speed: {type: int, default: 115200}
header: |
  #define UART_${label}_BAUD ${current_speed}
`
	fsys := fstest.MapFS{
		"i2c/vnd-i2c.yaml":  &fstest.MapFile{Data: []byte(i2cDefinition)},
		"uart/vnd-uart.yml": &fstest.MapFile{Data: []byte(uartDef)},
		"README.md":         &fstest.MapFile{Data: []byte("not a template")},
	}

	registry, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}
	names := registry.List()
	if len(names) != 2 || names[0] != "vnd-i2c" || names[1] != "vnd-uart" {
		t.Fatalf("List: %v", names)
	}
}

func TestLoadFSEmptyCatalogFails(t *testing.T) {
	if _, err := LoadFS(fstest.MapFS{}); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}
