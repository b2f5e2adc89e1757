package emit

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/evenl/dtgen/pkg/devicetree"
)

func TestIdentityIsDeterministicAndSanitised(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/soc/i2c@40005400", "soc_i2c_40005400"},
		{"/soc/uart@40011000", "soc_uart_40011000"},
		{"/SOC/SPI@0", "soc_spi_0"},
		{"i2c-1", "i2c_1"},
	}
	for _, tc := range tests {
		node := &devicetree.Node{Path: tc.path}
		if got := Identity(node); got != tc.want {
			t.Fatalf("Identity(%q) = %q, want %q", tc.path, got, tc.want)
		}
		if again := Identity(node); again != tc.want {
			t.Fatalf("Identity(%q) not stable", tc.path)
		}
	}
}

func TestCheckDetectsCollision(t *testing.T) {
	units := []Unit{
		{Identity: "soc_i2c_40005400", Node: "/soc/i2c@40005400"},
		{Identity: "soc_i2c_40005400", Node: "/soc/i2c-40005400"},
		{Identity: "soc_uart_40011000", Node: "/soc/uart@40011000"},
	}
	err := Check(units)
	var collision *CollisionError
	if !errors.As(err, &collision) {
		t.Fatalf("expected CollisionError, got %v", err)
	}
	if collision.Identity != "soc_i2c_40005400" {
		t.Fatalf("collision identity: %q", collision.Identity)
	}
	// Deterministic order: the lexically smaller node path is the first
	// claimant regardless of how the units were collected.
	if collision.First != "/soc/i2c-40005400" || collision.Second != "/soc/i2c@40005400" {
		t.Fatalf("collision claimants: %q, %q", collision.First, collision.Second)
	}
}

func TestCheckPassesDistinctIdentities(t *testing.T) {
	units := []Unit{
		{Identity: "a", Node: "/a"},
		{Identity: "b", Node: "/b"},
	}
	if err := Check(units); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestWritePairAndIdempotentRegeneration(t *testing.T) {
	dir := t.TempDir()
	emitter := New(dir)
	unit := Unit{
		Identity: "soc_i2c_40005400",
		Node:     "/soc/i2c@40005400",
		Header:   []byte("#define X 1\n"),
		Source:   []byte("int x = 1;\n"),
	}

	if err := emitter.Write(unit); err != nil {
		t.Fatalf("Write: %v", err)
	}
	header1, err := os.ReadFile(filepath.Join(dir, "soc_i2c_40005400.h"))
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	source1, err := os.ReadFile(filepath.Join(dir, "soc_i2c_40005400.c"))
	if err != nil {
		t.Fatalf("read source: %v", err)
	}

	// Re-running over identical input must reproduce the files byte for
	// byte.
	if err := emitter.Write(unit); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	header2, _ := os.ReadFile(filepath.Join(dir, "soc_i2c_40005400.h"))
	source2, _ := os.ReadFile(filepath.Join(dir, "soc_i2c_40005400.c"))
	if !bytes.Equal(header1, header2) || !bytes.Equal(source1, source2) {
		t.Fatalf("regeneration produced different bytes")
	}
}

func TestWriteHeaderOnlyUnit(t *testing.T) {
	dir := t.TempDir()
	emitter := New(dir)
	unit := Unit{Identity: "soc_wdt_0", Node: "/soc/wdt@0", Header: []byte("#define WDT 1\n")}

	if err := emitter.Write(unit); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "soc_wdt_0.c")); !os.IsNotExist(err) {
		t.Fatalf("header-only unit wrote a source file")
	}
}
