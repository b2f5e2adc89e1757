package loader

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/evenl/dtgen/pkg/devicetree"
)

const yamlTree = `
devices:
  /soc/i2c@40005400:
    label: i2c1
    compatible: ["vnd,i2c-v2", "vnd,i2c"]
    status: okay
    properties:
      reg: [0x40005400, 0x400]
      clock-frequency: 400000
      irq_enabled: true
      wakeup-source: null
      pinctrl-0: "&i2c1_pins"
      dma-names: [tx, rx]
  /soc/i2c@40005800:
    compatible: ["vnd,i2c-v1"]
    status: disabled
`

func TestParseYAMLTree(t *testing.T) {
	doc, err := Parse([]byte(yamlTree), "tree.yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	node, ok := doc.Node("/soc/i2c@40005400")
	if !ok {
		t.Fatalf("node not found")
	}
	if node.Label != "i2c1" {
		t.Fatalf("label: got %q", node.Label)
	}
	if diff := cmp.Diff([]string{"vnd,i2c-v2", "vnd,i2c"}, node.Compatible); diff != "" {
		t.Fatalf("compatible mismatch (-want +got):\n%s", diff)
	}

	store := devicetree.NewStore(node)
	if got, err := store.Ints("reg"); err != nil {
		t.Fatalf("reg: %v", err)
	} else if got[0] != 0x40005400 || got[1] != 0x400 {
		t.Fatalf("reg values: %v", got)
	}
	if got, err := store.Int("clock-frequency"); err != nil || got != 400000 {
		t.Fatalf("clock-frequency: %d, %v", got, err)
	}
	if got, err := store.Bool("irq_enabled"); err != nil || !got {
		t.Fatalf("irq_enabled: %v, %v", got, err)
	}
	// A property present with a null value is a flag set true.
	if got, err := store.Bool("wakeup-source"); err != nil || !got {
		t.Fatalf("wakeup-source: %v, %v", got, err)
	}
	if got, err := store.Ref("pinctrl-0"); err != nil || got != "i2c1_pins" {
		t.Fatalf("pinctrl-0: %q, %v", got, err)
	}
	if got, err := store.Strings("dma-names"); err != nil || len(got) != 2 {
		t.Fatalf("dma-names: %v, %v", got, err)
	}

	disabled, ok := doc.Node("/soc/i2c@40005800")
	if !ok {
		t.Fatalf("disabled node not found")
	}
	if disabled.Enabled() {
		t.Fatalf("disabled status not honoured")
	}
}

func TestParseJSONTree(t *testing.T) {
	data := `{
  "devices": {
    "/soc/uart@40011000": {
      "compatible": ["vnd,uart"],
      "properties": {"reg": [1073811456, 1024], "current-speed": 115200}
    }
  }
}`
	doc, err := Parse([]byte(data), "tree.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	node, ok := doc.Node("/soc/uart@40011000")
	if !ok {
		t.Fatalf("node not found")
	}
	store := devicetree.NewStore(node)
	if got, err := store.Int("current-speed"); err != nil || got != 115200 {
		t.Fatalf("current-speed: %d, %v", got, err)
	}
}

func TestParseRejectsMixedList(t *testing.T) {
	data := `
devices:
  /soc/bad:
    compatible: ["vnd,bad"]
    properties:
      mixed: [1, two]
`
	_, err := Parse([]byte(data), "tree.yaml")
	if err == nil || !strings.Contains(err.Error(), "mixed list") {
		t.Fatalf("expected mixed list error, got %v", err)
	}
}

func TestParseRejectsEmptyTree(t *testing.T) {
	if _, err := Parse([]byte("devices: {}"), "tree.yaml"); err == nil {
		t.Fatalf("expected error for empty tree")
	}
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"board/tree.yaml": &fstest.MapFile{Data: []byte(yamlTree)},
	}
	l := New(devicetree.LoaderOptions{FileSystem: fsys})
	doc, err := l.Load(context.Background(), devicetree.SourceFromFS("board/tree.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := doc.Node("/soc/i2c@40005400"); !ok {
		t.Fatalf("node missing after FS load")
	}
}

func TestLoadFromBytes(t *testing.T) {
	l := New(devicetree.LoaderOptions{})
	doc, err := l.Load(context.Background(), devicetree.SourceFromBytes("inline.yaml", []byte(yamlTree)))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := doc.Node("/soc/i2c@40005800"); !ok {
		t.Fatalf("node missing after bytes load")
	}
}
