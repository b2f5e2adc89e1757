// Package loader parses the resolved devicetree database exported by the
// external hardware-description compiler. It accepts the JSON export directly
// or an equivalent YAML rendition; either way the tree arrives fully
// resolved, so no devicetree source syntax is handled here.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/evenl/dtgen/pkg/devicetree"
)

// Loader implements devicetree.Loader over file, fs.FS, and in-memory
// sources.
type Loader struct {
	fs fs.FS
}

var _ devicetree.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options devicetree.LoaderOptions) *Loader {
	return &Loader{fs: options.FileSystem}
}

// Load fetches the document behind src and parses it into a Document.
func (l *Loader) Load(ctx context.Context, src devicetree.Source) (*devicetree.Document, error) {
	if src == nil {
		return nil, errors.New("devicetree loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case devicetree.SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case devicetree.SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("devicetree loader: filesystem is not configured")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case devicetree.SourceKindBytes:
		raw, ok := src.(interface{ Bytes() []byte })
		if !ok {
			return nil, errors.New("devicetree loader: bytes source without payload")
		}
		data = raw.Bytes()
	default:
		err = fmt.Errorf("devicetree loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return nil, err
	}

	return Parse(data, src.Location())
}

// document mirrors the on-disk shape of the resolved tree export.
type document struct {
	Devices map[string]device `yaml:"devices" json:"devices"`
}

type device struct {
	Label      string         `yaml:"label" json:"label"`
	Compatible []string       `yaml:"compatible" json:"compatible"`
	Status     string         `yaml:"status" json:"status"`
	Properties map[string]any `yaml:"properties" json:"properties"`
	Children   []string       `yaml:"children" json:"children"`
}

// Parse decodes a serialised tree document. The origin is used for
// diagnostics and, by extension, format selection: .json parses as JSON,
// anything else as YAML.
func Parse(data []byte, origin string) (*devicetree.Document, error) {
	doc, err := decode(data, origin)
	if err != nil {
		return nil, fmt.Errorf("devicetree loader: parse %s: %w", origin, err)
	}
	if len(doc.Devices) == 0 {
		return nil, fmt.Errorf("devicetree loader: %s declares no devices", origin)
	}

	nodes := make([]*devicetree.Node, 0, len(doc.Devices))
	for nodePath, dev := range doc.Devices {
		nodePath = strings.TrimSpace(nodePath)
		if nodePath == "" {
			return nil, fmt.Errorf("devicetree loader: %s declares a device with an empty path", origin)
		}

		node := &devicetree.Node{
			Path:       path.Clean(nodePath),
			Label:      dev.Label,
			Compatible: dev.Compatible,
			Status:     nodeStatus(dev.Status),
			Children:   dev.Children,
		}

		if len(dev.Properties) > 0 {
			node.Properties = make(map[string]devicetree.PropertyValue, len(dev.Properties))
			for name, raw := range dev.Properties {
				value, err := coerceProperty(raw)
				if err != nil {
					return nil, fmt.Errorf("devicetree loader: %s: device %s property %q: %w", origin, nodePath, name, err)
				}
				node.Properties[name] = value
			}
		}
		nodes = append(nodes, node)
	}

	tree, err := devicetree.NewDocument(nodes)
	if err != nil {
		return nil, fmt.Errorf("devicetree loader: %s: %w", origin, err)
	}
	return tree, nil
}

func nodeStatus(raw string) devicetree.Status {
	if strings.EqualFold(strings.TrimSpace(raw), string(devicetree.StatusDisabled)) {
		return devicetree.StatusDisabled
	}
	return devicetree.StatusOkay
}
