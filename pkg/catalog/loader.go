package catalog

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/evenl/dtgen/pkg/devicetree"
)

// definition mirrors the on-disk template definition shape.
type definition struct {
	Name       string              `yaml:"name"`
	Compatible []string            `yaml:"compatible"`
	Parameters map[string]paramDef `yaml:"parameters"`
	Header     string              `yaml:"header"`
	Source     string              `yaml:"source"`
}

type paramDef struct {
	Type     string `yaml:"type"`
	Required bool   `yaml:"required"`
	Default  any    `yaml:"default"`
	Format   string `yaml:"format"`
}

// LoadDir reads every template definition under dir and returns a populated
// registry. The catalog location is read once at startup; the registry is
// read-only afterwards.
func LoadDir(dir string) (*Registry, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS walks the filesystem and registers every .yaml/.yml definition it
// finds. fs.WalkDir visits entries in lexical order, which keeps the
// registration order (and with it the catalog-side tie-break for shared
// compatibles) deterministic.
func LoadFS(fsys fs.FS) (*Registry, error) {
	registry := NewRegistry()
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("catalog: read %s: %w", path, err)
		}
		tmpl, err := ParseDefinition(data, path)
		if err != nil {
			return err
		}
		if err := registry.Register(tmpl); err != nil {
			return fmt.Errorf("%w (file %s)", err, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(registry.List()) == 0 {
		return nil, fmt.Errorf("catalog: no template definitions found")
	}
	return registry, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ParseDefinition parses one YAML template definition, builds the body
// structures, and validates the result. The origin is used in diagnostics.
func ParseDefinition(data []byte, origin string) (*Template, error) {
	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", origin, err)
	}

	schema := make(Schema, len(def.Parameters))
	for name, pd := range def.Parameters {
		param, err := buildParam(pd)
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: parameter %q: %w", origin, name, err)
		}
		schema[name] = param
	}

	tmpl := &Template{
		Name:       def.Name,
		Compatible: def.Compatible,
		Schema:     schema,
	}

	if def.Header == "" {
		return nil, fmt.Errorf("catalog: %s: template %q has no header body", origin, def.Name)
	}
	header, err := ParseBody(def.Header)
	if err != nil {
		return nil, fmt.Errorf("%w (template %q, file %s)", err, def.Name, origin)
	}
	tmpl.Header = header

	if def.Source != "" {
		source, err := ParseBody(def.Source)
		if err != nil {
			return nil, fmt.Errorf("%w (template %q, file %s)", err, def.Name, origin)
		}
		tmpl.Source = source
	}

	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, origin)
	}
	return tmpl, nil
}

func buildParam(pd paramDef) (Param, error) {
	kind := ParamKind(strings.TrimSpace(pd.Type))
	if kind.PropertyKind() == devicetree.PropertyKindAbsent {
		return Param{}, fmt.Errorf("unknown type %q", pd.Type)
	}

	format := Format(strings.TrimSpace(pd.Format))
	switch format {
	case FormatDefault, FormatDec, FormatHex:
	default:
		return Param{}, fmt.Errorf("unknown format %q", pd.Format)
	}
	if format != FormatDefault && kind != ParamKindInt && kind != ParamKindIntList {
		return Param{}, fmt.Errorf("format %q only applies to integer parameters", pd.Format)
	}

	param := Param{Kind: kind, Required: pd.Required, Format: format}
	if pd.Default != nil {
		value, err := defaultValue(kind, pd.Default)
		if err != nil {
			return Param{}, err
		}
		param.Default = &value
	}
	return param, nil
}

// defaultValue coerces a YAML default onto the parameter's declared kind.
// A default disagreeing with its own schema entry is a definition bug, not
// something to paper over at bind time.
func defaultValue(kind ParamKind, raw any) (devicetree.PropertyValue, error) {
	switch kind {
	case ParamKindInt:
		n, err := defaultInt(raw)
		if err != nil {
			return devicetree.Absent(), err
		}
		return devicetree.IntValue(n), nil
	case ParamKindIntList:
		items, ok := raw.([]any)
		if !ok {
			return devicetree.Absent(), fmt.Errorf("default %v is not an integer list", raw)
		}
		ints := make([]int64, 0, len(items))
		for _, item := range items {
			n, err := defaultInt(item)
			if err != nil {
				return devicetree.Absent(), err
			}
			ints = append(ints, n)
		}
		return devicetree.IntListValue(ints...), nil
	case ParamKindString:
		s, ok := raw.(string)
		if !ok {
			return devicetree.Absent(), fmt.Errorf("default %v is not a string", raw)
		}
		return devicetree.StringValue(s), nil
	case ParamKindStringList:
		items, ok := raw.([]any)
		if !ok {
			return devicetree.Absent(), fmt.Errorf("default %v is not a string list", raw)
		}
		strs := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return devicetree.Absent(), fmt.Errorf("default element %v is not a string", item)
			}
			strs = append(strs, s)
		}
		return devicetree.StringListValue(strs...), nil
	case ParamKindBool:
		b, ok := raw.(bool)
		if !ok {
			return devicetree.Absent(), fmt.Errorf("default %v is not a bool", raw)
		}
		return devicetree.BoolValue(b), nil
	case ParamKindRef:
		s, ok := raw.(string)
		if !ok || s == "" {
			return devicetree.Absent(), fmt.Errorf("default %v is not a reference symbol", raw)
		}
		return devicetree.RefValue(strings.TrimPrefix(s, "&")), nil
	default:
		return devicetree.Absent(), fmt.Errorf("unknown kind %q", kind)
	}
}

func defaultInt(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("default %d overflows int64", v)
		}
		return int64(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("default %v is not an integer", v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("default %v is not an integer", raw)
	}
}
