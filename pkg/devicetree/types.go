package devicetree

import (
	"fmt"
	"sort"
	"strings"
)

// PropertyKind enumerates the value kinds a node property can carry.
type PropertyKind string

const (
	PropertyKindAbsent     PropertyKind = "absent"
	PropertyKindInt        PropertyKind = "int"
	PropertyKindIntList    PropertyKind = "int-list"
	PropertyKindString     PropertyKind = "string"
	PropertyKindStringList PropertyKind = "string-list"
	PropertyKindBool       PropertyKind = "bool"
	PropertyKindRef        PropertyKind = "ref"
)

// PropertyValue is the tagged union over the payloads a devicetree property
// can hold. Only the field matching Kind is meaningful; accessing a value
// through the wrong-kind accessor yields a TypeMismatchError rather than a
// coerced result. References stay opaque symbols and are never dereferenced
// by this package.
type PropertyValue struct {
	Kind    PropertyKind
	Int     int64
	Ints    []int64
	Str     string
	Strs    []string
	Flag    bool
	Ref     string
}

// Absent is the zero PropertyValue with an explicit kind tag.
func Absent() PropertyValue {
	return PropertyValue{Kind: PropertyKindAbsent}
}

// IntValue wraps a scalar integer property.
func IntValue(v int64) PropertyValue {
	return PropertyValue{Kind: PropertyKindInt, Int: v}
}

// IntListValue wraps an integer-list property such as a reg tuple.
func IntListValue(vs ...int64) PropertyValue {
	return PropertyValue{Kind: PropertyKindIntList, Ints: vs}
}

// StringValue wraps a scalar string property.
func StringValue(v string) PropertyValue {
	return PropertyValue{Kind: PropertyKindString, Str: v}
}

// StringListValue wraps a string-list property such as a compatible list.
func StringListValue(vs ...string) PropertyValue {
	return PropertyValue{Kind: PropertyKindStringList, Strs: vs}
}

// BoolValue wraps a boolean feature flag.
func BoolValue(v bool) PropertyValue {
	return PropertyValue{Kind: PropertyKindBool, Flag: v}
}

// RefValue wraps a cross-reference to another node or named resource. The
// symbol is emitted verbatim into generated text.
func RefValue(symbol string) PropertyValue {
	return PropertyValue{Kind: PropertyKindRef, Ref: symbol}
}

// IsAbsent reports whether the value marks a missing property.
func (v PropertyValue) IsAbsent() bool {
	return v.Kind == PropertyKindAbsent || v.Kind == ""
}

// TypeMismatchError reports a property access that disagrees with the
// property's actual kind.
type TypeMismatchError struct {
	Property string
	Want     PropertyKind
	Got      PropertyKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("devicetree: property %q is %s, not %s", e.Property, e.Got, e.Want)
}

// Status marks whether a node takes part in generation.
type Status string

const (
	StatusOkay     Status = "okay"
	StatusDisabled Status = "disabled"
)

// Node is one peripheral instance in the resolved hardware description.
// Compatible identifiers are ordered most specific first; that order decides
// template selection. Properties hold the node's typed attributes as produced
// by the external devicetree compiler.
type Node struct {
	// Path is the stable identity of the node within the tree.
	Path string

	// Label is the optional node label assigned in the description source.
	Label string

	// Compatible lists the hardware identifiers the node claims conformance
	// to, most specific first. Nodes with an empty list are never generated.
	Compatible []string

	// Status gates generation; anything other than disabled counts as okay.
	Status Status

	// Properties maps property name to its typed value.
	Properties map[string]PropertyValue

	// Children holds the paths of sub-peripheral nodes.
	Children []string
}

// Name returns the last path segment, e.g. "i2c@40005400".
func (n *Node) Name() string {
	if idx := strings.LastIndex(n.Path, "/"); idx >= 0 {
		return n.Path[idx+1:]
	}
	return n.Path
}

// Enabled reports whether the node's status permits generation.
func (n *Node) Enabled() bool {
	return n.Status != StatusDisabled
}

// Eligible reports whether the node can be matched against the catalog:
// enabled and declaring at least one compatible identifier.
func (n *Node) Eligible() bool {
	return n.Enabled() && len(n.Compatible) > 0
}

// Document is the resolved devicetree handed over by the external compiler.
// It is read-only after construction and safe for concurrent use.
type Document struct {
	nodes map[string]*Node
}

// NewDocument indexes the given nodes by path. Duplicate paths are rejected
// since path is the node identity everything downstream keys on.
func NewDocument(nodes []*Node) (*Document, error) {
	doc := &Document{nodes: make(map[string]*Node, len(nodes))}
	for _, node := range nodes {
		if node == nil || node.Path == "" {
			return nil, fmt.Errorf("devicetree: node without a path")
		}
		if _, exists := doc.nodes[node.Path]; exists {
			return nil, fmt.Errorf("devicetree: duplicate node path %q", node.Path)
		}
		doc.nodes[node.Path] = node
	}
	return doc, nil
}

// Node retrieves a node by path.
func (d *Document) Node(path string) (*Node, bool) {
	node, ok := d.nodes[path]
	return node, ok
}

// Nodes returns all nodes sorted by path so iteration order is stable across
// runs.
func (d *Document) Nodes() []*Node {
	out := make([]*Node, 0, len(d.nodes))
	for _, node := range d.nodes {
		out = append(out, node)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// NodesByCompatible returns the enabled nodes claiming any of the given
// identifiers, sorted by path.
func (d *Document) NodesByCompatible(ids ...string) []*Node {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	var out []*Node
	for _, node := range d.nodes {
		if !node.Enabled() {
			continue
		}
		for _, id := range node.Compatible {
			if _, ok := wanted[id]; ok {
				out = append(out, node)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// NodeByLabel finds the node carrying the given label, if any.
func (d *Document) NodeByLabel(label string) (*Node, bool) {
	if label == "" {
		return nil, false
	}
	for _, node := range d.nodes {
		if node.Label == label {
			return node, true
		}
	}
	return nil, false
}
