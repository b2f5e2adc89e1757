// Package devicetree models the resolved hardware description the generator
// consumes: device nodes with ordered compatible identifiers, typed property
// values, and a read-only accessor over one node's properties. The tree
// arrives pre-resolved from the external devicetree compiler; nothing here
// parses description source.
package devicetree
