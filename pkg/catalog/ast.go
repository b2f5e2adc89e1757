package catalog

// Body is the structural form of a template body, built once at catalog load
// and walked by the renderer per node. Segments appear in source order; the
// renderer never reorders them.
type Body struct {
	Segments []Segment
}

// Segment is one node of the parsed body structure.
type Segment interface {
	segment() // marker restricting implementations to this package
}

// Literal is a run of template text emitted unchanged.
type Literal struct {
	Text string
}

// Substitution emits the textual representation of a bound parameter.
type Substitution struct {
	Param string
}

// Conditional emits its body only when the guarding bool parameter is bound
// true. An absent flag behaves exactly like an explicit false.
type Conditional struct {
	Flag string
	Body []Segment
}

// VariantBranch is one alternative inside a VariantGroup, specialised for a
// single compatible identifier.
type VariantBranch struct {
	Compatible string
	Body       []Segment
}

// VariantGroup emits exactly the branch whose identifier the resolver
// reported as matched. Branches are mutually exclusive; a matched identifier
// with no branch is a catalog defect surfaced as an UnhandledVariant.
type VariantGroup struct {
	Branches []VariantBranch
}

func (*Literal) segment()      {}
func (*Substitution) segment() {}
func (*Conditional) segment()  {}
func (*VariantGroup) segment() {}
