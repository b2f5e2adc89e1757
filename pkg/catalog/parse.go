package catalog

import (
	"fmt"
	"strings"
)

// Template body grammar, derived from the directive style driver scaffolds
// are written in:
//
//	${name}                  substitution ("$${" escapes a literal "${")
//	%if <flag> ... %endif    conditional block, nestable
//	%variant <id>            opens a variant branch; repeated %variant lines
//	                         start sibling branches until %endvariant
//
// Directive lines produce no output themselves. Everything else is literal.
// A line starting with "%%" is literal text with one "%" stripped.

// ParseBody parses template body text into its structural form. Parsing
// happens once at catalog load; rendering never re-reads the text.
func ParseBody(text string) (*Body, error) {
	p := &bodyParser{}
	p.push(frame{kind: frameRoot})

	for i, line := range splitLines(text) {
		if err := p.line(i+1, line); err != nil {
			return nil, err
		}
	}

	top := p.top()
	switch top.kind {
	case frameConditional:
		return nil, fmt.Errorf("catalog: unterminated %%if %s", top.flag)
	case frameVariant:
		return nil, fmt.Errorf("catalog: unterminated %%variant group")
	}
	return &Body{Segments: top.segments}, nil
}

// splitLines keeps each line's trailing newline attached so literal output
// reproduces the template byte for byte.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type frameKind int

const (
	frameRoot frameKind = iota
	frameConditional
	frameVariant
)

type frame struct {
	kind     frameKind
	flag     string // conditional guard
	id       string // current variant branch identifier
	branches []VariantBranch
	segments []Segment
}

type bodyParser struct {
	stack []frame
}

func (p *bodyParser) push(f frame) { p.stack = append(p.stack, f) }

func (p *bodyParser) top() *frame { return &p.stack[len(p.stack)-1] }

func (p *bodyParser) pop() frame {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return f
}

func (p *bodyParser) emit(seg Segment) {
	top := p.top()
	if lit, ok := seg.(*Literal); ok && len(top.segments) > 0 {
		if prev, ok := top.segments[len(top.segments)-1].(*Literal); ok {
			prev.Text += lit.Text
			return
		}
	}
	top.segments = append(top.segments, seg)
}

func (p *bodyParser) line(lineno int, line string) error {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "%") {
		return p.literalLine(lineno, line)
	}
	if strings.HasPrefix(trimmed, "%%") {
		// Escaped literal "%" line; drop one percent, keep indentation.
		idx := strings.Index(line, "%%")
		return p.literalLine(lineno, line[:idx]+line[idx+1:])
	}

	directive, arg, _ := strings.Cut(trimmed[1:], " ")
	arg = strings.TrimSpace(arg)

	switch directive {
	case "if":
		if arg == "" {
			return fmt.Errorf("catalog: line %d: %%if without a flag", lineno)
		}
		p.push(frame{kind: frameConditional, flag: arg})
	case "endif":
		if p.top().kind != frameConditional {
			return fmt.Errorf("catalog: line %d: %%endif without %%if", lineno)
		}
		f := p.pop()
		p.top().segments = append(p.top().segments, &Conditional{Flag: f.flag, Body: f.segments})
	case "variant":
		if arg == "" {
			return fmt.Errorf("catalog: line %d: %%variant without an identifier", lineno)
		}
		top := p.top()
		if top.kind == frameVariant {
			// Sibling branch: seal the current one.
			top.branches = append(top.branches, VariantBranch{Compatible: top.id, Body: top.segments})
			top.id = arg
			top.segments = nil
			return nil
		}
		p.push(frame{kind: frameVariant, id: arg})
	case "endvariant":
		if p.top().kind != frameVariant {
			return fmt.Errorf("catalog: line %d: %%endvariant without %%variant", lineno)
		}
		f := p.pop()
		f.branches = append(f.branches, VariantBranch{Compatible: f.id, Body: f.segments})
		p.top().segments = append(p.top().segments, &VariantGroup{Branches: f.branches})
	default:
		return fmt.Errorf("catalog: line %d: unknown directive %%%s", lineno, directive)
	}
	return nil
}

// literalLine splits one line of literal text around ${...} substitutions.
func (p *bodyParser) literalLine(lineno int, line string) error {
	rest := line
	for {
		idx := strings.Index(rest, "${")
		if idx < 0 {
			break
		}
		if idx > 0 && rest[idx-1] == '$' {
			// "$${" escape: emit up to and including a single "${".
			p.emit(&Literal{Text: rest[:idx-1] + "${"})
			rest = rest[idx+2:]
			continue
		}
		if idx > 0 {
			p.emit(&Literal{Text: rest[:idx]})
		}
		end := strings.Index(rest[idx:], "}")
		if end < 0 {
			return fmt.Errorf("catalog: line %d: unterminated substitution", lineno)
		}
		name := strings.TrimSpace(rest[idx+2 : idx+end])
		if name == "" {
			return fmt.Errorf("catalog: line %d: empty substitution", lineno)
		}
		p.emit(&Substitution{Param: name})
		rest = rest[idx+end+1:]
	}
	if rest != "" {
		p.emit(&Literal{Text: rest})
	}
	return nil
}
