package exprtree

import (
	"strconv"
	"strings"

	"github.com/sable-lang/sable/pkgs/lexer"
)

// NullNode is the literal null.
type NullNode struct {
	base
}

// NewNull returns a null literal node.
func NewNull(pos lexer.Position) *NullNode {
	return &NullNode{base: base{pos: pos}}
}

func (n *NullNode) Kind() Kind             { return KindNull }
func (n *NullNode) ToSourceString() string { return "null" }
func (n *NullNode) Copy(cs *CopyState) Node {
	cp := &NullNode{base: n.orphaned()}
	cs.register(n, cp)
	return cp
}

// BooleanNode is a true/false literal.
type BooleanNode struct {
	base
	Value bool
}

func NewBoolean(pos lexer.Position, value bool) *BooleanNode {
	return &BooleanNode{base: base{pos: pos}, Value: value}
}

func (n *BooleanNode) Kind() Kind { return KindBoolean }
func (n *BooleanNode) ToSourceString() string {
	return strconv.FormatBool(n.Value)
}
func (n *BooleanNode) Copy(cs *CopyState) Node {
	cp := &BooleanNode{base: n.orphaned(), Value: n.Value}
	cs.register(n, cp)
	return cp
}

// IntegerNode is an integer literal. Hex literals are normalized to their
// numeric value; source text is not retained.
type IntegerNode struct {
	base
	Value int64
}

func NewInteger(pos lexer.Position, value int64) *IntegerNode {
	return &IntegerNode{base: base{pos: pos}, Value: value}
}

func (n *IntegerNode) Kind() Kind { return KindInteger }
func (n *IntegerNode) ToSourceString() string {
	return strconv.FormatInt(n.Value, 10)
}
func (n *IntegerNode) Copy(cs *CopyState) Node {
	cp := &IntegerNode{base: n.orphaned(), Value: n.Value}
	cs.register(n, cp)
	return cp
}

// FloatNode is a floating point literal.
type FloatNode struct {
	base
	Value float64
}

func NewFloat(pos lexer.Position, value float64) *FloatNode {
	return &FloatNode{base: base{pos: pos}, Value: value}
}

func (n *FloatNode) Kind() Kind { return KindFloat }
func (n *FloatNode) ToSourceString() string {
	s := strconv.FormatFloat(n.Value, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}
func (n *FloatNode) Copy(cs *CopyState) Node {
	cp := &FloatNode{base: n.orphaned(), Value: n.Value}
	cs.register(n, cp)
	return cp
}

// StringNode is a string literal. Value holds the decoded content.
type StringNode struct {
	base
	Value string
}

func NewString(pos lexer.Position, value string) *StringNode {
	return &StringNode{base: base{pos: pos}, Value: value}
}

func (n *StringNode) Kind() Kind { return KindString }
func (n *StringNode) ToSourceString() string {
	return QuoteString(n.Value)
}
func (n *StringNode) Copy(cs *CopyState) Node {
	cp := &StringNode{base: n.orphaned(), Value: n.Value}
	cs.register(n, cp)
	return cp
}

// QuoteString renders s as a single-quoted literal, escaping only what the
// grammar's whitelist can represent.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '\'':
			sb.WriteString(`\'`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

// VarRefNode references a template variable ($name) or a field of the
// injected data bundle ($ij.name).
type VarRefNode struct {
	base
	Name string
	// Injected marks references that read from injected data rather than
	// template parameters.
	Injected bool
	// NullSafeInjected marks the $ij?.name form.
	NullSafeInjected bool
}

func NewVarRef(pos lexer.Position, name string, injected, nullSafeInjected bool) *VarRefNode {
	return &VarRefNode{base: base{pos: pos}, Name: name, Injected: injected, NullSafeInjected: nullSafeInjected}
}

func (n *VarRefNode) Kind() Kind { return KindVarRef }
func (n *VarRefNode) ToSourceString() string {
	if n.Injected {
		if n.NullSafeInjected {
			return "$ij?." + n.Name
		}
		return "$ij." + n.Name
	}
	return "$" + n.Name
}
func (n *VarRefNode) Copy(cs *CopyState) Node {
	cp := &VarRefNode{base: n.orphaned(), Name: n.Name, Injected: n.Injected, NullSafeInjected: n.NullSafeInjected}
	cs.register(n, cp)
	return cp
}

// GlobalNode is a dotted global or alias reference (aaa.bbb.CCC) left for a
// later pass to resolve.
type GlobalNode struct {
	base
	Name string
}

func NewGlobal(pos lexer.Position, name string) *GlobalNode {
	return &GlobalNode{base: base{pos: pos}, Name: name}
}

func (n *GlobalNode) Kind() Kind             { return KindGlobal }
func (n *GlobalNode) ToSourceString() string { return n.Name }
func (n *GlobalNode) Copy(cs *CopyState) Node {
	cp := &GlobalNode{base: n.orphaned(), Name: n.Name}
	cs.register(n, cp)
	return cp
}

// GroupNode wraps a single child. The parser does not keep grouping
// parentheses (precedence is structural), so groups appear only as the
// guard placeholders produced by null-safe desugaring.
type GroupNode struct {
	parentBase
}

func NewGroup(pos lexer.Position, child Node) *GroupNode {
	n := &GroupNode{}
	n.pos = pos
	n.init(n)
	n.addChildren(child)
	return n
}

func (n *GroupNode) Kind() Kind { return KindGroup }
func (n *GroupNode) ToSourceString() string {
	return "(" + n.Child(0).ToSourceString() + ")"
}
func (n *GroupNode) Copy(cs *CopyState) Node {
	cp := &GroupNode{}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}
