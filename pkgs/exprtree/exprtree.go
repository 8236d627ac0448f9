// Package exprtree defines the expression AST: a mutable tree with parent
// back-references, in-place child replacement, deep copying, structural
// equivalence and source-text reconstruction.
//
// The node set is closed: every node implements Node, every node with
// children implements Parent, and passes dispatch over Kind with an explicit
// failure for kinds they do not handle.
package exprtree

import (
	"fmt"

	"github.com/sable-lang/sable/pkgs/lexer"
)

// Kind is the tag identifying a node's concrete type.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindVarRef
	KindGlobal
	KindGroup
	KindList
	KindMap
	KindRecord
	KindFunction
	KindProtoInit
	KindFieldAccess
	KindItemAccess
	KindMethodCall
	KindNullSafeAccess
	KindOperator
)

var kindNames = map[Kind]string{
	KindNull:           "NULL",
	KindBoolean:        "BOOLEAN",
	KindInteger:        "INTEGER",
	KindFloat:          "FLOAT",
	KindString:         "STRING",
	KindVarRef:         "VAR_REF",
	KindGlobal:         "GLOBAL",
	KindGroup:          "GROUP",
	KindList:           "LIST",
	KindMap:            "MAP",
	KindRecord:         "RECORD",
	KindFunction:       "FUNCTION",
	KindProtoInit:      "PROTO_INIT",
	KindFieldAccess:    "FIELD_ACCESS",
	KindItemAccess:     "ITEM_ACCESS",
	KindMethodCall:     "METHOD_CALL",
	KindNullSafeAccess: "NULL_SAFE_ACCESS",
	KindOperator:       "OPERATOR",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is an expression AST node.
type Node interface {
	Kind() Kind
	Position() lexer.Position
	Parent() Parent
	// ToSourceString reconstructs source text for this subtree, inserting
	// parentheses only where required by operator precedence.
	ToSourceString() string
	// Copy deep-copies the subtree. The copy has no parent. All copied
	// nodes are registered in cs so that cross-references can be fixed up.
	Copy(cs *CopyState) Node

	setParent(p Parent)
}

// Parent is a node with child slots.
type Parent interface {
	Node
	NumChildren() int
	Child(i int) Node
	// Children returns a snapshot of the child slots.
	Children() []Node
	// ReplaceChild overwrites child slot i in place. The old child is
	// orphaned, the new child reparented.
	ReplaceChild(i int, n Node)
}

// CopyState tracks original-to-copy node identity during a deep copy, so a
// single copy operation yields internally consistent structure without
// aliasing back into the source tree.
type CopyState struct {
	mapping map[Node]Node
}

// NewCopyState returns an empty copy context.
func NewCopyState() *CopyState {
	return &CopyState{mapping: make(map[Node]Node)}
}

// Copied returns the copy registered for an original node, if any.
func (cs *CopyState) Copied(original Node) (Node, bool) {
	n, ok := cs.mapping[original]
	return n, ok
}

func (cs *CopyState) register(original, cp Node) {
	cs.mapping[original] = cp
}

// base carries the state common to all nodes. The parent back-reference is
// non-owning; ownership flows strictly root-to-leaf through child slots.
type base struct {
	parent Parent
	pos    lexer.Position
}

func (b *base) Position() lexer.Position { return b.pos }
func (b *base) Parent() Parent           { return b.parent }
func (b *base) setParent(p Parent)       { b.parent = p }

// orphaned returns a copy of the base state with the parent cleared, for use
// in Copy implementations.
func (b *base) orphaned() base {
	return base{pos: b.pos}
}

// parentBase implements the child-slot bookkeeping shared by all Parent
// nodes. self must be initialized to the embedding node so that children's
// parent pointers refer to the concrete type.
type parentBase struct {
	base
	self     Parent
	children []Node
}

func (p *parentBase) init(self Parent) { p.self = self }

func (p *parentBase) NumChildren() int { return len(p.children) }

func (p *parentBase) Child(i int) Node { return p.children[i] }

func (p *parentBase) Children() []Node {
	return append([]Node(nil), p.children...)
}

func (p *parentBase) ReplaceChild(i int, n Node) {
	old := p.children[i]
	old.setParent(nil)
	n.setParent(p.self)
	p.children[i] = n
}

func (p *parentBase) addChildren(kids ...Node) {
	for _, kid := range kids {
		kid.setParent(p.self)
		p.children = append(p.children, kid)
	}
}

// copyChildrenInto copies p's children into dst, which must already have its
// self reference initialized.
func (p *parentBase) copyChildrenInto(dst *parentBase, cs *CopyState) {
	for _, kid := range p.children {
		dst.addChildren(kid.Copy(cs))
	}
}
