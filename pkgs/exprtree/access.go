package exprtree

import (
	"github.com/sable-lang/sable/pkgs/lexer"
)

// AccessNode is implemented by the three data-access node types. Base is the
// receiver subtree; NullSafe reports whether the access used the ?. or ?[
// form (true only before desugaring; see DesugarNullSafe).
type AccessNode interface {
	Parent
	Base() Node
	NullSafe() bool
	setNullSafe(bool)
}

// chainBaseSource renders an access chain's receiver. Grouping parentheses
// leave no node behind, so a receiver that binds looser than the chain must
// be re-parenthesized on print or the text would reparse differently. The
// postfix non-null assertion already binds tighter than any access and
// stays bare.
func chainBaseSource(n Node) string {
	if PrecedenceOf(n) < OpAssertNonNull.Precedence {
		return "(" + n.ToSourceString() + ")"
	}
	return n.ToSourceString()
}

// FieldAccessNode is $base.field or $base?.field. The base is child 0.
type FieldAccessNode struct {
	parentBase
	FieldName string
	nullSafe  bool
}

func NewFieldAccess(pos lexer.Position, baseExpr Node, field string, nullSafe bool) *FieldAccessNode {
	n := &FieldAccessNode{FieldName: field, nullSafe: nullSafe}
	n.pos = pos
	n.init(n)
	n.addChildren(baseExpr)
	return n
}

func (n *FieldAccessNode) Kind() Kind         { return KindFieldAccess }
func (n *FieldAccessNode) Base() Node         { return n.Child(0) }
func (n *FieldAccessNode) NullSafe() bool     { return n.nullSafe }
func (n *FieldAccessNode) setNullSafe(v bool) { n.nullSafe = v }

func (n *FieldAccessNode) ToSourceString() string {
	marker := "."
	if n.nullSafe {
		marker = "?."
	}
	return chainBaseSource(n.Base()) + marker + n.FieldName
}

func (n *FieldAccessNode) Copy(cs *CopyState) Node {
	cp := &FieldAccessNode{FieldName: n.FieldName, nullSafe: n.nullSafe}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

// ItemAccessNode is $base[key] or $base?[key]. The base is child 0, the key
// expression child 1.
type ItemAccessNode struct {
	parentBase
	nullSafe bool
}

func NewItemAccess(pos lexer.Position, baseExpr, key Node, nullSafe bool) *ItemAccessNode {
	n := &ItemAccessNode{nullSafe: nullSafe}
	n.pos = pos
	n.init(n)
	n.addChildren(baseExpr, key)
	return n
}

func (n *ItemAccessNode) Kind() Kind         { return KindItemAccess }
func (n *ItemAccessNode) Base() Node         { return n.Child(0) }
func (n *ItemAccessNode) Key() Node          { return n.Child(1) }
func (n *ItemAccessNode) NullSafe() bool     { return n.nullSafe }
func (n *ItemAccessNode) setNullSafe(v bool) { n.nullSafe = v }

func (n *ItemAccessNode) ToSourceString() string {
	marker := "["
	if n.nullSafe {
		marker = "?["
	}
	return chainBaseSource(n.Base()) + marker + n.Key().ToSourceString() + "]"
}

func (n *ItemAccessNode) Copy(cs *CopyState) Node {
	cp := &ItemAccessNode{nullSafe: n.nullSafe}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

// MethodCallNode is $base.method(args) or $base?.method(args). The base is
// child 0; arguments follow.
type MethodCallNode struct {
	parentBase
	MethodName string
	nullSafe   bool
}

func NewMethodCall(pos lexer.Position, baseExpr Node, method string, args []Node, nullSafe bool) *MethodCallNode {
	n := &MethodCallNode{MethodName: method, nullSafe: nullSafe}
	n.pos = pos
	n.init(n)
	n.addChildren(baseExpr)
	n.addChildren(args...)
	return n
}

func (n *MethodCallNode) Kind() Kind         { return KindMethodCall }
func (n *MethodCallNode) Base() Node         { return n.Child(0) }
func (n *MethodCallNode) NullSafe() bool     { return n.nullSafe }
func (n *MethodCallNode) setNullSafe(v bool) { n.nullSafe = v }

// Args returns the argument children (everything after the base).
func (n *MethodCallNode) Args() []Node {
	return append([]Node(nil), n.children[1:]...)
}

func (n *MethodCallNode) ToSourceString() string {
	marker := "."
	if n.nullSafe {
		marker = "?."
	}
	return chainBaseSource(n.Base()) + marker + n.MethodName + "(" + joinSources(n.children[1:], ", ") + ")"
}

func (n *MethodCallNode) Copy(cs *CopyState) Node {
	cp := &MethodCallNode{MethodName: n.MethodName, nullSafe: n.nullSafe}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}
