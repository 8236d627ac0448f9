package exprtree

import (
	"fmt"
	"strings"

	"github.com/sable-lang/sable/pkgs/lexer"
)

// NullSafeAccessNode is the desugared form of a null-safe access chain. It
// has exactly two children: the base expression, evaluated and tested for
// null, and the guarded access subtree, which is applied only when the base
// is non-null. Inside the guarded subtree the position where the base value
// flows in is held by a placeholder: a GroupNode wrapping a NullNode,
// printed as (null).
//
// A chain with several null-safe links desugars to nested
// NullSafeAccessNodes: each guarded subtree ends in another
// NullSafeAccessNode carrying the remainder of the chain.
type NullSafeAccessNode struct {
	parentBase
}

// NewNullSafeAccessNode builds a guard node from an evaluated base and a
// guarded access subtree. Most callers should use DesugarNullSafe instead.
func NewNullSafeAccessNode(pos lexer.Position, baseExpr, dataAccess Node) *NullSafeAccessNode {
	n := &NullSafeAccessNode{}
	n.pos = pos
	n.init(n)
	n.addChildren(baseExpr, dataAccess)
	return n
}

func (n *NullSafeAccessNode) Kind() Kind { return KindNullSafeAccess }

// Base returns the always-evaluated receiver expression.
func (n *NullSafeAccessNode) Base() Node { return n.Child(0) }

// DataAccess returns the guarded access subtree.
func (n *NullSafeAccessNode) DataAccess() Node { return n.Child(1) }

// ToSourceString reproduces the original surface chain: the guarded link
// anchored on each placeholder prints with its null-safe marker (?. or ?[)
// even though the desugared link itself is no longer flagged.
func (n *NullSafeAccessNode) ToSourceString() string {
	var sb strings.Builder
	sb.WriteString(chainBaseSource(n.Base()))
	writeNullSafeSuffix(&sb, n.DataAccess())
	return sb.String()
}

func writeNullSafeSuffix(sb *strings.Builder, node Node) {
	switch a := node.(type) {
	case *NullSafeAccessNode:
		writeNullSafeSuffix(sb, a.Base())
		writeNullSafeSuffix(sb, a.DataAccess())
	case *FieldAccessNode:
		writeNullSafeSuffix(sb, a.Base())
		if IsPlaceholder(a.Base()) {
			sb.WriteString("?.")
		} else {
			sb.WriteString(".")
		}
		sb.WriteString(a.FieldName)
	case *ItemAccessNode:
		writeNullSafeSuffix(sb, a.Base())
		if IsPlaceholder(a.Base()) {
			sb.WriteString("?[")
		} else {
			sb.WriteString("[")
		}
		sb.WriteString(a.Key().ToSourceString())
		sb.WriteString("]")
	case *MethodCallNode:
		writeNullSafeSuffix(sb, a.Base())
		if IsPlaceholder(a.Base()) {
			sb.WriteString("?.")
		} else {
			sb.WriteString(".")
		}
		sb.WriteString(a.MethodName)
		sb.WriteString("(")
		sb.WriteString(joinSources(a.children[1:], ", "))
		sb.WriteString(")")
	case *OperatorNode:
		if a.Op == OpAssertNonNull {
			writeNullSafeSuffix(sb, a.Child(0))
			sb.WriteString("!")
			return
		}
		sb.WriteString(a.ToSourceString())
	case *GroupNode:
		if IsPlaceholder(a) {
			return // consumed by the enclosing link's marker
		}
		sb.WriteString(a.ToSourceString())
	default:
		sb.WriteString(node.ToSourceString())
	}
}

func (n *NullSafeAccessNode) Copy(cs *CopyState) Node {
	cp := &NullSafeAccessNode{}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

// NewPlaceholder returns the guard placeholder: a group wrapping null.
func NewPlaceholder(pos lexer.Position) *GroupNode {
	return NewGroup(pos, NewNull(pos))
}

// IsPlaceholder reports whether n is a guard placeholder.
func IsPlaceholder(n Node) bool {
	g, ok := n.(*GroupNode)
	return ok && g.NumChildren() == 1 && g.Child(0).Kind() == KindNull
}

// chainBase returns the receiver of a chain link (field, item or method
// access, or a non-null assertion), and whether n is such a link.
func chainBase(n Node) (Node, bool) {
	switch l := n.(type) {
	case *FieldAccessNode:
		return l.Base(), true
	case *ItemAccessNode:
		return l.Base(), true
	case *MethodCallNode:
		return l.Base(), true
	case *OperatorNode:
		if l.Op == OpAssertNonNull {
			return l.Child(0), true
		}
	}
	return nil, false
}

// deepestNullSafeLink finds the null-safe link closest to the chain's base,
// i.e. the first null-safe operator in source order.
func deepestNullSafeLink(root Node) AccessNode {
	var found AccessNode
	cur := root
	for {
		if acc, ok := cur.(AccessNode); ok && acc.NullSafe() {
			found = acc
		}
		next, ok := chainBase(cur)
		if !ok {
			return found
		}
		cur = next
	}
}

// DesugarNullSafe rewrites an access chain containing null-safe links into
// nested NullSafeAccessNodes. The chain is split at the first null-safe
// link: everything below it becomes the guard's base, and the remainder is
// rebased onto a placeholder and processed recursively for further
// null-safe links. Chains without null-safe links are returned unchanged.
//
// The rewrite mutates the chain in place; callers use the returned root.
func DesugarNullSafe(root Node) Node {
	link := deepestNullSafeLink(root)
	if link == nil {
		return root
	}
	prefix := link.Base()
	link.ReplaceChild(0, NewPlaceholder(prefix.Position()))
	link.setNullSafe(false)
	suffix := DesugarNullSafe(root)
	return NewNullSafeAccessNode(root.Position(), prefix, suffix)
}

// spliceAtPlaceholder walks the chain rooted at node to its placeholder
// guard, replaces the placeholder with newBase, and sets the guarded link's
// null-safety flag. Returns node.
func spliceAtPlaceholder(node, newBase Node, nullSafe bool) Node {
	cur := node
	for {
		b, ok := chainBase(cur)
		if !ok {
			return node
		}
		if IsPlaceholder(b) {
			cur.(Parent).ReplaceChild(0, newBase)
			if acc, ok := cur.(AccessNode); ok {
				acc.setNullSafe(nullSafe)
			}
			return node
		}
		cur = b
	}
}

// AsAccessChain resugars the guard tree back into a plain access chain with
// null-safe flags restored on the links that were guarded. The receiver is
// not modified; the result is a fresh tree.
func (n *NullSafeAccessNode) AsAccessChain() Node {
	cs := NewCopyState()
	return attachChain(n.DataAccess().Copy(cs), n.Base().Copy(cs))
}

func attachChain(node, newBase Node) Node {
	if nsa, ok := node.(*NullSafeAccessNode); ok {
		merged := attachChain(nsa.Base(), newBase)
		return attachChain(nsa.DataAccess(), merged)
	}
	return spliceAtPlaceholder(node, newBase, true)
}

// AsNullSafeBaseList returns the receiver expressions that are null-checked
// when evaluating this chain, from the innermost base outward. Each entry is
// a fresh non-null-safe chain: for $foo?.a()?.b() the result is [$foo,
// $foo.a(), $foo.a().b()].
func (n *NullSafeAccessNode) AsNullSafeBaseList() []Node {
	bases := []Node{n.Base().Copy(NewCopyState())}
	da := n.DataAccess()
	for {
		seg := da
		var rest Node
		if nsa, ok := da.(*NullSafeAccessNode); ok {
			seg, rest = nsa.Base(), nsa.DataAccess()
		}
		prev := bases[len(bases)-1].Copy(NewCopyState())
		next := spliceAtPlaceholder(seg.Copy(NewCopyState()), prev, false)
		bases = append(bases, next)
		if rest == nil {
			return bases
		}
		da = rest
	}
}

// StructuralError reports a tree shape the desugaring or IR-build phase
// cannot process.
type StructuralError struct {
	Pos     lexer.Position
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// CheckNullSafeChain verifies that every NullSafeAccessNode in the tree has
// a guarded subtree anchored on a placeholder. IR building relies on this
// shape to route the guarded value.
func CheckNullSafeChain(root Node) error {
	if nsa, ok := root.(*NullSafeAccessNode); ok {
		if !hasPlaceholder(nsa.DataAccess()) {
			return &StructuralError{Pos: nsa.Position(), Message: "null-safe access without a guard placeholder"}
		}
	}
	if p, ok := root.(Parent); ok {
		for _, child := range p.Children() {
			if err := CheckNullSafeChain(child); err != nil {
				return err
			}
		}
	}
	return nil
}

func hasPlaceholder(node Node) bool {
	if nsa, ok := node.(*NullSafeAccessNode); ok {
		node = nsa.Base()
	}
	cur := node
	for {
		b, ok := chainBase(cur)
		if !ok {
			return IsPlaceholder(cur)
		}
		if IsPlaceholder(b) {
			return true
		}
		cur = b
	}
}
