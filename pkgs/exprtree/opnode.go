package exprtree

import (
	"fmt"
	"strings"

	"github.com/sable-lang/sable/pkgs/lexer"
)

// OperatorNode applies an operator from the table to its operand children.
type OperatorNode struct {
	parentBase
	Op *Operator
}

// NewOperatorNode builds an operator application. The operand count must
// match the operator's arity.
func NewOperatorNode(pos lexer.Position, op *Operator, operands ...Node) *OperatorNode {
	if len(operands) != op.Arity {
		panic(fmt.Sprintf("exprtree: operator %s requires %d operands, got %d", op.Name, op.Arity, len(operands)))
	}
	n := &OperatorNode{Op: op}
	n.pos = pos
	n.init(n)
	n.addChildren(operands...)
	return n
}

func (n *OperatorNode) Kind() Kind { return KindOperator }

// ToSourceString reconstructs the expression with minimal parentheses: an
// operand is wrapped only if its precedence is lower than the operator's, or
// equal on the side where associativity would regroup it.
func (n *OperatorNode) ToSourceString() string {
	switch n.Op {
	case OpNegative:
		return "-" + n.operandSource(0)
	case OpNot:
		return "not " + n.operandSource(0)
	case OpAssertNonNull:
		return n.operandSource(0) + "!"
	case OpConditional:
		return n.operandSource(0) + " ? " + n.operandSource(1) + " : " + n.operandSource(2)
	default:
		return n.operandSource(0) + " " + n.Op.Token + " " + n.operandSource(1)
	}
}

func (n *OperatorNode) operandSource(i int) string {
	child := n.Child(i)
	src := child.ToSourceString()
	if n.needsParens(i, PrecedenceOf(child)) {
		return "(" + src + ")"
	}
	return src
}

func (n *OperatorNode) needsParens(i, childPrec int) bool {
	p := n.Op.Precedence
	switch {
	case n.Op.Arity == 1:
		return childPrec < p
	case n.Op == OpConditional:
		// Only the condition slot is ambiguous; ? and : delimit the rest.
		if i == 0 {
			return childPrec <= p
		}
		return childPrec < p
	default:
		// The operand on the associative side reassociates naturally at
		// equal precedence; the other side needs parens to keep its shape.
		strict := (i == 0) == (n.Op.Assoc == Left)
		if strict {
			return childPrec < p
		}
		return childPrec <= p
	}
}

func (n *OperatorNode) Copy(cs *CopyState) Node {
	cp := &OperatorNode{Op: n.Op}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

// DebugString renders a fully parenthesized form of the expression: every
// operand that is itself an operator application is wrapped, and operator
// syntax elements are joined with single spaces. Useful in tests and
// diagnostics where grouping must be unambiguous at a glance.
func DebugString(n Node) string {
	op, ok := n.(*OperatorNode)
	if !ok {
		return n.ToSourceString()
	}
	operand := func(i int) string {
		child := op.Child(i)
		s := DebugString(child)
		if _, isOp := child.(*OperatorNode); isOp {
			s = "(" + s + ")"
		}
		return s
	}
	switch op.Op {
	case OpNegative, OpNot:
		return op.Op.Token + " " + operand(0)
	case OpAssertNonNull:
		return operand(0) + "!"
	case OpConditional:
		return operand(0) + " ? " + operand(1) + " : " + operand(2)
	default:
		return operand(0) + " " + op.Op.Token + " " + operand(1)
	}
}

// AstString renders the tree one node per line with two-space indentation,
// each line showing the node kind and its reconstructed source. Used by
// diagnostic tooling.
func AstString(n Node) string {
	var sb strings.Builder
	writeAstString(&sb, n, 0)
	return sb.String()
}

func writeAstString(sb *strings.Builder, n Node, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
	if op, ok := n.(*OperatorNode); ok {
		sb.WriteString(op.Op.Name + "_OP_NODE")
	} else {
		sb.WriteString(n.Kind().String() + "_NODE")
	}
	sb.WriteString(": ")
	sb.WriteString(n.ToSourceString())
	sb.WriteString("\n")
	if p, ok := n.(Parent); ok {
		for _, child := range p.Children() {
			writeAstString(sb, child, indent+1)
		}
	}
}
