package exprtree

// Associativity describes how operators of equal precedence group.
type Associativity int

const (
	Left Associativity = iota
	Right
)

// Operator describes one entry in the operator table: surface token, arity,
// precedence and associativity. The table is an immutable process-wide
// constant, safe for concurrent reads.
//
// Precedence runs from 1 (loosest: ternary and null-coalescing) to 9
// (tightest operator: the postfix non-null assertion). Leaves and access
// chains bind tighter than any operator; see MaxPrecedence.
type Operator struct {
	Name       string
	Token      string
	Arity      int
	Precedence int
	Assoc      Associativity
}

var (
	OpConditional    = &Operator{Name: "CONDITIONAL", Token: "? :", Arity: 3, Precedence: 1, Assoc: Right}
	OpNullCoalescing = &Operator{Name: "NULL_COALESCING", Token: "?:", Arity: 2, Precedence: 1, Assoc: Right}
	OpOr             = &Operator{Name: "OR", Token: "or", Arity: 2, Precedence: 2, Assoc: Left}
	OpAnd            = &Operator{Name: "AND", Token: "and", Arity: 2, Precedence: 3, Assoc: Left}
	OpEquals         = &Operator{Name: "EQUALS", Token: "==", Arity: 2, Precedence: 4, Assoc: Left}
	OpNotEquals      = &Operator{Name: "NOT_EQUALS", Token: "!=", Arity: 2, Precedence: 4, Assoc: Left}
	OpLess           = &Operator{Name: "LESS_THAN", Token: "<", Arity: 2, Precedence: 5, Assoc: Left}
	OpGreater        = &Operator{Name: "GREATER_THAN", Token: ">", Arity: 2, Precedence: 5, Assoc: Left}
	OpLessEq         = &Operator{Name: "LESS_THAN_OR_EQUAL", Token: "<=", Arity: 2, Precedence: 5, Assoc: Left}
	OpGreaterEq      = &Operator{Name: "GREATER_THAN_OR_EQUAL", Token: ">=", Arity: 2, Precedence: 5, Assoc: Left}
	OpPlus           = &Operator{Name: "PLUS", Token: "+", Arity: 2, Precedence: 6, Assoc: Left}
	OpMinus          = &Operator{Name: "MINUS", Token: "-", Arity: 2, Precedence: 6, Assoc: Left}
	OpTimes          = &Operator{Name: "TIMES", Token: "*", Arity: 2, Precedence: 7, Assoc: Left}
	OpDivide         = &Operator{Name: "DIVIDE_BY", Token: "/", Arity: 2, Precedence: 7, Assoc: Left}
	OpMod            = &Operator{Name: "MOD", Token: "%", Arity: 2, Precedence: 7, Assoc: Left}
	OpNegative       = &Operator{Name: "NEGATIVE", Token: "-", Arity: 1, Precedence: 8, Assoc: Right}
	OpNot            = &Operator{Name: "NOT", Token: "not", Arity: 1, Precedence: 8, Assoc: Right}
	OpAssertNonNull  = &Operator{Name: "ASSERT_NON_NULL", Token: "!", Arity: 1, Precedence: 9, Assoc: Left}
)

// Operators lists every operator in the table.
var Operators = []*Operator{
	OpConditional, OpNullCoalescing, OpOr, OpAnd,
	OpEquals, OpNotEquals,
	OpLess, OpGreater, OpLessEq, OpGreaterEq,
	OpPlus, OpMinus,
	OpTimes, OpDivide, OpMod,
	OpNegative, OpNot, OpAssertNonNull,
}

// MaxPrecedence is the effective precedence of leaves, literals and access
// chains: higher than any operator, so they never need parentheses.
const MaxPrecedence = 1 << 30

// PrecedenceOf returns the binding strength of a node when it appears as an
// operand: the operator's precedence for operator nodes, MaxPrecedence for
// everything else.
func PrecedenceOf(n Node) int {
	if op, ok := n.(*OperatorNode); ok {
		return op.Op.Precedence
	}
	return MaxPrecedence
}
