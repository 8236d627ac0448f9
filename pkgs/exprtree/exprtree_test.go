package exprtree

import (
	"testing"

	"github.com/sable-lang/sable/pkgs/lexer"
)

var noPos lexer.Position

func varRef(name string) *VarRefNode {
	return NewVarRef(noPos, name, false, false)
}

func TestToSourceStringMinimalParens(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{
			"left assoc addition needs no parens",
			NewOperatorNode(noPos, OpPlus,
				NewOperatorNode(noPos, OpPlus, NewInteger(noPos, 1), NewInteger(noPos, 2)),
				NewInteger(noPos, 3)),
			"1 + 2 + 3",
		},
		{
			"right-nested addition keeps parens",
			NewOperatorNode(noPos, OpPlus,
				NewInteger(noPos, 1),
				NewOperatorNode(noPos, OpPlus, NewInteger(noPos, 2), NewInteger(noPos, 3))),
			"1 + (2 + 3)",
		},
		{
			"lower precedence child is wrapped",
			NewOperatorNode(noPos, OpTimes,
				NewOperatorNode(noPos, OpPlus, NewInteger(noPos, 1), NewInteger(noPos, 2)),
				NewInteger(noPos, 3)),
			"(1 + 2) * 3",
		},
		{
			"right assoc coalescing needs no parens",
			NewOperatorNode(noPos, OpNullCoalescing,
				varRef("a"),
				NewOperatorNode(noPos, OpNullCoalescing, varRef("b"), varRef("c"))),
			"$a ?: $b ?: $c",
		},
		{
			"left-nested coalescing keeps parens",
			NewOperatorNode(noPos, OpNullCoalescing,
				NewOperatorNode(noPos, OpNullCoalescing, varRef("a"), varRef("b")),
				varRef("c")),
			"($a ?: $b) ?: $c",
		},
		{
			"ternary with operator children",
			NewOperatorNode(noPos, OpConditional,
				NewOperatorNode(noPos, OpNot, varRef("x")),
				NewOperatorNode(noPos, OpNotEquals, varRef("x"), varRef("x")),
				NewOperatorNode(noPos, OpTimes, varRef("x"), varRef("x"))),
			"not $x ? $x != $x : $x * $x",
		},
		{
			"nested ternary condition is wrapped",
			NewOperatorNode(noPos, OpConditional,
				NewOperatorNode(noPos, OpConditional, varRef("a"), varRef("b"), varRef("c")),
				varRef("d"),
				varRef("e")),
			"($a ? $b : $c) ? $d : $e",
		},
		{
			"negation of product is wrapped",
			NewOperatorNode(noPos, OpNegative,
				NewOperatorNode(noPos, OpTimes, NewInteger(noPos, 2), NewInteger(noPos, 3))),
			"-(2 * 3)",
		},
		{
			"field access base prints bare",
			NewFieldAccess(noPos, varRef("a"), "b", false),
			"$a.b",
		},
		{
			"null safe item access",
			NewItemAccess(noPos, varRef("a"), NewInteger(noPos, 0), true),
			"$a?[0]",
		},
		{
			"assert non-null in chain",
			NewFieldAccess(noPos, NewOperatorNode(noPos, OpAssertNonNull, varRef("foo")), "bar", false),
			"$foo!.bar",
		},
		{
			"operator base of a field access keeps parens",
			NewFieldAccess(noPos, NewOperatorNode(noPos, OpNullCoalescing, varRef("a"), varRef("b")), "c", false),
			"($a ?: $b).c",
		},
		{
			"operator base of an item access keeps parens",
			NewItemAccess(noPos, NewOperatorNode(noPos, OpPlus, NewInteger(noPos, 1), varRef("a")), NewInteger(noPos, 0), false),
			"(1 + $a)[0]",
		},
		{
			"operator base of a method call keeps parens",
			NewMethodCall(noPos, NewOperatorNode(noPos, OpNegative, varRef("a")), "abs", nil, false),
			"(-$a).abs()",
		},
		{
			"string literal re-escaped",
			NewString(noPos, "a'b\nc"),
			`'a\'b\nc'`,
		},
		{
			"float keeps decimal point",
			NewFloat(noPos, 1),
			"1.0",
		},
		{
			"injected data ref",
			NewVarRef(noPos, "aaa", true, false),
			"$ij.aaa",
		},
		{
			"map literal",
			NewMapLiteral(noPos, []Node{NewString(noPos, "a"), NewInteger(noPos, 1)}),
			"map('a': 1)",
		},
		{
			"record literal",
			NewRecordLiteral(noPos, []string{"aaa"}, []Node{NewBoolean(noPos, true)}),
			"record(aaa: true)",
		},
	}
	for _, tt := range tests {
		if got := tt.node.ToSourceString(); got != tt.want {
			t.Errorf("%s: ToSourceString() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDebugStringFullParens(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{
			NewOperatorNode(noPos, OpPlus,
				NewOperatorNode(noPos, OpPlus, NewInteger(noPos, 1), NewInteger(noPos, 2)),
				NewInteger(noPos, 3)),
			"(1 + 2) + 3",
		},
		{
			NewOperatorNode(noPos, OpNullCoalescing,
				varRef("a"),
				NewOperatorNode(noPos, OpNullCoalescing, varRef("b"), varRef("c"))),
			"$a ?: ($b ?: $c)",
		},
		{
			NewOperatorNode(noPos, OpNegative, NewOperatorNode(noPos, OpNegative, varRef("a"))),
			"- (- $a)",
		},
		{
			NewOperatorNode(noPos, OpConditional,
				NewOperatorNode(noPos, OpGreater,
					NewOperatorNode(noPos, OpNegative, NewFieldAccess(noPos, varRef("a"), "b", false)),
					NewInteger(noPos, 0)),
				NewFieldAccess(noPos, varRef("c"), "d", false),
				varRef("c")),
			"((- $a.b) > 0) ? $c.d : $c",
		},
	}
	for _, tt := range tests {
		if got := DebugString(tt.node); got != tt.want {
			t.Errorf("DebugString() = %q, want %q", got, tt.want)
		}
	}
}

func TestReplaceChild(t *testing.T) {
	sum := NewOperatorNode(noPos, OpPlus, NewInteger(noPos, 1), NewInteger(noPos, 2))
	old := sum.Child(1)
	repl := NewInteger(noPos, 5)
	sum.ReplaceChild(1, repl)

	if sum.ToSourceString() != "1 + 5" {
		t.Errorf("after ReplaceChild: %q", sum.ToSourceString())
	}
	if repl.Parent() != Parent(sum) {
		t.Error("replacement child not reparented")
	}
	if old.Parent() != nil {
		t.Error("old child still has a parent")
	}
}

func TestCopyProducesDisjointTree(t *testing.T) {
	original := NewOperatorNode(noPos, OpPlus,
		NewFieldAccess(noPos, varRef("a"), "b", true),
		NewListLiteral(noPos, []Node{NewInteger(noPos, 1), NewString(noPos, "x")}))

	cs := NewCopyState()
	cp := original.Copy(cs).(*OperatorNode)

	if !Equivalent(original, cp) {
		t.Fatal("copy is not equivalent to the original")
	}
	if cp.Parent() != nil {
		t.Error("copy should be orphaned")
	}
	if cp.Child(0) == original.Child(0) {
		t.Error("copy aliases the original's children")
	}
	if mapped, ok := cs.Copied(original.Child(0)); !ok || mapped != cp.Child(0) {
		t.Error("CopyState did not record the child mapping")
	}

	// Mutating the copy must not affect the original.
	cp.ReplaceChild(1, NewInteger(noPos, 9))
	if original.ToSourceString() != `$a?.b + [1, 'x']` {
		t.Errorf("original changed after mutating copy: %q", original.ToSourceString())
	}
}

func TestEquivalenceLaws(t *testing.T) {
	a := NewOperatorNode(noPos, OpPlus, varRef("x"), NewInteger(noPos, 1))
	b := NewOperatorNode(noPos, OpPlus, varRef("x"), NewInteger(noPos, 1))
	c := NewOperatorNode(noPos, OpPlus, varRef("x"), NewInteger(noPos, 2))

	if !Equivalent(a, a) {
		t.Error("not reflexive")
	}
	if !Equivalent(a, b) || !Equivalent(b, a) {
		t.Error("equal trees should be equivalent both ways")
	}
	if a == b {
		t.Error("distinct constructions should be distinct nodes")
	}
	if Equivalent(a, c) {
		t.Error("different trees compare equivalent")
	}
	if Hash(a) != Hash(b) {
		t.Error("equivalent trees must hash equally")
	}
}

func TestMapOrderInsensitive(t *testing.T) {
	m1 := NewMapLiteral(noPos, []Node{
		NewString(noPos, "a"), NewFloat(noPos, 1.2),
		NewString(noPos, "b"), NewBoolean(noPos, true),
	})
	m2 := NewMapLiteral(noPos, []Node{
		NewString(noPos, "b"), NewBoolean(noPos, true),
		NewString(noPos, "a"), NewFloat(noPos, 1.2),
	})
	if !Equivalent(m1, m2) {
		t.Error("map literals should compare order-insensitively")
	}
	if Hash(m1) != Hash(m2) {
		t.Error("map literal hashes should be order-insensitive")
	}

	l1 := NewListLiteral(noPos, []Node{NewString(noPos, "a"), NewFloat(noPos, 1.2)})
	l2 := NewListLiteral(noPos, []Node{NewFloat(noPos, 1.2), NewString(noPos, "a")})
	if Equivalent(l1, l2) {
		t.Error("list literals must compare in order")
	}
}

func TestNullSafetyDistinguishesAccesses(t *testing.T) {
	plain := NewFieldAccess(noPos, varRef("rec"), "a", false)
	safe := NewFieldAccess(noPos, varRef("rec"), "a", true)
	if Equivalent(plain, safe) {
		t.Error("$rec.a and $rec?.a must not be equivalent")
	}

	ij := NewVarRef(noPos, "a", true, false)
	ijSafe := NewVarRef(noPos, "a", true, true)
	if Equivalent(ij, ijSafe) {
		t.Error("$ij.a and $ij?.a must not be equivalent")
	}
}

func TestFunctionEquivalenceIgnoresPurity(t *testing.T) {
	// randomInt is not pure, so two calls can return different values, but
	// structural equivalence deliberately does not know that.
	f1 := NewFunction(noPos, "randomInt", []Node{NewInteger(noPos, 10)})
	f2 := NewFunction(noPos, "randomInt", []Node{NewInteger(noPos, 10)})
	if !Equivalent(f1, f2) {
		t.Error("identical function calls should be structurally equivalent")
	}
}

func TestOperatorTable(t *testing.T) {
	for _, op := range Operators {
		if op.Arity < 1 || op.Arity > 3 {
			t.Errorf("operator %s has arity %d", op.Name, op.Arity)
		}
		if op.Precedence < 1 || op.Precedence > 9 {
			t.Errorf("operator %s has precedence %d", op.Name, op.Precedence)
		}
	}
	if OpNegative.Precedence <= OpTimes.Precedence {
		t.Error("unary minus must bind tighter than multiply")
	}
	if OpConditional.Assoc != Right || OpNullCoalescing.Assoc != Right {
		t.Error("conditional operators must be right-associative")
	}
}
