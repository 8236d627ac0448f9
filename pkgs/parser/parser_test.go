package parser

import (
	"strings"
	"testing"

	"github.com/sable-lang/sable/pkgs/exprtree"
)

func parseOrFatal(t *testing.T, input string) exprtree.Node {
	t.Helper()
	node, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return node
}

func TestRecognizesValidExpressions(t *testing.T) {
	valid := []string{
		// variables and data references
		"$aaa", "$aaa.bbb", "$aaa.0.bbb.12", "$aaa[0].bbb['ccc']",
		"$aaa?.bbb", "$aaa?[0]?.bbb", "$ij.aaa", "$ij?.bbb",
		"$foo!", "$foo!.bar", "$foo?.bar!",
		// globals
		"aaa", "aaa.bbb.CCC",
		// primitives
		"null", "true", "false", "26", "0xCAFE", "0.5", "3e3", "6.02e23",
		"''", "'abc'", `'\''`, `'©'`,
		// operators
		"-$a", "not true", "$a + $b", "$a - 1", "2 * 3", "4 / 5", "6 % 2",
		"$a < $b", "$a <= $b", "$a > $b", "$a >= $b", "$a == null", "$a != $b",
		"$a and $b", "$a or $b", "$a ?: $b", "$a ? $b : $c",
		"( 4- $b *$c )",
		// literals
		"[]", "[1, 'two', $three]", "[:]", "['a': 1, 'b': 2]",
		"map()", "map('a': 1.2, 'b': true)", "record(aaa: 1, bbb: 'two')",
		// calls
		"length($list)", "round(3.14159, 2)", "proto.Type(field: 1)",
		"not $x ? $x != $x : $x * $x",
	}
	for _, input := range valid {
		if _, err := Parse(input); err != nil {
			t.Errorf("Parse(%q) failed: %v", input, err)
		}
	}
}

func TestRejectsInvalidExpressions(t *testing.T) {
	invalid := []string{
		"", "$", "$1", "$ aaa", "$ij", "$ij[4]",
		"+1", "!$a", "$a = 999",
		"0.", ".0", "-20.", "6.02E23", "0x1a2b",
		`'\xA9'`, `'\077'`, `"double"`,
		"$a &&", "$a && $b", "$a || $b",
		"1 +", "(1 + 2", "[1, 2", "map('a' 1)", "record(1: 2)",
		"2 3", "$a $b", "$aaa.",
	}
	for _, input := range invalid {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestParseStructure(t *testing.T) {
	// Precedence: -2 * 3 is (-2) * 3.
	node := parseOrFatal(t, "-2*3").(*exprtree.OperatorNode)
	if node.Op != exprtree.OpTimes {
		t.Fatalf("root op = %s", node.Op.Name)
	}
	neg, ok := node.Child(0).(*exprtree.OperatorNode)
	if !ok || neg.Op != exprtree.OpNegative {
		t.Errorf("left child = %T, want unary negation", node.Child(0))
	}

	// Left associativity.
	node = parseOrFatal(t, "1 + 2 + 3").(*exprtree.OperatorNode)
	if _, ok := node.Child(0).(*exprtree.OperatorNode); !ok {
		t.Error("1 + 2 + 3 should nest to the left")
	}
	if got := exprtree.DebugString(node); got != "(1 + 2) + 3" {
		t.Errorf("DebugString = %q", got)
	}

	// Right associativity of null coalescing.
	node = parseOrFatal(t, "$a ?: $b ?: $c").(*exprtree.OperatorNode)
	if got := exprtree.DebugString(node); got != "$a ?: ($b ?: $c)" {
		t.Errorf("DebugString = %q", got)
	}

	// Stacked unary.
	node = parseOrFatal(t, "- -$a").(*exprtree.OperatorNode)
	if got := exprtree.DebugString(node); got != "- (- $a)" {
		t.Errorf("DebugString = %q", got)
	}

	// Mixed chain from the debug-printing contract.
	node = parseOrFatal(t, "-$a.b > 0 ? $c.d : $c").(*exprtree.OperatorNode)
	if got := exprtree.DebugString(node); got != "((- $a.b) > 0) ? $c.d : $c" {
		t.Errorf("DebugString = %q", got)
	}

	// Grouping parens shape the tree without leaving a node.
	node = parseOrFatal(t, "(1 + 2) * 3").(*exprtree.OperatorNode)
	if node.Op != exprtree.OpTimes {
		t.Fatalf("root op = %s", node.Op.Name)
	}
	if plus, ok := node.Child(0).(*exprtree.OperatorNode); !ok || plus.Op != exprtree.OpPlus {
		t.Errorf("grouped child = %T", node.Child(0))
	}
}

func TestNegativeLiteralIsUnaryNode(t *testing.T) {
	node := parseOrFatal(t, "-26").(*exprtree.OperatorNode)
	if node.Op != exprtree.OpNegative {
		t.Fatalf("root = %s, want NEGATIVE", node.Op.Name)
	}
	lit, ok := node.Child(0).(*exprtree.IntegerNode)
	if !ok || lit.Value != 26 {
		t.Errorf("operand = %#v, want integer 26", node.Child(0))
	}
}

func TestInjectedDataRefs(t *testing.T) {
	ref := parseOrFatal(t, "$ij.aaa").(*exprtree.VarRefNode)
	if !ref.Injected || ref.Name != "aaa" || ref.NullSafeInjected {
		t.Errorf("ref = %+v", ref)
	}
	safe := parseOrFatal(t, "$ij?.bbb").(*exprtree.VarRefNode)
	if !safe.Injected || !safe.NullSafeInjected {
		t.Errorf("ref = %+v", safe)
	}
}

func TestEndToEndTernary(t *testing.T) {
	const input = "not $x ? $x != $x : $x * $x"
	node := parseOrFatal(t, input).(*exprtree.OperatorNode)
	if node.Op != exprtree.OpConditional {
		t.Fatalf("root = %s, want CONDITIONAL", node.Op.Name)
	}
	if cond := node.Child(0).(*exprtree.OperatorNode); cond.Op != exprtree.OpNot {
		t.Errorf("condition op = %s", cond.Op.Name)
	}
	if cons := node.Child(1).(*exprtree.OperatorNode); cons.Op != exprtree.OpNotEquals {
		t.Errorf("consequent op = %s", cons.Op.Name)
	}
	if alt := node.Child(2).(*exprtree.OperatorNode); alt.Op != exprtree.OpTimes {
		t.Errorf("alternate op = %s", alt.Op.Name)
	}
	if got := node.ToSourceString(); got != input {
		t.Errorf("ToSourceString() = %q, want %q", got, input)
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{
		"$aaa.bbb[26].ccc",
		"$aaa?.bbb?[0]",
		"not $x ? $x != $x : $x * $x",
		"1 + 2 + 3",
		"1 + (2 + 3)",
		"$a ?: $b ?: $c",
		"-2 * 3",
		"- -$a",
		"map('a': 1.2, 'b': true)",
		"record(aaa: [1, 2], bbb: 'x')",
		"length($list) + 1",
		"proto.Type(field: $v)",
		"$foo?.bar!.baz",
		"aaa.bbb.CCC == null",
	}
	for _, input := range inputs {
		first := parseOrFatal(t, input)
		printed := first.ToSourceString()
		second, err := Parse(printed)
		if err != nil {
			t.Errorf("reparse of %q (printed %q) failed: %v", input, printed, err)
			continue
		}
		if !exprtree.Equivalent(first, second) {
			t.Errorf("round trip of %q changed structure: printed %q", input, printed)
		}
	}
}

func TestTwoParsesAreEquivalentNotIdentical(t *testing.T) {
	a := parseOrFatal(t, "1")
	b := parseOrFatal(t, "1")
	if a == b {
		t.Fatal("parses returned the same node")
	}
	if !exprtree.Equivalent(a, b) {
		t.Error("two parses of the same literal should be equivalent")
	}
	if exprtree.Hash(a) != exprtree.Hash(b) {
		t.Error("equivalent parses should hash equally")
	}
}

func TestMapKeyOrderIrrelevant(t *testing.T) {
	a := parseOrFatal(t, "map('a': 1.2, 'b': true)")
	b := parseOrFatal(t, "map('b': true, 'a': 1.2)")
	if !exprtree.Equivalent(a, b) {
		t.Error("map literal key order should not matter")
	}
	l1 := parseOrFatal(t, "['a', 1.2]")
	l2 := parseOrFatal(t, "[1.2, 'a']")
	if exprtree.Equivalent(l1, l2) {
		t.Error("list order must matter")
	}
}

func TestNullSafetyNotEquivalent(t *testing.T) {
	plain := parseOrFatal(t, "$rec.a")
	safe := parseOrFatal(t, "$rec?.a")
	if exprtree.Equivalent(plain, safe) {
		t.Error("$rec.a and $rec?.a must differ")
	}

	// The null-safe injected form keeps a runtime guard, so it is distinct
	// from the plain injected reference.
	ij := parseOrFatal(t, "$ij.a")
	ijSafe := parseOrFatal(t, "$ij?.a")
	if exprtree.Equivalent(ij, ijSafe) {
		t.Error("$ij.a and $ij?.a must differ")
	}
	again := parseOrFatal(t, "$ij?.a")
	if !exprtree.Equivalent(ijSafe, again) {
		t.Error("two parses of $ij?.a should be equivalent")
	}
	if exprtree.Hash(ijSafe) != exprtree.Hash(again) {
		t.Error("equivalent injected refs should hash equally")
	}
}

func TestTrailingCommaInBracketLiterals(t *testing.T) {
	pairs := [][2]string{
		{"[1,]", "[1]"},
		{"[1, 2,]", "[1, 2]"},
		{"['a': 1,]", "['a': 1]"},
		{"['a': 1, 'b': 2,]", "['a': 1, 'b': 2]"},
	}
	for _, pair := range pairs {
		trailing := parseOrFatal(t, pair[0])
		plain := parseOrFatal(t, pair[1])
		if !exprtree.Equivalent(trailing, plain) {
			t.Errorf("%q should parse like %q", pair[0], pair[1])
		}
		reparsed, err := Parse(trailing.ToSourceString())
		if err != nil {
			t.Errorf("reparse of %q failed: %v", pair[0], err)
		} else if !exprtree.Equivalent(trailing, reparsed) {
			t.Errorf("round trip of %q changed structure", pair[0])
		}
	}
	for _, input := range []string{"[,]", "[1,,]", "['a': 1,,]", "[1, 2,"} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestGroupedChainBaseKeepsParens(t *testing.T) {
	// A grouped receiver of lower precedence than the chain must print with
	// its parentheses restored, or the text would reparse differently.
	exact := map[string]string{
		"($a ?: $b).c":  "($a ?: $b).c",
		"(1 + $a).b":    "(1 + $a).b",
		"(-$a).b":       "(-$a).b",
		"($a ?: $b)[0]": "($a ?: $b)[0]",
		"($a ?: $b)?.c": "($a ?: $b)?.c",
		"$foo!.bar":     "$foo!.bar",
	}
	for input, want := range exact {
		node := parseOrFatal(t, input)
		if got := node.ToSourceString(); got != want {
			t.Errorf("ToSourceString(%q) = %q, want %q", input, got, want)
		}
	}
	roundTrip := []string{
		"($a ?: $b).c",
		"(1 + $a).b",
		"(-$a).b",
		"($a ?: $b)[0]",
		"($a ?: $b)?.c",
		"($a ? $b : $c).length()",
		"(1 + $a).b(2)",
		"$foo!.bar",
	}
	for _, input := range roundTrip {
		first := parseOrFatal(t, input)
		printed := first.ToSourceString()
		second, err := Parse(printed)
		if err != nil {
			t.Errorf("reparse of %q (printed %q) failed: %v", input, printed, err)
			continue
		}
		if !exprtree.Equivalent(first, second) {
			t.Errorf("round trip of %q changed structure: printed %q", input, printed)
		}
	}
}

func TestParseVariable(t *testing.T) {
	ref := mustParseWith(t, ParseVariable, "$aaa").(*exprtree.VarRefNode)
	if ref.Name != "aaa" || ref.Injected {
		t.Errorf("ref = %+v", ref)
	}
	ij := mustParseWith(t, ParseVariable, "$ij?.bbb").(*exprtree.VarRefNode)
	if !ij.Injected || !ij.NullSafeInjected || ij.Name != "bbb" {
		t.Errorf("ref = %+v", ij)
	}
	for _, input := range []string{"", "$", "$ij", "$aaa.bbb", "$aaa + 1", "aaa", "1"} {
		if _, err := ParseVariable(input); err == nil {
			t.Errorf("ParseVariable(%q) succeeded, want error", input)
		}
	}
}

func TestParseDataReference(t *testing.T) {
	valid := []string{"$aaa", "$ij.aaa", "$aaa.bbb", "$aaa.0.bbb.12", "$aaa?.bbb?[0]", "$aaa['key']", "$foo!.bar"}
	for _, input := range valid {
		if _, err := ParseDataReference(input); err != nil {
			t.Errorf("ParseDataReference(%q) failed: %v", input, err)
		}
	}
	node, err := ParseDataReference("$aaa.bbb[0]")
	if err != nil {
		t.Fatalf("ParseDataReference failed: %v", err)
	}
	if got := node.ToSourceString(); got != "$aaa.bbb[0]" {
		t.Errorf("ToSourceString() = %q", got)
	}
	for _, input := range []string{"", "$ij", "$a + $b", "1 + $a", "aaa.bbb", "$a ?: $b", "$aaa,"} {
		if _, err := ParseDataReference(input); err == nil {
			t.Errorf("ParseDataReference(%q) succeeded, want error", input)
		}
	}
}

func TestParseGlobal(t *testing.T) {
	g := mustParseWith(t, ParseGlobal, "aaa").(*exprtree.GlobalNode)
	if g.Name != "aaa" {
		t.Errorf("Name = %q", g.Name)
	}
	dotted := mustParseWith(t, ParseGlobal, "aaa.bbb.CCC").(*exprtree.GlobalNode)
	if dotted.Name != "aaa.bbb.CCC" {
		t.Errorf("Name = %q", dotted.Name)
	}
	for _, input := range []string{"", "$a", "1", "aaa.", "aaa()", "aaa.bbb + 1", "aaa bbb"} {
		if _, err := ParseGlobal(input); err == nil {
			t.Errorf("ParseGlobal(%q) succeeded, want error", input)
		}
	}
}

func mustParseWith(t *testing.T, parse func(string) (exprtree.Node, error), input string) exprtree.Node {
	t.Helper()
	node, err := parse(input)
	if err != nil {
		t.Fatalf("parse of %q failed: %v", input, err)
	}
	return node
}

func TestExpressionList(t *testing.T) {
	nodes, err := ParseExpressionList("$a, $b + 1, 'c'")
	if err != nil {
		t.Fatalf("ParseExpressionList failed: %v", err)
	}
	if len(nodes) != 3 {
		t.Fatalf("got %d expressions, want 3", len(nodes))
	}
	if _, err := ParseExpressionList("$a, , $b"); err == nil {
		t.Error("empty list element accepted")
	}
}

func TestResolverValidation(t *testing.T) {
	resolver := &TableResolver{
		Globals: map[string]bool{"app.MODE": true},
		Functions: map[string][]int{
			"length":    {1},
			"round":     {1, 2},
			"randomInt": {1},
		},
	}

	for _, input := range []string{"length($list)", "round(1.5)", "round(1.5, 2)", "app.MODE"} {
		if _, err := ParseWithResolver(input, resolver); err != nil {
			t.Errorf("ParseWithResolver(%q) failed: %v", input, err)
		}
	}

	if _, err := ParseWithResolver("round(1, 2, 3)", resolver); err == nil {
		t.Error("arity violation accepted")
	}
	if _, err := ParseWithResolver("other.GLOBAL", resolver); err == nil {
		t.Error("unknown global accepted")
	}

	_, err := ParseWithResolver("lenght($list)", resolver)
	if err == nil {
		t.Fatal("unknown function accepted")
	}
	if !strings.Contains(err.Error(), `"length"`) {
		t.Errorf("error should suggest the nearest name, got: %v", err)
	}
}

func TestSyntaxErrorPosition(t *testing.T) {
	_, err := Parse("$a + + $b")
	if err == nil {
		t.Fatal("want syntax error")
	}
	synErr, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("error type = %T, want *SyntaxError", err)
	}
	if synErr.Pos.Column != 6 {
		t.Errorf("error column = %d, want 6", synErr.Pos.Column)
	}
	if !strings.Contains(err.Error(), "^") {
		t.Error("error should render a caret pointer")
	}
}
