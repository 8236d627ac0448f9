package generator

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sable-lang/sable/pkgs/dsl"
	"github.com/sable-lang/sable/pkgs/exprtree"
	"github.com/sable-lang/sable/pkgs/lexer"
	"github.com/sable-lang/sable/pkgs/parser"
)

func lower(t *testing.T, input string) dsl.Expression {
	t.Helper()
	node, err := parser.Parse(input)
	require.NoError(t, err, "parse %q", input)
	chunk, err := Translate(node, Options{})
	require.NoError(t, err, "lower %q", input)
	return chunk
}

func lowerCode(t *testing.T, input string) string {
	t.Helper()
	return lower(t, input).Code()
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n")
}

func TestDataRefs(t *testing.T) {
	assert.Equal(t, "opt_data.x;", lowerCode(t, "$x"))
	assert.Equal(t, "opt_ijData.x;", lowerCode(t, "$ij.x"))
	assert.Equal(t, "opt_data.row[0];", lowerCode(t, "$row.0"))
	assert.Equal(t, "opt_data.m['key'];", lowerCode(t, "$m['key']"))
	assert.Equal(t, "opt_data.s.trim();", lowerCode(t, "$s.trim()"))
}

func TestNullSafeInjectedRefGuardsTheBundle(t *testing.T) {
	assert.Equal(t, "opt_ijData == null ? null : opt_ijData.x;", lowerCode(t, "$ij?.x"))
}

func TestLiterals(t *testing.T) {
	assert.Equal(t, "null;", lowerCode(t, "null"))
	assert.Equal(t, "true;", lowerCode(t, "true"))
	assert.Equal(t, "42;", lowerCode(t, "42"))
	assert.Equal(t, "3.5;", lowerCode(t, "3.5"))
	assert.Equal(t, "3000;", lowerCode(t, "3e3"))
	assert.Equal(t, `'it\'s';`, lowerCode(t, `'it\'s'`))
}

func TestIntegerOutsideExactRangeIsRejected(t *testing.T) {
	node, err := parser.Parse("0x20000000000000")
	require.NoError(t, err)
	_, err = Translate(node, Options{})
	var structural *exprtree.StructuralError
	require.ErrorAs(t, err, &structural)
	assert.Contains(t, structural.Message, "exact range")
}

func TestOperatorsAndPrecedence(t *testing.T) {
	assert.Equal(t, "1 + 2 * 3;", lowerCode(t, "1 + 2 * 3"))
	assert.Equal(t, "2 * (1 + 3);", lowerCode(t, "2 * (1 + 3)"))
	assert.Equal(t, "opt_data.a % 2;", lowerCode(t, "$a % 2"))
	assert.Equal(t, "opt_data.a < 10;", lowerCode(t, "$a < 10"))
	assert.Equal(t, "opt_data.a == null;", lowerCode(t, "$a == null"))
	assert.Equal(t, "!opt_data.a;", lowerCode(t, "not $a"))
	assert.Equal(t, "-opt_data.a;", lowerCode(t, "-$a"))
}

func TestFlatShortCircuitStaysInline(t *testing.T) {
	assert.Equal(t, "opt_data.a && opt_data.b;", lowerCode(t, "$a and $b"))
	assert.Equal(t, "opt_data.a || opt_data.b;", lowerCode(t, "$a or $b"))
	assert.Equal(t, "opt_data.a ?? opt_data.b;", lowerCode(t, "$a ?: $b"))
	assert.Equal(t, "opt_data.c ? 1 : 2;", lowerCode(t, "$c ? 1 : 2"))
}

func TestAndWithGuardedRhsLowersToStatements(t *testing.T) {
	assert.Equal(t, lines(
		"let $tmp$1 = opt_data.a;",
		"if ($tmp$1) {",
		"  const $tmp = opt_data.b;",
		"  $tmp$1 = $tmp == null ? null : $tmp.c;",
		"}",
	), lowerCode(t, "$a and $b?.c"))
}

func TestOrWithGuardedRhsNegatesTheGuard(t *testing.T) {
	assert.Equal(t, lines(
		"let $tmp$1 = opt_data.a;",
		"if (!$tmp$1) {",
		"  const $tmp = opt_data.b;",
		"  $tmp$1 = $tmp == null ? null : $tmp.c;",
		"}",
	), lowerCode(t, "$a or $b?.c"))
}

func TestNullCoalescingWithGuardedFallback(t *testing.T) {
	assert.Equal(t, lines(
		"let $tmp$1 = opt_data.a;",
		"if ($tmp$1 == null) {",
		"  const $tmp = opt_data.b;",
		"  $tmp$1 = $tmp == null ? null : $tmp.c;",
		"}",
	), lowerCode(t, "$a ?: $b?.c"))
}

func TestTernaryWithGuardedBranchLowersToIfElse(t *testing.T) {
	assert.Equal(t, lines(
		"let $tmp$1;",
		"if (opt_data.c) {",
		"  const $tmp = opt_data.a;",
		"  $tmp$1 = $tmp == null ? null : $tmp.b;",
		"} else {",
		"  $tmp$1 = 0;",
		"}",
	), lowerCode(t, "$c ? $a?.b : 0"))
}

func TestNullSafeAccessEvaluatesBaseOnce(t *testing.T) {
	assert.Equal(t, lines(
		"const $tmp = opt_data.a;",
		"$tmp == null ? null : $tmp.b;",
	), lowerCode(t, "$a?.b"))

	assert.Equal(t, lines(
		"const $tmp = opt_data.a.b;",
		"$tmp == null ? null : $tmp.c;",
	), lowerCode(t, "$a.b?.c"))

	assert.Equal(t, lines(
		"const $tmp = opt_data.a;",
		"$tmp == null ? null : $tmp.b.c;",
	), lowerCode(t, "$a?.b.c"))

	assert.Equal(t, lines(
		"const $tmp = opt_data.s;",
		"$tmp == null ? null : $tmp.trim();",
	), lowerCode(t, "$s?.trim()"))
}

func TestNestedNullSafeAccessShortensTheChain(t *testing.T) {
	// The inner guard's temporary is declared inside the outer non-null
	// branch, so a null base stops the whole chain.
	assert.Equal(t, lines(
		"let $tmp$2;",
		"const $tmp = opt_data.a;",
		"if ($tmp == null) {",
		"  $tmp$2 = null;",
		"} else {",
		"  const $tmp$1 = $tmp.b;",
		"  $tmp$2 = $tmp$1 == null ? null : $tmp$1.c;",
		"}",
	), lowerCode(t, "$a?.b?.c"))
}

func TestNonNullAssertionDispatchesThroughRuntime(t *testing.T) {
	assert.Equal(t, "sable.checkNotNull(opt_data.a);", lowerCode(t, "$a!"))

	assert.Equal(t, lines(
		"const $tmp = opt_data.a;",
		"$tmp == null ? null : sable.checkNotNull($tmp.b);",
	), lowerCode(t, "$a?.b!"))
}

func TestFunctionCallsDispatchThroughRuntime(t *testing.T) {
	chunk := lower(t, "length($list)")
	assert.Equal(t, "sable.length(opt_data.list);", chunk.Code())
	assert.Equal(t, []string{"sable"}, collectRequires(chunk))
}

func TestGlobalsContributeRequires(t *testing.T) {
	chunk := lower(t, "app.Mode.DEBUG")
	assert.Equal(t, "app.Mode.DEBUG;", chunk.Code())
	assert.Equal(t, []string{"app.Mode.DEBUG"}, collectRequires(chunk))
}

func TestRequiresAccumulateAcrossTheTree(t *testing.T) {
	chunk := lower(t, "length($x) + app.CONST")
	assert.Equal(t, []string{"app.CONST", "sable"}, collectRequires(chunk))
}

func TestListLiteral(t *testing.T) {
	assert.Equal(t, "['a', 'b'];", lowerCode(t, "['a', 'b']"))
	assert.Equal(t, "[];", lowerCode(t, "[]"))
}

func TestMapLiteralWithStringKeys(t *testing.T) {
	assert.Equal(t, "{'a': 1, 'b': opt_data.x};", lowerCode(t, "map('a': 1, 'b': $x)"))
}

func TestMapLiteralWithComputedKeys(t *testing.T) {
	assert.Equal(t, "new Map([[opt_data.k, opt_data.v]]);", lowerCode(t, "map($k: $v)"))
}

func TestRecordLiteral(t *testing.T) {
	assert.Equal(t, "{a: 1, b: 'x'};", lowerCode(t, "record(a: 1, b: 'x')"))
}

func TestProtoInit(t *testing.T) {
	chunk := lower(t, "proto.Msg(field: 1)")
	assert.Equal(t, "new proto.Msg({field: 1});", chunk.Code())
	assert.Equal(t, []string{"proto.Msg"}, collectRequires(chunk))
}

func TestCustomParameterNames(t *testing.T) {
	node, err := parser.Parse("$x + $ij.y")
	require.NoError(t, err)
	chunk, err := Translate(node, Options{DataName: "data", InjectedName: "injected"})
	require.NoError(t, err)
	assert.Equal(t, "data.x + injected.y;", chunk.Code())
}

func TestSharedTranslatorKeepsTemporariesDistinct(t *testing.T) {
	tr := New(nil, Options{})

	first, err := parser.Parse("$a?.b")
	require.NoError(t, err)
	second, err := parser.Parse("$c?.d")
	require.NoError(t, err)

	a, err := tr.Expression(first)
	require.NoError(t, err)
	b, err := tr.Expression(second)
	require.NoError(t, err)

	assert.Equal(t, lines(
		"const $tmp = opt_data.a;",
		"$tmp == null ? null : $tmp.b;",
	), a.Code())
	assert.Equal(t, lines(
		"const $tmp$1 = opt_data.c;",
		"$tmp$1 == null ? null : $tmp$1.d;",
	), b.Code())
}

func TestPlaceholderOutsideChainIsRejected(t *testing.T) {
	var at lexer.Position
	dangling := exprtree.NewFieldAccess(at, exprtree.NewPlaceholder(at), "field", false)
	_, err := Translate(dangling, Options{})
	var structural *exprtree.StructuralError
	require.True(t, errors.As(err, &structural))
	assert.Contains(t, structural.Message, "placeholder")
}

func collectRequires(chunk dsl.Expression) []string {
	seen := map[string]bool{}
	chunk.CollectRequires(func(r dsl.Require) {
		seen[r.Symbol] = true
	})
	symbols := make([]string, 0, len(seen))
	for s := range seen {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}
