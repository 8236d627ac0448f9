package dsl

import (
	"strconv"

	"github.com/sable-lang/sable/pkgs/exprtree"
)

// UniqueNameGenerator hands out names that do not collide within one
// lexical scope. The first request for a base returns it unchanged; later
// requests get a disambiguating suffix.
type UniqueNameGenerator struct {
	counts map[string]int
}

// NewUniqueNameGenerator returns an empty name generator.
func NewUniqueNameGenerator() *UniqueNameGenerator {
	return &UniqueNameGenerator{counts: make(map[string]int)}
}

// Name returns a fresh name derived from base.
func (g *UniqueNameGenerator) Name(base string) string {
	n := g.counts[base]
	g.counts[base] = n + 1
	if n == 0 {
		return base
	}
	return base + "$" + strconv.Itoa(n)
}

// Generator allocates the temporaries a compilation unit needs. Chunks
// built for one unit share a lexical scope in the emitted code, so they
// must draw names from the same Generator; separate units get separate
// Generators and can be compiled in parallel.
type Generator struct {
	names *UniqueNameGenerator
}

// NewGenerator returns a Generator drawing names from the given name
// generator, or from a fresh one when names is nil.
func NewGenerator(names *UniqueNameGenerator) *Generator {
	if names == nil {
		names = NewUniqueNameGenerator()
	}
	return &Generator{names: names}
}

// DeclarationBuilder starts a declaration with an automatically generated
// temporary name.
func (g *Generator) DeclarationBuilder() *VariableDeclarationBuilder {
	return NewDeclarationBuilder(g.names.Name("$tmp"))
}

// ConditionalExpression returns an if-then-else expression. When both
// branches are Flat it uses the inline ternary form; otherwise it lowers to
// an if/else statement assigning into one shared temporary.
func (g *Generator) ConditionalExpression(predicate, consequent, alternate Expression) Expression {
	return IfExpression(predicate, consequent).SetElse(alternate).Build(g)
}

// IfExpression starts a conditional expression builder.
func IfExpression(predicate, consequent Expression) *ConditionalExpressionBuilder {
	return &ConditionalExpressionBuilder{predicate: predicate, consequent: consequent}
}

// ConditionalExpressionBuilder assembles a conditional expression.
type ConditionalExpressionBuilder struct {
	predicate, consequent, alternate Expression
}

// SetElse sets the alternate branch.
func (b *ConditionalExpressionBuilder) SetElse(alternate Expression) *ConditionalExpressionBuilder {
	b.alternate = alternate
	return b
}

// Build assembles the expression. The predicate is always evaluated, so its
// initial statements hoist either way; branch initial statements may only
// run in their branch, which forces the statement lowering.
func (b *ConditionalExpressionBuilder) Build(g *Generator) Expression {
	if b.consequent.Flat() && b.alternate.Flat() {
		return Expression{&conditional{
			predicate:  b.predicate.impl,
			consequent: b.consequent.impl,
			alternate:  b.alternate.impl,
		}}
	}
	decl := g.DeclarationBuilder().Build()
	ref := decl.Ref()
	branch := IfStatement(b.predicate, ref.Assign(b.consequent).AsStatement()).
		SetElse(ref.Assign(b.alternate).AsStatement()).
		Build()
	return Expression{&composite{
		statements: []Statement{decl.AsStatement(), branch},
		value:      ref.impl,
	}}
}

// And returns the logical conjunction of the receiver and rhs. When rhs is
// Flat this is an inline && expression; otherwise rhs is only conditionally
// evaluated, so the result lowers to a mutable temporary reassigned inside
// a guard on the receiver's truthiness.
func (e Expression) And(rhs Expression, g *Generator) Expression {
	return shortCircuit(e, rhs, g, exprtree.OpAnd, false)
}

// Or is And's dual: the guard is negated, since rhs runs only when the
// receiver is falsy.
func (e Expression) Or(rhs Expression, g *Generator) Expression {
	return shortCircuit(e, rhs, g, exprtree.OpOr, true)
}

func shortCircuit(lhs, rhs Expression, g *Generator, op *exprtree.Operator, negate bool) Expression {
	if rhs.Flat() {
		return newBinary(targetSymbol(op), op.Precedence, op.Assoc, lhs.impl, rhs.impl)
	}
	decl := g.DeclarationBuilder().SetMutable().SetRhs(lhs).Build()
	ref := decl.Ref()
	cond := ref
	if negate {
		cond = Not(ref)
	}
	guard := IfStatement(cond, ref.Assign(rhs).AsStatement()).Build()
	return Expression{&composite{
		statements: []Statement{decl.AsStatement(), guard},
		value:      ref.impl,
	}}
}
