package dsl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sable-lang/sable/pkgs/exprtree"
)

// Common literal chunks.
var (
	LiteralTrue        = Id("true")
	LiteralFalse       = Id("false")
	LiteralNull        = Id("null")
	LiteralEmptyString = FromText("''", exprtree.MaxPrecedence)
	LiteralEmptyObject = FromText("{}", exprtree.MaxPrecedence)
)

var idPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// maxSafeInteger is the largest integer the target runtime represents
// exactly.
const maxSafeInteger = 1<<53 - 1

// Id returns a chunk for a bare identifier. Panics if name is not a valid
// identifier; that is a programming error, not an input error.
func Id(name string) Expression {
	return IdWithRequires(name)
}

// IdWithRequires is Id carrying requires for the symbols backing the
// identifier.
func IdWithRequires(name string, requires ...Require) Expression {
	if !idPattern.MatchString(name) {
		panic(fmt.Sprintf("dsl: %q is not a valid identifier", name))
	}
	return Expression{&leaf{text: name, prec: exprtree.MaxPrecedence, requires: requires}}
}

// DottedId returns a chunk for a dot-separated identifier sequence such as
// "app.mode.current".
func DottedId(dotSeparated string, requires ...Require) Expression {
	parts := strings.Split(dotSeparated, ".")
	tip := IdWithRequires(parts[0], requires...)
	for _, part := range parts[1:] {
		tip = tip.DotAccess(part)
	}
	return tip
}

// FromText wraps already-rendered expression text with the given precedence.
// The precedence is trusted; use Grouped for text of unknown provenance.
func FromText(text string, precedence int, requires ...Require) Expression {
	return Expression{&leaf{text: text, prec: precedence, requires: requires}}
}

// Grouped wraps an expression in parentheses unconditionally, for inline
// text whose reported precedence cannot be trusted.
func Grouped(e Expression) Expression {
	return Expression{&group{inner: e.impl}}
}

// StringLiteral returns a single-quoted string literal chunk, escaped with
// the same whitelist the source grammar accepts.
func StringLiteral(value string) Expression {
	return Expression{&stringLiteral{value: value}}
}

// Number returns an integer literal chunk. Panics if the value is outside
// the target runtime's safe integer range.
func Number(value int64) Expression {
	if value > maxSafeInteger || value < -maxSafeInteger {
		panic(fmt.Sprintf("dsl: number outside safe integer range: %d", value))
	}
	return Expression{&leaf{text: strconv.FormatInt(value, 10), prec: exprtree.MaxPrecedence}}
}

// Float returns a floating-point literal chunk.
func Float(value float64) Expression {
	return Expression{&leaf{text: strconv.FormatFloat(value, 'g', -1, 64), prec: exprtree.MaxPrecedence}}
}

// Not returns the logical negation of the given chunk.
func Not(arg Expression) Expression {
	return Expression{&prefixUnary{symbol: "!", prec: exprtree.OpNot.Precedence, arg: arg.impl}}
}

// Construct applies the constructor-invocation operator to ctor with the
// given arguments.
func Construct(ctor Expression, args ...Expression) Expression {
	return Expression{&newExpr{ctor: ctor.impl}}.Call(args...)
}

// ArrayLiteral returns an array literal chunk.
func ArrayLiteral(elements ...Expression) Expression {
	return Expression{&arrayLiteral{elements: unwrapAll(elements)}}
}

// ObjectLiteral returns an object literal chunk with bare keys, paired
// positionally with values.
func ObjectLiteral(keys []string, values []Expression) Expression {
	return Expression{&objectLiteral{keys: keys, values: unwrapAll(values)}}
}

// ObjectLiteralWithQuotedKeys is ObjectLiteral with string-quoted keys.
func ObjectLiteralWithQuotedKeys(keys []string, values []Expression) Expression {
	return Expression{&objectLiteral{keys: keys, values: unwrapAll(values), quotedKeys: true}}
}

// Operation applies an operator from the expression operator table to the
// given operands. AND, OR and the ternary conditional need a Generator for
// short-circuit lowering; use And, Or and Generator.ConditionalExpression
// for those.
func Operation(op *exprtree.Operator, operands ...Expression) Expression {
	if op == exprtree.OpAnd || op == exprtree.OpOr || op == exprtree.OpConditional {
		panic(fmt.Sprintf("dsl: operator %s requires a Generator", op.Name))
	}
	if len(operands) != op.Arity {
		panic(fmt.Sprintf("dsl: operator %s wants %d operands, got %d", op.Name, op.Arity, len(operands)))
	}
	switch op.Arity {
	case 1:
		return Expression{&prefixUnary{symbol: targetSymbol(op), prec: op.Precedence, arg: operands[0].impl}}
	case 2:
		return newBinary(targetSymbol(op), op.Precedence, op.Assoc, operands[0].impl, operands[1].impl)
	default:
		panic(fmt.Sprintf("dsl: operator %s has unsupported arity %d", op.Name, op.Arity))
	}
}

// targetSymbol maps a source operator to its spelling in the target
// language. Word operators become symbolic; everything else keeps its token.
func targetSymbol(op *exprtree.Operator) string {
	switch op {
	case exprtree.OpAnd:
		return "&&"
	case exprtree.OpOr:
		return "||"
	case exprtree.OpNot:
		return "!"
	case exprtree.OpNullCoalescing:
		return "??"
	default:
		return op.Token
	}
}

// Op applies a binary operator from the operator table with the receiver as
// the left operand.
func (e Expression) Op(op *exprtree.Operator, rhs Expression) Expression {
	return Operation(op, e, rhs)
}

func (e Expression) Plus(rhs Expression) Expression {
	return e.Op(exprtree.OpPlus, rhs)
}

func (e Expression) Minus(rhs Expression) Expression {
	return e.Op(exprtree.OpMinus, rhs)
}

func (e Expression) Times(rhs Expression) Expression {
	return e.Op(exprtree.OpTimes, rhs)
}

func (e Expression) DivideBy(rhs Expression) Expression {
	return e.Op(exprtree.OpDivide, rhs)
}

func (e Expression) DoubleEquals(rhs Expression) Expression {
	return e.Op(exprtree.OpEquals, rhs)
}

func (e Expression) DoubleNotEquals(rhs Expression) Expression {
	return e.Op(exprtree.OpNotEquals, rhs)
}

func (e Expression) DoubleEqualsNull() Expression {
	return e.DoubleEquals(LiteralNull)
}

// Assign returns the assignment of rhs into the receiver. Assignments bind
// looser than any table operator and are right-associative.
func (e Expression) Assign(rhs Expression) Expression {
	return newBinary("=", assignmentPrecedence, exprtree.Right, e.impl, rhs.impl)
}

// DotAccess returns the field access e.identifier.
func (e Expression) DotAccess(identifier string) Expression {
	if !idPattern.MatchString(identifier) {
		panic(fmt.Sprintf("dsl: %q is not a valid identifier", identifier))
	}
	return Expression{&dot{receiver: e.impl, key: identifier}}
}

// BracketAccess returns the indexed access e[key].
func (e Expression) BracketAccess(key Expression) Expression {
	return Expression{&bracket{receiver: e.impl, key: key.impl}}
}

// Call returns the invocation of the receiver with the given arguments.
func (e Expression) Call(args ...Expression) Expression {
	return Expression{&call{receiver: e.impl, args: unwrapAll(args)}}
}

// assignmentPrecedence sits below every operator in the table.
const assignmentPrecedence = 0

func unwrapAll(exprs []Expression) []exprNode {
	nodes := make([]exprNode, len(exprs))
	for i, e := range exprs {
		nodes[i] = e.impl
	}
	return nodes
}

func concatInitialStatements(nodes ...exprNode) []Statement {
	var stmts []Statement
	for _, n := range nodes {
		stmts = append(stmts, n.initialStatements()...)
	}
	return stmts
}

// leaf is inline expression text with a known precedence.
type leaf struct {
	text     string
	prec     int
	requires []Require
}

func (l *leaf) precedence() int                               { return l.prec }
func (l *leaf) initialStatements() []Statement                { return nil }
func (l *leaf) formatInitialStatements(ctx *formattingContext) {}

func (l *leaf) formatOutputExpr(ctx *formattingContext) {
	ctx.append(l.text)
}

func (l *leaf) collectRequires(rc *requireCollector) {
	for _, r := range l.requires {
		rc.add(r)
	}
}

type stringLiteral struct {
	value string
}

func (s *stringLiteral) precedence() int                                { return exprtree.MaxPrecedence }
func (s *stringLiteral) initialStatements() []Statement                 { return nil }
func (s *stringLiteral) formatInitialStatements(ctx *formattingContext) {}
func (s *stringLiteral) collectRequires(rc *requireCollector)           {}

func (s *stringLiteral) formatOutputExpr(ctx *formattingContext) {
	ctx.append(exprtree.QuoteString(s.value))
}

type binaryOperation struct {
	symbol   string
	prec     int
	assoc    exprtree.Associativity
	lhs, rhs exprNode
}

func newBinary(symbol string, prec int, assoc exprtree.Associativity, lhs, rhs exprNode) Expression {
	return Expression{&binaryOperation{symbol: symbol, prec: prec, assoc: assoc, lhs: lhs, rhs: rhs}}
}

func (b *binaryOperation) precedence() int { return b.prec }

func (b *binaryOperation) initialStatements() []Statement {
	return concatInitialStatements(b.lhs, b.rhs)
}

func (b *binaryOperation) formatInitialStatements(ctx *formattingContext) {
	b.lhs.formatInitialStatements(ctx)
	b.rhs.formatInitialStatements(ctx)
}

func (b *binaryOperation) formatOutputExpr(ctx *formattingContext) {
	ctx.appendOperand(b.lhs, operandNeedsParens(b.lhs.precedence(), b.prec, b.assoc == exprtree.Right))
	ctx.append(" " + b.symbol + " ")
	ctx.appendOperand(b.rhs, operandNeedsParens(b.rhs.precedence(), b.prec, b.assoc == exprtree.Left))
}

func (b *binaryOperation) collectRequires(rc *requireCollector) {
	b.lhs.collectRequires(rc)
	b.rhs.collectRequires(rc)
}

type prefixUnary struct {
	symbol string
	prec   int
	arg    exprNode
}

func (u *prefixUnary) precedence() int { return u.prec }

func (u *prefixUnary) initialStatements() []Statement {
	return u.arg.initialStatements()
}

func (u *prefixUnary) formatInitialStatements(ctx *formattingContext) {
	u.arg.formatInitialStatements(ctx)
}

func (u *prefixUnary) formatOutputExpr(ctx *formattingContext) {
	ctx.append(u.symbol)
	ctx.appendOperand(u.arg, u.arg.precedence() < u.prec)
}

func (u *prefixUnary) collectRequires(rc *requireCollector) {
	u.arg.collectRequires(rc)
}

// conditional is the flat ternary form. Branches are guaranteed Flat by the
// builder; the predicate's initial statements are hoisted since the
// predicate is always evaluated.
type conditional struct {
	predicate, consequent, alternate exprNode
}

func (c *conditional) precedence() int { return exprtree.OpConditional.Precedence }

func (c *conditional) initialStatements() []Statement {
	return c.predicate.initialStatements()
}

func (c *conditional) formatInitialStatements(ctx *formattingContext) {
	c.predicate.formatInitialStatements(ctx)
}

func (c *conditional) formatOutputExpr(ctx *formattingContext) {
	p := c.precedence()
	ctx.appendOperand(c.predicate, c.predicate.precedence() <= p)
	ctx.append(" ? ")
	ctx.appendOperand(c.consequent, c.consequent.precedence() < p)
	ctx.append(" : ")
	ctx.appendOperand(c.alternate, c.alternate.precedence() < p)
}

func (c *conditional) collectRequires(rc *requireCollector) {
	c.predicate.collectRequires(rc)
	c.consequent.collectRequires(rc)
	c.alternate.collectRequires(rc)
}

type call struct {
	receiver exprNode
	args     []exprNode
}

func (c *call) precedence() int { return exprtree.MaxPrecedence }

func (c *call) initialStatements() []Statement {
	return concatInitialStatements(append([]exprNode{c.receiver}, c.args...)...)
}

func (c *call) formatInitialStatements(ctx *formattingContext) {
	c.receiver.formatInitialStatements(ctx)
	for _, arg := range c.args {
		arg.formatInitialStatements(ctx)
	}
}

func (c *call) formatOutputExpr(ctx *formattingContext) {
	ctx.appendOperand(c.receiver, c.receiver.precedence() < exprtree.MaxPrecedence)
	ctx.append("(")
	for i, arg := range c.args {
		if i > 0 {
			ctx.append(", ")
		}
		ctx.appendOutputExpression(arg)
	}
	ctx.append(")")
}

func (c *call) collectRequires(rc *requireCollector) {
	c.receiver.collectRequires(rc)
	for _, arg := range c.args {
		arg.collectRequires(rc)
	}
}

type dot struct {
	receiver exprNode
	key      string
}

func (d *dot) precedence() int { return exprtree.MaxPrecedence }

func (d *dot) initialStatements() []Statement {
	return d.receiver.initialStatements()
}

func (d *dot) formatInitialStatements(ctx *formattingContext) {
	d.receiver.formatInitialStatements(ctx)
}

func (d *dot) formatOutputExpr(ctx *formattingContext) {
	ctx.appendOperand(d.receiver, d.receiver.precedence() < exprtree.MaxPrecedence)
	ctx.append("." + d.key)
}

func (d *dot) collectRequires(rc *requireCollector) {
	d.receiver.collectRequires(rc)
}

type bracket struct {
	receiver exprNode
	key      exprNode
}

func (b *bracket) precedence() int { return exprtree.MaxPrecedence }

func (b *bracket) initialStatements() []Statement {
	return concatInitialStatements(b.receiver, b.key)
}

func (b *bracket) formatInitialStatements(ctx *formattingContext) {
	b.receiver.formatInitialStatements(ctx)
	b.key.formatInitialStatements(ctx)
}

func (b *bracket) formatOutputExpr(ctx *formattingContext) {
	ctx.appendOperand(b.receiver, b.receiver.precedence() < exprtree.MaxPrecedence)
	ctx.append("[")
	ctx.appendOutputExpression(b.key)
	ctx.append("]")
}

func (b *bracket) collectRequires(rc *requireCollector) {
	b.receiver.collectRequires(rc)
	b.key.collectRequires(rc)
}

type newExpr struct {
	ctor exprNode
}

func (n *newExpr) precedence() int { return exprtree.MaxPrecedence }

func (n *newExpr) initialStatements() []Statement {
	return n.ctor.initialStatements()
}

func (n *newExpr) formatInitialStatements(ctx *formattingContext) {
	n.ctor.formatInitialStatements(ctx)
}

func (n *newExpr) formatOutputExpr(ctx *formattingContext) {
	ctx.append("new ")
	ctx.appendOperand(n.ctor, n.ctor.precedence() < exprtree.MaxPrecedence)
}

func (n *newExpr) collectRequires(rc *requireCollector) {
	n.ctor.collectRequires(rc)
}

type arrayLiteral struct {
	elements []exprNode
}

func (a *arrayLiteral) precedence() int { return exprtree.MaxPrecedence }

func (a *arrayLiteral) initialStatements() []Statement {
	return concatInitialStatements(a.elements...)
}

func (a *arrayLiteral) formatInitialStatements(ctx *formattingContext) {
	for _, el := range a.elements {
		el.formatInitialStatements(ctx)
	}
}

func (a *arrayLiteral) formatOutputExpr(ctx *formattingContext) {
	ctx.append("[")
	for i, el := range a.elements {
		if i > 0 {
			ctx.append(", ")
		}
		ctx.appendOutputExpression(el)
	}
	ctx.append("]")
}

func (a *arrayLiteral) collectRequires(rc *requireCollector) {
	for _, el := range a.elements {
		el.collectRequires(rc)
	}
}

type objectLiteral struct {
	keys       []string
	values     []exprNode
	quotedKeys bool
}

func (o *objectLiteral) precedence() int { return exprtree.MaxPrecedence }

func (o *objectLiteral) initialStatements() []Statement {
	return concatInitialStatements(o.values...)
}

func (o *objectLiteral) formatInitialStatements(ctx *formattingContext) {
	for _, v := range o.values {
		v.formatInitialStatements(ctx)
	}
}

func (o *objectLiteral) formatOutputExpr(ctx *formattingContext) {
	ctx.append("{")
	for i, key := range o.keys {
		if i > 0 {
			ctx.append(", ")
		}
		if o.quotedKeys {
			ctx.append(exprtree.QuoteString(key))
		} else {
			ctx.append(key)
		}
		ctx.append(": ")
		ctx.appendOutputExpression(o.values[i])
	}
	ctx.append("}")
}

func (o *objectLiteral) collectRequires(rc *requireCollector) {
	for _, v := range o.values {
		v.collectRequires(rc)
	}
}

type group struct {
	inner exprNode
}

func (g *group) precedence() int { return exprtree.MaxPrecedence }

func (g *group) initialStatements() []Statement {
	return g.inner.initialStatements()
}

func (g *group) formatInitialStatements(ctx *formattingContext) {
	g.inner.formatInitialStatements(ctx)
}

func (g *group) formatOutputExpr(ctx *formattingContext) {
	ctx.append("(")
	ctx.appendOutputExpression(g.inner)
	ctx.append(")")
}

func (g *group) collectRequires(rc *requireCollector) {
	g.inner.collectRequires(rc)
}

// composite pairs hoisted statements with the expression over their results.
type composite struct {
	statements []Statement
	value      exprNode
}

func (c *composite) precedence() int { return c.value.precedence() }

func (c *composite) initialStatements() []Statement {
	return append(append([]Statement(nil), c.statements...), c.value.initialStatements()...)
}

func (c *composite) formatInitialStatements(ctx *formattingContext) {
	for _, s := range c.statements {
		ctx.appendStatement(s)
	}
	c.value.formatInitialStatements(ctx)
}

func (c *composite) formatOutputExpr(ctx *formattingContext) {
	c.value.formatOutputExpr(ctx)
}

func (c *composite) collectRequires(rc *requireCollector) {
	for _, s := range c.statements {
		s.impl.collectRequires(rc)
	}
	c.value.collectRequires(rc)
}
