// Package dsl builds sequences of target code for the generator backend.
// Unlike a flat source string, a chunk can carry statements that must run
// before its value is available, which keeps lowering of short-circuit
// operators and guarded access chains correct: an operand that is only
// conditionally evaluated never has its setup hoisted unconditionally.
//
// An Expression is either Flat (a single inline expression with a known
// precedence) or Composite (it needs hoisted initial statements first).
// Combining a Flat operand with a Composite one always yields a Composite
// result; the promotion is one-way.
package dsl

import (
	"strings"
)

// Require names an external symbol the emitted code depends on. The host
// emitter turns collected requires into import declarations.
type Require struct {
	Symbol string
}

// NewRequire returns a require for the given symbol.
func NewRequire(symbol string) Require {
	return Require{Symbol: symbol}
}

// requireCollector memoizes visited declarations so that a declaration
// referenced by thousands of downstream expressions is traversed once,
// keeping CollectRequires linear in the size of the chunk graph.
type requireCollector struct {
	cb   func(Require)
	seen map[*VariableDeclaration]bool
}

func newRequireCollector(cb func(Require)) *requireCollector {
	return &requireCollector{cb: cb, seen: make(map[*VariableDeclaration]bool)}
}

func (rc *requireCollector) add(r Require) {
	rc.cb(r)
}

// exprNode is the internal representation of an Expression.
type exprNode interface {
	precedence() int
	initialStatements() []Statement
	formatInitialStatements(ctx *formattingContext)
	formatOutputExpr(ctx *formattingContext)
	collectRequires(rc *requireCollector)
}

// stmtNode is the internal representation of a Statement.
type stmtNode interface {
	format(ctx *formattingContext)
	collectRequires(rc *requireCollector)
}

// Expression is a chunk of code that represents a value.
type Expression struct {
	impl exprNode
}

// Statement is a sequencable unit of code.
type Statement struct {
	impl stmtNode
}

// Flat reports whether the expression is representable as a single inline
// expression, with no hoisted initial statements.
func (e Expression) Flat() bool {
	return len(e.impl.initialStatements()) == 0
}

// Code renders the chunk: its initial statements, then the output expression
// followed by a semicolon. When the output expression is a bare reference to
// a declaration emitted by the initial statements, the trailing reference
// line is omitted. The result does not end in a newline.
func (e Expression) Code() string {
	return e.code(0)
}

func (e Expression) code(indent int) string {
	ctx := newFormattingContext(indent)
	e.impl.formatInitialStatements(ctx)
	if !isBareRef(e.impl) {
		ctx.appendOutputExpression(e.impl)
		ctx.append(";")
		ctx.endLine()
	}
	return strings.TrimSuffix(ctx.String(), "\n")
}

// StatementsForForeignCode renders the chunk for insertion into code not
// managed by this package, at the given indentation (in spaces). The result
// is guaranteed to end in a newline.
func (e Expression) StatementsForForeignCode(indent int) string {
	return ensureTrailingNewline(e.code(indent))
}

// SingleExprOrName returns the inline form of this expression. For a
// Composite chunk this is the expression over its hoisted temporaries, so it
// is only meaningful after the initial statements have been emitted.
func (e Expression) SingleExprOrName() string {
	ctx := newFormattingContext(0)
	ctx.appendOutputExpression(e.impl)
	return ctx.String()
}

// Precedence returns the binding strength of the inline form.
func (e Expression) Precedence() int {
	return e.impl.precedence()
}

// CollectRequires calls cb for every external symbol this chunk needs.
// Symbols reachable through several paths may be reported more than once;
// traversal is linear in the chunk graph.
func (e Expression) CollectRequires(cb func(Require)) {
	e.impl.collectRequires(newRequireCollector(cb))
}

// AsStatement formats this expression as an expression statement.
func (e Expression) AsStatement() Statement {
	return Statement{&expressionStatement{expr: e.impl}}
}

// WithInitialStatements returns a chunk with the same output expression that
// additionally carries the given initial statements, in order, before any of
// the receiver's own.
func (e Expression) WithInitialStatements(stmts []Statement) Expression {
	if len(stmts) == 0 {
		return e
	}
	return Expression{&composite{statements: append([]Statement(nil), stmts...), value: e.impl}}
}

// WithInitialStatement is WithInitialStatements for a single statement.
func (e Expression) WithInitialStatement(s Statement) Expression {
	return e.WithInitialStatements([]Statement{s})
}

// Code renders the statement without a trailing newline.
func (s Statement) Code() string {
	return s.code(0)
}

func (s Statement) code(indent int) string {
	ctx := newFormattingContext(indent)
	ctx.appendStatement(s)
	return strings.TrimSuffix(ctx.String(), "\n")
}

// StatementsForForeignCode renders the statement for insertion into foreign
// code at the given indentation. The result ends in a newline.
func (s Statement) StatementsForForeignCode(indent int) string {
	return ensureTrailingNewline(s.code(indent))
}

// CollectRequires calls cb for every external symbol this statement needs.
func (s Statement) CollectRequires(cb func(Require)) {
	s.impl.collectRequires(newRequireCollector(cb))
}

func ensureTrailingNewline(code string) string {
	if strings.HasSuffix(code, "\n") {
		return code
	}
	return code + "\n"
}

// isBareRef reports whether the output expression is nothing but a reference
// to a declared temporary, in which case emitting "name;" after the
// declaration would be noise.
func isBareRef(e exprNode) bool {
	switch t := e.(type) {
	case *reference:
		return true
	case *composite:
		return isBareRef(t.value)
	}
	return false
}
