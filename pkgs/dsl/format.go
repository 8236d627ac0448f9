package dsl

import "strings"

// formattingContext accumulates output text. It tracks the current
// indentation and a stack of lexical scopes recording which statements have
// already been emitted. The scope stack is what makes initial statements run
// exactly once: a declaration formatted at an outer scope is skipped when a
// later reference pulls it in again, while a declaration formatted inside a
// conditional branch is forgotten when the branch closes, so a sibling
// branch re-emits it.
type formattingContext struct {
	buf       strings.Builder
	indent    string
	lineStart bool
	scopes    []map[stmtNode]bool
}

func newFormattingContext(startingIndent int) *formattingContext {
	return &formattingContext{
		indent:    strings.Repeat(" ", startingIndent),
		lineStart: true,
		scopes:    []map[stmtNode]bool{make(map[stmtNode]bool)},
	}
}

func (ctx *formattingContext) append(s string) {
	if s == "" {
		return
	}
	if ctx.lineStart {
		ctx.buf.WriteString(ctx.indent)
		ctx.lineStart = false
	}
	ctx.buf.WriteString(s)
}

func (ctx *formattingContext) endLine() {
	if !ctx.lineStart {
		ctx.buf.WriteByte('\n')
		ctx.lineStart = true
	}
}

// appendStatement formats s unless the same statement node already ran in
// the current scope chain. Dedup keys on node identity, so a declaration
// reached both through an explicit statement list and through a reference's
// initial statements is emitted once.
func (ctx *formattingContext) appendStatement(s Statement) {
	if ctx.alreadyAppended(s.impl) {
		return
	}
	ctx.scopes[len(ctx.scopes)-1][s.impl] = true
	s.impl.format(ctx)
}

func (ctx *formattingContext) alreadyAppended(n stmtNode) bool {
	for _, scope := range ctx.scopes {
		if scope[n] {
			return true
		}
	}
	return false
}

func (ctx *formattingContext) appendOutputExpression(e exprNode) {
	e.formatOutputExpr(ctx)
}

func (ctx *formattingContext) appendOperand(e exprNode, parens bool) {
	if parens {
		ctx.append("(")
	}
	e.formatOutputExpr(ctx)
	if parens {
		ctx.append(")")
	}
}

func (ctx *formattingContext) enterBlock() {
	ctx.indent += "  "
	ctx.scopes = append(ctx.scopes, make(map[stmtNode]bool))
}

func (ctx *formattingContext) exitBlock() {
	ctx.indent = ctx.indent[:len(ctx.indent)-2]
	ctx.scopes = ctx.scopes[:len(ctx.scopes)-1]
}

func (ctx *formattingContext) String() string {
	return ctx.buf.String()
}

// operandNeedsParens implements precedence protection on emission: a child
// is wrapped iff its precedence is strictly lower than the parent slot
// requires, or equal when the slot sits on the wrong side for the parent's
// associativity (strict comparison).
func operandNeedsParens(childPrec, parentPrec int, strict bool) bool {
	if strict {
		return childPrec <= parentPrec
	}
	return childPrec < parentPrec
}
