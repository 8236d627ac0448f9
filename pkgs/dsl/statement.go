package dsl

import "strings"

// Statements concatenates statements into one unit, preserving order.
func Statements(stmts ...Statement) Statement {
	if len(stmts) == 1 {
		return stmts[0]
	}
	return Statement{&statementList{stmts: append([]Statement(nil), stmts...)}}
}

// Raw wraps already-rendered statement text, with the requires it depends
// on. Intended for interoperating with code produced outside this package.
func Raw(text string, requires ...Require) Statement {
	return Statement{&rawStatement{text: text, requires: requires}}
}

// ReturnValue returns a return statement yielding the given expression.
func ReturnValue(value Expression) Statement {
	return Statement{&returnStatement{value: value.impl}}
}

// ReturnNothing returns a bare return statement.
func ReturnNothing() Statement {
	return Statement{&returnStatement{}}
}

// ThrowValue returns a throw statement for the given expression.
func ThrowValue(value Expression) Statement {
	return Statement{&throwStatement{value: value.impl}}
}

// ForLoop returns a counted loop over [initial, limit) stepping by
// increment. Initial statements of all three loop expressions are hoisted
// above the loop, since each is evaluated before the first iteration.
func ForLoop(varName string, initial, limit, increment Expression, body Statement) Statement {
	return Statement{&forLoop{
		varName:   varName,
		initial:   initial.impl,
		limit:     limit.impl,
		increment: increment.impl,
		body:      body,
	}}
}

// IfStatement starts an if statement builder with the first test and its
// branch body.
func IfStatement(condition Expression, body Statement) *IfStatementBuilder {
	return &IfStatementBuilder{branches: []condBranch{{cond: condition.impl, body: body}}}
}

// IfStatementBuilder accumulates the branches of an if/else-if/else chain.
type IfStatementBuilder struct {
	branches []condBranch
	els      Statement
}

// AddElseIf appends an else-if branch.
func (b *IfStatementBuilder) AddElseIf(condition Expression, body Statement) *IfStatementBuilder {
	b.branches = append(b.branches, condBranch{cond: condition.impl, body: body})
	return b
}

// SetElse sets the final else branch.
func (b *IfStatementBuilder) SetElse(body Statement) *IfStatementBuilder {
	b.els = body
	return b
}

// Build assembles the chain. The first test's initial statements are
// hoisted above the whole chain, since that test always runs. An else-if
// test with initial statements is only conditionally evaluated, so the
// chain is split there and the remainder nests inside the preceding else.
func (b *IfStatementBuilder) Build() Statement {
	els := b.els
	branches := append([]condBranch(nil), b.branches...)
	for i := len(branches) - 1; i >= 1; i-- {
		if len(branches[i].cond.initialStatements()) == 0 {
			continue
		}
		nested := &ifStatement{branches: append([]condBranch(nil), branches[i:]...), els: els}
		els = Statement{nested}
		branches = branches[:i]
	}
	return Statement{&ifStatement{branches: branches, els: els}}
}

// SwitchValue starts a switch statement builder on the given subject.
func SwitchValue(subject Expression) *SwitchBuilder {
	return &SwitchBuilder{subject: subject.impl}
}

// SwitchBuilder accumulates the cases of a switch statement.
type SwitchBuilder struct {
	subject exprNode
	cases   []switchCase
	dflt    Statement
}

// AddCase appends a case matching any of the given labels.
func (b *SwitchBuilder) AddCase(labels []Expression, body Statement) *SwitchBuilder {
	b.cases = append(b.cases, switchCase{labels: unwrapAll(labels), body: body})
	return b
}

// SetDefault sets the default branch.
func (b *SwitchBuilder) SetDefault(body Statement) *SwitchBuilder {
	b.dflt = body
	return b
}

// Build assembles the switch statement.
func (b *SwitchBuilder) Build() Statement {
	return Statement{&switchStatement{subject: b.subject, cases: b.cases, dflt: b.dflt}}
}

type expressionStatement struct {
	expr exprNode
}

func (s *expressionStatement) format(ctx *formattingContext) {
	s.expr.formatInitialStatements(ctx)
	ctx.appendOutputExpression(s.expr)
	ctx.append(";")
	ctx.endLine()
}

func (s *expressionStatement) collectRequires(rc *requireCollector) {
	s.expr.collectRequires(rc)
}

type statementList struct {
	stmts []Statement
}

func (l *statementList) format(ctx *formattingContext) {
	for _, s := range l.stmts {
		ctx.appendStatement(s)
	}
}

func (l *statementList) collectRequires(rc *requireCollector) {
	for _, s := range l.stmts {
		s.impl.collectRequires(rc)
	}
}

type rawStatement struct {
	text     string
	requires []Require
}

func (r *rawStatement) format(ctx *formattingContext) {
	if r.text == "" {
		return
	}
	for _, line := range strings.Split(r.text, "\n") {
		ctx.append(line)
		ctx.endLine()
	}
}

func (r *rawStatement) collectRequires(rc *requireCollector) {
	for _, req := range r.requires {
		rc.add(req)
	}
}

type returnStatement struct {
	value exprNode // nil for a bare return
}

func (r *returnStatement) format(ctx *formattingContext) {
	if r.value == nil {
		ctx.append("return;")
		ctx.endLine()
		return
	}
	r.value.formatInitialStatements(ctx)
	ctx.append("return ")
	ctx.appendOutputExpression(r.value)
	ctx.append(";")
	ctx.endLine()
}

func (r *returnStatement) collectRequires(rc *requireCollector) {
	if r.value != nil {
		r.value.collectRequires(rc)
	}
}

type throwStatement struct {
	value exprNode
}

func (t *throwStatement) format(ctx *formattingContext) {
	t.value.formatInitialStatements(ctx)
	ctx.append("throw ")
	ctx.appendOutputExpression(t.value)
	ctx.append(";")
	ctx.endLine()
}

func (t *throwStatement) collectRequires(rc *requireCollector) {
	t.value.collectRequires(rc)
}

type condBranch struct {
	cond exprNode
	body Statement
}

type ifStatement struct {
	branches []condBranch
	els      Statement // zero when absent
}

func (s *ifStatement) format(ctx *formattingContext) {
	s.branches[0].cond.formatInitialStatements(ctx)
	for i, br := range s.branches {
		if i == 0 {
			ctx.append("if (")
		} else {
			ctx.append("} else if (")
		}
		ctx.appendOutputExpression(br.cond)
		ctx.append(") {")
		ctx.endLine()
		ctx.enterBlock()
		ctx.appendStatement(br.body)
		ctx.exitBlock()
	}
	if s.els.impl != nil {
		ctx.append("} else {")
		ctx.endLine()
		ctx.enterBlock()
		ctx.appendStatement(s.els)
		ctx.exitBlock()
	}
	ctx.append("}")
	ctx.endLine()
}

func (s *ifStatement) collectRequires(rc *requireCollector) {
	for _, br := range s.branches {
		br.cond.collectRequires(rc)
		br.body.impl.collectRequires(rc)
	}
	if s.els.impl != nil {
		s.els.impl.collectRequires(rc)
	}
}

type forLoop struct {
	varName                  string
	initial, limit, increment exprNode
	body                     Statement
}

func (f *forLoop) format(ctx *formattingContext) {
	f.initial.formatInitialStatements(ctx)
	f.limit.formatInitialStatements(ctx)
	f.increment.formatInitialStatements(ctx)
	ctx.append("for (let " + f.varName + " = ")
	ctx.appendOutputExpression(f.initial)
	ctx.append("; " + f.varName + " < ")
	ctx.appendOutputExpression(f.limit)
	ctx.append("; " + f.varName + " += ")
	ctx.appendOutputExpression(f.increment)
	ctx.append(") {")
	ctx.endLine()
	ctx.enterBlock()
	ctx.appendStatement(f.body)
	ctx.exitBlock()
	ctx.append("}")
	ctx.endLine()
}

func (f *forLoop) collectRequires(rc *requireCollector) {
	f.initial.collectRequires(rc)
	f.limit.collectRequires(rc)
	f.increment.collectRequires(rc)
	f.body.impl.collectRequires(rc)
}

type switchCase struct {
	labels []exprNode
	body   Statement
}

type switchStatement struct {
	subject exprNode
	cases   []switchCase
	dflt    Statement // zero when absent
}

func (s *switchStatement) format(ctx *formattingContext) {
	// Label matching needs every label value up front, so label initial
	// statements hoist unconditionally; case bodies run only when taken and
	// keep theirs in place.
	s.subject.formatInitialStatements(ctx)
	for _, c := range s.cases {
		for _, label := range c.labels {
			label.formatInitialStatements(ctx)
		}
	}
	ctx.append("switch (")
	ctx.appendOutputExpression(s.subject)
	ctx.append(") {")
	ctx.endLine()
	ctx.enterBlock()
	for _, c := range s.cases {
		for _, label := range c.labels {
			ctx.append("case ")
			ctx.appendOutputExpression(label)
			ctx.append(":")
			ctx.endLine()
		}
		ctx.enterBlock()
		ctx.appendStatement(c.body)
		ctx.append("break;")
		ctx.endLine()
		ctx.exitBlock()
	}
	if s.dflt.impl != nil {
		ctx.append("default:")
		ctx.endLine()
		ctx.enterBlock()
		ctx.appendStatement(s.dflt)
		ctx.exitBlock()
	}
	ctx.exitBlock()
	ctx.append("}")
	ctx.endLine()
}

func (s *switchStatement) collectRequires(rc *requireCollector) {
	s.subject.collectRequires(rc)
	for _, c := range s.cases {
		for _, label := range c.labels {
			label.collectRequires(rc)
		}
		c.body.impl.collectRequires(rc)
	}
	if s.dflt.impl != nil {
		s.dflt.impl.collectRequires(rc)
	}
}
