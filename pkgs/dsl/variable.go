package dsl

import "github.com/sable-lang/sable/pkgs/exprtree"

// VariableDeclaration introduces a named temporary bound to an expression's
// value. The right-hand side is evaluated exactly once no matter how many
// times the declaration's reference is used afterwards.
type VariableDeclaration struct {
	name     string
	rhs      exprNode // nil declares without an initializer
	mutable  bool
	requires []Require
}

// NewDeclarationBuilder starts a declaration with a caller-chosen name. Use
// Generator.DeclarationBuilder for an automatically generated name.
func NewDeclarationBuilder(name string) *VariableDeclarationBuilder {
	return &VariableDeclarationBuilder{decl: &VariableDeclaration{name: name}}
}

// VariableDeclarationBuilder configures a VariableDeclaration.
type VariableDeclarationBuilder struct {
	decl *VariableDeclaration
}

// SetRhs sets the initializer expression.
func (b *VariableDeclarationBuilder) SetRhs(rhs Expression) *VariableDeclarationBuilder {
	b.decl.rhs = rhs.impl
	return b
}

// SetMutable declares the variable reassignable.
func (b *VariableDeclarationBuilder) SetMutable() *VariableDeclarationBuilder {
	b.decl.mutable = true
	return b
}

// SetRequires attaches external symbols the declaration depends on.
func (b *VariableDeclarationBuilder) SetRequires(requires ...Require) *VariableDeclarationBuilder {
	b.decl.requires = requires
	return b
}

// Build returns the finished declaration.
func (b *VariableDeclarationBuilder) Build() *VariableDeclaration {
	return b.decl
}

// Name returns the declared variable name.
func (d *VariableDeclaration) Name() string {
	return d.name
}

// Ref returns a reference to the declared variable. The reference carries
// the declaration as an initial statement, so any chunk using it emits the
// declaration first.
func (d *VariableDeclaration) Ref() Expression {
	return Expression{&reference{decl: d}}
}

// AsStatement returns the declaration as a statement.
func (d *VariableDeclaration) AsStatement() Statement {
	return Statement{d}
}

// format emits "const name = rhs;", with let for mutable or uninitialized
// declarations. The rhs's initial statements come first.
func (d *VariableDeclaration) format(ctx *formattingContext) {
	if d.rhs != nil {
		d.rhs.formatInitialStatements(ctx)
	}
	if d.mutable || d.rhs == nil {
		ctx.append("let ")
	} else {
		ctx.append("const ")
	}
	ctx.append(d.name)
	if d.rhs != nil {
		ctx.append(" = ")
		ctx.appendOutputExpression(d.rhs)
	}
	ctx.append(";")
	ctx.endLine()
}

func (d *VariableDeclaration) collectRequires(rc *requireCollector) {
	if rc.seen[d] {
		return
	}
	rc.seen[d] = true
	for _, r := range d.requires {
		rc.add(r)
	}
	if d.rhs != nil {
		d.rhs.collectRequires(rc)
	}
}

// reference is a use of a declared variable.
type reference struct {
	decl *VariableDeclaration
}

func (r *reference) precedence() int {
	return exprtree.MaxPrecedence
}

func (r *reference) initialStatements() []Statement {
	return []Statement{{r.decl}}
}

func (r *reference) formatInitialStatements(ctx *formattingContext) {
	ctx.appendStatement(Statement{r.decl})
}

func (r *reference) formatOutputExpr(ctx *formattingContext) {
	ctx.append(r.decl.name)
}

func (r *reference) collectRequires(rc *requireCollector) {
	r.decl.collectRequires(rc)
}
