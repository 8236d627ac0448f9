// Package parser builds expression trees from source text.
//
// Parsing is precedence-climbing over the lexer's lazy token stream. The
// parser owns two responsibilities beyond the grammar itself: it decides
// named-vs-positional call parsing with help from a Resolver, and it
// desugars null-safe access chains into guard trees before returning.
package parser

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/sable-lang/sable/pkgs/exprtree"
	"github.com/sable-lang/sable/pkgs/lexer"
)

// SyntaxError reports input that lexes but does not match the grammar. It is
// fatal to the current parse; callers wanting multi-error batching invoke
// the parser once per independent unit.
type SyntaxError struct {
	Pos     lexer.Position
	Message string
	input   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s\n%s",
		e.Pos.Line, e.Pos.Column, e.Message, lexer.FormatContext(e.input, e.Pos))
}

// Resolver supplies symbol knowledge the grammar alone cannot provide.
type Resolver interface {
	// IsKnownGlobal reports whether a bare dotted name is a known global or
	// alias.
	IsKnownGlobal(name string) bool
	// FunctionArities returns the accepted argument counts for a function,
	// or ok=false if the function is unknown.
	FunctionArities(name string) (arities []int, ok bool)
	// FunctionNames lists known function names, used for suggestions in
	// error messages.
	FunctionNames() []string
}

// TableResolver is a Resolver backed by static tables.
type TableResolver struct {
	Globals   map[string]bool
	Functions map[string][]int
}

func (r *TableResolver) IsKnownGlobal(name string) bool { return r.Globals[name] }

func (r *TableResolver) FunctionArities(name string) ([]int, bool) {
	arities, ok := r.Functions[name]
	return arities, ok
}

func (r *TableResolver) FunctionNames() []string {
	names := make([]string, 0, len(r.Functions))
	for name := range r.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse parses a single expression. The entire input must be consumed.
func Parse(input string) (exprtree.Node, error) {
	return ParseWithResolver(input, nil)
}

// ParseWithResolver parses a single expression, validating globals and
// function calls against the resolver. A nil resolver accepts everything.
func ParseWithResolver(input string, resolver Resolver) (exprtree.Node, error) {
	p, err := newParser(input, resolver)
	if err != nil {
		return nil, err
	}
	node, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseExpressionList parses a comma-separated list of expressions.
func ParseExpressionList(input string) ([]exprtree.Node, error) {
	return ParseExpressionListWithResolver(input, nil)
}

// ParseExpressionListWithResolver is ParseExpressionList with symbol
// validation.
func ParseExpressionListWithResolver(input string, resolver Resolver) ([]exprtree.Node, error) {
	p, err := newParser(input, resolver)
	if err != nil {
		return nil, err
	}
	var nodes []exprtree.Node
	for {
		node, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
		if p.tok.Type != lexer.COMMA {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ParseVariable parses exactly one variable reference, $name or the
// injected-data forms $ij.name / $ij?.name, with nothing following it.
func ParseVariable(input string) (exprtree.Node, error) {
	p, err := newParser(input, nil)
	if err != nil {
		return nil, err
	}
	if p.tok.Type != lexer.VARIABLE {
		return nil, p.syntaxErrorf(p.tok.Pos, "expected a variable, found %q", p.tok.Symbol())
	}
	node, err := p.parseVarRef()
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseDataReference parses a variable reference with an optional access
// chain, such as $aaa.bbb.0 or $aaa?.bbb?[0]. The input must contain nothing
// but the reference.
func ParseDataReference(input string) (exprtree.Node, error) {
	p, err := newParser(input, nil)
	if err != nil {
		return nil, err
	}
	if p.tok.Type != lexer.VARIABLE {
		return nil, p.syntaxErrorf(p.tok.Pos, "expected a variable, found %q", p.tok.Symbol())
	}
	base, err := p.parseVarRef()
	if err != nil {
		return nil, err
	}
	node, err := p.parsePostfix(base)
	if err != nil {
		return nil, err
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return node, nil
}

// ParseGlobal parses a dotted global name such as aaa.bbb.CCC. No resolver
// check is applied; the caller decides whether the name is known.
func ParseGlobal(input string) (exprtree.Node, error) {
	p, err := newParser(input, nil)
	if err != nil {
		return nil, err
	}
	first, err := p.expect(lexer.IDENT)
	if err != nil {
		return nil, err
	}
	name := first.Text
	for p.tok.Type == lexer.DOT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		part, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		name += "." + part.Text
	}
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return exprtree.NewGlobal(first.Pos, name), nil
}

type parser struct {
	lex      *lexer.Lexer
	input    string
	tok      lexer.Token
	resolver Resolver
}

func newParser(input string, resolver Resolver) (*parser, error) {
	p := &parser{lex: lexer.New(input), input: input, resolver: resolver}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// peekNext looks one token past the current one without consuming anything,
// rewinding the lexer afterwards.
func (p *parser) peekNext() (lexer.Token, error) {
	mark := p.lex.Mark()
	tok, err := p.lex.Next()
	if err != nil {
		return lexer.Token{}, err
	}
	p.lex.Reset(mark)
	return tok, nil
}

func (p *parser) syntaxErrorf(pos lexer.Position, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...), input: p.input}
}

func (p *parser) expectEOF() error {
	if p.tok.Type != lexer.EOF {
		return p.syntaxErrorf(p.tok.Pos, "unexpected %q after expression", p.tok.Symbol())
	}
	return nil
}

func (p *parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if p.tok.Type != t {
		return lexer.Token{}, p.syntaxErrorf(p.tok.Pos, "expected %q, found %q", t.String(), p.tok.Symbol())
	}
	tok := p.tok
	return tok, p.advance()
}

// binaryOps maps token types to binary operator table entries. The ternary
// conditional is handled separately in parseExpr.
var binaryOps = map[lexer.TokenType]*exprtree.Operator{
	lexer.QUESTION_COLON: exprtree.OpNullCoalescing,
	lexer.OR:             exprtree.OpOr,
	lexer.AND:            exprtree.OpAnd,
	lexer.EQ_EQ:          exprtree.OpEquals,
	lexer.NOT_EQ:         exprtree.OpNotEquals,
	lexer.LT:             exprtree.OpLess,
	lexer.GT:             exprtree.OpGreater,
	lexer.LT_EQ:          exprtree.OpLessEq,
	lexer.GT_EQ:          exprtree.OpGreaterEq,
	lexer.PLUS:           exprtree.OpPlus,
	lexer.MINUS:          exprtree.OpMinus,
	lexer.STAR:           exprtree.OpTimes,
	lexer.SLASH:          exprtree.OpDivide,
	lexer.PERCENT:        exprtree.OpMod,
}

// parseExpr climbs precedence levels starting at minPrec.
func (p *parser) parseExpr(minPrec int) (exprtree.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if p.tok.Type == lexer.QUESTION && exprtree.OpConditional.Precedence >= minPrec {
			pos := p.tok.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			consequent, err := p.parseExpr(exprtree.OpConditional.Precedence)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.COLON); err != nil {
				return nil, err
			}
			alternate, err := p.parseExpr(exprtree.OpConditional.Precedence)
			if err != nil {
				return nil, err
			}
			left = exprtree.NewOperatorNode(pos, exprtree.OpConditional, left, consequent, alternate)
			continue
		}

		op, ok := binaryOps[p.tok.Type]
		if !ok || op.Precedence < minPrec {
			return left, nil
		}
		pos := p.tok.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		nextMin := op.Precedence + 1
		if op.Assoc == exprtree.Right {
			nextMin = op.Precedence
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = exprtree.NewOperatorNode(pos, op, left, right)
	}
}

func (p *parser) parseUnary() (exprtree.Node, error) {
	switch p.tok.Type {
	case lexer.MINUS:
		pos := p.tok.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr(exprtree.OpNegative.Precedence)
		if err != nil {
			return nil, err
		}
		return exprtree.NewOperatorNode(pos, exprtree.OpNegative, operand), nil
	case lexer.NOT:
		pos := p.tok.Pos
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr(exprtree.OpNot.Precedence)
		if err != nil {
			return nil, err
		}
		return exprtree.NewOperatorNode(pos, exprtree.OpNot, operand), nil
	case lexer.BANG:
		return nil, p.syntaxErrorf(p.tok.Pos, "'!' is not a prefix operator; use 'not'")
	}
	primary, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(primary)
}

// parsePostfix consumes an access/call chain and desugars any null-safe
// links before handing the subtree back to the expression grammar.
func (p *parser) parsePostfix(node exprtree.Node) (exprtree.Node, error) {
	for {
		switch p.tok.Type {
		case lexer.DOT, lexer.QUESTION_DOT:
			nullSafe := p.tok.Type == lexer.QUESTION_DOT
			pos := p.tok.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			next, err := p.parseAccessAfterDot(node, pos, nullSafe)
			if err != nil {
				return nil, err
			}
			node = next
		case lexer.LBRACKET, lexer.QUESTION_BRACKET:
			nullSafe := p.tok.Type == lexer.QUESTION_BRACKET
			pos := p.tok.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			key, err := p.parseExpr(1)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBRACKET); err != nil {
				return nil, err
			}
			node = exprtree.NewItemAccess(pos, node, key, nullSafe)
		case lexer.BANG:
			pos := p.tok.Pos
			if err := p.advance(); err != nil {
				return nil, err
			}
			node = exprtree.NewOperatorNode(pos, exprtree.OpAssertNonNull, node)
		default:
			return exprtree.DesugarNullSafe(node), nil
		}
	}
}

func (p *parser) parseAccessAfterDot(base exprtree.Node, pos lexer.Position, nullSafe bool) (exprtree.Node, error) {
	switch p.tok.Type {
	case lexer.IDENT:
		name := p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Type == lexer.LPAREN {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return exprtree.NewMethodCall(pos, base, name, args, nullSafe), nil
		}
		return exprtree.NewFieldAccess(pos, base, name, nullSafe), nil
	case lexer.INTEGER:
		// Numeric index access: $aaa.0 is sugar for $aaa[0].
		value, err := strconv.ParseInt(p.tok.Text, 10, 64)
		if err != nil {
			return nil, p.syntaxErrorf(p.tok.Pos, "index out of range: %s", p.tok.Text)
		}
		key := exprtree.NewInteger(p.tok.Pos, value)
		if err := p.advance(); err != nil {
			return nil, err
		}
		return exprtree.NewItemAccess(pos, base, key, nullSafe), nil
	}
	return nil, p.syntaxErrorf(p.tok.Pos, "expected a field name after %q", map[bool]string{true: "?.", false: "."}[nullSafe])
}

// parseArgList parses a parenthesized, comma-separated positional argument
// list. The current token must be LPAREN.
func (p *parser) parseArgList() ([]exprtree.Node, error) {
	if err := p.advance(); err != nil { // consume (
		return nil, err
	}
	var args []exprtree.Node
	if p.tok.Type == lexer.RPAREN {
		return args, p.advance()
	}
	for {
		arg, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.tok.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		_, err = p.expect(lexer.RPAREN)
		return args, err
	}
}

func (p *parser) parsePrimary() (exprtree.Node, error) {
	tok := p.tok
	switch tok.Type {
	case lexer.NULL:
		return exprtree.NewNull(tok.Pos), p.advance()
	case lexer.TRUE:
		return exprtree.NewBoolean(tok.Pos, true), p.advance()
	case lexer.FALSE:
		return exprtree.NewBoolean(tok.Pos, false), p.advance()
	case lexer.INTEGER:
		value, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, p.syntaxErrorf(tok.Pos, "integer literal out of range: %s", tok.Text)
		}
		return exprtree.NewInteger(tok.Pos, value), p.advance()
	case lexer.HEX:
		value, err := strconv.ParseInt(tok.Text[2:], 16, 64)
		if err != nil {
			return nil, p.syntaxErrorf(tok.Pos, "hex literal out of range: %s", tok.Text)
		}
		return exprtree.NewInteger(tok.Pos, value), p.advance()
	case lexer.FLOAT:
		value, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.syntaxErrorf(tok.Pos, "malformed float literal: %s", tok.Text)
		}
		return exprtree.NewFloat(tok.Pos, value), p.advance()
	case lexer.STRING:
		return exprtree.NewString(tok.Pos, tok.Value), p.advance()
	case lexer.VARIABLE:
		return p.parseVarRef()
	case lexer.LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		// Grouping parens shape the tree but leave no node behind.
		inner, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		_, err = p.expect(lexer.RPAREN)
		return inner, err
	case lexer.LBRACKET:
		return p.parseBracketLiteral()
	case lexer.IDENT:
		return p.parseNamed()
	case lexer.EOF:
		return nil, p.syntaxErrorf(tok.Pos, "unexpected end of expression")
	}
	return nil, p.syntaxErrorf(tok.Pos, "unexpected %q", tok.Symbol())
}

// parseVarRef parses $name and the injected-data forms $ij.name / $ij?.name.
// The $ij bundle itself is not a value: it must be followed by a field.
func (p *parser) parseVarRef() (exprtree.Node, error) {
	tok := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	if tok.Value != "ij" {
		return exprtree.NewVarRef(tok.Pos, tok.Value, false, false), nil
	}
	switch p.tok.Type {
	case lexer.DOT, lexer.QUESTION_DOT:
		nullSafe := p.tok.Type == lexer.QUESTION_DOT
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		return exprtree.NewVarRef(tok.Pos, name.Text, true, nullSafe), nil
	case lexer.LBRACKET, lexer.QUESTION_BRACKET:
		return nil, p.syntaxErrorf(p.tok.Pos, "$ij fields cannot be accessed with brackets")
	}
	return nil, p.syntaxErrorf(tok.Pos, "$ij must be followed by a field access")
}

// parseBracketLiteral parses list literals and the bracket map forms
// [k: v, ...] and the empty map [:].
func (p *parser) parseBracketLiteral() (exprtree.Node, error) {
	pos := p.tok.Pos
	if err := p.advance(); err != nil { // consume [
		return nil, err
	}
	switch p.tok.Type {
	case lexer.RBRACKET:
		return exprtree.NewListLiteral(pos, nil), p.advance()
	case lexer.COLON:
		if err := p.advance(); err != nil {
			return nil, err
		}
		_, err := p.expect(lexer.RBRACKET)
		return exprtree.NewMapLiteral(pos, nil), err
	}

	first, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	if p.tok.Type == lexer.COLON {
		return p.parseBracketMap(pos, first)
	}
	items := []exprtree.Node{first}
	for p.tok.Type == lexer.COMMA {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Type == lexer.RBRACKET { // trailing comma
			break
		}
		item, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	_, err = p.expect(lexer.RBRACKET)
	return exprtree.NewListLiteral(pos, items), err
}

func (p *parser) parseBracketMap(pos lexer.Position, firstKey exprtree.Node) (exprtree.Node, error) {
	if err := p.advance(); err != nil { // consume :
		return nil, err
	}
	firstValue, err := p.parseExpr(1)
	if err != nil {
		return nil, err
	}
	entries := []exprtree.Node{firstKey, firstValue}
	for p.tok.Type == lexer.COMMA {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Type == lexer.RBRACKET { // trailing comma
			break
		}
		key, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, key, value)
	}
	_, err = p.expect(lexer.RBRACKET)
	return exprtree.NewMapLiteral(pos, entries), err
}

// parseNamed parses everything that starts with a bare identifier: the map()
// and record() literal forms, dotted globals, positional function calls and
// named-argument proto-init calls.
func (p *parser) parseNamed() (exprtree.Node, error) {
	pos := p.tok.Pos
	name := p.tok.Text
	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.Type == lexer.LPAREN {
		switch name {
		case "map":
			return p.parseMapLiteral(pos)
		case "record":
			return p.parseRecordLiteral(pos)
		}
	}

	// Absorb the dotted tail of a global or qualified call target.
	for p.tok.Type == lexer.DOT {
		next, err := p.peekNext()
		if err != nil {
			return nil, err
		}
		if next.Type != lexer.IDENT {
			break
		}
		if err := p.advance(); err != nil { // consume .
			return nil, err
		}
		name += "." + p.tok.Text
		if err := p.advance(); err != nil { // consume ident
			return nil, err
		}
	}

	if p.tok.Type != lexer.LPAREN {
		if p.resolver != nil && !p.resolver.IsKnownGlobal(name) {
			return nil, p.syntaxErrorf(pos, "unknown global %q", name)
		}
		return exprtree.NewGlobal(pos, name), nil
	}

	// A call: named arguments make it a proto-init, otherwise a function.
	next, err := p.peekNext()
	if err != nil {
		return nil, err
	}
	if p.tokIsNamedArgStart(next) {
		return p.parseProtoInit(pos, name)
	}
	args, err := p.parseArgList()
	if err != nil {
		return nil, err
	}
	if err := p.checkFunction(pos, name, len(args)); err != nil {
		return nil, err
	}
	return exprtree.NewFunction(pos, name, args), nil
}

// tokIsNamedArgStart reports whether the current token (just inside a call's
// open paren) and the one after it look like "name:".
func (p *parser) tokIsNamedArgStart(next lexer.Token) bool {
	// p.tok is LPAREN here; next is the first token inside the parens. A
	// named argument needs one more token of lookahead, so peek through a
	// fresh mark.
	if next.Type != lexer.IDENT {
		return false
	}
	mark := p.lex.Mark()
	defer p.lex.Reset(mark)
	if _, err := p.lex.Next(); err != nil { // skip the ident
		return false
	}
	after, err := p.lex.Next()
	if err != nil {
		return false
	}
	return after.Type == lexer.COLON
}

func (p *parser) parseMapLiteral(pos lexer.Position) (exprtree.Node, error) {
	if err := p.advance(); err != nil { // consume (
		return nil, err
	}
	if p.tok.Type == lexer.RPAREN {
		return exprtree.NewMapLiteral(pos, nil), p.advance()
	}
	var entries []exprtree.Node
	for {
		key, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, key, value)
		if p.tok.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		_, err = p.expect(lexer.RPAREN)
		return exprtree.NewMapLiteral(pos, entries), err
	}
}

func (p *parser) parseRecordLiteral(pos lexer.Position) (exprtree.Node, error) {
	if err := p.advance(); err != nil { // consume (
		return nil, err
	}
	var keys []string
	var values []exprtree.Node
	for {
		key, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key.Text)
		values = append(values, value)
		if p.tok.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		_, err = p.expect(lexer.RPAREN)
		return exprtree.NewRecordLiteral(pos, keys, values), err
	}
}

func (p *parser) parseProtoInit(pos lexer.Position, name string) (exprtree.Node, error) {
	if err := p.advance(); err != nil { // consume (
		return nil, err
	}
	var params []string
	var values []exprtree.Node
	for {
		param, err := p.expect(lexer.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.COLON); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		params = append(params, param.Text)
		values = append(values, value)
		if p.tok.Type == lexer.COMMA {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		_, err = p.expect(lexer.RPAREN)
		return exprtree.NewProtoInit(pos, name, params, values), err
	}
}

// checkFunction validates a positional call against the resolver, producing
// a suggestion for near-miss names.
func (p *parser) checkFunction(pos lexer.Position, name string, argc int) error {
	if p.resolver == nil {
		return nil
	}
	arities, ok := p.resolver.FunctionArities(name)
	if !ok {
		if suggestion := closestName(name, p.resolver.FunctionNames()); suggestion != "" {
			return p.syntaxErrorf(pos, "unknown function %q; did you mean %q?", name, suggestion)
		}
		return p.syntaxErrorf(pos, "unknown function %q", name)
	}
	for _, n := range arities {
		if n == argc {
			return nil
		}
	}
	return p.syntaxErrorf(pos, "function %q does not accept %d argument(s)", name, argc)
}

func closestName(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
