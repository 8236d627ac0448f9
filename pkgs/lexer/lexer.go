// Package lexer turns expression source text into a stream of tokens.
//
// The lexer is lazy: tokens are produced one at a time by Next, and the
// stream can be rewound to any previously captured Mark, which lets the
// parser speculate and backtrack without re-tokenizing from the start.
package lexer

import (
	"fmt"
	"strings"
)

// ASCII character lookup tables for fast classification
var (
	isWhitespace [128]bool
	isDigit      [128]bool
	isHexDigit   [128]bool
	isIdentStart [128]bool
	isIdentPart  [128]bool
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
		isDigit[i] = '0' <= ch && ch <= '9'
		isHexDigit[i] = isDigit[i] || ('A' <= ch && ch <= 'F')
		isIdentStart[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isIdentPart[i] = isIdentStart[i] || isDigit[i]
	}
}

// LexError reports a malformed token. It is always fatal to the current
// parse; the lexer makes no attempt to resynchronize.
type LexError struct {
	Pos     Position
	Message string
	input   string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s\n%s",
		e.Pos.Line, e.Pos.Column, e.Message, FormatContext(e.input, e.Pos))
}

// FormatContext renders the source line at pos with a caret pointing at the
// offending column, for inclusion in error messages.
func FormatContext(input string, pos Position) string {
	lines := strings.Split(input, "\n")
	if pos.Line < 1 || pos.Line > len(lines) {
		return ""
	}
	line := lines[pos.Line-1]
	caret := pos.Column - 1
	if caret < 0 {
		caret = 0
	}
	if caret > len(line) {
		caret = len(line)
	}
	return fmt.Sprintf("  %s\n  %s^", line, strings.Repeat(" ", caret))
}

// Mark is an opaque checkpoint in the token stream.
type Mark struct {
	pos  int
	line int
	col  int
}

// Lexer scans expression source text.
type Lexer struct {
	input string
	pos   int // byte offset of the next unread character
	line  int
	col   int
}

// New returns a lexer over the given source text.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Input returns the source text the lexer was created with.
func (l *Lexer) Input() string { return l.input }

// Mark captures the current position so the stream can be rewound with Reset.
func (l *Lexer) Mark() Mark {
	return Mark{pos: l.pos, line: l.line, col: l.col}
}

// Reset rewinds the lexer to a previously captured Mark.
func (l *Lexer) Reset(m Mark) {
	l.pos, l.line, l.col = m.pos, m.line, m.col
}

// Tokenize consumes the remaining input and returns all tokens up to and
// including EOF, or the first lexing error.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) errorf(pos Position, format string, args ...any) *LexError {
	return &LexError{Pos: pos, Message: fmt.Sprintf(format, args...), input: l.input}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

// Next returns the next token in the stream. After the input is exhausted it
// returns EOF tokens indefinitely.
func (l *Lexer) Next() (Token, error) {
	for l.pos < len(l.input) && l.input[l.pos] < 128 && isWhitespace[l.input[l.pos]] {
		l.advance()
	}
	start := l.position()
	if l.pos >= len(l.input) {
		return Token{Type: EOF, Pos: start}, nil
	}

	ch := l.input[l.pos]
	switch {
	case ch == '$':
		return l.scanVariable(start)
	case ch >= 128:
		return Token{}, l.errorf(start, "unexpected character %q", l.input[l.pos:l.pos+1])
	case isIdentStart[ch]:
		return l.scanIdentOrKeyword(start), nil
	case isDigit[ch]:
		return l.scanNumber(start)
	case ch == '\'':
		return l.scanString(start)
	case ch == '"':
		return Token{}, l.errorf(start, "double-quoted strings are not allowed; use single quotes")
	}

	// Punctuation and operators.
	l.advance()
	two := func(t TokenType) (Token, error) {
		l.advance()
		return l.token(t, start), nil
	}
	switch ch {
	case '.':
		return l.token(DOT, start), nil
	case '?':
		switch l.peek() {
		case '.':
			return two(QUESTION_DOT)
		case '[':
			return two(QUESTION_BRACKET)
		case ':':
			return two(QUESTION_COLON)
		}
		return l.token(QUESTION, start), nil
	case '!':
		if l.peek() == '=' {
			return two(NOT_EQ)
		}
		return l.token(BANG, start), nil
	case '<':
		if l.peek() == '=' {
			return two(LT_EQ)
		}
		return l.token(LT, start), nil
	case '>':
		if l.peek() == '=' {
			return two(GT_EQ)
		}
		return l.token(GT, start), nil
	case '=':
		if l.peek() == '=' {
			return two(EQ_EQ)
		}
		return Token{}, l.errorf(start, "single '=' is not an operator; did you mean '=='?")
	case '&':
		if l.peek() == '&' {
			return Token{}, l.errorf(start, "'&&' is not supported; use 'and'")
		}
		return Token{}, l.errorf(start, "unexpected character '&'")
	case '|':
		if l.peek() == '|' {
			return Token{}, l.errorf(start, "'||' is not supported; use 'or'")
		}
		return Token{}, l.errorf(start, "unexpected character '|'")
	case '[':
		return l.token(LBRACKET, start), nil
	case ']':
		return l.token(RBRACKET, start), nil
	case '(':
		return l.token(LPAREN, start), nil
	case ')':
		return l.token(RPAREN, start), nil
	case ',':
		return l.token(COMMA, start), nil
	case ':':
		return l.token(COLON, start), nil
	case '+':
		return l.token(PLUS, start), nil
	case '-':
		return l.token(MINUS, start), nil
	case '*':
		return l.token(STAR, start), nil
	case '/':
		return l.token(SLASH, start), nil
	case '%':
		return l.token(PERCENT, start), nil
	}
	return Token{}, l.errorf(start, "unexpected character %q", rune(ch))
}

func (l *Lexer) token(t TokenType, start Position) Token {
	return Token{Type: t, Text: l.input[start.Offset:l.pos], Pos: start}
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	for l.pos < len(l.input) && l.input[l.pos] < 128 && isIdentPart[l.input[l.pos]] {
		l.advance()
	}
	text := l.input[start.Offset:l.pos]
	if kw, ok := keywords[text]; ok {
		return Token{Type: kw, Text: text, Pos: start}
	}
	return Token{Type: IDENT, Text: text, Pos: start}
}

func (l *Lexer) scanVariable(start Position) (Token, error) {
	l.advance() // consume '$'
	ch := l.peek()
	if ch >= 128 || !isIdentStart[ch] {
		return Token{}, l.errorf(start, "'$' must be immediately followed by a variable name")
	}
	for l.pos < len(l.input) && l.input[l.pos] < 128 && isIdentPart[l.input[l.pos]] {
		l.advance()
	}
	text := l.input[start.Offset:l.pos]
	return Token{Type: VARIABLE, Text: text, Value: text[1:], Pos: start}, nil
}

// scanNumber scans integer, hex and float literals.
//
// The grammar is deliberately strict: hex literals require the 0x prefix and
// uppercase hex digits, floats require digits on both sides of the decimal
// point, and exponents use a lowercase 'e' only.
func (l *Lexer) scanNumber(start Position) (Token, error) {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		digits := 0
		for l.pos < len(l.input) && l.input[l.pos] < 128 && isHexDigit[l.input[l.pos]] {
			l.advance()
			digits++
		}
		if digits == 0 || (l.peek() < 128 && isIdentPart[l.peek()]) {
			return Token{}, l.errorf(start, "malformed hexadecimal literal (digits must be uppercase 0-9A-F)")
		}
		return l.token(HEX, start), nil
	}

	typ := INTEGER
	for l.pos < len(l.input) && isDigit[l.peek()] {
		l.advance()
	}
	if l.peek() == '.' && isDigit[l.peekAt(1)] {
		typ = FLOAT
		l.advance()
		for l.pos < len(l.input) && isDigit[l.peek()] {
			l.advance()
		}
	}
	if l.peek() == 'e' {
		next := l.peekAt(1)
		if isDigit[next] || ((next == '+' || next == '-') && isDigit[l.peekAt(2)]) {
			typ = FLOAT
			l.advance() // e
			if l.peek() == '+' || l.peek() == '-' {
				l.advance()
			}
			for l.pos < len(l.input) && isDigit[l.peek()] {
				l.advance()
			}
		}
	}
	if ch := l.peek(); ch < 128 && isIdentPart[ch] {
		return Token{}, l.errorf(start, "malformed number %q", l.input[start.Offset:l.pos+1])
	}
	return l.token(typ, start), nil
}

// scanString scans a single-quoted string literal, decoding the escape
// whitelist: \\ \' \" \n \r \t \b \f and \uXXXX. Anything else after a
// backslash is an error.
func (l *Lexer) scanString(start Position) (Token, error) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= len(l.input) || l.peek() == '\n' {
			return Token{}, l.errorf(start, "unterminated string literal")
		}
		ch := l.peek()
		if ch == '\'' {
			l.advance()
			return Token{
				Type:  STRING,
				Text:  l.input[start.Offset:l.pos],
				Value: sb.String(),
				Pos:   start,
			}, nil
		}
		if ch != '\\' {
			sb.WriteByte(ch)
			l.advance()
			continue
		}
		escPos := l.position()
		l.advance() // backslash
		esc := l.peek()
		switch esc {
		case '\\', '\'', '"':
			sb.WriteByte(esc)
			l.advance()
		case 'n':
			sb.WriteByte('\n')
			l.advance()
		case 'r':
			sb.WriteByte('\r')
			l.advance()
		case 't':
			sb.WriteByte('\t')
			l.advance()
		case 'b':
			sb.WriteByte('\b')
			l.advance()
		case 'f':
			sb.WriteByte('\f')
			l.advance()
		case 'u':
			l.advance()
			var code rune
			for i := 0; i < 4; i++ {
				d := l.peek()
				var v rune
				switch {
				case '0' <= d && d <= '9':
					v = rune(d - '0')
				case 'a' <= d && d <= 'f':
					v = rune(d-'a') + 10
				case 'A' <= d && d <= 'F':
					v = rune(d-'A') + 10
				default:
					return Token{}, l.errorf(escPos, "\\u escape requires exactly 4 hex digits")
				}
				code = code<<4 | v
				l.advance()
			}
			sb.WriteRune(code)
		default:
			return Token{}, l.errorf(escPos, "unsupported escape sequence '\\%c'", esc)
		}
	}
}
