package lexer

// TokenType identifies the lexical class of a token.
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota

	// Literals and names
	IDENT    // aaa, bbb123 (also the segments of dotted globals)
	VARIABLE // $aaa ("aaa" is stored in Value, the leading $ is not)
	INTEGER  // 26, 00
	HEX      // 0x1A2B
	FLOAT    // 0.5, 6.02e23, 3e3
	STRING   // 'abc' (Text keeps the raw lexeme, Value the decoded string)

	// Keywords
	NULL  // null
	TRUE  // true
	FALSE // false
	AND   // and
	OR    // or
	NOT   // not

	// Access and grouping
	DOT              // .
	QUESTION_DOT     // ?.
	QUESTION_BRACKET // ?[
	LBRACKET         // [
	RBRACKET         // ]
	LPAREN           // (
	RPAREN           // )
	COMMA            // ,
	COLON            // :

	// Operators
	QUESTION       // ? (ternary)
	QUESTION_COLON // ?: (null coalescing)
	BANG           // ! (non-null assertion)
	PLUS           // +
	MINUS          // -
	STAR           // *
	SLASH          // /
	PERCENT        // %
	LT             // <
	LT_EQ          // <=
	GT             // >
	GT_EQ          // >=
	EQ_EQ          // ==
	NOT_EQ         // !=
)

var tokenNames = map[TokenType]string{
	EOF:              "EOF",
	IDENT:            "IDENT",
	VARIABLE:         "VARIABLE",
	INTEGER:          "INTEGER",
	HEX:              "HEX",
	FLOAT:            "FLOAT",
	STRING:           "STRING",
	NULL:             "NULL",
	TRUE:             "TRUE",
	FALSE:            "FALSE",
	AND:              "AND",
	OR:               "OR",
	NOT:              "NOT",
	DOT:              ".",
	QUESTION_DOT:     "?.",
	QUESTION_BRACKET: "?[",
	LBRACKET:         "[",
	RBRACKET:         "]",
	LPAREN:           "(",
	RPAREN:           ")",
	COMMA:            ",",
	COLON:            ":",
	QUESTION:         "?",
	QUESTION_COLON:   "?:",
	BANG:             "!",
	PLUS:             "+",
	MINUS:            "-",
	STAR:             "*",
	SLASH:            "/",
	PERCENT:          "%",
	LT:               "<",
	LT_EQ:            "<=",
	GT:               ">",
	GT_EQ:            ">=",
	EQ_EQ:            "==",
	NOT_EQ:           "!=",
}

// String returns a readable name for the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// keywords maps reserved words to their token types.
var keywords = map[string]TokenType{
	"null":  NULL,
	"true":  TRUE,
	"false": FALSE,
	"and":   AND,
	"or":    OR,
	"not":   NOT,
}

// Position is a location in the source text. Line and Column are 1-based,
// Offset is a byte offset from the start of the input.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Token is a single lexical token.
type Token struct {
	Type TokenType
	Text string // raw lexeme as it appeared in the source
	// Value is the decoded content for STRING tokens (escapes resolved,
	// quotes stripped) and the bare name for VARIABLE tokens.
	Value string
	Pos   Position
}

// Symbol returns the token text, or the type's fixed symbol for tokens
// synthesized without source text.
func (t Token) Symbol() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Type.String()
}
