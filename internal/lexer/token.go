package lexer

import (
	"strconv"

	"github.com/karupanerura/bootjs-emulator/internal/value"
)

type TokenType int

const (
	_ TokenType = iota

	ILLEGAL
	EOF

	NUMBER
	STRING
	BOOLEAN
	NULL
	IDENTIFIER

	PLUS      // +
	MINUS     // -
	MULTIPLY  // *
	SLASH     // /
	REMAINDER // %

	AND                  // &
	OR                   // |
	EXCLUSIVE_OR         // ^
	SHIFT_LEFT           // <<
	SHIFT_RIGHT          // >>
	UNSIGNED_SHIFT_RIGHT // >>>

	ADD_ASSIGN       // +=
	SUBTRACT_ASSIGN  // -=
	MULTIPLY_ASSIGN  // *=
	QUOTIENT_ASSIGN  // /=
	REMAINDER_ASSIGN // %=

	AND_ASSIGN                  // &=
	OR_ASSIGN                   // |=
	EXCLUSIVE_OR_ASSIGN         // ^=
	SHIFT_LEFT_ASSIGN           // <<=
	SHIFT_RIGHT_ASSIGN          // >>=
	UNSIGNED_SHIFT_RIGHT_ASSIGN // >>>=

	LOGICAL_AND // &&
	LOGICAL_OR  // ||
	INCREMENT   // ++
	DECREMENT   // --

	EQUAL        // ==
	STRICT_EQUAL // ===
	LESS         // <
	GREATER      // >
	ASSIGN       // =
	NOT          // !

	BITWISE_NOT // ~

	NOT_EQUAL        // !=
	STRICT_NOT_EQUAL // !==
	LESS_OR_EQUAL    // <=
	GREATER_OR_EQUAL // >=

	LEFT_PARENTHESIS // (
	LEFT_BRACKET     // [
	LEFT_BRACE       // {
	COMMA            // ,
	PERIOD           // .

	RIGHT_PARENTHESIS // )
	RIGHT_BRACKET     // ]
	RIGHT_BRACE       // }
	SEMICOLON         // ;
	COLON             // :
	QUESTION_MARK     // ?

	firstKeyword
	IF
	IN
	DO

	VAR
	FOR
	NEW
	TRY

	THIS
	ELSE
	CASE
	VOID
	WITH

	WHILE
	BREAK
	CATCH
	THROW

	RETURN
	TYPEOF
	DELETE
	SWITCH

	DEFAULT
	FINALLY

	FUNCTION
	CONTINUE
	DEBUGGER

	INSTANCEOF
	lastKeyword
)

var token2string = [...]string{
	ILLEGAL:                     "ILLEGAL",
	EOF:                         "EOF",
	NUMBER:                      "NUMBER",
	STRING:                      "STRING",
	BOOLEAN:                     "BOOLEAN",
	NULL:                        "NULL",
	IDENTIFIER:                  "IDENTIFIER",
	PLUS:                        "+",
	MINUS:                       "-",
	MULTIPLY:                    "*",
	SLASH:                       "/",
	REMAINDER:                   "%",
	AND:                         "&",
	OR:                          "|",
	EXCLUSIVE_OR:                "^",
	SHIFT_LEFT:                  "<<",
	SHIFT_RIGHT:                 ">>",
	UNSIGNED_SHIFT_RIGHT:        ">>>",
	ADD_ASSIGN:                  "+=",
	SUBTRACT_ASSIGN:             "-=",
	MULTIPLY_ASSIGN:             "*=",
	QUOTIENT_ASSIGN:             "/=",
	REMAINDER_ASSIGN:            "%=",
	AND_ASSIGN:                  "&=",
	OR_ASSIGN:                   "|=",
	EXCLUSIVE_OR_ASSIGN:         "^=",
	SHIFT_LEFT_ASSIGN:           "<<=",
	SHIFT_RIGHT_ASSIGN:          ">>=",
	UNSIGNED_SHIFT_RIGHT_ASSIGN: ">>>=",
	LOGICAL_AND:                 "&&",
	LOGICAL_OR:                  "||",
	INCREMENT:                   "++",
	DECREMENT:                   "--",
	EQUAL:                       "==",
	STRICT_EQUAL:                "===",
	LESS:                        "<",
	GREATER:                     ">",
	ASSIGN:                      "=",
	NOT:                         "!",
	BITWISE_NOT:                 "~",
	NOT_EQUAL:                   "!=",
	STRICT_NOT_EQUAL:            "!==",
	LESS_OR_EQUAL:               "<=",
	GREATER_OR_EQUAL:            ">=",
	LEFT_PARENTHESIS:            "(",
	LEFT_BRACKET:                "[",
	LEFT_BRACE:                  "{",
	COMMA:                       ",",
	PERIOD:                      ".",
	RIGHT_PARENTHESIS:           ")",
	RIGHT_BRACKET:               "]",
	RIGHT_BRACE:                 "}",
	SEMICOLON:                   ";",
	COLON:                       ":",
	QUESTION_MARK:               "?",
	IF:                          "if",
	IN:                          "in",
	DO:                          "do",
	VAR:                         "var",
	FOR:                         "for",
	NEW:                         "new",
	TRY:                         "try",
	THIS:                        "this",
	ELSE:                        "else",
	CASE:                        "case",
	VOID:                        "void",
	WITH:                        "with",
	WHILE:                       "while",
	BREAK:                       "break",
	CATCH:                       "catch",
	THROW:                       "throw",
	RETURN:                      "return",
	TYPEOF:                      "typeof",
	DELETE:                      "delete",
	SWITCH:                      "switch",
	DEFAULT:                     "default",
	FINALLY:                     "finally",
	FUNCTION:                    "function",
	CONTINUE:                    "continue",
	DEBUGGER:                    "debugger",
	INSTANCEOF:                  "instanceof",
}

func (t TokenType) String() string {
	if 0 < t && int(t) < len(token2string) && token2string[t] != "" {
		return token2string[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

func (t TokenType) IsKeyword() bool {
	return firstKeyword < t && t < lastKeyword
}

type keyword struct {
	token         TokenType
	futureKeyword bool
	strict        bool
}

// keywordTable also covers the literal names null, true and false; their
// tokens carry the literal value.
var keywordTable = map[string]keyword{
	"if":         {token: IF},
	"in":         {token: IN},
	"do":         {token: DO},
	"var":        {token: VAR},
	"for":        {token: FOR},
	"new":        {token: NEW},
	"try":        {token: TRY},
	"this":       {token: THIS},
	"else":       {token: ELSE},
	"case":       {token: CASE},
	"void":       {token: VOID},
	"with":       {token: WITH},
	"while":      {token: WHILE},
	"break":      {token: BREAK},
	"catch":      {token: CATCH},
	"throw":      {token: THROW},
	"return":     {token: RETURN},
	"typeof":     {token: TYPEOF},
	"delete":     {token: DELETE},
	"switch":     {token: SWITCH},
	"default":    {token: DEFAULT},
	"finally":    {token: FINALLY},
	"function":   {token: FUNCTION},
	"continue":   {token: CONTINUE},
	"debugger":   {token: DEBUGGER},
	"instanceof": {token: INSTANCEOF},
	"null":       {token: NULL},
	"true":       {token: BOOLEAN},
	"false":      {token: BOOLEAN},
	"class":      {token: ILLEGAL, futureKeyword: true},
	"const":      {token: ILLEGAL, futureKeyword: true},
	"enum":       {token: ILLEGAL, futureKeyword: true},
	"export":     {token: ILLEGAL, futureKeyword: true},
	"extends":    {token: ILLEGAL, futureKeyword: true},
	"import":     {token: ILLEGAL, futureKeyword: true},
	"super":      {token: ILLEGAL, futureKeyword: true},
	"implements": {token: ILLEGAL, futureKeyword: true, strict: true},
	"interface":  {token: ILLEGAL, futureKeyword: true, strict: true},
	"let":        {token: ILLEGAL, futureKeyword: true, strict: true},
	"package":    {token: ILLEGAL, futureKeyword: true, strict: true},
	"private":    {token: ILLEGAL, futureKeyword: true, strict: true},
	"protected":  {token: ILLEGAL, futureKeyword: true, strict: true},
	"public":     {token: ILLEGAL, futureKeyword: true, strict: true},
	"static":     {token: ILLEGAL, futureKeyword: true, strict: true},
	"yield":      {token: ILLEGAL, futureKeyword: true, strict: true},
}

// IsStrictReservedWord reports whether name is reserved in strict mode code
// only.
func IsStrictReservedWord(name string) bool {
	kw, ok := keywordTable[name]
	return ok && kw.futureKeyword && kw.strict
}

// punctuators is ordered so that a longer punctuator is tried before any of
// its prefixes.
var punctuators = []TokenType{
	UNSIGNED_SHIFT_RIGHT_ASSIGN,

	STRICT_EQUAL, STRICT_NOT_EQUAL, UNSIGNED_SHIFT_RIGHT,
	SHIFT_LEFT_ASSIGN, SHIFT_RIGHT_ASSIGN,

	EQUAL, NOT_EQUAL, LESS_OR_EQUAL, GREATER_OR_EQUAL,
	LOGICAL_AND, LOGICAL_OR, INCREMENT, DECREMENT,
	SHIFT_LEFT, SHIFT_RIGHT,
	ADD_ASSIGN, SUBTRACT_ASSIGN, MULTIPLY_ASSIGN, QUOTIENT_ASSIGN, REMAINDER_ASSIGN,
	AND_ASSIGN, OR_ASSIGN, EXCLUSIVE_OR_ASSIGN,

	PLUS, MINUS, MULTIPLY, SLASH, REMAINDER,
	AND, OR, EXCLUSIVE_OR, NOT, BITWISE_NOT,
	LESS, GREATER, ASSIGN,
	LEFT_PARENTHESIS, LEFT_BRACKET, LEFT_BRACE, COMMA, PERIOD,
	RIGHT_PARENTHESIS, RIGHT_BRACKET, RIGHT_BRACE, SEMICOLON, COLON, QUESTION_MARK,
}

// Token is one lexical token. Value holds a value.Number for NUMBER, a
// value.String for STRING and IDENTIFIER, and the literal for BOOLEAN and
// NULL.
type Token struct {
	Type  TokenType
	Value value.Value

	// LineBefore reports whether a line terminator preceded the token.
	LineBefore bool

	// LegacyOctal marks an octal integer literal or an octal escape.
	LegacyOctal bool

	Pos    int // offset in code units
	End    int
	Line   int
	Column int
}

func (t Token) String() string {
	switch t.Type {
	case NUMBER, STRING, IDENTIFIER:
		s, _ := value.ToString(t.Value)
		return t.Type.String() + "(" + s.String() + ")"
	default:
		return t.Type.String()
	}
}
