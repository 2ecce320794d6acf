// Package lexer turns UTF-16 source text into ECMAScript tokens.
package lexer

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
)

type lexerState int

const (
	defaultState lexerState = iota
	singleLineCommentState
	multiLineCommentState
	identifierPartState
	doubleStringLiteralState
	singleStringLiteralState
	hexIntegerState
	octalIntegerState
	decimalLiteralState
)

const eof rune = -1

// Lexer produces one token per call to Next. The parser steers it with the
// flags below according to the grammar's lookahead restrictions.
type Lexer struct {
	src       []uint16
	pos       int
	line      int
	lineStart int

	// lineBefore is attached to the next emitted token, then cleared.
	lineBefore bool

	regexpAllowed       bool
	strict              bool
	parseIdentifierName bool
}

// New decodes a UTF-8 source buffer and returns a lexer over it.
func New(src []byte) (*Lexer, error) {
	units, err := Decode(src)
	if err != nil {
		return nil, err
	}
	return NewFromUnits(units), nil
}

func NewFromUnits(units []uint16) *Lexer {
	return &Lexer{src: units, line: 1}
}

// SetRegexpAllowed selects whether a '/' starts a regular expression literal
// rather than a division operator.
func (l *Lexer) SetRegexpAllowed(allowed bool) {
	l.regexpAllowed = allowed
}

// SetStrict switches strict mode code rules on or off.
func (l *Lexer) SetStrict(strict bool) {
	l.strict = strict
}

func (l *Lexer) Strict() bool {
	return l.strict
}

// SetParseIdentifierName makes keywords lex as identifiers, as they do after
// a '.' in a member expression.
func (l *Lexer) SetParseIdentifierName(enabled bool) {
	l.parseIdentifierName = enabled
}

func (l *Lexer) peek(offset int) rune {
	if i := l.pos + offset; i < len(l.src) {
		return rune(l.src[i])
	}
	return eof
}

func (l *Lexer) hasPrefix(s string) bool {
	for i := 0; i < len(s); i++ {
		if l.peek(i) != rune(s[i]) {
			return false
		}
	}
	return true
}

func (l *Lexer) skipLineTerminator() {
	c := l.peek(0)
	l.pos++
	if c == '\r' && l.peek(0) == '\n' {
		l.pos++
	}
	l.line++
	l.lineStart = l.pos
}

// begin starts a token at the current position and takes the pending line
// terminator bit.
func (l *Lexer) begin() Token {
	tok := Token{
		LineBefore: l.lineBefore,
		Pos:        l.pos,
		Line:       l.line,
		Column:     l.pos - l.lineStart + 1,
	}
	l.lineBefore = false
	return tok
}

func (l *Lexer) errorf(format string, args ...any) error {
	return types.NewSyntaxError(format, args...).WithPosition(l.line, l.pos-l.lineStart+1)
}

// Next returns the next token, or an EOF token at the end of the source.
func (l *Lexer) Next() (Token, error) {
	tok, err := l.next()
	if err != nil {
		return Token{}, err
	}
	tok.End = l.pos
	return tok, nil
}

func (l *Lexer) next() (Token, error) {
	var (
		state = defaultState
		tok   Token
		buf   []uint16
		num   float64
	)

	for {
		c := l.peek(0)
		switch state {
		case defaultState:
			switch {
			case c == eof:
				tok = l.begin()
				tok.Type = EOF
				return tok, nil
			case value.IsWhiteSpace(c):
				l.pos++
			case value.IsLineTerminator(c):
				l.skipLineTerminator()
				l.lineBefore = true
			case c == '/' && l.peek(1) == '/':
				state = singleLineCommentState
				l.pos += 2
			case c == '/' && l.peek(1) == '*':
				state = multiLineCommentState
				l.pos += 2
			case c == '/' && l.regexpAllowed:
				return Token{}, l.errorf("regular expressions are not supported")
			case c == '"':
				tok = l.begin()
				state = doubleStringLiteralState
				l.pos++
			case c == '\'':
				tok = l.begin()
				state = singleStringLiteralState
				l.pos++
			case c == '0' && (l.peek(1) == 'x' || l.peek(1) == 'X'):
				tok = l.begin()
				state = hexIntegerState
				l.pos += 2
				if _, ok := hexValue(l.peek(0)); !ok {
					return Token{}, l.errorf("missing hexadecimal digits")
				}
			case c == '0' && isDecimalDigit(l.peek(1)):
				if l.strict {
					return Token{}, l.errorf("octal literals are not allowed in strict mode")
				}
				tok = l.begin()
				state = octalIntegerState
				l.pos++
			case isDecimalDigit(c) || (c == '.' && isDecimalDigit(l.peek(1))):
				tok = l.begin()
				state = decimalLiteralState
			case isIdentifierStart(c):
				tok = l.begin()
				state = identifierPartState
			case c == '\\':
				return Token{}, l.errorf("unicode escape sequences in identifiers are not supported")
			default:
				return l.punctuator(l.begin())
			}

		case singleLineCommentState:
			if c == eof || value.IsLineTerminator(c) {
				state = defaultState
			} else {
				l.pos++
			}

		case multiLineCommentState:
			switch {
			case c == eof:
				return Token{}, l.errorf("unterminated comment")
			case c == '*' && l.peek(1) == '/':
				state = defaultState
				l.pos += 2
			case value.IsLineTerminator(c):
				l.skipLineTerminator()
				l.lineBefore = true
			default:
				l.pos++
			}

		case identifierPartState:
			switch {
			case c != eof && isIdentifierPart(c):
				buf = append(buf, uint16(c))
				l.pos++
			case c == '\\':
				return Token{}, l.errorf("unicode escape sequences in identifiers are not supported")
			default:
				return l.identifier(tok, value.StringFromUnits(buf))
			}

		case doubleStringLiteralState, singleStringLiteralState:
			quote := '"'
			if state == singleStringLiteralState {
				quote = '\''
			}

			switch {
			case c == quote:
				l.pos++
				tok.Type = STRING
				tok.Value = value.StringFromUnits(buf)
				return tok, nil
			case c == eof || value.IsLineTerminator(c):
				return Token{}, l.errorf("unterminated string literal")
			case c == '\\':
				l.pos++
				units, octal, err := l.escape()
				if err != nil {
					return Token{}, err
				}
				buf = append(buf, units...)
				tok.LegacyOctal = tok.LegacyOctal || octal
			default:
				buf = append(buf, uint16(c))
				l.pos++
			}

		case hexIntegerState:
			d, ok := hexValue(c)
			if !ok {
				return l.number(tok, num)
			}
			num = num*16 + float64(d)
			l.pos++

		case octalIntegerState:
			switch {
			case '0' <= c && c <= '7':
				num = num*8 + float64(c-'0')
				l.pos++
			case c == '8' || c == '9':
				return Token{}, l.errorf("invalid digit %q in octal literal", c)
			default:
				tok.LegacyOctal = true
				return l.number(tok, num)
			}

		case decimalLiteralState:
			return l.decimal(tok)
		}
	}
}

func (l *Lexer) identifier(tok Token, name value.String) (Token, error) {
	tok.Type, tok.Value = IDENTIFIER, name
	if l.parseIdentifierName {
		return tok, nil
	}

	kw, ok := keywordTable[name.String()]
	switch {
	case !ok:
		return tok, nil
	case kw.futureKeyword && kw.strict && !l.strict:
		return tok, nil
	case kw.futureKeyword:
		return Token{}, types.NewSyntaxError("unexpected reserved word %q", name.String()).WithPosition(tok.Line, tok.Column)
	}

	tok.Type = kw.token
	switch kw.token {
	case NULL:
		tok.Value = value.Null
	case BOOLEAN:
		tok.Value = value.BooleanOf(name.String() == "true")
	default:
		tok.Value = nil
	}
	return tok, nil
}

func (l *Lexer) punctuator(tok Token) (Token, error) {
	for _, p := range punctuators {
		if text := token2string[p]; l.hasPrefix(text) {
			l.pos += len(text)
			tok.Type = p
			return tok, nil
		}
	}
	return Token{}, l.errorf("unexpected character %q", l.peek(0))
}

func (l *Lexer) decimal(tok Token) (Token, error) {
	digits := func() {
		for isDecimalDigit(l.peek(0)) {
			l.pos++
		}
	}

	digits()
	if l.peek(0) == '.' {
		l.pos++
		digits()
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		l.pos++
		if c := l.peek(0); c == '+' || c == '-' {
			l.pos++
		}
		if !isDecimalDigit(l.peek(0)) {
			return Token{}, l.errorf("missing exponent digits")
		}
		digits()
	}

	var b strings.Builder
	for _, u := range l.src[tok.Pos:l.pos] {
		b.WriteByte(byte(u))
	}
	n, err := strconv.ParseFloat(b.String(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Token{}, l.errorf("invalid numeric literal %q", b.String())
	}
	return l.number(tok, n)
}

func (l *Lexer) number(tok Token, n float64) (Token, error) {
	if c := l.peek(0); isIdentifierStart(c) || isDecimalDigit(c) {
		return Token{}, l.errorf("identifier starts immediately after numeric literal")
	}
	tok.Type = NUMBER
	tok.Value = value.Number(n)
	return tok, nil
}

// escape reads an escape sequence after the backslash. It reports whether
// the sequence was an octal escape.
func (l *Lexer) escape() ([]uint16, bool, error) {
	c := l.peek(0)
	switch {
	case c == eof:
		return nil, false, l.errorf("unterminated string literal")
	case value.IsLineTerminator(c):
		l.skipLineTerminator()
		return nil, false, nil
	case c == '0' && !isDecimalDigit(l.peek(1)):
		l.pos++
		return []uint16{0}, false, nil
	case '0' <= c && c <= '7':
		if l.strict {
			return nil, false, l.errorf("octal escape sequences are not allowed in strict mode")
		}
		maxDigits := 3
		if c > '3' {
			maxDigits = 2
		}
		var v uint16
		for i := 0; i < maxDigits; i++ {
			d := l.peek(0)
			if d < '0' || '7' < d {
				break
			}
			v = v*8 + uint16(d-'0')
			l.pos++
		}
		return []uint16{v}, true, nil
	case c == 'x':
		l.pos++
		v, err := l.hexDigits(2)
		return []uint16{v}, false, err
	case c == 'u':
		l.pos++
		v, err := l.hexDigits(4)
		return []uint16{v}, false, err
	}

	l.pos++
	if e, ok := singleEscapeCharacters[c]; ok {
		return []uint16{e}, false, nil
	}
	return []uint16{uint16(c)}, false, nil
}

var singleEscapeCharacters = map[rune]uint16{
	'b': '\b',
	't': '\t',
	'n': '\n',
	'v': '\v',
	'f': '\f',
	'r': '\r',
}

func (l *Lexer) hexDigits(n int) (uint16, error) {
	var v uint16
	for i := 0; i < n; i++ {
		d, ok := hexValue(l.peek(0))
		if !ok {
			return 0, l.errorf("invalid hexadecimal escape sequence")
		}
		v = v*16 + uint16(d)
		l.pos++
	}
	return v, nil
}

func hexValue(c rune) (int, bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func isDecimalDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

var (
	identifierStartTables = []*unicode.RangeTable{unicode.Lu, unicode.Ll, unicode.Lt, unicode.Lm, unicode.Lo, unicode.Nl}
	identifierPartTables  = []*unicode.RangeTable{unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc}
)

func isIdentifierStart(c rune) bool {
	return c == '$' || c == '_' || (c >= 0 && unicode.In(c, identifierStartTables...))
}

func isIdentifierPart(c rune) bool {
	const zwnj, zwj = 0x200C, 0x200D
	return isIdentifierStart(c) || c == zwnj || c == zwj || (c >= 0 && unicode.In(c, identifierPartTables...))
}
