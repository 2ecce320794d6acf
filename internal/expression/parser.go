package expression

import (
	"os"
	"strconv"

	"github.com/k0kubun/pp"
	"github.com/karupanerura/bootjs-emulator/internal/lexer"
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
)

// binaryOperatorPrecedence drives the binary levels of the grammar, from
// LogicalORExpression (lowest) to MultiplicativeExpression (highest).
var binaryOperatorPrecedence = map[lexer.TokenType]int{
	lexer.LOGICAL_OR: 1,

	lexer.LOGICAL_AND: 2,

	lexer.OR: 3,

	lexer.EXCLUSIVE_OR: 4,

	lexer.AND: 5,

	lexer.EQUAL:            6,
	lexer.NOT_EQUAL:        6,
	lexer.STRICT_EQUAL:     6,
	lexer.STRICT_NOT_EQUAL: 6,

	lexer.LESS:             7,
	lexer.GREATER:          7,
	lexer.LESS_OR_EQUAL:    7,
	lexer.GREATER_OR_EQUAL: 7,
	lexer.INSTANCEOF:       7,
	lexer.IN:               7,

	lexer.SHIFT_LEFT:           8,
	lexer.SHIFT_RIGHT:          8,
	lexer.UNSIGNED_SHIFT_RIGHT: 8,

	lexer.PLUS:  9,
	lexer.MINUS: 9,

	lexer.MULTIPLY:  10,
	lexer.SLASH:     10,
	lexer.REMAINDER: 10,
}

const (
	lowestBinaryPrecedence  = 1
	highestBinaryPrecedence = 10
)

var parserDebugLog = false

func init() {
	if v, err := strconv.ParseBool(os.Getenv("BOOTJS_EXPRESSION_DEBUG")); v && err == nil {
		parserDebugLog = true
	}
}

type ParseOption func(*parser)

// WithStrict parses the source as strict mode code from the first token.
func WithStrict() ParseOption {
	return func(p *parser) {
		p.strict = true
	}
}

// WithDebugOutput dumps the parsed tree to stderr.
func WithDebugOutput() ParseOption {
	return func(p *parser) {
		p.debug = true
	}
}

type parser struct {
	source string
	units  []uint16
	lex    *lexer.Lexer

	// lookahead is the one token buffer behind peek.
	lookahead *lexer.Token
	last      lexer.TokenType
	lastEnd   int

	strict         bool
	octalDirective bool
	debug          bool
}

func newParser(source string, opts []ParseOption) (*parser, error) {
	p := &parser{source: source, debug: parserDebugLog}
	for _, opt := range opts {
		opt(p)
	}

	units, err := lexer.Decode([]byte(source))
	if err != nil {
		return nil, err
	}
	p.units = units
	p.lex = lexer.NewFromUnits(units)
	p.lex.SetStrict(p.strict)
	return p, nil
}

// ParseExpr parses source as a single Expression.
func ParseExpr(source string, opts ...ParseOption) (*Expr, error) {
	p, err := newParser(source, opts)
	if err != nil {
		return nil, err
	}

	op, err := p.parseExpression(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.EOF); err != nil {
		return nil, err
	}

	expr := &Expr{Source: source, operation: op}
	if p.debug {
		p.dump(expr)
	}
	return expr, nil
}

func ParseExprWithDebugOutput(source string) (*Expr, error) {
	return ParseExpr(source, WithDebugOutput())
}

// ParseProgram parses source as a statement list. A "use strict" directive
// prologue switches the rest of the program to strict mode code.
func ParseProgram(source string, opts ...ParseOption) (*Program, error) {
	p, err := newParser(source, opts)
	if err != nil {
		return nil, err
	}

	prog := &Program{Source: source}
	directivePrologue := true
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type == lexer.EOF {
			break
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)

		if directivePrologue {
			directive, ok := p.directive(tok, stmt)
			switch {
			case !ok:
				directivePrologue = false
			case directive:
				if err := p.enterStrict(); err != nil {
					return nil, err
				}
			case tok.LegacyOctal:
				p.octalDirective = true
			}
		}
	}

	prog.Strict = p.strict
	if p.debug {
		p.dump(prog)
	}
	return prog, nil
}

func ParseProgramWithDebugOutput(source string) (*Program, error) {
	return ParseProgram(source, WithDebugOutput())
}

// directive reports whether stmt, which starts with first, belongs to a
// directive prologue, and whether it is exactly the "use strict" directive.
func (p *parser) directive(first lexer.Token, stmt *Statement) (useStrict bool, ok bool) {
	if first.Type != lexer.STRING || stmt.Kind != ExpressionStatement {
		return false, false
	}
	lit, ok := stmt.Expr.operation.(*literalOperation)
	if !ok {
		return false, false
	}
	s, ok := lit.value.(value.String)
	return ok && s.String() == "use strict" && first.End-first.Pos == len(`"use strict"`), true
}

func (p *parser) enterStrict() error {
	if p.octalDirective {
		return types.NewSyntaxError("octal escape sequences are not allowed in strict mode")
	}
	p.strict = true
	p.lex.SetStrict(true)

	// the token after the directive may have been read in sloppy mode
	if tok := p.lookahead; tok != nil {
		if tok.LegacyOctal {
			return types.NewSyntaxError("octal literals are not allowed in strict mode").WithPosition(tok.Line, tok.Column)
		}
		if tok.Type == lexer.IDENTIFIER && lexer.IsStrictReservedWord(tok.Value.(value.String).String()) {
			return unexpectedToken(*tok)
		}
	}
	return nil
}

func (p *parser) dump(v any) {
	pp.Fprintln(os.Stderr, p.source)
	pp.Fprintln(os.Stderr, v)
}

// endsOperand reports whether a '/' after a token of type t is a division.
func endsOperand(t lexer.TokenType) bool {
	switch t {
	case lexer.IDENTIFIER, lexer.NUMBER, lexer.STRING, lexer.BOOLEAN, lexer.NULL, lexer.THIS,
		lexer.RIGHT_PARENTHESIS, lexer.RIGHT_BRACKET, lexer.RIGHT_BRACE,
		lexer.INCREMENT, lexer.DECREMENT:
		return true
	default:
		return false
	}
}

func (p *parser) peek() (lexer.Token, error) {
	if p.lookahead == nil {
		p.lex.SetRegexpAllowed(!endsOperand(p.last))
		tok, err := p.lex.Next()
		if err != nil {
			return lexer.Token{}, err
		}
		p.lookahead = &tok
	}
	return *p.lookahead, nil
}

func (p *parser) next() (lexer.Token, error) {
	tok, err := p.peek()
	if err != nil {
		return tok, err
	}
	p.lookahead = nil
	p.last = tok.Type
	p.lastEnd = tok.End
	return tok, nil
}

func (p *parser) expect(t lexer.TokenType) (lexer.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Type != t {
		return tok, unexpectedToken(tok)
	}
	return tok, nil
}

func unexpectedToken(tok lexer.Token) error {
	if tok.Type == lexer.EOF {
		return types.NewSyntaxError("unexpected end of input").WithPosition(tok.Line, tok.Column)
	}
	return types.NewSyntaxError("unexpected token %s", tok).WithPosition(tok.Line, tok.Column)
}

func unsupported(tok lexer.Token, what string) error {
	return types.NewSyntaxError("%s are not supported", what).WithPosition(tok.Line, tok.Column)
}

func (p *parser) parseStatement() (*Statement, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case lexer.SEMICOLON:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		return &Statement{Kind: EmptyStatement, Line: tok.Line}, nil

	case lexer.DEBUGGER:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		if err := p.expectTerminator(); err != nil {
			return nil, err
		}
		return &Statement{Kind: DebuggerStatement, Line: tok.Line}, nil

	case lexer.LEFT_BRACE:
		return nil, unsupported(tok, "block statements")

	case lexer.FUNCTION:
		return nil, unsupported(tok, "function declarations")

	case lexer.VAR, lexer.IF, lexer.DO, lexer.WHILE, lexer.FOR, lexer.CONTINUE, lexer.BREAK,
		lexer.RETURN, lexer.WITH, lexer.SWITCH, lexer.THROW, lexer.TRY:
		return nil, unsupported(tok, tok.Type.String()+" statements")
	}

	op, err := p.parseExpression(false)
	if err != nil {
		return nil, err
	}
	source := value.StringFromUnits(p.units[tok.Pos:p.lastEnd]).String()
	if err := p.expectTerminator(); err != nil {
		return nil, err
	}

	return &Statement{
		Kind: ExpressionStatement,
		Expr: &Expr{Source: source, operation: op},
		Line: tok.Line,
	}, nil
}

// expectTerminator accepts an explicit ';', or nothing when the next token is
// '}', the end of input, or on a new line.
func (p *parser) expectTerminator() error {
	tok, err := p.peek()
	if err != nil {
		return err
	}

	switch {
	case tok.Type == lexer.SEMICOLON:
		_, err := p.next()
		return err
	case tok.Type == lexer.RIGHT_BRACE, tok.Type == lexer.EOF, tok.LineBefore:
		return nil
	default:
		return unexpectedToken(tok)
	}
}

// parseExpression parses Expression, or ExpressionNoIn when noIn is set.
func (p *parser) parseExpression(noIn bool) (operation, error) {
	left, err := p.parseAssignmentExpression(noIn)
	if err != nil {
		return nil, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type != lexer.COMMA {
			return left, nil
		}
		if _, err := p.next(); err != nil {
			return nil, err
		}

		right, err := p.parseAssignmentExpression(noIn)
		if err != nil {
			return nil, err
		}
		left = &binaryOperation{operator: lexer.COMMA, left: left, right: right}
	}
}

func isAssignmentOperator(t lexer.TokenType) bool {
	if t == lexer.ASSIGN {
		return true
	}
	_, ok := compoundAssignmentOperators[t]
	return ok
}

func (p *parser) parseAssignmentExpression(noIn bool) (operation, error) {
	start, err := p.peek()
	if err != nil {
		return nil, err
	}

	left, err := p.parseConditionalExpression(noIn)
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if !isAssignmentOperator(tok.Type) {
		return left, nil
	}
	if err := p.checkAssignmentTarget(start, left); err != nil {
		return nil, err
	}
	if _, err := p.next(); err != nil {
		return nil, err
	}

	right, err := p.parseAssignmentExpression(noIn)
	if err != nil {
		return nil, err
	}
	return &assignOperation{operator: tok.Type, target: left, value: right}, nil
}

var (
	evalName      = value.NewString("eval")
	argumentsName = value.NewString("arguments")
)

// checkAssignmentTarget applies the early errors of assignment and of the
// increment and decrement operators.
func (p *parser) checkAssignmentTarget(start lexer.Token, target operation) error {
	if !canReference(target) {
		return types.NewReferenceError("invalid assignment target").WithPosition(start.Line, start.Column)
	}
	if id, ok := target.(*identifierOperation); ok && p.strict && (id.name.Equal(evalName) || id.name.Equal(argumentsName)) {
		return types.NewSyntaxError("cannot assign to %s in strict mode", id.name.String()).WithPosition(start.Line, start.Column)
	}
	return nil
}

func (p *parser) parseConditionalExpression(noIn bool) (operation, error) {
	cond, err := p.parseBinaryExpression(lowestBinaryPrecedence, noIn)
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Type != lexer.QUESTION_MARK {
		return cond, nil
	}
	if _, err := p.next(); err != nil {
		return nil, err
	}

	consequent, err := p.parseAssignmentExpression(false)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.COLON); err != nil {
		return nil, err
	}
	alternate, err := p.parseAssignmentExpression(noIn)
	if err != nil {
		return nil, err
	}

	return &ternaryOperation{condition: cond, consequent: consequent, alternate: alternate}, nil
}

// parseBinaryExpression parses the binary level of the given precedence:
// operands come from the next higher level, operators of this level fold to
// the left.
func (p *parser) parseBinaryExpression(precedence int, noIn bool) (operation, error) {
	if precedence > highestBinaryPrecedence {
		return p.parseUnaryExpression()
	}

	left, err := p.parseBinaryExpression(precedence+1, noIn)
	if err != nil {
		return nil, err
	}

	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if binaryOperatorPrecedence[tok.Type] != precedence || (noIn && tok.Type == lexer.IN) {
			return left, nil
		}
		if _, err := p.next(); err != nil {
			return nil, err
		}

		right, err := p.parseBinaryExpression(precedence+1, noIn)
		if err != nil {
			return nil, err
		}
		left = &binaryOperation{operator: tok.Type, left: left, right: right}
	}
}

func (p *parser) parseUnaryExpression() (operation, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case lexer.DELETE, lexer.VOID, lexer.TYPEOF, lexer.PLUS, lexer.MINUS, lexer.BITWISE_NOT, lexer.NOT:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		if _, ok := operand.(*identifierOperation); ok && tok.Type == lexer.DELETE && p.strict {
			return nil, types.NewSyntaxError("cannot delete unqualified identifier in strict mode").WithPosition(tok.Line, tok.Column)
		}
		return &unaryOperation{operator: tok.Type, operand: operand}, nil

	case lexer.INCREMENT, lexer.DECREMENT:
		if _, err := p.next(); err != nil {
			return nil, err
		}
		start, err := p.peek()
		if err != nil {
			return nil, err
		}
		operand, err := p.parseUnaryExpression()
		if err != nil {
			return nil, err
		}
		if err := p.checkAssignmentTarget(start, operand); err != nil {
			return nil, err
		}
		return &updateOperation{operator: tok.Type, operand: operand, prefix: true}, nil

	default:
		return p.parsePostfixExpression()
	}
}

func (p *parser) parsePostfixExpression() (operation, error) {
	start, err := p.peek()
	if err != nil {
		return nil, err
	}
	operand, err := p.parseLeftHandSideExpression()
	if err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if (tok.Type != lexer.INCREMENT && tok.Type != lexer.DECREMENT) || tok.LineBefore {
		return operand, nil
	}
	if err := p.checkAssignmentTarget(start, operand); err != nil {
		return nil, err
	}
	if _, err := p.next(); err != nil {
		return nil, err
	}
	return &updateOperation{operator: tok.Type, operand: operand}, nil
}

func (p *parser) parseLeftHandSideExpression() (operation, error) {
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	var expr operation
	if tok.Type == lexer.NEW {
		expr, err = p.parseNewExpression()
	} else {
		expr, err = p.parsePrimaryExpression()
	}
	if err != nil {
		return nil, err
	}

	for {
		expr, err = p.parseMemberSuffix(expr)
		if err != nil {
			return nil, err
		}

		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if tok.Type != lexer.LEFT_PARENTHESIS {
			return expr, nil
		}
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		expr = &callOperation{callee: expr, arguments: args}
	}
}

// parseNewExpression parses 'new' MemberExpression Arguments?.
func (p *parser) parseNewExpression() (operation, error) {
	if _, err := p.expect(lexer.NEW); err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}

	var callee operation
	if tok.Type == lexer.NEW {
		callee, err = p.parseNewExpression()
	} else {
		callee, err = p.parsePrimaryExpression()
	}
	if err != nil {
		return nil, err
	}
	if callee, err = p.parseMemberSuffix(callee); err != nil {
		return nil, err
	}

	if tok, err = p.peek(); err != nil {
		return nil, err
	}
	if tok.Type != lexer.LEFT_PARENTHESIS {
		return &newOperation{callee: callee}, nil
	}
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	return &newOperation{callee: callee, arguments: args}, nil
}

// parseMemberSuffix folds any '.name' and '[expr]' accessors onto expr.
func (p *parser) parseMemberSuffix(expr operation) (operation, error) {
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch tok.Type {
		case lexer.PERIOD:
			if _, err := p.next(); err != nil {
				return nil, err
			}
			p.lex.SetParseIdentifierName(true)
			name, err := p.next()
			p.lex.SetParseIdentifierName(false)
			if err != nil {
				return nil, err
			}
			if name.Type != lexer.IDENTIFIER {
				return nil, unexpectedToken(name)
			}
			expr = &memberOperation{object: expr, property: &literalOperation{value: name.Value}}

		case lexer.LEFT_BRACKET:
			if _, err := p.next(); err != nil {
				return nil, err
			}
			property, err := p.parseExpression(false)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RIGHT_BRACKET); err != nil {
				return nil, err
			}
			expr = &memberOperation{object: expr, property: property}

		default:
			return expr, nil
		}
	}
}

func (p *parser) parseArguments() ([]operation, error) {
	if _, err := p.expect(lexer.LEFT_PARENTHESIS); err != nil {
		return nil, err
	}

	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Type == lexer.RIGHT_PARENTHESIS {
		_, err := p.next()
		return nil, err
	}

	var args []operation
	for {
		arg, err := p.parseAssignmentExpression(false)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok.Type {
		case lexer.COMMA:
			continue
		case lexer.RIGHT_PARENTHESIS:
			return args, nil
		default:
			return nil, unexpectedToken(tok)
		}
	}
}

func (p *parser) parsePrimaryExpression() (operation, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}

	switch tok.Type {
	case lexer.THIS:
		return &emptyOperation{kind: thisKind}, nil

	case lexer.IDENTIFIER:
		return &identifierOperation{name: tok.Value.(value.String)}, nil

	case lexer.NUMBER, lexer.STRING, lexer.BOOLEAN, lexer.NULL:
		if tok.LegacyOctal && p.strict {
			return nil, types.NewSyntaxError("octal literals are not allowed in strict mode").WithPosition(tok.Line, tok.Column)
		}
		return &literalOperation{value: tok.Value}, nil

	case lexer.LEFT_PARENTHESIS:
		expr, err := p.parseExpression(false)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RIGHT_PARENTHESIS); err != nil {
			return nil, err
		}
		return expr, nil

	case lexer.FUNCTION:
		return nil, unsupported(tok, "function expressions")
	case lexer.LEFT_BRACKET:
		return nil, unsupported(tok, "array literals")
	case lexer.LEFT_BRACE:
		return nil, unsupported(tok, "object literals")

	default:
		return nil, unexpectedToken(tok)
	}
}
