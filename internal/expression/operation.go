package expression

import (
	"math"

	"github.com/karupanerura/bootjs-emulator/internal/lexer"
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
)

// executionContext is what an operation evaluates against: the this
// binding, the environment identifiers resolve in, and the strictness of
// the code.
type executionContext struct {
	this   value.Value
	env    value.EnvironmentRecord
	global value.Object
	strict bool
}

// operation is a node of the parsed tree. execute may return a
// *value.Reference; callers that need a plain value pass the result through
// getValue.
type operation interface {
	execute(*executionContext) (value.Value, error)
}

type literalOperation struct {
	value value.Value
}

func (s *literalOperation) execute(*executionContext) (value.Value, error) {
	return s.value, nil
}

type emptyKind uint8

const (
	thisKind emptyKind = iota
)

// emptyOperation is a node without operands.
type emptyOperation struct {
	kind emptyKind
}

func (s *emptyOperation) execute(ctx *executionContext) (value.Value, error) {
	switch s.kind {
	case thisKind:
		return ctx.this, nil
	default:
		return nil, types.NewInternalError("unknown empty node kind %d", s.kind)
	}
}

type identifierOperation struct {
	name value.String
}

func (s *identifierOperation) execute(ctx *executionContext) (value.Value, error) {
	return ctx.resolveIdentifier(s.name), nil
}

type memberOperation struct {
	object   operation
	property operation
}

func (s *memberOperation) execute(ctx *executionContext) (value.Value, error) {
	base, err := ctx.evaluate(s.object)
	if err != nil {
		return nil, err
	}
	property, err := ctx.evaluate(s.property)
	if err != nil {
		return nil, err
	}
	if err := value.CheckObjectCoercible(base); err != nil {
		return nil, err
	}

	name, err := value.ToString(property)
	if err != nil {
		return nil, err
	}
	return value.NewReference(base, name, ctx.strict), nil
}

func (ctx *executionContext) evaluateArguments(arguments []operation) ([]value.Value, error) {
	args := make([]value.Value, len(arguments))
	for i, arg := range arguments {
		v, err := ctx.evaluate(arg)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

type callOperation struct {
	callee    operation
	arguments []operation
}

func (s *callOperation) execute(ctx *executionContext) (value.Value, error) {
	ref, err := s.callee.execute(ctx)
	if err != nil {
		return nil, err
	}
	callee, err := ctx.getValue(ref)
	if err != nil {
		return nil, err
	}
	args, err := ctx.evaluateArguments(s.arguments)
	if err != nil {
		return nil, err
	}

	fn, ok := callee.(value.Callable)
	if !ok {
		return nil, types.NewTypeError("%s is not a function", describe(ref))
	}

	var this value.Value = value.Undefined
	if ref, ok := ref.(*value.Reference); ok {
		if ref.IsPropertyReference() {
			this = ref.Base
		} else if env, ok := ref.Base.(value.EnvironmentRecord); ok {
			this = env.ImplicitThisValue()
		}
	}
	return fn.Call(this, args)
}

type newOperation struct {
	callee    operation
	arguments []operation
}

func (s *newOperation) execute(ctx *executionContext) (value.Value, error) {
	ref, err := s.callee.execute(ctx)
	if err != nil {
		return nil, err
	}
	callee, err := ctx.getValue(ref)
	if err != nil {
		return nil, err
	}
	args, err := ctx.evaluateArguments(s.arguments)
	if err != nil {
		return nil, err
	}

	constructor, ok := callee.(value.Constructor)
	if !ok {
		return nil, types.NewTypeError("%s is not a constructor", describe(ref))
	}
	return constructor.Construct(args)
}

// describe names the callee of a failed call in error messages.
func describe(v value.Value) string {
	if ref, ok := v.(*value.Reference); ok {
		return ref.Name.String()
	}
	return v.Type().String()
}

type unaryOperation struct {
	operator lexer.TokenType
	operand  operation
}

var (
	typeofUndefined = value.NewString("undefined")
	typeofObject    = value.NewString("object")
	typeofBoolean   = value.NewString("boolean")
	typeofNumber    = value.NewString("number")
	typeofString    = value.NewString("string")
	typeofFunction  = value.NewString("function")
)

func (s *unaryOperation) execute(ctx *executionContext) (value.Value, error) {
	switch s.operator {
	case lexer.DELETE:
		return ctx.delete(s.operand)
	case lexer.TYPEOF:
		return ctx.typeof(s.operand)
	}

	v, err := ctx.evaluate(s.operand)
	if err != nil {
		return nil, err
	}

	switch s.operator {
	case lexer.VOID:
		return value.Undefined, nil

	case lexer.PLUS:
		return value.ToNumber(v)

	case lexer.MINUS:
		n, err := value.ToNumber(v)
		if err != nil {
			return nil, err
		}
		return -n, nil

	case lexer.BITWISE_NOT:
		n, err := value.ToInt32(v)
		if err != nil {
			return nil, err
		}
		return value.Number(^n), nil

	case lexer.NOT:
		return !value.ToBoolean(v), nil

	default:
		return nil, types.NewInternalError("unknown unary operator %s", s.operator)
	}
}

func (ctx *executionContext) delete(operand operation) (value.Value, error) {
	v, err := operand.execute(ctx)
	if err != nil {
		return nil, err
	}
	ref, ok := v.(*value.Reference)
	if !ok {
		return value.True, nil
	}

	switch {
	case ref.IsUnresolvable():
		if ref.Strict {
			return nil, types.NewSyntaxError("cannot delete unqualified identifier %s in strict mode", ref.Name.String())
		}
		return value.True, nil

	case ref.IsPropertyReference():
		o, err := value.ToObject(ref.Base)
		if err != nil {
			return nil, err
		}
		deleted, err := o.Delete(ref.Name, ref.Strict)
		return value.BooleanOf(deleted), err

	default:
		if ref.Strict {
			return nil, types.NewSyntaxError("cannot delete unqualified identifier %s in strict mode", ref.Name.String())
		}
		deleted, err := ref.Base.(value.EnvironmentRecord).DeleteBinding(ref.Name)
		return value.BooleanOf(deleted), err
	}
}

func (ctx *executionContext) typeof(operand operation) (value.Value, error) {
	v, err := operand.execute(ctx)
	if err != nil {
		return nil, err
	}
	if ref, ok := v.(*value.Reference); ok && ref.IsUnresolvable() {
		return typeofUndefined, nil
	}
	if v, err = ctx.getValue(v); err != nil {
		return nil, err
	}

	switch v.Type() {
	case value.TypeUndefined:
		return typeofUndefined, nil
	case value.TypeNull:
		return typeofObject, nil
	case value.TypeBoolean:
		return typeofBoolean, nil
	case value.TypeNumber:
		return typeofNumber, nil
	case value.TypeString:
		return typeofString, nil
	}
	if value.IsCallable(v) {
		return typeofFunction, nil
	}
	return typeofObject, nil
}

// updateOperation is a prefix or postfix increment or decrement.
type updateOperation struct {
	operator lexer.TokenType
	operand  operation
	prefix   bool
}

func (s *updateOperation) execute(ctx *executionContext) (value.Value, error) {
	ref, err := s.operand.execute(ctx)
	if err != nil {
		return nil, err
	}
	v, err := ctx.getValue(ref)
	if err != nil {
		return nil, err
	}
	old, err := value.ToNumber(v)
	if err != nil {
		return nil, err
	}

	updated := old + 1
	if s.operator == lexer.DECREMENT {
		updated = old - 1
	}
	if err := ctx.putValue(ref, updated); err != nil {
		return nil, err
	}

	if s.prefix {
		return updated, nil
	}
	return old, nil
}

type binaryOperation struct {
	operator    lexer.TokenType
	left, right operation
}

func (s *binaryOperation) execute(ctx *executionContext) (value.Value, error) {
	lval, err := ctx.evaluate(s.left)
	if err != nil {
		return nil, err
	}

	switch s.operator {
	case lexer.LOGICAL_AND:
		if !value.ToBoolean(lval) {
			return lval, nil
		}
		return ctx.evaluate(s.right)

	case lexer.LOGICAL_OR:
		if value.ToBoolean(lval) {
			return lval, nil
		}
		return ctx.evaluate(s.right)

	case lexer.COMMA:
		return ctx.evaluate(s.right)
	}

	rval, err := ctx.evaluate(s.right)
	if err != nil {
		return nil, err
	}
	return applyBinaryOperator(s.operator, lval, rval)
}

// applyBinaryOperator applies an operator whose operands are both evaluated
// before it runs.
func applyBinaryOperator(operator lexer.TokenType, lval, rval value.Value) (value.Value, error) {
	switch operator {
	case lexer.PLUS:
		return add(lval, rval)

	case lexer.MINUS, lexer.MULTIPLY, lexer.SLASH, lexer.REMAINDER:
		lnum, err := value.ToNumber(lval)
		if err != nil {
			return nil, err
		}
		rnum, err := value.ToNumber(rval)
		if err != nil {
			return nil, err
		}
		switch operator {
		case lexer.MINUS:
			return lnum - rnum, nil
		case lexer.MULTIPLY:
			return lnum * rnum, nil
		case lexer.SLASH:
			return lnum / rnum, nil
		default:
			return value.Number(math.Mod(float64(lnum), float64(rnum))), nil
		}

	case lexer.SHIFT_LEFT, lexer.SHIFT_RIGHT, lexer.UNSIGNED_SHIFT_RIGHT:
		count, err := value.ToUint32(rval)
		if err != nil {
			return nil, err
		}
		count &= 0x1F
		if operator == lexer.UNSIGNED_SHIFT_RIGHT {
			lnum, err := value.ToUint32(lval)
			if err != nil {
				return nil, err
			}
			return value.Number(lnum >> count), nil
		}
		lnum, err := value.ToInt32(lval)
		if err != nil {
			return nil, err
		}
		if operator == lexer.SHIFT_LEFT {
			return value.Number(lnum << count), nil
		}
		return value.Number(lnum >> count), nil

	case lexer.AND, lexer.OR, lexer.EXCLUSIVE_OR:
		lnum, err := value.ToInt32(lval)
		if err != nil {
			return nil, err
		}
		rnum, err := value.ToInt32(rval)
		if err != nil {
			return nil, err
		}
		switch operator {
		case lexer.AND:
			return value.Number(lnum & rnum), nil
		case lexer.OR:
			return value.Number(lnum | rnum), nil
		default:
			return value.Number(lnum ^ rnum), nil
		}

	case lexer.LESS:
		r, err := abstractRelationalComparison(lval, rval, true)
		return value.BooleanOf(r == comparisonTrue), err
	case lexer.GREATER:
		r, err := abstractRelationalComparison(rval, lval, false)
		return value.BooleanOf(r == comparisonTrue), err
	case lexer.LESS_OR_EQUAL:
		r, err := abstractRelationalComparison(rval, lval, false)
		return value.BooleanOf(r == comparisonFalse), err
	case lexer.GREATER_OR_EQUAL:
		r, err := abstractRelationalComparison(lval, rval, true)
		return value.BooleanOf(r == comparisonFalse), err

	case lexer.INSTANCEOF:
		checker, ok := rval.(value.InstanceChecker)
		if !ok {
			return nil, types.NewTypeError("right-hand side of instanceof is not callable")
		}
		r, err := checker.HasInstance(lval)
		return value.BooleanOf(r), err

	case lexer.IN:
		o, ok := rval.(value.Object)
		if !ok {
			return nil, types.NewTypeError("cannot use 'in' operator to search in %s", rval.Type())
		}
		name, err := value.ToString(lval)
		if err != nil {
			return nil, err
		}
		return value.BooleanOf(o.HasProperty(name)), nil

	case lexer.EQUAL:
		r, err := abstractEqualityComparison(lval, rval)
		return value.BooleanOf(r), err
	case lexer.NOT_EQUAL:
		r, err := abstractEqualityComparison(lval, rval)
		return value.BooleanOf(!r), err
	case lexer.STRICT_EQUAL:
		return value.BooleanOf(strictEqualityComparison(lval, rval)), nil
	case lexer.STRICT_NOT_EQUAL:
		return value.BooleanOf(!strictEqualityComparison(lval, rval)), nil

	default:
		return nil, types.NewInternalError("unknown binary operator %s", operator)
	}
}

// add implements the addition operator (ECMA-262 11.6.1).
func add(lval, rval value.Value) (value.Value, error) {
	lprim, err := value.ToPrimitive(lval, value.HintNone)
	if err != nil {
		return nil, err
	}
	rprim, err := value.ToPrimitive(rval, value.HintNone)
	if err != nil {
		return nil, err
	}

	if lprim.Type() == value.TypeString || rprim.Type() == value.TypeString {
		lstr, err := value.ToString(lprim)
		if err != nil {
			return nil, err
		}
		rstr, err := value.ToString(rprim)
		if err != nil {
			return nil, err
		}
		return lstr.Concat(rstr), nil
	}

	lnum, err := value.ToNumber(lprim)
	if err != nil {
		return nil, err
	}
	rnum, err := value.ToNumber(rprim)
	if err != nil {
		return nil, err
	}
	return lnum + rnum, nil
}

type ternaryOperation struct {
	condition  operation
	consequent operation
	alternate  operation
}

func (s *ternaryOperation) execute(ctx *executionContext) (value.Value, error) {
	cond, err := ctx.evaluate(s.condition)
	if err != nil {
		return nil, err
	}
	if value.ToBoolean(cond) {
		return ctx.evaluate(s.consequent)
	}
	return ctx.evaluate(s.alternate)
}

var compoundAssignmentOperators = map[lexer.TokenType]lexer.TokenType{
	lexer.ADD_ASSIGN:                  lexer.PLUS,
	lexer.SUBTRACT_ASSIGN:             lexer.MINUS,
	lexer.MULTIPLY_ASSIGN:             lexer.MULTIPLY,
	lexer.QUOTIENT_ASSIGN:             lexer.SLASH,
	lexer.REMAINDER_ASSIGN:            lexer.REMAINDER,
	lexer.SHIFT_LEFT_ASSIGN:           lexer.SHIFT_LEFT,
	lexer.SHIFT_RIGHT_ASSIGN:          lexer.SHIFT_RIGHT,
	lexer.UNSIGNED_SHIFT_RIGHT_ASSIGN: lexer.UNSIGNED_SHIFT_RIGHT,
	lexer.AND_ASSIGN:                  lexer.AND,
	lexer.EXCLUSIVE_OR_ASSIGN:         lexer.EXCLUSIVE_OR,
	lexer.OR_ASSIGN:                   lexer.OR,
}

type assignOperation struct {
	operator lexer.TokenType
	target   operation
	value    operation
}

func (s *assignOperation) execute(ctx *executionContext) (value.Value, error) {
	ref, err := s.target.execute(ctx)
	if err != nil {
		return nil, err
	}

	var result value.Value
	if s.operator == lexer.ASSIGN {
		if result, err = ctx.evaluate(s.value); err != nil {
			return nil, err
		}
	} else {
		lval, err := ctx.getValue(ref)
		if err != nil {
			return nil, err
		}
		rval, err := ctx.evaluate(s.value)
		if err != nil {
			return nil, err
		}
		if result, err = applyBinaryOperator(compoundAssignmentOperators[s.operator], lval, rval); err != nil {
			return nil, err
		}
	}

	if err := ctx.putValue(ref, result); err != nil {
		return nil, err
	}
	return result, nil
}
