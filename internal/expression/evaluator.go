package expression

import (
	"fmt"

	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
)

// Evaluator evaluates parsed code as global code. Global defaults to a fresh
// empty object per call, and This defaults to Global.
type Evaluator struct {
	This   value.Value
	Global value.Object
	Strict bool
}

func (e *Evaluator) newContext(strict bool) *executionContext {
	global := e.Global
	if global == nil {
		global = value.NewObject(nil)
	}
	this := e.This
	if this == nil {
		this = global
	}

	return &executionContext{
		this:   this,
		env:    value.NewObjectEnvironment(global),
		global: global,
		strict: e.Strict || strict,
	}
}

func (e *Evaluator) EvaluateValue(expr *Expr) (value.Value, error) {
	return e.newContext(false).evaluate(expr.operation)
}

// EvaluateValueRecursive evaluates every *Expr found in v, descending into
// maps and slices.
func (e *Evaluator) EvaluateValueRecursive(v any) (any, error) {
	switch v := v.(type) {
	case *Expr:
		return e.EvaluateValue(v)

	case map[string]any:
		result := make(map[string]any, len(v))
		for key, elem := range v {
			var err error
			result[key], err = e.EvaluateValueRecursive(elem)
			if err != nil {
				return nil, fmt.Errorf("key=%q: %w", key, err)
			}
		}
		return result, nil

	case []any:
		result := make([]any, len(v))
		for i, elem := range v {
			var err error
			result[i], err = e.EvaluateValueRecursive(elem)
			if err != nil {
				return nil, fmt.Errorf("index=%d: %w", i, err)
			}
		}
		return result, nil

	default:
		return v, nil
	}
}

// ResolveReference evaluates expr without dereferencing it.
func (e *Evaluator) ResolveReference(expr *Expr) (*value.Reference, error) {
	ret, err := expr.execute(e.newContext(false))
	if err != nil {
		return nil, err
	}

	ref, ok := ret.(*value.Reference)
	if !ok {
		return nil, types.NewReferenceError("%q is not a valid reference", expr.Source)
	}
	return ref, nil
}

// Run evaluates every expression statement of prog in order, sharing one
// global environment, and returns their values. Evaluation stops at the first
// error.
func (e *Evaluator) Run(prog *Program) ([]value.Value, error) {
	ctx := e.newContext(prog.Strict)

	results := make([]value.Value, 0, len(prog.Statements))
	for _, stmt := range prog.Statements {
		if stmt.Kind != ExpressionStatement {
			continue
		}

		v, err := ctx.evaluate(stmt.Expr.operation)
		if err != nil {
			return results, fmt.Errorf("line %d: %w", stmt.Line, err)
		}
		results = append(results, v)
	}
	return results, nil
}

// Execute runs prog and reports the outcome as a completion record holding
// the value of the last expression statement.
func (e *Evaluator) Execute(prog *Program) *value.Completion {
	results, err := e.Run(prog)
	if err != nil {
		return value.ThrowCompletion(err)
	}

	var v value.Value = value.Undefined
	if len(results) != 0 {
		v = results[len(results)-1]
	}
	return value.NormalCompletion(v)
}
