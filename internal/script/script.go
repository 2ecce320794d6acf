package script

import (
	"fmt"
	"sort"

	"github.com/karupanerura/bootjs-emulator/internal/defaults"
	"github.com/karupanerura/bootjs-emulator/internal/expression"
	"github.com/karupanerura/bootjs-emulator/internal/value"
	"github.com/samber/lo"
)

var argumentName = value.NewString("argument")

// Script is a loaded boot script with the host values it runs against.
type Script struct {
	Name    string
	Strict  bool
	Program *expression.Program

	this     any
	globals  map[string]any
	readOnly map[string]bool
	debug    bool
}

func (s *Script) compile(source string) error {
	var opts []expression.ParseOption
	if s.Strict {
		opts = append(opts, expression.WithStrict())
	}
	if s.debug {
		opts = append(opts, expression.WithDebugOutput())
	}

	prog, err := expression.ParseProgram(source, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", s.Name, err)
	}
	s.Program = prog
	return nil
}

// WithSource returns a copy of s running source instead of its own program.
func (s *Script) WithSource(source string) (*Script, error) {
	dup := *s
	dup.Name = s.Name + " (inline)"
	if err := dup.compile(source); err != nil {
		return nil, err
	}
	return &dup, nil
}

// Execute runs the program against a fresh global object and returns the
// exported value of every expression statement. argument, when non-nil, is
// visible to the script as the global "argument". On a script error the
// results evaluated so far are returned with the error.
func (s *Script) Execute(argument any) ([]any, error) {
	global := defaults.NewGlobal()
	e := expression.Evaluator{Global: global, Strict: s.Strict}
	if s.this != nil {
		this, err := value.FromGo(s.this)
		if err != nil {
			return nil, fmt.Errorf("%s: this: %w", s.Name, err)
		}
		e.This = this
	}

	if err := s.defineGlobals(e, argument); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}

	results, err := e.Run(s.Program)
	exported := lo.Map(results, func(v value.Value, _ int) any {
		return value.Export(v)
	})
	if err != nil {
		return exported, fmt.Errorf("%s: %w", s.Name, err)
	}
	return exported, nil
}

// defineGlobals defines the host globals on global: plain values first, then
// expressions in name order so that an expression sees every plain value
// and the expressions named before it. Expressions run under e, with the
// script's strictness and this.
func (s *Script) defineGlobals(e expression.Evaluator, argument any) error {
	global := e.Global
	if argument != nil {
		v, err := value.FromGo(argument)
		if err != nil {
			return fmt.Errorf("argument: %w", err)
		}
		if _, err := global.DefineOwnProperty(argumentName, value.NewDataDescriptor(v, true, true, true), true); err != nil {
			return fmt.Errorf("argument: %w", err)
		}
	}

	keys := lo.Keys(s.globals)
	sort.SliceStable(keys, func(i, j int) bool {
		ei, ej := isExpression(s.globals[keys[i]]), isExpression(s.globals[keys[j]])
		if ei != ej {
			return ej
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		evaluated, err := e.EvaluateValueRecursive(s.globals[key])
		if err != nil {
			return fmt.Errorf("globals.%s: %w", key, err)
		}
		v, err := value.FromGo(evaluated)
		if err != nil {
			return fmt.Errorf("globals.%s: %w", key, err)
		}

		writable := !s.readOnly[key]
		desc := value.NewDataDescriptor(v, writable, true, writable)
		if _, err := global.DefineOwnProperty(value.NewString(key), desc, true); err != nil {
			return fmt.Errorf("globals.%s: %w", key, err)
		}
	}
	return nil
}

// isExpression reports whether v holds an expression anywhere inside.
func isExpression(v any) bool {
	switch vv := v.(type) {
	case *expression.Expr:
		return true
	case map[string]any:
		return lo.SomeBy(lo.Values(vv), isExpression)
	case []any:
		return lo.SomeBy(vv, isExpression)
	default:
		return false
	}
}
