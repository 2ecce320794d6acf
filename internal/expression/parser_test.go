package expression_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/karupanerura/bootjs-emulator/internal/expression"
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
	"github.com/samber/lo"
)

type function struct {
	*value.BaseObject
	fn func(this value.Value, args []value.Value) (value.Value, error)
}

func newFunction(fn func(this value.Value, args []value.Value) (value.Value, error)) *function {
	f := &function{fn: fn}
	f.BaseObject = value.NewBaseObject(f, "Function", nil)
	return f
}

func (f *function) Call(this value.Value, args []value.Value) (value.Value, error) {
	return f.fn(this, args)
}

func put(o value.Object, name string, v value.Value) {
	lo.Must0(o.Put(value.NewString(name), v, true))
}

func newGlobal() value.Object {
	sum := newFunction(func(_ value.Value, args []value.Value) (value.Value, error) {
		var total value.Number
		for _, arg := range args {
			n, err := value.ToNumber(arg)
			if err != nil {
				return nil, err
			}
			total += n
		}
		return total, nil
	})
	self := newFunction(func(this value.Value, _ []value.Value) (value.Value, error) {
		return this, nil
	})

	o := value.NewObject(nil)
	put(o, "if", value.Number(1))
	put(o, "n", value.Number(2))
	put(o, "self", self)

	global := value.NewObject(nil)
	put(global, "sum", sum)
	put(global, "self", self)
	put(global, "o", o)
	put(global, "i", value.Number(10))
	return global
}

func TestParseExpr(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source                string
		global                bool
		expected              any
		expectToBeParseErr    bool
		expectToBeEvaluateErr bool
		errorTag              types.ErrorTag
		debug                 bool
	}{
		{source: "+", expectToBeParseErr: true},
		{source: "*", expectToBeParseErr: true},
		{source: "/", expectToBeParseErr: true},
		{source: "/a/", expectToBeParseErr: true},
		{source: "()", expectToBeParseErr: true},
		{source: "((1)", expectToBeParseErr: true},
		{source: "(1))", expectToBeParseErr: true},
		{source: "f((1)", expectToBeParseErr: true},
		{source: "f(1,)", expectToBeParseErr: true},
		{source: "s[[1]", expectToBeParseErr: true},
		{source: "1 2", expectToBeParseErr: true},
		{source: "a.1", expectToBeParseErr: true},
		{source: "'abc", expectToBeParseErr: true},
		{source: "1?2", expectToBeParseErr: true},
		{source: "function(){}", expectToBeParseErr: true},
		{source: "[1]", expectToBeParseErr: true},
		{source: "({})", expectToBeParseErr: true},
		{source: "1 = 2", expectToBeParseErr: true, errorTag: types.ReferenceErrorTag},
		{source: "(a + b) = 2", expectToBeParseErr: true, errorTag: types.ReferenceErrorTag},
		{source: "1++", expectToBeParseErr: true, errorTag: types.ReferenceErrorTag},
		{source: "--1", expectToBeParseErr: true, errorTag: types.ReferenceErrorTag},
		{source: "08x", expectToBeParseErr: true},
		{source: "class", expectToBeParseErr: true},

		{source: "1+2*3", expected: 7.0},
		{source: "(1+2)*3", expected: 9.0},
		{source: "1+1", expected: 2.0},
		{source: "10-4-3", expected: 3.0},
		{source: "12/4/3", expected: 1.0},
		{source: `"a"+"b"`, expected: "ab"},
		{source: `"a"+1`, expected: "a1"},
		{source: `'1'+2*3`, expected: "16"},
		{source: `1+2+'3'`, expected: "33"},
		{source: "5%3", expected: 2.0},
		{source: "-5%3", expected: -2.0},
		{source: "1/0", expected: "Infinity"},
		{source: "-1/0", expected: "-Infinity"},
		{source: "0/0", expected: "NaN"},
		{source: "1<<31", expected: -2147483648.0},
		{source: "1<<32", expected: 1.0},
		{source: "-1>>>0", expected: 4294967295.0},
		{source: "-1>>1", expected: -1.0},
		{source: "6&3|8^1", expected: 11.0},
		{source: "~5", expected: -6.0},
		{source: "!0", expected: true},
		{source: "!'a'", expected: false},
		{source: "+'  12  '", expected: 12.0},
		{source: "+'0x10'", expected: 16.0},
		{source: "+'abc'", expected: "NaN"},
		{source: "+''", expected: 0.0},
		{source: "-'3'", expected: -3.0},
		{source: "void 0", expected: nil},
		{source: "null", expected: nil},
		{source: "0x1F", expected: 31.0},
		{source: "1e3", expected: 1000.0},
		{source: ".5+.5", expected: 1.0},
		{source: "010", expected: 8.0},
		{source: `'\x41B\103'`, expected: "ABC"},
		{source: "1,2", expected: 2.0},
		{source: "true?1:2", expected: 1.0},
		{source: "0?1:2", expected: 2.0},
		{source: "0?1:1?2:3", expected: 2.0},

		{source: `false||"x"`, expected: "x"},
		{source: `0&&"x"`, expected: 0.0},
		{source: `1&&"x"`, expected: "x"},
		{source: `""||0`, expected: 0.0},

		{source: "null==undefined", global: true, expectToBeEvaluateErr: true, errorTag: types.ReferenceErrorTag},
		{source: "null==void 0", expected: true},
		{source: "void 0==null", expected: true},
		{source: "null===void 0", expected: false},
		{source: "null==0", expected: false},
		{source: "0/0==0/0", expected: false},
		{source: "0/0!=0/0", expected: true},
		{source: "0/0===0/0", expected: false},
		{source: "'1'==1", expected: true},
		{source: "'1'===1", expected: false},
		{source: "true==1", expected: true},
		{source: "true==='true'", expected: false},
		{source: "-0===0", expected: true},

		{source: "1<2", expected: true},
		{source: "'a'<'b'", expected: true},
		{source: "'10'<'9'", expected: true},
		{source: "10<9", expected: false},
		{source: "'10'<9", expected: false},
		{source: "1<0/0", expected: false},
		{source: "1>=0/0", expected: false},
		{source: "1<=0/0", expected: false},
		{source: "2>=2", expected: true},
		{source: "null<=0", expected: true},

		{source: "typeof x", expected: "undefined"},
		{source: "typeof 1", expected: "number"},
		{source: "typeof 'a'", expected: "string"},
		{source: "typeof true", expected: "boolean"},
		{source: "typeof null", expected: "object"},
		{source: "typeof void 0", expected: "undefined"},
		{source: "typeof this", expected: "object"},
		{source: "typeof sum", global: true, expected: "function"},
		{source: "typeof o", global: true, expected: "object"},

		{source: "x", expectToBeEvaluateErr: true, errorTag: types.ReferenceErrorTag},
		{source: "x.y", expectToBeEvaluateErr: true, errorTag: types.ReferenceErrorTag},
		{source: "x++", expectToBeEvaluateErr: true, errorTag: types.ReferenceErrorTag},
		{source: "x += 1", expectToBeEvaluateErr: true, errorTag: types.ReferenceErrorTag},
		{source: "x = 1", expected: 1.0},
		{source: "delete x", expected: true},
		{source: "null.x", expectToBeEvaluateErr: true, errorTag: types.TypeErrorTag},
		{source: "(void 0)[0]", expectToBeEvaluateErr: true, errorTag: types.TypeErrorTag},
		{source: "1 in 2", expectToBeEvaluateErr: true, errorTag: types.TypeErrorTag},
		{source: "1 instanceof 2", expectToBeEvaluateErr: true, errorTag: types.TypeErrorTag},
		{source: "1()", expectToBeEvaluateErr: true, errorTag: types.TypeErrorTag},
		{source: "new 1", expectToBeEvaluateErr: true, errorTag: types.TypeErrorTag},

		{source: "'abc'.length", expected: 3.0},
		{source: "'abc'[1]", expected: "b"},
		{source: "'abc'[5]", expected: nil},
		{source: "'abc'.length = 1", expected: 1.0},
		{source: "'abc'.x", expected: nil},

		{source: "sum()", global: true, expected: 0.0},
		{source: "sum(1, '2', true)", global: true, expected: 4.0},
		{source: "sum(1, sum(2, 3))", global: true, expected: 6.0},
		{source: "o.if + o['n']", global: true, expected: 3.0},
		{source: "o.n = 5, o.n * i", global: true, expected: 50.0},
		{source: "'n' in o", global: true, expected: true},
		{source: "'m' in o", global: true, expected: false},
		{source: "o.self() === o", global: true, expected: true},
		{source: "o['self']() === o", global: true, expected: true},
		{source: "self()", global: true, expected: nil},
		{source: "delete o.n", global: true, expected: true},
		{source: "delete o.n, o.n", global: true, expected: nil},
		{source: "new o", global: true, expectToBeEvaluateErr: true, errorTag: types.TypeErrorTag},
		{source: "o.missing()", global: true, expectToBeEvaluateErr: true, errorTag: types.TypeErrorTag},

		{source: "i++", global: true, expected: 10.0},
		{source: "i++, i", global: true, expected: 11.0},
		{source: "++i", global: true, expected: 11.0},
		{source: "i--", global: true, expected: 10.0},
		{source: "--i", global: true, expected: 9.0},
		{source: "i += 5", global: true, expected: 15.0},
		{source: "i -= 5", global: true, expected: 5.0},
		{source: "i *= 2", global: true, expected: 20.0},
		{source: "i /= 4", global: true, expected: 2.5},
		{source: "i %= 3", global: true, expected: 1.0},
		{source: "i <<= 1", global: true, expected: 20.0},
		{source: "i >>= 1", global: true, expected: 5.0},
		{source: "i >>>= 1", global: true, expected: 5.0},
		{source: "i &= 3", global: true, expected: 2.0},
		{source: "i |= 3", global: true, expected: 11.0},
		{source: "i ^= 3", global: true, expected: 9.0},
		{source: "i = o.n = 3", global: true, expected: 3.0},
		{source: "i += 'px'", global: true, expected: "10px"},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			parseExpr := func(source string) (*expression.Expr, error) {
				return expression.ParseExpr(source)
			}
			if tt.debug {
				parseExpr = expression.ParseExprWithDebugOutput
			}

			expr, err := parseExpr(tt.source)
			if err != nil {
				if tt.expectToBeParseErr {
					t.Logf("expected parse error: %v", err)
					checkErrorTag(t, err, tt.errorTag, types.SyntaxErrorTag)
					return
				}
				t.Fatal(err)
			}
			if tt.expectToBeParseErr {
				t.Error("should be parse error")
				return
			}

			e := expression.Evaluator{}
			if tt.global {
				e.Global = newGlobal()
			}
			ret, err := e.EvaluateValue(expr)
			if err != nil {
				if tt.expectToBeEvaluateErr {
					t.Logf("expected evaluate error: %v", err)
					checkErrorTag(t, err, tt.errorTag, tt.errorTag)
					return // ok
				}
				t.Fatal(err)
			}
			if tt.expectToBeEvaluateErr {
				t.Error("should be evaluate error")
				return
			}

			if diff := cmp.Diff(tt.expected, value.Export(ret)); diff != "" {
				t.Errorf("unexpected result (-want +got):\n%s", diff)
			}
		})
	}
}

func checkErrorTag(t *testing.T, err error, expected, fallback types.ErrorTag) {
	t.Helper()

	if expected == "" {
		expected = fallback
	}
	if expected == "" {
		return
	}
	if !types.IsTag(err, expected) {
		t.Errorf("expect to %s but got %v", expected, err)
	}
}

func TestParseExprStrict(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source             string
		expectToBeParseErr bool
	}{
		{source: "010", expectToBeParseErr: true},
		{source: `'\07'`, expectToBeParseErr: true},
		{source: "'\\0'", expectToBeParseErr: false},
		{source: "implements", expectToBeParseErr: true},
		{source: "o.implements", expectToBeParseErr: false},
		{source: "eval = 1", expectToBeParseErr: true},
		{source: "arguments++", expectToBeParseErr: true},
		{source: "--eval", expectToBeParseErr: true},
		{source: "delete x", expectToBeParseErr: true},
		{source: "delete o.x", expectToBeParseErr: false},
		{source: "delete (x)", expectToBeParseErr: true},
	} {
		tt := tt
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			_, err := expression.ParseExpr(tt.source, expression.WithStrict())
			if err != nil {
				if tt.expectToBeParseErr {
					t.Logf("expected parse error: %v", err)
					checkErrorTag(t, err, types.SyntaxErrorTag, "")
					return
				}
				t.Fatal(err)
			}
			if tt.expectToBeParseErr {
				t.Error("should be parse error")
			}
		})
	}
}

func TestEvaluateStrict(t *testing.T) {
	t.Parallel()

	expr, err := expression.ParseExpr("x = 1", expression.WithStrict())
	if err != nil {
		t.Fatal(err)
	}

	e := expression.Evaluator{Strict: true}
	if _, err := e.EvaluateValue(expr); !types.IsTag(err, types.ReferenceErrorTag) {
		t.Errorf("expect to ReferenceError but got %v", err)
	}

	e = expression.Evaluator{Strict: false}
	if _, err := e.EvaluateValue(expr); err != nil {
		t.Errorf("should not be error: %v", err)
	}
}

func TestEvaluatorThis(t *testing.T) {
	t.Parallel()

	global := newGlobal()
	expr, err := expression.ParseExpr("this.n")
	if err != nil {
		t.Fatal(err)
	}

	o, _ := global.Get(value.NewString("o"))
	e := expression.Evaluator{Global: global, This: o}
	ret, err := e.EvaluateValue(expr)
	if err != nil {
		t.Fatal(err)
	}
	if !value.SameValue(ret, value.Number(2)) {
		t.Errorf("expect to 2 but got %v", ret)
	}

	expr, err = expression.ParseExpr("this === o")
	if err != nil {
		t.Fatal(err)
	}
	e = expression.Evaluator{Global: global}
	if ret, err = e.EvaluateValue(expr); err != nil {
		t.Fatal(err)
	}
	if ret != value.False {
		t.Errorf("expect to false but got %v", ret)
	}
}

func TestResolveReference(t *testing.T) {
	t.Parallel()

	e := expression.Evaluator{Global: newGlobal()}
	for _, tt := range []struct {
		source    string
		name      string
		expectErr bool
	}{
		{source: "o.n", name: "n"},
		{source: "o['if']", name: "if"},
		{source: "undefinedName", name: "undefinedName"},
		{source: "1 + 1", expectErr: true},
	} {
		expr, err := expression.ParseExpr(tt.source)
		if err != nil {
			t.Fatal(err)
		}

		ref, err := e.ResolveReference(expr)
		if err != nil {
			if tt.expectErr {
				t.Logf("expected error: %v", err)
				continue
			}
			t.Fatal(err)
		}
		if tt.expectErr {
			t.Errorf("%s: should be error", tt.source)
			continue
		}
		if got := ref.Name.String(); got != tt.name {
			t.Errorf("%s: expect to %q but got %q", tt.source, tt.name, got)
		}
	}
}

func TestEvaluateValueRecursive(t *testing.T) {
	t.Parallel()

	mustParse := func(source string) *expression.Expr {
		return lo.Must(expression.ParseExpr(source))
	}

	e := expression.Evaluator{Global: newGlobal()}
	ret, err := e.EvaluateValueRecursive(map[string]any{
		"sum":   mustParse("sum(1, 2)"),
		"list":  []any{mustParse("o.n"), "raw"},
		"plain": 1,
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := map[string]any{
		"sum":   value.Number(3),
		"list":  []any{value.Number(2), "raw"},
		"plain": 1,
	}
	if diff := cmp.Diff(expected, ret); diff != "" {
		t.Errorf("unexpected result (-want +got):\n%s", diff)
	}

	_, err = e.EvaluateValueRecursive(map[string]any{"bad": mustParse("missing")})
	if !types.IsTag(err, types.ReferenceErrorTag) {
		t.Errorf("expect to ReferenceError but got %v", err)
	}
}

func TestExprProperties(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		source       string
		identifier   bool
		member       bool
		canReference bool
	}{
		{source: "a", identifier: true, canReference: true},
		{source: "(a)", identifier: true, canReference: true},
		{source: "a.b", member: true, canReference: true},
		{source: "a[0]", member: true, canReference: true},
		{source: "a()"},
		{source: "a + b"},
	} {
		expr, err := expression.ParseExpr(tt.source)
		if err != nil {
			t.Fatal(err)
		}

		got := []bool{expr.IsIdentifier(), expr.IsMember(), expr.CanReference()}
		if diff := cmp.Diff([]bool{tt.identifier, tt.member, tt.canReference}, got); diff != "" {
			t.Errorf("%s: unexpected (-want +got):\n%s", tt.source, diff)
		}
		if expr.String() != tt.source {
			t.Errorf("expect to %q but got %q", tt.source, expr.String())
		}
	}
}

func FuzzParseExpr(f *testing.F) {
	for _, seed := range []string{"1+2*3", "a.b(c)[d]", "x = y ? 1 : 2", "'use strict'", "0x1f >>> 2"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, source string) {
		_, err := expression.ParseExpr(source)
		if err != nil {
			t.Logf("INVALID: %q (%v)", source, err)
			return
		}

		t.Logf("PASS: %q", source)
	})
}
