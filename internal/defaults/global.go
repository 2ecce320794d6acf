package defaults

import (
	"math"

	"github.com/karupanerura/bootjs-emulator/internal/value"
	"github.com/samber/lo"
)

// NewGlobal returns a fresh global object holding the value properties NaN,
// Infinity and undefined and the built-in functions available to boot
// scripts.
func NewGlobal() *value.BaseObject {
	global := value.NewObject(nil)

	defineConstant(global, "NaN", value.NaN)
	defineConstant(global, "Infinity", value.Number(math.Inf(1)))
	defineConstant(global, "undefined", value.Undefined)

	defineMethod(global, "isNaN", MustNewFunction("isNaN", func(n float64) (bool, error) {
		return math.IsNaN(n), nil
	}))
	defineMethod(global, "isFinite", MustNewFunction("isFinite", func(n float64) (bool, error) {
		return !math.IsNaN(n) && !math.IsInf(n, 0), nil
	}))
	defineMethod(global, "String", newStringConstructor())
	defineMethod(global, "Number", newNumberConstructor())
	defineMethod(global, "Boolean", newBooleanConstructor())
	defineMethod(global, "Math", NewMath())
	defineMethod(global, "JSON", NewJSON())

	return global
}

// defineConstant defines a non-writable, non-enumerable and
// non-configurable property.
func defineConstant(o value.Object, name string, v value.Value) {
	lo.Must(o.DefineOwnProperty(value.NewString(name), value.NewDataDescriptor(v, false, false, false), true))
}

// defineMethod defines a writable, configurable and non-enumerable property,
// the attributes of built-in function properties.
func defineMethod(o value.Object, name string, v value.Value) {
	lo.Must(o.DefineOwnProperty(value.NewString(name), value.NewDataDescriptor(v, true, false, true), true))
}

func firstArg(args []value.Value) value.Value {
	if len(args) == 0 {
		return value.Undefined
	}
	return args[0]
}

func newStringConstructor() *NativeConstructor {
	convert := func(args []value.Value) (value.String, error) {
		if len(args) == 0 {
			return value.NewString(""), nil
		}
		return value.ToString(args[0])
	}

	return NewConstructor("String", 1,
		func(_ value.Value, args []value.Value) (value.Value, error) {
			return convert(args)
		},
		func(proto value.Object, args []value.Value) (value.Object, error) {
			s, err := convert(args)
			if err != nil {
				return nil, err
			}
			return value.NewPrimitiveWrapper(s, proto)
		},
	)
}

func newNumberConstructor() *NativeConstructor {
	convert := func(args []value.Value) (value.Number, error) {
		if len(args) == 0 {
			return value.Zero, nil
		}
		return value.ToNumber(args[0])
	}

	return NewConstructor("Number", 1,
		func(_ value.Value, args []value.Value) (value.Value, error) {
			return convert(args)
		},
		func(proto value.Object, args []value.Value) (value.Object, error) {
			n, err := convert(args)
			if err != nil {
				return nil, err
			}
			return value.NewPrimitiveWrapper(n, proto)
		},
	)
}

func newBooleanConstructor() *NativeConstructor {
	return NewConstructor("Boolean", 1,
		func(_ value.Value, args []value.Value) (value.Value, error) {
			return value.ToBoolean(firstArg(args)), nil
		},
		func(proto value.Object, args []value.Value) (value.Object, error) {
			return value.NewPrimitiveWrapper(value.ToBoolean(firstArg(args)), proto)
		},
	)
}
