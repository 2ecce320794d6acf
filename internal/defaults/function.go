package defaults

import (
	"fmt"

	reflect "github.com/goccy/go-reflect"
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
	"github.com/samber/lo"
)

var (
	lengthName    = value.NewString("length")
	prototypeName = value.NewString("prototype")
)

// NativeFunction is a function object implemented in Go.
type NativeFunction struct {
	*value.BaseObject
	name string
	call func(this value.Value, args []value.Value) (value.Value, error)
}

var (
	_ value.Callable        = (*NativeFunction)(nil)
	_ value.InstanceChecker = (*NativeFunction)(nil)
)

// NewRawFunction wraps call as a function object whose length property is
// length.
func NewRawFunction(name string, length int, call func(this value.Value, args []value.Value) (value.Value, error)) *NativeFunction {
	f := &NativeFunction{name: name, call: call}
	f.BaseObject = value.NewBaseObject(f, "Function", nil)
	lo.Must(f.DefineOwnProperty(lengthName, value.NewDataDescriptor(value.Number(length), false, false, false), true))
	return f
}

func (f *NativeFunction) Name() string {
	return f.name
}

func (f *NativeFunction) Call(this value.Value, args []value.Value) (value.Value, error) {
	return f.call(this, args)
}

// HasInstance implements [[HasInstance]] of function objects (ECMA-262
// 15.3.5.3).
func (f *NativeFunction) HasInstance(v value.Value) (bool, error) {
	o, ok := v.(value.Object)
	if !ok {
		return false, nil
	}

	proto, err := f.Get(prototypeName)
	if err != nil {
		return false, err
	}
	p, ok := proto.(value.Object)
	if !ok {
		return false, types.NewTypeError("function %s has no prototype object", f.name)
	}

	for o = o.Prototype(); o != nil; o = o.Prototype() {
		if o == p {
			return true, nil
		}
	}
	return false, nil
}

// NativeConstructor is a native function that can also be called with new.
// Objects it constructs inherit from its prototype property.
type NativeConstructor struct {
	*NativeFunction
	construct func(proto value.Object, args []value.Value) (value.Object, error)
}

var _ value.Constructor = (*NativeConstructor)(nil)

func NewConstructor(
	name string,
	length int,
	call func(this value.Value, args []value.Value) (value.Value, error),
	construct func(proto value.Object, args []value.Value) (value.Object, error),
) *NativeConstructor {
	c := &NativeConstructor{
		NativeFunction: NewRawFunction(name, length, call),
		construct:      construct,
	}
	lo.Must(c.DefineOwnProperty(prototypeName, value.NewDataDescriptor(value.NewObject(nil), false, false, false), true))
	return c
}

func (c *NativeConstructor) Construct(args []value.Value) (value.Object, error) {
	proto, err := c.Get(prototypeName)
	if err != nil {
		return nil, err
	}
	p, _ := proto.(value.Object)
	return c.construct(p, args)
}

var (
	errorInterfaceType = reflect.TypeOf((*error)(nil)).Elem()
	valueInterfaceType = reflect.TypeOf((*value.Value)(nil)).Elem()
)

// argConverter applies the conversion a parameter type asks for.
type argConverter func(v value.Value) (reflect.Value, error)

func newArgConverter(t reflect.Type) (argConverter, error) {
	switch {
	case t == valueInterfaceType:
		return func(v value.Value) (reflect.Value, error) {
			return reflect.ValueOf(&v).Elem(), nil
		}, nil

	case t.Kind() == reflect.Float64:
		return func(v value.Value) (reflect.Value, error) {
			n, err := value.ToNumber(v)
			return reflect.ValueOf(float64(n)), err
		}, nil

	case t.Kind() == reflect.String:
		return func(v value.Value) (reflect.Value, error) {
			s, err := value.ToString(v)
			return reflect.ValueOf(s.String()), err
		}, nil

	case t.Kind() == reflect.Bool:
		return func(v value.Value) (reflect.Value, error) {
			return reflect.ValueOf(bool(value.ToBoolean(v))), nil
		}, nil

	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", t.String())
	}
}

// NewFunction builds a function object from a typed Go function. Parameters
// may be float64, string, bool or value.Value and receive ToNumber,
// ToString, ToBoolean or the raw argument; missing arguments are undefined.
// A trailing variadic parameter receives the remaining arguments. f must
// return a value and an error.
func NewFunction(name string, f any) (*NativeFunction, error) {
	v := reflect.ValueOf(f)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("must be function but got %T: %+v", f, f)
	}

	t := v.Type()
	if t.NumOut() != 2 {
		return nil, fmt.Errorf("native function must return 2 values: %s", t.String())
	}
	if lastOut := t.Out(1); !lastOut.Implements(errorInterfaceType) {
		return nil, fmt.Errorf("last return value type must be error: %s", lastOut.String())
	}

	fixed := t.NumIn()
	var rest argConverter
	if t.IsVariadic() {
		fixed--
		var err error
		if rest, err = newArgConverter(t.In(fixed).Elem()); err != nil {
			return nil, fmt.Errorf("%s: variadic argument: %w", name, err)
		}
	}

	converters := make([]argConverter, fixed)
	for i := range converters {
		var err error
		if converters[i], err = newArgConverter(t.In(i)); err != nil {
			return nil, fmt.Errorf("%s: argument[%d]: %w", name, i, err)
		}
	}

	return NewRawFunction(name, fixed, func(_ value.Value, args []value.Value) (value.Value, error) {
		argValues := make([]reflect.Value, fixed, max(fixed, len(args)))
		for i, convert := range converters {
			var arg value.Value = value.Undefined
			if i < len(args) {
				arg = args[i]
			}

			var err error
			if argValues[i], err = convert(arg); err != nil {
				return nil, err
			}
		}
		if rest != nil {
			for _, arg := range args[min(fixed, len(args)):] {
				rv, err := rest(arg)
				if err != nil {
					return nil, err
				}
				argValues = append(argValues, rv)
			}
		}

		ret := v.Call(argValues)
		if !ret[1].IsNil() {
			return nil, ret[1].Interface().(error)
		}
		if ret[0].Kind() == reflect.Interface && ret[0].IsNil() {
			return value.Undefined, nil
		}
		return value.FromGo(ret[0].Interface())
	}), nil
}

func MustNewFunction(name string, f any) *NativeFunction {
	fun, err := NewFunction(name, f)
	if err != nil {
		panic(err)
	}
	return fun
}
