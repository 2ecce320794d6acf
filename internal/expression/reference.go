package expression

import (
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/karupanerura/bootjs-emulator/internal/value"
)

// resolveIdentifier implements identifier resolution (ECMA-262 10.3.1) over
// the single global environment.
func (ctx *executionContext) resolveIdentifier(name value.String) *value.Reference {
	if ctx.env.HasBinding(name) {
		return value.NewReference(ctx.env, name, ctx.strict)
	}
	return value.NewReference(value.Undefined, name, ctx.strict)
}

// evaluate executes op and dereferences the result.
func (ctx *executionContext) evaluate(op operation) (value.Value, error) {
	v, err := op.execute(ctx)
	if err != nil {
		return nil, err
	}
	return ctx.getValue(v)
}

// getValue implements GetValue (ECMA-262 8.7.1).
func (ctx *executionContext) getValue(v value.Value) (value.Value, error) {
	ref, ok := v.(*value.Reference)
	if !ok {
		return v, nil
	}

	switch {
	case ref.IsUnresolvable():
		return nil, types.NewReferenceError("%s is not defined", ref.Name.String())

	case ref.HasPrimitiveBase():
		o, err := value.ToObject(ref.Base)
		if err != nil {
			return nil, err
		}
		desc := o.GetProperty(ref.Name)
		switch {
		case desc == nil:
			return value.Undefined, nil
		case desc.IsDataDescriptor():
			return desc.Value, nil
		}
		getter, ok := desc.Get.(value.Callable)
		if !ok {
			return value.Undefined, nil
		}
		return getter.Call(ref.Base, nil)

	case ref.IsPropertyReference():
		return ref.Base.(value.Object).Get(ref.Name)

	default:
		return ref.Base.(value.EnvironmentRecord).GetBindingValue(ref.Name, ref.Strict)
	}
}

// putValue implements PutValue (ECMA-262 8.7.2).
func (ctx *executionContext) putValue(v value.Value, w value.Value) error {
	ref, ok := v.(*value.Reference)
	if !ok {
		return types.NewReferenceError("invalid assignment target")
	}

	switch {
	case ref.IsUnresolvable():
		if ref.Strict {
			return types.NewReferenceError("%s is not defined", ref.Name.String())
		}
		return ctx.global.Put(ref.Name, w, false)

	case ref.HasPrimitiveBase():
		return putPrimitive(ref, w)

	case ref.IsPropertyReference():
		return ref.Base.(value.Object).Put(ref.Name, w, ref.Strict)

	default:
		return ref.Base.(value.EnvironmentRecord).SetMutableBinding(ref.Name, w, ref.Strict)
	}
}

// putPrimitive is the [[Put]] used when the base of a reference is a
// primitive: a setter still runs, everything else cannot be stored.
func putPrimitive(ref *value.Reference, w value.Value) error {
	o, err := value.ToObject(ref.Base)
	if err != nil {
		return err
	}

	reject := func() error {
		if ref.Strict {
			return types.NewTypeError("cannot assign to property %q of %s", ref.Name.String(), ref.Base.Type())
		}
		return nil
	}

	if !o.CanPut(ref.Name) {
		return reject()
	}
	if own := o.GetOwnProperty(ref.Name); own.IsDataDescriptor() {
		return reject()
	}
	if desc := o.GetProperty(ref.Name); desc.IsAccessorDescriptor() {
		setter, ok := desc.Set.(value.Callable)
		if !ok {
			return reject()
		}
		_, err := setter.Call(ref.Base, []value.Value{w})
		return err
	}
	return reject()
}
