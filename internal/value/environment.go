package value

import "github.com/karupanerura/bootjs-emulator/internal/types"

// EnvironmentRecord binds identifiers. A Reference whose base is an
// EnvironmentRecord names a binding rather than a property.
type EnvironmentRecord interface {
	Value
	HasBinding(name String) bool
	GetBindingValue(name String, strict bool) (Value, error)
	SetMutableBinding(name String, v Value, strict bool) error
	DeleteBinding(name String) (bool, error)
	ImplicitThisValue() Value
}

// ObjectEnvironment is an object environment record (ECMA-262 10.2.1.2):
// every binding is a property of the binding object.
type ObjectEnvironment struct {
	bindings Object
}

var _ EnvironmentRecord = (*ObjectEnvironment)(nil)

func NewObjectEnvironment(bindings Object) *ObjectEnvironment {
	return &ObjectEnvironment{bindings: bindings}
}

func (*ObjectEnvironment) Type() Type { return TypeEnvironmentRecord }

func (e *ObjectEnvironment) BindingObject() Object {
	return e.bindings
}

func (e *ObjectEnvironment) HasBinding(name String) bool {
	return e.bindings.HasProperty(name)
}

func (e *ObjectEnvironment) GetBindingValue(name String, strict bool) (Value, error) {
	if !e.bindings.HasProperty(name) {
		if strict {
			return nil, types.NewReferenceError("%s is not defined", name.String())
		}
		return Undefined, nil
	}
	return e.bindings.Get(name)
}

func (e *ObjectEnvironment) SetMutableBinding(name String, v Value, strict bool) error {
	return e.bindings.Put(name, v, strict)
}

func (e *ObjectEnvironment) DeleteBinding(name String) (bool, error) {
	return e.bindings.Delete(name, false)
}

func (*ObjectEnvironment) ImplicitThisValue() Value {
	return Undefined
}
