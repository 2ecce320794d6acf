package value

import (
	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/samber/lo"
)

// Hint is the preferred type passed to ToPrimitive and [[DefaultValue]].
type Hint uint8

const (
	HintNone Hint = iota
	HintNumber
	HintString
)

// Object is the set of internal methods every object kind provides.
type Object interface {
	Value

	Class() string
	Prototype() Object
	Extensible() bool
	PreventExtensions()
	OwnKeys() []String

	GetOwnProperty(name String) *PropertyDescriptor
	GetProperty(name String) *PropertyDescriptor
	Get(name String) (Value, error)
	CanPut(name String) bool
	Put(name String, v Value, throw bool) error
	HasProperty(name String) bool
	Delete(name String, throw bool) (bool, error)
	DefaultValue(hint Hint) (Value, error)
	DefineOwnProperty(name String, desc *PropertyDescriptor, throw bool) (bool, error)
}

// Callable is implemented by objects that have a [[Call]] internal method.
type Callable interface {
	Object
	Call(this Value, args []Value) (Value, error)
}

// Constructor is implemented by objects that have a [[Construct]] internal
// method.
type Constructor interface {
	Object
	Construct(args []Value) (Object, error)
}

// InstanceChecker is implemented by objects that support instanceof through
// a [[HasInstance]] internal method.
type InstanceChecker interface {
	Object
	HasInstance(v Value) (bool, error)
}

func IsCallable(v Value) bool {
	_, ok := v.(Callable)
	return ok
}

type property struct {
	name String
	desc *PropertyDescriptor
}

// BaseObject is the ordinary object. Every internal method dispatches
// through self, so an object kind that embeds a *BaseObject and overrides a
// method changes the behaviour of the algorithms built on top of it.
type BaseObject struct {
	self       Object
	class      string
	prototype  Object
	extensible bool
	properties map[string]*property
	keys       []string
}

var _ Object = (*BaseObject)(nil)

// NewObject returns an extensible ordinary object of class "Object".
func NewObject(proto Object) *BaseObject {
	return NewBaseObject(nil, "Object", proto)
}

// NewBaseObject returns an ordinary object whose internal methods dispatch
// through self. A nil self dispatches to the returned object itself.
func NewBaseObject(self Object, class string, proto Object) *BaseObject {
	o := &BaseObject{
		self:       self,
		class:      class,
		prototype:  proto,
		extensible: true,
		properties: map[string]*property{},
	}
	if o.self == nil {
		o.self = o
	}
	return o
}

func (o *BaseObject) Type() Type { return TypeObject }

func (o *BaseObject) Class() string { return o.class }

func (o *BaseObject) Prototype() Object { return o.prototype }

func (o *BaseObject) Extensible() bool { return o.extensible }

func (o *BaseObject) PreventExtensions() { o.extensible = false }

func (o *BaseObject) OwnKeys() []String {
	return lo.Map(o.keys, func(key string, _ int) String {
		return o.properties[key].name
	})
}

func (o *BaseObject) GetOwnProperty(name String) *PropertyDescriptor {
	p, ok := o.properties[name.key()]
	if !ok {
		return nil
	}
	return p.desc.Clone()
}

func (o *BaseObject) GetProperty(name String) *PropertyDescriptor {
	if desc := o.self.GetOwnProperty(name); desc != nil {
		return desc
	}
	proto := o.self.Prototype()
	if proto == nil {
		return nil
	}
	return proto.GetProperty(name)
}

func (o *BaseObject) Get(name String) (Value, error) {
	desc := o.self.GetProperty(name)
	if desc == nil {
		return Undefined, nil
	}
	if desc.IsDataDescriptor() {
		return desc.Value, nil
	}

	getter, ok := desc.Get.(Callable)
	if !ok {
		return Undefined, nil
	}
	return getter.Call(o.self, nil)
}

func (o *BaseObject) CanPut(name String) bool {
	if desc := o.self.GetOwnProperty(name); desc != nil {
		if desc.IsAccessorDescriptor() {
			return !IsUndefined(desc.Set)
		}
		return desc.IsWritable()
	}

	proto := o.self.Prototype()
	if proto == nil {
		return o.self.Extensible()
	}
	inherited := proto.GetProperty(name)
	if inherited == nil {
		return o.self.Extensible()
	}
	if inherited.IsAccessorDescriptor() {
		return !IsUndefined(inherited.Set)
	}
	if !o.self.Extensible() {
		return false
	}
	return inherited.IsWritable()
}

func (o *BaseObject) Put(name String, v Value, throw bool) error {
	if !o.self.CanPut(name) {
		if throw {
			return types.NewTypeError("cannot assign to read only property %q", name.String())
		}
		return nil
	}

	if own := o.self.GetOwnProperty(name); own.IsDataDescriptor() {
		_, err := o.self.DefineOwnProperty(name, &PropertyDescriptor{Value: v}, throw)
		return err
	}

	if desc := o.self.GetProperty(name); desc.IsAccessorDescriptor() {
		setter, ok := desc.Set.(Callable)
		if !ok {
			return types.NewTypeError("setter of %q is not callable", name.String())
		}
		_, err := setter.Call(o.self, []Value{v})
		return err
	}

	_, err := o.self.DefineOwnProperty(name, NewDataDescriptor(v, true, true, true), throw)
	return err
}

func (o *BaseObject) HasProperty(name String) bool {
	return o.self.GetProperty(name) != nil
}

func (o *BaseObject) Delete(name String, throw bool) (bool, error) {
	desc := o.self.GetOwnProperty(name)
	if desc == nil {
		return true, nil
	}
	if desc.IsConfigurable() {
		o.remove(name)
		return true, nil
	}
	if throw {
		return false, types.NewTypeError("cannot delete property %q", name.String())
	}
	return false, nil
}

var (
	toStringName = NewString("toString")
	valueOfName  = NewString("valueOf")
)

func (o *BaseObject) DefaultValue(hint Hint) (Value, error) {
	order := []String{valueOfName, toStringName}
	if hint == HintString {
		order = []String{toStringName, valueOfName}
	}

	for _, name := range order {
		f, err := o.self.Get(name)
		if err != nil {
			return nil, err
		}
		fn, ok := f.(Callable)
		if !ok {
			continue
		}
		v, err := fn.Call(o.self, nil)
		if err != nil {
			return nil, err
		}
		if v.Type().IsPrimitive() {
			return v, nil
		}
	}
	return nil, types.NewTypeError("cannot convert object to primitive value")
}

func (o *BaseObject) DefineOwnProperty(name String, desc *PropertyDescriptor, throw bool) (bool, error) {
	reject := func(format string) (bool, error) {
		if throw {
			return false, types.NewTypeError(format, name.String())
		}
		return false, nil
	}

	current := o.self.GetOwnProperty(name)
	if current == nil {
		if !o.self.Extensible() {
			return reject("cannot define property %q, object is not extensible")
		}
		o.store(name, desc.normalize())
		return true, nil
	}

	if desc.IsEmpty() || describesSame(desc, current) {
		return true, nil
	}

	if !current.IsConfigurable() {
		if desc.IsConfigurable() {
			return reject("cannot redefine non-configurable property %q")
		}
		if desc.Enumerable != nil && *desc.Enumerable != current.IsEnumerable() {
			return reject("cannot redefine non-configurable property %q")
		}
	}

	switch {
	case desc.IsGenericDescriptor():
		// only attributes change

	case current.IsDataDescriptor() != desc.IsDataDescriptor():
		if !current.IsConfigurable() {
			return reject("cannot redefine non-configurable property %q")
		}
		converted := &PropertyDescriptor{
			Enumerable:   current.Enumerable,
			Configurable: current.Configurable,
		}
		if current.IsDataDescriptor() {
			converted.Get, converted.Set = Undefined, Undefined
		} else {
			converted.Value, converted.Writable = Undefined, lo.ToPtr(false)
		}
		current = converted

	case current.IsDataDescriptor():
		if !current.IsConfigurable() && !current.IsWritable() {
			if desc.IsWritable() {
				return reject("cannot redefine non-configurable property %q")
			}
			if desc.Value != nil && !SameValue(desc.Value, current.Value) {
				return reject("cannot assign to read only property %q")
			}
		}

	default:
		if !current.IsConfigurable() {
			if desc.Set != nil && !SameValue(desc.Set, current.Set) {
				return reject("cannot redefine non-configurable property %q")
			}
			if desc.Get != nil && !SameValue(desc.Get, current.Get) {
				return reject("cannot redefine non-configurable property %q")
			}
		}
	}

	if desc.Value != nil {
		current.Value = desc.Value
	}
	if desc.Get != nil {
		current.Get = desc.Get
	}
	if desc.Set != nil {
		current.Set = desc.Set
	}
	if desc.Writable != nil {
		current.Writable = desc.Writable
	}
	if desc.Enumerable != nil {
		current.Enumerable = desc.Enumerable
	}
	if desc.Configurable != nil {
		current.Configurable = desc.Configurable
	}
	o.store(name, current)
	return true, nil
}

// describesSame reports whether every field present in desc is also present
// in current with the same value.
func describesSame(desc, current *PropertyDescriptor) bool {
	same := func(a, b Value) bool {
		return a == nil || (b != nil && SameValue(a, b))
	}
	sameFlag := func(a, b *bool) bool {
		return a == nil || (b != nil && *a == *b)
	}
	return same(desc.Value, current.Value) &&
		same(desc.Get, current.Get) &&
		same(desc.Set, current.Set) &&
		sameFlag(desc.Writable, current.Writable) &&
		sameFlag(desc.Enumerable, current.Enumerable) &&
		sameFlag(desc.Configurable, current.Configurable)
}

func (o *BaseObject) store(name String, desc *PropertyDescriptor) {
	key := name.key()
	if _, ok := o.properties[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.properties[key] = &property{name: name, desc: desc}
}

func (o *BaseObject) remove(name String) {
	key := name.key()
	delete(o.properties, key)
	o.keys = lo.Without(o.keys, key)
}
