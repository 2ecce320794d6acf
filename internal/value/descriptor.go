package value

import "github.com/samber/lo"

// PropertyDescriptor is the Property Descriptor specification type. A nil
// field is an absent field; descriptors stored on an object are always
// normalized so that every field of their shape is present.
type PropertyDescriptor struct {
	Value        Value
	Get          Value
	Set          Value
	Writable     *bool
	Enumerable   *bool
	Configurable *bool
}

func (*PropertyDescriptor) Type() Type { return TypePropertyDescriptor }

func NewDataDescriptor(v Value, writable, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Value:        v,
		Writable:     lo.ToPtr(writable),
		Enumerable:   lo.ToPtr(enumerable),
		Configurable: lo.ToPtr(configurable),
	}
}

func NewAccessorDescriptor(get, set Value, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Get:          get,
		Set:          set,
		Enumerable:   lo.ToPtr(enumerable),
		Configurable: lo.ToPtr(configurable),
	}
}

// IsAccessorDescriptor implements ECMA-262 8.10.1.
func (d *PropertyDescriptor) IsAccessorDescriptor() bool {
	return d != nil && (d.Get != nil || d.Set != nil)
}

// IsDataDescriptor implements ECMA-262 8.10.2.
func (d *PropertyDescriptor) IsDataDescriptor() bool {
	return d != nil && (d.Value != nil || d.Writable != nil)
}

// IsGenericDescriptor implements ECMA-262 8.10.3.
func (d *PropertyDescriptor) IsGenericDescriptor() bool {
	return d != nil && !d.IsDataDescriptor() && !d.IsAccessorDescriptor()
}

// IsEmpty reports whether no field is present.
func (d *PropertyDescriptor) IsEmpty() bool {
	return d.Value == nil && d.Get == nil && d.Set == nil &&
		d.Writable == nil && d.Enumerable == nil && d.Configurable == nil
}

func (d *PropertyDescriptor) IsWritable() bool {
	return lo.FromPtr(d.Writable)
}

func (d *PropertyDescriptor) IsEnumerable() bool {
	return lo.FromPtr(d.Enumerable)
}

func (d *PropertyDescriptor) IsConfigurable() bool {
	return lo.FromPtr(d.Configurable)
}

func (d *PropertyDescriptor) Clone() *PropertyDescriptor {
	c := *d
	return &c
}

// normalize fills absent fields with their defaults for the descriptor's
// shape. A generic descriptor is normalized as a data descriptor.
func (d *PropertyDescriptor) normalize() *PropertyDescriptor {
	n := d.Clone()
	if d.IsAccessorDescriptor() {
		n.Get = lo.Ternary[Value](n.Get == nil, Undefined, n.Get)
		n.Set = lo.Ternary[Value](n.Set == nil, Undefined, n.Set)
	} else {
		n.Value = lo.Ternary[Value](n.Value == nil, Undefined, n.Value)
		n.Writable = lo.Ternary(n.Writable == nil, lo.ToPtr(false), n.Writable)
	}
	n.Enumerable = lo.Ternary(n.Enumerable == nil, lo.ToPtr(false), n.Enumerable)
	n.Configurable = lo.Ternary(n.Configurable == nil, lo.ToPtr(false), n.Configurable)
	return n
}
