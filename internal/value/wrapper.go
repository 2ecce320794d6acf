package value

import (
	"strconv"

	"github.com/karupanerura/bootjs-emulator/internal/types"
)

// PrimitiveWrapper is the object ToObject creates for a Boolean, Number or
// String value. String wrappers expose a read-only length and one read-only
// property per code unit.
type PrimitiveWrapper struct {
	*BaseObject
	primitive Value
}

var lengthName = NewString("length")

func newPrimitiveWrapper(v Value, proto Object) Object {
	w := &PrimitiveWrapper{primitive: v}
	w.BaseObject = NewBaseObject(w, v.Type().String(), proto)
	if s, ok := v.(String); ok {
		w.store(lengthName, NewDataDescriptor(Number(s.Len()), false, false, false))
	}
	return w
}

// NewPrimitiveWrapper is ToObject restricted to Boolean, Number and String
// values, with an explicit [[Prototype]].
func NewPrimitiveWrapper(v Value, proto Object) (*PrimitiveWrapper, error) {
	switch v.Type() {
	case TypeBoolean, TypeNumber, TypeString:
		return newPrimitiveWrapper(v, proto).(*PrimitiveWrapper), nil
	default:
		return nil, types.NewTypeError("%s is not a wrappable primitive value", v.Type())
	}
}

// PrimitiveValue returns the [[PrimitiveValue]] internal property.
func (w *PrimitiveWrapper) PrimitiveValue() Value {
	return w.primitive
}

// stringIndex returns the code unit index name denotes on a String wrapper.
func (w *PrimitiveWrapper) stringIndex(name String) (int, bool) {
	s, ok := w.primitive.(String)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(name.String())
	if err != nil || i < 0 || i >= s.Len() || strconv.Itoa(i) != name.String() {
		return 0, false
	}
	return i, true
}

func (w *PrimitiveWrapper) GetOwnProperty(name String) *PropertyDescriptor {
	if desc := w.BaseObject.GetOwnProperty(name); desc != nil {
		return desc
	}
	i, ok := w.stringIndex(name)
	if !ok {
		return nil
	}
	s := w.primitive.(String)
	return NewDataDescriptor(s.Slice(i, i+1), false, true, false)
}

func (w *PrimitiveWrapper) OwnKeys() []String {
	s, ok := w.primitive.(String)
	if !ok {
		return w.BaseObject.OwnKeys()
	}
	keys := make([]String, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		keys = append(keys, NewString(strconv.Itoa(i)))
	}
	return append(keys, w.BaseObject.OwnKeys()...)
}

// DefaultValue behaves like the built-in toString and valueOf of the wrapper
// prototypes unless the script defined its own.
func (w *PrimitiveWrapper) DefaultValue(hint Hint) (Value, error) {
	if w.HasProperty(toStringName) || w.HasProperty(valueOfName) {
		return w.BaseObject.DefaultValue(hint)
	}
	if hint == HintString {
		return ToString(w.primitive)
	}
	return w.primitive, nil
}
