package value

import (
	"math"
	"sort"
	"strconv"

	"github.com/karupanerura/bootjs-emulator/internal/types"
	"github.com/samber/lo"
)

// NewArray returns an object of class "Array" holding elems as index
// properties and a writable, non-enumerable length.
func NewArray(elems []Value) *BaseObject {
	o := NewBaseObject(nil, "Array", nil)
	for i, elem := range elems {
		o.store(NewString(strconv.Itoa(i)), NewDataDescriptor(elem, true, true, true))
	}
	o.store(lengthName, NewDataDescriptor(Number(len(elems)), true, false, false))
	return o
}

// FromGo converts a decoded JSON or YAML tree into a value. Maps become
// ordinary objects whose properties are defined in key order.
func FromGo(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return Null, nil
	case Value:
		return v, nil
	case bool:
		return BooleanOf(v), nil
	case float64:
		return Number(v), nil
	case float32:
		return Number(v), nil
	case int:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case uint64:
		return Number(v), nil
	case string:
		return NewString(v), nil
	case []any:
		elems := make([]Value, len(v))
		for i, e := range v {
			elem, err := FromGo(e)
			if err != nil {
				return nil, err
			}
			elems[i] = elem
		}
		return NewArray(elems), nil
	case map[string]any:
		keys := lo.Keys(v)
		sort.Strings(keys)

		o := NewObject(nil)
		for _, key := range keys {
			prop, err := FromGo(v[key])
			if err != nil {
				return nil, err
			}
			o.store(NewString(key), NewDataDescriptor(prop, true, true, true))
		}
		return o, nil
	default:
		return nil, types.NewTypeError("unsupported host value type %T", v)
	}
}

// Export converts a value into a tree the JSON encoder accepts. Objects
// export their enumerable own data properties; non-finite numbers and
// callables export as their string forms.
func Export(v Value) any {
	return export(v, map[Object]bool{})
}

func export(v Value, seen map[Object]bool) any {
	switch v := v.(type) {
	case nil:
		return nil
	case Boolean:
		return bool(v)
	case Number:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return NumberToString(v).String()
		}
		return float64(v)
	case String:
		return v.String()
	case *PrimitiveWrapper:
		return export(v.PrimitiveValue(), seen)
	case Callable:
		return "[object " + v.Class() + "]"
	case Object:
		if seen[v] {
			return "[Circular]"
		}
		seen[v] = true
		defer delete(seen, v)

		if v.Class() == "Array" {
			return exportArray(v, seen)
		}
		m := map[string]any{}
		for _, key := range v.OwnKeys() {
			desc := v.GetOwnProperty(key)
			if desc == nil || !desc.IsEnumerable() || !desc.IsDataDescriptor() {
				continue
			}
			m[key.String()] = export(desc.Value, seen)
		}
		return m
	default:
		return nil
	}
}

func exportArray(o Object, seen map[Object]bool) []any {
	var length uint32
	if desc := o.GetOwnProperty(lengthName); desc.IsDataDescriptor() {
		length, _ = ToUint32(desc.Value)
	}

	elems := make([]any, length)
	for i := range elems {
		desc := o.GetOwnProperty(NewString(strconv.Itoa(i)))
		if desc.IsDataDescriptor() {
			elems[i] = export(desc.Value, seen)
		}
	}
	return elems
}
