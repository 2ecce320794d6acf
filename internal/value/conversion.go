package value

import (
	"math"

	"github.com/karupanerura/bootjs-emulator/internal/types"
)

// ToPrimitive implements ECMA-262 9.1.
func ToPrimitive(v Value, hint Hint) (Value, error) {
	switch v.Type() {
	case TypeUndefined, TypeNull, TypeBoolean, TypeNumber, TypeString:
		return v, nil
	case TypeObject:
		return v.(Object).DefaultValue(hint)
	default:
		return nil, types.NewInternalError("ToPrimitive: unexpected %s value", v.Type())
	}
}

// ToBoolean implements ECMA-262 9.2.
func ToBoolean(v Value) Boolean {
	switch v := v.(type) {
	case Boolean:
		return v
	case Number:
		return BooleanOf(!(v == 0 || v.IsNaN()))
	case String:
		return BooleanOf(!v.IsEmpty())
	case Object:
		return True
	default:
		return False
	}
}

// ToNumber implements ECMA-262 9.3.
func ToNumber(v Value) (Number, error) {
	switch v := v.(type) {
	case Number:
		return v, nil
	case Boolean:
		if v {
			return One, nil
		}
		return Zero, nil
	case String:
		return StringToNumber(v), nil
	case Object:
		prim, err := ToPrimitive(v, HintNumber)
		if err != nil {
			return NaN, err
		}
		return ToNumber(prim)
	}

	switch v.Type() {
	case TypeUndefined:
		return NaN, nil
	case TypeNull:
		return Zero, nil
	default:
		return NaN, types.NewInternalError("ToNumber: unexpected %s value", v.Type())
	}
}

// ToInteger implements ECMA-262 9.4.
func ToInteger(v Value) (Number, error) {
	n, err := ToNumber(v)
	if err != nil {
		return Zero, err
	}
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return Zero, nil
	case f == 0 || math.IsInf(f, 0):
		return n, nil
	default:
		return Number(math.Copysign(math.Floor(math.Abs(f)), f)), nil
	}
}

const two32 = 1 << 32

// modulo32 returns the integral part of n modulo 2^32, in [0, 2^32).
func modulo32(n Number) float64 {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || f == 0 {
		return 0
	}
	posInt := math.Copysign(math.Floor(math.Abs(f)), f)
	m := math.Mod(posInt, two32)
	if m < 0 {
		m += two32
	}
	return m
}

// ToInt32 implements ECMA-262 9.5.
func ToInt32(v Value) (int32, error) {
	n, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	m := modulo32(n)
	if m >= two32/2 {
		m -= two32
	}
	return int32(m), nil
}

// ToUint32 implements ECMA-262 9.6.
func ToUint32(v Value) (uint32, error) {
	n, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	return uint32(modulo32(n)), nil
}

// ToString implements ECMA-262 9.8.
func ToString(v Value) (String, error) {
	switch v := v.(type) {
	case String:
		return v, nil
	case Number:
		return NumberToString(v), nil
	case Boolean:
		if v {
			return TrueString, nil
		}
		return FalseString, nil
	case Object:
		prim, err := ToPrimitive(v, HintString)
		if err != nil {
			return String{}, err
		}
		return ToString(prim)
	}

	switch v.Type() {
	case TypeUndefined:
		return UndefinedString, nil
	case TypeNull:
		return NullString, nil
	default:
		return String{}, types.NewInternalError("ToString: unexpected %s value", v.Type())
	}
}

// ToObject implements ECMA-262 9.9.
func ToObject(v Value) (Object, error) {
	switch v := v.(type) {
	case Object:
		return v, nil
	case Boolean, Number, String:
		return newPrimitiveWrapper(v, nil), nil
	}
	return nil, types.NewTypeError("cannot convert %s to object", v.Type())
}

// CheckObjectCoercible implements ECMA-262 9.10.
func CheckObjectCoercible(v Value) error {
	switch v.Type() {
	case TypeUndefined, TypeNull:
		return types.NewTypeError("cannot access a property of %s", v.Type())
	default:
		return nil
	}
}

// SameValue implements ECMA-262 9.12.
func SameValue(x, y Value) bool {
	if x.Type() != y.Type() {
		return false
	}
	switch x := x.(type) {
	case Number:
		y := y.(Number)
		if x.IsNaN() && y.IsNaN() {
			return true
		}
		return x == y && math.Signbit(float64(x)) == math.Signbit(float64(y))
	case String:
		return x.Equal(y.(String))
	case Boolean:
		return x == y.(Boolean)
	case Object:
		return x == y.(Object)
	}
	switch x.Type() {
	case TypeUndefined, TypeNull:
		return true
	default:
		return false
	}
}
