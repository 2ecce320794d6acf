// Package value implements the ECMA-262 (5th edition) value and object
// model used by the interpreter: the language types, the internal
// specification types (Reference, Property Descriptor, Completion) and the
// type conversion abstract operations.
package value

import "math"

type Type uint8

const (
	TypeUndefined Type = iota
	TypeNull
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject

	// specification types, never observable by scripts
	TypeReference
	TypePropertyDescriptor
	TypeCompletion
	TypeEnvironmentRecord
)

var typeNames = [...]string{
	TypeUndefined:          "Undefined",
	TypeNull:               "Null",
	TypeBoolean:            "Boolean",
	TypeNumber:             "Number",
	TypeString:             "String",
	TypeObject:             "Object",
	TypeReference:          "Reference",
	TypePropertyDescriptor: "PropertyDescriptor",
	TypeCompletion:         "Completion",
	TypeEnvironmentRecord:  "EnvironmentRecord",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Unknown"
}

// IsPrimitive reports whether t is one of the primitive language types.
func (t Type) IsPrimitive() bool {
	return t <= TypeString
}

type Value interface {
	Type() Type
}

type undefinedValue struct{}

func (undefinedValue) Type() Type { return TypeUndefined }

func (undefinedValue) String() string { return "undefined" }

type nullValue struct{}

func (nullValue) Type() Type { return TypeNull }

func (nullValue) String() string { return "null" }

type Boolean bool

func (Boolean) Type() Type { return TypeBoolean }

type Number float64

func (Number) Type() Type { return TypeNumber }

func (n Number) IsNaN() bool {
	return math.IsNaN(float64(n))
}

// Singletons. They are built once during package initialization, which the
// Go runtime runs exactly once before any goroutine can observe them, and
// are never mutated afterwards.
var (
	Undefined Value = undefinedValue{}
	Null      Value = nullValue{}
	True            = Boolean(true)
	False           = Boolean(false)
	NaN             = Number(math.NaN())
	Zero            = Number(0)
	One             = Number(1)

	NullString        = NewString("null")
	UndefinedString   = NewString("undefined")
	TrueString        = NewString("true")
	FalseString       = NewString("false")
	NaNString         = NewString("NaN")
	InfinityString    = NewString("Infinity")
	NegInfinityString = NewString("-Infinity")
	ZeroString        = NewString("0")
)

func BooleanOf(b bool) Boolean {
	if b {
		return True
	}
	return False
}

func IsUndefined(v Value) bool {
	return v == nil || v.Type() == TypeUndefined
}

func IsNull(v Value) bool {
	return v != nil && v.Type() == TypeNull
}
