package value

import (
	"strings"
	"unicode/utf16"
)

// String is an immutable sequence of UTF-16 code units. The units are
// packed two bytes each (little endian) into a Go string so that a String
// is comparable and can key a map by content.
type String struct {
	data string
}

func (String) Type() Type { return TypeString }

func NewString(s string) String {
	return StringFromUnits(utf16.Encode([]rune(s)))
}

func StringFromUnits(units []uint16) String {
	var b strings.Builder
	b.Grow(len(units) * 2)
	for _, u := range units {
		b.WriteByte(byte(u))
		b.WriteByte(byte(u >> 8))
	}
	return String{data: b.String()}
}

// Len returns the number of code units.
func (s String) Len() int {
	return len(s.data) / 2
}

func (s String) At(i int) uint16 {
	return uint16(s.data[2*i]) | uint16(s.data[2*i+1])<<8
}

func (s String) Units() []uint16 {
	units := make([]uint16, s.Len())
	for i := range units {
		units[i] = s.At(i)
	}
	return units
}

// String converts the code units to UTF-8. Lone surrogates become U+FFFD.
func (s String) String() string {
	return string(utf16.Decode(s.Units()))
}

func (s String) Equal(o String) bool {
	return s.data == o.data
}

// Compare orders two strings by code unit, the way the relational
// comparison operators do.
func (s String) Compare(o String) int {
	n := s.Len()
	if o.Len() < n {
		n = o.Len()
	}
	for i := 0; i < n; i++ {
		if d := int(s.At(i)) - int(o.At(i)); d != 0 {
			return d
		}
	}
	return s.Len() - o.Len()
}

func (s String) Hash() uint32 {
	var h uint32
	for i, l := 0, s.Len(); i < l; i++ {
		h = 31*h + uint32(s.At(i))
	}
	return h
}

func (s String) Concat(o String) String {
	return String{data: s.data + o.data}
}

func (s String) Slice(begin, end int) String {
	return String{data: s.data[2*begin : 2*end]}
}

func (s String) IsEmpty() bool {
	return len(s.data) == 0
}

func (s String) key() string {
	return s.data
}
