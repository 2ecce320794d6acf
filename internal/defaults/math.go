package defaults

import (
	"math"

	"github.com/karupanerura/bootjs-emulator/internal/value"
)

// NewMath returns the Math object.
func NewMath() *value.BaseObject {
	m := value.NewBaseObject(nil, "Math", nil)

	defineConstant(m, "PI", value.Number(math.Pi))
	defineConstant(m, "E", value.Number(math.E))

	defineFunctions(m,
		MustNewFunction("abs", func(x float64) (float64, error) {
			return math.Abs(x), nil
		}),
		MustNewFunction("ceil", func(x float64) (float64, error) {
			return math.Ceil(x), nil
		}),
		MustNewFunction("floor", func(x float64) (float64, error) {
			return math.Floor(x), nil
		}),
		MustNewFunction("sqrt", func(x float64) (float64, error) {
			return math.Sqrt(x), nil
		}),
		MustNewFunction("pow", pow),
		MustNewFunction("max", maxOf),
		MustNewFunction("min", minOf),
	)
	return m
}

// pow differs from math.Pow where ECMA-262 15.8.2.13 asks for NaN.
func pow(x, y float64) (float64, error) {
	switch {
	case math.IsNaN(y):
		return math.NaN(), nil
	case math.Abs(x) == 1 && math.IsInf(y, 0):
		return math.NaN(), nil
	default:
		return math.Pow(x, y), nil
	}
}

// maxOf returns -Infinity without arguments, NaN if any argument is NaN, and
// treats +0 as larger than -0.
func maxOf(values ...float64) (float64, error) {
	r := math.Inf(-1)
	for _, v := range values {
		switch {
		case math.IsNaN(v):
			return math.NaN(), nil
		case v > r, v == 0 && r == 0 && !math.Signbit(v):
			r = v
		}
	}
	return r, nil
}

// minOf returns +Infinity without arguments, NaN if any argument is NaN, and
// treats -0 as smaller than +0.
func minOf(values ...float64) (float64, error) {
	r := math.Inf(1)
	for _, v := range values {
		switch {
		case math.IsNaN(v):
			return math.NaN(), nil
		case v < r, v == 0 && r == 0 && math.Signbit(v):
			r = v
		}
	}
	return r, nil
}
