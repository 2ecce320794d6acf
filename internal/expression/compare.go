package expression

import (
	"github.com/karupanerura/bootjs-emulator/internal/value"
)

// comparison is the result of the abstract relational comparison; NaN
// operands make it undefined.
type comparison int8

const (
	comparisonFalse comparison = iota
	comparisonTrue
	comparisonUndefined
)

// abstractRelationalComparison implements x < y (ECMA-262 11.8.5). leftFirst
// selects the order in which the operands are converted to primitives.
func abstractRelationalComparison(x, y value.Value, leftFirst bool) (comparison, error) {
	var px, py value.Value
	var err error
	if leftFirst {
		if px, err = value.ToPrimitive(x, value.HintNumber); err != nil {
			return comparisonUndefined, err
		}
		if py, err = value.ToPrimitive(y, value.HintNumber); err != nil {
			return comparisonUndefined, err
		}
	} else {
		if py, err = value.ToPrimitive(y, value.HintNumber); err != nil {
			return comparisonUndefined, err
		}
		if px, err = value.ToPrimitive(x, value.HintNumber); err != nil {
			return comparisonUndefined, err
		}
	}

	sx, xIsString := px.(value.String)
	sy, yIsString := py.(value.String)
	if xIsString && yIsString {
		return boolComparison(sx.Compare(sy) < 0), nil
	}

	nx, err := value.ToNumber(px)
	if err != nil {
		return comparisonUndefined, err
	}
	ny, err := value.ToNumber(py)
	if err != nil {
		return comparisonUndefined, err
	}
	if nx.IsNaN() || ny.IsNaN() {
		return comparisonUndefined, nil
	}
	return boolComparison(nx < ny), nil
}

func boolComparison(b bool) comparison {
	if b {
		return comparisonTrue
	}
	return comparisonFalse
}

// abstractEqualityComparison implements x == y (ECMA-262 11.9.3).
func abstractEqualityComparison(x, y value.Value) (bool, error) {
	if x.Type() == y.Type() {
		return strictEqualityComparison(x, y), nil
	}

	switch xt, yt := x.Type(), y.Type(); {
	case xt == value.TypeNull && yt == value.TypeUndefined,
		xt == value.TypeUndefined && yt == value.TypeNull:
		return true, nil

	case xt == value.TypeNumber && yt == value.TypeString:
		ny, err := value.ToNumber(y)
		if err != nil {
			return false, err
		}
		return abstractEqualityComparison(x, ny)

	case xt == value.TypeString && yt == value.TypeNumber:
		nx, err := value.ToNumber(x)
		if err != nil {
			return false, err
		}
		return abstractEqualityComparison(nx, y)

	case xt == value.TypeBoolean:
		nx, err := value.ToNumber(x)
		if err != nil {
			return false, err
		}
		return abstractEqualityComparison(nx, y)

	case yt == value.TypeBoolean:
		ny, err := value.ToNumber(y)
		if err != nil {
			return false, err
		}
		return abstractEqualityComparison(x, ny)

	case (xt == value.TypeString || xt == value.TypeNumber) && yt == value.TypeObject:
		py, err := value.ToPrimitive(y, value.HintNone)
		if err != nil {
			return false, err
		}
		return abstractEqualityComparison(x, py)

	case xt == value.TypeObject && (yt == value.TypeString || yt == value.TypeNumber):
		px, err := value.ToPrimitive(x, value.HintNone)
		if err != nil {
			return false, err
		}
		return abstractEqualityComparison(px, y)

	default:
		return false, nil
	}
}

// strictEqualityComparison implements x === y (ECMA-262 11.9.6).
func strictEqualityComparison(x, y value.Value) bool {
	if x.Type() != y.Type() {
		return false
	}

	switch x := x.(type) {
	case value.Number:
		return x == y.(value.Number)
	case value.String:
		return x.Equal(y.(value.String))
	case value.Boolean:
		return x == y.(value.Boolean)
	case value.Object:
		return x == y.(value.Object)
	default:
		return true
	}
}
