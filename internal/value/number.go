package value

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NumberToString implements ECMA-262 9.8.1.
func NumberToString(n Number) String {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return NaNString
	case f == 0:
		return ZeroString
	case math.IsInf(f, 1):
		return InfinityString
	case math.IsInf(f, -1):
		return NegInfinityString
	}
	return NewString(formatNumber(f))
}

// decompose returns the decimal digits s of the shortest representation that
// round-trips to f, and the exponent n such that f = 0.s * 10^n. f must be
// finite and positive.
func decompose(f float64) (s string, n int) {
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	e, _ := strconv.Atoi(exp)
	return strings.Replace(mantissa, ".", "", 1), e + 1
}

func formatNumber(f float64) string {
	var b strings.Builder
	if f < 0 {
		b.WriteByte('-')
		f = -f
	}

	s, n := decompose(f)
	k := len(s)
	switch {
	case k <= n && n <= 21:
		b.WriteString(s)
		b.WriteString(strings.Repeat("0", n-k))

	case 0 < n && n <= 21:
		b.WriteString(s[:n])
		b.WriteByte('.')
		b.WriteString(s[n:])

	case -6 < n && n <= 0:
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", -n))
		b.WriteString(s)

	default:
		b.WriteByte(s[0])
		if k != 1 {
			b.WriteByte('.')
			b.WriteString(s[1:])
		}
		b.WriteByte('e')
		if n-1 < 0 {
			b.WriteByte('-')
			b.WriteString(strconv.Itoa(1 - n))
		} else {
			b.WriteByte('+')
			b.WriteString(strconv.Itoa(n - 1))
		}
	}
	return b.String()
}

// IsWhiteSpace reports whether r is a WhiteSpace code point (ECMA-262 7.2).
func IsWhiteSpace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', ' ', '\u00a0', '\ufeff':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// IsLineTerminator reports whether r is a LineTerminator (ECMA-262 7.3).
func IsLineTerminator(r rune) bool {
	switch r {
	case '\n', '\r', '\u2028', '\u2029':
		return true
	}
	return false
}

// StringToNumber applies the StringNumericLiteral grammar (ECMA-262 9.3.1).
// Anything the grammar does not accept is NaN.
func StringToNumber(s String) Number {
	str := strings.TrimFunc(s.String(), func(r rune) bool {
		return IsWhiteSpace(r) || IsLineTerminator(r)
	})
	if str == "" {
		return Zero
	}

	if len(str) > 2 && str[0] == '0' && (str[1] == 'x' || str[1] == 'X') {
		var v float64
		for _, c := range str[2:] {
			d, ok := hexDigit(c)
			if !ok {
				return NaN
			}
			v = v*16 + float64(d)
		}
		return Number(v)
	}

	body := strings.TrimLeft(str, "+-")
	if len(str)-len(body) > 1 {
		return NaN
	}
	if body == "Infinity" {
		if str[0] == '-' {
			return Number(math.Inf(-1))
		}
		return Number(math.Inf(1))
	}
	if !isStrUnsignedDecimalLiteral(body) {
		return NaN
	}

	v, err := strconv.ParseFloat(str, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return NaN
	}
	return Number(v)
}

func hexDigit(c rune) (int, bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

func isStrUnsignedDecimalLiteral(s string) bool {
	i, digits := 0, 0
	for i < len(s) && '0' <= s[i] && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		expDigits := 0
		for i < len(s) && '0' <= s[i] && s[i] <= '9' {
			i++
			expDigits++
		}
		if expDigits == 0 {
			return false
		}
	}
	return i == len(s)
}
