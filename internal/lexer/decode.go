package lexer

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/karupanerura/bootjs-emulator/internal/types"
	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Decode converts a UTF-8 source buffer into UTF-16 code units.
func Decode(src []byte) ([]uint16, error) {
	if !utf8.Valid(src) {
		return nil, types.NewSyntaxError("source is not valid UTF-8")
	}

	b, err := utf16le.NewEncoder().Bytes(src)
	if err != nil {
		return nil, types.NewSyntaxError("failed to decode source: %w", err)
	}

	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return units, nil
}
