// Package payload converts vertex payloads to and from their text form.
//
// Payloads are opaque byte sequences as far as the graph is concerned. For
// humans (XML documents, scripts, inspect dumps) they are written as
// uppercase, dash-separated hexadecimal:
//
//	payload.Print([]byte{0x00, 0x2A})   // "00-2A"
//	payload.Print([]byte{})             // "--"
//
// The package also converts the primitive values a front-end typically
// attaches to objects (integers, floats, booleans, strings).
package payload

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Empty is the text form of a zero-length payload.
const Empty = "--"

var (
	// ErrInvalidHex is returned by [Parse] when the text is not hexadecimal.
	ErrInvalidHex = errors.New("invalid hex payload")

	// ErrWrongSize is returned by the To* conversions when the payload does
	// not have the byte width of the requested type.
	ErrWrongSize = errors.New("payload has wrong size")

	// ErrInvalidUTF8 is returned by [ToString] for non UTF-8 payloads.
	ErrInvalidUTF8 = errors.New("payload is not valid UTF-8")
)

// Print renders data as dash-separated uppercase hex, or [Empty].
func Print(data []byte) string {
	if len(data) == 0 {
		return Empty
	}
	var b strings.Builder
	b.Grow(len(data)*3 - 1)
	for i, c := range data {
		if i > 0 {
			b.WriteByte('-')
		}
		fmt.Fprintf(&b, "%02X", c)
	}
	return b.String()
}

// Parse reads the output of [Print]. Dashes and whitespace between digits
// are ignored, so plain hex ("002A") is accepted too. An empty string or
// [Empty] yields a zero-length, non-nil payload.
func Parse(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == Empty {
		return []byte{}, nil
	}
	digits := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	if len(digits)%2 != 0 {
		return nil, fmt.Errorf("%w: odd number of digits in %q", ErrInvalidHex, s)
	}
	out, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return out, nil
}

// FromInt64 encodes v as 8 big-endian bytes.
func FromInt64(v int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(v))
}

// ToInt64 decodes an 8-byte big-endian integer.
func ToInt64(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: want 8 bytes, have %d", ErrWrongSize, len(data))
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

// FromFloat64 encodes the IEEE 754 bits of v as 8 big-endian bytes.
func FromFloat64(v float64) []byte {
	return binary.BigEndian.AppendUint64(nil, math.Float64bits(v))
}

// ToFloat64 decodes the output of [FromFloat64].
func ToFloat64(data []byte) (float64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("%w: want 8 bytes, have %d", ErrWrongSize, len(data))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
}

// FromBool encodes v as a single byte, 0x01 for true.
func FromBool(v bool) []byte {
	if v {
		return []byte{0x01}
	}
	return []byte{0x00}
}

// ToBool decodes a single byte; any non-zero value is true.
func ToBool(data []byte) (bool, error) {
	if len(data) != 1 {
		return false, fmt.Errorf("%w: want 1 byte, have %d", ErrWrongSize, len(data))
	}
	return data[0] != 0, nil
}

// FromString returns the UTF-8 bytes of s.
func FromString(s string) []byte {
	return []byte(s)
}

// ToString decodes a UTF-8 payload.
func ToString(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", ErrInvalidUTF8
	}
	return string(data), nil
}
