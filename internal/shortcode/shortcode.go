// Package shortcode implements the reversible base-36 mapping between URL
// record row ids and the short codes exposed in links.
//
// The short code is never stored: it is a pure function of the row id, so a
// code is valid exactly when it decodes to an existing row. Strings outside
// the [0-9a-z] alphabet can never collide with a generated code.
package shortcode

import (
	"errors"
	"math"
)

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const base = 36

// ErrInvalidCode is returned when a string is not a valid base-36 short code.
var ErrInvalidCode = errors.New("invalid short code")

// Encode converts a row id into its base-36 short code.
// Zero encodes as "0"; a positive id never produces a leading zero.
func Encode(n uint64) string {
	if n == 0 {
		return "0"
	}

	var buf [13]byte // enough for math.MaxUint64 in base 36
	i := len(buf)

	for n > 0 {
		i--
		buf[i] = alphabet[n%base]
		n /= base
	}

	return string(buf[i:])
}

// Decode parses a short code strictly as an unsigned base-36 integer.
// The empty string, any character outside [0-9a-z] and values exceeding
// uint64 all fail with ErrInvalidCode.
func Decode(code string) (uint64, error) {
	if code == "" {
		return 0, ErrInvalidCode
	}

	// Reject redundant encodings ("01") so Encode(Decode(c)) == c holds
	// for every accepted code.
	if len(code) > 1 && code[0] == '0' {
		return 0, ErrInvalidCode
	}

	var n uint64

	for i := 0; i < len(code); i++ {
		var d uint64

		switch c := code[i]; {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'z':
			d = uint64(c-'a') + 10
		default:
			return 0, ErrInvalidCode
		}

		if n > (math.MaxUint64-d)/base {
			return 0, ErrInvalidCode
		}

		n = n*base + d
	}

	return n, nil
}
