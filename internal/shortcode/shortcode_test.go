package shortcode

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		n    uint64
		want string
	}{
		{"zero", 0, "0"},
		{"one", 1, "1"},
		{"nine", 9, "9"},
		{"ten", 10, "a"},
		{"base minus one", 35, "z"},
		{"base", 36, "10"},
		{"typical row id", 46655, "zzz"},
		{"large number", 123456789, "21i3v9"},
		{"max uint64", math.MaxUint64, "3w5e11264sgsf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.n))
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    uint64
		wantErr bool
	}{
		{"zero", "0", 0, false},
		{"one", "1", 1, false},
		{"ten", "a", 10, false},
		{"base", "10", 36, false},
		{"large number", "21i3v9", 123456789, false},
		{"max uint64", "3w5e11264sgsf", math.MaxUint64, false},
		{"empty string", "", 0, true},
		{"leading zero", "01", 0, true},
		{"uppercase", "A", 0, true},
		{"invalid character", "21i3v9!", 0, true},
		{"hyphenated", "zz-not-base36", 0, true},
		{"overflow by one", "3w5e11264sgsg", 0, true},
		{"overflow by length", "zzzzzzzzzzzzzz", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Decode(tt.code)

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCode)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 35, 36, 1295, 1296, 1e6, 1e12, math.MaxUint64 - 1, math.MaxUint64}

	for i := uint64(0); i < 10000; i++ {
		cases = append(cases, i)
	}

	for _, n := range cases {
		code := Encode(n)

		got, err := Decode(code)
		assert.NoError(t, err)
		assert.Equal(t, n, got)

		// The code itself must survive the reverse direction unchanged.
		assert.Equal(t, code, Encode(got))
	}
}
