package models

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSOLConversion(t *testing.T) {
	assert.Equal(t, "0.5", SOL(500_000_000).String())
	assert.Equal(t, "0.000000001", SOL(1).String())

	l, err := ParseSOL("0.05")
	require.NoError(t, err)
	assert.Equal(t, int64(50_000_000), l)

	_, err = ParseSOL("0.0000000001")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseSOL("half")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseSOLRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
		err   bool
	}{
		{"Largest Amount", "9223372036.854775807", math.MaxInt64, false},
		{"Zero", "0", 0, false},
		{"Just Over Int64", "9223372036.854775808", 0, true},
		{"Whole SOL Over Int64", "9223372037", 0, true},
		{"Over Uint64", "18446744074", 0, true},
		{"Uint64 Plus Two Lamports", "18446744073.709551617", 0, true},
		{"Negative", "-1", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSOL(tt.input)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLamportsRange(t *testing.T) {
	_, err := Lamports(decimal.RequireFromString("-9223372036.854775809"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	l, err := Lamports(decimal.RequireFromString("-0.5"))
	require.NoError(t, err)
	assert.Equal(t, int64(-500_000_000), l)
}
