package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "12.50000000", FormatAmount(decimal.RequireFromString("12.5")))
	require.Equal(t, "-0.00000001", FormatAmount(decimal.RequireFromString("-0.00000001")))
}

func TestDisplayAccount(t *testing.T) {
	require.Equal(t, "(default)", DisplayAccount("_"))
	require.Equal(t, "(default)", DisplayAccount(""))
	require.Equal(t, "fees", DisplayAccount("fees"))
}

func TestShorten(t *testing.T) {
	require.Equal(t, "abc", Shorten("abc", 4))
	require.Equal(t, "0123...cdef", Shorten("0123456789abcdef", 4))
	require.Equal(t, "0123456789abcdef", Shorten("0123456789abcdef", 0))
}

func TestFormatTime(t *testing.T) {
	require.Equal(t, "-", FormatTime(0))
	require.NotEqual(t, "-", FormatTime(1500000000))
}
