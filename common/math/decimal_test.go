package math

import (
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"math/big"
	"testing"
)

func TestToInt(t *testing.T) {
	v := decimal.NewFromBigInt(big.NewInt(77777000000000000), -14)
	s := "777"
	require.Equal(t, s, ToInt(v).String())

	v = decimal.NewFromBigInt(big.NewInt(100), -10)
	s = "0"
	require.Equal(t, s, ToInt(v).String())

	v = decimal.NewFromBigInt(big.NewInt(123), 3)
	s = "123000"
	require.Equal(t, s, ToInt(v).String())
}

func TestPercent(t *testing.T) {
	require := require.New(t)

	require.Equal("90", Percent(big.NewInt(100), 90).String())
	require.Equal("9", Percent(big.NewInt(99), 10).String())
	require.Equal("0", Percent(big.NewInt(5), 10).String())
	require.Equal("0", Percent(nil, 10).String())
	require.Equal("450000000", Percent(big.NewInt(500000000), 90).String())
}

func TestConvert(t *testing.T) {
	require := require.New(t)

	require.Equal("500000000", ConvertToInt(decimal.NewFromFloat(0.5)).String())
	require.True(decimal.NewFromFloat(1.5).Equal(ConvertToFloat(big.NewInt(1500000000))))
	require.Equal("0", ConvertToInt(decimal.Decimal{}).String())
}
