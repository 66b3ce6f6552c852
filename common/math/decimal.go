package math

import (
	"github.com/shopspring/decimal"
	"github.com/truth-pool/truthpool-go/common"
	"math/big"
)

func abs(n int64) int64 {
	y := n >> 63
	return (n ^ y) - y
}

// ToInt truncates value towards zero.
func ToInt(value decimal.Decimal) *big.Int {

	m := value.Coefficient()
	exp := value.Exponent()

	if exp == 0 {
		return m
	}

	coef := big.NewInt(1)

	for i := int64(0); i < abs(int64(exp)); i++ {
		coef.Mul(coef, big.NewInt(10))
	}

	if exp < 0 {
		m.Quo(m, coef)
	} else {
		m.Mul(m, coef)
	}
	return m
}

// Percent returns floor(amount * pct / 100).
func Percent(amount *big.Int, pct uint8) *big.Int {
	if amount == nil {
		return new(big.Int)
	}
	v := decimal.NewFromBigInt(amount, 0).Mul(decimal.New(int64(pct), -2))
	return ToInt(v)
}

func ConvertToInt(amount decimal.Decimal) *big.Int {
	if amount == (decimal.Decimal{}) {
		return new(big.Int)
	}
	initial := decimal.NewFromBigInt(common.AssetBase, 0)
	return ToInt(amount.Mul(initial))
}

func ConvertToFloat(amount *big.Int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	decimalAmount := decimal.NewFromBigInt(amount, 0)

	return decimalAmount.Div(decimal.NewFromBigInt(common.AssetBase, 0))
}

func MinUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

func MaxUint64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
