package oracle

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"strconv"
	"strings"
)

var (
	binaryYes = map[string]struct{}{"TRUE": {}, "1": {}, "YES": {}, "Y": {}}
	half      = decimal.New(5, -1)
	hundred   = decimal.New(100, 0)
)

// NormalizeValue turns a raw answer into the canonical string participants commit to,
// so equal answers hash to equal commitments. Binary answers become YES or NO, option
// indexes a plain integer and decimals an integer count of hundredths rounded half up.
// Score and String values are only trimmed.
func NormalizeValue(format state.ResponseFormat, raw string) (string, error) {
	value := strings.TrimSpace(raw)
	switch format {
	case state.Binary:
		if _, ok := binaryYes[strings.ToUpper(value)]; ok {
			return "YES", nil
		}
		return "NO", nil
	case state.OptionIndex:
		idx, err := strconv.Atoi(value)
		if err != nil {
			return "", errors.Wrapf(validation.FormatMismatch, "invalid option index %q", raw)
		}
		return strconv.Itoa(idx), nil
	case state.Decimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return "", errors.Wrapf(validation.FormatMismatch, "invalid decimal %q", raw)
		}
		return d.Mul(hundred).Add(half).Floor().String(), nil
	}
	return value, nil
}
