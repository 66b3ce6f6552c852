package validation

import (
	"github.com/pkg/errors"
)

// Error kinds returned by oracle operations. Operations wrap them with context,
// callers match them with errors.Is.
var (
	Unauthorized      = errors.New("unauthorized")
	PhaseViolation    = errors.New("phase violation")
	IntegrityMismatch = errors.New("integrity mismatch")
	InsufficientFunds = errors.New("insufficient funds")
	AlreadyProcessed  = errors.New("already processed")
	CapacityExceeded  = errors.New("capacity exceeded")
	CategoryMismatch  = errors.New("category mismatch")
	FormatMismatch    = errors.New("format mismatch")
	OutcomeMismatch   = errors.New("outcome mismatch")
	NotFound          = errors.New("not found")
	InvalidArgument   = errors.New("invalid argument")
)

var kinds = []error{
	Unauthorized,
	PhaseViolation,
	IntegrityMismatch,
	InsufficientFunds,
	AlreadyProcessed,
	CapacityExceeded,
	CategoryMismatch,
	FormatMismatch,
	OutcomeMismatch,
	NotFound,
	InvalidArgument,
}

// Kind returns the error kind err wraps, or nil for unknown errors.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// KindName is used as a metrics and receipt label.
func KindName(err error) string {
	if err == nil {
		return "ok"
	}
	kind := Kind(err)
	if kind == nil {
		return "internal"
	}
	return kind.Error()
}
