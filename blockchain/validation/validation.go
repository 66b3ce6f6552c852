package validation

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/blockchain/attachments"
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/common"
	kinds "github.com/truth-pool/truthpool-go/core/validation"
)

const (
	MaxPayloadSize = 2048
)

var (
	InvalidSender     = errors.Wrap(kinds.InvalidArgument, "invalid sender")
	InvalidTxType     = errors.Wrap(kinds.InvalidArgument, "unknown tx type")
	InvalidPayload    = errors.Wrap(kinds.InvalidArgument, "invalid payload")
	InvalidAmount     = errors.Wrap(kinds.InvalidArgument, "amount should be positive")
	InvalidTimestamp  = errors.Wrap(kinds.InvalidArgument, "invalid timestamp")
	EventIDRequired   = errors.Wrap(kinds.InvalidArgument, "event id is required")
	RecipientRequired = errors.Wrap(kinds.InvalidArgument, "target is required")
	validators        map[types.TxType]validator
)

type validator func(tx *types.Transaction) error

func init() {
	validators = map[types.TxType]validator{
		types.RegisterParticipantTx: validateRegisterTx,
		types.RegisterPartnerTx:     validateRegisterTrustedTx,
		types.RegisterSentinelTx:    validateRegisterTrustedTx,
		types.DepositTx:             validateAmountTx,
		types.WithdrawTx:            validateAmountTx,
		types.RequestDataTx:         validateRequestDataTx,
		types.CommitTx:              validateCommitTx,
		types.RevealTx:              validateRevealTx,
		types.AdvancePhaseTx:        validateQueryTx,
		types.TallyTx:               validateQueryTx,
		types.ArbiterResolveTx:      validateResolveTx,
		types.EscalateTx:            validateQueryTx,
		types.DaoResolveTx:          validateResolveTx,
		types.FileAppealTx:          validateAppealTx,
		types.ResolveAppealTx:       validateResolveAppealTx,
		types.ClaimTx:               validateQueryTx,
		types.SlashLiarTx:           validateQueryTx,
		types.SlashNonRevealerTx:    validateQueryTx,
		types.RecoverFromVoidTx:     validateQueryTx,
		types.ReclaimBountyTx:       validateQueryTx,
		types.FundTx:                validateFundTx,
		types.SweepBountyTx:         validateQueryTx,
	}
}

// ValidateTx checks a transaction without looking at the state.
func ValidateTx(tx *types.Transaction) error {
	if tx.Sender == (common.Address{}) {
		return InvalidSender
	}
	if tx.Timestamp <= 0 {
		return InvalidTimestamp
	}
	if len(tx.Payload) > MaxPayloadSize {
		return InvalidPayload
	}
	validator, ok := validators[tx.Type]
	if !ok {
		return InvalidTxType
	}
	return validator(tx)
}

func validateRegisterTx(tx *types.Transaction) error {
	if attachments.ParseRegisterAttachment(tx) == nil {
		return InvalidPayload
	}
	return nil
}

func validateRegisterTrustedTx(tx *types.Transaction) error {
	if tx.Target == nil || *tx.Target == (common.Address{}) {
		return RecipientRequired
	}
	return validateRegisterTx(tx)
}

func validateAmountTx(tx *types.Transaction) error {
	if tx.AmountOrZero().Sign() <= 0 {
		return InvalidAmount
	}
	return nil
}

func validateFundTx(tx *types.Transaction) error {
	if tx.Target == nil || *tx.Target == (common.Address{}) {
		return RecipientRequired
	}
	return validateAmountTx(tx)
}

func validateQueryTx(tx *types.Transaction) error {
	if len(tx.EventID) == 0 {
		return EventIDRequired
	}
	return nil
}

func validateRequestDataTx(tx *types.Transaction) error {
	if err := validateQueryTx(tx); err != nil {
		return err
	}
	if err := validateAmountTx(tx); err != nil {
		return err
	}
	if attachments.ParseRequestDataAttachment(tx) == nil {
		return InvalidPayload
	}
	return nil
}

func validateCommitTx(tx *types.Transaction) error {
	if err := validateQueryTx(tx); err != nil {
		return err
	}
	if attachments.ParseCommitAttachment(tx) == nil {
		return InvalidPayload
	}
	return nil
}

func validateRevealTx(tx *types.Transaction) error {
	if err := validateQueryTx(tx); err != nil {
		return err
	}
	if attachments.ParseRevealAttachment(tx) == nil {
		return InvalidPayload
	}
	return nil
}

func validateResolveTx(tx *types.Transaction) error {
	if err := validateQueryTx(tx); err != nil {
		return err
	}
	if attachments.ParseResolveAttachment(tx) == nil {
		return InvalidPayload
	}
	return nil
}

func validateAppealTx(tx *types.Transaction) error {
	if err := validateQueryTx(tx); err != nil {
		return err
	}
	if attachments.ParseAppealAttachment(tx) == nil {
		return InvalidPayload
	}
	return nil
}

func validateResolveAppealTx(tx *types.Transaction) error {
	if err := validateQueryTx(tx); err != nil {
		return err
	}
	if attachments.ParseResolveAppealAttachment(tx) == nil {
		return InvalidPayload
	}
	return nil
}
