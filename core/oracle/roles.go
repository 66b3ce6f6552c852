package oracle

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
)

type bondCheck func(o *Oracle, appState *appstate.AppState, addr common.Address, p state.Participant, q *state.Query) error

// Capability describes how a role is bonded, paid and penalized.
type Capability struct {
	checkBond bondCheck
	// Sentinel votes are capped and counted separately.
	Sentinel bool
	// RewardToPool routes lottery rewards to the sentinel pool instead of the participant wallet.
	RewardToPool bool
	// FinancialSlash means the bond is taken from the balance. Otherwise the participant is deactivated.
	FinancialSlash bool
}

var capabilities = map[state.Role]Capability{
	state.Standard: {
		checkBond:      checkCollateral,
		FinancialSlash: true,
	},
	state.Partner: {
		checkBond: checkPartnerCap,
	},
	state.Sentinel: {
		checkBond:    checkSentinelCap,
		Sentinel:     true,
		RewardToPool: true,
	},
}

func Capabilities(role state.Role) Capability {
	return capabilities[role]
}

func checkCollateral(o *Oracle, appState *appstate.AppState, addr common.Address, p state.Participant, q *state.Query) error {
	available := o.ledger.Available(appState, addr)
	if available.Cmp(o.conf.Bond) < 0 {
		return errors.Wrapf(validation.InsufficientFunds, "available %v is less than bond %v", available, o.conf.Bond)
	}
	return nil
}

func checkPartnerCap(o *Oracle, appState *appstate.AppState, addr common.Address, p state.Participant, q *state.Query) error {
	if p.LockedBond.Cmp(o.conf.PartnerVirtualCap) >= 0 {
		return errors.Wrap(validation.InsufficientFunds, "partner virtual capacity is exhausted")
	}
	return nil
}

func checkSentinelCap(o *Oracle, appState *appstate.AppState, addr common.Address, p state.Participant, q *state.Query) error {
	if p.LockedBond.Cmp(o.conf.SentinelVirtualCap) >= 0 {
		return errors.Wrap(validation.InsufficientFunds, "sentinel virtual capacity is exhausted")
	}
	// The first two commits of a query are exempt.
	if q.CommitCount > 2 && q.SentinelCommitCount >= (q.CommitCount-1)/2 {
		return errors.Wrapf(validation.Unauthorized, "sentinel commits %v reached the cap of %v commits",
			q.SentinelCommitCount, q.CommitCount)
	}
	return nil
}
