package oracle

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/events"
)

// ArbiterResolve settles a level 1 dispute. A nil replacement voids the query.
func (o *Oracle) ArbiterResolve(appState *appstate.AppState, sender common.Address, now int64, eventID string, replacement *string) error {
	if sender != o.authorities.Arbiter {
		return errors.Wrap(validation.Unauthorized, "sender is not the arbiter")
	}
	return o.resolveDispute(appState, now, eventID, 1, replacement)
}

// DaoResolve settles a level 2 dispute and ends the ladder.
func (o *Oracle) DaoResolve(appState *appstate.AppState, sender common.Address, now int64, eventID string, replacement *string) error {
	if sender != o.authorities.Admin {
		return errors.Wrap(validation.Unauthorized, "sender is not the admin")
	}
	return o.resolveDispute(appState, now, eventID, 2, replacement)
}

func (o *Oracle) resolveDispute(appState *appstate.AppState, now int64, eventID string, level uint8, replacement *string) error {
	if replacement != nil && len(*replacement) > o.conf.MaxValueSize {
		return errors.Wrapf(validation.InvalidArgument, "result size exceeds %v", o.conf.MaxValueSize)
	}
	q, touch, err := o.getQuery(appState, eventID)
	if err != nil {
		return err
	}
	if q.Status != state.InDispute || q.DisputeLevel != level {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v at dispute level %v", eventID, q.Status, q.DisputeLevel)
	}
	defer touch()

	q.DisputeLevel = 0
	var result *string
	if replacement != nil {
		value := *replacement
		o.finalize(appState, q, value, o.replacementTicket(q, value), now)
		result = &value
	} else {
		o.log.Info("Dispute voided the query", "query", eventID, "level", level)
		o.setStatus(appState, q, state.Voided)
	}
	appState.AddEvent(&events.DisputeEvent{Query: eventID, Level: level, Resolved: true, Result: result})
	return nil
}

// Escalate moves a level 1 dispute to final review. The arbiter may escalate
// at any time, anybody else once the escalation delay has passed.
func (o *Oracle) Escalate(appState *appstate.AppState, sender common.Address, now int64, eventID string) error {
	q, touch, err := o.getQuery(appState, eventID)
	if err != nil {
		return err
	}
	if q.Status != state.InDispute || q.DisputeLevel != 1 {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v at dispute level %v", eventID, q.Status, q.DisputeLevel)
	}
	if sender != o.authorities.Arbiter && now <= q.DisputeStartedAt+int64(o.conf.EscalationDelay.Seconds()) {
		return errors.Wrap(validation.PhaseViolation, "too early to escalate")
	}
	q.DisputeLevel = 2
	touch()
	appState.AddEvent(&events.DisputeEvent{Query: eventID, Level: 2})
	return nil
}

// FileAppeal reopens a finalized query within the settlement window. The appeal
// bond goes to the treasury and is never refunded.
func (o *Oracle) FileAppeal(appState *appstate.AppState, sender common.Address, now int64, eventID, reason string) error {
	if len(reason) > o.conf.MaxHintSize {
		return errors.Wrapf(validation.CapacityExceeded, "reason size exceeds %v", o.conf.MaxHintSize)
	}
	q, touch, err := o.getQuery(appState, eventID)
	if err != nil {
		return err
	}
	if q.Status != state.Finalized {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if now > q.FinalizedAt+int64(o.conf.SettlementWindow.Seconds()) {
		return errors.Wrap(validation.PhaseViolation, "settlement window has passed")
	}
	if err := o.ledger.TransferWallet(appState, sender, o.authorities.Treasury, o.conf.AppealBond); err != nil {
		return err
	}
	o.setStatus(appState, q, state.UnderAppeal)
	touch()
	appState.AddEvent(&events.AppealEvent{Query: eventID, Challenger: sender, Reason: reason, Timestamp: now})
	o.log.Info("Appeal filed", "query", eventID, "challenger", sender.Hex())
	return nil
}

// ResolveAppeal upholds the result, restarting the settlement window, or voids the query.
func (o *Oracle) ResolveAppeal(appState *appstate.AppState, sender common.Address, now int64, eventID string, uphold bool) error {
	if sender != o.authorities.Admin {
		return errors.Wrap(validation.Unauthorized, "sender is not the admin")
	}
	q, touch, err := o.getQuery(appState, eventID)
	if err != nil {
		return err
	}
	if q.Status != state.UnderAppeal {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if uphold {
		q.FinalizedAt = now
		o.setStatus(appState, q, state.Finalized)
	} else {
		o.setStatus(appState, q, state.Voided)
	}
	touch()
	return nil
}
