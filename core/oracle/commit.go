package oracle

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/crypto"
	"github.com/truth-pool/truthpool-go/events"
)

// VoteHash builds the commitment of value revealed later with secret.
func VoteHash(value, secret string) common.Hash {
	return crypto.VoteHash(value, secret)
}

// Commit stores a hidden answer and locks the bond of the participant.
func (o *Oracle) Commit(appState *appstate.AppState, sender common.Address, now int64, eventID string,
	hash common.Hash, hint []byte) error {
	if len(hint) > o.conf.MaxHintSize {
		return errors.Wrapf(validation.CapacityExceeded, "hint size %v exceeds %v", len(hint), o.conf.MaxHintSize)
	}
	p := appState.State.GetParticipant(sender)
	if p == nil {
		return errors.Wrapf(validation.Unauthorized, "%v is not a participant", sender.Hex())
	}
	if !p.Active() {
		return errors.Wrapf(validation.Unauthorized, "participant %v is not active", sender.Hex())
	}
	q, touch, err := o.getQuery(appState, eventID)
	if err != nil {
		return err
	}
	if q.Status != state.CommitPhase {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if now > q.CommitDeadline {
		return errors.Wrapf(validation.PhaseViolation, "commit deadline %v has passed", q.CommitDeadline)
	}
	if appState.State.GetCommitment(eventID, sender) != nil {
		return errors.Wrapf(validation.AlreadyProcessed, "%v has committed already", sender.Hex())
	}
	capability := Capabilities(p.Role())
	if err := capability.checkBond(o, appState, sender, p.Data(), q); err != nil {
		return err
	}

	if err := o.ledger.LockBond(appState, sender, o.conf.Bond); err != nil {
		return err
	}
	c := appState.State.CreateCommitment(eventID, sender)
	c.Data().Hash = hash
	c.Data().Hint = append([]byte(nil), hint...)
	c.Data().Committed = true
	c.Touch()

	q.CommitCount++
	if capability.Sentinel {
		q.SentinelCommitCount++
	}
	touch()

	appState.AddEvent(&events.VoteEvent{Query: eventID, Voter: sender, Phase: events.CommitPhase})
	return nil
}

// Reveal discloses a committed answer. The secret is mixed into the query
// accumulator and the bond moves to pending settlement.
func (o *Oracle) Reveal(appState *appstate.AppState, sender common.Address, now int64, eventID, value, secret string) error {
	if len(value) > o.conf.MaxValueSize {
		return errors.Wrapf(validation.CapacityExceeded, "value size %v exceeds %v", len(value), o.conf.MaxValueSize)
	}
	q, touch, err := o.getQuery(appState, eventID)
	if err != nil {
		return err
	}
	if q.Status != state.RevealPhase {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if now > q.RevealDeadline {
		return errors.Wrapf(validation.PhaseViolation, "reveal deadline %v has passed", q.RevealDeadline)
	}
	c := appState.State.GetCommitment(eventID, sender)
	if c == nil || !c.Data().Committed {
		return errors.Wrapf(validation.PhaseViolation, "%v has not committed", sender.Hex())
	}
	commitment := c.Data()
	if commitment.Revealed {
		return errors.Wrapf(validation.AlreadyProcessed, "%v has revealed already", sender.Hex())
	}
	if VoteHash(value, secret) != commitment.Hash {
		return errors.Wrap(validation.IntegrityMismatch, "wrong vote hash")
	}

	idx := -1
	for i, option := range q.Tally {
		if option.Value == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		if len(q.Tally) >= o.conf.MaxTallyOptions {
			return errors.Wrapf(validation.CapacityExceeded, "query has %v distinct values", len(q.Tally))
		}
		q.Tally = append(q.Tally, state.VoteOption{Value: value})
		idx = len(q.Tally) - 1
	}
	q.Tally[idx].Count++

	if err := o.ledger.ReleaseToPending(appState, sender, o.conf.Bond); err != nil {
		return err
	}

	q.Accumulator = MixSecret(q.Accumulator, secret)
	q.RevealCount++
	if p := appState.State.GetParticipant(sender); p != nil && Capabilities(p.Role()).Sentinel {
		q.SentinelRevealCount++
	}
	touch()

	revealed := value
	commitment.Value = &revealed
	commitment.Ticket = q.Tally[idx].Count
	commitment.Revealed = true
	c.Touch()

	appState.AddEvent(&events.VoteEvent{Query: eventID, Voter: sender, Phase: events.RevealPhase})
	return nil
}
