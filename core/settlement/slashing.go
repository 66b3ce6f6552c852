package settlement

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/oracle"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"math/big"
)

// SlashLiar penalizes a participant whose revealed value differs from the final result.
func (s *Settlement) SlashLiar(appState *appstate.AppState, now int64, eventID string, addr common.Address) error {
	r, err := s.load(appState, eventID, addr)
	if err != nil {
		return err
	}
	q, c := r.query, r.commitment
	if q.Status != state.Finalized {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if !s.windowElapsed(q, now) {
		return errors.Wrap(validation.PhaseViolation, "settlement window is open")
	}
	if !c.Revealed || c.Value == nil || q.Result == nil || *c.Value == *q.Result {
		return errors.Wrapf(validation.OutcomeMismatch, "%v revealed the result", addr.Hex())
	}
	if c.BondReleased {
		return errors.Wrapf(validation.AlreadyProcessed, "bond of %v is released", addr.Hex())
	}
	if err := s.ledger.ReleasePending(appState, addr, s.conf.Bond); err != nil {
		return err
	}
	c.BondReleased = true
	r.touchCommit()
	return s.penalize(appState, eventID, addr)
}

// SlashNonRevealer penalizes a participant that committed but never revealed.
func (s *Settlement) SlashNonRevealer(appState *appstate.AppState, now int64, eventID string, addr common.Address) error {
	r, err := s.load(appState, eventID, addr)
	if err != nil {
		return err
	}
	q, c := r.query, r.commitment
	if now <= q.RevealDeadline {
		return errors.Wrapf(validation.PhaseViolation, "reveal phase lasts till %v", q.RevealDeadline)
	}
	if q.Status == state.Voided || q.Status == state.CommitPhase || q.Status == state.Uninitialized {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if !c.Committed || c.Revealed {
		return errors.Wrapf(validation.OutcomeMismatch, "%v has revealed", addr.Hex())
	}
	if c.BondReleased {
		return errors.Wrapf(validation.AlreadyProcessed, "bond of %v is released", addr.Hex())
	}
	if err := s.ledger.ReleaseLocked(appState, addr, s.conf.Bond); err != nil {
		return err
	}
	c.BondReleased = true
	r.touchCommit()
	return s.penalize(appState, eventID, addr)
}

func (s *Settlement) penalize(appState *appstate.AppState, eventID string, addr common.Address) error {
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}
	p.AddReputation(-s.conf.Penalty)

	if !oracle.Capabilities(p.Role()).FinancialSlash {
		s.log.Info("Trusted participant deactivated", "query", eventID, "addr", addr.Hex(), "role", p.Role())
		s.registry.Deactivate(appState, addr)
		return nil
	}
	required := new(big.Int).Add(s.conf.ReservedMinimum, s.conf.Bond)
	if p.Balance().Cmp(required) < 0 {
		s.log.Info("Balance can't cover the bond, participant deactivated", "query", eventID, "addr", addr.Hex())
		s.registry.Deactivate(appState, addr)
		return nil
	}
	_, err := s.ledger.Slash(appState, addr, s.conf.Bond)
	return err
}
