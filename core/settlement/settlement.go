package settlement

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/math"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/ledger"
	"github.com/truth-pool/truthpool-go/core/oracle"
	"github.com/truth-pool/truthpool-go/core/registry"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/events"
	"github.com/truth-pool/truthpool-go/log"
	"math/big"
)

// Settlement releases bonds after a query is decided, pays the lottery winner
// and penalizes liars and non-revealers.
type Settlement struct {
	conf        *config.OracleConf
	authorities *config.AuthoritiesConf
	ledger      *ledger.Ledger
	registry    *registry.Registry
	log         log.Logger
}

func NewSettlement(conf *config.OracleConf, authorities *config.AuthoritiesConf, ledger *ledger.Ledger, registry *registry.Registry) *Settlement {
	return &Settlement{
		conf:        conf,
		authorities: authorities,
		ledger:      ledger,
		registry:    registry,
		log:         log.New("component", "settlement"),
	}
}

type record struct {
	query       *state.Query
	touchQuery  func()
	commitment  *state.Commitment
	touchCommit func()
}

func (s *Settlement) load(appState *appstate.AppState, eventID string, addr common.Address) (*record, error) {
	q := appState.State.GetQuery(eventID)
	if q == nil {
		return nil, errors.Wrapf(validation.NotFound, "query %v", eventID)
	}
	c := appState.State.GetCommitment(eventID, addr)
	if c == nil {
		return nil, errors.Wrapf(validation.NotFound, "commitment of %v for query %v", addr.Hex(), eventID)
	}
	return &record{
		query:       q.Data(),
		touchQuery:  q.Touch,
		commitment:  c.Data(),
		touchCommit: c.Touch,
	}, nil
}

func (s *Settlement) windowElapsed(q *state.Query, now int64) bool {
	return now > q.FinalizedAt+int64(s.conf.SettlementWindow.Seconds())
}

// Claim releases the pending bond of an honest participant. The holder of the
// winning ticket also receives the escrowed bounty minus the treasury fee.
func (s *Settlement) Claim(appState *appstate.AppState, now int64, eventID string, addr common.Address) error {
	r, err := s.load(appState, eventID, addr)
	if err != nil {
		return err
	}
	q, c := r.query, r.commitment
	if q.Status != state.Finalized {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if q.FinalizedAt > 0 && !s.windowElapsed(q, now) {
		return errors.Wrap(validation.PhaseViolation, "settlement window is open")
	}
	if !c.Revealed || c.Value == nil || q.Result == nil || *c.Value != *q.Result {
		return errors.Wrapf(validation.OutcomeMismatch, "%v did not reveal the result", addr.Hex())
	}
	if c.BondReleased {
		return errors.Wrapf(validation.AlreadyProcessed, "bond of %v is released", addr.Hex())
	}
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}

	if err := s.ledger.ReleasePending(appState, addr, s.conf.Bond); err != nil {
		return err
	}
	c.BondReleased = true
	r.touchCommit()

	reward := new(big.Int)
	if q.WinningTicket != nil && c.Ticket == *q.WinningTicket && q.Bounty.Sign() > 0 {
		fee := math.Percent(q.Bounty, 100-s.conf.WinnerPercent)
		reward = new(big.Int).Sub(q.Bounty, fee)
		recipient := addr
		if oracle.Capabilities(p.Role()).RewardToPool {
			recipient = s.authorities.SentinelPool
		}
		appState.State.AddBalance(recipient, reward)
		appState.State.AddBalance(s.authorities.Treasury, fee)
		q.Bounty = new(big.Int)
		r.touchQuery()
		s.log.Info("Bounty paid", "query", eventID, "winner", addr.Hex(), "reward", reward, "fee", fee)
	}
	appState.AddEvent(&events.ClaimEvent{Query: eventID, Participant: addr, Bond: new(big.Int).Set(s.conf.Bond), Reward: reward})
	return nil
}

// RecoverFromVoid releases the bond of any committer of a voided query without penalty.
func (s *Settlement) RecoverFromVoid(appState *appstate.AppState, eventID string, addr common.Address) error {
	r, err := s.load(appState, eventID, addr)
	if err != nil {
		return err
	}
	q, c := r.query, r.commitment
	if q.Status != state.Voided {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if c.BondReleased {
		return errors.Wrapf(validation.AlreadyProcessed, "bond of %v is released", addr.Hex())
	}
	if c.Revealed {
		err = s.ledger.ReleasePending(appState, addr, s.conf.Bond)
	} else {
		err = s.ledger.ReleaseLocked(appState, addr, s.conf.Bond)
	}
	if err != nil {
		return err
	}
	c.BondReleased = true
	r.touchCommit()
	return nil
}

// ReclaimBounty refunds the contribution of a funder once the query is voided.
func (s *Settlement) ReclaimBounty(appState *appstate.AppState, eventID string, funder common.Address) error {
	obj := appState.State.GetQuery(eventID)
	if obj == nil {
		return errors.Wrapf(validation.NotFound, "query %v", eventID)
	}
	q := obj.Data()
	if q.Status != state.Voided {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	contribution := appState.State.GetOrNewContribution(eventID, funder)
	if contribution.Amount().Sign() == 0 {
		return errors.Wrapf(validation.AlreadyProcessed, "%v has nothing to reclaim", funder.Hex())
	}
	refund := contribution.Amount()
	if refund.Cmp(q.Bounty) > 0 {
		refund = new(big.Int).Set(q.Bounty)
	}
	if refund.Sign() == 0 {
		return errors.Wrapf(validation.InsufficientFunds, "escrow of query %v is empty", eventID)
	}
	q.Bounty = new(big.Int).Sub(q.Bounty, refund)
	obj.Touch()
	contribution.SetAmount(new(big.Int))
	appState.State.AddBalance(funder, refund)
	s.log.Info("Bounty reclaimed", "query", eventID, "funder", funder.Hex(), "amount", refund)
	return nil
}

// SweepBounty moves the escrow of a finalized query without a ticket holder to the
// treasury once the settlement window has passed.
func (s *Settlement) SweepBounty(appState *appstate.AppState, now int64, eventID string) error {
	obj := appState.State.GetQuery(eventID)
	if obj == nil {
		return errors.Wrapf(validation.NotFound, "query %v", eventID)
	}
	q := obj.Data()
	if q.Status != state.Finalized {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if !s.windowElapsed(q, now) {
		return errors.Wrap(validation.PhaseViolation, "settlement window is open")
	}
	if q.WinningTicket != nil {
		return errors.Wrapf(validation.OutcomeMismatch, "bounty of %v belongs to the ticket holder", eventID)
	}
	if q.Bounty.Sign() == 0 {
		return errors.Wrapf(validation.AlreadyProcessed, "bounty of %v is swept", eventID)
	}
	appState.State.AddBalance(s.authorities.Treasury, q.Bounty)
	s.log.Info("Unclaimable bounty swept", "query", eventID, "amount", q.Bounty)
	q.Bounty = new(big.Int)
	obj.Touch()
	return nil
}
