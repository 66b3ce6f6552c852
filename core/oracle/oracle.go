package oracle

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/ledger"
	"github.com/truth-pool/truthpool-go/core/registry"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/events"
	"github.com/truth-pool/truthpool-go/log"
	"math/big"
)

// Oracle runs the commit-reveal protocol and the query state machine.
// Every method mutates only the given app state; the caller decides whether it is committed.
type Oracle struct {
	conf        *config.OracleConf
	authorities *config.AuthoritiesConf
	ledger      *ledger.Ledger
	registry    *registry.Registry
	log         log.Logger
}

func NewOracle(conf *config.OracleConf, authorities *config.AuthoritiesConf, ledger *ledger.Ledger, registry *registry.Registry) *Oracle {
	return &Oracle{
		conf:        conf,
		authorities: authorities,
		ledger:      ledger,
		registry:    registry,
		log:         log.New("component", "oracle"),
	}
}

func (o *Oracle) getQuery(appState *appstate.AppState, eventID string) (*state.Query, func(), error) {
	obj := appState.State.GetQuery(eventID)
	if obj == nil {
		return nil, nil, errors.Wrapf(validation.NotFound, "query %v", eventID)
	}
	return obj.Data(), obj.Touch, nil
}

func (o *Oracle) setStatus(appState *appstate.AppState, q *state.Query, status state.QueryStatus) {
	q.Status = status
	appState.AddEvent(&events.QueryStatusEvent{Query: q.EventID, Status: uint8(status)})
}

// RequestData opens a query or adds bounty to an open one. The bounty is taken
// from the requester wallet and escrowed in the query.
func (o *Oracle) RequestData(appState *appstate.AppState, requester common.Address, now int64, eventID, category string,
	bounty *big.Int, formatCode uint8) error {
	if len(eventID) == 0 || len(eventID) > o.conf.MaxEventIDLength {
		return errors.Wrapf(validation.InvalidArgument, "event id length should be in [1, %v]", o.conf.MaxEventIDLength)
	}
	if len(category) == 0 || len(category) > o.conf.MaxCategoryLength {
		return errors.Wrapf(validation.InvalidArgument, "category length should be in [1, %v]", o.conf.MaxCategoryLength)
	}
	if bounty == nil || bounty.Sign() <= 0 {
		return errors.Wrap(validation.InvalidArgument, "bounty should be positive")
	}
	format := state.FormatFromCode(formatCode)

	obj := appState.State.GetQuery(eventID)
	if obj != nil {
		q := obj.Data()
		switch q.Status {
		case state.Finalized, state.Voided, state.UnderAppeal:
			return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
		}
		if q.Category != category {
			return errors.Wrapf(validation.CategoryMismatch, "query category is %v", q.Category)
		}
		if q.Format != format {
			return errors.Wrapf(validation.FormatMismatch, "query format is %v", q.Format)
		}
	}

	if err := appState.State.SubBalance(requester, bounty); err != nil {
		return errors.Wrap(validation.InsufficientFunds, err.Error())
	}

	if obj == nil {
		obj = appState.State.CreateQuery(eventID)
		q := obj.Data()
		q.Category = category
		q.Format = format
		q.Requester = requester
		q.MinResponses = o.registry.MinResponses(appState, category)
		q.CommitDeadline = now + int64(o.conf.CommitDuration.Seconds())
		q.RevealDeadline = now + int64(o.conf.RevealDuration.Seconds())
		o.setStatus(appState, q, state.CommitPhase)
		o.log.Info("Query opened", "query", eventID, "category", category, "format", format,
			"minResponses", q.MinResponses)
	}
	q := obj.Data()
	q.Bounty = new(big.Int).Add(q.Bounty, bounty)
	obj.Touch()

	contribution := appState.State.GetOrNewContribution(eventID, requester)
	contribution.SetAmount(new(big.Int).Add(contribution.Amount(), bounty))
	return nil
}

// AdvancePhase opens the reveal phase once the commit deadline has passed.
func (o *Oracle) AdvancePhase(appState *appstate.AppState, now int64, eventID string) error {
	q, touch, err := o.getQuery(appState, eventID)
	if err != nil {
		return err
	}
	if q.Status != state.CommitPhase {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if now <= q.CommitDeadline {
		return errors.Wrapf(validation.PhaseViolation, "commit phase lasts till %v", q.CommitDeadline)
	}
	o.setStatus(appState, q, state.RevealPhase)
	touch()
	return nil
}

// Tally evaluates the reveals once the reveal deadline has passed.
func (o *Oracle) Tally(appState *appstate.AppState, now int64, eventID string) error {
	q, touch, err := o.getQuery(appState, eventID)
	if err != nil {
		return err
	}
	if q.Status != state.RevealPhase {
		return errors.Wrapf(validation.PhaseViolation, "query %v is %v", eventID, q.Status)
	}
	if now <= q.RevealDeadline {
		return errors.Wrapf(validation.PhaseViolation, "reveal phase lasts till %v", q.RevealDeadline)
	}
	defer touch()

	if q.RevealCount > 0 && q.SentinelRevealCount > q.RevealCount/2 {
		o.log.Warn("Sentinel reveals dominate, query is disputed", "query", eventID,
			"sentinelReveals", q.SentinelRevealCount, "reveals", q.RevealCount)
		o.openDispute(appState, q, now)
		return nil
	}
	if q.RevealCount < q.CommitCount/2 {
		o.log.Info("Low turnout, query is voided", "query", eventID, "commits", q.CommitCount, "reveals", q.RevealCount)
		o.setStatus(appState, q, state.Voided)
		return nil
	}

	var winner string
	var maxVotes uint32
	var totalValid uint64
	for _, option := range q.Tally {
		if option.Count > maxVotes {
			maxVotes = option.Count
			winner = option.Value
		}
		totalValid += uint64(option.Count)
	}

	if totalValid == 0 || totalValid < q.MinResponses {
		o.log.Info("Quorum is not reached, query is disputed", "query", eventID, "valid", totalValid, "min", q.MinResponses)
		o.openDispute(appState, q, now)
		return nil
	}
	if uint64(maxVotes)*100/totalValid < uint64(o.conf.ConsensusPercent) {
		o.log.Info("No supermajority, query is disputed", "query", eventID, "max", maxVotes, "valid", totalValid)
		o.openDispute(appState, q, now)
		return nil
	}

	ticket := DrawTicket(q.Accumulator, maxVotes)
	o.finalize(appState, q, winner, &ticket, now)
	return nil
}

func (o *Oracle) openDispute(appState *appstate.AppState, q *state.Query, now int64) {
	q.DisputeLevel = 1
	q.DisputeStartedAt = now
	o.setStatus(appState, q, state.InDispute)
	appState.AddEvent(&events.DisputeEvent{Query: q.EventID, Level: 1})
}

// finalize sets the result. The bounty stays escrowed until it is claimed, swept
// or reclaimed after an overturning appeal.
func (o *Oracle) finalize(appState *appstate.AppState, q *state.Query, result string, ticket *uint32, now int64) {
	q.Result = &result
	q.WinningTicket = ticket
	q.FinalizedAt = now
	o.setStatus(appState, q, state.Finalized)
	var drawn uint32
	if ticket != nil {
		drawn = *ticket
	}
	o.log.Info("Query finalized", "query", q.EventID, "result", result, "ticket", drawn)
}

// replacementTicket draws the winning ticket among reveals of an externally chosen result.
func (o *Oracle) replacementTicket(q *state.Query, result string) *uint32 {
	count := q.TallyCount(result)
	if count == 0 {
		return nil
	}
	ticket := DrawTicket(q.Accumulator, count)
	return &ticket
}
