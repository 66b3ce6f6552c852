package api

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/math"
	"github.com/truth-pool/truthpool-go/core/oracle"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
)

type OracleApi struct {
	baseApi *BaseApi
}

func NewOracleApi(baseApi *BaseApi) *OracleApi {
	return &OracleApi{baseApi}
}

type VoteOption struct {
	Value string `json:"value"`
	Count uint32 `json:"count"`
}

type Query struct {
	EventID             string          `json:"eventId"`
	Category            string          `json:"category"`
	Requester           common.Address  `json:"requester"`
	Bounty              decimal.Decimal `json:"bounty"`
	Status              string          `json:"status"`
	Format              string          `json:"format"`
	MinResponses        uint64          `json:"minResponses"`
	CommitDeadline      int64           `json:"commitDeadline"`
	RevealDeadline      int64           `json:"revealDeadline"`
	CommitCount         uint32          `json:"commitCount"`
	RevealCount         uint32          `json:"revealCount"`
	SentinelCommitCount uint32          `json:"sentinelCommitCount"`
	SentinelRevealCount uint32          `json:"sentinelRevealCount"`
	DisputeLevel        uint8           `json:"disputeLevel"`
	Result              *string         `json:"result"`
	WinningTicket       *uint32         `json:"winningTicket"`
	FinalizedAt         int64           `json:"finalizedAt"`
	Tally               []VoteOption    `json:"tally"`
}

type Participant struct {
	Address     common.Address  `json:"address"`
	Category    string          `json:"category"`
	Role        string          `json:"role"`
	Balance     decimal.Decimal `json:"balance"`
	LockedBond  decimal.Decimal `json:"lockedBond"`
	PendingBond decimal.Decimal `json:"pendingBond"`
	Reputation  int64           `json:"reputation"`
	Active      bool            `json:"active"`
	Wallet      decimal.Decimal `json:"wallet"`
}

type Commitment struct {
	Address      common.Address `json:"address"`
	Hash         common.Hash    `json:"hash"`
	Hint         []byte         `json:"hint,omitempty"`
	Value        *string        `json:"value"`
	Ticket       uint32         `json:"ticket"`
	Revealed     bool           `json:"revealed"`
	BondReleased bool           `json:"bondReleased"`
}

func (api *OracleApi) Query(eventID string) (*Query, error) {
	obj := api.baseApi.getAppState().State.GetQuery(eventID)
	if obj == nil {
		return nil, errors.Wrapf(validation.NotFound, "query %v", eventID)
	}
	q := obj.Data()
	res := &Query{
		EventID:             q.EventID,
		Category:            q.Category,
		Requester:           q.Requester,
		Bounty:              math.ConvertToFloat(q.Bounty),
		Status:              q.Status.String(),
		Format:              q.Format.String(),
		MinResponses:        q.MinResponses,
		CommitDeadline:      q.CommitDeadline,
		RevealDeadline:      q.RevealDeadline,
		CommitCount:         q.CommitCount,
		RevealCount:         q.RevealCount,
		SentinelCommitCount: q.SentinelCommitCount,
		SentinelRevealCount: q.SentinelRevealCount,
		DisputeLevel:        q.DisputeLevel,
		Result:              q.Result,
		WinningTicket:       q.WinningTicket,
		FinalizedAt:         q.FinalizedAt,
	}
	for _, option := range q.Tally {
		res.Tally = append(res.Tally, VoteOption{Value: option.Value, Count: option.Count})
	}
	return res, nil
}

func (api *OracleApi) Participant(address common.Address) (*Participant, error) {
	appState := api.baseApi.getAppState()
	p := appState.State.GetParticipant(address)
	if p == nil {
		return nil, errors.Wrapf(validation.NotFound, "participant %v", address.Hex())
	}
	return &Participant{
		Address:     address,
		Category:    p.Category(),
		Role:        p.Role().String(),
		Balance:     math.ConvertToFloat(p.Balance()),
		LockedBond:  math.ConvertToFloat(p.LockedBond()),
		PendingBond: math.ConvertToFloat(p.PendingBond()),
		Reputation:  p.Reputation(),
		Active:      p.Active(),
		Wallet:      math.ConvertToFloat(appState.State.GetBalance(address)),
	}, nil
}

func (api *OracleApi) Balance(address common.Address) decimal.Decimal {
	return math.ConvertToFloat(api.baseApi.getAppState().State.GetBalance(address))
}

func (api *OracleApi) Commitments(eventID string) ([]Commitment, error) {
	var res []Commitment
	err := api.baseApi.getAppState().State.IterateCommitments(eventID, func(addr common.Address, c state.Commitment) bool {
		res = append(res, Commitment{
			Address:      addr,
			Hash:         c.Hash,
			Hint:         c.Hint,
			Value:        c.Value,
			Ticket:       c.Ticket,
			Revealed:     c.Revealed,
			BondReleased: c.BondReleased,
		})
		return false
	})
	return res, err
}

// Outcome is the read interface of prediction markets settling against the oracle.
func (api *OracleApi) Outcome(eventID string) (oracle.Outcome, error) {
	return oracle.QueryOutcome(api.baseApi.getAppState(), eventID)
}

func (api *OracleApi) VoteHash(value, secret string) common.Hash {
	return oracle.VoteHash(value, secret)
}

var _ oracle.OutcomeReader = (*OracleApi)(nil)
