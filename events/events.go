package events

import (
	"math/big"

	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/eventbus"
)

const (
	CapitalEventID     = eventbus.EventID("capital")
	VoteEventID        = eventbus.EventID("vote")
	AppealEventID      = eventbus.EventID("appeal-filed")
	DisputeEventID     = eventbus.EventID("dispute")
	ClaimEventID       = eventbus.EventID("claim-paid")
	QueryStatusEventID = eventbus.EventID("query-status")
	TxAppliedEventID   = eventbus.EventID("tx-applied")
	ParticipantEventID = eventbus.EventID("participant")
)

type CapitalAction uint8

const (
	Deposit CapitalAction = iota
	Withdraw
	Slash
)

func (a CapitalAction) String() string {
	switch a {
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	case Slash:
		return "slash"
	}
	return "unknown"
}

type CapitalEvent struct {
	Participant common.Address
	Amount      *big.Int
	Action      CapitalAction
}

func (e *CapitalEvent) EventID() eventbus.EventID {
	return CapitalEventID
}

type VotePhase uint8

const (
	CommitPhase VotePhase = iota
	RevealPhase
)

type VoteEvent struct {
	Query string
	Voter common.Address
	Phase VotePhase
}

func (e *VoteEvent) EventID() eventbus.EventID {
	return VoteEventID
}

type AppealEvent struct {
	Query      string
	Challenger common.Address
	Reason     string
	Timestamp  int64
}

func (e *AppealEvent) EventID() eventbus.EventID {
	return AppealEventID
}

type DisputeEvent struct {
	Query    string
	Level    uint8
	Resolved bool
	Result   *string
}

func (e *DisputeEvent) EventID() eventbus.EventID {
	return DisputeEventID
}

type ClaimEvent struct {
	Query       string
	Participant common.Address
	Bond        *big.Int
	Reward      *big.Int
}

func (e *ClaimEvent) EventID() eventbus.EventID {
	return ClaimEventID
}

type QueryStatusEvent struct {
	Query  string
	Status uint8
}

func (e *QueryStatusEvent) EventID() eventbus.EventID {
	return QueryStatusEventID
}

type ParticipantEvent struct {
	Participant common.Address
	Active      bool
	Reputation  int64
}

func (e *ParticipantEvent) EventID() eventbus.EventID {
	return ParticipantEventID
}

type TxAppliedEvent struct {
	Type   uint16
	Sender common.Address
	Query  string
	Err    error
}

func (e *TxAppliedEvent) EventID() eventbus.EventID {
	return TxAppliedEventID
}
