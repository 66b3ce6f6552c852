package state

import (
	"github.com/truth-pool/truthpool-go/common"
	"math/big"
)

// Role is immutable once a participant is registered.
type Role uint8

const (
	Standard Role = 0
	Partner  Role = 1
	Sentinel Role = 2
)

func (r Role) String() string {
	switch r {
	case Standard:
		return "Standard"
	case Partner:
		return "Partner"
	case Sentinel:
		return "Sentinel"
	}
	return "Unknown"
}

type QueryStatus uint8

const (
	Uninitialized QueryStatus = 0
	CommitPhase   QueryStatus = 1
	RevealPhase   QueryStatus = 2
	Finalized     QueryStatus = 3
	UnderAppeal   QueryStatus = 4
	Voided        QueryStatus = 5
	InDispute     QueryStatus = 6
)

func (s QueryStatus) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case CommitPhase:
		return "CommitPhase"
	case RevealPhase:
		return "RevealPhase"
	case Finalized:
		return "Finalized"
	case UnderAppeal:
		return "UnderAppeal"
	case Voided:
		return "Voided"
	case InDispute:
		return "InDispute"
	}
	return "Unknown"
}

type ResponseFormat uint8

const (
	Binary      ResponseFormat = 0
	Score       ResponseFormat = 1
	Decimal     ResponseFormat = 2
	String      ResponseFormat = 3
	OptionIndex ResponseFormat = 4
)

// FormatFromCode maps a funding request format code, unknown codes fall back to OptionIndex.
func FormatFromCode(code uint8) ResponseFormat {
	if code <= uint8(String) {
		return ResponseFormat(code)
	}
	return OptionIndex
}

func (f ResponseFormat) String() string {
	switch f {
	case Binary:
		return "Binary"
	case Score:
		return "Score"
	case Decimal:
		return "Decimal"
	case String:
		return "String"
	}
	return "OptionIndex"
}

type StateAccount struct {
	Address common.Address `json:"address"`
	Balance *big.Int       `json:"balance"`
}

type StateParticipant struct {
	Address  common.Address `json:"address"`
	Category string         `json:"category"`
	Role     Role           `json:"role"`
	Balance  *big.Int       `json:"balance"`
}

// PredefinedState is loaded into an empty database by the init command.
type PredefinedState struct {
	Accounts     []*StateAccount     `json:"accounts"`
	Participants []*StateParticipant `json:"participants"`
}
