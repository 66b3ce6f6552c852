package types

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/crypto"
	"math/big"
	"sync/atomic"
)

const (
	RegisterParticipantTx TxType = 0x0
	RegisterPartnerTx     TxType = 0x1
	RegisterSentinelTx    TxType = 0x2
	DepositTx             TxType = 0x3
	WithdrawTx            TxType = 0x4
	RequestDataTx         TxType = 0x5
	CommitTx              TxType = 0x6
	RevealTx              TxType = 0x7
	AdvancePhaseTx        TxType = 0x8
	TallyTx               TxType = 0x9
	ArbiterResolveTx      TxType = 0xA
	EscalateTx            TxType = 0xB
	DaoResolveTx          TxType = 0xC
	FileAppealTx          TxType = 0xD
	ResolveAppealTx       TxType = 0xE
	ClaimTx               TxType = 0xF
	SlashLiarTx           TxType = 0x10
	SlashNonRevealerTx    TxType = 0x11
	RecoverFromVoidTx     TxType = 0x12
	ReclaimBountyTx       TxType = 0x13
	FundTx                TxType = 0x14
	SweepBountyTx         TxType = 0x15
)

type TxType = uint16

var txTypeNames = map[TxType]string{
	RegisterParticipantTx: "register",
	RegisterPartnerTx:     "register-partner",
	RegisterSentinelTx:    "register-sentinel",
	DepositTx:             "deposit",
	WithdrawTx:            "withdraw",
	RequestDataTx:         "request-data",
	CommitTx:              "commit",
	RevealTx:              "reveal",
	AdvancePhaseTx:        "advance",
	TallyTx:               "tally",
	ArbiterResolveTx:      "arbiter-resolve",
	EscalateTx:            "escalate",
	DaoResolveTx:          "dao-resolve",
	FileAppealTx:          "appeal",
	ResolveAppealTx:       "resolve-appeal",
	ClaimTx:               "claim",
	SlashLiarTx:           "slash-liar",
	SlashNonRevealerTx:    "slash-non-revealer",
	RecoverFromVoidTx:     "recover",
	ReclaimBountyTx:       "reclaim-bounty",
	FundTx:                "fund",
	SweepBountyTx:         "sweep-bounty",
}

func TxTypeName(txType TxType) string {
	if name, ok := txTypeNames[txType]; ok {
		return name
	}
	return "unknown"
}

func IsKnownTxType(txType TxType) bool {
	_, ok := txTypeNames[txType]
	return ok
}

// Transaction is a single oracle operation. Sender authentication is done by
// the transport the transaction arrived with; Timestamp is the host clock.
type Transaction struct {
	Type      TxType
	Sender    common.Address
	Timestamp int64
	EventID   string          `cbor:",omitempty"`
	Target    *common.Address `cbor:",omitempty"`
	Amount    *big.Int        `cbor:",omitempty" json:"value"`
	Payload   []byte          `cbor:",omitempty" json:"input"`

	// caches
	hash atomic.Value
}

// TargetOrSender returns the participant a transaction acts on.
func (tx *Transaction) TargetOrSender() common.Address {
	if tx.Target != nil {
		return *tx.Target
	}
	return tx.Sender
}

func (tx *Transaction) AmountOrZero() *big.Int {
	if tx.Amount == nil {
		return new(big.Int)
	}
	return tx.Amount
}

func (tx *Transaction) ToBytes() ([]byte, error) {
	return cbor.Marshal(tx)
}

func (tx *Transaction) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, tx)
}

func (tx *Transaction) Hash() common.Hash {
	if hash := tx.hash.Load(); hash != nil {
		return hash.(common.Hash)
	}
	data, _ := tx.ToBytes()
	h := common.Hash(crypto.Hash(data))
	tx.hash.Store(h)
	return h
}

type TxReceipt struct {
	TxHash    common.Hash
	Type      TxType
	Sender    common.Address
	EventID   string
	Timestamp int64
	Success   bool
	// ErrorKind is the name of the error class, Error the full message.
	ErrorKind string `cbor:",omitempty"`
	Error     string `cbor:",omitempty"`
}

func (r *TxReceipt) ToBytes() ([]byte, error) {
	return cbor.Marshal(r)
}

func (r *TxReceipt) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, r)
}
