package attachments

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/common"
)

type RegisterAttachment struct {
	Category string
}

func CreateRegisterAttachment(category string) []byte {
	payload, _ := cbor.Marshal(&RegisterAttachment{Category: category})
	return payload
}

func ParseRegisterAttachment(tx *types.Transaction) *RegisterAttachment {
	var attachment RegisterAttachment
	if err := cbor.Unmarshal(tx.Payload, &attachment); err != nil {
		return nil
	}
	return &attachment
}

type RequestDataAttachment struct {
	Category string
	Format   uint8
}

func CreateRequestDataAttachment(category string, format uint8) []byte {
	payload, _ := cbor.Marshal(&RequestDataAttachment{Category: category, Format: format})
	return payload
}

func ParseRequestDataAttachment(tx *types.Transaction) *RequestDataAttachment {
	var attachment RequestDataAttachment
	if err := cbor.Unmarshal(tx.Payload, &attachment); err != nil {
		return nil
	}
	return &attachment
}

type CommitAttachment struct {
	Hash common.Hash
	// Hint is an opaque encrypted blob for the participant's own recovery.
	Hint []byte `cbor:",omitempty"`
}

func CreateCommitAttachment(hash common.Hash, hint []byte) []byte {
	payload, _ := cbor.Marshal(&CommitAttachment{Hash: hash, Hint: hint})
	return payload
}

func ParseCommitAttachment(tx *types.Transaction) *CommitAttachment {
	var attachment CommitAttachment
	if err := cbor.Unmarshal(tx.Payload, &attachment); err != nil {
		return nil
	}
	return &attachment
}

type RevealAttachment struct {
	Value  string
	Secret string
}

func CreateRevealAttachment(value, secret string) []byte {
	payload, _ := cbor.Marshal(&RevealAttachment{Value: value, Secret: secret})
	return payload
}

func ParseRevealAttachment(tx *types.Transaction) *RevealAttachment {
	var attachment RevealAttachment
	if err := cbor.Unmarshal(tx.Payload, &attachment); err != nil {
		return nil
	}
	return &attachment
}

// ResolveAttachment carries the replacement result of a dispute. A nil result voids the query.
type ResolveAttachment struct {
	Result *string `cbor:",omitempty"`
}

func CreateResolveAttachment(result *string) []byte {
	payload, _ := cbor.Marshal(&ResolveAttachment{Result: result})
	return payload
}

func ParseResolveAttachment(tx *types.Transaction) *ResolveAttachment {
	var attachment ResolveAttachment
	if err := cbor.Unmarshal(tx.Payload, &attachment); err != nil {
		return nil
	}
	return &attachment
}

type AppealAttachment struct {
	Reason string
}

func CreateAppealAttachment(reason string) []byte {
	payload, _ := cbor.Marshal(&AppealAttachment{Reason: reason})
	return payload
}

func ParseAppealAttachment(tx *types.Transaction) *AppealAttachment {
	var attachment AppealAttachment
	if err := cbor.Unmarshal(tx.Payload, &attachment); err != nil {
		return nil
	}
	return &attachment
}

type ResolveAppealAttachment struct {
	Uphold bool
}

func CreateResolveAppealAttachment(uphold bool) []byte {
	payload, _ := cbor.Marshal(&ResolveAppealAttachment{Uphold: uphold})
	return payload
}

func ParseResolveAppealAttachment(tx *types.Transaction) *ResolveAppealAttachment {
	var attachment ResolveAppealAttachment
	if err := cbor.Unmarshal(tx.Payload, &attachment); err != nil {
		return nil
	}
	return &attachment
}
