package api

import (
	"github.com/truth-pool/truthpool-go/blockchain"
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/core/appstate"
)

type BaseApi struct {
	processor *blockchain.Processor
}

func NewBaseApi(processor *blockchain.Processor) *BaseApi {
	return &BaseApi{processor}
}

func (api *BaseApi) getAppState() *appstate.AppState {
	return api.processor.ReadState()
}

// TxResult is the outcome of a submitted transaction.
type TxResult struct {
	Hash    common.Hash `json:"hash"`
	Success bool        `json:"success"`
	Kind    string      `json:"kind,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SendTx applies tx. Rejections are reported in the result; the error is only
// set when the node could not persist the outcome.
func (api *BaseApi) SendTx(tx *types.Transaction) (TxResult, error) {
	receipt, err := api.processor.ApplyTx(tx)
	if receipt == nil {
		return TxResult{Hash: tx.Hash()}, err
	}
	return TxResult{
		Hash:    receipt.TxHash,
		Success: receipt.Success,
		Kind:    receipt.ErrorKind,
		Error:   receipt.Error,
	}, nil
}

func (api *BaseApi) Receipt(hash common.Hash) *types.TxReceipt {
	return api.processor.Receipt(hash)
}
