package blockchain

import (
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/log"
	dbm "github.com/tendermint/tm-db"
)

type repo struct {
	db dbm.DB
}

func newRepo(db dbm.DB) *repo {
	return &repo{
		db: db,
	}
}

func receiptKey(hash common.Hash) []byte {
	return append(append([]byte{}, receiptPrefix...), hash.Bytes()...)
}

func (r *repo) ReadReceipt(hash common.Hash) *types.TxReceipt {
	data, err := r.db.Get(receiptKey(hash))
	if err != nil {
		log.Error("Cannot read receipt", "hash", hash.Hex(), "err", err)
		return nil
	}
	if data == nil {
		return nil
	}
	receipt := new(types.TxReceipt)
	if err := receipt.FromBytes(data); err != nil {
		log.Error("Invalid receipt encoding", "hash", hash.Hex(), "err", err)
		return nil
	}
	return receipt
}

func (r *repo) WriteReceipt(receipt *types.TxReceipt) error {
	data, err := receipt.ToBytes()
	if err != nil {
		return err
	}
	return r.db.SetSync(receiptKey(receipt.TxHash), data)
}

func (r *repo) GenesisLoaded() bool {
	has, err := r.db.Has(genesisKey)
	if err != nil {
		log.Error("Cannot read genesis marker", "err", err)
		return false
	}
	return has
}
