package blockchain

var (
	// genesisKey marks that the predefined state has been loaded.
	genesisKey = []byte("Genesis")

	receiptPrefix = []byte("r") // receiptPrefix + tx hash -> receipt
)
