package types

import (
	"github.com/stretchr/testify/require"
	"github.com/truth-pool/truthpool-go/common"
	"math/big"
	"testing"
)

func TestTransaction_Hash(t *testing.T) {
	require := require.New(t)
	target := common.Address{0x2}
	tx := &Transaction{
		Type:      ClaimTx,
		Sender:    common.Address{0x1},
		Timestamp: 100,
		EventID:   "e",
		Target:    &target,
		Amount:    big.NewInt(5),
	}
	data, err := tx.ToBytes()
	require.NoError(err)

	restored := new(Transaction)
	require.NoError(restored.FromBytes(data))
	require.Equal(tx.Hash(), restored.Hash())
	require.Equal(target, restored.TargetOrSender())

	other := &Transaction{Type: ClaimTx, Sender: common.Address{0x1}, Timestamp: 101, EventID: "e"}
	require.NotEqual(tx.Hash(), other.Hash())
	require.Equal(common.Address{0x1}, other.TargetOrSender())
	require.Zero(other.AmountOrZero().Sign())
}

func TestTxTypeName(t *testing.T) {
	require.Equal(t, "slash-non-revealer", TxTypeName(SlashNonRevealerTx))
	require.Equal(t, "unknown", TxTypeName(0xff))
	require.True(t, IsKnownTxType(SweepBountyTx))
	require.False(t, IsKnownTxType(SweepBountyTx+1))
}
