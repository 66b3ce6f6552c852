package validation

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/truth-pool/truthpool-go/blockchain/attachments"
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/common"
	kinds "github.com/truth-pool/truthpool-go/core/validation"
	"math/big"
	"testing"
)

func TestValidateTx(t *testing.T) {
	sender := common.Address{0x1}
	target := common.Address{0x2}
	cases := []struct {
		name string
		tx   *types.Transaction
		err  error
	}{
		{"no sender", &types.Transaction{Type: types.TallyTx, Timestamp: 1, EventID: "e"}, InvalidSender},
		{"no timestamp", &types.Transaction{Type: types.TallyTx, Sender: sender, EventID: "e"}, InvalidTimestamp},
		{"unknown type", &types.Transaction{Type: 0xff, Sender: sender, Timestamp: 1}, InvalidTxType},
		{"no event", &types.Transaction{Type: types.TallyTx, Sender: sender, Timestamp: 1}, EventIDRequired},
		{"tally", &types.Transaction{Type: types.TallyTx, Sender: sender, Timestamp: 1, EventID: "e"}, nil},
		{"zero deposit", &types.Transaction{Type: types.DepositTx, Sender: sender, Timestamp: 1, Amount: big.NewInt(0)}, InvalidAmount},
		{"deposit", &types.Transaction{Type: types.DepositTx, Sender: sender, Timestamp: 1, Amount: big.NewInt(1)}, nil},
		{"partner without target", &types.Transaction{Type: types.RegisterPartnerTx, Sender: sender, Timestamp: 1,
			Payload: attachments.CreateRegisterAttachment("c")}, RecipientRequired},
		{"partner", &types.Transaction{Type: types.RegisterPartnerTx, Sender: sender, Timestamp: 1, Target: &target,
			Payload: attachments.CreateRegisterAttachment("c")}, nil},
		{"commit without payload", &types.Transaction{Type: types.CommitTx, Sender: sender, Timestamp: 1, EventID: "e"}, InvalidPayload},
		{"commit", &types.Transaction{Type: types.CommitTx, Sender: sender, Timestamp: 1, EventID: "e",
			Payload: attachments.CreateCommitAttachment(common.Hash{0x1}, nil)}, nil},
		{"big payload", &types.Transaction{Type: types.CommitTx, Sender: sender, Timestamp: 1, EventID: "e",
			Payload: make([]byte, MaxPayloadSize+1)}, InvalidPayload},
		{"fund without target", &types.Transaction{Type: types.FundTx, Sender: sender, Timestamp: 1, Amount: big.NewInt(1)}, RecipientRequired},
		{"fund", &types.Transaction{Type: types.FundTx, Sender: sender, Timestamp: 1, Target: &target, Amount: big.NewInt(1)}, nil},
		{"request without bounty", &types.Transaction{Type: types.RequestDataTx, Sender: sender, Timestamp: 1, EventID: "e",
			Payload: attachments.CreateRequestDataAttachment("c", 0)}, InvalidAmount},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ValidateTx(c.tx)
			if c.err == nil {
				require.NoError(t, err)
				return
			}
			require.Equal(t, c.err, err)
			require.True(t, errors.Is(err, kinds.InvalidArgument))
		})
	}
}
