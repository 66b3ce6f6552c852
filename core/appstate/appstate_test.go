package appstate

import (
	"github.com/stretchr/testify/require"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/eventbus"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/events"
	dbm "github.com/tendermint/tm-db"
	"math/big"
	"testing"
)

func TestAppState_CommitFlushesAndPublishes(t *testing.T) {
	require := require.New(t)
	db := dbm.NewMemDB()
	bus := eventbus.New()
	var received []eventbus.Event
	require.NoError(bus.Subscribe(events.CapitalEventID, func(e eventbus.Event) {
		received = append(received, e)
	}))

	appState := NewAppState(db, bus)
	addr := common.Address{0x1}

	tx := appState.ForCheck()
	tx.State.AddBalance(addr, big.NewInt(10))
	tx.AddEvent(&events.CapitalEvent{Participant: addr, Amount: big.NewInt(10), Action: events.Deposit})

	require.NoError(tx.Precommit())
	has, _ := db.Has(state.StateDbKeys.AccountKey(addr))
	require.False(has)
	require.Empty(received)

	require.NoError(tx.Commit())
	require.Len(received, 1)
	require.Empty(tx.Events())

	require.Equal(big.NewInt(10), NewAppState(db, bus).State.GetBalance(addr))
}

func TestAppState_ResetDiscardsChanges(t *testing.T) {
	require := require.New(t)
	db := dbm.NewMemDB()
	bus := eventbus.New()
	fired := false
	require.NoError(bus.Subscribe(events.CapitalEventID, func(e eventbus.Event) {
		fired = true
	}))

	appState := NewAppState(db, bus)
	addr := common.Address{0x1}

	tx := appState.ForCheck()
	tx.State.AddBalance(addr, big.NewInt(10))
	tx.AddEvent(&events.CapitalEvent{Participant: addr, Amount: big.NewInt(10), Action: events.Deposit})
	require.NoError(tx.Precommit())
	tx.Reset()

	require.False(fired)
	require.Equal(0, tx.State.GetBalance(addr).Sign())
	require.Equal(0, NewAppState(db, bus).State.GetBalance(addr).Sign())
}

func TestAppState_ReadonlyCommitFails(t *testing.T) {
	appState := NewAppState(dbm.NewMemDB(), eventbus.New())
	require.Error(t, appState.Commit())
}
