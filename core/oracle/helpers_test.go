package oracle

import (
	"github.com/stretchr/testify/require"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/eventbus"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/ledger"
	"github.com/truth-pool/truthpool-go/core/registry"
	"github.com/truth-pool/truthpool-go/core/state"
	dbm "github.com/tendermint/tm-db"
	"math/big"
	"testing"
)

const (
	startTime = int64(1_600_000_000)
	category  = "sports"
	eventID   = "match-1"
)

type testEnv struct {
	t        *testing.T
	cfg      *config.Config
	appState *appstate.AppState
	oracle   *Oracle
	ledger   *ledger.Ledger
	registry *registry.Registry
}

func newTestEnv(t *testing.T) *testEnv {
	cfg := config.MakeDefaultConfig()
	cfg.Oracle.MinQuorum = 1
	l := ledger.NewLedger(cfg.Oracle, cfg.Authorities)
	r := registry.NewRegistry(cfg.Oracle, cfg.Authorities)
	return &testEnv{
		t:        t,
		cfg:      cfg,
		appState: appstate.NewAppState(dbm.NewMemDB(), eventbus.New()).ForCheck(),
		oracle:   NewOracle(cfg.Oracle, cfg.Authorities, l, r),
		ledger:   l,
		registry: r,
	}
}

func testAddr(i int) common.Address {
	return common.BytesToAddress(big.NewInt(int64(i) + 0x1000).Bytes())
}

func assets(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), common.AssetBase)
}

// addParticipant registers addr and deposits 10 assets for standard participants.
func (e *testEnv) addParticipant(addr common.Address, role state.Role) {
	require := require.New(e.t)
	admin := e.cfg.Authorities.Admin
	switch role {
	case state.Standard:
		require.NoError(e.registry.RegisterParticipant(e.appState, addr, category))
		e.appState.State.AddBalance(addr, assets(10))
		require.NoError(e.ledger.Deposit(e.appState, addr, assets(10)))
	case state.Partner:
		require.NoError(e.registry.RegisterPartner(e.appState, admin, addr, category))
	case state.Sentinel:
		require.NoError(e.registry.RegisterSentinel(e.appState, admin, addr, category))
	}
}

func (e *testEnv) openQuery(id string) {
	requester := testAddr(-1)
	e.appState.State.AddBalance(requester, assets(10))
	require.NoError(e.t, e.oracle.RequestData(e.appState, requester, startTime, id, category, assets(10), 0))
}

func (e *testEnv) commit(addr common.Address, value string) error {
	return e.oracle.Commit(e.appState, addr, startTime+1, eventID, VoteHash(value, "salt-"+addr.Hex()), nil)
}

func (e *testEnv) reveal(addr common.Address, value string) error {
	return e.oracle.Reveal(e.appState, addr, e.commitDeadline()+1, eventID, value, "salt-"+addr.Hex())
}

func (e *testEnv) query() *state.Query {
	return e.appState.State.GetQuery(eventID).Data()
}

func (e *testEnv) commitDeadline() int64 {
	return e.query().CommitDeadline
}

func (e *testEnv) revealDeadline() int64 {
	return e.query().RevealDeadline
}

func (e *testEnv) advance() {
	require.NoError(e.t, e.oracle.AdvancePhase(e.appState, e.commitDeadline()+1, eventID))
}

// vote registers standard participants which commit and reveal the given values.
func (e *testEnv) vote(values ...string) []common.Address {
	var addrs []common.Address
	for i, value := range values {
		addr := testAddr(i)
		e.addParticipant(addr, state.Standard)
		require.NoError(e.t, e.commit(addr, value))
		addrs = append(addrs, addr)
	}
	e.advance()
	for i, value := range values {
		require.NoError(e.t, e.reveal(addrs[i], value))
	}
	return addrs
}

func repeat(value string, n int) []string {
	res := make([]string, n)
	for i := range res {
		res[i] = value
	}
	return res
}
