package settlement

import (
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/eventbus"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/ledger"
	"github.com/truth-pool/truthpool-go/core/oracle"
	"github.com/truth-pool/truthpool-go/core/registry"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/events"
	dbm "github.com/tendermint/tm-db"
	"math/big"
	"testing"
)

const (
	startTime = int64(1_600_000_000)
	category  = "weather"
	eventID   = "rain-tomorrow"
)

type testEnv struct {
	t          *testing.T
	cfg        *config.Config
	appState   *appstate.AppState
	oracle     *oracle.Oracle
	settlement *Settlement
	registry   *registry.Registry
	ledger     *ledger.Ledger
	minted     *big.Int
	addrs      []common.Address
}

func newTestEnv(t *testing.T) *testEnv {
	cfg := config.MakeDefaultConfig()
	cfg.Oracle.MinQuorum = 1
	l := ledger.NewLedger(cfg.Oracle, cfg.Authorities)
	r := registry.NewRegistry(cfg.Oracle, cfg.Authorities)
	e := &testEnv{
		t:          t,
		cfg:        cfg,
		appState:   appstate.NewAppState(dbm.NewMemDB(), eventbus.New()).ForCheck(),
		oracle:     oracle.NewOracle(cfg.Oracle, cfg.Authorities, l, r),
		settlement: NewSettlement(cfg.Oracle, cfg.Authorities, l, r),
		registry:   r,
		ledger:     l,
		minted:     new(big.Int),
		addrs:      []common.Address{cfg.Authorities.Treasury, cfg.Authorities.SentinelPool, requester()},
	}
	e.mint(requester(), assets(10))
	require.NoError(t, e.oracle.RequestData(e.appState, requester(), startTime, eventID, category, assets(10), 0))
	return e
}

func requester() common.Address {
	return common.Address{0xff}
}

func testAddr(i int) common.Address {
	return common.BytesToAddress(big.NewInt(int64(i) + 0x2000).Bytes())
}

func assets(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), common.AssetBase)
}

func (e *testEnv) mint(addr common.Address, amount *big.Int) {
	e.appState.State.AddBalance(addr, amount)
	e.minted.Add(e.minted, amount)
}

// total sums every wallet, participant balance and escrowed bounty the test has touched.
func (e *testEnv) total() *big.Int {
	sum := new(big.Int)
	for _, addr := range e.addrs {
		sum.Add(sum, e.appState.State.GetBalance(addr))
		if p := e.appState.State.GetParticipant(addr); p != nil {
			sum.Add(sum, p.Balance())
		}
	}
	return sum.Add(sum, e.query().Bounty)
}

func (e *testEnv) join(i int, role state.Role) common.Address {
	addr := testAddr(i)
	admin := e.cfg.Authorities.Admin
	switch role {
	case state.Standard:
		require.NoError(e.t, e.registry.RegisterParticipant(e.appState, addr, category))
		e.mint(addr, assets(10))
		require.NoError(e.t, e.ledger.Deposit(e.appState, addr, assets(10)))
	case state.Partner:
		require.NoError(e.t, e.registry.RegisterPartner(e.appState, admin, addr, category))
	case state.Sentinel:
		require.NoError(e.t, e.registry.RegisterSentinel(e.appState, admin, addr, category))
	}
	e.addrs = append(e.addrs, addr)
	return addr
}

func secret(addr common.Address) string {
	return "s" + addr.Hex()
}

func (e *testEnv) commit(addr common.Address, value string) {
	require.NoError(e.t, e.oracle.Commit(e.appState, addr, startTime+1, eventID, oracle.VoteHash(value, secret(addr)), nil))
}

func (e *testEnv) reveal(addr common.Address, value string) {
	require.NoError(e.t, e.oracle.Reveal(e.appState, addr, e.query().CommitDeadline+1, eventID, value, secret(addr)))
}

func (e *testEnv) advance() {
	require.NoError(e.t, e.oracle.AdvancePhase(e.appState, e.query().CommitDeadline+1, eventID))
}

// tally closes the reveal phase and returns the first moment settlement is allowed.
func (e *testEnv) tally() int64 {
	now := e.query().RevealDeadline + 1
	require.NoError(e.t, e.oracle.Tally(e.appState, now, eventID))
	return now + int64(e.cfg.Oracle.SettlementWindow.Seconds()) + 1
}

func (e *testEnv) query() *state.Query {
	return e.appState.State.GetQuery(eventID).Data()
}

func (e *testEnv) participant(addr common.Address) state.Participant {
	return e.appState.State.GetParticipant(addr).Data()
}

// run lets standard participants commit and reveal values, one participant per value.
func (e *testEnv) run(values ...string) []common.Address {
	var addrs []common.Address
	for i, value := range values {
		addr := e.join(i, state.Standard)
		e.commit(addr, value)
		addrs = append(addrs, addr)
	}
	e.advance()
	for i, value := range values {
		e.reveal(addrs[i], value)
	}
	return addrs
}

func (e *testEnv) ticketHolder(addrs []common.Address) common.Address {
	q := e.query()
	require.NotNil(e.t, q.WinningTicket)
	for _, addr := range addrs {
		c := e.appState.State.GetCommitment(eventID, addr).Data()
		if c.Value != nil && *c.Value == *q.Result && c.Ticket == *q.WinningTicket {
			return addr
		}
	}
	e.t.Fatal("ticket holder is not found")
	return common.Address{}
}

func TestSettlement_Claim(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	addrs := e.run("yes", "yes", "no")
	settleAt := e.tally()
	require.Equal(state.Finalized, e.query().Status)

	winner := e.ticketHolder(addrs)
	var loser common.Address
	for _, addr := range addrs[:2] {
		if addr != winner {
			loser = addr
		}
	}

	require.True(errors.Is(e.settlement.Claim(e.appState, settleAt-1, eventID, winner), validation.PhaseViolation))
	require.True(errors.Is(e.settlement.Claim(e.appState, settleAt, eventID, addrs[2]), validation.OutcomeMismatch))
	require.True(errors.Is(e.settlement.Claim(e.appState, settleAt, eventID, testAddr(99)), validation.NotFound))

	require.NoError(e.settlement.Claim(e.appState, settleAt, eventID, loser))
	require.Equal(0, e.participant(loser).PendingBond.Sign())
	require.Equal(0, e.appState.State.GetBalance(loser).Sign())

	require.NoError(e.settlement.Claim(e.appState, settleAt, eventID, winner))
	require.Equal(assets(9), e.appState.State.GetBalance(winner))
	require.Equal(assets(1), e.appState.State.GetBalance(e.cfg.Authorities.Treasury))
	require.Equal(0, e.query().Bounty.Sign())

	last := e.appState.Events()[len(e.appState.Events())-1].(*events.ClaimEvent)
	require.Equal(winner, last.Participant)
	require.Equal(assets(9), last.Reward)

	require.True(errors.Is(e.settlement.Claim(e.appState, settleAt, eventID, winner), validation.AlreadyProcessed))
	require.Equal(e.minted, e.total())
}

func TestSettlement_SentinelRewardGoesToPool(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	var addrs []common.Address
	for i := 0; i < 3; i++ {
		addrs = append(addrs, e.join(i, state.Standard))
		e.commit(addrs[i], "yes")
	}
	sentinel := e.join(3, state.Sentinel)
	e.commit(sentinel, "yes")
	e.advance()
	e.reveal(sentinel, "yes")
	for _, addr := range addrs {
		e.reveal(addr, "yes")
	}
	settleAt := e.tally()
	require.Equal(state.Finalized, e.query().Status)

	ticket := e.appState.State.GetCommitment(eventID, sentinel).Data().Ticket
	require.Equal(uint32(1), ticket)
	e.query().WinningTicket = &ticket

	require.NoError(e.settlement.Claim(e.appState, settleAt, eventID, sentinel))
	require.Equal(assets(9), e.appState.State.GetBalance(e.cfg.Authorities.SentinelPool))
	require.Equal(0, e.appState.State.GetBalance(sentinel).Sign())
	require.Equal(0, e.participant(sentinel).PendingBond.Sign())
	require.Equal(e.minted, e.total())
}

func TestSettlement_SlashLiar(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	addrs := e.run("yes", "yes", "no")
	settleAt := e.tally()
	liar := addrs[2]
	bond := e.cfg.Oracle.Bond

	require.True(errors.Is(e.settlement.SlashLiar(e.appState, settleAt-1, eventID, liar), validation.PhaseViolation))
	require.True(errors.Is(e.settlement.SlashLiar(e.appState, settleAt, eventID, addrs[0]), validation.OutcomeMismatch))

	require.NoError(e.settlement.SlashLiar(e.appState, settleAt, eventID, liar))
	p := e.participant(liar)
	require.Equal(new(big.Int).Sub(assets(10), bond), p.Balance)
	require.Equal(0, p.PendingBond.Sign())
	require.Equal(int64(-10), p.Reputation)
	require.True(p.Active)
	require.Equal(bond, e.appState.State.GetBalance(e.cfg.Authorities.Treasury))

	require.True(errors.Is(e.settlement.SlashLiar(e.appState, settleAt, eventID, liar), validation.AlreadyProcessed))
	require.True(errors.Is(e.settlement.Claim(e.appState, settleAt, eventID, liar), validation.OutcomeMismatch))
	require.Equal(e.minted, e.total())
}

func TestSettlement_SlashLiarDeactivates(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	values := []string{"yes", "yes", "no", "no"}
	var addrs []common.Address
	for i, value := range values {
		addrs = append(addrs, e.join(i, state.Standard))
		e.commit(addrs[i], value)
	}
	partner := e.join(10, state.Partner)
	e.commit(partner, "no")
	e.advance()
	for i, value := range values {
		e.reveal(addrs[i], value)
	}
	e.reveal(partner, "no")
	// 3 of 5 is not a supermajority
	now := e.query().RevealDeadline + 1
	require.NoError(e.oracle.Tally(e.appState, now, eventID))
	require.Equal(state.InDispute, e.query().Status)
	require.NoError(e.oracle.ArbiterResolve(e.appState, e.cfg.Authorities.Arbiter, now, eventID, strPtr("yes")))
	settleAt := now + int64(e.cfg.Oracle.SettlementWindow.Seconds()) + 1

	poor := addrs[2]
	required := new(big.Int).Add(e.cfg.Oracle.ReservedMinimum, e.cfg.Oracle.Bond)
	e.appState.State.GetParticipant(poor).SetBalance(required.Sub(required, big.NewInt(1)))
	balance := e.participant(poor).Balance

	require.NoError(e.settlement.SlashLiar(e.appState, settleAt, eventID, poor))
	require.False(e.participant(poor).Active)
	require.Equal(balance, e.participant(poor).Balance)

	require.NoError(e.settlement.SlashLiar(e.appState, settleAt, eventID, partner))
	p := e.participant(partner)
	require.False(p.Active)
	require.Equal(e.cfg.Oracle.TrustedReputation-e.cfg.Oracle.Penalty, p.Reputation)
	require.Equal(0, p.PendingBond.Sign())
	require.Equal(0, e.appState.State.GetBalance(e.cfg.Authorities.Treasury).Sign())

	require.NoError(e.settlement.SlashLiar(e.appState, settleAt, eventID, addrs[3]))
	require.True(e.participant(addrs[3]).Active)
}

func TestSettlement_SlashNonRevealer(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	honest := []common.Address{e.join(0, state.Standard), e.join(1, state.Standard)}
	silent := e.join(2, state.Standard)
	for _, addr := range honest {
		e.commit(addr, "yes")
	}
	e.commit(silent, "yes")

	require.True(errors.Is(e.settlement.SlashNonRevealer(e.appState, e.query().RevealDeadline+1, eventID, silent), validation.PhaseViolation))
	e.advance()
	for _, addr := range honest {
		e.reveal(addr, "yes")
	}
	deadline := e.query().RevealDeadline
	require.True(errors.Is(e.settlement.SlashNonRevealer(e.appState, deadline, eventID, silent), validation.PhaseViolation))
	require.True(errors.Is(e.settlement.SlashNonRevealer(e.appState, deadline+1, eventID, honest[0]), validation.OutcomeMismatch))

	// allowed before the tally
	require.NoError(e.settlement.SlashNonRevealer(e.appState, deadline+1, eventID, silent))
	p := e.participant(silent)
	require.Equal(0, p.LockedBond.Sign())
	require.Equal(new(big.Int).Sub(assets(10), e.cfg.Oracle.Bond), p.Balance)
	require.Equal(int64(-10), p.Reputation)
	require.True(errors.Is(e.settlement.SlashNonRevealer(e.appState, deadline+1, eventID, silent), validation.AlreadyProcessed))

	e.tally()
	require.Equal(state.Finalized, e.query().Status)
	require.True(errors.Is(e.settlement.RecoverFromVoid(e.appState, eventID, silent), validation.PhaseViolation))
	require.Equal(e.minted, e.total())
}

func TestSettlement_Void(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	var addrs []common.Address
	for i := 0; i < 4; i++ {
		addrs = append(addrs, e.join(i, state.Standard))
		e.commit(addrs[i], "yes")
	}
	e.advance()
	e.reveal(addrs[0], "yes")
	e.tally()
	require.Equal(state.Voided, e.query().Status)

	require.True(errors.Is(e.settlement.SlashNonRevealer(e.appState, e.query().RevealDeadline+1, eventID, addrs[1]), validation.PhaseViolation))
	require.True(errors.Is(e.settlement.Claim(e.appState, e.query().RevealDeadline+1, eventID, addrs[0]), validation.PhaseViolation))

	for _, addr := range addrs {
		require.NoError(e.settlement.RecoverFromVoid(e.appState, eventID, addr))
		p := e.participant(addr)
		require.Equal(0, p.LockedBond.Sign())
		require.Equal(0, p.PendingBond.Sign())
		require.Equal(assets(10), p.Balance)
		require.Zero(p.Reputation)
	}
	require.True(errors.Is(e.settlement.RecoverFromVoid(e.appState, eventID, addrs[0]), validation.AlreadyProcessed))

	require.True(errors.Is(e.settlement.ReclaimBounty(e.appState, eventID, addrs[0]), validation.AlreadyProcessed))
	require.NoError(e.settlement.ReclaimBounty(e.appState, eventID, requester()))
	require.Equal(assets(10), e.appState.State.GetBalance(requester()))
	require.Equal(0, e.query().Bounty.Sign())
	require.True(errors.Is(e.settlement.ReclaimBounty(e.appState, eventID, requester()), validation.AlreadyProcessed))
	require.True(errors.Is(e.settlement.ReclaimBounty(e.appState, "unknown", requester()), validation.NotFound))
	require.Equal(e.minted, e.total())
}

func TestSettlement_ReclaimSeveralFunders(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	second := common.Address{0xee}
	e.addrs = append(e.addrs, second)
	e.mint(second, assets(4))
	require.NoError(e.oracle.RequestData(e.appState, second, startTime+1, eventID, category, assets(4), 0))
	require.Equal(assets(14), e.query().Bounty)

	// no commits at all
	e.advance()
	e.tally()
	require.Equal(state.InDispute, e.query().Status)
	require.True(errors.Is(e.settlement.ReclaimBounty(e.appState, eventID, second), validation.PhaseViolation))
	require.NoError(e.oracle.ArbiterResolve(e.appState, e.cfg.Authorities.Arbiter, startTime, eventID, nil))

	require.NoError(e.settlement.ReclaimBounty(e.appState, eventID, second))
	require.NoError(e.settlement.ReclaimBounty(e.appState, eventID, requester()))
	require.Equal(assets(4), e.appState.State.GetBalance(second))
	require.Equal(assets(10), e.appState.State.GetBalance(requester()))
	require.Equal(e.minted, e.total())
}

func TestSettlement_ClaimRounding(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	e.mint(requester(), big.NewInt(7))
	require.NoError(e.oracle.RequestData(e.appState, requester(), startTime+1, eventID, category, big.NewInt(7), 0))
	addrs := e.run("yes")
	settleAt := e.tally()

	winner := e.ticketHolder(addrs)
	require.NoError(e.settlement.Claim(e.appState, settleAt, eventID, winner))
	// the fee is rounded down, the winner gets the rest
	require.Equal(new(big.Int).Add(assets(9), big.NewInt(7)), e.appState.State.GetBalance(winner))
	require.Equal(assets(1), e.appState.State.GetBalance(e.cfg.Authorities.Treasury))
	require.Equal(e.minted, e.total())
}

func (e *testEnv) resolveWithoutReveals() int64 {
	e.run("yes", "no")
	now := e.query().RevealDeadline + 1
	require.NoError(e.t, e.oracle.Tally(e.appState, now, eventID))
	require.Equal(e.t, state.InDispute, e.query().Status)
	require.NoError(e.t, e.oracle.ArbiterResolve(e.appState, e.cfg.Authorities.Arbiter, now, eventID, strPtr("maybe")))
	require.Nil(e.t, e.query().WinningTicket)
	return now
}

func TestSettlement_OverturnedResultRefundsFunder(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	now := e.resolveWithoutReveals()
	require.Equal(assets(10), e.query().Bounty)

	challenger := common.Address{0xcc}
	e.addrs = append(e.addrs, challenger)
	e.mint(challenger, e.cfg.Oracle.AppealBond)
	require.NoError(e.oracle.FileAppeal(e.appState, challenger, now, eventID, "nobody answered maybe"))
	require.NoError(e.oracle.ResolveAppeal(e.appState, e.cfg.Authorities.Admin, now, eventID, false))
	require.Equal(state.Voided, e.query().Status)

	require.NoError(e.settlement.ReclaimBounty(e.appState, eventID, requester()))
	require.Equal(assets(10), e.appState.State.GetBalance(requester()))
	require.Equal(e.cfg.Oracle.AppealBond, e.appState.State.GetBalance(e.cfg.Authorities.Treasury))
	require.True(errors.Is(e.settlement.ReclaimBounty(e.appState, eventID, requester()), validation.AlreadyProcessed))
	require.Equal(e.minted, e.total())
}

func TestSettlement_ReclaimFromEmptyEscrow(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	q := e.query()
	q.Status = state.Voided
	q.Bounty = new(big.Int)

	require.True(errors.Is(e.settlement.ReclaimBounty(e.appState, eventID, requester()), validation.InsufficientFunds))
	require.Equal(assets(10), e.appState.State.GetOrNewContribution(eventID, requester()).Amount())
}

func TestSettlement_SweepBounty(t *testing.T) {
	require := require.New(t)
	e := newTestEnv(t)
	now := e.resolveWithoutReveals()
	settleAt := now + int64(e.cfg.Oracle.SettlementWindow.Seconds()) + 1
	treasury := e.cfg.Authorities.Treasury

	require.True(errors.Is(e.settlement.SweepBounty(e.appState, settleAt-1, eventID), validation.PhaseViolation))
	require.NoError(e.settlement.SweepBounty(e.appState, settleAt, eventID))
	require.Equal(assets(10), e.appState.State.GetBalance(treasury))
	require.Equal(0, e.query().Bounty.Sign())
	require.True(errors.Is(e.settlement.SweepBounty(e.appState, settleAt, eventID), validation.AlreadyProcessed))
	require.True(errors.Is(e.settlement.SweepBounty(e.appState, settleAt, "unknown"), validation.NotFound))
	require.Equal(e.minted, e.total())
}

func TestSettlement_SweepKeepsTicketHolderBounty(t *testing.T) {
	e := newTestEnv(t)
	e.run("yes")
	settleAt := e.tally()
	require.True(t, errors.Is(e.settlement.SweepBounty(e.appState, settleAt, eventID), validation.OutcomeMismatch))
	require.Equal(t, assets(10), e.query().Bounty)
}

func strPtr(s string) *string {
	return &s
}
