package ledger

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/events"
	"github.com/truth-pool/truthpool-go/log"
	"math/big"
)

// Ledger keeps participant balances split into available, locked and pending funds.
// Releases and slashes saturate at zero; double release is prevented by the
// commitment flags of the callers.
type Ledger struct {
	conf     *config.OracleConf
	treasury common.Address
	log      log.Logger
}

func NewLedger(conf *config.OracleConf, authorities *config.AuthoritiesConf) *Ledger {
	return &Ledger{
		conf:     conf,
		treasury: authorities.Treasury,
		log:      log.New("component", "ledger"),
	}
}

// Available returns balance - locked - pending - reserved minimum, never negative.
func (l *Ledger) Available(appState *appstate.AppState, addr common.Address) *big.Int {
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return new(big.Int)
	}
	available := p.Balance()
	available = subSaturating(available, p.LockedBond())
	available = subSaturating(available, p.PendingBond())
	return subSaturating(available, l.conf.ReservedMinimum)
}

// Deposit moves amount from the wallet of addr to its participant balance.
func (l *Ledger) Deposit(appState *appstate.AppState, addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.Wrap(validation.InvalidArgument, "deposit amount should be positive")
	}
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}
	if err := appState.State.SubBalance(addr, amount); err != nil {
		return errors.Wrap(validation.InsufficientFunds, err.Error())
	}
	p.SetBalance(new(big.Int).Add(p.Balance(), amount))
	appState.AddEvent(&events.CapitalEvent{Participant: addr, Amount: new(big.Int).Set(amount), Action: events.Deposit})
	return nil
}

// Withdraw moves amount from the participant balance back to its wallet.
func (l *Ledger) Withdraw(appState *appstate.AppState, addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return errors.Wrap(validation.InvalidArgument, "withdraw amount should be positive")
	}
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}
	available := l.Available(appState, addr)
	if amount.Cmp(available) > 0 {
		return errors.Wrapf(validation.InsufficientFunds, "available %v, requested %v", available, amount)
	}
	p.SetBalance(new(big.Int).Sub(p.Balance(), amount))
	appState.State.AddBalance(addr, amount)
	appState.AddEvent(&events.CapitalEvent{Participant: addr, Amount: new(big.Int).Set(amount), Action: events.Withdraw})
	return nil
}

func (l *Ledger) LockBond(appState *appstate.AppState, addr common.Address, amount *big.Int) error {
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}
	p.SetLockedBond(new(big.Int).Add(p.LockedBond(), amount))
	return nil
}

// ReleaseToPending moves a revealed bond from locked to pending.
func (l *Ledger) ReleaseToPending(appState *appstate.AppState, addr common.Address, amount *big.Int) error {
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}
	moved := minBig(amount, p.LockedBond())
	p.SetLockedBond(new(big.Int).Sub(p.LockedBond(), moved))
	p.SetPendingBond(new(big.Int).Add(p.PendingBond(), moved))
	return nil
}

func (l *Ledger) ReleaseLocked(appState *appstate.AppState, addr common.Address, amount *big.Int) error {
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}
	p.SetLockedBond(subSaturating(p.LockedBond(), amount))
	return nil
}

func (l *Ledger) ReleasePending(appState *appstate.AppState, addr common.Address, amount *big.Int) error {
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}
	p.SetPendingBond(subSaturating(p.PendingBond(), amount))
	return nil
}

// Slash transfers up to amount from the participant balance to the treasury and
// returns the transferred amount.
func (l *Ledger) Slash(appState *appstate.AppState, addr common.Address, amount *big.Int) (*big.Int, error) {
	p := appState.State.GetParticipant(addr)
	if p == nil {
		return nil, errors.Wrapf(validation.NotFound, "participant %v", addr.Hex())
	}
	slashed := minBig(amount, p.Balance())
	p.SetBalance(new(big.Int).Sub(p.Balance(), slashed))
	appState.State.AddBalance(l.treasury, slashed)
	appState.AddEvent(&events.CapitalEvent{Participant: addr, Amount: new(big.Int).Set(slashed), Action: events.Slash})
	l.log.Debug("Participant slashed", "addr", addr.Hex(), "amount", slashed)
	return slashed, nil
}

// TransferWallet moves amount between two wallets.
func (l *Ledger) TransferWallet(appState *appstate.AppState, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errors.Wrap(validation.InvalidArgument, "transfer amount should not be negative")
	}
	if err := appState.State.SubBalance(from, amount); err != nil {
		return errors.Wrap(validation.InsufficientFunds, err.Error())
	}
	appState.State.AddBalance(to, amount)
	return nil
}

func subSaturating(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}

func minBig(a, b *big.Int) *big.Int {
	if a.Cmp(b) < 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
