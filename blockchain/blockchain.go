package blockchain

import (
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/truth-pool/truthpool-go/blockchain/attachments"
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/blockchain/validation"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/common/eventbus"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/ledger"
	"github.com/truth-pool/truthpool-go/core/oracle"
	"github.com/truth-pool/truthpool-go/core/registry"
	"github.com/truth-pool/truthpool-go/core/settlement"
	kinds "github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/events"
	"github.com/truth-pool/truthpool-go/log"
	dbm "github.com/tendermint/tm-db"
	"sync"
	"time"
)

var (
	GenesisAlreadyLoaded = errors.New("genesis is already loaded")
)

// Processor applies oracle transactions one at a time. Each transaction runs on
// its own overlay of the permanent database and is either flushed as a whole or dropped.
type Processor struct {
	config     *config.Config
	db         dbm.DB
	bus        eventbus.Bus
	repo       *repo
	ledger     *ledger.Ledger
	registry   *registry.Registry
	oracle     *oracle.Oracle
	settlement *settlement.Settlement
	metrics    *txMetrics
	log        log.Logger
	mutex      sync.Mutex
}

func NewProcessor(cfg *config.Config, db dbm.DB, bus eventbus.Bus, metricsRegistry metrics.Registry) *Processor {
	l := ledger.NewLedger(cfg.Oracle, cfg.Authorities)
	r := registry.NewRegistry(cfg.Oracle, cfg.Authorities)
	return &Processor{
		config:     cfg,
		db:         db,
		bus:        bus,
		repo:       newRepo(db),
		ledger:     l,
		registry:   r,
		oracle:     oracle.NewOracle(cfg.Oracle, cfg.Authorities, l, r),
		settlement: settlement.NewSettlement(cfg.Oracle, cfg.Authorities, l, r),
		metrics:    newTxMetrics(metricsRegistry),
		log:        log.New("component", "processor"),
	}
}

func (p *Processor) Config() *config.Config {
	return p.config
}

// ReadState returns a read-only view of the committed state.
func (p *Processor) ReadState() *appstate.AppState {
	return appstate.NewAppState(p.db, nil)
}

// InitializeGenesis loads the configured wallets and participants into an empty database.
func (p *Processor) InitializeGenesis() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.repo.GenesisLoaded() {
		return GenesisAlreadyLoaded
	}
	appState := appstate.NewAppState(p.db, p.bus).ForCheck()
	if p.config.GenesisConf != nil {
		appState.SetPredefinedState(p.config.GenesisConf.PredefinedState(), p.config.Oracle.TrustedReputation)
	}
	if err := appState.Commit(); err != nil {
		appState.Reset()
		return errors.Wrap(err, "failed to commit genesis")
	}
	if err := p.db.SetSync(genesisKey, []byte{0x1}); err != nil {
		return err
	}
	p.log.Info("Genesis loaded")
	return nil
}

// ApplyTx executes tx and persists its effects. A rejected transaction leaves
// the state untouched; its receipt is stored either way. The returned error is
// the rejection reason; a nil receipt means the node failed to persist the result.
func (p *Processor) ApplyTx(tx *types.Transaction) (*types.TxReceipt, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	started := time.Now()
	appState := appstate.NewAppState(p.db, p.bus).ForCheck()

	txErr := validation.ValidateTx(tx)
	if txErr == nil {
		txErr = p.applyTxOnState(appState, tx)
	}
	if txErr == nil {
		appState.AddEvent(&events.TxAppliedEvent{Type: tx.Type, Sender: tx.Sender, Query: tx.EventID})
		if err := appState.Commit(); err != nil {
			appState.Reset()
			p.log.Error("Failed to commit tx", "hash", tx.Hash().Hex(), "err", err)
			return nil, err
		}
	} else {
		appState.Reset()
		p.log.Debug("Tx rejected", "hash", tx.Hash().Hex(), "type", types.TxTypeName(tx.Type), "err", txErr)
		if p.bus != nil {
			p.bus.Publish(&events.TxAppliedEvent{Type: tx.Type, Sender: tx.Sender, Query: tx.EventID, Err: txErr})
		}
	}
	p.metrics.track(tx.Type, txErr, started)

	receipt := &types.TxReceipt{
		TxHash:    tx.Hash(),
		Type:      tx.Type,
		Sender:    tx.Sender,
		EventID:   tx.EventID,
		Timestamp: tx.Timestamp,
		Success:   txErr == nil,
	}
	if txErr != nil {
		receipt.ErrorKind = kinds.KindName(txErr)
		receipt.Error = txErr.Error()
	}
	if err := p.repo.WriteReceipt(receipt); err != nil {
		p.log.Error("Failed to write receipt", "hash", receipt.TxHash.Hex(), "err", err)
	}
	return receipt, txErr
}

// CheckTx executes tx against the committed state without persisting anything.
func (p *Processor) CheckTx(tx *types.Transaction) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if err := validation.ValidateTx(tx); err != nil {
		return err
	}
	appState := appstate.NewAppState(p.db, nil).ForCheck()
	defer appState.Reset()
	return p.applyTxOnState(appState, tx)
}

func (p *Processor) Receipt(hash common.Hash) *types.TxReceipt {
	return p.repo.ReadReceipt(hash)
}

func (p *Processor) applyTxOnState(appState *appstate.AppState, tx *types.Transaction) error {
	sender, now := tx.Sender, tx.Timestamp
	switch tx.Type {
	case types.RegisterParticipantTx:
		attachment := attachments.ParseRegisterAttachment(tx)
		return p.registry.RegisterParticipant(appState, sender, attachment.Category)
	case types.RegisterPartnerTx:
		attachment := attachments.ParseRegisterAttachment(tx)
		return p.registry.RegisterPartner(appState, sender, *tx.Target, attachment.Category)
	case types.RegisterSentinelTx:
		attachment := attachments.ParseRegisterAttachment(tx)
		return p.registry.RegisterSentinel(appState, sender, *tx.Target, attachment.Category)
	case types.DepositTx:
		return p.ledger.Deposit(appState, sender, tx.AmountOrZero())
	case types.WithdrawTx:
		return p.ledger.Withdraw(appState, sender, tx.AmountOrZero())
	case types.RequestDataTx:
		attachment := attachments.ParseRequestDataAttachment(tx)
		return p.oracle.RequestData(appState, sender, now, tx.EventID, attachment.Category, tx.AmountOrZero(), attachment.Format)
	case types.CommitTx:
		attachment := attachments.ParseCommitAttachment(tx)
		return p.oracle.Commit(appState, sender, now, tx.EventID, attachment.Hash, attachment.Hint)
	case types.RevealTx:
		attachment := attachments.ParseRevealAttachment(tx)
		return p.oracle.Reveal(appState, sender, now, tx.EventID, attachment.Value, attachment.Secret)
	case types.AdvancePhaseTx:
		return p.oracle.AdvancePhase(appState, now, tx.EventID)
	case types.TallyTx:
		return p.oracle.Tally(appState, now, tx.EventID)
	case types.ArbiterResolveTx:
		attachment := attachments.ParseResolveAttachment(tx)
		return p.oracle.ArbiterResolve(appState, sender, now, tx.EventID, attachment.Result)
	case types.EscalateTx:
		return p.oracle.Escalate(appState, sender, now, tx.EventID)
	case types.DaoResolveTx:
		attachment := attachments.ParseResolveAttachment(tx)
		return p.oracle.DaoResolve(appState, sender, now, tx.EventID, attachment.Result)
	case types.FileAppealTx:
		attachment := attachments.ParseAppealAttachment(tx)
		return p.oracle.FileAppeal(appState, sender, now, tx.EventID, attachment.Reason)
	case types.ResolveAppealTx:
		attachment := attachments.ParseResolveAppealAttachment(tx)
		return p.oracle.ResolveAppeal(appState, sender, now, tx.EventID, attachment.Uphold)
	case types.ClaimTx:
		return p.settlement.Claim(appState, now, tx.EventID, tx.TargetOrSender())
	case types.SlashLiarTx:
		return p.settlement.SlashLiar(appState, now, tx.EventID, tx.TargetOrSender())
	case types.SlashNonRevealerTx:
		return p.settlement.SlashNonRevealer(appState, now, tx.EventID, tx.TargetOrSender())
	case types.RecoverFromVoidTx:
		return p.settlement.RecoverFromVoid(appState, tx.EventID, tx.TargetOrSender())
	case types.ReclaimBountyTx:
		return p.settlement.ReclaimBounty(appState, tx.EventID, tx.TargetOrSender())
	case types.SweepBountyTx:
		return p.settlement.SweepBounty(appState, now, tx.EventID)
	case types.FundTx:
		return p.ledger.TransferWallet(appState, sender, *tx.Target, tx.AmountOrZero())
	}
	return validation.InvalidTxType
}
