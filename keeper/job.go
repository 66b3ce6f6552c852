package keeper

import (
	"fmt"
	mapset "github.com/deckarep/golang-set"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/log"
	"io/ioutil"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	Folder = "deferred-txs"
)

// Chain is the part of the transaction processor the keeper needs.
type Chain interface {
	ReadState() *appstate.AppState
	ApplyTx(tx *types.Transaction) (*types.TxReceipt, error)
}

// Job submits the time-driven transitions nobody else is obliged to send:
// phase advances, tallies, escalations, non-revealer slashes, void recoveries
// and sweeps of bounties without a ticket holder.
// Rejected transitions are kept on disk and retried with backoff.
type Job struct {
	chain   Chain
	conf    *config.KeeperConf
	oracle  *config.OracleConf
	datadir string

	txs   *DeferredTxs
	mutex sync.Mutex
	log   log.ThrottlingLogger
}

type Report struct {
	Submitted int
	Failed    int
	Deferred  int
}

func NewJob(chain Chain, cfg *config.Config) (*Job, error) {
	job := &Job{
		chain:   chain,
		conf:    cfg.Keeper,
		oracle:  cfg.Oracle,
		datadir: cfg.DataDir,
		txs:     new(DeferredTxs),
		log:     log.NewThrottlingLogger(log.New("component", "keeper")),
	}
	if job.datadir == "" {
		return job, nil
	}

	file, err := job.openFile()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	data, err := ioutil.ReadAll(file)
	if err != nil {
		return nil, err
	}
	if err := job.txs.FromBytes(data); err != nil {
		return nil, err
	}
	log.Info("Deferred txs loaded", "cnt", len(job.txs.Txs))
	return job, nil
}

// Run submits every transition due at now.
func (j *Job) Run(now int64) Report {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	var report Report
	seen := mapset.NewSet()
	newTxs := new(DeferredTxs)
	changed := false

	send := func(tx *DeferredTx) {
		seen.Add(tx.key())
		err := j.sendTx(tx, now)
		if err == nil {
			report.Submitted++
			changed = changed || tx.Tries > 0
			return
		}
		report.Failed++
		j.log.Warn("Keeper transition rejected", append(logCtx(tx), "err", err)...)
		if !tryLater(err) {
			changed = changed || tx.Tries > 0
			return
		}
		tx.Tries++
		if tx.Tries > j.conf.MaxTries {
			log.Info("Dropping deferred tx", logCtx(tx)...)
			changed = true
			return
		}
		tx.RetryAt = calculateRetryAt(now, tx.Tries, j.conf.Backoff)
		newTxs.Txs = append(newTxs.Txs, tx)
		changed = true
	}

	for _, tx := range j.txs.Txs {
		if tx.RetryAt <= now {
			send(tx)
		} else {
			seen.Add(tx.key())
			newTxs.Txs = append(newTxs.Txs, tx)
		}
	}
	for _, tx := range j.dueTransitions(now) {
		if seen.Contains(tx.key()) {
			continue
		}
		send(tx)
	}

	j.txs = newTxs
	report.Deferred = len(newTxs.Txs)
	if changed {
		if err := j.persist(); err != nil {
			log.Warn("cannot persist deferred txs", "err", err)
		}
	}
	return report
}

// dueTransitions scans every query and lists the transitions allowed at now.
func (j *Job) dueTransitions(now int64) []*DeferredTx {
	appState := j.chain.ReadState()
	escalationDelay := int64(j.oracle.EscalationDelay.Seconds())
	settlementWindow := int64(j.oracle.SettlementWindow.Seconds())
	var res []*DeferredTx
	add := func(txType types.TxType, eventID string, target *common.Address) {
		res = append(res, &DeferredTx{Type: txType, EventID: eventID, Target: target})
	}

	var queries []state.Query
	if err := appState.State.IterateQueries(func(q state.Query) bool {
		queries = append(queries, q)
		return false
	}); err != nil {
		j.log.Error("Cannot read queries", "err", err)
		return nil
	}

	for _, q := range queries {
		switch q.Status {
		case state.CommitPhase:
			if now > q.CommitDeadline {
				add(types.AdvancePhaseTx, q.EventID, nil)
				if now > q.RevealDeadline {
					add(types.TallyTx, q.EventID, nil)
				}
			}
		case state.RevealPhase:
			if now > q.RevealDeadline {
				add(types.TallyTx, q.EventID, nil)
			}
		case state.InDispute:
			if q.DisputeLevel == 1 && now > q.DisputeStartedAt+escalationDelay {
				add(types.EscalateTx, q.EventID, nil)
			}
		case state.Finalized:
			if q.WinningTicket == nil && q.Bounty.Sign() > 0 && now > q.FinalizedAt+settlementWindow {
				add(types.SweepBountyTx, q.EventID, nil)
			}
		}

		if q.Status == state.Voided {
			j.iterateUnreleased(appState, q.EventID, func(addr common.Address, c state.Commitment) {
				add(types.RecoverFromVoidTx, q.EventID, &addr)
			})
		} else if q.Status != state.CommitPhase && now > q.RevealDeadline {
			j.iterateUnreleased(appState, q.EventID, func(addr common.Address, c state.Commitment) {
				if c.Committed && !c.Revealed {
					add(types.SlashNonRevealerTx, q.EventID, &addr)
				}
			})
		}
	}
	return res
}

func (j *Job) iterateUnreleased(appState *appstate.AppState, eventID string, cb func(addr common.Address, c state.Commitment)) {
	err := appState.State.IterateCommitments(eventID, func(addr common.Address, c state.Commitment) bool {
		if !c.BondReleased {
			cb(addr, c)
		}
		return false
	})
	if err != nil {
		j.log.Error("Cannot read commitments", "query", eventID, "err", err)
	}
}

func (j *Job) sendTx(dtx *DeferredTx, now int64) error {
	tx := &types.Transaction{
		Type:      dtx.Type,
		Sender:    j.conf.Sender,
		Timestamp: now,
		EventID:   dtx.EventID,
		Target:    dtx.Target,
	}
	log.Debug("Sending keeper tx", logCtx(dtx)...)
	_, err := j.chain.ApplyTx(tx)
	return err
}

// tryLater reports whether a rejected transition may succeed on a later run.
// Errors without a known kind come from the node itself.
func tryLater(err error) bool {
	kind := validation.Kind(err)
	return kind == nil || kind == validation.PhaseViolation
}

func (j *Job) Deferred() []*DeferredTx {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return append([]*DeferredTx(nil), j.txs.Txs...)
}

func (j *Job) persist() error {
	if j.datadir == "" {
		return nil
	}
	file, err := j.openFile()
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := j.txs.ToBytes()
	if err != nil {
		return err
	}
	if err := file.Truncate(0); err != nil {
		return err
	}
	if _, err := file.WriteAt(data, 0); err != nil {
		return err
	}
	return nil
}

func (j *Job) openFile() (file *os.File, err error) {
	newpath := filepath.Join(j.datadir, Folder)
	if err := os.MkdirAll(newpath, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "cannot create deferred txs folder")
	}
	filePath := filepath.Join(newpath, "txs")
	f, err := os.OpenFile(filePath, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func logCtx(tx *DeferredTx) []interface{} {
	res := []interface{}{"type", types.TxTypeName(tx.Type), "query", tx.EventID, "tries", tx.Tries}
	if tx.Target != nil {
		res = append(res, "target", tx.Target.Hex())
	}
	return res
}

type DeferredTx struct {
	Type    types.TxType
	EventID string
	Target  *common.Address `cbor:",omitempty"`
	RetryAt int64
	Tries   int
}

func (d *DeferredTx) key() string {
	target := ""
	if d.Target != nil {
		target = d.Target.Hex()
	}
	return fmt.Sprintf("%v/%v/%v", d.Type, d.EventID, target)
}

type DeferredTxs struct {
	Txs []*DeferredTx
}

func (d *DeferredTxs) ToBytes() ([]byte, error) {
	return cbor.Marshal(d)
}

func (d *DeferredTxs) FromBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return cbor.Unmarshal(data, d)
}

func calculateRetryAt(now int64, try int, backoff time.Duration) int64 {
	mul := int64(1)
	switch try {
	case 1:
		mul = 1
	case 2:
		mul = 2
	case 3:
		mul = 4
	default:
		mul = 8
	}
	return now + mul*int64(backoff.Seconds())
}
