package blockchain

import (
	"github.com/rcrowley/go-metrics"
	"github.com/truth-pool/truthpool-go/blockchain/types"
	"github.com/truth-pool/truthpool-go/core/validation"
	"time"
)

type txMetrics struct {
	registry metrics.Registry
	applied  metrics.Counter
	failed   metrics.Counter
	duration metrics.Timer
}

func newTxMetrics(registry metrics.Registry) *txMetrics {
	if registry == nil {
		registry = metrics.DefaultRegistry
	}
	return &txMetrics{
		registry: registry,
		applied:  metrics.GetOrRegisterCounter("tx_applied.total", registry),
		failed:   metrics.GetOrRegisterCounter("tx_failed.total", registry),
		duration: metrics.GetOrRegisterTimer("tx_apply.duration", registry),
	}
}

func (m *txMetrics) track(txType types.TxType, err error, started time.Time) {
	m.duration.UpdateSince(started)
	name := types.TxTypeName(txType)
	if err == nil {
		m.applied.Inc(1)
		metrics.GetOrRegisterCounter("tx_applied."+name, m.registry).Inc(1)
		return
	}
	m.failed.Inc(1)
	metrics.GetOrRegisterCounter("tx_failed."+name, m.registry).Inc(1)
	metrics.GetOrRegisterCounter("tx_error."+validation.KindName(err), m.registry).Inc(1)
}
