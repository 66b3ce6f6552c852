package oracle

import (
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/state"
)

// Outcome is what the prediction market layer may read from a query.
type Outcome struct {
	Status state.QueryStatus
	Result *string
}

// Settled reports whether markets may redeem against the result.
func (o Outcome) Settled() bool {
	return o.Status == state.Finalized && o.Result != nil
}

type OutcomeReader interface {
	Outcome(eventID string) (Outcome, error)
}

// QueryOutcome reads the outcome of a query. The result is only exposed once the query is finalized.
func QueryOutcome(appState *appstate.AppState, eventID string) (Outcome, error) {
	obj := appState.State.GetQuery(eventID)
	if obj == nil {
		return Outcome{Status: state.Uninitialized}, nil
	}
	q := obj.Data()
	outcome := Outcome{Status: q.Status}
	if q.Status == state.Finalized && q.Result != nil {
		result := *q.Result
		outcome.Result = &result
	}
	return outcome, nil
}
