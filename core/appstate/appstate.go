package appstate

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common/eventbus"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/database"
	dbm "github.com/tendermint/tm-db"
)

// AppState is the state a single transaction runs against. Events raised while
// applying it are buffered and published only after a successful commit.
type AppState struct {
	State *state.StateDB

	permanent dbm.DB
	overlay   *database.BackedMemDb
	bus       eventbus.Bus
	events    []eventbus.Event
}

// NewAppState gives a read view over db. It must not be committed.
func NewAppState(db dbm.DB, bus eventbus.Bus) *AppState {
	return &AppState{
		State:     state.NewLazy(db),
		permanent: db,
		bus:       bus,
	}
}

// ForCheck returns a state whose writes stay in memory until Commit.
func (s *AppState) ForCheck() *AppState {
	overlay := database.NewBackedMemDb(s.permanent)
	return &AppState{
		State:     state.NewLazy(overlay),
		permanent: s.permanent,
		overlay:   overlay,
		bus:       s.bus,
	}
}

func (s *AppState) AddEvent(e eventbus.Event) {
	s.events = append(s.events, e)
}

func (s *AppState) Events() []eventbus.Event {
	return s.events
}

// Precommit writes dirty objects into the overlay without touching the permanent database.
func (s *AppState) Precommit() error {
	if s.overlay == nil {
		return errors.New("readonly app state can't be committed")
	}
	return s.State.Commit()
}

// Commit flushes every change of the transaction to the permanent database in
// one batch and publishes the buffered events.
func (s *AppState) Commit() error {
	if err := s.Precommit(); err != nil {
		return err
	}
	if err := s.overlay.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush state")
	}
	events := s.events
	s.events = nil
	if s.bus != nil {
		for _, e := range events {
			s.bus.Publish(e)
		}
	}
	return nil
}

// Reset drops every uncommitted change and buffered event.
func (s *AppState) Reset() {
	s.State.Clear()
	if s.overlay != nil {
		s.overlay.Discard()
	}
	s.events = nil
}

func (s *AppState) SetPredefinedState(predefined *state.PredefinedState, trustedReputation int64) {
	s.State.SetPredefinedState(predefined, trustedReputation)
}
