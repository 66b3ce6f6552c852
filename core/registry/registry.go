package registry

import (
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/config"
	"github.com/truth-pool/truthpool-go/core/appstate"
	"github.com/truth-pool/truthpool-go/core/state"
	"github.com/truth-pool/truthpool-go/core/validation"
	"github.com/truth-pool/truthpool-go/events"
)

// Registry onboards participants and counts active non-sentinel participants per category.
type Registry struct {
	conf        *config.OracleConf
	authorities *config.AuthoritiesConf
}

func NewRegistry(conf *config.OracleConf, authorities *config.AuthoritiesConf) *Registry {
	return &Registry{
		conf:        conf,
		authorities: authorities,
	}
}

func (r *Registry) RegisterParticipant(appState *appstate.AppState, sender common.Address, category string) error {
	return r.register(appState, sender, category, state.Standard, 0)
}

func (r *Registry) RegisterPartner(appState *appstate.AppState, sender, partner common.Address, category string) error {
	if sender != r.authorities.Admin {
		return errors.Wrap(validation.Unauthorized, "only admin can register partners")
	}
	return r.register(appState, partner, category, state.Partner, r.conf.TrustedReputation)
}

func (r *Registry) RegisterSentinel(appState *appstate.AppState, sender, sentinel common.Address, category string) error {
	if sender != r.authorities.Admin {
		return errors.Wrap(validation.Unauthorized, "only admin can register sentinels")
	}
	if appState.State.SentinelCount() >= r.conf.MaxSentinels {
		return errors.Wrapf(validation.CapacityExceeded, "sentinel limit %v reached", r.conf.MaxSentinels)
	}
	return r.register(appState, sentinel, category, state.Sentinel, r.conf.TrustedReputation)
}

func (r *Registry) register(appState *appstate.AppState, addr common.Address, category string, role state.Role, reputation int64) error {
	if addr.IsZero() {
		return errors.Wrap(validation.InvalidArgument, "empty participant address")
	}
	if len(category) == 0 || len(category) > r.conf.MaxCategoryLength {
		return errors.Wrapf(validation.InvalidArgument, "category length should be in [1, %v]", r.conf.MaxCategoryLength)
	}
	if appState.State.GetParticipant(addr) != nil {
		return errors.Wrapf(validation.AlreadyProcessed, "participant %v is already registered", addr.Hex())
	}
	p := appState.State.CreateParticipant(addr, category, role, reputation)
	if role == state.Sentinel {
		appState.State.IncSentinelCount()
	} else {
		appState.State.AddActiveCount(category, 1)
	}
	appState.AddEvent(&events.ParticipantEvent{Participant: addr, Active: true, Reputation: p.Reputation()})
	return nil
}

// Deactivate bans a participant. Category counters only follow registrations.
func (r *Registry) Deactivate(appState *appstate.AppState, addr common.Address) {
	p := appState.State.GetParticipant(addr)
	if p == nil || !p.Active() {
		return
	}
	p.SetActive(false)
	appState.AddEvent(&events.ParticipantEvent{Participant: addr, Active: false, Reputation: p.Reputation()})
}

func (r *Registry) ActiveParticipantCount(appState *appstate.AppState, category string) uint64 {
	return appState.State.ActiveCount(category)
}

// MinResponses is max(MinQuorum, ceil(active / 2)).
func (r *Registry) MinResponses(appState *appstate.AppState, category string) uint64 {
	active := r.ActiveParticipantCount(appState, category)
	half := (active + 1) / 2
	if half > r.conf.MinQuorum {
		return half
	}
	return r.conf.MinQuorum
}
