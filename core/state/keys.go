package state

import (
	"github.com/truth-pool/truthpool-go/common"
)

var (
	accountPrefix      = []byte{0x1}
	participantPrefix  = []byte{0x2}
	categoryPrefix     = []byte{0x3}
	globalKey          = []byte{0x4}
	queryPrefix        = []byte{0x5}
	commitmentPrefix   = []byte{0x6}
	contributionPrefix = []byte{0x7}
)

var StateDbKeys = &stateDbKeys{}

type stateDbKeys struct {
}

func (s *stateDbKeys) AccountKey(addr common.Address) []byte {
	return append(copyPrefix(accountPrefix), addr[:]...)
}

func (s *stateDbKeys) ParticipantKey(addr common.Address) []byte {
	return append(copyPrefix(participantPrefix), addr[:]...)
}

func (s *stateDbKeys) CategoryKey(category string) []byte {
	return append(copyPrefix(categoryPrefix), category...)
}

func (s *stateDbKeys) GlobalKey() []byte {
	return globalKey
}

func (s *stateDbKeys) QueryKey(eventID string) []byte {
	return append(copyPrefix(queryPrefix), eventID...)
}

// CommitmentPrefix covers every commitment of one query.
func (s *stateDbKeys) CommitmentPrefix(eventID string) []byte {
	return append(copyPrefix(commitmentPrefix), common.LengthPrefixed([]byte(eventID))...)
}

func (s *stateDbKeys) CommitmentKey(eventID string, addr common.Address) []byte {
	return append(s.CommitmentPrefix(eventID), addr[:]...)
}

func (s *stateDbKeys) ContributionPrefix(eventID string) []byte {
	return append(copyPrefix(contributionPrefix), common.LengthPrefixed([]byte(eventID))...)
}

func (s *stateDbKeys) ContributionKey(eventID string, addr common.Address) []byte {
	return append(s.ContributionPrefix(eventID), addr[:]...)
}

func copyPrefix(prefix []byte) []byte {
	return append(make([]byte, 0, len(prefix)+common.AddressLength+34), prefix...)
}
