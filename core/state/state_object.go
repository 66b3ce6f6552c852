package state

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/truth-pool/truthpool-go/common"
	"math/big"
)

// Account is a plain wallet balance.
type Account struct {
	_       struct{} `cbor:",toarray"`
	Balance *big.Int
}

// Participant is a bonded oracle participant, keyed by its address.
type Participant struct {
	_           struct{} `cbor:",toarray"`
	Category    string
	Role        Role
	Balance     *big.Int
	LockedBond  *big.Int
	PendingBond *big.Int
	Reputation  int64
	Active      bool
}

type CategoryStats struct {
	_           struct{} `cbor:",toarray"`
	ActiveCount uint64
}

type Global struct {
	_             struct{} `cbor:",toarray"`
	SentinelCount uint32
}

type VoteOption struct {
	_     struct{} `cbor:",toarray"`
	Value string
	Count uint32
}

type Query struct {
	_                   struct{} `cbor:",toarray"`
	EventID             string
	Category            string
	Requester           common.Address
	Bounty              *big.Int
	Status              QueryStatus
	Format              ResponseFormat
	MinResponses        uint64
	CommitDeadline      int64
	RevealDeadline      int64
	CommitCount         uint32
	RevealCount         uint32
	SentinelCommitCount uint32
	SentinelRevealCount uint32
	Accumulator         common.Hash
	DisputeLevel        uint8
	DisputeStartedAt    int64
	Result              *string
	WinningTicket       *uint32
	FinalizedAt         int64
	Tally               []VoteOption
}

// TallyCount returns the number of reveals of value.
func (q *Query) TallyCount(value string) uint32 {
	for _, o := range q.Tally {
		if o.Value == value {
			return o.Count
		}
	}
	return 0
}

type Commitment struct {
	_            struct{} `cbor:",toarray"`
	Hash         common.Hash
	Hint         []byte
	Value        *string
	Ticket       uint32
	Committed    bool
	Revealed     bool
	BondReleased bool
}

type Contribution struct {
	_      struct{} `cbor:",toarray"`
	Amount *big.Int
}

func (a *Account) ToBytes() ([]byte, error) {
	return cbor.Marshal(a)
}

func (a *Account) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, a)
}

func (p *Participant) ToBytes() ([]byte, error) {
	return cbor.Marshal(p)
}

func (p *Participant) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, p)
}

func (c *CategoryStats) ToBytes() ([]byte, error) {
	return cbor.Marshal(c)
}

func (c *CategoryStats) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, c)
}

func (g *Global) ToBytes() ([]byte, error) {
	return cbor.Marshal(g)
}

func (g *Global) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, g)
}

func (q *Query) ToBytes() ([]byte, error) {
	return cbor.Marshal(q)
}

func (q *Query) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, q)
}

func (c *Commitment) ToBytes() ([]byte, error) {
	return cbor.Marshal(c)
}

func (c *Commitment) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, c)
}

func (c *Contribution) ToBytes() ([]byte, error) {
	return cbor.Marshal(c)
}

func (c *Contribution) FromBytes(data []byte) error {
	return cbor.Unmarshal(data, c)
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// stateParticipant is a participant which is being modified.
type stateParticipant struct {
	address common.Address
	data    Participant

	onDirty func(addr common.Address)
}

func newParticipantObject(address common.Address, data Participant, onDirty func(addr common.Address)) *stateParticipant {
	data.Balance = bigOrZero(data.Balance)
	data.LockedBond = bigOrZero(data.LockedBond)
	data.PendingBond = bigOrZero(data.PendingBond)
	return &stateParticipant{
		address: address,
		data:    data,
		onDirty: onDirty,
	}
}

func (s *stateParticipant) touch() {
	if s.onDirty != nil {
		s.onDirty(s.address)
	}
}

func (s *stateParticipant) Address() common.Address { return s.address }
func (s *stateParticipant) Category() string { return s.data.Category }
func (s *stateParticipant) Role() Role { return s.data.Role }
func (s *stateParticipant) Balance() *big.Int { return new(big.Int).Set(s.data.Balance) }
func (s *stateParticipant) LockedBond() *big.Int { return new(big.Int).Set(s.data.LockedBond) }
func (s *stateParticipant) PendingBond() *big.Int { return new(big.Int).Set(s.data.PendingBond) }
func (s *stateParticipant) Reputation() int64 { return s.data.Reputation }
func (s *stateParticipant) Active() bool { return s.data.Active }

func (s *stateParticipant) SetBalance(amount *big.Int) {
	s.data.Balance = new(big.Int).Set(amount)
	s.touch()
}

func (s *stateParticipant) SetLockedBond(amount *big.Int) {
	s.data.LockedBond = new(big.Int).Set(amount)
	s.touch()
}

func (s *stateParticipant) SetPendingBond(amount *big.Int) {
	s.data.PendingBond = new(big.Int).Set(amount)
	s.touch()
}

func (s *stateParticipant) AddReputation(delta int64) {
	s.data.Reputation += delta
	s.touch()
}

func (s *stateParticipant) SetActive(active bool) {
	s.data.Active = active
	s.touch()
}

// Data returns a copy of the participant.
func (s *stateParticipant) Data() Participant {
	data := s.data
	data.Balance = s.Balance()
	data.LockedBond = s.LockedBond()
	data.PendingBond = s.PendingBond()
	return data
}

type stateAccount struct {
	address common.Address
	data    Account

	onDirty func(addr common.Address)
}

func newAccountObject(address common.Address, data Account, onDirty func(addr common.Address)) *stateAccount {
	data.Balance = bigOrZero(data.Balance)
	return &stateAccount{
		address: address,
		data:    data,
		onDirty: onDirty,
	}
}

func (s *stateAccount) touch() {
	if s.onDirty != nil {
		s.onDirty(s.address)
	}
}

func (s *stateAccount) Balance() *big.Int {
	return new(big.Int).Set(s.data.Balance)
}

func (s *stateAccount) SetBalance(amount *big.Int) {
	s.data.Balance = new(big.Int).Set(amount)
	s.touch()
}

// stateQuery owns the tally and accumulator of one query.
type stateQuery struct {
	eventID string
	data    Query

	onDirty func(eventID string)
}

func newQueryObject(eventID string, data Query, onDirty func(eventID string)) *stateQuery {
	data.EventID = eventID
	data.Bounty = bigOrZero(data.Bounty)
	return &stateQuery{
		eventID: eventID,
		data:    data,
		onDirty: onDirty,
	}
}

// Data exposes the live query; callers must call Touch after mutating it.
func (s *stateQuery) Data() *Query {
	return &s.data
}

func (s *stateQuery) Touch() {
	if s.onDirty != nil {
		s.onDirty(s.eventID)
	}
}

type pairKey struct {
	eventID string
	addr    common.Address
}

type stateCommitment struct {
	key  pairKey
	data Commitment

	onDirty func(key pairKey)
}

func (s *stateCommitment) Data() *Commitment {
	return &s.data
}

func (s *stateCommitment) Touch() {
	if s.onDirty != nil {
		s.onDirty(s.key)
	}
}

type stateContribution struct {
	key  pairKey
	data Contribution

	onDirty func(key pairKey)
}

func (s *stateContribution) Amount() *big.Int {
	return new(big.Int).Set(bigOrZero(s.data.Amount))
}

func (s *stateContribution) SetAmount(amount *big.Int) {
	s.data.Amount = new(big.Int).Set(amount)
	if s.onDirty != nil {
		s.onDirty(s.key)
	}
}
