package state

import (
	"bytes"
	"github.com/pkg/errors"
	"github.com/truth-pool/truthpool-go/common"
	"github.com/truth-pool/truthpool-go/log"
	dbm "github.com/tendermint/tm-db"
	"math/big"
	"sort"
	"sync"
)

// StateDB caches the entities touched by a transaction and writes the dirty
// ones back to its database on Commit.
type StateDB struct {
	db dbm.DB

	// This map holds 'live' objects, which will get modified while processing a transaction.
	stateAccounts          map[common.Address]*stateAccount
	stateAccountsDirty     map[common.Address]struct{}
	stateParticipants      map[common.Address]*stateParticipant
	stateParticipantsDirty map[common.Address]struct{}

	categories      map[string]*CategoryStats
	categoriesDirty map[string]struct{}

	global      *Global
	globalDirty bool

	stateQueries      map[string]*stateQuery
	stateQueriesDirty map[string]struct{}

	stateCommitments        map[pairKey]*stateCommitment
	stateCommitmentsDirty   map[pairKey]struct{}
	stateContributions      map[pairKey]*stateContribution
	stateContributionsDirty map[pairKey]struct{}

	log  log.Logger
	lock sync.Mutex
}

func NewLazy(db dbm.DB) *StateDB {
	s := &StateDB{
		db:  db,
		log: log.New("component", "state"),
	}
	s.Clear()
	return s
}

// Clear drops every cached object, including uncommitted changes.
func (s *StateDB) Clear() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.stateAccounts = make(map[common.Address]*stateAccount)
	s.stateAccountsDirty = make(map[common.Address]struct{})
	s.stateParticipants = make(map[common.Address]*stateParticipant)
	s.stateParticipantsDirty = make(map[common.Address]struct{})
	s.categories = make(map[string]*CategoryStats)
	s.categoriesDirty = make(map[string]struct{})
	s.global = nil
	s.globalDirty = false
	s.stateQueries = make(map[string]*stateQuery)
	s.stateQueriesDirty = make(map[string]struct{})
	s.stateCommitments = make(map[pairKey]*stateCommitment)
	s.stateCommitmentsDirty = make(map[pairKey]struct{})
	s.stateContributions = make(map[pairKey]*stateContribution)
	s.stateContributionsDirty = make(map[pairKey]struct{})
}

func (s *StateDB) Database() dbm.DB {
	return s.db
}

func (s *StateDB) load(key []byte, target interface{ FromBytes([]byte) error }) bool {
	enc, err := s.db.Get(key)
	if err != nil {
		s.log.Error("Failed to read state object", "key", key, "err", err)
		return false
	}
	if len(enc) == 0 {
		return false
	}
	if err := target.FromBytes(enc); err != nil {
		s.log.Error("Failed to decode state object", "key", key, "err", err)
		return false
	}
	return true
}

// Wallet balances

func (s *StateDB) getStateAccount(addr common.Address) *stateAccount {
	s.lock.Lock()
	if obj := s.stateAccounts[addr]; obj != nil {
		s.lock.Unlock()
		return obj
	}
	s.lock.Unlock()
	var data Account
	if !s.load(StateDbKeys.AccountKey(addr), &data) {
		data = Account{}
	}
	obj := newAccountObject(addr, data, s.markAccountDirty)
	s.lock.Lock()
	s.stateAccounts[addr] = obj
	s.lock.Unlock()
	return obj
}

func (s *StateDB) markAccountDirty(addr common.Address) {
	s.lock.Lock()
	s.stateAccountsDirty[addr] = struct{}{}
	s.lock.Unlock()
}

func (s *StateDB) GetBalance(addr common.Address) *big.Int {
	return s.getStateAccount(addr).Balance()
}

func (s *StateDB) SetBalance(addr common.Address, amount *big.Int) {
	s.getStateAccount(addr).SetBalance(amount)
}

func (s *StateDB) AddBalance(addr common.Address, amount *big.Int) {
	obj := s.getStateAccount(addr)
	obj.SetBalance(new(big.Int).Add(obj.Balance(), amount))
}

// SubBalance fails without touching the account when the balance does not cover amount.
func (s *StateDB) SubBalance(addr common.Address, amount *big.Int) error {
	obj := s.getStateAccount(addr)
	balance := obj.Balance()
	if balance.Cmp(amount) < 0 {
		return errors.Errorf("balance %v is less than %v", balance, amount)
	}
	obj.SetBalance(balance.Sub(balance, amount))
	return nil
}

// Participants

// GetParticipant returns nil for unregistered addresses.
func (s *StateDB) GetParticipant(addr common.Address) *stateParticipant {
	s.lock.Lock()
	if obj := s.stateParticipants[addr]; obj != nil {
		s.lock.Unlock()
		return obj
	}
	s.lock.Unlock()
	var data Participant
	if !s.load(StateDbKeys.ParticipantKey(addr), &data) {
		return nil
	}
	obj := newParticipantObject(addr, data, s.markParticipantDirty)
	s.lock.Lock()
	s.stateParticipants[addr] = obj
	s.lock.Unlock()
	return obj
}

func (s *StateDB) CreateParticipant(addr common.Address, category string, role Role, reputation int64) *stateParticipant {
	obj := newParticipantObject(addr, Participant{
		Category:   category,
		Role:       role,
		Reputation: reputation,
		Active:     true,
	}, s.markParticipantDirty)
	s.lock.Lock()
	s.stateParticipants[addr] = obj
	s.lock.Unlock()
	obj.touch()
	return obj
}

func (s *StateDB) markParticipantDirty(addr common.Address) {
	s.lock.Lock()
	s.stateParticipantsDirty[addr] = struct{}{}
	s.lock.Unlock()
}

// Categories and global counters

func (s *StateDB) getCategory(category string) *CategoryStats {
	s.lock.Lock()
	if stats := s.categories[category]; stats != nil {
		s.lock.Unlock()
		return stats
	}
	s.lock.Unlock()
	stats := &CategoryStats{}
	if !s.load(StateDbKeys.CategoryKey(category), stats) {
		stats = &CategoryStats{}
	}
	s.lock.Lock()
	s.categories[category] = stats
	s.lock.Unlock()
	return stats
}

func (s *StateDB) ActiveCount(category string) uint64 {
	return s.getCategory(category).ActiveCount
}

// AddActiveCount changes the counter of a category, never going below zero.
func (s *StateDB) AddActiveCount(category string, delta int64) {
	stats := s.getCategory(category)
	if delta < 0 && uint64(-delta) > stats.ActiveCount {
		stats.ActiveCount = 0
	} else {
		stats.ActiveCount = uint64(int64(stats.ActiveCount) + delta)
	}
	s.lock.Lock()
	s.categoriesDirty[category] = struct{}{}
	s.lock.Unlock()
}

func (s *StateDB) getGlobal() *Global {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.global == nil {
		s.global = &Global{}
		if !s.load(StateDbKeys.GlobalKey(), s.global) {
			s.global = &Global{}
		}
	}
	return s.global
}

func (s *StateDB) SentinelCount() uint32 {
	return s.getGlobal().SentinelCount
}

func (s *StateDB) IncSentinelCount() {
	g := s.getGlobal()
	s.lock.Lock()
	g.SentinelCount++
	s.globalDirty = true
	s.lock.Unlock()
}

// Queries

// GetQuery returns nil when no query with eventID was ever funded.
func (s *StateDB) GetQuery(eventID string) *stateQuery {
	s.lock.Lock()
	if obj := s.stateQueries[eventID]; obj != nil {
		s.lock.Unlock()
		return obj
	}
	s.lock.Unlock()
	var data Query
	if !s.load(StateDbKeys.QueryKey(eventID), &data) {
		return nil
	}
	obj := newQueryObject(eventID, data, s.markQueryDirty)
	s.lock.Lock()
	s.stateQueries[eventID] = obj
	s.lock.Unlock()
	return obj
}

func (s *StateDB) CreateQuery(eventID string) *stateQuery {
	obj := newQueryObject(eventID, Query{}, s.markQueryDirty)
	s.lock.Lock()
	s.stateQueries[eventID] = obj
	s.lock.Unlock()
	obj.Touch()
	return obj
}

func (s *StateDB) markQueryDirty(eventID string) {
	s.lock.Lock()
	s.stateQueriesDirty[eventID] = struct{}{}
	s.lock.Unlock()
}

// Commitments and contributions

// GetCommitment returns nil when addr never committed to the query.
func (s *StateDB) GetCommitment(eventID string, addr common.Address) *stateCommitment {
	key := pairKey{eventID, addr}
	s.lock.Lock()
	if obj := s.stateCommitments[key]; obj != nil {
		s.lock.Unlock()
		return obj
	}
	s.lock.Unlock()
	var data Commitment
	if !s.load(StateDbKeys.CommitmentKey(eventID, addr), &data) {
		return nil
	}
	obj := &stateCommitment{key: key, data: data, onDirty: s.markCommitmentDirty}
	s.lock.Lock()
	s.stateCommitments[key] = obj
	s.lock.Unlock()
	return obj
}

func (s *StateDB) CreateCommitment(eventID string, addr common.Address) *stateCommitment {
	key := pairKey{eventID, addr}
	obj := &stateCommitment{key: key, onDirty: s.markCommitmentDirty}
	s.lock.Lock()
	s.stateCommitments[key] = obj
	s.lock.Unlock()
	obj.Touch()
	return obj
}

func (s *StateDB) markCommitmentDirty(key pairKey) {
	s.lock.Lock()
	s.stateCommitmentsDirty[key] = struct{}{}
	s.lock.Unlock()
}

func (s *StateDB) GetOrNewContribution(eventID string, addr common.Address) *stateContribution {
	key := pairKey{eventID, addr}
	s.lock.Lock()
	if obj := s.stateContributions[key]; obj != nil {
		s.lock.Unlock()
		return obj
	}
	s.lock.Unlock()
	var data Contribution
	if !s.load(StateDbKeys.ContributionKey(eventID, addr), &data) {
		data = Contribution{}
	}
	obj := &stateContribution{key: key, data: data, onDirty: s.markContributionDirty}
	s.lock.Lock()
	s.stateContributions[key] = obj
	s.lock.Unlock()
	return obj
}

func (s *StateDB) markContributionDirty(key pairKey) {
	s.lock.Lock()
	s.stateContributionsDirty[key] = struct{}{}
	s.lock.Unlock()
}

// Iteration

// prefixSuffixes collects the key suffixes stored under prefix. The iterator is
// closed before returning so callers may write to the database.
func (s *StateDB) prefixSuffixes(prefix []byte) ([][]byte, error) {
	it, err := dbm.IteratePrefix(s.db, prefix)
	if err != nil {
		return nil, err
	}
	var suffixes [][]byte
	for ; it.Valid(); it.Next() {
		key := it.Key()
		suffix := make([]byte, len(key)-len(prefix))
		copy(suffix, key[len(prefix):])
		suffixes = append(suffixes, suffix)
	}
	if err := it.Close(); err != nil {
		return nil, err
	}
	return suffixes, nil
}

// IterateQueries visits every query in event id order until cb returns true.
func (s *StateDB) IterateQueries(cb func(q Query) (stop bool)) error {
	suffixes, err := s.prefixSuffixes(queryPrefix)
	if err != nil {
		return errors.Wrap(err, "failed to iterate queries")
	}
	ids := make(map[string]struct{}, len(suffixes))
	for _, suffix := range suffixes {
		ids[string(suffix)] = struct{}{}
	}
	s.lock.Lock()
	for id := range s.stateQueries {
		ids[id] = struct{}{}
	}
	s.lock.Unlock()
	sorted := make([]string, 0, len(ids))
	for id := range ids {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)
	for _, id := range sorted {
		if obj := s.GetQuery(id); obj != nil && cb(*obj.Data()) {
			return nil
		}
	}
	return nil
}

// IterateCommitments visits the commitments of one query in address order until cb returns true.
func (s *StateDB) IterateCommitments(eventID string, cb func(addr common.Address, c Commitment) (stop bool)) error {
	suffixes, err := s.prefixSuffixes(StateDbKeys.CommitmentPrefix(eventID))
	if err != nil {
		return errors.Wrapf(err, "failed to iterate commitments of %v", eventID)
	}
	addrs := make(map[common.Address]struct{}, len(suffixes))
	for _, suffix := range suffixes {
		if len(suffix) == common.AddressLength {
			addrs[common.BytesToAddress(suffix)] = struct{}{}
		}
	}
	s.lock.Lock()
	for key := range s.stateCommitments {
		if key.eventID == eventID {
			addrs[key.addr] = struct{}{}
		}
	}
	s.lock.Unlock()
	for _, addr := range sortedAddresses(addrs) {
		if obj := s.GetCommitment(eventID, addr); obj != nil && cb(addr, *obj.Data()) {
			return nil
		}
	}
	return nil
}

// IterateParticipants visits registered participants in address order until cb returns true.
func (s *StateDB) IterateParticipants(cb func(addr common.Address, p Participant) (stop bool)) error {
	suffixes, err := s.prefixSuffixes(participantPrefix)
	if err != nil {
		return errors.Wrap(err, "failed to iterate participants")
	}
	addrs := make(map[common.Address]struct{}, len(suffixes))
	for _, suffix := range suffixes {
		addrs[common.BytesToAddress(suffix)] = struct{}{}
	}
	s.lock.Lock()
	for addr := range s.stateParticipants {
		addrs[addr] = struct{}{}
	}
	s.lock.Unlock()
	for _, addr := range sortedAddresses(addrs) {
		if obj := s.GetParticipant(addr); obj != nil && cb(addr, obj.Data()) {
			return nil
		}
	}
	return nil
}

// IterateAccounts visits wallets in address order until cb returns true.
func (s *StateDB) IterateAccounts(cb func(addr common.Address, balance *big.Int) (stop bool)) error {
	suffixes, err := s.prefixSuffixes(accountPrefix)
	if err != nil {
		return errors.Wrap(err, "failed to iterate accounts")
	}
	addrs := make(map[common.Address]struct{}, len(suffixes))
	for _, suffix := range suffixes {
		addrs[common.BytesToAddress(suffix)] = struct{}{}
	}
	s.lock.Lock()
	for addr := range s.stateAccounts {
		addrs[addr] = struct{}{}
	}
	s.lock.Unlock()
	for _, addr := range sortedAddresses(addrs) {
		if cb(addr, s.GetBalance(addr)) {
			return nil
		}
	}
	return nil
}

func sortedAddresses(set map[common.Address]struct{}) []common.Address {
	res := make([]common.Address, 0, len(set))
	for addr := range set {
		res = append(res, addr)
	}
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i][:], res[j][:]) < 0
	})
	return res
}

type encodable interface {
	ToBytes() ([]byte, error)
}

// Commit writes every dirty object to the database in one batch and clears the dirty sets.
func (s *StateDB) Commit() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	batch := s.db.NewBatch()
	defer batch.Close()

	put := func(key []byte, obj encodable) error {
		data, err := obj.ToBytes()
		if err != nil {
			return errors.Wrapf(err, "failed to encode state object %x", key)
		}
		return batch.Set(key, data)
	}

	for addr := range s.stateAccountsDirty {
		if err := put(StateDbKeys.AccountKey(addr), &s.stateAccounts[addr].data); err != nil {
			return err
		}
	}
	for addr := range s.stateParticipantsDirty {
		if err := put(StateDbKeys.ParticipantKey(addr), &s.stateParticipants[addr].data); err != nil {
			return err
		}
	}
	for category := range s.categoriesDirty {
		if err := put(StateDbKeys.CategoryKey(category), s.categories[category]); err != nil {
			return err
		}
	}
	if s.globalDirty {
		if err := put(StateDbKeys.GlobalKey(), s.global); err != nil {
			return err
		}
	}
	for id := range s.stateQueriesDirty {
		if err := put(StateDbKeys.QueryKey(id), &s.stateQueries[id].data); err != nil {
			return err
		}
	}
	for key := range s.stateCommitmentsDirty {
		if err := put(StateDbKeys.CommitmentKey(key.eventID, key.addr), &s.stateCommitments[key].data); err != nil {
			return err
		}
	}
	for key := range s.stateContributionsDirty {
		if err := put(StateDbKeys.ContributionKey(key.eventID, key.addr), &s.stateContributions[key].data); err != nil {
			return err
		}
	}
	if err := batch.WriteSync(); err != nil {
		return errors.Wrap(err, "failed to write state batch")
	}

	s.stateAccountsDirty = make(map[common.Address]struct{})
	s.stateParticipantsDirty = make(map[common.Address]struct{})
	s.categoriesDirty = make(map[string]struct{})
	s.globalDirty = false
	s.stateQueriesDirty = make(map[string]struct{})
	s.stateCommitmentsDirty = make(map[pairKey]struct{})
	s.stateContributionsDirty = make(map[pairKey]struct{})
	return nil
}

// SetPredefinedState writes genesis wallets and participants. Partners and sentinels
// start with trustedReputation.
func (s *StateDB) SetPredefinedState(predefined *PredefinedState, trustedReputation int64) {
	for _, acc := range predefined.Accounts {
		s.SetBalance(acc.Address, bigOrZero(acc.Balance))
	}
	for _, p := range predefined.Participants {
		if s.GetParticipant(p.Address) != nil {
			continue
		}
		var reputation int64
		if p.Role != Standard {
			reputation = trustedReputation
		}
		obj := s.CreateParticipant(p.Address, p.Category, p.Role, reputation)
		obj.SetBalance(bigOrZero(p.Balance))
		if p.Role == Sentinel {
			s.IncSentinelCount()
		} else {
			s.AddActiveCount(p.Category, 1)
		}
	}
}
