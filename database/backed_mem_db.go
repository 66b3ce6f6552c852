package database

import (
	"bytes"
	"github.com/deckarep/golang-set"
	"github.com/pkg/errors"
	dbm "github.com/tendermint/tm-db"
	"sync"
)

// BackedMemDb buffers writes in memory on top of a permanent database.
// Reads fall through to the permanent database for keys which were not touched.
// Nothing reaches the permanent database until Flush is called.
type BackedMemDb struct {
	inner     dbm.DB
	permanent dbm.DB
	touched   mapset.Set
	mtx       sync.Mutex
}

func NewBackedMemDb(permanent dbm.DB) *BackedMemDb {
	return &BackedMemDb{
		inner:     dbm.NewMemDB(),
		permanent: permanent,
		touched:   mapset.NewSet(),
	}
}

func (db *BackedMemDb) Get(key []byte) ([]byte, error) {
	if db.touched.Contains(string(key)) {
		return db.inner.Get(key)
	}
	return db.permanent.Get(key)
}

func (db *BackedMemDb) Has(key []byte) (bool, error) {
	if db.touched.Contains(string(key)) {
		return db.inner.Has(key)
	}
	return db.permanent.Has(key)
}

func (db *BackedMemDb) Set(key []byte, value []byte) error {
	if err := db.inner.Set(key, value); err != nil {
		return err
	}
	db.touch(key)
	return nil
}

func (db *BackedMemDb) SetSync(key []byte, value []byte) error {
	return db.Set(key, value)
}

func (db *BackedMemDb) Delete(key []byte) error {
	if err := db.inner.Delete(key); err != nil {
		return err
	}
	db.touch(key)
	return nil
}

func (db *BackedMemDb) DeleteSync(key []byte) error {
	return db.Delete(key)
}

func (db *BackedMemDb) Iterator(start, end []byte) (dbm.Iterator, error) {
	innerKeys, err := db.innerKeys(start, end, false)
	if err != nil {
		return nil, err
	}
	pmIt, err := db.permanent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newIterator(db, innerKeys, pmIt, false), nil
}

func (db *BackedMemDb) ReverseIterator(start, end []byte) (dbm.Iterator, error) {
	innerKeys, err := db.innerKeys(start, end, true)
	if err != nil {
		return nil, err
	}
	pmIt, err := db.permanent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	return newIterator(db, innerKeys, pmIt, true), nil
}

func (db *BackedMemDb) innerKeys(start, end []byte, reverse bool) ([][]byte, error) {
	var it dbm.Iterator
	var err error
	if reverse {
		it, err = db.inner.ReverseIterator(start, end)
	} else {
		it, err = db.inner.Iterator(start, end)
	}
	if err != nil {
		return nil, err
	}
	defer it.Close()
	keys := make([][]byte, 0)
	for ; it.Valid(); it.Next() {
		keys = append(keys, it.Key())
	}
	return keys, nil
}

// Flush writes every touched key to the permanent database in a single batch.
// Deleted keys are removed from the permanent database.
func (db *BackedMemDb) Flush() error {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	batch := db.permanent.NewBatch()
	defer batch.Close()

	for item := range db.touched.Iter() {
		key := []byte(item.(string))
		value, err := db.inner.Get(key)
		if err != nil {
			return err
		}
		if value == nil {
			err = batch.Delete(key)
		} else {
			err = batch.Set(key, value)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to stage key %x", key)
		}
	}
	if err := batch.WriteSync(); err != nil {
		return errors.Wrap(err, "failed to write batch")
	}
	db.touched.Clear()
	return db.resetInner()
}

// Discard drops all buffered writes.
func (db *BackedMemDb) Discard() error {
	db.mtx.Lock()
	defer db.mtx.Unlock()
	db.touched.Clear()
	return db.resetInner()
}

func (db *BackedMemDb) resetInner() error {
	if err := db.inner.Close(); err != nil {
		return err
	}
	db.inner = dbm.NewMemDB()
	return nil
}

func (db *BackedMemDb) TouchedCount() int {
	return db.touched.Cardinality()
}

func (db *BackedMemDb) Close() error {
	return db.inner.Close()
}

func (db *BackedMemDb) Print() error {
	return db.inner.Print()
}

func (db *BackedMemDb) NewBatch() dbm.Batch {
	return &backedMemBatch{db: db}
}

func (db *BackedMemDb) Stats() map[string]string {
	return db.inner.Stats()
}

func (db *BackedMemDb) touch(key []byte) {
	db.touched.Add(string(key))
}

type iterator struct {
	db                 *BackedMemDb
	innerKeys          [][]byte
	permanentIter      dbm.Iterator
	isReverse          bool
	valid              bool
	key                []byte
	value              []byte
	emptyPermanentIter bool
	empty              bool
}

func (it *iterator) Error() error {
	return it.permanentIter.Error()
}

func newIterator(db *BackedMemDb, innerKeys [][]byte, permanentIter dbm.Iterator, isReverse bool) dbm.Iterator {
	it := &iterator{
		db:            db,
		innerKeys:     innerKeys,
		permanentIter: permanentIter,
		isReverse:     isReverse,
		valid:         true,
	}
	it.emptyPermanentIter = !permanentIter.Valid()
	it.Next()
	return it
}

func (it *iterator) Domain() (start []byte, end []byte) {
	return it.permanentIter.Domain()
}

func (it *iterator) takeInnerKey() {
	if len(it.innerKeys) == 0 {
		it.valid = false
		it.empty = false
		return
	}

	it.key = it.innerKeys[0]
	it.value, _ = it.db.Get(it.key)
	it.innerKeys = it.innerKeys[1:]
	it.empty = len(it.innerKeys) == 0 && it.emptyPermanentIter
}

func (it *iterator) compare(key1, key2 []byte) bool {
	if it.isReverse {
		return bytes.Compare(key1, key2) >= 0
	}
	return bytes.Compare(key1, key2) <= 0
}

func (it *iterator) Valid() bool {
	return it.valid
}

func (it *iterator) nextPermanent() {
	if it.permanentIter.Valid() {
		it.permanentIter.Next()
	}
	it.emptyPermanentIter = !it.permanentIter.Valid()
}

func (it *iterator) Next() {
	if it.empty {
		it.valid = false
		return
	}
	for !it.emptyPermanentIter {
		if len(it.innerKeys) > 0 && it.compare(it.innerKeys[0], it.permanentIter.Key()) {
			if bytes.Equal(it.innerKeys[0], it.permanentIter.Key()) {
				it.nextPermanent()
			}
			it.takeInnerKey()
			return
		}
		if it.db.touched.Contains(string(it.permanentIter.Key())) {
			it.nextPermanent()
			continue
		}
		it.key = it.permanentIter.Key()
		it.value = it.permanentIter.Value()
		it.nextPermanent()
		return
	}
	it.takeInnerKey()
}

func (it *iterator) Key() (key []byte) {
	return it.key
}

func (it *iterator) Value() (value []byte) {
	return it.value
}

func (it *iterator) Close() error {
	return it.permanentIter.Close()
}
