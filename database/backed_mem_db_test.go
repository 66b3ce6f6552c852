package database

import (
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"
	"testing"
)

func createDb() *BackedMemDb {
	return NewBackedMemDb(dbm.NewMemDB())
}

func TestBackedMemDb_Get(t *testing.T) {
	require := require.New(t)
	db := createDb()
	require.NoError(db.permanent.Set([]byte{0x1}, []byte{0x2}))

	v, _ := db.Get([]byte{0x1})
	require.Equal([]byte{0x2}, v)

	require.NoError(db.Set([]byte{0x1}, []byte{0x3}))

	v, _ = db.Get([]byte{0x1})
	require.Equal([]byte{0x3}, v)
	require.True(db.touched.Contains(string([]byte{0x1})))

	v, _ = db.permanent.Get([]byte{0x1})
	require.Equal([]byte{0x2}, v)

	it, err := db.Iterator(nil, nil)
	require.NoError(err)
	require.True(it.Valid())
	require.NoError(it.Close())
}

func TestBackedMemDb_Delete(t *testing.T) {
	require := require.New(t)
	db := createDb()
	require.NoError(db.permanent.Set([]byte{0x1}, []byte{0x2}))

	require.NoError(db.Delete([]byte{0x1}))
	v, _ := db.Get([]byte{0x1})
	require.Nil(v)
	require.True(db.touched.Contains(string([]byte{0x1})))

	v, _ = db.permanent.Get([]byte{0x1})
	require.Equal([]byte{0x2}, v)

	it, err := db.Iterator(nil, nil)
	require.NoError(err)
	require.False(it.Valid())
	require.NoError(it.Close())
}

func TestBackedMemDb_Iterator(t *testing.T) {
	require := require.New(t)
	db := createDb()

	require.NoError(db.permanent.Set([]byte{0x1}, []byte{0x5}))
	require.NoError(db.permanent.Set([]byte{0x2}, []byte{0x3}))
	require.NoError(db.permanent.Set([]byte{0x3}, []byte{0x4}))
	require.NoError(db.permanent.Set([]byte{0x4}, []byte{0x4}))

	require.NoError(db.Set([]byte{0x1}, []byte{0x1}))
	require.NoError(db.Set([]byte{0x2}, []byte{0x2}))
	require.NoError(db.Set([]byte{0x5}, []byte{0x6}))
	require.NoError(db.Set([]byte{0x7}, []byte{0x8}))
	require.NoError(db.Delete([]byte{0x4}))

	assertions := []keyValue{
		{key: []byte{0x1}, value: []byte{0x1}},
		{key: []byte{0x2}, value: []byte{0x2}},
		{key: []byte{0x3}, value: []byte{0x4}},
		{key: []byte{0x5}, value: []byte{0x6}},
	}
	assertIterators(require, db, assertions, nil, []byte{0x6})
}

func TestBackedMemDb_NewBatch(t *testing.T) {
	require := require.New(t)
	db := createDb()
	require.NoError(db.permanent.Set([]byte{0x1}, []byte{0x1}))
	require.NoError(db.permanent.Set([]byte{0x2}, []byte{0x2}))
	require.NoError(db.permanent.Set([]byte{0x3}, []byte{0x3}))

	batch := db.NewBatch()
	require.NoError(batch.Set([]byte{0x1}, []byte{0x2}))
	require.NoError(batch.Set([]byte{0x2}, []byte{0x3}))
	require.NoError(batch.Delete([]byte{0x3}))
	require.Equal(0, db.TouchedCount())
	require.NoError(batch.Write())
	require.Error(batch.Set([]byte{0x4}, []byte{0x4}))

	require.Equal(3, db.TouchedCount())
	v, _ := db.Get([]byte{0x1})
	require.Equal([]byte{0x2}, v)
	v, _ = db.Get([]byte{0x2})
	require.Equal([]byte{0x3}, v)
	has, _ := db.Has([]byte{0x3})
	require.False(has)
}

func TestBackedMemDb_Flush(t *testing.T) {
	require := require.New(t)
	db := createDb()
	require.NoError(db.permanent.Set([]byte{0x1}, []byte{0x1}))
	require.NoError(db.permanent.Set([]byte{0x2}, []byte{0x2}))

	require.NoError(db.Set([]byte{0x1}, []byte{0x9}))
	require.NoError(db.Delete([]byte{0x2}))
	require.NoError(db.Set([]byte{0x3}, []byte{0x3}))

	require.NoError(db.Flush())
	require.Equal(0, db.TouchedCount())

	v, _ := db.permanent.Get([]byte{0x1})
	require.Equal([]byte{0x9}, v)
	has, _ := db.permanent.Has([]byte{0x2})
	require.False(has)
	v, _ = db.permanent.Get([]byte{0x3})
	require.Equal([]byte{0x3}, v)

	v, _ = db.Get([]byte{0x1})
	require.Equal([]byte{0x9}, v)
}

func TestBackedMemDb_Discard(t *testing.T) {
	require := require.New(t)
	db := createDb()
	require.NoError(db.permanent.Set([]byte{0x1}, []byte{0x1}))

	require.NoError(db.Set([]byte{0x1}, []byte{0x9}))
	require.NoError(db.Set([]byte{0x2}, []byte{0x2}))
	require.NoError(db.Discard())

	v, _ := db.Get([]byte{0x1})
	require.Equal([]byte{0x1}, v)
	has, _ := db.Has([]byte{0x2})
	require.False(has)
	has, _ = db.permanent.Has([]byte{0x2})
	require.False(has)
}

func assertIterators(require *require.Assertions, db *BackedMemDb, assertions []keyValue, start, end []byte) {
	cnt := 0
	it, err := db.Iterator(start, end)
	require.NoError(err)

	for i := 0; it.Valid(); it.Next() {
		require.Equal(assertions[i].key, it.Key())
		require.Equal(assertions[i].value, it.Value())
		i++
		cnt++
	}
	require.NoError(it.Close())
	require.Equal(len(assertions), cnt)

	cnt = 0
	it, err = db.ReverseIterator(start, end)
	require.NoError(err)

	for i := len(assertions) - 1; it.Valid(); it.Next() {
		require.Equal(assertions[i].key, it.Key())
		require.Equal(assertions[i].value, it.Value())
		i--
		cnt++
	}
	require.NoError(it.Close())
	require.Equal(len(assertions), cnt)
}

type keyValue struct {
	key   []byte
	value []byte
}
