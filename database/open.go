package database

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	dbm "github.com/tendermint/tm-db"
	"os"
)

const (
	DefaultCache   = 16
	DefaultHandles = 64
)

// OpenDatabase opens (or creates) a leveldb database named name under datadir.
// An empty datadir yields an in-memory database.
func OpenDatabase(datadir string, name string, cache int, handles int) (dbm.DB, error) {
	if datadir == "" {
		return dbm.NewMemDB(), nil
	}
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, errors.Wrapf(err, "cannot create datadir %v", datadir)
	}
	db, err := dbm.NewGoLevelDBWithOpts(name, datadir, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open database %v", name)
	}
	return db, nil
}
