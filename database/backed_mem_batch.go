package database

import (
	"github.com/pkg/errors"
)

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// backedMemBatch stages writes and applies them to the overlay on Write.
type backedMemBatch struct {
	db     *BackedMemDb
	ops    []batchOp
	closed bool
}

func (b *backedMemBatch) Set(key, value []byte) error {
	if b.closed {
		return errors.New("batch has been written or closed")
	}
	b.ops = append(b.ops, batchOp{key: key, value: value})
	return nil
}

func (b *backedMemBatch) Delete(key []byte) error {
	if b.closed {
		return errors.New("batch has been written or closed")
	}
	b.ops = append(b.ops, batchOp{key: key, delete: true})
	return nil
}

func (b *backedMemBatch) Write() error {
	if b.closed {
		return errors.New("batch has been written or closed")
	}
	for _, op := range b.ops {
		var err error
		if op.delete {
			err = b.db.Delete(op.key)
		} else {
			err = b.db.Set(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	return b.Close()
}

func (b *backedMemBatch) WriteSync() error {
	return b.Write()
}

func (b *backedMemBatch) Close() error {
	b.ops = nil
	b.closed = true
	return nil
}
