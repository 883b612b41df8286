// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package store

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

var ErrTxClosed = errors.New("transaction already committed or reverted")

type entry struct {
	value   []byte
	deleted bool
}

// Tx stages writes in memory and applies them to the store in a single batch.
// Reads through a Tx observe its own staged writes. After Commit the Tx keeps
// an undo batch so that the committed writes can be reverted as a whole.
type Tx struct {
	db      KeyValueStore
	pending map[string]entry
	order   []string
	undo    *leveldb.Batch

	committed bool
	closed    bool
}

func NewTx(db KeyValueStore) *Tx {
	return &Tx{
		db:      db,
		pending: make(map[string]entry),
	}
}

func (tx *Tx) GetByKey(key []byte) ([]byte, error) {
	if e, ok := tx.pending[string(key)]; ok {
		if e.deleted {
			return nil, leveldb.ErrNotFound
		}
		return append([]byte{}, e.value...), nil
	}
	return tx.db.GetByKey(key)
}

func (tx *Tx) SetByKey(key []byte, value []byte) error {
	if tx.committed || tx.closed {
		return ErrTxClosed
	}
	tx.stage(key, entry{value: append([]byte{}, value...)})
	return nil
}

func (tx *Tx) DeleteByKey(key []byte) error {
	if tx.committed || tx.closed {
		return ErrTxClosed
	}
	tx.stage(key, entry{deleted: true})
	return nil
}

func (tx *Tx) stage(key []byte, e entry) {
	k := string(key)
	if _, ok := tx.pending[k]; !ok {
		tx.order = append(tx.order, k)
	}
	tx.pending[k] = e
}

// Commit writes all staged operations atomically.
func (tx *Tx) Commit() error {
	if tx.committed || tx.closed {
		return ErrTxClosed
	}

	batch := new(leveldb.Batch)
	undo := new(leveldb.Batch)
	for _, k := range tx.order {
		key := []byte(k)
		prev, err := tx.db.GetByKey(key)
		switch {
		case IsNotFound(err):
			undo.Delete(key)
		case err != nil:
			return errors.Wrapf(err, "reading previous value of %x", key)
		default:
			undo.Put(key, prev)
		}

		e := tx.pending[k]
		if e.deleted {
			batch.Delete(key)
		} else {
			batch.Put(key, e.value)
		}
	}

	if err := tx.db.Write(batch); err != nil {
		return errors.Wrap(err, "writing tx batch")
	}
	tx.undo = undo
	tx.committed = true
	return nil
}

// Revert discards staged writes, or restores the previous values if the Tx
// was already committed.
func (tx *Tx) Revert() error {
	if tx.closed {
		return ErrTxClosed
	}
	tx.closed = true
	tx.pending = nil
	tx.order = nil
	if !tx.committed {
		return nil
	}
	return errors.Wrap(tx.db.Write(tx.undo), "reverting committed tx")
}

// Committed reports whether the staged writes reached the store.
func (tx *Tx) Committed() bool {
	return tx.committed
}

// Empty reports whether the Tx has no staged writes.
func (tx *Tx) Empty() bool {
	return len(tx.order) == 0
}
