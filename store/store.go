// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package store

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
)

type KeyValueReader interface {
	GetByKey(key []byte) ([]byte, error)
}

type KeyValueWriter interface {
	SetByKey(key []byte, value []byte) error
	DeleteByKey(key []byte) error
}

type KeyValueReaderWriter interface {
	KeyValueReader
	KeyValueWriter
}

// KeyValueStore is the persistent backend shared by every relay component.
type KeyValueStore interface {
	KeyValueReaderWriter
	Write(batch *leveldb.Batch) error
	// Iterate passes keys and values that are only valid until fn returns.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
}

func IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}
