// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package store

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Key formats a storage key from a format string, like the proposal keys.
func Key(format string, args ...interface{}) []byte {
	return []byte(fmt.Sprintf(format, args...))
}

func GetBool(r KeyValueReader, key []byte) (bool, error) {
	v, err := r.GetByKey(key)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return len(v) == 1 && v[0] == 1, nil
}

func SetBool(w KeyValueWriter, key []byte, value bool) error {
	if !value {
		return w.DeleteByKey(key)
	}
	return w.SetByKey(key, []byte{1})
}

func GetUint64(r KeyValueReader, key []byte) (uint64, error) {
	v, err := r.GetByKey(key)
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	if len(v) != 8 {
		return 0, fmt.Errorf("invalid uint64 value length %d for key %s", len(v), key)
	}
	return binary.BigEndian.Uint64(v), nil
}

func SetUint64(w KeyValueWriter, key []byte, value uint64) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, value)
	return w.SetByKey(key, b)
}

// GetBig returns zero for missing keys.
func GetBig(r KeyValueReader, key []byte) (*big.Int, error) {
	v, err := r.GetByKey(key)
	if err != nil {
		if IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, err
	}
	return new(big.Int).SetBytes(v), nil
}

func SetBig(w KeyValueWriter, key []byte, value *big.Int) error {
	if value.Sign() < 0 {
		return fmt.Errorf("negative value %s for key %s", value, key)
	}
	return w.SetByKey(key, value.Bytes())
}
