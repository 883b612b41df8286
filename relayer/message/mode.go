// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package message

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Mode is the 4 byte tag identifying the message flow a bridge implements.
type Mode [4]byte

func NewMode(name string) Mode {
	var m Mode
	copy(m[:], crypto.Keccak256([]byte(name))[:4])
	return m
}

func (m Mode) String() string {
	return hexutil.Encode(m[:])
}

var (
	ErcToErc      = NewMode("erc-to-erc-core")
	ErcToNative   = NewMode("erc-to-native-core")
	NativeToErc   = NewMode("native-to-erc-core")
	Arbitrary     = NewMode("arbitrary-message-bridge-core")
	TokenMediator = NewMode("erc-to-erc-amb")
	Optimistic    = NewMode("utopia-optimistic-core")
)

var modes = map[string]Mode{
	"erc-to-erc":    ErcToErc,
	"erc-to-native": ErcToNative,
	"native-to-erc": NativeToErc,
	"arbitrary":     Arbitrary,
	"mediator":      TokenMediator,
	"optimistic":    Optimistic,
}

// ModeFromString resolves a configured mode name.
func ModeFromString(name string) (Mode, error) {
	m, ok := modes[name]
	if !ok {
		return Mode{}, fmt.Errorf("unknown bridge mode %s", name)
	}
	return m, nil
}

// Modes returns all known mode names with their tags.
func Modes() map[string]Mode {
	out := make(map[string]Mode, len(modes))
	for k, v := range modes {
		out[k] = v
	}
	return out
}
