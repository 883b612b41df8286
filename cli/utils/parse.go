package utils

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

func ParsePrivateKey(raw string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(raw, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return key, nil
}

func ParseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("invalid address %q", raw)
	}
	return common.HexToAddress(raw), nil
}

func ParseAddresses(raw []string) ([]common.Address, error) {
	addrs := make([]common.Address, len(raw))
	for i, r := range raw {
		addr, err := ParseAddress(r)
		if err != nil {
			return nil, err
		}
		addrs[i] = addr
	}
	return addrs, nil
}

func ParseHash(raw string) (common.Hash, error) {
	b, err := hexutil.Decode(raw)
	if err != nil || len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid hash %q", raw)
	}
	return common.BytesToHash(b), nil
}

// ParseValue accepts decimal or 0x prefixed hex values up to 256 bits.
func ParseValue(raw string) (*big.Int, error) {
	value, ok := math.ParseBig256(raw)
	if !ok {
		return nil, fmt.Errorf("invalid value %q", raw)
	}
	return value, nil
}
