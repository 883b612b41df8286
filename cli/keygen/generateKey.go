// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package keygen

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

var (
	count int

	generateKeyCMD = &cobra.Command{
		Use:   "gen-key",
		Short: "Generate validator signing keys",
		Long:  "Generate secp256k1 keys for signing relay messages and requests. Keys are printed in ascending address order, the order a merkle validator set expects.",
		RunE:  generateKeys,
	}
)

func generateKeys(cmd *cobra.Command, args []string) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	keys := make([]*ecdsa.PrivateKey, count)
	for i := range keys {
		key, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		keys[i] = key
	}
	slices.SortFunc(keys, func(a, b *ecdsa.PrivateKey) int {
		return bytes.Compare(crypto.PubkeyToAddress(a.PublicKey).Bytes(), crypto.PubkeyToAddress(b.PublicKey).Bytes())
	})

	for _, key := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "Private key: %s\n", hexutil.Encode(crypto.FromECDSA(key)))
		fmt.Fprintf(cmd.OutOrStdout(), "Address: %s\n", crypto.PubkeyToAddress(key.PublicKey))
	}
	return nil
}
