package utils

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	deriveAddressCMD = &cobra.Command{
		Use:   "address",
		Short: "will print the validator address for given PrivateKey in hex",
		Long:  "Will print the validator address for given PrivateKey in hex",
		RunE:  deriveAddress,
	}
)

var (
	privateKey string
)

func init() {
	deriveAddressCMD.PersistentFlags().StringVar(&privateKey, "privateKey", "", "hex encoded private key")
	_ = deriveAddressCMD.MarkFlagRequired("privateKey")
}

func deriveAddress(cmd *cobra.Command, args []string) error {
	key, err := ParsePrivateKey(privateKey)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), crypto.PubkeyToAddress(key.PublicKey))
	return nil
}
