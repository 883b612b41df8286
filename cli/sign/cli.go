package sign

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/ChainSafe/utopia-relay/cli/utils"
	"github.com/ChainSafe/utopia-relay/relayer/signature"
)

var SignCLI = &cobra.Command{
	Use:   "sign",
	Short: "Produce validator and request signatures",
	Long:  "Produce r||s||v signatures over relay messages, validator set updates, fixes, rejections and API requests",
}

var privateKey string

func init() {
	SignCLI.PersistentFlags().StringVar(&privateKey, "private-key", "", "hex encoded secp256k1 private key")

	SignCLI.AddCommand(
		messageCMD,
		validatorSetCMD,
		fixCMD,
		rejectionCMD,
		affirmationCMD,
		depositCMD,
		commitCMD,
		packCMD,
	)
}

func signAndPrint(cmd *cobra.Command, hash common.Hash) error {
	key, err := utils.ParsePrivateKey(privateKey)
	if err != nil {
		return err
	}
	sig, err := signature.SignHash(hash, key)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Hash: %s\n", hash)
	fmt.Fprintf(cmd.OutOrStdout(), "Signature: %s\n", hexutil.Encode(sig))
	return nil
}
