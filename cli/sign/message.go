package sign

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/ChainSafe/utopia-relay/cli/utils"
	"github.com/ChainSafe/utopia-relay/relayer/message"
)

var (
	messageCMD = &cobra.Command{
		Use:   "message",
		Short: "Sign a relay message",
		RunE:  signMessage,
	}
	validatorSetCMD = &cobra.Command{
		Use:   "validator-set",
		Short: "Sign a validator set update",
		RunE:  signValidatorSet,
	}
	fixCMD = &cobra.Command{
		Use:   "fix",
		Short: "Sign a failed message fix",
		RunE:  signFix,
	}
	rejectionCMD = &cobra.Command{
		Use:   "rejection",
		Short: "Sign a commit rejection",
		RunE:  signRejection,
	}
)

var (
	recipient  string
	value      string
	txHash     string
	contract   string
	gasPrice   string
	gas        uint64
	root       string
	threshold  uint64
	expiration uint64
	messageID  string
	timestamp  uint64
)

func init() {
	messageCMD.Flags().StringVar(&recipient, "recipient", "", "recipient address")
	messageCMD.Flags().StringVar(&value, "value", "", "transferred value")
	messageCMD.Flags().StringVar(&txHash, "tx-hash", "", "hash of the originating transaction")
	messageCMD.Flags().StringVar(&contract, "contract", "", "address of the executing bridge")
	messageCMD.Flags().StringVar(&gasPrice, "gas-price", "", "home gas price, only for bridges that include it")
	messageCMD.Flags().Uint64Var(&gas, "gas", 0, "gas for the recipient call, only for arbitrary message bridges")
	messageCMD.Flags().StringVar(&data, "data", "0x", "hex encoded recipient call data, only for arbitrary message bridges")
	for _, f := range []string{"recipient", "value", "tx-hash", "contract"} {
		_ = messageCMD.MarkFlagRequired(f)
	}

	validatorSetCMD.Flags().StringVar(&root, "root", "", "merkle root of the new validator set")
	validatorSetCMD.Flags().Uint64Var(&threshold, "threshold", 0, "signatures required by the new set")
	validatorSetCMD.Flags().Uint64Var(&expiration, "expiration", 0, "unix timestamp the new set expires at")
	for _, f := range []string{"root", "threshold", "expiration"} {
		_ = validatorSetCMD.MarkFlagRequired(f)
	}

	fixCMD.Flags().StringVar(&contract, "contract", "", "address of the bridge holding the deposit")
	fixCMD.Flags().StringVar(&messageID, "message-id", "", "id of the failed deposit")
	_ = fixCMD.MarkFlagRequired("contract")
	_ = fixCMD.MarkFlagRequired("message-id")

	rejectionCMD.Flags().StringVar(&contract, "contract", "", "address of the bridge holding the commit")
	rejectionCMD.Flags().StringVar(&messageID, "message-id", "", "id of the challenged commit")
	rejectionCMD.Flags().Uint64Var(&timestamp, "timestamp", 0, "timestamp of the challenged commit")
	for _, f := range []string{"contract", "message-id", "timestamp"} {
		_ = rejectionCMD.MarkFlagRequired(f)
	}
}

func signMessage(cmd *cobra.Command, args []string) error {
	r, err := utils.ParseAddress(recipient)
	if err != nil {
		return err
	}
	v, err := utils.ParseValue(value)
	if err != nil {
		return err
	}
	h, err := utils.ParseHash(txHash)
	if err != nil {
		return err
	}
	c, err := utils.ParseAddress(contract)
	if err != nil {
		return err
	}

	msg := message.NewMessage(r, v, h, c)
	if gasPrice != "" {
		msg.GasPrice, err = utils.ParseValue(gasPrice)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("gas") || cmd.Flags().Changed("data") {
		calldata, err := hexutil.Decode(data)
		if err != nil {
			return err
		}
		msg.Call = &message.Call{Gas: gas, Data: calldata}
	}
	raw, err := msg.Encode()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Message: %s\n", hexutil.Encode(raw))
	return signAndPrint(cmd, message.SigningHash(raw))
}

func signValidatorSet(cmd *cobra.Command, args []string) error {
	r, err := utils.ParseHash(root)
	if err != nil {
		return err
	}
	update := message.ValidatorSetUpdate{Root: r, Threshold: threshold, Expiration: expiration}
	return signAndPrint(cmd, update.Hash())
}

func signFix(cmd *cobra.Command, args []string) error {
	c, err := utils.ParseAddress(contract)
	if err != nil {
		return err
	}
	id, err := utils.ParseHash(messageID)
	if err != nil {
		return err
	}
	return signAndPrint(cmd, message.FixHash(c, id))
}

func signRejection(cmd *cobra.Command, args []string) error {
	c, err := utils.ParseAddress(contract)
	if err != nil {
		return err
	}
	id, err := utils.ParseHash(messageID)
	if err != nil {
		return err
	}
	return signAndPrint(cmd, message.RejectionHash(c, id, timestamp))
}
