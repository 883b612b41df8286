package sign

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/ChainSafe/utopia-relay/api"
	"github.com/ChainSafe/utopia-relay/cli/utils"
)

var (
	affirmationCMD = &cobra.Command{
		Use:   "affirmation",
		Short: "Sign an inbound transfer affirmation or mediator delivery",
		RunE:  signAffirmation,
	}
	depositCMD = &cobra.Command{
		Use:   "deposit",
		Short: "Sign a deposit request",
		RunE:  signDeposit,
	}
	commitCMD = &cobra.Command{
		Use:   "commit",
		Short: "Sign a commit request",
		RunE:  signCommit,
	}
)

var (
	bridgeAddress string
	executor      string
	data          string
	bond          string
	deadline      uint64
)

func init() {
	affirmationCMD.Flags().StringVar(&recipient, "recipient", "", "recipient address")
	affirmationCMD.Flags().StringVar(&value, "value", "", "transferred value")
	affirmationCMD.Flags().StringVar(&txHash, "tx-hash", "", "hash of the originating transaction or message id")
	for _, f := range []string{"recipient", "value", "tx-hash"} {
		_ = affirmationCMD.MarkFlagRequired(f)
	}

	depositCMD.Flags().StringVar(&bridgeAddress, "bridge", "", "address of the bridge")
	depositCMD.Flags().StringVar(&recipient, "recipient", "", "recipient address on the counterpart chain")
	depositCMD.Flags().StringVar(&value, "value", "", "deposited value")
	depositCMD.Flags().Uint64Var(&deadline, "deadline", 0, "unix timestamp after which the request is rejected")
	for _, f := range []string{"bridge", "recipient", "value", "deadline"} {
		_ = depositCMD.MarkFlagRequired(f)
	}

	commitCMD.Flags().StringVar(&bridgeAddress, "bridge", "", "address of the bridge")
	commitCMD.Flags().StringVar(&messageID, "message-id", "", "id of the committed message")
	commitCMD.Flags().StringVar(&executor, "executor", "", "call target executed after the challenge window")
	commitCMD.Flags().StringVar(&data, "data", "0x", "hex encoded call data")
	commitCMD.Flags().StringVar(&bond, "bond", "", "escrowed bond")
	commitCMD.Flags().Uint64Var(&deadline, "deadline", 0, "unix timestamp after which the request is rejected")
	for _, f := range []string{"bridge", "message-id", "executor", "bond", "deadline"} {
		_ = commitCMD.MarkFlagRequired(f)
	}
}

func signAffirmation(cmd *cobra.Command, args []string) error {
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
	return signAndPrint(cmd, api.AffirmationRequestHash(r, v, h))
}

func signDeposit(cmd *cobra.Command, args []string) error {
	b, err := utils.ParseAddress(bridgeAddress)
	if err != nil {
		return err
	}
	r, err := utils.ParseAddress(recipient)
	if err != nil {
		return err
	}
	v, err := utils.ParseValue(value)
	if err != nil {
		return err
	}
	return signAndPrint(cmd, api.DepositRequestHash(b, r, v, deadline))
}

func signCommit(cmd *cobra.Command, args []string) error {
	b, err := utils.ParseAddress(bridgeAddress)
	if err != nil {
		return err
	}
	id, err := utils.ParseHash(messageID)
	if err != nil {
		return err
	}
	e, err := utils.ParseAddress(executor)
	if err != nil {
		return err
	}
	calldata, err := hexutil.Decode(data)
	if err != nil {
		return err
	}
	amount, err := utils.ParseValue(bond)
	if err != nil {
		return err
	}
	return signAndPrint(cmd, api.CommitRequestHash(b, id, e, calldata, amount, deadline))
}
