package merkle

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var MerkleCLI = &cobra.Command{
	Use:   "merkle",
	Short: "Validator set merkle tree commands",
}

var validators []string

func validatorFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("validators", pflag.ContinueOnError)
	fs.StringSliceVar(&validators, "validators", nil, "comma separated validator addresses")
	return fs
}

func init() {
	rootCMD.Flags().AddFlagSet(validatorFlags())
	_ = rootCMD.MarkFlagRequired("validators")

	proofCMD.Flags().AddFlagSet(validatorFlags())
	proofCMD.Flags().StringVar(&address, "address", "", "validator address to prove membership of")
	_ = proofCMD.MarkFlagRequired("validators")
	_ = proofCMD.MarkFlagRequired("address")

	MerkleCLI.AddCommand(rootCMD, proofCMD)
}
