package merkle

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChainSafe/utopia-relay/cli/utils"
	"github.com/ChainSafe/utopia-relay/relayer/merkle"
)

var (
	rootCMD = &cobra.Command{
		Use:   "root",
		Short: "Compute the validator set root",
		Long:  "Compute the merkle root of a validator set. Addresses are sorted and deduplicated first.",
		RunE:  root,
	}
)

func root(cmd *cobra.Command, args []string) error {
	addrs, err := utils.ParseAddresses(validators)
	if err != nil {
		return err
	}
	tree, err := merkle.NewTree(addrs)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Root: %s\n", tree.Root())
	for _, addr := range tree.Addresses() {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", addr)
	}
	return nil
}
