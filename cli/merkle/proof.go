package merkle

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChainSafe/utopia-relay/cli/utils"
	"github.com/ChainSafe/utopia-relay/relayer/merkle"
)

var (
	proofCMD = &cobra.Command{
		Use:   "proof",
		Short: "Compute a validator membership proof",
		Long:  "Compute the merkle proof of an address against a validator set",
		RunE:  proof,
	}
)

var address string

func proof(cmd *cobra.Command, args []string) error {
	addrs, err := utils.ParseAddresses(validators)
	if err != nil {
		return err
	}
	addr, err := utils.ParseAddress(address)
	if err != nil {
		return err
	}
	tree, err := merkle.NewTree(addrs)
	if err != nil {
		return err
	}
	p, err := tree.Proof(addr)
	if err != nil {
		return err
	}

	siblings := make([]string, len(p))
	for i, h := range p {
		siblings[i] = h.Hex()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Root: %s\n", tree.Root())
	fmt.Fprintf(cmd.OutOrStdout(), "Proof: %s\n", strings.Join(siblings, ","))
	return nil
}
