package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/ChainSafe/utopia-relay/relayer/message"
)

var (
	modeCMD = &cobra.Command{
		Use:   "mode",
		Short: "Print the bridge mode tags",
		Long:  "Print the 4 byte tag of every supported bridge mode",
		RunE:  printModes,
	}
)

func printModes(cmd *cobra.Command, args []string) error {
	modes := message.Modes()
	names := maps.Keys(modes)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", name, modes[name])
	}
	return nil
}
