package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ChainSafe/utopia-relay/cli/keygen"
	"github.com/ChainSafe/utopia-relay/cli/merkle"
	"github.com/ChainSafe/utopia-relay/cli/sign"
	"github.com/ChainSafe/utopia-relay/cli/utils"
	"github.com/ChainSafe/utopia-relay/flags"
)

var (
	rootCMD = &cobra.Command{
		Use: "",
	}
)

func init() {
	flags.BindFlags(rootCMD)
}

func Execute() {
	rootCMD.AddCommand(runCMD, modeCMD, keygen.KeygenCLI, utils.UtilsCLI, merkle.MerkleCLI, sign.SignCLI)
	if err := rootCMD.Execute(); err != nil {
		log.Fatal().Err(err).Msg("failed to execute root cmd")
	}
}
