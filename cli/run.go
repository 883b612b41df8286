package cli

import (
	"github.com/spf13/cobra"

	"github.com/ChainSafe/utopia-relay/app"
)

var (
	runCMD = &cobra.Command{
		Use:   "run",
		Short: "Run the relay service",
		Long:  "Open the relay database, serve the relay API and execute matured commits until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run()
		},
	}
)
