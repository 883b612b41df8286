// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package keygen

import (
	"github.com/spf13/cobra"
)

var KeygenCLI = &cobra.Command{
	Use:   "keygen",
	Short: "Validator key generation",
}

func init() {
	generateKeyCMD.Flags().IntVar(&count, "count", 1, "number of keys to generate")
	KeygenCLI.AddCommand(generateKeyCMD)
}
