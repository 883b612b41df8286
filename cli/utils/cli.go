// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package utils

import "github.com/spf13/cobra"

// UtilsCLI groups helpers for operators preparing validator keys and requests.
var UtilsCLI = &cobra.Command{
	Use:   "utils",
	Short: "Validator key utilities",
}

func init() {
	UtilsCLI.AddCommand(deriveAddressCMD)
}
