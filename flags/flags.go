package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	ConfigFlagName = "config"
	DBPathFlagName = "db-path"
	NameFlagName   = "name"
)

// BindFlags binds the persistent flags shared by all commands to viper.
func BindFlags(rootCMD *cobra.Command) {
	rootCMD.PersistentFlags().String(ConfigFlagName, ".", "Path to JSON configuration file or env to load from environment")
	_ = viper.BindPFlag(ConfigFlagName, rootCMD.PersistentFlags().Lookup(ConfigFlagName))

	rootCMD.PersistentFlags().String(DBPathFlagName, "./lvldbdata", "Path to the relay database")
	_ = viper.BindPFlag(DBPathFlagName, rootCMD.PersistentFlags().Lookup(DBPathFlagName))

	rootCMD.PersistentFlags().String(NameFlagName, "", "Relayer name")
	_ = viper.BindPFlag(NameFlagName, rootCMD.PersistentFlags().Lookup(NameFlagName))
}
