package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfigPath = "config/worldsim.yaml"

var rootCmd = &cobra.Command{
	Use:   "worldsim",
	Short: "Unit stat simulation server",
	Long: `worldsim keeps a population of units, runs their timed effects
and persists permanent stat modifiers to PostgreSQL.

Flags can also be set through WORLDSIM_* environment variables,
e.g. WORLDSIM_CONFIG or WORLDSIM_LOG_LEVEL.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "path to worldsim.yaml")
	rootCmd.PersistentFlags().String("log_level", "", "override log level (debug, info, warn, error)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))

	viper.SetEnvPrefix("worldsim")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// logLevelOverride returns the flag/env log level, or fallback when neither is set.
func logLevelOverride(fallback string) string {
	if lvl := viper.GetString("log_level"); lvl != "" {
		return lvl
	}
	return fallback
}
