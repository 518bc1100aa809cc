package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/udisondev/worldsim/internal/data"
)

var calcCmd = &cobra.Command{
	Use:   "calc [scenario.yaml]",
	Short: "Run a modifier scenario offline and print the resulting stats",
	Long: `Builds a unit from a template, applies the scenario's modifier
operations and effects in order and prints the stat breakdown.
No database is needed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupLogger(logLevelOverride("warn"))

		templatesPath, _ := cmd.Flags().GetString("templates")
		if err := loadTemplates(templatesPath); err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading scenario: %w", err)
		}
		sc, err := ParseScenario(raw)
		if err != nil {
			return err
		}

		run, err := sc.Run()
		if err != nil {
			return err
		}
		stats, err := sc.shownStats(run.Unit)
		if err != nil {
			return err
		}
		return run.WriteReport(cmd.OutOrStdout(), stats)
	},
}

func init() {
	calcCmd.Flags().StringP("templates", "t", "", "unit templates YAML (default: embedded templates)")
	_ = viper.BindPFlag("templates", calcCmd.Flags().Lookup("templates"))
	rootCmd.AddCommand(calcCmd)
}

func loadTemplates(path string) error {
	if path == "" {
		path = viper.GetString("templates")
	}
	if path == "" {
		return data.LoadUnitTemplates()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading unit templates: %w", err)
	}
	return data.LoadUnitTemplatesFrom(raw)
}
