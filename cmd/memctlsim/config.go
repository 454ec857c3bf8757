package main

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective controller configuration.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		cfg.Print(cmd.OutOrStdout(), "memctl")

		return nil
	},
}

func init() {
	addConfigFlags(configCmd)
	rootCmd.AddCommand(configCmd)
}
