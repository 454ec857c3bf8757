package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "memctlsim",
	Short: "memctlsim drives a DRAM memory controller timing model.",
	Long: `memctlsim drives a DRAM memory controller timing model with ` +
		`synthetic workloads and reports the controller statistics. ` +
		`Parameters come from defaults, a MEMCTL_* env file, the ` +
		`environment, and flags, in increasing priority.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It exits through atexit so that recorders get flushed.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
