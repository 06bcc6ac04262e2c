package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build info set at compile time via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "ntpclient",
		Short:   "Query NTP servers for the current UTC time",
		Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
	}

	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newMonitorCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
