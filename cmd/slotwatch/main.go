// Package main is the entry point for the slotwatch CLI.
//
// Usage:
//
//	slotwatch run                       # Monitor with built-in defaults
//	slotwatch run -c slotwatch.yaml     # Monitor with a config file
//	slotwatch check -c slotwatch.yaml   # Run a single check and exit
//	slotwatch validate -c slotwatch.yaml
//	slotwatch version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd only shows help; work happens in subcommands.
var rootCmd = &cobra.Command{
	Use:   "slotwatch",
	Short: "Watch a hospital schedule for bookable appointment slots",
	Long: `slotwatch polls a hospital appointment API, filters the schedule for
bookable slots (fee, date window, not fully booked) and sends a PushPlus
notification listing every match.

Quick start:
  1. Export your PushPlus token: export PUSHPLUS_TOKEN=...
  2. Create a config file with pushplus.token: ${PUSHPLUS_TOKEN}
  3. Run: slotwatch run -c slotwatch.yaml

Without -c the built-in doctor schedule, one-minute interval and default
rules are used, and notifications are skipped.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("slotwatch %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
