package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/slotwatch/config"
)

// validateCmd validates a config file without contacting any service.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a slotwatch configuration file without running a check.

This command parses the YAML, expands environment variables, and validates
all fields. Useful before deploying a config change.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  slotwatch validate -c slotwatch.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := config.BuildOptions(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	status := "disabled"
	if cfg.StatusPort != 0 {
		status = fmt.Sprintf("port %d", cfg.StatusPort)
	}
	push := "skipped (no token)"
	if cfg.PushPlus.Token != "" {
		push = "enabled"
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Interval:      %s\n", cfg.Interval.Duration())
	fmt.Printf("  Source:        %s\n", cfg.Source.URL)
	fmt.Printf("  Query:         %s\n", joinKeys(cfg.Source.Query))
	fmt.Printf("  Rules:         cost=%v cutoff=%s full_marker=%s\n",
		*cfg.Rules.Cost, cfg.Rules.Cutoff, cfg.Rules.FullMarker)
	fmt.Printf("  PushPlus:      %s\n", push)
	fmt.Printf("  Status server: %s\n", status)

	return nil
}

// joinKeys lists map keys in sorted order.
func joinKeys(m map[string]string) string {
	if len(m) == 0 {
		return "(none)"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}
