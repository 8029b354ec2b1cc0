package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	layoutName string
	configPath string
	useMmap    bool
)

var rootCmd = &cobra.Command{
	Use:   "poolctl",
	Short: "Build and exercise fixed-capacity block pools",
	Long: `poolctl builds a pool of fixed-size block buckets from a preset or a
YAML layout and drives it with synthetic workloads: a growable-vector
benchmark against Go slices and a random allocate/free simulation.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return applyEnv(cmd) },
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVarP(&layoutName, "layout", "l", "small", "Preset pool layout (env POOLCTL_LAYOUT)")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "YAML layout file, overrides --layout (env POOLCTL_CONFIG)")
	rootCmd.PersistentFlags().
		BoolVar(&useMmap, "mmap", false, "Back arenas with anonymous mappings (env POOLCTL_MMAP)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
