package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	debugMode bool
)

var rootCmd = &cobra.Command{
	Use:   "spiceraw",
	Short: "SPICE raw waveform file toolkit",
	Long: `Read, convert and merge the binary waveform files produced by
SPICE-family circuit simulators.

Examples:
  spiceraw info result.raw                           # Show header, variables and steps
  spiceraw export result.raw -o out.csv --trace "V(out)"
  spiceraw convert result.raw -o fast.raw --fastaccess
  spiceraw merge base.raw extra.raw -o merged.raw --force-align`,
	Version: "0.3.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "debug output")
}
