package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "repairctl",
	Short: "Structural member graph repair tool",
	Long: `repairctl - FrameMend command line tool

Repairs structural analysis models whose members cross without sharing
nodes. Crossing members are split at their planar intersections, shared
nodes are inserted, and the original member attributes are carried onto
the split pieces.

The tool works on the same model exports as the FrameMend server and
can additionally:
  - Generate solver input documents from a repaired model
  - Reduce solver displacement outputs back onto the original members
  - Render a plan view diagram of the repaired model`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		fmt.Printf("  repairctl v%s\n", Version)
		fmt.Println("  Structural member graph repair tool")
		fmt.Println()
		fmt.Println("  Use 'repairctl --help' to see available commands.")
		fmt.Println()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
