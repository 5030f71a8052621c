package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of repairctl",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("repairctl v%s\n", Version)
		fmt.Println("Structural member graph repair tool")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
