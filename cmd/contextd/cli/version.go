package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set by goreleaser via ldflags
var version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of contextd",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("contextd %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
