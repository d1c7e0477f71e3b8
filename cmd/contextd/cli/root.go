package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "contextd",
	Short: "contextd — Context Continuity Engine query server",
	Long: `contextd is the read/query layer over the Context Continuity Engine's
data stores. It serves a fixed set of context tools to MCP clients over
JSON-RPC on stdio and offers one-shot maintenance commands.

It does not start activity monitoring; the monitoring daemon runs separately.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		// Diagnostics go to stderr; stdout is reserved for the protocol stream.
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "engine config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
