package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkingovr/context-continuity/internal/engine"
)

var (
	cleanupDays int
	cleanupYes  bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove activity data older than N days",
	Example: `  contextd cleanup --days 90 --yes
  contextd cleanup -c ~/.contextd/config.yaml --days 30 --yes`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 90, "retain data for this many days")
	cleanupCmd.Flags().BoolVar(&cleanupYes, "yes", false, "confirm deletion")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	if !cleanupYes {
		return fmt.Errorf("cleanup deletes data permanently; re-run with --yes to confirm")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := engine.New(cfg)
	if err != nil {
		return fmt.Errorf("opening engine: %w", err)
	}
	defer func() {
		_ = eng.Close()
	}()

	result, err := eng.Cleanup(cmd.Context(), cleanupDays)
	if err != nil {
		return err
	}
	fmt.Printf("deleted %d records older than %d days\n", result.DeletedRecords, result.RetentionDays)
	return nil
}
