package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkingovr/context-continuity/internal/engine"
)

var (
	checkApp  string
	checkPath string
)

var checkPrivacyCmd = &cobra.Command{
	Use:   "check-privacy",
	Short: "Dry-run the privacy filter for an app/path pair",
	Long: `Check whether an activity would be tracked or filtered out by the
privacy blacklists and policy. Useful for testing blacklist entries and
Rego policies.`,
	Example: `  contextd check-privacy --app "1Password"
  contextd check-privacy --app code --path ~/secrets/notes.md`,
	RunE: runCheckPrivacy,
}

func init() {
	checkPrivacyCmd.Flags().StringVar(&checkApp, "app", "", "application name")
	checkPrivacyCmd.Flags().StringVar(&checkPath, "path", "", "file path touched by the activity")
	_ = checkPrivacyCmd.MarkFlagRequired("app")
	rootCmd.AddCommand(checkPrivacyCmd)
}

func runCheckPrivacy(cmd *cobra.Command, args []string) error {
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

	allowed, err := eng.PrivacyAllowed(cmd.Context(), checkApp, checkPath)
	if err != nil {
		return err
	}
	if allowed {
		fmt.Println("allowed: activity would be tracked")
	} else {
		fmt.Println("blocked: activity would be filtered out")
	}
	return nil
}
