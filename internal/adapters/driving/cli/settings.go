package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure default conversion options, batch scheduling and
queue behaviour.

Settings apply to every future run. Flags on convert and watch override
them for a single run.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsQualityCmd = &cobra.Command{
	Use:   "quality <value>",
	Short: "Set the default lossy quality",
	Long:  `Set the default HEIC quality, between 0 (smallest) and 1 (best).`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsQuality,
}

var settingsLosslessCmd = &cobra.Command{
	Use:   "lossless <on|off>",
	Short: "Toggle lossless HEIF output",
	Long: `When on, files are written as lossless 10-bit HEIF (.heif) and the quality
setting is ignored. When off, files are written as HEIC (.heic).`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsLossless,
}

var settingsOutputCmd = &cobra.Command{
	Use:   "output <dir>",
	Short: "Set the default output directory",
	Long:  `Set the directory converted files are written to. It must already exist.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsOutput,
}

var settingsPolicyCmd = &cobra.Command{
	Use:   "policy <sequential|parallel>",
	Short: "Set the batch scheduling policy",
	Long: `Set how a batch converts its files.

Available policies:
  sequential - one file at a time, in order
  parallel   - several files at once (--workers, 0 = one per CPU)

Results are always reported in the order the files were queued.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsPolicy,
}

var settingsRetainCmd = &cobra.Command{
	Use:   "retain <all|failed>",
	Short: "Set what stays queued after a run",
	Long: `Set what remains queued after a batch run in the interactive UI.

Available values:
  all    - keep the whole queue unless every file converted
  failed - keep only the files that failed or were not attempted`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsRetain,
}

var policyWorkers int

func init() {
	settingsPolicyCmd.Flags().IntVar(&policyWorkers, "workers", 0, "Parallel workers (0 = one per CPU)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsQualityCmd)
	settingsCmd.AddCommand(settingsLosslessCmd)
	settingsCmd.AddCommand(settingsOutputCmd)
	settingsCmd.AddCommand(settingsPolicyCmd)
	settingsCmd.AddCommand(settingsRetainCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Convert]")
	if settings.Convert.Lossless {
		cmd.Printf("  Output: lossless HEIF (.%s)\n", domain.ExtensionHEIF)
	} else {
		cmd.Printf("  Output: HEIC (.%s)\n", domain.ExtensionHEIC)
		cmd.Printf("  Quality: %.2f\n", settings.Convert.Quality)
	}
	if settings.Convert.OutputDirectory != "" {
		cmd.Printf("  Directory: %s\n", settings.Convert.OutputDirectory)
	} else {
		cmd.Printf("  Directory: (not set)\n")
	}
	cmd.Println()

	cmd.Println("[Batch]")
	cmd.Printf("  Policy: %s\n", settings.Batch.Policy)
	if settings.Batch.Policy == domain.PolicyParallel {
		cmd.Printf("  Workers: %s\n", workersLabel(settings.Batch.Workers))
	}
	cmd.Println()

	cmd.Println("[Queue]")
	cmd.Printf("  Retain: %s\n", settings.Queue.Retain)
	cmd.Println()

	cmd.Println("[Sources]")
	cmd.Printf("  Formats: %s\n", strings.Join(settings.Sources.Formats, ", "))
	cmd.Println()

	cmd.Println("[Codec]")
	cmd.Printf("  Encoder: %s\n", settings.Codec.Encoder)
	cmd.Println()

	cmd.Println("[History]")
	if settings.History.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Keep: %d runs\n", settings.History.Keep)
	} else {
		cmd.Printf("  Enabled: no\n")
	}

	if settings.Convert.OutputDirectory == "" {
		cmd.Println()
		cmd.Println("Run 'tiffheif settings output <dir>' or pass --output when converting.")
	}

	return nil
}

func runSettingsQuality(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	quality, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("%w: quality must be a number: %s", domain.ErrInvalidInput, args[0])
	}
	if err := settingsService.SetQuality(quality); err != nil {
		return fmt.Errorf("failed to set quality: %w", err)
	}

	cmd.Printf("Quality set to %.2f\n", quality)
	return nil
}

func runSettingsLossless(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	lossless, err := parseToggle(args[0])
	if err != nil {
		return err
	}
	if err := settingsService.SetLossless(lossless); err != nil {
		return fmt.Errorf("failed to set lossless: %w", err)
	}

	if lossless {
		cmd.Println("Lossless HEIF output enabled")
	} else {
		cmd.Println("Lossless HEIF output disabled")
	}
	return nil
}

func runSettingsOutput(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.SetOutputDirectory(args[0]); err != nil {
		return fmt.Errorf("failed to set output directory: %w", err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Printf("Output directory set to %s\n", settings.Convert.OutputDirectory)
	return nil
}

func runSettingsPolicy(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	policy := domain.Policy(strings.ToLower(args[0]))
	if err := settingsService.SetPolicy(policy, policyWorkers); err != nil {
		return fmt.Errorf("failed to set policy: %w", err)
	}

	if policy == domain.PolicyParallel {
		cmd.Printf("Policy set to %s (%s workers)\n", policy, workersLabel(policyWorkers))
	} else {
		cmd.Printf("Policy set to %s\n", policy)
	}
	return nil
}

func runSettingsRetain(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	retain := domain.RetainPolicy(strings.ToLower(args[0]))
	if err := settingsService.SetRetain(retain); err != nil {
		return fmt.Errorf("failed to set retain policy: %w", err)
	}

	cmd.Printf("Retain policy set to %s\n", retain)
	return nil
}

// parseToggle accepts on/off style values.
func parseToggle(input string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected on or off, got %q", domain.ErrInvalidInput, input)
	}
}

func workersLabel(workers int) string {
	if workers == 0 {
		return "one per CPU"
	}
	return strconv.Itoa(workers)
}
