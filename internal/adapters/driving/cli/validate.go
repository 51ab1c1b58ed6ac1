package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Check which files can be converted",
	Long: `Reports, for each path, whether it would be accepted for conversion.
Directories are expanded to the files beneath them. Nothing is converted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if queueService == nil {
		return errors.New("queue service not configured")
	}

	paths, err := absPaths(args)
	if err != nil {
		return err
	}
	result, err := queueService.Add(cmd.Context(), paths...)
	if err != nil {
		return fmt.Errorf("checking files: %w", err)
	}
	// Leave the queue as it was.
	for _, p := range result.Added {
		queueService.Remove(p)
	}

	accepted := len(result.Added) + len(result.Duplicates)
	for _, p := range result.Added {
		cmd.Printf("ok       %s\n", p)
	}
	for _, p := range result.Duplicates {
		cmd.Printf("ok       %s\n", p)
	}
	for _, r := range result.Rejected {
		cmd.Printf("rejected %v\n", r.Reason)
	}

	total := accepted + len(result.Rejected)
	cmd.Printf("\n%d of %d file(s) can be converted\n", accepted, total)
	if len(result.Rejected) > 0 {
		return fmt.Errorf("%d of %d paths rejected", len(result.Rejected), total)
	}
	return nil
}
