package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// historyTimeFormat is how run start times are shown.
const historyTimeFormat = "2006-01-02 15:04:05"

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded batch runs",
	Long: `Lists recent batch runs, most recent first.

Use 'history show <run-id>' for the failures of one run and
'history prune' to drop old runs.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one batch run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old batch runs",
	Long:  `Removes all but the most recent runs (--keep, default 100).`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

var (
	historyLimit int
	historyKeep  int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to list (0 = all)")
	historyPruneCmd.Flags().IntVar(&historyKeep, "keep", domain.DefaultHistoryKeep, "Number of runs to keep")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	runs, err := historyService.List(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	cmd.Println("Recent runs:")
	cmd.Println()
	for i := range runs {
		s := runs[i].Summary
		cmd.Printf("  %s  %s  %d/%d converted", s.RunID, s.StartedAt.Local().Format(historyTimeFormat),
			s.Succeeded, s.Total)
		if n := s.FailedCount(); n > 0 {
			cmd.Printf(", %d failed", n)
		}
		if s.Cancelled {
			cmd.Printf(", cancelled")
		}
		cmd.Println()
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	run, err := historyService.Get(cmd.Context(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("run %s not found", args[0])
		}
		return fmt.Errorf("failed to get run: %w", err)
	}

	s := run.Summary
	cmd.Printf("Run: %s\n", s.RunID)
	cmd.Printf("Started: %s\n", s.StartedAt.Local().Format(historyTimeFormat))
	cmd.Printf("Duration: %s\n", s.Duration().Round(time.Millisecond))
	cmd.Printf("Policy: %s\n", run.Policy)
	if run.Options.Lossless {
		cmd.Printf("Output: lossless HEIF in %s\n", run.Options.OutputDirectory)
	} else {
		cmd.Printf("Output: HEIC (quality %.2f) in %s\n", run.Options.Quality, run.Options.OutputDirectory)
	}
	cmd.Printf("Converted: %d of %d\n", s.Succeeded, s.Total)
	if s.Cancelled {
		cmd.Printf("Cancelled: %d file(s) not attempted\n", s.Total-s.Attempted)
	}

	if len(s.Failures) > 0 {
		cmd.Println()
		cmd.Println("Failures:")
		for _, f := range s.Failures {
			cmd.Printf("  %s: %s\n", filepath.Base(f.Source), f.Kind.Description())
			if f.Cause != "" {
				cmd.Printf("    %s\n", f.Cause)
			}
		}
	}
	return nil
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	if historyService == nil {
		return errors.New("history service not configured")
	}

	removed, err := historyService.Prune(cmd.Context(), historyKeep)
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}

	cmd.Printf("Removed %d run(s)\n", removed)
	return nil
}
