package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

var watchFlags runFlags

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Convert TIFF files as they appear in a folder",
	Long: `Watches a folder and converts TIFF files that are added or modified.

Files are collected until the folder has been quiet for a moment, then
converted together. Press Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	addRunFlags(watchCmd, &watchFlags)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if folderWatcher == nil {
		return errors.New("watch service not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	rc, err := resolveRun(cmd, &watchFlags)
	if err != nil {
		return err
	}
	if encoderCheck != nil {
		if err := encoderCheck(); err != nil {
			return fmt.Errorf("%w (install libheif or set codec.encoder in config.toml)", err)
		}
	}

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", args[0], err)
	}

	cmd.Printf("Watching %s, writing %s files to %s\n",
		dir, rc.options.Extension(), rc.options.OutputDirectory)

	onSummary := func(summary *domain.BatchSummary) {
		printSummary(cmd, summary)
	}
	err = folderWatcher.Watch(cmd.Context(), driving.WatchRequest{
		Dir:     dir,
		Options: rc.options,
		Policy:  rc.policy,
		Workers: rc.workers,
	}, onSummary)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Println("Stopped watching.")
	return nil
}
