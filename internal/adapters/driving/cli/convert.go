package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

var convertFlags runFlags

var convertCmd = &cobra.Command{
	Use:   "convert [paths...]",
	Short: "Convert TIFF images to HEIC/HEIF",
	Long: `Converts the given TIFF files to HEIC, or HEIF with --lossless.

Directories are expanded to the files beneath them. Paths that are not
readable TIFF images are skipped with a reason. Each output is written to
the output directory with the source name and a .heic or .heif extension,
replacing any existing file.

Flags override the stored settings for this run only.

Examples:
  tiffheif convert scans/ -o ~/Pictures/heic
  tiffheif convert a.tif b.tif -q 0.6 --parallel
  tiffheif convert master.tiff --lossless`,
	RunE: runConvert,
}

func init() {
	addRunFlags(convertCmd, &convertFlags)
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if queueService == nil || batchOrchestrator == nil {
		return errors.New("batch service not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	rc, err := resolveRun(cmd, &convertFlags)
	if err != nil {
		return err
	}
	if encoderCheck != nil {
		if err := encoderCheck(); err != nil {
			return fmt.Errorf("%w (install libheif or set codec.encoder in config.toml)", err)
		}
	}

	ctx := cmd.Context()
	if len(args) > 0 {
		paths, err := absPaths(args)
		if err != nil {
			return err
		}
		result, err := queueService.Add(ctx, paths...)
		if err != nil {
			return fmt.Errorf("queueing files: %w", err)
		}
		reportRejections(cmd, result)
	}

	sources := queueService.Items()
	if len(sources) == 0 {
		return domain.ErrNoSources
	}

	cmd.Printf("Converting %d file(s) to %s in %s\n",
		len(sources), strings.ToUpper(rc.options.Extension()), rc.options.OutputDirectory)

	printer := newProgressPrinter(cmd)
	summary, err := batchOrchestrator.Run(ctx, domain.BatchRequest{
		Sources: sources,
		Options: rc.options,
		Policy:  rc.policy,
		Workers: rc.workers,
	}, printer.event)
	printer.finish()
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	queueService.Settle(summary)
	printSummary(cmd, summary)
	return summaryError(summary)
}
