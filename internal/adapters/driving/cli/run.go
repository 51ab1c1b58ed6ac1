package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

// progressBarWidth is the number of cells in the terminal progress bar.
const progressBarWidth = 24

// runFlags are the per-run overrides shared by convert and watch.
type runFlags struct {
	output   string
	quality  float64
	lossless bool
	parallel bool
	workers  int
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output directory (default: convert.output_dir setting)")
	cmd.Flags().Float64VarP(&f.quality, "quality", "q", domain.DefaultQuality, "Lossy quality between 0 and 1")
	cmd.Flags().BoolVar(&f.lossless, "lossless", false, "Write lossless 10-bit HEIF instead of HEIC")
	cmd.Flags().BoolVar(&f.parallel, "parallel", false, "Convert several files at once")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Parallel workers (0 = one per CPU)")
}

// runConfig is the resolved configuration of one run.
type runConfig struct {
	options domain.ConversionOptions
	policy  domain.Policy
	workers int
}

// resolveRun starts from the stored settings and applies the flags the user set.
func resolveRun(cmd *cobra.Command, f *runFlags) (runConfig, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return runConfig{}, fmt.Errorf("failed to get settings: %w", err)
	}

	rc := runConfig{
		options: settings.ConversionOptions(),
		policy:  settings.Batch.Policy,
		workers: settings.Batch.Workers,
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		rc.options.OutputDirectory = f.output
	}
	if flags.Changed("quality") {
		rc.options.Quality = f.quality
	}
	if flags.Changed("lossless") {
		rc.options.Lossless = f.lossless
	}
	if flags.Changed("parallel") {
		rc.policy = domain.PolicySequential
		if f.parallel {
			rc.policy = domain.PolicyParallel
		}
	}
	if flags.Changed("workers") {
		rc.workers = f.workers
	}

	if rc.options.OutputDirectory == "" {
		return rc, fmt.Errorf("%w: no output directory; pass --output or run 'tiffheif settings output <dir>'",
			domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(rc.options.OutputDirectory)
	if err != nil {
		return rc, fmt.Errorf("resolving output directory: %w", err)
	}
	rc.options.OutputDirectory = abs

	if err := rc.options.Validate(); err != nil {
		return rc, err
	}
	if rc.workers < 0 {
		return rc, fmt.Errorf("%w: workers must not be negative", domain.ErrInvalidInput)
	}
	return rc, nil
}

// absPaths makes every argument absolute so queued paths and history are stable.
func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", a, err)
		}
		out = append(out, abs)
	}
	return out, nil
}

// reportRejections prints every path the queue refused.
func reportRejections(cmd *cobra.Command, result *driving.AddResult) {
	for _, r := range result.Rejected {
		cmd.Printf("Skipped: %v\n", r.Reason)
	}
}

// progressPrinter reports batch events. On a terminal it redraws a single
// progress line; otherwise it prints one line per file.
type progressPrinter struct {
	out  io.Writer
	tty  bool
	open bool
}

func newProgressPrinter(cmd *cobra.Command) *progressPrinter {
	out := cmd.OutOrStderr()
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &progressPrinter{out: out, tty: tty}
}

func (p *progressPrinter) event(e domain.BatchEvent) {
	name := filepath.Base(e.Outcome.Source)
	progress := fmt.Sprintf("%d/%d", e.Progress.Completed, e.Progress.Total)

	if p.tty {
		fmt.Fprintf(p.out, "\r\033[K%s %s %s", progressBar(e.Progress.Fraction(), progressBarWidth), progress, name)
		p.open = true
		if e.Progress.Done() {
			p.finish()
		}
		return
	}

	if e.Outcome.Succeeded() {
		fmt.Fprintf(p.out, "[%s] %s -> %s\n", progress, name, filepath.Base(e.Outcome.Destination))
		return
	}
	fmt.Fprintf(p.out, "[%s] %s: %s\n", progress, name, e.Outcome.Err.Kind.Description())
}

// finish terminates an open progress line.
func (p *progressPrinter) finish() {
	if p.open {
		fmt.Fprintln(p.out)
		p.open = false
	}
}

func progressBar(fraction float64, width int) string {
	filled := int(fraction * float64(width))
	filled = max(0, min(width, filled))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// printSummary prints the totals of a run and one line per failed file.
func printSummary(cmd *cobra.Command, summary *domain.BatchSummary) {
	cmd.Printf("Converted %d of %d file(s) in %s\n",
		summary.Succeeded, summary.Total, summary.Duration().Round(10*time.Millisecond))
	if summary.Cancelled {
		cmd.Printf("Cancelled: %d file(s) not attempted\n", summary.Total-summary.Attempted)
	}
	for _, msg := range summary.Messages() {
		cmd.Println(msg)
	}
}

// summaryError returns a non-nil error when a run did not convert everything.
func summaryError(summary *domain.BatchSummary) error {
	switch {
	case summary.FailedCount() > 0:
		return fmt.Errorf("%d of %d files failed", summary.FailedCount(), summary.Total)
	case summary.Cancelled:
		return fmt.Errorf("cancelled after %d of %d files", summary.Attempted, summary.Total)
	default:
		return nil
	}
}
