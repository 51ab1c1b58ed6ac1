// Package cli implements the tiffheif command line with cobra.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
	"github.com/custodia-labs/tiffheif/internal/logger"
)

// HomeEnv overrides the configuration directory when --config-dir is not set.
const HomeEnv = "TIFFHEIF_HOME"

// version is set at build time.
var version = "dev"

// Services used by commands. Nil services make their commands fail with
// a "not configured" error.
var (
	validator         driving.SourceValidator
	queueService      driving.QueueService
	batchOrchestrator driving.BatchOrchestrator
	settingsService   driving.SettingsService
	historyService    driving.HistoryService
	folderWatcher     driving.FolderWatcher
	encoderCheck      func() error
)

// Services holds everything the commands run against.
type Services struct {
	Validator driving.SourceValidator
	Queue     driving.QueueService
	Batch     driving.BatchOrchestrator
	Settings  driving.SettingsService
	History   driving.HistoryService
	Watcher   driving.FolderWatcher

	// EncoderCheck reports whether the HEIF encoder can run. Optional.
	EncoderCheck func() error
}

// Bootstrap builds the services for a configuration directory once flags
// are parsed. An empty directory selects the default. The returned function
// releases the services.
type Bootstrap func(configDir string) (*Services, func() error, error)

var (
	bootstrap     Bootstrap
	closeServices func() error

	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "tiffheif",
	Short: "Batch convert TIFF images to HEIC/HEIF",
	Long: `tiffheif converts TIFF images to HEIC (lossy) or HEIF (lossless, 10-bit).

Files are checked before they are queued: only readable TIFF images are
accepted. Each file is converted independently, so one bad file never
stops the rest of a batch.

Settings are stored in ~/.tiffheif/config.toml. Use --config-dir or the
TIFFHEIF_HOME environment variable to point elsewhere.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"Configuration directory (default $"+HomeEnv+" or ~/.tiffheif)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetServices installs the services commands run against.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	validator = s.Validator
	queueService = s.Queue
	batchOrchestrator = s.Batch
	settingsService = s.Settings
	historyService = s.History
	folderWatcher = s.Watcher
	encoderCheck = s.EncoderCheck
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Execute runs the root command and releases services afterwards.
func Execute(ctx context.Context) error {
	defer release()
	return rootCmd.ExecuteContext(ctx)
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil {
		return nil
	}

	services, closeFn, err := bootstrap(resolveConfigDir())
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	SetServices(services)
	closeServices = closeFn
	return nil
}

// resolveConfigDir returns --config-dir, then $TIFFHEIF_HOME, then "".
func resolveConfigDir() string {
	if configDir != "" {
		return configDir
	}
	return os.Getenv(HomeEnv)
}

func release() {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("closing services: %v", err)
	}
	closeServices = nil
}
