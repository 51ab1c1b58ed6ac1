package driving

import "github.com/custodia-labs/tiffheif/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetQuality updates the default lossy quality.
	SetQuality(quality float64) error

	// SetLossless toggles lossless HEIF output.
	SetLossless(lossless bool) error

	// SetOutputDirectory updates the default output directory.
	// The path is made absolute and must be an existing directory.
	SetOutputDirectory(dir string) error

	// SetPolicy updates the batch scheduling policy.
	SetPolicy(policy domain.Policy, workers int) error

	// SetRetain updates the post-run queue retain policy.
	SetRetain(retain domain.RetainPolicy) error

	// ConversionOptions returns the options snapshot for a new run.
	ConversionOptions() (domain.ConversionOptions, error)

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
