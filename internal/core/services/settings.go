package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driven"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyQuality        = "convert.quality"
	keyLossless       = "convert.lossless"
	keyOutputDir      = "convert.output_dir"
	keyPolicy         = "batch.policy"
	keyWorkers        = "batch.workers"
	keyRetain         = "queue.retain"
	keyFormats        = "sources.formats"
	keyEncoder        = "codec.encoder"
	keyHistoryEnabled = "history.enabled"
	keyHistoryKeep    = "history.keep"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Missing or invalid stored values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Convert: domain.ConvertSettings{
			Quality:         s.getQuality(defaults.Convert.Quality),
			Lossless:        s.getBool(keyLossless, defaults.Convert.Lossless),
			OutputDirectory: s.configStore.GetString(keyOutputDir),
		},
		Batch: domain.BatchSettings{
			Policy:  s.getPolicy(defaults.Batch.Policy),
			Workers: s.getNonNegativeInt(keyWorkers, defaults.Batch.Workers),
		},
		Queue: domain.QueueSettings{
			Retain: s.getRetain(defaults.Queue.Retain),
		},
		Sources: domain.SourceSettings{
			Formats: s.getStringSlice(keyFormats, defaults.Sources.Formats),
		},
		Codec: domain.CodecSettings{
			Encoder: s.getString(keyEncoder, defaults.Codec.Encoder),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistoryEnabled, defaults.History.Enabled),
			Keep:    s.getNonNegativeInt(keyHistoryKeep, defaults.History.Keep),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	values := []struct {
		key   string
		value any
	}{
		{keyQuality, settings.Convert.Quality},
		{keyLossless, settings.Convert.Lossless},
		{keyOutputDir, settings.Convert.OutputDirectory},
		{keyPolicy, settings.Batch.Policy.String()},
		{keyWorkers, settings.Batch.Workers},
		{keyRetain, settings.Queue.Retain.String()},
		{keyFormats, settings.Sources.Formats},
		{keyEncoder, settings.Codec.Encoder},
		{keyHistoryEnabled, settings.History.Enabled},
		{keyHistoryKeep, settings.History.Keep},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return nil
}

// SetQuality updates the default lossy quality.
func (s *SettingsService) SetQuality(quality float64) error {
	if !domain.ValidQuality(quality) {
		return fmt.Errorf("%w: quality must be between 0 and 1, got %g", domain.ErrInvalidInput, quality)
	}
	return s.configStore.Set(keyQuality, quality)
}

// SetLossless toggles lossless HEIF output.
func (s *SettingsService) SetLossless(lossless bool) error {
	return s.configStore.Set(keyLossless, lossless)
}

// SetOutputDirectory updates the default output directory.
func (s *SettingsService) SetOutputDirectory(dir string) error {
	abs, err := ResolveOutputDirectory(dir)
	if err != nil {
		return err
	}
	return s.configStore.Set(keyOutputDir, abs)
}

// SetPolicy updates the batch scheduling policy.
func (s *SettingsService) SetPolicy(policy domain.Policy, workers int) error {
	if !policy.IsValid() {
		return fmt.Errorf("%w: unknown batch policy %q", domain.ErrInvalidInput, policy)
	}
	if workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyPolicy, policy.String()); err != nil {
		return err
	}
	return s.configStore.Set(keyWorkers, workers)
}

// SetRetain updates the post-run queue retain policy.
func (s *SettingsService) SetRetain(retain domain.RetainPolicy) error {
	if !retain.IsValid() {
		return fmt.Errorf("%w: unknown retain policy %q", domain.ErrInvalidInput, retain)
	}
	return s.configStore.Set(keyRetain, retain.String())
}

// ConversionOptions returns the options snapshot for a new run.
func (s *SettingsService) ConversionOptions() (domain.ConversionOptions, error) {
	settings, err := s.Get()
	if err != nil {
		return domain.ConversionOptions{}, err
	}
	return settings.ConversionOptions(), nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ResolveOutputDirectory makes dir absolute and checks it is an existing directory.
func ResolveOutputDirectory(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: output directory is required", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrOutputDirectoryNotFound, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", domain.ErrOutputDirectoryNotFound, abs)
	}
	return abs, nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getNonNegativeInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	val := s.configStore.GetStringSlice(key)
	if len(val) == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getQuality(defaultVal float64) float64 {
	raw, exists := s.configStore.Get(keyQuality)
	if !exists {
		return defaultVal
	}
	switch raw.(type) {
	case float64, float32, int, int64:
	default:
		return defaultVal
	}
	q := s.configStore.GetFloat(keyQuality)
	if !domain.ValidQuality(q) {
		return defaultVal
	}
	return q
}

func (s *SettingsService) getPolicy(defaultVal domain.Policy) domain.Policy {
	policy := domain.Policy(s.configStore.GetString(keyPolicy))
	if !policy.IsValid() {
		return defaultVal
	}
	return policy
}

func (s *SettingsService) getRetain(defaultVal domain.RetainPolicy) domain.RetainPolicy {
	retain := domain.RetainPolicy(s.configStore.GetString(keyRetain))
	if !retain.IsValid() {
		return defaultVal
	}
	return retain
}
