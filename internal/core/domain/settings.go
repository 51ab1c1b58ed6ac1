package domain

// DefaultEncoder is the HEIF encoder binary looked up on PATH.
const DefaultEncoder = "heif-enc"

// DefaultHistoryKeep is how many runs are kept when pruning history.
const DefaultHistoryKeep = 100

// MIMETypeTIFF is the content type of accepted sources.
const MIMETypeTIFF = "image/tiff"

// ConvertSettings holds the default conversion options.
type ConvertSettings struct {
	// Quality is the lossy quality in [0, 1].
	Quality float64

	// Lossless selects HEIF output.
	Lossless bool

	// OutputDirectory is where results are written. May be empty until set.
	OutputDirectory string
}

// BatchSettings holds batch scheduling configuration.
type BatchSettings struct {
	// Policy is the scheduling policy.
	Policy Policy

	// Workers bounds parallelism. Zero means one per CPU.
	Workers int
}

// QueueSettings holds source queue configuration.
type QueueSettings struct {
	// Retain decides what stays queued after a run.
	Retain RetainPolicy
}

// SourceSettings holds source validation configuration.
type SourceSettings struct {
	// Formats are the accepted MIME types.
	Formats []string
}

// CodecSettings holds encoder configuration.
type CodecSettings struct {
	// Encoder is the encoder binary name or path.
	Encoder string
}

// HistorySettings holds run history configuration.
type HistorySettings struct {
	// Enabled indicates whether runs are recorded.
	Enabled bool

	// Keep is the number of runs retained by pruning.
	Keep int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Convert ConvertSettings
	Batch   BatchSettings
	Queue   QueueSettings
	Sources SourceSettings
	Codec   CodecSettings
	History HistorySettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The output directory is left unset; it must be configured or passed per run.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Convert: ConvertSettings{
			Quality: DefaultQuality,
		},
		Batch: BatchSettings{
			Policy: PolicySequential,
		},
		Queue: QueueSettings{
			Retain: RetainAll,
		},
		Sources: SourceSettings{
			Formats: []string{MIMETypeTIFF},
		},
		Codec: CodecSettings{
			Encoder: DefaultEncoder,
		},
		History: HistorySettings{
			Enabled: true,
			Keep:    DefaultHistoryKeep,
		},
	}
}

// ConversionOptions returns the options snapshot for a run.
func (s AppSettings) ConversionOptions() ConversionOptions {
	return ConversionOptions{
		Quality:         s.Convert.Quality,
		Lossless:        s.Convert.Lossless,
		OutputDirectory: s.Convert.OutputDirectory,
	}
}

// Validate checks the settings are usable. An unset output directory is allowed.
func (s AppSettings) Validate() error {
	if !ValidQuality(s.Convert.Quality) {
		return ErrInvalidInput
	}
	if !s.Batch.Policy.IsValid() || s.Batch.Workers < 0 {
		return ErrInvalidInput
	}
	if !s.Queue.Retain.IsValid() {
		return ErrInvalidInput
	}
	if len(s.Sources.Formats) == 0 || s.Codec.Encoder == "" || s.History.Keep < 0 {
		return ErrInvalidInput
	}
	return nil
}
