// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/tiffheif/internal/core/domain"
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

// ViewType identifies which screen is active.
type ViewType int

const (
	// ViewQueue is the queue and conversion screen.
	ViewQueue ViewType = iota
	// ViewAddPath prompts for a file or folder to queue.
	ViewAddPath
	// ViewOutput prompts for the output directory.
	ViewOutput
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewQueue:
		return "queue"
	case ViewAddPath:
		return "add_path"
	case ViewOutput:
		return "output"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// FilesAdded carries the result of queueing paths.
type FilesAdded struct {
	Result *driving.AddResult
	Err    error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals a setting was written.
type SettingsSaved struct {
	Err error
}

// ConversionProgress carries one per-file event of a running batch.
type ConversionProgress struct {
	Event domain.BatchEvent
}

// ConversionFinished carries the summary of a batch.
// Err is set when the batch could not start.
type ConversionFinished struct {
	Summary *domain.BatchSummary
	Err     error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
