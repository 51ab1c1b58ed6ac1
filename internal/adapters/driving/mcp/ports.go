package mcp

import (
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Validator checks paths before they are converted.
	Validator driving.SourceValidator

	// Batch converts accepted files.
	Batch driving.BatchOrchestrator

	// Settings supplies the default conversion options.
	Settings driving.SettingsService

	// History lists recorded runs. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Validator == nil {
		return ErrMissingValidator
	}
	if p.Batch == nil {
		return ErrMissingBatchOrchestrator
	}
	if p.Settings == nil {
		return ErrMissingSettingsService
	}
	return nil
}
