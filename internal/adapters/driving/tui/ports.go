// Package tui provides an interactive terminal user interface for tiffheif.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/tiffheif/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Queue holds the files waiting to be converted.
	Queue driving.QueueService

	// Batch converts the queue.
	Batch driving.BatchOrchestrator

	// Settings provides and stores the conversion options.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	queue driving.QueueService,
	batch driving.BatchOrchestrator,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Queue:    queue,
		Batch:    batch,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Queue == nil {
		return ErrMissingQueueService
	}
	if p.Batch == nil {
		return ErrMissingBatchOrchestrator
	}
	if p.Settings == nil {
		return ErrMissingSettingsService
	}
	return nil
}
