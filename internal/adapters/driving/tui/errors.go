package tui

import "errors"

// ErrMissingQueueService is returned when the queue service is not provided.
var ErrMissingQueueService = errors.New("tui: queue service is required")

// ErrMissingBatchOrchestrator is returned when the batch orchestrator is not provided.
var ErrMissingBatchOrchestrator = errors.New("tui: batch orchestrator is required")

// ErrMissingSettingsService is returned when the settings service is not provided.
var ErrMissingSettingsService = errors.New("tui: settings service is required")

// ErrInvalidPorts is returned when no ports are provided.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")

// errEmptyQueue is shown when a conversion is requested with nothing queued.
var errEmptyQueue = errors.New("no files queued")
