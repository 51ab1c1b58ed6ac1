// Package mcp provides an MCP (Model Context Protocol) server adapter for tiffheif.
// It lets AI assistants validate TIFF sources and convert them to HEIC/HEIF.
package mcp

import "errors"

var (
	// ErrMissingValidator is returned when the source validator is not provided.
	ErrMissingValidator = errors.New("mcp: source validator is required")

	// ErrMissingBatchOrchestrator is returned when the batch orchestrator is not provided.
	ErrMissingBatchOrchestrator = errors.New("mcp: batch orchestrator is required")

	// ErrMissingSettingsService is returned when the settings service is not provided.
	ErrMissingSettingsService = errors.New("mcp: settings service is required")
)
