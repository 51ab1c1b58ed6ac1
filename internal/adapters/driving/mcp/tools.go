package mcp

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

// ConvertInput is the input schema for the convert_files tool.
type ConvertInput struct {
	Paths           []string `json:"paths" jsonschema:"absolute paths of the TIFF files to convert"`
	OutputDirectory string   `json:"output_directory,omitempty" jsonschema:"existing directory for the results (default from settings)"`
	Quality         *float64 `json:"quality,omitempty" jsonschema:"lossy quality between 0 and 1 (default from settings)"`
	Lossless        bool     `json:"lossless,omitempty" jsonschema:"write lossless 10-bit HEIF instead of HEIC"`
	Parallel        bool     `json:"parallel,omitempty" jsonschema:"convert files concurrently"`
	Workers         int      `json:"workers,omitempty" jsonschema:"parallel workers (0 = one per CPU)"`
}

// ConvertOutput is the output schema for the convert_files tool.
type ConvertOutput struct {
	RunID     string           `json:"run_id"`
	Total     int              `json:"total"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
	Cancelled bool             `json:"cancelled,omitempty"`
	Outputs   []string         `json:"outputs"`
	Failures  []FailureOutput  `json:"failures,omitempty"`
	Rejected  []RejectedOutput `json:"rejected,omitempty"`
}

// FailureOutput describes one file that could not be converted.
type FailureOutput struct {
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// RejectedOutput describes one path that was never attempted.
type RejectedOutput struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ValidateInput is the input schema for the validate_sources tool.
type ValidateInput struct {
	Paths []string `json:"paths" jsonschema:"paths to check"`
}

// ValidateOutput is the output schema for the validate_sources tool.
type ValidateOutput struct {
	Results  []ValidationOutput `json:"results"`
	Accepted int                `json:"accepted"`
}

// ValidationOutput is the verdict for one path.
type ValidationOutput struct {
	Path       string `json:"path"`
	Acceptable bool   `json:"acceptable"`
	Reason     string `json:"reason,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "convert_files",
		Description: "Convert TIFF images to HEIC (lossy) or HEIF (lossless). Unacceptable paths are skipped and reported.",
	}, s.handleConvert)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_sources",
		Description: "Check whether paths are readable TIFF images that can be converted",
	}, s.handleValidate)
}

// handleConvert handles the convert_files tool invocation.
func (s *Server) handleConvert(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ConvertInput,
) (*mcp.CallToolResult, ConvertOutput, error) {
	req, err := s.buildRequest(input)
	if err != nil {
		return nil, ConvertOutput{}, err
	}

	var rejected []RejectedOutput
	for _, p := range input.Paths {
		if err := s.ports.Validator.Check(p); err != nil {
			rejected = append(rejected, RejectedOutput{Path: p, Reason: err.Error()})
			continue
		}
		req.Sources = append(req.Sources, p)
	}
	if len(req.Sources) == 0 {
		return nil, ConvertOutput{Rejected: rejected},
			fmt.Errorf("%w: %d of %d paths rejected", domain.ErrNoSources, len(rejected), len(input.Paths))
	}

	summary, err := s.ports.Batch.Run(ctx, req, func(domain.BatchEvent) {})
	if err != nil {
		return nil, ConvertOutput{}, fmt.Errorf("converting: %w", err)
	}

	output := ConvertOutput{
		RunID:     summary.RunID,
		Total:     summary.Total,
		Succeeded: summary.Succeeded,
		Failed:    summary.FailedCount(),
		Cancelled: summary.Cancelled,
		Outputs:   append([]string{}, summary.Outputs...),
		Rejected:  rejected,
	}
	for _, f := range summary.Failures {
		output.Failures = append(output.Failures, FailureOutput{
			Source:  f.Source,
			Kind:    string(f.Kind),
			Message: f.Message(),
		})
	}
	return nil, output, nil
}

// buildRequest applies the tool input over the configured defaults.
func (s *Server) buildRequest(input ConvertInput) (domain.BatchRequest, error) {
	if len(input.Paths) == 0 {
		return domain.BatchRequest{}, fmt.Errorf("%w: paths is required", domain.ErrInvalidInput)
	}

	settings, err := s.ports.Settings.Get()
	if err != nil {
		return domain.BatchRequest{}, fmt.Errorf("loading settings: %w", err)
	}

	opts := settings.ConversionOptions()
	if input.OutputDirectory != "" {
		opts.OutputDirectory = filepath.Clean(input.OutputDirectory)
	}
	if input.Quality != nil {
		opts.Quality = *input.Quality
	}
	if input.Lossless {
		opts.Lossless = true
	}
	if err := opts.Validate(); err != nil {
		return domain.BatchRequest{}, err
	}

	req := domain.BatchRequest{
		Options: opts,
		Policy:  settings.Batch.Policy,
		Workers: settings.Batch.Workers,
	}
	if input.Parallel {
		req.Policy = domain.PolicyParallel
	}
	if input.Workers > 0 {
		req.Workers = input.Workers
	}
	return req, nil
}

// handleValidate handles the validate_sources tool invocation.
func (s *Server) handleValidate(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	output := ValidateOutput{Results: make([]ValidationOutput, len(input.Paths))}
	for i, p := range input.Paths {
		result := ValidationOutput{Path: p, Acceptable: true}
		if err := s.ports.Validator.Check(p); err != nil {
			result.Acceptable = false
			result.Reason = err.Error()
		} else {
			output.Accepted++
		}
		output.Results[i] = result
	}
	return nil, output, nil
}
