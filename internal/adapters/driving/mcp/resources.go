package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tiffheif/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for tiffheif resources.
	uriScheme = "tiffheif://"

	// historyLimit is how many runs the history resource lists.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recent conversion runs, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{runId}",
		Name:        "run",
		Description: "Options, outputs and failures of one conversion run",
		MIMEType:    "application/json",
	}, s.handleRunResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "settings",
		Name:        "settings",
		Description: "Default conversion settings",
		MIMEType:    "application/json",
	}, s.handleSettingsResource)
}

// runInfo is the JSON form of a recorded run.
type runInfo struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Policy    string    `json:"policy"`
	Output    string    `json:"output_directory"`
	Lossless  bool      `json:"lossless"`
	Quality   float64   `json:"quality"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Cancelled bool      `json:"cancelled,omitempty"`
	Outputs   []string  `json:"outputs,omitempty"`
	Failures  []string  `json:"failures,omitempty"`
}

func newRunInfo(r *domain.RunRecord, detailed bool) runInfo {
	info := runInfo{
		ID:        r.ID(),
		StartedAt: r.Summary.StartedAt,
		Duration:  r.Summary.Duration().String(),
		Policy:    string(r.Policy),
		Output:    r.Options.OutputDirectory,
		Lossless:  r.Options.Lossless,
		Quality:   r.Options.Quality,
		Total:     r.Summary.Total,
		Succeeded: r.Summary.Succeeded,
		Failed:    r.Summary.FailedCount(),
		Cancelled: r.Summary.Cancelled,
	}
	if detailed {
		info.Outputs = r.Summary.Outputs
		info.Failures = r.Summary.Messages()
	}
	return info
}

// handleHistoryResource returns recent runs.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return jsonResult(req.Params.URI, []runInfo{})
	}

	records, err := s.ports.History.List(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	infos := make([]runInfo, len(records))
	for i := range records {
		infos[i] = newRunInfo(&records[i], false)
	}
	return jsonResult(req.Params.URI, infos)
}

// handleRunResource returns one run in detail.
func (s *Server) handleRunResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.History == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	id := extractRunID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.History.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return jsonResult(req.Params.URI, newRunInfo(record, true))
}

// handleSettingsResource returns the default conversion settings.
func (s *Server) handleSettingsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	settings, err := s.ports.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	info := struct {
		Quality         float64 `json:"quality"`
		Lossless        bool    `json:"lossless"`
		OutputDirectory string  `json:"output_directory"`
		Extension       string  `json:"extension"`
		Policy          string  `json:"policy"`
		Workers         int     `json:"workers"`
	}{
		Quality:         settings.Convert.Quality,
		Lossless:        settings.Convert.Lossless,
		OutputDirectory: settings.Convert.OutputDirectory,
		Extension:       settings.ConversionOptions().Extension(),
		Policy:          string(settings.Batch.Policy),
		Workers:         settings.Batch.Workers,
	}
	return jsonResult(req.Params.URI, info)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like tiffheif://history/{runId}.
func extractRunID(uri string) string {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
